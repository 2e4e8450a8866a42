package httpserver

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid/v2"

	"github.com/Nuvei/nuvei-plugin-commerce-tools/internal/cart"
	"github.com/Nuvei/nuvei-plugin-commerce-tools/internal/domain"
	"github.com/Nuvei/nuvei-plugin-commerce-tools/internal/session"
)

// cartService resolves the request locale and builds the request-scoped
// workflow service.
func (h *handler) cartService(c *gin.Context) (cartAPI, *session.Data, error) {
	sess := currentSession(c)
	loc, err := h.locales.Resolve(c.Query("locale"), c.Query("currency"))
	if err != nil {
		return nil, nil, err
	}
	return h.newCart(loc, sess), sess, nil
}

// resolveCart finds the shopper's cart: the sticky cart id from the session
// first, the account cart for logged-in shoppers, the anonymous cart
// otherwise. A sticky cart that got ordered in the meantime falls through to
// a fresh resolution.
func (h *handler) resolveCart(ctx context.Context, svc cartAPI, sess *session.Data) (*domain.Cart, error) {
	if sess.CartID != "" {
		crt, err := svc.GetActiveByID(ctx, sess.CartID)
		if err == nil {
			return crt, nil
		}
		var notActive *domain.CartNotActiveError
		if !errors.As(err, &notActive) {
			return nil, err
		}
		sess.CartID = ""
	}

	if sess.AccountID != "" {
		return svc.GetForAccount(ctx, domain.Account{AccountID: sess.AccountID, Email: sess.Email})
	}
	return svc.GetAnonymous(ctx)
}

// runCartAction fetches the cart, applies fn to it and responds with the
// resulting cart. The cart id sticks to the session.
func (h *handler) runCartAction(c *gin.Context, fn func(ctx context.Context, svc cartAPI, crt *domain.Cart) (*domain.Cart, error)) {
	svc, sess, err := h.cartService(c)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	ctx := c.Request.Context()
	crt, err := h.resolveCart(ctx, svc, sess)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	crt, err = fn(ctx, svc, crt)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	sess.CartID = crt.ID
	c.JSON(http.StatusOK, crt)
}

func (h *handler) getCart(c *gin.Context) {
	h.runCartAction(c, func(ctx context.Context, svc cartAPI, crt *domain.Cart) (*domain.Cart, error) {
		return crt, nil
	})
}

func (h *handler) addToCart(c *gin.Context) {
	var req struct {
		SKU   string `json:"sku" binding:"required"`
		Count int    `json:"count"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Count <= 0 {
		req.Count = 1
	}
	h.runCartAction(c, func(ctx context.Context, svc cartAPI, crt *domain.Cart) (*domain.Cart, error) {
		return svc.AddLineItem(ctx, crt, req.SKU, req.Count)
	})
}

func (h *handler) updateLineItem(c *gin.Context) {
	var req struct {
		LineItemID string `json:"lineItemId" binding:"required"`
		Count      int    `json:"count" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.runCartAction(c, func(ctx context.Context, svc cartAPI, crt *domain.Cart) (*domain.Cart, error) {
		return svc.ChangeLineItemQuantity(ctx, crt, req.LineItemID, req.Count)
	})
}

func (h *handler) removeLineItem(c *gin.Context) {
	var req struct {
		LineItemID string `json:"lineItemId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.runCartAction(c, func(ctx context.Context, svc cartAPI, crt *domain.Cart) (*domain.Cart, error) {
		return svc.RemoveLineItem(ctx, crt, req.LineItemID)
	})
}

func (h *handler) setEmail(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.runCartAction(c, func(ctx context.Context, svc cartAPI, crt *domain.Cart) (*domain.Cart, error) {
		return svc.SetEmail(ctx, crt, req.Email)
	})
}

func (h *handler) setShippingAddress(c *gin.Context) {
	var req struct {
		Address domain.Address `json:"address" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.runCartAction(c, func(ctx context.Context, svc cartAPI, crt *domain.Cart) (*domain.Cart, error) {
		return svc.SetShippingAddress(ctx, crt, req.Address)
	})
}

func (h *handler) setBillingAddress(c *gin.Context) {
	var req struct {
		Address domain.Address `json:"address" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.runCartAction(c, func(ctx context.Context, svc cartAPI, crt *domain.Cart) (*domain.Cart, error) {
		return svc.SetBillingAddress(ctx, crt, req.Address)
	})
}

func (h *handler) setShippingMethod(c *gin.Context) {
	var req struct {
		ShippingMethodID string `json:"shippingMethodId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.runCartAction(c, func(ctx context.Context, svc cartAPI, crt *domain.Cart) (*domain.Cart, error) {
		return svc.SetShippingMethod(ctx, crt, req.ShippingMethodID)
	})
}

func (h *handler) redeemDiscountCode(c *gin.Context) {
	var req struct {
		Code string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.runCartAction(c, func(ctx context.Context, svc cartAPI, crt *domain.Cart) (*domain.Cart, error) {
		return svc.RedeemDiscountCode(ctx, crt, req.Code)
	})
}

func (h *handler) removeDiscountCode(c *gin.Context) {
	var req struct {
		DiscountID string `json:"discountId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.runCartAction(c, func(ctx context.Context, svc cartAPI, crt *domain.Cart) (*domain.Cart, error) {
		return svc.RemoveDiscountCode(ctx, crt, req.DiscountID)
	})
}

func (h *handler) getShippingMethods(c *gin.Context) {
	svc, _, err := h.cartService(c)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	onlyMatching := c.Query("onlyMatching") == "true"
	methods, err := svc.GetShippingMethods(c.Request.Context(), onlyMatching)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, methods)
}

func (h *handler) getOrders(c *gin.Context) {
	svc, sess, err := h.cartService(c)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	if sess.AccountID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "order history requires a logged-in account"})
		return
	}
	orders, err := svc.GetOrders(c.Request.Context(), domain.Account{AccountID: sess.AccountID, Email: sess.Email})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *handler) queryOrders(c *gin.Context) {
	var req struct {
		OrderIDs     []string `json:"orderIds"`
		OrderNumbers []string `json:"orderNumbers"`
		OrderStates  []string `json:"orderStates"`
		Sort         []string `json:"sort"`
		Limit        int      `json:"limit"`
		Offset       int      `json:"offset"`
	}
	_ = c.ShouldBindJSON(&req)

	svc, sess, err := h.cartService(c)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	if sess.AccountID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "order history requires a logged-in account"})
		return
	}

	orders, total, err := svc.QueryOrders(c.Request.Context(), cart.OrderQuery{
		AccountID:    sess.AccountID,
		OrderIDs:     req.OrderIDs,
		OrderNumbers: req.OrderNumbers,
		OrderStates:  req.OrderStates,
		Sort:         req.Sort,
		Limit:        req.Limit,
		Offset:       req.Offset,
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"total": total, "orders": orders})
}

// replicateCart starts a fresh cart from a previous order and makes it the
// session's cart.
func (h *handler) replicateCart(c *gin.Context) {
	var req struct {
		OrderID string `json:"orderId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	svc, sess, err := h.cartService(c)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	crt, err := svc.ReplicateCart(c.Request.Context(), req.OrderID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	sess.CartID = crt.ID
	c.JSON(http.StatusOK, crt)
}

func (h *handler) getCheckoutToken(c *gin.Context) {
	svc, sess, err := h.cartService(c)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	ctx := c.Request.Context()
	crt, err := h.resolveCart(ctx, svc, sess)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	sess.CartID = crt.ID

	var account *domain.Account
	if sess.AccountID != "" {
		account = &domain.Account{AccountID: sess.AccountID, Email: sess.Email}
	}
	token, err := svc.CheckoutToken(ctx, crt, account)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, token)
}

func (h *handler) checkout(c *gin.Context) {
	var req struct {
		OrderNumber string `json:"orderNumber"`
	}
	// The body is optional; an order number is generated when absent.
	_ = c.ShouldBindJSON(&req)
	if req.OrderNumber == "" {
		req.OrderNumber = ulid.Make().String()
	}

	svc, sess, err := h.cartService(c)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	ctx := c.Request.Context()
	crt, err := h.resolveCart(ctx, svc, sess)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	order, err := svc.Order(ctx, crt, req.OrderNumber, "")
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	// The cart is consumed by the order; unstick it from the session.
	sess.CartID = ""
	c.JSON(http.StatusOK, order)
}
