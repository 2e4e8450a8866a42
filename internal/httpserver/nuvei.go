package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid/v2"

	"github.com/Nuvei/nuvei-plugin-commerce-tools/internal/cart"
	"github.com/Nuvei/nuvei-plugin-commerce-tools/internal/domain"
)

type makePaymentRequest struct {
	OrderNumber   string       `json:"orderNumber"`
	InterfaceID   string       `json:"paymentId"`
	Method        string       `json:"paymentMethod"`
	Debug         string       `json:"debug"`
	AmountPlanned domain.Money `json:"amountPlanned"`
}

// makePaymentResponse is what the hosted payment widget consumes to open the
// Nuvei checkout session.
type makePaymentResponse struct {
	Action       actionHint `json:"action"`
	ResultCode   string     `json:"resultCode"`
	SessionToken string     `json:"sessionToken"`
	CentAmount   int64      `json:"centAmount"`
	Currency     string     `json:"currency"`
	Email        string     `json:"email,omitempty"`
	Country      string     `json:"country,omitempty"`
	UserID       string     `json:"userId"`
	OrderID      string     `json:"orderId"`
}

type actionHint struct {
	Type string `json:"type"`
}

// makePayment attaches a pending Nuvei payment to the shopper's cart and
// commits the cart into an order with a pending payment state. The hosted
// payment page settles the payment against that order afterwards.
func (h *handler) makePayment(c *gin.Context) {
	var req makePaymentRequest
	// The body is optional; amount and order number have defaults.
	_ = c.ShouldBindJSON(&req)

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

	payment := domain.Payment{
		Provider:      domain.PaymentProviderNuvei,
		InterfaceID:   req.InterfaceID,
		Method:        req.Method,
		Debug:         req.Debug,
		Status:        domain.PaymentStatusPending,
		AmountPlanned: req.AmountPlanned,
	}
	// Each part of the planned amount defaults to the cart total on its own,
	// so an explicit amount survives a missing currency and vice versa.
	if payment.AmountPlanned.CentAmount == 0 {
		payment.AmountPlanned.CentAmount = crt.Sum.CentAmount
	}
	if payment.AmountPlanned.CurrencyCode == "" {
		payment.AmountPlanned.CurrencyCode = crt.Sum.CurrencyCode
	}

	crt, err = svc.AddPayment(ctx, crt, payment, sess.AnonymousID, sess.AccountID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	orderNumber := req.OrderNumber
	if orderNumber == "" {
		orderNumber = ulid.Make().String()
	}
	order, err := svc.Order(ctx, crt, orderNumber, domain.PaymentStatePending)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	sess.CartID = ""

	resp := makePaymentResponse{
		Action:     actionHint{Type: "nuveiSimplyConnect"},
		ResultCode: "ChallengeShopper",
		CentAmount: payment.AmountPlanned.CentAmount,
		Currency:   payment.AmountPlanned.CurrencyCode,
		Email:      order.Email,
		UserID:     sess.AnonymousID,
		OrderID:    order.ID,
	}
	if resp.UserID == "" {
		resp.UserID = sess.AccountID
	}
	if order.BillingAddress != nil {
		resp.Country = order.BillingAddress.Country
	}
	for _, p := range order.Payments {
		if p.Nuvei != nil && p.Nuvei.SessionToken != "" {
			resp.SessionToken = p.Nuvei.SessionToken
			break
		}
	}

	c.IndentedJSON(http.StatusOK, resp)
}

// updatePayment writes the provider's result back onto the payment attached
// to the shopper's cart. Unchanged fields issue no remote call.
func (h *handler) updatePayment(c *gin.Context) {
	var req struct {
		PaymentID   string `json:"id" binding:"required"`
		Status      string `json:"paymentStatus"`
		Debug       string `json:"debug"`
		InterfaceID string `json:"paymentId"`
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
	ctx := c.Request.Context()
	crt, err := h.resolveCart(ctx, svc, sess)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	payment, err := svc.UpdatePayment(ctx, crt, domain.Payment{
		ID:          req.PaymentID,
		Status:      req.Status,
		Debug:       req.Debug,
		InterfaceID: req.InterfaceID,
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, payment)
}

// updateOrderPayment adjusts a payment that already lives on an order, e.g.
// when the provider settles with a different method or amount.
func (h *handler) updateOrderPayment(c *gin.Context) {
	var req struct {
		PaymentID  string `json:"paymentId" binding:"required"`
		Version    int    `json:"paymentVersion"`
		Method     string `json:"paymentMethod"`
		Status     string `json:"paymentStatus"`
		CentAmount int64  `json:"centAmount"`
		Currency   string `json:"currency"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	svc, _, err := h.cartService(c)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	payment, err := svc.UpdateOrderPayment(c.Request.Context(), req.PaymentID, domain.Payment{
		Method:  req.Method,
		Status:  req.Status,
		Version: req.Version,
		AmountPlanned: domain.Money{
			CentAmount:   req.CentAmount,
			CurrencyCode: req.Currency,
		},
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, payment)
}

// updateOrder finalizes an order after the provider's verdict: order state,
// payment state and late payment attachments in one update.
func (h *handler) updateOrder(c *gin.Context) {
	var req struct {
		OrderNumber  string   `json:"orderNumber" binding:"required"`
		OrderState   string   `json:"orderState"`
		PaymentState string   `json:"paymentState"`
		PaymentIDs   []string `json:"paymentIds"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	svc, _, err := h.cartService(c)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	order, err := svc.UpdateOrderByNumber(c.Request.Context(), req.OrderNumber, cart.OrderPatch{
		OrderState:   req.OrderState,
		PaymentState: req.PaymentState,
		PaymentIDs:   req.PaymentIDs,
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *handler) getPayment(c *gin.Context) {
	var req struct {
		PaymentID string `json:"paymentId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	svc, _, err := h.cartService(c)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	payment, err := svc.GetPayment(c.Request.Context(), req.PaymentID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, payment)
}

// getSettings hands the static widget configuration to the frontend.
func (h *handler) getSettings(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, gin.H{
		"nuveiEnv":                h.cfg.Nuvei.Env,
		"nuveiMerchantId":         h.cfg.Nuvei.MerchantID,
		"nuveiMerchantSiteId":     h.cfg.Nuvei.MerchantSiteID,
		"nuveiGoogleMerchantId":   h.cfg.Nuvei.GoogleMerchantID,
		"nuveiPaymentMethodLabel": h.cfg.Nuvei.PaymentMethodLabel,
	})
}
