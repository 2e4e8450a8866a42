package httpserver

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/Nuvei/nuvei-plugin-commerce-tools/internal/cart"
	"github.com/Nuvei/nuvei-plugin-commerce-tools/internal/commercetools"
	"github.com/Nuvei/nuvei-plugin-commerce-tools/internal/config"
	"github.com/Nuvei/nuvei-plugin-commerce-tools/internal/domain"
	"github.com/Nuvei/nuvei-plugin-commerce-tools/internal/ledger"
	"github.com/Nuvei/nuvei-plugin-commerce-tools/internal/locale"
	"github.com/Nuvei/nuvei-plugin-commerce-tools/internal/session"
)

const (
	sessionCookieName = "sessionId"
	sessionCookieAge  = 30 * 24 * time.Hour
	sessionContextKey = "session"
)

// Deps carries everything the action handlers need.
type Deps struct {
	Config   config.Config
	Redis    *redis.Client
	Sessions *session.Store
	Ledger   ledger.Repository
	DB       *pgxpool.Pool
}

// cartAPI is the slice of the cart workflows the handlers call. The concrete
// implementation is request-scoped because it is bound to a resolved locale.
type cartAPI interface {
	GetForAccount(ctx context.Context, account domain.Account) (*domain.Cart, error)
	GetAnonymous(ctx context.Context) (*domain.Cart, error)
	GetActiveByID(ctx context.Context, cartID string) (*domain.Cart, error)
	AddLineItem(ctx context.Context, cart *domain.Cart, sku string, quantity int) (*domain.Cart, error)
	ChangeLineItemQuantity(ctx context.Context, cart *domain.Cart, lineItemID string, quantity int) (*domain.Cart, error)
	RemoveLineItem(ctx context.Context, cart *domain.Cart, lineItemID string) (*domain.Cart, error)
	SetEmail(ctx context.Context, cart *domain.Cart, email string) (*domain.Cart, error)
	SetShippingAddress(ctx context.Context, cart *domain.Cart, address domain.Address) (*domain.Cart, error)
	SetBillingAddress(ctx context.Context, cart *domain.Cart, address domain.Address) (*domain.Cart, error)
	SetShippingMethod(ctx context.Context, cart *domain.Cart, shippingMethodID string) (*domain.Cart, error)
	RedeemDiscountCode(ctx context.Context, cart *domain.Cart, code string) (*domain.Cart, error)
	RemoveDiscountCode(ctx context.Context, cart *domain.Cart, discountID string) (*domain.Cart, error)
	ReplicateCart(ctx context.Context, orderID string) (*domain.Cart, error)
	AddPayment(ctx context.Context, cart *domain.Cart, payment domain.Payment, anonymousID, accountID string) (*domain.Cart, error)
	UpdatePayment(ctx context.Context, cart *domain.Cart, payment domain.Payment) (*domain.Payment, error)
	UpdateOrderPayment(ctx context.Context, paymentID string, payment domain.Payment) (*domain.Payment, error)
	GetPayment(ctx context.Context, paymentID string) (*domain.Payment, error)
	Order(ctx context.Context, cart *domain.Cart, orderNumber, paymentState string) (*domain.Order, error)
	UpdateOrderByNumber(ctx context.Context, orderNumber string, patch cart.OrderPatch) (*domain.Order, error)
	GetOrders(ctx context.Context, account domain.Account) ([]domain.Order, error)
	QueryOrders(ctx context.Context, query cart.OrderQuery) ([]domain.Order, int, error)
	GetShippingMethods(ctx context.Context, onlyMatching bool) ([]domain.ShippingMethod, error)
	CheckoutToken(ctx context.Context, cart *domain.Cart, account *domain.Account) (domain.Token, error)
}

type handler struct {
	cfg      config.Config
	sessions *session.Store
	locales  locale.Resolver
	logger   *log.Logger

	// newCart builds a request-scoped workflow service; replaced in tests.
	newCart func(loc domain.Locale, sess *session.Data) cartAPI
}

// buildRouter wires the storefront action routes.
func buildRouter(logger *log.Logger, deps Deps) (*gin.Engine, error) {
	client, err := commercetools.New(commercetools.Config{
		AuthURL:      deps.Config.Commercetools.AuthURL,
		APIURL:       deps.Config.Commercetools.APIURL,
		ProjectKey:   deps.Config.Commercetools.ProjectKey,
		ClientID:     deps.Config.Commercetools.ClientID,
		ClientSecret: deps.Config.Commercetools.ClientSecret,
	})
	if err != nil {
		return nil, err
	}

	h := &handler{
		cfg:      deps.Config,
		sessions: deps.Sessions,
		locales:  locale.NewResolver(deps.Config.DefaultLocale, deps.Config.DefaultCurrency),
		logger:   logger,
		newCart: func(loc domain.Locale, sess *session.Data) cartAPI {
			return cart.New(client, loc, sess, deps.Ledger, logger)
		},
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowAllOrigins:  true,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(deps.Redis, deps.DB))

	h.routes(router)
	return router, nil
}

func (h *handler) routes(router *gin.Engine) {
	actions := router.Group("/action", h.sessionMiddleware())

	cartGroup := actions.Group("/cart")
	cartGroup.POST("/getCart", h.getCart)
	cartGroup.POST("/addToCart", h.addToCart)
	cartGroup.POST("/updateLineItem", h.updateLineItem)
	cartGroup.POST("/removeLineItem", h.removeLineItem)
	cartGroup.POST("/setEmail", h.setEmail)
	cartGroup.POST("/setShippingAddress", h.setShippingAddress)
	cartGroup.POST("/setBillingAddress", h.setBillingAddress)
	cartGroup.POST("/setShippingMethod", h.setShippingMethod)
	cartGroup.POST("/redeemDiscountCode", h.redeemDiscountCode)
	cartGroup.POST("/removeDiscountCode", h.removeDiscountCode)
	cartGroup.POST("/getShippingMethods", h.getShippingMethods)
	cartGroup.POST("/getOrders", h.getOrders)
	cartGroup.POST("/queryOrders", h.queryOrders)
	cartGroup.POST("/replicateCart", h.replicateCart)
	cartGroup.POST("/getCheckoutToken", h.getCheckoutToken)
	cartGroup.POST("/checkout", h.checkout)

	nuveiGroup := actions.Group("/nuvei")
	nuveiGroup.POST("/makePayment", h.makePayment)
	nuveiGroup.POST("/updatePayment", h.updatePayment)
	nuveiGroup.POST("/updateOrderPayment", h.updateOrderPayment)
	nuveiGroup.POST("/updateOrder", h.updateOrder)
	nuveiGroup.POST("/getPayment", h.getPayment)
	nuveiGroup.POST("/getSettings", h.getSettings)
}

// sessionMiddleware loads the shopper session from the cookie, makes it
// available to the handlers and persists it after the handler ran. The cookie
// is set before the handler writes the response body.
func (h *handler) sessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _ := c.Cookie(sessionCookieName)

		var data *session.Data
		if id != "" {
			loaded, err := h.sessions.Get(c.Request.Context(), id)
			switch {
			case err == nil:
				data = loaded
			case errors.Is(err, session.ErrNotFound):
				// Expired or unknown id, start over under the same cookie.
			default:
				h.logger.Printf("session: load %s: %v", id, err)
			}
		}
		if id == "" {
			id = session.NewID()
		}
		if data == nil {
			data = &session.Data{}
		}

		c.SetCookie(sessionCookieName, id, int(sessionCookieAge.Seconds()), "/", "", false, true)
		c.Set(sessionContextKey, data)
		c.Next()

		if err := h.sessions.Save(c.Request.Context(), id, data); err != nil {
			h.logger.Printf("session: save %s: %v", id, err)
		}
	}
}

func currentSession(c *gin.Context) *session.Data {
	v, ok := c.Get(sessionContextKey)
	if !ok {
		return &session.Data{}
	}
	data, ok := v.(*session.Data)
	if !ok {
		return &session.Data{}
	}
	return data
}
