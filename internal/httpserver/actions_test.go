package httpserver

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/Nuvei/nuvei-plugin-commerce-tools/internal/cart"
	"github.com/Nuvei/nuvei-plugin-commerce-tools/internal/config"
	"github.com/Nuvei/nuvei-plugin-commerce-tools/internal/domain"
	"github.com/Nuvei/nuvei-plugin-commerce-tools/internal/locale"
	"github.com/Nuvei/nuvei-plugin-commerce-tools/internal/session"
)

type stubCartAPI struct {
	anonymousCart *domain.Cart
	accountCart   *domain.Cart
	activeCart    *domain.Cart
	activeErr     error
	lastCartID    string

	mutatedCart *domain.Cart
	mutateErr   error
	lastSKU     string
	lastCount   int

	paymentCart    *domain.Cart
	addPaymentErr  error
	gotPayment     domain.Payment
	gotAnonymousID string
	gotAccountID   string

	order           *domain.Order
	orderErr        error
	gotOrderNumber  string
	gotPaymentState string

	methods []domain.ShippingMethod
	orders  []domain.Order
	token   domain.Token
}

func (s *stubCartAPI) GetForAccount(_ context.Context, _ domain.Account) (*domain.Cart, error) {
	return s.accountCart, nil
}

func (s *stubCartAPI) GetAnonymous(_ context.Context) (*domain.Cart, error) {
	return s.anonymousCart, nil
}

func (s *stubCartAPI) GetActiveByID(_ context.Context, cartID string) (*domain.Cart, error) {
	s.lastCartID = cartID
	return s.activeCart, s.activeErr
}

func (s *stubCartAPI) AddLineItem(_ context.Context, _ *domain.Cart, sku string, quantity int) (*domain.Cart, error) {
	s.lastSKU = sku
	s.lastCount = quantity
	return s.mutatedCart, s.mutateErr
}

func (s *stubCartAPI) ChangeLineItemQuantity(_ context.Context, _ *domain.Cart, _ string, quantity int) (*domain.Cart, error) {
	s.lastCount = quantity
	return s.mutatedCart, s.mutateErr
}

func (s *stubCartAPI) RemoveLineItem(_ context.Context, _ *domain.Cart, _ string) (*domain.Cart, error) {
	return s.mutatedCart, s.mutateErr
}

func (s *stubCartAPI) SetEmail(_ context.Context, _ *domain.Cart, _ string) (*domain.Cart, error) {
	return s.mutatedCart, s.mutateErr
}

func (s *stubCartAPI) SetShippingAddress(_ context.Context, _ *domain.Cart, _ domain.Address) (*domain.Cart, error) {
	return s.mutatedCart, s.mutateErr
}

func (s *stubCartAPI) SetBillingAddress(_ context.Context, _ *domain.Cart, _ domain.Address) (*domain.Cart, error) {
	return s.mutatedCart, s.mutateErr
}

func (s *stubCartAPI) SetShippingMethod(_ context.Context, _ *domain.Cart, _ string) (*domain.Cart, error) {
	return s.mutatedCart, s.mutateErr
}

func (s *stubCartAPI) RedeemDiscountCode(_ context.Context, _ *domain.Cart, _ string) (*domain.Cart, error) {
	return s.mutatedCart, s.mutateErr
}

func (s *stubCartAPI) RemoveDiscountCode(_ context.Context, _ *domain.Cart, _ string) (*domain.Cart, error) {
	return s.mutatedCart, s.mutateErr
}

func (s *stubCartAPI) ReplicateCart(_ context.Context, _ string) (*domain.Cart, error) {
	return s.mutatedCart, s.mutateErr
}

func (s *stubCartAPI) AddPayment(_ context.Context, _ *domain.Cart, payment domain.Payment, anonymousID, accountID string) (*domain.Cart, error) {
	s.gotPayment = payment
	s.gotAnonymousID = anonymousID
	s.gotAccountID = accountID
	return s.paymentCart, s.addPaymentErr
}

func (s *stubCartAPI) UpdatePayment(_ context.Context, _ *domain.Cart, payment domain.Payment) (*domain.Payment, error) {
	return &payment, nil
}

func (s *stubCartAPI) UpdateOrderPayment(_ context.Context, _ string, payment domain.Payment) (*domain.Payment, error) {
	return &payment, nil
}

func (s *stubCartAPI) GetPayment(_ context.Context, paymentID string) (*domain.Payment, error) {
	return &domain.Payment{ID: paymentID}, nil
}

func (s *stubCartAPI) Order(_ context.Context, _ *domain.Cart, orderNumber, paymentState string) (*domain.Order, error) {
	s.gotOrderNumber = orderNumber
	s.gotPaymentState = paymentState
	return s.order, s.orderErr
}

func (s *stubCartAPI) UpdateOrderByNumber(_ context.Context, _ string, _ cart.OrderPatch) (*domain.Order, error) {
	return s.order, s.orderErr
}

func (s *stubCartAPI) GetOrders(_ context.Context, _ domain.Account) ([]domain.Order, error) {
	return s.orders, nil
}

func (s *stubCartAPI) QueryOrders(_ context.Context, _ cart.OrderQuery) ([]domain.Order, int, error) {
	return s.orders, len(s.orders), nil
}

func (s *stubCartAPI) GetShippingMethods(_ context.Context, _ bool) ([]domain.ShippingMethod, error) {
	return s.methods, nil
}

func (s *stubCartAPI) CheckoutToken(_ context.Context, _ *domain.Cart, _ *domain.Account) (domain.Token, error) {
	return s.token, nil
}

func newTestHandler(t *testing.T, api cartAPI) (*gin.Engine, *session.Store) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	store := session.NewStore(client)

	h := &handler{
		cfg: config.Config{
			DefaultLocale:   "en_US",
			DefaultCurrency: "USD",
			Nuvei: config.Nuvei{
				Env:                "int",
				MerchantID:         "m-1",
				MerchantSiteID:     "s-1",
				GoogleMerchantID:   "g-1",
				PaymentMethodLabel: "Pay with Nuvei",
			},
		},
		sessions: store,
		locales:  locale.NewResolver("en_US", "USD"),
		logger:   log.New(io.Discard, "", 0),
		newCart: func(_ domain.Locale, _ *session.Data) cartAPI {
			return api
		},
	}

	gin.SetMode(gin.TestMode)
	engine := gin.New()
	h.routes(engine)
	return engine, store
}

func seedSession(t *testing.T, store *session.Store, data *session.Data) string {
	t.Helper()
	id := session.NewID()
	if err := store.Save(context.Background(), id, data); err != nil {
		t.Fatalf("seed session: %v", err)
	}
	return id
}

func doAction(t *testing.T, engine *gin.Engine, path, sessionID, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if sessionID != "" {
		req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: sessionID})
	}
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func shopperCart() *domain.Cart {
	return &domain.Cart{
		ID:        "cart-1",
		Version:   3,
		State:     "Active",
		Currency:  "USD",
		Email:     "a@b.test",
		LineItems: []domain.LineItem{{ID: "li-1", SKU: "MUG-1", Quantity: 2}},
		Sum:       domain.Money{CentAmount: 2599, CurrencyCode: "USD"},
	}
}

func TestGetCartCreatesSessionCookie(t *testing.T) {
	api := &stubCartAPI{anonymousCart: shopperCart()}
	engine, store := newTestHandler(t, api)

	rec := doAction(t, engine, "/action/cart/getCart", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}

	var cookieID string
	for _, c := range rec.Result().Cookies() {
		if c.Name == sessionCookieName {
			cookieID = c.Value
		}
	}
	if cookieID == "" {
		t.Fatal("expected a session cookie")
	}

	saved, err := store.Get(context.Background(), cookieID)
	if err != nil {
		t.Fatalf("session not persisted: %v", err)
	}
	if saved.CartID != "cart-1" {
		t.Fatalf("cart id not sticky: %+v", saved)
	}
}

func TestGetCartPrefersStickyCartID(t *testing.T) {
	api := &stubCartAPI{activeCart: shopperCart()}
	engine, store := newTestHandler(t, api)
	sid := seedSession(t, store, &session.Data{CartID: "cart-1"})

	rec := doAction(t, engine, "/action/cart/getCart", sid, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	if api.lastCartID != "cart-1" {
		t.Fatalf("sticky cart not fetched by id: %q", api.lastCartID)
	}
}

func TestGetCartFallsBackWhenStickyCartOrdered(t *testing.T) {
	api := &stubCartAPI{
		activeErr:     &domain.CartNotActiveError{Message: "ordered"},
		anonymousCart: shopperCart(),
	}
	engine, store := newTestHandler(t, api)
	sid := seedSession(t, store, &session.Data{CartID: "cart-old"})

	rec := doAction(t, engine, "/action/cart/getCart", sid, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}

	saved, err := store.Get(context.Background(), sid)
	if err != nil {
		t.Fatalf("session load: %v", err)
	}
	if saved.CartID != "cart-1" {
		t.Fatalf("session not rebound to fresh cart: %+v", saved)
	}
}

func TestAddToCartDefaultsCountToOne(t *testing.T) {
	api := &stubCartAPI{anonymousCart: shopperCart(), mutatedCart: shopperCart()}
	engine, _ := newTestHandler(t, api)

	rec := doAction(t, engine, "/action/cart/addToCart", "", `{"sku":"MUG-1"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	if api.lastSKU != "MUG-1" || api.lastCount != 1 {
		t.Fatalf("unexpected add: %q x%d", api.lastSKU, api.lastCount)
	}
}

func TestAddToCartRequiresSKU(t *testing.T) {
	engine, _ := newTestHandler(t, &stubCartAPI{})

	rec := doAction(t, engine, "/action/cart/addToCart", "", `{"count":2}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", rec.Code)
	}
}

func TestCheckoutGeneratesOrderNumberAndUnsticksCart(t *testing.T) {
	api := &stubCartAPI{
		anonymousCart: shopperCart(),
		order:         &domain.Order{ID: "order-1", OrderNumber: "generated"},
	}
	engine, store := newTestHandler(t, api)
	sid := seedSession(t, store, &session.Data{AnonymousID: "anon-1"})

	rec := doAction(t, engine, "/action/cart/checkout", sid, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	if len(api.gotOrderNumber) != 26 {
		t.Fatalf("expected a generated ULID order number, got %q", api.gotOrderNumber)
	}

	saved, err := store.Get(context.Background(), sid)
	if err != nil {
		t.Fatalf("session load: %v", err)
	}
	if saved.CartID != "" {
		t.Fatalf("cart must unstick after checkout: %+v", saved)
	}
}

func TestCheckoutIncompleteCartMapsTo400(t *testing.T) {
	api := &stubCartAPI{
		anonymousCart: shopperCart(),
		orderErr:      &domain.CartNotCompleteError{Message: "cart not complete yet"},
	}
	engine, _ := newTestHandler(t, api)

	rec := doAction(t, engine, "/action/cart/checkout", "", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", rec.Code)
	}
}

func TestConflictMapsTo409(t *testing.T) {
	api := &stubCartAPI{
		anonymousCart: shopperCart(),
		mutateErr: &domain.ConcurrentModificationError{
			ExternalError:  domain.ExternalError{StatusCode: 409, Message: "version mismatch"},
			CurrentVersion: 9,
		},
	}
	engine, _ := newTestHandler(t, api)

	rec := doAction(t, engine, "/action/cart/setEmail", "", `{"email":"a@b.test"}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("status %d, want 409", rec.Code)
	}
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["currentVersion"] != float64(9) {
		t.Fatalf("current version missing: %v", body)
	}
}

func TestGetOrdersRequiresAccount(t *testing.T) {
	engine, _ := newTestHandler(t, &stubCartAPI{})

	rec := doAction(t, engine, "/action/cart/getOrders", "", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status %d, want 401", rec.Code)
	}
}

func TestMakePaymentDefaultsAmountFromCart(t *testing.T) {
	paidCart := shopperCart()
	paidCart.Payments = []domain.Payment{{
		ID:       "pay-1",
		Provider: "nuvei",
		Nuvei:    &domain.NuveiDetails{SessionToken: "tok-1"},
	}}
	api := &stubCartAPI{
		anonymousCart: shopperCart(),
		paymentCart:   paidCart,
		order: &domain.Order{
			ID:             "order-1",
			Email:          "a@b.test",
			BillingAddress: &domain.Address{Country: "US"},
			Payments:       paidCart.Payments,
		},
	}
	engine, store := newTestHandler(t, api)
	sid := seedSession(t, store, &session.Data{AnonymousID: "anon-1"})

	rec := doAction(t, engine, "/action/nuvei/makePayment", sid, `{"paymentMethod":"cc_card"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}

	if api.gotPayment.AmountPlanned.CentAmount != 2599 || api.gotPayment.AmountPlanned.CurrencyCode != "USD" {
		t.Fatalf("amount not defaulted from cart: %+v", api.gotPayment.AmountPlanned)
	}
	if api.gotPayment.Provider != "nuvei" || api.gotPayment.Status != "pending" {
		t.Fatalf("unexpected payment %+v", api.gotPayment)
	}
	if api.gotAnonymousID != "anon-1" {
		t.Fatalf("anonymous id not forwarded: %q", api.gotAnonymousID)
	}
	if api.gotPaymentState != "Pending" {
		t.Fatalf("order payment state %q, want Pending", api.gotPaymentState)
	}

	var resp makePaymentResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Action.Type != "nuveiSimplyConnect" || resp.ResultCode != "ChallengeShopper" {
		t.Fatalf("unexpected widget hint %+v", resp)
	}
	if resp.SessionToken != "tok-1" {
		t.Fatalf("session token missing: %+v", resp)
	}
	if resp.CentAmount != 2599 || resp.Currency != "USD" {
		t.Fatalf("unexpected amount %+v", resp)
	}
	if resp.Country != "US" || resp.Email != "a@b.test" {
		t.Fatalf("unexpected shopper detail %+v", resp)
	}
	if resp.UserID != "anon-1" || resp.OrderID != "order-1" {
		t.Fatalf("unexpected ids %+v", resp)
	}
}

func TestMakePaymentKeepsExplicitAmount(t *testing.T) {
	api := &stubCartAPI{
		anonymousCart: shopperCart(),
		paymentCart:   shopperCart(),
		order:         &domain.Order{ID: "order-1"},
	}
	engine, _ := newTestHandler(t, api)

	rec := doAction(t, engine, "/action/nuvei/makePayment", "", `{"amountPlanned":{"centAmount":500,"currencyCode":"EUR"}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	if api.gotPayment.AmountPlanned.CentAmount != 500 || api.gotPayment.AmountPlanned.CurrencyCode != "EUR" {
		t.Fatalf("explicit amount lost: %+v", api.gotPayment.AmountPlanned)
	}
}

func TestMakePaymentDefaultsAmountPartsIndependently(t *testing.T) {
	// An explicit cent amount without a currency keeps the amount and takes
	// the currency from the cart, and the other way round.
	api := &stubCartAPI{
		anonymousCart: shopperCart(),
		paymentCart:   shopperCart(),
		order:         &domain.Order{ID: "order-1"},
	}
	engine, _ := newTestHandler(t, api)

	rec := doAction(t, engine, "/action/nuvei/makePayment", "", `{"amountPlanned":{"centAmount":500}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	if api.gotPayment.AmountPlanned.CentAmount != 500 || api.gotPayment.AmountPlanned.CurrencyCode != "USD" {
		t.Fatalf("currency not defaulted from cart: %+v", api.gotPayment.AmountPlanned)
	}

	rec = doAction(t, engine, "/action/nuvei/makePayment", "", `{"amountPlanned":{"currencyCode":"EUR"}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	if api.gotPayment.AmountPlanned.CentAmount != 2599 || api.gotPayment.AmountPlanned.CurrencyCode != "EUR" {
		t.Fatalf("cent amount not defaulted from cart: %+v", api.gotPayment.AmountPlanned)
	}
}

func TestGetSettingsReturnsWidgetConfig(t *testing.T) {
	engine, _ := newTestHandler(t, &stubCartAPI{})

	rec := doAction(t, engine, "/action/nuvei/getSettings", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	want := map[string]string{
		"nuveiEnv":                "int",
		"nuveiMerchantId":         "m-1",
		"nuveiMerchantSiteId":     "s-1",
		"nuveiGoogleMerchantId":   "g-1",
		"nuveiPaymentMethodLabel": "Pay with Nuvei",
	}
	for k, v := range want {
		if body[k] != v {
			t.Fatalf("%s = %q, want %q", k, body[k], v)
		}
	}
}
