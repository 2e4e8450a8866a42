// Package cart implements the cart, checkout and payment workflows on top of
// the remote commercetools project: find-or-create resolution, locale
// reconciliation, single-action mutations, payment attachment and the
// cart-to-order commit.
package cart

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	ct "github.com/Nuvei/nuvei-plugin-commerce-tools/internal/commercetools"
	"github.com/Nuvei/nuvei-plugin-commerce-tools/internal/domain"
	"github.com/Nuvei/nuvei-plugin-commerce-tools/internal/ledger"
)

// nuveiPaymentTypeKey marks payments that carry the Nuvei custom fields, e.g.
// the hosted-session token slot filled out of band by the payment
// integration.
const nuveiPaymentTypeKey = "commercetools-nuvei-payment-type"

// inventoryModeReserveOnOrder is set on every cart this extension creates.
const inventoryModeReserveOnOrder = "ReserveOnOrder"

type commerceClient interface {
	QueryCarts(ctx context.Context, where []string, sort string, limit int) (*ct.CartPage, error)
	CreateCart(ctx context.Context, draft ct.CartDraft) (*ct.Cart, error)
	GetCart(ctx context.Context, id string) (*ct.Cart, error)
	UpdateCart(ctx context.Context, id string, update ct.CartUpdate) (*ct.Cart, error)
	DeleteCart(ctx context.Context, id string, version int) error
	ReplicateCart(ctx context.Context, orderID string) (*ct.Cart, error)
	CreateOrderFromCart(ctx context.Context, draft ct.OrderFromCartDraft) (*ct.Order, error)
	GetOrderByNumber(ctx context.Context, orderNumber string) (*ct.Order, error)
	UpdateOrderByNumber(ctx context.Context, orderNumber string, update ct.OrderUpdate) (*ct.Order, error)
	QueryOrders(ctx context.Context, where []string, sort []string, limit, offset int) (*ct.OrderPage, error)
	CreatePayment(ctx context.Context, draft ct.PaymentDraft) (*ct.Payment, error)
	GetPayment(ctx context.Context, id string) (*ct.Payment, error)
	UpdatePayment(ctx context.Context, id string, update ct.PaymentUpdate) (*ct.Payment, error)
	UpdatePaymentByKey(ctx context.Context, key string, update ct.PaymentUpdate) (*ct.Payment, error)
	ShippingMethodsMatchingCart(ctx context.Context, cartID string) ([]ct.ShippingMethod, error)
	ShippingMethods(ctx context.Context, country string) ([]ct.ShippingMethod, error)
	AnonymousToken(ctx context.Context, anonymousID string) (domain.Token, error)
	RefreshToken(ctx context.Context, refreshToken string) (domain.Token, error)
}

// Session is the per-shopper state the workflows read and rotate.
type Session interface {
	AnonymousIdentifier() string
	RotateAnonymousID() string
	Token() domain.Token
	SetToken(domain.Token)
	InvalidateToken()
}

type paymentLedger interface {
	RecordCreated(ctx context.Context, e ledger.Entry) error
	MarkLinked(ctx context.Context, paymentID string) error
}

// Service runs the cart workflows for one request, bound to the locale
// resolved for that request. It holds no state shared across requests.
type Service struct {
	client  commerceClient
	locale  domain.Locale
	session Session
	ledger  paymentLedger
	logger  *log.Logger
}

// New builds a request-scoped Service. led may be nil when no ledger database
// is configured.
func New(client commerceClient, loc domain.Locale, sess Session, led paymentLedger, logger *log.Logger) *Service {
	return &Service{
		client:  client,
		locale:  loc,
		session: sess,
		ledger:  led,
		logger:  logger,
	}
}

// GetForAccount returns the account's active cart, reconciled against the
// resolved locale, creating one when none exists.
func (s *Service) GetForAccount(ctx context.Context, account domain.Account) (*domain.Cart, error) {
	where := []string{
		fmt.Sprintf("customerId=%q", account.AccountID),
		`cartState="Active"`,
	}
	page, err := s.client.QueryCarts(ctx, where, "lastModifiedAt desc", 1)
	if err != nil {
		return nil, err
	}
	if page.Count >= 1 {
		return s.buildCartWithAvailableShippingMethods(ctx, &page.Results[0])
	}

	created, err := s.client.CreateCart(ctx, ct.CartDraft{
		Currency:      s.locale.Currency,
		Country:       s.locale.Country,
		Locale:        s.locale.Language,
		CustomerID:    account.AccountID,
		InventoryMode: inventoryModeReserveOnOrder,
	})
	if err != nil {
		return nil, err
	}
	return s.buildCartWithAvailableShippingMethods(ctx, created)
}

// GetAnonymous returns the active cart of the current anonymous session. When
// none exists the anonymous identity is rotated, a fresh checkout token is
// issued for the new identifier, and a new cart is created under it.
func (s *Service) GetAnonymous(ctx context.Context) (*domain.Cart, error) {
	if s.session == nil {
		return nil, errors.New("cart: anonymous resolution requires a session")
	}

	where := []string{
		fmt.Sprintf("anonymousId=%q", s.session.AnonymousIdentifier()),
		`cartState="Active"`,
	}
	page, err := s.client.QueryCarts(ctx, where, "createdAt desc", 1)
	if err != nil {
		return nil, err
	}
	if page.Count >= 1 {
		return s.buildCartWithAvailableShippingMethods(ctx, &page.Results[0])
	}

	// No cart under this anonymous id: the identity cannot be trusted, so
	// rotate it before creating any state, and get a checkout token for the
	// new identifier first.
	anonymousID := s.session.RotateAnonymousID()

	token, err := s.client.AnonymousToken(ctx, anonymousID)
	if err != nil {
		return nil, err
	}
	s.session.SetToken(token)

	created, err := s.client.CreateCart(ctx, ct.CartDraft{
		Currency:      s.locale.Currency,
		Country:       s.locale.Country,
		Locale:        s.locale.Language,
		AnonymousID:   anonymousID,
		InventoryMode: inventoryModeReserveOnOrder,
	})
	if err != nil {
		return nil, err
	}
	return s.buildCartWithAvailableShippingMethods(ctx, created)
}

// GetActiveByID fetches a cart by id and rejects carts in a terminal state.
func (s *Service) GetActiveByID(ctx context.Context, cartID string) (*domain.Cart, error) {
	fetched, err := s.client.GetCart(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if fetched.CartState != domain.CartStateActive {
		return nil, &domain.CartNotActiveError{Message: fmt.Sprintf("cart %s is not active", cartID)}
	}
	return s.buildCartWithAvailableShippingMethods(ctx, fetched)
}

// ReplicateCart creates a fresh cart from a previous order.
func (s *Service) ReplicateCart(ctx context.Context, orderID string) (*domain.Cart, error) {
	replicated, err := s.client.ReplicateCart(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return s.buildCartWithAvailableShippingMethods(ctx, replicated)
}

// Mutations. Each issues exactly one update call carrying the version from
// the caller-supplied cart snapshot; a stale version surfaces as a retryable
// conflict, never a hidden retry.

func (s *Service) AddLineItem(ctx context.Context, cart *domain.Cart, sku string, quantity int) (*domain.Cart, error) {
	return s.applyAction(ctx, cart, ct.CartAction{
		Action:   "addLineItem",
		SKU:      sku,
		Quantity: quantity,
	})
}

func (s *Service) ChangeLineItemQuantity(ctx context.Context, cart *domain.Cart, lineItemID string, quantity int) (*domain.Cart, error) {
	return s.applyAction(ctx, cart, ct.CartAction{
		Action:     "changeLineItemQuantity",
		LineItemID: lineItemID,
		Quantity:   quantity,
	})
}

func (s *Service) RemoveLineItem(ctx context.Context, cart *domain.Cart, lineItemID string) (*domain.Cart, error) {
	return s.applyAction(ctx, cart, ct.CartAction{
		Action:     "removeLineItem",
		LineItemID: lineItemID,
	})
}

func (s *Service) SetEmail(ctx context.Context, cart *domain.Cart, email string) (*domain.Cart, error) {
	return s.applyAction(ctx, cart, ct.CartAction{
		Action: "setCustomerEmail",
		Email:  email,
	})
}

func (s *Service) SetShippingAddress(ctx context.Context, cart *domain.Cart, address domain.Address) (*domain.Cart, error) {
	return s.applyAction(ctx, cart, ct.CartAction{
		Action:  "setShippingAddress",
		Address: addressToCT(&address),
	})
}

func (s *Service) SetBillingAddress(ctx context.Context, cart *domain.Cart, address domain.Address) (*domain.Cart, error) {
	return s.applyAction(ctx, cart, ct.CartAction{
		Action:  "setBillingAddress",
		Address: addressToCT(&address),
	})
}

func (s *Service) SetShippingMethod(ctx context.Context, cart *domain.Cart, shippingMethodID string) (*domain.Cart, error) {
	return s.applyAction(ctx, cart, ct.CartAction{
		Action:         "setShippingMethod",
		ShippingMethod: &ct.Ref{TypeID: "shipping-method", ID: shippingMethodID},
	})
}

// RedeemDiscountCode adds a discount code to the cart. An external failure on
// this one call site is reclassified into a redeem-specific error carrying
// the remote error code; everything else passes through unchanged.
func (s *Service) RedeemDiscountCode(ctx context.Context, cart *domain.Cart, code string) (*domain.Cart, error) {
	updated, err := s.updateCart(ctx, cart.ID, ct.CartUpdate{
		Version: cart.Version,
		Actions: []ct.CartAction{{Action: "addDiscountCode", Code: code}},
	})
	if err != nil {
		var extErr *domain.ExternalError
		if errors.As(err, &extErr) {
			return nil, &domain.RedeemDiscountCodeError{
				Message:    fmt.Sprintf("redeem discount code %q failed: %s", code, extErr.Message),
				StatusCode: extErr.StatusCode,
				ErrorCode:  extErr.ErrorCode,
			}
		}
		return nil, err
	}
	return s.buildCartWithAvailableShippingMethods(ctx, updated)
}

func (s *Service) RemoveDiscountCode(ctx context.Context, cart *domain.Cart, discountID string) (*domain.Cart, error) {
	return s.applyAction(ctx, cart, ct.CartAction{
		Action:       "removeDiscountCode",
		DiscountCode: &ct.Ref{TypeID: "discount-code", ID: discountID},
	})
}

// AddPayment creates a remote payment record and links it to the cart. The
// two steps are not transactional: a payment created but not linked stays
// visible in the ledger for operator reconciliation.
func (s *Service) AddPayment(ctx context.Context, cart *domain.Cart, payment domain.Payment, anonymousID, accountID string) (*domain.Cart, error) {
	key := payment.ID
	if key == "" {
		key = uuid.NewString()
	}

	draft := ct.PaymentDraft{
		Key:         key,
		InterfaceID: payment.InterfaceID,
		AmountPlanned: ct.Money{
			CentAmount:   payment.AmountPlanned.CentAmount,
			CurrencyCode: payment.AmountPlanned.CurrencyCode,
		},
		PaymentMethodInfo: ct.PaymentMethodInfo{
			PaymentInterface: payment.Provider,
			Method:           payment.Method,
		},
		PaymentStatus: ct.PaymentStatus{
			InterfaceCode: payment.Status,
			InterfaceText: payment.Debug,
		},
		AnonymousID: anonymousID,
	}
	if accountID != "" {
		draft.Customer = &ct.Ref{TypeID: "customer", ID: accountID}
	}
	if payment.Provider == domain.PaymentProviderNuvei {
		draft.Custom = &ct.CustomFields{
			Type: ct.Ref{TypeID: "type", Key: nuveiPaymentTypeKey},
		}
	}

	created, err := s.client.CreatePayment(ctx, draft)
	if err != nil {
		return nil, err
	}

	if s.ledger != nil {
		entry := ledger.Entry{
			PaymentID:  created.ID,
			CartID:     cart.ID,
			Provider:   payment.Provider,
			CentAmount: created.AmountPlanned.CentAmount,
			Currency:   created.AmountPlanned.CurrencyCode,
		}
		if err := s.ledger.RecordCreated(ctx, entry); err != nil {
			s.logger.Printf("ledger: record payment %s: %v", created.ID, err)
		}
	}

	updated, err := s.updateCart(ctx, cart.ID, ct.CartUpdate{
		Version: cart.Version,
		Actions: []ct.CartAction{{
			Action:  "addPayment",
			Payment: &ct.Ref{TypeID: "payment", ID: created.ID},
		}},
	})
	if err != nil {
		return nil, err
	}

	if s.ledger != nil {
		if err := s.ledger.MarkLinked(ctx, created.ID); err != nil {
			s.logger.Printf("ledger: mark payment %s linked: %v", created.ID, err)
		}
	}
	return s.buildCartWithAvailableShippingMethods(ctx, updated)
}

// UpdatePayment applies the changed fields of payment to the matching remote
// payment record. With nothing to change it returns the input unchanged and
// performs zero remote calls.
func (s *Service) UpdatePayment(ctx context.Context, cart *domain.Cart, payment domain.Payment) (*domain.Payment, error) {
	var original *domain.Payment
	for i := range cart.Payments {
		if cart.Payments[i].ID == payment.ID {
			original = &cart.Payments[i]
			break
		}
	}
	if original == nil {
		return nil, &domain.CartPaymentNotFoundError{
			Message: fmt.Sprintf("payment %s not found in cart %s", payment.ID, cart.ID),
		}
	}

	var actions []ct.PaymentAction
	if payment.Status != "" && payment.Status != original.Status {
		actions = append(actions, ct.PaymentAction{
			Action:        "setStatusInterfaceCode",
			InterfaceCode: payment.Status,
		})
	}
	if payment.Debug != "" && payment.Debug != original.Debug {
		actions = append(actions, ct.PaymentAction{
			Action:        "setStatusInterfaceText",
			InterfaceText: payment.Debug,
		})
	}
	if payment.InterfaceID != "" && payment.InterfaceID != original.InterfaceID {
		actions = append(actions, ct.PaymentAction{
			Action:      "setInterfaceId",
			InterfaceID: payment.InterfaceID,
		})
	}

	// Nothing changed: skip the call entirely, a no-op update would only
	// bump the remote version.
	if len(actions) == 0 {
		return &payment, nil
	}

	updated, err := s.client.UpdatePaymentByKey(ctx, original.ID, ct.PaymentUpdate{
		Version: original.Version,
		Actions: actions,
	})
	if err != nil {
		return nil, err
	}
	mapped := paymentFromCT(updated)
	return &mapped, nil
}

// UpdateOrderPayment updates method, planned amount and status of a payment
// by its id.
func (s *Service) UpdateOrderPayment(ctx context.Context, paymentID string, payment domain.Payment) (*domain.Payment, error) {
	var actions []ct.PaymentAction
	if payment.Method != "" {
		actions = append(actions, ct.PaymentAction{
			Action: "setMethodInfoMethod",
			Method: payment.Method,
		})
	}
	if payment.AmountPlanned.CurrencyCode != "" {
		actions = append(actions, ct.PaymentAction{
			Action: "changeAmountPlanned",
			Amount: &ct.Money{
				CentAmount:   payment.AmountPlanned.CentAmount,
				CurrencyCode: payment.AmountPlanned.CurrencyCode,
			},
		})
	}
	if payment.Status != "" {
		actions = append(actions, ct.PaymentAction{
			Action:        "setStatusInterfaceCode",
			InterfaceCode: payment.Status,
		})
	}
	if len(actions) == 0 {
		return &payment, nil
	}

	updated, err := s.client.UpdatePayment(ctx, paymentID, ct.PaymentUpdate{
		Version: payment.Version,
		Actions: actions,
	})
	if err != nil {
		return nil, err
	}
	mapped := paymentFromCT(updated)
	return &mapped, nil
}

func (s *Service) GetPayment(ctx context.Context, paymentID string) (*domain.Payment, error) {
	fetched, err := s.client.GetPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	mapped := paymentFromCT(fetched)
	return &mapped, nil
}

// Order commits the cart into an order. The readiness precondition is checked
// before any remote call; an incomplete cart fails with zero side effects.
func (s *Service) Order(ctx context.Context, cart *domain.Cart, orderNumber, paymentState string) (*domain.Order, error) {
	if !isReadyForCheckout(cart) {
		return nil, &domain.CartNotCompleteError{Message: "cart not complete yet"}
	}

	created, err := s.client.CreateOrderFromCart(ctx, ct.OrderFromCartDraft{
		ID:           cart.ID,
		Version:      cart.Version,
		OrderNumber:  orderNumber,
		PaymentState: paymentState,
	})
	if err != nil {
		return nil, err
	}
	mapped := orderFromCT(created, s.locale)
	return &mapped, nil
}

// OrderPatch carries the order-level changes applied in one combined update.
type OrderPatch struct {
	OrderState   string
	PaymentState string
	PaymentIDs   []string
}

// UpdateOrderByNumber fetches the order for its current version and applies
// state, payment-state and payment attachments as individual actions of one
// update call.
func (s *Service) UpdateOrderByNumber(ctx context.Context, orderNumber string, patch OrderPatch) (*domain.Order, error) {
	current, err := s.client.GetOrderByNumber(ctx, orderNumber)
	if err != nil {
		return nil, err
	}

	var actions []ct.OrderAction
	if patch.OrderState != "" {
		actions = append(actions, ct.OrderAction{
			Action:     "changeOrderState",
			OrderState: patch.OrderState,
		})
	}
	for _, paymentID := range patch.PaymentIDs {
		actions = append(actions, ct.OrderAction{
			Action:  "addPayment",
			Payment: &ct.Ref{TypeID: "payment", ID: paymentID},
		})
	}
	if patch.PaymentState != "" {
		actions = append(actions, ct.OrderAction{
			Action:       "changePaymentState",
			PaymentState: patch.PaymentState,
		})
	}

	updated, err := s.client.UpdateOrderByNumber(ctx, orderNumber, ct.OrderUpdate{
		Version: current.Version,
		Actions: actions,
	})
	if err != nil {
		return nil, err
	}
	mapped := orderFromCT(updated, s.locale)
	return &mapped, nil
}

// GetOrders returns the account's order history, newest first.
func (s *Service) GetOrders(ctx context.Context, account domain.Account) ([]domain.Order, error) {
	where := []string{fmt.Sprintf("customerId=%q", account.AccountID)}
	page, err := s.client.QueryOrders(ctx, where, []string{"createdAt desc"}, 0, 0)
	if err != nil {
		return nil, err
	}
	orders := make([]domain.Order, 0, len(page.Results))
	for i := range page.Results {
		orders = append(orders, orderFromCT(&page.Results[i], s.locale))
	}
	return orders, nil
}

// OrderQuery filters an order listing.
type OrderQuery struct {
	AccountID    string
	OrderIDs     []string
	OrderNumbers []string
	OrderStates  []string
	Sort         []string
	Limit        int
	Offset       int
}

// QueryOrders runs a filtered order query and reports the total match count
// alongside the page.
func (s *Service) QueryOrders(ctx context.Context, query OrderQuery) ([]domain.Order, int, error) {
	var where []string
	if query.AccountID != "" {
		where = append(where, fmt.Sprintf("customerId=%q", query.AccountID))
	}
	if len(query.OrderIDs) > 0 {
		where = append(where, fmt.Sprintf(`id in ("%s")`, strings.Join(query.OrderIDs, `","`)))
	}
	if len(query.OrderNumbers) > 0 {
		where = append(where, fmt.Sprintf(`orderNumber in ("%s")`, strings.Join(query.OrderNumbers, `","`)))
	}
	if len(query.OrderStates) > 0 {
		where = append(where, fmt.Sprintf(`orderState in ("%s")`, strings.Join(query.OrderStates, `","`)))
	}

	sort := query.Sort
	if len(sort) == 0 {
		sort = []string{"lastModifiedAt desc"}
	}

	page, err := s.client.QueryOrders(ctx, where, sort, query.Limit, query.Offset)
	if err != nil {
		return nil, 0, err
	}
	orders := make([]domain.Order, 0, len(page.Results))
	for i := range page.Results {
		orders = append(orders, orderFromCT(&page.Results[i], s.locale))
	}
	return orders, page.Total, nil
}

// GetShippingMethods lists shipping methods, optionally only those matching
// the resolved locale's country.
func (s *Service) GetShippingMethods(ctx context.Context, onlyMatching bool) ([]domain.ShippingMethod, error) {
	country := ""
	if onlyMatching {
		country = s.locale.Country
	}
	methods, err := s.client.ShippingMethods(ctx, country)
	if err != nil {
		return nil, err
	}
	return shippingMethodsFromCT(methods, s.locale), nil
}

// CheckoutToken returns a valid checkout token for the session, refreshing or
// reissuing as the lifecycle requires. An authenticated account whose token
// expired without a refresh token must re-authenticate; there is no silent
// recovery.
func (s *Service) CheckoutToken(ctx context.Context, cart *domain.Cart, account *domain.Account) (domain.Token, error) {
	if s.session == nil {
		return domain.Token{}, errors.New("cart: checkout token requires a session")
	}

	token := s.session.Token()
	if !token.Expired() {
		return token, nil
	}

	if token.RefreshToken != "" {
		refreshed, err := s.client.RefreshToken(ctx, token.RefreshToken)
		if err != nil {
			return domain.Token{}, err
		}
		s.session.SetToken(refreshed)
		return refreshed, nil
	}

	// Expired and not refreshable: drop the stale checkout state.
	s.session.InvalidateToken()

	if account != nil {
		return domain.Token{}, &domain.TokenError{
			Message: "the checkout token has expired and can not be refreshed, please login again",
		}
	}

	anonymousID := s.session.AnonymousIdentifier()
	token, err := s.client.AnonymousToken(ctx, anonymousID)
	if err != nil {
		return domain.Token{}, err
	}
	s.session.SetToken(token)

	// Bind the identifier the token was issued for to the cart.
	if _, err := s.updateCart(ctx, cart.ID, ct.CartUpdate{
		Version: cart.Version,
		Actions: []ct.CartAction{{Action: "setAnonymousId", AnonymousID: anonymousID}},
	}); err != nil {
		return domain.Token{}, err
	}
	return token, nil
}

// applyAction issues one single-action update and re-derives the available
// shipping methods on the result.
func (s *Service) applyAction(ctx context.Context, cart *domain.Cart, action ct.CartAction) (*domain.Cart, error) {
	updated, err := s.updateCart(ctx, cart.ID, ct.CartUpdate{
		Version: cart.Version,
		Actions: []ct.CartAction{action},
	})
	if err != nil {
		return nil, err
	}
	return s.buildCartWithAvailableShippingMethods(ctx, updated)
}

func (s *Service) updateCart(ctx context.Context, cartID string, update ct.CartUpdate) (*ct.Cart, error) {
	return s.client.UpdateCart(ctx, cartID, update)
}
