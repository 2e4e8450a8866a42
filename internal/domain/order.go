package domain

// Order states used by the order update workflow.
const (
	OrderStateOpen      = "Open"
	OrderStateConfirmed = "Confirmed"
	OrderStateComplete  = "Complete"
	OrderStateCancelled = "Cancelled"
)

// Payment states attached to an order.
const (
	PaymentStatePending = "Pending"
	PaymentStatePaid    = "Paid"
	PaymentStateFailed  = "Failed"
)

// Order is a frozen projection of a cart plus platform-assigned identifiers.
// It is independent of the cart after creation.
type Order struct {
	ID              string     `json:"orderId"`
	OrderNumber     string     `json:"orderNumber,omitempty"`
	Version         int        `json:"-"`
	OrderState      string     `json:"orderState,omitempty"`
	PaymentState    string     `json:"paymentState,omitempty"`
	Email           string     `json:"email,omitempty"`
	LineItems       []LineItem `json:"lineItems"`
	Payments        []Payment  `json:"payments,omitempty"`
	ShippingAddress *Address   `json:"shippingAddress,omitempty"`
	BillingAddress  *Address   `json:"billingAddress,omitempty"`
	Sum             Money      `json:"sum"`
}
