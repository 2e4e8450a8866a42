package domain

// Payment providers known to this extension. Provider discriminates the
// variant-specific fields on Payment.
const (
	PaymentProviderNuvei = "nuvei"
)

// Payment statuses reported through the payment status interface code.
const (
	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
	PaymentStatusFailed  = "failed"
	PaymentStatusInit    = "init"
)

// Payment is an independently created remote resource referenced by a cart.
// ID is the payment key under which the record was created; InterfaceID is the
// transaction id assigned by the payment provider.
type Payment struct {
	ID            string `json:"id"`
	InterfaceID   string `json:"paymentId,omitempty"`
	Provider      string `json:"paymentProvider"`
	Method        string `json:"paymentMethod,omitempty"`
	AmountPlanned Money  `json:"amountPlanned"`
	Status        string `json:"paymentStatus,omitempty"`
	Debug         string `json:"debug,omitempty"`
	Version       int    `json:"-"`

	// Nuvei is set iff Provider == PaymentProviderNuvei.
	Nuvei *NuveiDetails `json:"nuvei,omitempty"`
}

// NuveiDetails carries the provider-specific custom fields exchanged with the
// hosted payment page.
type NuveiDetails struct {
	SessionToken string `json:"sessionToken,omitempty"`
}
