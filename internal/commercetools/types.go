// Package commercetools is a thin typed client for the commercetools HTTP
// API: carts, orders, payments, shipping methods and the OAuth token endpoint.
// Only the fields this extension reads or writes are declared; the rest of the
// vendor contract is passed through untouched.
package commercetools

import "encoding/json"

type Money struct {
	Type           string `json:"type,omitempty"`
	CurrencyCode   string `json:"currencyCode"`
	CentAmount     int64  `json:"centAmount"`
	FractionDigits int    `json:"fractionDigits,omitempty"`
}

type Ref struct {
	TypeID string `json:"typeId"`
	ID     string `json:"id,omitempty"`
	Key    string `json:"key,omitempty"`
}

type Address struct {
	FirstName    string `json:"firstName,omitempty"`
	LastName     string `json:"lastName,omitempty"`
	StreetName   string `json:"streetName,omitempty"`
	StreetNumber string `json:"streetNumber,omitempty"`
	PostalCode   string `json:"postalCode,omitempty"`
	City         string `json:"city,omitempty"`
	Country      string `json:"country,omitempty"`
	Phone        string `json:"phone,omitempty"`
}

type Cart struct {
	ID                               string            `json:"id"`
	Version                          int               `json:"version"`
	CartState                        string            `json:"cartState"`
	CustomerID                       string            `json:"customerId,omitempty"`
	CustomerEmail                    string            `json:"customerEmail,omitempty"`
	CustomerGroup                    *Ref              `json:"customerGroup,omitempty"`
	AnonymousID                      string            `json:"anonymousId,omitempty"`
	Store                            *Ref              `json:"store,omitempty"`
	Country                          string            `json:"country,omitempty"`
	Locale                           string            `json:"locale,omitempty"`
	LineItems                        []LineItem        `json:"lineItems"`
	TotalPrice                       Money             `json:"totalPrice"`
	ShippingAddress                  *Address          `json:"shippingAddress,omitempty"`
	BillingAddress                   *Address          `json:"billingAddress,omitempty"`
	ShippingInfo                     *ShippingInfo     `json:"shippingInfo,omitempty"`
	DiscountCodes                    []DiscountCode    `json:"discountCodes,omitempty"`
	PaymentInfo                      *PaymentInfo      `json:"paymentInfo,omitempty"`
	InventoryMode                    string            `json:"inventoryMode,omitempty"`
	TaxMode                          string            `json:"taxMode,omitempty"`
	TaxRoundingMode                  string            `json:"taxRoundingMode,omitempty"`
	TaxCalculationMode               string            `json:"taxCalculationMode,omitempty"`
	DeleteDaysAfterLastModification  int               `json:"deleteDaysAfterLastModification,omitempty"`
	Origin                           string            `json:"origin,omitempty"`
	ShippingRateInput                json.RawMessage   `json:"shippingRateInput,omitempty"`
	ExternalTaxRateForShippingMethod json.RawMessage   `json:"externalTaxRateForShippingMethod,omitempty"`
	ItemShippingAddresses            []json.RawMessage `json:"itemShippingAddresses,omitempty"`
}

type LineItem struct {
	ID         string            `json:"id"`
	ProductID  string            `json:"productId,omitempty"`
	Name       map[string]string `json:"name,omitempty"`
	Variant    Variant           `json:"variant"`
	Price      Price             `json:"price"`
	Quantity   int               `json:"quantity"`
	TotalPrice Money             `json:"totalPrice"`
}

type Variant struct {
	ID  int    `json:"id,omitempty"`
	SKU string `json:"sku"`
}

type Price struct {
	ID    string `json:"id,omitempty"`
	Value Money  `json:"value"`
}

type ShippingInfo struct {
	ShippingMethodName string `json:"shippingMethodName,omitempty"`
	Price              Money  `json:"price"`
	ShippingMethod     *Ref   `json:"shippingMethod,omitempty"`
}

type DiscountCode struct {
	DiscountCode DiscountCodeRef `json:"discountCode"`
	State        string          `json:"state,omitempty"`
}

// DiscountCodeRef is a reference that carries the expanded discount code
// object when the request asked for expansion.
type DiscountCodeRef struct {
	TypeID string            `json:"typeId"`
	ID     string            `json:"id"`
	Obj    *DiscountCodeBody `json:"obj,omitempty"`
}

type DiscountCodeBody struct {
	ID   string `json:"id"`
	Code string `json:"code"`
}

type PaymentInfo struct {
	Payments []PaymentRef `json:"payments"`
}

type PaymentRef struct {
	TypeID string   `json:"typeId"`
	ID     string   `json:"id"`
	Obj    *Payment `json:"obj,omitempty"`
}

type Payment struct {
	ID                string            `json:"id"`
	Version           int               `json:"version"`
	Key               string            `json:"key,omitempty"`
	InterfaceID       string            `json:"interfaceId,omitempty"`
	AmountPlanned     Money             `json:"amountPlanned"`
	PaymentMethodInfo PaymentMethodInfo `json:"paymentMethodInfo"`
	PaymentStatus     PaymentStatus     `json:"paymentStatus"`
	Customer          *Ref              `json:"customer,omitempty"`
	AnonymousID       string            `json:"anonymousId,omitempty"`
	Custom            *CustomFields     `json:"custom,omitempty"`
}

type PaymentMethodInfo struct {
	PaymentInterface string `json:"paymentInterface,omitempty"`
	Method           string `json:"method,omitempty"`
}

type PaymentStatus struct {
	InterfaceCode string `json:"interfaceCode,omitempty"`
	InterfaceText string `json:"interfaceText,omitempty"`
}

type CustomFields struct {
	Type   Ref                    `json:"type"`
	Fields map[string]interface{} `json:"fields,omitempty"`
}

type Order struct {
	ID              string       `json:"id"`
	Version         int          `json:"version"`
	OrderNumber     string       `json:"orderNumber,omitempty"`
	OrderState      string       `json:"orderState,omitempty"`
	PaymentState    string       `json:"paymentState,omitempty"`
	CustomerEmail   string       `json:"customerEmail,omitempty"`
	LineItems       []LineItem   `json:"lineItems"`
	TotalPrice      Money        `json:"totalPrice"`
	ShippingAddress *Address     `json:"shippingAddress,omitempty"`
	BillingAddress  *Address     `json:"billingAddress,omitempty"`
	PaymentInfo     *PaymentInfo `json:"paymentInfo,omitempty"`
}

type ShippingMethod struct {
	ID                   string            `json:"id"`
	Name                 string            `json:"name"`
	LocalizedDescription map[string]string `json:"localizedDescription,omitempty"`
	ZoneRates            []ZoneRate        `json:"zoneRates,omitempty"`
}

type ZoneRate struct {
	Zone          *Ref           `json:"zone,omitempty"`
	ShippingRates []ShippingRate `json:"shippingRates,omitempty"`
}

type ShippingRate struct {
	Price      Money `json:"price"`
	IsMatching bool  `json:"isMatching,omitempty"`
}

// Drafts and update envelopes.

type CartDraft struct {
	Currency                         string            `json:"currency"`
	Country                          string            `json:"country,omitempty"`
	Locale                           string            `json:"locale,omitempty"`
	CustomerID                       string            `json:"customerId,omitempty"`
	CustomerEmail                    string            `json:"customerEmail,omitempty"`
	CustomerGroup                    *Ref              `json:"customerGroup,omitempty"`
	AnonymousID                      string            `json:"anonymousId,omitempty"`
	Store                            *Ref              `json:"store,omitempty"`
	InventoryMode                    string            `json:"inventoryMode,omitempty"`
	TaxMode                          string            `json:"taxMode,omitempty"`
	TaxRoundingMode                  string            `json:"taxRoundingMode,omitempty"`
	TaxCalculationMode               string            `json:"taxCalculationMode,omitempty"`
	ShippingAddress                  *Address          `json:"shippingAddress,omitempty"`
	BillingAddress                   *Address          `json:"billingAddress,omitempty"`
	ShippingMethod                   *Ref              `json:"shippingMethod,omitempty"`
	DeleteDaysAfterLastModification  int               `json:"deleteDaysAfterLastModification,omitempty"`
	Origin                           string            `json:"origin,omitempty"`
	ShippingRateInput                json.RawMessage   `json:"shippingRateInput,omitempty"`
	ExternalTaxRateForShippingMethod json.RawMessage   `json:"externalTaxRateForShippingMethod,omitempty"`
	ItemShippingAddresses            []json.RawMessage `json:"itemShippingAddresses,omitempty"`
}

// CartAction is a single cart update action. The populated fields depend on
// the action name.
type CartAction struct {
	Action         string   `json:"action"`
	SKU            string   `json:"sku,omitempty"`
	LineItemID     string   `json:"lineItemId,omitempty"`
	Quantity       int      `json:"quantity,omitempty"`
	Email          string   `json:"email,omitempty"`
	Address        *Address `json:"address,omitempty"`
	ShippingMethod *Ref     `json:"shippingMethod,omitempty"`
	Payment        *Ref     `json:"payment,omitempty"`
	Code           string   `json:"code,omitempty"`
	DiscountCode   *Ref     `json:"discountCode,omitempty"`
	Country        string   `json:"country,omitempty"`
	Locale         string   `json:"locale,omitempty"`
	AnonymousID    string   `json:"anonymousId,omitempty"`
}

type CartUpdate struct {
	Version int          `json:"version"`
	Actions []CartAction `json:"actions"`
}

type PaymentDraft struct {
	Key               string            `json:"key,omitempty"`
	InterfaceID       string            `json:"interfaceId,omitempty"`
	AmountPlanned     Money             `json:"amountPlanned"`
	PaymentMethodInfo PaymentMethodInfo `json:"paymentMethodInfo"`
	PaymentStatus     PaymentStatus     `json:"paymentStatus"`
	Customer          *Ref              `json:"customer,omitempty"`
	AnonymousID       string            `json:"anonymousId,omitempty"`
	Custom            *CustomFields     `json:"custom,omitempty"`
}

type PaymentAction struct {
	Action        string `json:"action"`
	InterfaceCode string `json:"interfaceCode,omitempty"`
	InterfaceText string `json:"interfaceText,omitempty"`
	InterfaceID   string `json:"interfaceId,omitempty"`
	Method        string `json:"method,omitempty"`
	Amount        *Money `json:"amount,omitempty"`
}

type PaymentUpdate struct {
	Version int             `json:"version"`
	Actions []PaymentAction `json:"actions"`
}

type OrderFromCartDraft struct {
	ID           string `json:"id"`
	Version      int    `json:"version"`
	OrderNumber  string `json:"orderNumber,omitempty"`
	PaymentState string `json:"paymentState,omitempty"`
}

type OrderAction struct {
	Action       string `json:"action"`
	OrderState   string `json:"orderState,omitempty"`
	PaymentState string `json:"paymentState,omitempty"`
	Payment      *Ref   `json:"payment,omitempty"`
}

type OrderUpdate struct {
	Version int           `json:"version"`
	Actions []OrderAction `json:"actions"`
}

type ReplicaCartDraft struct {
	Reference Ref `json:"reference"`
}

// Paged query envelopes.

type CartPage struct {
	Count   int    `json:"count"`
	Total   int    `json:"total"`
	Offset  int    `json:"offset"`
	Results []Cart `json:"results"`
}

type OrderPage struct {
	Count   int     `json:"count"`
	Total   int     `json:"total"`
	Offset  int     `json:"offset"`
	Results []Order `json:"results"`
}

type ShippingMethodPage struct {
	Count   int              `json:"count"`
	Results []ShippingMethod `json:"results"`
}

// errorBody is the error envelope returned on non-2xx responses.
type errorBody struct {
	StatusCode int           `json:"statusCode"`
	Message    string        `json:"message"`
	Errors     []errorDetail `json:"errors,omitempty"`
}

type errorDetail struct {
	Code           string `json:"code"`
	Message        string `json:"message"`
	CurrentVersion int    `json:"currentVersion,omitempty"`
}
