package domain

// Cart is the storefront view of a remote commercetools cart. Version is the
// optimistic-concurrency counter of the remote record and must be carried on
// every mutating call.
type Cart struct {
	ID                       string           `json:"cartId"`
	Version                  int              `json:"cartVersion,string"`
	State                    string           `json:"-"`
	Currency                 string           `json:"currency"`
	Country                  string           `json:"country,omitempty"`
	Language                 string           `json:"locale,omitempty"`
	Email                    string           `json:"email,omitempty"`
	CustomerID               string           `json:"customerId,omitempty"`
	AnonymousID              string           `json:"-"`
	LineItems                []LineItem       `json:"lineItems"`
	ShippingAddress          *Address         `json:"shippingAddress,omitempty"`
	BillingAddress           *Address         `json:"billingAddress,omitempty"`
	ShippingMethod           *ShippingMethod  `json:"shippingMethod,omitempty"`
	AvailableShippingMethods []ShippingMethod `json:"availableShippingMethods,omitempty"`
	DiscountCodes            []Discount       `json:"discountCodes,omitempty"`
	Payments                 []Payment        `json:"payments,omitempty"`
	Sum                      Money            `json:"sum"`
}

// CartStateActive is the only lifecycle state that permits further mutation.
const CartStateActive = "Active"

type LineItem struct {
	ID         string `json:"lineItemId"`
	SKU        string `json:"sku"`
	Name       string `json:"name,omitempty"`
	Quantity   int    `json:"count"`
	Price      Money  `json:"price"`
	TotalPrice Money  `json:"totalPrice"`
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

type ShippingMethod struct {
	ID          string `json:"shippingMethodId"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	Price       Money  `json:"price"`
}

type Discount struct {
	ID    string `json:"discountId"`
	Code  string `json:"code,omitempty"`
	State string `json:"state,omitempty"`
}

// Money is an integer minor-unit amount, matching the commercetools
// centPrecision representation.
type Money struct {
	CentAmount   int64  `json:"centAmount"`
	CurrencyCode string `json:"currencyCode"`
}
