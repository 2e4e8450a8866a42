package domain

// Locale is the (language, country, currency) triple governing pricing and
// address defaults for a cart. It is resolved once per request and a cart's
// stored values must stay consistent with it.
type Locale struct {
	Language string
	Country  string
	Currency string
}
