package domain

// Account identifies a registered customer. Authentication happens upstream;
// this layer only reads the already-resolved identity.
type Account struct {
	AccountID string `json:"accountId"`
	Email     string `json:"email,omitempty"`
}
