package domain

import "time"

// Token is the checkout credential for an anonymous session. A zero Token is
// treated as expired.
type Token struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken,omitempty"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

func (t Token) Expired() bool {
	return t.AccessToken == "" || time.Now().After(t.ExpiresAt)
}
