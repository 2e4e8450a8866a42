// Package session keeps the per-shopper state the extension needs across
// requests: the anonymous identifier, the checkout token and the sticky cart
// id. State lives in Redis keyed by the session id cookie.
package session

import (
	"github.com/google/uuid"

	"github.com/Nuvei/nuvei-plugin-commerce-tools/internal/domain"
)

// Data is one shopper session. AccountID is set by the upstream auth layer
// when the shopper is logged in; AnonymousID otherwise.
type Data struct {
	AnonymousID   string        `json:"anonymousId,omitempty"`
	AccountID     string        `json:"accountId,omitempty"`
	Email         string        `json:"email,omitempty"`
	CartID        string        `json:"cartId,omitempty"`
	CheckoutToken *domain.Token `json:"checkoutToken,omitempty"`
}

// AnonymousIdentifier returns the current anonymous id, minting one on first
// use.
func (d *Data) AnonymousIdentifier() string {
	if d.AnonymousID == "" {
		d.AnonymousID = uuid.NewString()
	}
	return d.AnonymousID
}

// RotateAnonymousID discards the current anonymous identity and everything
// bound to it. A missing cart under an anonymous id means the identity cannot
// be trusted, so a fresh one is issued before any new state is created.
func (d *Data) RotateAnonymousID() string {
	d.AnonymousID = uuid.NewString()
	d.CheckoutToken = nil
	d.CartID = ""
	return d.AnonymousID
}

func (d *Data) Token() domain.Token {
	if d.CheckoutToken == nil {
		return domain.Token{}
	}
	return *d.CheckoutToken
}

func (d *Data) SetToken(tok domain.Token) {
	d.CheckoutToken = &tok
}

func (d *Data) InvalidateToken() {
	d.CheckoutToken = nil
}

// NewID mints a session identifier for the cookie.
func NewID() string {
	return uuid.NewString()
}
