package domain

import "fmt"

// ExternalError is any failure reported by the remote commerce platform. It is
// wrapped once at the client boundary and propagated unchanged, except where a
// call site explicitly reclassifies it.
type ExternalError struct {
	StatusCode int
	Message    string
	// ErrorCode is the first machine-readable code from the remote error body,
	// e.g. "DiscountCodeNonApplicable" or "ConcurrentModification".
	ErrorCode string
	Body      []byte
}

func (e *ExternalError) Error() string {
	return fmt.Sprintf("commercetools: %d %s", e.StatusCode, e.Message)
}

// ConcurrentModificationError signals an optimistic-concurrency conflict on a
// versioned remote resource. It is retryable by the caller; this layer never
// retries on its own.
type ConcurrentModificationError struct {
	ExternalError
	CurrentVersion int
}

// CartNotCompleteError is raised by the checkout commit precondition before
// any remote call is issued.
type CartNotCompleteError struct {
	Message string
}

func (e *CartNotCompleteError) Error() string { return e.Message }

// CartNotActiveError is raised when a cart fetched by id is in a terminal
// lifecycle state.
type CartNotActiveError struct {
	Message string
}

func (e *CartNotActiveError) Error() string { return e.Message }

// CartPaymentNotFoundError is raised when a payment update references a
// payment the cart does not carry.
type CartPaymentNotFoundError struct {
	Message string
}

func (e *CartPaymentNotFoundError) Error() string { return e.Message }

// RedeemDiscountCodeError reclassifies an external failure during discount
// code redemption, carrying the remote error code and original status.
type RedeemDiscountCodeError struct {
	Message    string
	StatusCode int
	ErrorCode  string
}

func (e *RedeemDiscountCodeError) Error() string { return e.Message }

// TokenError is raised when the checkout token of an authenticated account has
// expired and cannot be refreshed. There is no silent recovery for
// authenticated actors.
type TokenError struct {
	Message string
}

func (e *TokenError) Error() string { return e.Message }
