// Package ledger records every remote payment the attachment workflow
// creates. The workflow creates the payment first and links it to the cart
// second with no rollback in between, so a crash between the two steps leaves
// an orphaned payment on the platform. The ledger makes that state visible to
// an operator instead of invisible.
package ledger

import (
	"context"
	"time"
)

// Entry is one created payment and its link state.
type Entry struct {
	PaymentID  string
	CartID     string
	Provider   string
	CentAmount int64
	Currency   string
	Linked     bool
	CreatedAt  time.Time
	LinkedAt   *time.Time
}

type Repository interface {
	// RecordCreated stores the payment right after remote creation, before
	// the cart link is attempted.
	RecordCreated(ctx context.Context, e Entry) error
	// MarkLinked flips the entry once the addPayment cart update succeeded.
	MarkLinked(ctx context.Context, paymentID string) error
	// Orphans lists payments created before the cutoff that never got linked.
	Orphans(ctx context.Context, olderThan time.Duration) ([]Entry, error)
}
