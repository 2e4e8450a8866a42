package ledger

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) RecordCreated(ctx context.Context, e Entry) error {
	const q = `
INSERT INTO payment_ledger (payment_id, cart_id, provider, cent_amount, currency, linked)
VALUES ($1, $2, $3, $4, $5, false)
ON CONFLICT (payment_id) DO NOTHING
`
	_, err := r.pool.Exec(ctx, q, e.PaymentID, e.CartID, e.Provider, e.CentAmount, e.Currency)
	return err
}

func (r *postgresRepo) MarkLinked(ctx context.Context, paymentID string) error {
	const q = `
UPDATE payment_ledger
SET linked = true, linked_at = now()
WHERE payment_id = $1
`
	_, err := r.pool.Exec(ctx, q, paymentID)
	return err
}

func (r *postgresRepo) Orphans(ctx context.Context, olderThan time.Duration) ([]Entry, error) {
	const q = `
SELECT payment_id, cart_id, provider, cent_amount, currency, linked, created_at, linked_at
FROM payment_ledger
WHERE linked = false AND created_at < now() - $1::interval
ORDER BY created_at
`
	rows, err := r.pool.Query(ctx, q, olderThan.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.PaymentID, &e.CartID, &e.Provider, &e.CentAmount, &e.Currency, &e.Linked, &e.CreatedAt, &e.LinkedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
