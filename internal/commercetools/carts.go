package commercetools

import (
	"context"
	"net/http"
	"strconv"
)

// QueryCarts runs a where-filtered cart query with the standard expansions.
func (c *Client) QueryCarts(ctx context.Context, where []string, sort string, limit int) (*CartPage, error) {
	q := expandQuery()
	for _, w := range where {
		q.Add("where", w)
	}
	if sort != "" {
		q.Set("sort", sort)
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}

	var page CartPage
	if err := c.do(ctx, http.MethodGet, "/carts", q, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) CreateCart(ctx context.Context, draft CartDraft) (*Cart, error) {
	var cart Cart
	if err := c.do(ctx, http.MethodPost, "/carts", expandQuery(), draft, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

func (c *Client) GetCart(ctx context.Context, id string) (*Cart, error) {
	var cart Cart
	if err := c.do(ctx, http.MethodGet, "/carts/"+id, expandQuery(), nil, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

// UpdateCart posts the update actions against the caller-supplied version. A
// stale version surfaces as a ConcurrentModificationError; no retry happens
// here.
func (c *Client) UpdateCart(ctx context.Context, id string, update CartUpdate) (*Cart, error) {
	var cart Cart
	if err := c.do(ctx, http.MethodPost, "/carts/"+id, expandQuery(), update, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

func (c *Client) DeleteCart(ctx context.Context, id string, version int) error {
	q := expandQuery()
	q.Set("version", strconv.Itoa(version))
	return c.do(ctx, http.MethodDelete, "/carts/"+id, q, nil, nil)
}

// ReplicateCart creates a new cart from an existing order.
func (c *Client) ReplicateCart(ctx context.Context, orderID string) (*Cart, error) {
	draft := ReplicaCartDraft{Reference: Ref{TypeID: "order", ID: orderID}}
	var cart Cart
	if err := c.do(ctx, http.MethodPost, "/carts/replicate", expandQuery(), draft, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}
