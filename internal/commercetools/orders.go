package commercetools

import (
	"context"
	"net/http"
	"strconv"
)

// CreateOrderFromCart converts a cart into an order. Idempotency on the order
// number is the platform's concern, not this client's.
func (c *Client) CreateOrderFromCart(ctx context.Context, draft OrderFromCartDraft) (*Order, error) {
	var order Order
	if err := c.do(ctx, http.MethodPost, "/orders", expandQuery(), draft, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *Client) GetOrderByNumber(ctx context.Context, orderNumber string) (*Order, error) {
	var order Order
	if err := c.do(ctx, http.MethodGet, "/orders/order-number="+orderNumber, nil, nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *Client) UpdateOrderByNumber(ctx context.Context, orderNumber string, update OrderUpdate) (*Order, error) {
	var order Order
	if err := c.do(ctx, http.MethodPost, "/orders/order-number="+orderNumber, nil, update, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *Client) QueryOrders(ctx context.Context, where []string, sort []string, limit, offset int) (*OrderPage, error) {
	q := expandQuery()
	for _, w := range where {
		q.Add("where", w)
	}
	for _, s := range sort {
		q.Add("sort", s)
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		q.Set("offset", strconv.Itoa(offset))
	}

	var page OrderPage
	if err := c.do(ctx, http.MethodGet, "/orders", q, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}
