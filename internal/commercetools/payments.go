package commercetools

import (
	"context"
	"net/http"
)

func (c *Client) CreatePayment(ctx context.Context, draft PaymentDraft) (*Payment, error) {
	var payment Payment
	if err := c.do(ctx, http.MethodPost, "/payments", nil, draft, &payment); err != nil {
		return nil, err
	}
	return &payment, nil
}

func (c *Client) GetPayment(ctx context.Context, id string) (*Payment, error) {
	var payment Payment
	if err := c.do(ctx, http.MethodGet, "/payments/"+id, nil, nil, &payment); err != nil {
		return nil, err
	}
	return &payment, nil
}

// UpdatePayment posts update actions keyed by the payment's own version.
func (c *Client) UpdatePayment(ctx context.Context, id string, update PaymentUpdate) (*Payment, error) {
	var payment Payment
	if err := c.do(ctx, http.MethodPost, "/payments/"+id, nil, update, &payment); err != nil {
		return nil, err
	}
	return &payment, nil
}

func (c *Client) UpdatePaymentByKey(ctx context.Context, key string, update PaymentUpdate) (*Payment, error) {
	var payment Payment
	if err := c.do(ctx, http.MethodPost, "/payments/key="+key, nil, update, &payment); err != nil {
		return nil, err
	}
	return &payment, nil
}
