package commercetools

import (
	"context"
	"net/http"
	"net/url"
)

// ShippingMethodsMatchingCart lists the shipping methods applicable to the
// cart's shipping address.
func (c *Client) ShippingMethodsMatchingCart(ctx context.Context, cartID string) ([]ShippingMethod, error) {
	q := url.Values{}
	q.Add("expand", "zoneRates[*].zone")
	q.Set("cartId", cartID)

	var page ShippingMethodPage
	if err := c.do(ctx, http.MethodGet, "/shipping-methods/matching-cart", q, nil, &page); err != nil {
		return nil, err
	}
	return page.Results, nil
}

// ShippingMethods lists all shipping methods, or only those matching the
// given country when one is supplied.
func (c *Client) ShippingMethods(ctx context.Context, country string) ([]ShippingMethod, error) {
	q := url.Values{}
	q.Add("expand", "zoneRates[*].zone")

	path := "/shipping-methods"
	if country != "" {
		path = "/shipping-methods/matching-location"
		q.Set("country", country)
	}

	var page ShippingMethodPage
	if err := c.do(ctx, http.MethodGet, path, q, nil, &page); err != nil {
		return nil, err
	}
	return page.Results, nil
}
