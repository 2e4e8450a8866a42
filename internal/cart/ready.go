package cart

import "github.com/Nuvei/nuvei-plugin-commerce-tools/internal/domain"

// isReadyForCheckout is the checkout-commit precondition: at least one line
// item, a shipping address, a shipping method and a customer email.
func isReadyForCheckout(cart *domain.Cart) bool {
	if len(cart.LineItems) == 0 {
		return false
	}
	if cart.ShippingAddress == nil || cart.ShippingAddress.Country == "" {
		return false
	}
	if cart.ShippingMethod == nil {
		return false
	}
	return cart.Email != ""
}
