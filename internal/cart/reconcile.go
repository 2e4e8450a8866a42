package cart

import (
	"context"
	"strings"

	ct "github.com/Nuvei/nuvei-plugin-commerce-tools/internal/commercetools"
	"github.com/Nuvei/nuvei-plugin-commerce-tools/internal/domain"
)

// buildCartWithAvailableShippingMethods reconciles the fetched cart against
// the resolved locale and derives the available shipping methods. The
// derivation only makes sense once a shipping address with a country is set;
// without one there is nothing to match methods against.
func (s *Service) buildCartWithAvailableShippingMethods(ctx context.Context, fetched *ct.Cart) (*domain.Cart, error) {
	cart, err := s.assertCorrectLocale(ctx, fetched)
	if err != nil {
		return nil, err
	}

	if cart.ShippingAddress != nil && cart.ShippingAddress.Country != "" {
		methods, err := s.client.ShippingMethodsMatchingCart(ctx, cart.ID)
		if err != nil {
			return nil, err
		}
		cart.AvailableShippingMethods = shippingMethodsFromCT(methods, s.locale)
	}
	return cart, nil
}

// assertCorrectLocale enforces the locale invariant. Currency is immutable on
// a remote cart once priced line items exist, so a currency mismatch forces
// recreation; a country/language mismatch is fixed in place with one combined
// update.
func (s *Service) assertCorrectLocale(ctx context.Context, fetched *ct.Cart) (*domain.Cart, error) {
	if !strings.EqualFold(fetched.TotalPrice.CurrencyCode, s.locale.Currency) {
		return s.recreate(ctx, fetched)
	}

	if needsLocaleUpdate(fetched, s.locale) {
		updated, err := s.updateCart(ctx, fetched.ID, ct.CartUpdate{
			Version: fetched.Version,
			Actions: []ct.CartAction{
				{Action: "setCountry", Country: s.locale.Country},
				{Action: "setLocale", Locale: s.locale.Language},
			},
		})
		if err != nil {
			return nil, err
		}
		mapped := cartFromCT(updated, s.locale)
		return &mapped, nil
	}

	mapped := cartFromCT(fetched, s.locale)
	return &mapped, nil
}

func needsLocaleUpdate(fetched *ct.Cart, loc domain.Locale) bool {
	if fetched.Country == "" || fetched.Locale == "" {
		return true
	}
	return fetched.Country != loc.Country || fetched.Locale != loc.Language
}

// recreate replaces a cart whose currency no longer matches the resolved
// locale. Non-price-bearing fields are carried over; line items are re-added
// one at a time because they must be re-priced in the new currency, and an
// item without a price there is dropped rather than aborting the migration.
// The stale cart is deleted last; a delete failure surfaces without rolling
// back the new cart.
func (s *Service) recreate(ctx context.Context, stale *ct.Cart) (*domain.Cart, error) {
	draft := ct.CartDraft{
		Currency:                         s.locale.Currency,
		Country:                          s.locale.Country,
		Locale:                           s.locale.Language,
		CustomerID:                       stale.CustomerID,
		CustomerEmail:                    stale.CustomerEmail,
		CustomerGroup:                    stale.CustomerGroup,
		AnonymousID:                      stale.AnonymousID,
		Store:                            stale.Store,
		InventoryMode:                    stale.InventoryMode,
		TaxMode:                          stale.TaxMode,
		TaxRoundingMode:                  stale.TaxRoundingMode,
		TaxCalculationMode:               stale.TaxCalculationMode,
		ShippingAddress:                  stale.ShippingAddress,
		BillingAddress:                   stale.BillingAddress,
		DeleteDaysAfterLastModification:  stale.DeleteDaysAfterLastModification,
		Origin:                           stale.Origin,
		ShippingRateInput:                stale.ShippingRateInput,
		ExternalTaxRateForShippingMethod: stale.ExternalTaxRateForShippingMethod,
		ItemShippingAddresses:            stale.ItemShippingAddresses,
	}
	if stale.ShippingInfo != nil {
		draft.ShippingMethod = stale.ShippingInfo.ShippingMethod
	}

	replicated, err := s.client.CreateCart(ctx, draft)
	if err != nil {
		return nil, err
	}

	for _, lineItem := range stale.LineItems {
		updated, err := s.updateCart(ctx, replicated.ID, ct.CartUpdate{
			Version: replicated.Version,
			Actions: []ct.CartAction{{
				Action:   "addLineItem",
				SKU:      lineItem.Variant.SKU,
				Quantity: lineItem.Quantity,
			}},
		})
		if err != nil {
			// An item without a price in the new currency is dropped; the
			// rest of the migration continues.
			// TODO: emit an observability signal for dropped line items.
			continue
		}
		replicated = updated
	}

	if err := s.client.DeleteCart(ctx, stale.ID, stale.Version); err != nil {
		return nil, err
	}

	mapped := cartFromCT(replicated, s.locale)
	return &mapped, nil
}
