package cart

import (
	ct "github.com/Nuvei/nuvei-plugin-commerce-tools/internal/commercetools"
	"github.com/Nuvei/nuvei-plugin-commerce-tools/internal/domain"
)

// Mapping between the commercetools wire shapes and the storefront domain
// model. Localized fields are resolved against the request locale with an
// English fallback.

func cartFromCT(in *ct.Cart, loc domain.Locale) domain.Cart {
	out := domain.Cart{
		ID:          in.ID,
		Version:     in.Version,
		State:       in.CartState,
		Currency:    in.TotalPrice.CurrencyCode,
		Country:     in.Country,
		Language:    in.Locale,
		Email:       in.CustomerEmail,
		CustomerID:  in.CustomerID,
		AnonymousID: in.AnonymousID,
		Sum:         moneyFromCT(in.TotalPrice),
	}

	out.LineItems = make([]domain.LineItem, 0, len(in.LineItems))
	for i := range in.LineItems {
		out.LineItems = append(out.LineItems, lineItemFromCT(&in.LineItems[i], loc))
	}

	out.ShippingAddress = addressFromCT(in.ShippingAddress)
	out.BillingAddress = addressFromCT(in.BillingAddress)

	if in.ShippingInfo != nil {
		method := domain.ShippingMethod{
			Name:  in.ShippingInfo.ShippingMethodName,
			Price: moneyFromCT(in.ShippingInfo.Price),
		}
		if in.ShippingInfo.ShippingMethod != nil {
			method.ID = in.ShippingInfo.ShippingMethod.ID
		}
		out.ShippingMethod = &method
	}

	for _, dc := range in.DiscountCodes {
		discount := domain.Discount{
			ID:    dc.DiscountCode.ID,
			State: dc.State,
		}
		if dc.DiscountCode.Obj != nil {
			discount.Code = dc.DiscountCode.Obj.Code
		}
		out.DiscountCodes = append(out.DiscountCodes, discount)
	}

	out.Payments = paymentsFromCT(in.PaymentInfo)
	return out
}

func lineItemFromCT(in *ct.LineItem, loc domain.Locale) domain.LineItem {
	return domain.LineItem{
		ID:         in.ID,
		SKU:        in.Variant.SKU,
		Name:       localized(in.Name, loc),
		Quantity:   in.Quantity,
		Price:      moneyFromCT(in.Price.Value),
		TotalPrice: moneyFromCT(in.TotalPrice),
	}
}

func orderFromCT(in *ct.Order, loc domain.Locale) domain.Order {
	out := domain.Order{
		ID:              in.ID,
		OrderNumber:     in.OrderNumber,
		Version:         in.Version,
		OrderState:      in.OrderState,
		PaymentState:    in.PaymentState,
		Email:           in.CustomerEmail,
		ShippingAddress: addressFromCT(in.ShippingAddress),
		BillingAddress:  addressFromCT(in.BillingAddress),
		Sum:             moneyFromCT(in.TotalPrice),
	}

	out.LineItems = make([]domain.LineItem, 0, len(in.LineItems))
	for i := range in.LineItems {
		out.LineItems = append(out.LineItems, lineItemFromCT(&in.LineItems[i], loc))
	}

	out.Payments = paymentsFromCT(in.PaymentInfo)
	return out
}

// paymentsFromCT maps the expanded payments of a payment info block.
// References that came back unexpanded still contribute their id.
func paymentsFromCT(info *ct.PaymentInfo) []domain.Payment {
	if info == nil {
		return nil
	}
	out := make([]domain.Payment, 0, len(info.Payments))
	for _, ref := range info.Payments {
		if ref.Obj != nil {
			out = append(out, paymentFromCT(ref.Obj))
			continue
		}
		out = append(out, domain.Payment{ID: ref.ID})
	}
	return out
}

func paymentFromCT(in *ct.Payment) domain.Payment {
	// The domain ID is the key the record was created under; payments that
	// predate this extension may carry no key and keep the platform id.
	id := in.Key
	if id == "" {
		id = in.ID
	}
	out := domain.Payment{
		ID:            id,
		InterfaceID:   in.InterfaceID,
		Provider:      in.PaymentMethodInfo.PaymentInterface,
		Method:        in.PaymentMethodInfo.Method,
		AmountPlanned: moneyFromCT(in.AmountPlanned),
		Status:        in.PaymentStatus.InterfaceCode,
		Debug:         in.PaymentStatus.InterfaceText,
		Version:       in.Version,
	}

	if out.Provider == domain.PaymentProviderNuvei {
		details := &domain.NuveiDetails{}
		if in.Custom != nil {
			if token, ok := in.Custom.Fields["sessionToken"].(string); ok {
				details.SessionToken = token
			}
		}
		out.Nuvei = details
	}
	return out
}

func shippingMethodsFromCT(in []ct.ShippingMethod, loc domain.Locale) []domain.ShippingMethod {
	out := make([]domain.ShippingMethod, 0, len(in))
	for i := range in {
		out = append(out, shippingMethodFromCT(&in[i], loc))
	}
	return out
}

func shippingMethodFromCT(in *ct.ShippingMethod, loc domain.Locale) domain.ShippingMethod {
	out := domain.ShippingMethod{
		ID:          in.ID,
		Name:        in.Name,
		Description: localized(in.LocalizedDescription, loc),
	}

	// Prefer the rate the platform marked as matching; fall back to the
	// first rate of the first zone.
	for _, zoneRate := range in.ZoneRates {
		for _, rate := range zoneRate.ShippingRates {
			if out.Price.CurrencyCode == "" {
				out.Price = moneyFromCT(rate.Price)
			}
			if rate.IsMatching {
				out.Price = moneyFromCT(rate.Price)
				return out
			}
		}
	}
	return out
}

func addressFromCT(in *ct.Address) *domain.Address {
	if in == nil {
		return nil
	}
	return &domain.Address{
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		StreetName:   in.StreetName,
		StreetNumber: in.StreetNumber,
		PostalCode:   in.PostalCode,
		City:         in.City,
		Country:      in.Country,
		Phone:        in.Phone,
	}
}

func addressToCT(in *domain.Address) *ct.Address {
	if in == nil {
		return nil
	}
	return &ct.Address{
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		StreetName:   in.StreetName,
		StreetNumber: in.StreetNumber,
		PostalCode:   in.PostalCode,
		City:         in.City,
		Country:      in.Country,
		Phone:        in.Phone,
	}
}

func moneyFromCT(in ct.Money) domain.Money {
	return domain.Money{
		CentAmount:   in.CentAmount,
		CurrencyCode: in.CurrencyCode,
	}
}

func localized(values map[string]string, loc domain.Locale) string {
	if len(values) == 0 {
		return ""
	}
	if v, ok := values[loc.Language]; ok {
		return v
	}
	if v, ok := values["en"]; ok {
		return v
	}
	for _, v := range values {
		return v
	}
	return ""
}
