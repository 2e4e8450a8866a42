// Package locale derives the canonical (language, country, currency) triple
// for a request. Resolution has no side effects; a missing mandatory field is
// a configuration error and fatal for the request.
package locale

import (
	"fmt"
	"strings"

	"github.com/Nuvei/nuvei-plugin-commerce-tools/internal/domain"
)

// Resolver holds the project defaults applied when a request carries no
// explicit locale or currency.
type Resolver struct {
	DefaultLocale   string
	DefaultCurrency string
}

func NewResolver(defaultLocale, defaultCurrency string) Resolver {
	return Resolver{DefaultLocale: defaultLocale, DefaultCurrency: defaultCurrency}
}

// Resolve parses a locale tag like "en_US" or "de-DE" plus a currency code
// into a Locale. Empty inputs fall back to the project defaults.
func (r Resolver) Resolve(localeTag, currency string) (domain.Locale, error) {
	if localeTag == "" {
		localeTag = r.DefaultLocale
	}
	if currency == "" {
		currency = r.DefaultCurrency
	}
	if localeTag == "" {
		return domain.Locale{}, fmt.Errorf("locale: no locale in request and no default configured")
	}
	if currency == "" {
		return domain.Locale{}, fmt.Errorf("locale: no currency in request and no default configured")
	}

	language, country, err := splitTag(localeTag)
	if err != nil {
		return domain.Locale{}, err
	}

	return domain.Locale{
		Language: language,
		Country:  country,
		Currency: strings.ToUpper(currency),
	}, nil
}

func splitTag(tag string) (language, country string, err error) {
	normalized := strings.ReplaceAll(tag, "-", "_")
	parts := strings.Split(normalized, "_")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("locale: tag %q must be of the form language_COUNTRY", tag)
	}
	return strings.ToLower(parts[0]), strings.ToUpper(parts[1]), nil
}
