package locale

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nuvei/nuvei-plugin-commerce-tools/internal/domain"
)

func TestResolveParsesTagVariants(t *testing.T) {
	r := NewResolver("en_US", "USD")

	cases := []struct {
		tag      string
		currency string
		want     domain.Locale
	}{
		{"en_US", "usd", domain.Locale{Language: "en", Country: "US", Currency: "USD"}},
		{"de-DE", "EUR", domain.Locale{Language: "de", Country: "DE", Currency: "EUR"}},
		{"", "", domain.Locale{Language: "en", Country: "US", Currency: "USD"}},
		{"FR_fr", "eur", domain.Locale{Language: "fr", Country: "FR", Currency: "EUR"}},
	}
	for _, tc := range cases {
		loc, err := r.Resolve(tc.tag, tc.currency)
		require.NoErrorf(t, err, "Resolve(%q, %q)", tc.tag, tc.currency)
		assert.Equal(t, tc.want, loc)
	}
}

func TestResolveRejectsIncompleteTag(t *testing.T) {
	r := NewResolver("en_US", "USD")
	_, err := r.Resolve("en", "USD")
	assert.Error(t, err)
}

func TestResolveRequiresDefaults(t *testing.T) {
	r := NewResolver("", "")

	_, err := r.Resolve("", "USD")
	assert.Error(t, err, "missing locale default must fail")

	_, err = r.Resolve("en_US", "")
	assert.Error(t, err, "missing currency default must fail")
}
