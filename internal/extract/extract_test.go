package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reviewpulse/reviewpulse/internal/apperr"
)

func TestSKU(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"bare code", "1234567", "1234567"},
		{"bare code 6 digits", "123456", "123456"},
		{"bare code 8 digits", "12345678", "12345678"},
		{"query param", "https://www.bestbuy.com/site/product/?skuId=7654321", "7654321"},
		{"path marker", "https://www.bestbuy.com/site/some-product/7654321.p", "7654321"},
		{"legacy path", "https://x.example/sku/7654321", "7654321"},
		{"whitespace trimmed", "  7654321  ", "7654321"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SKU(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSKU_Invalid(t *testing.T) {
	for _, input := range []string{
		"",
		"12345",                         // too short
		"123456789",                     // too long
		"https://www.bestbuy.com/site/", // no identifier anywhere
		"https://x.example/?skuId=123",  // param out of range
	} {
		t.Run(input, func(t *testing.T) {
			_, err := SKU(input)
			require.Error(t, err)
			assert.ErrorIs(t, err, apperr.ErrInvalidIdentifier)
		})
	}
}

func TestItemID(t *testing.T) {
	assert.Equal(t, "167044122483", ItemID("https://www.ebay.com/itm/167044122483"))
	assert.Equal(t, "167044122483", ItemID("https://www.ebay.com/itm/167044122483?var=0"))
	assert.Equal(t, ItemIDUnknown, ItemID("https://www.ebay.com/usr/some-seller"))
	assert.Equal(t, ItemIDUnknown, ItemID(""))
}
