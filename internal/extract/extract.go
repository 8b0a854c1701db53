// Package extract derives canonical product identifiers from marketplace
// URLs or bare codes.
package extract

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/reviewpulse/reviewpulse/internal/apperr"
)

// ItemIDUnknown is returned when an item-style URL carries no item number.
// Callers proceed with it so title lookups still run.
const ItemIDUnknown = "unknown"

var (
	skuPattern     = regexp.MustCompile(`^\d{6,8}$`)
	skuPathPattern = regexp.MustCompile(`/(\d{6,8})\.p`)
	skuLegacyPath  = regexp.MustCompile(`/sku/(\d{6,8})`)
	itemIDPattern  = regexp.MustCompile(`/itm/(\d+)`)
)

// SKU resolves a BestBuy SKU from a raw code or product URL. Accepted
// shapes, first match wins: a bare 6-8 digit code, a skuId= query
// parameter, a /<digits>.p path segment, or the legacy /sku/<digits>
// path.
func SKU(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", eris.Wrap(apperr.ErrInvalidIdentifier, "empty input")
	}
	if skuPattern.MatchString(raw) {
		return raw, nil
	}

	if u, err := url.Parse(raw); err == nil {
		if candidate := u.Query().Get("skuId"); skuPattern.MatchString(candidate) {
			return candidate, nil
		}
		if m := skuPathPattern.FindStringSubmatch(u.Path); m != nil {
			return m[1], nil
		}
	}

	if m := skuLegacyPath.FindStringSubmatch(raw); m != nil {
		return m[1], nil
	}
	return "", eris.Wrapf(apperr.ErrInvalidIdentifier,
		"no SKU in %q, expected skuId=, /<digits>.p, or a raw numeric SKU", raw)
}

// ItemID pulls the item number out of an auction-style /itm/<digits> URL.
// Returns ItemIDUnknown when the URL has no item number.
func ItemID(rawURL string) string {
	if m := itemIDPattern.FindStringSubmatch(rawURL); m != nil {
		return m[1]
	}
	return ItemIDUnknown
}
