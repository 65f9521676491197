package catalog

import (
	"strings"

	"github.com/Zhima-Mochi/corralon-storefront/internal/application"
	"github.com/shopspring/decimal"
)

// parsePrice accepts "1234.50" and the Argentine "1.234,50".
func parsePrice(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "$"))
	if s == "" {
		return decimal.Zero, application.Validation("price is required")
	}
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, application.Validation("price is not a number")
	}
	return d, nil
}
