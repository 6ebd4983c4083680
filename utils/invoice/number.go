package invoice

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseLocaleNumber converts a number written with '.' or ',' separators to
// a float. When both separators appear the later one is the decimal mark.
// With a single kind of separator, a final group of exactly two digits is
// decimal and anything else is thousands grouping ("1.234.567").
// Unparseable input returns NaN.
func ParseLocaleNumber(s string) float64 {
	d, ok := parseLocaleDecimal(s)
	if !ok {
		return math.NaN()
	}
	f, _ := d.Float64()
	return f
}

func parseLocaleDecimal(s string) (decimal.Decimal, bool) {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' || r == '.' || r == ',' {
			b.WriteRune(r)
		}
	}
	cleaned := strings.Trim(b.String(), ".,")
	if cleaned == "" {
		return decimal.Zero, false
	}

	var canonical string
	last := strings.LastIndexAny(cleaned, ".,")
	switch {
	case last < 0:
		canonical = cleaned
	case strings.Contains(cleaned, ".") && strings.Contains(cleaned, ","):
		canonical = stripSeparators(cleaned[:last]) + "." + cleaned[last+1:]
	case len(cleaned)-last-1 == 2:
		canonical = stripSeparators(cleaned[:last]) + "." + cleaned[last+1:]
	default:
		canonical = stripSeparators(cleaned)
	}

	d, err := decimal.NewFromString(canonical)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

func stripSeparators(s string) string {
	return strings.NewReplacer(".", "", ",", "").Replace(s)
}
