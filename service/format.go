package service

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// FormatAmountARS renders an amount the way es-AR invoices print it:
// "$15.420,50" (dot grouping, comma decimals, two decimals)
func FormatAmountARS(amount float64) string {
	fixed := decimal.NewFromFloat(amount).Round(2).StringFixed(2)

	neg := strings.HasPrefix(fixed, "-")
	fixed = strings.TrimPrefix(fixed, "-")
	intPart, frac, _ := strings.Cut(fixed, ".")

	var sb strings.Builder
	if neg {
		sb.WriteByte('-')
	}
	sb.WriteByte('$')
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			sb.WriteByte('.')
		}
		sb.WriteRune(r)
	}
	sb.WriteByte(',')
	sb.WriteString(frac)
	return sb.String()
}

// FormatDueDate turns YYYY-MM-DD into DD/MM/YYYY. Unparseable input is
// returned unchanged.
func FormatDueDate(iso string) string {
	t, err := time.Parse("2006-01-02", iso)
	if err != nil {
		return iso
	}
	return t.Format("02/01/2006")
}

func formattedAmount(amount *float64) *string {
	if amount == nil {
		return nil
	}
	s := FormatAmountARS(*amount)
	return &s
}

func formattedDueDate(iso *string) *string {
	if iso == nil || *iso == "" {
		return nil
	}
	s := FormatDueDate(*iso)
	return &s
}
