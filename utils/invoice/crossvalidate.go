package invoice

import (
	"strconv"

	"github.com/shopspring/decimal"
)

const crossValidateMinLen = 23

// amountWindows returns the digit windows to probe, the provider's own first
func amountWindows(rules *Rules, provider *ProviderRecord) []DigitWindow {
	if provider == nil || provider.AmountWindow == nil {
		return rules.BarcodeAmountWindows
	}
	return append([]DigitWindow{*provider.AmountWindow}, rules.BarcodeAmountWindows...)
}

// BarcodeEncodesAmount reports whether one of windows, read as minor units,
// equals amount within tolerance. The matching window is returned.
func BarcodeEncodesAmount(barcode string, amount float64, windows []DigitWindow, tolerance float64) (DigitWindow, bool) {
	if len(barcode) < crossValidateMinLen {
		return DigitWindow{}, false
	}
	want := decimal.NewFromFloat(amount).Round(2)
	tol := decimal.NewFromFloat(tolerance)
	for _, w := range windows {
		if w.Offset < 0 || w.Length <= 0 || w.Offset+w.Length > len(barcode) {
			continue
		}
		minor, err := strconv.ParseInt(barcode[w.Offset:w.Offset+w.Length], 10, 64)
		if err != nil || minor == 0 {
			continue
		}
		if decimal.New(minor, -2).Sub(want).Abs().LessThanOrEqual(tol) {
			return w, true
		}
	}
	return DigitWindow{}, false
}
