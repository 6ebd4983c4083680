package invoice

import (
	"fmt"
	"strings"

	"github.com/Aashish23092/invoice-ocr-ar/dto"
	"github.com/Aashish23092/invoice-ocr-ar/utils"
)

// OracleConfidence is reported for any field the oracle answered
const OracleConfidence = 95

// MergeOracle overlays oracle answers on a heuristic result, field by field.
// A non-empty oracle field always wins; everything else keeps the heuristic
// value and score. local is not modified.
func MergeOracle(local dto.ExtractionResult, oracle *dto.OracleFields, providers []ProviderRecord) dto.ExtractionResult {
	out := local
	out.Debug = append([]string(nil), local.Debug...)
	if oracle.IsEmpty() {
		out.Debug = append(out.Debug, "oracle returned no fields, keeping heuristic result")
		return out
	}
	note := func(format string, args ...any) {
		out.Debug = append(out.Debug, fmt.Sprintf(format, args...))
	}

	if oracle.Amount != nil && *oracle.Amount > 0 {
		v := *oracle.Amount
		out.Amount = &v
		out.Confidence.Amount = OracleConfidence
		out.Sources.Amount = dto.SourceOracle
		if local.Amount != nil && !sameAmount(*local.Amount, v) {
			note("oracle amount %.2f overrides heuristic %.2f", v, *local.Amount)
		}
	}

	if d := strings.TrimSpace(oracle.DueDate); d != "" {
		out.DueDate = &d
		out.Confidence.Date = OracleConfidence
		out.Sources.DueDate = dto.SourceOracle
	}

	if v := ValidateBarcode(oracle.Barcode); oracle.Barcode != "" && v.Valid {
		digits := v.Cleaned
		out.Barcode = &digits
		out.Confidence.Barcode = OracleConfidence
		out.Sources.Barcode = dto.SourceOracle
	} else if oracle.Barcode != "" {
		note("oracle barcode ignored: %s", v.Reason)
	}

	if p := strings.TrimSpace(oracle.Provider); p != "" {
		info, ok := ResolveProvider(p, providers)
		if !ok {
			info = dto.ProviderInfo{ID: providerSlug(p), Name: p, Type: string(ServiceGeneric)}
			note("oracle provider %q not in provider table", p)
		}
		out.Provider = &info
		out.Confidence.Provider = OracleConfidence
		out.Sources.Provider = dto.SourceOracle
	}

	if n := strings.TrimSpace(oracle.CustomerName); n != "" {
		n = strings.ToUpper(strings.Join(strings.Fields(n), " "))
		if local.CustomerName != nil && utils.CompareNames(n, *local.CustomerName) {
			note("oracle and heuristic agree on customer name")
		}
		out.CustomerName = &n
		out.Confidence.CustomerName = OracleConfidence
		out.Sources.CustomerName = dto.SourceOracle
	}

	return out
}

func sameAmount(a, b float64) bool {
	d := a - b
	return d < 0.005 && d > -0.005
}

func providerSlug(name string) string {
	return strings.Join(strings.Fields(foldLower(name)), "_")
}
