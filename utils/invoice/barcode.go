package invoice

import (
	"fmt"
	"regexp"
	"sort"
)

// BarcodeType is the classification ValidateBarcode derives from length
type BarcodeType string

const (
	BarcodeElectronicInterbank BarcodeType = "electronic_interbank"
	BarcodeServiceInvoice      BarcodeType = "service_invoice"
	BarcodeElectronicPayment   BarcodeType = "electronic_payment"
	BarcodeBankAccount         BarcodeType = "bank_account"
	BarcodeNumeric             BarcodeType = "numeric_code"
)

// Priorities, lower is better. Length-derived priority dominates every
// other barcode signal.
const (
	PriorityElectronicInterbank = 1
	PriorityServiceInvoice      = 2
	PriorityElectronicPayment   = 3
	PriorityBankAccount         = 4
	PriorityNumeric             = 5
)

const (
	barcodeMinLen      = 10
	barcodeMaxLen      = 65
	bankAccountLen     = 22
	barcodeLabelSpan   = 60
	providerPaymentHit = 10
)

var barcodeTierScore = map[int]int{
	PriorityElectronicInterbank: 100,
	PriorityServiceInvoice:      80,
	PriorityElectronicPayment:   60,
	PriorityBankAccount:         40,
	PriorityNumeric:             20,
}

// BarcodeValidation is the outcome of ValidateBarcode
type BarcodeValidation struct {
	Valid    bool        `json:"valid"`
	Cleaned  string      `json:"cleaned"`
	Length   int         `json:"length"`
	Type     BarcodeType `json:"type,omitempty"`
	Priority int         `json:"priority,omitempty"`
	Reason   string      `json:"reason,omitempty"`
}

// ValidateBarcode strips everything but digits and classifies the code by
// length:
//
//	40-60  electronic interbank payment (preferred)
//	23-39  service invoice
//	19-21  short electronic payment
//	22     bank account identifier, unless context says otherwise
//	other  generic numeric code
func ValidateBarcode(code string) BarcodeValidation {
	cleaned := digitsOnly(code)
	v := BarcodeValidation{Cleaned: cleaned, Length: len(cleaned)}
	n := v.Length

	switch {
	case n < barcodeMinLen || n > barcodeMaxLen:
		v.Reason = fmt.Sprintf("length %d outside [%d, %d]", n, barcodeMinLen, barcodeMaxLen)
		return v
	case n >= 40 && n <= 60:
		v.Type, v.Priority = BarcodeElectronicInterbank, PriorityElectronicInterbank
	case n >= 23 && n <= 39:
		v.Type, v.Priority = BarcodeServiceInvoice, PriorityServiceInvoice
	case n == bankAccountLen:
		v.Type, v.Priority = BarcodeBankAccount, PriorityBankAccount
	case n >= 19 && n <= 21:
		v.Type, v.Priority = BarcodeElectronicPayment, PriorityElectronicPayment
	default:
		v.Type, v.Priority = BarcodeNumeric, PriorityNumeric
	}
	v.Valid = true
	return v
}

var (
	digitRunPattern     = regexp.MustCompile(`\d{15,}`)
	digitGroupedPattern = regexp.MustCompile(`\d{4,8}(?:[ \t]+\d{4,8}){4,}`)
)

type barcodeCandidate struct {
	digits   string
	offset   int
	kind     BarcodeType
	priority int
	score    int
	grouped  bool
}

type barcodeSelection struct {
	winner       *barcodeCandidate
	confidence   int
	alternatives []string
}

func extractBarcode(nt NormalizedText, rules *Rules, provider *ProviderRecord, tr *trace) barcodeSelection {
	var cands []barcodeCandidate
	collect := func(start, end int, grouped bool) {
		raw := nt.Raw[start:end]
		v := ValidateBarcode(raw)
		if !v.Valid {
			tr.add("barcode candidate rejected: %s", v.Reason)
			return
		}
		cands = append(cands, scoreBarcode(nt.Raw, start, v, grouped, rules, provider))
	}

	for _, loc := range digitRunPattern.FindAllStringIndex(nt.Raw, -1) {
		collect(loc[0], loc[1], false)
	}
	for _, loc := range digitGroupedPattern.FindAllStringIndex(nt.Raw, -1) {
		if loc[0] > 0 && isASCIIDigit(nt.Raw[loc[0]-1]) || loc[1] < len(nt.Raw) && isASCIIDigit(nt.Raw[loc[1]]) {
			continue
		}
		collect(loc[0], loc[1], true)
	}

	cands = dedupeBarcodes(cands)
	sort.SliceStable(cands, func(i, j int) bool {
		a, b := cands[i], cands[j]
		if a.priority != b.priority {
			return a.priority < b.priority
		}
		if len(a.digits) != len(b.digits) {
			return len(a.digits) > len(b.digits)
		}
		if a.score != b.score {
			return a.score > b.score
		}
		return a.offset < b.offset
	})

	sel := barcodeSelection{alternatives: []string{}}
	for i := range cands {
		c := cands[i]
		if sel.winner == nil && c.score >= rules.BarcodeThreshold {
			sel.winner = &c
			sel.confidence = clampConfidence(c.score)
			tr.add("barcode selected: %d digits, %s, score %d", len(c.digits), c.kind, c.score)
			continue
		}
		if len(sel.alternatives) < rules.MaxAlternatives {
			sel.alternatives = append(sel.alternatives, c.digits)
		}
	}
	if sel.winner == nil {
		tr.add("barcode not detected (%d candidates)", len(cands))
	}
	return sel
}

func scoreBarcode(raw string, start int, v BarcodeValidation, grouped bool, rules *Rules, provider *ProviderRecord) barcodeCandidate {
	ctx := labelContext(raw, start, barcodeLabelSpan)
	c := barcodeCandidate{digits: v.Cleaned, offset: start, kind: v.Type, priority: v.Priority, grouped: grouped}

	// a 22-digit code under a payment label is a payment code, not a CBU
	if v.Type == BarcodeBankAccount && !containsPhrase(ctx, "cbu") && containsAny(ctx, rules.BarcodePaymentSignals) {
		c.kind, c.priority = BarcodeElectronicPayment, PriorityElectronicPayment
	}

	adj, _ := scoreKeywords(ctx, rules.BarcodePositive, rules.BarcodeNegative)
	c.score = barcodeTierScore[c.priority] + adj
	if provider != nil && containsAny(ctx, provider.PaymentKeywords) {
		c.score += providerPaymentHit
	}
	return c
}

func dedupeBarcodes(cands []barcodeCandidate) []barcodeCandidate {
	seen := make(map[string]int, len(cands))
	out := make([]barcodeCandidate, 0, len(cands))
	for _, c := range cands {
		if i, ok := seen[c.digits]; ok {
			if c.priority < out[i].priority || c.priority == out[i].priority && c.score > out[i].score {
				out[i] = c
			}
			continue
		}
		seen[c.digits] = len(out)
		out = append(out, c)
	}
	return out
}
