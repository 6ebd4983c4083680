// Package invoice extracts payment fields (amount, due date, provider,
// customer name and payment barcode) from OCR text of Argentine utility
// invoices.
//
// Every field is mined as a set of candidates that are scored against their
// surrounding context and selected only above a per-field threshold. A field
// that cannot be decided is left nil with confidence 0; Parse never fails.
package invoice

import (
	"strings"
	"time"

	"github.com/Aashish23092/invoice-ocr-ar/dto"
)

// Engine runs the extraction pipeline. It holds only read-only
// configuration and is safe for concurrent use.
type Engine struct {
	rules *Rules
	now   func() time.Time
}

// Option configures an Engine
type Option func(*Engine)

// WithRules replaces the built-in tables
func WithRules(r *Rules) Option {
	return func(e *Engine) {
		if r != nil {
			e.rules = r
		}
	}
}

// WithClock sets the clock the due-date year window is computed from
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// NewEngine creates an engine with the default rules unless overridden
func NewEngine(opts ...Option) *Engine {
	e := &Engine{rules: DefaultRules(), now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Rules exposes the engine configuration. Callers must not modify it.
func (e *Engine) Rules() *Rules {
	return e.rules
}

var defaultEngine = NewEngine()

// Parse runs the default engine over text
func Parse(text string) dto.ExtractionResult {
	return defaultEngine.Parse(text)
}

// Parse extracts every field from text. Each call works on its own state.
func (e *Engine) Parse(text string) dto.ExtractionResult {
	res := dto.NewExtractionResult()
	tr := &trace{}

	nt := Normalize(text)
	if strings.TrimSpace(nt.Raw) == "" {
		tr.add("empty input, nothing to extract")
		res.Debug = tr.entries()
		return res
	}
	tr.add("normalized input: %d lines, %d chars", len(nt.Lines), len(nt.Search))

	provider, providerConf := detectProvider(nt, e.rules.Providers, tr)
	amount := extractAmount(nt, e.rules, tr)
	date := extractDueDate(nt, e.rules, e.now(), tr)
	name := extractCustomerName(nt, e.rules, tr)
	barcode := extractBarcode(nt, e.rules, provider, tr)

	if amount.winner != nil && barcode.winner != nil {
		w, ok := BarcodeEncodesAmount(barcode.winner.digits, amount.winner.value, amountWindows(e.rules, provider), e.rules.AmountMatchTolerance)
		if ok {
			amount.confidence = min(100, amount.confidence+e.rules.CrossValidationBonus)
			tr.add("amount confirmed by barcode digits [%d:%d]", w.Offset, w.Offset+w.Length)
		} else {
			tr.add("amount not found in barcode digits")
		}
	}

	if provider != nil {
		info := provider.Info()
		res.Provider = &info
		res.Confidence.Provider = providerConf
		res.Sources.Provider = dto.SourceHeuristic
	}
	if w := amount.winner; w != nil {
		v := w.value
		res.Amount = &v
		res.Confidence.Amount = amount.confidence
		res.Sources.Amount = dto.SourceHeuristic
	}
	res.Alternatives.Amounts = amount.alternatives
	if w := date.winner; w != nil {
		iso := w.iso
		res.DueDate = &iso
		res.Confidence.Date = date.confidence
		res.Sources.DueDate = dto.SourceHeuristic
	}
	res.Alternatives.Dates = date.alternatives
	if name != nil {
		n := name.name
		res.CustomerName = &n
		res.Confidence.CustomerName = name.confidence
		res.Sources.CustomerName = dto.SourceHeuristic
	}
	if w := barcode.winner; w != nil {
		digits := w.digits
		res.Barcode = &digits
		res.Confidence.Barcode = barcode.confidence
		res.Sources.Barcode = dto.SourceHeuristic
	}
	res.Alternatives.Barcodes = barcode.alternatives

	res.Debug = tr.entries()
	return res
}
