package invoice

import (
	"math"
	"regexp"
	"sort"
)

type amountTier int

const (
	tierKeywordHigh amountTier = iota
	tierKeywordMid
	tierCurrency
	tierFallback
)

func (t amountTier) String() string {
	switch t {
	case tierKeywordHigh:
		return "keyword-high"
	case tierKeywordMid:
		return "keyword"
	case tierCurrency:
		return "currency"
	default:
		return "fallback"
	}
}

const (
	amountBaseScore     = 50
	amountRejectSpan    = 50
	amountLabelSpan     = 60
	decimalNumber       = `(?:\d{1,3}(?:[.,]\d{3})+|\d+)[.,]\d{2}`
	currencyNumber      = `(?:\d{1,3}(?:[.,]\d{3})+|\d+)(?:[.,]\d{1,2})?`
	keywordGap          = `[^\d\n]{0,20}?`
	highAmountKeywords  = `total\s+a\s+pagar|importe\s+a\s+pagar|monto\s+a\s+pagar|debe\s+abonar|total\s+(?:de\s+la\s+)?factura|importe\s+total|monto\s+total|total\s+vencimiento|total\s+liquidaci[oó]n|saldo\s+total`
	midAmountKeywords   = `\b(?:total|importe|monto|saldo|pagar|vencimiento)`
	amountKeywordGroups = 1
)

type amountPattern struct {
	tier amountTier
	re   *regexp.Regexp
}

// amountPatterns are tried in tier order; the fallback tier only runs when
// none of the keyword tiers produced a surviving candidate
var amountPatterns = []amountPattern{
	{tierKeywordHigh, regexp.MustCompile(`(?i)(?:` + highAmountKeywords + `)` + keywordGap + `(` + decimalNumber + `)`)},
	{tierKeywordMid, regexp.MustCompile(`(?i)` + midAmountKeywords + keywordGap + `(` + decimalNumber + `)`)},
	{tierCurrency, regexp.MustCompile(`\$\s*(` + currencyNumber + `)`)},
	{tierFallback, regexp.MustCompile(`(` + decimalNumber + `)`)},
}

type amountCandidate struct {
	value  float64
	raw    string
	offset int
	tier   amountTier
	score  int
	hits   []string
}

type amountSelection struct {
	winner       *amountCandidate
	confidence   int
	alternatives []float64
}

func extractAmount(nt NormalizedText, rules *Rules, tr *trace) amountSelection {
	var cands []amountCandidate
	keyworded := false
	for _, p := range amountPatterns {
		if p.tier == tierFallback && keyworded {
			break
		}
		if p.tier == tierFallback {
			tr.add("no keyword-anchored amount, scanning plain numbers")
		}
		for _, loc := range p.re.FindAllStringSubmatchIndex(nt.Raw, -1) {
			start, end := loc[2*amountKeywordGroups], loc[2*amountKeywordGroups+1]
			c, ok := scoreAmount(nt.Raw, start, end, p.tier, rules, tr)
			if !ok {
				continue
			}
			if p.tier <= tierKeywordMid {
				keyworded = true
			}
			cands = append(cands, c)
		}
	}

	cands = dedupeAmounts(cands)
	boostLargestFallback(cands, rules)

	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].score != cands[j].score {
			return cands[i].score > cands[j].score
		}
		if cands[i].value != cands[j].value {
			return cands[i].value > cands[j].value
		}
		return cands[i].offset < cands[j].offset
	})

	sel := amountSelection{alternatives: []float64{}}
	rest := cands
	if len(cands) > 0 && cands[0].score >= rules.AmountThreshold {
		w := cands[0]
		sel.winner = &w
		sel.confidence = clampConfidence(w.score)
		if w.tier == tierFallback {
			sel.confidence = min(sel.confidence, rules.FallbackConfidenceCap)
		}
		rest = cands[1:]
		tr.add("amount %.2f selected (%s, score %d, confidence %d)", w.value, w.tier, w.score, sel.confidence)
	} else {
		tr.add("amount not detected (%d candidates below threshold %d)", len(cands), rules.AmountThreshold)
	}
	for _, c := range rest {
		if len(sel.alternatives) == rules.MaxAlternatives {
			break
		}
		sel.alternatives = append(sel.alternatives, c.value)
	}
	return sel
}

func scoreAmount(raw string, start, end int, tier amountTier, rules *Rules, tr *trace) (amountCandidate, bool) {
	text := raw[start:end]
	if !isolatedNumber(raw, start, end) {
		return amountCandidate{}, false
	}

	value := ParseLocaleNumber(text)
	if math.IsNaN(value) || value < rules.MinAmount || value > rules.MaxAmount {
		tr.add("amount %q rejected: out of range", text)
		return amountCandidate{}, false
	}
	// a strong total label only answers for its own label text; identifiers
	// elsewhere on the line belong to other values
	rejectCtx := lineWindow(raw, start, end, amountRejectSpan)
	if tier == tierKeywordHigh {
		rejectCtx = labelContext(raw, start, amountLabelSpan)
	}
	if containsAny(rejectCtx, rules.AmountRejectMarkers) {
		tr.add("amount %q rejected: identifier context", text)
		return amountCandidate{}, false
	}

	ctx := labelContext(raw, start, amountLabelSpan)
	adj, hits := scoreKeywords(ctx, rules.AmountPositive, rules.AmountNegative)
	score := amountBaseScore + adj
	if value >= rules.TypicalAmountLow && value <= rules.TypicalAmountHigh {
		score += rules.TypicalAmountBonus
	}
	if start > len(raw)/2 {
		score += rules.LatterHalfBonus
	}
	if value < rules.RoundAmountCeiling && math.Mod(value, 100) == 0 {
		score -= rules.RoundAmountPenalty
	}

	return amountCandidate{value: value, raw: text, offset: start, tier: tier, score: score, hits: hits}, true
}

// isolatedNumber rejects matches that are a slice of a longer numeric token
// such as a date ("25.01.2025") or an identifier
func isolatedNumber(raw string, start, end int) bool {
	if end < len(raw) {
		if isASCIIDigit(raw[end]) {
			return false
		}
		if isNumberSeparator(raw[end]) && end+1 < len(raw) && isASCIIDigit(raw[end+1]) {
			return false
		}
	}
	if start > 0 {
		if isASCIIDigit(raw[start-1]) {
			return false
		}
		if isNumberSeparator(raw[start-1]) && start > 1 && isASCIIDigit(raw[start-2]) {
			return false
		}
	}
	return true
}

func isASCIIDigit(b byte) bool { return b >= '0' && b <= '9' }

func isNumberSeparator(b byte) bool { return b == '.' || b == ',' || b == '/' || b == '-' }

// dedupeAmounts keeps the best-scored candidate per value (to the cent)
func dedupeAmounts(cands []amountCandidate) []amountCandidate {
	best := make(map[int64]int, len(cands))
	out := make([]amountCandidate, 0, len(cands))
	for _, c := range cands {
		key := int64(math.Round(c.value * 100))
		if i, ok := best[key]; ok {
			if c.score > out[i].score {
				out[i] = c
			}
			continue
		}
		best[key] = len(out)
		out = append(out, c)
	}
	return out
}

func boostLargestFallback(cands []amountCandidate, rules *Rules) {
	idx := -1
	for i, c := range cands {
		if c.tier == tierFallback && (idx < 0 || c.value > cands[idx].value) {
			idx = i
		}
	}
	if idx >= 0 {
		cands[idx].score += rules.LargestFallbackBonus
	}
}

func clampConfidence(score int) int {
	return max(0, min(100, score))
}
