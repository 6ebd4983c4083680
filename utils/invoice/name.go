package invoice

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	nameMinLen        = 5
	nameMaxLen        = 45
	nameMinTokens     = 2
	nameMaxTokens     = 5
	nameAddressRadius = 2
	nameShapeLines    = 20
	nameLabelValueLen = 60
)

// nameStrategy is one step of the customer-name cascade. Strategies run in
// order and the first accepted candidate wins.
type nameStrategy struct {
	name       string
	confidence int
	find       func(nt NormalizedText, blacklist []string) (string, bool)
}

var nameStrategies = []nameStrategy{
	{name: "labeled", confidence: 90, find: labeledName},
	{name: "address-context", confidence: 80, find: addressContextName},
	{name: "shape", confidence: 65, find: shapeName},
}

var (
	nameLabelPattern = regexp.MustCompile(`(?i)\b(?:apellido y nombre|raz[oó]n social|titular|cliente|usuario|pagador|destinatario|nombre|se[ñn]ora?|sra?)\b(?:\.?(?:\(a\)|/a))?\.?`)
	nameLabelGap     = regexp.MustCompile(`^[ \t]*[:.]?\s*`)
	nameStop         = regexp.MustCompile(`(?i)\s{3,}|\t|:|\d|\bcuit\b|\bcuil\b|\bdni\b|\bnro\b|\bn[°º]|\bcod\b|\bc[oó]digo\b|\bid\b`)
	taxIDLine        = regexp.MustCompile(`(?i)^\s*(?:c\.?u\.?i\.?[tl]|d\.?n\.?i)\b`)
	addressMarkers   = []string{"domicilio", "direccion", "suministro"}
	looseNameShape   = regexp.MustCompile(`^\p{L}[\p{L}'.]*(?: \p{L}[\p{L}'.]*){1,4}$`)
	upperNameShape   = regexp.MustCompile(`^[A-ZÁÉÍÓÚÑÜ]{2,}(?: [A-ZÁÉÍÓÚÑÜ]{2,}){1,3}$`)
)

type nameSelection struct {
	name       string
	strategy   string
	confidence int
}

func extractCustomerName(nt NormalizedText, rules *Rules, tr *trace) *nameSelection {
	for _, s := range nameStrategies {
		if name, ok := s.find(nt, rules.NameBlacklist); ok {
			tr.add("customer name %q selected (%s)", name, s.name)
			return &nameSelection{name: name, strategy: s.name, confidence: s.confidence}
		}
	}
	tr.add("customer name not detected")
	return nil
}

func labeledName(nt NormalizedText, blacklist []string) (string, bool) {
	for _, loc := range nameLabelPattern.FindAllStringIndex(nt.Raw, -1) {
		candidate := valueAfterLabel(nt.Raw[loc[1]:])
		if cut := nameStop.FindStringIndex(candidate); cut != nil {
			candidate = candidate[:cut[0]]
		}
		candidate = cleanName(candidate)
		if IsValidPersonName(candidate, blacklist) {
			return strings.ToUpper(candidate), true
		}
	}

	// an unlabeled holder line is usually printed right above its tax id
	for i := 0; i+1 < len(nt.Lines); i++ {
		if !taxIDLine.MatchString(nt.Lines[i+1]) {
			continue
		}
		candidate := cleanName(nt.Lines[i])
		if looseNameShape.MatchString(candidate) && IsValidPersonName(candidate, blacklist) {
			return strings.ToUpper(candidate), true
		}
	}
	return "", false
}

// valueAfterLabel returns the rest of the line following a label, or the
// next line when the label stands alone
func valueAfterLabel(s string) string {
	s = s[len(nameLabelGap.FindString(s)):]
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if r := []rune(s); len(r) > nameLabelValueLen {
		s = string(r[:nameLabelValueLen])
	}
	return s
}

func addressContextName(nt NormalizedText, blacklist []string) (string, bool) {
	for i, line := range nt.Lines {
		if !containsAny(foldLower(line), addressMarkers) {
			continue
		}
		for d := 1; d <= nameAddressRadius; d++ {
			for _, j := range []int{i - d, i + d} {
				if j < 0 || j >= len(nt.Lines) {
					continue
				}
				candidate := cleanName(nt.Lines[j])
				if looseNameShape.MatchString(candidate) && IsValidPersonName(candidate, blacklist) {
					return strings.ToUpper(candidate), true
				}
			}
		}
	}
	return "", false
}

func shapeName(nt NormalizedText, blacklist []string) (string, bool) {
	for _, line := range nt.Lines[:min(nameShapeLines, len(nt.Lines))] {
		candidate := cleanName(line)
		if upperNameShape.MatchString(candidate) && IsValidPersonName(candidate, blacklist) {
			return candidate, true
		}
	}
	return "", false
}

func cleanName(s string) string {
	return strings.Trim(strings.Join(strings.Fields(s), " "), " .,;-")
}

// IsValidPersonName applies the plausibility rules every name candidate must
// pass: length, no digits, 2 to 5 tokens of at least two letters, and no
// blacklisted word at either end.
func IsValidPersonName(name string, blacklist []string) bool {
	n := strings.Join(strings.Fields(name), " ")
	if l := utf8.RuneCountInString(n); l < nameMinLen || l > nameMaxLen {
		return false
	}
	if hasDigit(n) || !strings.Contains(n, " ") {
		return false
	}

	tokens := strings.Fields(n)
	if len(tokens) < nameMinTokens || len(tokens) > nameMaxTokens {
		return false
	}
	for _, tok := range tokens {
		letters := 0
		for _, r := range tok {
			if unicode.IsLetter(r) {
				letters++
			}
		}
		if letters < 2 {
			return false
		}
	}

	upper := strings.ToUpper(foldAccents(n))
	for _, w := range blacklist {
		w = strings.ToUpper(foldAccents(w))
		if upper == w || strings.HasPrefix(upper, w+" ") || strings.HasSuffix(upper, " "+w) {
			return false
		}
	}
	return true
}
