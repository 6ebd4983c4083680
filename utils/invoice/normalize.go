package invoice

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NormalizedText holds the three views of an invoice every extractor works on
type NormalizedText struct {
	// Raw is the input with line endings unified, case and layout kept
	Raw string
	// Search is lower-cased, whitespace-collapsed and uses '.' as the only separator
	Search string
	// Lines are the trimmed non-empty lines of Raw
	Lines []string
}

// Normalize prepares raw OCR output for extraction
func Normalize(text string) NormalizedText {
	raw := strings.ReplaceAll(text, "\r\n", "\n")
	raw = strings.ReplaceAll(raw, "\r", "\n")

	search := strings.ToLower(raw)
	search = strings.Join(strings.Fields(search), " ")
	search = strings.ReplaceAll(search, ",", ".")
	for strings.Contains(search, "..") {
		search = strings.ReplaceAll(search, "..", ".")
	}

	lines := make([]string, 0, strings.Count(raw, "\n")+1)
	for _, l := range strings.Split(raw, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}

	return NormalizedText{Raw: raw, Search: search, Lines: lines}
}

// foldAccents strips combining marks ("Emisión" -> "Emision", "Ñ" -> "N").
// A transformer chain keeps state, so one is built per call.
func foldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// foldLower is the canonical form keyword tables are matched against
func foldLower(s string) string {
	return strings.ToLower(foldAccents(s))
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// containsPhrase reports whether phrase occurs in text on word boundaries.
// Both sides must already be folded. A trailing '*' drops the right boundary.
func containsPhrase(text, phrase string) bool {
	prefix := strings.HasSuffix(phrase, "*")
	phrase = strings.TrimSuffix(phrase, "*")
	if phrase == "" {
		return false
	}
	from := 0
	for {
		i := strings.Index(text[from:], phrase)
		if i < 0 {
			return false
		}
		start := from + i
		end := start + len(phrase)
		first, _ := utf8.DecodeRuneInString(phrase)
		last, _ := utf8.DecodeLastRuneInString(phrase)
		before, _ := utf8.DecodeLastRuneInString(text[:start])
		after, _ := utf8.DecodeRuneInString(text[end:])
		leftOK := start == 0 || !isWordRune(before) || !isWordRune(first)
		rightOK := prefix || end == len(text) || !isWordRune(after) || !isWordRune(last)
		if leftOK && rightOK {
			return true
		}
		from = start + 1
	}
}

// scoreKeywords adds the strongest positive and the strongest negative weight
// found in ctx. The matched phrases are returned for the trace.
func scoreKeywords(ctx string, positive, negative []Keyword) (int, []string) {
	best, worst := 0, 0
	var hits []string
	for _, k := range positive {
		if k.Weight > best && containsPhrase(ctx, k.Phrase) {
			best = k.Weight
			hits = append(hits, k.Phrase)
		}
	}
	for _, k := range negative {
		if k.Weight < worst && containsPhrase(ctx, k.Phrase) {
			worst = k.Weight
			hits = append(hits, k.Phrase)
		}
	}
	return best + worst, hits
}

func containsAny(ctx string, phrases []string) bool {
	for _, p := range phrases {
		if containsPhrase(ctx, foldLower(p)) {
			return true
		}
	}
	return false
}

// valueRun matches a previous value on the same line ("10/01/2025", "1.234,56")
var valueRun = regexp.MustCompile(`\d[\d./,-]*\d`)

// labelContext returns the folded label text that precedes offset in raw.
// The label is the text on the same line after the last value that sits
// between it and offset. When the line holds no label, the previous line is
// used for layouts that put the label above the value, unless that line ends
// with a value of its own.
func labelContext(raw string, offset, span int) string {
	lineStart := strings.LastIndexByte(raw[:offset], '\n') + 1
	prefix := raw[lineStart:offset]
	if tail := afterLastValue(prefix); hasLetter(tail) {
		prefix = tail
	}
	if !hasLetter(prefix) && lineStart > 0 {
		prevStart := strings.LastIndexByte(raw[:lineStart-1], '\n') + 1
		prefix = afterLastValue(raw[prevStart : lineStart-1])
	}
	return foldLower(tailRunes(prefix, span))
}

func afterLastValue(s string) string {
	if locs := valueRun.FindAllStringIndex(s, -1); len(locs) > 0 {
		return s[locs[len(locs)-1][1]:]
	}
	return s
}

// lineWindow returns the folded text of offset's line within span bytes either side
func lineWindow(raw string, start, end, span int) string {
	lineStart := strings.LastIndexByte(raw[:start], '\n') + 1
	lineEnd := len(raw)
	if i := strings.IndexByte(raw[end:], '\n'); i >= 0 {
		lineEnd = end + i
	}
	from := max(lineStart, start-span)
	to := min(lineEnd, end+span)
	for from > lineStart && !utf8.RuneStart(raw[from]) {
		from--
	}
	for to < lineEnd && !utf8.RuneStart(raw[to]) {
		to++
	}
	return foldLower(raw[from:to])
}

func tailRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[len(r)-n:])
}

func hasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

func hasDigit(s string) bool {
	for _, r := range s {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

func digitsOnly(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
