package utils

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NormalizeString normalizes string for comparison (lowercase, no accents, no spaces or punctuation)
func NormalizeString(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if folded, _, err := transform.String(t, s); err == nil {
		s = folded
	}
	s = strings.ToLower(s)
	return strings.Map(func(r rune) rune {
		if r == ' ' || r == '.' || r == '-' || r == ',' {
			return -1
		}
		return r
	}, s)
}

// CompareNames reports whether two person or company names refer to the same entity.
// Word order and honorifics do not matter ("PEREZ JUAN" == "Sr. Juan Pérez").
func CompareNames(name1, name2 string) bool {
	if name1 == "" || name2 == "" {
		return false
	}

	norm1 := NormalizeString(name1)
	norm2 := NormalizeString(name2)

	if norm1 == norm2 {
		return true
	}
	if strings.Contains(norm1, norm2) || strings.Contains(norm2, norm1) {
		return true
	}

	words1 := nameWords(name1)
	words2 := nameWords(name2)
	if len(words1) == 0 || len(words2) == 0 {
		return false
	}
	if len(words1) > len(words2) {
		words1, words2 = words2, words1
	}

	matchCount := 0
	for _, w1 := range words1 {
		for _, w2 := range words2 {
			if w1 == w2 {
				matchCount++
				break
			}
		}
	}

	// every word of the shorter name must appear in the longer one
	return matchCount == len(words1)
}

func nameWords(s string) []string {
	var out []string
	for _, w := range strings.Fields(s) {
		w = NormalizeString(w)
		switch w {
		case "", "sr", "sra", "srta", "senor", "senora", "de", "del", "la":
			continue
		}
		out = append(out, w)
	}
	return out
}

// CalculateNameSimilarity calculates the similarity between two names using Levenshtein distance
// Returns a score between 0.0 and 1.0
func CalculateNameSimilarity(name1, name2 string) float64 {
	s1 := NormalizeString(name1)
	s2 := NormalizeString(name2)

	if s1 == "" && s2 == "" {
		return 1.0
	}
	if s1 == "" || s2 == "" {
		return 0.0
	}

	dist := levenshteinDistance(s1, s2)
	maxLen := max(len([]rune(s1)), len([]rune(s2)))

	return 1.0 - float64(dist)/float64(maxLen)
}

// levenshteinDistance calculates the Levenshtein distance between two strings
func levenshteinDistance(s1, s2 string) int {
	r1 := []rune(s1)
	r2 := []rune(s2)
	n, m := len(r1), len(r2)

	if n == 0 {
		return m
	}
	if m == 0 {
		return n
	}

	prev := make([]int, m+1)
	curr := make([]int, m+1)
	for j := 0; j <= m; j++ {
		prev[j] = j
	}

	for i := 1; i <= n; i++ {
		curr[0] = i
		for j := 1; j <= m; j++ {
			cost := 0
			if r1[i-1] != r2[j-1] {
				cost = 1
			}
			curr[j] = min(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[m]
}
