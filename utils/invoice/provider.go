package invoice

import (
	"strings"

	"github.com/Aashish23092/invoice-ocr-ar/dto"
	"github.com/Aashish23092/invoice-ocr-ar/utils"
)

const (
	providerFullConfidence   = 100
	providerHeaderConfidence = 80
	providerHeaderLines      = 5
	providerFuzzyThreshold   = 0.8
)

// Info converts the record to its public form
func (p ProviderRecord) Info() dto.ProviderInfo {
	return dto.ProviderInfo{ID: p.ID, Name: p.Name, Type: string(p.Type)}
}

// detectProvider scans the table in order. The first record with any pattern
// in the search text, on word boundaries, wins. Failing that, a record whose id shows up in one
// of the first header lines is accepted at lower confidence.
func detectProvider(nt NormalizedText, providers []ProviderRecord, tr *trace) (*ProviderRecord, int) {
	search := foldAccents(nt.Search)
	for i := range providers {
		for _, pat := range providers[i].Patterns {
			if containsPhrase(search, foldLower(pat)) {
				tr.add("provider %s matched pattern %q", providers[i].ID, pat)
				return &providers[i], providerFullConfidence
			}
		}
	}

	header := nt.Lines[:min(providerHeaderLines, len(nt.Lines))]
	for i := range providers {
		id := foldLower(strings.ReplaceAll(providers[i].ID, "_", " "))
		for _, line := range header {
			if containsPhrase(foldLower(line), id) {
				tr.add("provider %s matched header line %q", providers[i].ID, line)
				return &providers[i], providerHeaderConfidence
			}
		}
	}

	tr.add("provider not detected")
	return nil, 0
}

// ResolveProvider maps a free-form company name, as an oracle would answer
// it, onto the provider table. It tries the id and name, then the patterns,
// then a fuzzy comparison of names.
func ResolveProvider(name string, providers []ProviderRecord) (dto.ProviderInfo, bool) {
	q := foldLower(strings.TrimSpace(name))
	if q == "" {
		return dto.ProviderInfo{}, false
	}
	for _, p := range providers {
		if q == foldLower(p.ID) || q == foldLower(p.Name) {
			return p.Info(), true
		}
	}
	for _, p := range providers {
		for _, pat := range p.Patterns {
			if containsPhrase(q, foldLower(pat)) {
				return p.Info(), true
			}
		}
	}
	for _, p := range providers {
		if utils.CalculateNameSimilarity(q, foldLower(p.Name)) >= providerFuzzyThreshold {
			return p.Info(), true
		}
	}
	return dto.ProviderInfo{}, false
}
