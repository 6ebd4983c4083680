package invoice

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// rulesFile is the on-disk override format:
//
//	replace_providers: false
//	providers:
//	  - id: epec
//	    name: EPEC
//	    type: electricity
//	    patterns: ["epec", "empresa provincial de energia"]
//	    amount_window: {offset: 20, length: 8}
//	name_blacklist: ["EPEC"]
//	max_amount: 2000000
type rulesFile struct {
	ReplaceProviders     bool             `yaml:"replace_providers"`
	Providers            []ProviderRecord `yaml:"providers"`
	NameBlacklist        []string         `yaml:"name_blacklist"`
	MinAmount            *float64         `yaml:"min_amount"`
	MaxAmount            *float64         `yaml:"max_amount"`
	DateFirstHalfBonus   *int             `yaml:"date_first_half_bonus"`
	BarcodeAmountWindows []DigitWindow    `yaml:"barcode_amount_windows"`
}

// LoadRulesFile reads a YAML override file on top of DefaultRules
func LoadRulesFile(path string) (*Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}
	return ParseRules(data)
}

// ParseRules applies YAML overrides to DefaultRules.
// File providers are matched before the built-in ones unless
// replace_providers is set, in which case they are the whole table.
func ParseRules(data []byte) (*Rules, error) {
	var f rulesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse rules file: %w", err)
	}

	rules := DefaultRules()
	for i := range f.Providers {
		p := &f.Providers[i]
		if p.ID == "" || p.Name == "" || len(p.Patterns) == 0 {
			return nil, fmt.Errorf("provider #%d: id, name and patterns are required", i+1)
		}
		if p.Type == "" {
			p.Type = ServiceGeneric
		}
		for j, pat := range p.Patterns {
			p.Patterns[j] = strings.ToLower(strings.TrimSpace(pat))
		}
	}
	if f.ReplaceProviders {
		if len(f.Providers) == 0 {
			return nil, fmt.Errorf("replace_providers set but no providers given")
		}
		rules.Providers = f.Providers
	} else if len(f.Providers) > 0 {
		rules.Providers = append(f.Providers, rules.Providers...)
	}

	rules.NameBlacklist = append(rules.NameBlacklist, f.NameBlacklist...)
	if f.MinAmount != nil {
		rules.MinAmount = *f.MinAmount
	}
	if f.MaxAmount != nil {
		rules.MaxAmount = *f.MaxAmount
	}
	if rules.MinAmount >= rules.MaxAmount {
		return nil, fmt.Errorf("min_amount %.2f must be below max_amount %.2f", rules.MinAmount, rules.MaxAmount)
	}
	if f.DateFirstHalfBonus != nil {
		rules.DateFirstHalfBonus = *f.DateFirstHalfBonus
	}
	if len(f.BarcodeAmountWindows) > 0 {
		rules.BarcodeAmountWindows = f.BarcodeAmountWindows
	}
	return rules, nil
}
