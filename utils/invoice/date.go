package invoice

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

const (
	dateBaseScore     = 50
	dateLabelSpan     = 50
	dateYearsBack     = 1
	dateYearsForward  = 2
	twoDigitYearEpoch = 2000
)

var spanishMonths = map[string]time.Month{
	"enero": time.January, "febrero": time.February, "marzo": time.March,
	"abril": time.April, "mayo": time.May, "junio": time.June,
	"julio": time.July, "agosto": time.August, "septiembre": time.September,
	"setiembre": time.September, "octubre": time.October,
	"noviembre": time.November, "diciembre": time.December,
}

type datePattern struct {
	name string
	re   *regexp.Regexp
	// parts maps a submatch to (day, month, year) strings
	parts func(m []string) (string, string, string)
}

var datePatterns = []datePattern{
	{
		name:  "numeric",
		re:    regexp.MustCompile(`\b(\d{1,2})[/-](\d{1,2})[/-](\d{4}|\d{2})\b`),
		parts: func(m []string) (string, string, string) { return m[1], m[2], m[3] },
	},
	{
		name: "long-form",
		re:   regexp.MustCompile(`(?i)\b(\d{1,2})\s+de\s+(enero|febrero|marzo|abril|mayo|junio|julio|agosto|septiembre|setiembre|octubre|noviembre|diciembre)\s+(?:del?\s+)?(\d{4})\b`),
		parts: func(m []string) (string, string, string) {
			return m[1], strconv.Itoa(int(spanishMonths[strings.ToLower(m[2])])), m[3]
		},
	},
}

type dateCandidate struct {
	iso    string
	raw    string
	offset int
	score  int
	rule   string
}

type dateSelection struct {
	winner       *dateCandidate
	confidence   int
	alternatives []string
}

func extractDueDate(nt NormalizedText, rules *Rules, now time.Time, tr *trace) dateSelection {
	var cands []dateCandidate
	for _, p := range datePatterns {
		for _, loc := range p.re.FindAllStringSubmatchIndex(nt.Raw, -1) {
			m := submatches(nt.Raw, loc)
			d, mo, y := p.parts(m)
			iso, err := validateDate(d, mo, y, now)
			if err != nil {
				tr.add("date %q rejected: %v", m[0], err)
				continue
			}
			cands = append(cands, scoreDate(nt.Raw, loc[0], m[0], iso, rules))
		}
	}

	cands = dedupeDates(cands)
	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].score != cands[j].score {
			return cands[i].score > cands[j].score
		}
		return cands[i].offset < cands[j].offset
	})

	sel := dateSelection{alternatives: []string{}}
	rest := cands
	if len(cands) > 0 && cands[0].score >= rules.DateThreshold {
		w := cands[0]
		sel.winner = &w
		sel.confidence = clampConfidence(w.score)
		rest = cands[1:]
		tr.add("due date %s selected (%s, score %d)", w.iso, w.rule, w.score)
	} else {
		tr.add("due date not detected (%d candidates)", len(cands))
	}
	for _, c := range rest {
		if len(sel.alternatives) == rules.MaxAlternatives {
			break
		}
		sel.alternatives = append(sel.alternatives, c.iso)
	}
	return sel
}

func scoreDate(raw string, offset int, text, iso string, rules *Rules) dateCandidate {
	ctx := labelContext(raw, offset, dateLabelSpan)
	c := dateCandidate{iso: iso, raw: text, offset: offset, score: dateBaseScore, rule: "unlabeled"}

	weight := 0
	for _, r := range rules.DateRules {
		if containsAny(ctx, r.Phrases) {
			weight = r.Weight
			c.rule = r.Name
		}
	}
	c.score += weight
	if offset < len(raw)/2 {
		c.score += rules.DateFirstHalfBonus
	}
	return c
}

// validateDate checks calendar validity and the rolling year window around now
func validateDate(day, month, year string, now time.Time) (string, error) {
	d, err := strconv.Atoi(day)
	if err != nil {
		return "", err
	}
	m, err := strconv.Atoi(month)
	if err != nil {
		return "", err
	}
	y, err := strconv.Atoi(year)
	if err != nil {
		return "", err
	}
	if len(year) == 2 {
		y += twoDigitYearEpoch
	}

	if m < 1 || m > 12 {
		return "", fmt.Errorf("month %d out of range", m)
	}
	if d < 1 || d > 31 {
		return "", fmt.Errorf("day %d out of range", d)
	}
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	if t.Day() != d {
		return "", fmt.Errorf("day %d does not exist in %d-%02d", d, y, m)
	}
	if y < now.Year()-dateYearsBack || y > now.Year()+dateYearsForward {
		return "", fmt.Errorf("year %d outside [%d, %d]", y, now.Year()-dateYearsBack, now.Year()+dateYearsForward)
	}
	return t.Format("2006-01-02"), nil
}

func dedupeDates(cands []dateCandidate) []dateCandidate {
	seen := make(map[string]int, len(cands))
	out := make([]dateCandidate, 0, len(cands))
	for _, c := range cands {
		if i, ok := seen[c.iso]; ok {
			if c.score > out[i].score {
				out[i] = c
			}
			continue
		}
		seen[c.iso] = len(out)
		out = append(out, c)
	}
	return out
}

func submatches(s string, loc []int) []string {
	out := make([]string, len(loc)/2)
	for i := range out {
		if loc[2*i] >= 0 {
			out[i] = s[loc[2*i]:loc[2*i+1]]
		}
	}
	return out
}
