package invoice

import "fmt"

// trace collects the human-readable decision log of one parse
type trace struct {
	lines []string
}

func (t *trace) add(format string, args ...any) {
	if t == nil {
		return
	}
	t.lines = append(t.lines, fmt.Sprintf(format, args...))
}

func (t *trace) entries() []string {
	if t == nil || t.lines == nil {
		return []string{}
	}
	return t.lines
}
