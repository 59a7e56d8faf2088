package structurer

import (
	"regexp"
	"strings"
	"time"

	"alfredoptarigan/resume-structurer/internal/models"
)

const (
	minYear = 1900
	maxYear = 2100
)

type dateLayout struct {
	layout    string
	precision models.Precision
}

type dateParser struct {
	layouts []dateLayout
	present map[string]bool
}

func newDateParser(layouts, presentTokens []string) *dateParser {
	p := &dateParser{present: make(map[string]bool, len(presentTokens))}
	for _, l := range layouts {
		p.layouts = append(p.layouts, dateLayout{layout: l, precision: layoutPrecision(l)})
	}
	for _, t := range presentTokens {
		p.present[strings.ToLower(strings.TrimSpace(t))] = true
	}
	return p
}

// layoutPrecision infers what a Go time layout pins down.
func layoutPrecision(layout string) models.Precision {
	rest := strings.ReplaceAll(layout, "2006", "")
	rest = strings.ReplaceAll(rest, "Monday", "")
	rest = strings.ReplaceAll(rest, "Mon", "")
	switch {
	case strings.Contains(rest, "2"):
		return models.PrecisionDay
	case strings.Contains(rest, "1") || strings.Contains(rest, "Jan"):
		return models.PrecisionMonth
	default:
		return models.PrecisionYear
	}
}

func (p *dateParser) isPresent(s string) bool {
	return p.present[strings.ToLower(cleanDate(s))]
}

// parse tries each layout in order; the first success wins.
func (p *dateParser) parse(s string) (models.Date, bool) {
	s = cleanDate(s)
	if s == "" {
		return models.Date{}, false
	}
	for _, l := range p.layouts {
		t, err := time.Parse(l.layout, s)
		if err != nil {
			continue
		}
		if t.Year() < minYear || t.Year() > maxYear {
			return models.Date{}, false
		}
		return models.NewDate(t, l.precision), true
	}
	return models.Date{}, false
}

var monthSpellings = strings.NewReplacer("Sept ", "Sep ", "sept ", "sep ", "SEPT ", "SEP ")

func cleanDate(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	s = strings.TrimSuffix(s, ".")
	return monthSpellings.Replace(s)
}

var (
	rangeSeparators = []string{"–", "—", " - ", " to ", " until "}
	yearRange       = regexp.MustCompile(`^(\d{4})\s*-\s*(\d{4}|[A-Za-z][A-Za-z ]*)$`)
)

// splitRange splits "Jan 2020 – Present" into its two sides. ranged is false
// when s holds a single date.
func splitRange(s string) (start, end string, ranged bool) {
	s = strings.TrimSpace(s)
	lower := strings.ToLower(s)
	for _, sep := range rangeSeparators {
		if i := strings.Index(lower, sep); i >= 0 && len(lower) == len(s) {
			return strings.TrimSpace(s[:i]), strings.TrimSpace(s[i+len(sep):]), true
		}
	}
	if m := yearRange.FindStringSubmatch(s); m != nil {
		return m[1], strings.TrimSpace(m[2]), true
	}
	return s, "", false
}
