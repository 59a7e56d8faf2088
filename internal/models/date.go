package models

import (
	"cmp"
	"encoding/json"
	"fmt"
	"time"
)

// Precision records how much of a Date the source actually stated.
type Precision int

const (
	PrecisionYear Precision = iota + 1
	PrecisionMonth
	PrecisionDay
)

// Date is a calendar date that may be known only to the year or month.
// Month and Day are 1 when not covered by Precision.
type Date struct {
	Year      int
	Month     time.Month
	Day       int
	Precision Precision
}

// NewDate truncates t to the given precision.
func NewDate(t time.Time, p Precision) Date {
	d := Date{Year: t.Year(), Month: time.January, Day: 1, Precision: p}
	if p >= PrecisionMonth {
		d.Month = t.Month()
	}
	if p >= PrecisionDay {
		d.Day = t.Day()
	}
	return d
}

func (d Date) IsZero() bool {
	return d.Precision == 0
}

// Time is the first day the date denotes.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// Compare orders two dates at the coarser of their precisions, so "2021"
// and "2021-06" compare equal.
func (d Date) Compare(other Date) int {
	p := min(d.Precision, other.Precision)
	return NewDate(d.Time(), p).Time().Compare(NewDate(other.Time(), p).Time())
}

// Order is a total order for sorting: the first day each date denotes, then
// the more precise date as the later one. "2021" < "2021-01" < "2021-03".
func (d Date) Order(other Date) int {
	if c := d.Time().Compare(other.Time()); c != 0 {
		return c
	}
	return cmp.Compare(d.Precision, other.Precision)
}

func (d Date) Before(other Date) bool {
	return d.Compare(other) < 0
}

// String returns the canonical ISO form at the date's precision.
func (d Date) String() string {
	switch d.Precision {
	case PrecisionYear:
		return fmt.Sprintf("%04d", d.Year)
	case PrecisionMonth:
		return fmt.Sprintf("%04d-%02d", d.Year, int(d.Month))
	case PrecisionDay:
		return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
	}
	return ""
}

// Display is the human form used in rendered documents.
func (d Date) Display() string {
	switch d.Precision {
	case PrecisionYear:
		return d.Time().Format("2006")
	case PrecisionMonth:
		return d.Time().Format("Jan 2006")
	case PrecisionDay:
		return d.Time().Format("Jan 2, 2006")
	}
	return ""
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	parsed, err := ParseISODate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

var isoLayouts = []struct {
	layout    string
	precision Precision
}{
	{"2006-01-02", PrecisionDay},
	{"2006-01", PrecisionMonth},
	{"2006", PrecisionYear},
}

// ParseISODate accepts only the canonical forms produced by String.
func ParseISODate(s string) (Date, error) {
	for _, l := range isoLayouts {
		if len(s) != len(l.layout) {
			continue
		}
		if t, err := time.Parse(l.layout, s); err == nil {
			return NewDate(t, l.precision), nil
		}
	}
	return Date{}, fmt.Errorf("invalid date %q", s)
}
