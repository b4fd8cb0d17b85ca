package core

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the storage format; lexicographic order equals date order.
const DateLayout = "2006-01-02"

// MonthLayout keys monthly aggregations.
const MonthLayout = "2006-01"

// Date is a calendar day in UTC.
type Date struct {
	time.Time
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar day in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

// ParseDate accepts YYYY-MM-DD. The empty string yields the zero Date.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("%w %q: %v", ErrInvalidDate, s, err)
	}
	return Date{Time: t}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return fmt.Errorf("%w: date cannot be zero", ErrInvalidDate)
	}
	return nil
}

// String returns YYYY-MM-DD, or "" for the zero Date.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

// MonthKey returns YYYY-MM.
func (d Date) MonthKey() string {
	return d.Format(MonthLayout)
}

// AddDays returns the date n days later.
func (d Date) AddDays(n int) Date {
	return Date{Time: d.Time.AddDate(0, 0, n)}
}

// DaysSince counts whole calendar days from earlier to d.
func (d Date) DaysSince(earlier Date) int {
	return int(d.Sub(earlier.Time).Hours() / 24)
}

// Period is an inclusive date range. A zero bound is open.
type Period struct {
	Start Date
	End   Date
}

// MonthPeriod covers the whole calendar month.
func MonthPeriod(year, month int) Period {
	start := NewDate(year, month, 1)
	return Period{Start: start, End: Date{Time: start.AddDate(0, 1, -1)}}
}

// YearPeriod covers 1 January to 31 December.
func YearPeriod(year int) Period {
	return Period{Start: NewDate(year, 1, 1), End: NewDate(year, 12, 31)}
}

// Contains reports whether d falls within the period.
func (p Period) Contains(d Date) bool {
	if !p.Start.IsZero() && d.Before(p.Start.Time) {
		return false
	}
	if !p.End.IsZero() && d.After(p.End.Time) {
		return false
	}
	return true
}
