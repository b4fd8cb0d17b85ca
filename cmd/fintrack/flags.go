package main

import (
	"flag"
	"strconv"
	"strings"
	"time"

	"fintrack/internal/core"
)

// periodFlags selects a date range with -from/-to or a whole -month.
type periodFlags struct {
	from, to, month string
}

func (p *periodFlags) register(f *flag.FlagSet) {
	f.StringVar(&p.from, "from", "", "start date YYYY-MM-DD (inclusive)")
	f.StringVar(&p.to, "to", "", "end date YYYY-MM-DD (inclusive)")
	f.StringVar(&p.month, "month", "", "whole month YYYY-MM, overrides -from and -to")
}

func (p *periodFlags) period() (core.Period, error) {
	if p.month != "" {
		m, err := time.Parse(core.MonthLayout, strings.TrimSpace(p.month))
		if err != nil {
			return core.Period{}, usageErr("invalid -month %q, want YYYY-MM", p.month)
		}
		return core.MonthPeriod(m.Year(), int(m.Month())), nil
	}
	start, err := core.ParseDate(p.from)
	if err != nil {
		return core.Period{}, err
	}
	end, err := core.ParseDate(p.to)
	if err != nil {
		return core.Period{}, err
	}
	return core.Period{Start: start, End: end}, nil
}

// namedPeriod parses a whole month (YYYY-MM) or a whole year (YYYY).
func namedPeriod(s string) (core.Period, error) {
	s = strings.TrimSpace(s)
	if y, err := time.Parse("2006", s); err == nil {
		return core.YearPeriod(y.Year()), nil
	}
	m, err := time.Parse(core.MonthLayout, s)
	if err != nil {
		return core.Period{}, usageErr("invalid period %q, want YYYY-MM or YYYY", s)
	}
	return core.MonthPeriod(m.Year(), int(m.Month())), nil
}

// comparePeriods reads a base and a current period, defaulting to the
// month before now and the month of now.
func comparePeriods(args []string, now time.Time) (core.Period, core.Period, error) {
	switch len(args) {
	case 0:
		this := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		last := this.AddDate(0, -1, 0)
		return core.MonthPeriod(last.Year(), int(last.Month())),
			core.MonthPeriod(this.Year(), int(this.Month())), nil
	case 2:
		base, err := namedPeriod(args[0])
		if err != nil {
			return core.Period{}, core.Period{}, err
		}
		current, err := namedPeriod(args[1])
		if err != nil {
			return core.Period{}, core.Period{}, err
		}
		return base, current, nil
	}
	return core.Period{}, core.Period{}, usageErr("expected no periods or <base> <current>")
}

func parseType(s string) (core.TxType, error) {
	if strings.TrimSpace(s) == "" {
		return "", nil
	}
	return core.ParseTxType(s)
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, usageErr("invalid id %q", s)
	}
	return id, nil
}

// args checks the positional argument count.
func args(f *flag.FlagSet, want int, names string) ([]string, error) {
	if f.NArg() != want {
		return nil, usageErr("expected %s", names)
	}
	return f.Args(), nil
}
