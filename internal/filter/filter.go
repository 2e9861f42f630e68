package filter

import (
	"fmt"
	"strings"
	"time"
)

// Quarter is one of the four fixed three-month buckets of a calendar year.
type Quarter int

const (
	// AnyQuarter means no quarter restriction.
	AnyQuarter Quarter = iota
	Q1
	Q2
	Q3
	Q4
)

// ParseQuarter parses "Q1".."Q4" (case-insensitive).
func ParseQuarter(s string) (Quarter, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "Q1":
		return Q1, nil
	case "Q2":
		return Q2, nil
	case "Q3":
		return Q3, nil
	case "Q4":
		return Q4, nil
	}
	return AnyQuarter, fmt.Errorf("invalid quarter %q: expected one of Q1, Q2, Q3, Q4", s)
}

// QuarterOf returns the quarter containing t.
func QuarterOf(t time.Time) Quarter {
	return Quarter((int(t.Month())-1)/3 + 1)
}

// Matches reports whether t falls in the quarter's months, in any year.
// AnyQuarter matches every date.
func (q Quarter) Matches(t time.Time) bool {
	if q == AnyQuarter {
		return true
	}
	return QuarterOf(t) == q
}

func (q Quarter) String() string {
	if q < Q1 || q > Q4 {
		return "any"
	}
	return fmt.Sprintf("Q%d", int(q))
}

// DateFilter selects dates by year and quarter. A zero Year or an
// AnyQuarter leaves that dimension unrestricted, so the zero DateFilter
// accepts every date.
type DateFilter struct {
	Year    int
	Quarter Quarter
}

// Matches reports whether t passes both the year and the quarter restriction.
func (f DateFilter) Matches(t time.Time) bool {
	if f.Year != 0 && t.Year() != f.Year {
		return false
	}
	if f.Quarter != AnyQuarter && !f.Quarter.Matches(t) {
		return false
	}
	return true
}

// IsZero reports whether the filter accepts every date.
func (f DateFilter) IsZero() bool {
	return f.Year == 0 && f.Quarter == AnyQuarter
}

func (f DateFilter) String() string {
	switch {
	case f.IsZero():
		return "any date"
	case f.Year == 0:
		return f.Quarter.String() + " of any year"
	case f.Quarter == AnyQuarter:
		return fmt.Sprintf("%d", f.Year)
	default:
		return fmt.Sprintf("%d %s", f.Year, f.Quarter)
	}
}
