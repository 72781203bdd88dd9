// Package report holds the dashboard rules: how a period name resolves to an
// instant range, how that range is cut into buckets and how orders and
// conditionals are aggregated into those buckets. Nothing here touches the
// database; callers hand in plain rows.
package report

import (
	"errors"
	"fmt"
	"time"
)

// Period kinds accepted by ResolvePeriod.
const (
	PeriodToday     = "today"
	PeriodYesterday = "yesterday"
	PeriodWeek      = "week"
	PeriodMonth     = "month"
	PeriodYear      = "year"
	PeriodCustom    = "custom"
)

const dateLayout = "2006-01-02"

var (
	ErrUnknownPeriod = errors.New("unknown period")
	ErrInvalidRange  = errors.New("invalid custom range")
)

// Period is the half-open instant range [From, To).
type Period struct {
	Kind string    `json:"kind"`
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

func (p Period) Span() time.Duration { return p.To.Sub(p.From) }

// Contains reports From <= t < To.
func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.From) && t.Before(p.To)
}

// ResolvePeriod turns a period name into civil-calendar boundaries in loc.
// "week" starts on Monday. For "custom", from and to are inclusive dates
// (YYYY-MM-DD); the range ends at the start of the day after to.
func ResolvePeriod(kind string, now time.Time, from, to string, loc *time.Location) (Period, error) {
	if loc == nil {
		loc = time.UTC
	}
	today := startOfDay(now.In(loc))

	switch kind {
	case "", PeriodToday:
		return Period{Kind: PeriodToday, From: today, To: today.AddDate(0, 0, 1)}, nil
	case PeriodYesterday:
		return Period{Kind: kind, From: today.AddDate(0, 0, -1), To: today}, nil
	case PeriodWeek:
		start := startOfWeek(today)
		return Period{Kind: kind, From: start, To: start.AddDate(0, 0, 7)}, nil
	case PeriodMonth:
		start := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, loc)
		return Period{Kind: kind, From: start, To: start.AddDate(0, 1, 0)}, nil
	case PeriodYear:
		start := time.Date(today.Year(), time.January, 1, 0, 0, 0, 0, loc)
		return Period{Kind: kind, From: start, To: start.AddDate(1, 0, 0)}, nil
	case PeriodCustom:
		f, err := time.ParseInLocation(dateLayout, from, loc)
		if err != nil {
			return Period{}, fmt.Errorf("%w: from %q", ErrInvalidRange, from)
		}
		t, err := time.ParseInLocation(dateLayout, to, loc)
		if err != nil {
			return Period{}, fmt.Errorf("%w: to %q", ErrInvalidRange, to)
		}
		if t.Before(f) {
			return Period{}, fmt.Errorf("%w: to before from", ErrInvalidRange)
		}
		return Period{Kind: kind, From: f, To: t.AddDate(0, 0, 1)}, nil
	default:
		return Period{}, fmt.Errorf("%w: %q", ErrUnknownPeriod, kind)
	}
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// startOfWeek returns the Monday on or before t, at midnight.
func startOfWeek(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	return startOfDay(t).AddDate(0, 0, -offset)
}
