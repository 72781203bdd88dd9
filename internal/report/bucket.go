package report

import "time"

// Granularity is the width of a reporting bucket.
type Granularity string

const (
	Hour  Granularity = "hour"
	Day   Granularity = "day"
	Week  Granularity = "week"
	Month Granularity = "month"
)

const day = 24 * time.Hour

// civilDays counts the calendar days in [From, To) in the period's zone, so
// a 23h or 25h DST day still counts as one.
func civilDays(p Period) int {
	f := p.From
	t := p.To.In(f.Location())
	if t.After(startOfDay(t)) {
		t = startOfDay(t).AddDate(0, 0, 1)
	}
	a := time.Date(f.Year(), f.Month(), f.Day(), 0, 0, 0, 0, time.UTC)
	b := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a) / day)
}

// SeriesGranularity is used by the sales series and the conditional
// activity chart: hourly for ranges up to one civil day, daily otherwise.
func SeriesGranularity(p Period) Granularity {
	if civilDays(p) <= 1 {
		return Hour
	}
	return Day
}

// AdaptiveGranularity picks the bucket width of the adaptive chart from the
// number of civil days in the range.
func AdaptiveGranularity(p Period) Granularity {
	days := civilDays(p)
	switch {
	case days <= 1:
		return Hour
	case days <= 30:
		return Day
	case days <= 120:
		return Week
	default:
		return Month
	}
}

// Truncate returns the start of the bucket containing t, in loc.
func Truncate(t time.Time, g Granularity, loc *time.Location) time.Time {
	t = t.In(loc)
	switch g {
	case Hour:
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, loc)
	case Week:
		return startOfWeek(t)
	case Month:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, loc)
	default:
		return startOfDay(t)
	}
}

func next(t time.Time, g Granularity) time.Time {
	switch g {
	case Hour:
		return t.Add(time.Hour)
	case Week:
		return t.AddDate(0, 0, 7)
	case Month:
		return t.AddDate(0, 1, 0)
	default:
		return t.AddDate(0, 0, 1)
	}
}

// Buckets lists the start of every bucket overlapping [From, To), in order.
// The first bucket may start before From (weeks align to Monday, months to
// the 1st).
func Buckets(p Period, g Granularity, loc *time.Location) []time.Time {
	var out []time.Time
	for b := Truncate(p.From, g, loc); b.Before(p.To); b = next(b, g) {
		out = append(out, b)
	}
	return out
}

// Label renders a bucket start for charts.
func Label(t time.Time, g Granularity) string {
	switch g {
	case Hour:
		return t.Format("15:04")
	case Month:
		return t.Format("2006-01")
	default:
		return t.Format(dateLayout)
	}
}
