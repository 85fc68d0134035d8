package calendar

import (
	"strings"
	"time"
)

// =============================================================================
// DATE - Day-granularity calendar date
// =============================================================================

// Date is a calendar date with no time component. It is comparable with ==
// and safe to use as a map key, which gives the multi-select set its
// deduplication by year+month+day.
//
// The zero Date is the InvalidDate marker.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// InvalidDate marks a value that failed to parse. It renders as
// "Invalid Date" instead of being dropped or replaced with today.
var InvalidDate = Date{}

const dateLayout = "2006-01-02"

// Constructors
func NewDate(year int, month time.Month, day int) Date {
	return DateOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// DateOf truncates t to its calendar date in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// Clock returns the current instant. Tests inject fixed clocks.
type Clock func() time.Time

// SystemClock is the wall clock.
func SystemClock() time.Time { return time.Now() }

// Today returns the current date (midnight-truncated) according to clock.
func Today(clock Clock) Date {
	if clock == nil {
		clock = SystemClock
	}
	return DateOf(clock())
}

// ParseDate accepts YYYY-MM-DD or RFC3339.
func ParseDate(raw string) (Date, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return DateOf(t), nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return InvalidDate, &InvalidDateError{Input: raw, Err: err}
	}
	return DateOf(t), nil
}

// ParseDateLenient parses raw and returns InvalidDate on failure.
func ParseDateLenient(raw string) Date {
	d, err := ParseDate(raw)
	if err != nil {
		return InvalidDate
	}
	return d
}

// ParseDates parses every value leniently, keeping position and count.
func ParseDates(raw []string) []Date {
	out := make([]Date, len(raw))
	for i, s := range raw {
		out[i] = ParseDateLenient(s)
	}
	return out
}

// Comparison
func (d Date) Valid() bool { return d != InvalidDate }
func (d Date) Time() time.Time { return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC) }
func (d Date) Before(other Date) bool { return d.Compare(other) < 0 }
func (d Date) After(other Date) bool { return d.Compare(other) > 0 }

// Compare returns -1, 0 or +1.
func (d Date) Compare(other Date) int {
	switch {
	case d.Year != other.Year:
		return sign(d.Year - other.Year)
	case d.Month != other.Month:
		return sign(int(d.Month) - int(other.Month))
	default:
		return sign(d.Day - other.Day)
	}
}

// Arithmetic
func (d Date) AddDays(n int) Date { return DateOf(d.Time().AddDate(0, 0, n)) }
func (d Date) Weekday() time.Weekday { return d.Time().Weekday() }
func (d Date) MonthRef() MonthRef { return MonthRef{Year: d.Year, Month: d.Month} }
func (d Date) In(m MonthRef) bool { return d.Year == m.Year && d.Month == m.Month }

func (d Date) String() string {
	if !d.Valid() {
		return "Invalid Date"
	}
	return d.Time().Format(dateLayout)
}

// MarshalText renders the date as YYYY-MM-DD ("Invalid Date" for the marker).
func (d Date) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

// UnmarshalText is lenient: unparseable input becomes InvalidDate.
func (d *Date) UnmarshalText(b []byte) error {
	*d = ParseDateLenient(string(b))
	return nil
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	}
	return 0
}

// =============================================================================
// MONTH REF - Year + month, with rollover
// =============================================================================

// MonthRef identifies one displayed month.
type MonthRef struct {
	Year  int
	Month time.Month
}

func CurrentMonth(clock Clock) MonthRef { return Today(clock).MonthRef() }

// Add moves n months, rolling across year boundaries
// (January - 1 is December of the previous year).
func (m MonthRef) Add(n int) MonthRef {
	t := time.Date(m.Year, m.Month+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	return MonthRef{Year: t.Year(), Month: t.Month()}
}

func (m MonthRef) First() Date { return Date{Year: m.Year, Month: m.Month, Day: 1} }
func (m MonthRef) Last() Date { return m.Add(1).First().AddDays(-1) }
func (m MonthRef) Days() int { return m.Last().Day }

func (m MonthRef) Valid() bool { return m.Month >= time.January && m.Month <= time.December }

func (m MonthRef) String() string { return m.First().Time().Format("2006-01") }
