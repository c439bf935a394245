// Package time contains calendar helpers pinned to the organization time zone
package time

import (
	"fmt"
	"sync"
	"time"
	_ "time/tzdata" // containers often ship without zoneinfo
)

// OrgZone is the IANA name of the single organization time zone
const OrgZone = "America/New_York"

// DateLayout is the wire layout for calendar dates
const DateLayout = "2006-01-02"

var (
	orgOnce sync.Once
	orgLoc  *time.Location
)

// Org returns the organization location, falling back to a fixed EST offset
// when the tz database is unavailable
func Org() *time.Location {
	orgOnce.Do(func() {
		loc, err := time.LoadLocation(OrgZone)
		if err != nil {
			loc = time.FixedZone("EST", -5*60*60)
		}
		orgLoc = loc
	})
	return orgLoc
}

// Load resolves name or returns Org when name is empty
func Load(name string) (*time.Location, error) {
	if name == "" || name == OrgZone {
		return Org(), nil
	}
	return time.LoadLocation(name)
}

// Date is a calendar day with no time of day or zone
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// ParseDate parses a YYYY-MM-DD calendar date
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return DateOf(t), nil
}

// DateOf returns the calendar day of t in t's own location
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// LocalDate returns the calendar day of t in loc
func LocalDate(t time.Time, loc *time.Location) Date {
	return DateOf(t.In(loc))
}

// String renders the date as YYYY-MM-DD
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// IsZero reports whether d is the zero Date
func (d Date) IsZero() bool { return d == Date{} }

// In returns the instant at hour:minute on d in loc
func (d Date) In(loc *time.Location, hour, minute int) time.Time {
	return time.Date(d.Year, d.Month, d.Day, hour, minute, 0, 0, loc)
}

// AddDays returns d shifted by n calendar days
func (d Date) AddDays(n int) Date {
	return DateOf(time.Date(d.Year, d.Month, d.Day+n, 12, 0, 0, 0, time.UTC))
}

// Before reports whether d is strictly before o
func (d Date) Before(o Date) bool { return d.String() < o.String() }

// After reports whether d is strictly after o
func (d Date) After(o Date) bool { return o.Before(d) }

// Weekday returns the day of week for d
func (d Date) Weekday() time.Weekday {
	return time.Date(d.Year, d.Month, d.Day, 12, 0, 0, 0, time.UTC).Weekday()
}

// MarshalText implements encoding.TextMarshaler
func (d Date) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler
func (d *Date) UnmarshalText(b []byte) error {
	v, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// Range is an inclusive span of calendar days
type Range struct {
	Start Date
	End   Date
}

// NewRange validates start <= end
func NewRange(start, end Date) (Range, error) {
	if end.Before(start) {
		return Range{}, fmt.Errorf("end %s is before start %s", end, start)
	}
	return Range{Start: start, End: end}, nil
}

// Days returns every calendar day in the range, in order
func (r Range) Days() []Date {
	if r.End.Before(r.Start) {
		return nil
	}
	var out []Date
	for d := r.Start; !d.After(r.End); d = d.AddDays(1) {
		out = append(out, d)
	}
	return out
}

// Len returns the number of days in the range
func (r Range) Len() int { return len(r.Days()) }

// Contains reports whether d falls inside the range
func (r Range) Contains(d Date) bool { return !d.Before(r.Start) && !d.After(r.End) }

// MinuteOfDay returns minutes since local midnight for t in loc
func MinuteOfDay(t time.Time, loc *time.Location) int {
	lt := t.In(loc)
	return lt.Hour()*60 + lt.Minute()
}

// Clock renders t in loc as a 12 hour wall clock, e.g. "08:15 AM"
func Clock(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("03:04 PM")
}
