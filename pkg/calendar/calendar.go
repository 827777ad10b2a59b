// Package calendar holds the rules for turning calendar dates entered in a
// local time zone into the UTC instants stored on reservations.
package calendar

import (
	"fmt"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

// Date is a calendar day with no time of day or zone attached.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return DateOf(t), nil
}

// DateOf returns the calendar day of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

func (d Date) IsZero() bool {
	return d == Date{}
}

// Midnight is the first instant of d in loc.
func (d Date) Midnight(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

func (d Date) Before(other Date) bool {
	return d.compare(other) < 0
}

func (d Date) After(other Date) bool {
	return d.compare(other) > 0
}

func (d Date) compare(other Date) int {
	switch {
	case d.Year != other.Year:
		return d.Year - other.Year
	case d.Month != other.Month:
		return int(d.Month) - int(other.Month)
	default:
		return d.Day - other.Day
	}
}

// Clock supplies the current instant.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock reads the wall clock.
func SystemClock() Clock {
	return systemClock{}
}

// FixedClock always returns the same instant.
type FixedClock time.Time

func (c FixedClock) Now() time.Time { return time.Time(c) }

// Normalizer converts local calendar dates to UTC instants and answers "today"
// for a given zone. One Normalizer is used for both creating and editing.
type Normalizer struct {
	clock    Clock
	fallback *time.Location
}

func NewNormalizer(clock Clock, fallback *time.Location) *Normalizer {
	if clock == nil {
		clock = SystemClock()
	}
	if fallback == nil {
		fallback = time.UTC
	}
	return &Normalizer{clock: clock, fallback: fallback}
}

// Location resolves an IANA zone name. An empty name selects the fallback zone.
func (n *Normalizer) Location(name string) (*time.Location, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return n.fallback, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("unknown time zone %q", name)
	}
	return loc, nil
}

// ToUTC is local midnight of d in loc expressed in UTC.
func (n *Normalizer) ToUTC(d Date, loc *time.Location) time.Time {
	return d.Midnight(loc).UTC()
}

// Today is the current calendar day in loc.
func (n *Normalizer) Today(loc *time.Location) Date {
	return DateOf(n.clock.Now().In(loc))
}

// Now is the current instant in UTC.
func (n *Normalizer) Now() time.Time {
	return n.clock.Now().UTC()
}
