package daterange

import (
	"errors"
	"time"
)

var (
	ErrEmptyRange = errors.New("daterange: check-out must be after check-in")
)

// DayLayout is the wire format for calendar dates.
const DayLayout = "2006-01-02"

// DateRange is a half-open calendar span: the check-in day is included,
// the check-out day is not. Both bounds are normalized to UTC midnight.
type DateRange struct {
	CheckIn  time.Time
	CheckOut time.Time
}

// New builds a validated range from two instants, truncating both to
// calendar days.
func New(checkIn, checkOut time.Time) (DateRange, error) {
	in := Day(checkIn)
	out := Day(checkOut)
	if !out.After(in) {
		return DateRange{}, ErrEmptyRange
	}
	return DateRange{CheckIn: in, CheckOut: out}, nil
}

// Day truncates t to UTC midnight.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDay parses an ISO calendar date (2006-01-02).
func ParseDay(s string) (time.Time, error) {
	return time.Parse(DayLayout, s)
}

// Nights returns the number of nights covered by the range.
func (r DateRange) Nights() int {
	return int(r.CheckOut.Sub(r.CheckIn).Hours() / 24)
}

// Days enumerates every day in [CheckIn, CheckOut).
func (r DateRange) Days() []time.Time {
	days := make([]time.Time, 0, r.Nights())
	for cur := r.CheckIn; cur.Before(r.CheckOut); cur = cur.AddDate(0, 0, 1) {
		days = append(days, cur)
	}
	return days
}

// Contains reports whether day falls inside the half-open range.
func (r DateRange) Contains(day time.Time) bool {
	d := Day(day)
	return !d.Before(r.CheckIn) && d.Before(r.CheckOut)
}
