package utils

import (
	"math"
	"time"
)

// DateLayout is the wire format for dates in URLs and query parameters.
const DateLayout = "2006-01-02"

// StartOfDay truncates t to midnight in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// SameDay reports whether a and b fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// Nights counts calendar days between the two dates, so a daylight-saving
// change never adds or drops a night. A time of day on checkOut past the one
// on checkIn counts as a partial night and rounds up. Non-positive spans yield 0.
func Nights(checkIn, checkOut time.Time) int {
	if !checkOut.After(checkIn) {
		return 0
	}
	days := int(civilDay(checkOut).Sub(civilDay(checkIn)) / (24 * time.Hour))
	if clock(checkOut) > clock(checkIn) {
		days++
	}
	if days < 0 {
		return 0
	}
	return days
}

// civilDay is t's calendar date at UTC midnight, where every day has 24 hours.
func civilDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// clock is the wall-clock time of day of t.
func clock(t time.Time) time.Duration {
	h, m, sec := t.Clock()
	return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute +
		time.Duration(sec)*time.Second + time.Duration(t.Nanosecond())
}

// ParseDate parses a YYYY-MM-DD string in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, loc)
}

// RoundCents rounds an amount to two decimals.
func RoundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

// ToMinorUnits converts an amount to the smallest currency unit.
func ToMinorUnits(v float64) int64 {
	return int64(math.Round(v * 100))
}
