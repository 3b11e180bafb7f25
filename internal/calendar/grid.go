package calendar

import (
	"time"

	"staybnb/internal/utils"
)

// GridDays is the number of cells in a month view: six full weeks.
const GridDays = 42

type Day struct {
	Date       time.Time
	InMonth    bool
	Disabled   bool
	IsCheckIn  bool
	IsCheckOut bool
	InRange    bool
	IsToday    bool
}

// Grid lays out the month containing visible, starting on the Sunday on or before
// the 1st. Selection flags are taken from s when it is not nil.
func Grid(visible time.Time, s *Selector) [GridDays]Day {
	first := time.Date(visible.Year(), visible.Month(), 1, 0, 0, 0, 0, visible.Location())
	start := first.AddDate(0, 0, -int(first.Weekday()))

	var checkIn, checkOut time.Time
	var hasIn, hasRange bool
	if s != nil {
		checkIn, hasIn = s.CheckIn()
		if in, out, ok := s.Range(); ok {
			checkIn, checkOut, hasRange = in, out, true
		}
	}

	var days [GridDays]Day
	for i := range days {
		d := start.AddDate(0, 0, i)
		day := Day{
			Date:    d,
			InMonth: d.Month() == first.Month(),
		}
		if s != nil {
			day.Disabled = s.Disabled(d)
			day.IsToday = utils.SameDay(d, s.Today())
			day.IsCheckIn = hasIn && utils.SameDay(d, checkIn)
			if hasRange {
				day.IsCheckOut = utils.SameDay(d, checkOut)
				day.InRange = d.After(checkIn) && d.Before(checkOut)
			}
		}
		days[i] = day
	}
	return days
}
