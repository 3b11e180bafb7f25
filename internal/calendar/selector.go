// Package calendar implements the check-in/check-out date picker: a six-week month
// grid and the selection state machine that drives it.
package calendar

import (
	"errors"
	"time"

	"staybnb/internal/utils"
)

// ErrPastDate is returned when a date before today is picked.
var ErrPastDate = errors.New("date is in the past")

type State int

const (
	NoneSelected State = iota
	CheckInSelected
	RangeSelected
)

func (s State) String() string {
	switch s {
	case CheckInSelected:
		return "check_in_selected"
	case RangeSelected:
		return "range_selected"
	default:
		return "none_selected"
	}
}

// Focus tells which end of the range the next pick sets.
type Focus int

const (
	FocusCheckIn Focus = iota
	FocusCheckOut
)

// Selector holds the selection for one calendar instance. The zero value is not
// usable; call NewSelector.
type Selector struct {
	now      func() time.Time
	state    State
	focus    Focus
	checkIn  time.Time
	checkOut time.Time
}

// NewSelector returns a selector with nothing selected. now defaults to time.Now.
func NewSelector(now func() time.Time) *Selector {
	if now == nil {
		now = time.Now
	}
	return &Selector{now: now}
}

func (s *Selector) State() State { return s.state }
func (s *Selector) Focus() Focus { return s.focus }

// CheckIn returns the selected check-in, if any.
func (s *Selector) CheckIn() (time.Time, bool) {
	return s.checkIn, s.state != NoneSelected
}

// Today is the first selectable day.
func (s *Selector) Today() time.Time {
	return utils.StartOfDay(s.now())
}

// Disabled reports whether d is before today.
func (s *Selector) Disabled(d time.Time) bool {
	return utils.StartOfDay(d).Before(s.Today())
}

// FocusCheckIn makes the next pick replace the check-in date.
func (s *Selector) FocusCheckIn() {
	s.focus = FocusCheckIn
}

// Pick applies a click on day d.
func (s *Selector) Pick(d time.Time) error {
	d = utils.StartOfDay(d)
	if s.Disabled(d) {
		return ErrPastDate
	}

	switch {
	case s.state == NoneSelected || s.focus == FocusCheckIn || s.state == RangeSelected:
		s.startAt(d)
	case d.After(s.checkIn):
		s.checkOut = d
		s.state = RangeSelected
		s.focus = FocusCheckIn
	default:
		s.startAt(d)
	}
	return nil
}

func (s *Selector) startAt(d time.Time) {
	s.checkIn = d
	s.checkOut = time.Time{}
	s.state = CheckInSelected
	s.focus = FocusCheckOut
}

// Clear drops the selection.
func (s *Selector) Clear() {
	s.checkIn = time.Time{}
	s.checkOut = time.Time{}
	s.state = NoneSelected
	s.focus = FocusCheckIn
}

// Range returns the selected pair. ok is false until both ends are chosen, and
// booking actions must stay disabled while it is.
func (s *Selector) Range() (checkIn, checkOut time.Time, ok bool) {
	if s.state != RangeSelected {
		return time.Time{}, time.Time{}, false
	}
	return s.checkIn, s.checkOut, true
}

// Nights is the length of the selected range, or 0 without a full range.
func (s *Selector) Nights() int {
	in, out, ok := s.Range()
	if !ok {
		return 0
	}
	return utils.Nights(in, out)
}
