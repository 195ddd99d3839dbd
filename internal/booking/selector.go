// Package booking holds the booking form: its values, validation, draft storage
// and the calendar date pickers.
package booking

import "time"

// ISODate is the layout used for dates in forms and drafts.
const ISODate = "2006-01-02"

// Mode says which end of the range the next pick sets.
type Mode int

const (
	ExpectStart Mode = iota
	ExpectEnd
)

func (m Mode) String() string {
	if m == ExpectEnd {
		return "end"
	}
	return "start"
}

func ParseMode(s string) Mode {
	if s == "end" {
		return ExpectEnd
	}
	return ExpectStart
}

// Clock returns the current wall time.
type Clock func() time.Time

// DayOf strips the time of day, keeping t's location.
func DayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// RangeSelector picks a start and an end day. Days before local midnight today are
// never selectable and start <= end holds whenever both are set.
type RangeSelector struct {
	start time.Time
	end   time.Time
	mode  Mode
	now   Clock
}

func NewRangeSelector(now Clock) *RangeSelector {
	if now == nil {
		now = time.Now
	}
	return &RangeSelector{now: now}
}

// RestoreRange rebuilds a selector from stored ISO dates. Unparseable dates are
// dropped, as is an end that precedes the start.
func RestoreRange(start, end string, mode Mode, now Clock) *RangeSelector {
	s := NewRangeSelector(now)
	loc := s.now().Location()
	if t, err := time.ParseInLocation(ISODate, start, loc); err == nil {
		s.start = t
	}
	if t, err := time.ParseInLocation(ISODate, end, loc); err == nil && !s.start.IsZero() && !t.Before(s.start) {
		s.end = t
	}
	s.mode = mode
	if s.start.IsZero() {
		s.mode = ExpectStart
	}
	return s
}

func (s *RangeSelector) Start() (time.Time, bool) { return s.start, !s.start.IsZero() }
func (s *RangeSelector) End() (time.Time, bool)   { return s.end, !s.end.IsZero() }
func (s *RangeSelector) Mode() Mode                { return s.mode }
func (s *RangeSelector) Complete() bool            { return !s.start.IsZero() && !s.end.IsZero() }

func (s *RangeSelector) today() time.Time { return DayOf(s.now()) }

// IsPast reports whether d falls before local midnight today.
func (s *RangeSelector) IsPast(d time.Time) bool {
	return DayOf(d.In(s.now().Location())).Before(s.today())
}

// Select applies a click on day d and reports whether it was accepted.
func (s *RangeSelector) Select(d time.Time) bool {
	if s.IsPast(d) {
		return false
	}
	d = DayOf(d.In(s.now().Location()))

	hasStart, hasEnd := !s.start.IsZero(), !s.end.IsZero()
	switch {
	case hasStart && sameDay(d, s.start):
		s.start, s.end = time.Time{}, time.Time{}
		s.mode = ExpectStart
	case hasEnd && sameDay(d, s.end):
		s.end = time.Time{}
		s.mode = ExpectEnd
	case s.mode == ExpectStart || !hasStart:
		if hasEnd && d.After(s.end) {
			s.end = time.Time{}
		}
		s.start = d
		s.mode = ExpectEnd
	case d.Before(s.start):
		s.start = d
		s.end = time.Time{}
		s.mode = ExpectEnd
	default:
		s.end = d
		s.mode = ExpectStart
	}
	return true
}

// InRange is inclusive at both ends and false until both ends are set.
func (s *RangeSelector) InRange(d time.Time) bool {
	if !s.Complete() {
		return false
	}
	d = DayOf(d.In(s.now().Location()))
	return !d.Before(s.start) && !d.After(s.end)
}

func (s *RangeSelector) IsSelected(d time.Time) bool {
	return (!s.start.IsZero() && sameDay(d, s.start)) || (!s.end.IsZero() && sameDay(d, s.end))
}

// SingleDate is the one-field picker: any day may be chosen and choosing closes it.
type SingleDate struct {
	Value time.Time
	Open  bool
}

func (s *SingleDate) Toggle() { s.Open = !s.Open }

func (s *SingleDate) Select(d time.Time) {
	s.Value = DayOf(d)
	s.Open = false
}

func (s *SingleDate) IsPast(time.Time) bool { return false }

func (s *SingleDate) IsSelected(d time.Time) bool {
	return !s.Value.IsZero() && sameDay(d, s.Value)
}

func (s *SingleDate) InRange(time.Time) bool { return false }
