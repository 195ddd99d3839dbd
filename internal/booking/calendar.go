package booking

import (
	"fmt"
	"time"
)

// YearWindow is how many years past the current one the calendar may show.
const YearWindow = 9

// Marker decides how a calendar cell is drawn.
type Marker interface {
	IsPast(d time.Time) bool
	IsSelected(d time.Time) bool
	InRange(d time.Time) bool
}

// MonthView is the visible month, kept within [current year, current year+9].
type MonthView struct {
	Year  int
	Month time.Month

	minYear int
	maxYear int
	today   time.Time
}

// NewMonthView opens on focus when it is set and inside the window, else on today.
func NewMonthView(now, focus time.Time) MonthView {
	v := MonthView{
		Year:    now.Year(),
		Month:   now.Month(),
		minYear: now.Year(),
		maxYear: now.Year() + YearWindow,
		today:   DayOf(now),
	}
	if !focus.IsZero() {
		v = v.Goto(focus.Year(), focus.Month())
	}
	return v
}

// Goto moves to year/month, clamped to the window edges.
func (v MonthView) Goto(year int, month time.Month) MonthView {
	if month < time.January || month > time.December {
		return v
	}
	switch {
	case year < v.minYear:
		year, month = v.minYear, time.January
	case year > v.maxYear:
		year, month = v.maxYear, time.December
	}
	v.Year, v.Month = year, month
	return v
}

func (v MonthView) SetYear(year int) MonthView {
	if year < v.minYear {
		year = v.minYear
	}
	if year > v.maxYear {
		year = v.maxYear
	}
	v.Year = year
	return v
}

func (v MonthView) Next() MonthView {
	if v.Month == time.December {
		if v.Year >= v.maxYear {
			return v
		}
		v.Year, v.Month = v.Year+1, time.January
		return v
	}
	v.Month++
	return v
}

func (v MonthView) Prev() MonthView {
	if v.Month == time.January {
		if v.Year <= v.minYear {
			return v
		}
		v.Year, v.Month = v.Year-1, time.December
		return v
	}
	v.Month--
	return v
}

func (v MonthView) HasNext() bool { return v.Year < v.maxYear || v.Month < time.December }
func (v MonthView) HasPrev() bool { return v.Year > v.minYear || v.Month > time.January }

// Years lists the selectable years.
func (v MonthView) Years() []int {
	out := make([]int, 0, YearWindow+1)
	for y := v.minYear; y <= v.maxYear; y++ {
		out = append(out, y)
	}
	return out
}

func (v MonthView) Title() string { return fmt.Sprintf("%s %d", v.Month, v.Year) }

// Key is the YYYY-MM form used in URLs.
func (v MonthView) Key() string { return fmt.Sprintf("%04d-%02d", v.Year, int(v.Month)) }

// ParseMonthKey reads a YYYY-MM value.
func ParseMonthKey(s string) (int, time.Month, bool) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return 0, 0, false
	}
	return t.Year(), t.Month(), true
}

type CalendarDay struct {
	Date     time.Time
	ISO      string
	Day      int
	Outside  bool
	Past     bool
	Today    bool
	Selected bool
	InRange  bool
}

// Weeks is the Monday-first grid covering the visible month.
func (v MonthView) Weeks(m Marker) [][]CalendarDay {
	loc := v.today.Location()
	if v.today.IsZero() {
		loc = time.Local
	}
	first := time.Date(v.Year, v.Month, 1, 0, 0, 0, 0, loc)
	offset := (int(first.Weekday()) + 6) % 7
	days := time.Date(v.Year, v.Month+1, 0, 0, 0, 0, 0, loc).Day()
	cells := (offset + days + 6) / 7 * 7

	start := first.AddDate(0, 0, -offset)
	weeks := make([][]CalendarDay, 0, cells/7)
	for i := 0; i < cells; i++ {
		d := start.AddDate(0, 0, i)
		if i%7 == 0 {
			weeks = append(weeks, make([]CalendarDay, 0, 7))
		}
		weeks[len(weeks)-1] = append(weeks[len(weeks)-1], CalendarDay{
			Date:     d,
			ISO:      d.Format(ISODate),
			Day:      d.Day(),
			Outside:  d.Month() != v.Month,
			Past:     m.IsPast(d),
			Today:    sameDay(d, v.today),
			Selected: m.IsSelected(d),
			InRange:  m.InRange(d),
		})
	}
	return weeks
}

var Weekdays = []string{"MON", "TUE", "WED", "THU", "FRI", "SAT", "SUN"}
