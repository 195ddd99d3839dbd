package booking

import (
	"strings"
	"time"
	"unicode/utf8"

	"rentalcar/internal/validate"
)

// Values are the booking form fields as typed, also the draft format.
type Values struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	BookingDate    string `json:"bookingDate"`
	BookingEndDate string `json:"bookingEndDate,omitempty"`
	Comment        string `json:"comment"`
	SelectionMode  string `json:"selectionMode,omitempty"`
}

func (v Values) IsZero() bool { return v == (Values{}) }

// FieldErrors maps a field name to its message.
type FieldErrors map[string]string

// Selector rebuilds the date-range picker state. Without a stored mode, a lone
// start date means the next pick sets the end.
func (v Values) Selector(now Clock) *RangeSelector {
	mode := ParseMode(v.SelectionMode)
	if v.SelectionMode == "" && v.BookingDate != "" && v.BookingEndDate == "" {
		mode = ExpectEnd
	}
	return RestoreRange(v.BookingDate, v.BookingEndDate, mode, now)
}

// SetRange copies the selector's dates and mode back into the form.
func (v *Values) SetRange(s *RangeSelector) {
	v.BookingDate, v.BookingEndDate = "", ""
	if d, ok := s.Start(); ok {
		v.BookingDate = d.Format(ISODate)
	}
	if d, ok := s.End(); ok {
		v.BookingEndDate = d.Format(ISODate)
	}
	v.SelectionMode = s.Mode().String()
}

// Single rebuilds the one-field picker. It stays open until a date is chosen, or
// while the form keeps it reopened.
func (v Values) Single(now Clock) *SingleDate {
	s := &SingleDate{Open: v.BookingDate == "" || v.SelectionMode == pickerOpen}
	if d, err := time.ParseInLocation(ISODate, v.BookingDate, now().Location()); err == nil {
		s.Value = d
	}
	return s
}

// SetSingle copies the one-field picker back into the form. It never carries an
// end date.
func (v *Values) SetSingle(s *SingleDate) {
	v.BookingDate, v.BookingEndDate, v.SelectionMode = "", "", ""
	if !s.Value.IsZero() {
		v.BookingDate = s.Value.Format(ISODate)
	}
	if s.Open {
		v.SelectionMode = pickerOpen
	}
}

const pickerOpen = "open"

// Normalize trims the free-text fields.
func (v Values) Normalize() Values {
	v.Name = strings.TrimSpace(v.Name)
	v.Email = strings.TrimSpace(v.Email)
	v.Comment = strings.TrimSpace(v.Comment)
	return v
}

// Validate checks the form as of now. An empty result means it may be submitted.
func (v Values) Validate(now time.Time) FieldErrors {
	errs := FieldErrors{}
	v = v.Normalize()

	switch {
	case v.Name == "":
		errs["name"] = "Name is required"
	case utf8.RuneCountInString(v.Name) < 2:
		errs["name"] = "Enter at least 2 characters"
	case !validate.Length(v.Name, 2, 60):
		errs["name"] = "Too long"
	}

	if v.Email == "" {
		errs["email"] = "Email is required"
	} else if _, ok := validate.Email(v.Email); !ok {
		errs["email"] = "Enter a valid email"
	}

	loc := now.Location()
	today := DayOf(now)
	start, err := time.ParseInLocation(ISODate, v.BookingDate, loc)
	switch {
	case v.BookingDate == "":
		errs["bookingDate"] = "Choose a booking date"
	case err != nil:
		errs["bookingDate"] = "Choose a valid booking date"
	case start.Before(today):
		errs["bookingDate"] = "Booking date cannot be in the past"
	}
	if v.BookingEndDate != "" && errs["bookingDate"] == "" {
		end, err := time.ParseInLocation(ISODate, v.BookingEndDate, loc)
		if err != nil || end.Before(start) {
			errs["bookingEndDate"] = "End date must be on or after the start date"
		}
	}

	if !validate.Length(v.Comment, 0, 500) {
		errs["comment"] = "Maximum 500 characters"
	}
	return errs
}
