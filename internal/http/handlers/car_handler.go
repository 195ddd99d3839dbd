package handlers

import (
	"net/url"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"rentalcar/internal/booking"
	"rentalcar/internal/domain"
	"rentalcar/internal/log"
	"rentalcar/internal/rentalapi"
	"rentalcar/internal/services"
	"rentalcar/internal/validate"
)

const bookedMessage = "Your booking has been successfully submitted! We will contact you soon."

type CarHandler struct {
	Catalog   *services.CatalogService
	Favorites *services.FavoritesService
	Booking   *services.BookingService
	Now       booking.Clock
}

type carView struct {
	values booking.Values
	errs   booking.FieldErrors
	month  string
	booked bool
	status int
}

// Detail renders the car page with its booking widget restored from the draft.
func (h *CarHandler) Detail(c *fiber.Ctx) error {
	sid := ensureSID(c)
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		log.Security(c, "validation.fail", map[string]any{"field": "car"})
		return notFound(c, "This car is no longer available")
	}
	draft, err := h.Booking.Draft(c.UserContext(), sid, id)
	if err != nil {
		log.Error(c, "booking.draft.load.fail", err, map[string]any{"car": id})
	}
	return h.show(c, sid, id, carView{
		values: draft,
		month:  c.Query("month"),
		booked: c.Query("booked") != "",
		status: fiber.StatusOK,
	})
}

func (h *CarHandler) show(c *fiber.Ctx, sid, id string, v carView) error {
	car, err := h.Catalog.GetCar(c.UserContext(), id)
	if rentalapi.IsNotFound(err) {
		return notFound(c, "This car is no longer available")
	}
	if err != nil {
		log.Error(c, "car.detail.fail", err, map[string]any{"car": id})
		return render(c.Status(fiber.StatusBadGateway), "car", fiber.Map{
			"ID":      id,
			"Failed":  true,
			"Message": rentalapi.UserMessage(err),
		})
	}

	fav, err := h.Favorites.IsFavorite(c.UserContext(), sid, id)
	if err != nil {
		log.Error(c, "favorites.read.fail", err, map[string]any{"car": id})
	}

	now := h.Now()
	picker := h.Booking.Picker(v.values)
	focus := now
	if start, err := time.ParseInLocation(booking.ISODate, v.values.BookingDate, now.Location()); err == nil {
		focus = start
	}
	open := true
	if one, ok := picker.(*booking.SingleDate); ok {
		open = one.Open
	}
	expectEnd := false
	if sel, ok := picker.(*booking.RangeSelector); ok {
		expectEnd = sel.Mode() == booking.ExpectEnd
	}
	cal := booking.NewMonthView(now, focus)
	if y, m, ok := booking.ParseMonthKey(v.month); ok {
		cal = cal.Goto(y, m)
	}

	data := fiber.Map{
		"Car":        car,
		"Specs":      specs(car),
		"Fav":        fav,
		"Form":       v.values,
		"Errs":       v.errs,
		"Month":      cal,
		"PrevMonth":  cal.Prev().Key(),
		"NextMonth":  cal.Next().Key(),
		"Weeks":      cal.Weeks(picker),
		"Weekdays":   booking.Weekdays,
		"RangeStart": v.values.BookingDate,
		"RangeEnd":   v.values.BookingEndDate,
		"ExpectEnd":  expectEnd,
		"Single":     h.Booking.SingleDate,
		"PickerOpen": open,
	}
	if v.booked {
		data["Success"] = bookedMessage
	}
	return render(c.Status(v.status), "car", data)
}

type carSpec struct{ Label, Value string }

func specs(car domain.Car) []carSpec {
	return []carSpec{
		{"Year", strconv.Itoa(car.Year)},
		{"Type", car.Type},
		{"Fuel Consumption", car.FuelConsumption},
		{"Engine Size", car.EngineSize},
	}
}

func formValues(c *fiber.Ctx) booking.Values {
	return booking.Values{
		Name:           c.FormValue("name"),
		Email:          c.FormValue("email"),
		BookingDate:    c.FormValue("bookingDate"),
		BookingEndDate: c.FormValue("bookingEndDate"),
		Comment:        c.FormValue("comment"),
		SelectionMode:  c.FormValue("selectionMode"),
	}
}

// SelectDate handles the calendar controls of the booking form: picking a day or
// moving to another month. In single-date mode it also opens and closes the picker.
// The typed fields are kept as the draft either way.
func (h *CarHandler) SelectDate(c *fiber.Ctx) error {
	sid := ensureSID(c)
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return notFound(c, "This car is no longer available")
	}
	values := formValues(c)
	month := c.FormValue("month")
	if month == "" {
		month = c.FormValue("view")
	}

	if c.FormValue("toggle") != "" {
		if _, err := h.Booking.TogglePicker(c.UserContext(), sid, id, values); err != nil {
			log.Error(c, "booking.draft.save.fail", err, map[string]any{"car": id})
			return fiber.ErrInternalServerError
		}
	} else if day := c.FormValue("day"); day != "" {
		_, picked, err := h.Booking.SelectDate(c.UserContext(), sid, id, values, day)
		if err != nil {
			log.Error(c, "booking.draft.save.fail", err, map[string]any{"car": id})
			return fiber.ErrInternalServerError
		}
		if !picked {
			log.Info(c, "booking.date.reject", map[string]any{"car": id, "day": day})
		} else if month == "" {
			month = day[:7]
		}
	} else if err := h.Booking.SaveDraft(c.UserContext(), sid, id, values); err != nil {
		log.Error(c, "booking.draft.save.fail", err, map[string]any{"car": id})
		return fiber.ErrInternalServerError
	}

	if c.FormValue("setYear") != "" {
		if _, m, ok := booking.ParseMonthKey(month); ok {
			if yr, err := strconv.Atoi(c.FormValue("year")); err == nil {
				month = booking.NewMonthView(h.Now(), h.Now()).Goto(yr, m).Key()
			}
		}
	}

	target := "/catalog/" + url.PathEscape(id)
	if _, _, ok := booking.ParseMonthKey(month); ok {
		target += "?month=" + month
	}
	return c.Redirect(target+"#booking", fiber.StatusSeeOther)
}

// Submit validates the booking form. Errors re-render the page with the typed
// values kept; success clears the draft.
func (h *CarHandler) Submit(c *fiber.Ctx) error {
	sid := ensureSID(c)
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return notFound(c, "This car is no longer available")
	}
	values := formValues(c)
	ref, errs, err := h.Booking.Submit(c.UserContext(), sid, id, values)
	if err != nil {
		log.Error(c, "booking.submit.fail", err, map[string]any{"car": id})
		return fiber.ErrInternalServerError
	}
	if len(errs) > 0 {
		fields := make([]string, 0, len(errs))
		for f := range errs {
			fields = append(fields, f)
		}
		log.Info(c, "booking.submit.invalid", map[string]any{"car": id, "fields": fields})
		return h.show(c, sid, id, carView{
			values: values,
			errs:   errs,
			month:  c.FormValue("view"),
			status: fiber.StatusBadRequest,
		})
	}
	log.Audit(c, "booking.submit", map[string]any{"car": id, "ref": ref})
	return c.Redirect("/catalog/"+url.PathEscape(id)+"?booked="+ref+"#booking", fiber.StatusSeeOther)
}

