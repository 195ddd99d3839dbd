package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"rentalcar/internal/booking"
	"rentalcar/internal/domain"
	"rentalcar/internal/kv"
	"rentalcar/internal/metrics"
	"rentalcar/internal/repos"
)

// BookingService owns booking drafts and accepted booking requests.
type BookingService struct {
	KV   kv.Store
	Repo *repos.BookingRepo
	Now  booking.Clock
	// SingleDate switches the form to one booking date with a collapsible picker.
	SingleDate bool
}

func NewBookingService(s kv.Store, r *repos.BookingRepo) *BookingService {
	return &BookingService{KV: s, Repo: r, Now: time.Now}
}

func (s *BookingService) store(sessionID string) kv.Store {
	return kv.Scoped(s.KV, kv.Scope(sessionID))
}

func (s *BookingService) Draft(ctx context.Context, sessionID, carID string) (booking.Values, error) {
	return booking.LoadDraft(ctx, s.store(sessionID), booking.DraftKey(carID))
}

func (s *BookingService) SaveDraft(ctx context.Context, sessionID, carID string, v booking.Values) error {
	return booking.SaveDraft(ctx, s.store(sessionID), booking.DraftKey(carID), v)
}

// SelectDate applies a calendar pick to v and stores the result as the draft. It
// reports false when the day was not selectable.
func (s *BookingService) SelectDate(ctx context.Context, sessionID, carID string, v booking.Values, day string) (booking.Values, bool, error) {
	d, err := time.ParseInLocation(booking.ISODate, day, s.Now().Location())
	if err != nil {
		return v, false, nil
	}
	if s.SingleDate {
		one := v.Single(s.Now)
		one.Select(d)
		v.SetSingle(one)
	} else {
		sel := v.Selector(s.Now)
		if !sel.Select(d) {
			return v, false, nil
		}
		v.SetRange(sel)
	}
	if err := s.SaveDraft(ctx, sessionID, carID, v); err != nil {
		return v, true, err
	}
	return v, true, nil
}

// TogglePicker opens or closes the single-date picker and stores the draft. In
// range mode the picker is always shown and v is stored unchanged.
func (s *BookingService) TogglePicker(ctx context.Context, sessionID, carID string, v booking.Values) (booking.Values, error) {
	if s.SingleDate {
		one := v.Single(s.Now)
		one.Toggle()
		v.SetSingle(one)
	}
	return v, s.SaveDraft(ctx, sessionID, carID, v)
}

// Picker rebuilds the calendar marker for v in the configured date mode.
func (s *BookingService) Picker(v booking.Values) booking.Marker {
	if s.SingleDate {
		return v.Single(s.Now)
	}
	return v.Selector(s.Now)
}

// Submit records a valid booking request and clears the draft. Invalid values are
// kept as the draft and returned with their field errors.
func (s *BookingService) Submit(ctx context.Context, sessionID, carID string, v booking.Values) (string, booking.FieldErrors, error) {
	v = v.Normalize()
	if errs := v.Validate(s.Now()); len(errs) > 0 {
		return "", errs, s.SaveDraft(ctx, sessionID, carID, v)
	}

	req := domain.BookingRequest{
		ID:        uuid.NewString(),
		SessionID: kv.Scope(sessionID),
		CarID:     carID,
		Name:      v.Name,
		Email:     v.Email,
		StartDate: v.BookingDate,
		EndDate:   v.BookingEndDate,
		Comment:   v.Comment,
	}
	if err := s.Repo.Create(ctx, req); err != nil {
		return "", nil, err
	}
	if err := booking.ClearDraft(ctx, s.store(sessionID), booking.DraftKey(carID)); err != nil {
		return req.ID, nil, err
	}
	metrics.BookingsSubmitted.Inc()
	return req.ID, nil, nil
}
