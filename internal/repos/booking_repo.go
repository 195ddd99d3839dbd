package repos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"rentalcar/internal/domain"
)

type BookingRepo struct{ db *sqlx.DB }

func NewBookingRepo(db *sqlx.DB) *BookingRepo { return &BookingRepo{db: db} }

func (r *BookingRepo) Create(ctx context.Context, b domain.BookingRequest) error {
	if b.CreatedAt == "" {
		b.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}
	_, err := r.db.NamedExecContext(ctx, `
	  INSERT INTO booking_requests(id, session_id, car_id, name, email, start_date, end_date, comment, created_at)
	  VALUES(:id, :session_id, :car_id, :name, :email, :start_date, :end_date, :comment, :created_at)
	`, b)
	return err
}

func (r *BookingRepo) Get(ctx context.Context, id string) (domain.BookingRequest, error) {
	var b domain.BookingRequest
	err := r.db.GetContext(ctx, &b, `
	  SELECT id, session_id, car_id, name, email, start_date, end_date, comment, COALESCE(created_at,'') AS created_at
	  FROM booking_requests WHERE id=?
	`, id)
	return b, err
}

func (r *BookingRepo) ListBySession(ctx context.Context, sessionID string) ([]domain.BookingRequest, error) {
	var out []domain.BookingRequest
	err := r.db.SelectContext(ctx, &out, `
	  SELECT id, session_id, car_id, name, email, start_date, end_date, comment, COALESCE(created_at,'') AS created_at
	  FROM booking_requests
	  WHERE session_id=?
	  ORDER BY created_at DESC, id
	`, sessionID)
	return out, err
}
