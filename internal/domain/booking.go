package domain

// BookingRequest is a submitted booking form.
type BookingRequest struct {
	ID        string `db:"id" json:"id"`
	SessionID string `db:"session_id" json:"-"`
	CarID     string `db:"car_id" json:"carId"`
	Name      string `db:"name" json:"name"`
	Email     string `db:"email" json:"email"`
	StartDate string `db:"start_date" json:"startDate"`
	EndDate   string `db:"end_date" json:"endDate,omitempty"`
	Comment   string `db:"comment" json:"comment,omitempty"`
	CreatedAt string `db:"created_at" json:"createdAt"`
}
