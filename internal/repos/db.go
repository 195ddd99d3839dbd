package repos

import (
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

func OpenDB(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// :memory: databases are per connection.
	db.SetMaxOpenConns(1)
	if err = db.Ping(); err != nil {
		return nil, err
	}
	if err := ensureSchema(db); err != nil {
		return nil, err
	}
	return db, nil
}

func ensureSchema(db *sqlx.DB) error {
	schema := `
-- Browser-local state (favorites, booking drafts), keyed by session scope
CREATE TABLE IF NOT EXISTS kv_entries(
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updated_at TEXT DEFAULT CURRENT_TIMESTAMP
);

-- Submitted booking requests
CREATE TABLE IF NOT EXISTS booking_requests(
  id TEXT PRIMARY KEY,
  session_id TEXT NOT NULL,
  car_id TEXT NOT NULL,
  name TEXT NOT NULL,
  email TEXT NOT NULL,
  start_date TEXT NOT NULL,
  end_date TEXT NOT NULL DEFAULT '',
  comment TEXT NOT NULL DEFAULT '',
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_booking_requests_car ON booking_requests(car_id);
CREATE INDEX IF NOT EXISTS idx_booking_requests_session ON booking_requests(session_id);
`
	_, err := db.Exec(schema)
	return err
}
