package booking

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"rentalcar/internal/kv"
	applog "rentalcar/internal/log"
)

// DraftKey is the storage key of the booking widget for a car.
func DraftKey(carID string) string { return "booking-form-" + carID }

// LoadDraft returns the saved values for key, or zero Values when nothing usable is
// stored. Malformed drafts are dropped with a warning.
func LoadDraft(ctx context.Context, s kv.Store, key string) (Values, error) {
	raw, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return Values{}, err
	}
	var v Values
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		applog.L().Warn("booking.draft.malformed", zap.String("key", key), zap.Error(err))
		if rerr := s.Remove(ctx, key); rerr != nil {
			return Values{}, rerr
		}
		return Values{}, nil
	}
	return v, nil
}

func SaveDraft(ctx context.Context, s kv.Store, key string, v Values) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.Set(ctx, key, string(b))
}

func ClearDraft(ctx context.Context, s kv.Store, key string) error {
	return s.Remove(ctx, key)
}
