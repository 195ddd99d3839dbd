package services

import (
	"context"
	"encoding/json"
	"slices"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"rentalcar/internal/kv"
	applog "rentalcar/internal/log"
	"rentalcar/internal/metrics"
)

// FavoritesKey is the storage name of the favorites list.
const FavoritesKey = "rentalcar-favorites-storage"

// FavoritesService keeps an ordered set of car ids per session.
type FavoritesService struct {
	KV kv.Store

	// toggles of one session are serialized; sessions share a stripe by scope prefix
	locks [256]sync.Mutex
}

func NewFavoritesService(s kv.Store) *FavoritesService { return &FavoritesService{KV: s} }

func (s *FavoritesService) store(sessionID string) kv.Store {
	return kv.Scoped(s.KV, kv.Scope(sessionID))
}

func (s *FavoritesService) lock(sessionID string) *sync.Mutex {
	n, _ := strconv.ParseUint(kv.Scope(sessionID)[:2], 16, 8)
	return &s.locks[n]
}

func (s *FavoritesService) List(ctx context.Context, sessionID string) ([]string, error) {
	raw, ok, err := s.store(sessionID).Get(ctx, FavoritesKey)
	if err != nil || !ok {
		return []string{}, err
	}
	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		applog.L().Warn("favorites.malformed", zap.Error(err))
		return []string{}, nil
	}
	return ids, nil
}

func (s *FavoritesService) IsFavorite(ctx context.Context, sessionID, carID string) (bool, error) {
	ids, err := s.List(ctx, sessionID)
	if err != nil {
		return false, err
	}
	return slices.Contains(ids, carID), nil
}

// Toggle removes carID when present and appends it at the end otherwise. It
// reports whether carID is a favorite afterwards.
func (s *FavoritesService) Toggle(ctx context.Context, sessionID, carID string) (bool, error) {
	mu := s.lock(sessionID)
	mu.Lock()
	defer mu.Unlock()

	ids, err := s.List(ctx, sessionID)
	if err != nil {
		return false, err
	}
	var now bool
	if i := slices.Index(ids, carID); i >= 0 {
		ids = slices.Delete(ids, i, i+1)
	} else {
		ids = append(ids, carID)
		now = true
	}
	b, err := json.Marshal(ids)
	if err != nil {
		return false, err
	}
	if err := s.store(sessionID).Set(ctx, FavoritesKey, string(b)); err != nil {
		return false, err
	}
	state := "removed"
	if now {
		state = "added"
	}
	metrics.FavoritesToggled.WithLabelValues(state).Inc()
	return now, nil
}
