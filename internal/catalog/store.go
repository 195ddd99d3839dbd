// Package catalog holds the per-session catalog state: the filter set, the cars
// accumulated across pages and the pagination cursor.
package catalog

import (
	"context"
	"errors"
	"sync"

	"rentalcar/internal/domain"
	"rentalcar/internal/metrics"
)

// Fetcher returns one page of cars. Implementations apply their own retries; any
// error they return is final for that request.
type Fetcher interface {
	FetchCars(ctx context.Context, f domain.FilterState, page int) (domain.CarsPage, error)
}

var (
	// ErrSuperseded is returned when a newer request was issued while this one was
	// in flight. Its result was dropped.
	ErrSuperseded = errors.New("catalog: result superseded by a newer request")
	// ErrAlreadyMounted is returned by Hydrate once the store has been seeded or
	// has fetched on its own.
	ErrAlreadyMounted = errors.New("catalog: store already hydrated or fetched")
)

// State is a point-in-time view of a Store.
type State struct {
	Cars       []domain.Car
	Filters    domain.FilterState
	NextPage   int
	TotalPages int
	Loading    bool
	HasMore    bool
	Error      string
}

type Option func(*Store)

// WithMessages sets how fetch errors are turned into the Error text.
func WithMessages(fn func(error) string) Option {
	return func(s *Store) { s.describe = fn }
}

type Store struct {
	fetch    Fetcher
	describe func(error) string

	mu       sync.Mutex
	st       State
	token    uint64
	hydrated bool
	fetched  bool
	mounted  bool
}

func NewStore(f Fetcher, opts ...Option) *Store {
	s := &Store{
		fetch:    f,
		describe: func(err error) string { return err.Error() },
		st:       State{Cars: []domain.Car{}, NextPage: 1, HasMore: true},
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.st
	out.Cars = append([]domain.Car(nil), s.st.Cars...)
	out.Filters = s.st.Filters.Clone()
	return out
}

// Reset clears the accumulated cars and rewinds the cursor.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
}

func (s *Store) resetLocked() {
	s.st.Cars = []domain.Car{}
	s.st.NextPage = 1
	s.st.HasMore = true
	s.st.TotalPages = 0
}

// SetFilters merges p into the current filters and refetches from page 1.
func (s *Store) SetFilters(ctx context.Context, p domain.FilterPatch) error {
	s.mu.Lock()
	s.st.Filters = s.st.Filters.Merge(p)
	s.mu.Unlock()
	return s.FetchInitial(ctx)
}

// FetchInitial resets the list and loads page 1 with the current filters. A failure
// stops pagination until the next reset.
func (s *Store) FetchInitial(ctx context.Context) error {
	s.mu.Lock()
	s.fetched = true
	s.resetLocked()
	s.token++
	tok := s.token
	s.st.Loading = true
	s.st.Error = ""
	filters := s.st.Filters
	s.mu.Unlock()

	page, err := s.fetch.FetchCars(ctx, filters, 1)

	s.mu.Lock()
	defer s.mu.Unlock()
	if tok != s.token {
		metrics.CatalogStaleResults.Inc()
		return ErrSuperseded
	}
	s.st.Loading = false
	if err != nil {
		s.st.Error = s.describe(err)
		s.st.HasMore = false
		return err
	}
	s.st.Cars = append([]domain.Car{}, page.Cars...)
	s.st.NextPage = 2
	s.st.TotalPages = page.TotalPages
	s.st.HasMore = servedPage(page, 1) < page.TotalPages
	metrics.CatalogPagesLoaded.Inc()
	return nil
}

// LoadMore appends the next page. It reports false, without touching state or the
// network, while a request is loading, when no pages remain, or when the cursor is
// past TotalPages. A failure keeps the cars and cursor so the call can be retried.
func (s *Store) LoadMore(ctx context.Context) (bool, error) {
	s.mu.Lock()
	if s.st.Loading || !s.st.HasMore || s.st.NextPage > s.st.TotalPages {
		s.mu.Unlock()
		return false, nil
	}
	s.token++
	tok := s.token
	cursor := s.st.NextPage
	filters := s.st.Filters
	s.st.Loading = true
	s.st.Error = ""
	s.mu.Unlock()

	page, err := s.fetch.FetchCars(ctx, filters, cursor)

	s.mu.Lock()
	defer s.mu.Unlock()
	if tok != s.token {
		metrics.CatalogStaleResults.Inc()
		return true, ErrSuperseded
	}
	s.st.Loading = false
	if err != nil {
		s.st.Error = s.describe(err)
		return true, err
	}
	s.st.Cars = append(s.st.Cars, page.Cars...)
	s.st.NextPage = cursor + 1
	s.st.TotalPages = page.TotalPages
	s.st.HasMore = servedPage(page, cursor) < page.TotalPages
	metrics.CatalogPagesLoaded.Inc()
	return true, nil
}

// Hydrate seeds the store with a page fetched during server rendering. It applies
// at most once and never after the store fetched on its own.
func (s *Store) Hydrate(p domain.CarsPage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.hydrated || s.fetched {
		return ErrAlreadyMounted
	}
	page := p.Page
	if page < 1 {
		page = 1
	}
	total := p.TotalPages
	if total < 1 {
		total = 1
	}
	s.st.Cars = append([]domain.Car{}, p.Cars...)
	s.st.NextPage = page + 1
	s.st.TotalPages = total
	s.st.HasMore = page < total
	s.st.Error = ""
	s.hydrated = true
	return nil
}

// Mount runs the first-render step once per store: hydrate from seed when it has
// cars, otherwise fetch page 1. Later calls do nothing.
func (s *Store) Mount(ctx context.Context, seed *domain.CarsPage) error {
	s.mu.Lock()
	if s.mounted {
		s.mu.Unlock()
		return nil
	}
	s.mounted = true
	s.mu.Unlock()

	if seed != nil && len(seed.Cars) > 0 {
		return s.Hydrate(*seed)
	}
	return s.FetchInitial(ctx)
}

// MountFailed completes the first-render step with the error of a server-side
// fetch that already ran its retries, instead of fetching again. It reports false
// when the store was already mounted.
func (s *Store) MountFailed(err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mounted {
		return false
	}
	s.mounted = true
	s.fetched = true
	s.token++
	s.resetLocked()
	s.st.Loading = false
	s.st.Error = s.describe(err)
	s.st.HasMore = false
	return true
}

func (s *Store) Mounted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mounted
}

func servedPage(p domain.CarsPage, requested int) int {
	if p.Page < 1 {
		return requested
	}
	return p.Page
}
