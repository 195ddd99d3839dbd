package catalog

import (
	"sync"
	"time"
)

// Registry keeps one Store per browser session and drops stores that have been
// idle longer than ttl.
type Registry struct {
	ttl      time.Duration
	newStore func() *Store
	now      func() time.Time

	mu        sync.Mutex
	stores    map[string]*entry
	lastSweep time.Time
}

type entry struct {
	store *Store
	seen  time.Time
}

func NewRegistry(ttl time.Duration, newStore func() *Store) *Registry {
	return &Registry{ttl: ttl, newStore: newStore, now: time.Now, stores: map[string]*entry{}}
}

func (r *Registry) Get(sessionID string) *Store {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	r.sweepLocked(now)
	e, ok := r.stores[sessionID]
	if !ok {
		e = &entry{store: r.newStore()}
		r.stores[sessionID] = e
	}
	e.seen = now
	return e.store
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.stores)
}

func (r *Registry) sweepLocked(now time.Time) {
	if r.ttl <= 0 || now.Sub(r.lastSweep) < r.ttl/2 {
		return
	}
	r.lastSweep = now
	for id, e := range r.stores {
		if now.Sub(e.seen) > r.ttl {
			delete(r.stores, id)
		}
	}
}
