package rentalapi_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentalcar/internal/domain"
	"rentalcar/internal/rentalapi"
	"rentalcar/internal/retry"
)

type upstream struct {
	mu      sync.Mutex
	queries []url.Values
	paths   []string
	handler http.HandlerFunc
}

func (u *upstream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	u.mu.Lock()
	u.queries = append(u.queries, r.URL.Query())
	u.paths = append(u.paths, r.URL.Path)
	u.mu.Unlock()
	u.handler(w, r)
}

func (u *upstream) calls() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.paths)
}

func noWait() retry.Policy {
	p := retry.Default()
	p.Sleep = func(context.Context, time.Duration) error { return nil }
	return p
}

func newClient(t *testing.T, h http.HandlerFunc) (*rentalapi.Client, *upstream) {
	t.Helper()
	u := &upstream{handler: h}
	srv := httptest.NewServer(u)
	t.Cleanup(srv.Close)
	return rentalapi.New(srv.URL, 2*time.Second, noWait(), 0), u
}

func TestFetchCarsSendsOnlySetFilters(t *testing.T) {
	c, u := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"cars":       []domain.Car{{ID: "c1", Brand: "BMW"}},
			"page":       "1",
			"totalPages": 3,
		})
	})

	page, err := c.FetchCars(context.Background(), domain.FilterState{Brand: "BMW", RentalPrice: "30"}, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 3, page.TotalPages)
	require.Len(t, page.Cars, 1)

	require.Len(t, u.queries, 1)
	assert.Equal(t, "/cars", u.paths[0])
	assert.Equal(t, url.Values{
		"page":        {"1"},
		"limit":       {"12"},
		"brand":       {"BMW"},
		"rentalPrice": {"30"},
	}, u.queries[0])
}

func TestCarsQueryIncludesZeroMileage(t *testing.T) {
	zero, max := 0, 5000
	q := rentalapi.CarsQuery(domain.FilterState{MinMileage: &zero, MaxMileage: &max}, 4)
	assert.Equal(t, "0", q.Get("minMileage"))
	assert.Equal(t, "5000", q.Get("maxMileage"))
	assert.Equal(t, "4", q.Get("page"))
	assert.False(t, q.Has("brand"))
}

func TestFetchRetriesThenSucceeds(t *testing.T) {
	var n int
	var mu sync.Mutex
	c, u := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		n++
		cur := n
		mu.Unlock()
		if cur < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`["Audi","BMW"]`))
	})

	brands, err := c.FetchBrands(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Audi", "BMW"}, brands)
	assert.Equal(t, 3, u.calls())
}

func TestFetchDetailsNotFound(t *testing.T) {
	c, u := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := c.FetchCarDetails(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, rentalapi.IsNotFound(err))
	assert.Equal(t, "The requested car could not be found.", rentalapi.UserMessage(err))
	assert.Equal(t, 3, u.calls())
	assert.Equal(t, "/cars/missing", u.paths[0])
}

func TestUserMessages(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{&rentalapi.OpError{Op: rentalapi.OpCars, Err: &rentalapi.StatusError{Status: 500}}, "The rental service ran into a problem. Please try again later."},
		{&rentalapi.OpError{Op: rentalapi.OpCars, Err: &rentalapi.StatusError{Status: 503}}, "The rental service is temporarily unavailable. Please try again later."},
		{&rentalapi.OpError{Op: rentalapi.OpCars, Err: &rentalapi.StatusError{Status: 418}}, "Something went wrong while contacting the rental service."},
		{&rentalapi.OpError{Op: rentalapi.OpCars, Err: context.DeadlineExceeded}, "Failed to fetch cars from API."},
		{&rentalapi.OpError{Op: rentalapi.OpDetails, Err: context.DeadlineExceeded}, "Failed to fetch car details."},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, rentalapi.UserMessage(tc.err))
	}
	assert.Empty(t, rentalapi.UserMessage(nil))
}

func TestProxyGetPassesQueryThrough(t *testing.T) {
	c, u := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"cars":[],"page":"2","totalPages":2}`))
	})

	body, err := c.Get(context.Background(), "/cars", "page=2&limit=12&brand=Volvo")
	require.NoError(t, err)
	assert.JSONEq(t, `{"cars":[],"page":"2","totalPages":2}`, string(body))
	assert.Equal(t, "Volvo", u.queries[0].Get("brand"))
}

func TestMalformedBodyIsAnError(t *testing.T) {
	c, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	})
	_, err := c.FetchCars(context.Background(), domain.FilterState{}, 1)
	require.Error(t, err)
	assert.Equal(t, "Failed to fetch cars from API.", rentalapi.UserMessage(err))
}

func TestContextDeadlineBoundsRequest(t *testing.T) {
	release := make(chan struct{})
	c, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-time.After(2 * time.Second):
		}
		_, _ = w.Write([]byte(`[]`))
	})
	t.Cleanup(func() { close(release) })

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()
	start := time.Now()
	_, err := c.FetchBrands(ctx)
	require.Error(t, err)
	assert.Less(t, time.Since(start), time.Second)
}
