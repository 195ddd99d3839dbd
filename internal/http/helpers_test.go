package handlers_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"rentalcar/internal/config"
	"rentalcar/internal/domain"
	"rentalcar/internal/http/handlers"
	"rentalcar/internal/kv"
	applog "rentalcar/internal/log"
	"rentalcar/internal/rentalapi"
	"rentalcar/internal/repos"
	"rentalcar/internal/retry"
)

// fakeRental serves a fixed fleet the way the rental API does.
type fakeRental struct {
	cars     []domain.Car
	fail     atomic.Bool
	carsHits atomic.Int32

	mu      sync.Mutex
	queries []url.Values
}

func newFleet(n int) []domain.Car {
	cars := make([]domain.Car, 0, n)
	for i := 1; i <= n; i++ {
		brand := "Audi"
		if i%2 == 0 {
			brand = "BMW"
		}
		cars = append(cars, domain.Car{
			ID:               "car-" + strconv.Itoa(i),
			Year:             2020,
			Brand:            brand,
			Model:            fmt.Sprintf("Model%02d", i),
			Type:             "SUV",
			Img:              "https://img.example/" + strconv.Itoa(i) + ".jpg",
			RentalPrice:      "40",
			RentalCompany:    "Luxury Car Rentals",
			Address:          "123 Example Street, Kiev, Ukraine",
			RentalConditions: []string{"Minimum age: 25"},
			Mileage:          5858,
		})
	}
	return cars
}

func (f *fakeRental) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.queries = append(f.queries, r.URL.Query())
	f.mu.Unlock()
	if r.URL.Path == "/cars" {
		f.carsHits.Add(1)
	}
	if f.fail.Load() {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	switch {
	case r.URL.Path == "/brands":
		_, _ = w.Write([]byte(`["BMW","Audi"]`))
	case r.URL.Path == "/cars":
		q := r.URL.Query()
		matched := []domain.Car{}
		for _, c := range f.cars {
			if b := q.Get("brand"); b != "" && c.Brand != b {
				continue
			}
			matched = append(matched, c)
		}
		page, _ := strconv.Atoi(q.Get("page"))
		limit, _ := strconv.Atoi(q.Get("limit"))
		if page < 1 {
			page = 1
		}
		if limit < 1 {
			limit = 12
		}
		total := (len(matched) + limit - 1) / limit
		from := min((page-1)*limit, len(matched))
		to := min(from+limit, len(matched))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"cars":       matched[from:to],
			"page":       strconv.Itoa(page),
			"totalPages": total,
		})
	case strings.HasPrefix(r.URL.Path, "/cars/"):
		id := strings.TrimPrefix(r.URL.Path, "/cars/")
		if id == "broken" {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		for _, c := range f.cars {
			if c.ID == id {
				_ = json.NewEncoder(w).Encode(c)
				return
			}
		}
		w.WriteHeader(http.StatusNotFound)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (f *fakeRental) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queries)
}

func (f *fakeRental) lastQuery() url.Values {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.queries) == 0 {
		return nil
	}
	return f.queries[len(f.queries)-1]
}

type testEnv struct {
	app  *fiber.App
	up   *fakeRental
	deps *handlers.Deps
}

// newTestEnv wires the real handlers against a fake upstream. extra runs before
// the routes are registered so tests can add route-level middleware.
func newTestEnv(t *testing.T, fleet []domain.Car, extra ...func(*fiber.App, *handlers.Deps)) *testEnv {
	t.Helper()
	up := &fakeRental{cars: fleet}
	srv := httptest.NewServer(up)
	t.Cleanup(srv.Close)

	policy := retry.Default()
	policy.Sleep = func(context.Context, time.Duration) error { return nil }
	api := rentalapi.New(srv.URL, 2*time.Second, policy, 0)

	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	cfg := config.Config{CatalogSessionTTL: time.Minute}
	deps := handlers.NewDeps(cfg, api, kv.NewMemory(), db)

	app := fiber.New(fiber.Config{
		Views: handlers.NewEngine("../../web/templates"),
		ErrorHandler: handlers.ErrorHandler,
	})
	app.Server().MaxRequestBodySize = 1 << 20
	app.Use(requestid.New())
	app.Use(csrf.New(csrf.Config{
		KeyLookup:      "form:csrf",
		CookieName:     "csrf_",
		CookieSameSite: "Lax",
		Next:           func(c *fiber.Ctx) bool { return strings.HasPrefix(c.Path(), "/api/") },
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Security(c, "csrf.fail", nil)
			return c.Status(fiber.StatusForbidden).SendString("Security check failed")
		},
	}))
	for _, fn := range extra {
		fn(app, deps)
	}

	app.Get("/", deps.CatalogHandler.Home)
	app.Get("/catalog", deps.CatalogHandler.List)
	app.Post("/catalog/filters", deps.CatalogHandler.Filters)
	app.Post("/catalog/more", deps.CatalogHandler.More)
	app.Post("/catalog/retry", deps.CatalogHandler.Retry)
	app.Get("/catalog/:id", deps.CarHandler.Detail)
	app.Post("/catalog/:id/booking/date", deps.CarHandler.SelectDate)
	app.Post("/catalog/:id/booking", deps.CarHandler.Submit)
	app.Get("/favorites", deps.FavoritesHandler.List)
	app.Post("/favorites/toggle", deps.FavoritesHandler.Toggle)
	app.Get("/api/brands", deps.ProxyHandler.Brands)
	app.Get("/api/cars", deps.ProxyHandler.Cars)
	app.Get("/api/cars/:id", deps.ProxyHandler.CarDetails)

	return &testEnv{app: app, up: up, deps: deps}
}

func extractCookie(resp *http.Response, name string) string {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

// browser carries the session and csrf cookies between requests.
type browser struct {
	t    *testing.T
	env  *testEnv
	sid  string
	csrf string
}

func (e *testEnv) browser(t *testing.T) *browser {
	t.Helper()
	resp, err := e.app.Test(httptest.NewRequest("GET", "/", nil))
	if err != nil {
		t.Fatal(err)
	}
	b := &browser{t: t, env: e, sid: extractCookie(resp, "sid"), csrf: extractCookie(resp, "csrf_")}
	if b.sid == "" || b.csrf == "" {
		t.Fatalf("home did not set cookies: sid=%q csrf=%q", b.sid, b.csrf)
	}
	return b
}

func (b *browser) do(req *http.Request) (*http.Response, string) {
	b.t.Helper()
	req.AddCookie(&http.Cookie{Name: "sid", Value: b.sid})
	req.AddCookie(&http.Cookie{Name: "csrf_", Value: b.csrf})
	resp, err := b.env.app.Test(req, 5000)
	if err != nil {
		b.t.Fatal(err)
	}
	body, _ := io.ReadAll(resp.Body)
	return resp, string(body)
}

func (b *browser) get(path string) (*http.Response, string) {
	return b.do(httptest.NewRequest("GET", path, nil))
}

func (b *browser) post(path string, form url.Values) (*http.Response, string) {
	if form == nil {
		form = url.Values{}
	}
	form.Set("csrf", b.csrf)
	return b.do(newFormRequest(path, form))
}

func newFormRequest(path string, form url.Values) *http.Request {
	req := httptest.NewRequest("POST", path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}
