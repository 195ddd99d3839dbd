// Package rentalapi talks to the third-party car rental REST API.
package rentalapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"

	"rentalcar/internal/domain"
	"rentalcar/internal/metrics"
	"rentalcar/internal/retry"
)

// PageLimit is the fixed catalog page size.
const PageLimit = 12

const (
	OpBrands  = "brands"
	OpCars    = "cars"
	OpDetails = "car_details"
	OpProxy   = "proxy"
)

// Client is configured once at startup; server-rendered pages and the same-origin
// proxy share it.
type Client struct {
	BaseURL string
	Timeout time.Duration
	Retry   retry.Policy
	Limiter *rate.Limiter
}

// New builds a client. rps <= 0 disables outbound throttling.
func New(baseURL string, timeout time.Duration, policy retry.Policy, rps float64) *Client {
	c := &Client{BaseURL: baseURL, Timeout: timeout, Retry: policy}
	if rps > 0 {
		burst := int(rps)
		if burst < 1 {
			burst = 1
		}
		c.Limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
	return c
}

// CarsQuery encodes the catalog request. Only set filters are sent.
func CarsQuery(f domain.FilterState, page int) url.Values {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(PageLimit))
	if f.Brand != "" {
		q.Set("brand", f.Brand)
	}
	if f.RentalPrice != "" {
		q.Set("rentalPrice", f.RentalPrice)
	}
	if f.MinMileage != nil {
		q.Set("minMileage", strconv.Itoa(*f.MinMileage))
	}
	if f.MaxMileage != nil {
		q.Set("maxMileage", strconv.Itoa(*f.MaxMileage))
	}
	return q
}

func (c *Client) FetchBrands(ctx context.Context) ([]string, error) {
	body, err := c.get(ctx, OpBrands, "/brands", "")
	if err != nil {
		return nil, err
	}
	var out []string
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, &OpError{Op: OpBrands, Err: err}
	}
	return out, nil
}

func (c *Client) FetchCars(ctx context.Context, f domain.FilterState, page int) (domain.CarsPage, error) {
	body, err := c.get(ctx, OpCars, "/cars", CarsQuery(f, page).Encode())
	if err != nil {
		return domain.CarsPage{}, err
	}
	var out domain.CarsPage
	if err := json.Unmarshal(body, &out); err != nil {
		return domain.CarsPage{}, &OpError{Op: OpCars, Err: err}
	}
	return out, nil
}

func (c *Client) FetchCarDetails(ctx context.Context, id string) (domain.Car, error) {
	body, err := c.get(ctx, OpDetails, "/cars/"+url.PathEscape(id), "")
	if err != nil {
		return domain.Car{}, err
	}
	var out domain.Car
	if err := json.Unmarshal(body, &out); err != nil {
		return domain.Car{}, &OpError{Op: OpDetails, Err: err}
	}
	return out, nil
}

// Get returns the raw upstream body for path; the proxy routes use it.
func (c *Client) Get(ctx context.Context, path, rawQuery string) ([]byte, error) {
	return c.get(ctx, OpProxy, path, rawQuery)
}

func (c *Client) get(ctx context.Context, op, path, rawQuery string) ([]byte, error) {
	p := c.Retry
	p.OnRetry = func(int, error, time.Duration) { metrics.UpstreamRetries.WithLabelValues(op).Inc() }

	body, err := retry.Value(ctx, p, func(ctx context.Context) ([]byte, error) {
		if c.Limiter != nil {
			if err := c.Limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}
		return c.do(ctx, path, rawQuery)
	})
	if err != nil {
		metrics.UpstreamRequests.WithLabelValues(op, "error").Inc()
		return nil, &OpError{Op: op, Err: err}
	}
	metrics.UpstreamRequests.WithLabelValues(op, "ok").Inc()
	return body, nil
}

// do issues one request. The fiber Agent cannot be cancelled once sent, so the
// context only contributes its deadline: the request is bounded by the earlier of
// that deadline and Timeout.
func (c *Client) do(ctx context.Context, path, rawQuery string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	timeout := c.Timeout
	if dl, ok := ctx.Deadline(); ok {
		left := time.Until(dl)
		if left <= 0 {
			return nil, context.DeadlineExceeded
		}
		if timeout <= 0 || left < timeout {
			timeout = left
		}
	}
	a := fiber.Get(c.BaseURL + path)
	if rawQuery != "" {
		a.QueryString(rawQuery)
	}
	if timeout > 0 {
		a.Timeout(timeout)
	}
	code, body, errs := a.Bytes()
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	if code < 200 || code > 299 {
		return nil, &StatusError{Path: path, Status: code}
	}
	return body, nil
}
