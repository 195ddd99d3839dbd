package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Technical metrics
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "route", "status"})

	ResponseTime = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_response_time_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5},
	}, []string{"method", "route"})

	UpstreamRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "upstream_requests_total",
		Help: "Requests sent to the rental API by operation and outcome",
	}, []string{"op", "outcome"})

	UpstreamRetries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "upstream_retries_total",
		Help: "Retried rental API attempts by operation",
	}, []string{"op"})

	// Business metrics
	CatalogPagesLoaded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catalog_pages_loaded_total",
		Help: "Catalog pages appended to session stores",
	})

	CatalogStaleResults = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catalog_stale_results_total",
		Help: "Catalog fetch results dropped because a newer request superseded them",
	})

	FavoritesToggled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "favorites_toggled_total",
		Help: "Favorite toggles by resulting state",
	}, []string{"state"})

	BookingsSubmitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bookings_submitted_total",
		Help: "Accepted booking requests",
	})
)

// Middleware records request count and latency per matched route.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		route := c.Route().Path
		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		RequestsTotal.WithLabelValues(c.Method(), route, strconv.Itoa(status)).Inc()
		ResponseTime.WithLabelValues(c.Method(), route).Observe(time.Since(start).Seconds())
		return err
	}
}

func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
