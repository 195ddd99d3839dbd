package main

import (
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"

	"rentalcar/internal/config"
	"rentalcar/internal/http/handlers"
	"rentalcar/internal/kv"
	applog "rentalcar/internal/log"
	"rentalcar/internal/metrics"
	"rentalcar/internal/rentalapi"
	"rentalcar/internal/repos"
	"rentalcar/internal/retry"
)

func main() {
	cfg := config.Load()

	if err := applog.Init(cfg.Env, cfg.LogLevel, cfg.LogFile); err != nil {
		log.Printf("[warn] logger: %v", err)
	}
	defer applog.Sync()

	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	var store kv.Store
	switch cfg.StorageDriver {
	case "memory":
		store = kv.NewMemory()
	case "redis":
		r, err := kv.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.Fatalf("[redis] %v", err)
		}
		defer r.Close()
		store = r
	default:
		store = repos.NewKVRepo(db)
	}
	applog.L().Info("storage", zap.String("driver", cfg.StorageDriver))

	policy := retry.Default()
	policy.MaxAttempts = cfg.RetryAttempts
	policy.BaseDelay = cfg.RetryBaseDelay
	api := rentalapi.New(cfg.APIBaseURL, cfg.APITimeout, policy, cfg.APIRPS)

	// Templates & app
	engine := handlers.NewEngine(cfg.TemplatesDir)
	engine.Reload(!cfg.IsProduction())

	app := fiber.New(fiber.Config{
		Views:        engine,
		ErrorHandler: handlers.ErrorHandler,
	})
	// Global body size guard
	app.Server().MaxRequestBodySize = 1 << 20 // 1 MiB

	// ---------- Middlewares ----------
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(metrics.Middleware())
	app.Use(helmet.New())
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			p := string(c.Request().URI().Path())
			return strings.HasPrefix(p, "/static/") || p == "/metrics" || p == "/healthz"
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.limit.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).Render("notfound", fiber.Map{"Message": "Too many requests. Please slow down."})
		},
	}))
	app.Use(csrf.New(csrf.Config{
		KeyLookup:      "form:csrf",
		CookieName:     "csrf_",
		CookieSameSite: "Lax",
		CookieSecure:   cfg.IsProduction(),
		Next: func(c *fiber.Ctx) bool {
			return strings.HasPrefix(c.Path(), "/api/")
		},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Security(c, "csrf.fail", nil)
			return c.Status(fiber.StatusForbidden).Render("notfound", fiber.Map{"Message": "Security check failed. Please refresh and try again."})
		},
	}))
	app.Use(func(c *fiber.Ctx) error {
		if tok, ok := c.Locals("csrf").(string); ok {
			c.Locals("CSRFToken", tok)
		}
		return c.Next()
	})

	app.Static("/static", cfg.StaticDir)

	// ---------- App handlers ----------
	deps := handlers.NewDeps(cfg, api, store, db)

	app.Get("/", deps.CatalogHandler.Home)
	app.Get("/catalog", deps.CatalogHandler.List)
	app.Post("/catalog/filters", deps.CatalogHandler.Filters)
	app.Post("/catalog/more", deps.CatalogHandler.More)
	app.Post("/catalog/retry", deps.CatalogHandler.Retry)

	app.Get("/catalog/:id", deps.CarHandler.Detail)
	app.Post("/catalog/:id/booking/date", deps.CarHandler.SelectDate)
	app.Post("/catalog/:id/booking", limiter.New(limiter.Config{
		Max:        10,
		Expiration: 10 * time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.booking.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).Render("notfound", fiber.Map{"Message": "Too many booking attempts. Please try again later."})
		},
	}), deps.CarHandler.Submit)

	app.Get("/favorites", deps.FavoritesHandler.List)
	app.Post("/favorites/toggle", deps.FavoritesHandler.Toggle)

	// Same-origin proxy
	proxy := app.Group("/api")
	proxy.Get("/brands", deps.ProxyHandler.Brands)
	proxy.Get("/cars", deps.ProxyHandler.Cars)
	proxy.Get("/cars/:id", deps.ProxyHandler.CarDetails)

	// Health, metrics & 404
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true, "catalogSessions": deps.Registry.Len()})
	})
	app.Get("/metrics", metrics.Handler())
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(404).Render("notfound", fiber.Map{"Message": "Page not found"})
	})

	log.Fatal(app.Listen(":" + cfg.Port))
}
