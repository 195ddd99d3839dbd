package config

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port       string        `mapstructure:"PORT"`
	Env        string        `mapstructure:"ENV"`
	APIBaseURL string        `mapstructure:"API_BASE_URL"`
	APITimeout time.Duration `mapstructure:"API_TIMEOUT"`
	APIRPS     float64       `mapstructure:"API_RPS"`

	RetryAttempts  int           `mapstructure:"RETRY_ATTEMPTS"`
	RetryBaseDelay time.Duration `mapstructure:"RETRY_BASE_DELAY"`

	StorageDriver string `mapstructure:"STORAGE_DRIVER"` // memory | sqlite | redis
	DBDSN         string `mapstructure:"DB_DSN"`
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`

	LogLevel string `mapstructure:"LOG_LEVEL"`
	LogFile  string `mapstructure:"LOG_FILE"`

	TemplatesDir      string        `mapstructure:"TEMPLATES_DIR"`
	StaticDir         string        `mapstructure:"STATIC_DIR"`
	CatalogSessionTTL time.Duration `mapstructure:"CATALOG_SESSION_TTL"`

	BookingDateMode string `mapstructure:"BOOKING_DATE_MODE"` // range | single
}

var defaults = map[string]any{
	"PORT":                "8080",
	"ENV":                 "development",
	"API_BASE_URL":        "https://car-rental-api.goit.global",
	"API_TIMEOUT":         "10s",
	"API_RPS":             20.0,
	"RETRY_ATTEMPTS":      3,
	"RETRY_BASE_DELAY":    "1s",
	"STORAGE_DRIVER":      "sqlite",
	"DB_DSN":              "rentalcar.db",
	"REDIS_ADDR":          "localhost:6379",
	"REDIS_PASSWORD":      "",
	"REDIS_DB":            0,
	"LOG_LEVEL":           "info",
	"LOG_FILE":            "",
	"TEMPLATES_DIR":       "./web/templates",
	"STATIC_DIR":          "./web/static",
	"CATALOG_SESSION_TTL": "30m",
	"BOOKING_DATE_MODE":   "range",
}

// Load reads config.yaml (when present) and the environment, env winning.
func Load() Config {
	cfg, err := load(viper.New(), ".")
	if err != nil {
		log.Fatalf("[config] %v", err)
	}
	log.Printf("[config] PORT=%s ENV=%s API_BASE_URL=%s STORAGE_DRIVER=%s DB_DSN=%s LOG_FILE=%s",
		cfg.Port, cfg.Env, cfg.APIBaseURL, cfg.StorageDriver, cfg.DBDSN, cfg.LogFile)
	return cfg
}

func load(v *viper.Viper, paths ...string) (Config, error) {
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.AutomaticEnv()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	cfg.APIBaseURL = strings.TrimRight(cfg.APIBaseURL, "/")
	cfg.StorageDriver = strings.ToLower(strings.TrimSpace(cfg.StorageDriver))
	cfg.BookingDateMode = strings.ToLower(strings.TrimSpace(cfg.BookingDateMode))
	if cfg.RetryAttempts < 1 {
		cfg.RetryAttempts = 1
	}
	return cfg, nil
}

func (c Config) IsProduction() bool { return c.Env == "production" }

// SingleBookingDate reports whether the booking form asks for one date instead of a range.
func (c Config) SingleBookingDate() bool { return c.BookingDateMode == "single" }
