package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Service  string         `yaml:"service"`
	Env      string         `yaml:"env"`
	HTTP     HTTPConfig     `yaml:"http"`
	Storage  StorageConfig  `yaml:"storage"`
	Log      LogConfig      `yaml:"log"`
	Tracing  TracingConfig  `yaml:"tracing"`
	Payment  PaymentConfig  `yaml:"payment"`
	Shipping ShippingConfig `yaml:"shipping"`
	Bus      BusConfig      `yaml:"bus"`
	Cart     CartConfig     `yaml:"cart"`
}

type HTTPConfig struct {
	Addr            string          `yaml:"addr"`
	ShutdownTimeout time.Duration   `yaml:"shutdown_timeout"`
	RateLimit       RateLimitConfig `yaml:"rate_limit"`
}

// RateLimitConfig bounds mutating requests per session or user.
type RateLimitConfig struct {
	PerSecond float64 `yaml:"per_second"`
	Burst     int     `yaml:"burst"`
}

type StorageConfig struct {
	// Driver is one of memory, sqlite or postgres.
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

type TracingConfig struct {
	Endpoint    string  `yaml:"endpoint"`
	Insecure    bool    `yaml:"insecure"`
	SampleRatio float64 `yaml:"sample_ratio"`
}

type PaymentConfig struct {
	SuccessRate float64 `yaml:"success_rate"`
}

type ShippingConfig struct {
	Express string `yaml:"express"`
}

type BusConfig struct {
	QueueSize      int           `yaml:"queue_size"`
	Concurrency    int           `yaml:"concurrency"`
	HandlerTimeout time.Duration `yaml:"handler_timeout"`
}

// CartConfig bounds how long an unused cart session stays in memory. Its
// snapshot outlives the eviction.
type CartConfig struct {
	IdleTTL       time.Duration `yaml:"idle_ttl"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

func Default() *Config {
	return &Config{
		Service: "corralon-storefront",
		Env:     "dev",
		HTTP: HTTPConfig{
			Addr:            ":8080",
			ShutdownTimeout: 10 * time.Second,
			RateLimit:       RateLimitConfig{PerSecond: 5, Burst: 10},
		},
		Storage:  StorageConfig{Driver: "sqlite", DSN: "storefront.db"},
		Log:      LogConfig{Level: "info"},
		Tracing:  TracingConfig{Insecure: true, SampleRatio: 1},
		Payment:  PaymentConfig{SuccessRate: 0.9},
		Shipping: ShippingConfig{Express: "6500"},
		Bus:      BusConfig{QueueSize: 1024, Concurrency: 8, HandlerTimeout: 30 * time.Second},
		Cart:     CartConfig{IdleTTL: 30 * time.Minute, SweepInterval: time.Minute},
	}
}

// Load reads path over the defaults, then applies environment overrides.
// A missing file is not an error; an empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := map[string]*string{
		"SERVICE_NAME":                &c.Service,
		"ENV":                         &c.Env,
		"HTTP_ADDR":                   &c.HTTP.Addr,
		"STORAGE_DRIVER":              &c.Storage.Driver,
		"STORAGE_DSN":                 &c.Storage.DSN,
		"OTEL_EXPORTER_OTLP_ENDPOINT": &c.Tracing.Endpoint,
		"LOG_LEVEL":                   &c.Log.Level,
		"LOG_FILE":                    &c.Log.File,
		"SHIPPING_EXPRESS":            &c.Shipping.Express,
	}
	for key, dst := range str {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	if v, ok := lookup("PAYMENT_SUCCESS_RATE"); ok && v != "" {
		rate, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("PAYMENT_SUCCESS_RATE: %w", err)
		}
		c.Payment.SuccessRate = rate
	}
	if v, ok := lookup("HTTP_SHUTDOWN_TIMEOUT"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("HTTP_SHUTDOWN_TIMEOUT: %w", err)
		}
		c.HTTP.ShutdownTimeout = d
	}
	if v, ok := lookup("CART_IDLE_TTL"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("CART_IDLE_TTL: %w", err)
		}
		c.Cart.IdleTTL = d
	}
	return nil
}

func (c *Config) Validate() error {
	var problems []string
	if strings.TrimSpace(c.Service) == "" {
		problems = append(problems, "service is required")
	}
	if c.HTTP.Addr == "" {
		problems = append(problems, "http.addr is required")
	}
	if c.HTTP.ShutdownTimeout <= 0 {
		problems = append(problems, "http.shutdown_timeout must be positive")
	}
	if c.HTTP.RateLimit.PerSecond <= 0 || c.HTTP.RateLimit.Burst <= 0 {
		problems = append(problems, "http.rate_limit needs positive per_second and burst")
	}
	switch c.Storage.Driver {
	case "memory":
	case "sqlite", "postgres":
		if c.Storage.DSN == "" {
			problems = append(problems, "storage.dsn is required for "+c.Storage.Driver)
		}
	default:
		problems = append(problems, fmt.Sprintf("storage.driver %q is not one of memory, sqlite, postgres", c.Storage.Driver))
	}
	if c.Payment.SuccessRate < 0 || c.Payment.SuccessRate > 1 {
		problems = append(problems, "payment.success_rate must be between 0 and 1")
	}
	if d, err := decimal.NewFromString(c.Shipping.Express); err != nil || d.IsNegative() {
		problems = append(problems, "shipping.express must be a non-negative amount")
	}
	if c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1 {
		problems = append(problems, "tracing.sample_ratio must be between 0 and 1")
	}
	if c.Cart.IdleTTL <= 0 || c.Cart.SweepInterval <= 0 {
		problems = append(problems, "cart.idle_ttl and cart.sweep_interval must be positive")
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// ExpressShipping is the validated express delivery cost.
func (c *Config) ExpressShipping() decimal.Decimal {
	return decimal.RequireFromString(c.Shipping.Express)
}
