// Package config builds the immutable process configuration from environment
// variables. The resulting value is constructed once in main and passed into
// each component; nothing reads the environment after startup.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// Trust modes select how caller trust is established before a lookup runs.
const (
	TrustModeSignature = "signature"
	TrustModeOrigin    = "origin"
)

// Config captures everything the gateway needs at startup.
type Config struct {
	Addr    string
	OpsAddr string

	TrustMode      string
	AllowedOrigins []string
	SigningSecret  string
	TrustedShop    string

	Captcha   CaptchaConfig
	RateLimit RateLimitConfig
	Redis     RedisConfig
	Backend   BackendConfig

	ShutdownTimeout time.Duration
}

// CaptchaConfig controls the optional CAPTCHA gate. An empty Secret disables
// the feature entirely.
type CaptchaConfig struct {
	Secret   string
	MinScore float64
	Timeout  time.Duration
}

// RateLimitConfig bounds requests per client IP. The limiter only runs when a
// Redis counter store is configured.
type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

// RedisConfig configures the shared counter store. An empty URL means no
// Redis and therefore no rate limiting.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// BackendConfig points at the order-management Admin API.
type BackendConfig struct {
	ShopDomain  string
	AccessToken string
	APIVersion  string
	Timeout     time.Duration
}

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() Config {
	cfg := Config{
		Addr:      envOr("ORDER_GATEWAY_ADDR", ":8080"),
		OpsAddr:   envOr("ORDER_GATEWAY_OPS_ADDR", ":9090"),
		TrustMode: envOr("TRUST_MODE", TrustModeOrigin),

		SigningSecret: os.Getenv("LOOKUP_SIGNING_SECRET"),
		TrustedShop:   os.Getenv("TRUSTED_SHOP"),

		Captcha: CaptchaConfig{
			Secret:   os.Getenv("CAPTCHA_SECRET"),
			MinScore: envFloatOr("CAPTCHA_MIN_SCORE", 0.5),
			Timeout:  envDurationOr("CAPTCHA_TIMEOUT", 5*time.Second),
		},
		RateLimit: RateLimitConfig{
			Requests: envIntOr("RATE_LIMIT_REQUESTS", 60),
			Window:   envDurationOr("RATE_LIMIT_WINDOW", time.Minute),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     envIntOr("REDIS_POOL_SIZE", 10),
			MinIdleConns: envIntOr("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDurationOr("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDurationOr("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDurationOr("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Backend: BackendConfig{
			ShopDomain:  os.Getenv("SHOP_DOMAIN"),
			AccessToken: os.Getenv("SHOP_ACCESS_TOKEN"),
			APIVersion:  envOr("SHOP_API_VERSION", "2024-07"),
			Timeout:     envDurationOr("BACKEND_TIMEOUT", 10*time.Second),
		},
		ShutdownTimeout: envDurationOr("SHUTDOWN_TIMEOUT", 10*time.Second),
	}

	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
			}
		}
	}

	return cfg
}

// Validate checks the mode-dependent requirements. A failure here is terminal:
// the gateway must not start half-configured.
func (c Config) Validate() error {
	switch c.TrustMode {
	case TrustModeSignature:
		if c.SigningSecret == "" {
			return errors.New("trust mode signature requires LOOKUP_SIGNING_SECRET")
		}
	case TrustModeOrigin:
		if len(c.AllowedOrigins) == 0 {
			return errors.New("trust mode origin requires ALLOWED_ORIGINS")
		}
	default:
		return errors.New("TRUST_MODE must be 'signature' or 'origin'")
	}

	if c.Backend.ShopDomain == "" {
		return errors.New("SHOP_DOMAIN is required")
	}
	if c.Backend.AccessToken == "" {
		return errors.New("SHOP_ACCESS_TOKEN is required")
	}
	// A zero quota disables the rate limiter; the window only matters when it
	// runs.
	if c.RateLimit.Requests > 0 && c.RateLimit.Window <= 0 {
		return errors.New("rate limit window must be positive")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
