// Package config reads environment-derived configuration once at startup.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config captures everything the access layer consumes from the environment.
type Config struct {
	// Environment is "development" or "production"; anything unrecognized
	// is treated as production so safety valves stay closed by default.
	Environment string

	ListenAddr  string
	PostgresDSN string

	// AuthSecret signs session credentials and service tokens. May be
	// empty; signing then fails loudly at use time.
	AuthSecret string

	SessionTTL time.Duration

	// AllowedOrigins is the cross-origin allowlist for browser clients.
	AllowedOrigins []string

	// Login rate limiting: attempts per window per client.
	LoginRateLimit  int
	LoginRateWindow time.Duration
}

// Load reads configuration from AVOLSHIP_* environment variables, applying
// defaults where unset.
func Load() Config {
	cfg := Config{
		Environment:     EnvProduction,
		ListenAddr:      envOr("AVOLSHIP_ADDR", ":8080"),
		PostgresDSN:     strings.TrimSpace(os.Getenv("AVOLSHIP_PG_DSN")),
		AuthSecret:      strings.TrimSpace(os.Getenv("AVOLSHIP_AUTH_SECRET")),
		SessionTTL:      envDuration("AVOLSHIP_SESSION_TTL", 7*24*time.Hour),
		LoginRateLimit:  envInt("AVOLSHIP_LOGIN_RATE_LIMIT", 5),
		LoginRateWindow: envDuration("AVOLSHIP_LOGIN_RATE_WINDOW", 15*time.Minute),
	}

	if env := strings.TrimSpace(strings.ToLower(os.Getenv("AVOLSHIP_ENV"))); env == EnvDevelopment {
		cfg.Environment = EnvDevelopment
	}

	if raw := os.Getenv("AVOLSHIP_ALLOWED_ORIGINS"); raw != "" {
		for _, origin := range strings.Split(raw, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, origin)
			}
		}
	}

	return cfg
}

// IsDevelopment reports whether operational escape hatches may be enabled.
func (c Config) IsDevelopment() bool {
	return c.Environment == EnvDevelopment
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
