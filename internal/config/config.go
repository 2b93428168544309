// Package config provides centralized configuration loaded from
// environment variables. Shared by both cmd/api and cmd/scout.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ferranmarti/scoutdesk/internal/analysis"
	"github.com/ferranmarti/scoutdesk/internal/player"
)

// Config is populated from environment variables with sensible
// defaults. Analysis policy is deliberately configuration, not code:
// the ideal distributions and thresholds are a scouting decision.
type Config struct {
	// API server
	APIHost     string
	APIPort     int
	Environment string // development, staging, production
	Debug       bool

	// CORS
	CORSAllowOrigins []string

	// Rate limiting (inbound)
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// Scrape gateway (upstream)
	GatewayURL     string
	GatewayAPIKey  string
	GatewayRPM     int
	GatewayRetries int
	GatewayTimeout time.Duration

	// Fetch orchestration
	FetchWorkers int
	FetchTimeout time.Duration

	// Search
	MinQueryLen int

	// Optional Postgres player archive
	DatabaseURL    string
	DBPoolMinConns int
	DBPoolMaxConns int
	DBPoolMaxLife  time.Duration

	// Squad-balance policy
	Analysis analysis.Config
}

// Load reads configuration from environment variables and validates
// the analysis policy.
func Load() (*Config, error) {
	cfg := &Config{
		APIHost:     envOr("API_HOST", "0.0.0.0"),
		APIPort:     envInt("API_PORT", envInt("PORT", 8000)),
		Environment: envOr("ENVIRONMENT", "development"),
		Debug:       envBool("DEBUG", false),

		CORSAllowOrigins: envList("CORS_ALLOW_ORIGINS", []string{
			"http://localhost:3000",
			"http://localhost:5173",
			"http://127.0.0.1:5500",
		}),

		RateLimitEnabled:  envBool("RATE_LIMIT_ENABLED", true),
		RateLimitRequests: envInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow:   time.Duration(envInt("RATE_LIMIT_WINDOW", 60)) * time.Second,

		GatewayURL:     envOr("SCRAPE_GATEWAY_URL", "http://localhost:8191"),
		GatewayAPIKey:  envOr("SCRAPE_GATEWAY_API_KEY", ""),
		GatewayRPM:     envInt("SCRAPE_GATEWAY_RPM", 30),
		GatewayRetries: envInt("SCRAPE_GATEWAY_RETRIES", 2),
		GatewayTimeout: time.Duration(envInt("SCRAPE_GATEWAY_TIMEOUT_SECONDS", 30)) * time.Second,

		FetchWorkers: envInt("FETCH_WORKERS", 6),
		FetchTimeout: time.Duration(envInt("FETCH_TIMEOUT_SECONDS", 15)) * time.Second,

		MinQueryLen: envInt("MIN_QUERY_LENGTH", 3),

		DatabaseURL:    envOr("DATABASE_URL", ""),
		DBPoolMinConns: envInt("DB_POOL_MIN_CONNS", 1),
		DBPoolMaxConns: envInt("DB_POOL_MAX_CONNS", 5),
		DBPoolMaxLife:  time.Duration(envInt("DB_POOL_MAX_LIFE_MINUTES", 30)) * time.Minute,

		Analysis: loadAnalysis(),
	}

	if cfg.FetchWorkers <= 0 {
		return nil, fmt.Errorf("FETCH_WORKERS must be positive, got %d", cfg.FetchWorkers)
	}
	if cfg.MinQueryLen < 1 {
		return nil, fmt.Errorf("MIN_QUERY_LENGTH must be at least 1, got %d", cfg.MinQueryLen)
	}
	if err := cfg.Analysis.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// IsProduction returns true if running in production environment.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func loadAnalysis() analysis.Config {
	a := analysis.Default()
	a.IdealAge = envAgeDist("IDEAL_AGE_DISTRIBUTION", a.IdealAge)
	a.IdealPhase = envPhaseDist("IDEAL_PHASE_DISTRIBUTION", a.IdealPhase)
	a.AgeWeight = envFloat("BALANCE_AGE_WEIGHT", a.AgeWeight)
	a.PhaseWeight = envFloat("BALANCE_PHASE_WEIGHT", a.PhaseWeight)
	a.SquadSizeMin = envInt("SQUAD_SIZE_MIN", a.SquadSizeMin)
	a.SquadSizeMax = envInt("SQUAD_SIZE_MAX", a.SquadSizeMax)
	a.Materiality = envFloat("GAP_MATERIALITY", a.Materiality)
	return a
}

// --------------------------------------------------------------------------
// Env helpers
// --------------------------------------------------------------------------

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}

// envDist parses "bucket:share,bucket:share" pairs. A malformed value
// falls back wholesale; partial overrides would break the sum-to-one
// validation in confusing ways.
func envDist(key string) (map[string]float64, bool) {
	v := os.Getenv(key)
	if v == "" {
		return nil, false
	}
	out := make(map[string]float64)
	for _, pair := range strings.Split(v, ",") {
		name, share, found := strings.Cut(strings.TrimSpace(pair), ":")
		if !found {
			return nil, false
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(share), 64)
		if err != nil {
			return nil, false
		}
		out[strings.TrimSpace(name)] = f
	}
	return out, true
}

// warnMalformedDist makes a typo in a distribution override visible
// instead of letting the silent default fallback hide it.
func warnMalformedDist(key string) {
	if os.Getenv(key) != "" {
		slog.Warn("ignoring malformed distribution override, using default",
			"key", key, "value", os.Getenv(key))
	}
}

func envAgeDist(key string, fallback map[player.AgeBucket]float64) map[player.AgeBucket]float64 {
	raw, ok := envDist(key)
	if !ok {
		warnMalformedDist(key)
		return fallback
	}
	out := make(map[player.AgeBucket]float64, len(raw))
	for k, v := range raw {
		out[player.AgeBucket(k)] = v
	}
	return out
}

func envPhaseDist(key string, fallback map[player.Phase]float64) map[player.Phase]float64 {
	raw, ok := envDist(key)
	if !ok {
		warnMalformedDist(key)
		return fallback
	}
	out := make(map[player.Phase]float64, len(raw))
	for k, v := range raw {
		out[player.Phase(k)] = v
	}
	return out
}
