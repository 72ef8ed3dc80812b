package config

import (
	"os"
	"strconv"
	"time"
)

// RateLimitConfig tunes the token bucket guarding the reserve and cancel
// routes.  Reads are not limited; the budget exists so one client cannot
// hammer the seat row locks.  KeyStrategy picks what identifies a client
// ("ip", "user", "user_route", or the combined default); Prefix namespaces
// the redis keys.
type RateLimitConfig struct {
	Enabled        bool
	Capacity       int
	RefillTokens   int
	RefillInterval time.Duration
	TTL            time.Duration
	KeyStrategy    string
	Prefix         string
	Debug          bool
}

// LoadRateLimitConfig reads the RATE_LIMIT_* environment variables,
// falling back to a bucket of 60 with one token refilled per second.
// Nonsensical values are clamped rather than rejected so a bad variable
// never takes the limiter down.
func LoadRateLimitConfig() RateLimitConfig {
	cfg := RateLimitConfig{
		Enabled:        envBool("RATE_LIMIT_ENABLED", true),
		Capacity:       envInt("RATE_LIMIT_CAPACITY", 60),
		RefillTokens:   envInt("RATE_LIMIT_REFILL_TOKENS", 1),
		RefillInterval: durDefault("RATE_LIMIT_REFILL_INTERVAL", time.Second),
		TTL:            durDefault("RATE_LIMIT_TTL", 10*time.Minute),
		KeyStrategy:    envDefault("RATE_LIMIT_KEY_STRATEGY", "ip_user_route"),
		Prefix:         envDefault("RATE_LIMIT_PREFIX", "rl"),
		Debug:          envBool("RATE_LIMIT_DEBUG", false),
	}
	if cfg.Capacity < 1 {
		cfg.Capacity = 1
	}
	if cfg.RefillTokens < 1 {
		cfg.RefillTokens = 1
	}
	if cfg.RefillInterval <= 0 {
		cfg.RefillInterval = time.Second
	}
	// Bucket state must outlive several refill cycles or idle clients
	// reset to a full bucket.
	if minTTL := 5 * cfg.RefillInterval; cfg.TTL < minTTL {
		cfg.TTL = minTTL
	}
	return cfg
}

func envBool(key string, def bool) bool {
	switch os.Getenv(key) {
	case "1", "true", "TRUE", "True", "yes", "on":
		return true
	case "0", "false", "FALSE", "False", "no", "off":
		return false
	}
	return def
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return def
}
