package config

import "time"

// RateLimitConfig defines settings for the request rate limiter.
// Limit is the number of requests a single client may make per Window.
// Keys are namespaced under Prefix in Redis.
type RateLimitConfig struct {
	Enabled bool
	Limit   int
	Window  time.Duration
	Prefix  string
}

// LoadRateLimitConfig reads the rate limiter settings from the
// environment, applying defaults and clamping nonsensical values.
func LoadRateLimitConfig() RateLimitConfig {
	cfg := RateLimitConfig{
		Enabled: envBool("RATE_LIMIT_ENABLED", true),
		Limit:   envInt("RATE_LIMIT_LIMIT", 60),
		Window:  time.Duration(envInt("RATE_LIMIT_WINDOW_SECONDS", 60)) * time.Second,
		Prefix:  getenv("RATE_LIMIT_PREFIX", "rl"),
	}
	if cfg.Limit < 1 {
		cfg.Limit = 1
	}
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}
	return cfg
}
