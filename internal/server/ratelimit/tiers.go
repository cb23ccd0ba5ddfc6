package ratelimit

import (
	"time"

	"github.com/jonathan/voicedna/internal/config"
)

// EndpointConfig is a rate limit tier for one route.
type EndpointConfig struct {
	Path   string        // exact path, or a prefix when it ends in "/"
	Method string        // HTTP method
	Limit  int           // requests per window; 0 means unlimited
	Window time.Duration
	Burst  int // defaults to Limit when 0
}

// DefaultEndpointConfigs returns the built-in tiers. Generation calls an LLM and
// is the most expensive route; analysis and imports are moderate.
func DefaultEndpointConfigs() []EndpointConfig {
	return []EndpointConfig{
		{Path: "/generate", Method: "POST", Limit: 30, Window: time.Hour, Burst: 5},
		{Path: "/calibration/rounds/", Method: "POST", Limit: 60, Window: time.Hour, Burst: 10},

		{Path: "/sessions", Method: "POST", Limit: 120, Window: time.Hour, Burst: 10},
		{Path: "/writing-samples", Method: "POST", Limit: 120, Window: time.Hour, Burst: 10},
		{Path: "/writing-samples/import", Method: "POST", Limit: 30, Window: time.Hour, Burst: 5},
		{Path: "/profile/recalibrate", Method: "POST", Limit: 10, Window: time.Hour, Burst: 2},

		{Path: "/health", Method: "GET"},
		{Path: "/metrics", Method: "GET"},
	}
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	EntryTTL        time.Duration
	CleanupInterval time.Duration
	Whitelist       map[string]bool
	Blacklist       map[string]bool
	EndpointConfigs []EndpointConfig
}

// FromConfig builds a limiter configuration from the application config.
func FromConfig(c config.RateLimitConfig) *Config {
	return &Config{
		Enabled:         !c.Disabled,
		DefaultLimit:    c.DefaultLimit,
		DefaultWindow:   c.DefaultWindow,
		EntryTTL:        c.EntryTTL,
		CleanupInterval: c.CleanupInterval,
		Whitelist:       toSet(c.Whitelist),
		Blacklist:       toSet(c.Blacklist),
		EndpointConfigs: DefaultEndpointConfigs(),
	}
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[item] = true
	}
	return set
}
