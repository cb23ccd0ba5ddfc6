// Package ratelimit throttles API requests per client and endpoint tier.
package ratelimit

import (
	"math"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Info describes the limit applied to one request.
type Info struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetTime  time.Time
	RetryAfter time.Duration
}

type entry struct {
	limiter  *rate.Limiter
	limit    int
	lastSeen time.Time
}

// Limiter keeps one token bucket per client, endpoint and method.
type Limiter struct {
	mu          sync.Mutex
	config      *Config
	entries     map[string]*entry
	lastCleanup time.Time
	now         func() time.Time
}

// NewLimiter creates a limiter. A nil config allows 1000 requests a minute.
func NewLimiter(cfg *Config) *Limiter {
	if cfg == nil {
		cfg = &Config{Enabled: true, DefaultLimit: 1000, DefaultWindow: time.Minute}
	}
	if cfg.EntryTTL <= 0 {
		cfg.EntryTTL = time.Hour
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = 5 * time.Minute
	}
	return &Limiter{
		config:      cfg,
		entries:     make(map[string]*entry),
		lastCleanup: time.Now(),
		now:         time.Now,
	}
}

// Allow reports whether clientID may call method on path now.
func (l *Limiter) Allow(clientID string, path string, method string) (bool, Info) {
	if !l.config.Enabled || l.config.Whitelist[clientID] {
		return true, Info{Allowed: true}
	}
	if l.config.Blacklist[clientID] {
		return false, Info{}
	}

	tier := MatchEndpoint(path, method, l.config.EndpointConfigs)
	var key string
	if tier == nil {
		tier = &EndpointConfig{
			Limit:  l.config.DefaultLimit,
			Window: l.config.DefaultWindow,
			Burst:  l.config.DefaultLimit,
		}
		key = clientID + ":default"
	} else {
		key = clientID + ":" + tier.Method + ":" + tier.Path
	}
	if tier.Limit <= 0 || tier.Window <= 0 {
		return true, Info{Allowed: true}
	}

	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()

	l.sweep(now)
	e := l.entries[key]
	if e == nil {
		burst := tier.Burst
		if burst <= 0 {
			burst = tier.Limit
		}
		every := tier.Window / time.Duration(tier.Limit)
		e = &entry{limiter: rate.NewLimiter(rate.Every(every), burst), limit: tier.Limit}
		l.entries[key] = e
	}
	e.lastSeen = now

	allowed := e.limiter.AllowN(now, 1)
	tokens := e.limiter.TokensAt(now)
	info := Info{
		Allowed:   allowed,
		Limit:     e.limit,
		Remaining: max(0, int(math.Floor(tokens))),
		ResetTime: now.Add(untilFull(e.limiter, tokens)),
	}
	if !allowed {
		info.RetryAfter = seconds((1 - tokens) / float64(e.limiter.Limit()))
	}
	return allowed, info
}

// untilFull is how long the bucket needs to refill completely.
func untilFull(lim *rate.Limiter, tokens float64) time.Duration {
	missing := float64(lim.Burst()) - tokens
	if missing <= 0 {
		return 0
	}
	return seconds(missing / float64(lim.Limit()))
}

func seconds(s float64) time.Duration {
	return time.Duration(math.Round(s * float64(time.Second)))
}

// sweep drops buckets idle longer than EntryTTL. Callers hold l.mu.
func (l *Limiter) sweep(now time.Time) {
	if now.Sub(l.lastCleanup) < l.config.CleanupInterval {
		return
	}
	for key, e := range l.entries {
		if now.Sub(e.lastSeen) > l.config.EntryTTL {
			delete(l.entries, key)
		}
	}
	l.lastCleanup = now
}

// Len returns the number of live buckets.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
