package security

import (
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// Config contains rate limiting configuration.
type Config struct {
	RateLimit struct {
		Enabled        bool `yaml:"enabled" mapstructure:"enabled"`
		RequestsPerMin int  `yaml:"requests_per_min" mapstructure:"requests_per_min"`
	} `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// RateLimiter applies per-client token bucket rate limiting.
type RateLimiter struct {
	config   *Config
	limiters map[string]*clientLimiter
	mu       sync.RWMutex
}

// clientLimiter pairs a token bucket with its last-use time. lastSeen is
// atomic because it is updated under the map's read lock, concurrently
// with other requests from the same client and with cleanup.
type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen atomic.Int64 // unix nanoseconds
}

func (cl *clientLimiter) touch() {
	cl.lastSeen.Store(time.Now().UnixNano())
}

// NewRateLimiter creates a rate limiter.
func NewRateLimiter(cfg *Config) *RateLimiter {
	return &RateLimiter{
		config:   cfg,
		limiters: make(map[string]*clientLimiter),
	}
}

// Allow checks whether a request from the given client IP is allowed.
func (r *RateLimiter) Allow(clientIP string) bool {
	if !r.config.RateLimit.Enabled {
		return true
	}
	return r.getLimiter(clientIP).Allow()
}

func (r *RateLimiter) getLimiter(clientIP string) *rate.Limiter {
	r.mu.RLock()
	cl, exists := r.limiters[clientIP]
	r.mu.RUnlock()

	if exists {
		cl.touch()
		return cl.limiter
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if cl, exists := r.limiters[clientIP]; exists {
		cl.touch()
		return cl.limiter
	}

	perMin := r.config.RateLimit.RequestsPerMin
	cl = &clientLimiter{
		limiter: rate.NewLimiter(rate.Limit(float64(perMin)/60.0), perMin),
	}
	cl.touch()
	r.limiters[clientIP] = cl
	return cl.limiter
}

// CleanupOldLimiters removes limiters idle for over an hour to prevent
// unbounded growth.
func (r *RateLimiter) CleanupOldLimiters() {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := time.Now().Add(-time.Hour).UnixNano()
	for ip, cl := range r.limiters {
		if cl.lastSeen.Load() < cutoff {
			delete(r.limiters, ip)
		}
	}
}

// StartCleanupRoutine starts a background routine to clean up idle
// limiters.
func (r *RateLimiter) StartCleanupRoutine() {
	go func() {
		ticker := time.NewTicker(30 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			r.CleanupOldLimiters()
		}
	}()
}
