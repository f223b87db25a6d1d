package security

import (
	"sync"
	"testing"
)

func TestRateLimiter(t *testing.T) {
	t.Run("DisabledAllowsEverything", func(t *testing.T) {
		cfg := &Config{}
		rl := NewRateLimiter(cfg)
		for i := 0; i < 1000; i++ {
			if !rl.Allow("10.0.0.1") {
				t.Fatal("Disabled limiter rejected a request")
			}
		}
	})

	t.Run("BurstExhaustion", func(t *testing.T) {
		cfg := &Config{}
		cfg.RateLimit.Enabled = true
		cfg.RateLimit.RequestsPerMin = 5
		rl := NewRateLimiter(cfg)

		for i := 0; i < 5; i++ {
			if !rl.Allow("10.0.0.2") {
				t.Fatalf("Request %d within burst should be allowed", i)
			}
		}
		if rl.Allow("10.0.0.2") {
			t.Error("Request over burst should be rejected")
		}
	})

	// Requests from the same client hit one shared bucket; updating its
	// last-seen time must be safe against parallel requests and cleanup.
	// Run with -race.
	t.Run("ConcurrentSameClient", func(t *testing.T) {
		cfg := &Config{}
		cfg.RateLimit.Enabled = true
		cfg.RateLimit.RequestsPerMin = 100000
		rl := NewRateLimiter(cfg)

		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 200; j++ {
					if !rl.Allow("10.0.0.9") {
						t.Error("Request within a huge burst should be allowed")
						return
					}
				}
			}()
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				rl.CleanupOldLimiters()
			}
		}()
		wg.Wait()

		rl.mu.RLock()
		defer rl.mu.RUnlock()
		if len(rl.limiters) != 1 {
			t.Errorf("Expected one bucket for one client, got %d", len(rl.limiters))
		}
	})

	t.Run("ClientsIsolated", func(t *testing.T) {
		cfg := &Config{}
		cfg.RateLimit.Enabled = true
		cfg.RateLimit.RequestsPerMin = 1
		rl := NewRateLimiter(cfg)

		if !rl.Allow("10.0.0.3") {
			t.Fatal("First request should pass")
		}
		if rl.Allow("10.0.0.3") {
			t.Error("Second request from same client should be rejected")
		}
		if !rl.Allow("10.0.0.4") {
			t.Error("Other client should not be affected")
		}
	})
}
