package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/raaihank/doc-sentinel/internal/analyzer"
)

// AnalysisCache is a Redis-backed cache for analysis results, keyed by a
// hash of the redacted text together with the level and model that
// produced it. Only post-sanitization content ever reaches Redis. Cache
// failures degrade to a miss and never fail a request.
type AnalysisCache struct {
	client *redis.Client
	config *Config
	logger *zap.Logger
	stats  *cacheStats
}

type cacheStats struct {
	hits   atomic.Int64
	misses atomic.Int64
}

// Config contains cache configuration.
type Config struct {
	Enabled    bool          `yaml:"enabled" mapstructure:"enabled"`
	RedisURL   string        `yaml:"redis_url" mapstructure:"redis_url"`
	DefaultTTL time.Duration `yaml:"default_ttl" mapstructure:"default_ttl"`
	KeyPrefix  string        `yaml:"key_prefix" mapstructure:"key_prefix"`
}

// Stats reports cache hit/miss counters.
type Stats struct {
	Hits    int64   `json:"hits"`
	Misses  int64   `json:"misses"`
	HitRate float64 `json:"hit_rate"`
}

// New creates an analysis cache and verifies the Redis connection.
func New(config *Config, logger *zap.Logger) (*AnalysisCache, error) {
	opts, err := redis.ParseURL(config.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	client := redis.NewClient(opts)

	cache := &AnalysisCache{
		client: client,
		config: config,
		logger: logger,
		stats:  &cacheStats{},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Analysis cache initialized",
		zap.String("redis_url", maskRedisURL(config.RedisURL)),
		zap.Duration("default_ttl", config.DefaultTTL),
	)
	return cache, nil
}

// Key derives the cache key for a redacted text analyzed at a given level
// by a given backend.
func (c *AnalysisCache) Key(redactedText, level, backend string) string {
	hasher := sha256.New()
	hasher.Write([]byte(level))
	hasher.Write([]byte{0})
	hasher.Write([]byte(backend))
	hasher.Write([]byte{0})
	hasher.Write([]byte(redactedText))
	return fmt.Sprintf("%s:analysis:%s", c.config.KeyPrefix, hex.EncodeToString(hasher.Sum(nil))[:16])
}

// Get looks up a cached analysis result. A lookup error counts as a miss.
func (c *AnalysisCache) Get(ctx context.Context, key string) (*analyzer.Result, bool) {
	data, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		c.stats.misses.Add(1)
		return nil, false
	}
	if err != nil {
		c.stats.misses.Add(1)
		c.logger.Error("Cache lookup failed", zap.Error(err))
		return nil, false
	}

	var result analyzer.Result
	if err := json.Unmarshal([]byte(data), &result); err != nil {
		c.logger.Error("Failed to unmarshal cached result", zap.Error(err))
		c.client.Del(ctx, key)
		c.stats.misses.Add(1)
		return nil, false
	}

	c.stats.hits.Add(1)
	c.logger.Debug("Analysis cache hit", zap.String("key", key))
	return &result, true
}

// Set caches an analysis result with the configured TTL.
func (c *AnalysisCache) Set(ctx context.Context, key string, result *analyzer.Result) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal result for caching: %w", err)
	}
	if err := c.client.Set(ctx, key, data, c.config.DefaultTTL).Err(); err != nil {
		c.logger.Error("Failed to cache analysis result", zap.Error(err))
		return fmt.Errorf("failed to cache analysis result: %w", err)
	}
	return nil
}

// GetStats returns hit/miss counters.
func (c *AnalysisCache) GetStats() Stats {
	stats := Stats{Hits: c.stats.hits.Load(), Misses: c.stats.misses.Load()}
	if total := stats.Hits + stats.Misses; total > 0 {
		stats.HitRate = float64(stats.Hits) / float64(total) * 100
	}
	return stats
}

// Close closes the Redis connection.
func (c *AnalysisCache) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// maskRedisURL masks credentials in a Redis URL for logging.
func maskRedisURL(url string) string {
	if strings.Contains(url, "@") {
		parts := strings.Split(url, "@")
		if len(parts) >= 2 {
			userPart := parts[0]
			if strings.Contains(userPart, ":") {
				userParts := strings.Split(userPart, ":")
				if len(userParts) >= 3 {
					userParts[len(userParts)-1] = "***"
					parts[0] = strings.Join(userParts, ":")
				}
			}
			return strings.Join(parts, "@")
		}
	}
	return url
}
