package config

import (
	"time"

	"github.com/raaihank/doc-sentinel/internal/analyzer"
	"github.com/raaihank/doc-sentinel/internal/cache"
	"github.com/raaihank/doc-sentinel/internal/security"
	"github.com/raaihank/doc-sentinel/internal/store"
)

// Config represents the main configuration structure.
type Config struct {
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Privacy   PrivacyConfig   `yaml:"privacy" mapstructure:"privacy"`
	Storage   store.Config    `yaml:"storage" mapstructure:"storage"`
	Analyzer  analyzer.Config `yaml:"analyzer" mapstructure:"analyzer"`
	Cache     cache.Config    `yaml:"cache" mapstructure:"cache"`
	Security  security.Config `yaml:"security" mapstructure:"security"`
	Logging   LoggingConfig   `yaml:"logging" mapstructure:"logging"`
	WebSocket WebSocketConfig `yaml:"websocket" mapstructure:"websocket"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Port           int           `yaml:"port" mapstructure:"port"`
	ReadTimeout    time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`
	IdleTimeout    time.Duration `yaml:"idle_timeout" mapstructure:"idle_timeout"`
	MaxUploadBytes int64         `yaml:"max_upload_bytes" mapstructure:"max_upload_bytes"`
}

// PrivacyConfig contains sanitization configuration.
type PrivacyConfig struct {
	DefaultLevel string `yaml:"default_level" mapstructure:"default_level"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"` // json or console
	File   struct {
		Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
		Path    string `yaml:"path" mapstructure:"path"`
	} `yaml:"file" mapstructure:"file"`
}

// WebSocketConfig contains WebSocket configuration.
type WebSocketConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Path    string `yaml:"path" mapstructure:"path"`
}

// GetDefaults returns a configuration with sensible defaults.
func GetDefaults() *Config {
	cfg := &Config{
		Server: ServerConfig{
			Port:           8080,
			ReadTimeout:    30 * time.Second,
			WriteTimeout:   5 * time.Minute, // analysis calls are slow
			IdleTimeout:    60 * time.Second,
			MaxUploadBytes: 32 << 20,
		},
		Privacy: PrivacyConfig{
			DefaultLevel: "medium",
		},
		Storage: store.Config{
			MaxStoredAnalyses: 100,
			RetentionDays:     30,
			AutoSave:          true,
		},
		Analyzer: analyzer.Config{
			Backend:   "ollama",
			Model:     "llama3.1",
			OllamaURL: "http://localhost:11434",
			OpenAIURL: "https://api.openai.com",
			Timeout:   2 * time.Minute,
			MaxChars:  3000,
		},
		Cache: cache.Config{
			Enabled:    false,
			RedisURL:   "redis://localhost:6379",
			DefaultTTL: time.Hour,
			KeyPrefix:  "docsentinel",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		WebSocket: WebSocketConfig{
			Enabled: true,
			Path:    "/ws",
		},
	}
	cfg.Security.RateLimit.Enabled = true
	cfg.Security.RateLimit.RequestsPerMin = 60
	return cfg
}
