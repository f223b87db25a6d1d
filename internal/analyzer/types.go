package analyzer

import (
	"context"
	"fmt"
	"time"
)

// Result is the structured outcome of one document analysis. The core
// treats this as an opaque contract and embeds it in the stored artifact.
type Result struct {
	Summary          string   `json:"summary"`
	ExecutiveSummary string   `json:"executive_summary"`
	KeyThemes        []string `json:"key_themes"`
	SlideHeadlines   []string `json:"slide_headlines"`
	Sentiment        string   `json:"sentiment"`
	WordCount        int      `json:"word_count"`
}

// Analyzer is a pluggable analysis backend. Implementations receive only
// redacted text; the sanitization boundary sits in front of every call.
type Analyzer interface {
	// Analyze produces a structured analysis of the given redacted text,
	// bounded by the context deadline.
	Analyze(ctx context.Context, text string) (*Result, error)
	// Name identifies the backend for logs and the info endpoint.
	Name() string
}

// Config contains analysis backend configuration.
type Config struct {
	Backend   string        `yaml:"backend" mapstructure:"backend"` // ollama or openai
	Model     string        `yaml:"model" mapstructure:"model"`
	OllamaURL string        `yaml:"ollama_url" mapstructure:"ollama_url"`
	OpenAIURL string        `yaml:"openai_url" mapstructure:"openai_url"`
	APIKey    string        `yaml:"api_key" mapstructure:"api_key"`
	Timeout   time.Duration `yaml:"timeout" mapstructure:"timeout"`
	MaxChars  int           `yaml:"max_chars" mapstructure:"max_chars"`
}

// BackendError reports a failed analysis backend call. It never carries
// document content, only the backend name and transport cause.
type BackendError struct {
	Backend    string
	StatusCode int
	Err        error
}

func (e *BackendError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("analysis backend %s failed with status %d: %v", e.Backend, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("analysis backend %s failed: %v", e.Backend, e.Err)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}
