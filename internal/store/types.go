package store

import (
	"fmt"
	"time"

	"github.com/raaihank/doc-sentinel/internal/privacy"
)

// Artifact is a persisted, redaction-safe record of one document analysis.
// By construction it carries no raw document text and no source filename;
// anything placed here is safe to write to disk. Artifacts are immutable
// once written.
type Artifact struct {
	ID               string           `json:"id"`
	Timestamp        time.Time        `json:"timestamp"`
	WordCount        int              `json:"word_count"`
	Summary          string           `json:"summary"`
	ExecutiveSummary string           `json:"executive_summary"`
	KeyThemes        []string         `json:"key_themes"`
	SlideHeadlines   []string         `json:"slide_headlines"`
	Sentiment        string           `json:"sentiment"`
	Sanitization     privacy.Metadata `json:"sanitization_metadata"`
}

// Session is a persisted multi-document analysis session.
type Session struct {
	SessionID     string     `json:"session_id"`
	CreatedAt     time.Time  `json:"created_at"`
	DocumentCount int        `json:"document_count"`
	Analyses      []Artifact `json:"analyses"`
}

// Summary is a listing entry for either an individual analysis or a
// multi-document session, ordered newest-first by List.
type Summary struct {
	ID            string    `json:"id"`
	Type          string    `json:"type"` // "analysis" or "multi_document_session"
	Timestamp     time.Time `json:"timestamp"`
	WordCount     int       `json:"word_count,omitempty"`
	Sentiment     string    `json:"sentiment,omitempty"`
	DocumentCount int       `json:"document_count,omitempty"`
}

// Stats describes storage usage.
type Stats struct {
	BaseDir    string `json:"base_directory"`
	Analyses   int    `json:"individual_analyses"`
	Sessions   int    `json:"multi_document_sessions"`
	TotalBytes int64  `json:"total_size_bytes"`
}

// Config contains artifact store configuration.
type Config struct {
	BaseDir           string `yaml:"base_dir" mapstructure:"base_dir"`
	MaxStoredAnalyses int    `yaml:"max_stored_analyses" mapstructure:"max_stored_analyses"`
	RetentionDays     int    `yaml:"retention_days" mapstructure:"retention_days"`
	AutoSave          bool   `yaml:"auto_save" mapstructure:"auto_save"`
}

// WriteError reports a failed artifact write. Persistence failures are
// recoverable: callers log them and continue with a null storage key.
type WriteError struct {
	Key string
	Err error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("artifact write failed for key %s: %v", e.Key, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}
