package websocket

import (
	"time"

	"github.com/raaihank/doc-sentinel/internal/privacy"
)

// EventType represents the type of WebSocket event.
type EventType string

const (
	// EventTypeSanitization represents a completed sanitization run.
	EventTypeSanitization EventType = "sanitization"
	// EventTypeRequestLog represents a request logging event.
	EventTypeRequestLog EventType = "request_log"
	// EventTypeSystemStatus represents a system status event.
	EventTypeSystemStatus EventType = "system_status"
)

// Event represents a WebSocket event sent to clients.
type Event struct {
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
	RequestID string      `json:"request_id,omitempty"`
}

// SanitizationEvent carries the audit view of one sanitization run:
// categories and counts only, never document content.
type SanitizationEvent struct {
	RequestID      string                   `json:"request_id"`
	Level          privacy.Level            `json:"level"`
	Removed        map[privacy.Category]int `json:"removed_counts"`
	TotalRemoved   int                      `json:"total_removed"`
	OriginalLength int                      `json:"original_length"`
	RedactedLength int                      `json:"redacted_length"`
}

// RequestLogEvent represents a request logging event.
type RequestLogEvent struct {
	RequestID  string        `json:"request_id"`
	Method     string        `json:"method"`
	Path       string        `json:"path"`
	StatusCode int           `json:"status_code"`
	ClientIP   string        `json:"client_ip"`
	Duration   time.Duration `json:"duration"`
}

// SystemStatusEvent represents system status information.
type SystemStatusEvent struct {
	Status           string `json:"status"`
	Uptime           string `json:"uptime"`
	TotalRequests    int64  `json:"total_requests"`
	TotalRedactions  int64  `json:"total_redactions"`
	ConnectedClients int    `json:"connected_clients"`
}
