package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/raaihank/doc-sentinel/internal/config"
	"github.com/raaihank/doc-sentinel/internal/logger"
	"github.com/raaihank/doc-sentinel/internal/security"
)

// fakeOllama answers every generate call with a canned response so handler
// tests exercise the full pipeline without a real model.
func fakeOllama(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"response": "A concise analysis."}`)
	}))
}

func newTestServer(t *testing.T, ollamaURL string) *Server {
	t.Helper()

	cfg := config.GetDefaults()
	cfg.Storage.BaseDir = t.TempDir()
	cfg.Analyzer.OllamaURL = ollamaURL
	cfg.Cache.Enabled = false
	cfg.WebSocket.Enabled = false

	srv, err := New(cfg, &logger.Logger{Logger: zap.NewNop()})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	return srv
}

func postJSON(t *testing.T, srv *Server, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("Failed to marshal request: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)
	return rec
}

func TestHandleSanitize(t *testing.T) {
	srv := newTestServer(t, "http://localhost:11434")

	rec := postJSON(t, srv, "/v1/sanitize", map[string]string{
		"text":  "Reach me at jane.doe@example.com or 555-123-4567.",
		"level": "medium",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp sanitizeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if strings.Contains(resp.RedactedText, "jane.doe@example.com") {
		t.Error("Email leaked through sanitization")
	}
	if !strings.Contains(resp.RedactedText, "[EMAIL_REDACTED]") {
		t.Errorf("Expected email token in %q", resp.RedactedText)
	}
	if !strings.Contains(resp.RedactedText, "[PHONE_REDACTED]") {
		t.Errorf("Expected phone token in %q", resp.RedactedText)
	}
	if resp.TotalRemoved != 2 {
		t.Errorf("Expected 2 removals, got %d", resp.TotalRemoved)
	}
	if !strings.Contains(resp.Report, "Sensitive items removed: 2") {
		t.Errorf("Report missing totals:\n%s", resp.Report)
	}
}

func TestHandleSanitizeDefaultsLevel(t *testing.T) {
	srv := newTestServer(t, "http://localhost:11434")

	rec := postJSON(t, srv, "/v1/sanitize", map[string]string{
		"text": "Email admin@corp.io today.",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var resp sanitizeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	// GetDefaults sets default_level to medium, which covers email.
	if resp.Level != "medium" {
		t.Errorf("Expected configured default level, got %q", resp.Level)
	}
	if resp.Removed["email"] != 1 {
		t.Errorf("Expected email redacted at default level, got %v", resp.Removed)
	}
}

func TestHandleSanitizeInvalidLevel(t *testing.T) {
	srv := newTestServer(t, "http://localhost:11434")

	rec := postJSON(t, srv, "/v1/sanitize", map[string]string{
		"text":  "hello",
		"level": "paranoid",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400 for unknown level, got %d", rec.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode error response: %v", err)
	}
	if !strings.Contains(resp["error"], "paranoid") {
		t.Errorf("Error should name the bad level, got %q", resp["error"])
	}
}

func TestHandleAnalyzeDocumentJSON(t *testing.T) {
	backend := fakeOllama(t)
	defer backend.Close()
	srv := newTestServer(t, backend.URL)

	rec := postJSON(t, srv, "/v1/documents/analyze", map[string]string{
		"text":  "Quarterly update. Contact finance at billing@example.com for details.",
		"level": "high",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp analysisResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.StorageKey == "" {
		t.Error("Expected a storage key with auto_save enabled")
	}
	if !strings.HasPrefix(resp.StorageKey, "analysis_") {
		t.Errorf("Unexpected storage key format %q", resp.StorageKey)
	}
	if resp.Analysis == nil || resp.Analysis.Summary == "" {
		t.Fatal("Expected analysis content")
	}
	if resp.Analysis.WordCount == 0 {
		t.Error("Expected a local word count")
	}
	if resp.Sanitization.Removed["email"] != 1 {
		t.Errorf("Expected email counted in metadata, got %v", resp.Sanitization.Removed)
	}
	// The stored record must never carry the raw text.
	if strings.Contains(rec.Body.String(), "billing@example.com") {
		t.Error("Raw email leaked into analysis response")
	}
}

func TestHandleAnalyzeBackendDown(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer backend.Close()
	srv := newTestServer(t, backend.URL)

	rec := postJSON(t, srv, "/v1/documents/analyze", map[string]string{"text": "some text"})
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("Expected 502 when backend fails, got %d", rec.Code)
	}
}

func TestHandleHistoryAndSweep(t *testing.T) {
	backend := fakeOllama(t)
	defer backend.Close()
	srv := newTestServer(t, backend.URL)

	rec := postJSON(t, srv, "/v1/documents/analyze", map[string]string{"text": "A short report."})
	if rec.Code != http.StatusOK {
		t.Fatalf("Analyze failed: %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/history", nil)
	hrec := httptest.NewRecorder()
	srv.router.ServeHTTP(hrec, req)
	if hrec.Code != http.StatusOK {
		t.Fatalf("Expected 200 from history, got %d", hrec.Code)
	}
	var history struct {
		History []struct {
			ID   string `json:"id"`
			Type string `json:"type"`
		} `json:"history"`
	}
	if err := json.Unmarshal(hrec.Body.Bytes(), &history); err != nil {
		t.Fatalf("Failed to decode history: %v", err)
	}
	if len(history.History) != 1 {
		t.Fatalf("Expected 1 history entry, got %d", len(history.History))
	}
	if history.History[0].Type != "analysis" {
		t.Errorf("Expected analysis entry, got %q", history.History[0].Type)
	}

	// A fresh artifact survives a sweep at the default retention.
	srec := postJSON(t, srv, "/v1/history/sweep", map[string]int{"retention_days": 7})
	if srec.Code != http.StatusOK {
		t.Fatalf("Expected 200 from sweep, got %d", srec.Code)
	}
	var sweep struct {
		Removed       int `json:"removed"`
		RetentionDays int `json:"retention_days"`
	}
	if err := json.Unmarshal(srec.Body.Bytes(), &sweep); err != nil {
		t.Fatalf("Failed to decode sweep response: %v", err)
	}
	if sweep.Removed != 0 {
		t.Errorf("Expected nothing swept, got %d", sweep.Removed)
	}
	if sweep.RetentionDays != 7 {
		t.Errorf("Expected override retention of 7, got %d", sweep.RetentionDays)
	}
}

func TestRateLimitExceeded(t *testing.T) {
	srv := newTestServer(t, "http://localhost:11434")
	srv.config.Security.RateLimit.RequestsPerMin = 1
	srv.limiter = security.NewRateLimiter(&srv.config.Security)

	body := map[string]string{"text": "hello"}
	first := postJSON(t, srv, "/v1/sanitize", body)
	if first.Code != http.StatusOK {
		t.Fatalf("First request should pass, got %d", first.Code)
	}
	second := postJSON(t, srv, "/v1/sanitize", body)
	if second.Code != http.StatusTooManyRequests {
		t.Fatalf("Second request should be limited, got %d", second.Code)
	}
}

func TestHealthAndInfo(t *testing.T) {
	srv := newTestServer(t, "http://localhost:11434")

	for _, path := range []string{"/health", "/info"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		srv.router.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("Expected 200 from %s, got %d", path, rec.Code)
		}
	}
}
