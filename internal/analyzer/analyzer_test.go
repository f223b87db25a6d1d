package analyzer

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestParseNumberedList(t *testing.T) {
	t.Run("StandardList", func(t *testing.T) {
		response := "1. Budget planning for next year\n2. Team restructuring\n3. Market expansion strategy"
		items := parseNumberedList(response, 5)
		if len(items) != 3 {
			t.Fatalf("Parsed %d items, want 3: %v", len(items), items)
		}
		if items[0] != "Budget planning for next year" {
			t.Errorf("First item = %q", items[0])
		}
	})

	t.Run("FirstItemWithoutNumber", func(t *testing.T) {
		// The prompt ends with "1.", so models often continue in place.
		response := "Quarterly revenue growth\n2. Operational efficiency\n3. Hiring roadmap"
		items := parseNumberedList(response, 5)
		if len(items) != 3 {
			t.Fatalf("Parsed %d items, want 3: %v", len(items), items)
		}
	})

	t.Run("ShortItemsFiltered", func(t *testing.T) {
		items := parseNumberedList("1. ok\n2. A meaningful theme here", 5)
		if len(items) != 1 {
			t.Errorf("Parsed %d items, want 1: %v", len(items), items)
		}
	})

	t.Run("CappedAtEight", func(t *testing.T) {
		var b strings.Builder
		for i := 1; i <= 12; i++ {
			b.WriteString("1. A sufficiently long theme line\n")
		}
		items := parseNumberedList(b.String(), 5)
		if len(items) != 8 {
			t.Errorf("Parsed %d items, want 8", len(items))
		}
	})
}

func TestParseSentiment(t *testing.T) {
	tests := []struct {
		response string
		want     string
	}{
		{"The sentiment is Positive overall.", "Positive"},
		{"negative", "Negative"},
		{"This reads as professional in tone", "Professional"},
		{"no classification here", "Neutral"},
	}
	for _, tt := range tests {
		if got := parseSentiment(tt.response); got != tt.want {
			t.Errorf("parseSentiment(%q) = %q, want %q", tt.response, got, tt.want)
		}
	}
}

func TestTruncateContent(t *testing.T) {
	long := strings.Repeat("a", 2000) + strings.Repeat("z", 2000)
	got := truncateContent(long, 1000)
	if !strings.HasPrefix(got, strings.Repeat("a", 500)) {
		t.Error("Truncation should keep the head")
	}
	if !strings.HasSuffix(got, strings.Repeat("z", 500)) {
		t.Error("Truncation should keep the tail")
	}
	if !strings.Contains(got, "[...content truncated...]") {
		t.Error("Truncation marker missing")
	}
	if truncateContent("short", 1000) != "short" {
		t.Error("Short content should pass through")
	}
}

func TestOllamaAnalyze(t *testing.T) {
	var prompts []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		var req ollamaRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("Bad request body: %v", err)
		}
		prompts = append(prompts, req.Prompt)

		response := "A plain response."
		switch {
		// The headlines prompt embeds the themes block, so check it first.
		case strings.Contains(req.Prompt, "slide headlines"):
			response = "1. Where We Stand\n2. The Road Ahead"
		case strings.Contains(req.Prompt, "Key themes"):
			response = "1. Revenue planning details\n2. Market positioning work"
		case strings.Contains(req.Prompt, "Sentiment classification"):
			response = "Professional"
		}
		json.NewEncoder(w).Encode(ollamaResponse{Response: response})
	}))
	defer server.Close()

	a := NewOllama(Config{
		Backend:   "ollama",
		Model:     "llama3.1",
		OllamaURL: server.URL,
		Timeout:   5 * time.Second,
		MaxChars:  3000,
	}, zap.NewNop())

	result, err := a.Analyze(context.Background(), "[EMAIL_REDACTED] wrote the quarterly report")
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if result.Summary != "A plain response." {
		t.Errorf("Summary = %q", result.Summary)
	}
	if len(result.KeyThemes) != 2 {
		t.Errorf("KeyThemes = %v", result.KeyThemes)
	}
	if len(result.SlideHeadlines) != 2 {
		t.Errorf("SlideHeadlines = %v", result.SlideHeadlines)
	}
	if result.Sentiment != "Professional" {
		t.Errorf("Sentiment = %q", result.Sentiment)
	}
	// Word count comes from the input text, not the model.
	if result.WordCount != 5 {
		t.Errorf("WordCount = %d, want 5", result.WordCount)
	}
	if len(prompts) != 5 {
		t.Errorf("Backend received %d prompts, want 5", len(prompts))
	}
}

func TestOllamaBackendError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer server.Close()

	a := NewOllama(Config{Model: "missing", OllamaURL: server.URL, Timeout: time.Second}, zap.NewNop())
	_, err := a.Analyze(context.Background(), "some text")
	if err == nil {
		t.Fatal("Expected backend error")
	}
	var backendErr *BackendError
	if !errors.As(err, &backendErr) {
		t.Fatalf("Expected *BackendError, got %T", err)
	}
	if backendErr.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode = %d, want 404", backendErr.StatusCode)
	}
}

func TestOpenAIAnalyze(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}
		var resp chatResponse
		resp.Choices = append(resp.Choices, struct {
			Message chatMessage `json:"message"`
		}{Message: chatMessage{Role: "assistant", Content: "Neutral"}})
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	a := NewOpenAI(Config{
		Backend:   "openai",
		Model:     "gpt-4o-mini",
		OpenAIURL: server.URL,
		APIKey:    "test-key",
		Timeout:   5 * time.Second,
	}, zap.NewNop())

	result, err := a.Analyze(context.Background(), "short redacted text")
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if result.Sentiment != "Neutral" {
		t.Errorf("Sentiment = %q", result.Sentiment)
	}
	if result.WordCount != 3 {
		t.Errorf("WordCount = %d, want 3", result.WordCount)
	}
}

func TestFactory(t *testing.T) {
	if _, err := New(Config{Backend: "ollama"}, zap.NewNop()); err != nil {
		t.Errorf("ollama backend should be known: %v", err)
	}
	if _, err := New(Config{Backend: "openai"}, zap.NewNop()); err != nil {
		t.Errorf("openai backend should be known: %v", err)
	}
	if _, err := New(Config{Backend: "bard"}, zap.NewNop()); err == nil {
		t.Error("unknown backend should fail")
	}
}
