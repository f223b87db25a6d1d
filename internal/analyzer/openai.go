package analyzer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// OpenAIAnalyzer runs analysis against any OpenAI-compatible chat
// completions endpoint.
type OpenAIAnalyzer struct {
	config Config
	client *http.Client
	logger *zap.Logger
}

// NewOpenAI creates an analyzer backed by an OpenAI-compatible API.
func NewOpenAI(config Config, logger *zap.Logger) *OpenAIAnalyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OpenAIAnalyzer{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
		logger: logger,
	}
}

func (a *OpenAIAnalyzer) Name() string {
	return "openai/" + a.config.Model
}

func (a *OpenAIAnalyzer) Analyze(ctx context.Context, text string) (*Result, error) {
	wordCount := len(strings.Fields(text))
	content := truncateContent(text, a.config.MaxChars)

	summary, err := a.complete(ctx, fmt.Sprintf(summaryPrompt, content), 500)
	if err != nil {
		return nil, err
	}
	executive, err := a.complete(ctx, fmt.Sprintf(executiveSummaryPrompt, content), 300)
	if err != nil {
		return nil, err
	}
	themesRaw, err := a.complete(ctx, fmt.Sprintf(keyThemesPrompt, content), 400)
	if err != nil {
		return nil, err
	}
	themes := parseNumberedList(themesRaw, 5)

	headlinesRaw, err := a.complete(ctx, fmt.Sprintf(slideHeadlinesPrompt, content, themesBlock(themes)), 400)
	if err != nil {
		return nil, err
	}
	sentimentRaw, err := a.complete(ctx, fmt.Sprintf(sentimentPrompt, content), 50)
	if err != nil {
		return nil, err
	}

	return &Result{
		Summary:          summary,
		ExecutiveSummary: executive,
		KeyThemes:        themes,
		SlideHeadlines:   parseNumberedList(headlinesRaw, 0),
		Sentiment:        parseSentiment(sentimentRaw),
		WordCount:        wordCount,
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (a *OpenAIAnalyzer) complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	payload := chatRequest{
		Model:       a.config.Model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		MaxTokens:   maxTokens,
		Temperature: 0.3,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", &BackendError{Backend: a.Name(), Err: err}
	}

	url := strings.TrimRight(a.config.OpenAIURL, "/") + "/v1/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", &BackendError{Backend: a.Name(), Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	if a.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+a.config.APIKey)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return "", &BackendError{Backend: a.Name(), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &BackendError{
			Backend:    a.Name(),
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status"),
		}
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", &BackendError{Backend: a.Name(), Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	if len(parsed.Choices) == 0 {
		return "", &BackendError{Backend: a.Name(), Err: fmt.Errorf("empty choices in response")}
	}
	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}
