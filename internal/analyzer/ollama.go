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

// OllamaAnalyzer runs analysis against a local Ollama instance.
type OllamaAnalyzer struct {
	config Config
	client *http.Client
	logger *zap.Logger
}

// NewOllama creates an analyzer backed by the Ollama generate API.
func NewOllama(config Config, logger *zap.Logger) *OllamaAnalyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OllamaAnalyzer{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
		logger: logger,
	}
}

func (a *OllamaAnalyzer) Name() string {
	return "ollama/" + a.config.Model
}

// Analyze generates each analysis field with a dedicated prompt. Word count
// is computed locally from the redacted text, not by the model.
func (a *OllamaAnalyzer) Analyze(ctx context.Context, text string) (*Result, error) {
	wordCount := len(strings.Fields(text))
	content := truncateContent(text, a.config.MaxChars)

	summary, err := a.generate(ctx, fmt.Sprintf(summaryPrompt, content), 500, 0.3)
	if err != nil {
		return nil, err
	}
	executive, err := a.generate(ctx, fmt.Sprintf(executiveSummaryPrompt, content), 300, 0.3)
	if err != nil {
		return nil, err
	}
	themesRaw, err := a.generate(ctx, fmt.Sprintf(keyThemesPrompt, content), 400, 0.3)
	if err != nil {
		return nil, err
	}
	themes := parseNumberedList(themesRaw, 5)

	headlinesRaw, err := a.generate(ctx, fmt.Sprintf(slideHeadlinesPrompt, content, themesBlock(themes)), 400, 0.3)
	if err != nil {
		return nil, err
	}
	sentimentRaw, err := a.generate(ctx, fmt.Sprintf(sentimentPrompt, content), 50, 0.1)
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

type ollamaRequest struct {
	Model   string                 `json:"model"`
	Prompt  string                 `json:"prompt"`
	Stream  bool                   `json:"stream"`
	Options map[string]interface{} `json:"options"`
}

type ollamaResponse struct {
	Response string `json:"response"`
}

func (a *OllamaAnalyzer) generate(ctx context.Context, prompt string, maxTokens int, temperature float64) (string, error) {
	payload := ollamaRequest{
		Model:  a.config.Model,
		Prompt: prompt,
		Stream: false,
		Options: map[string]interface{}{
			"temperature": temperature,
			"top_p":       0.9,
			"num_predict": maxTokens,
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", &BackendError{Backend: a.Name(), Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.config.OllamaURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", &BackendError{Backend: a.Name(), Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

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

	var parsed ollamaResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", &BackendError{Backend: a.Name(), Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	return strings.TrimSpace(parsed.Response), nil
}
