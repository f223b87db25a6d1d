package analyzer

import (
	"fmt"

	"go.uber.org/zap"
)

// New creates the analysis backend selected by config.Backend.
func New(config Config, logger *zap.Logger) (Analyzer, error) {
	switch config.Backend {
	case "ollama":
		return NewOllama(config, logger), nil
	case "openai":
		return NewOpenAI(config, logger), nil
	default:
		return nil, fmt.Errorf("unknown analysis backend: %q (must be ollama or openai)", config.Backend)
	}
}
