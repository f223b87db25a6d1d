package privacy

import (
	"strings"
	"time"

	"go.uber.org/zap"
)

// Sanitizer applies a policy level's rule subset to input text, producing
// redacted text plus per-category removal counts. A Sanitizer holds no
// mutable state between runs, so concurrent Sanitize calls on independent
// documents are safe without locking.
type Sanitizer struct {
	rules  []Rule
	logger *zap.Logger
}

// NewSanitizer creates a sanitizer backed by the default rule registry.
func NewSanitizer(logger *zap.Logger) *Sanitizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sanitizer{
		rules:  DefaultRules(),
		logger: logger,
	}
}

// Sanitize runs every rule active at the given level over text, in registry
// order, counting matches in the current (possibly already-substituted)
// text before substituting them. Empty or whitespace-only input is a no-op:
// the text is returned unchanged with zero counts. Two calls with identical
// input yield byte-identical outcomes.
func (s *Sanitizer) Sanitize(text string, level Level) Outcome {
	outcome := Outcome{
		RedactedText:   text,
		OriginalLength: len(text),
		RedactedLength: len(text),
		Removed:        zeroCounts(),
		Level:          level,
		Timestamp:      time.Now().UTC(),
	}

	if strings.TrimSpace(text) == "" || level == LevelNone {
		return outcome
	}

	current := text
	for _, rule := range s.rules {
		if !level.AtLeast(rule.MinLevel) {
			continue
		}

		var count int
		if rule.apply != nil {
			current, count = rule.apply(current, rule.Token)
		} else {
			count = len(rule.Pattern.FindAllStringIndex(current, -1))
			if count > 0 {
				current = rule.Pattern.ReplaceAllString(current, rule.Token)
			}
		}

		if count > 0 {
			outcome.Removed[rule.Category] += count
			// Log counts and categories only, never matched content.
			s.logger.Debug("PII redacted",
				zap.String("category", string(rule.Category)),
				zap.Int("count", count),
			)
		}
	}

	outcome.RedactedText = current
	outcome.RedactedLength = len(current)
	return outcome
}

// SanitizeLevel parses the level string and sanitizes, failing with
// *ErrInvalidLevel on unknown levels.
func (s *Sanitizer) SanitizeLevel(text, level string) (Outcome, error) {
	parsed, err := ParseLevel(level)
	if err != nil {
		return Outcome{}, err
	}
	return s.Sanitize(text, parsed), nil
}

// zeroCounts returns a removal count map with every category present at
// zero, so outcomes always carry the full closed category set.
func zeroCounts() map[Category]int {
	counts := make(map[Category]int, len(Categories()))
	for _, c := range Categories() {
		counts[c] = 0
	}
	return counts
}
