package privacy

import "fmt"

// Level is a named sanitization tier controlling which PII categories are
// redacted. Levels are strictly ordered: none < low < medium < high, and
// every rule active at a level stays active at every level above it.
type Level string

const (
	LevelNone   Level = "none"
	LevelLow    Level = "low"
	LevelMedium Level = "medium"
	LevelHigh   Level = "high"
)

var levelRank = map[Level]int{
	LevelNone:   0,
	LevelLow:    1,
	LevelMedium: 2,
	LevelHigh:   3,
}

// ErrInvalidLevel reports an unrecognized sanitization level string.
type ErrInvalidLevel struct {
	Value string
}

func (e *ErrInvalidLevel) Error() string {
	return fmt.Sprintf("invalid sanitization level: %q (must be none, low, medium, or high)", e.Value)
}

// ParseLevel converts a level string to a Level, failing on unknown values.
func ParseLevel(s string) (Level, error) {
	level := Level(s)
	if _, ok := levelRank[level]; !ok {
		return "", &ErrInvalidLevel{Value: s}
	}
	return level, nil
}

// AtLeast reports whether l is at or above other in the level ordering.
func (l Level) AtLeast(other Level) bool {
	return levelRank[l] >= levelRank[other]
}

// Valid reports whether l is one of the recognized levels.
func (l Level) Valid() bool {
	_, ok := levelRank[l]
	return ok
}

// ActiveRules resolves a level to the ordered subset of registry rules
// active at that level. LevelNone resolves to an empty list (pass-through).
func ActiveRules(level Level) []Rule {
	rules := DefaultRules()
	active := make([]Rule, 0, len(rules))
	for _, rule := range rules {
		if level.AtLeast(rule.MinLevel) {
			active = append(active, rule)
		}
	}
	return active
}
