package privacy

import (
	"regexp"
	"time"
)

// Category identifies a class of personally identifiable information.
type Category string

const (
	CategoryCreditCard Category = "credit_card"
	CategoryPhone      Category = "phone"
	CategoryEmail      Category = "email"
	CategorySSN        Category = "ssn"
	CategoryName       Category = "name"
	CategoryAddress    Category = "address"
)

// Label returns the human-readable form used in privacy reports.
func (c Category) Label() string {
	switch c {
	case CategoryCreditCard:
		return "Credit Card"
	case CategoryPhone:
		return "Phone"
	case CategoryEmail:
		return "Email"
	case CategorySSN:
		return "SSN"
	case CategoryName:
		return "Name"
	case CategoryAddress:
		return "Address"
	}
	return string(c)
}

// Rule represents a single PII detection rule. A rule is active for a run
// when the run's level is at or above MinLevel. Rules with a nil apply
// function use plain regex substitution; the name rule carries a
// frequency-based apply function instead.
type Rule struct {
	Category Category
	Pattern  *regexp.Regexp
	Token    string
	MinLevel Level

	apply func(text, token string) (string, int)
}

// Outcome is the immutable result of one sanitization run. It records what
// was removed (by count) without ever retaining the removed substrings or
// the original text.
type Outcome struct {
	RedactedText   string           `json:"redacted_text"`
	OriginalLength int              `json:"original_length"`
	RedactedLength int              `json:"redacted_length"`
	Removed        map[Category]int `json:"removed_counts"`
	Level          Level            `json:"level"`
	Timestamp      time.Time        `json:"timestamp"`
}

// TotalRemoved returns the total number of substitutions across categories.
func (o Outcome) TotalRemoved() int {
	total := 0
	for _, n := range o.Removed {
		total += n
	}
	return total
}

// Metadata is the persistence-safe projection of an Outcome: counts and
// lengths only, never text. This is what gets embedded in stored artifacts.
type Metadata struct {
	Level          Level            `json:"sanitization_level"`
	OriginalLength int              `json:"original_length"`
	RedactedLength int              `json:"redacted_length"`
	Removed        map[Category]int `json:"removed_counts"`
	TotalRemoved   int              `json:"total_removed"`
}

// Meta returns the persistence-safe metadata for the outcome.
func (o Outcome) Meta() Metadata {
	removed := make(map[Category]int, len(o.Removed))
	for c, n := range o.Removed {
		removed[c] = n
	}
	return Metadata{
		Level:          o.Level,
		OriginalLength: o.OriginalLength,
		RedactedLength: o.RedactedLength,
		Removed:        removed,
		TotalRemoved:   o.TotalRemoved(),
	}
}
