package privacy

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
)

// Detection patterns are structural, not statistical: they match the common
// written forms of each PII category. Numeric patterns come first in the
// registry so a substituted token is never re-matched by a later, looser
// rule.
var (
	creditCardPattern = regexp.MustCompile(`\b\d{4}[\s.-]?\d{4}[\s.-]?\d{4}[\s.-]?\d{4}\b`)
	phonePattern      = regexp.MustCompile(`(?:\+?\d{1,2}[\s.-]?)?\(?\d{3}\)?[\s.-]?\d{3}[\s.-]?\d{4}\b`)
	emailPattern      = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
	ssnPattern        = regexp.MustCompile(`\b\d{3}[\s.-]?\d{2}[\s.-]?\d{4}\b`)
	streetPattern     = regexp.MustCompile(`(?i)\b\d+\s+(?:[A-Za-z]+\s+){1,3}(?:Street|St|Avenue|Ave|Road|Rd|Drive|Dr|Lane|Ln|Boulevard|Blvd|Court|Ct|Place|Pl|Way|Circle|Cir|Terrace|Ter)\b\.?`)
	zipPattern        = regexp.MustCompile(`\b\d{5}(?:-\d{4})?\b`)

	// nameWordPattern matches a single capitalized alphabetic word used by
	// the frequency heuristic when substituting recurring names.
	nameWordPattern = regexp.MustCompile(`^[A-Z][A-Za-z]{2,}$`)
)

const (
	TokenCreditCard = "[CARD_REDACTED]"
	TokenPhone      = "[PHONE_REDACTED]"
	TokenEmail      = "[EMAIL_REDACTED]"
	TokenSSN        = "[SSN_REDACTED]"
	TokenName       = "[NAME_REDACTED]"
	TokenAddress    = "[ADDRESS_REDACTED]"
)

// DefaultRules returns the full detection rule registry in application
// order: credit_card, phone, email, ssn, name, then the two address rules.
// The order is part of the contract; reports and sanitization both rely on
// it being stable.
func DefaultRules() []Rule {
	return []Rule{
		{Category: CategoryCreditCard, Pattern: creditCardPattern, Token: TokenCreditCard, MinLevel: LevelLow},
		{Category: CategoryPhone, Pattern: phonePattern, Token: TokenPhone, MinLevel: LevelLow},
		{Category: CategoryEmail, Pattern: emailPattern, Token: TokenEmail, MinLevel: LevelMedium},
		{Category: CategorySSN, Pattern: ssnPattern, Token: TokenSSN, MinLevel: LevelHigh},
		{Category: CategoryName, Token: TokenName, MinLevel: LevelHigh, apply: applyNameFrequency},
		{Category: CategoryAddress, Pattern: streetPattern, Token: TokenAddress, MinLevel: LevelHigh},
		{Category: CategoryAddress, Pattern: zipPattern, Token: TokenAddress, MinLevel: LevelHigh},
	}
}

// Categories returns all PII categories in the stable order used for
// deterministic report output.
func Categories() []Category {
	return []Category{
		CategoryCreditCard,
		CategoryPhone,
		CategoryEmail,
		CategorySSN,
		CategoryName,
		CategoryAddress,
	}
}

// applyNameFrequency implements the recurring-name heuristic. It is a
// two-pass, whole-document operation: first count capitalized alphabetic
// words longer than 2 characters, then substitute every occurrence of any
// word seen at least twice. The same word is replaced everywhere it
// appears, not just after its second occurrence.
func applyNameFrequency(text, token string) (string, int) {
	counts := make(map[string]int)
	for _, field := range strings.Fields(text) {
		word := strings.TrimFunc(field, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		if nameWordPattern.MatchString(word) {
			counts[word]++
		}
	}

	var recurring []string
	for word, n := range counts {
		if n >= 2 {
			recurring = append(recurring, word)
		}
	}
	if len(recurring) == 0 {
		return text, 0
	}
	sort.Strings(recurring)

	for i, word := range recurring {
		recurring[i] = regexp.QuoteMeta(word)
	}
	pattern := regexp.MustCompile(`\b(?:` + strings.Join(recurring, "|") + `)\b`)

	matched := len(pattern.FindAllStringIndex(text, -1))
	return pattern.ReplaceAllString(text, token), matched
}
