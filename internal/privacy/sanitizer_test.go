package privacy

import (
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestSanitizeScenarios(t *testing.T) {
	s := NewSanitizer(zap.NewNop())

	t.Run("EmailAndPhoneAtMedium", func(t *testing.T) {
		outcome := s.Sanitize("Contact me at jane@example.com or 555-123-4567", LevelMedium)

		if !strings.Contains(outcome.RedactedText, TokenEmail) {
			t.Errorf("Redacted text missing email token: %q", outcome.RedactedText)
		}
		if !strings.Contains(outcome.RedactedText, TokenPhone) {
			t.Errorf("Redacted text missing phone token: %q", outcome.RedactedText)
		}
		want := map[Category]int{
			CategoryEmail:      1,
			CategoryPhone:      1,
			CategoryCreditCard: 0,
			CategorySSN:        0,
			CategoryName:       0,
			CategoryAddress:    0,
		}
		for category, n := range want {
			if outcome.Removed[category] != n {
				t.Errorf("Removed[%s] = %d, want %d", category, outcome.Removed[category], n)
			}
		}
	})

	t.Run("CreditCardAtLow", func(t *testing.T) {
		outcome := s.Sanitize("My card is 4111 1111 1111 1111, mail me at jane@example.com", LevelLow)

		if outcome.Removed[CategoryCreditCard] != 1 {
			t.Errorf("Removed[credit_card] = %d, want 1", outcome.Removed[CategoryCreditCard])
		}
		if outcome.Removed[CategoryPhone] != 0 {
			t.Errorf("Removed[phone] = %d, want 0", outcome.Removed[CategoryPhone])
		}
		// Email is not redacted at low even when present.
		if !strings.Contains(outcome.RedactedText, "jane@example.com") {
			t.Errorf("Email should survive at low level, got %q", outcome.RedactedText)
		}
		if strings.Contains(outcome.RedactedText, "4111") {
			t.Errorf("Card number leaked into redacted text: %q", outcome.RedactedText)
		}
	})

	t.Run("NamesAndAddressAtHigh", func(t *testing.T) {
		outcome := s.Sanitize("John Smith met John Smith at 123 Main Street, 90210", LevelHigh)

		// Count reflects token occurrences, not unique names.
		if outcome.Removed[CategoryName] != 4 {
			t.Errorf("Removed[name] = %d, want 4", outcome.Removed[CategoryName])
		}
		// Street line plus ZIP.
		if outcome.Removed[CategoryAddress] != 2 {
			t.Errorf("Removed[address] = %d, want 2", outcome.Removed[CategoryAddress])
		}
		for _, leaked := range []string{"John", "Smith", "Main Street", "90210"} {
			if strings.Contains(outcome.RedactedText, leaked) {
				t.Errorf("%q leaked into redacted text: %q", leaked, outcome.RedactedText)
			}
		}
	})

	t.Run("SSNAtHigh", func(t *testing.T) {
		outcome := s.Sanitize("SSN on file: 123-45-6789", LevelHigh)
		if outcome.Removed[CategorySSN] != 1 {
			t.Errorf("Removed[ssn] = %d, want 1", outcome.Removed[CategorySSN])
		}
		if strings.Contains(outcome.RedactedText, "123-45-6789") {
			t.Errorf("SSN leaked into redacted text: %q", outcome.RedactedText)
		}
	})

	t.Run("EmptyInputIsNoOp", func(t *testing.T) {
		for _, text := range []string{"", "   ", "\n\t "} {
			outcome := s.Sanitize(text, LevelHigh)
			if outcome.RedactedText != text {
				t.Errorf("Sanitize(%q) changed text to %q", text, outcome.RedactedText)
			}
			if outcome.TotalRemoved() != 0 {
				t.Errorf("Sanitize(%q) removed %d items, want 0", text, outcome.TotalRemoved())
			}
		}
	})

	t.Run("NoneIsPassThrough", func(t *testing.T) {
		text := "jane@example.com 555-123-4567 4111 1111 1111 1111"
		outcome := s.Sanitize(text, LevelNone)
		if outcome.RedactedText != text {
			t.Errorf("LevelNone altered text: %q", outcome.RedactedText)
		}
		if outcome.TotalRemoved() != 0 {
			t.Errorf("LevelNone removed %d items", outcome.TotalRemoved())
		}
	})
}

const mixedPII = "Reach Jane Doe at jane.doe@example.com or (555) 123-4567. " +
	"Jane Doe pays with 4111-1111-1111-1111, SSN 123-45-6789, " +
	"and lives at 42 Oak Avenue, 90210-1234."

func TestSanitizeProperties(t *testing.T) {
	s := NewSanitizer(zap.NewNop())
	levels := []Level{LevelNone, LevelLow, LevelMedium, LevelHigh}

	t.Run("Monotonicity", func(t *testing.T) {
		outcomes := make(map[Level]Outcome, len(levels))
		for _, level := range levels {
			outcomes[level] = s.Sanitize(mixedPII, level)
		}
		for i := 1; i < len(levels); i++ {
			lower, higher := outcomes[levels[i-1]], outcomes[levels[i]]
			for _, category := range Categories() {
				if higher.Removed[category] < lower.Removed[category] {
					t.Errorf("Removed[%s] at %s (%d) < at %s (%d)",
						category, levels[i], higher.Removed[category],
						levels[i-1], lower.Removed[category])
				}
			}
		}
		if outcomes[LevelNone].TotalRemoved() != 0 {
			t.Errorf("LevelNone removed %d items", outcomes[LevelNone].TotalRemoved())
		}
	})

	t.Run("Idempotence", func(t *testing.T) {
		for _, level := range levels {
			first := s.Sanitize(mixedPII, level)
			second := s.Sanitize(first.RedactedText, level)
			if second.TotalRemoved() != 0 {
				t.Errorf("Re-sanitizing at %s removed %d more items: %v",
					level, second.TotalRemoved(), second.Removed)
			}
			if second.RedactedText != first.RedactedText {
				t.Errorf("Re-sanitizing at %s altered text", level)
			}
		}
	})

	t.Run("Determinism", func(t *testing.T) {
		for _, level := range levels {
			a := s.Sanitize(mixedPII, level)
			b := s.Sanitize(mixedPII, level)
			if a.RedactedText != b.RedactedText {
				t.Errorf("Non-deterministic redaction at %s", level)
			}
			for _, category := range Categories() {
				if a.Removed[category] != b.Removed[category] {
					t.Errorf("Non-deterministic count for %s at %s", category, level)
				}
			}
		}
	})

	t.Run("LengthInvariant", func(t *testing.T) {
		for _, level := range levels {
			outcome := s.Sanitize(mixedPII, level)
			if outcome.RedactedLength != len(outcome.RedactedText) {
				t.Errorf("RedactedLength = %d, len(RedactedText) = %d",
					outcome.RedactedLength, len(outcome.RedactedText))
			}
			if outcome.OriginalLength != len(mixedPII) {
				t.Errorf("OriginalLength = %d, want %d", outcome.OriginalLength, len(mixedPII))
			}
		}
	})

	t.Run("NoLeak", func(t *testing.T) {
		outcome := s.Sanitize(mixedPII, LevelHigh)
		leaks := []string{
			"jane.doe@example.com",
			"123-4567",
			"4111-1111-1111-1111",
			"123-45-6789",
			"Oak Avenue",
			"90210",
			"Jane", "Doe",
		}
		report := Report(outcome)
		for _, leak := range leaks {
			if strings.Contains(outcome.RedactedText, leak) {
				t.Errorf("%q leaked into redacted text", leak)
			}
			if strings.Contains(report, leak) {
				t.Errorf("%q leaked into privacy report", leak)
			}
		}
	})

	t.Run("CountsSumToSubstitutions", func(t *testing.T) {
		outcome := s.Sanitize(mixedPII, LevelHigh)
		tokens := []string{TokenCreditCard, TokenPhone, TokenEmail, TokenSSN, TokenName, TokenAddress}
		substitutions := 0
		for _, token := range tokens {
			substitutions += strings.Count(outcome.RedactedText, token)
		}
		if outcome.TotalRemoved() != substitutions {
			t.Errorf("TotalRemoved = %d, token substitutions in text = %d",
				outcome.TotalRemoved(), substitutions)
		}
	})
}

func TestSanitizeLevel(t *testing.T) {
	s := NewSanitizer(zap.NewNop())

	t.Run("ValidLevel", func(t *testing.T) {
		outcome, err := s.SanitizeLevel("call 555-123-4567", "low")
		if err != nil {
			t.Fatalf("SanitizeLevel failed: %v", err)
		}
		if outcome.Removed[CategoryPhone] != 1 {
			t.Errorf("Removed[phone] = %d, want 1", outcome.Removed[CategoryPhone])
		}
	})

	t.Run("InvalidLevel", func(t *testing.T) {
		_, err := s.SanitizeLevel("anything", "paranoid")
		if err == nil {
			t.Fatal("Expected error for unknown level")
		}
		var invalid *ErrInvalidLevel
		if !errors.As(err, &invalid) {
			t.Errorf("Expected *ErrInvalidLevel, got %T", err)
		}
		if invalid.Value != "paranoid" {
			t.Errorf("ErrInvalidLevel.Value = %q, want %q", invalid.Value, "paranoid")
		}
	})
}

func TestNameFrequencyHeuristic(t *testing.T) {
	s := NewSanitizer(zap.NewNop())

	t.Run("SingleOccurrenceSurvives", func(t *testing.T) {
		outcome := s.Sanitize("Once only Madeleine appeared here", LevelHigh)
		if outcome.Removed[CategoryName] != 0 {
			t.Errorf("Removed[name] = %d, want 0 for non-recurring word", outcome.Removed[CategoryName])
		}
	})

	t.Run("AllOccurrencesReplaced", func(t *testing.T) {
		outcome := s.Sanitize("Alice spoke. Alice listened. Alice left.", LevelHigh)
		if outcome.Removed[CategoryName] != 3 {
			t.Errorf("Removed[name] = %d, want 3", outcome.Removed[CategoryName])
		}
		if strings.Contains(outcome.RedactedText, "Alice") {
			t.Errorf("Recurring name survived: %q", outcome.RedactedText)
		}
	})

	t.Run("ShortAndLowercaseWordsIgnored", func(t *testing.T) {
		outcome := s.Sanitize("Al met Al and al saw al again and again", LevelHigh)
		if outcome.Removed[CategoryName] != 0 {
			t.Errorf("Removed[name] = %d, want 0", outcome.Removed[CategoryName])
		}
	})
}
