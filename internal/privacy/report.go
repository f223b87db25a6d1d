package privacy

import (
	"fmt"
	"strings"
)

// NoFindingsLine is the single line emitted when a sanitization run removed
// nothing. Callers depend on this exact text; an empty report is not a
// substitute for a report.
const NoFindingsLine = "No sensitive information detected."

// Report formats a sanitization outcome as a human-readable audit summary:
// the level applied, original and redacted lengths, percentage reduction,
// and one line per category with a non-zero count, in stable registry
// order.
func Report(outcome Outcome) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Sanitization level: %s\n", outcome.Level)
	fmt.Fprintf(&b, "Original length: %d characters\n", outcome.OriginalLength)
	fmt.Fprintf(&b, "Redacted length: %d characters\n", outcome.RedactedLength)

	reduction := 0.0
	if outcome.OriginalLength > 0 {
		reduction = float64(outcome.OriginalLength-outcome.RedactedLength) / float64(outcome.OriginalLength) * 100
	}
	fmt.Fprintf(&b, "Reduction: %.1f%%\n", reduction)

	total := outcome.TotalRemoved()
	if total == 0 {
		b.WriteString(NoFindingsLine)
		return b.String()
	}

	fmt.Fprintf(&b, "Sensitive items removed: %d\n", total)
	for _, category := range Categories() {
		if n := outcome.Removed[category]; n > 0 {
			fmt.Fprintf(&b, "  - %s: %d\n", category.Label(), n)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
