package analyzer

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	summaryPrompt = `Please provide a comprehensive summary of the following document content. Focus on the main points, key findings, and important details. Keep it informative but concise.

Document content:
%s

Summary:`

	executiveSummaryPrompt = `Create an executive summary of the following document. This should be a high-level overview suitable for executives and decision-makers. Focus on key insights, recommendations, and strategic implications.

Document content:
%s

Executive Summary:`

	keyThemesPrompt = `Analyze the following document and identify the key themes, topics, and concepts discussed. Return exactly 8 distinct themes as a numbered list. Each theme should be specific and meaningful.

Document content:
%s

Key themes (list 8 themes):
1.`

	slideHeadlinesPrompt = `Based on the following document content and key themes, create 8 compelling presentation slide headlines. Each headline should be concise, engaging, and capture a key aspect of the content.

Document content:
%s

Key themes identified:
%s

Generate 8 slide headlines:
1.`

	sentimentPrompt = `Analyze the overall sentiment and tone of the following document content. Classify it as one of: Positive, Negative, Neutral, Mixed, or Professional.

Content to analyze:
%s

Sentiment classification:`
)

const maxListItems = 8

var numberedItemPattern = regexp.MustCompile(`^\d+\.\s*(.+)`)

// parseNumberedList extracts items from a model response formatted as a
// numbered list. The first item may arrive without its number because the
// prompt ends with "1.".
func parseNumberedList(response string, minItemLen int) []string {
	var items []string
	for i, line := range strings.Split(response, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if m := numberedItemPattern.FindStringSubmatch(line); m != nil {
			line = strings.TrimSpace(m[1])
		} else if i > 0 {
			continue
		}
		if len(line) > minItemLen {
			items = append(items, line)
		}
	}
	if len(items) > maxListItems {
		items = items[:maxListItems]
	}
	return items
}

// parseSentiment maps a free-form model response onto the closed sentiment
// set, defaulting to Neutral.
func parseSentiment(response string) string {
	lower := strings.ToLower(response)
	for _, sentiment := range []string{"Positive", "Negative", "Neutral", "Mixed", "Professional"} {
		if strings.Contains(lower, strings.ToLower(sentiment)) {
			return sentiment
		}
	}
	return "Neutral"
}

// truncateContent bounds prompt size by keeping the head and tail of long
// documents, matching how the analysis prompts were tuned.
func truncateContent(content string, maxChars int) string {
	if maxChars <= 0 || len(content) <= maxChars {
		return content
	}
	half := maxChars / 2
	return content[:half] + "\n\n[...content truncated...]\n\n" + content[len(content)-half:]
}

func themesBlock(themes []string) string {
	var b strings.Builder
	for i, theme := range themes {
		if i >= 5 {
			break
		}
		fmt.Fprintf(&b, "- %s\n", theme)
	}
	return strings.TrimRight(b.String(), "\n")
}
