package extract

import (
	"fmt"
	"strings"

	"rsc.io/pdf"
)

// extractPDF reads page text with rsc.io/pdf, emitting a page marker before
// each page's content.
func (e *Extractor) extractPDF(path string) (*Document, error) {
	reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}

	var b strings.Builder
	pages := reader.NumPage()
	for i := 1; i <= pages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		fmt.Fprintf(&b, "\n--- Page %d ---\n", i)
		b.WriteString(pageText(page))
	}

	return &Document{
		Text:     b.String(),
		Metadata: Metadata{Format: FormatPDF, Pages: pages},
	}, nil
}

// pageText concatenates the page's positioned text runs, inserting spaces
// between runs and newlines on vertical position changes.
func pageText(page pdf.Page) string {
	content := page.Content()

	var b strings.Builder
	var lastY float64
	for i, text := range content.Text {
		if i > 0 {
			if text.Y != lastY {
				b.WriteByte('\n')
			} else {
				b.WriteByte(' ')
			}
		}
		b.WriteString(text.S)
		lastY = text.Y
	}
	return b.String()
}
