package extract

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var slidePartPattern = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)

// extractPptx pulls text out of each ppt/slides/slideN.xml part in slide
// order, emitting a slide marker before each slide's content. Text runs
// live in DrawingML <a:t> elements.
func extractPptx(r *zip.Reader) (*Document, error) {
	type slidePart struct {
		number int
		name   string
	}
	var parts []slidePart
	for _, file := range r.File {
		m := slidePartPattern.FindStringSubmatch(file.Name)
		if m == nil {
			continue
		}
		number, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		parts = append(parts, slidePart{number: number, name: file.Name})
	}
	sort.Slice(parts, func(i, j int) bool { return parts[i].number < parts[j].number })

	var b strings.Builder
	for _, part := range parts {
		fmt.Fprintf(&b, "\n--- Slide %d ---\n", part.number)
		text, err := slideText(r, part.name)
		if err != nil {
			return nil, err
		}
		b.WriteString(text)
	}

	return &Document{
		Text:     b.String(),
		Metadata: Metadata{Format: FormatPptx, Slides: len(parts)},
	}, nil
}

func slideText(r *zip.Reader, name string) (string, error) {
	part, err := openPart(r, name)
	if err != nil {
		return "", err
	}
	defer part.Close()

	var (
		b      strings.Builder
		inText bool
	)
	decoder := xml.NewDecoder(part)
	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to parse slide xml: %w", err)
		}

		switch t := token.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				inText = true
			}
		case xml.EndElement:
			if t.Name.Local == "t" {
				inText = false
				b.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				b.Write(t)
			}
		}
	}
	return b.String(), nil
}
