package extract

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// extractDocx pulls paragraph text out of the OOXML word/document.xml part.
// DOCX is a zip of XML parts; text runs live in <w:t> elements grouped into
// <w:p> paragraphs.
func extractDocx(r *zip.Reader) (*Document, error) {
	part, err := openPart(r, "word/document.xml")
	if err != nil {
		return nil, err
	}
	defer part.Close()

	var (
		b          strings.Builder
		paragraph  strings.Builder
		paragraphs int
		inText     bool
	)

	decoder := xml.NewDecoder(part)
	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse docx xml: %w", err)
		}

		switch t := token.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				inText = true
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				if text := strings.TrimSpace(paragraph.String()); text != "" {
					b.WriteString(text)
					b.WriteByte('\n')
					paragraphs++
				}
				paragraph.Reset()
			}
		case xml.CharData:
			if inText {
				paragraph.Write(t)
			}
		}
	}

	return &Document{
		Text:     b.String(),
		Metadata: Metadata{Format: FormatDocx, Paragraphs: paragraphs},
	}, nil
}

func openPart(r *zip.Reader, name string) (io.ReadCloser, error) {
	for _, file := range r.File {
		if file.Name == name {
			part, err := file.Open()
			if err != nil {
				return nil, fmt.Errorf("failed to open container part %s: %w", name, err)
			}
			return part, nil
		}
	}
	return nil, fmt.Errorf("container part %s not found", name)
}
