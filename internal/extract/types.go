package extract

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Format is the closed set of supported document container formats.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatDocx Format = "docx"
	FormatPptx Format = "pptx"
)

var extensionFormats = map[string]Format{
	".pdf":  FormatPDF,
	".docx": FormatDocx,
	".pptx": FormatPptx,
}

// ErrUnsupportedFormat reports a file extension outside the supported set.
type ErrUnsupportedFormat struct {
	Extension string
}

func (e *ErrUnsupportedFormat) Error() string {
	return fmt.Sprintf("unsupported document format: %q (supported: .pdf, .docx, .pptx)", e.Extension)
}

// FormatFromPath maps a file path to its format purely by extension.
func FormatFromPath(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	format, ok := extensionFormats[ext]
	if !ok {
		return "", &ErrUnsupportedFormat{Extension: ext}
	}
	return format, nil
}

// Metadata carries structural information about an extracted document. The
// sanitization core passes it through untouched.
type Metadata struct {
	Format     Format `json:"format"`
	Pages      int    `json:"pages,omitempty"`
	Slides     int    `json:"slides,omitempty"`
	Paragraphs int    `json:"paragraphs,omitempty"`
	SizeBytes  int64  `json:"size_bytes,omitempty"`
}

// Document is the result of text extraction: UTF-8 text plus structural
// metadata.
type Document struct {
	Text     string   `json:"-"`
	Metadata Metadata `json:"metadata"`
}
