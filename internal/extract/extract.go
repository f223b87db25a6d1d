package extract

import (
	"archive/zip"
	"fmt"
	"os"

	"go.uber.org/zap"
)

// Extractor turns office documents into plain UTF-8 text with structural
// metadata.
type Extractor struct {
	logger *zap.Logger
}

// New creates an extractor.
func New(logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{logger: logger}
}

// ExtractFile extracts text from the file at path, dispatching on the
// format variant selected by the extension mapping.
func (e *Extractor) ExtractFile(path string) (*Document, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat document: %w", err)
	}

	var doc *Document
	switch format {
	case FormatPDF:
		doc, err = e.extractPDF(path)
	case FormatDocx:
		doc, err = e.extractDocxFile(path)
	case FormatPptx:
		doc, err = e.extractPptxFile(path)
	}
	if err != nil {
		return nil, err
	}

	doc.Metadata.SizeBytes = info.Size()
	e.logger.Debug("Document extracted",
		zap.String("format", string(format)),
		zap.Int("pages", doc.Metadata.Pages),
		zap.Int("slides", doc.Metadata.Slides),
		zap.Int("paragraphs", doc.Metadata.Paragraphs),
		zap.Int("text_length", len(doc.Text)),
	)
	return doc, nil
}

func (e *Extractor) extractDocxFile(path string) (*Document, error) {
	rc, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open docx container: %w", err)
	}
	defer rc.Close()
	return extractDocx(&rc.Reader)
}

func (e *Extractor) extractPptxFile(path string) (*Document, error) {
	rc, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open pptx container: %w", err)
	}
	defer rc.Close()
	return extractPptx(&rc.Reader)
}
