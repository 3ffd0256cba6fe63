package driven

import (
	"context"

	"github.com/custodia-labs/codebook/internal/core/domain"
)

// ParsedDocument is the text extracted from an imported file.
type ParsedDocument struct {
	// Title is the file name without its extension.
	Title string

	// Content is the extracted plain text.
	Content string

	// Type is selected by the file extension.
	Type domain.DocumentType

	// Size is the size of the original file in bytes.
	Size int64
}

// DocumentParser extracts plain text from document files.
type DocumentParser interface {
	// Parse converts raw file bytes into a ParsedDocument.
	// Failures wrap domain.ErrParseFailed.
	Parse(ctx context.Context, filename string, data []byte) (*ParsedDocument, error)

	// SupportedTypes lists the document types this parser can handle.
	SupportedTypes() []domain.DocumentType
}
