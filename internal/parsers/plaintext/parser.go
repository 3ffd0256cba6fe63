// Package plaintext parses UTF-8 text files.
package plaintext

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/codebook/internal/core/domain"
	"github.com/custodia-labs/codebook/internal/core/ports/driven"
)

// Ensure Parser implements the interface.
var _ driven.DocumentParser = (*Parser)(nil)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Parser handles plain text documents.
type Parser struct{}

// New creates a new plain text parser.
func New() *Parser {
	return &Parser{}
}

// SupportedTypes returns the document types this parser handles.
func (p *Parser) SupportedTypes() []domain.DocumentType {
	return []domain.DocumentType{domain.DocumentTypeText}
}

// Parse returns the file contents as text. Line endings are normalised to
// \n and invalid UTF-8 sequences are replaced.
func (p *Parser) Parse(_ context.Context, filename string, data []byte) (*driven.ParsedDocument, error) {
	// NUL bytes mean a binary file with a text-ish extension.
	if bytes.IndexByte(data, 0) >= 0 {
		return nil, fmt.Errorf("%s: binary content: %w", filepath.Base(filename), domain.ErrParseFailed)
	}

	text := string(bytes.TrimPrefix(data, utf8BOM))
	text = strings.ToValidUTF8(text, "�")
	text = strings.ReplaceAll(text, "\r\n", "\n")

	return &driven.ParsedDocument{
		Title:   domain.TitleForFile(filename),
		Content: text,
		Type:    domain.DocumentTypeText,
		Size:    int64(len(data)),
	}, nil
}
