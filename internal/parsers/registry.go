package parsers

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/custodia-labs/codebook/internal/core/domain"
	"github.com/custodia-labs/codebook/internal/core/ports/driven"
	"github.com/custodia-labs/codebook/internal/parsers/docx"
	"github.com/custodia-labs/codebook/internal/parsers/pdf"
	"github.com/custodia-labs/codebook/internal/parsers/plaintext"
)

// Ensure Registry implements the interface.
var _ driven.DocumentParser = (*Registry)(nil)

// Registry routes each file to the parser registered for its document type.
type Registry struct {
	mu      sync.RWMutex
	parsers map[domain.DocumentType]driven.DocumentParser
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{parsers: make(map[domain.DocumentType]driven.DocumentParser)}
}

// Default returns a registry with the text, DOCX and PDF parsers.
func Default() *Registry {
	r := NewRegistry()
	r.Register(plaintext.New())
	r.Register(docx.New())
	r.Register(pdf.New())
	return r
}

// Register adds p for every type it supports, replacing earlier parsers.
func (r *Registry) Register(p driven.DocumentParser) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range p.SupportedTypes() {
		r.parsers[t] = p
	}
}

// Parse picks a parser from the file extension. Unknown extensions are
// parsed as plain text.
func (r *Registry) Parse(ctx context.Context, filename string, data []byte) (*driven.ParsedDocument, error) {
	t := domain.DocumentTypeForFile(filename)

	r.mu.RLock()
	p, ok := r.parsers[t]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%s: no parser for %s: %w", filepath.Base(filename), t, domain.ErrParseFailed)
	}

	doc, err := p.Parse(ctx, filename, data)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(doc.Content) == "" {
		return nil, fmt.Errorf("%s: no text found: %w", filepath.Base(filename), domain.ErrParseFailed)
	}
	return doc, nil
}

// SupportedTypes lists the registered document types.
func (r *Registry) SupportedTypes() []domain.DocumentType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := make([]domain.DocumentType, 0, len(r.parsers))
	for _, t := range []domain.DocumentType{domain.DocumentTypeText, domain.DocumentTypeDOCX, domain.DocumentTypePDF} {
		if _, ok := r.parsers[t]; ok {
			types = append(types, t)
		}
	}
	return types
}
