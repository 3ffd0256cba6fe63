package study

import (
	"fmt"
	"slices"
	"strings"

	"github.com/custodia-labs/codebook/internal/core/domain"
)

// AddDocument stores a document's extracted text.
// An empty type means plain text; a zero size is taken from the content.
func (s *Study) AddDocument(title, content string, typ domain.DocumentType, size int64) (domain.Document, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return domain.Document{}, fmt.Errorf("document title is required: %w", domain.ErrInvalidInput)
	}
	if typ == "" {
		typ = domain.DocumentTypeText
	}
	if !typ.IsValid() {
		return domain.Document{}, fmt.Errorf("document type %q: %w", typ, domain.ErrUnsupportedType)
	}
	if size <= 0 {
		size = int64(len(content))
	}

	doc := domain.Document{
		ID:         s.newID(),
		Title:      title,
		Content:    content,
		Type:       typ,
		Size:       size,
		UploadedAt: s.now(),
	}
	s.documents = append(s.documents, doc)
	s.touch()
	return doc, nil
}

// RemoveDocument deletes a document together with its excerpts and every
// memo attached to the document or those excerpts.
func (s *Study) RemoveDocument(id string) error {
	i := s.documentIndex(id)
	if i < 0 {
		return fmt.Errorf("document %q: %w", id, domain.ErrNotFound)
	}

	var gone []string
	s.excerpts = slices.DeleteFunc(s.excerpts, func(e domain.Excerpt) bool {
		if e.DocumentID == id {
			gone = append(gone, e.ID)
			return true
		}
		return false
	})
	s.memos = slices.DeleteFunc(s.memos, func(m domain.Memo) bool {
		return (m.TargetType == domain.MemoTargetDocument && m.TargetID == id) ||
			(m.TargetType == domain.MemoTargetExcerpt && slices.Contains(gone, m.TargetID))
	})
	s.documents = slices.Delete(s.documents, i, i+1)

	s.reindex()
	s.touch()
	return nil
}
