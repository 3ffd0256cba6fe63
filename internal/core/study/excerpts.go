package study

import (
	"fmt"
	"slices"

	"github.com/custodia-labs/codebook/internal/core/domain"
)

// checkSelection validates a selection against its document and returns the
// selected text.
func (s *Study) checkSelection(sel domain.TextSelection) (string, error) {
	doc, ok := s.document(sel.DocumentID)
	if !ok {
		return "", fmt.Errorf("document %q: %w", sel.DocumentID, domain.ErrNotFound)
	}
	text, ok := doc.Span(sel.StartOffset, sel.EndOffset)
	if !ok {
		return "", fmt.Errorf("offsets %d..%d outside 0..%d: %w",
			sel.StartOffset, sel.EndOffset, doc.Length(), domain.ErrInvalidSelection)
	}
	if sel.Text != "" && sel.Text != text {
		return "", fmt.Errorf("selected text does not match document: %w", domain.ErrInvalidSelection)
	}
	return text, nil
}

// AddExcerpt codes a text selection with one or more existing codes.
func (s *Study) AddExcerpt(sel domain.TextSelection, codeIDs []string, memo string) (domain.Excerpt, error) {
	codeIDs = dedupe(codeIDs)
	if len(codeIDs) == 0 {
		return domain.Excerpt{}, domain.ErrNoCodes
	}
	text, err := s.checkSelection(sel)
	if err != nil {
		return domain.Excerpt{}, err
	}
	for _, id := range codeIDs {
		if _, ok := s.code(id); !ok {
			return domain.Excerpt{}, fmt.Errorf("code %q: %w", id, domain.ErrNotFound)
		}
	}

	e := domain.Excerpt{
		ID:          s.newID(),
		Text:        text,
		DocumentID:  sel.DocumentID,
		StartOffset: sel.StartOffset,
		EndOffset:   sel.EndOffset,
		CodeIDs:     codeIDs,
		Memo:        memo,
		CreatedAt:   s.now(),
	}
	s.excerpts = append(s.excerpts, e)
	s.reindex()
	s.touch()

	e.CodeIDs = slices.Clone(e.CodeIDs)
	return e, nil
}

// RemoveExcerpt deletes an excerpt and the memos attached to it.
func (s *Study) RemoveExcerpt(id string) error {
	i := s.excerptIndex(id)
	if i < 0 {
		return fmt.Errorf("excerpt %q: %w", id, domain.ErrNotFound)
	}
	s.excerpts = slices.Delete(s.excerpts, i, i+1)
	s.memos = slices.DeleteFunc(s.memos, func(m domain.Memo) bool {
		return m.TargetType == domain.MemoTargetExcerpt && m.TargetID == id
	})
	s.reindex()
	s.touch()
	return nil
}

// AssignCode applies a code to an excerpt. Already applied is a no-op.
func (s *Study) AssignCode(excerptID, codeID string) error {
	i := s.excerptIndex(excerptID)
	if i < 0 {
		return fmt.Errorf("excerpt %q: %w", excerptID, domain.ErrNotFound)
	}
	if _, ok := s.code(codeID); !ok {
		return fmt.Errorf("code %q: %w", codeID, domain.ErrNotFound)
	}
	if s.excerpts[i].HasCode(codeID) {
		return nil
	}
	s.excerpts[i].CodeIDs = append(s.excerpts[i].CodeIDs, codeID)
	s.reindex()
	s.touch()
	return nil
}

// UnassignCode removes a code from an excerpt. Not applied is a no-op.
// The excerpt is kept even when its last code is removed.
func (s *Study) UnassignCode(excerptID, codeID string) error {
	i := s.excerptIndex(excerptID)
	if i < 0 {
		return fmt.Errorf("excerpt %q: %w", excerptID, domain.ErrNotFound)
	}
	if !s.excerpts[i].HasCode(codeID) {
		return nil
	}
	s.excerpts[i].CodeIDs = slices.DeleteFunc(s.excerpts[i].CodeIDs, func(id string) bool { return id == codeID })
	s.reindex()
	s.touch()
	return nil
}

// UpdateExcerptMemo replaces an excerpt's inline memo.
func (s *Study) UpdateExcerptMemo(id, memo string) error {
	i := s.excerptIndex(id)
	if i < 0 {
		return fmt.Errorf("excerpt %q: %w", id, domain.ErrNotFound)
	}
	s.excerpts[i].Memo = memo
	s.touch()
	return nil
}
