package study

import (
	"fmt"
	"slices"
	"strings"

	"github.com/custodia-labs/codebook/internal/core/domain"
)

// AddMemo annotates an existing document, excerpt, code or theme.
// Several memos may target the same entity.
func (s *Study) AddMemo(content string, target domain.MemoTarget, targetID string) (domain.Memo, error) {
	if strings.TrimSpace(content) == "" {
		return domain.Memo{}, fmt.Errorf("memo content is required: %w", domain.ErrInvalidInput)
	}
	if !target.IsValid() {
		return domain.Memo{}, fmt.Errorf("memo target %q: %w", target, domain.ErrInvalidInput)
	}
	if !s.targetExists(target, targetID) {
		return domain.Memo{}, fmt.Errorf("%s %q: %w", target, targetID, domain.ErrNotFound)
	}

	now := s.now()
	m := domain.Memo{
		ID:         s.newID(),
		Content:    content,
		TargetType: target,
		TargetID:   targetID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	s.memos = append(s.memos, m)
	s.touch()
	return m, nil
}

// UpdateMemo replaces a memo's content.
func (s *Study) UpdateMemo(id, content string) error {
	i := s.memoIndex(id)
	if i < 0 {
		return fmt.Errorf("memo %q: %w", id, domain.ErrNotFound)
	}
	if strings.TrimSpace(content) == "" {
		return fmt.Errorf("memo content is required: %w", domain.ErrInvalidInput)
	}
	s.memos[i].Content = content
	s.memos[i].UpdatedAt = s.now()
	s.touch()
	return nil
}

// DeleteMemo removes a memo.
func (s *Study) DeleteMemo(id string) error {
	i := s.memoIndex(id)
	if i < 0 {
		return fmt.Errorf("memo %q: %w", id, domain.ErrNotFound)
	}
	s.memos = slices.Delete(s.memos, i, i+1)
	s.touch()
	return nil
}

// MemosFor returns every memo on a target, oldest first.
func (s *Study) MemosFor(target domain.MemoTarget, targetID string) []domain.Memo {
	var out []domain.Memo
	for _, m := range s.memos {
		if m.TargetType == target && m.TargetID == targetID {
			out = append(out, m)
		}
	}
	return out
}

// MemoFor returns the most recently updated memo on a target.
func (s *Study) MemoFor(target domain.MemoTarget, targetID string) (domain.Memo, bool) {
	var latest domain.Memo
	found := false
	for _, m := range s.memos {
		if m.TargetType != target || m.TargetID != targetID {
			continue
		}
		if !found || !m.UpdatedAt.Before(latest.UpdatedAt) {
			latest, found = m, true
		}
	}
	return latest, found
}
