package study

import (
	"fmt"
	"slices"
	"strings"

	"github.com/custodia-labs/codebook/internal/core/domain"
)

// AddCode creates a code. An empty level means main.
func (s *Study) AddCode(name, parentID string, level domain.CodeLevel) (domain.Code, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Code{}, fmt.Errorf("code name is required: %w", domain.ErrInvalidInput)
	}
	if level == "" {
		level = domain.CodeLevelMain
	}
	if !level.IsValid() {
		return domain.Code{}, fmt.Errorf("code level %q: %w", level, domain.ErrInvalidInput)
	}
	if s.nameTaken(name, "") {
		return domain.Code{}, fmt.Errorf("code %q: %w", name, domain.ErrDuplicateName)
	}
	if err := s.checkParent(level, parentID); err != nil {
		return domain.Code{}, err
	}

	c := domain.Code{
		ID:        s.newID(),
		Name:      name,
		Color:     level.DefaultColor(),
		Level:     level,
		ParentID:  parentID,
		CreatedAt: s.now(),
	}
	s.codes = append(s.codes, c)
	s.touch()
	return c, nil
}

func (s *Study) checkParent(level domain.CodeLevel, parentID string) error {
	want, needsParent := level.ParentLevel()
	if !needsParent {
		if parentID != "" {
			return fmt.Errorf("main codes cannot have a parent: %w", domain.ErrInvalidHierarchy)
		}
		return nil
	}
	if parentID == "" {
		return fmt.Errorf("%s code needs a %s parent: %w", level, want, domain.ErrInvalidHierarchy)
	}
	parent, ok := s.code(parentID)
	if !ok {
		return fmt.Errorf("parent code %q: %w", parentID, domain.ErrNotFound)
	}
	if parent.Level != want {
		return fmt.Errorf("%s code needs a %s parent, %q is %s: %w",
			level, want, parent.Name, parent.Level, domain.ErrInvalidHierarchy)
	}
	return nil
}

// RenameCode changes a code's name. Derived fields are untouched.
func (s *Study) RenameCode(id, name string) error {
	i := s.codeIndex(id)
	if i < 0 {
		return fmt.Errorf("code %q: %w", id, domain.ErrNotFound)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("code name is required: %w", domain.ErrInvalidInput)
	}
	if s.nameTaken(name, id) {
		return fmt.Errorf("code %q: %w", name, domain.ErrDuplicateName)
	}
	s.codes[i].Name = name
	s.touch()
	return nil
}

// UpdateCode edits a code's description and color.
func (s *Study) UpdateCode(id string, u domain.CodeUpdate) error {
	i := s.codeIndex(id)
	if i < 0 {
		return fmt.Errorf("code %q: %w", id, domain.ErrNotFound)
	}
	if u.Description != nil {
		s.codes[i].Description = *u.Description
	}
	if u.Color != nil {
		s.codes[i].Color = *u.Color
	}
	s.touch()
	return nil
}

// subtree returns id followed by the codes removed with it under the policy,
// parents before children.
func (s *Study) subtree(id string) []string {
	out := []string{id}
	for next := 0; next < len(out); next++ {
		if next > 0 && s.policy == domain.DeleteLegacy {
			break
		}
		for _, c := range s.codes {
			if c.ParentID == out[next] {
				out = append(out, c.ID)
			}
		}
	}
	return out
}

// DeleteCode removes a code and its descendants, strips them from every
// excerpt and theme and records an undo entry.
// Under DeleteLegacy only direct children go with it.
// It returns the removed codes, the requested one first.
func (s *Study) DeleteCode(id string) ([]domain.Code, error) {
	if _, ok := s.code(id); !ok {
		return nil, fmt.Errorf("code %q: %w", id, domain.ErrNotFound)
	}
	ids := s.subtree(id)

	rec := domain.CodeDeletion{
		Policy:       s.policy,
		ExcerptLinks: make(map[string][]string),
		ThemeLinks:   make(map[string][]string),
		DeletedAt:    s.now(),
	}
	removed := make([]domain.Code, 0, len(ids))
	for _, cid := range ids {
		c, _ := s.code(cid)
		removed = append(removed, c)
	}

	for i := range s.excerpts {
		for _, cid := range ids {
			if s.excerpts[i].HasCode(cid) {
				rec.ExcerptLinks[cid] = append(rec.ExcerptLinks[cid], s.excerpts[i].ID)
			}
		}
		s.excerpts[i].CodeIDs = slices.DeleteFunc(s.excerpts[i].CodeIDs, func(cid string) bool {
			return slices.Contains(ids, cid)
		})
	}
	for i := range s.themes {
		for _, cid := range ids {
			if slices.Contains(s.themes[i].CodeIDs, cid) {
				rec.ThemeLinks[cid] = append(rec.ThemeLinks[cid], s.themes[i].ID)
			}
		}
		s.themes[i].CodeIDs = slices.DeleteFunc(s.themes[i].CodeIDs, func(cid string) bool {
			return slices.Contains(ids, cid)
		})
	}
	s.memos = slices.DeleteFunc(s.memos, func(m domain.Memo) bool {
		if m.TargetType == domain.MemoTargetCode && slices.Contains(ids, m.TargetID) {
			rec.Memos = append(rec.Memos, m)
			return true
		}
		return false
	})
	s.codes = slices.DeleteFunc(s.codes, func(c domain.Code) bool {
		return slices.Contains(ids, c.ID)
	})
	for i := range s.codes {
		// Grandchildren orphaned by legacy deletion become main codes.
		if slices.Contains(ids, s.codes[i].ParentID) {
			s.codes[i].ParentID = ""
			s.codes[i].Level = domain.CodeLevelMain
		}
	}

	if s.policy == domain.DeleteLegacy {
		// Legacy undo brings back the requested code alone, unlinked.
		rec.Codes = removed[:1]
		rec.ExcerptLinks, rec.ThemeLinks, rec.Memos = nil, nil, nil
	} else {
		rec.Codes = removed
	}
	rec.Codes = cloneCodes(rec.Codes)
	s.undo = append(s.undo, rec)

	s.reindex()
	s.touch()
	return removed, nil
}

// UndoDepth returns the number of deletions that can be undone.
func (s *Study) UndoDepth() int {
	return len(s.undo)
}

// UndoDeleteCode reverses the most recent DeleteCode.
//
// A record made under DeleteCascade restores every removed code with its
// excerpt links, theme links and memos, skipping excerpts and themes that no
// longer exist. A DeleteLegacy record restores only the requested code.
// On error the undo stack is left as it was.
func (s *Study) UndoDeleteCode() ([]domain.Code, error) {
	if len(s.undo) == 0 {
		return nil, domain.ErrNothingToUndo
	}
	rec := s.undo[len(s.undo)-1]

	for _, c := range rec.Codes {
		if s.nameTaken(c.Name, "") {
			return nil, fmt.Errorf("cannot restore code %q: %w", c.Name, domain.ErrDuplicateName)
		}
	}
	if rec.Policy != domain.DeleteLegacy && len(rec.Codes) > 0 {
		root := rec.Codes[0]
		if root.ParentID != "" {
			if _, ok := s.code(root.ParentID); !ok {
				return nil, fmt.Errorf("parent of %q no longer exists: %w", root.Name, domain.ErrInvalidHierarchy)
			}
		}
	}

	s.undo = s.undo[:len(s.undo)-1]
	restored := cloneCodes(rec.Codes)
	for i := range restored {
		c := &restored[i]
		// A legacy restore whose parent has since gone returns as a main code.
		if rec.Policy == domain.DeleteLegacy && c.ParentID != "" {
			if _, ok := s.code(c.ParentID); !ok {
				c.ParentID = ""
				c.Level = domain.CodeLevelMain
			}
		}
	}
	for _, c := range restored {
		c.ExcerptIDs = nil
		c.Frequency = 0
		c.DocumentCount = 0
		s.codes = append(s.codes, c)
	}
	for _, c := range restored {
		for _, eid := range rec.ExcerptLinks[c.ID] {
			if i := s.excerptIndex(eid); i >= 0 && !s.excerpts[i].HasCode(c.ID) {
				s.excerpts[i].CodeIDs = append(s.excerpts[i].CodeIDs, c.ID)
			}
		}
		for _, tid := range rec.ThemeLinks[c.ID] {
			if i := s.themeIndex(tid); i >= 0 && !slices.Contains(s.themes[i].CodeIDs, c.ID) {
				s.themes[i].CodeIDs = append(s.themes[i].CodeIDs, c.ID)
			}
		}
	}
	for _, m := range rec.Memos {
		if s.memoIndex(m.ID) < 0 {
			s.memos = append(s.memos, m)
		}
	}

	s.reindex()
	s.touch()

	out := make([]domain.Code, 0, len(restored))
	for _, c := range restored {
		fresh, _ := s.code(c.ID)
		fresh.ExcerptIDs = slices.Clone(fresh.ExcerptIDs)
		out = append(out, fresh)
	}
	return out, nil
}

// MergeCodes folds source into target.
//
// Every excerpt carrying source carries target instead, exactly once. Theme
// memberships and memos move to target, and source's children are
// re-parented to target when both codes share a level. Source is removed
// without an undo record.
func (s *Study) MergeCodes(sourceID, targetID string) error {
	if sourceID == targetID {
		return fmt.Errorf("cannot merge a code into itself: %w", domain.ErrInvalidInput)
	}
	src, ok := s.code(sourceID)
	if !ok {
		return fmt.Errorf("code %q: %w", sourceID, domain.ErrNotFound)
	}
	tgt, ok := s.code(targetID)
	if !ok {
		return fmt.Errorf("code %q: %w", targetID, domain.ErrNotFound)
	}
	hasChildren := slices.ContainsFunc(s.codes, func(c domain.Code) bool { return c.ParentID == sourceID })
	if hasChildren && src.Level != tgt.Level {
		return fmt.Errorf("cannot move children of %s code %q under %s code %q: %w",
			src.Level, src.Name, tgt.Level, tgt.Name, domain.ErrInvalidHierarchy)
	}

	for i := range s.codes {
		if s.codes[i].ParentID == sourceID {
			s.codes[i].ParentID = targetID
		}
	}
	for i := range s.excerpts {
		if !s.excerpts[i].HasCode(sourceID) {
			continue
		}
		ids := slices.DeleteFunc(s.excerpts[i].CodeIDs, func(id string) bool { return id == sourceID })
		if !slices.Contains(ids, targetID) {
			ids = append(ids, targetID)
		}
		s.excerpts[i].CodeIDs = ids
	}
	for i := range s.themes {
		if !slices.Contains(s.themes[i].CodeIDs, sourceID) {
			continue
		}
		ids := slices.DeleteFunc(s.themes[i].CodeIDs, func(id string) bool { return id == sourceID })
		if !slices.Contains(ids, targetID) {
			ids = append(ids, targetID)
		}
		s.themes[i].CodeIDs = ids
	}
	for i := range s.memos {
		if s.memos[i].TargetType == domain.MemoTargetCode && s.memos[i].TargetID == sourceID {
			s.memos[i].TargetID = targetID
		}
	}
	s.codes = slices.DeleteFunc(s.codes, func(c domain.Code) bool { return c.ID == sourceID })

	s.reindex()
	s.touch()
	return nil
}
