package study

import (
	"fmt"
	"slices"
	"strings"

	"github.com/custodia-labs/codebook/internal/core/domain"
)

// AddTheme creates a theme. An empty color takes the next palette entry.
func (s *Study) AddTheme(name, color, parentID string) (domain.Theme, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Theme{}, fmt.Errorf("theme name is required: %w", domain.ErrInvalidInput)
	}
	if parentID != "" {
		if _, ok := s.theme(parentID); !ok {
			return domain.Theme{}, fmt.Errorf("parent theme %q: %w", parentID, domain.ErrNotFound)
		}
	}
	if color == "" {
		color = domain.PaletteColor(len(s.themes))
	}

	t := domain.Theme{
		ID:        s.newID(),
		Name:      name,
		Color:     color,
		ParentID:  parentID,
		CreatedAt: s.now(),
	}
	s.themes = append(s.themes, t)
	s.touch()
	return t, nil
}

// UpdateTheme edits a theme's name, description, color and memo.
func (s *Study) UpdateTheme(id string, u domain.ThemeUpdate) error {
	i := s.themeIndex(id)
	if i < 0 {
		return fmt.Errorf("theme %q: %w", id, domain.ErrNotFound)
	}
	if u.Name != nil {
		name := strings.TrimSpace(*u.Name)
		if name == "" {
			return fmt.Errorf("theme name is required: %w", domain.ErrInvalidInput)
		}
		s.themes[i].Name = name
	}
	if u.Description != nil {
		s.themes[i].Description = *u.Description
	}
	if u.Color != nil {
		s.themes[i].Color = *u.Color
	}
	if u.Memo != nil {
		s.themes[i].Memo = *u.Memo
	}
	s.touch()
	return nil
}

// DeleteTheme removes a theme and its sub-themes. Under DeleteLegacy only
// direct sub-themes go with it. Memos on removed themes are removed too.
func (s *Study) DeleteTheme(id string) error {
	if s.themeIndex(id) < 0 {
		return fmt.Errorf("theme %q: %w", id, domain.ErrNotFound)
	}
	ids := []string{id}
	for next := 0; next < len(ids); next++ {
		if next > 0 && s.policy == domain.DeleteLegacy {
			break
		}
		for _, t := range s.themes {
			if t.ParentID == ids[next] {
				ids = append(ids, t.ID)
			}
		}
	}

	s.themes = slices.DeleteFunc(s.themes, func(t domain.Theme) bool { return slices.Contains(ids, t.ID) })
	for i := range s.themes {
		// Orphans left by legacy deletion are lifted to the top level.
		if slices.Contains(ids, s.themes[i].ParentID) {
			s.themes[i].ParentID = ""
		}
	}
	s.memos = slices.DeleteFunc(s.memos, func(m domain.Memo) bool {
		return m.TargetType == domain.MemoTargetTheme && slices.Contains(ids, m.TargetID)
	})
	for i := range s.undo {
		for cid, themes := range s.undo[i].ThemeLinks {
			s.undo[i].ThemeLinks[cid] = slices.DeleteFunc(themes, func(tid string) bool {
				return slices.Contains(ids, tid)
			})
		}
	}
	s.touch()
	return nil
}

// AddCodeToTheme adds a code to a theme. Already a member is a no-op.
func (s *Study) AddCodeToTheme(themeID, codeID string) error {
	i := s.themeIndex(themeID)
	if i < 0 {
		return fmt.Errorf("theme %q: %w", themeID, domain.ErrNotFound)
	}
	if _, ok := s.code(codeID); !ok {
		return fmt.Errorf("code %q: %w", codeID, domain.ErrNotFound)
	}
	if slices.Contains(s.themes[i].CodeIDs, codeID) {
		return nil
	}
	s.themes[i].CodeIDs = append(s.themes[i].CodeIDs, codeID)
	s.touch()
	return nil
}

// RemoveCodeFromTheme removes a code from a theme. Not a member is a no-op.
func (s *Study) RemoveCodeFromTheme(themeID, codeID string) error {
	i := s.themeIndex(themeID)
	if i < 0 {
		return fmt.Errorf("theme %q: %w", themeID, domain.ErrNotFound)
	}
	if !slices.Contains(s.themes[i].CodeIDs, codeID) {
		return nil
	}
	s.themes[i].CodeIDs = slices.DeleteFunc(s.themes[i].CodeIDs, func(id string) bool { return id == codeID })
	s.touch()
	return nil
}

// MoveCodeBetweenThemes removes a code from one theme and adds it to another.
// Both themes and the code must exist; otherwise nothing changes.
func (s *Study) MoveCodeBetweenThemes(codeID, fromID, toID string) error {
	from := s.themeIndex(fromID)
	if from < 0 {
		return fmt.Errorf("theme %q: %w", fromID, domain.ErrNotFound)
	}
	to := s.themeIndex(toID)
	if to < 0 {
		return fmt.Errorf("theme %q: %w", toID, domain.ErrNotFound)
	}
	if _, ok := s.code(codeID); !ok {
		return fmt.Errorf("code %q: %w", codeID, domain.ErrNotFound)
	}
	if from == to {
		return s.AddCodeToTheme(toID, codeID)
	}

	s.themes[from].CodeIDs = slices.DeleteFunc(s.themes[from].CodeIDs, func(id string) bool { return id == codeID })
	if !slices.Contains(s.themes[to].CodeIDs, codeID) {
		s.themes[to].CodeIDs = append(s.themes[to].CodeIDs, codeID)
	}
	s.touch()
	return nil
}

// ThemesForCode returns the themes a code belongs to.
func (s *Study) ThemesForCode(codeID string) []domain.Theme {
	var out []domain.Theme
	for _, t := range s.themes {
		if slices.Contains(t.CodeIDs, codeID) {
			t.CodeIDs = slices.Clone(t.CodeIDs)
			out = append(out, t)
		}
	}
	return out
}
