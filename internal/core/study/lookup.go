package study

import (
	"fmt"
	"slices"
	"strings"

	"github.com/custodia-labs/codebook/internal/core/domain"
)

func (s *Study) documentIndex(id string) int {
	return slices.IndexFunc(s.documents, func(d domain.Document) bool { return d.ID == id })
}

func (s *Study) codeIndex(id string) int {
	return slices.IndexFunc(s.codes, func(c domain.Code) bool { return c.ID == id })
}

func (s *Study) themeIndex(id string) int {
	return slices.IndexFunc(s.themes, func(t domain.Theme) bool { return t.ID == id })
}

func (s *Study) excerptIndex(id string) int {
	return slices.IndexFunc(s.excerpts, func(e domain.Excerpt) bool { return e.ID == id })
}

func (s *Study) memoIndex(id string) int {
	return slices.IndexFunc(s.memos, func(m domain.Memo) bool { return m.ID == id })
}

func (s *Study) document(id string) (domain.Document, bool) {
	if i := s.documentIndex(id); i >= 0 {
		return s.documents[i], true
	}
	return domain.Document{}, false
}

func (s *Study) code(id string) (domain.Code, bool) {
	if id == "" {
		return domain.Code{}, false
	}
	if i := s.codeIndex(id); i >= 0 {
		return s.codes[i], true
	}
	return domain.Code{}, false
}

func (s *Study) theme(id string) (domain.Theme, bool) {
	if i := s.themeIndex(id); i >= 0 {
		return s.themes[i], true
	}
	return domain.Theme{}, false
}

func (s *Study) excerpt(id string) (domain.Excerpt, bool) {
	if i := s.excerptIndex(id); i >= 0 {
		return s.excerpts[i], true
	}
	return domain.Excerpt{}, false
}

// Documents returns every document in upload order.
func (s *Study) Documents() []domain.Document { return cloneDocuments(s.documents) }

// Codes returns every code in creation order.
func (s *Study) Codes() []domain.Code { return cloneCodes(s.codes) }

// Themes returns every theme in creation order.
func (s *Study) Themes() []domain.Theme { return cloneThemes(s.themes) }

// Excerpts returns every excerpt in creation order.
func (s *Study) Excerpts() []domain.Excerpt { return cloneExcerpts(s.excerpts) }

// Memos returns every memo in creation order.
func (s *Study) Memos() []domain.Memo { return slices.Clone(s.memos) }

// Document returns a document by id.
func (s *Study) Document(id string) (domain.Document, error) {
	d, ok := s.document(id)
	if !ok {
		return domain.Document{}, fmt.Errorf("document %q: %w", id, domain.ErrNotFound)
	}
	d.ExcerptIDs = slices.Clone(d.ExcerptIDs)
	return d, nil
}

// Code returns a code by id.
func (s *Study) Code(id string) (domain.Code, error) {
	c, ok := s.code(id)
	if !ok {
		return domain.Code{}, fmt.Errorf("code %q: %w", id, domain.ErrNotFound)
	}
	c.ExcerptIDs = slices.Clone(c.ExcerptIDs)
	return c, nil
}

// CodeByName finds a code by case-insensitive name.
func (s *Study) CodeByName(name string) (domain.Code, error) {
	name = strings.TrimSpace(name)
	for _, c := range s.codes {
		if strings.EqualFold(c.Name, name) {
			c.ExcerptIDs = slices.Clone(c.ExcerptIDs)
			return c, nil
		}
	}
	return domain.Code{}, fmt.Errorf("code %q: %w", name, domain.ErrNotFound)
}

// Theme returns a theme by id.
func (s *Study) Theme(id string) (domain.Theme, error) {
	t, ok := s.theme(id)
	if !ok {
		return domain.Theme{}, fmt.Errorf("theme %q: %w", id, domain.ErrNotFound)
	}
	t.CodeIDs = slices.Clone(t.CodeIDs)
	return t, nil
}

// Excerpt returns an excerpt by id.
func (s *Study) Excerpt(id string) (domain.Excerpt, error) {
	e, ok := s.excerpt(id)
	if !ok {
		return domain.Excerpt{}, fmt.Errorf("excerpt %q: %w", id, domain.ErrNotFound)
	}
	e.CodeIDs = slices.Clone(e.CodeIDs)
	return e, nil
}

// ExcerptsForCode returns the excerpts carrying a code.
func (s *Study) ExcerptsForCode(codeID string) []domain.Excerpt {
	var out []domain.Excerpt
	for _, e := range s.excerpts {
		if e.HasCode(codeID) {
			e.CodeIDs = slices.Clone(e.CodeIDs)
			out = append(out, e)
		}
	}
	return out
}

// ExcerptsForDocument returns the excerpts cut from a document.
func (s *Study) ExcerptsForDocument(documentID string) []domain.Excerpt {
	var out []domain.Excerpt
	for _, e := range s.excerpts {
		if e.DocumentID == documentID {
			e.CodeIDs = slices.Clone(e.CodeIDs)
			out = append(out, e)
		}
	}
	return out
}

// nameTaken reports whether another code already uses name, ignoring case.
func (s *Study) nameTaken(name, exceptID string) bool {
	for _, c := range s.codes {
		if c.ID != exceptID && strings.EqualFold(c.Name, name) {
			return true
		}
	}
	return false
}

func dedupe(ids []string) []string {
	var out []string
	for _, id := range ids {
		if !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}
