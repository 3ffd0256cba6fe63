package exchange

import (
	"fmt"
	"time"

	"github.com/custodia-labs/codebook/internal/core/domain"
)

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

// parseTime accepts RFC 3339 with or without fractional seconds.
func parseTime(field, s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s %q: %w", field, s, domain.ErrInvalidInput)
	}
	return t.UTC(), nil
}

// timeParser collects the first parse error across many fields.
type timeParser struct{ err error }

func (p *timeParser) parse(field, s string) time.Time {
	if p.err != nil {
		return time.Time{}
	}
	t, err := parseTime(field, s)
	p.err = err
	return t
}

type documentJSON struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Content    string   `json:"content"`
	Type       string   `json:"type"`
	Size       int64    `json:"size"`
	UploadedAt string   `json:"uploadedAt"`
	Excerpts   []string `json:"excerpts"`
}

type codeJSON struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Description   string   `json:"description,omitempty"`
	Color         string   `json:"color"`
	Level         string   `json:"level"`
	ParentID      string   `json:"parentId,omitempty"`
	ExcerptIDs    []string `json:"excerptIds"`
	CreatedAt     string   `json:"createdAt"`
	Frequency     int      `json:"frequency"`
	DocumentCount int      `json:"documentCount"`
}

type themeJSON struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Color       string   `json:"color"`
	Memo        string   `json:"memo,omitempty"`
	CodeIDs     []string `json:"codeIds"`
	ParentID    string   `json:"parentId,omitempty"`
	CreatedAt   string   `json:"createdAt"`
}

type excerptJSON struct {
	ID          string   `json:"id"`
	Text        string   `json:"text"`
	DocumentID  string   `json:"documentId"`
	StartOffset int      `json:"startOffset"`
	EndOffset   int      `json:"endOffset"`
	CodeIDs     []string `json:"codeIds"`
	Memo        string   `json:"memo,omitempty"`
	CreatedAt   string   `json:"createdAt"`
}

type memoJSON struct {
	ID         string `json:"id"`
	Content    string `json:"content"`
	TargetType string `json:"targetType"`
	TargetID   string `json:"targetId"`
	CreatedAt  string `json:"createdAt"`
	UpdatedAt  string `json:"updatedAt"`
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}

func documentsToWire(in []domain.Document) []documentJSON {
	out := make([]documentJSON, 0, len(in))
	for _, d := range in {
		out = append(out, documentJSON{
			ID:         d.ID,
			Title:      d.Title,
			Content:    d.Content,
			Type:       d.Type.String(),
			Size:       d.Size,
			UploadedAt: formatTime(d.UploadedAt),
			Excerpts:   nonNil(d.ExcerptIDs),
		})
	}
	return out
}

func documentsFromWire(in []documentJSON, p *timeParser) []domain.Document {
	out := make([]domain.Document, 0, len(in))
	for _, d := range in {
		out = append(out, domain.Document{
			ID:         d.ID,
			Title:      d.Title,
			Content:    d.Content,
			Type:       domain.DocumentType(d.Type),
			Size:       d.Size,
			UploadedAt: p.parse("document uploadedAt", d.UploadedAt),
			ExcerptIDs: d.Excerpts,
		})
	}
	return out
}

func codesToWire(in []domain.Code) []codeJSON {
	out := make([]codeJSON, 0, len(in))
	for _, c := range in {
		out = append(out, codeJSON{
			ID:            c.ID,
			Name:          c.Name,
			Description:   c.Description,
			Color:         c.Color,
			Level:         c.Level.String(),
			ParentID:      c.ParentID,
			ExcerptIDs:    nonNil(c.ExcerptIDs),
			CreatedAt:     formatTime(c.CreatedAt),
			Frequency:     c.Frequency,
			DocumentCount: c.DocumentCount,
		})
	}
	return out
}

func codesFromWire(in []codeJSON, p *timeParser) []domain.Code {
	out := make([]domain.Code, 0, len(in))
	for _, c := range in {
		out = append(out, domain.Code{
			ID:            c.ID,
			Name:          c.Name,
			Description:   c.Description,
			Color:         c.Color,
			Level:         domain.CodeLevel(c.Level),
			ParentID:      c.ParentID,
			ExcerptIDs:    c.ExcerptIDs,
			Frequency:     c.Frequency,
			DocumentCount: c.DocumentCount,
			CreatedAt:     p.parse("code createdAt", c.CreatedAt),
		})
	}
	return out
}

func themesToWire(in []domain.Theme) []themeJSON {
	out := make([]themeJSON, 0, len(in))
	for _, t := range in {
		out = append(out, themeJSON{
			ID:          t.ID,
			Name:        t.Name,
			Description: t.Description,
			Color:       t.Color,
			Memo:        t.Memo,
			CodeIDs:     nonNil(t.CodeIDs),
			ParentID:    t.ParentID,
			CreatedAt:   formatTime(t.CreatedAt),
		})
	}
	return out
}

func themesFromWire(in []themeJSON, p *timeParser) []domain.Theme {
	out := make([]domain.Theme, 0, len(in))
	for _, t := range in {
		out = append(out, domain.Theme{
			ID:          t.ID,
			Name:        t.Name,
			Description: t.Description,
			Color:       t.Color,
			Memo:        t.Memo,
			CodeIDs:     t.CodeIDs,
			ParentID:    t.ParentID,
			CreatedAt:   p.parse("theme createdAt", t.CreatedAt),
		})
	}
	return out
}

func excerptsToWire(in []domain.Excerpt) []excerptJSON {
	out := make([]excerptJSON, 0, len(in))
	for _, e := range in {
		out = append(out, excerptJSON{
			ID:          e.ID,
			Text:        e.Text,
			DocumentID:  e.DocumentID,
			StartOffset: e.StartOffset,
			EndOffset:   e.EndOffset,
			CodeIDs:     nonNil(e.CodeIDs),
			Memo:        e.Memo,
			CreatedAt:   formatTime(e.CreatedAt),
		})
	}
	return out
}

func excerptsFromWire(in []excerptJSON, p *timeParser) []domain.Excerpt {
	out := make([]domain.Excerpt, 0, len(in))
	for _, e := range in {
		out = append(out, domain.Excerpt{
			ID:          e.ID,
			Text:        e.Text,
			DocumentID:  e.DocumentID,
			StartOffset: e.StartOffset,
			EndOffset:   e.EndOffset,
			CodeIDs:     e.CodeIDs,
			Memo:        e.Memo,
			CreatedAt:   p.parse("excerpt createdAt", e.CreatedAt),
		})
	}
	return out
}

func memosToWire(in []domain.Memo) []memoJSON {
	out := make([]memoJSON, 0, len(in))
	for _, m := range in {
		out = append(out, memoJSON{
			ID:         m.ID,
			Content:    m.Content,
			TargetType: m.TargetType.String(),
			TargetID:   m.TargetID,
			CreatedAt:  formatTime(m.CreatedAt),
			UpdatedAt:  formatTime(m.UpdatedAt),
		})
	}
	return out
}

func memosFromWire(in []memoJSON, p *timeParser) []domain.Memo {
	out := make([]domain.Memo, 0, len(in))
	for _, m := range in {
		out = append(out, domain.Memo{
			ID:         m.ID,
			Content:    m.Content,
			TargetType: domain.MemoTarget(m.TargetType),
			TargetID:   m.TargetID,
			CreatedAt:  p.parse("memo createdAt", m.CreatedAt),
			UpdatedAt:  p.parse("memo updatedAt", m.UpdatedAt),
		})
	}
	return out
}
