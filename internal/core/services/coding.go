package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/custodia-labs/codebook/internal/core/domain"
	"github.com/custodia-labs/codebook/internal/core/study"
)

// AddCode creates a code.
func (w *Workbench) AddCode(
	ctx context.Context, studyID, name, parentID string, level domain.CodeLevel,
) (*domain.Code, error) {
	var code domain.Code
	err := w.studyTx(ctx, studyID, func(s *study.Study) error {
		var err error
		code, err = s.AddCode(name, parentID, level)
		if err != nil {
			return err
		}
		w.record(domain.ActionCodeCreated, domain.AnalyticsDetails{
			StudyID: s.ID(), CodeID: code.ID, CodeName: code.Name,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &code, nil
}

// RenameCode renames a code.
func (w *Workbench) RenameCode(ctx context.Context, studyID, id, name string) error {
	return w.studyTx(ctx, studyID, func(s *study.Study) error {
		return s.RenameCode(id, name)
	})
}

// UpdateCode edits the description or color of a code.
func (w *Workbench) UpdateCode(ctx context.Context, studyID, id string, u domain.CodeUpdate) error {
	return w.studyTx(ctx, studyID, func(s *study.Study) error {
		return s.UpdateCode(id, u)
	})
}

// DeleteCode removes a code according to the configured delete policy and
// returns the removed codes.
func (w *Workbench) DeleteCode(ctx context.Context, studyID, id string) ([]domain.Code, error) {
	var removed []domain.Code
	err := w.studyTx(ctx, studyID, func(s *study.Study) error {
		var err error
		removed, err = s.DeleteCode(id)
		return err
	})
	return removed, err
}

// UndoDeleteCode restores the most recent deletion of the study.
func (w *Workbench) UndoDeleteCode(ctx context.Context, studyID string) ([]domain.Code, error) {
	var restored []domain.Code
	err := w.studyTx(ctx, studyID, func(s *study.Study) error {
		var err error
		restored, err = s.UndoDeleteCode()
		return err
	})
	return restored, err
}

// MergeCodes folds source into target.
func (w *Workbench) MergeCodes(ctx context.Context, studyID, sourceID, targetID string) error {
	return w.studyTx(ctx, studyID, func(s *study.Study) error {
		return s.MergeCodes(sourceID, targetID)
	})
}

// ListCodes returns the codes of a study with fresh statistics.
func (w *Workbench) ListCodes(studyID string) ([]domain.Code, error) {
	var codes []domain.Code
	err := w.view(studyID, func(s *study.Study) error {
		codes = s.Codes()
		return nil
	})
	return codes, err
}

// GetCode returns one code.
func (w *Workbench) GetCode(studyID, id string) (*domain.Code, error) {
	var code domain.Code
	err := w.view(studyID, func(s *study.Study) error {
		var err error
		code, err = s.Code(id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &code, nil
}

// ResolveCode finds a code by id or case-insensitive name.
func (w *Workbench) ResolveCode(studyID, ref string) (*domain.Code, error) {
	ref = strings.TrimSpace(ref)
	var code domain.Code
	err := w.view(studyID, func(s *study.Study) error {
		var err error
		code, err = s.Code(ref)
		if errors.Is(err, domain.ErrNotFound) {
			code, err = s.CodeByName(ref)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return &code, nil
}

// AddExcerpt codes a text selection with existing codes.
func (w *Workbench) AddExcerpt(
	ctx context.Context, studyID string, sel domain.TextSelection, codeIDs []string, memo string,
) (*domain.Excerpt, error) {
	var excerpt domain.Excerpt
	err := w.studyTx(ctx, studyID, func(s *study.Study) error {
		var err error
		excerpt, err = s.AddExcerpt(sel, codeIDs, memo)
		if err != nil {
			return err
		}
		w.recordExcerpt(s, excerpt)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &excerpt, nil
}

// AddExcerptWithNewCode creates a main code and an excerpt coded with it
// in one transaction.
func (w *Workbench) AddExcerptWithNewCode(
	ctx context.Context, studyID string, sel domain.TextSelection, codeName string,
) (*domain.Excerpt, *domain.Code, error) {
	var (
		excerpt domain.Excerpt
		code    domain.Code
	)
	err := w.studyTx(ctx, studyID, func(s *study.Study) error {
		var err error
		code, err = s.AddCode(codeName, "", domain.CodeLevelMain)
		if err != nil {
			return err
		}
		w.record(domain.ActionCodeCreated, domain.AnalyticsDetails{
			StudyID: s.ID(), CodeID: code.ID, CodeName: code.Name,
		})
		excerpt, err = s.AddExcerpt(sel, []string{code.ID}, "")
		if err != nil {
			return err
		}
		w.recordExcerpt(s, excerpt)
		code, err = s.Code(code.ID)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return &excerpt, &code, nil
}

// recordExcerpt logs an excerpt creation and one application per code.
func (w *Workbench) recordExcerpt(s *study.Study, e domain.Excerpt) {
	w.record(domain.ActionExcerptCreated, domain.AnalyticsDetails{
		StudyID:       s.ID(),
		DocumentID:    e.DocumentID,
		ExcerptID:     e.ID,
		ExcerptText:   e.Text,
		ExcerptLength: e.Length(),
	})
	for _, id := range e.CodeIDs {
		code, err := s.Code(id)
		if err != nil {
			continue
		}
		w.record(domain.ActionCodeApplied, domain.AnalyticsDetails{
			StudyID: s.ID(), DocumentID: e.DocumentID, ExcerptID: e.ID, CodeID: code.ID, CodeName: code.Name,
		})
	}
}

// RemoveExcerpt deletes an excerpt.
func (w *Workbench) RemoveExcerpt(ctx context.Context, studyID, id string) error {
	return w.studyTx(ctx, studyID, func(s *study.Study) error {
		e, err := s.Excerpt(id)
		if err != nil {
			return err
		}
		if err := s.RemoveExcerpt(id); err != nil {
			return err
		}
		w.record(domain.ActionExcerptDeleted, domain.AnalyticsDetails{
			StudyID: s.ID(), DocumentID: e.DocumentID, ExcerptID: e.ID, ExcerptLength: e.Length(),
		})
		return nil
	})
}

// AssignCode adds a code to an excerpt.
func (w *Workbench) AssignCode(ctx context.Context, studyID, excerptID, codeID string) error {
	return w.studyTx(ctx, studyID, func(s *study.Study) error {
		before, err := s.Excerpt(excerptID)
		if err != nil {
			return err
		}
		if err := s.AssignCode(excerptID, codeID); err != nil {
			return err
		}
		if !before.HasCode(codeID) {
			code, _ := s.Code(codeID)
			w.record(domain.ActionCodeApplied, domain.AnalyticsDetails{
				StudyID: s.ID(), DocumentID: before.DocumentID, ExcerptID: excerptID, CodeID: codeID, CodeName: code.Name,
			})
		}
		return nil
	})
}

// UnassignCode removes a code from an excerpt.
func (w *Workbench) UnassignCode(ctx context.Context, studyID, excerptID, codeID string) error {
	return w.studyTx(ctx, studyID, func(s *study.Study) error {
		before, err := s.Excerpt(excerptID)
		if err != nil {
			return err
		}
		if err := s.UnassignCode(excerptID, codeID); err != nil {
			return err
		}
		if before.HasCode(codeID) {
			code, _ := s.Code(codeID)
			w.record(domain.ActionCodeRemoved, domain.AnalyticsDetails{
				StudyID: s.ID(), DocumentID: before.DocumentID, ExcerptID: excerptID, CodeID: codeID, CodeName: code.Name,
			})
		}
		return nil
	})
}

// UpdateExcerptMemo replaces the inline memo of an excerpt.
func (w *Workbench) UpdateExcerptMemo(ctx context.Context, studyID, id, memo string) error {
	return w.studyTx(ctx, studyID, func(s *study.Study) error {
		if err := s.UpdateExcerptMemo(id, memo); err != nil {
			return err
		}
		w.record(domain.ActionExcerptUpdated, domain.AnalyticsDetails{StudyID: s.ID(), ExcerptID: id})
		return nil
	})
}

// ListExcerpts returns the excerpts of a study.
func (w *Workbench) ListExcerpts(studyID string) ([]domain.Excerpt, error) {
	var excerpts []domain.Excerpt
	err := w.view(studyID, func(s *study.Study) error {
		excerpts = s.Excerpts()
		return nil
	})
	return excerpts, err
}

// ExcerptsForCode returns the excerpts holding a code.
func (w *Workbench) ExcerptsForCode(studyID, codeID string) ([]domain.Excerpt, error) {
	var excerpts []domain.Excerpt
	err := w.view(studyID, func(s *study.Study) error {
		if _, err := s.Code(codeID); err != nil {
			return err
		}
		excerpts = s.ExcerptsForCode(codeID)
		return nil
	})
	return excerpts, err
}

// AddTheme creates a theme.
func (w *Workbench) AddTheme(ctx context.Context, studyID, name, color, parentID string) (*domain.Theme, error) {
	var theme domain.Theme
	err := w.studyTx(ctx, studyID, func(s *study.Study) error {
		var err error
		theme, err = s.AddTheme(name, color, parentID)
		if err != nil {
			return err
		}
		w.record(domain.ActionThemeCreated, domain.AnalyticsDetails{StudyID: s.ID()})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &theme, nil
}

// UpdateTheme edits a theme.
func (w *Workbench) UpdateTheme(ctx context.Context, studyID, id string, u domain.ThemeUpdate) error {
	return w.studyTx(ctx, studyID, func(s *study.Study) error {
		return s.UpdateTheme(id, u)
	})
}

// DeleteTheme removes a theme according to the configured delete policy.
func (w *Workbench) DeleteTheme(ctx context.Context, studyID, id string) error {
	return w.studyTx(ctx, studyID, func(s *study.Study) error {
		return s.DeleteTheme(id)
	})
}

// AddCodeToTheme adds a code to a theme.
func (w *Workbench) AddCodeToTheme(ctx context.Context, studyID, themeID, codeID string) error {
	return w.studyTx(ctx, studyID, func(s *study.Study) error {
		return s.AddCodeToTheme(themeID, codeID)
	})
}

// RemoveCodeFromTheme removes a code from a theme.
func (w *Workbench) RemoveCodeFromTheme(ctx context.Context, studyID, themeID, codeID string) error {
	return w.studyTx(ctx, studyID, func(s *study.Study) error {
		return s.RemoveCodeFromTheme(themeID, codeID)
	})
}

// MoveCodeBetweenThemes moves a code from one theme to another atomically.
func (w *Workbench) MoveCodeBetweenThemes(ctx context.Context, studyID, codeID, fromID, toID string) error {
	return w.studyTx(ctx, studyID, func(s *study.Study) error {
		return s.MoveCodeBetweenThemes(codeID, fromID, toID)
	})
}

// ListThemes returns the themes of a study.
func (w *Workbench) ListThemes(studyID string) ([]domain.Theme, error) {
	var themes []domain.Theme
	err := w.view(studyID, func(s *study.Study) error {
		themes = s.Themes()
		return nil
	})
	return themes, err
}

// AddMemo attaches a memo to an existing target.
func (w *Workbench) AddMemo(
	ctx context.Context, studyID, content string, target domain.MemoTarget, targetID string,
) (*domain.Memo, error) {
	var memo domain.Memo
	err := w.studyTx(ctx, studyID, func(s *study.Study) error {
		var err error
		memo, err = s.AddMemo(content, target, targetID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &memo, nil
}

// UpdateMemo replaces the content of a memo.
func (w *Workbench) UpdateMemo(ctx context.Context, studyID, id, content string) error {
	return w.studyTx(ctx, studyID, func(s *study.Study) error {
		return s.UpdateMemo(id, content)
	})
}

// DeleteMemo removes a memo.
func (w *Workbench) DeleteMemo(ctx context.Context, studyID, id string) error {
	return w.studyTx(ctx, studyID, func(s *study.Study) error {
		return s.DeleteMemo(id)
	})
}

// ListMemos returns the memos of a study. An empty target lists every memo.
func (w *Workbench) ListMemos(studyID string, target domain.MemoTarget, targetID string) ([]domain.Memo, error) {
	var memos []domain.Memo
	err := w.view(studyID, func(s *study.Study) error {
		if target == "" {
			memos = s.Memos()
			return nil
		}
		if !target.IsValid() {
			return fmt.Errorf("memo target %q: %w", target, domain.ErrInvalidInput)
		}
		memos = s.MemosFor(target, targetID)
		return nil
	})
	return memos, err
}
