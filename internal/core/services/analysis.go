package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/codebook/internal/analysis"
	"github.com/custodia-labs/codebook/internal/core/domain"
	"github.com/custodia-labs/codebook/internal/core/study"
	"github.com/custodia-labs/codebook/internal/exchange"
)

// CoOccurrences returns code pairs weighted by shared documents.
func (w *Workbench) CoOccurrences(studyID string) ([]domain.CoOccurrence, error) {
	var out []domain.CoOccurrence
	err := w.view(studyID, func(s *study.Study) error {
		out = analysis.CoOccurrences(s.Codes(), s.Excerpts())
		return nil
	})
	return out, err
}

// CodeTree returns the code hierarchy.
func (w *Workbench) CodeTree(studyID string) ([]domain.CodeNode, error) {
	var out []domain.CodeNode
	err := w.view(studyID, func(s *study.Study) error {
		out = analysis.BuildHierarchicalTree(s.Codes())
		return nil
	})
	return out, err
}

// CodebookStats counts codes per level with fresh usage figures.
func (w *Workbench) CodebookStats(studyID string) (*domain.CodebookStats, error) {
	var out domain.CodebookStats
	err := w.view(studyID, func(s *study.Study) error {
		out = analysis.CodeStats(s.Codes(), s.Excerpts())
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ThemeGraph returns theme and code nodes with their links.
func (w *Workbench) ThemeGraph(studyID string) (*domain.Graph, error) {
	var out domain.Graph
	err := w.view(studyID, func(s *study.Study) error {
		out = analysis.ThemeGraph(s.Themes(), s.Codes())
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// TopCodes returns the n most frequent codes.
func (w *Workbench) TopCodes(studyID string, n int) ([]domain.Code, error) {
	var out []domain.Code
	err := w.view(studyID, func(s *study.Study) error {
		out = analysis.TopCodes(s.Codes(), n)
		return nil
	})
	return out, err
}

// ExportProject encodes a study as project JSON.
func (w *Workbench) ExportProject(studyID string) ([]byte, error) {
	var raw []byte
	err := w.view(studyID, func(s *study.Study) error {
		var err error
		raw, err = exchange.EncodeProject(s.Data(), w.now())
		return err
	})
	return raw, err
}

// ImportProject replaces the collections of a study with decoded project JSON.
// The study keeps its metadata; its undo stack is cleared.
func (w *Workbench) ImportProject(ctx context.Context, studyID string, raw []byte) error {
	project, err := exchange.DecodeProject(raw)
	if err != nil {
		return err
	}
	return w.tx(ctx, func() error {
		current, err := w.resolve(studyID)
		if err != nil {
			return err
		}
		project.Study = current.Info()
		project.Undo = nil
		imported, err := study.Load(project, w.studyOptions()...)
		if err != nil {
			return fmt.Errorf("import project: %w", err)
		}
		if err := imported.Update(domain.StudyUpdate{}); err != nil {
			return err
		}
		w.studies[imported.ID()] = imported
		return nil
	})
}

// ExportCodesCSV renders the codebook as CSV.
func (w *Workbench) ExportCodesCSV(studyID string) (string, error) {
	var out string
	err := w.view(studyID, func(s *study.Study) error {
		out = exchange.CodesCSV(s.Codes())
		return nil
	})
	return out, err
}
