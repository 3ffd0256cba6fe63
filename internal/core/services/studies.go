package services

import (
	"context"
	"fmt"
	"slices"

	"github.com/custodia-labs/codebook/internal/core/domain"
	"github.com/custodia-labs/codebook/internal/core/study"
	"github.com/custodia-labs/codebook/internal/logger"
)

// CreateStudy creates a study, attaches it to the active workspace and makes it active.
func (w *Workbench) CreateStudy(ctx context.Context, in domain.StudyInput) (*domain.Study, error) {
	var info domain.Study
	err := w.tx(ctx, func() error {
		s, err := study.New(in, w.studyOptions()...)
		if err != nil {
			return err
		}
		w.studies[s.ID()] = s
		w.order = append(w.order, s.ID())
		if ws := w.activeWorkspace(); ws != nil {
			ws.StudyIDs = append(ws.StudyIDs, s.ID())
		}
		w.activeStudy = s.ID()
		info = s.Info()
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.Info("created study %q (%s)", info.Title, info.ID)
	return &info, nil
}

// UpdateStudy edits study metadata.
func (w *Workbench) UpdateStudy(ctx context.Context, id string, u domain.StudyUpdate) (*domain.Study, error) {
	var info domain.Study
	err := w.studyTx(ctx, id, func(s *study.Study) error {
		if err := s.Update(u); err != nil {
			return err
		}
		info = s.Info()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &info, nil
}

// DeleteStudy removes a study and detaches it from every workspace.
func (w *Workbench) DeleteStudy(ctx context.Context, id string) error {
	return w.tx(ctx, func() error {
		s, err := w.resolve(id)
		if err != nil {
			return err
		}
		id = s.ID()
		delete(w.studies, id)
		w.order = slices.DeleteFunc(w.order, func(other string) bool { return other == id })
		for i := range w.workspaces {
			w.workspaces[i].StudyIDs = slices.DeleteFunc(w.workspaces[i].StudyIDs, func(other string) bool {
				return other == id
			})
		}
		if w.activeStudy == id {
			w.activeStudy = ""
		}
		return nil
	})
}

// SetActiveStudy selects a study and bumps its LastAccessedAt.
// An empty id clears the selection.
func (w *Workbench) SetActiveStudy(ctx context.Context, id string) error {
	return w.tx(ctx, func() error {
		if id == "" {
			w.activeStudy = ""
			return nil
		}
		s, err := w.resolve(id)
		if err != nil {
			return err
		}
		s.Access()
		w.activeStudy = s.ID()
		return nil
	})
}

// DuplicateStudy deep-copies a study under fresh ids and attaches the copy
// to every workspace holding the original.
func (w *Workbench) DuplicateStudy(ctx context.Context, id string) (*domain.Study, error) {
	var info domain.Study
	err := w.tx(ctx, func() error {
		s, err := w.resolve(id)
		if err != nil {
			return err
		}
		dup := s.Duplicate()
		w.studies[dup.ID()] = dup
		w.order = append(w.order, dup.ID())
		for i := range w.workspaces {
			if w.workspaces[i].HasStudy(s.ID()) {
				w.workspaces[i].StudyIDs = append(w.workspaces[i].StudyIDs, dup.ID())
			}
		}
		info = dup.Info()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &info, nil
}

// GetStudy returns study metadata. An empty id selects the active study.
func (w *Workbench) GetStudy(id string) (*domain.Study, error) {
	var info domain.Study
	err := w.view(id, func(s *study.Study) error {
		info = s.Info()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &info, nil
}

// ActiveStudy returns the selected study.
func (w *Workbench) ActiveStudy() (*domain.Study, error) {
	return w.GetStudy("")
}

// ListStudies returns the reachable studies, most recently accessed first.
// With a workspace active that is the workspace's studies.
func (w *Workbench) ListStudies() []domain.Study {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]domain.Study, 0, len(w.order))
	for _, id := range w.order {
		if w.visible(id) {
			out = append(out, w.studies[id].Info())
		}
	}
	slices.SortStableFunc(out, func(a, b domain.Study) int {
		return b.LastAccessedAt.Compare(a.LastAccessedAt)
	})
	return out
}

// Statistics summarises a study.
func (w *Workbench) Statistics(studyID string) (*domain.StudyStatistics, error) {
	var stats domain.StudyStatistics
	err := w.view(studyID, func(s *study.Study) error {
		stats = s.Statistics()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("statistics: %w", err)
	}
	return &stats, nil
}
