package services

import (
	"context"
	"fmt"
	"slices"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/custodia-labs/codebook/internal/core/domain"
	"github.com/custodia-labs/codebook/internal/logger"
)

// maxJoinCodeAttempts bounds retries when a generated join code collides.
const maxJoinCodeAttempts = 16

func validateWorkspaceName(name string) error {
	if err := validation.Validate(strings.TrimSpace(name), validation.Required, validation.Length(1, 120)); err != nil {
		return fmt.Errorf("workspace name: %w: %w", domain.ErrInvalidInput, err)
	}
	return nil
}

func validateCollaboratorName(name string) error {
	if err := validation.Validate(strings.TrimSpace(name), validation.Required, validation.Length(1, 80)); err != nil {
		return fmt.Errorf("collaborator name: %w: %w", domain.ErrInvalidInput, err)
	}
	return nil
}

func (w *Workbench) newCollaborator(name string, index int) domain.Collaborator {
	now := w.now()
	name = strings.TrimSpace(name)
	return domain.Collaborator{
		ID:         w.newID(),
		Name:       name,
		Initials:   domain.Initials(name),
		Color:      domain.PaletteColor(index),
		JoinedAt:   now,
		LastActive: now,
	}
}

func (w *Workbench) uniqueJoinCode() (string, error) {
	for range maxJoinCodeAttempts {
		code := strings.ToUpper(w.newCode())
		taken := slices.ContainsFunc(w.workspaces, func(ws domain.Workspace) bool {
			return ws.Code == code
		})
		if !taken {
			return code, nil
		}
	}
	return "", fmt.Errorf("generate join code: %w", domain.ErrConflict)
}

// CreateWorkspace creates a workspace with a fresh join code.
func (w *Workbench) CreateWorkspace(ctx context.Context, name, collaboratorName string) (*domain.Workspace, error) {
	if err := validateWorkspaceName(name); err != nil {
		return nil, err
	}
	if err := validateCollaboratorName(collaboratorName); err != nil {
		return nil, err
	}

	var created domain.Workspace
	err := w.tx(ctx, func() error {
		code, err := w.uniqueJoinCode()
		if err != nil {
			return err
		}
		creator := w.newCollaborator(collaboratorName, 0)
		created = domain.Workspace{
			ID:            w.newID(),
			Name:          strings.TrimSpace(name),
			Code:          code,
			CreatedBy:     creator.ID,
			CreatedAt:     w.now(),
			Collaborators: []domain.Collaborator{creator},
		}
		w.workspaces = append(w.workspaces, created)
		w.activeWS = created.ID
		w.collaborator = &creator
		w.dropHiddenActiveStudy()
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.Info("created workspace %q with join code %s", created.Name, created.Code)
	return &created, nil
}

// JoinWorkspace adds a collaborator to the workspace with the given join code.
func (w *Workbench) JoinWorkspace(ctx context.Context, code, collaboratorName string) (*domain.Workspace, error) {
	if err := validateCollaboratorName(collaboratorName); err != nil {
		return nil, err
	}
	code = strings.ToUpper(strings.TrimSpace(code))

	var joined domain.Workspace
	err := w.tx(ctx, func() error {
		i := slices.IndexFunc(w.workspaces, func(ws domain.Workspace) bool { return ws.Code == code })
		if i < 0 {
			return fmt.Errorf("workspace with code %q: %w", code, domain.ErrNotFound)
		}
		ws := &w.workspaces[i]
		c := w.newCollaborator(collaboratorName, len(ws.Collaborators))
		ws.Collaborators = append(ws.Collaborators, c)
		w.activeWS = ws.ID
		w.collaborator = &c
		w.dropHiddenActiveStudy()
		joined = cloneWorkspaces([]domain.Workspace{*ws})[0]
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &joined, nil
}

// SetActiveWorkspace selects a workspace. An empty id clears the selection.
func (w *Workbench) SetActiveWorkspace(ctx context.Context, id string) error {
	return w.tx(ctx, func() error {
		if id == "" {
			w.activeWS = ""
			return nil
		}
		i := w.workspaceIndex(id)
		if i < 0 {
			return fmt.Errorf("workspace %s: %w", id, domain.ErrNotFound)
		}
		w.activeWS = id
		w.dropHiddenActiveStudy()
		return nil
	})
}

// LeaveWorkspace clears the active workspace, collaborator and study.
func (w *Workbench) LeaveWorkspace(ctx context.Context) error {
	return w.tx(ctx, func() error {
		w.activeWS = ""
		w.collaborator = nil
		w.activeStudy = ""
		return nil
	})
}

// ListWorkspaces returns every workspace.
func (w *Workbench) ListWorkspaces() []domain.Workspace {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return cloneWorkspaces(w.workspaces)
}

// ActiveWorkspace returns the selected workspace.
func (w *Workbench) ActiveWorkspace() (*domain.Workspace, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	ws := w.activeWorkspace()
	if ws == nil {
		return nil, domain.ErrNoActiveWorkspace
	}
	out := cloneWorkspaces([]domain.Workspace{*ws})[0]
	return &out, nil
}

// CurrentCollaborator returns the local identity, or nil.
func (w *Workbench) CurrentCollaborator() *domain.Collaborator {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.collaborator == nil {
		return nil
	}
	c := *w.collaborator
	return &c
}

// WorkspaceStudies returns the studies attached to the active workspace.
func (w *Workbench) WorkspaceStudies() []domain.Study {
	w.mu.RLock()
	defer w.mu.RUnlock()
	ws := w.activeWorkspace()
	if ws == nil {
		return []domain.Study{}
	}
	out := make([]domain.Study, 0, len(ws.StudyIDs))
	for _, id := range w.order {
		if ws.HasStudy(id) {
			out = append(out, w.studies[id].Info())
		}
	}
	return out
}

// UpdateResearchSettings replaces the research settings of the active workspace.
func (w *Workbench) UpdateResearchSettings(ctx context.Context, settings domain.ResearchSettings) error {
	settings.ParticipantID = strings.TrimSpace(settings.ParticipantID)
	return w.tx(ctx, func() error {
		ws := w.activeWorkspace()
		if ws == nil {
			return domain.ErrNoActiveWorkspace
		}
		ws.Research = settings
		return nil
	})
}

// PruneOrphanStudies deletes studies not attached to any workspace.
func (w *Workbench) PruneOrphanStudies(ctx context.Context) (int, error) {
	removed := 0
	err := w.tx(ctx, func() error {
		attached := make(map[string]struct{})
		for _, ws := range w.workspaces {
			for _, id := range ws.StudyIDs {
				attached[id] = struct{}{}
			}
		}
		kept := w.order[:0:0]
		for _, id := range w.order {
			if _, ok := attached[id]; ok {
				kept = append(kept, id)
				continue
			}
			delete(w.studies, id)
			removed++
		}
		w.order = kept
		w.dropHiddenActiveStudy()
		return nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}
