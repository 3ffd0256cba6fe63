package driving

import (
	"context"

	"github.com/custodia-labs/codebook/internal/core/domain"
)

// WorkspaceService manages workspaces and their collaborators.
type WorkspaceService interface {
	// CreateWorkspace creates a workspace with a fresh join code and makes
	// the named collaborator its creator. The workspace becomes active.
	CreateWorkspace(ctx context.Context, name, collaboratorName string) (*domain.Workspace, error)

	// JoinWorkspace adds a collaborator to the workspace with the given join
	// code (case-insensitive). The workspace becomes active.
	JoinWorkspace(ctx context.Context, code, collaboratorName string) (*domain.Workspace, error)

	// SetActiveWorkspace selects a workspace. The active study is cleared when
	// it does not belong to the workspace.
	SetActiveWorkspace(ctx context.Context, id string) error

	// LeaveWorkspace clears the active workspace, collaborator and study.
	LeaveWorkspace(ctx context.Context) error

	// ListWorkspaces returns every workspace.
	ListWorkspaces() []domain.Workspace

	// ActiveWorkspace returns the selected workspace.
	ActiveWorkspace() (*domain.Workspace, error)

	// CurrentCollaborator returns the local identity, or nil.
	CurrentCollaborator() *domain.Collaborator

	// WorkspaceStudies returns the studies attached to the active workspace.
	WorkspaceStudies() []domain.Study

	// UpdateResearchSettings replaces the research settings of the active workspace.
	UpdateResearchSettings(ctx context.Context, settings domain.ResearchSettings) error

	// PruneOrphanStudies deletes studies not attached to any workspace and
	// returns how many were removed.
	PruneOrphanStudies(ctx context.Context) (int, error)
}
