package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/codebook/internal/core/domain"
)

func TestWorkbench_CreateWorkspace(t *testing.T) {
	f := newFixture(t, domain.DefaultAppSettings())
	ctx := context.Background()

	ws, err := f.wb.CreateWorkspace(ctx, "  Lab  ", "Ada Lovelace")
	require.NoError(t, err)

	assert.Equal(t, "Lab", ws.Name)
	assert.Equal(t, "JOIN01", ws.Code)
	require.Len(t, ws.Collaborators, 1)
	creator := ws.Collaborators[0]
	assert.Equal(t, "AL", creator.Initials)
	assert.Equal(t, domain.PaletteColor(0), creator.Color)
	assert.Equal(t, creator.ID, ws.CreatedBy)

	active, err := f.wb.ActiveWorkspace()
	require.NoError(t, err)
	assert.Equal(t, ws.ID, active.ID)
	assert.Equal(t, creator.ID, f.wb.CurrentCollaborator().ID)
}

func TestWorkbench_CreateWorkspaceValidation(t *testing.T) {
	f := newFixture(t, domain.DefaultAppSettings())
	ctx := context.Background()

	_, err := f.wb.CreateWorkspace(ctx, "   ", "Ada")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.wb.CreateWorkspace(ctx, "Lab", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	assert.Empty(t, f.wb.ListWorkspaces())
	assert.Zero(t, f.store.Saves())
}

func TestWorkbench_JoinCodeCollision(t *testing.T) {
	f := newFixture(t, domain.DefaultAppSettings())
	f.wb.SetJoinCodeGenerator(func() string { return "SAME01" })
	ctx := context.Background()

	_, err := f.wb.CreateWorkspace(ctx, "Lab", "Ada")
	require.NoError(t, err)

	_, err = f.wb.CreateWorkspace(ctx, "Other lab", "Ada")
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Len(t, f.wb.ListWorkspaces(), 1)
}

func TestWorkbench_JoinWorkspace(t *testing.T) {
	f := newFixture(t, domain.DefaultAppSettings())
	ctx := context.Background()

	ws, err := f.wb.CreateWorkspace(ctx, "Lab", "Ada Lovelace")
	require.NoError(t, err)
	require.NoError(t, f.wb.LeaveWorkspace(ctx))
	assert.Nil(t, f.wb.CurrentCollaborator())

	joined, err := f.wb.JoinWorkspace(ctx, " join01 ", "Grace Hopper")
	require.NoError(t, err)
	assert.Equal(t, ws.ID, joined.ID)
	require.Len(t, joined.Collaborators, 2)
	assert.Equal(t, domain.PaletteColor(1), joined.Collaborators[1].Color)
	assert.Equal(t, "GH", f.wb.CurrentCollaborator().Initials)

	_, err = f.wb.JoinWorkspace(ctx, "ZZZZZZ", "Grace Hopper")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestWorkbench_WorkspaceStudies(t *testing.T) {
	f := newFixture(t, domain.DefaultAppSettings())
	ctx := context.Background()

	lab, err := f.wb.CreateWorkspace(ctx, "Lab", "Ada")
	require.NoError(t, err)
	inLab, err := f.wb.CreateStudy(ctx, domain.StudyInput{Title: "Remote work"})
	require.NoError(t, err)

	other, err := f.wb.CreateWorkspace(ctx, "Other", "Ada")
	require.NoError(t, err)
	_, err = f.wb.CreateStudy(ctx, domain.StudyInput{Title: "Commuting"})
	require.NoError(t, err)

	studies := f.wb.WorkspaceStudies()
	require.Len(t, studies, 1)
	assert.Equal(t, "Commuting", studies[0].Title)

	// Switching away drops an active study that belongs elsewhere.
	require.NoError(t, f.wb.SetActiveWorkspace(ctx, lab.ID))
	_, err = f.wb.ActiveStudy()
	assert.ErrorIs(t, err, domain.ErrNoActiveStudy)

	studies = f.wb.WorkspaceStudies()
	require.Len(t, studies, 1)
	assert.Equal(t, inLab.ID, studies[0].ID)

	assert.ErrorIs(t, f.wb.SetActiveWorkspace(ctx, "nope"), domain.ErrNotFound)

	require.NoError(t, f.wb.SetActiveWorkspace(ctx, ""))
	_, err = f.wb.ActiveWorkspace()
	assert.ErrorIs(t, err, domain.ErrNoActiveWorkspace)
	assert.Empty(t, f.wb.WorkspaceStudies())
	assert.NotEqual(t, lab.ID, other.ID)
}

func TestWorkbench_StudiesScopedToActiveWorkspace(t *testing.T) {
	f := newFixture(t, domain.DefaultAppSettings())
	ctx := context.Background()

	lab, err := f.wb.CreateWorkspace(ctx, "Lab", "Ada")
	require.NoError(t, err)
	s, err := f.wb.CreateStudy(ctx, domain.StudyInput{Title: "Remote work"})
	require.NoError(t, err)

	_, err = f.wb.CreateWorkspace(ctx, "Field", "Ada")
	require.NoError(t, err)

	assert.Empty(t, f.wb.WorkspaceStudies())
	assert.Empty(t, f.wb.ListStudies())
	_, err = f.wb.ActiveStudy()
	assert.ErrorIs(t, err, domain.ErrNoActiveStudy, "creating a workspace drops a study it does not list")

	_, err = f.wb.GetStudy(s.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.wb.AddCode(ctx, s.ID, "Flexibility", "", domain.CodeLevelMain)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, f.wb.SetActiveStudy(ctx, s.ID), domain.ErrNotFound)
	assert.ErrorIs(t, f.wb.DeleteStudy(ctx, s.ID), domain.ErrNotFound)
	_, err = f.wb.DuplicateStudy(ctx, s.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, f.wb.SetActiveWorkspace(ctx, lab.ID))
	studies := f.wb.ListStudies()
	require.Len(t, studies, 1)
	assert.Equal(t, s.ID, studies[0].ID)
	require.NoError(t, f.wb.SetActiveStudy(ctx, s.ID))
	_, err = f.wb.AddCode(ctx, s.ID, "Flexibility", "", domain.CodeLevelMain)
	assert.NoError(t, err)

	// Without a workspace every study is reachable.
	require.NoError(t, f.wb.SetActiveWorkspace(ctx, ""))
	_, err = f.wb.GetStudy(s.ID)
	assert.NoError(t, err)
	assert.Len(t, f.wb.ListStudies(), 1)
}

func TestWorkbench_LooseStudyHiddenAfterReload(t *testing.T) {
	f := newFixture(t, domain.DefaultAppSettings())
	ctx := context.Background()

	_, err := f.wb.CreateStudy(ctx, domain.StudyInput{Title: "Loose"})
	require.NoError(t, err)
	ws, err := f.wb.CreateWorkspace(ctx, "Lab", "Ada")
	require.NoError(t, err)
	require.Empty(t, ws.StudyIDs)

	require.NoError(t, f.wb.Load(ctx))

	_, err = f.wb.ActiveStudy()
	assert.ErrorIs(t, err, domain.ErrNoActiveStudy)
	assert.Empty(t, f.wb.ListStudies())
}

func TestWorkbench_StudyLifecycle(t *testing.T) {
	f := newFixture(t, domain.DefaultAppSettings())
	ctx := context.Background()

	ws, err := f.wb.CreateWorkspace(ctx, "Lab", "Ada")
	require.NoError(t, err)
	s, err := f.wb.CreateStudy(ctx, domain.StudyInput{Title: "Remote work"})
	require.NoError(t, err)

	_, err = f.wb.CreateStudy(ctx, domain.StudyInput{Title: " "})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	f.clock.advance(time.Minute)
	title := "Remote work 2025"
	updated, err := f.wb.UpdateStudy(ctx, s.ID, domain.StudyUpdate{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, title, updated.Title)
	assert.True(t, updated.UpdatedAt.After(s.UpdatedAt))

	f.clock.advance(time.Minute)
	dup, err := f.wb.DuplicateStudy(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, title+" (Copy)", dup.Title)
	assert.NotEqual(t, s.ID, dup.ID)

	active, err := f.wb.ActiveWorkspace()
	require.NoError(t, err)
	assert.Equal(t, []string{s.ID, dup.ID}, active.StudyIDs)

	// The duplicate was touched last, so it sorts first.
	studies := f.wb.ListStudies()
	require.Len(t, studies, 2)
	assert.Equal(t, dup.ID, studies[0].ID)

	f.clock.advance(time.Minute)
	require.NoError(t, f.wb.SetActiveStudy(ctx, s.ID))
	assert.Equal(t, s.ID, f.wb.ListStudies()[0].ID)

	require.NoError(t, f.wb.DeleteStudy(ctx, s.ID))
	_, err = f.wb.GetStudy(s.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.wb.ActiveStudy()
	assert.ErrorIs(t, err, domain.ErrNoActiveStudy)

	active, err = f.wb.ActiveWorkspace()
	require.NoError(t, err)
	assert.Equal(t, []string{dup.ID}, active.StudyIDs)
	assert.Equal(t, ws.ID, active.ID)

	assert.ErrorIs(t, f.wb.DeleteStudy(ctx, s.ID), domain.ErrNotFound)
}

func TestWorkbench_PruneOrphanStudies(t *testing.T) {
	f := newFixture(t, domain.DefaultAppSettings())
	ctx := context.Background()

	_, err := f.wb.CreateWorkspace(ctx, "Lab", "Ada")
	require.NoError(t, err)
	kept, err := f.wb.CreateStudy(ctx, domain.StudyInput{Title: "Attached"})
	require.NoError(t, err)

	require.NoError(t, f.wb.LeaveWorkspace(ctx))
	_, err = f.wb.CreateStudy(ctx, domain.StudyInput{Title: "Loose"})
	require.NoError(t, err)

	removed, err := f.wb.PruneOrphanStudies(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	studies := f.wb.ListStudies()
	require.Len(t, studies, 1)
	assert.Equal(t, kept.ID, studies[0].ID)
	_, err = f.wb.ActiveStudy()
	assert.ErrorIs(t, err, domain.ErrNoActiveStudy)
}

func TestWorkbench_UpdateResearchSettings(t *testing.T) {
	f := newFixture(t, domain.DefaultAppSettings())
	ctx := context.Background()

	err := f.wb.UpdateResearchSettings(ctx, domain.ResearchSettings{ResearchMode: true})
	assert.ErrorIs(t, err, domain.ErrNoActiveWorkspace)

	_, err = f.wb.CreateWorkspace(ctx, "Lab", "Ada")
	require.NoError(t, err)
	require.NoError(t, f.wb.UpdateResearchSettings(ctx, domain.ResearchSettings{
		ResearchMode: true, AIEnabled: true, ParticipantID: "  P07 ",
	}))

	ws, err := f.wb.ActiveWorkspace()
	require.NoError(t, err)
	assert.True(t, ws.Research.ResearchMode)
	assert.Equal(t, "P07", ws.Research.ParticipantID)
}
