package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/codebook/internal/core/domain"
)

// researchFixture opens a workspace in research mode with one study.
func researchFixture(t *testing.T, settings domain.AppSettings, participant string) (*fixture, string) {
	t.Helper()
	f := newFixture(t, settings)
	ctx := context.Background()
	_, err := f.wb.CreateWorkspace(ctx, "Lab", "Ada")
	require.NoError(t, err)
	require.NoError(t, f.wb.UpdateResearchSettings(ctx, domain.ResearchSettings{
		ResearchMode: true, AIEnabled: true, ParticipantID: participant,
	}))
	_, docID := f.withStudy(t, "hello world")
	return f, docID
}

func TestWorkbench_NoAnalyticsOutsideResearchMode(t *testing.T) {
	f := newFixture(t, domain.DefaultAppSettings())
	ctx := context.Background()
	_, err := f.wb.CreateWorkspace(ctx, "Lab", "Ada")
	require.NoError(t, err)
	_, docID := f.withStudy(t, "hello world")

	require.NoError(t, f.wb.StartSession(ctx))
	code := f.code(t, "Greeting")
	f.excerpt(t, docID, 0, 5, code.ID)

	assert.Nil(t, f.wb.ResearchMetrics())
	csv, err := f.wb.ExportResearchCSV()
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(csv, "\n")+1, "header only")
}

func TestWorkbench_ResearchMetrics(t *testing.T) {
	f, docID := researchFixture(t, domain.DefaultAppSettings(), "P01")
	ctx := context.Background()
	start := f.clock.now()

	require.NoError(t, f.wb.StartSession(ctx))
	f.clock.advance(30 * time.Minute)

	code := f.code(t, "Greeting")
	f.excerpt(t, docID, 0, 5, code.ID)
	accepted := true
	require.NoError(t, f.wb.LogAction(ctx, domain.ActionAISuggestionRequested, domain.AnalyticsDetails{AISuggestion: "Greeting"}))
	require.NoError(t, f.wb.LogAction(ctx, domain.ActionAISuggestionRequested, domain.AnalyticsDetails{AISuggestion: "Tone"}))
	require.NoError(t, f.wb.LogAction(ctx, domain.ActionAISuggestionAccepted, domain.AnalyticsDetails{
		AISuggestion: "Greeting", SuggestionAccepted: &accepted,
	}))

	f.clock.advance(30 * time.Minute)
	require.NoError(t, f.wb.EndSession(ctx))

	m := f.wb.ResearchMetrics()
	require.NotNil(t, m)
	assert.Equal(t, "P01", m.ParticipantID)
	assert.Equal(t, start, m.StartTime)
	assert.Equal(t, start.Add(time.Hour), m.EndTime)
	assert.Equal(t, time.Hour, m.TotalActiveTime)
	assert.Equal(t, 1, m.TotalExcerpts)
	assert.Equal(t, 1, m.TotalCodes)
	assert.Equal(t, 1, m.DocumentsProcessed)
	assert.Equal(t, 5, m.TotalTextCoded)
	assert.Equal(t, time.Hour, m.AverageTimePerExcerpt)
	assert.InDelta(t, 1.0, m.CodingSpeed, 1e-9)
	assert.Equal(t, 2, m.AISuggestionsRequested)
	assert.Equal(t, 1, m.AISuggestionsAccepted)
	assert.InDelta(t, 0.5, m.AIAcceptanceRate, 1e-9)

	csv, err := f.wb.ExportResearchCSV()
	require.NoError(t, err)
	assert.Contains(t, csv, `"P01","code_created"`)
	assert.Contains(t, csv, `"excerpt_created"`)
	assert.Contains(t, csv, `"code_applied"`)
	assert.Contains(t, csv, `"true"`)
	assert.Contains(t, csv, "SUMMARY METRICS")
	assert.Contains(t, csv, "AI Enabled,Yes")
	assert.Contains(t, csv, "AI Acceptance Rate,50.0%")
	assert.Contains(t, csv, "Total Active Time (minutes),60.00")
}

func TestWorkbench_ResearchMetricsNeedParticipant(t *testing.T) {
	f, _ := researchFixture(t, domain.DefaultAppSettings(), "")
	assert.Nil(t, f.wb.ResearchMetrics())
}

func TestWorkbench_LatestSessionBoundsMetrics(t *testing.T) {
	f, _ := researchFixture(t, domain.DefaultAppSettings(), "P02")
	ctx := context.Background()

	require.NoError(t, f.wb.StartSession(ctx))
	f.clock.advance(2 * time.Hour)
	require.NoError(t, f.wb.EndSession(ctx))

	f.clock.advance(24 * time.Hour)
	second := f.clock.now()
	require.NoError(t, f.wb.StartSession(ctx))
	f.clock.advance(10 * time.Minute)

	m := f.wb.ResearchMetrics()
	require.NotNil(t, m)
	assert.Equal(t, second, m.StartTime)
	assert.True(t, m.EndTime.IsZero())
	assert.Equal(t, 10*time.Minute, m.TotalActiveTime)
}

func TestWorkbench_AnalyticsLogIsCapped(t *testing.T) {
	settings := domain.DefaultAppSettings()
	settings.MaxAnalyticsLogs = 3
	f, _ := researchFixture(t, settings, "P03")
	ctx := context.Background()

	for range 5 {
		require.NoError(t, f.wb.LogAction(ctx, domain.ActionAISuggestionRequested, domain.AnalyticsDetails{}))
	}
	m := f.wb.ResearchMetrics()
	require.NotNil(t, m)
	assert.Equal(t, 3, m.AISuggestionsRequested)

	reloaded := newFixtureOn(t, f.store, nil, settings)
	m = reloaded.wb.ResearchMetrics()
	require.NotNil(t, m)
	assert.Equal(t, 3, m.AISuggestionsRequested)
}

func TestWorkbench_ClearAnalytics(t *testing.T) {
	f, _ := researchFixture(t, domain.DefaultAppSettings(), "P04")
	ctx := context.Background()

	require.NoError(t, f.wb.LogAction(ctx, domain.ActionAISuggestionRequested, domain.AnalyticsDetails{}))
	require.NoError(t, f.wb.ClearAnalytics(ctx))

	m := f.wb.ResearchMetrics()
	require.NotNil(t, m)
	assert.Zero(t, m.AISuggestionsRequested)
}

func TestWorkbench_LogActionValidation(t *testing.T) {
	f, _ := researchFixture(t, domain.DefaultAppSettings(), "P05")
	err := f.wb.LogAction(context.Background(), "", domain.AnalyticsDetails{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestWorkbench_ExportResearchCSVNeedsWorkspace(t *testing.T) {
	f := newFixture(t, domain.DefaultAppSettings())
	_, err := f.wb.ExportResearchCSV()
	assert.ErrorIs(t, err, domain.ErrNoActiveWorkspace)
}
