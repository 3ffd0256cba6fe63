package mcp

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/codebook/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/codebook/internal/core/domain"
	"github.com/custodia-labs/codebook/internal/core/services"
)

const interview = "I like working from home. The commute was exhausting."

// newWorkbench returns an in-memory workbench with one active study holding
// one document. It returns the workbench, the study id and the document id.
func newWorkbench(t *testing.T) (*services.Workbench, string, string) {
	t.Helper()
	ctx := context.Background()

	ids := 0
	wb := services.NewWorkbench(memory.NewStateStore(), nil, domain.DefaultAppSettings())
	wb.SetClock(func() time.Time { return time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC) })
	wb.SetIDGenerator(func() string {
		ids++
		return fmt.Sprintf("id-%03d", ids)
	})
	require.NoError(t, wb.Load(ctx))

	st, err := wb.CreateStudy(ctx, domain.StudyInput{Title: "Remote work"})
	require.NoError(t, err)
	doc, err := wb.AddDocument(ctx, st.ID, "Interview 1", interview, domain.DocumentTypeText)
	require.NoError(t, err)
	return wb, st.ID, doc.ID
}

func newTestServer(t *testing.T, wb *services.Workbench) *Server {
	t.Helper()
	server, err := NewServer(&Ports{Study: wb, Coding: wb, Analysis: wb, Document: wb})
	require.NoError(t, err)
	return server
}

// mockSuggestionService is a mock implementation of driving.SuggestionService.
type mockSuggestionService struct {
	suggestions []domain.CodeSuggestion
	available   bool

	gotText     string
	gotExisting []string
}

func (m *mockSuggestionService) SuggestCodes(_ context.Context, text string, existing []string, _ string) []domain.CodeSuggestion {
	m.gotText = text
	m.gotExisting = existing
	return m.suggestions
}

func (m *mockSuggestionService) SuggestRefinements(_ context.Context, _ []domain.CodeUsage) []domain.RefinementSuggestion {
	return nil
}

func (m *mockSuggestionService) SuggestThemes(_ context.Context, _ []domain.CodeUsage) []domain.ThemeSuggestion {
	return nil
}

func (m *mockSuggestionService) Summarize(_ context.Context, _ domain.SummaryKind, name string, _, _ []string) domain.Summary {
	return domain.Summary{Name: name}
}

func (m *mockSuggestionService) Available() bool {
	return m.available
}

// mockResearchService is a mock implementation of driving.ResearchService.
type mockResearchService struct {
	actions []domain.AnalyticsAction
}

func (m *mockResearchService) LogAction(_ context.Context, action domain.AnalyticsAction, _ domain.AnalyticsDetails) error {
	m.actions = append(m.actions, action)
	return nil
}

func (m *mockResearchService) StartSession(_ context.Context) error { return nil }

func (m *mockResearchService) EndSession(_ context.Context) error { return nil }

func (m *mockResearchService) ResearchMetrics() *domain.ResearchMetrics { return nil }

func (m *mockResearchService) ExportResearchCSV() (string, error) { return "", nil }

func (m *mockResearchService) ClearAnalytics(_ context.Context) error { return nil }
