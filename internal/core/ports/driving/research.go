package driving

import (
	"context"

	"github.com/custodia-labs/codebook/internal/core/domain"
)

// ResearchService records and summarises research analytics for the
// active workspace. Logging is a no-op unless the workspace is in research mode.
type ResearchService interface {
	// LogAction appends an analytics entry.
	LogAction(ctx context.Context, action domain.AnalyticsAction, details domain.AnalyticsDetails) error

	// StartSession opens a research session.
	StartSession(ctx context.Context) error

	// EndSession closes the research session.
	EndSession(ctx context.Context) error

	// ResearchMetrics summarises the log. Returns nil without research mode
	// or a participant id.
	ResearchMetrics() *domain.ResearchMetrics

	// ExportResearchCSV renders the log and metrics of the active workspace.
	ExportResearchCSV() (string, error)

	// ClearAnalytics drops every log entry and the session start.
	ClearAnalytics(ctx context.Context) error
}
