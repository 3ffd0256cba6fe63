package services

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/codebook/internal/core/domain"
	"github.com/custodia-labs/codebook/internal/exchange"
)

// record appends an analytics entry when the active workspace is in
// research mode. The caller holds the write lock.
func (w *Workbench) record(action domain.AnalyticsAction, details domain.AnalyticsDetails) {
	ws := w.activeWorkspace()
	if ws == nil || !ws.Research.ResearchMode {
		return
	}
	if details.StudyID == "" {
		details.StudyID = w.activeStudy
	}
	w.logs = append(w.logs, domain.AnalyticsLog{
		ID:            w.newID(),
		Timestamp:     w.now(),
		WorkspaceID:   ws.ID,
		ParticipantID: ws.Research.ParticipantID,
		Action:        action,
		Details:       details,
	})
	if over := len(w.logs) - w.maxLogs; over > 0 {
		w.logs = append(w.logs[:0:0], w.logs[over:]...)
	}
}

// LogAction appends an analytics entry.
func (w *Workbench) LogAction(ctx context.Context, action domain.AnalyticsAction, details domain.AnalyticsDetails) error {
	if action == "" {
		return fmt.Errorf("analytics action is required: %w", domain.ErrInvalidInput)
	}
	return w.tx(ctx, func() error {
		w.record(action, details)
		return nil
	})
}

// StartSession opens a research session. It is a no-op outside research mode.
func (w *Workbench) StartSession(ctx context.Context) error {
	return w.tx(ctx, func() error {
		ws := w.activeWorkspace()
		if ws == nil || !ws.Research.ResearchMode {
			return nil
		}
		w.sessionStart = w.now()
		w.record(domain.ActionSessionStarted, domain.AnalyticsDetails{})
		return nil
	})
}

// EndSession closes the research session.
func (w *Workbench) EndSession(ctx context.Context) error {
	return w.tx(ctx, func() error {
		w.record(domain.ActionSessionEnded, domain.AnalyticsDetails{})
		return nil
	})
}

// ClearAnalytics drops every log entry and the session start.
func (w *Workbench) ClearAnalytics(ctx context.Context) error {
	return w.tx(ctx, func() error {
		w.logs = nil
		w.sessionStart = time.Time{}
		return nil
	})
}

// workspaceLogs returns the entries of one workspace, oldest first.
func (w *Workbench) workspaceLogs(workspaceID string) []domain.AnalyticsLog {
	var out []domain.AnalyticsLog
	for _, l := range w.logs {
		if l.WorkspaceID == workspaceID {
			out = append(out, l)
		}
	}
	return out
}

// ResearchMetrics summarises the log of the active workspace together with
// the active study. Returns nil without research mode or a participant id.
func (w *Workbench) ResearchMetrics() *domain.ResearchMetrics {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.metrics()
}

func (w *Workbench) metrics() *domain.ResearchMetrics {
	ws := w.activeWorkspace()
	if ws == nil || !ws.Research.ResearchMode || ws.Research.ParticipantID == "" {
		return nil
	}

	m := &domain.ResearchMetrics{
		ParticipantID: ws.Research.ParticipantID,
		WorkspaceID:   ws.ID,
	}

	// The latest session bounds the timing figures.
	var started, ended time.Time
	for _, l := range w.workspaceLogs(ws.ID) {
		switch l.Action {
		case domain.ActionAISuggestionRequested:
			m.AISuggestionsRequested++
		case domain.ActionAISuggestionAccepted:
			m.AISuggestionsAccepted++
		case domain.ActionAISuggestionRejected:
			m.AISuggestionsRejected++
		case domain.ActionSessionStarted:
			started, ended = l.Timestamp, time.Time{}
		case domain.ActionSessionEnded:
			if !started.IsZero() && ended.IsZero() {
				ended = l.Timestamp
			}
		}
	}
	switch {
	case !started.IsZero():
		m.StartTime = started
	case !w.sessionStart.IsZero():
		m.StartTime = w.sessionStart
	default:
		m.StartTime = w.now()
	}
	m.EndTime = ended
	stop := ended
	if stop.IsZero() {
		stop = w.now()
	}
	m.TotalActiveTime = max(stop.Sub(m.StartTime), 0)

	if s, ok := w.studies[w.activeStudy]; ok {
		excerpts := s.Excerpts()
		docs := make(map[string]struct{})
		for _, e := range excerpts {
			docs[e.DocumentID] = struct{}{}
			m.TotalTextCoded += e.Length()
		}
		m.TotalExcerpts = len(excerpts)
		m.TotalCodes = len(s.Codes())
		m.UniqueCodes = m.TotalCodes
		m.DocumentsProcessed = len(docs)
	}

	if m.TotalExcerpts > 0 {
		m.AverageCodesPerExcerpt = float64(m.TotalCodes) / float64(m.TotalExcerpts)
		m.AverageTimePerExcerpt = m.TotalActiveTime / time.Duration(m.TotalExcerpts)
	}
	if m.TotalActiveTime > 0 {
		m.CodingSpeed = float64(m.TotalExcerpts) / m.TotalActiveTime.Hours()
	}
	if m.AISuggestionsRequested > 0 {
		m.AIAcceptanceRate = float64(m.AISuggestionsAccepted) / float64(m.AISuggestionsRequested)
	}
	return m
}

// ExportResearchCSV renders the log and metrics of the active workspace.
func (w *Workbench) ExportResearchCSV() (string, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	ws := w.activeWorkspace()
	if ws == nil {
		return "", domain.ErrNoActiveWorkspace
	}
	return exchange.ResearchCSV(w.workspaceLogs(ws.ID), w.metrics(), ws.Research.AIEnabled), nil
}
