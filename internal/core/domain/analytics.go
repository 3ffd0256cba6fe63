package domain

import "time"

// AnalyticsAction names an event in the research analytics log.
type AnalyticsAction string

// Logged actions.
const (
	ActionExcerptCreated        AnalyticsAction = "excerpt_created"
	ActionExcerptUpdated        AnalyticsAction = "excerpt_updated"
	ActionExcerptDeleted        AnalyticsAction = "excerpt_deleted"
	ActionCodeCreated           AnalyticsAction = "code_created"
	ActionCodeApplied           AnalyticsAction = "code_applied"
	ActionCodeRemoved           AnalyticsAction = "code_removed"
	ActionAISuggestionRequested AnalyticsAction = "ai_suggestion_requested"
	ActionAISuggestionAccepted  AnalyticsAction = "ai_suggestion_accepted"
	ActionAISuggestionRejected  AnalyticsAction = "ai_suggestion_rejected"
	ActionDocumentOpened        AnalyticsAction = "document_opened"
	ActionDocumentClosed        AnalyticsAction = "document_closed"
	ActionThemeCreated          AnalyticsAction = "theme_created"
	ActionSessionStarted        AnalyticsAction = "session_started"
	ActionSessionEnded          AnalyticsAction = "session_ended"
)

// String returns the string representation.
func (a AnalyticsAction) String() string {
	return string(a)
}

// AnalyticsDetails holds the optional context of a log entry.
type AnalyticsDetails struct {
	StudyID    string
	DocumentID string
	ExcerptID  string
	CodeID     string
	CodeName   string

	AISuggestion       string
	AIConfidence       float64
	SuggestionAccepted *bool

	// Duration of the action.
	Duration time.Duration

	ExcerptText   string
	ExcerptLength int
}

// AnalyticsLog is one entry of the research analytics log.
type AnalyticsLog struct {
	ID            string
	Timestamp     time.Time
	WorkspaceID   string
	ParticipantID string
	Action        AnalyticsAction
	Details       AnalyticsDetails
}

// ResearchMetrics summarises the analytics log of a workspace.
type ResearchMetrics struct {
	ParticipantID string
	WorkspaceID   string
	StartTime     time.Time

	// EndTime is zero while the session is open.
	EndTime time.Time

	TotalExcerpts          int
	TotalCodes             int
	UniqueCodes            int
	AverageCodesPerExcerpt float64

	// CodingSpeed is excerpts per hour.
	CodingSpeed float64

	AISuggestionsRequested int
	AISuggestionsAccepted  int
	AISuggestionsRejected  int

	// AIAcceptanceRate is accepted/requested, in [0,1].
	AIAcceptanceRate float64

	TotalActiveTime       time.Duration
	AverageTimePerExcerpt time.Duration
	DocumentsProcessed    int

	// TotalTextCoded is the sum of excerpt lengths in characters.
	TotalTextCoded int
}
