package domain

import "time"

// State is the persisted root of everything codebook knows.
type State struct {
	Workspaces []Workspace

	// Studies holds every study with its collections and undo stack.
	Studies []StudyData

	ActiveWorkspaceID string
	ActiveStudyID     string

	// CurrentCollaborator is the identity used on this machine.
	// Nil until a workspace is created or joined.
	CurrentCollaborator *Collaborator

	// AnalyticsLogs is the rolling research log, oldest first.
	AnalyticsLogs []AnalyticsLog

	// SessionStart is zero when no research session is open.
	SessionStart time.Time
}
