package domain

import (
	"strings"
	"time"
)

// JoinCodeLength is the length of a workspace join code.
const JoinCodeLength = 6

// ResearchSettings configures analytics logging for a workspace.
type ResearchSettings struct {
	// ResearchMode enables the analytics log.
	ResearchMode bool

	// AIEnabled records whether participants may use AI suggestions.
	AIEnabled bool

	// ParticipantID tags every log entry.
	ParticipantID string
}

// Collaborator is a member of a workspace.
type Collaborator struct {
	ID         string
	Name       string
	Initials   string
	Color      string
	JoinedAt   time.Time
	LastActive time.Time
}

// Initials returns up to two uppercase initials for a display name.
func Initials(name string) string {
	var initials []rune
	for _, word := range strings.Fields(name) {
		initials = append(initials, []rune(word)[0])
		if len(initials) == 2 {
			break
		}
	}
	return strings.ToUpper(string(initials))
}

// Workspace groups studies under a shareable join code.
type Workspace struct {
	ID            string
	Name          string
	Code          string
	CreatedBy     string
	CreatedAt     time.Time
	Collaborators []Collaborator
	StudyIDs      []string
	Research      ResearchSettings
}

// HasStudy reports whether the workspace lists the study.
func (w Workspace) HasStudy(studyID string) bool {
	for _, id := range w.StudyIDs {
		if id == studyID {
			return true
		}
	}
	return false
}
