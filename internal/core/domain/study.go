package domain

import "time"

// StudyStatus tracks where a study is in the research lifecycle.
type StudyStatus string

// Study lifecycle stages.
const (
	StudyStatusPlanning   StudyStatus = "planning"
	StudyStatusInProgress StudyStatus = "in-progress"
	StudyStatusAnalysis   StudyStatus = "analysis"
	StudyStatusWriting    StudyStatus = "writing"
	StudyStatusCompleted  StudyStatus = "completed"
)

// IsValid returns true if the status is recognised.
func (s StudyStatus) IsValid() bool {
	switch s {
	case StudyStatusPlanning, StudyStatusInProgress, StudyStatusAnalysis,
		StudyStatusWriting, StudyStatusCompleted:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (s StudyStatus) String() string {
	return string(s)
}

// AllStudyStatuses returns the lifecycle stages in order.
func AllStudyStatuses() []StudyStatus {
	return []StudyStatus{
		StudyStatusPlanning,
		StudyStatusInProgress,
		StudyStatusAnalysis,
		StudyStatusWriting,
		StudyStatusCompleted,
	}
}

// Study holds the descriptive metadata of a research project.
// The project's collections live in StudyData.
type Study struct {
	ID               string
	Title            string
	Description      string
	ResearchQuestion string
	Status           StudyStatus
	Tags             []string
	Color            string
	CreatedAt        time.Time
	UpdatedAt        time.Time
	LastAccessedAt   time.Time
}

// StudyInput is the caller-supplied part of a new study.
type StudyInput struct {
	Title            string
	Description      string
	ResearchQuestion string
	Status           StudyStatus
	Tags             []string
	Color            string
}

// StudyUpdate carries editable study fields. Nil fields are left unchanged.
type StudyUpdate struct {
	Title            *string
	Description      *string
	ResearchQuestion *string
	Status           *StudyStatus
	Tags             *[]string
	Color            *string
}

// CodeDeletion is an undo record for one DeleteCode call.
type CodeDeletion struct {
	// Policy is the delete policy that produced this record.
	Policy DeletePolicy

	// Codes holds every removed code, the requested one first.
	Codes []Code

	// ExcerptLinks maps a removed code id to the excerpts it was stripped from.
	ExcerptLinks map[string][]string

	// ThemeLinks maps a removed code id to the themes it was stripped from.
	ThemeLinks map[string][]string

	// Memos holds memos that annotated the removed codes.
	Memos []Memo

	DeletedAt time.Time
}

// StudyData is a complete, detached copy of a study and its collections.
type StudyData struct {
	Study     Study
	Documents []Document
	Codes     []Code
	Themes    []Theme
	Excerpts  []Excerpt
	Memos     []Memo

	// Undo is the study's code-deletion stack, oldest first.
	Undo []CodeDeletion
}

// StudyStatistics summarises a study's collections.
type StudyStatistics struct {
	StudyID                 string
	DocumentCount           int
	CodeCount               int
	ThemeCount              int
	ExcerptCount            int
	MemoCount               int
	CodedSegments           int
	AverageCodesPerDocument float64

	// MostUsedCode is the name of the code applied to the most excerpts.
	// Ties go to the earliest created code. Empty when nothing is coded.
	MostUsedCode string

	RecentActivity time.Time
}
