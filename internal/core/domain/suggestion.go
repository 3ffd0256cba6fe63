package domain

// CodeSuggestion is a ranked code proposal for a span of text.
type CodeSuggestion struct {
	Code string

	// Confidence is in [0,1].
	Confidence float64

	Reason string

	// ExistingMatch names an existing code the suggestion matches, if any.
	ExistingMatch string
}

// RefinementType is the kind of change a refinement proposes.
type RefinementType string

// Refinement kinds.
const (
	RefinementMerge  RefinementType = "merge"
	RefinementSplit  RefinementType = "split"
	RefinementRename RefinementType = "rename"
	RefinementGroup  RefinementType = "group"
)

// IsValid returns true if the refinement type is recognised.
func (t RefinementType) IsValid() bool {
	switch t {
	case RefinementMerge, RefinementSplit, RefinementRename, RefinementGroup:
		return true
	default:
		return false
	}
}

// RefinementSuggestion proposes a change to the codebook.
type RefinementSuggestion struct {
	Type       RefinementType
	Codes      []string
	Suggestion string
	Reason     string
}

// ThemeSuggestion proposes a theme built from existing codes.
type ThemeSuggestion struct {
	Name           string
	Description    string
	SuggestedCodes []string
	Summary        string
}

// CodeUsage is the view of a code handed to suggestion engines.
type CodeUsage struct {
	Name          string
	Frequency     int
	DocumentCount int
}

// SummaryKind selects what a generated summary describes.
type SummaryKind string

// Summary kinds.
const (
	SummaryCode  SummaryKind = "code"
	SummaryTheme SummaryKind = "theme"
)

// IsValid returns true if the summary kind is recognised.
func (k SummaryKind) IsValid() bool {
	return k == SummaryCode || k == SummaryTheme
}

// Summary is a generated description of a code or theme.
type Summary struct {
	Kind SummaryKind
	Name string

	// Meaning explains what the code or theme represents.
	Meaning string

	// KeyExcerpts quotes representative excerpts.
	KeyExcerpts []string

	// DocumentPresence describes where the excerpts appear.
	DocumentPresence string

	// Generated is false when the text came from the local template.
	Generated bool
}
