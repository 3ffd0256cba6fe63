package domain

import "time"

// CodeLevel is the depth of a code in the main -> child -> subchild hierarchy.
type CodeLevel string

// Available code levels.
const (
	CodeLevelMain     CodeLevel = "main"
	CodeLevelChild    CodeLevel = "child"
	CodeLevelSubchild CodeLevel = "subchild"
)

// IsValid returns true if the level is recognised.
func (l CodeLevel) IsValid() bool {
	switch l {
	case CodeLevelMain, CodeLevelChild, CodeLevelSubchild:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (l CodeLevel) String() string {
	return string(l)
}

// ParentLevel returns the level a parent must have.
// The second value is false for main codes, which have no parent.
func (l CodeLevel) ParentLevel() (CodeLevel, bool) {
	switch l {
	case CodeLevelChild:
		return CodeLevelMain, true
	case CodeLevelSubchild:
		return CodeLevelChild, true
	default:
		return "", false
	}
}

// ChildLevel returns the level of codes nested under this one.
func (l CodeLevel) ChildLevel() (CodeLevel, bool) {
	switch l {
	case CodeLevelMain:
		return CodeLevelChild, true
	case CodeLevelChild:
		return CodeLevelSubchild, true
	default:
		return "", false
	}
}

// DefaultColor returns the color given to new codes of this level.
func (l CodeLevel) DefaultColor() string {
	switch l {
	case CodeLevelChild:
		return "#22c55e"
	case CodeLevelSubchild:
		return "#eab308"
	default:
		return "#3b82f6"
	}
}

// AllCodeLevels returns the levels from root to leaf.
func AllCodeLevels() []CodeLevel {
	return []CodeLevel{CodeLevelMain, CodeLevelChild, CodeLevelSubchild}
}

// Code is a label in the study's code hierarchy.
type Code struct {
	// ID is the unique identifier for the code.
	ID string

	// Name is unique per study, compared case-insensitively.
	Name string

	// Description explains when the code applies.
	Description string

	// Color is a hex color used by visualisations.
	Color string

	// Level is the position in the hierarchy.
	Level CodeLevel

	// ParentID is empty for main codes.
	ParentID string

	// ExcerptIDs lists every excerpt carrying this code. Derived.
	ExcerptIDs []string

	// Frequency is len(ExcerptIDs). Derived.
	Frequency int

	// DocumentCount is the number of distinct documents among ExcerptIDs. Derived.
	DocumentCount int

	// CreatedAt is when the code was created.
	CreatedAt time.Time
}

// CodeUpdate carries the editable, non-derived fields of a code.
// Nil fields are left unchanged.
type CodeUpdate struct {
	Description *string
	Color       *string
}
