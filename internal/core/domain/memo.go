package domain

import "time"

// MemoTarget identifies the kind of entity a memo annotates.
type MemoTarget string

// Memo target kinds.
const (
	MemoTargetDocument MemoTarget = "document"
	MemoTargetExcerpt  MemoTarget = "excerpt"
	MemoTargetCode     MemoTarget = "code"
	MemoTargetTheme    MemoTarget = "theme"
)

// IsValid returns true if the target kind is recognised.
func (t MemoTarget) IsValid() bool {
	switch t {
	case MemoTargetDocument, MemoTargetExcerpt, MemoTargetCode, MemoTargetTheme:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (t MemoTarget) String() string {
	return string(t)
}

// Memo is a free-text annotation keyed by target kind and id.
// Several memos may share a target; the most recently updated one is shown.
type Memo struct {
	ID         string
	Content    string
	TargetType MemoTarget
	TargetID   string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
