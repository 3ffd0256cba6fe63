package domain

import (
	"slices"
	"time"
	"unicode/utf8"
)

// TextSelection is a completed selection of document text.
// Offsets are character offsets into the document content.
type TextSelection struct {
	DocumentID  string
	Text        string
	StartOffset int
	EndOffset   int
}

// Excerpt is a coded span of document text.
type Excerpt struct {
	// ID is the unique identifier for the excerpt.
	ID string

	// Text is the selected text. It always equals the document content
	// between StartOffset and EndOffset.
	Text string

	// DocumentID links to the owning Document.
	DocumentID string

	// StartOffset is the inclusive start, in characters.
	StartOffset int

	// EndOffset is the exclusive end, in characters.
	EndOffset int

	// CodeIDs is the ordered, duplicate-free set of applied codes.
	CodeIDs []string

	// Memo is an optional inline note.
	Memo string

	// CreatedAt is when the excerpt was created.
	CreatedAt time.Time
}

// HasCode reports whether the code is applied to this excerpt.
func (e Excerpt) HasCode(codeID string) bool {
	return slices.Contains(e.CodeIDs, codeID)
}

// Length returns the excerpt text length in characters.
func (e Excerpt) Length() int {
	return utf8.RuneCountInString(e.Text)
}
