package domain

import (
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"
)

// DocumentType identifies the source format a document was imported from.
type DocumentType string

// Supported document types.
const (
	DocumentTypeText DocumentType = "txt"
	DocumentTypePDF  DocumentType = "pdf"
	DocumentTypeDOCX DocumentType = "docx"
)

// IsValid returns true if the document type is recognised.
func (t DocumentType) IsValid() bool {
	switch t {
	case DocumentTypeText, DocumentTypePDF, DocumentTypeDOCX:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (t DocumentType) String() string {
	return string(t)
}

// DocumentTypeForFile picks the document type from a file name's extension.
// Unknown extensions are treated as plain text.
func DocumentTypeForFile(filename string) DocumentType {
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), ".")) {
	case "pdf":
		return DocumentTypePDF
	case "docx":
		return DocumentTypeDOCX
	default:
		return DocumentTypeText
	}
}

// Document is an imported text document owned by a single study.
// Content never changes after creation.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// Title is the human-readable title, usually the file name without extension.
	Title string

	// Content is the extracted plain text.
	Content string

	// Type is the format the document was imported from.
	Type DocumentType

	// Size is the original file size in bytes.
	Size int64

	// UploadedAt is when the document was added to the study.
	UploadedAt time.Time

	// ExcerptIDs lists the excerpts cut from this document.
	// Derived: maintained by the study, never set by callers.
	ExcerptIDs []string
}

// Length returns the content length in characters.
func (d Document) Length() int {
	return utf8.RuneCountInString(d.Content)
}

// Span returns the content between two character offsets.
// The second value is false when the offsets are out of range or empty.
func (d Document) Span(start, end int) (string, bool) {
	if start < 0 || start >= end {
		return "", false
	}
	runes := []rune(d.Content)
	if end > len(runes) {
		return "", false
	}
	return string(runes[start:end]), true
}

// TitleForFile returns the file name without directory or extension.
func TitleForFile(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
