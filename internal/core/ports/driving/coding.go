package driving

import (
	"context"

	"github.com/custodia-labs/codebook/internal/core/domain"
)

// DocumentService manages the documents of a study.
type DocumentService interface {
	// AddDocument adds inline text as a document.
	AddDocument(ctx context.Context, studyID, title, content string, typ domain.DocumentType) (*domain.Document, error)

	// ImportFile parses a file and adds it as a document.
	ImportFile(ctx context.Context, studyID, path string) (*domain.Document, error)

	// ImportFiles parses files concurrently and adds every one that parsed.
	// The returned error joins the failures.
	ImportFiles(ctx context.Context, studyID string, paths []string) ([]domain.Document, error)

	// RemoveDocument removes a document with its excerpts and memos.
	RemoveDocument(ctx context.Context, studyID, id string) error

	// ListDocuments returns the documents of a study.
	ListDocuments(studyID string) ([]domain.Document, error)

	// GetDocument returns one document.
	GetDocument(studyID, id string) (*domain.Document, error)
}

// CodingService manages codes, excerpts, themes and memos of a study.
// Every mutation keeps the derived code statistics consistent.
type CodingService interface {
	// Codes.
	AddCode(ctx context.Context, studyID, name, parentID string, level domain.CodeLevel) (*domain.Code, error)
	RenameCode(ctx context.Context, studyID, id, name string) error
	UpdateCode(ctx context.Context, studyID, id string, u domain.CodeUpdate) error
	DeleteCode(ctx context.Context, studyID, id string) ([]domain.Code, error)
	UndoDeleteCode(ctx context.Context, studyID string) ([]domain.Code, error)
	MergeCodes(ctx context.Context, studyID, sourceID, targetID string) error
	ListCodes(studyID string) ([]domain.Code, error)
	GetCode(studyID, id string) (*domain.Code, error)

	// ResolveCode finds a code by id or case-insensitive name.
	ResolveCode(studyID, ref string) (*domain.Code, error)

	// Excerpts.
	AddExcerpt(ctx context.Context, studyID string, sel domain.TextSelection, codeIDs []string, memo string) (*domain.Excerpt, error)

	// AddExcerptWithNewCode creates a main code and an excerpt coded with it
	// in one transaction.
	AddExcerptWithNewCode(ctx context.Context, studyID string, sel domain.TextSelection, codeName string) (*domain.Excerpt, *domain.Code, error)

	RemoveExcerpt(ctx context.Context, studyID, id string) error
	AssignCode(ctx context.Context, studyID, excerptID, codeID string) error
	UnassignCode(ctx context.Context, studyID, excerptID, codeID string) error
	UpdateExcerptMemo(ctx context.Context, studyID, id, memo string) error
	ListExcerpts(studyID string) ([]domain.Excerpt, error)
	ExcerptsForCode(studyID, codeID string) ([]domain.Excerpt, error)

	// Themes.
	AddTheme(ctx context.Context, studyID, name, color, parentID string) (*domain.Theme, error)
	UpdateTheme(ctx context.Context, studyID, id string, u domain.ThemeUpdate) error
	DeleteTheme(ctx context.Context, studyID, id string) error
	AddCodeToTheme(ctx context.Context, studyID, themeID, codeID string) error
	RemoveCodeFromTheme(ctx context.Context, studyID, themeID, codeID string) error
	MoveCodeBetweenThemes(ctx context.Context, studyID, codeID, fromID, toID string) error
	ListThemes(studyID string) ([]domain.Theme, error)

	// Memos.
	AddMemo(ctx context.Context, studyID, content string, target domain.MemoTarget, targetID string) (*domain.Memo, error)
	UpdateMemo(ctx context.Context, studyID, id, content string) error
	DeleteMemo(ctx context.Context, studyID, id string) error
	ListMemos(studyID string, target domain.MemoTarget, targetID string) ([]domain.Memo, error)
}
