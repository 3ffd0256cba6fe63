package driving

import "github.com/custodia-labs/codebook/internal/core/domain"

// AnalysisService exposes read-only analysis views of a study.
type AnalysisService interface {
	// CoOccurrences returns code pairs weighted by shared documents.
	CoOccurrences(studyID string) ([]domain.CoOccurrence, error)

	// CodeTree returns the code hierarchy.
	CodeTree(studyID string) ([]domain.CodeNode, error)

	// CodebookStats counts codes per level with fresh usage figures.
	CodebookStats(studyID string) (*domain.CodebookStats, error)

	// ThemeGraph returns theme and code nodes with their links.
	ThemeGraph(studyID string) (*domain.Graph, error)

	// TopCodes returns the n most frequent codes.
	TopCodes(studyID string, n int) ([]domain.Code, error)
}
