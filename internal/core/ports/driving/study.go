package driving

import (
	"context"

	"github.com/custodia-labs/codebook/internal/core/domain"
)

// StudyService manages studies.
type StudyService interface {
	// CreateStudy creates a study, attaches it to the active workspace (if
	// any) and makes it active.
	CreateStudy(ctx context.Context, in domain.StudyInput) (*domain.Study, error)

	// UpdateStudy edits study metadata.
	UpdateStudy(ctx context.Context, id string, u domain.StudyUpdate) (*domain.Study, error)

	// DeleteStudy removes a study and detaches it from every workspace.
	DeleteStudy(ctx context.Context, id string) error

	// SetActiveStudy selects a study and bumps its LastAccessedAt.
	SetActiveStudy(ctx context.Context, id string) error

	// DuplicateStudy deep-copies a study under fresh ids.
	DuplicateStudy(ctx context.Context, id string) (*domain.Study, error)

	// GetStudy returns study metadata.
	GetStudy(id string) (*domain.Study, error)

	// ActiveStudy returns the selected study.
	ActiveStudy() (*domain.Study, error)

	// ListStudies returns every study, most recently accessed first.
	ListStudies() []domain.Study

	// Statistics summarises a study.
	Statistics(studyID string) (*domain.StudyStatistics, error)
}
