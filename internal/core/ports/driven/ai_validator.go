package driven

import "github.com/custodia-labs/codebook/internal/core/domain"

// AIConfigValidator tests AI settings against the live provider.
type AIConfigValidator interface {
	// ValidateAI returns nil for settings without a provider.
	ValidateAI(settings *domain.AISettings) error
}
