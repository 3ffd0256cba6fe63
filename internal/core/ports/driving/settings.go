package driving

import "github.com/custodia-labs/codebook/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings.
	Get() (*domain.AppSettings, error)

	// Save persists application settings.
	Save(settings *domain.AppSettings) error

	// SetAIProvider configures the suggestion LLM.
	SetAIProvider(provider domain.AIProvider, model, apiKey string) error

	// SetDeletePolicy selects how code and theme deletion cascades.
	SetDeletePolicy(policy domain.DeletePolicy) error

	// SetStorage selects the persistence backend.
	SetStorage(backend domain.StorageBackend, postgresURL string) error

	// Validate checks the stored settings for consistency.
	Validate() error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings

	// ValidateAIConfig validates the AI configuration by pinging the provider.
	ValidateAIConfig() error

	// ConfigPath reports where settings are stored.
	ConfigPath() string
}
