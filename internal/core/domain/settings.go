package domain

const unknownDescription = "Unknown"

// AIProvider identifies an LLM service provider.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOpenAI, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	default:
		return unknownDescription
	}
}

// AISettings holds LLM provider configuration for code suggestions.
type AISettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL overrides the provider's API endpoint.
	BaseURL string

	// APIKey is the API key.
	APIKey string

	// RequestsPerMinute caps outbound suggestion requests.
	RequestsPerMinute int
}

// IsConfigured returns true if the LLM provider is set up.
func (a AISettings) IsConfigured() bool {
	if !a.Provider.IsValid() {
		return false
	}
	if a.Provider.RequiresAPIKey() && a.APIKey == "" {
		return false
	}
	return true
}

// DeletePolicy controls how far code and theme deletion cascades.
type DeletePolicy string

// Available delete policies.
const (
	// DeleteCascade removes the whole subtree, and undo restores all of it
	// together with its excerpt and theme links.
	DeleteCascade DeletePolicy = "cascade"

	// DeleteLegacy removes direct children only, and undo restores just the
	// requested code without its links.
	DeleteLegacy DeletePolicy = "legacy"
)

// IsValid returns true if the policy is recognised.
func (p DeletePolicy) IsValid() bool {
	return p == DeleteCascade || p == DeleteLegacy
}

// String returns the string representation.
func (p DeletePolicy) String() string {
	return string(p)
}

// Description returns a human-readable description of the policy.
func (p DeletePolicy) Description() string {
	switch p {
	case DeleteCascade:
		return "Cascade (delete and restore whole subtrees)"
	case DeleteLegacy:
		return "Legacy (one level, shallow undo)"
	default:
		return unknownDescription
	}
}

// StorageBackend selects where state is persisted.
type StorageBackend string

// Available storage backends.
const (
	StorageSQLite   StorageBackend = "sqlite"
	StoragePostgres StorageBackend = "postgres"
)

// IsValid returns true if the backend is recognised.
func (b StorageBackend) IsValid() bool {
	return b == StorageSQLite || b == StoragePostgres
}

// StorageSettings holds persistence configuration.
type StorageSettings struct {
	Backend     StorageBackend
	PostgresURL string
}

// AppSettings holds all application settings.
type AppSettings struct {
	Storage StorageSettings

	// AI holds LLM provider settings. Unconfigured means local heuristics only.
	AI AISettings

	// DeletePolicy applies to code and theme deletion.
	DeletePolicy DeletePolicy

	// MaxAnalyticsLogs caps the rolling analytics log.
	MaxAnalyticsLogs int
}

// DefaultMaxAnalyticsLogs is the default analytics log cap.
const DefaultMaxAnalyticsLogs = 5000

// DefaultRequestsPerMinute is the default suggestion rate limit.
const DefaultRequestsPerMinute = 20

// DefaultAppSettings returns settings with sensible defaults.
// AI is left unconfigured by default.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Storage:          StorageSettings{Backend: StorageSQLite},
		AI:               AISettings{RequestsPerMinute: DefaultRequestsPerMinute},
		DeletePolicy:     DeleteCascade,
		MaxAnalyticsLogs: DefaultMaxAnalyticsLogs,
	}
}

// AllLLMProviders returns providers that support suggestions.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderOpenAI,
		AIProviderAnthropic,
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
	}
}
