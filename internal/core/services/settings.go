package services

import (
	"fmt"
	"os"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/custodia-labs/codebook/internal/core/domain"
	"github.com/custodia-labs/codebook/internal/core/ports/driven"
	"github.com/custodia-labs/codebook/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyStorageBackend = "storage.backend"
	keyPostgresURL    = "storage.postgres_url"
	keyDeletePolicy   = "codes.delete_policy"
	keyMaxLogs        = "analytics.max_logs"
	keyAIProvider     = "ai.provider"
	keyAIModel        = "ai.model"
	keyAIBaseURL      = "ai.base_url"
	keyAIAPIKey       = "ai.api_key"
	keyAIRateLimit    = "ai.requests_per_minute"
)

// apiKeyEnv maps providers to the environment variable that overrides an
// empty stored key.
var apiKeyEnv = map[domain.AIProvider]string{
	domain.AIProviderOpenAI:    "OPENAI_API_KEY",
	domain.AIProviderAnthropic: "ANTHROPIC_API_KEY",
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
	getenv      func(string) string
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
		getenv:      os.Getenv,
	}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Storage: domain.StorageSettings{
			Backend:     s.getBackend(defaults.Storage.Backend),
			PostgresURL: s.configStore.GetString(keyPostgresURL),
		},
		AI: domain.AISettings{
			Provider:          s.getProvider(""),
			Model:             s.configStore.GetString(keyAIModel),
			BaseURL:           s.configStore.GetString(keyAIBaseURL),
			APIKey:            s.configStore.GetString(keyAIAPIKey),
			RequestsPerMinute: s.getInt(keyAIRateLimit, defaults.AI.RequestsPerMinute),
		},
		DeletePolicy:     s.getDeletePolicy(defaults.DeletePolicy),
		MaxAnalyticsLogs: s.getInt(keyMaxLogs, defaults.MaxAnalyticsLogs),
	}

	if settings.AI.Provider.IsValid() {
		if settings.AI.Model == "" {
			settings.AI.Model = domain.DefaultLLMModels()[settings.AI.Provider]
		}
		if settings.AI.APIKey == "" {
			settings.AI.APIKey = s.envAPIKey(settings.AI.Provider)
		}
	}

	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	if err := s.configStore.Set(keyStorageBackend, string(settings.Storage.Backend)); err != nil {
		return fmt.Errorf("save storage backend: %w", err)
	}
	if err := s.configStore.Set(keyPostgresURL, settings.Storage.PostgresURL); err != nil {
		return fmt.Errorf("save postgres url: %w", err)
	}
	if err := s.configStore.Set(keyDeletePolicy, settings.DeletePolicy.String()); err != nil {
		return fmt.Errorf("save delete policy: %w", err)
	}
	if err := s.configStore.Set(keyMaxLogs, settings.MaxAnalyticsLogs); err != nil {
		return fmt.Errorf("save analytics max_logs: %w", err)
	}

	if err := s.configStore.Set(keyAIProvider, settings.AI.Provider.String()); err != nil {
		return fmt.Errorf("save ai provider: %w", err)
	}
	if err := s.configStore.Set(keyAIModel, settings.AI.Model); err != nil {
		return fmt.Errorf("save ai model: %w", err)
	}
	if err := s.configStore.Set(keyAIBaseURL, settings.AI.BaseURL); err != nil {
		return fmt.Errorf("save ai base_url: %w", err)
	}
	// A key equal to the environment one came from there and stays off disk.
	if key := settings.AI.APIKey; key != "" && key != s.envAPIKey(settings.AI.Provider) {
		if err := s.configStore.Set(keyAIAPIKey, key); err != nil {
			return fmt.Errorf("save ai api_key: %w", err)
		}
	}
	if err := s.configStore.Set(keyAIRateLimit, settings.AI.RequestsPerMinute); err != nil {
		return fmt.Errorf("save ai requests_per_minute: %w", err)
	}

	return nil
}

// SetAIProvider configures the suggestion LLM.
func (s *SettingsService) SetAIProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid AI provider: %s", provider)
	}

	if provider.RequiresAPIKey() && apiKey == "" && s.envAPIKey(provider) == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.AI.Provider = provider
	if model != "" {
		settings.AI.Model = model
	} else {
		settings.AI.Model = domain.DefaultLLMModels()[provider]
	}
	settings.AI.APIKey = apiKey

	if err := s.Save(settings); err != nil {
		return err
	}
	// Without an explicit key the environment supplies it, so a key stored
	// for an earlier provider must not linger.
	if apiKey == "" {
		if err := s.configStore.Unset(keyAIAPIKey); err != nil {
			return fmt.Errorf("clear ai api_key: %w", err)
		}
	}
	return nil
}

// SetDeletePolicy selects how code and theme deletion cascades.
func (s *SettingsService) SetDeletePolicy(policy domain.DeletePolicy) error {
	if !policy.IsValid() {
		return fmt.Errorf("invalid delete policy: %s", policy)
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	settings.DeletePolicy = policy
	return s.Save(settings)
}

// SetStorage selects the persistence backend.
func (s *SettingsService) SetStorage(backend domain.StorageBackend, postgresURL string) error {
	if !backend.IsValid() {
		return fmt.Errorf("invalid storage backend: %s", backend)
	}
	if backend == domain.StoragePostgres && postgresURL == "" {
		return fmt.Errorf("postgres backend requires a connection url")
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	settings.Storage.Backend = backend
	settings.Storage.PostgresURL = postgresURL
	return s.Save(settings)
}

// Validate checks the stored settings for consistency.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	err = validation.ValidateStruct(settings,
		validation.Field(&settings.DeletePolicy, validation.By(func(any) error {
			if !settings.DeletePolicy.IsValid() {
				return fmt.Errorf("must be cascade or legacy")
			}
			return nil
		})),
		validation.Field(&settings.MaxAnalyticsLogs, validation.Min(1)),
	)
	if err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}

	if settings.Storage.Backend == domain.StoragePostgres {
		if err := validation.Validate(settings.Storage.PostgresURL, validation.Required, is.RequestURI); err != nil {
			return fmt.Errorf("storage.postgres_url: %w", err)
		}
	}

	if settings.AI.Provider != "" {
		if !settings.AI.IsConfigured() {
			return fmt.Errorf("AI provider %q is missing an API key", settings.AI.Provider.Description())
		}
		if err := validation.Validate(settings.AI.BaseURL, is.URL); err != nil {
			return fmt.Errorf("ai.base_url: %w", err)
		}
		if err := validation.Validate(settings.AI.RequestsPerMinute, validation.Min(1)); err != nil {
			return fmt.Errorf("ai.requests_per_minute: %w", err)
		}
	}

	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateAIConfig validates the current AI configuration by pinging the provider.
func (s *SettingsService) ValidateAIConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateAI(&settings.AI)
}

// ConfigPath reports where settings are stored.
func (s *SettingsService) ConfigPath() string {
	return s.configStore.Path()
}

func (s *SettingsService) envAPIKey(provider domain.AIProvider) string {
	name, ok := apiKeyEnv[provider]
	if !ok {
		return ""
	}
	return s.getenv(name)
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val <= 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getBackend(defaultVal domain.StorageBackend) domain.StorageBackend {
	backend := domain.StorageBackend(s.configStore.GetString(keyStorageBackend))
	if !backend.IsValid() {
		return defaultVal
	}
	return backend
}

func (s *SettingsService) getDeletePolicy(defaultVal domain.DeletePolicy) domain.DeletePolicy {
	policy := domain.DeletePolicy(s.configStore.GetString(keyDeletePolicy))
	if !policy.IsValid() {
		return defaultVal
	}
	return policy
}

func (s *SettingsService) getProvider(defaultVal domain.AIProvider) domain.AIProvider {
	provider := domain.AIProvider(s.configStore.GetString(keyAIProvider))
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}
