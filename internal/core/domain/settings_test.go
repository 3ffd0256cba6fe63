package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestAIProvider_IsValid tests provider validation
func TestAIProvider_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		provider AIProvider
		expected bool
	}{
		{name: "openai is valid", provider: AIProviderOpenAI, expected: true},
		{name: "anthropic is valid", provider: AIProviderAnthropic, expected: true},
		{name: "ollama is invalid", provider: AIProvider("ollama"), expected: false},
		{name: "empty string is invalid", provider: AIProvider(""), expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.provider.IsValid())
		})
	}
}

// TestAISettings_IsConfigured tests AI configuration checks
func TestAISettings_IsConfigured(t *testing.T) {
	assert.False(t, AISettings{}.IsConfigured())
	assert.False(t, AISettings{Provider: AIProviderOpenAI}.IsConfigured())
	assert.True(t, AISettings{Provider: AIProviderOpenAI, APIKey: "sk-test"}.IsConfigured())
	assert.True(t, AISettings{Provider: AIProviderAnthropic, APIKey: "sk-ant"}.IsConfigured())
}

// TestDefaultAppSettings tests default settings
func TestDefaultAppSettings(t *testing.T) {
	s := DefaultAppSettings()

	assert.Equal(t, StorageSQLite, s.Storage.Backend)
	assert.Equal(t, DeleteCascade, s.DeletePolicy)
	assert.Equal(t, 5000, s.MaxAnalyticsLogs)
	assert.False(t, s.AI.IsConfigured())
	assert.Equal(t, DefaultRequestsPerMinute, s.AI.RequestsPerMinute)
}

// TestDeletePolicy_IsValid tests delete policy validation
func TestDeletePolicy_IsValid(t *testing.T) {
	assert.True(t, DeleteCascade.IsValid())
	assert.True(t, DeleteLegacy.IsValid())
	assert.False(t, DeletePolicy("recursive").IsValid())
	assert.Equal(t, unknownDescription, DeletePolicy("x").Description())
}

// TestDefaultLLMModels tests every provider has a default model
func TestDefaultLLMModels(t *testing.T) {
	models := DefaultLLMModels()
	for _, p := range AllLLMProviders() {
		assert.NotEmpty(t, models[p], p.String())
	}
}
