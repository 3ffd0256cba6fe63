package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/codebook/internal/core/domain"
)

// Test helper functions in settings.go

func TestMaskAPIKey(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Short key",
			input:    "abc123",
			expected: "****",
		},
		{
			name:     "Exactly 8 chars",
			input:    "12345678",
			expected: "****",
		},
		{
			name:     "Long key",
			input:    "sk-1234567890abcdef",
			expected: "sk-1...cdef",
		},
		{
			name:     "Very long key",
			input:    "sk-proj-1234567890abcdefghijklmnop",
			expected: "sk-p...mnop",
		},
		{
			name:     "Empty key",
			input:    "",
			expected: "****",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := maskAPIKey(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestParseChoice(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		maxVal     int
		defaultVal int
		expected   int
	}{
		{
			name:       "Empty input returns default",
			input:      "",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Valid choice within range",
			input:      "3",
			maxVal:     5,
			defaultVal: 1,
			expected:   3,
		},
		{
			name:       "Choice below minimum returns default",
			input:      "0",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Choice above maximum returns default",
			input:      "6",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Invalid input returns default",
			input:      "abc",
			maxVal:     5,
			defaultVal: 2,
			expected:   2,
		},
		{
			name:       "Negative number returns default",
			input:      "-1",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Whitespace returns default",
			input:      "   ",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Maximum value is valid",
			input:      "5",
			maxVal:     5,
			defaultVal: 1,
			expected:   5,
		},
		{
			name:       "Minimum value is valid",
			input:      "1",
			maxVal:     5,
			defaultVal: 3,
			expected:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := parseChoice(tt.input, tt.maxVal, tt.defaultVal)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestSettingsShow_Defaults(t *testing.T) {
	setupTestServices(t)

	out, err := executeCommand("settings")

	require.NoError(t, err)
	assert.Contains(t, out, ":memory:")
	assert.Contains(t, out, "[Storage]")
	assert.Contains(t, out, "Backend: sqlite")
	assert.Contains(t, out, "Provider: (none, local heuristics)")
	assert.Contains(t, out, "Delete policy: Cascade (delete and restore whole subtrees)")
}

func TestSettingsAI_Flags(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	env := setupTestServices(t)

	out, err := executeCommand("settings", "ai", "--provider", "openai", "--api-key", "sk-test-1234567890")
	require.NoError(t, err)
	assert.Contains(t, out, "AI provider set to OpenAI (cloud)")

	settings, err := env.settings.Get()
	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderOpenAI, settings.AI.Provider)
	assert.Equal(t, domain.DefaultLLMModels()[domain.AIProviderOpenAI], settings.AI.Model)

	out, err = executeCommand("settings", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "API Key: sk-t...7890")
	assert.NotContains(t, out, "sk-test-1234567890")
}

func TestSettingsAI_Interactive(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	env := setupTestServices(t)

	out, err := executeCommandWithInput("2\nsk-ant-abcdefgh1234\n", "settings", "ai")
	require.NoError(t, err)
	assert.Contains(t, out, "Select AI provider:")
	assert.Contains(t, out, "AI provider set to Anthropic (cloud)")

	settings, err := env.settings.Get()
	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderAnthropic, settings.AI.Provider)
	assert.Equal(t, "sk-ant-abcdefgh1234", settings.AI.APIKey)
}

func TestSettingsAI_Errors(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	setupTestServices(t)

	_, err := executeCommand("settings", "ai", "--provider", "ollama")
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)

	_, err = executeCommand("settings", "ai", "--provider", "openai", "--api-key", "")
	assert.ErrorContains(t, err, "API key required")
}

func TestSettingsDeletePolicy(t *testing.T) {
	env := setupTestServices(t)

	out, err := executeCommand("settings", "delete-policy", "legacy")
	require.NoError(t, err)
	assert.Contains(t, out, "Delete policy: Legacy (one level, shallow undo)")

	settings, err := env.settings.Get()
	require.NoError(t, err)
	assert.Equal(t, domain.DeleteLegacy, settings.DeletePolicy)

	_, err = executeCommand("settings", "delete-policy", "everything")
	assert.Error(t, err)
}

func TestSettingsStorage(t *testing.T) {
	env := setupTestServices(t)

	_, err := executeCommand("settings", "storage", "postgres")
	require.Error(t, err)

	out, err := executeCommand("settings", "storage", "postgres", "--url", "postgres://localhost/codebook")
	require.NoError(t, err)
	assert.Contains(t, out, "Storage backend: postgres")

	settings, err := env.settings.Get()
	require.NoError(t, err)
	assert.Equal(t, domain.StoragePostgres, settings.Storage.Backend)
	assert.Equal(t, "postgres://localhost/codebook", settings.Storage.PostgresURL)
}

func TestSettingsValidate(t *testing.T) {
	setupTestServices(t)

	out, err := executeCommand("settings", "validate")

	require.NoError(t, err)
	assert.Contains(t, out, "Settings are valid")
}

func TestSettings_ServiceNotConfigured(t *testing.T) {
	setupTestServices(t)
	SetServices(Services{})

	_, err := executeCommand("settings", "show")

	assert.ErrorContains(t, err, "settings service not configured")
}
