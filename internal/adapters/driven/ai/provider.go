// Package ai builds the LLM adapter selected in the settings.
package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/codebook/internal/adapters/driven/llm/anthropic"
	"github.com/custodia-labs/codebook/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/codebook/internal/core/domain"
	"github.com/custodia-labs/codebook/internal/core/ports/driven"
)

// DefaultPingTimeout bounds a connectivity check.
const DefaultPingTimeout = 5 * time.Second

// providers builds one adapter per supported provider.
var providers = map[domain.AIProvider]func(domain.AISettings) (driven.LLMService, error){
	domain.AIProviderOpenAI: func(s domain.AISettings) (driven.LLMService, error) {
		return openai.NewLLMService(openai.Config{APIKey: s.APIKey, BaseURL: s.BaseURL, Model: s.Model})
	},
	domain.AIProviderAnthropic: func(s domain.AISettings) (driven.LLMService, error) {
		return anthropic.NewLLMService(anthropic.Config{APIKey: s.APIKey, BaseURL: s.BaseURL, Model: s.Model})
	},
}

// NewLLMService returns the adapter for settings, or nil when no provider is
// configured. Suggestions then use local heuristics.
func NewLLMService(settings *domain.AISettings) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}
	build, ok := providers[settings.Provider]
	if !ok {
		return nil, fmt.Errorf("LLM provider %q: %w", settings.Provider, domain.ErrUnsupportedType)
	}
	svc, err := build(*settings)
	if err != nil {
		return nil, err
	}
	return svc, nil
}

var _ driven.AIConfigValidator = (*Validator)(nil)

// Validator checks AI settings by pinging the provider.
type Validator struct {
	Timeout time.Duration
}

func NewValidator() *Validator {
	return &Validator{Timeout: DefaultPingTimeout}
}

// ValidateAI accepts settings without a provider.
func (v *Validator) ValidateAI(settings *domain.AISettings) error {
	svc, err := NewLLMService(settings)
	if err != nil {
		return err
	}
	if svc == nil {
		return nil
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), v.Timeout)
	defer cancel()
	if err := svc.Ping(ctx); err != nil {
		return fmt.Errorf("%s (%s): %w", settings.Provider.Description(), svc.ModelName(), err)
	}
	return nil
}
