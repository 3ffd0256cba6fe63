package driven

import "context"

// LLMService is a chat model behind one provider API. It is optional: with
// no service configured, suggestions come from local heuristics.
//
// Quota rejections are reported as *domain.RateLimitError so callers can
// honour the provider's retry delay.
type LLMService interface {
	// Generate answers a single user prompt.
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)

	// Chat answers a conversation. Messages with Role "system" carry the
	// instructions; providers place them where their API expects.
	Chat(ctx context.Context, messages []ChatMessage, opts ChatOptions) (string, error)

	ModelName() string

	// Ping checks credentials and reachability without running the model.
	Ping(ctx context.Context) error

	Close() error
}

// GenerateOptions tunes Generate. Zero values leave the provider default.
type GenerateOptions struct {
	MaxTokens   int
	Temperature float64
	StopWords   []string
}

// ChatMessage is one turn: Role is "system", "user" or "assistant".
type ChatMessage struct {
	Role    string
	Content string
}

// ChatOptions tunes Chat. Zero values leave the provider default.
type ChatOptions struct {
	MaxTokens   int
	Temperature float64
}
