package services

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/codebook/internal/core/domain"
	"github.com/custodia-labs/codebook/internal/core/ports/driven"
	"github.com/custodia-labs/codebook/internal/core/ports/driving"
	"github.com/custodia-labs/codebook/internal/core/prompts"
	"github.com/custodia-labs/codebook/internal/logger"
)

// Ensure SuggestionService implements the interfaces.
var (
	_ driving.SuggestionService = (*SuggestionService)(nil)
	_ driven.PromptStoreAware   = (*SuggestionService)(nil)
)

const (
	maxSuggestions     = 5
	maxContextRunes    = 3000
	maxSummaryExcerpts = 5
	suggestionTimeout  = 30 * time.Second
	suggestionTokens   = 1000
)

// SuggestionService produces coding suggestions from an LLM, falling back to
// local heuristics whenever the LLM is absent, throttled or unhelpful.
type SuggestionService struct {
	llm     driven.LLMService
	limiter *RateLimiter
	timeout time.Duration

	mu      sync.RWMutex
	prompts driven.PromptStore
}

// NewSuggestionService creates a suggestion service.
// The llm parameter is optional (can be nil).
func NewSuggestionService(llm driven.LLMService, requestsPerMinute int) *SuggestionService {
	return &SuggestionService{
		llm:     llm,
		limiter: NewRateLimiter(requestsPerMinute),
		timeout: suggestionTimeout,
	}
}

// SetPromptStore sets the prompt store for loading customisable prompts.
func (s *SuggestionService) SetPromptStore(store driven.PromptStore) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompts = store
}

// Available reports whether an LLM is configured.
func (s *SuggestionService) Available() bool {
	return s.llm != nil
}

// prompt loads a template, preferring the prompt store over built-ins.
func (s *SuggestionService) prompt(name string) string {
	s.mu.RLock()
	store := s.prompts
	s.mu.RUnlock()

	if store != nil {
		if p, err := store.Load(name); err == nil && p != "" {
			return p
		}
	}
	p, _ := prompts.Default(name)
	return p
}

// ask sends one templated request and returns the raw reply.
func (s *SuggestionService) ask(ctx context.Context, name string, temperature float64, args ...any) (string, error) {
	if s.llm == nil {
		return "", domain.ErrLLMUnavailable
	}
	if !s.limiter.Allow() {
		return "", domain.ErrRateLimited
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	messages := []driven.ChatMessage{
		{Role: "system", Content: s.prompt(driven.PromptSystem)},
		{Role: "user", Content: fmt.Sprintf(s.prompt(name), args...)},
	}
	reply, err := s.llm.Chat(ctx, messages, driven.ChatOptions{
		MaxTokens:   suggestionTokens,
		Temperature: temperature,
	})
	if err != nil {
		var quota *domain.RateLimitError
		switch {
		case errors.As(err, &quota):
			s.limiter.RecordRateLimitError(quota.RetryAfter)
		case errors.Is(err, domain.ErrRateLimited):
			s.limiter.RecordRateLimitError(0)
		}
		return "", err
	}
	return reply, nil
}

// decodeReply unmarshals the JSON payload of an LLM reply, tolerating
// markdown fences and prose around it.
func decodeReply(reply string, v any) error {
	reply = strings.TrimSpace(reply)
	start := strings.IndexAny(reply, "[{")
	end := strings.LastIndexAny(reply, "]}")
	if start < 0 || end < start {
		return fmt.Errorf("no JSON in reply: %w", domain.ErrInvalidInput)
	}
	if err := json.Unmarshal([]byte(reply[start:end+1]), v); err != nil {
		return fmt.Errorf("decode reply: %v: %w", err, domain.ErrInvalidInput)
	}
	return nil
}

type codeSuggestionJSON struct {
	Code          string  `json:"code"`
	Confidence    float64 `json:"confidence"`
	Reason        string  `json:"reason"`
	ExistingMatch *string `json:"existingMatch"`
}

// SuggestCodes ranks codes for a selected passage.
func (s *SuggestionService) SuggestCodes(
	ctx context.Context, text string, existingCodes []string, documentContext string,
) []domain.CodeSuggestion {
	contextBlock := ""
	if documentContext != "" {
		contextBlock = "\nFull document context for reference:\n" + truncateRunes(documentContext, maxContextRunes) + "...\n"
	}
	existing := "None yet"
	if len(existingCodes) > 0 {
		existing = strings.Join(existingCodes, ", ")
	}

	reply, err := s.ask(ctx, driven.PromptSuggestCodes, 0.7, text, contextBlock, existing)
	if err == nil {
		var raw []codeSuggestionJSON
		if err = decodeReply(reply, &raw); err == nil {
			if out := normaliseCodeSuggestions(raw, existingCodes); len(out) > 0 {
				return out
			}
			err = errors.New("reply held no usable suggestions")
		}
	}
	logger.Debug("code suggestions fall back to keywords: %v", err)
	return KeywordCodeSuggestions(text, existingCodes)
}

func normaliseCodeSuggestions(raw []codeSuggestionJSON, existingCodes []string) []domain.CodeSuggestion {
	out := make([]domain.CodeSuggestion, 0, len(raw))
	for _, r := range raw {
		name := strings.TrimSpace(r.Code)
		if name == "" {
			continue
		}
		match := ""
		if r.ExistingMatch != nil && !strings.EqualFold(*r.ExistingMatch, "null") {
			match = strings.TrimSpace(*r.ExistingMatch)
		}
		// Only names that really exist count as matches
		if match != "" && !slices.ContainsFunc(existingCodes, func(c string) bool { return strings.EqualFold(c, match) }) {
			match = ""
		}
		out = append(out, domain.CodeSuggestion{
			Code:          name,
			Confidence:    min(max(r.Confidence, 0), 1),
			Reason:        r.Reason,
			ExistingMatch: match,
		})
	}
	slices.SortStableFunc(out, func(a, b domain.CodeSuggestion) int {
		return cmp.Compare(b.Confidence, a.Confidence)
	})
	if len(out) > maxSuggestions {
		out = out[:maxSuggestions]
	}
	return out
}

type refinementJSON struct {
	Type       string   `json:"type"`
	Codes      []string `json:"codes"`
	Suggestion string   `json:"suggestion"`
	Reason     string   `json:"reason"`
}

// SuggestRefinements proposes merges, splits, renames and groupings.
func (s *SuggestionService) SuggestRefinements(ctx context.Context, codes []domain.CodeUsage) []domain.RefinementSuggestion {
	if len(codes) == 0 {
		return []domain.RefinementSuggestion{}
	}
	lines := make([]string, len(codes))
	for i, c := range codes {
		lines[i] = fmt.Sprintf("- %q (%d excerpts, %d documents)", c.Name, c.Frequency, c.DocumentCount)
	}

	reply, err := s.ask(ctx, driven.PromptSuggestRefinements, 0.5, strings.Join(lines, "\n"))
	if err == nil {
		var raw []refinementJSON
		if err = decodeReply(reply, &raw); err == nil {
			out := make([]domain.RefinementSuggestion, 0, len(raw))
			for _, r := range raw {
				t := domain.RefinementType(strings.ToLower(strings.TrimSpace(r.Type)))
				if !t.IsValid() || len(r.Codes) == 0 {
					continue
				}
				out = append(out, domain.RefinementSuggestion{
					Type: t, Codes: r.Codes, Suggestion: r.Suggestion, Reason: r.Reason,
				})
			}
			if len(out) > maxSuggestions {
				out = out[:maxSuggestions]
			}
			if len(out) > 0 {
				return out
			}
			err = errors.New("reply held no usable refinements")
		}
	}
	logger.Debug("refinements fall back to heuristics: %v", err)
	return HeuristicRefinements(codes)
}

type themeSuggestionJSON struct {
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	SuggestedCodes []string `json:"suggestedCodes"`
	Summary        string   `json:"summary"`
}

// SuggestThemes proposes themes grouping the codes.
func (s *SuggestionService) SuggestThemes(ctx context.Context, codes []domain.CodeUsage) []domain.ThemeSuggestion {
	if len(codes) == 0 {
		return []domain.ThemeSuggestion{}
	}
	lines := make([]string, len(codes))
	for i, c := range codes {
		lines[i] = fmt.Sprintf("- %q (%d excerpts)", c.Name, c.Frequency)
	}

	reply, err := s.ask(ctx, driven.PromptSuggestThemes, 0.6, strings.Join(lines, "\n"))
	if err == nil {
		var raw []themeSuggestionJSON
		if err = decodeReply(reply, &raw); err == nil {
			out := make([]domain.ThemeSuggestion, 0, len(raw))
			for _, r := range raw {
				if strings.TrimSpace(r.Name) == "" {
					continue
				}
				out = append(out, domain.ThemeSuggestion{
					Name:           strings.TrimSpace(r.Name),
					Description:    r.Description,
					SuggestedCodes: r.SuggestedCodes,
					Summary:        r.Summary,
				})
			}
			if len(out) > 0 {
				return out
			}
			err = errors.New("reply held no usable themes")
		}
	}
	logger.Debug("themes fall back to keyword categories: %v", err)
	return KeywordThemes(codes)
}

type summaryJSON struct {
	Meaning          string   `json:"meaning"`
	KeyExcerpts      []string `json:"keyExcerpts"`
	DocumentPresence string   `json:"documentPresence"`
}

// Summarize describes a code or theme from its excerpts.
func (s *SuggestionService) Summarize(
	ctx context.Context, kind domain.SummaryKind, name string, excerpts, documentTitles []string,
) domain.Summary {
	samples := excerpts[:min(len(excerpts), maxSummaryExcerpts)]
	reply, err := s.ask(ctx, driven.PromptSummarize, 0.7,
		string(kind), name, len(excerpts), strings.Join(samples, "\n\n"), strings.Join(documentTitles, ", "))
	if err == nil {
		var raw summaryJSON
		if err = decodeReply(reply, &raw); err == nil && raw.Meaning != "" {
			return domain.Summary{
				Kind:             kind,
				Name:             name,
				Meaning:          raw.Meaning,
				KeyExcerpts:      raw.KeyExcerpts,
				DocumentPresence: raw.DocumentPresence,
				Generated:        true,
			}
		}
	}
	logger.Debug("summary falls back to template: %v", err)
	return TemplateSummary(kind, name, excerpts, documentTitles)
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
