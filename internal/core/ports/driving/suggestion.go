package driving

import (
	"context"

	"github.com/custodia-labs/codebook/internal/core/domain"
)

// SuggestionService produces AI coding suggestions.
// Every method degrades to a deterministic local heuristic when the LLM is
// unavailable or its answer cannot be used.
type SuggestionService interface {
	// SuggestCodes ranks codes for a selected passage.
	SuggestCodes(ctx context.Context, text string, existingCodes []string, documentContext string) []domain.CodeSuggestion

	// SuggestRefinements proposes merges, splits, renames and groupings.
	SuggestRefinements(ctx context.Context, codes []domain.CodeUsage) []domain.RefinementSuggestion

	// SuggestThemes proposes themes grouping the codes.
	SuggestThemes(ctx context.Context, codes []domain.CodeUsage) []domain.ThemeSuggestion

	// Summarize describes a code or theme from its excerpts.
	Summarize(ctx context.Context, kind domain.SummaryKind, name string, excerpts, documentTitles []string) domain.Summary

	// Available reports whether an LLM is configured.
	Available() bool
}
