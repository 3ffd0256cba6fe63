package services

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"unicode"

	"github.com/custodia-labs/codebook/internal/core/domain"
)

// keywordCategory is a fallback code with the words that suggest it.
type keywordCategory struct {
	Code     string
	Keywords []string
}

// codeKeywords drives the local suggestion heuristics.
var codeKeywords = []keywordCategory{
	{"Work-Life Balance", []string{"balance", "boundary", "boundaries", "personal", "family", "commute", "flexibility", "separation"}},
	{"Communication", []string{"communication", "email", "meeting", "call", "slack", "teams", "video", "message", "chat"}},
	{"Productivity", []string{"productive", "productivity", "focus", "efficient", "efficiency", "output", "performance", "work"}},
	{"Mental Health", []string{"mental", "health", "stress", "anxiety", "isolation", "lonely", "wellbeing", "mood", "burnout"}},
	{"Collaboration", []string{"collaboration", "team", "together", "brainstorm", "creative", "colleague", "collective"}},
}

const (
	// lowFrequency is the usage at or below which codes are offered for grouping.
	lowFrequency = 1

	// broadFactor marks codes used this many times the average as split candidates.
	broadFactor = 3

	// minBroadFrequency keeps tiny codebooks from producing split advice.
	minBroadFrequency = 6
)

// KeywordCodeSuggestions matches the text against the keyword table.
// Confidence grows by 0.15 per matched keyword from 0.5, capped at 0.95.
func KeywordCodeSuggestions(text string, existingCodes []string) []domain.CodeSuggestion {
	lower := strings.ToLower(text)
	out := []domain.CodeSuggestion{}
	for _, cat := range codeKeywords {
		var matched []string
		for _, kw := range cat.Keywords {
			if strings.Contains(lower, kw) {
				matched = append(matched, kw)
			}
		}
		if len(matched) == 0 {
			continue
		}
		out = append(out, domain.CodeSuggestion{
			Code:          cat.Code,
			Confidence:    min(0.95, 0.5+float64(len(matched))*0.15),
			Reason:        "Contains keywords: " + strings.Join(matched, ", "),
			ExistingMatch: existingMatch(cat.Code, existingCodes),
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

// existingMatch finds the first existing code whose name contains, or is
// contained in, the suggested name.
func existingMatch(code string, existingCodes []string) string {
	code = strings.ToLower(code)
	for _, ec := range existingCodes {
		lower := strings.ToLower(strings.TrimSpace(ec))
		if lower == "" {
			continue
		}
		if strings.Contains(lower, code) || strings.Contains(code, lower) {
			return ec
		}
	}
	return ""
}

// nameTokens splits a code name into lowercase words.
func nameTokens(name string) []string {
	words := strings.FieldsFunc(strings.ToLower(name), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	slices.Sort(words)
	return slices.Compact(words)
}

// similarNames reports whether two code names overlap enough to merge:
// one contains the other, or they share at least half of their words.
func similarNames(a, b string) bool {
	ta, tb := nameTokens(a), nameTokens(b)
	if len(ta) == 0 || len(tb) == 0 {
		return false
	}
	ja, jb := strings.Join(ta, " "), strings.Join(tb, " ")
	if ja == jb || strings.Contains(strings.ToLower(a), strings.ToLower(b)) || strings.Contains(strings.ToLower(b), strings.ToLower(a)) {
		return true
	}
	shared := 0
	for _, t := range ta {
		if slices.Contains(tb, t) {
			shared++
		}
	}
	union := len(ta) + len(tb) - shared
	return shared*2 >= union
}

// HeuristicRefinements proposes merges for similarly named codes, splits for
// unusually broad codes and a grouping of rarely used codes.
func HeuristicRefinements(codes []domain.CodeUsage) []domain.RefinementSuggestion {
	out := []domain.RefinementSuggestion{}

	merged := make(map[int]bool)
	for i := range codes {
		for j := i + 1; j < len(codes); j++ {
			if merged[i] || merged[j] || !similarNames(codes[i].Name, codes[j].Name) {
				continue
			}
			keep, drop := codes[i], codes[j]
			if drop.Frequency > keep.Frequency {
				keep, drop = drop, keep
			}
			merged[i], merged[j] = true, true
			out = append(out, domain.RefinementSuggestion{
				Type:       domain.RefinementMerge,
				Codes:      []string{drop.Name, keep.Name},
				Suggestion: fmt.Sprintf("Merge %q into %q", drop.Name, keep.Name),
				Reason:     "The names overlap, so the codes likely capture the same idea",
			})
		}
	}

	total := 0
	for _, c := range codes {
		total += c.Frequency
	}
	if len(codes) > 1 {
		avg := float64(total) / float64(len(codes))
		for _, c := range codes {
			if c.Frequency >= minBroadFrequency && float64(c.Frequency) >= broadFactor*avg {
				out = append(out, domain.RefinementSuggestion{
					Type:       domain.RefinementSplit,
					Codes:      []string{c.Name},
					Suggestion: fmt.Sprintf("Split %q into more specific child codes", c.Name),
					Reason: fmt.Sprintf("Used %d times across %d documents, far above the codebook average of %.1f",
						c.Frequency, c.DocumentCount, avg),
				})
			}
		}
	}

	var rare []string
	for _, c := range codes {
		if c.Frequency <= lowFrequency {
			rare = append(rare, c.Name)
		}
	}
	if len(rare) >= 2 {
		out = append(out, domain.RefinementSuggestion{
			Type:       domain.RefinementGroup,
			Codes:      rare,
			Suggestion: "Group rarely used codes under a broader parent code",
			Reason:     fmt.Sprintf("%d codes have been applied at most %d time", len(rare), lowFrequency),
		})
	}

	if len(out) > maxSuggestions {
		out = out[:maxSuggestions]
	}
	return out
}

// KeywordThemes groups codes under the keyword categories their names hit.
func KeywordThemes(codes []domain.CodeUsage) []domain.ThemeSuggestion {
	out := []domain.ThemeSuggestion{}
	for _, cat := range codeKeywords {
		catLower := strings.ToLower(cat.Code)
		var members []string
		excerpts := 0
		for _, c := range codes {
			name := strings.ToLower(c.Name)
			hit := strings.Contains(name, catLower) || slices.ContainsFunc(cat.Keywords, func(kw string) bool {
				return strings.Contains(name, kw)
			})
			if hit {
				members = append(members, c.Name)
				excerpts += c.Frequency
			}
		}
		if len(members) == 0 {
			continue
		}
		out = append(out, domain.ThemeSuggestion{
			Name:           cat.Code,
			Description:    "Codes related to " + catLower,
			SuggestedCodes: members,
			Summary:        fmt.Sprintf("Groups %d code(s) covering %d excerpt(s)", len(members), excerpts),
		})
	}
	if len(out) > maxSuggestions {
		out = out[:maxSuggestions]
	}
	return out
}

// TemplateSummary describes a code or theme without an LLM.
func TemplateSummary(kind domain.SummaryKind, name string, excerpts, documentTitles []string) domain.Summary {
	keys := make([]string, 0, 3)
	for _, e := range excerpts[:min(len(excerpts), 3)] {
		keys = append(keys, truncateRunes(e, 100)+"...")
	}
	return domain.Summary{
		Kind: kind,
		Name: name,
		Meaning: fmt.Sprintf("%q captures instances related to %s. Found %d time(s) across %d document(s).",
			name, strings.ToLower(name), len(excerpts), len(documentTitles)),
		KeyExcerpts:      keys,
		DocumentPresence: "Found in: " + strings.Join(documentTitles, ", "),
	}
}
