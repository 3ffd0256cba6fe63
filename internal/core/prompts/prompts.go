// Package prompts holds the built-in LLM prompt templates used for coding
// suggestions. The file prompt store seeds user-editable copies from these.
package prompts

import (
	"slices"

	"github.com/custodia-labs/codebook/internal/core/ports/driven"
)

//nolint:lll // Prompt content is intentionally long and should not be wrapped.
var defaults = map[string]string{
	driven.PromptSystem: `You are a qualitative research assistant specializing in coding interview transcripts and documents.`,

	driven.PromptSuggestCodes: `You are a qualitative data analysis expert. Analyze the following selected text and suggest 3-5 relevant codes for qualitative coding.

Selected text: "%[1]s"
%[2]s
Existing codes: %[3]s

Return a JSON array of suggestions with this exact format:
[
  {
    "code": "Code Name",
    "confidence": 0.85,
    "reason": "Brief explanation of why this code fits",
    "existingMatch": "ExistingCodeName or null"
  }
]

Consider:
1. The meaning and context of the selected text
2. Whether similar codes already exist
3. Standard qualitative coding practices

Return only the JSON array, no other text.`,

	driven.PromptSuggestRefinements: `Analyze these qualitative codes and suggest refinements (merge similar codes, split broad codes, rename unclear ones, or group related codes):

Codes:
%[1]s

Return a JSON array of up to 5 suggestions with this format:
[
  {
    "type": "merge|split|rename|group",
    "codes": ["Code1", "Code2"],
    "suggestion": "Brief action to take",
    "reason": "Why this refinement makes sense"
  }
]

Return only the JSON array.`,

	driven.PromptSuggestThemes: `Based on these qualitative codes, suggest 3-5 overarching themes that group related codes together:

Codes:
%[1]s

Return a JSON array with this format:
[
  {
    "name": "Theme Name",
    "description": "What this theme encompasses",
    "suggestedCodes": ["Code1", "Code2", "Code3"],
    "summary": "Brief explanation of the theme"
  }
]

Return only the JSON array.`,

	driven.PromptSummarize: `Summarize this %[1]s "%[2]s" based on the coded excerpts:

Excerpts (%[3]d total):
%[4]s

Found in documents: %[5]s

Provide:
1. A clear explanation of what this %[1]s means in the research context
2. 2-3 key representative excerpts (use exact quotes from above)
3. How it appears across documents

Format as JSON:
{
  "meaning": "What this %[1]s represents...",
  "keyExcerpts": ["excerpt 1", "excerpt 2"],
  "documentPresence": "Description of where it appears"
}`,
}

// Default returns the built-in template for name.
func Default(name string) (string, bool) {
	p, ok := defaults[name]
	return p, ok
}

// Names lists every built-in prompt name in sorted order.
func Names() []string {
	names := make([]string, 0, len(defaults))
	for name := range defaults {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
