package prompts

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/codebook/internal/core/ports/driven"
)

func TestNames(t *testing.T) {
	assert.Equal(t, []string{
		driven.PromptSuggestCodes,
		driven.PromptSuggestRefinements,
		driven.PromptSuggestThemes,
		driven.PromptSummarize,
		driven.PromptSystem,
	}, Names())
}

func TestDefault_Unknown(t *testing.T) {
	_, ok := Default("query_rewrite")
	assert.False(t, ok)
}

// TestDefaults_FormatCleanly checks every template consumes exactly the
// arguments its callers pass.
func TestDefaults_FormatCleanly(t *testing.T) {
	args := map[string][]any{
		driven.PromptSystem:             nil,
		driven.PromptSuggestCodes:       {"text", "", "None yet"},
		driven.PromptSuggestRefinements: {`- "A" (1 excerpts, 1 documents)`},
		driven.PromptSuggestThemes:      {`- "A" (1 excerpts)`},
		driven.PromptSummarize:          {"code", "Stress", 2, "one\n\ntwo", "Interview 1"},
	}
	for name, a := range args {
		t.Run(name, func(t *testing.T) {
			tmpl, ok := Default(name)
			require.True(t, ok)
			out := fmt.Sprintf(tmpl, a...)
			assert.False(t, strings.Contains(out, "%!"), out)
		})
	}
}
