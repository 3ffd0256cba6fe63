package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/codebook/internal/core/domain"
)

// codedStudy codes both sentences of the interview; the second one twice.
func codedStudy(t *testing.T) *testEnv {
	t.Helper()
	env := setupTestServices(t)
	docID := env.withStudy(t, interview)
	home := env.code(t, "Home")
	commute := env.code(t, "Commute")
	fatigue := env.code(t, "Fatigue")
	env.excerpt(t, docID, 0, 25, home.ID)
	env.excerpt(t, docID, 26, 53, commute.ID, fatigue.ID)
	return env
}

func TestAnalyzeCooccur(t *testing.T) {
	codedStudy(t)

	out, err := executeCommand("analyze", "cooccur")
	require.NoError(t, err)
	assert.Contains(t, out, "  1  Commute + Fatigue  in 1 document")

	out, err = executeCommand("analyze", "cooccur", "--min", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "No codes co-occur yet.")
}

func TestAnalyzeStats(t *testing.T) {
	codedStudy(t)

	out, err := executeCommand("analyse", "stats")

	require.NoError(t, err)
	assert.Contains(t, out, "Codes:          3")
	assert.Contains(t, out, "Excerpts:       2")
	assert.Contains(t, out, "Avg frequency:  1.00")
	assert.Contains(t, out, "Most used:")
}

func TestAnalyzeTop(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		env := setupTestServices(t)
		env.withStudy(t, interview)

		out, err := executeCommand("analyze", "top")
		require.NoError(t, err)
		assert.Contains(t, out, "No codes yet.")
	})

	t.Run("limited", func(t *testing.T) {
		codedStudy(t)

		out, err := executeCommand("analyze", "top", "-n", "2")
		require.NoError(t, err)
		assert.Contains(t, out, " 1. ")
		assert.Contains(t, out, " 2. ")
		assert.NotContains(t, out, " 3. ")
	})
}

func TestAnalyzeGraph(t *testing.T) {
	env := codedStudy(t)

	out, err := executeCommand("analyze", "graph")
	require.NoError(t, err)
	assert.Contains(t, out, "No themes contain codes yet.")

	theme, err := env.wb.AddTheme(t.Context(), "", "Costs", "", "")
	require.NoError(t, err)
	commute, err := env.wb.ResolveCode("", "Commute")
	require.NoError(t, err)
	require.NoError(t, env.wb.AddCodeToTheme(t.Context(), "", theme.ID, commute.ID))

	out, err = executeCommand("analyze", "graph")
	require.NoError(t, err)
	assert.Contains(t, out, "Costs")
	assert.Contains(t, out, "  └─ Commute (1)")
}

func TestAnalyzeTree(t *testing.T) {
	codedStudy(t)

	out, err := executeCommand("analyze", "tree")

	require.NoError(t, err)
	assert.Contains(t, out, "Home")
	assert.Contains(t, out, "Fatigue")
}

func TestAnalyze_NoActiveStudy(t *testing.T) {
	setupTestServices(t)

	_, err := executeCommand("analyze", "stats")

	assert.ErrorIs(t, err, domain.ErrNoActiveStudy)
}
