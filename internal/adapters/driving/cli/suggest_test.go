package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/codebook/internal/core/domain"
)

func TestSuggestCodes_HeuristicText(t *testing.T) {
	env := setupTestServices(t)
	env.withStudy(t, interview)

	out, err := executeCommand("suggest", "codes", "The commute was exhausting.")

	require.NoError(t, err)
	assert.Contains(t, out, "no AI provider configured: using local heuristics")
	assert.Contains(t, out, "1. Work-Life Balance   65%")
	assert.Contains(t, out, "Contains keywords: commute")
}

func TestSuggestCodes_NeedsInput(t *testing.T) {
	env := setupTestServices(t)
	env.withStudy(t, interview)

	_, err := executeCommand("suggest", "codes")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = executeCommand("suggest", "codes", "some text", "--accept", "1")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSuggestCodes_AcceptAppliesCode(t *testing.T) {
	env := setupTestServices(t)
	docID := env.withStudy(t, interview)
	seed := env.code(t, "Seed")
	x := env.excerpt(t, docID, 26, 53, seed.ID)

	out, err := executeCommand("suggest", "codes", "--excerpt", x.ID, "--accept", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Applied Work-Life Balance to "+x.ID)

	code, err := env.wb.ResolveCode("", "Work-Life Balance")
	require.NoError(t, err)
	assert.Equal(t, domain.CodeLevelMain, code.Level)
	excerpts, err := env.wb.ExcerptsForCode("", code.ID)
	require.NoError(t, err)
	require.Len(t, excerpts, 1)
	assert.Equal(t, x.ID, excerpts[0].ID)
}

func TestSuggestCodes_AcceptOutOfRange(t *testing.T) {
	env := setupTestServices(t)
	docID := env.withStudy(t, interview)
	seed := env.code(t, "Seed")
	x := env.excerpt(t, docID, 26, 53, seed.ID)

	_, err := executeCommand("suggest", "codes", "-e", x.ID, "--accept", "9")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSuggestCodes_LogsInResearchMode(t *testing.T) {
	env := setupTestServices(t)
	_, err := env.wb.CreateWorkspace(t.Context(), "Field", "Ana Lopez")
	require.NoError(t, err)
	require.NoError(t, env.wb.UpdateResearchSettings(t.Context(), domain.ResearchSettings{
		ResearchMode:  true,
		AIEnabled:     true,
		ParticipantID: "P01",
	}))
	docID := env.withStudy(t, interview)
	seed := env.code(t, "Seed")
	x := env.excerpt(t, docID, 26, 53, seed.ID)

	_, err = executeCommand("suggest", "codes", "-e", x.ID, "--accept", "1")
	require.NoError(t, err)

	m := env.wb.ResearchMetrics()
	require.NotNil(t, m)
	assert.Equal(t, 1, m.AISuggestionsRequested)
	assert.Equal(t, 1, m.AISuggestionsAccepted)
	assert.InDelta(t, 1.0, m.AIAcceptanceRate, 0.001)
}

func TestSuggestRefinementsAndThemes(t *testing.T) {
	env := setupTestServices(t)
	env.withStudy(t, interview)

	out, err := executeCommand("suggest", "refinements")
	require.NoError(t, err)
	assert.Contains(t, out, "The codebook looks tidy.")

	env.code(t, "Stress")
	env.code(t, "Work stress")
	out, err = executeCommand("suggest", "refinements")
	require.NoError(t, err)
	assert.Contains(t, out, "MERGE")
	assert.Contains(t, out, `Merge "Work stress" into "Stress"`)

	_, err = executeCommand("suggest", "themes")
	require.NoError(t, err)
}

func TestSuggestSummary_Template(t *testing.T) {
	env := setupTestServices(t)
	docID := env.withStudy(t, interview)
	commute := env.code(t, "Commute")
	env.excerpt(t, docID, 26, 53, commute.ID)

	out, err := executeCommand("suggest", "summary", "Commute")

	require.NoError(t, err)
	assert.Contains(t, out, "(template summary)")
	assert.Contains(t, out, "Commute")
}

func TestSuggestSummary_UnknownTheme(t *testing.T) {
	env := setupTestServices(t)
	env.withStudy(t, interview)

	_, err := executeCommand("suggest", "summary", "--theme", "Missing")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}
