package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/codebook/internal/core/domain"
)

func TestStudyCreate(t *testing.T) {
	env := setupTestServices(t)

	out, err := executeCommand("study", "create", "Remote work",
		"--question", "How do people adapt?", "--tags", "hybrid, wellbeing,")

	require.NoError(t, err)
	assert.Contains(t, out, "Created study Remote work")

	study, err := env.wb.ActiveStudy()
	require.NoError(t, err)
	assert.Equal(t, "How do people adapt?", study.ResearchQuestion)
	assert.Equal(t, []string{"hybrid", "wellbeing"}, study.Tags)
}

func TestStudyCreate_AttachesToActiveWorkspace(t *testing.T) {
	setupTestServices(t)
	_, err := executeCommand("workspace", "create", "Lab", "--as", "Ana")
	require.NoError(t, err)
	_, err = executeCommand("study", "create", "Remote work")
	require.NoError(t, err)

	out, err := executeCommand("workspace", "show")

	require.NoError(t, err)
	assert.Contains(t, out, "Studies:    1")
}

func TestStudyList(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		setupTestServices(t)

		out, err := executeCommand("study", "list")

		require.NoError(t, err)
		assert.Contains(t, out, "No studies")
	})

	t.Run("marks the active study", func(t *testing.T) {
		setupTestServices(t)
		_, err := executeCommand("study", "create", "First")
		require.NoError(t, err)
		_, err = executeCommand("study", "create", "Second")
		require.NoError(t, err)

		out, err := executeCommand("study", "list")

		require.NoError(t, err)
		assert.Contains(t, out, "* ● Second")
		assert.Contains(t, out, "  ● First")
	})
}

func TestStudyUse_ByTitle(t *testing.T) {
	env := setupTestServices(t)
	_, err := executeCommand("study", "create", "First")
	require.NoError(t, err)
	_, err = executeCommand("study", "create", "Second")
	require.NoError(t, err)

	out, err := executeCommand("study", "use", "first")

	require.NoError(t, err)
	assert.Contains(t, out, "Active study: First")
	study, err := env.wb.ActiveStudy()
	require.NoError(t, err)
	assert.Equal(t, "First", study.Title)
}

func TestStudyUse_Unknown(t *testing.T) {
	setupTestServices(t)

	_, err := executeCommand("study", "use", "missing")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStudyShow(t *testing.T) {
	env := setupTestServices(t)
	docID := env.withStudy(t, "I like working from home.")
	code := env.code(t, "Home office")
	env.excerpt(t, docID, 0, 25, code.ID)

	out, err := executeCommand("study", "show")

	require.NoError(t, err)
	assert.Contains(t, out, "Remote work")
	assert.Contains(t, out, "Documents:   1")
	assert.Contains(t, out, "Codes:       1")
	assert.Contains(t, out, "Excerpts:    1 (1 coded segments)")
	assert.Contains(t, out, "Most used:   Home office")
}

func TestStudyShow_NoActiveStudy(t *testing.T) {
	setupTestServices(t)

	_, err := executeCommand("study", "show")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNoActiveStudy)
	assert.Contains(t, err.Error(), "codebook study use")
}

func TestStudyUpdate_OnlyChangedFields(t *testing.T) {
	env := setupTestServices(t)
	_, err := executeCommand("study", "create", "Remote work", "--description", "Interviews")
	require.NoError(t, err)

	out, err := executeCommand("study", "update", "--status", "analysis")

	require.NoError(t, err)
	assert.Contains(t, out, "Updated study Remote work")
	study, err := env.wb.ActiveStudy()
	require.NoError(t, err)
	assert.Equal(t, domain.StudyStatusAnalysis, study.Status)
	assert.Equal(t, "Interviews", study.Description)
}

func TestStudyDuplicateAndDelete(t *testing.T) {
	env := setupTestServices(t)
	_, err := executeCommand("study", "create", "Remote work")
	require.NoError(t, err)

	out, err := executeCommand("study", "duplicate")
	require.NoError(t, err)
	assert.Contains(t, out, "Created Remote work (Copy)")
	assert.Len(t, env.wb.ListStudies(), 2)

	out, err = executeCommand("study", "delete", "Remote work (Copy)")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted study Remote work (Copy)")
	assert.Len(t, env.wb.ListStudies(), 1)
}

func TestStudyDelete_DefaultsToActiveStudy(t *testing.T) {
	env := setupTestServices(t)
	_, err := executeCommand("study", "create", "Remote work")
	require.NoError(t, err)

	out, err := executeCommand("study", "delete")

	require.NoError(t, err)
	assert.Contains(t, out, "Deleted study Remote work")
	assert.Empty(t, env.wb.ListStudies())
}

func TestStudyDuplicate_RejectsExtraArgs(t *testing.T) {
	setupTestServices(t)

	_, err := executeCommand("study", "duplicate", "a", "b")

	assert.ErrorContains(t, err, "accepts at most 1 arg(s), received 2")
}

func TestStudyFlag_SelectsStudy(t *testing.T) {
	env := setupTestServices(t)
	env.withStudy(t, "First study text")
	_, err := executeCommand("study", "create", "Other")
	require.NoError(t, err)

	out, err := executeCommand("document", "list", "--study", "Remote work")

	require.NoError(t, err)
	assert.Contains(t, out, "Interview 1")
}

func TestSplitList(t *testing.T) {
	tests := []struct {
		input    string
		expected []string
	}{
		{input: "", expected: nil},
		{input: "a", expected: []string{"a"}},
		{input: " a , b ,, c ", expected: []string{"a", "b", "c"}},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, splitList(tt.input))
		})
	}
}
