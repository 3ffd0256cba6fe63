package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/codebook/internal/core/domain"
)

func TestExcerptAdd(t *testing.T) {
	t.Run("with existing codes", func(t *testing.T) {
		env := setupTestServices(t)
		docID := env.withStudy(t, interview)
		env.code(t, "Home office")
		env.code(t, "Wellbeing")

		out, err := executeCommand("excerpt", "add", docID, "0", "25", "home office", "Wellbeing", "-m", "strong")

		require.NoError(t, err)
		assert.Contains(t, out, `Coded "I like working from home." with Home office, Wellbeing`)
		excerpts, err := env.wb.ListExcerpts("")
		require.NoError(t, err)
		require.Len(t, excerpts, 1)
		assert.Len(t, excerpts[0].CodeIDs, 2)
		assert.Equal(t, "strong", excerpts[0].Memo)
	})

	t.Run("with a new code", func(t *testing.T) {
		env := setupTestServices(t)
		docID := env.withStudy(t, interview)

		out, err := executeCommand("excerpt", "add", docID, "26", "53", "--new-code", "Commute", "--memo", "tired")

		require.NoError(t, err)
		assert.Contains(t, out, "with new code Commute")
		code, err := env.wb.ResolveCode("", "Commute")
		require.NoError(t, err)
		assert.Equal(t, 1, code.Frequency)
		excerpts, err := env.wb.ListExcerpts("")
		require.NoError(t, err)
		require.Len(t, excerpts, 1)
		assert.Equal(t, "tired", excerpts[0].Memo)
	})

	t.Run("codes and new code together", func(t *testing.T) {
		env := setupTestServices(t)
		docID := env.withStudy(t, interview)
		env.code(t, "Home office")

		_, err := executeCommand("excerpt", "add", docID, "0", "25", "Home office", "--new-code", "Other")

		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("bad offset", func(t *testing.T) {
		env := setupTestServices(t)
		docID := env.withStudy(t, interview)
		env.code(t, "Home office")

		_, err := executeCommand("excerpt", "add", docID, "zero", "25", "Home office")

		assert.ErrorIs(t, err, domain.ErrInvalidSelection)
	})

	t.Run("text must match the document", func(t *testing.T) {
		env := setupTestServices(t)
		docID := env.withStudy(t, interview)
		env.code(t, "Home office")

		_, err := executeCommand("excerpt", "add", docID, "0", "25", "Home office", "--text", "something else")

		assert.ErrorIs(t, err, domain.ErrInvalidSelection)
	})

	t.Run("needs a code", func(t *testing.T) {
		env := setupTestServices(t)
		docID := env.withStudy(t, interview)

		_, err := executeCommand("excerpt", "add", docID, "0", "25")

		assert.ErrorIs(t, err, domain.ErrNoCodes)
	})
}

func TestExcerptList(t *testing.T) {
	env := setupTestServices(t)
	docID := env.withStudy(t, interview)
	home := env.code(t, "Home office")
	commute := env.code(t, "Commute")
	env.excerpt(t, docID, 0, 25, home.ID)
	env.excerpt(t, docID, 26, 53, commute.ID)

	t.Run("all", func(t *testing.T) {
		out, err := executeCommand("excerpt", "list")
		require.NoError(t, err)
		assert.Contains(t, out, `"I like working from home."`)
		assert.Contains(t, out, `"The commute was exhausting."`)
		assert.Contains(t, out, "[26:53]  Commute")
	})

	t.Run("by code", func(t *testing.T) {
		out, err := executeCommand("excerpt", "list", "--code", "commute")
		require.NoError(t, err)
		assert.NotContains(t, out, "I like working from home.")
		assert.Contains(t, out, "The commute was exhausting.")
	})

	t.Run("by unknown document", func(t *testing.T) {
		out, err := executeCommand("excerpt", "list", "-d", "other")
		require.NoError(t, err)
		assert.Contains(t, out, "No excerpts.")
	})
}

func TestExcerptAssignUnassignMemoRemove(t *testing.T) {
	env := setupTestServices(t)
	docID := env.withStudy(t, interview)
	home := env.code(t, "Home office")
	env.code(t, "Wellbeing")
	x := env.excerpt(t, docID, 0, 25, home.ID)

	out, err := executeCommand("excerpt", "assign", x.ID, "Wellbeing")
	require.NoError(t, err)
	assert.Contains(t, out, "Assigned Wellbeing to "+x.ID)

	out, err = executeCommand("excerpt", "unassign", x.ID, "Home office")
	require.NoError(t, err)
	assert.Contains(t, out, "Removed Home office from "+x.ID)

	out, err = executeCommand("excerpt", "memo", x.ID, "check with P2")
	require.NoError(t, err)
	assert.Contains(t, out, "Updated memo on "+x.ID)

	excerpts, err := env.wb.ListExcerpts("")
	require.NoError(t, err)
	require.Len(t, excerpts, 1)
	wellbeing, err := env.wb.ResolveCode("", "Wellbeing")
	require.NoError(t, err)
	assert.Equal(t, []string{wellbeing.ID}, excerpts[0].CodeIDs)
	assert.Equal(t, "check with P2", excerpts[0].Memo)

	out, err = executeCommand("excerpt", "remove", x.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "Removed excerpt "+x.ID)
	excerpts, err = env.wb.ListExcerpts("")
	require.NoError(t, err)
	assert.Empty(t, excerpts)
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "short", preview("short", 10))
	assert.Equal(t, "a b c", preview("a\n  b\tc", 10))
	assert.Equal(t, "abcd…", preview("abcdefgh", 5))
}
