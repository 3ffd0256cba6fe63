package study

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/codebook/internal/analysis"
	"github.com/custodia-labs/codebook/internal/core/domain"
)

func TestAddCode(t *testing.T) {
	s := newTestStudy(t, domain.DeleteCascade)

	c, err := s.AddCode("Work", "", "")
	require.NoError(t, err)
	assert.Equal(t, domain.CodeLevelMain, c.Level)
	assert.Equal(t, "#3b82f6", c.Color)
	assert.Zero(t, c.Frequency)
	assert.Zero(t, c.DocumentCount)
	assert.Empty(t, c.ExcerptIDs)

	child, err := s.AddCode("Meetings", c.ID, domain.CodeLevelChild)
	require.NoError(t, err)
	assert.Equal(t, "#22c55e", child.Color)

	sub, err := s.AddCode("Standups", child.ID, domain.CodeLevelSubchild)
	require.NoError(t, err)
	assert.Equal(t, "#eab308", sub.Color)
}

func TestAddCode_Rejects(t *testing.T) {
	s := newTestStudy(t, domain.DeleteCascade)
	main := mustCode(t, s, "Work", "", domain.CodeLevelMain)
	child := mustCode(t, s, "Meetings", main.ID, domain.CodeLevelChild)

	tests := []struct {
		name   string
		code   string
		parent string
		level  domain.CodeLevel
		want   error
	}{
		{"duplicate name ignoring case", "WORK", "", domain.CodeLevelMain, domain.ErrDuplicateName},
		{"empty name", " ", "", domain.CodeLevelMain, domain.ErrInvalidInput},
		{"unknown level", "X", "", domain.CodeLevel("leaf"), domain.ErrInvalidInput},
		{"main with parent", "X", main.ID, domain.CodeLevelMain, domain.ErrInvalidHierarchy},
		{"child without parent", "X", "", domain.CodeLevelChild, domain.ErrInvalidHierarchy},
		{"child under child", "X", child.ID, domain.CodeLevelChild, domain.ErrInvalidHierarchy},
		{"subchild under main", "X", main.ID, domain.CodeLevelSubchild, domain.ErrInvalidHierarchy},
		{"unknown parent", "X", "ghost", domain.CodeLevelChild, domain.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.AddCode(tt.code, tt.parent, tt.level)
			assert.ErrorIs(t, err, tt.want)
			assert.Len(t, s.Codes(), 2)
		})
	}
}

func TestRenameCode(t *testing.T) {
	s := newTestStudy(t, domain.DeleteCascade)
	d := mustDoc(t, s, "hello world")
	a := mustCode(t, s, "Alpha", "", domain.CodeLevelMain)
	mustCode(t, s, "Beta", "", domain.CodeLevelMain)
	mustExcerpt(t, s, d.ID, 0, 5, a.ID)

	require.NoError(t, s.RenameCode(a.ID, "ALPHA"), "changing case of its own name is allowed")
	assert.ErrorIs(t, s.RenameCode(a.ID, "beta"), domain.ErrDuplicateName)
	assert.ErrorIs(t, s.RenameCode("ghost", "x"), domain.ErrNotFound)

	c, _ := s.Code(a.ID)
	assert.Equal(t, "ALPHA", c.Name)
	assert.Equal(t, 1, c.Frequency)
}

func TestUpdateCode(t *testing.T) {
	s := newTestStudy(t, domain.DeleteCascade)
	a := mustCode(t, s, "Alpha", "", domain.CodeLevelMain)

	desc := "first letter"
	require.NoError(t, s.UpdateCode(a.ID, domain.CodeUpdate{Description: &desc}))
	c, _ := s.Code(a.ID)
	assert.Equal(t, "first letter", c.Description)
	assert.Equal(t, "#3b82f6", c.Color)

	color := "#000000"
	require.NoError(t, s.UpdateCode(a.ID, domain.CodeUpdate{Color: &color}))
	c, _ = s.Code(a.ID)
	assert.Equal(t, "#000000", c.Color)
}

// TestScenario_LegacyDeleteAndUndo follows the legacy behaviour: deleting a
// main code removes its child, and undo brings back the main code alone.
func TestScenario_LegacyDeleteAndUndo(t *testing.T) {
	s := newTestStudy(t, domain.DeleteLegacy)
	d := mustDoc(t, s, "hello world")
	main := mustCode(t, s, "Main", "", domain.CodeLevelMain)
	child := mustCode(t, s, "Child", main.ID, domain.CodeLevelChild)
	other := mustCode(t, s, "Other", "", domain.CodeLevelMain)
	e := mustExcerpt(t, s, d.ID, 0, 5, child.ID, other.ID)
	mustExcerpt(t, s, d.ID, 6, 11, main.ID)

	removed, err := s.DeleteCode(main.ID)
	require.NoError(t, err)
	require.Len(t, removed, 2)
	assert.Equal(t, main.ID, removed[0].ID)
	assert.Equal(t, child.ID, removed[1].ID)

	_, err = s.Code(child.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	got, _ := s.Excerpt(e.ID)
	assert.Equal(t, []string{other.ID}, got.CodeIDs)
	assertConsistent(t, s)

	restored, err := s.UndoDeleteCode()
	require.NoError(t, err)
	require.Len(t, restored, 1)
	assert.Equal(t, main.ID, restored[0].ID)

	_, err = s.Code(child.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound, "child is not restored")
	c, _ := s.Code(main.ID)
	assert.Zero(t, c.Frequency, "excerpt links are not restored")
	assertConsistent(t, s)

	_, err = s.UndoDeleteCode()
	assert.ErrorIs(t, err, domain.ErrNothingToUndo)
}

func TestLegacyDelete_OneLevelOnly(t *testing.T) {
	s := newTestStudy(t, domain.DeleteLegacy)
	main := mustCode(t, s, "Main", "", domain.CodeLevelMain)
	child := mustCode(t, s, "Child", main.ID, domain.CodeLevelChild)
	sub := mustCode(t, s, "Sub", child.ID, domain.CodeLevelSubchild)

	_, err := s.DeleteCode(main.ID)
	require.NoError(t, err)

	_, err = s.Code(child.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	got, err := s.Code(sub.ID)
	require.NoError(t, err, "grandchildren survive a legacy delete")
	assert.Empty(t, got.ParentID)
	assert.Equal(t, domain.CodeLevelMain, got.Level)

	_, err = Load(s.Data())
	assert.NoError(t, err)
}

func TestLegacyUndo_LiftsCodeWhoseParentIsGone(t *testing.T) {
	s := newTestStudy(t, domain.DeleteLegacy)
	main := mustCode(t, s, "Main", "", domain.CodeLevelMain)
	target := mustCode(t, s, "Target", "", domain.CodeLevelMain)
	child := mustCode(t, s, "Child", main.ID, domain.CodeLevelChild)

	_, err := s.DeleteCode(child.ID)
	require.NoError(t, err)
	require.NoError(t, s.MergeCodes(main.ID, target.ID))

	restored, err := s.UndoDeleteCode()
	require.NoError(t, err)
	require.Len(t, restored, 1)
	assert.Empty(t, restored[0].ParentID)
	assert.Equal(t, domain.CodeLevelMain, restored[0].Level)

	tree := analysis.BuildHierarchicalTree(s.Codes())
	names := make([]string, 0, len(tree))
	for _, n := range tree {
		names = append(names, n.Name)
	}
	assert.ElementsMatch(t, []string{"Target", "Child"}, names)

	_, err = Load(s.Data())
	assert.NoError(t, err)
}

func TestLegacyUndo_KeepsLiveParent(t *testing.T) {
	s := newTestStudy(t, domain.DeleteLegacy)
	main := mustCode(t, s, "Main", "", domain.CodeLevelMain)
	child := mustCode(t, s, "Child", main.ID, domain.CodeLevelChild)

	_, err := s.DeleteCode(child.ID)
	require.NoError(t, err)

	restored, err := s.UndoDeleteCode()
	require.NoError(t, err)
	require.Len(t, restored, 1)
	assert.Equal(t, main.ID, restored[0].ParentID)
	assert.Equal(t, domain.CodeLevelChild, restored[0].Level)
}

func TestCascadeDeleteAndUndo_FullFidelity(t *testing.T) {
	s := newTestStudy(t, domain.DeleteCascade)
	d := mustDoc(t, s, "hello world")
	main := mustCode(t, s, "Main", "", domain.CodeLevelMain)
	child := mustCode(t, s, "Child", main.ID, domain.CodeLevelChild)
	sub := mustCode(t, s, "Sub", child.ID, domain.CodeLevelSubchild)
	other := mustCode(t, s, "Other", "", domain.CodeLevelMain)
	e1 := mustExcerpt(t, s, d.ID, 0, 5, child.ID, other.ID)
	e2 := mustExcerpt(t, s, d.ID, 6, 11, sub.ID, main.ID)
	th, err := s.AddTheme("Theme", "", "")
	require.NoError(t, err)
	require.NoError(t, s.AddCodeToTheme(th.ID, sub.ID))
	_, err = s.AddMemo("about child", domain.MemoTargetCode, child.ID)
	require.NoError(t, err)
	before := s.Data()

	removed, err := s.DeleteCode(main.ID)
	require.NoError(t, err)
	assert.Len(t, removed, 3)
	assert.Len(t, s.Codes(), 1)
	assert.Empty(t, s.Memos())
	got, _ := s.Excerpt(e2.ID)
	assert.Empty(t, got.CodeIDs, "excerpts left without codes are kept")
	assert.Equal(t, 1, s.UndoDepth())
	assertConsistent(t, s)

	restored, err := s.UndoDeleteCode()
	require.NoError(t, err)
	assert.Len(t, restored, 3)
	assert.Zero(t, s.UndoDepth())

	after := s.Data()
	assert.ElementsMatch(t, before.Codes, after.Codes)
	got, _ = s.Excerpt(e1.ID)
	assert.ElementsMatch(t, []string{child.ID, other.ID}, got.CodeIDs)
	got, _ = s.Excerpt(e2.ID)
	assert.ElementsMatch(t, []string{sub.ID, main.ID}, got.CodeIDs)
	tt, _ := s.Theme(th.ID)
	assert.Equal(t, []string{sub.ID}, tt.CodeIDs)
	assert.Equal(t, before.Memos, after.Memos)
	assertConsistent(t, s)
}

func TestUndo_NameCollisionLeavesStack(t *testing.T) {
	s := newTestStudy(t, domain.DeleteCascade)
	a := mustCode(t, s, "Alpha", "", domain.CodeLevelMain)

	_, err := s.DeleteCode(a.ID)
	require.NoError(t, err)
	mustCode(t, s, "alpha", "", domain.CodeLevelMain)

	_, err = s.UndoDeleteCode()
	assert.ErrorIs(t, err, domain.ErrDuplicateName)
	assert.Equal(t, 1, s.UndoDepth())
	assert.Len(t, s.Codes(), 1)
}

func TestUndo_MissingParent(t *testing.T) {
	s := newTestStudy(t, domain.DeleteCascade)
	main := mustCode(t, s, "Main", "", domain.CodeLevelMain)
	child := mustCode(t, s, "Child", main.ID, domain.CodeLevelChild)
	other := mustCode(t, s, "Other", "", domain.CodeLevelMain)

	_, err := s.DeleteCode(child.ID)
	require.NoError(t, err)
	require.NoError(t, s.MergeCodes(main.ID, other.ID))

	_, err = s.UndoDeleteCode()
	assert.ErrorIs(t, err, domain.ErrInvalidHierarchy)
	assert.Equal(t, 1, s.UndoDepth())
	assert.Len(t, s.Codes(), 1)
}

func TestUndo_IsPerStudy(t *testing.T) {
	s1 := newTestStudy(t, domain.DeleteCascade)
	s2 := newTestStudy(t, domain.DeleteCascade)
	a := mustCode(t, s1, "Alpha", "", domain.CodeLevelMain)

	_, err := s1.DeleteCode(a.ID)
	require.NoError(t, err)

	_, err = s2.UndoDeleteCode()
	assert.ErrorIs(t, err, domain.ErrNothingToUndo)
	assert.Equal(t, 1, s1.UndoDepth())
}

func TestDeleteCode_NotFound(t *testing.T) {
	s := newTestStudy(t, domain.DeleteCascade)

	_, err := s.DeleteCode("ghost")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Zero(t, s.UndoDepth())
}

func TestMergeCodes(t *testing.T) {
	s := newTestStudy(t, domain.DeleteCascade)
	d1 := mustDoc(t, s, "hello world")
	d2 := mustDoc(t, s, "goodbye world")
	a := mustCode(t, s, "A", "", domain.CodeLevelMain)
	b := mustCode(t, s, "B", "", domain.CodeLevelMain)
	e1 := mustExcerpt(t, s, d1.ID, 0, 5, a.ID)
	e2 := mustExcerpt(t, s, d1.ID, 6, 11, a.ID, b.ID)
	e3 := mustExcerpt(t, s, d2.ID, 0, 7, b.ID)

	require.NoError(t, s.MergeCodes(a.ID, b.ID))

	_, err := s.Code(a.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	merged, _ := s.Code(b.ID)
	assert.ElementsMatch(t, []string{e1.ID, e2.ID, e3.ID}, merged.ExcerptIDs)
	assert.Equal(t, 3, merged.Frequency)
	assert.Equal(t, 2, merged.DocumentCount)

	for _, id := range []string{e1.ID, e2.ID, e3.ID} {
		e, _ := s.Excerpt(id)
		assert.NotContains(t, e.CodeIDs, a.ID)
		count := 0
		for _, cid := range e.CodeIDs {
			if cid == b.ID {
				count++
			}
		}
		assert.Equal(t, 1, count, "excerpt %s", id)
	}
	assert.Zero(t, s.UndoDepth(), "merge records no undo")
	assertConsistent(t, s)
}

func TestMergeCodes_TransfersThemesMemosAndChildren(t *testing.T) {
	s := newTestStudy(t, domain.DeleteCascade)
	a := mustCode(t, s, "A", "", domain.CodeLevelMain)
	b := mustCode(t, s, "B", "", domain.CodeLevelMain)
	child := mustCode(t, s, "A child", a.ID, domain.CodeLevelChild)
	t1, _ := s.AddTheme("T1", "", "")
	t2, _ := s.AddTheme("T2", "", "")
	require.NoError(t, s.AddCodeToTheme(t1.ID, a.ID))
	require.NoError(t, s.AddCodeToTheme(t2.ID, a.ID))
	require.NoError(t, s.AddCodeToTheme(t2.ID, b.ID))
	memo, err := s.AddMemo("note", domain.MemoTargetCode, a.ID)
	require.NoError(t, err)

	require.NoError(t, s.MergeCodes(a.ID, b.ID))

	got, _ := s.Code(child.ID)
	assert.Equal(t, b.ID, got.ParentID)
	th1, _ := s.Theme(t1.ID)
	assert.Equal(t, []string{b.ID}, th1.CodeIDs)
	th2, _ := s.Theme(t2.ID)
	assert.Equal(t, []string{b.ID}, th2.CodeIDs)
	m, ok := s.MemoFor(domain.MemoTargetCode, b.ID)
	require.True(t, ok)
	assert.Equal(t, memo.ID, m.ID)
}

func TestMergeCodes_Rejects(t *testing.T) {
	s := newTestStudy(t, domain.DeleteCascade)
	a := mustCode(t, s, "A", "", domain.CodeLevelMain)
	child := mustCode(t, s, "A child", a.ID, domain.CodeLevelChild)
	mustCode(t, s, "Sub", child.ID, domain.CodeLevelSubchild)
	b := mustCode(t, s, "B", "", domain.CodeLevelMain)

	assert.ErrorIs(t, s.MergeCodes(a.ID, a.ID), domain.ErrInvalidInput)
	assert.ErrorIs(t, s.MergeCodes("ghost", a.ID), domain.ErrNotFound)
	assert.ErrorIs(t, s.MergeCodes(a.ID, "ghost"), domain.ErrNotFound)
	assert.ErrorIs(t, s.MergeCodes(child.ID, b.ID), domain.ErrInvalidHierarchy)
	assert.Len(t, s.Codes(), 4)
}
