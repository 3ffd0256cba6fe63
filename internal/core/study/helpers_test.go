package study

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/codebook/internal/analysis"
	"github.com/custodia-labs/codebook/internal/core/domain"
)

// testClock advances one second on every call.
type testClock struct{ t time.Time }

func (c *testClock) now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

func newTestStudy(t *testing.T, policy domain.DeletePolicy) *Study {
	t.Helper()
	clock := &testClock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	n := 0
	gen := func() string {
		n++
		return fmt.Sprintf("id-%03d", n)
	}
	s, err := New(domain.StudyInput{Title: "Remote work"},
		WithDeletePolicy(policy), WithClock(clock.now), WithIDGenerator(gen))
	require.NoError(t, err)
	return s
}

func mustDoc(t *testing.T, s *Study, content string) domain.Document {
	t.Helper()
	d, err := s.AddDocument("doc", content, domain.DocumentTypeText, 0)
	require.NoError(t, err)
	return d
}

func mustCode(t *testing.T, s *Study, name, parent string, level domain.CodeLevel) domain.Code {
	t.Helper()
	c, err := s.AddCode(name, parent, level)
	require.NoError(t, err)
	return c
}

func mustExcerpt(t *testing.T, s *Study, doc string, start, end int, codes ...string) domain.Excerpt {
	t.Helper()
	e, err := s.AddExcerpt(domain.TextSelection{DocumentID: doc, StartOffset: start, EndOffset: end}, codes, "")
	require.NoError(t, err)
	return e
}

// assertConsistent checks every derived field against a fresh scan.
func assertConsistent(t *testing.T, s *Study) {
	t.Helper()
	excerpts := s.Excerpts()
	for _, c := range s.Codes() {
		assert.Equal(t, analysis.CodeExcerptCount(c.ID, excerpts), c.Frequency, "frequency of %s", c.Name)
		assert.Equal(t, analysis.CodeDocumentCount(c.ID, excerpts), c.DocumentCount, "document count of %s", c.Name)
		assert.Equal(t, analysis.CodeExcerptIDs(c.ID, excerpts), c.ExcerptIDs, "excerpt ids of %s", c.Name)
		assert.Len(t, c.ExcerptIDs, c.Frequency)
	}
	for _, d := range s.Documents() {
		assert.Equal(t, analysis.DocumentExcerptIDs(d.ID, excerpts), d.ExcerptIDs)
	}
	for _, e := range excerpts {
		seen := make(map[string]bool)
		for _, id := range e.CodeIDs {
			assert.False(t, seen[id], "duplicate code %s on excerpt %s", id, e.ID)
			seen[id] = true
			_, err := s.Code(id)
			assert.NoError(t, err, "excerpt %s references missing code", e.ID)
		}
	}
}
