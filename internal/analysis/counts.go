package analysis

import (
	"cmp"
	"slices"

	"github.com/custodia-labs/codebook/internal/core/domain"
)

// CodeExcerptIDs returns the ids of excerpts carrying the code, in excerpt order.
func CodeExcerptIDs(codeID string, excerpts []domain.Excerpt) []string {
	var ids []string
	for _, e := range excerpts {
		if e.HasCode(codeID) {
			ids = append(ids, e.ID)
		}
	}
	return ids
}

// CodeExcerptCount counts the excerpts carrying the code.
func CodeExcerptCount(codeID string, excerpts []domain.Excerpt) int {
	n := 0
	for _, e := range excerpts {
		if e.HasCode(codeID) {
			n++
		}
	}
	return n
}

// CodeDocumentCount counts the distinct documents among excerpts carrying the code.
func CodeDocumentCount(codeID string, excerpts []domain.Excerpt) int {
	docs := make(map[string]struct{})
	for _, e := range excerpts {
		if e.HasCode(codeID) {
			docs[e.DocumentID] = struct{}{}
		}
	}
	return len(docs)
}

// DocumentExcerptIDs returns the ids of excerpts cut from the document, in excerpt order.
func DocumentExcerptIDs(documentID string, excerpts []domain.Excerpt) []string {
	var ids []string
	for _, e := range excerpts {
		if e.DocumentID == documentID {
			ids = append(ids, e.ID)
		}
	}
	return ids
}

// CodeStats summarises the codebook. Frequencies are counted fresh from excerpts.
func CodeStats(codes []domain.Code, excerpts []domain.Excerpt) domain.CodebookStats {
	stats := domain.CodebookStats{
		TotalCodes:    len(codes),
		TotalExcerpts: len(excerpts),
	}
	total := 0
	for _, c := range codes {
		switch c.Level {
		case domain.CodeLevelMain:
			stats.MainCodes++
		case domain.CodeLevelChild:
			stats.ChildCodes++
		case domain.CodeLevelSubchild:
			stats.SubchildCodes++
		}
		total += CodeExcerptCount(c.ID, excerpts)
	}
	if len(codes) > 0 {
		stats.AverageFrequency = float64(total) / float64(len(codes))
	}
	return stats
}

// MostUsedCode returns the code applied to the most excerpts.
// Ties go to the earliest CreatedAt, then the smallest id.
// The second value is false when no known code is applied to any excerpt.
func MostUsedCode(codes []domain.Code, excerpts []domain.Excerpt) (domain.Code, bool) {
	usage := make(map[string]int)
	for _, e := range excerpts {
		for _, id := range e.CodeIDs {
			usage[id]++
		}
	}

	var best domain.Code
	bestCount := 0
	for _, c := range codes {
		n := usage[c.ID]
		if n == 0 {
			continue
		}
		if n > bestCount || (n == bestCount && earlier(c, best)) {
			best, bestCount = c, n
		}
	}
	return best, bestCount > 0
}

// TopCodes returns up to n codes ordered by cached frequency, highest first.
// A non-positive n returns every code.
func TopCodes(codes []domain.Code, n int) []domain.Code {
	out := slices.Clone(codes)
	slices.SortStableFunc(out, func(a, b domain.Code) int {
		if c := cmp.Compare(b.Frequency, a.Frequency); c != 0 {
			return c
		}
		if earlier(a, b) {
			return -1
		}
		if earlier(b, a) {
			return 1
		}
		return 0
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

func earlier(a, b domain.Code) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID < b.ID
}
