package analysis

import (
	"slices"
	"strings"

	"github.com/custodia-labs/codebook/internal/core/domain"
)

// CoOccurrences pairs codes that appear in excerpts of the same document.
//
// Pairs are keyed by sorted id so (a,b) and (b,a) collapse into one entry.
// Weight is the number of distinct documents holding both codes. Code ids
// missing from codes are ignored. Results are ordered by weight, highest
// first, then by Code1ID and Code2ID.
func CoOccurrences(codes []domain.Code, excerpts []domain.Excerpt) []domain.CoOccurrence {
	known := make(map[string]struct{}, len(codes))
	for _, c := range codes {
		known[c.ID] = struct{}{}
	}

	var docOrder []string
	docCodes := make(map[string][]string)
	for _, e := range excerpts {
		if _, seen := docCodes[e.DocumentID]; !seen {
			docOrder = append(docOrder, e.DocumentID)
			docCodes[e.DocumentID] = nil
		}
		for _, id := range e.CodeIDs {
			if _, ok := known[id]; !ok {
				continue
			}
			if !slices.Contains(docCodes[e.DocumentID], id) {
				docCodes[e.DocumentID] = append(docCodes[e.DocumentID], id)
			}
		}
	}

	pairs := make(map[[2]string]*domain.CoOccurrence)
	for _, docID := range docOrder {
		ids := slices.Clone(docCodes[docID])
		slices.Sort(ids)
		for i := 0; i < len(ids); i++ {
			for j := i + 1; j < len(ids); j++ {
				key := [2]string{ids[i], ids[j]}
				p, ok := pairs[key]
				if !ok {
					p = &domain.CoOccurrence{Code1ID: ids[i], Code2ID: ids[j]}
					pairs[key] = p
				}
				p.Weight++
				p.DocumentIDs = append(p.DocumentIDs, docID)
			}
		}
	}

	out := make([]domain.CoOccurrence, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, *p)
	}
	slices.SortFunc(out, func(a, b domain.CoOccurrence) int {
		if a.Weight != b.Weight {
			return b.Weight - a.Weight
		}
		if c := strings.Compare(a.Code1ID, b.Code1ID); c != 0 {
			return c
		}
		return strings.Compare(a.Code2ID, b.Code2ID)
	})
	return out
}
