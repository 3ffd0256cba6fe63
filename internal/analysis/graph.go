package analysis

import "github.com/custodia-labs/codebook/internal/core/domain"

// ThemeGraph projects themes and codes into a node/link graph.
//
// Theme nodes are valued by member count and code nodes by frequency
// (minimum 1). Links run from parent code to child code, and from theme to
// member code weighted by the member's frequency. Links to codes that no
// longer exist are dropped.
func ThemeGraph(themes []domain.Theme, codes []domain.Code) domain.Graph {
	var g domain.Graph
	byID := make(map[string]domain.Code, len(codes))
	for _, c := range codes {
		byID[c.ID] = c
	}

	for _, t := range themes {
		g.Nodes = append(g.Nodes, domain.GraphNode{
			ID:    t.ID,
			Name:  t.Name,
			Kind:  domain.GraphNodeTheme,
			Color: t.Color,
			Value: len(t.CodeIDs),
		})
	}
	for _, c := range codes {
		g.Nodes = append(g.Nodes, domain.GraphNode{
			ID:    c.ID,
			Name:  c.Name,
			Kind:  domain.GraphNodeCode,
			Color: c.Color,
			Value: max(c.Frequency, 1),
		})
		if _, ok := byID[c.ParentID]; ok {
			g.Links = append(g.Links, domain.GraphLink{Source: c.ParentID, Target: c.ID, Weight: 1})
		}
	}
	for _, t := range themes {
		for _, id := range t.CodeIDs {
			c, ok := byID[id]
			if !ok {
				continue
			}
			g.Links = append(g.Links, domain.GraphLink{Source: t.ID, Target: id, Weight: max(c.Frequency, 1)})
		}
	}
	return g
}
