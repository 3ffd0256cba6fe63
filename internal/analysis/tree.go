package analysis

import "github.com/custodia-labs/codebook/internal/core/domain"

// BuildHierarchicalTree nests codes under their parents.
// Roots are codes without a parent, in input order. Leaves have nil Children.
// Parent edges are assumed acyclic, which the level rules guarantee.
func BuildHierarchicalTree(codes []domain.Code) []domain.CodeNode {
	children := make(map[string][]domain.Code)
	var roots []domain.Code
	for _, c := range codes {
		if c.ParentID == "" {
			roots = append(roots, c)
			continue
		}
		children[c.ParentID] = append(children[c.ParentID], c)
	}

	var build func(c domain.Code) domain.CodeNode
	build = func(c domain.Code) domain.CodeNode {
		node := domain.CodeNode{
			ID:        c.ID,
			Name:      c.Name,
			Frequency: c.Frequency,
			Level:     c.Level,
			Color:     c.Color,
		}
		for _, child := range children[c.ID] {
			node.Children = append(node.Children, build(child))
		}
		return node
	}

	nodes := make([]domain.CodeNode, 0, len(roots))
	for _, r := range roots {
		nodes = append(nodes, build(r))
	}
	return nodes
}

// FlattenTree walks the forest depth first, calling visit with each node's depth.
func FlattenTree(nodes []domain.CodeNode, visit func(node domain.CodeNode, depth int)) {
	var walk func(ns []domain.CodeNode, depth int)
	walk = func(ns []domain.CodeNode, depth int) {
		for _, n := range ns {
			visit(n, depth)
			walk(n.Children, depth+1)
		}
	}
	walk(nodes, 0)
}
