package domain

// CoOccurrence records two codes appearing in excerpts of the same documents.
// Code1ID always sorts before Code2ID.
type CoOccurrence struct {
	Code1ID string
	Code2ID string

	// Weight is the number of distinct documents where both codes appear.
	Weight int

	DocumentIDs []string
}

// CodeNode is a code projected into a hierarchy tree.
type CodeNode struct {
	ID        string
	Name      string
	Frequency int
	Level     CodeLevel
	Color     string

	// Children is nil for leaves.
	Children []CodeNode
}

// CodebookStats summarises the shape and usage of a codebook.
type CodebookStats struct {
	TotalCodes    int
	MainCodes     int
	ChildCodes    int
	SubchildCodes int
	TotalExcerpts int

	// AverageFrequency is the mean number of excerpts per code.
	AverageFrequency float64
}

// GraphNodeKind distinguishes theme nodes from code nodes.
type GraphNodeKind string

// Graph node kinds.
const (
	GraphNodeTheme GraphNodeKind = "theme"
	GraphNodeCode  GraphNodeKind = "code"
)

// GraphNode is a vertex in the theme/code relationship graph.
type GraphNode struct {
	ID    string
	Name  string
	Kind  GraphNodeKind
	Color string

	// Value sizes the node: member count for themes, frequency for codes.
	Value int
}

// GraphLink is a directed edge in the theme/code relationship graph.
type GraphLink struct {
	Source string
	Target string
	Weight int
}

// Graph is a node/link projection of themes and codes.
type Graph struct {
	Nodes []GraphNode
	Links []GraphLink
}
