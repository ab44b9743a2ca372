// Package graph builds the shared-tag relationship graph over a
// persona's memory cards, used by the graph visualization endpoint.
package graph

// Node is one memory card in the graph view.
type Node struct {
	ID       string   `json:"id"`
	Label    string   `json:"label"`
	Type     string   `json:"type"`
	Domains  []string `json:"domain"`
	Tags     []string `json:"tags"`
	FullText string   `json:"full_text"`
}

// Edge connects two cards that carry a common tag. SharedTag records
// the first tag that linked the pair.
type Edge struct {
	Source    string `json:"source"`
	Target    string `json:"target"`
	Type      string `json:"type"`
	SharedTag string `json:"shared_tag"`
}

// Graph is the complete visualization payload.
type Graph struct {
	Nodes   []Node `json:"nodes"`
	Edges   []Edge `json:"edges"`
	Stats   Stats  `json:"stats"`
	BuildMs int64  `json:"build_ms"`
}

// Stats summarizes the built graph.
type Stats struct {
	NodeCount int `json:"node_count"`
	EdgeCount int `json:"edge_count"`
	TagCount  int `json:"tag_count"`
}

// EdgeTypeSharedTag is the only edge type the card graph produces.
const EdgeTypeSharedTag = "SHARES_TAG"

// labelLength bounds node labels for display.
const labelLength = 40
