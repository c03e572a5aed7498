package graph

import (
	"sort"
	"time"
)

// Snapshot is the full graph export consumed by the visualization client and
// the persistence layer. Field names on Node and Edge are part of the wire
// contract — the client keys rendering on weight, user_boosted, click_count,
// and kind.
type Snapshot struct {
	Nodes       []Node    `json:"nodes"`
	Edges       []Edge    `json:"edges"`
	TotalNodes  int       `json:"total_nodes"`
	TotalEdges  int       `json:"total_edges"`
	LastUpdated time.Time `json:"last_updated"`
}

// Export returns a consistent snapshot of the whole graph, nodes ordered by
// id and edges by (source, target).
func (s *Store) Export() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		Nodes:       make([]Node, 0, len(s.nodes)),
		Edges:       make([]Edge, 0, len(s.edges)),
		TotalNodes:  len(s.nodes),
		TotalEdges:  len(s.edges),
		LastUpdated: s.lastUpdated,
	}
	for _, n := range s.nodes {
		snap.Nodes = append(snap.Nodes, *n)
	}
	for _, e := range s.edges {
		snap.Edges = append(snap.Edges, *e)
	}
	sortNodes(snap.Nodes)
	sortEdges(snap.Edges)
	return snap
}

func sortNodes(ns []Node) {
	sort.Slice(ns, func(i, j int) bool { return ns[i].ID < ns[j].ID })
}

func sortEdges(es []Edge) {
	sort.Slice(es, func(i, j int) bool {
		if es[i].Source != es[j].Source {
			return es[i].Source < es[j].Source
		}
		return es[i].Target < es[j].Target
	})
}
