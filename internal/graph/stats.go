package graph

import "sort"

// DefaultSurpriseThreshold is the minimum edge weight for a connection to
// count as surprising.
const DefaultSurpriseThreshold = 0.3

// Stats is a read-only aggregate view of the graph.
type Stats struct {
	TotalNodes         int             `json:"total_nodes"`
	TotalEdges         int             `json:"total_edges"`
	Density            float64         `json:"density"`
	TotalClicks        int             `json:"total_clicks"`
	AvgClicksPerNode   float64         `json:"avg_clicks_per_node"`
	NodeKinds          map[Kind]int    `json:"node_kinds"`
	AvgEdgeWeight      float64         `json:"avg_edge_weight,omitempty"`
	MaxEdgeWeight      float64         `json:"max_edge_weight,omitempty"`
	MinEdgeWeight      float64         `json:"min_edge_weight,omitempty"`
	MostConnectedNodes []ConnectedNode `json:"most_connected_nodes"`
}

// ConnectedNode is one entry in the most-connected ranking.
type ConnectedNode struct {
	NodeID      string `json:"node_id"`
	Title       string `json:"title"`
	Connections int    `json:"connections"`
}

// SurprisingConnection is a high-weight edge between nodes whose keyword sets
// do not overlap — a strong semantic link the keywords would not predict.
type SurprisingConnection struct {
	SourceID      string  `json:"source_id"`
	TargetID      string  `json:"target_id"`
	SourceTitle   string  `json:"source_title"`
	TargetTitle   string  `json:"target_title"`
	SourceKind    Kind    `json:"source_kind"`
	TargetKind    Kind    `json:"target_kind"`
	Weight        float64 `json:"weight"`
	SurpriseScore float64 `json:"surprise_score"`
}

// Stats computes aggregate graph metrics. topN bounds the most-connected
// ranking; ties break by node id so the output is deterministic. Never
// mutates the store.
func (s *Store) Stats(topN int) Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := Stats{
		TotalNodes: len(s.nodes),
		TotalEdges: len(s.edges),
		NodeKinds:  make(map[Kind]int),
	}

	// density = 2E / (N * (N-1)), zero below two nodes
	if st.TotalNodes >= 2 {
		st.Density = float64(2*st.TotalEdges) / float64(st.TotalNodes*(st.TotalNodes-1))
	}

	for _, n := range s.nodes {
		st.NodeKinds[n.Kind]++
		st.TotalClicks += n.ClickCount
	}
	if st.TotalNodes > 0 {
		st.AvgClicksPerNode = float64(st.TotalClicks) / float64(st.TotalNodes)
	}

	if st.TotalEdges > 0 {
		var sum float64
		st.MinEdgeWeight = 1
		for _, e := range s.edges {
			sum += e.Weight
			if e.Weight > st.MaxEdgeWeight {
				st.MaxEdgeWeight = e.Weight
			}
			if e.Weight < st.MinEdgeWeight {
				st.MinEdgeWeight = e.Weight
			}
		}
		st.AvgEdgeWeight = sum / float64(st.TotalEdges)
	}

	ranked := make([]ConnectedNode, 0, len(s.nodes))
	for id, n := range s.nodes {
		ranked = append(ranked, ConnectedNode{
			NodeID:      id,
			Title:       n.Title,
			Connections: len(s.adjacency[id]),
		})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Connections != ranked[j].Connections {
			return ranked[i].Connections > ranked[j].Connections
		}
		return ranked[i].NodeID < ranked[j].NodeID
	})
	if topN > 0 && len(ranked) > topN {
		ranked = ranked[:topN]
	}
	st.MostConnectedNodes = ranked
	return st
}

// SurprisingConnections returns edges at or above the weight threshold whose
// endpoint keyword sets are disjoint, ranked by surprise score. A cross-kind
// link (say a note to a PDF) scores 20% higher than one within a kind.
func (s *Store) SurprisingConnections(threshold float64, limit int) []SurprisingConnection {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if threshold <= 0 {
		threshold = DefaultSurpriseThreshold
	}

	var out []SurprisingConnection
	for k, e := range s.edges {
		if e.Weight < threshold {
			continue
		}
		src, dst := s.nodes[k.a], s.nodes[k.b]
		if keywordsOverlap(src.Keywords, dst.Keywords) {
			continue
		}
		score := e.Weight
		if src.Kind != dst.Kind {
			score *= 1.2
		}
		out = append(out, SurprisingConnection{
			SourceID:      src.ID,
			TargetID:      dst.ID,
			SourceTitle:   src.Title,
			TargetTitle:   dst.Title,
			SourceKind:    src.Kind,
			TargetKind:    dst.Kind,
			Weight:        e.Weight,
			SurpriseScore: score,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SurpriseScore != out[j].SurpriseScore {
			return out[i].SurpriseScore > out[j].SurpriseScore
		}
		if out[i].SourceID != out[j].SourceID {
			return out[i].SourceID < out[j].SourceID
		}
		return out[i].TargetID < out[j].TargetID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func keywordsOverlap(a, b []string) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	set := make(map[string]struct{}, len(a))
	for _, kw := range a {
		set[kw] = struct{}{}
	}
	for _, kw := range b {
		if _, ok := set[kw]; ok {
			return true
		}
	}
	return false
}
