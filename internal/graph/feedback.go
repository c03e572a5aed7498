package graph

import (
	"fmt"
	"sort"
	"time"
)

// DefaultBoostFactor is the multiplier applied to incident edge weights on
// user interaction.
const DefaultBoostFactor = 1.1

// Feedback is a decoded user interaction event. Duration is accepted for
// forward compatibility but does not weight the boost in the current policy;
// future policies may scale the boost by attention time.
type Feedback struct {
	NodeID          string  `json:"node_id"`
	InteractionType string  `json:"interaction_type"`
	Duration        float64 `json:"duration,omitempty"`
}

// Connection describes one edge from the perspective of a given node.
type Connection struct {
	TargetNodeID   string  `json:"target_node_id"`
	TargetTitle    string  `json:"target_title"`
	Weight         float64 `json:"weight"`
	SimilarityType string  `json:"similarity_type"`
	UserBoosted    bool    `json:"user_boosted"`
}

// FeedbackResult reports what a feedback event changed.
type FeedbackResult struct {
	NodeID        string       `json:"node_id"`
	ClickCount    int          `json:"click_count"`
	BoostsApplied int          `json:"boosts_applied"`
	Connections   []Connection `json:"updated_connections"`
}

// ApplyFeedback records an interaction with a node: the node's click count is
// incremented and every incident edge is strengthened by factor, clamped to
// 1.0, and marked user_boosted.
//
// The fan-out to all incident edges is deliberate: repeated attention on a
// hub strengthens all of its connections, not a single picked edge. Boosts
// are monotonic and saturating — weight never decreases here and never
// exceeds 1.0.
func (s *Store) ApplyFeedback(ev Feedback, factor float64) (FeedbackResult, error) {
	if ev.NodeID == "" {
		return FeedbackResult{}, &ValidationError{Reason: "missing node_id"}
	}
	if factor <= 0 {
		factor = DefaultBoostFactor
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.nodes[ev.NodeID]
	if !ok {
		return FeedbackResult{}, fmt.Errorf("%w: %q", ErrNotFound, ev.NodeID)
	}

	n.ClickCount++
	res := FeedbackResult{NodeID: n.ID, ClickCount: n.ClickCount}

	for neighbor := range s.adjacency[n.ID] {
		e := s.edges[keyOf(n.ID, neighbor)]
		e.Weight = clamp01(e.Weight * factor)
		e.UserBoosted = true
		res.BoostsApplied++
	}
	res.Connections = s.connectionsLocked(n.ID)
	s.lastUpdated = time.Now()
	return res, nil
}

// Connections returns the node's edges as connection views, strongest first.
func (s *Store) Connections(nodeID string) ([]Connection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.nodes[nodeID]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, nodeID)
	}
	return s.connectionsLocked(nodeID), nil
}

func (s *Store) connectionsLocked(nodeID string) []Connection {
	neighbors := s.adjacency[nodeID]
	out := make([]Connection, 0, len(neighbors))
	for neighbor := range neighbors {
		e := s.edges[keyOf(nodeID, neighbor)]
		title := neighbor
		if t, ok := s.nodes[neighbor]; ok {
			title = t.Title
		}
		out = append(out, Connection{
			TargetNodeID:   neighbor,
			TargetTitle:    title,
			Weight:         e.Weight,
			SimilarityType: e.SimilarityType,
			UserBoosted:    e.UserBoosted,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Weight != out[j].Weight {
			return out[i].Weight > out[j].Weight
		}
		return out[i].TargetNodeID < out[j].TargetNodeID
	})
	return out
}
