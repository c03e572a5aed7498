package graph

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// edgeKey is the canonical unordered pair for an edge: a < b always.
type edgeKey struct{ a, b string }

func keyOf(x, y string) edgeKey {
	if x < y {
		return edgeKey{x, y}
	}
	return edgeKey{y, x}
}

// Store owns the in-memory graph: the node and edge collections and every
// invariant over them. All mutation goes through the write lock; the Builder
// and feedback paths (same package) hold it across their whole critical
// section so a batch merge is atomic with respect to other writers. Readers
// share the read lock and may run concurrently with each other.
type Store struct {
	mu          sync.RWMutex
	nodes       map[string]*Node
	edges       map[edgeKey]*Edge
	adjacency   map[string]map[string]struct{}
	bySource    map[string]string // (kind, source_reference) -> node id
	lastUpdated time.Time
}

// NewStore creates an empty graph store.
func NewStore() *Store {
	s := &Store{}
	s.reset()
	return s
}

func (s *Store) reset() {
	s.nodes = make(map[string]*Node)
	s.edges = make(map[edgeKey]*Edge)
	s.adjacency = make(map[string]map[string]struct{})
	s.bySource = make(map[string]string)
	s.lastUpdated = time.Now()
}

// Clear drops all nodes and edges.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
}

// AddNode inserts a new node. Duplicate ids are rejected whole.
func (s *Store) AddNode(n Node) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addNodeLocked(&n)
}

func (s *Store) addNodeLocked(n *Node) error {
	if n.ID == "" {
		return fmt.Errorf("%w: empty node id", ErrInvariant)
	}
	if _, exists := s.nodes[n.ID]; exists {
		return fmt.Errorf("%w: duplicate node id %q", ErrInvariant, n.ID)
	}
	now := time.Now()
	if n.CreatedAt.IsZero() {
		n.CreatedAt = now
	}
	if n.LastUpdated.IsZero() {
		n.LastUpdated = now
	}
	s.nodes[n.ID] = n
	s.adjacency[n.ID] = make(map[string]struct{})
	s.bySource[sourceKey(n.Kind, n.SourceReference)] = n.ID
	s.lastUpdated = now
	return nil
}

// replaceNodeLocked swaps old for n under the same source key. User-boosted
// edges are retargeted to the new id and preserved as-is; all other edges of
// the old node are dropped (the caller recomputes them against the new
// embedding). Click history survives the content change.
func (s *Store) replaceNodeLocked(old, n *Node) {
	for neighbor := range s.adjacency[old.ID] {
		k := keyOf(old.ID, neighbor)
		e := s.edges[k]
		delete(s.edges, k)
		delete(s.adjacency[neighbor], old.ID)
		if e != nil && e.UserBoosted {
			nk := keyOf(n.ID, neighbor)
			e.Source, e.Target = nk.a, nk.b
			s.edges[nk] = e
			s.adjacency[neighbor][n.ID] = struct{}{}
			if s.adjacency[n.ID] == nil {
				s.adjacency[n.ID] = make(map[string]struct{})
			}
			s.adjacency[n.ID][neighbor] = struct{}{}
		}
	}
	delete(s.adjacency, old.ID)
	delete(s.nodes, old.ID)

	n.ClickCount = old.ClickCount
	n.CreatedAt = old.CreatedAt
	n.LastUpdated = time.Now()
	if s.adjacency[n.ID] == nil {
		s.adjacency[n.ID] = make(map[string]struct{})
	}
	s.nodes[n.ID] = n
	s.bySource[sourceKey(n.Kind, n.SourceReference)] = n.ID
	s.lastUpdated = n.LastUpdated
}

// Node returns a copy of the node with the given id.
func (s *Store) Node(id string) (Node, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.nodes[id]
	if !ok {
		return Node{}, false
	}
	return *n, true
}

// NodeBySource returns the node ingested from the given source, if any.
func (s *Store) NodeBySource(kind Kind, sourceRef string) (Node, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.bySource[sourceKey(kind, sourceRef)]
	if !ok {
		return Node{}, false
	}
	return *s.nodes[id], true
}

// Nodes returns all nodes ordered by id.
func (s *Store) Nodes() []Node {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Node, 0, len(s.nodes))
	for _, n := range s.nodes {
		out = append(out, *n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// AddEdge creates a semantic edge between two existing nodes. The write
// either fully commits or is rejected: self-loops, unknown node ids, and
// duplicate pairs all fail without touching state. Weight is clamped to
// [0, 1].
func (s *Store) AddEdge(a, b string, weight float64, similarityType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.addEdgeLocked(a, b, weight, similarityType)
	return err
}

func (s *Store) addEdgeLocked(a, b string, weight float64, similarityType string) (*Edge, error) {
	if a == b {
		return nil, fmt.Errorf("%w: self-loop on %q", ErrInvariant, a)
	}
	if _, ok := s.nodes[a]; !ok {
		return nil, fmt.Errorf("%w: edge references unknown node %q", ErrInvariant, a)
	}
	if _, ok := s.nodes[b]; !ok {
		return nil, fmt.Errorf("%w: edge references unknown node %q", ErrInvariant, b)
	}
	k := keyOf(a, b)
	if _, exists := s.edges[k]; exists {
		return nil, fmt.Errorf("%w: duplicate edge %s-%s", ErrInvariant, k.a, k.b)
	}
	e := &Edge{
		Source:         k.a,
		Target:         k.b,
		Weight:         clamp01(weight),
		SimilarityType: similarityType,
		CreatedAt:      time.Now(),
	}
	s.edges[k] = e
	s.adjacency[k.a][k.b] = struct{}{}
	s.adjacency[k.b][k.a] = struct{}{}
	s.lastUpdated = e.CreatedAt
	return e, nil
}

// RestoreEdge re-inserts a previously exported edge, preserving its weight,
// boost flag, and creation time. Used by the persistence layer on load.
func (s *Store) RestoreEdge(e Edge) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	inserted, err := s.addEdgeLocked(e.Source, e.Target, e.Weight, e.SimilarityType)
	if err != nil {
		return err
	}
	inserted.UserBoosted = e.UserBoosted
	if !e.CreatedAt.IsZero() {
		inserted.CreatedAt = e.CreatedAt
	}
	return nil
}

// HasEdge reports whether an edge exists for the unordered pair (a, b).
func (s *Store) HasEdge(a, b string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.edges[keyOf(a, b)]
	return ok
}

// Edge returns a copy of the edge for the unordered pair (a, b).
func (s *Store) Edge(a, b string) (Edge, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.edges[keyOf(a, b)]
	if !ok {
		return Edge{}, false
	}
	return *e, true
}

// EdgesOf returns all edges incident to the given node, ordered by the
// neighbor id.
func (s *Store) EdgesOf(id string) []Edge {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.edgesOfLocked(id)
}

func (s *Store) edgesOfLocked(id string) []Edge {
	neighbors := s.adjacency[id]
	out := make([]Edge, 0, len(neighbors))
	for neighbor := range neighbors {
		out = append(out, *s.edges[keyOf(id, neighbor)])
	}
	sort.Slice(out, func(i, j int) bool {
		return otherEnd(out[i], id) < otherEnd(out[j], id)
	})
	return out
}

func otherEnd(e Edge, id string) string {
	if e.Source == id {
		return e.Target
	}
	return e.Source
}

// Edges returns all edges ordered by (source, target).
func (s *Store) Edges() []Edge {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Edge, 0, len(s.edges))
	for _, e := range s.edges {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Source != out[j].Source {
			return out[i].Source < out[j].Source
		}
		return out[i].Target < out[j].Target
	})
	return out
}

// NodeCount returns the number of nodes.
func (s *Store) NodeCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.nodes)
}

// EdgeCount returns the number of edges.
func (s *Store) EdgeCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.edges)
}

// LastUpdated returns the time of the most recent mutation.
func (s *Store) LastUpdated() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastUpdated
}

func clamp01(w float64) float64 {
	if w < 0 {
		return 0
	}
	if w > 1 {
		return 1
	}
	return w
}
