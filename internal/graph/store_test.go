package graph

import (
	"errors"
	"testing"
)

func seedNode(t *testing.T, s *Store, id string, kind Kind, sourceRef string) {
	t.Helper()
	err := s.AddNode(Node{
		ID:              id,
		Kind:            kind,
		Title:           id,
		SourceReference: sourceRef,
		Embedding:       []float64{1, 0, 0},
	})
	if err != nil {
		t.Fatalf("AddNode(%s): %v", id, err)
	}
}

func TestAddNodeDuplicate(t *testing.T) {
	s := NewStore()
	seedNode(t, s, "n1", KindNote, "a.md")

	err := s.AddNode(Node{ID: "n1", Kind: KindNote, SourceReference: "a.md"})
	if !errors.Is(err, ErrInvariant) {
		t.Errorf("duplicate AddNode err = %v, want ErrInvariant", err)
	}
	if s.NodeCount() != 1 {
		t.Errorf("NodeCount = %d, want 1", s.NodeCount())
	}
}

func TestAddEdgeSelfLoop(t *testing.T) {
	s := NewStore()
	seedNode(t, s, "n1", KindNote, "a.md")

	if err := s.AddEdge("n1", "n1", 0.5, SimilaritySemantic); !errors.Is(err, ErrInvariant) {
		t.Errorf("self-loop err = %v, want ErrInvariant", err)
	}
}

func TestAddEdgeUnknownNode(t *testing.T) {
	s := NewStore()
	seedNode(t, s, "n1", KindNote, "a.md")

	if err := s.AddEdge("n1", "ghost", 0.5, SimilaritySemantic); !errors.Is(err, ErrInvariant) {
		t.Errorf("unknown node err = %v, want ErrInvariant", err)
	}
	if s.EdgeCount() != 0 {
		t.Errorf("EdgeCount = %d, want 0", s.EdgeCount())
	}
}

func TestAddEdgeDuplicatePair(t *testing.T) {
	s := NewStore()
	seedNode(t, s, "n1", KindNote, "a.md")
	seedNode(t, s, "n2", KindNote, "b.md")

	if err := s.AddEdge("n1", "n2", 0.5, SimilaritySemantic); err != nil {
		t.Fatalf("AddEdge: %v", err)
	}
	// Same pair in either order is a duplicate.
	if err := s.AddEdge("n2", "n1", 0.7, SimilaritySemantic); !errors.Is(err, ErrInvariant) {
		t.Errorf("reversed duplicate err = %v, want ErrInvariant", err)
	}
	if e, _ := s.Edge("n1", "n2"); e.Weight != 0.5 {
		t.Errorf("duplicate insert changed weight to %v", e.Weight)
	}
}

func TestEdgeCanonicalOrder(t *testing.T) {
	s := NewStore()
	seedNode(t, s, "zz", KindNote, "z.md")
	seedNode(t, s, "aa", KindNote, "a.md")

	if err := s.AddEdge("zz", "aa", 0.6, SimilaritySemantic); err != nil {
		t.Fatalf("AddEdge: %v", err)
	}
	e, ok := s.Edge("aa", "zz")
	if !ok {
		t.Fatal("edge not found by unordered pair")
	}
	if e.Source != "aa" || e.Target != "zz" {
		t.Errorf("edge endpoints = (%s, %s), want canonical (aa, zz)", e.Source, e.Target)
	}
}

func TestAddEdgeClampsWeight(t *testing.T) {
	s := NewStore()
	seedNode(t, s, "n1", KindNote, "a.md")
	seedNode(t, s, "n2", KindNote, "b.md")

	if err := s.AddEdge("n1", "n2", 1.7, SimilaritySemantic); err != nil {
		t.Fatalf("AddEdge: %v", err)
	}
	if e, _ := s.Edge("n1", "n2"); e.Weight != 1.0 {
		t.Errorf("weight = %v, want clamped 1.0", e.Weight)
	}
}

func TestNodeBySource(t *testing.T) {
	s := NewStore()
	seedNode(t, s, "n1", KindNote, "a.md")

	n, ok := s.NodeBySource(KindNote, "a.md")
	if !ok || n.ID != "n1" {
		t.Errorf("NodeBySource = (%v, %v), want n1", n.ID, ok)
	}
	// Same reference under a different kind is a different source.
	if _, ok := s.NodeBySource(KindPDF, "a.md"); ok {
		t.Error("NodeBySource matched across kinds")
	}
}

func TestClear(t *testing.T) {
	s := NewStore()
	seedNode(t, s, "n1", KindNote, "a.md")
	seedNode(t, s, "n2", KindNote, "b.md")
	if err := s.AddEdge("n1", "n2", 0.5, SimilaritySemantic); err != nil {
		t.Fatalf("AddEdge: %v", err)
	}

	s.Clear()
	if s.NodeCount() != 0 || s.EdgeCount() != 0 {
		t.Errorf("after Clear: %d nodes, %d edges", s.NodeCount(), s.EdgeCount())
	}
	if _, ok := s.NodeBySource(KindNote, "a.md"); ok {
		t.Error("source index survived Clear")
	}
}

func TestRestoreEdgePreservesBoost(t *testing.T) {
	s := NewStore()
	seedNode(t, s, "n1", KindNote, "a.md")
	seedNode(t, s, "n2", KindNote, "b.md")

	err := s.RestoreEdge(Edge{Source: "n1", Target: "n2", Weight: 0.8, SimilarityType: SimilaritySemantic, UserBoosted: true})
	if err != nil {
		t.Fatalf("RestoreEdge: %v", err)
	}
	e, _ := s.Edge("n1", "n2")
	if !e.UserBoosted {
		t.Error("UserBoosted not preserved through restore")
	}
	if e.Weight != 0.8 {
		t.Errorf("weight = %v, want 0.8", e.Weight)
	}
}

func TestExportDeterministicOrder(t *testing.T) {
	s := NewStore()
	seedNode(t, s, "c", KindNote, "c.md")
	seedNode(t, s, "a", KindNote, "a.md")
	seedNode(t, s, "b", KindNote, "b.md")
	if err := s.AddEdge("c", "a", 0.5, SimilaritySemantic); err != nil {
		t.Fatalf("AddEdge: %v", err)
	}
	if err := s.AddEdge("b", "a", 0.5, SimilaritySemantic); err != nil {
		t.Fatalf("AddEdge: %v", err)
	}

	snap := s.Export()
	if snap.TotalNodes != 3 || snap.TotalEdges != 2 {
		t.Fatalf("totals = (%d, %d), want (3, 2)", snap.TotalNodes, snap.TotalEdges)
	}
	for i := 1; i < len(snap.Nodes); i++ {
		if snap.Nodes[i-1].ID >= snap.Nodes[i].ID {
			t.Errorf("nodes not ordered by id: %s before %s", snap.Nodes[i-1].ID, snap.Nodes[i].ID)
		}
	}
	if snap.Edges[0].Source != "a" || snap.Edges[0].Target != "b" {
		t.Errorf("first edge = (%s, %s), want (a, b)", snap.Edges[0].Source, snap.Edges[0].Target)
	}
}
