package graph

import (
	"errors"
	"math"
	"testing"
)

// seedTriangle builds hub with two neighbors: hub-n1 at 0.5, hub-n2 at 0.4,
// and n1-n2 at 0.6.
func seedTriangle(t *testing.T) *Store {
	t.Helper()
	s := NewStore()
	seedNode(t, s, "hub", KindNote, "hub.md")
	seedNode(t, s, "n1", KindNote, "n1.md")
	seedNode(t, s, "n2", KindPDF, "n2.pdf")
	for _, e := range []struct {
		a, b string
		w    float64
	}{
		{"hub", "n1", 0.5},
		{"hub", "n2", 0.4},
		{"n1", "n2", 0.6},
	} {
		if err := s.AddEdge(e.a, e.b, e.w, SimilaritySemantic); err != nil {
			t.Fatalf("AddEdge(%s, %s): %v", e.a, e.b, err)
		}
	}
	return s
}

func TestApplyFeedbackBoostsIncidentEdges(t *testing.T) {
	s := seedTriangle(t)

	res, err := s.ApplyFeedback(Feedback{NodeID: "hub", InteractionType: "click"}, DefaultBoostFactor)
	if err != nil {
		t.Fatalf("ApplyFeedback: %v", err)
	}
	if res.ClickCount != 1 {
		t.Errorf("ClickCount = %d, want 1", res.ClickCount)
	}
	if res.BoostsApplied != 2 {
		t.Errorf("BoostsApplied = %d, want 2", res.BoostsApplied)
	}

	e1, _ := s.Edge("hub", "n1")
	if math.Abs(e1.Weight-0.55) > 1e-9 {
		t.Errorf("hub-n1 weight = %v, want 0.55", e1.Weight)
	}
	if !e1.UserBoosted {
		t.Error("hub-n1 not marked user_boosted")
	}
	e2, _ := s.Edge("hub", "n2")
	if math.Abs(e2.Weight-0.44) > 1e-9 {
		t.Errorf("hub-n2 weight = %v, want 0.44", e2.Weight)
	}
	// The edge not touching hub is untouched.
	e3, _ := s.Edge("n1", "n2")
	if e3.Weight != 0.6 || e3.UserBoosted {
		t.Errorf("n1-n2 = (%v, %v), want (0.6, false)", e3.Weight, e3.UserBoosted)
	}
}

func TestApplyFeedbackSaturatesAtOne(t *testing.T) {
	s := seedTriangle(t)

	for i := 0; i < 10; i++ {
		if _, err := s.ApplyFeedback(Feedback{NodeID: "hub", InteractionType: "click"}, DefaultBoostFactor); err != nil {
			t.Fatalf("ApplyFeedback #%d: %v", i, err)
		}
	}
	e, _ := s.Edge("hub", "n1")
	if e.Weight != 1.0 {
		t.Errorf("weight after 10 boosts = %v, want saturated 1.0", e.Weight)
	}
	n, _ := s.Node("hub")
	if n.ClickCount != 10 {
		t.Errorf("ClickCount = %d, want 10", n.ClickCount)
	}
}

func TestApplyFeedbackUnknownNode(t *testing.T) {
	s := NewStore()
	_, err := s.ApplyFeedback(Feedback{NodeID: "ghost", InteractionType: "click"}, DefaultBoostFactor)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestApplyFeedbackMissingNodeID(t *testing.T) {
	s := NewStore()
	_, err := s.ApplyFeedback(Feedback{InteractionType: "click"}, DefaultBoostFactor)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Errorf("err = %v, want ValidationError", err)
	}
}

func TestApplyFeedbackIsolatedNode(t *testing.T) {
	s := NewStore()
	seedNode(t, s, "lone", KindNote, "lone.md")

	res, err := s.ApplyFeedback(Feedback{NodeID: "lone", InteractionType: "click"}, DefaultBoostFactor)
	if err != nil {
		t.Fatalf("ApplyFeedback: %v", err)
	}
	if res.BoostsApplied != 0 {
		t.Errorf("BoostsApplied = %d, want 0", res.BoostsApplied)
	}
	if res.ClickCount != 1 {
		t.Errorf("ClickCount = %d, want 1", res.ClickCount)
	}
}

func TestConnectionsSortedByWeight(t *testing.T) {
	s := seedTriangle(t)

	conns, err := s.Connections("hub")
	if err != nil {
		t.Fatalf("Connections: %v", err)
	}
	if len(conns) != 2 {
		t.Fatalf("len(conns) = %d, want 2", len(conns))
	}
	if conns[0].TargetNodeID != "n1" || conns[1].TargetNodeID != "n2" {
		t.Errorf("order = [%s, %s], want [n1, n2]", conns[0].TargetNodeID, conns[1].TargetNodeID)
	}
	if conns[0].Weight < conns[1].Weight {
		t.Error("connections not sorted strongest first")
	}
}

func TestConnectionsUnknownNode(t *testing.T) {
	s := NewStore()
	if _, err := s.Connections("ghost"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}
