package embed

import (
	"context"
	"math"
	"testing"
)

func TestHashingDeterministic(t *testing.T) {
	h := NewHashingProvider(256)
	a, err := h.Embed(context.Background(), "go concurrency patterns with channels")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	b, err := h.Embed(context.Background(), "go concurrency patterns with channels")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("vector differs at %d: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestHashingNormalized(t *testing.T) {
	h := NewHashingProvider(256)
	vec, err := h.Embed(context.Background(), "some text with enough distinct words to fill buckets")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	var sum float64
	for _, v := range vec {
		sum += v * v
	}
	if math.Abs(math.Sqrt(sum)-1) > 1e-9 {
		t.Errorf("L2 norm = %v, want 1", math.Sqrt(sum))
	}
}

func TestHashingEmptyText(t *testing.T) {
	h := NewHashingProvider(64)
	vec, err := h.Embed(context.Background(), "   . , !  ")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(vec) != 64 {
		t.Fatalf("len = %d, want 64", len(vec))
	}
	for i, v := range vec {
		if v != 0 {
			t.Fatalf("vec[%d] = %v, want all-zero vector for empty text", i, v)
		}
	}
}

func TestHashingSimilarTextsCloser(t *testing.T) {
	h := NewHashingProvider(512)
	ctx := context.Background()
	a, _ := h.Embed(ctx, "distributed systems consensus raft leader election")
	b, _ := h.Embed(ctx, "raft consensus for distributed systems")
	c, _ := h.Embed(ctx, "sourdough bread baking hydration levels")

	simAB := dot(a, b)
	simAC := dot(a, c)
	if simAB <= simAC {
		t.Errorf("related texts not closer: sim(a,b)=%v <= sim(a,c)=%v", simAB, simAC)
	}
}

// dot works as cosine here since hashing vectors are unit length.
func dot(a, b []float64) float64 {
	var s float64
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}

func TestHashingDefaultDims(t *testing.T) {
	h := NewHashingProvider(0)
	if h.Dimensions() != 512 {
		t.Errorf("Dimensions = %d, want default 512", h.Dimensions())
	}
}

func TestTokenize(t *testing.T) {
	got := tokenize("Go's HTTP/2 server-push, explained!")
	want := []string{"go", "http", "server-push", "explained"}
	if len(got) != len(want) {
		t.Fatalf("tokenize = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
