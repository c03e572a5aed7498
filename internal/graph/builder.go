package graph

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
)

// EmbeddingProvider turns text into a fixed-dimension vector. Implementations
// live outside the core (internal/embed); the Builder treats them as a black
// box that is deterministic for the same input and model.
type EmbeddingProvider interface {
	Embed(ctx context.Context, text string) ([]float64, error)
	Model() string
	Dimensions() int
}

// DefaultSimilarityThreshold is the minimum cosine similarity for an edge.
const DefaultSimilarityThreshold = 0.3

// Builder ingests normalized records: it derives node ids, embeds new
// content, and merges the batch into the store, creating semantic edges for
// every pair at or above the similarity threshold.
type Builder struct {
	Store     *Store
	Provider  EmbeddingProvider
	Threshold float64
}

// NewBuilder creates a Builder with the default similarity threshold.
func NewBuilder(store *Store, provider EmbeddingProvider) *Builder {
	return &Builder{
		Store:     store,
		Provider:  provider,
		Threshold: DefaultSimilarityThreshold,
	}
}

// Summary aggregates the outcome of one ingest batch.
type Summary struct {
	BatchID        string      `json:"batch_id"`
	ItemsProcessed int         `json:"items_processed"`
	NodesCreated   int         `json:"nodes_created"`
	NodesUpdated   int         `json:"nodes_updated"`
	EdgesCreated   int         `json:"edges_created"`
	Errors         []ItemError `json:"errors,omitempty"`
}

// ItemError reports a single record that failed validation or embedding.
// Such failures never abort the rest of the batch.
type ItemError struct {
	SourceReference string `json:"source_reference"`
	Error           string `json:"error"`
}

type pendingNode struct {
	node      *Node
	replaceID string // set when the source exists with different content
}

// Ingest merges a batch of records into the graph.
//
// Embedding runs before the store lock is taken, so slow provider calls never
// block readers or the feedback path. The merge itself — node inserts,
// replacements, and the similarity pass — happens under a single write lock,
// making the batch atomic with respect to other ingests and feedback.
//
// The similarity pass compares every new or replaced node against the full
// post-batch node set, each unordered pair once. This is the O(n²) step and
// the dominant cost of the design; it is inherent to threshold-based edge
// creation, not an implementation shortcut. Existing edges are never
// overwritten, so weights that reflect user boosts are sticky across
// re-ingestion.
func (b *Builder) Ingest(ctx context.Context, records []Record) (Summary, error) {
	sum := Summary{BatchID: uuid.NewString()}

	var batch []pendingNode
	for _, rec := range records {
		sum.ItemsProcessed++

		if err := rec.Validate(); err != nil {
			sum.Errors = append(sum.Errors, ItemError{rec.SourceReference, err.Error()})
			continue
		}

		hash := rec.contentHash()
		if existing, ok := b.Store.NodeBySource(rec.SourceKind, rec.SourceReference); ok {
			if existing.ContentHash == hash {
				continue // unchanged content, idempotent no-op
			}
		}

		n := &Node{
			ID:              NodeID(rec.SourceKind, rec.SourceReference, hash),
			Kind:            rec.SourceKind,
			Title:           rec.Title,
			Content:         rec.Content,
			Keywords:        mergeKeywords(rec.Keywords, rec.Tags),
			SourceReference: rec.SourceReference,
			ContentHash:     hash,
		}

		vec, err := b.embed(ctx, rec)
		if err != nil {
			sum.Errors = append(sum.Errors, ItemError{rec.SourceReference, err.Error()})
			continue
		}
		n.Embedding = vec
		batch = append(batch, pendingNode{node: n})
	}

	if len(batch) == 0 {
		return sum, nil
	}

	// Merge phase: single critical section for the whole batch.
	s := b.Store
	s.mu.Lock()
	defer s.mu.Unlock()

	var added []*Node
	for _, p := range batch {
		if _, exists := s.nodes[p.node.ID]; exists {
			continue // duplicate within the batch, or a concurrent ingest won
		}
		// Authoritative source check: the pre-lock peek may be stale, and a
		// batch may carry the same source twice with different content. The
		// later record wins, in given order.
		if oldID, ok := s.bySource[sourceKey(p.node.Kind, p.node.SourceReference)]; ok {
			if old := s.nodes[oldID]; old != nil {
				s.replaceNodeLocked(old, p.node)
				sum.NodesUpdated++
				added = append(added, p.node)
				continue
			}
		}
		if err := s.addNodeLocked(p.node); err != nil {
			// Unreachable given the checks above; surfacing it would mean a
			// defect in the merge logic.
			return sum, err
		}
		sum.NodesCreated++
		added = append(added, p.node)
	}

	// All-pairs similarity: each new node against every other node now in
	// the store, including the rest of the batch.
	considered := make(map[edgeKey]struct{})
	for _, n := range added {
		if s.nodes[n.ID] != n {
			continue // replaced by a later record in the same batch
		}
		for _, other := range s.nodes {
			if other.ID == n.ID {
				continue
			}
			k := keyOf(n.ID, other.ID)
			if _, done := considered[k]; done {
				continue
			}
			considered[k] = struct{}{}
			if _, exists := s.edges[k]; exists {
				continue
			}
			sim := Cosine(n.Embedding, other.Embedding)
			if sim >= b.Threshold {
				if _, err := s.addEdgeLocked(n.ID, other.ID, sim, SimilaritySemantic); err != nil {
					return sum, err
				}
				sum.EdgesCreated++
			}
		}
	}

	log.Printf("ingest %s: %d items, %d created, %d updated, %d edges, %d errors",
		sum.BatchID, sum.ItemsProcessed, sum.NodesCreated, sum.NodesUpdated, sum.EdgesCreated, len(sum.Errors))
	return sum, nil
}

// embed computes the record's vector. Records that normalize to empty text
// get a zero vector of the provider's dimension without a provider call, so
// they still produce a node but contribute no edges.
func (b *Builder) embed(ctx context.Context, rec Record) ([]float64, error) {
	text := embedText(rec)
	if text == "" {
		return make([]float64, b.Provider.Dimensions()), nil
	}
	vec, err := b.Provider.Embed(ctx, text)
	if err != nil {
		return nil, &EmbeddingError{SourceReference: rec.SourceReference, Err: err}
	}
	if d := b.Provider.Dimensions(); d > 0 && len(vec) != d {
		return nil, &EmbeddingError{
			SourceReference: rec.SourceReference,
			Err:             fmt.Errorf("provider returned %d dimensions, want %d", len(vec), d),
		}
	}
	return vec, nil
}

// embedText combines title, keywords, and a content snippet into the text
// handed to the provider. Full content is kept on the node; the snippet keeps
// embedding input bounded.
func embedText(rec Record) string {
	snippet := rec.Content
	if len(snippet) > 500 {
		snippet = snippet[:500]
	}
	parts := []string{rec.Title, strings.Join(rec.Keywords, " "), snippet}
	return strings.TrimSpace(strings.Join(parts, " "))
}

// mergeKeywords appends tags to keywords, dropping duplicates while keeping
// first-seen order.
func mergeKeywords(keywords, tags []string) []string {
	seen := make(map[string]struct{}, len(keywords)+len(tags))
	var out []string
	for _, kw := range append(append([]string{}, keywords...), tags...) {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		if _, dup := seen[kw]; dup {
			continue
		}
		seen[kw] = struct{}{}
		out = append(out, kw)
	}
	return out
}
