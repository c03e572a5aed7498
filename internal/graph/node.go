package graph

import (
	"crypto/sha256"
	"encoding/hex"
	"path"
	"strings"
	"time"
)

// Kind classifies the source a node was built from.
type Kind string

const (
	KindNote Kind = "note"
	KindPDF  Kind = "pdf"
	KindLink Kind = "link"
)

// SimilaritySemantic tags edges derived from embedding similarity. Other
// similarity types (citation, co-occurrence) are reserved for future edge
// sources.
const SimilaritySemantic = "semantic"

// Node is a single knowledge item in the graph.
type Node struct {
	ID              string    `json:"id"`
	Kind            Kind      `json:"kind"`
	Title           string    `json:"title"`
	Content         string    `json:"content"`
	Keywords        []string  `json:"keywords"`
	SourceReference string    `json:"source_reference"`
	ContentHash     string    `json:"content_hash"`
	Embedding       []float64 `json:"-"`
	ClickCount      int       `json:"click_count"`
	CreatedAt       time.Time `json:"created_at"`
	LastUpdated     time.Time `json:"last_updated"`
}

// Edge is an undirected weighted relation between two nodes. Source/Target
// ordering is canonical (Source < Target) but carries no direction.
type Edge struct {
	Source         string    `json:"source"`
	Target         string    `json:"target"`
	Weight         float64   `json:"weight"`
	SimilarityType string    `json:"similarity_type"`
	UserBoosted    bool      `json:"user_boosted"`
	CreatedAt      time.Time `json:"created_at"`
}

// Record is a normalized content record handed to the Builder by the
// extraction layer.
type Record struct {
	SourceKind      Kind     `json:"source_kind"`
	SourceReference string   `json:"source_reference"`
	Title           string   `json:"title"`
	Content         string   `json:"content"`
	Keywords        []string `json:"keywords"`
	Tags            []string `json:"tags"`
}

// Validate checks the fields the Builder cannot work without. Empty content
// is allowed; such records still produce (edgeless) nodes.
func (r Record) Validate() error {
	if r.SourceKind == "" {
		return &ValidationError{Reason: "missing source_kind"}
	}
	if r.SourceReference == "" {
		return &ValidationError{Reason: "missing source_reference"}
	}
	return nil
}

// contentHash returns a short stable digest of the record's content, used to
// detect changed content on re-ingestion.
func (r Record) contentHash() string {
	sum := sha256.Sum256([]byte(r.Content))
	return hex.EncodeToString(sum[:])[:16]
}

// NodeID derives a deterministic node id from the source identity and the
// content digest, so re-ingesting identical content maps to the same id.
func NodeID(kind Kind, sourceRef, contentHash string) string {
	sum := sha256.Sum256([]byte(string(kind) + "\x00" + sourceRef + "\x00" + contentHash))
	return string(kind) + "_" + slug(sourceRef) + "_" + hex.EncodeToString(sum[:])[:8]
}

// slug reduces a source reference (filename or URL) to a short id-safe label.
func slug(ref string) string {
	base := path.Base(strings.TrimRight(ref, "/"))
	if i := strings.IndexAny(base, "?#"); i >= 0 {
		base = base[:i]
	}
	base = strings.TrimSuffix(base, path.Ext(base))
	var b strings.Builder
	for _, r := range strings.ToLower(base) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	s := strings.Trim(b.String(), "-")
	if len(s) > 40 {
		s = s[:40]
	}
	if s == "" {
		s = "item"
	}
	return s
}

func sourceKey(kind Kind, ref string) string {
	return string(kind) + "\x00" + ref
}
