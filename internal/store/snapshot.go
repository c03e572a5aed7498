package store

import (
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/lazypower/synapse/internal/graph"
)

// encodeEmbedding converts a []float64 to a binary BLOB (8 bytes per float64).
func encodeEmbedding(vec []float64) []byte {
	buf := make([]byte, len(vec)*8)
	for i, v := range vec {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(v))
	}
	return buf
}

// decodeEmbedding converts a binary BLOB back to []float64.
func decodeEmbedding(buf []byte) []float64 {
	n := len(buf) / 8
	vec := make([]float64, n)
	for i := 0; i < n; i++ {
		vec[i] = math.Float64frombits(binary.LittleEndian.Uint64(buf[i*8:]))
	}
	return vec
}

// SaveGraph replaces the stored snapshot with snap in a single transaction.
// Called after mutating operations and on shutdown; a crash between saves
// loses at most the mutations since the previous save.
func (db *DB) SaveGraph(snap graph.Snapshot, model string) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin snapshot: %w", err)
	}

	if _, err := tx.Exec("DELETE FROM graph_edges"); err != nil {
		tx.Rollback()
		return fmt.Errorf("clear edges: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM graph_nodes"); err != nil {
		tx.Rollback()
		return fmt.Errorf("clear nodes: %w", err)
	}

	for _, n := range snap.Nodes {
		keywords, err := json.Marshal(n.Keywords)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("marshal keywords for %s: %w", n.ID, err)
		}
		if _, err := tx.Exec(`
			INSERT INTO graph_nodes (id, kind, title, content, keywords, source_ref, content_hash,
				embedding, dimensions, model, click_count, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, n.ID, string(n.Kind), n.Title, n.Content, string(keywords), n.SourceReference, n.ContentHash,
			encodeEmbedding(n.Embedding), len(n.Embedding), model, n.ClickCount,
			n.CreatedAt.UnixMilli(), n.LastUpdated.UnixMilli()); err != nil {
			tx.Rollback()
			return fmt.Errorf("save node %s: %w", n.ID, err)
		}
	}

	for _, e := range snap.Edges {
		boosted := 0
		if e.UserBoosted {
			boosted = 1
		}
		if _, err := tx.Exec(`
			INSERT INTO graph_edges (a, b, weight, similarity_type, user_boosted, created_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`, e.Source, e.Target, e.Weight, e.SimilarityType, boosted, e.CreatedAt.UnixMilli()); err != nil {
			tx.Rollback()
			return fmt.Errorf("save edge %s-%s: %w", e.Source, e.Target, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit snapshot: %w", err)
	}
	return nil
}

// LoadGraph populates an in-memory store from the stored snapshot. The target
// store should be empty.
func (db *DB) LoadGraph(s *graph.Store) error {
	rows, err := db.Query(`
		SELECT id, kind, title, content, keywords, source_ref, content_hash,
			embedding, click_count, created_at, updated_at
		FROM graph_nodes
	`)
	if err != nil {
		return fmt.Errorf("load nodes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var n graph.Node
		var kind, keywords string
		var title, content, sourceRef, hash sql.NullString
		var blob []byte
		var createdAt, updatedAt int64
		if err := rows.Scan(&n.ID, &kind, &title, &content, &keywords, &sourceRef, &hash,
			&blob, &n.ClickCount, &createdAt, &updatedAt); err != nil {
			return fmt.Errorf("scan node: %w", err)
		}
		n.Kind = graph.Kind(kind)
		n.Title = title.String
		n.Content = content.String
		n.SourceReference = sourceRef.String
		n.ContentHash = hash.String
		n.Embedding = decodeEmbedding(blob)
		n.CreatedAt = time.UnixMilli(createdAt)
		n.LastUpdated = time.UnixMilli(updatedAt)
		if keywords != "" {
			if err := json.Unmarshal([]byte(keywords), &n.Keywords); err != nil {
				return fmt.Errorf("unmarshal keywords for %s: %w", n.ID, err)
			}
		}
		if err := s.AddNode(n); err != nil {
			return fmt.Errorf("restore node %s: %w", n.ID, err)
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	edgeRows, err := db.Query(`
		SELECT a, b, weight, similarity_type, user_boosted, created_at
		FROM graph_edges
	`)
	if err != nil {
		return fmt.Errorf("load edges: %w", err)
	}
	defer edgeRows.Close()

	for edgeRows.Next() {
		var e graph.Edge
		var boosted int
		var createdAt int64
		if err := edgeRows.Scan(&e.Source, &e.Target, &e.Weight, &e.SimilarityType, &boosted, &createdAt); err != nil {
			return fmt.Errorf("scan edge: %w", err)
		}
		e.UserBoosted = boosted != 0
		e.CreatedAt = time.UnixMilli(createdAt)
		if err := s.RestoreEdge(e); err != nil {
			return fmt.Errorf("restore edge %s-%s: %w", e.Source, e.Target, err)
		}
	}
	return edgeRows.Err()
}
