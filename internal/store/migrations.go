package store

import (
	"fmt"
)

type migration struct {
	Version     int
	Description string
	SQL         string
}

var migrations = []migration{
	{
		Version:     1,
		Description: "graph_nodes + graph_edges: durable graph snapshot",
		SQL: `
CREATE TABLE graph_nodes (
    id           TEXT PRIMARY KEY,
    kind         TEXT NOT NULL,
    title        TEXT,
    content      TEXT,
    keywords     TEXT,
    source_ref   TEXT NOT NULL,
    content_hash TEXT NOT NULL,

    -- Embedding, float64 little-endian BLOB
    embedding    BLOB,
    dimensions   INTEGER NOT NULL DEFAULT 0,
    model        TEXT,

    -- Attention
    click_count  INTEGER NOT NULL DEFAULT 0,

    created_at   INTEGER NOT NULL,
    updated_at   INTEGER NOT NULL
);

CREATE UNIQUE INDEX idx_nodes_source ON graph_nodes(kind, source_ref);

CREATE TABLE graph_edges (
    a               TEXT NOT NULL,
    b               TEXT NOT NULL,
    weight          REAL NOT NULL CHECK (weight >= 0 AND weight <= 1),
    similarity_type TEXT NOT NULL,
    user_boosted    INTEGER NOT NULL DEFAULT 0,
    created_at      INTEGER NOT NULL,

    PRIMARY KEY (a, b),
    CHECK (a < b),
    FOREIGN KEY (a) REFERENCES graph_nodes(id) ON DELETE CASCADE,
    FOREIGN KEY (b) REFERENCES graph_nodes(id) ON DELETE CASCADE
);

CREATE INDEX idx_edges_b      ON graph_edges(b);
CREATE INDEX idx_edges_weight ON graph_edges(weight DESC);
`,
	},
}

func (db *DB) migrate() error {
	// Create schema_versions table if it doesn't exist
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_versions (
			version     INTEGER PRIMARY KEY,
			description TEXT NOT NULL,
			applied_at  INTEGER NOT NULL DEFAULT (strftime('%s', 'now') * 1000)
		)
	`)
	if err != nil {
		return fmt.Errorf("create schema_versions: %w", err)
	}

	for _, m := range migrations {
		var count int
		err := db.QueryRow("SELECT COUNT(*) FROM schema_versions WHERE version = ?", m.Version).Scan(&count)
		if err != nil {
			return fmt.Errorf("check migration %d: %w", m.Version, err)
		}
		if count > 0 {
			continue
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", m.Version, err)
		}

		if _, err := tx.Exec(m.SQL); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d (%s): %w", m.Version, m.Description, err)
		}

		if _, err := tx.Exec(
			"INSERT INTO schema_versions (version, description) VALUES (?, ?)",
			m.Version, m.Description,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration %d: %w", m.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.Version, err)
		}
	}

	return nil
}

// SchemaVersion returns the current schema version.
func (db *DB) SchemaVersion() (int, error) {
	var version int
	err := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_versions").Scan(&version)
	return version, err
}
