package postgres

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"

	embeddedsql "github.com/ashgrove/authgraph/graph/postgres/sql"
)

// Migrator applies the authgraph graph-store schema to a PostgreSQL
// database, mirroring pkg/migrator/migrator.go's checksum-skip pattern,
// simplified to one fixed hand-written DDL script instead of per-relation
// generated SQL (SPEC_FULL.md §11). The schema and the migration record are
// written by two separate statements, not in one transaction.
type Migrator struct {
	db DB
}

// NewMigrator creates a Migrator over db.
func NewMigrator(db DB) *Migrator {
	return &Migrator{db: db}
}

// SchemaChecksum returns the embedded schema's SHA-256 checksum, used to
// decide whether Migrate has already been applied (grounded on
// pkg/migrator/migrator.go's ComputeSchemaChecksum).
func SchemaChecksum() string {
	sum := sha256.Sum256([]byte(embeddedsql.SchemaSQL))
	return hex.EncodeToString(sum[:])
}

// LastMigration reports the checksum of the last-applied migration, or
// ("", false, nil) if none has been recorded (grounded on
// pkg/migrator/migrator.go's GetLastMigration, minus the per-relation
// function-name bookkeeping columns it no longer needs).
func (m *Migrator) LastMigration(ctx context.Context) (string, bool, error) {
	var checksum string
	err := m.db.QueryRowContext(ctx, `
		SELECT schema_checksum FROM authgraph_migrations
		ORDER BY id DESC LIMIT 1
	`).Scan(&checksum)
	switch {
	case err == sql.ErrNoRows:
		return "", false, nil
	case sqlState(err) == pgUndefinedTable:
		return "", false, nil
	case err != nil:
		return "", false, err
	}
	return checksum, true, nil
}

// Migrate applies the schema idempotently. If the current checksum matches
// the last recorded migration, Migrate is a no-op (the checksum-skip
// optimization from pkg/migrator/migrator.go's shouldSkipMigration).
func (m *Migrator) Migrate(ctx context.Context) error {
	checksum := SchemaChecksum()

	last, ok, err := m.LastMigration(ctx)
	if err != nil {
		return fmt.Errorf("checking last migration: %w", err)
	}
	if ok && last == checksum {
		return nil
	}

	if _, err := m.db.ExecContext(ctx, embeddedsql.SchemaSQL); err != nil {
		return fmt.Errorf("applying schema: %w", err)
	}

	if _, err := m.db.ExecContext(ctx, `INSERT INTO authgraph_migrations (schema_checksum) VALUES ($1)`, checksum); err != nil {
		return fmt.Errorf("recording migration: %w", err)
	}

	return nil
}

// Status reports whether the schema and any data are present, grounded on
// pkg/migrator/migrator.go's Status/GetStatus.
type Status struct {
	SchemaExists bool
	NodeCount    int64
	EdgeCount    int64
}

// GetStatus inspects the current database state.
func (m *Migrator) GetStatus(ctx context.Context) (Status, error) {
	var st Status

	_, ok, err := m.LastMigration(ctx)
	if err != nil {
		return st, err
	}
	st.SchemaExists = ok
	if !ok {
		return st, nil
	}

	if err := m.db.QueryRowContext(ctx, `SELECT count(*) FROM authgraph_nodes`).Scan(&st.NodeCount); err != nil {
		return st, err
	}
	if err := m.db.QueryRowContext(ctx, `SELECT count(*) FROM authgraph_edges`).Scan(&st.EdgeCount); err != nil {
		return st, err
	}
	return st, nil
}
