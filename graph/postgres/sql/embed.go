// Package sql embeds the PostgreSQL DDL for authgraph's durable Graph
// Store backend. Grounded on /root/module/sql/embed.go's go:embed bundling
// idiom: the schema is embedded at compile time so the binary carries its
// own migration source, applied idempotently (CREATE TABLE/INDEX IF NOT
// EXISTS) rather than generated per-relation as the teacher's sqlgen
// subsystem did.
package sql

import _ "embed"

// SchemaSQL contains the authgraph_nodes/authgraph_edges/authgraph_migrations
// table and index definitions.
//
//go:embed schema.sql
var SchemaSQL string
