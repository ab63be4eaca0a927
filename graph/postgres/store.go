// Package postgres implements graph.Store over PostgreSQL, the durable
// alternative to graph.MemoryStore (spec §4.1: "Implementations: an
// in-memory adjacency store or any external graph database meeting the
// contract.").
//
// Grounded on melange.go's Querier/Execer minimal-interface idiom: Store
// works against *sql.DB, *sql.Tx, or *sql.Conn so permission checks can
// run inside an application's own transaction and see uncommitted writes.
package postgres

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ashgrove/authgraph/graph"
)

// DB is the minimal database/sql surface Store needs. *sql.DB, *sql.Tx,
// and *sql.Conn all satisfy it.
type DB interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Store is a graph.Store backed by the authgraph_nodes/authgraph_edges
// tables (see sql/schema.sql). It works with any driver that populates
// database/sql (pgx's stdlib adapter or lib/pq); error mapping in
// errors.go type-switches on both drivers' error shapes rather than
// assuming one.
type Store struct {
	db DB
}

// New wraps db as a graph.Store. Call Migrator.Migrate (migrate.go) first
// to create the schema.
func New(db DB) *Store {
	return &Store{db: db}
}

var _ graph.Store = (*Store)(nil)
var _ graph.PropUpdater = (*Store)(nil)

func newNodeID() graph.NodeID {
	var b [16]byte
	_, _ = rand.Read(b[:]) // crypto/rand.Read on the system CSPRNG never errors in practice
	return graph.NodeID(hex.EncodeToString(b[:]))
}

// CreateNode implements graph.Store.
func (s *Store) CreateNode(ctx context.Context, label graph.Label, p graph.Props) (graph.NodeID, error) {
	id := newNodeID()
	buf, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO authgraph_nodes (id, label, props) VALUES ($1, $2, $3)`, string(id), string(label), buf)
	if err != nil {
		return "", mapError(err)
	}
	return id, nil
}

// DeleteNode implements graph.Store. ON DELETE CASCADE on authgraph_edges
// removes every incident edge.
func (s *Store) DeleteNode(ctx context.Context, id graph.NodeID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM authgraph_nodes WHERE id = $1`, string(id))
	if err != nil {
		return mapError(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return graph.ErrNotFound
	}
	return nil
}

// GetNode implements graph.Store.
func (s *Store) GetNode(ctx context.Context, id graph.NodeID) (graph.Node, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, label, props FROM authgraph_nodes WHERE id = $1`, string(id))
	return scanNode(row)
}

func scanNode(row *sql.Row) (graph.Node, error) {
	var idStr, label string
	var buf []byte
	if err := row.Scan(&idStr, &label, &buf); err != nil {
		if err == sql.ErrNoRows {
			return graph.Node{}, graph.ErrNotFound
		}
		return graph.Node{}, mapError(err)
	}
	var p graph.Props
	if err := json.Unmarshal(buf, &p); err != nil {
		return graph.Node{}, err
	}
	return graph.Node{ID: graph.NodeID(idStr), Label: graph.Label(label), Props: p}, nil
}

// SetNodeProp implements graph.PropUpdater via a JSONB merge.
func (s *Store) SetNodeProp(ctx context.Context, id graph.NodeID, key string, value any) error {
	buf, err := json.Marshal(value)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `UPDATE authgraph_nodes SET props = jsonb_set(props, $2, $3::jsonb, true) WHERE id = $1`, string(id), "{"+quoteJSONKey(key)+"}", buf)
	if err != nil {
		return mapError(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return graph.ErrNotFound
	}
	return nil
}

func quoteJSONKey(key string) string { return key }

// FindOne implements graph.Store.
func (s *Store) FindOne(ctx context.Context, filter graph.NodeFilter) (graph.Node, bool, error) {
	nodes, err := s.FindAll(ctx, filter)
	if err != nil {
		return graph.Node{}, false, err
	}
	if len(nodes) == 0 {
		return graph.Node{}, false, nil
	}
	return nodes[0], true, nil
}

// FindAll implements graph.Store.
func (s *Store) FindAll(ctx context.Context, filter graph.NodeFilter) ([]graph.Node, error) {
	query := `SELECT id, label, props FROM authgraph_nodes WHERE 1=1`
	var args []any
	if filter.Label != "" {
		args = append(args, string(filter.Label))
		query += fmt.Sprintf(" AND label = $%d", len(args))
	}
	for k, v := range filter.Props {
		buf, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		args = append(args, k, string(buf))
		query += fmt.Sprintf(" AND props -> $%d = $%d::jsonb", len(args)-1, len(args))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer func() { _ = rows.Close() }()

	var out []graph.Node
	for rows.Next() {
		var idStr, label string
		var buf []byte
		if err := rows.Scan(&idStr, &label, &buf); err != nil {
			return nil, err
		}
		var p graph.Props
		if err := json.Unmarshal(buf, &p); err != nil {
			return nil, err
		}
		out = append(out, graph.Node{ID: graph.NodeID(idStr), Label: graph.Label(label), Props: p})
	}
	return out, rows.Err()
}

// CreateEdge implements graph.Store.
func (s *Store) CreateEdge(ctx context.Context, from graph.NodeID, typ graph.EdgeType, to graph.NodeID, p graph.Props) error {
	buf, err := json.Marshal(p)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO authgraph_edges (from_id, edge_type, to_id, props) VALUES ($1, $2, $3, $4)`, string(from), string(typ), string(to), buf)
	if err != nil {
		return mapError(err)
	}
	return nil
}

// DeleteEdges implements graph.Store.
func (s *Store) DeleteEdges(ctx context.Context, from graph.NodeID, types []graph.EdgeType, to graph.NodeID, propFilter graph.Props) error {
	query := `DELETE FROM authgraph_edges WHERE 1=1`
	var args []any
	if from != "" {
		args = append(args, string(from))
		query += fmt.Sprintf(" AND from_id = $%d", len(args))
	}
	if to != "" {
		args = append(args, string(to))
		query += fmt.Sprintf(" AND to_id = $%d", len(args))
	}
	if len(types) > 0 {
		placeholders := make([]string, len(types))
		for i, t := range types {
			args = append(args, string(t))
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		query += fmt.Sprintf(" AND edge_type IN (%s)", strings.Join(placeholders, ", "))
	}
	for k, v := range propFilter {
		buf, err := json.Marshal(v)
		if err != nil {
			return err
		}
		args = append(args, k, string(buf))
		query += fmt.Sprintf(" AND props -> $%d = $%d::jsonb", len(args)-1, len(args))
	}

	_, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return mapError(err)
	}
	return nil
}

// Neighbors implements graph.Store.
func (s *Store) Neighbors(ctx context.Context, id graph.NodeID, types []graph.EdgeType, dir graph.Direction, propFilter graph.Props) ([]graph.Neighbor, error) {
	var out []graph.Neighbor

	fetch := func(query string, extraArgs ...any) error {
		args := append([]any{string(id)}, extraArgs...)
		var typeArgs []any
		typeClause := ""
		if len(types) > 0 {
			placeholders := make([]string, len(types))
			for i, t := range types {
				typeArgs = append(typeArgs, string(t))
				placeholders[i] = fmt.Sprintf("$%d", len(args)+i+1)
			}
			typeClause = fmt.Sprintf(" AND edge_type IN (%s)", strings.Join(placeholders, ", "))
			args = append(args, typeArgs...)
		}

		rows, err := s.db.QueryContext(ctx, query+typeClause, args...)
		if err != nil {
			return mapError(err)
		}
		defer func() { _ = rows.Close() }()

		for rows.Next() {
			var fromID, edgeType, toID, nodeID, label string
			var edgeProps, nodeProps []byte
			if err := rows.Scan(&fromID, &edgeType, &toID, &edgeProps, &nodeID, &label, &nodeProps); err != nil {
				return err
			}
			var ep, np graph.Props
			if err := json.Unmarshal(edgeProps, &ep); err != nil {
				return err
			}
			if err := json.Unmarshal(nodeProps, &np); err != nil {
				return err
			}
			if !propsMatch(ep, propFilter) {
				continue
			}
			out = append(out, graph.Neighbor{
				Edge: graph.Edge{From: graph.NodeID(fromID), Type: graph.EdgeType(edgeType), To: graph.NodeID(toID), Props: ep},
				Node: graph.Node{ID: graph.NodeID(nodeID), Label: graph.Label(label), Props: np},
			})
		}
		return rows.Err()
	}

	if dir == graph.Out || dir == graph.Both {
		q := `SELECT e.from_id, e.edge_type, e.to_id, e.props, n.id, n.label, n.props
		      FROM authgraph_edges e JOIN authgraph_nodes n ON n.id = e.to_id
		      WHERE e.from_id = $1`
		if err := fetch(q); err != nil {
			return nil, err
		}
	}
	if dir == graph.In || dir == graph.Both {
		q := `SELECT e.from_id, e.edge_type, e.to_id, e.props, n.id, n.label, n.props
		      FROM authgraph_edges e JOIN authgraph_nodes n ON n.id = e.from_id
		      WHERE e.to_id = $1`
		if err := fetch(q); err != nil {
			return nil, err
		}
	}

	return out, nil
}

func propsMatch(have, want graph.Props) bool {
	for k, v := range want {
		if hv, ok := have[k]; !ok || hv != v {
			return false
		}
	}
	return true
}

// Reachable implements graph.Store via a recursive CTE, grounded on
// checker.go's list_accessible_objects/list_accessible_subjects recursive
// query idiom (spec §4.1 reachable).
func (s *Store) Reachable(ctx context.Context, from graph.NodeID, types []graph.EdgeType, transitive bool) ([]graph.Node, error) {
	if !transitive {
		nbrs, err := s.Neighbors(ctx, from, types, graph.Out, nil)
		if err != nil {
			return nil, err
		}
		out := make([]graph.Node, len(nbrs))
		for i, n := range nbrs {
			out[i] = n.Node
		}
		return out, nil
	}

	typeClause := ""
	args := []any{string(from)}
	if len(types) > 0 {
		placeholders := make([]string, len(types))
		for i, t := range types {
			args = append(args, string(t))
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		typeClause = fmt.Sprintf("AND e.edge_type IN (%s)", strings.Join(placeholders, ", "))
	}

	query := fmt.Sprintf(`
		WITH RECURSIVE reach(id) AS (
			SELECT e.to_id FROM authgraph_edges e WHERE e.from_id = $1 %s
			UNION
			SELECT e.to_id FROM authgraph_edges e JOIN reach r ON e.from_id = r.id %s
		)
		SELECT n.id, n.label, n.props FROM authgraph_nodes n JOIN reach r ON n.id = r.id
	`, typeClause, typeClause)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer func() { _ = rows.Close() }()

	var out []graph.Node
	for rows.Next() {
		var idStr, label string
		var buf []byte
		if err := rows.Scan(&idStr, &label, &buf); err != nil {
			return nil, err
		}
		var p graph.Props
		if err := json.Unmarshal(buf, &p); err != nil {
			return nil, err
		}
		out = append(out, graph.Node{ID: graph.NodeID(idStr), Label: graph.Label(label), Props: p})
	}
	return out, rows.Err()
}

// ShortestPaths implements graph.Store by delegating to the shared BFS in
// graph/bfs.go, which only calls Neighbors. A pure-SQL shortest-path query
// bounded by scope/edge-type predicates would require a recursive CTE
// re-implementing the same predicate logic twice (once in Go, once in
// SQL); the in-process BFS keeps the predicate logic in one place and
// stays within spec §4.7's L=16 bound, so the round-trip cost is capped.
func (s *Store) ShortestPaths(ctx context.Context, from []graph.NodeID, targetLabel graph.Label, maxLen int, edgeTypes []graph.EdgeType, edgePred graph.EdgePredicate, nodePred graph.NodePredicate) (map[graph.NodeID]graph.Path, error) {
	return graph.BFSShortestPaths(ctx, s, from, targetLabel, maxLen, edgeTypes, edgePred, nodePred)
}
