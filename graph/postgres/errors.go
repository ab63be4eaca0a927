package postgres

import "errors"

// sqlStater and pqErrorCoder mirror the two PostgreSQL driver error shapes
// this package must tolerate without importing either driver package
// directly (grounded on checker.go's sqlState(err) dual type-assertion):
// pgx's *pgconn.PgError exposes SQLState() string, while lib/pq's *pq.Error
// exposes Code pq.ErrorCode (a string type), surfaced here via Code()
// string instead so both satisfy the same local interface.
type sqlStater interface{ SQLState() string }

type pqErrorCoder interface{ Code() string }

// sqlState extracts a PostgreSQL error code from err, or "" if err doesn't
// carry one of the two recognized shapes.
func sqlState(err error) string {
	if s, ok := err.(sqlStater); ok {
		return s.SQLState()
	}
	if c, ok := err.(pqErrorCoder); ok {
		return c.Code()
	}
	return ""
}

const pgUndefinedTable = "42P01"

// ErrSchemaNotMigrated is returned when a Store operation hits a missing
// authgraph_nodes/authgraph_edges table, meaning Migrate hasn't run yet.
var ErrSchemaNotMigrated = errors.New("authgraph/postgres: schema not migrated, run Migrate first")

// mapError wraps a raw driver error so callers can distinguish "schema not
// migrated yet" from other backend failures via errors.Is.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if sqlState(err) == pgUndefinedTable {
		return &wrappedError{msg: ErrSchemaNotMigrated.Error(), cause: err, sentinel: ErrSchemaNotMigrated}
	}
	return err
}

type wrappedError struct {
	msg      string
	cause    error
	sentinel error
}

func (e *wrappedError) Error() string { return e.msg }
func (e *wrappedError) Unwrap() error { return e.sentinel }
