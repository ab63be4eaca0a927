package cli

import (
	"database/sql"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
)

// DefaultDriver is the database/sql driver name used when database.driver
// is unset. pgx is registered under the "pgx" driver name; lib/pq is
// registered under "postgres" and is wired as an alternate driver
// (database.driver: postgres) for operators whose deployment already
// standardizes on lib/pq, matching melange's own lib/pq-based CLI.
const DefaultDriver = "pgx"

// OpenDB opens a *sql.DB using the given driver name, defaulting to
// DefaultDriver when driver is empty.
func OpenDB(dsn, driver string) (*sql.DB, error) {
	if driver == "" {
		driver = DefaultDriver
	}
	return sql.Open(driver, dsn)
}
