package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ashgrove/authgraph/graph/postgres"
	embeddedsql "github.com/ashgrove/authgraph/graph/postgres/sql"
	"github.com/ashgrove/authgraph/internal/cli"
)

var (
	migrateDB     string
	migrateDryRun bool
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the graph-store schema to the database",
	Long:  `Apply authgraph's node/edge schema to a PostgreSQL database.`,
	Example: `  # Apply schema to database
  authgraph migrate --db postgres://localhost/mydb

  # Preview the schema without applying
  authgraph migrate --db postgres://localhost/mydb --dry-run`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dryRun := resolveBool(migrateDryRun, cfg.Migrate.DryRun)

		dsn, err := resolveDSN(migrateDB)
		if err != nil {
			return err
		}

		return runMigrate(context.Background(), dsn, dryRun)
	},
}

func init() {
	f := migrateCmd.Flags()
	f.StringVar(&migrateDB, "db", "", "database URL")
	f.BoolVar(&migrateDryRun, "dry-run", false, "print the schema SQL without applying it")
}

func runMigrate(ctx context.Context, dsn string, dryRun bool) error {
	db, err := cli.OpenDB(dsn, resolveDriver())
	if err != nil {
		return cli.DBConnectError("connecting to database", err)
	}
	defer func() { _ = db.Close() }()

	if dryRun {
		if !quiet {
			fmt.Println(embeddedsql.SchemaSQL)
		}
		return nil
	}

	if !quiet {
		fmt.Println("Applying authgraph schema...")
	}

	m := postgres.NewMigrator(db)
	if err := m.Migrate(ctx); err != nil {
		return cli.GeneralError("migration failed", err)
	}

	if !quiet {
		fmt.Println("Schema applied.")
	}
	return nil
}
