package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ashgrove/authgraph/graph/postgres"
	"github.com/ashgrove/authgraph/internal/cli"
)

var statusDB string

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show current schema and node/edge counts",
	Example: `  # Check status
  authgraph status --db postgres://localhost/mydb`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dsn, err := resolveDSN(statusDB)
		if err != nil {
			return err
		}
		return runStatus(context.Background(), dsn)
	},
}

func init() {
	statusCmd.Flags().StringVar(&statusDB, "db", "", "database URL")
}

func runStatus(ctx context.Context, dsn string) error {
	db, err := cli.OpenDB(dsn, resolveDriver())
	if err != nil {
		return cli.DBConnectError("connecting to database", err)
	}
	defer func() { _ = db.Close() }()

	m := postgres.NewMigrator(db)
	s, err := m.GetStatus(ctx)
	if err != nil {
		return cli.GeneralError("getting status", err)
	}

	if s.SchemaExists {
		fmt.Println("Schema:       migrated")
		fmt.Printf("Nodes:        %d\n", s.NodeCount)
		fmt.Printf("Edges:        %d\n", s.EdgeCount)
	} else {
		fmt.Println("Schema:       not migrated")
		fmt.Println("\nRun `authgraph migrate` to apply the schema.")
	}

	return nil
}
