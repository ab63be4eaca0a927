package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ashgrove/authgraph/graph/postgres"
	"github.com/ashgrove/authgraph/internal/cli"
	"github.com/ashgrove/authgraph/internal/doctor"
)

var (
	doctorDB      string
	doctorVerbose bool
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run health checks against the graph store's invariants",
	Long:  `Check the structural invariants a resolvable authgraph store must hold (spec §4): exactly one global group, consistent auto-membership, acyclic SUBSET_OF/INHERITS chains, and mutually-exclusive ALLOW/DENY edges.`,
	Example: `  # Run health checks
  authgraph doctor --db postgres://localhost/mydb

  # Run with verbose output
  authgraph doctor --db postgres://localhost/mydb --verbose`,
	RunE: func(cmd *cobra.Command, args []string) error {
		verboseFlag := resolveBool(doctorVerbose, cfg.Doctor.Verbose)

		dsn, err := resolveDSN(doctorDB)
		if err != nil {
			return err
		}

		return runDoctor(context.Background(), dsn, verboseFlag)
	},
}

func init() {
	f := doctorCmd.Flags()
	f.StringVar(&doctorDB, "db", "", "database URL")
	f.BoolVar(&doctorVerbose, "verbose", false, "show detailed output")
}

func runDoctor(ctx context.Context, dsn string, verboseFlag bool) error {
	db, err := cli.OpenDB(dsn, resolveDriver())
	if err != nil {
		return cli.DBConnectError("connecting to database", err)
	}
	defer func() { _ = db.Close() }()

	if !quiet {
		fmt.Println("authgraph doctor - Health Check")
	}

	store := postgres.New(db)
	mig := postgres.NewMigrator(db)

	d := doctor.New(store, mig)
	report, err := d.Run(ctx)
	if err != nil {
		return cli.GeneralError("running doctor", err)
	}

	report.Print(os.Stdout, verboseFlag)

	if report.HasErrors() {
		return cli.GeneralError("health checks failed", nil)
	}

	return nil
}
