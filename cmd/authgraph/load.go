package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ashgrove/authgraph"
	"github.com/ashgrove/authgraph/fixture"
	"github.com/ashgrove/authgraph/graph/postgres"
	"github.com/ashgrove/authgraph/internal/cli"
)

var (
	loadDB      string
	loadFixture string
)

var loadCmd = &cobra.Command{
	Use:   "load [fixture.yaml]",
	Short: "Apply a YAML scenario to the graph store",
	Long:  `Parse a YAML scenario describing scopes, perms, groups, entities, abilities, and links, and apply it to the graph store (spec §4, Catalog construction).`,
	Args:  cobra.MaximumNArgs(1),
	Example: `  # Apply a fixture
  authgraph load scenario.yaml --db postgres://localhost/mydb`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := loadFixture
		if len(args) > 0 {
			path = args[0]
		}
		path = resolveString(path, cfg.Fixture)
		if path == "" {
			return cli.ConfigError("fixture path is required (pass a file argument or set fixture in config)", nil)
		}

		dsn, err := resolveDSN(loadDB)
		if err != nil {
			return err
		}

		return runLoad(context.Background(), dsn, path)
	},
}

func init() {
	f := loadCmd.Flags()
	f.StringVar(&loadDB, "db", "", "database URL")
	f.StringVar(&loadFixture, "fixture", "", "path to a YAML scenario file")
}

func runLoad(ctx context.Context, dsn, path string) error {
	doc, err := os.ReadFile(path)
	if err != nil {
		return cli.FixtureParseError("reading fixture", err)
	}

	db, err := cli.OpenDB(dsn, resolveDriver())
	if err != nil {
		return cli.DBConnectError("connecting to database", err)
	}
	defer func() { _ = db.Close() }()

	store := postgres.New(db)
	cat := authgraph.NewCatalog(store)

	reg, err := fixture.Load(ctx, cat, doc)
	if err != nil {
		return cli.FixtureParseError("applying fixture", err)
	}

	if !quiet {
		fmt.Printf("Loaded %d scopes, %d perms, %d groups, %d entities, %d abilities\n",
			len(reg.Scopes), len(reg.Perms), len(reg.Groups), len(reg.Entities), len(reg.Abilities))
	}
	return nil
}
