package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ashgrove/authgraph"
	"github.com/ashgrove/authgraph/graph/postgres"
	"github.com/ashgrove/authgraph/internal/cli"
)

var (
	resolveDB    string
	resolveScope string
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <entity> [perm]",
	Short: "Check is_allowed for a perm, or list allowed_perms if perm is omitted",
	Long: `Query the Resolver directly (spec §4.7). With a perm argument, runs
is_allowed(entity, perm, scope?) and prints ALLOW or DENY. Without one, runs
allowed_perms(entity, scope?) and prints every allowed perm's name.`,
	Args: cobra.RangeArgs(1, 2),
	Example: `  # Check a bare permission
  authgraph resolve adam can_edit --db postgres://localhost/mydb

  # Check within a named scope
  authgraph resolve adam can_edit --scope modpack --db postgres://localhost/mydb

  # List every perm adam is allowed within a scope
  authgraph resolve adam --scope modpack --db postgres://localhost/mydb`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dsn, err := resolveDSN(resolveDB)
		if err != nil {
			return err
		}
		permName := ""
		if len(args) > 1 {
			permName = args[1]
		}
		return runResolve(context.Background(), dsn, args[0], permName, resolveScope)
	},
}

func init() {
	f := resolveCmd.Flags()
	f.StringVar(&resolveDB, "db", "", "database URL")
	f.StringVar(&resolveScope, "scope", "", "name of the scope to resolve within")
}

func runResolve(ctx context.Context, dsn, entityName, permName, scopeName string) error {
	db, err := cli.OpenDB(dsn, resolveDriver())
	if err != nil {
		return cli.DBConnectError("connecting to database", err)
	}
	defer func() { _ = db.Close() }()

	store := postgres.New(db)
	cat := authgraph.NewCatalog(store)

	entity, ok, err := cat.FindEntityByName(ctx, entityName)
	if err != nil {
		return cli.GeneralError("looking up entity", err)
	}
	if !ok {
		return cli.GeneralError(fmt.Sprintf("entity %q not found", entityName), nil)
	}

	var scope *authgraph.Scope
	if scopeName != "" {
		s, ok, err := cat.FindScopeByName(ctx, scopeName)
		if err != nil {
			return cli.GeneralError("looking up scope", err)
		}
		if !ok {
			return cli.GeneralError(fmt.Sprintf("scope %q not found", scopeName), nil)
		}
		scope = &s
	}

	r := authgraph.NewResolverFromCatalog(cat)

	if permName == "" {
		perms, err := r.AllowedPerms(ctx, entity.ID(), scope)
		if err != nil {
			return cli.GeneralError("resolving", err)
		}
		for _, p := range perms {
			name, _ := p.Name(ctx)
			fmt.Println(name)
		}
		return nil
	}

	perm, ok, err := cat.FindPermByName(ctx, permName)
	if err != nil {
		return cli.GeneralError("looking up perm", err)
	}
	if !ok {
		return cli.GeneralError(fmt.Sprintf("perm %q not found", permName), nil)
	}

	allowed, err := r.IsAllowed(ctx, entity.ID(), perm, scope)
	if err != nil {
		return cli.GeneralError("resolving", err)
	}

	if allowed {
		fmt.Println("ALLOW")
	} else {
		fmt.Println("DENY")
	}
	return nil
}
