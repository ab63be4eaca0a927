package main

import (
	"github.com/spf13/cobra"

	"github.com/ashgrove/authgraph/internal/cli"
)

var (
	cfg        *cli.Config
	configPath string

	cfgFile string
	verbose int
	quiet   bool
	driver  string
)

var rootCmd = &cobra.Command{
	Use:   "authgraph",
	Short: "Scoped, hierarchical, graph-based authorization",
	Long: `authgraph - scoped, hierarchical, graph-based authorization

authgraph resolves "is this entity allowed to do X, optionally within scope
S" by a constrained shortest-path search over a labeled graph of entities,
groups, permissions, scopes, and abilities, backed by PostgreSQL.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "version" {
			return nil
		}

		var err error
		cfg, configPath, err = cli.LoadConfig(cfgFile)
		if err != nil {
			return cli.ConfigError("loading configuration", err)
		}

		return nil
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

const (
	groupData    = "data"
	groupUtility = "utility"
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: auto-discover authgraph.yaml)")
	rootCmd.PersistentFlags().CountVarP(&verbose, "verbose", "v", "increase verbosity (can be repeated)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress non-error output")
	rootCmd.PersistentFlags().StringVar(&driver, "driver", "", "database/sql driver: pgx (default) or postgres (lib/pq)")

	rootCmd.AddGroup(
		&cobra.Group{ID: groupData, Title: "Data:"},
		&cobra.Group{ID: groupUtility, Title: "Utility:"},
	)

	migrateCmd.GroupID = groupData
	statusCmd.GroupID = groupData
	loadCmd.GroupID = groupData
	resolveCmd.GroupID = groupData
	doctorCmd.GroupID = groupData
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(loadCmd)
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(doctorCmd)

	versionCmd.GroupID = groupUtility
	configCmd.GroupID = groupUtility
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(configCmd)
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		cli.ExitWithError(err)
	}
}

// resolveString returns the first non-empty string from the provided values,
// implementing flag > config > default precedence.
func resolveString(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// resolveBool returns true if any of the provided values is true.
func resolveBool(values ...bool) bool {
	for _, v := range values {
		if v {
			return true
		}
	}
	return false
}

// resolveDriver gets the database/sql driver name from flag or config,
// leaving it empty to let cli.OpenDB apply its default.
func resolveDriver() string {
	return resolveString(driver, cfg.Database.Driver)
}

// resolveDSN gets the database DSN from flag or config.
func resolveDSN(flagDSN string) (string, error) {
	if flagDSN != "" {
		return flagDSN, nil
	}
	dsn, err := cfg.DSN()
	if err != nil {
		return "", cli.ConfigError("database configuration", err)
	}
	if dsn == "" {
		return "", cli.ConfigError("database URL is required (use --db or set in config)", nil)
	}
	return dsn, nil
}
