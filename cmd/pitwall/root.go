package main

import (
	"context"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/Konsultn-Engineering/pitwall/connector"
	"github.com/Konsultn-Engineering/pitwall/engine"
	"github.com/Konsultn-Engineering/pitwall/internal/cli"

	_ "github.com/Konsultn-Engineering/pitwall/providers/postgres"
	_ "github.com/Konsultn-Engineering/pitwall/providers/pq"
)

var (
	cfg        *cli.Config
	configPath string

	cfgFile     string
	providerArg string
	databaseURL string
	quiet       bool
)

var rootCmd = &cobra.Command{
	Use:   "pitwall",
	Short: "Run SQL inside managed PostgreSQL transactions",
	Long: `pitwall - run SQL inside managed PostgreSQL transactions

Statements run on one held connection between begin and commit. Any failure
rolls the whole transaction back.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		switch cmd.Name() {
		case "help", "completion", "version", "canonicalize":
			return nil
		}

		var err error
		cfg, configPath, err = cli.LoadConfig(cfgFile)
		if err != nil {
			return cli.ConfigError("loading configuration", err)
		}
		cfg.Provider = cli.ResolveString(providerArg, cfg.Provider)
		cfg.Database.URL = cli.ResolveString(databaseURL, cfg.Database.URL)
		return nil
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

const (
	groupDatabase = "database"
	groupUtility  = "utility"
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: auto-discover pitwall.yaml)")
	rootCmd.PersistentFlags().StringVar(&providerArg, "provider", "", "connector provider: postgres or pq")
	rootCmd.PersistentFlags().StringVar(&databaseURL, "db", "", "database URL, overrides database.* settings")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress non-error output")

	rootCmd.AddGroup(
		&cobra.Group{ID: groupDatabase, Title: "Database:"},
		&cobra.Group{ID: groupUtility, Title: "Utility:"},
	)

	execCmd.GroupID = groupDatabase
	pingCmd.GroupID = groupDatabase
	rootCmd.AddCommand(execCmd)
	rootCmd.AddCommand(pingCmd)

	canonicalizeCmd.GroupID = groupUtility
	configCmd.GroupID = groupUtility
	versionCmd.GroupID = groupUtility
	rootCmd.AddCommand(canonicalizeCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		cli.ExitWithError(err)
	}
}

var stderrLogger = engine.StdLogger(log.New(os.Stderr, "", log.LstdFlags))

// connect opens the configured provider. The caller closes the returned
// Connector.
func connect(ctx context.Context) (connector.Connector, connector.Connection, error) {
	cc := cfg.Connector()
	cc.Logger = stderrLogger

	c, err := connector.New(cfg.Provider, cc)
	if err != nil {
		return nil, nil, cli.ConfigError("configuring "+cfg.Provider, err)
	}
	conn, err := c.Connect(ctx)
	if err != nil {
		_ = c.Close()
		return nil, nil, cli.DBConnectError("connecting to database", err)
	}
	return c, conn, nil
}

// withQueryTimeout bounds ctx by database.query_timeout when set.
func withQueryTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if cfg.Database.QueryTimeout > 0 {
		return context.WithTimeout(ctx, cfg.Database.QueryTimeout)
	}
	return context.WithCancel(ctx)
}
