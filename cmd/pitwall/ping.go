package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Konsultn-Engineering/pitwall/engine"
	"github.com/Konsultn-Engineering/pitwall/internal/cli"
	"github.com/Konsultn-Engineering/pitwall/query"
)

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check database connectivity",
	Long:  `Connect with the configured provider and run "select 1" through the single-statement executor, which wraps it in begin and rollback.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := withQueryTimeout(cmd.Context())
		defer cancel()

		c, conn, err := connect(ctx)
		if err != nil {
			return err
		}
		defer c.Close()

		execute := engine.NewExecutor(conn.Pool(), engine.WithLogger(stderrLogger))

		start := time.Now()
		if _, err := execute(ctx, query.MustBuild([]string{"select 1"}), engine.ExecOptions{AutoRollback: true}); err != nil {
			return cli.DBConnectError("ping", err)
		}
		if !quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "ok (%s via %s, %s)\n", time.Since(start).Round(time.Millisecond), cfg.Provider, conn.Stats())
		}
		return nil
	},
}
