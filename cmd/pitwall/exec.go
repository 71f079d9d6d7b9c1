package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gertd/go-pluralize"
	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"

	"github.com/Konsultn-Engineering/pitwall/engine"
	"github.com/Konsultn-Engineering/pitwall/internal/cli"
	"github.com/Konsultn-Engineering/pitwall/query"
)

var (
	execSQL          []string
	execPreamble     []string
	execAutoRollback bool
	execLogQueries   bool
	execTrace        bool
	execShowRows     bool
)

var execCmd = &cobra.Command{
	Use:   "exec [files...]",
	Short: "Run statements in a single transaction",
	Long: `Run each file, then each --sql flag, as one statement inside a single
transaction. The transaction commits when every statement succeeds and rolls
back on the first failure. Each file holds exactly one statement.`,
	Example: `  # Run two migration files atomically
  pitwall exec 001_users.sql 002_orders.sql

  # Dry run: execute, report, then roll back
  pitwall exec --auto-rollback --sql "delete from sessions where expires_at < now()"

  # Scope settings to the transaction
  pitwall exec --preamble "SET LOCAL statement_timeout = '5s'" report.sql`,
	RunE: func(cmd *cobra.Command, args []string) error {
		stmts, err := loadStatements(args, execSQL)
		if err != nil {
			return cli.GeneralError("reading statements", err)
		}
		if len(stmts) == 0 {
			return cli.GeneralError("nothing to execute", fmt.Errorf("pass files or --sql"))
		}

		ctx, cancel := withQueryTimeout(cmd.Context())
		defer cancel()

		c, conn, err := connect(ctx)
		if err != nil {
			return err
		}
		defer c.Close()

		begin := engine.BeginTransaction(conn.Pool(),
			engine.WithLogger(stderrLogger),
			engine.WithIDGenerator(idGenerator(cfg.Exec.IDFormat)),
		)

		var preamble []query.Statement
		for _, s := range cfg.Exec.Preamble {
			preamble = append(preamble, query.Raw(s))
		}
		for _, s := range execPreamble {
			preamble = append(preamble, query.Raw(s))
		}

		out := cmd.OutOrStdout()
		if quiet {
			out = io.Discard
		}
		return runTransaction(ctx, out, begin, engine.TxOptions{
			AutoRollback:         cli.ResolveBool(execAutoRollback, cfg.Exec.AutoRollback),
			SuppressErrorLogging: cfg.Exec.SuppressErrors,
			Preamble:             preamble,
			EnableConsoleTracing: cli.ResolveBool(execTrace, cfg.Exec.Trace),
			EnableQueryLogging:   cli.ResolveBool(execLogQueries, cfg.Exec.LogQueries),
		}, stmts, execShowRows)
	},
}

func init() {
	execCmd.Flags().StringArrayVar(&execSQL, "sql", nil, "statement to run (repeatable, runs after files)")
	execCmd.Flags().StringArrayVar(&execPreamble, "preamble", nil, "statement to run right after begin (repeatable)")
	execCmd.Flags().BoolVar(&execAutoRollback, "auto-rollback", false, "roll back instead of committing")
	execCmd.Flags().BoolVar(&execLogQueries, "log-queries", false, "print every issued statement when done")
	execCmd.Flags().BoolVar(&execTrace, "trace", false, "log transaction lifecycle events to stderr")
	execCmd.Flags().BoolVar(&execShowRows, "rows", false, "print returned rows as YAML")
}

// loadStatements reads one statement per file followed by the inline ones.
func loadStatements(files, inline []string) ([]*query.Query, error) {
	texts := make([]string, 0, len(files)+len(inline))
	for _, name := range files {
		b, err := os.ReadFile(name)
		if err != nil {
			return nil, err
		}
		texts = append(texts, strings.TrimSpace(string(b)))
	}
	texts = append(texts, inline...)

	stmts := make([]*query.Query, 0, len(texts))
	for _, text := range texts {
		q, err := query.Build([]string{text})
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, q)
	}
	return stmts, nil
}

func idGenerator(format string) engine.IDGenerator {
	if format == "ulid" {
		return engine.ULIDs
	}
	return engine.UUIDs
}

var plural = pluralize.NewClient()

// runTransaction executes stmts in one transaction and reports to w.
func runTransaction(ctx context.Context, w io.Writer, begin engine.Begin, opts engine.TxOptions, stmts []*query.Query, showRows bool) error {
	tx, err := begin(ctx, opts)
	if err != nil {
		return cli.StatementError("starting transaction", err)
	}
	d := tx.Debug()

	var affected int64
	for i, q := range stmts {
		res, err := tx.ExecuteQuery(ctx, q)
		if err != nil {
			if d.IsTransactionInProgress() {
				_ = tx.Rollback(ctx)
			}
			return cli.StatementError(fmt.Sprintf("statement %d of %d (transaction %s %s)", i+1, len(stmts), tx.ID(), d.State()), err)
		}
		affected += res.RowsAffected
		fmt.Fprintf(w, "%d: %s returned, %d affected\n", i+1, plural.Pluralize("row", res.Len(), true), res.RowsAffected)
		if showRows && res.Len() > 0 {
			out, err := yaml.Marshal(res.Maps())
			if err != nil {
				return cli.GeneralError("encoding rows", err)
			}
			if _, err := w.Write(out); err != nil {
				return err
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return cli.StatementError(fmt.Sprintf("ending transaction %s (%s)", tx.ID(), d.State()), err)
	}

	if d.EnableQueryLogging() {
		fmt.Fprintln(w, "--")
		if err := d.DumpQueriesTo(w); err != nil {
			return err
		}
		fmt.Fprintln(w, "--")
	}
	fmt.Fprintf(w, "%s in transaction %s: %s, %s affected\n",
		plural.Pluralize("statement", d.QueryExecutionCount(), true), tx.ID(), d.State(),
		plural.Pluralize("row", int(affected), true))
	return nil
}
