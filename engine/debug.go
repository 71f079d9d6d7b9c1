package engine

import (
	"context"
	"fmt"
	"io"

	"github.com/jackc/pgx/v5/tracelog"
)

// Debug exposes a Transaction's internals for tests and diagnostics. Only
// the query logging and commit/rollback toggles are writable.
type Debug struct {
	tx *Transaction
}

// Debug returns the introspection view of tx.
func (tx *Transaction) Debug() *Debug {
	return &Debug{tx: tx}
}

func (d *Debug) ID() string { return d.tx.id }

func (d *Debug) IsTransactionInProgress() bool { return d.tx.inProgress }

func (d *Debug) State() State { return d.tx.state }

func (d *Debug) WasCommitCalled() bool { return d.tx.wasCommitCalled }

func (d *Debug) WasRollbackCalled() bool { return d.tx.wasRollbackCalled }

func (d *Debug) QueryExecutionCount() int { return d.tx.executions }

// QueryLog returns a copy of the statements recorded so far.
func (d *Debug) QueryLog() []string {
	out := make([]string, len(d.tx.queryLog))
	copy(out, d.tx.queryLog)
	return out
}

func (d *Debug) EnableQueryLogging() bool { return d.tx.opts.EnableQueryLogging }

func (d *Debug) SetEnableQueryLogging(v bool) { d.tx.opts.EnableQueryLogging = v }

func (d *Debug) DisableRollbackAndCommit() bool { return d.tx.opts.DisableRollbackAndCommit }

func (d *Debug) SetDisableRollbackAndCommit(v bool) { d.tx.opts.DisableRollbackAndCommit = v }

// DumpQueries writes every logged statement through the transaction's
// logger at info level.
func (d *Debug) DumpQueries(ctx context.Context) {
	for i, stmt := range d.tx.queryLog {
		d.tx.logger.Log(ctx, tracelog.LogLevelInfo, stmt, map[string]any{"tx": d.tx.id, "seq": i + 1})
	}
}

// DumpQueriesTo writes every logged statement to w, one per line.
func (d *Debug) DumpQueriesTo(w io.Writer) error {
	for _, stmt := range d.tx.queryLog {
		if _, err := fmt.Fprintln(w, stmt); err != nil {
			return err
		}
	}
	return nil
}
