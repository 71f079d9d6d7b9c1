package engine

import (
	"context"

	"github.com/jackc/pgx/v5/tracelog"

	"github.com/Konsultn-Engineering/pitwall/database"
	"github.com/Konsultn-Engineering/pitwall/query"
)

// TxOptions configures a Transaction. The zero value commits on Commit,
// logs failures, runs no preamble and keeps no statement log.
type TxOptions struct {
	// AutoRollback turns Commit into a rollback.
	AutoRollback bool
	// SuppressErrorLogging silences failure diagnostics.
	SuppressErrorLogging bool
	// Preamble runs after begin, in order, before the transaction is
	// handed to the caller.
	Preamble []query.Statement
	// EnableConsoleTracing writes lifecycle events through the logger.
	EnableConsoleTracing bool
	// EnableQueryLogging records every issued statement in the
	// transaction's statement log.
	EnableQueryLogging bool
	// DisableRollbackAndCommit turns Commit and Rollback into no-ops that
	// only record they were called. Intended for test harnesses that wrap
	// application code in an outer transaction.
	DisableRollbackAndCommit bool
}

// Begin starts a Transaction on a freshly acquired connection.
type Begin func(ctx context.Context, opts TxOptions) (*Transaction, error)

// BeginTransaction returns a Begin bound to pool.
func BeginTransaction(pool database.Pool, opts ...Option) Begin {
	s := newSettings(opts)

	return func(ctx context.Context, o TxOptions) (*Transaction, error) {
		tx := &Transaction{
			id:     s.ids(),
			logger: s.logger,
			opts:   o,
		}
		if err := tx.start(ctx, pool); err != nil {
			return nil, err
		}
		return tx, nil
	}
}

// Transaction holds one connection from begin until Commit, Rollback or the
// first failing statement. A Transaction is not safe for concurrent use:
// every method must be called from a single goroutine, one at a time.
type Transaction struct {
	id     string
	logger tracelog.Logger
	opts   TxOptions

	conn     database.Conn
	released bool

	inProgress        bool
	state             State
	wasCommitCalled   bool
	wasRollbackCalled bool
	executions        int
	queryLog          []string
}

func (tx *Transaction) start(ctx context.Context, pool database.Pool) error {
	conn, err := pool.Connect(ctx)
	if err != nil {
		tx.logError(ctx, err, nil)
		return err
	}
	tx.conn = conn
	tx.inProgress = true
	tx.trace(ctx, "client connected")

	if err := tx.issue(ctx, beginStatement); err != nil {
		return tx.abort(ctx, err, nil)
	}
	tx.trace(ctx, "transaction begun")

	if len(tx.opts.Preamble) > 0 {
		tx.trace(ctx, "running preamble")
	}
	for _, stmt := range tx.opts.Preamble {
		if err := tx.issue(ctx, stmt); err != nil {
			return tx.abort(ctx, err, stmt)
		}
	}

	tx.state = Started
	return nil
}

// ID identifies the transaction in logs.
func (tx *Transaction) ID() string { return tx.id }

func (tx *Transaction) AutoRollback() bool { return tx.opts.AutoRollback }

func (tx *Transaction) SuppressErrorLogging() bool { return tx.opts.SuppressErrorLogging }

func (tx *Transaction) EnableTracing() bool { return tx.opts.EnableConsoleTracing }

// ExecuteQuery runs q on the transaction's connection. On failure the
// transaction is rolled back and its connection released; on success it
// stays open for further statements.
func (tx *Transaction) ExecuteQuery(ctx context.Context, q *query.Query) (*database.Result, error) {
	if !tx.inProgress {
		return nil, query.ErrNoTransactionInProgress
	}
	if q == nil || q.SQL() == "" {
		return nil, query.ErrEmptySQL
	}

	tx.executions++
	tx.record(q)

	result, err := tx.conn.Query(ctx, q.SQL(), q.Args()...)
	if err != nil {
		return nil, tx.abort(ctx, err, q)
	}
	tx.trace(ctx, "query executed")
	return result, nil
}

// Commit ends the transaction with commit, or with rollback when
// AutoRollback is set. The connection is released either way.
func (tx *Transaction) Commit(ctx context.Context) error {
	tx.wasCommitCalled = true
	if !tx.inProgress {
		return query.ErrNoTransactionInProgress
	}
	if tx.opts.DisableRollbackAndCommit {
		tx.trace(ctx, "disableRollbackAndCommit is set, commit ignored")
		return nil
	}
	tx.trace(ctx, "transaction.commit")

	stmt, next := commitStatement, Committed
	if tx.opts.AutoRollback {
		tx.trace(ctx, "transaction.commit -> autoRollback override")
		stmt, next = rollbackStatement, RolledBack
	}

	if err := tx.issue(ctx, stmt); err != nil {
		return tx.abort(ctx, err, nil)
	}
	tx.finish(ctx, next)
	return nil
}

// Rollback ends the transaction with rollback and releases the connection.
// If the rollback fails a second attempt is made. When that attempt succeeds
// the transaction ends RolledBack and the first error is still returned;
// otherwise it ends in FailedToRollback with the error of the retry.
// Rollbacks are sent even when ctx is already done.
func (tx *Transaction) Rollback(ctx context.Context) error {
	tx.wasRollbackCalled = true
	if !tx.inProgress {
		return query.ErrNoTransactionInProgress
	}
	if tx.opts.DisableRollbackAndCommit {
		tx.trace(ctx, "disableRollbackAndCommit is set, rollback ignored")
		return nil
	}
	tx.trace(ctx, "transaction.rollback")

	cleanup := context.WithoutCancel(ctx)
	if err := tx.issue(cleanup, rollbackStatement); err != nil {
		tx.logError(ctx, err, nil)
		if retryErr := tx.issue(cleanup, rollbackStatement); retryErr != nil {
			tx.logError(ctx, retryErr, rollbackStatement)
			tx.finish(ctx, FailedToRollback)
			return retryErr
		}
		tx.trace(ctx, "rolling back because of exception")
		tx.finish(ctx, RolledBack)
		return err
	}
	tx.finish(ctx, RolledBack)
	return nil
}

// abort handles a failed statement: it logs, attempts a rollback and ends
// the transaction. The original error is returned unless the rollback
// itself failed, in which case that failure is returned. The rollback
// ignores cancellation of ctx so the session never goes back to the pool
// inside an open transaction.
func (tx *Transaction) abort(ctx context.Context, cause error, stmt query.Statement) error {
	tx.logError(ctx, cause, stmt)

	if err := tx.issue(context.WithoutCancel(ctx), rollbackStatement); err != nil {
		tx.logError(ctx, err, rollbackStatement)
		tx.finish(ctx, FailedToRollback)
		return err
	}
	tx.trace(ctx, "rolling back because of exception")
	tx.finish(ctx, RolledBack)
	return cause
}

// finish moves to a terminal state and gives the connection back.
func (tx *Transaction) finish(ctx context.Context, next State) {
	tx.state = next
	tx.inProgress = false
	tx.release(ctx)
}

func (tx *Transaction) release(ctx context.Context) {
	if tx.released || tx.conn == nil {
		return
	}
	tx.released = true
	tx.conn.Release()
	tx.trace(ctx, "client released")
}

// issue sends stmt and records it in the statement log once it succeeded.
func (tx *Transaction) issue(ctx context.Context, stmt query.Statement) error {
	if _, err := tx.conn.Query(ctx, stmt.Text(), stmt.Args()...); err != nil {
		return err
	}
	tx.record(stmt)
	return nil
}

func (tx *Transaction) record(stmt query.Statement) {
	if tx.opts.EnableQueryLogging {
		tx.queryLog = append(tx.queryLog, stmt.Dump())
	}
}

func (tx *Transaction) trace(ctx context.Context, msg string) {
	if tx.opts.EnableConsoleTracing {
		tx.logger.Log(ctx, tracelog.LogLevelTrace, msg, map[string]any{"tx": tx.id})
	}
}

func (tx *Transaction) logError(ctx context.Context, err error, stmt query.Statement) {
	logDBError(ctx, tx.logger, tx.opts.SuppressErrorLogging, err, stmt, map[string]any{"tx": tx.id})
}
