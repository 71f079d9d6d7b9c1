package engine

import (
	"context"

	"github.com/jackc/pgx/v5/tracelog"

	"github.com/Konsultn-Engineering/pitwall/database"
	"github.com/Konsultn-Engineering/pitwall/query"
)

// ExecOptions tunes a single-statement execution. The zero value commits,
// logs failures and runs no preamble.
type ExecOptions struct {
	// AutoRollback ends the statement with rollback instead of commit.
	AutoRollback bool
	// SuppressErrorLogging silences failure diagnostics.
	SuppressErrorLogging bool
	// Preamble runs after begin and before the statement, in order.
	Preamble []query.Statement
}

// Execute runs one query on a fresh connection inside begin/commit.
// At most one ExecOptions is honored.
type Execute func(ctx context.Context, q *query.Query, opts ...ExecOptions) (*database.Result, error)

// NewExecutor returns an Execute bound to pool. Each call acquires its own
// connection and releases it before returning; nothing is shared between
// calls.
func NewExecutor(pool database.Pool, opts ...Option) Execute {
	s := newSettings(opts)

	return func(ctx context.Context, q *query.Query, options ...ExecOptions) (*database.Result, error) {
		var o ExecOptions
		if len(options) > 0 {
			o = options[0]
		}
		return s.execute(ctx, pool, q, o)
	}
}

func (s *settings) execute(ctx context.Context, pool database.Pool, q *query.Query, o ExecOptions) (*database.Result, error) {
	conn, err := pool.Connect(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	if q == nil || q.SQL() == "" {
		data := map[string]any{}
		if q != nil {
			data["sql"] = q.Debug()
		}
		s.logger.Log(ctx, tracelog.LogLevelError,
			"query execution error: empty SQL. This likely means something went wrong when building the query", data)
		return nil, query.ErrEmptySQL
	}

	result, err := runSingle(ctx, conn, q, o)
	if err != nil {
		logDBError(ctx, s.logger, o.SuppressErrorLogging, err, q, nil)
		// sent even when ctx is done; the connection is released right after
		if _, rbErr := conn.Query(context.WithoutCancel(ctx), rollbackStatement.Text()); rbErr != nil {
			logDBError(ctx, s.logger, o.SuppressErrorLogging, rbErr, rollbackStatement, nil)
			return nil, rbErr
		}
		return nil, err
	}
	return result, nil
}

func runSingle(ctx context.Context, conn database.Conn, q *query.Query, o ExecOptions) (*database.Result, error) {
	if _, err := conn.Query(ctx, beginStatement.Text()); err != nil {
		return nil, err
	}

	for _, stmt := range o.Preamble {
		if _, err := conn.Query(ctx, stmt.Text(), stmt.Args()...); err != nil {
			return nil, err
		}
	}

	result, err := conn.Query(ctx, q.SQL(), q.Args()...)
	if err != nil {
		return nil, err
	}

	end := commitStatement
	if o.AutoRollback {
		end = rollbackStatement
	}
	if _, err := conn.Query(ctx, end.Text()); err != nil {
		return nil, err
	}
	return result, nil
}
