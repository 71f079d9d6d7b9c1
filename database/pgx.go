package database

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxPool implements Pool for pgxpool.Pool.
type PgxPool struct {
	pool *pgxpool.Pool
}

// NewPgxPool creates a new PgxPool.
func NewPgxPool(pool *pgxpool.Pool) *PgxPool {
	return &PgxPool{pool: pool}
}

// Connect acquires a connection from the pool.
func (p *PgxPool) Connect(ctx context.Context) (Conn, error) {
	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	return &PgxConn{conn: conn}, nil
}

// Ping verifies a connection can be acquired and used.
func (p *PgxPool) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// Close closes the pool.
func (p *PgxPool) Close() {
	p.pool.Close()
}

// PgxConn implements Conn for an acquired pgxpool connection.
type PgxConn struct {
	conn *pgxpool.Conn
}

// Query runs text on the held connection. Statements without arguments go
// over the simple protocol, so transaction control and multi-statement
// preambles are sent as written.
func (c *PgxConn) Query(ctx context.Context, text string, args ...any) (*Result, error) {
	if len(args) == 0 {
		args = []any{pgx.QueryExecModeSimpleProtocol}
	}

	rows, err := c.conn.Query(ctx, text, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	result := &Result{Columns: make([]string, len(fields))}
	for i, fd := range fields {
		result.Columns[i] = fd.Name
	}

	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, err
		}
		result.Rows = append(result.Rows, values)
	}

	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	tag := rows.CommandTag()
	result.RowsAffected = tag.RowsAffected()
	result.CommandTag = tag.String()
	return result, nil
}

// Release returns the connection to the pool.
func (c *PgxConn) Release() {
	c.conn.Release()
}

// Assert that PgxPool implements the Pool interface.
var _ Pool = (*PgxPool)(nil)
