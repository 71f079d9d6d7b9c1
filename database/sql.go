package database

import (
	"context"
	"database/sql"
)

// SQLPool implements Pool for *sql.DB, pinning one *sql.Conn per Connect so
// every statement of a transaction runs on the same session.
type SQLPool struct {
	db *sql.DB
}

// NewSQLPool creates a new SQLPool.
func NewSQLPool(db *sql.DB) *SQLPool {
	return &SQLPool{db: db}
}

// Connect reserves a single connection from the database/sql pool.
func (p *SQLPool) Connect(ctx context.Context) (Conn, error) {
	conn, err := p.db.Conn(ctx)
	if err != nil {
		return nil, err
	}
	return &SQLConn{conn: conn}, nil
}

// Ping verifies the database is reachable.
func (p *SQLPool) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

// Close closes the database.
func (p *SQLPool) Close() error {
	return p.db.Close()
}

// SQLConn implements Conn for *sql.Conn.
type SQLConn struct {
	conn *sql.Conn
}

// Query runs text on the reserved connection. database/sql does not report
// affected rows for queries, so RowsAffected stays zero.
func (c *SQLConn) Query(ctx context.Context, text string, args ...any) (*Result, error) {
	rows, err := c.conn.QueryContext(ctx, text, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	result := &Result{Columns: columns}
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		result.Rows = append(result.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Release returns the connection to the database/sql pool.
func (c *SQLConn) Release() {
	_ = c.conn.Close()
}

// Assert that SQLPool implements the Pool interface.
var _ Pool = (*SQLPool)(nil)
