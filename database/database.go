// Package database defines the connection-pool boundary pitwall executes
// against, with adapters for pgxpool and database/sql.
package database

import (
	"context"
)

// Pool hands out connections. Connect fails on pool exhaustion, network
// errors or context cancellation.
type Pool interface {
	Connect(ctx context.Context) (Conn, error)
}

// Conn is a connection held exclusively by one caller until Release.
// Query runs a single statement with positional args and returns its
// fully read result, leaving the connection ready for the next statement.
type Conn interface {
	Query(ctx context.Context, text string, args ...any) (*Result, error)
	Release()
}

// Result is a materialized row set.
type Result struct {
	Columns      []string
	Rows         [][]any
	RowsAffected int64
	// CommandTag is the server completion tag (e.g. "INSERT 0 1") when the
	// driver exposes it.
	CommandTag string
}

// Len returns the number of rows.
func (r *Result) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Rows)
}

// Maps returns each row keyed by column name. Byte slices are converted to
// strings.
func (r *Result) Maps() []map[string]any {
	if r == nil {
		return nil
	}

	out := make([]map[string]any, 0, len(r.Rows))
	for _, values := range r.Rows {
		row := make(map[string]any, len(r.Columns))
		for i, col := range r.Columns {
			if i >= len(values) {
				break
			}
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
			} else {
				row[col] = values[i]
			}
		}
		out = append(out, row)
	}
	return out
}
