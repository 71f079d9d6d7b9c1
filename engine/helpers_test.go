package engine

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5/tracelog"
	"github.com/stretchr/testify/require"

	"github.com/Konsultn-Engineering/pitwall/query"
)

var errIntentional = errors.New("unit test error intentionally thrown")

type logEntry struct {
	Level tracelog.LogLevel
	Msg   string
	Data  map[string]any
}

// recorder is a tracelog.Logger that keeps every entry.
type recorder struct {
	mu      sync.Mutex
	entries []logEntry
}

func (r *recorder) Log(_ context.Context, level tracelog.LogLevel, msg string, data map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, logEntry{Level: level, Msg: msg, Data: data})
}

func (r *recorder) at(level tracelog.LogLevel) []logEntry {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []logEntry
	for _, e := range r.entries {
		if e.Level == level {
			out = append(out, e)
		}
	}
	return out
}

func build(t *testing.T, parts []string, values ...any) *query.Query {
	t.Helper()
	q, err := query.Build(parts, values...)
	require.NoError(t, err)
	return q
}

func sequentialIDs() IDGenerator {
	n := 0
	return func() string {
		n++
		return "tx-" + strconv.Itoa(n)
	}
}
