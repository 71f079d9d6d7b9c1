// Package engine executes composed queries: one statement at a time inside
// an implicit begin/commit, or many statements inside an explicit
// Transaction whose connection is held until commit or rollback.
package engine

import (
	"context"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/tracelog"
	"github.com/oklog/ulid/v2"

	"github.com/Konsultn-Engineering/pitwall/query"
)

const logPrefix = "pitwall"

// Transaction control statements. They are issued verbatim and are what
// appears in statement logs.
var (
	beginStatement    = query.Raw("begin;")
	commitStatement   = query.Raw("commit;")
	rollbackStatement = query.Raw("rollback;")
)

// IDGenerator produces transaction identifiers.
type IDGenerator func() string

// UUIDs generates random v4 UUIDs. It is the default IDGenerator.
func UUIDs() string {
	return uuid.NewString()
}

// ULIDs generates lexicographically sortable ULIDs, useful when transaction
// ids are grepped out of time-ordered logs.
func ULIDs() string {
	return ulid.Make().String()
}

// Option configures an executor or transaction factory.
type Option func(*settings)

type settings struct {
	logger tracelog.Logger
	ids    IDGenerator
}

// WithLogger routes error diagnostics and tracing to l. The default writes
// through the standard library logger to stderr.
func WithLogger(l tracelog.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithIDGenerator replaces the transaction id generator.
func WithIDGenerator(g IDGenerator) Option {
	return func(s *settings) {
		if g != nil {
			s.ids = g
		}
	}
}

func newSettings(opts []Option) *settings {
	s := &settings{
		logger: StdLogger(log.New(os.Stderr, "", log.LstdFlags)),
		ids:    UUIDs,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// StdLogger adapts a standard library logger to tracelog.Logger. Data keys
// are written in sorted order.
func StdLogger(l *log.Logger) tracelog.Logger {
	return tracelog.LoggerFunc(func(ctx context.Context, level tracelog.LogLevel, msg string, data map[string]any) {
		var sb strings.Builder
		sb.WriteString("[" + logPrefix + "] ")
		sb.WriteString(strings.ToUpper(level.String()))
		sb.WriteString(": ")
		sb.WriteString(msg)

		keys := make([]string, 0, len(data))
		for k := range data {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&sb, " %s=%v", k, data[k])
		}
		l.Print(sb.String())
	})
}

// logDBError writes the failing statement's dump and the error, unless
// suppressed. It never alters control flow.
func logDBError(ctx context.Context, l tracelog.Logger, suppress bool, err error, stmt query.Statement, data map[string]any) {
	if suppress || err == nil {
		return
	}
	if data == nil {
		data = make(map[string]any, 2)
	}
	if stmt != nil {
		data["sql"] = stmt.Dump()
	}
	data["err"] = err.Error()
	l.Log(ctx, tracelog.LogLevelError, "DB Error", data)
}
