package query

import (
	"strings"
	"sync"

	"github.com/Konsultn-Engineering/pitwall/cache"
	"github.com/Konsultn-Engineering/pitwall/dialect"
)

var pg = dialect.NewPostgresDialect()

// Query is an immutable composed statement. It carries SQL written with
// named placeholder tokens and the deduplicated parameters those tokens refer
// to, in first-seen order. Positional SQL and the literal dump are derived
// from those two fields only.
//
// Queries are built with Build and must not be copied after first use.
type Query struct {
	namedSQL string
	params   []Parameter

	once sync.Once
	sql  string
}

// NamedSQL returns the SQL with placeholder tokens in place of parameters.
func (q *Query) NamedSQL() string {
	return q.namedSQL
}

// Params returns a copy of the query's parameters in binding order.
func (q *Query) Params() []Parameter {
	out := make([]Parameter, len(q.params))
	copy(out, q.params)
	return out
}

// Args returns the values bound to $1, $2, ... in order.
func (q *Query) Args() []any {
	args := make([]any, len(q.params))
	for i, p := range q.params {
		args[i] = p.Value
	}
	return args
}

// SQL returns the statement with every placeholder token replaced by its
// positional marker, dedented. A query without parameters is returned as
// written.
func (q *Query) SQL() string {
	q.once.Do(func() {
		q.sql = cache.Default.GetOrRender(q.render, q.cacheSource()...)
	})
	return q.sql
}

// Text implements Statement.
func (q *Query) Text() string {
	return q.SQL()
}

func (q *Query) render() string {
	if len(q.params) == 0 {
		return q.namedSQL
	}
	sql := q.namedSQL
	for i, p := range q.params {
		sql = strings.ReplaceAll(sql, placeholderToken(p.Name), pg.Placeholder(i+1))
	}
	return dedent(sql)
}

func (q *Query) cacheSource() []string {
	source := make([]string, 0, len(q.params)+1)
	source = append(source, q.namedSQL)
	for _, p := range q.params {
		source = append(source, p.Name)
	}
	return source
}

// Dump renders the query with literal values substituted for the positional
// markers. It is meant for logs and test assertions; never execute it.
func (q *Query) Dump() string {
	out := q.SQL()
	// highest index first so $1 never rewrites the prefix of $10
	for i := len(q.params) - 1; i >= 0; i-- {
		out = strings.ReplaceAll(out, pg.Placeholder(i+1), pg.DumpValue(q.params[i].Value))
	}
	return dedent(out)
}

// Debug is an alias of Dump.
func (q *Query) Debug() string {
	return q.Dump()
}
