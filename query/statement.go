package query

// Statement is anything an executor can send: a composed *Query, or Raw text
// used verbatim, typically in a preamble.
type Statement interface {
	// Text is the SQL sent to the database.
	Text() string
	// Args are the values bound to the positional markers in Text.
	Args() []any
	// Dump is the human-readable form written to statement logs.
	Dump() string
}

// Raw is literal SQL with nothing bound, e.g. "SET LOCAL statement_timeout = 0".
// Interpolated into Build it is written through as text.
type Raw string

func (r Raw) Text() string { return string(r) }

func (r Raw) Args() []any { return nil }

func (r Raw) Dump() string { return string(r) }

var (
	_ Statement = (*Query)(nil)
	_ Statement = Raw("")
)
