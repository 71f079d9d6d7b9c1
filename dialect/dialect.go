// Package dialect renders the database-specific pieces of a composed query:
// positional placeholders and the literal forms used in diagnostic dumps.
package dialect

// Dialect describes how positional markers and dump literals are written.
type Dialect interface {
	// Name identifies the dialect in logs and configuration.
	Name() string
	// Placeholder returns the positional marker for the n-th bound value (1-based).
	Placeholder(n int) string
	// DumpValue renders v as a literal for human-readable query dumps.
	// The output is for diagnostics only and is never executed.
	DumpValue(v any) string
}
