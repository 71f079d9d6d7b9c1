// Command pitwall runs SQL against PostgreSQL inside a managed transaction.
//
// Usage:
//
//	pitwall [flags] <command>
//
// Commands:
//   - exec: run statements from files or flags in one transaction
//   - ping: check connectivity with a single-statement round trip
//   - canonicalize: collapse SQL whitespace for comparison
//   - config show: print the effective configuration
//   - version: print version information
package main

func main() {
	Execute()
}
