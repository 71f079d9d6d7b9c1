// Package cache keeps rendered positional SQL for query templates that are
// composed repeatedly, so hot paths skip placeholder substitution and dedent.
package cache

import (
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultSize bounds the process-wide cache used by the query package.
const DefaultSize = 1024

// Default is the cache behind query.Query.SQL.
var Default = NewSQLCache(DefaultSize)

// CachedSQL pairs a rendered statement with the exact source it came from.
// The source is compared on every hit so a fingerprint collision can never
// hand back another template's SQL.
type CachedSQL struct {
	Source string
	SQL    string
}

// SQLCache is a bounded LRU of rendered SQL, safe for concurrent use.
type SQLCache struct {
	cache *lru.Cache[uint64, *CachedSQL]
}

// NewSQLCache creates a cache holding at most size rendered statements.
// A non-positive size falls back to DefaultSize.
func NewSQLCache(size int) *SQLCache {
	if size <= 0 {
		size = DefaultSize
	}
	cache, _ := lru.New[uint64, *CachedSQL](size)
	return &SQLCache{cache: cache}
}

// GetOrRender returns the SQL rendered for the given source parts, calling
// render on a miss and remembering the result.
func (c *SQLCache) GetOrRender(render func() string, parts ...string) string {
	source := strings.Join(parts, keySeparator)
	key := Fingerprint(parts...)

	if hit, ok := c.cache.Get(key); ok && hit.Source == source {
		return hit.SQL
	}

	sql := render()
	c.cache.Add(key, &CachedSQL{Source: source, SQL: sql})
	return sql
}

// Len reports how many rendered statements are held.
func (c *SQLCache) Len() int {
	return c.cache.Len()
}

// Purge drops every cached statement.
func (c *SQLCache) Purge() {
	c.cache.Purge()
}
