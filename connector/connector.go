// Package connector opens database pools from a Config through named
// providers. Providers register themselves from an init function, so a
// program selects drivers with blank imports:
//
//	import _ "github.com/Konsultn-Engineering/pitwall/providers/postgres"
package connector

import (
	"context"

	"github.com/Konsultn-Engineering/pitwall/database"
	"github.com/Konsultn-Engineering/pitwall/dialect"
)

// Connection is an open pool plus its lifecycle.
type Connection interface {
	Pool() database.Pool
	Dialect() dialect.Dialect
	Health(ctx context.Context) error
	Stats() ConnectionStats
	Close() error
}

type Connector interface {
	Connect(ctx context.Context) (Connection, error)
	Close() error
}
