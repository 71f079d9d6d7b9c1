package connector

import (
	"context"

	"github.com/Konsultn-Engineering/pitwall/dialect"
)

// Provider opens Connections for one driver.
type Provider interface {
	Connect(ctx context.Context, config Config) (Connection, error)
	Dialect() dialect.Dialect
}
