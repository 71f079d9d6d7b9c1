// Package pq registers the "pq" connector provider: lib/pq driving
// database/sql. Useful where the pgx pool is unavailable or a *sql.DB has
// to be shared with other code.
package pq

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/Konsultn-Engineering/pitwall/connector"
	"github.com/Konsultn-Engineering/pitwall/database"
	"github.com/Konsultn-Engineering/pitwall/dialect"
)

const Name = "pq"

// driverName is the name lib/pq registers with database/sql.
const driverName = "postgres"

type Provider struct{}

func init() {
	connector.Register(Name, &Provider{})
}

func (p *Provider) Connect(ctx context.Context, cfg connector.Config) (connector.Connection, error) {
	db, err := sql.Open(driverName, cfg.DSN("postgres"))
	if err != nil {
		return nil, fmt.Errorf("open pq: %w", err)
	}

	if cfg.Pool.MaxOpen > 0 {
		db.SetMaxOpenConns(cfg.Pool.MaxOpen)
	}
	if cfg.Pool.MaxIdle > 0 {
		db.SetMaxIdleConns(cfg.Pool.MaxIdle)
	}
	db.SetConnMaxLifetime(cfg.Pool.MaxLifetime)
	db.SetConnMaxIdleTime(cfg.Pool.MaxIdleTime)

	return &connection{db: db, pool: database.NewSQLPool(db)}, nil
}

func (p *Provider) Dialect() dialect.Dialect {
	return dialect.NewPostgresDialect()
}

type connection struct {
	db   *sql.DB
	pool *database.SQLPool
}

func (c *connection) Pool() database.Pool {
	return c.pool
}

func (c *connection) Dialect() dialect.Dialect {
	return dialect.NewPostgresDialect()
}

func (c *connection) Health(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

func (c *connection) Stats() connector.ConnectionStats {
	s := c.db.Stats()
	return connector.ConnectionStats{
		OpenConnections: s.OpenConnections,
		InUse:           s.InUse,
		Idle:            s.Idle,
	}
}

func (c *connection) Close() error {
	return c.db.Close()
}
