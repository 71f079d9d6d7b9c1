// Package postgres registers the "postgres" connector provider, backed by
// a pgx connection pool.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jackc/pgx/v5/tracelog"

	"github.com/Konsultn-Engineering/pitwall/connector"
	"github.com/Konsultn-Engineering/pitwall/database"
	"github.com/Konsultn-Engineering/pitwall/dialect"
)

const Name = "postgres"

type Provider struct{}

func init() {
	connector.Register(Name, &Provider{})
}

// PoolConfig translates cfg into a pgxpool config, applying pool defaults
// and installing a statement tracer when cfg.TraceLevel is set.
func (p *Provider) PoolConfig(cfg connector.Config) (*pgxpool.Config, error) {
	if cfg.Pool.MaxOpen <= 0 {
		cfg.Pool.MaxOpen = 10
	}
	if cfg.Pool.MaxIdle < 0 {
		cfg.Pool.MaxIdle = 0
	}
	if cfg.Pool.MaxIdle > cfg.Pool.MaxOpen {
		cfg.Pool.MaxIdle = cfg.Pool.MaxOpen
	}
	if cfg.Pool.MaxLifetime == 0 {
		cfg.Pool.MaxLifetime = time.Hour
	}
	if cfg.Pool.MaxIdleTime == 0 {
		cfg.Pool.MaxIdleTime = 30 * time.Minute
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN(Name))
	if err != nil {
		return nil, fmt.Errorf("parse postgres config: %w", err)
	}

	poolCfg.MaxConns = int32(cfg.Pool.MaxOpen)
	poolCfg.MinConns = int32(cfg.Pool.MaxIdle)
	poolCfg.MaxConnLifetime = cfg.Pool.MaxLifetime
	poolCfg.MaxConnIdleTime = cfg.Pool.MaxIdleTime
	if cfg.Pool.HealthCheckFreq > 0 {
		poolCfg.HealthCheckPeriod = cfg.Pool.HealthCheckFreq
	}

	level, err := cfg.TraceLogLevel()
	if err != nil {
		return nil, err
	}
	if level != tracelog.LogLevelNone && cfg.Logger != nil {
		poolCfg.ConnConfig.Tracer = &tracelog.TraceLog{
			Logger:   cfg.Logger,
			LogLevel: level,
		}
	}

	return poolCfg, nil
}

func (p *Provider) Connect(ctx context.Context, cfg connector.Config) (connector.Connection, error) {
	poolCfg, err := p.PoolConfig(cfg)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, err
	}

	return &connection{pool: pool, wrapped: database.NewPgxPool(pool)}, nil
}

func (p *Provider) Dialect() dialect.Dialect {
	return dialect.NewPostgresDialect()
}

type connection struct {
	pool    *pgxpool.Pool
	wrapped *database.PgxPool

	dbOnce sync.Once
	db     *sql.DB
}

func (c *connection) Pool() database.Pool {
	return c.wrapped
}

// DB exposes the pool as a *sql.DB for code that needs database/sql. The
// returned DB shares the pool's connections, is the same on every call and
// is closed by Close.
func (c *connection) DB() *sql.DB {
	c.dbOnce.Do(func() {
		c.db = stdlib.OpenDBFromPool(c.pool)
	})
	return c.db
}

func (c *connection) Dialect() dialect.Dialect {
	return dialect.NewPostgresDialect()
}

func (c *connection) Health(ctx context.Context) error {
	return c.pool.Ping(ctx)
}

func (c *connection) Stats() connector.ConnectionStats {
	s := c.pool.Stat()
	return connector.ConnectionStats{
		OpenConnections: int(s.TotalConns()),
		InUse:           int(s.AcquiredConns()),
		Idle:            int(s.IdleConns()),
	}
}

func (c *connection) Close() error {
	var err error
	if c.db != nil {
		err = c.db.Close()
	}
	c.pool.Close()
	return err
}
