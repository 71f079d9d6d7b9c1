//go:build integration

package engine_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/Konsultn-Engineering/pitwall/connector"
	"github.com/Konsultn-Engineering/pitwall/database"
	"github.com/Konsultn-Engineering/pitwall/engine"
	"github.com/Konsultn-Engineering/pitwall/query"

	pgprovider "github.com/Konsultn-Engineering/pitwall/providers/postgres"
	pqprovider "github.com/Konsultn-Engineering/pitwall/providers/pq"
)

var (
	containerOnce sync.Once
	containerDSN  string
	containerErr  error
)

// startPostgres lazily starts one container for the whole test binary.
// Ryuk removes it when the process exits.
func startPostgres(t *testing.T) string {
	t.Helper()
	containerOnce.Do(func() {
		ctx := context.Background()
		container, err := postgres.Run(ctx,
			"postgres:16-alpine",
			postgres.WithDatabase("pitwall"),
			postgres.WithUsername("test"),
			postgres.WithPassword("test"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(60*time.Second),
			),
		)
		if err != nil {
			containerErr = fmt.Errorf("failed to start PostgreSQL container: %w", err)
			return
		}
		containerDSN, containerErr = container.ConnectionString(ctx, "sslmode=disable")
	})
	require.NoError(t, containerErr)
	return containerDSN
}

// pools yields the same server through every adapter.
func pools(t *testing.T) map[string]database.Pool {
	t.Helper()
	dsn := startPostgres(t)
	ctx := context.Background()

	out := make(map[string]database.Pool)
	for _, name := range []string{pgprovider.Name, pqprovider.Name} {
		c, err := connector.New(name, connector.Config{URL: dsn, Pool: connector.PoolConfig{MaxOpen: 4}})
		require.NoError(t, err)
		conn, err := c.Connect(ctx)
		require.NoError(t, err)
		t.Cleanup(func() { _ = c.Close() })
		out[name] = conn.Pool()

		if withDB, ok := conn.(interface{ DB() *sql.DB }); ok {
			out[name+"+stdlib"] = database.NewSQLPool(withDB.DB())
		}
	}
	return out
}

func setupTable(t *testing.T, pool database.Pool, table string) {
	t.Helper()
	execute := engine.NewExecutor(pool)
	ctx := context.Background()

	_, err := execute(ctx, query.MustBuild([]string{"drop table if exists " + table}))
	require.NoError(t, err)
	_, err = execute(ctx, query.MustBuild([]string{"create table " + table + " (id int primary key, name text not null)"}))
	require.NoError(t, err)
}

func countRows(t *testing.T, pool database.Pool, table string) int64 {
	t.Helper()
	res, err := engine.NewExecutor(pool)(context.Background(), query.MustBuild([]string{"select count(*) as n from " + table}))
	require.NoError(t, err)
	require.Equal(t, 1, res.Len())

	switch n := res.Rows[0][0].(type) {
	case int64:
		return n
	default:
		t.Fatalf("unexpected count type %T", n)
		return 0
	}
}

func TestIntegrationExecutor(t *testing.T) {
	for name, pool := range pools(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			execute := engine.NewExecutor(pool)

			q := query.MustBuild([]string{"select ", "::int + 1 as next, ", "::text as label"},
				query.Param("n", 41), query.Param("label", "answer"))
			res, err := execute(ctx, q)
			require.NoError(t, err)

			rows := res.Maps()
			require.Len(t, rows, 1)
			assert.EqualValues(t, 42, rows[0]["next"])
			assert.Equal(t, "answer", rows[0]["label"])
		})
	}
}

func TestIntegrationTransactionCommit(t *testing.T) {
	for name, pool := range pools(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			table := "commit_" + sanitize(name)
			setupTable(t, pool, table)

			tx, err := engine.BeginTransaction(pool)(ctx, engine.TxOptions{
				EnableQueryLogging: true,
				Preamble:           []query.Statement{query.Raw("SET LOCAL lock_timeout = '2s'")},
			})
			require.NoError(t, err)

			for i, n := range []string{"ada", "grace", "edsger"} {
				_, err := tx.ExecuteQuery(ctx, query.MustBuild(
					[]string{"insert into " + table + " (id, name) values (", ", ", ")"},
					query.Param("id", i+1), query.Param("name", n)))
				require.NoError(t, err)
			}

			ids := query.Param("ids", []int{1, 3})
			res, err := tx.ExecuteQuery(ctx, query.MustBuild(
				[]string{"select name from " + table + " where id in (", ") order by id"}, ids))
			require.NoError(t, err)
			assert.Equal(t, []map[string]any{{"name": "ada"}, {"name": "edsger"}}, res.Maps())

			require.NoError(t, tx.Commit(ctx))
			assert.Equal(t, engine.Committed, tx.Debug().State())
			assert.Equal(t, "insert into "+table+" (id, name) values (1, 'ada')", tx.Debug().QueryLog()[2])
			assert.EqualValues(t, 3, countRows(t, pool, table))
		})
	}
}

func TestIntegrationTransactionRollsBackOnError(t *testing.T) {
	for name, pool := range pools(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			table := "rollback_" + sanitize(name)
			setupTable(t, pool, table)

			tx, err := engine.BeginTransaction(pool)(ctx, engine.TxOptions{SuppressErrorLogging: true})
			require.NoError(t, err)

			insert := func(id int) error {
				_, err := tx.ExecuteQuery(ctx, query.MustBuild(
					[]string{"insert into " + table + " (id, name) values (", ", 'x')"}, query.Param("id", id)))
				return err
			}
			require.NoError(t, insert(1))
			err = insert(1)
			require.Error(t, err)

			var pgErr *pgconn.PgError
			var pqErr *pq.Error
			switch {
			case errors.As(err, &pgErr):
				assert.Equal(t, "23505", pgErr.Code)
			case errors.As(err, &pqErr):
				assert.Equal(t, pq.ErrorCode("23505"), pqErr.Code)
			default:
				t.Fatalf("unexpected error type %T: %v", err, err)
			}

			assert.Equal(t, engine.RolledBack, tx.Debug().State())
			assert.ErrorIs(t, tx.Commit(ctx), query.ErrNoTransactionInProgress)
			assert.Zero(t, countRows(t, pool, table))
		})
	}
}

func TestIntegrationAutoRollback(t *testing.T) {
	for name, pool := range pools(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			table := "auto_" + sanitize(name)
			setupTable(t, pool, table)

			_, err := engine.NewExecutor(pool)(ctx,
				query.MustBuild([]string{"insert into " + table + " values (1, 'gone')"}),
				engine.ExecOptions{AutoRollback: true})
			require.NoError(t, err)

			tx, err := engine.BeginTransaction(pool)(ctx, engine.TxOptions{AutoRollback: true})
			require.NoError(t, err)
			_, err = tx.ExecuteQuery(ctx, query.MustBuild([]string{"insert into " + table + " values (2, 'gone')"}))
			require.NoError(t, err)
			require.NoError(t, tx.Commit(ctx))

			assert.Zero(t, countRows(t, pool, table))
		})
	}
}

func sanitize(name string) string {
	out := []byte(name)
	for i, c := range out {
		if c == '+' || c == '-' {
			out[i] = '_'
		}
	}
	return string(out)
}
