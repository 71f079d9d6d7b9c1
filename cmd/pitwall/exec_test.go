package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/tracelog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Konsultn-Engineering/pitwall/database"
	"github.com/Konsultn-Engineering/pitwall/database/dbtest"
	"github.com/Konsultn-Engineering/pitwall/engine"
	"github.com/Konsultn-Engineering/pitwall/internal/cli"
	"github.com/Konsultn-Engineering/pitwall/query"
)

var silent = engine.WithLogger(tracelog.LoggerFunc(func(context.Context, tracelog.LogLevel, string, map[string]any) {}))

func fixedID() string { return "tx-fixed" }

func TestLoadStatements(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "001.sql")
	require.NoError(t, os.WriteFile(file, []byte("\n    insert into t values (1);\n"), 0o644))

	stmts, err := loadStatements([]string{file}, []string{"select 2"})
	require.NoError(t, err)
	require.Len(t, stmts, 2)
	assert.Equal(t, "insert into t values (1);", stmts[0].SQL())
	assert.Equal(t, "select 2", stmts[1].SQL())

	_, err = loadStatements([]string{filepath.Join(dir, "missing.sql")}, nil)
	assert.Error(t, err)
}

func TestLoadStatementsKeepsLiteralIndentation(t *testing.T) {
	file := filepath.Join(t.TempDir(), "002.sql")
	require.NoError(t, os.WriteFile(file, []byte("insert into notes values ('first\n    second');\n"), 0o644))

	stmts, err := loadStatements([]string{file}, nil)
	require.NoError(t, err)
	require.Len(t, stmts, 1)
	assert.Equal(t, "insert into notes values ('first\n    second');", stmts[0].SQL())
}

func TestRunTransactionCommits(t *testing.T) {
	pool := &dbtest.Pool{Result: func(text string, _ []any) *database.Result {
		if strings.HasPrefix(text, "select") {
			return &database.Result{Columns: []string{"n"}, Rows: [][]any{{1}, {2}}}
		}
		if strings.HasPrefix(text, "insert") {
			return &database.Result{RowsAffected: 1}
		}
		return &database.Result{}
	}}
	begin := engine.BeginTransaction(pool, silent, engine.WithIDGenerator(fixedID))
	stmts := []*query.Query{
		query.MustBuild([]string{"insert into t values (1)"}),
		query.MustBuild([]string{"select n from t"}),
	}

	var out bytes.Buffer
	err := runTransaction(context.Background(), &out, begin, engine.TxOptions{
		EnableQueryLogging: true,
		Preamble:           []query.Statement{query.Raw("SET LOCAL lock_timeout = '1s'")},
	}, stmts, true)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"begin;",
		"SET LOCAL lock_timeout = '1s'",
		"insert into t values (1)",
		"select n from t",
		"commit;",
	}, pool.Texts())
	assert.Equal(t, 1, pool.Releases())

	got := out.String()
	assert.Contains(t, got, "1: 0 rows returned, 1 affected\n")
	assert.Contains(t, got, "2: 2 rows returned, 0 affected\n")
	assert.Contains(t, got, "- n: 1\n- n: 2\n")
	assert.Contains(t, got, "--\nbegin;\n")
	assert.Contains(t, got, "2 statements in transaction tx-fixed: COMMITTED, 1 row affected\n")
}

func TestRunTransactionAutoRollback(t *testing.T) {
	pool := &dbtest.Pool{}
	begin := engine.BeginTransaction(pool, silent, engine.WithIDGenerator(fixedID))

	var out bytes.Buffer
	err := runTransaction(context.Background(), &out, begin, engine.TxOptions{AutoRollback: true},
		[]*query.Query{query.MustBuild([]string{"delete from sessions"})}, false)
	require.NoError(t, err)

	assert.Equal(t, []string{"begin;", "delete from sessions", "rollback;"}, pool.Texts())
	assert.Contains(t, out.String(), "1 statement in transaction tx-fixed: ROLLED_BACK")
}

func TestRunTransactionStatementFailure(t *testing.T) {
	boom := errors.New("relation does not exist")
	pool := &dbtest.Pool{Fail: dbtest.FailOn("missing", boom)}
	begin := engine.BeginTransaction(pool, silent, engine.WithIDGenerator(fixedID))
	stmts := []*query.Query{
		query.MustBuild([]string{"select 1"}),
		query.MustBuild([]string{"select * from missing"}),
		query.MustBuild([]string{"select 3"}),
	}

	var out bytes.Buffer
	err := runTransaction(context.Background(), &out, begin, engine.TxOptions{}, stmts, false)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, cli.ExitStatement, cli.ExitCode(err))
	assert.Contains(t, err.Error(), "statement 2 of 3 (transaction tx-fixed ROLLED_BACK)")

	assert.Equal(t, []string{"begin;", "select 1", "select * from missing", "rollback;"}, pool.Texts())
	assert.Equal(t, 1, pool.Releases())
}

func TestRunTransactionBeginFailure(t *testing.T) {
	pool := &dbtest.Pool{ConnectErr: errors.New("too many clients")}
	begin := engine.BeginTransaction(pool, silent)

	err := runTransaction(context.Background(), &bytes.Buffer{}, begin, engine.TxOptions{},
		[]*query.Query{query.MustBuild([]string{"select 1"})}, false)
	assert.Equal(t, cli.ExitStatement, cli.ExitCode(err))
	assert.Contains(t, err.Error(), "starting transaction")
}

func TestIDGenerator(t *testing.T) {
	assert.Len(t, idGenerator("ulid")(), 26)
	assert.Len(t, idGenerator("uuid")(), 36)
	assert.Len(t, idGenerator("")(), 36)
}

func TestCanonicalize(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, canonicalize(&out, strings.NewReader("select  a,\n\n\t b\n  from   t\n")))
	assert.Equal(t, "select a, b from t\n", out.String())
}

func TestConfigShow(t *testing.T) {
	cfg = &cli.Config{
		Provider: "postgres",
		Database: cli.DatabaseConfig{Host: "db", Port: 5432, Name: "orders", Password: "secret"},
		Exec:     cli.ExecConfig{IDFormat: "uuid"},
	}
	configPath = ""
	configShowSource = true
	t.Cleanup(func() {
		cfg = nil
		configShowSource = false
	})

	var out bytes.Buffer
	configShowCmd.SetOut(&out)
	require.NoError(t, configShowCmd.RunE(configShowCmd, nil))

	got := out.String()
	assert.Contains(t, got, "Config file: (none, using defaults)")
	assert.Contains(t, got, "provider: postgres")
	assert.Contains(t, got, "name: orders")
	assert.Contains(t, got, "****")
	assert.NotContains(t, got, "secret")
}
