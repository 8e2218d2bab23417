package main

import (
	"bytes"
	"context"
	"database/sql"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dbgrep/internal/logger"
	"dbgrep/internal/runner"
	"dbgrep/internal/scan"
	"dbgrep/pkg/config"
	"dbgrep/pkg/dbgrep"
)

// capture swaps runScan for the duration of a test and records the options
// it was called with.
func capture(t *testing.T) *runner.Options {
	t.Helper()
	var got runner.Options
	prev := runScan
	runScan = func(_ context.Context, opts runner.Options, _ io.Writer, _ *logger.Logger) (*scan.Result, error) {
		got = opts
		return scan.NewResult(), nil
	}
	t.Cleanup(func() { runScan = prev })
	return &got
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(&out, logger.Discard())
	cmd.SetArgs(args)
	cmd.SetErr(io.Discard)
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestArgs(t *testing.T) {
	t.Run("no args", func(t *testing.T) {
		capture(t)
		_, err := execute(t)
		require.Error(t, err)
		assert.Equal(t, dbgrep.ExitScanError, dbgrep.ExitCodeForError(err))
	})

	t.Run("too many args", func(t *testing.T) {
		capture(t)
		_, err := execute(t, "a.db", "x", "y")
		assert.Error(t, err)
	})

	t.Run("single arg needs a config database", func(t *testing.T) {
		capture(t)
		_, err := execute(t, "x")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no <database> given")
	})
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "--version")
	require.NoError(t, err)
	assert.Equal(t, "dbgrep 1.0.0\n", out)
}

func TestFlagDefaults(t *testing.T) {
	got := capture(t)
	_, err := execute(t, "case.db", `@x\.`)
	require.NoError(t, err)

	assert.Equal(t, runner.Options{
		Driver:  "sqlite",
		DSN:     config.SQLiteDSN("case.db"),
		Pattern: `@x\.`,
		Timeout: config.DefaultTimeout,
	}, *got)
}

func TestFlags(t *testing.T) {
	got := capture(t)
	_, err := execute(t, "-vv", "-t", "-s", "--with-id", "-o", "out/case", "--timeout", "3", "case.db", "needle")
	require.NoError(t, err)

	assert.True(t, got.ShowTables)
	assert.True(t, got.Stats)
	assert.True(t, got.IncludeOrdinal)
	assert.Equal(t, "out/case", got.Output)
	assert.Equal(t, 3, got.Timeout)
	assert.Equal(t, "needle", got.Pattern)
}

func TestDriverTakesDSNVerbatim(t *testing.T) {
	got := capture(t)
	dsn := "postgres://u:p@localhost:5432/evidence?sslmode=disable"
	_, err := execute(t, "--driver", "postgresql", dsn, "x")
	require.NoError(t, err)

	assert.Equal(t, "postgres", got.Driver)
	assert.Equal(t, dsn, got.DSN)
}

func TestConfigFileAndOverrides(t *testing.T) {
	cfg := writeFile(t, "dbgrep.yaml", `
database:
  type: sqlite
  database_name: evidence.db
scan:
  show_tables: true
  output: case42
  stats: true
  timeout: 7
`)

	t.Run("file values", func(t *testing.T) {
		got := capture(t)
		_, err := execute(t, "--config", cfg, "secret")
		require.NoError(t, err)

		assert.Equal(t, "sqlite", got.Driver)
		assert.Equal(t, config.SQLiteDSN("evidence.db"), got.DSN)
		assert.True(t, got.ShowTables)
		assert.True(t, got.Stats)
		assert.Equal(t, "case42", got.Output)
		assert.Equal(t, 7, got.Timeout)
	})

	t.Run("flags win", func(t *testing.T) {
		got := capture(t)
		_, err := execute(t, "--config", cfg, "--tables=false", "-o", "mine", "--timeout", "2", "other.db", "secret")
		require.NoError(t, err)

		assert.Equal(t, config.SQLiteDSN("other.db"), got.DSN)
		assert.False(t, got.ShowTables)
		assert.True(t, got.Stats)
		assert.Equal(t, "mine", got.Output)
		assert.Equal(t, 2, got.Timeout)
	})

	t.Run("broken file", func(t *testing.T) {
		capture(t)
		bad := writeFile(t, "bad.toml", "colour = \"red\"\n")
		_, err := execute(t, "--config", bad, "a.db", "x")
		require.Error(t, err)
		assert.Equal(t, dbgrep.ExitScanError, dbgrep.ExitCodeForError(err))
	})
}

func TestEndToEnd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "case.db")
	conn, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	for _, s := range []string{
		`CREATE TABLE users (id TEXT PRIMARY KEY, email TEXT)`,
		`INSERT INTO users VALUES (1, 'a@x.com')`,
		`INSERT INTO users VALUES (2, 'b@y.com')`,
	} {
		_, err := conn.Exec(s)
		require.NoError(t, err)
	}
	require.NoError(t, conn.Close())

	out, err := execute(t, path, `@x\.`)
	require.NoError(t, err)
	assert.Equal(t, "TABLE, COLUMN, RAW MATCH, QUERY\n"+
		"users,email,a@x.com,SELECT * FROM users WHERE id = 1\n", out)

	_, err = execute(t, filepath.Join(t.TempDir(), "missing.db"), "x")
	require.Error(t, err)
	assert.Equal(t, dbgrep.ExitConnectionError, dbgrep.ExitCodeForError(err))
}
