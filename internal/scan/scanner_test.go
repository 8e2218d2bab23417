package scan

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dbgrep/internal/db"
	_ "dbgrep/internal/db/extractors"
	"dbgrep/internal/introspect"
	"dbgrep/internal/logger"
)

type fixture struct {
	conn *sql.DB
	in   db.Introspector
}

func newFixture(t *testing.T, stmts ...string) fixture {
	t.Helper()
	conn, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "scan.db"))
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	for _, s := range stmts {
		_, err := conn.Exec(s)
		require.NoError(t, err, s)
	}
	in, err := db.Lookup("sqlite", logger.Discard())
	require.NoError(t, err)
	return fixture{conn: conn, in: in}
}

func (f fixture) schema(t *testing.T, table string) introspect.TableSchema {
	t.Helper()
	s, err := f.in.Columns(context.Background(), f.conn, table)
	require.NoError(t, err)
	return s
}

func (f fixture) scan(t *testing.T, table, pattern string) []Match {
	t.Helper()
	sc, err := NewScanner(f.conn, f.in, pattern, logger.Discard())
	require.NoError(t, err)
	ms, err := sc.ScanTable(context.Background(), f.schema(t, table))
	require.NoError(t, err)
	return ms
}

var usersFixture = []string{
	`CREATE TABLE users (id TEXT PRIMARY KEY, email TEXT)`,
	`INSERT INTO users VALUES (1, 'a@x.com')`,
	`INSERT INTO users VALUES (2, 'b@y.com')`,
}

func TestScanUsersScenario(t *testing.T) {
	f := newFixture(t, usersFixture...)

	ms := f.scan(t, "users", `@x\.`)
	require.Len(t, ms, 1)
	assert.Equal(t, "users", ms[0].Table)
	assert.Equal(t, "email", ms[0].Column)
	assert.Equal(t, "a@x.com", ms[0].Raw.String())
	assert.Equal(t, "SELECT * FROM users WHERE id = 1", ms[0].LookupQuery)
}

func TestScanNoMatches(t *testing.T) {
	f := newFixture(t, usersFixture...)

	ms := f.scan(t, "users", `@nowhere\.`)
	assert.NotNil(t, ms)
	assert.Empty(t, ms)
}

func TestScanOneRecordPerOccurrence(t *testing.T) {
	f := newFixture(t,
		`CREATE TABLE notes (id INTEGER PRIMARY KEY, body TEXT)`,
		`INSERT INTO notes VALUES (5, 'cat cat dog cat')`,
	)

	ms := f.scan(t, "notes", `cat`)
	require.Len(t, ms, 3)
	for _, m := range ms {
		assert.Equal(t, "cat cat dog cat", m.Raw.String(), "raw value is the whole column value")
		assert.Equal(t, "SELECT * FROM notes WHERE id = 5", m.LookupQuery)
	}
}

func TestScanNonOverlapping(t *testing.T) {
	f := newFixture(t,
		`CREATE TABLE t (v TEXT)`,
		`INSERT INTO t VALUES ('aaaa')`,
	)
	assert.Len(t, f.scan(t, "t", `aa`), 2)
}

func TestScanEmptyMatchAfterMatchNotCounted(t *testing.T) {
	f := newFixture(t,
		`CREATE TABLE t (v TEXT)`,
		`INSERT INTO t VALUES ('baaa')`,
	)
	// "" at 0 and "aaa"; RE2 drops the empty match right after "aaa"
	assert.Len(t, f.scan(t, "t", `a*`), 2)
}

func TestScanSkipsNonText(t *testing.T) {
	f := newFixture(t,
		`CREATE TABLE mixed (id INTEGER PRIMARY KEY, n INTEGER, r REAL, b BLOB, s TEXT)`,
		`INSERT INTO mixed VALUES (1, 123, 1.23, X'313233', '123')`,
		`INSERT INTO mixed VALUES (2, NULL, NULL, NULL, NULL)`,
	)

	ms := f.scan(t, "mixed", `123|1\.23`)
	require.Len(t, ms, 1)
	assert.Equal(t, "s", ms[0].Column)
	assert.Equal(t, "SELECT * FROM mixed WHERE id = 1", ms[0].LookupQuery)
}

func TestScanDateTextUnchanged(t *testing.T) {
	f := newFixture(t,
		`CREATE TABLE ev (id INTEGER PRIMARY KEY, d DATE, ts DATETIME, stamp TIMESTAMP)`,
		`INSERT INTO ev VALUES (1, '2020-01-02', '2020-01-02T03:04:05Z', 'yesterday')`,
	)

	ms := f.scan(t, "ev", `^2020-01-02$`)
	require.Len(t, ms, 1)
	assert.Equal(t, "d", ms[0].Column)
	assert.Equal(t, "2020-01-02", ms[0].Raw.String())

	ms = f.scan(t, "ev", `T03`)
	require.Len(t, ms, 1)
	assert.Equal(t, "2020-01-02T03:04:05Z", ms[0].Raw.String())

	assert.Empty(t, f.scan(t, "ev", `00:00:00|\+00:00`))
	assert.Len(t, f.scan(t, "ev", `yesterday`), 1)
}

func TestScanSkipsBlobsInAnyColumn(t *testing.T) {
	f := newFixture(t,
		`CREATE TABLE b (id INTEGER PRIMARY KEY, t TEXT, u)`,
		`INSERT INTO b VALUES (1, X'736563726574', X'736563726574')`,
		`INSERT INTO b VALUES (2, 'secret', 'secret')`,
	)

	ms := f.scan(t, "b", `secret`)
	require.Len(t, ms, 2)
	for _, m := range ms {
		assert.Equal(t, KindText, m.Raw.Kind())
		assert.Equal(t, "SELECT * FROM b WHERE id = 2", m.LookupQuery)
	}
}

func TestScanWithoutPrimaryKey(t *testing.T) {
	f := newFixture(t,
		`CREATE TABLE logs (line TEXT)`,
		`INSERT INTO logs VALUES ('error: disk full')`,
	)

	ms := f.scan(t, "logs", `error`)
	require.Len(t, ms, 1)
	assert.Equal(t, "SELECT * FROM logs WHERE NULL = NULL", ms[0].LookupQuery)
}

func TestScanKeyAfterMatchColumn(t *testing.T) {
	f := newFixture(t,
		`CREATE TABLE rev (body TEXT, id TEXT PRIMARY KEY, tail TEXT)`,
		`INSERT INTO rev VALUES ('hit', 'k1', 'hit')`,
		`INSERT INTO rev VALUES ('hit', 'k2', 'miss')`,
	)

	ms := f.scan(t, "rev", `hit`)
	require.Len(t, ms, 3)
	// the key is captured per row when the loop reaches it
	assert.Equal(t, "SELECT * FROM rev WHERE NULL = NULL", ms[0].LookupQuery)
	assert.Equal(t, "SELECT * FROM rev WHERE id = k1", ms[1].LookupQuery)
	assert.Equal(t, "tail", ms[1].Column)
	assert.Equal(t, "SELECT * FROM rev WHERE NULL = NULL", ms[2].LookupQuery)
}

func TestScanEmptyTable(t *testing.T) {
	f := newFixture(t, `CREATE TABLE empty (a TEXT)`)
	assert.Empty(t, f.scan(t, "empty", `.*`))
}

func TestScanIdempotent(t *testing.T) {
	f := newFixture(t, usersFixture...)
	first := f.scan(t, "users", `@`)
	second := f.scan(t, "users", `@`)
	assert.Equal(t, first, second)
}

func TestScanQuotedTableName(t *testing.T) {
	f := newFixture(t,
		`CREATE TABLE "order" ("select" TEXT)`,
		`INSERT INTO "order" VALUES ('needle')`,
	)
	ms := f.scan(t, "order", `needle`)
	require.Len(t, ms, 1)
	assert.Equal(t, "SELECT * FROM order WHERE NULL = NULL", ms[0].LookupQuery)
}

// starReader reads with SELECT * whatever schema it is handed.
type starReader struct {
	db.Introspector
}

func (r starReader) SelectAll(s introspect.TableSchema) string {
	return "SELECT * FROM " + r.QuoteIdent(s.Table)
}

func TestScanSchemaMismatch(t *testing.T) {
	f := newFixture(t, usersFixture...)
	sc, err := NewScanner(f.conn, starReader{f.in}, `x`, logger.Discard())
	require.NoError(t, err)

	short := f.schema(t, "users")
	short.Columns = short.Columns[:1]
	_, err = sc.ScanTable(context.Background(), short)
	assert.Error(t, err)
}

func TestNewScannerBadPattern(t *testing.T) {
	f := newFixture(t)
	_, err := NewScanner(f.conn, f.in, `(unclosed`, logger.Discard())
	assert.Error(t, err)
}

func TestCollectStats(t *testing.T) {
	f := newFixture(t,
		`CREATE TABLE t (id INTEGER PRIMARY KEY, a TEXT, b TEXT)`,
		`INSERT INTO t VALUES (1, 'x', NULL)`,
		`INSERT INTO t VALUES (2, NULL, NULL)`,
		`INSERT INTO t VALUES (3, 'y', 'z')`,
	)

	st, err := CollectStats(context.Background(), f.conn, f.in, f.schema(t, "t"), logger.Discard())
	require.NoError(t, err)
	assert.Equal(t, int64(3), st.Rows)
	assert.Equal(t, []ColumnStats{{"id", 3}, {"a", 2}, {"b", 1}}, st.Columns)
}
