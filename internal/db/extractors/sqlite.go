package extractors

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"dbgrep/internal/db"
	"dbgrep/internal/introspect"
	"dbgrep/internal/logger"
)

// sqliteIntrospector implements Introspector for SQLite.
type sqliteIntrospector struct {
	log *logger.Logger
}

// Tables lists sqlite_master in its natural order. Internal sqlite_* tables
// are included, they are part of the evidence.
func (e sqliteIntrospector) Tables(ctx context.Context, dbConn *sql.DB) ([]string, error) {
	tables, err := collectNames(ctx, dbConn, e.log, `SELECT name FROM sqlite_master WHERE type='table'`)
	if err != nil {
		return nil, fmt.Errorf("query tables: %w", err)
	}
	return tables, nil
}

// Columns reads pragma table_xinfo, which unlike table_info also lists
// generated columns. Hidden columns (hidden=1) are left out because SELECT *
// does not return them. The pk field is the column's position in the key, so
// only position 1 is flagged.
func (e sqliteIntrospector) Columns(ctx context.Context, dbConn *sql.DB, table string) (introspect.TableSchema, error) {
	s := introspect.TableSchema{Table: table}
	tiQuery := `SELECT name, type, "notnull", dflt_value, pk FROM pragma_table_xinfo(?) WHERE hidden != 1 ORDER BY cid`
	e.log.Debug("query: %s [%s]", tiQuery, table)
	pr, err := dbConn.QueryContext(ctx, tiQuery, table)
	if err != nil {
		return s, fmt.Errorf("query columns for %s: %w", table, err)
	}
	defer pr.Close()

	for pr.Next() {
		var name string
		var ctype, dflt sql.NullString
		var notnull, pk int
		if err := pr.Scan(&name, &ctype, &notnull, &dflt, &pk); err != nil {
			return s, fmt.Errorf("scan column for %s: %w", table, err)
		}
		s.Columns = append(s.Columns, introspect.ColumnInfo{
			Ordinal:      len(s.Columns),
			Name:         name,
			Type:         ctype.String,
			Nullable:     notnull == 0,
			Default:      nullableString(dflt),
			IsPrimaryKey: pk == 1,
		})
	}
	if err := pr.Err(); err != nil {
		return s, fmt.Errorf("read columns for %s: %w", table, err)
	}
	return finish(s)
}

func (sqliteIntrospector) QuoteIdent(name string) string {
	return quoteWith(name, `"`, `"`)
}

// SelectAll reads every column through a unary plus. A plain column reference
// carries its declared type and the driver parses DATE, DATETIME and TIMESTAMP
// text into time.Time; +"col" has no declared type, so the value comes back
// exactly as stored.
func (e sqliteIntrospector) SelectAll(s introspect.TableSchema) string {
	cols := make([]string, 0, len(s.Columns))
	for _, name := range s.Names() {
		cols = append(cols, "+"+e.QuoteIdent(name))
	}
	return "SELECT " + strings.Join(cols, ", ") + " FROM " + e.QuoteIdent(s.Table)
}

// BytesAreBlobs is true: TEXT always comes back as string, BLOB as []byte.
func (sqliteIntrospector) BytesAreBlobs() bool {
	return true
}

func init() {
	newSQLite := func(log *logger.Logger) db.Introspector { return sqliteIntrospector{log: log} }
	db.Register("sqlite3", newSQLite)
	db.Register("sqlite", newSQLite)
}
