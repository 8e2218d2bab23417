package extractors

import (
	"context"
	"database/sql"
	"fmt"

	"dbgrep/internal/db"
	"dbgrep/internal/introspect"
	"dbgrep/internal/logger"
)

// myIntrospector implements Introspector for MySQL (information_schema).
type myIntrospector struct {
	log *logger.Logger
}

func (e myIntrospector) Tables(ctx context.Context, dbConn *sql.DB) ([]string, error) {
	tables, err := collectNames(ctx, dbConn, e.log, `
        SELECT table_name
        FROM information_schema.tables
        WHERE table_type = 'BASE TABLE'
          AND table_schema = DATABASE()
        ORDER BY table_name`)
	if err != nil {
		return nil, fmt.Errorf("query tables: %w", err)
	}
	return tables, nil
}

func (e myIntrospector) Columns(ctx context.Context, dbConn *sql.DB, table string) (introspect.TableSchema, error) {
	s, err := collectColumns(ctx, dbConn, e.log, table, `
        SELECT column_name, column_type, is_nullable, column_default
        FROM information_schema.columns
        WHERE table_schema = DATABASE() AND table_name = ?
        ORDER BY ordinal_position`, table)
	if err != nil {
		return s, err
	}

	err = firstPrimaryKey(ctx, dbConn, e.log, &s, `
        SELECT k.column_name
        FROM information_schema.key_column_usage k
        JOIN information_schema.table_constraints tc
          ON k.constraint_name = tc.constraint_name
         AND k.table_schema = tc.table_schema
         AND k.table_name = tc.table_name
        WHERE tc.constraint_type = 'PRIMARY KEY' AND k.table_schema = DATABASE() AND k.table_name = ?
        ORDER BY k.ordinal_position`, table)
	if err != nil {
		return s, err
	}
	return finish(s)
}

func (myIntrospector) QuoteIdent(name string) string {
	return quoteWith(name, "`", "`")
}

func (e myIntrospector) SelectAll(s introspect.TableSchema) string {
	return selectStar(e.QuoteIdent, s)
}

// BytesAreBlobs is false: []byte values are classified by the column type.
func (myIntrospector) BytesAreBlobs() bool {
	return false
}

func init() {
	newMy := func(log *logger.Logger) db.Introspector { return myIntrospector{log: log} }
	db.Register("mysql", newMy)
	db.Register("mariadb", newMy)
}
