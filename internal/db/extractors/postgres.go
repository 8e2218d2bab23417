package extractors

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver

	"dbgrep/internal/db"
	"dbgrep/internal/introspect"
	"dbgrep/internal/logger"
)

// pgIntrospector implements Introspector using information_schema + pg_catalog queries.
// It serves both the lib/pq ("postgres") and pgx ("pgx") drivers.
type pgIntrospector struct {
	log *logger.Logger
}

func (e pgIntrospector) Tables(ctx context.Context, dbConn *sql.DB) ([]string, error) {
	tables, err := collectNames(ctx, dbConn, e.log, `
        SELECT table_name
        FROM information_schema.tables
        WHERE table_type = 'BASE TABLE'
          AND table_schema = current_schema()
        ORDER BY table_name`)
	if err != nil {
		return nil, fmt.Errorf("query tables: %w", err)
	}
	return tables, nil
}

func (e pgIntrospector) Columns(ctx context.Context, dbConn *sql.DB, table string) (introspect.TableSchema, error) {
	s, err := collectColumns(ctx, dbConn, e.log, table, `
        SELECT column_name, data_type, is_nullable, column_default
        FROM information_schema.columns
        WHERE table_schema = current_schema() AND table_name = $1
        ORDER BY ordinal_position`, table)
	if err != nil {
		return s, err
	}

	// indkey[0] is the first key member
	err = firstPrimaryKey(ctx, dbConn, e.log, &s, `
        SELECT a.attname
        FROM pg_index i
        JOIN pg_class c ON i.indrelid = c.oid
        JOIN pg_namespace ns ON c.relnamespace = ns.oid
        JOIN pg_attribute a ON a.attrelid = c.oid AND a.attnum = i.indkey[0]
        WHERE ns.nspname = current_schema() AND c.relname = $1 AND i.indisprimary`, table)
	if err != nil {
		return s, err
	}
	return finish(s)
}

func (pgIntrospector) QuoteIdent(name string) string {
	return quoteWith(name, `"`, `"`)
}

func (e pgIntrospector) SelectAll(s introspect.TableSchema) string {
	return selectStar(e.QuoteIdent, s)
}

// BytesAreBlobs is false: []byte values are classified by the column type.
func (pgIntrospector) BytesAreBlobs() bool {
	return false
}

func init() {
	newPG := func(log *logger.Logger) db.Introspector { return pgIntrospector{log: log} }
	db.Register("postgres", newPG)
	db.Register("postgresql", newPG)
	db.Register("pgx", newPG)
}
