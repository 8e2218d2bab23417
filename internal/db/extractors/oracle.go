//go:build oracle
// +build oracle

package extractors

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/godror/godror"

	"dbgrep/internal/db"
	"dbgrep/internal/introspect"
	"dbgrep/internal/logger"
)

// oracleIntrospector implements Introspector for Oracle. It reads the
// session user's own tables.
type oracleIntrospector struct {
	log *logger.Logger
}

func (e oracleIntrospector) Tables(ctx context.Context, dbConn *sql.DB) ([]string, error) {
	tables, err := collectNames(ctx, dbConn, e.log, `
	    SELECT table_name
	    FROM user_tables
	    ORDER BY table_name`)
	if err != nil {
		return nil, fmt.Errorf("query tables: %w", err)
	}
	return tables, nil
}

func (e oracleIntrospector) Columns(ctx context.Context, dbConn *sql.DB, table string) (introspect.TableSchema, error) {
	s, err := collectColumns(ctx, dbConn, e.log, table, `
            SELECT column_name, data_type, nullable, data_default
            FROM user_tab_columns
            WHERE table_name = :1
            ORDER BY column_id`, table)
	if err != nil {
		return s, err
	}

	err = firstPrimaryKey(ctx, dbConn, e.log, &s, `
            SELECT acc.column_name
            FROM user_cons_columns acc
            JOIN user_constraints ac ON acc.constraint_name = ac.constraint_name
            WHERE ac.constraint_type = 'P' AND acc.table_name = :1
            ORDER BY acc.position`, table)
	if err != nil {
		return s, err
	}
	return finish(s)
}

func (oracleIntrospector) QuoteIdent(name string) string {
	return quoteWith(name, `"`, `"`)
}

func (e oracleIntrospector) SelectAll(s introspect.TableSchema) string {
	return selectStar(e.QuoteIdent, s)
}

func (oracleIntrospector) BytesAreBlobs() bool {
	return false
}

func init() {
	newOracle := func(log *logger.Logger) db.Introspector { return oracleIntrospector{log: log} }
	db.Register("godror", newOracle)
	db.Register("oracle", newOracle)
}
