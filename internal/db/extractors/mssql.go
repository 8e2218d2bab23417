package extractors

import (
	"context"
	"database/sql"
	"fmt"

	"dbgrep/internal/db"
	"dbgrep/internal/introspect"
	"dbgrep/internal/logger"
)

// mssqlIntrospector implements Introspector for Microsoft SQL Server.
type mssqlIntrospector struct {
	log *logger.Logger
}

func (e mssqlIntrospector) Tables(ctx context.Context, dbConn *sql.DB) ([]string, error) {
	tables, err := collectNames(ctx, dbConn, e.log, `
        SELECT TABLE_NAME
        FROM INFORMATION_SCHEMA.TABLES
        WHERE TABLE_TYPE = 'BASE TABLE'
          AND TABLE_SCHEMA = SCHEMA_NAME()
        ORDER BY TABLE_NAME`)
	if err != nil {
		return nil, fmt.Errorf("query tables: %w", err)
	}
	return tables, nil
}

func (e mssqlIntrospector) Columns(ctx context.Context, dbConn *sql.DB, table string) (introspect.TableSchema, error) {
	s, err := collectColumns(ctx, dbConn, e.log, table, `
        SELECT COLUMN_NAME, DATA_TYPE, IS_NULLABLE, COLUMN_DEFAULT
        FROM INFORMATION_SCHEMA.COLUMNS
        WHERE TABLE_SCHEMA = SCHEMA_NAME() AND TABLE_NAME = @table
        ORDER BY ORDINAL_POSITION`, sql.Named("table", table))
	if err != nil {
		return s, err
	}

	// primary keys
	err = firstPrimaryKey(ctx, dbConn, e.log, &s, `
        SELECT k.COLUMN_NAME
        FROM INFORMATION_SCHEMA.TABLE_CONSTRAINTS t
        JOIN INFORMATION_SCHEMA.KEY_COLUMN_USAGE k ON t.CONSTRAINT_NAME = k.CONSTRAINT_NAME AND t.TABLE_SCHEMA = k.TABLE_SCHEMA
        WHERE t.CONSTRAINT_TYPE = 'PRIMARY KEY' AND k.TABLE_SCHEMA = SCHEMA_NAME() AND k.TABLE_NAME = @table
        ORDER BY k.ORDINAL_POSITION`, sql.Named("table", table))
	if err != nil {
		return s, err
	}
	return finish(s)
}

func (mssqlIntrospector) QuoteIdent(name string) string {
	return quoteWith(name, "[", "]")
}

func (e mssqlIntrospector) SelectAll(s introspect.TableSchema) string {
	return selectStar(e.QuoteIdent, s)
}

// BytesAreBlobs is false: []byte values are classified by the column type.
func (mssqlIntrospector) BytesAreBlobs() bool {
	return false
}

func init() {
	newMSSQL := func(log *logger.Logger) db.Introspector { return mssqlIntrospector{log: log} }
	db.Register("sqlserver", newMSSQL)
	db.Register("mssql", newMSSQL)
}
