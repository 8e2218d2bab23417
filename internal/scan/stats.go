package scan

import (
	"context"
	"database/sql"
	"fmt"

	"dbgrep/internal/introspect"
	"dbgrep/internal/logger"
)

// ColumnStats counts the non-null entries of one column.
type ColumnStats struct {
	Column  string
	NonNull int64
}

// TableStats is the row count of a table and the per-column non-null counts.
type TableStats struct {
	Table   string
	Rows    int64
	Columns []ColumnStats
}

// CollectStats counts the rows of the table and the non-null values of every
// column, in ordinal order.
func CollectStats(ctx context.Context, conn *sql.DB, q Quoter, schema introspect.TableSchema, log *logger.Logger) (TableStats, error) {
	st := TableStats{Table: schema.Table}
	from := q.QuoteIdent(schema.Table)

	query := fmt.Sprintf("SELECT COUNT(*) FROM %s", from)
	log.Debug("query: %s", query)
	if err := conn.QueryRowContext(ctx, query).Scan(&st.Rows); err != nil {
		return st, fmt.Errorf("count rows of %s: %w", schema.Table, err)
	}

	for _, c := range schema.Columns {
		var n int64
		query := fmt.Sprintf("SELECT COUNT(%s) FROM %s", q.QuoteIdent(c.Name), from)
		log.Debug("query: %s", query)
		if err := conn.QueryRowContext(ctx, query).Scan(&n); err != nil {
			return st, fmt.Errorf("count %s.%s: %w", schema.Table, c.Name, err)
		}
		st.Columns = append(st.Columns, ColumnStats{Column: c.Name, NonNull: n})
	}
	return st, nil
}
