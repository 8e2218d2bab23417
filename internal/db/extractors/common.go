package extractors

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"dbgrep/internal/introspect"
	"dbgrep/internal/logger"
)

// collectNames runs a single-column query and returns its values in order.
func collectNames(ctx context.Context, dbConn *sql.DB, log *logger.Logger, query string, args ...any) ([]string, error) {
	log.Debug("query: %s %v", strings.Join(strings.Fields(query), " "), args)
	rows, err := dbConn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// collectColumns reads (name, type, nullable, default) rows from an
// information_schema style query. nullable is the engine's YES/NO or Y/N flag.
func collectColumns(ctx context.Context, dbConn *sql.DB, log *logger.Logger, table, query string, args ...any) (introspect.TableSchema, error) {
	s := introspect.TableSchema{Table: table}
	log.Debug("query: %s %v", strings.Join(strings.Fields(query), " "), args)
	cr, err := dbConn.QueryContext(ctx, query, args...)
	if err != nil {
		return s, fmt.Errorf("query columns for %s: %w", table, err)
	}
	defer cr.Close()

	for cr.Next() {
		var name string
		var ctype, nullable, dflt sql.NullString
		if err := cr.Scan(&name, &ctype, &nullable, &dflt); err != nil {
			return s, fmt.Errorf("scan column for %s: %w", table, err)
		}
		s.Columns = append(s.Columns, introspect.ColumnInfo{
			Ordinal:  len(s.Columns),
			Name:     name,
			Type:     ctype.String,
			Nullable: isYes(nullable.String),
			Default:  nullableString(dflt),
		})
	}
	if err := cr.Err(); err != nil {
		return s, fmt.Errorf("read columns for %s: %w", table, err)
	}
	return s, nil
}

// markPrimaryKey flags the column named pk. Only one column is ever flagged.
func markPrimaryKey(s *introspect.TableSchema, pk string) {
	for j := range s.Columns {
		if s.Columns[j].Name == pk {
			s.Columns[j].IsPrimaryKey = true
			return
		}
	}
}

// firstPrimaryKey looks up the first key member with query and marks it.
// Tables without a primary key are left untouched.
func firstPrimaryKey(ctx context.Context, dbConn *sql.DB, log *logger.Logger, s *introspect.TableSchema, query string, args ...any) error {
	pks, err := collectNames(ctx, dbConn, log, query, args...)
	if err != nil {
		return fmt.Errorf("query primary key for %s: %w", s.Table, err)
	}
	if len(pks) == 0 {
		return nil
	}
	if len(pks) > 1 {
		log.Debug("%s: composite primary key %v, tracking %s only", s.Table, pks, pks[0])
	}
	markPrimaryKey(s, pks[0])
	return nil
}

// finish validates the schema before it leaves the introspector.
func finish(s introspect.TableSchema) (introspect.TableSchema, error) {
	if err := s.Validate(); err != nil {
		return introspect.TableSchema{}, err
	}
	return s, nil
}

func isYes(s string) bool {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "YES", "Y", "1", "TRUE":
		return true
	}
	return false
}

func nullableString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}

// selectStar is the scan query for dialects whose SELECT * already returns
// the stored values.
func selectStar(quote func(string) string, s introspect.TableSchema) string {
	return "SELECT * FROM " + quote(s.Table)
}

// quoteWith wraps name in open/close, doubling any embedded close character.
func quoteWith(name, open, close string) string {
	return open + strings.ReplaceAll(name, close, close+close) + close
}
