package scan

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"

	"dbgrep/internal/introspect"
	"dbgrep/internal/logger"
)

// Quoter quotes identifiers for the dialect being scanned.
type Quoter interface {
	QuoteIdent(name string) string
}

// Reader is the dialect side of a table scan.
type Reader interface {
	Quoter

	// SelectAll returns the query reading every column of schema in ordinal
	// order, with each value as the store holds it.
	SelectAll(schema introspect.TableSchema) string

	// BytesAreBlobs reports whether every []byte the driver returns is a
	// stored blob, rather than text or numbers sent as bytes.
	BytesAreBlobs() bool
}

// Scanner runs a pattern over every value of a table.
// It borrows the connection and never closes it.
type Scanner struct {
	db       *sql.DB
	reader   Reader
	re       *regexp.Regexp
	recorder Recorder
	log      *logger.Logger
}

// NewScanner compiles pattern and returns a Scanner over conn.
func NewScanner(conn *sql.DB, r Reader, pattern string, log *logger.Logger) (*Scanner, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("compile pattern %q: %w", pattern, err)
	}
	return &Scanner{db: conn, reader: r, re: re, log: log}, nil
}

// rowState holds the primary key captured for the row being scanned.
type rowState struct {
	pkName  string
	pkValue Value
	hasPK   bool
}

// ScanTable streams every row of the table described by schema and returns
// the matches in row × column order. Rows come in whatever order the store
// yields them.
func (s *Scanner) ScanTable(ctx context.Context, schema introspect.TableSchema) ([]Match, error) {
	table := schema.Table
	query := s.reader.SelectAll(schema)
	s.log.Debug("query: %s", query)

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("select from %s: %w", table, err)
	}
	defer rows.Close()

	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("column types of %s: %w", table, err)
	}
	if len(types) != len(schema.Columns) {
		return nil, fmt.Errorf("%s: query returned %d columns, schema has %d", table, len(types), len(schema.Columns))
	}
	dbTypes := make([]string, len(types))
	for i, ct := range types {
		dbTypes[i] = ct.DatabaseTypeName()
	}

	raw := make([]any, len(types))
	dest := make([]any, len(types))
	for i := range raw {
		dest[i] = &raw[i]
	}

	matches := []Match{}
	n := 0
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan row %d of %s: %w", n, table, err)
		}
		values := make([]Value, len(raw))
		for i, src := range raw {
			values[i] = s.convert(src, dbTypes[i])
		}
		matches = append(matches, s.matchRow(schema, values)...)
		n++
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read rows of %s: %w", table, err)
	}
	s.log.Info("%s: %d rows, %d matches", table, n, len(matches))
	return matches, nil
}

func (s *Scanner) convert(src any, dbType string) Value {
	if s.reader.BytesAreBlobs() {
		return FromStorage(src)
	}
	return FromDriver(src, dbType)
}

// matchRow evaluates one row. The key state starts unset for every row and is
// captured when the loop reaches the key column, so a match in a column that
// precedes the key reports no key.
func (s *Scanner) matchRow(schema introspect.TableSchema, values []Value) []Match {
	var state rowState
	var out []Match
	for i, v := range values {
		col := schema.Columns[i]
		if col.IsPrimaryKey {
			state = rowState{pkName: col.Name, pkValue: v, hasPK: true}
		}

		text, ok := v.Searchable()
		if !ok {
			s.log.Debug("%s.%s: skipping %s value", schema.Table, col.Name, v.Kind())
			continue
		}
		for range s.re.FindAllStringIndex(text, -1) {
			out = append(out, s.recorder.Record(Event{
				Table:   schema.Table,
				Column:  col.Name,
				Raw:     v,
				PKName:  state.pkName,
				PKValue: state.pkValue,
				HasPK:   state.hasPK,
			}))
		}
	}
	return out
}
