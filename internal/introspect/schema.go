package introspect

import (
	"errors"
	"fmt"
)

// ErrNoColumns is returned by Validate for a table without columns.
var ErrNoColumns = errors.New("table has no columns")

// ColumnInfo describes one column of a table.
// Ordinal is the physical position and lines up with a row's values.
type ColumnInfo struct {
	Ordinal      int     `json:"ordinal"`
	Name         string  `json:"name"`
	Type         string  `json:"type"` // empty when the engine leaves it untyped
	Nullable     bool    `json:"nullable"`
	Default      *string `json:"default,omitempty"`
	IsPrimaryKey bool    `json:"pk"`
}

// TableSchema is the ordered column list of one table, indexed by ordinal.
// Only a single primary key column is tracked; composite keys are reduced to
// their first member by the introspectors.
type TableSchema struct {
	Table   string       `json:"table"`
	Columns []ColumnInfo `json:"columns"`
}

// PrimaryKey returns the primary key column, if any.
func (s TableSchema) PrimaryKey() (ColumnInfo, bool) {
	for _, c := range s.Columns {
		if c.IsPrimaryKey {
			return c, true
		}
	}
	return ColumnInfo{}, false
}

// Names returns the column names in ordinal order.
func (s TableSchema) Names() []string {
	names := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		names[i] = c.Name
	}
	return names
}

// Validate checks the invariants the scanner relies on: at least one column,
// ordinals 0..N-1 in order and at most one primary key column.
func (s TableSchema) Validate() error {
	if len(s.Columns) == 0 {
		return fmt.Errorf("%s: %w", s.Table, ErrNoColumns)
	}
	pks := 0
	for i, c := range s.Columns {
		if c.Ordinal != i {
			return fmt.Errorf("%s: column %q has ordinal %d, expected %d", s.Table, c.Name, c.Ordinal, i)
		}
		if c.IsPrimaryKey {
			pks++
		}
	}
	if pks > 1 {
		return fmt.Errorf("%s: %d primary key columns flagged, at most one supported", s.Table, pks)
	}
	return nil
}
