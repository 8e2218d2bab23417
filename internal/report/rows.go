package report

import (
	"strconv"

	"dbgrep/internal/introspect"
	"dbgrep/internal/scan"
)

// Kind names a report and the CSV file suffix it is written to.
type Kind string

const (
	KindTables  Kind = "tables"
	KindMatches Kind = "matches"
	KindStats   Kind = "stats"
)

// SchemaHeader returns the schema report header. withID adds the leading
// ordinal column.
func SchemaHeader(withID bool) []string {
	if withID {
		return []string{"TABLE", "ID", "Name", "Type", "NotNull", "DefaultVal", "PrimaryKey"}
	}
	return []string{"TABLE", "Name", "Type", "NotNull", "DefaultVal", "PrimaryKey"}
}

// MatchHeader returns the match report header.
func MatchHeader() []string {
	return []string{"TABLE", "COLUMN", "RAW MATCH", "QUERY"}
}

// StatsHeader returns the statistics report header.
func StatsHeader() []string {
	return []string{"TABLE", "COLUMN", "ROWS", "NON NULL"}
}

// SchemaRows renders one row per column. A null default is an empty field.
func SchemaRows(s introspect.TableSchema, withID bool) [][]string {
	out := make([][]string, 0, len(s.Columns))
	for _, c := range s.Columns {
		row := []string{s.Table}
		if withID {
			row = append(row, strconv.Itoa(c.Ordinal))
		}
		dflt := ""
		if c.Default != nil {
			dflt = *c.Default
		}
		row = append(row, c.Name, c.Type, flag(!c.Nullable), dflt, flag(c.IsPrimaryKey))
		out = append(out, row)
	}
	return out
}

// MatchRows renders one row per match.
func MatchRows(ms []scan.Match) [][]string {
	out := make([][]string, 0, len(ms))
	for _, m := range ms {
		out = append(out, []string{m.Table, m.Column, m.Raw.String(), m.LookupQuery})
	}
	return out
}

// StatsRows renders one row per column.
func StatsRows(st scan.TableStats) [][]string {
	out := make([][]string, 0, len(st.Columns))
	rows := strconv.FormatInt(st.Rows, 10)
	for _, c := range st.Columns {
		out = append(out, []string{st.Table, c.Column, rows, strconv.FormatInt(c.NonNull, 10)})
	}
	return out
}

func flag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
