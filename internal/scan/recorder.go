package scan

import "fmt"

// Event is one regex occurrence found in one column of one row.
// PKName and PKValue describe the row's primary key as captured so far;
// HasPK is false when no key has been captured for the row.
type Event struct {
	Table   string
	Column  string
	Raw     Value
	PKName  string
	PKValue Value
	HasPK   bool
}

// Match is the recorded form of an Event.
type Match struct {
	Table       string
	Column      string
	Raw         Value // the whole column value, not the matched substring
	LookupQuery string
}

// Recorder turns events into matches.
type Recorder struct{}

// Record builds the Match for e.
func (Recorder) Record(e Event) Match {
	return Match{
		Table:       e.Table,
		Column:      e.Column,
		Raw:         e.Raw,
		LookupQuery: LookupQuery(e.Table, e.PKName, e.PKValue, e.HasPK),
	}
}

// LookupQuery reconstructs a query that re-selects the row a match came from.
// The key value is interpolated as literal text with no quoting or escaping;
// consumers rely on the exact shape. Without a key both sides become
// NullLiteral, which keeps the shape but selects nothing.
func LookupQuery(table, pkName string, pkValue Value, hasPK bool) string {
	name, value := NullLiteral, NullLiteral
	if hasPK {
		name, value = pkName, pkValue.String()
	}
	return fmt.Sprintf("SELECT * FROM %s WHERE %s = %s", table, name, value)
}

// Result maps table names to their matches, in table scan order.
type Result struct {
	order   []string
	matches map[string][]Match
}

// NewResult returns an empty Result.
func NewResult() *Result {
	return &Result{matches: make(map[string][]Match)}
}

// Add appends matches for table. A table added with no matches is still
// listed, with an empty slice.
func (r *Result) Add(table string, ms ...Match) {
	if _, ok := r.matches[table]; !ok {
		r.order = append(r.order, table)
		r.matches[table] = []Match{}
	}
	r.matches[table] = append(r.matches[table], ms...)
}

// Tables returns the scanned tables in scan order.
func (r *Result) Tables() []string {
	return append([]string(nil), r.order...)
}

// Matches returns the matches recorded for table in discovery order.
func (r *Result) Matches(table string) []Match {
	return r.matches[table]
}

// Total returns the number of matches across all tables.
func (r *Result) Total() int {
	n := 0
	for _, ms := range r.matches {
		n += len(ms)
	}
	return n
}
