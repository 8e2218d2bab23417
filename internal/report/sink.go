// Package report renders schema, match and statistics rows to the console
// and to CSV files.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"dbgrep/internal/introspect"
	"dbgrep/internal/scan"
)

// Sink receives one batch of rows per table and report kind.
type Sink interface {
	WriteSchema(s introspect.TableSchema) error
	WriteMatches(table string, ms []scan.Match) error
	WriteStats(st scan.TableStats) error
}

// Console prints every batch as a header line followed by comma-joined rows.
type Console struct {
	w      io.Writer
	withID bool
}

// NewConsole returns a Console writing to w.
func NewConsole(w io.Writer, withID bool) *Console {
	return &Console{w: w, withID: withID}
}

func (c *Console) WriteSchema(s introspect.TableSchema) error {
	return c.write(SchemaHeader(c.withID), SchemaRows(s, c.withID))
}

func (c *Console) WriteMatches(_ string, ms []scan.Match) error {
	return c.write(MatchHeader(), MatchRows(ms))
}

func (c *Console) WriteStats(st scan.TableStats) error {
	return c.write(StatsHeader(), StatsRows(st))
}

func (c *Console) write(header []string, rows [][]string) error {
	if _, err := fmt.Fprintln(c.w, strings.Join(header, ", ")); err != nil {
		return err
	}
	for _, r := range rows {
		if _, err := fmt.Fprintln(c.w, strings.Join(r, ",")); err != nil {
			return err
		}
	}
	return nil
}

// CSV appends batches to <prefix>_<kind>.csv. The file is opened and closed
// for every batch and never truncated; each batch starts with a header row.
type CSV struct {
	prefix string
	withID bool
}

// NewCSV returns a CSV sink for the given file prefix.
func NewCSV(prefix string, withID bool) *CSV {
	return &CSV{prefix: prefix, withID: withID}
}

// Path returns the file a report kind is written to.
func (c *CSV) Path(k Kind) string {
	return c.prefix + "_" + string(k) + ".csv"
}

func (c *CSV) WriteSchema(s introspect.TableSchema) error {
	return c.append(KindTables, SchemaHeader(c.withID), SchemaRows(s, c.withID))
}

func (c *CSV) WriteMatches(_ string, ms []scan.Match) error {
	return c.append(KindMatches, MatchHeader(), MatchRows(ms))
}

func (c *CSV) WriteStats(st scan.TableStats) error {
	return c.append(KindStats, StatsHeader(), StatsRows(st))
}

func (c *CSV) append(k Kind, header []string, rows [][]string) (err error) {
	path := c.Path(k)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// Multi fans every batch out to several sinks, stopping at the first error.
type Multi []Sink

func (m Multi) WriteSchema(s introspect.TableSchema) error {
	return m.each(func(k Sink) error { return k.WriteSchema(s) })
}

func (m Multi) WriteMatches(table string, ms []scan.Match) error {
	return m.each(func(k Sink) error { return k.WriteMatches(table, ms) })
}

func (m Multi) WriteStats(st scan.TableStats) error {
	return m.each(func(k Sink) error { return k.WriteStats(st) })
}

func (m Multi) each(fn func(Sink) error) error {
	for _, k := range m {
		if err := fn(k); err != nil {
			return err
		}
	}
	return nil
}
