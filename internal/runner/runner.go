package runner

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"time"

	"dbgrep/internal/db"
	_ "dbgrep/internal/db/extractors"
	"dbgrep/internal/logger"
	"dbgrep/internal/report"
	"dbgrep/internal/scan"
	"dbgrep/pkg/dbgrep"
)

// Options describe one scan run.
type Options struct {
	Driver         string
	DSN            string
	Pattern        string
	ShowTables     bool   // emit the schema report
	Stats          bool   // emit the statistics report
	Output         string // CSV prefix; empty means console only
	IncludeOrdinal bool   // leading ID column in the schema report
	Timeout        int    // connect timeout in seconds
}

// Run connects, walks every table and reports as it goes. It returns the
// accumulated matches. Connection failures wrap dbgrep.ErrConnection, every
// later failure wraps dbgrep.ErrScan and abandons the rest of the scan.
func Run(ctx context.Context, opts Options, stdout io.Writer, log *logger.Logger) (*scan.Result, error) {
	start := time.Now()
	log.Debug("options: %+v", opts)

	conn, in, err := db.Connect(ctx, opts.Driver, opts.DSN, opts.Timeout, log)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	scanner, err := scan.NewScanner(conn, in, opts.Pattern, log)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", dbgrep.ErrScan, err)
	}

	sink := report.Multi{report.NewConsole(stdout, opts.IncludeOrdinal)}
	if opts.Output != "" {
		sink = append(sink, report.NewCSV(opts.Output, opts.IncludeOrdinal))
	}

	tables, err := in.Tables(ctx, conn)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", dbgrep.ErrScan, err)
	}
	log.Info("found %d tables", len(tables))

	r := &run{opts: opts, conn: conn, in: in, scanner: scanner, sink: sink, result: scan.NewResult(), log: log}
	for _, table := range tables {
		if err := r.table(ctx, table); err != nil {
			return r.result, fmt.Errorf("%w: %s: %v", dbgrep.ErrScan, table, err)
		}
	}

	log.Info("%d matches in %d tables, scan completed in %s",
		r.result.Total(), len(tables), time.Since(start).Round(time.Millisecond))
	return r.result, nil
}

// run carries the state shared by every table of one scan.
type run struct {
	opts    Options
	conn    *sql.DB
	in      db.Introspector
	scanner *scan.Scanner
	sink    report.Sink
	result  *scan.Result
	log     *logger.Logger
}

// table handles one table: schema, optional reports, then the matches.
func (r *run) table(ctx context.Context, table string) error {
	schema, err := r.in.Columns(ctx, r.conn, table)
	if err != nil {
		return err
	}
	if _, ok := schema.PrimaryKey(); !ok {
		r.log.Warn("%s has no primary key, lookup queries will not identify rows", table)
	}
	r.log.Info("%s: %d columns", table, len(schema.Columns))

	if r.opts.ShowTables {
		if err := r.sink.WriteSchema(schema); err != nil {
			return err
		}
	}

	if r.opts.Stats {
		st, err := scan.CollectStats(ctx, r.conn, r.in, schema, r.log)
		if err != nil {
			return err
		}
		if err := r.sink.WriteStats(st); err != nil {
			return err
		}
	}

	matches, err := r.scanner.ScanTable(ctx, schema)
	if err != nil {
		return err
	}
	r.result.Add(table, matches...)
	if len(matches) > 0 {
		return r.sink.WriteMatches(table, matches)
	}
	return nil
}
