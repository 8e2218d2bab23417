package main

import (
	"cmp"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"dbgrep/internal/db"
	"dbgrep/internal/logger"
	"dbgrep/internal/runner"
	"dbgrep/pkg/config"
	"dbgrep/pkg/dbgrep"
)

// runScan is replaced in tests.
var runScan = runner.Run

type rootFlags struct {
	verbosity  int
	tables     bool
	output     string
	stats      bool
	withID     bool
	driver     string
	configPath string
	timeout    int
}

func newRootCmd(stdout io.Writer, log *logger.Logger) *cobra.Command {
	var f rootFlags

	cmd := &cobra.Command{
		Use:   "dbgrep [flags] <database> <regex>",
		Short: "Search every text value of every table for a regular expression",
		Long: `dbgrep walks all tables of a database, tests each text column value
against a regular expression and reports every match together with a
query that finds the row again.

<database> is a SQLite file by default, or a DSN when --driver names another
dialect. With a single argument the database comes from the config file.

Exit Codes:
  0   - Success
  10  - Scan, pattern, report or usage error
  127 - Database could not be opened`,
		Args:          cobra.RangeArgs(1, 2),
		Version:       dbgrep.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, verbosity, err := resolveOptions(cmd, f, args)
			if err != nil {
				return err
			}
			log.SetLevel(logger.LevelFromVerbosity(verbosity))
			log.Debug("registered dialects: %v", db.RegisteredDialects())

			_, err = runScan(cmd.Context(), opts, stdout, log)
			return err
		},
	}
	cmd.SetVersionTemplate("dbgrep {{.Version}}\n")
	cmd.SetOut(stdout)

	fl := cmd.Flags()
	fl.CountVarP(&f.verbosity, "verbose", "v", "increase log verbosity (-v info, -vv debug)")
	fl.BoolVarP(&f.tables, "tables", "t", false, "report the schema of every table")
	fl.StringVarP(&f.output, "output", "o", "", "also write CSV reports to <prefix>_tables.csv, <prefix>_matches.csv")
	fl.BoolVarP(&f.stats, "stats", "s", false, "report row and non-null counts per column")
	fl.BoolVar(&f.withID, "with-id", false, "add the column ordinal to the schema report")
	fl.StringVar(&f.driver, "driver", "", "database driver (sqlite,postgres,pgx,mysql,sqlserver,godror)")
	fl.StringVar(&f.configPath, "config", "", "path to a YAML or TOML config file")
	fl.IntVar(&f.timeout, "timeout", 0, fmt.Sprintf("connect timeout in seconds (default %d)", config.DefaultTimeout))
	return cmd
}

// resolveOptions merges the config file and the command line into runner
// options. Flags that were set explicitly win over the file.
func resolveOptions(cmd *cobra.Command, f rootFlags, args []string) (runner.Options, int, error) {
	var cfg config.AppConfig
	if f.configPath != "" {
		c, err := config.LoadFile(f.configPath)
		if err != nil {
			return runner.Options{}, 0, fmt.Errorf("config %s: %w", f.configPath, err)
		}
		cfg = c
	}

	changed := cmd.Flags().Changed
	pick := func(name string, flag, file bool) bool {
		if changed(name) {
			return flag
		}
		return file
	}

	if f.timeout < 0 {
		return runner.Options{}, 0, fmt.Errorf("--timeout must not be negative")
	}

	opts := runner.Options{
		Pattern:        args[len(args)-1],
		ShowTables:     pick("tables", f.tables, cfg.Scan.ShowTables),
		Stats:          pick("stats", f.stats, cfg.Scan.Stats),
		IncludeOrdinal: pick("with-id", f.withID, cfg.Scan.IncludeOrdinal),
		Output:         cmp.Or(f.output, cfg.Scan.Output),
		Timeout:        cmp.Or(f.timeout, cfg.Scan.Timeout, config.DefaultTimeout),
	}

	if len(args) == 2 {
		opts.Driver = config.NormalizeDriver(cmp.Or(f.driver, cfg.Database.Type))
		opts.DSN = args[0]
		if opts.Driver == "sqlite" {
			opts.DSN = config.SQLiteDSN(args[0])
		}
	} else {
		dbCfg := cfg.Database
		if dbCfg.Type == "" && dbCfg.DSN == "" && dbCfg.DatabaseName == "" {
			return runner.Options{}, 0, fmt.Errorf("no <database> given and no database in the config file")
		}
		dbCfg.Type = cmp.Or(f.driver, dbCfg.Type)
		drv, dsn, err := config.BuildDriverAndDSN(dbCfg)
		if err != nil {
			return runner.Options{}, 0, err
		}
		if drv == "sqlite" {
			dsn = config.SQLiteDSN(dsn)
		}
		opts.Driver, opts.DSN = drv, dsn
	}

	return opts, cmp.Or(f.verbosity, cfg.Scan.Verbosity), nil
}
