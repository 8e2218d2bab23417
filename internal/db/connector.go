package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	_ "github.com/denisenkom/go-mssqldb"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"dbgrep/internal/introspect"
	"dbgrep/internal/logger"
	"dbgrep/pkg/config"
	"dbgrep/pkg/dbgrep"
)

// Introspector reads the catalog of one database dialect.
// Implementations never close the connection they are handed.
type Introspector interface {

	// Tables lists the tables in the catalog's natural order
	Tables(ctx context.Context, db *sql.DB) ([]string, error)

	// Columns returns the column metadata of table, ordinals 0..N-1
	Columns(ctx context.Context, db *sql.DB, table string) (introspect.TableSchema, error)

	// QuoteIdent quotes an identifier for queries the scanner issues itself
	QuoteIdent(name string) string

	// SelectAll returns the scan query for schema, columns in ordinal order
	// and values as stored
	SelectAll(schema introspect.TableSchema) string

	// BytesAreBlobs reports whether the driver returns []byte only for blobs
	BytesAreBlobs() bool
}

// Factory builds an Introspector bound to a logger.
type Factory func(log *logger.Logger) Introspector

var dialects = map[string]Factory{}

// Register makes an Introspector available under name.
func Register(name string, f Factory) {
	dialects[strings.ToLower(name)] = f
}

// listRegistered returns the registered dialect keys (for diagnostics).
func listRegistered() []string {
	keys := make([]string, 0, len(dialects))
	for k := range dialects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Lookup returns the Introspector registered for driver.
func Lookup(driver string, log *logger.Logger) (Introspector, error) {
	driver = config.NormalizeDriver(driver)
	f, ok := dialects[driver]
	if !ok {
		return nil, fmt.Errorf("dialect not registered: %q (available: %v)", driver, listRegistered())
	}
	return f(log), nil
}

// Connect opens and pings the database. Every failure wraps
// dbgrep.ErrConnection. The caller owns the returned handle.
func Connect(ctx context.Context, driver, dsn string, timeoutSec int, log *logger.Logger) (*sql.DB, Introspector, error) {
	driver = config.NormalizeDriver(driver)
	in, err := Lookup(driver, log)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", dbgrep.ErrConnection, err)
	}

	// sqlite would happily create an empty file in rw mode; refuse missing files
	if driver == "sqlite" {
		path := config.SQLitePath(dsn)
		if fi, err := os.Stat(path); err != nil {
			return nil, nil, fmt.Errorf("%w: %s not found", dbgrep.ErrConnection, path)
		} else if fi.IsDir() {
			return nil, nil, fmt.Errorf("%w: %s is a directory", dbgrep.ErrConnection, path)
		}
	}

	dbConn, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: open %s: %v", dbgrep.ErrConnection, driver, err)
	}
	// single scan thread, one connection is all we need
	dbConn.SetMaxOpenConns(1)

	pingCtx, cancel := context.WithTimeout(ctx, time.Duration(timeoutSec)*time.Second)
	defer cancel()
	if err := dbConn.PingContext(pingCtx); err != nil {
		dbConn.Close()
		return nil, nil, fmt.Errorf("%w: ping %s: %v", dbgrep.ErrConnection, driver, err)
	}
	log.Info("connected using %s driver", driver)
	return dbConn, in, nil
}

// RegisteredDialects is a helper that allows main to print registered dialects
func RegisteredDialects() []string {
	return listRegistered()
}
