package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// DefaultTimeout is the connect timeout in seconds when none is configured.
const DefaultTimeout = 10

type DBConfig struct {
	Type         string `yaml:"type" toml:"type" json:"type"`
	Host         string `yaml:"host" toml:"host" json:"host"`
	Port         int    `yaml:"port" toml:"port" json:"port"`
	Username     string `yaml:"username" toml:"username" json:"username"`
	Password     string `yaml:"password" toml:"password" json:"password"`
	DatabaseName string `yaml:"database_name" toml:"database_name" json:"database_name"`
	DSN          string `yaml:"dsn" toml:"dsn" json:"dsn"` // optional explicit DSN
}

// ScanConfig holds the scan and report options. Every field can also be set
// from the command line, which wins over the file.
type ScanConfig struct {
	ShowTables     bool   `yaml:"show_tables" toml:"show_tables" json:"show_tables"`
	Output         string `yaml:"output" toml:"output" json:"output"` // CSV file prefix
	IncludeOrdinal bool   `yaml:"include_ordinal" toml:"include_ordinal" json:"include_ordinal"`
	Stats          bool   `yaml:"stats" toml:"stats" json:"stats"`
	Verbosity      int    `yaml:"verbosity" toml:"verbosity" json:"verbosity"`
	Timeout        int    `yaml:"timeout" toml:"timeout" json:"timeout"` // seconds
}

type AppConfig struct {
	Database DBConfig   `yaml:"database" toml:"database" json:"database"`
	Scan     ScanConfig `yaml:"scan" toml:"scan" json:"scan"`
}

// LoadFile loads config from path. Files ending in .toml are decoded as TOML,
// everything else as YAML.
func LoadFile(path string) (AppConfig, error) {
	var cfg AppConfig
	f, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	if strings.EqualFold(filepath.Ext(path), ".toml") {
		md, err := toml.Decode(string(f), &cfg)
		if err != nil {
			return AppConfig{}, err
		}
		if unknown := md.Undecoded(); len(unknown) > 0 {
			keys := make([]string, len(unknown))
			for i, k := range unknown {
				keys[i] = k.String()
			}
			return AppConfig{}, fmt.Errorf("unknown config keys: %s", strings.Join(keys, ", "))
		}
	} else if err := yaml.Unmarshal(f, &cfg); err != nil {
		return AppConfig{}, err
	}

	if cfg.Scan.Timeout < 0 {
		return AppConfig{}, fmt.Errorf("scan.timeout must not be negative")
	}
	return cfg, nil
}

// NormalizeDriver maps common aliases to canonical keys (keeps backwards compat).
func NormalizeDriver(d string) string {
	switch strings.ToLower(strings.TrimSpace(d)) {
	case "postgresql", "pg", "postgres":
		return "postgres"
	case "pgx":
		return "pgx"
	case "mysql", "mariadb":
		return "mysql"
	case "sqlite", "sqlite3", "":
		return "sqlite"
	case "mssql", "sqlserver":
		return "sqlserver"
	case "godror", "oracle":
		return "godror"
	default:
		return strings.ToLower(d)
	}
}

// BuildDriverAndDSN produces a driver name and DSN string for supported DB types.
func BuildDriverAndDSN(db DBConfig) (driver string, dsn string, err error) {
	// If explicit DSN provided, user must also set Type to choose driver or we guess
	t := NormalizeDriver(db.Type)

	if db.DSN != "" {
		return t, db.DSN, nil
	}

	switch t {
	case "postgres", "pgx":
		driver = t
		// simple URL form
		dsn = fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
			db.Username, db.Password, db.Host, db.Port, db.DatabaseName)
	case "mysql":
		driver = "mysql"
		// no parseTime: DATETIME text has to reach the scanner as stored
		dsn = fmt.Sprintf("%s:%s@tcp(%s:%d)/%s",
			db.Username, db.Password, db.Host, db.Port, db.DatabaseName)
	case "sqlite":
		driver = "sqlite"
		if db.DatabaseName == "" {
			return "", "", fmt.Errorf("sqlite needs a file path in database_name")
		}
		dsn = SQLiteDSN(db.DatabaseName)
	case "sqlserver":
		driver = "sqlserver"
		dsn = fmt.Sprintf("sqlserver://%s:%s@%s:%d?database=%s",
			db.Username, db.Password, db.Host, db.Port, db.DatabaseName)
	case "godror":
		driver = "godror"
		// simple EZCONNECT style; may need adjustments per environment
		dsn = fmt.Sprintf("%s/%s@%s:%d/%s",
			db.Username, db.Password, db.Host, db.Port, db.DatabaseName)
	default:
		err = fmt.Errorf("unsupported database type: %s", db.Type)
	}
	return
}

// uriPathEscaper escapes the characters that end or alter the path part of
// a SQLite URI filename.
var uriPathEscaper = strings.NewReplacer("%", "%25", "?", "%3F", "#", "%23")

// SQLiteDSN turns a plain file path into a read-only SQLite URI.
// Values that are already URIs are returned unchanged.
func SQLiteDSN(path string) string {
	if strings.HasPrefix(path, "file:") {
		return path
	}
	return "file:" + uriPathEscaper.Replace(path) + "?mode=ro"
}

// SQLitePath extracts the file path from a DSN built by SQLiteDSN.
func SQLitePath(dsn string) string {
	if !strings.HasPrefix(dsn, "file:") {
		return dsn
	}
	p := strings.TrimPrefix(dsn, "file:")
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	if u, err := url.PathUnescape(p); err == nil {
		p = u
	}
	return p
}
