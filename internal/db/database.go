// Package db provides database connectivity for nmapdb.
// It opens the SQLite or PostgreSQL store, runs schema definitions and
// inserts host and port rows inside the single transaction of a run.
package db

import (
	"context"
	"net/url"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"

	"github.com/anstrom/nmapdb/internal/errors"
)

// DefaultPath is the SQLite file used when no database is configured.
const DefaultPath = "./nmapdb.db"

// Dialect names the database/sql driver backing a store.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite3"
	DialectPostgres Dialect = "postgres"
)

// Config holds database configuration.
type Config struct {
	// DSN is a SQLite file path or a postgres:// URL.
	DSN string `yaml:"dsn" json:"dsn" mapstructure:"dsn"`
}

// DefaultConfig returns the default database configuration.
func DefaultConfig() Config {
	return Config{DSN: DefaultPath}
}

// Dialect returns the driver the DSN selects.
func (c Config) Dialect() Dialect {
	return DialectFor(c.DSN)
}

// Redacted returns the DSN with any password masked.
func (c Config) Redacted() string {
	if c.Dialect() != DialectPostgres {
		return c.DSN
	}
	u, err := url.Parse(c.DSN)
	if err != nil {
		return string(DialectPostgres)
	}
	return u.Redacted()
}

// DialectFor picks PostgreSQL for postgres:// and postgresql:// URLs and
// SQLite for everything else.
func DialectFor(dsn string) Dialect {
	lower := strings.ToLower(dsn)
	if strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://") {
		return DialectPostgres
	}
	return DialectSQLite
}

// DB wraps sqlx.DB with additional functionality.
type DB struct {
	*sqlx.DB
}

// Connect opens and verifies a connection to the configured store. The pool
// is limited to one connection: a run has exactly one writer.
func Connect(ctx context.Context, config *Config) (*DB, error) {
	db, err := sqlx.ConnectContext(ctx, string(config.Dialect()), config.DSN)
	if err != nil {
		return nil, errors.ErrDatabaseConnection(err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	return &DB{DB: db}, nil
}

// IsConstraintViolation reports whether err is a uniqueness or integrity
// rejection raised by either supported driver.
func IsConstraintViolation(err error) bool {
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code == sqlite3.ErrConstraint
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		// Class 23 covers unique, foreign key, not null and check violations.
		return pqErr.Code.Class() == "23"
	}

	return false
}
