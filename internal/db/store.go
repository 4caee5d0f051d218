package db

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/anstrom/nmapdb/internal/errors"
	"github.com/anstrom/nmapdb/internal/logging"
	"github.com/anstrom/nmapdb/internal/report"
)

const (
	insertHostQuery = `INSERT INTO hosts VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	insertPortQuery = `INSERT INTO ports VALUES (?, ?, ?, ?, ?, NULL)`

	savepointName        = "nmapdb_row"
	savepointQuery       = "SAVEPOINT " + savepointName
	rollbackToSavepoint  = "ROLLBACK TO SAVEPOINT " + savepointName
	releaseSavepointStmt = "RELEASE SAVEPOINT " + savepointName
)

// InsertOutcome classifies the result of a single row insert.
type InsertOutcome int

const (
	// InsertOK means the row was written.
	InsertOK InsertOutcome = iota
	// InsertConstraintViolation means the store rejected the row.
	InsertConstraintViolation
	// InsertFailed covers every other failure.
	InsertFailed
)

func (o InsertOutcome) String() string {
	switch o {
	case InsertOK:
		return "inserted"
	case InsertConstraintViolation:
		return "rejected"
	default:
		return "failed"
	}
}

// InsertResult is returned by every row insert. Err is nil for InsertOK.
type InsertResult struct {
	Outcome InsertOutcome
	Err     error
}

// OK reports whether the row was written.
func (r InsertResult) OK() bool {
	return r.Outcome == InsertOK
}

// Store writes host and port rows into one run-wide transaction.
type Store struct {
	db  *DB
	tx  *sqlx.Tx
	log *logging.Logger
}

// NewStore wraps an open database.
func NewStore(db *DB, logger *logging.Logger) *Store {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Store{db: db, log: logger.WithComponent("database")}
}

// Open connects to the store described by config.
func Open(ctx context.Context, config *Config, logger *logging.Logger) (*Store, error) {
	db, err := Connect(ctx, config)
	if err != nil {
		return nil, err
	}

	s := NewStore(db, logger)
	s.log.Debug("Connected to database", "dialect", config.Dialect(), "dsn", config.Redacted())
	return s, nil
}

// ExecSchema runs script as a single batch. It must be called before Begin.
func (s *Store) ExecSchema(ctx context.Context, name, script string) error {
	if s.tx != nil {
		return errors.ErrSchema(name, fmt.Errorf("schema must be applied before the run transaction starts"))
	}
	if _, err := s.db.ExecContext(ctx, script); err != nil {
		return errors.ErrSchema(name, err)
	}
	s.log.Debug("Database schema created", "schema", name)
	return nil
}

// Begin starts the run transaction.
func (s *Store) Begin(ctx context.Context) error {
	if s.tx != nil {
		return nil
	}
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.WrapDatabaseError(errors.CodeDatabaseQuery, "Failed to begin transaction", err)
	}
	s.tx = tx
	return nil
}

// InsertHost writes one hosts row.
func (s *Store) InsertHost(ctx context.Context, h report.HostRecord) InsertResult {
	return s.insert(ctx, "hosts", h.IP, insertHostQuery, h.Values())
}

// InsertPort writes one ports row. The trailing reserved column is NULL.
func (s *Store) InsertPort(ctx context.Context, p report.PortRecord) InsertResult {
	return s.insert(ctx, "ports", p.IP, insertPortQuery, p.Values())
}

// insert executes query under a savepoint so that a rejected row leaves the
// surrounding transaction usable.
func (s *Store) insert(ctx context.Context, table, key, query string, args []any) InsertResult {
	operation := "insert " + table
	if s.tx == nil {
		return failed(errors.NewDatabaseError(errors.CodeDatabaseQuery, "No transaction in progress"), operation, key)
	}

	if _, err := s.tx.ExecContext(ctx, savepointQuery); err != nil {
		return failed(err, operation, key)
	}

	_, execErr := s.tx.ExecContext(ctx, s.db.Rebind(query), args...)
	if execErr != nil {
		if _, err := s.tx.ExecContext(ctx, rollbackToSavepoint); err != nil {
			return failed(err, operation, key)
		}
	}

	if _, err := s.tx.ExecContext(ctx, releaseSavepointStmt); err != nil {
		return failed(err, operation, key)
	}

	if execErr == nil {
		return InsertResult{Outcome: InsertOK}
	}

	if IsConstraintViolation(execErr) {
		dbErr := errors.WrapDatabaseError(errors.CodeConstraintViolation, "Row rejected by constraint", execErr).WithKey(key)
		dbErr.Operation = operation
		return InsertResult{Outcome: InsertConstraintViolation, Err: dbErr}
	}
	return failed(execErr, operation, key)
}

func failed(err error, operation, key string) InsertResult {
	dbErr := errors.WrapDatabaseError(errors.CodeDatabaseQuery, "Insert failed", err).WithKey(key)
	dbErr.Operation = operation
	return InsertResult{Outcome: InsertFailed, Err: dbErr}
}

// Commit commits the run transaction.
func (s *Store) Commit() error {
	if s.tx == nil {
		return nil
	}
	err := s.tx.Commit()
	s.tx = nil
	if err != nil {
		return errors.WrapDatabaseError(errors.CodeDatabaseQuery, "Failed to commit", err)
	}
	return nil
}

// Close rolls back an uncommitted transaction and closes the database.
func (s *Store) Close() error {
	if s.tx != nil {
		if err := s.tx.Rollback(); err != nil {
			s.log.Warn("Failed to roll back uncommitted run", "error", err)
		}
		s.tx = nil
	}
	return s.db.Close()
}
