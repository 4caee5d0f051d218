// Package importer drives an nmapdb run: it opens the store, applies the
// optional schema, loads each report in turn and writes the extracted host
// and port rows inside one transaction that is committed at the end.
package importer

//go:generate mockgen -destination=mocks/mock_store.go -package=mocks github.com/anstrom/nmapdb/internal/importer Store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/anstrom/nmapdb/internal/db"
	"github.com/anstrom/nmapdb/internal/errors"
	"github.com/anstrom/nmapdb/internal/logging"
	"github.com/anstrom/nmapdb/internal/metrics"
	"github.com/anstrom/nmapdb/internal/report"
)

// Store is the write side of the database used by a run.
type Store interface {
	ExecSchema(ctx context.Context, name, script string) error
	Begin(ctx context.Context) error
	InsertHost(ctx context.Context, h report.HostRecord) db.InsertResult
	InsertPort(ctx context.Context, p report.PortRecord) db.InsertResult
	Commit() error
	Close() error
}

// OpenFunc connects to the store described by config.
type OpenFunc func(ctx context.Context, config *db.Config, logger *logging.Logger) (Store, error)

// OpenDatabase opens a SQLite or PostgreSQL store.
func OpenDatabase(ctx context.Context, config *db.Config, logger *logging.Logger) (Store, error) {
	store, err := db.Open(ctx, config, logger)
	if err != nil {
		return nil, err
	}
	return store, nil
}

// Config controls a single run.
type Config struct {
	Database db.Config
	// SchemaPath names a schema definition executed before any report is
	// loaded. Empty means the tables already exist.
	SchemaPath string
	// DryRun extracts and logs records without opening a store.
	DryRun bool
}

// Importer runs report files into the store.
type Importer struct {
	config  Config
	open    OpenFunc
	log     *logging.Logger
	metrics *metrics.Metrics
}

// New creates an importer. A nil logger discards output.
func New(config Config, logger *logging.Logger) *Importer {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Importer{
		config: config,
		open:   OpenDatabase,
		log:    logger,
	}
}

// SetOpener replaces the function used to open the store.
func (i *Importer) SetOpener(open OpenFunc) {
	i.open = open
}

// SetMetrics enables run metrics collection.
func (i *Importer) SetMetrics(m *metrics.Metrics) {
	i.metrics = m
}

// Run imports files in order. Per-file failures are logged and recorded in
// the returned stats; the error is non-nil only for failures that end the
// run, in which case nothing is committed.
func (i *Importer) Run(ctx context.Context, files []string) (*Stats, error) {
	stats := &Stats{
		RunID:   uuid.New().String(),
		DryRun:  i.config.DryRun,
		Started: time.Now(),
	}
	log := i.log.WithRunID(stats.RunID)

	if len(files) == 0 {
		return stats, errors.ErrMissingInput()
	}

	var store Store
	if i.config.DryRun {
		log.Info("Dry run, no database will be opened")
	} else {
		s, err := i.openStore(ctx, log)
		if err != nil {
			return stats, err
		}
		store = s
		defer func() {
			if err := store.Close(); err != nil {
				log.Warn("Failed to close database", "error", err)
			}
		}()
	}

	extractor := report.NewExtractor(log)
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return stats, errors.ErrCanceled(err)
		}
		stats.Files = append(stats.Files, i.importFile(ctx, store, extractor, file, log))
	}

	if err := ctx.Err(); err != nil {
		return stats, errors.ErrCanceled(err)
	}
	if store != nil {
		if err := store.Commit(); err != nil {
			log.ErrorDatabase("Failed to commit run", err)
			return stats, err
		}
		stats.Committed = true
	}

	stats.Finished = time.Now()
	i.metrics.RecordRun(stats.Finished.Sub(stats.Started), stats.Finished)

	totals := stats.Totals()
	log.Info("Import finished",
		"files_loaded", stats.FilesLoaded(),
		"files_skipped", stats.FilesSkipped(),
		"hosts_inserted", totals.HostsInserted,
		"hosts_rejected", totals.HostsRejected,
		"ports_inserted", totals.PortsInserted,
	)
	return stats, nil
}

// openStore connects, applies the schema when one is configured and starts
// the run transaction.
func (i *Importer) openStore(ctx context.Context, log *logging.Logger) (Store, error) {
	dbConfig := i.config.Database
	if dbConfig.DSN == "" {
		dbConfig.DSN = db.DefaultPath
		log.Warn("No database specified, using default", "database", db.DefaultPath)
	}

	store, err := i.open(ctx, &dbConfig, log)
	if err != nil {
		log.ErrorDatabase("Failed to open database", err, "database", dbConfig.Redacted())
		return nil, err
	}

	if i.config.SchemaPath != "" {
		schema, err := db.LoadSchema(i.config.SchemaPath)
		if err == nil {
			err = store.ExecSchema(ctx, schema.Name, schema.Content)
		}
		if err != nil {
			log.ErrorDatabase("Failed to create database schema", err, "schema", i.config.SchemaPath)
			_ = store.Close()
			return nil, err
		}
		log.InfoDatabase("Database schema created", "schema", schema.Name, "checksum", schema.Checksum)
	}

	if err := store.Begin(ctx); err != nil {
		_ = store.Close()
		return nil, err
	}
	return store, nil
}

// importFile loads one report and inserts its records. It never fails the
// run: problems are logged and counted.
func (i *Importer) importFile(
	ctx context.Context, store Store, extractor *report.Extractor, file string, runLog *logging.Logger,
) FileStats {
	log := runLog.WithFile(file)
	fs := FileStats{File: file}

	doc, err := report.Load(file)
	if err != nil {
		fs.Err = err
		i.metrics.IncrementFiles(metrics.FileSkipped)
		log.Error("Skipping report", "error", err, "code", errors.GetCode(err))
		return fs
	}
	fs.Loaded = true
	i.metrics.IncrementFiles(metrics.FileLoaded)
	log.Info("Processing report", "hosts", len(doc.Hosts))

	skippedBefore := extractor.Skipped()
	for entry := range extractor.Entries(doc) {
		fs.Hosts++
		i.metrics.IncrementHosts(metrics.HostExtracted)
		if store == nil {
			fs.Ports += len(entry.Ports)
			continue
		}

		// A rejected host row still gets its ports: re-importing a report
		// appends port rows while the host row stays unique.
		result := store.InsertHost(ctx, entry.Host)
		fs.countHost(result)
		i.recordInsert(log, "hosts", entry.Host.IP, result)

		for _, p := range entry.Ports {
			fs.Ports++
			result := store.InsertPort(ctx, p)
			fs.countPort(result)
			i.recordInsert(log, "ports", p.IP, result)
		}
	}
	fs.Skipped = extractor.Skipped() - skippedBefore
	for range fs.Skipped {
		i.metrics.IncrementHosts(metrics.HostSkipped)
	}

	log.Info("Report processed",
		"hosts", fs.Hosts,
		"skipped", fs.Skipped,
		"hosts_inserted", fs.HostsInserted,
		"ports_inserted", fs.PortsInserted,
	)
	return fs
}

func (i *Importer) recordInsert(log *logging.Logger, table, key string, result db.InsertResult) {
	i.metrics.IncrementRows(table, result.Outcome.String())

	switch result.Outcome {
	case db.InsertOK:
		log.Debug("Row inserted", "table", table, "ip", key)
	case db.InsertConstraintViolation:
		log.Warn("Row rejected by database", "table", table, "ip", key, "error", result.Err)
	default:
		log.ErrorDatabase("Row insert failed", result.Err, "table", table, "ip", key)
	}
}
