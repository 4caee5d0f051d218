// Package cli provides the nmapdb command line.
// It parses flags, merges configuration, builds the logger and hands the
// report files to the importer.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/anstrom/nmapdb/internal/config"
	"github.com/anstrom/nmapdb/internal/db"
	"github.com/anstrom/nmapdb/internal/errors"
	"github.com/anstrom/nmapdb/internal/importer"
	"github.com/anstrom/nmapdb/internal/logging"
	"github.com/anstrom/nmapdb/internal/metrics"
)

const (
	exitOK      = 0
	exitFailure = 1
)

// Build information - these will be set by ldflags during build.
var (
	version   = "dev"
	commit    = "none"
	buildTime = "unknown"
)

// getVersion returns the version string.
func getVersion() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildTime)
}

// SetVersion sets the version information (called from main).
func SetVersion(v, c, bt string) {
	version = v
	commit = c
	buildTime = bt
}

// errUsage asks Run to print usage and fail.
var errUsage = errors.ErrMissingInput()

type options struct {
	configFile  string
	writeConfig string
	printSchema bool
}

// NewRootCommand builds the nmapdb command writing to stdout and stderr.
func NewRootCommand(stdout, stderr io.Writer) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "nmapdb [flags] <nmap.xml>...",
		Short: "Import nmap XML reports into a database",
		Long: `nmapdb reads one or more nmap XML reports and stores every host and
port it finds in a SQLite file or a PostgreSQL database. All reports of a
run are written in a single transaction.`,
		Example: `  nmapdb -c schema.sql -d scans.db scan1.xml scan2.xml
  nmapdb -n -v scan.xml
  nmapdb -d postgres://nmapdb@localhost/nmapdb --summary scans/*.xml`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, opts, args, stdout, stderr)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetVersionTemplate("nmapdb {{.Version}}\n")

	flags := cmd.Flags()
	flags.SortFlags = false
	flags.BoolP("verbose", "v", false, "log every extracted field and insert at debug level")
	flags.StringP("database", "d", "", "SQLite file or postgres:// URL (default "+db.DefaultPath+")")
	flags.StringP("create", "c", "", "schema definition to execute before loading reports")
	flags.BoolP("nodb", "n", false, "parse and log reports without using a database")
	flags.BoolP("version", "V", false, "print version and exit")
	flags.StringVar(&opts.configFile, "config", "", "YAML config file")
	flags.String("log-format", string(logging.FormatText), "log format: text or json")
	flags.String("metrics-file", "", "write run metrics in Prometheus text format to this file")
	flags.Bool("summary", false, "print a per-file summary table after the run")
	flags.BoolVar(&opts.printSchema, "print-schema", false, "print the reference schema and exit")
	flags.StringVar(&opts.writeConfig, "write-config", "", "write the resolved configuration as YAML to this file and exit")

	return cmd
}

// Run executes nmapdb with args and returns the process exit code.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := NewRootCommand(stdout, stderr)

	if len(args) == 0 {
		_, _ = fmt.Fprint(stdout, cmd.UsageString())
		return exitOK
	}

	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	switch {
	case errors.Is(err, errUsage):
		_, _ = fmt.Fprint(stderr, cmd.UsageString())
	case err != nil && errors.GetCode(err) == errors.CodeUnknown:
		// Flag and argument errors from cobra. Coded errors were already logged.
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		_, _ = fmt.Fprint(stderr, cmd.UsageString())
	}
	return exitCode(err)
}

// exitCode maps the outcome of a run to the process exit status.
func exitCode(err error) int {
	if errors.IsFatal(err) {
		return exitFailure
	}
	return exitOK
}

func runImport(cmd *cobra.Command, opts *options, args []string, stdout, stderr io.Writer) error {
	if opts.printSchema {
		_, err := fmt.Fprint(stdout, db.DefaultSchema())
		return err
	}
	if len(args) == 0 && opts.writeConfig == "" {
		return errUsage
	}

	cfg, err := loadConfig(cmd, opts, args)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return err
	}

	if opts.writeConfig != "" {
		if err := cfg.Save(opts.writeConfig); err != nil {
			err = errors.WrapConfigError(errors.CodeConfiguration, "Failed to write config file", err)
			_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
			return err
		}
		return nil
	}

	logger, err := newLogger(cfg, stdout, stderr)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return err
	}

	imp := importer.New(importer.Config{
		Database:   cfg.DatabaseConfig(),
		SchemaPath: cfg.Create,
		DryRun:     cfg.NoDB,
	}, logger)

	var m *metrics.Metrics
	if cfg.MetricsFile != "" {
		m = metrics.New()
		imp.SetMetrics(m)
	}

	stats, runErr := imp.Run(cmd.Context(), cfg.Files)

	if m != nil {
		if err := m.WriteTextfile(cfg.MetricsFile); err != nil {
			logger.Warn("Failed to write metrics file", "path", cfg.MetricsFile, "error", err)
		}
	}
	if cfg.Summary && stats != nil {
		printSummary(stdout, stats)
	}

	if runErr != nil {
		logger.Error("Import aborted", "error", runErr, "code", errors.GetCode(runErr))
		return runErr
	}
	return nil
}

// loadConfig merges the config file, environment and flags.
func loadConfig(cmd *cobra.Command, opts *options, files []string) (*config.Config, error) {
	base := config.Default()
	if opts.configFile != "" {
		loaded, err := config.Load(opts.configFile)
		if err != nil {
			return nil, err
		}
		base = loaded
	}

	v, err := config.NewViper(base, cmd.Flags())
	if err != nil {
		return nil, err
	}
	return config.FromViper(v, files)
}

// newLogger builds the run logger. The standard streams are those handed
// to Run so that output can be captured.
func newLogger(cfg *config.Config, stdout, stderr io.Writer) (*logging.Logger, error) {
	lc := cfg.LoggingConfig()
	switch lc.Output {
	case "stderr":
		return logging.NewWithWriter(lc, stderr), nil
	case "", "stdout":
		return logging.NewWithWriter(lc, stdout), nil
	default:
		logger, err := logging.New(lc)
		if err != nil {
			return nil, errors.WrapConfigError(errors.CodeConfiguration, "Failed to initialize logging", err)
		}
		return logger, nil
	}
}
