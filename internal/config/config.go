// Package config provides configuration management for nmapdb.
// Settings come from built-in defaults, an optional YAML file, NMAPDB_
// environment variables and command-line flags, in increasing precedence.
package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/anstrom/nmapdb/internal/db"
	"github.com/anstrom/nmapdb/internal/errors"
	"github.com/anstrom/nmapdb/internal/logging"
)

// EnvPrefix is prepended to every environment variable nmapdb reads.
const EnvPrefix = "NMAPDB"

const (
	configDirPerm  = 0750
	configFilePerm = 0600
)

// Config represents the settings of one nmapdb run.
type Config struct {
	// Database is a SQLite file path or a postgres:// URL. Empty selects
	// the default SQLite file.
	Database string `yaml:"database" json:"database" mapstructure:"database" validate:"max=4096"`

	// Create names a schema definition executed before loading reports.
	Create string `yaml:"create,omitempty" json:"create,omitempty" mapstructure:"create" validate:"omitempty,max=4096"`

	// NoDB extracts and logs records without touching a database.
	NoDB bool `yaml:"nodb" json:"nodb" mapstructure:"nodb"`

	// Verbose raises the log level to debug.
	Verbose bool `yaml:"verbose" json:"verbose" mapstructure:"verbose"`

	// Summary prints a per-file table once the run is over.
	Summary bool `yaml:"summary" json:"summary" mapstructure:"summary"`

	// MetricsFile receives run metrics in the Prometheus text format.
	MetricsFile string `yaml:"metrics_file,omitempty" json:"metrics_file,omitempty" mapstructure:"metrics_file"`

	Logging LoggingConfig `yaml:"logging" json:"logging" mapstructure:"logging"`

	// Files are the reports to import. They only come from the command line.
	Files []string `yaml:"-" json:"-" mapstructure:"-" validate:"dive,required"`
}

// LoggingConfig represents logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level" mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" json:"format" mapstructure:"format" validate:"oneof=text json"`
	Output string `yaml:"output" json:"output" mapstructure:"output" validate:"required"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  string(logging.LevelInfo),
			Format: string(logging.FormatText),
			Output: "stderr",
		},
	}
}

// Load reads a YAML configuration file on top of the defaults. Unknown keys
// are rejected.
func Load(path string) (*Config, error) {
	config := Default()

	data, err := os.ReadFile(path) //nolint:gosec // operator supplied config path
	if err != nil {
		return nil, errors.WrapConfigError(errors.CodeConfiguration, "Failed to read config file", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(config); err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.WrapConfigError(errors.CodeConfiguration, "Failed to parse YAML config", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), configDirPerm); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, configFilePerm); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate checks the struct tags of the configuration.
func (c *Config) Validate() error {
	err := validator.New().Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return errors.NewConfigFieldError(errors.CodeValidation,
			fmt.Sprintf("Invalid configuration value (%s)", fe.Tag()), fe.Namespace(), fe.Value())
	}
	return errors.WrapConfigError(errors.CodeValidation, "Invalid configuration", err)
}

// DatabaseConfig returns the store configuration.
func (c *Config) DatabaseConfig() db.Config {
	return db.Config{DSN: c.Database}
}

// LoggingConfig converts the logging section for the logging package.
// Verbose forces debug level.
func (c *Config) LoggingConfig() logging.Config {
	level := logging.LogLevel(c.Logging.Level)
	if c.Verbose {
		level = logging.LevelDebug
	}
	return logging.Config{
		Level:     level,
		Format:    logging.LogFormat(c.Logging.Format),
		Output:    c.Logging.Output,
		AddSource: level == logging.LevelDebug,
	}
}

// flagKeys maps command-line flag names to configuration keys.
var flagKeys = map[string]string{
	"database":     "database",
	"create":       "create",
	"nodb":         "nodb",
	"verbose":      "verbose",
	"summary":      "summary",
	"metrics-file": "metrics_file",
	"log-format":   "logging.format",
}

// NewViper prepares a viper instance whose defaults are base, with
// NMAPDB_ environment variables and the given flags layered on top.
// Flags missing from flags are ignored.
func NewViper(base *Config, flags *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("database", base.Database)
	v.SetDefault("create", base.Create)
	v.SetDefault("nodb", base.NoDB)
	v.SetDefault("verbose", base.Verbose)
	v.SetDefault("summary", base.Summary)
	v.SetDefault("metrics_file", base.MetricsFile)
	v.SetDefault("logging.level", base.Logging.Level)
	v.SetDefault("logging.format", base.Logging.Format)
	v.SetDefault("logging.output", base.Logging.Output)

	if flags == nil {
		return v, nil
	}
	for name, key := range flagKeys {
		flag := flags.Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return nil, errors.WrapConfigError(errors.CodeConfiguration, "Failed to bind flag "+name, err)
		}
	}
	return v, nil
}

// FromViper decodes and validates the merged configuration.
func FromViper(v *viper.Viper, files []string) (*Config, error) {
	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, errors.WrapConfigError(errors.CodeConfiguration, "Failed to decode configuration", err)
	}
	config.Files = files

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}
