// Package metrics collects Prometheus counters for an import run and
// writes them in the text exposition format for the node exporter
// textfile collector.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace         = "nmapdb"
	subsystemImport   = "import"
	subsystemDatabase = "database"
)

// File status label values.
const (
	FileLoaded  = "loaded"
	FileSkipped = "skipped"
)

// Host status label values.
const (
	HostExtracted = "extracted"
	HostSkipped   = "skipped"
)

// Metrics holds the collectors of a single run on a private registry.
// All methods are safe to call on a nil *Metrics.
type Metrics struct {
	registry *prometheus.Registry

	files        *prometheus.CounterVec
	hosts        *prometheus.CounterVec
	rows         *prometheus.CounterVec
	runDuration  prometheus.Gauge
	lastRunEnded prometheus.Gauge
}

// New creates and registers the run collectors.
func New() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.files = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystemImport,
			Name:      "files_total",
			Help:      "Total number of report files by load status",
		},
		[]string{"status"},
	)

	m.hosts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystemImport,
			Name:      "hosts_total",
			Help:      "Total number of host elements by extraction status",
		},
		[]string{"status"},
	)

	m.rows = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystemDatabase,
			Name:      "rows_total",
			Help:      "Total number of row inserts by table and outcome",
		},
		[]string{"table", "outcome"},
	)

	m.runDuration = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystemImport,
			Name:      "run_duration_seconds",
			Help:      "Wall clock duration of the last import run",
		},
	)

	m.lastRunEnded = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystemImport,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last import run finished",
		},
	)

	m.registry.MustRegister(m.files, m.hosts, m.rows, m.runDuration, m.lastRunEnded)
	return m
}

// Registry returns the registry holding the run collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// IncrementFiles counts one report file with the given status.
func (m *Metrics) IncrementFiles(status string) {
	if m == nil {
		return
	}
	m.files.WithLabelValues(status).Inc()
}

// IncrementHosts counts one host element with the given status.
func (m *Metrics) IncrementHosts(status string) {
	if m == nil {
		return
	}
	m.hosts.WithLabelValues(status).Inc()
}

// IncrementRows counts one insert attempt against table.
func (m *Metrics) IncrementRows(table, outcome string) {
	if m == nil {
		return
	}
	m.rows.WithLabelValues(table, outcome).Inc()
}

// RecordRun sets the duration and completion time of the run.
func (m *Metrics) RecordRun(duration time.Duration, finished time.Time) {
	if m == nil {
		return
	}
	m.runDuration.Set(duration.Seconds())
	m.lastRunEnded.Set(float64(finished.Unix()))
}

// WriteTextfile writes every collected metric to path, replacing it
// atomically.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.registry)
}
