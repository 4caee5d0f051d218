package cli

import (
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/anstrom/nmapdb/internal/errors"
	"github.com/anstrom/nmapdb/internal/importer"
)

// printSummary renders one row per report plus a total row.
func printSummary(w io.Writer, stats *importer.Stats) {
	table := tablewriter.NewWriter(w)
	table.Header("File", "Status", "Hosts", "Skipped", "Hosts Inserted", "Hosts Rejected", "Ports Inserted", "Ports Rejected")

	for i := range stats.Files {
		f := &stats.Files[i]
		_ = table.Append(summaryRow(f.File, fileStatus(f), f))
	}

	totals := stats.Totals()
	status := "committed"
	switch {
	case stats.DryRun:
		status = "dry run"
	case !stats.Committed:
		status = "rolled back"
	}
	_ = table.Append(summaryRow("TOTAL", status, &totals))

	_ = table.Render()
}

func fileStatus(f *importer.FileStats) string {
	if f.Loaded {
		return "loaded"
	}
	switch errors.GetCode(f.Err) {
	case errors.CodeFileNotFound:
		return "missing"
	case errors.CodeMalformedReport:
		return "malformed"
	default:
		return "skipped"
	}
}

func summaryRow(name, status string, f *importer.FileStats) []string {
	return []string{
		name,
		status,
		strconv.Itoa(f.Hosts),
		strconv.Itoa(f.Skipped),
		strconv.Itoa(f.HostsInserted),
		strconv.Itoa(f.HostsRejected),
		strconv.Itoa(f.PortsInserted),
		strconv.Itoa(f.PortsRejected),
	}
}
