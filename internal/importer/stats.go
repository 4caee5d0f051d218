package importer

import (
	"time"

	"github.com/anstrom/nmapdb/internal/db"
)

// FileStats counts what happened to one report file.
type FileStats struct {
	File   string
	Loaded bool
	Err    error

	Hosts   int
	Skipped int
	Ports   int

	HostsInserted int
	HostsRejected int
	HostsFailed   int
	PortsInserted int
	PortsRejected int
	PortsFailed   int
}

func (fs *FileStats) countHost(result db.InsertResult) {
	switch result.Outcome {
	case db.InsertOK:
		fs.HostsInserted++
	case db.InsertConstraintViolation:
		fs.HostsRejected++
	default:
		fs.HostsFailed++
	}
}

func (fs *FileStats) countPort(result db.InsertResult) {
	switch result.Outcome {
	case db.InsertOK:
		fs.PortsInserted++
	case db.InsertConstraintViolation:
		fs.PortsRejected++
	default:
		fs.PortsFailed++
	}
}

// Stats summarizes a run.
type Stats struct {
	RunID     string
	DryRun    bool
	Committed bool
	Started   time.Time
	Finished  time.Time
	Files     []FileStats
}

// FilesLoaded returns the number of reports that were parsed.
func (s *Stats) FilesLoaded() int {
	n := 0
	for i := range s.Files {
		if s.Files[i].Loaded {
			n++
		}
	}
	return n
}

// FilesSkipped returns the number of reports that could not be loaded.
func (s *Stats) FilesSkipped() int {
	return len(s.Files) - s.FilesLoaded()
}

// Totals sums the per-file counters. File, Loaded and Err are left empty.
func (s *Stats) Totals() FileStats {
	var t FileStats
	for i := range s.Files {
		f := &s.Files[i]
		t.Hosts += f.Hosts
		t.Skipped += f.Skipped
		t.Ports += f.Ports
		t.HostsInserted += f.HostsInserted
		t.HostsRejected += f.HostsRejected
		t.HostsFailed += f.HostsFailed
		t.PortsInserted += f.PortsInserted
		t.PortsRejected += f.PortsRejected
		t.PortsFailed += f.PortsFailed
	}
	return t
}
