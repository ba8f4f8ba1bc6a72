// Package sink persists finished record sets. Three sinks share one
// versioned column schema: flat files, a relational store, and a Google
// Sheets spreadsheet. Sinks only consume the snapshot; they never reach
// back into the pipeline.
package sink

import (
	"context"

	"github.com/kuuhaku1102/beauty/internal/assemble"
	"github.com/kuuhaku1102/beauty/internal/parser"
)

// Snapshot is the point-in-time result of one run, handed to every sink.
type Snapshot struct {
	Clinics []assemble.ClinicRecord
	Menus   []assemble.MenuRecord
	Hours   []assemble.HoursRecord

	// Cards holds the raw per-card structures pre-flattening, for audit.
	Cards []parser.Candidate

	// Targets lists every resolved page URL, in processing order.
	Targets []string

	// Timestamp is the snapshot time, RFC3339 seconds UTC.
	Timestamp string
}

// Sink persists one snapshot.
type Sink interface {
	Name() string
	Write(ctx context.Context, snap *Snapshot) error
}
