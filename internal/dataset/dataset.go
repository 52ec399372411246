// Package dataset is the entry point of the generator: it assembles the
// base rows, runs defect injection and derives incremental slices.
package dataset

import (
	"context"
	"fmt"
	"time"

	"etlgen/internal/defect"
	"etlgen/internal/incremental"
	"etlgen/internal/model"
	"etlgen/internal/random"
	"etlgen/internal/synth"
)

// DefaultRows is the row count used when none is configured.
const DefaultRows = 10000

// Options controls one generation run. Now anchors the order-date window;
// fixing it makes runs reproducible across days.
type Options struct {
	Rows     int
	Seed     int64
	Now      time.Time
	Progress synth.ProgressFunc
}

// Result is the corrupted dataset plus an audit of what was corrupted.
type Result struct {
	Records []model.Record
	Defects defect.Report
	Seed    int64
	Now     time.Time
}

// Generate builds Rows base records from Seed and injects defects.
// Identical (Rows, Seed, Now) always yield identical output.
func Generate(ctx context.Context, opts Options) (Result, error) {
	if opts.Rows <= 0 {
		return Result{}, fmt.Errorf("%w: got %d", ErrInvalidRowCount, opts.Rows)
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	now := opts.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	src := random.New(opts.Seed)
	rows := synth.Assemble(src, opts.Rows, now, opts.Progress)
	rows, rep := defect.Inject(src, rows)

	return Result{Records: rows, Defects: rep, Seed: opts.Seed, Now: now}, nil
}

// ExtractIncremental returns the most recent fraction of records.
func ExtractIncremental(records []model.Record, fraction float64) ([]model.Record, error) {
	return incremental.Extract(records, fraction)
}
