// Package app runs the generator end to end: generation, incremental
// extraction, sinks, record store and manifest.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"etlgen/internal/config"
	"etlgen/internal/dataset"
	"etlgen/internal/logger"
	"etlgen/internal/manifest"
	"etlgen/internal/metrics"
	"etlgen/internal/model"
	"etlgen/internal/report"
	"etlgen/internal/sink"
	"etlgen/internal/store"
)

// Deps are the collaborators a run needs. Store may be nil.
type Deps struct {
	Log       logger.Logger
	Metrics   *metrics.Registry
	Sinks     *sink.MultiWriter
	Store     store.Store
	Publisher manifest.Publisher
}

// Generate produces the raw and incremental datasets, lands them in every
// sink, stores the raw rows and publishes a manifest describing the run.
func Generate(ctx context.Context, cfg *config.Config, d Deps) (manifest.Manifest, error) {
	log := d.Log.WithFields(logger.Int64("seed", cfg.Dataset.Seed), logger.Int("rows", cfg.Dataset.Rows))

	t0 := time.Now()
	res, err := dataset.Generate(ctx, dataset.Options{
		Rows:     cfg.Dataset.Rows,
		Seed:     cfg.Dataset.Seed,
		Now:      cfg.Dataset.NowTime(),
		Progress: report.Progress(log, cfg.Dataset.Rows),
	})
	if err != nil {
		return manifest.Manifest{}, fmt.Errorf("generate: %w", err)
	}
	d.Metrics.GenerateSec.Observe(time.Since(t0).Seconds())
	d.Metrics.RowsGenerated.Add(float64(cfg.Dataset.Rows))
	d.Metrics.ObserveDefects(res.Defects.Counts())
	log.Info("defects injected", logger.Any("counts", res.Defects.Counts()), logger.Int("total_rows", len(res.Records)))

	inc, err := dataset.ExtractIncremental(res.Records, cfg.Dataset.Fraction)
	if err != nil {
		return manifest.Manifest{}, fmt.Errorf("extract incremental: %w", err)
	}

	rawName, incName := cfg.Output.RawName, cfg.Output.IncrementalName
	if err := d.Sinks.Write(ctx, rawName, res.Records); err != nil {
		return manifest.Manifest{}, fmt.Errorf("write %s: %w", rawName, err)
	}
	if err := d.Sinks.Write(ctx, incName, inc); err != nil {
		return manifest.Manifest{}, fmt.Errorf("write %s: %w", incName, err)
	}

	if d.Store != nil {
		if err := d.Store.Put(rawName, res.Records); err != nil {
			return manifest.Manifest{}, fmt.Errorf("store %s: %w", rawName, err)
		}
		d.Metrics.StoredRows.Add(float64(len(res.Records)))
	}

	m := manifest.Manifest{
		RunID:    manifest.NewRunID(),
		Seed:     res.Seed,
		Rows:     cfg.Dataset.Rows,
		Now:      res.Now.Format(time.RFC3339),
		Fraction: cfg.Dataset.Fraction,
		Datasets: map[string]manifest.Dataset{
			rawName: {Rows: len(res.Records), Locations: d.Sinks.Locations(rawName)},
			incName: {Rows: len(inc), Locations: d.Sinks.Locations(incName)},
		},
		Defects: res.Defects.Counts(),
	}
	if d.Store != nil {
		m.StoreBackend, m.StoreDir = cfg.Store.Backend, cfg.Store.Dir
	}
	if err := d.Publisher.PublishLatest(m); err != nil {
		return manifest.Manifest{}, fmt.Errorf("publish manifest: %w", err)
	}

	report.Log(log, rawName, report.Summarize(res.Records))
	report.Log(log, incName, report.Summarize(inc))
	report.Head(log, rawName, res.Records, 5)
	d.Metrics.LastRunUnix.SetToCurrentTime()
	return m, nil
}

// ErrNoStore is returned when an incremental rerun has no record store.
var ErrNoStore = errors.New("no record store configured; run gendataset with STORE_BACKEND set")

// Incremental re-derives the incremental dataset from the raw rows a
// previous run stored, using the fraction in cfg.
func Incremental(ctx context.Context, cfg *config.Config, m manifest.Manifest, d Deps) ([]model.Record, error) {
	if d.Store == nil {
		return nil, ErrNoStore
	}
	rawName, incName := cfg.Output.RawName, cfg.Output.IncrementalName
	log := d.Log.WithFields(logger.String("run_id", m.RunID), logger.Int64("seed", m.Seed))

	raw, err := d.Store.Load(rawName)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", rawName, err)
	}
	if want := m.Datasets[rawName].Rows; want != 0 && want != len(raw) {
		log.Warn("stored row count differs from manifest", logger.Int("stored", len(raw)), logger.Int("manifest", want))
	}

	inc, err := dataset.ExtractIncremental(raw, cfg.Dataset.Fraction)
	if err != nil {
		return nil, fmt.Errorf("extract incremental: %w", err)
	}
	if err := d.Sinks.Write(ctx, incName, inc); err != nil {
		return nil, fmt.Errorf("write %s: %w", incName, err)
	}
	report.Log(log, incName, report.Summarize(inc))
	return inc, nil
}
