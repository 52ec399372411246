package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"etlgen/internal/app"
	"etlgen/internal/config"
	"etlgen/internal/logger"
	"etlgen/internal/metrics"
	"etlgen/internal/store"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}
	log, err := logger.NewZapLogger(cfg.App.Env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("incremental failed", logger.Error(err))
		stop()
		_ = log.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log logger.Logger) error {
	m, err := app.BuildReader(cfg).ReadLatest()
	if err != nil {
		return fmt.Errorf("read manifest: %w", err)
	}
	log.Info("manifest loaded",
		logger.String("run_id", m.RunID),
		logger.String("store", m.StoreBackend),
		logger.Float64("fraction", cfg.Dataset.Fraction))

	// the manifest names the store the run used unless one is forced
	backend, dir := m.StoreBackend, m.StoreDir
	if cfg.Store.Backend != "none" {
		backend, dir = cfg.Store.Backend, cfg.Store.Dir
	}
	st, err := store.Open(backend, dir)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	if st != nil {
		defer st.Close()
	}

	mreg := metrics.NewRegistry()
	sinks, err := app.BuildSinks(ctx, cfg, mreg, log)
	if err != nil {
		return fmt.Errorf("init sinks: %w", err)
	}
	defer sinks.Close()

	inc, err := app.Incremental(ctx, cfg, m, app.Deps{Log: log, Metrics: mreg, Sinks: sinks, Store: st})
	if err != nil {
		return err
	}
	log.Info("incremental written",
		logger.String("dataset", cfg.Output.IncrementalName),
		logger.Int("rows", len(inc)),
		logger.Any("locations", sinks.Locations(cfg.Output.IncrementalName)))
	return nil
}
