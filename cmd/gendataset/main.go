package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
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
		log.Error("gendataset failed", logger.Error(err))
		stop()
		_ = log.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log logger.Logger) error {
	log.Info("starting gendataset",
		logger.Int("rows", cfg.Dataset.Rows),
		logger.Int64("seed", cfg.Dataset.Seed),
		logger.Float64("fraction", cfg.Dataset.Fraction),
		logger.Any("formats", cfg.Output.Formats),
		logger.String("store", cfg.Store.Backend))

	mreg := metrics.NewRegistry()
	if cfg.Metrics.Addr != "" {
		serveMetrics(cfg.Metrics.Addr, mreg, log)
	}

	sinks, err := app.BuildSinks(ctx, cfg, mreg, log)
	if err != nil {
		return fmt.Errorf("init sinks: %w", err)
	}
	defer sinks.Close()

	st, err := store.Open(cfg.Store.Backend, cfg.Store.Dir)
	if err != nil {
		return fmt.Errorf("init store: %w", err)
	}
	if st != nil {
		defer st.Close()
	}

	m, err := app.Generate(ctx, cfg, app.Deps{
		Log:       log,
		Metrics:   mreg,
		Sinks:     sinks,
		Store:     st,
		Publisher: app.BuildPublisher(cfg),
	})
	if err != nil {
		return err
	}
	for name, ds := range m.Datasets {
		log.Info("dataset written", logger.String("dataset", name), logger.Int("rows", ds.Rows), logger.Any("locations", ds.Locations))
	}
	log.Info("run complete", logger.String("run_id", m.RunID))
	return nil
}

func serveMetrics(addr string, mreg *metrics.Registry, log logger.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", mreg.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"status": "ok"})
	})
	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
			log.Warn("metrics server stopped", logger.Error(err))
		}
	}()
}
