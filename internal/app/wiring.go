package app

import (
	"context"
	"fmt"

	"etlgen/internal/config"
	"etlgen/internal/logger"
	"etlgen/internal/manifest"
	"etlgen/internal/metrics"
	"etlgen/internal/sink"
)

const manifestKey = "etlgen-manifest-latest"

// BuildSinks assembles every sink the configuration enables.
func BuildSinks(ctx context.Context, cfg *config.Config, reg *metrics.Registry, log logger.Logger) (*sink.MultiWriter, error) {
	var ws []sink.Writer
	for _, f := range cfg.Output.Formats {
		switch f {
		case "csv":
			ws = append(ws, sink.NewCSVWriter(cfg.Output.Dir))
		case "jsonl":
			ws = append(ws, sink.NewJSONLWriter(cfg.Output.Dir))
		case "avro":
			aw, err := sink.NewAvroWriter(cfg.Output.Dir)
			if err != nil {
				return nil, err
			}
			ws = append(ws, aw)
		default:
			return nil, fmt.Errorf("unknown output format %q", f)
		}
	}
	if len(cfg.Kafka.Brokers) > 0 {
		log.Info("kafka sink enabled",
			logger.Any("brokers", cfg.Kafka.Brokers),
			logger.String("raw_topic", cfg.Kafka.RawTopic),
			logger.String("incremental_topic", cfg.Kafka.IncrementalTopic))
		ws = append(ws, sink.NewKafkaWriter(cfg.Kafka.Brokers, map[string]string{
			cfg.Output.RawName:         cfg.Kafka.RawTopic,
			cfg.Output.IncrementalName: cfg.Kafka.IncrementalTopic,
		}))
	}
	if cfg.Postgres.DSN != "" {
		pw, err := sink.NewPostgresWriter(ctx, cfg.Postgres.DSN, cfg.Postgres.TablePrefix)
		if err != nil {
			return nil, err
		}
		log.Info("postgres sink enabled", logger.String("table_prefix", cfg.Postgres.TablePrefix))
		ws = append(ws, pw)
	}
	return sink.NewMultiWriter(reg, ws...), nil
}

// BuildPublisher returns the manifest publisher for MANIFEST_SINK.
func BuildPublisher(cfg *config.Config) manifest.Publisher {
	fs := manifest.NewFilesystemManifest(cfg.Manifest.Dir)
	switch cfg.Manifest.Sink {
	case "kafka":
		return manifest.NewKafkaManifest(cfg.Kafka.Brokers, cfg.Kafka.ManifestTopic, manifestKey)
	case "both":
		return manifest.MultiPublisher(fs, manifest.NewKafkaManifest(cfg.Kafka.Brokers, cfg.Kafka.ManifestTopic, manifestKey))
	default:
		return fs
	}
}

// BuildReader returns the manifest reader matching the publisher. With
// "both" the local file wins.
func BuildReader(cfg *config.Config) manifest.Reader {
	if cfg.Manifest.Sink == "kafka" {
		return manifest.NewKafkaReader(cfg.Kafka.Brokers, cfg.Kafka.ManifestTopic, manifestKey)
	}
	return manifest.NewFilesystemManifest(cfg.Manifest.Dir)
}
