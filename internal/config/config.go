package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Dataset  DatasetConfig
	Output   OutputConfig
	Store    StoreConfig
	Kafka    KafkaConfig
	Postgres PostgresConfig
	Manifest ManifestConfig
	Metrics  MetricsConfig
}

type AppConfig struct {
	Env string
}

type DatasetConfig struct {
	Rows     int
	Seed     int64
	Now      string // RFC3339 or 2006-01-02; empty means wall clock
	Fraction float64
}

type OutputConfig struct {
	Dir             string
	RawName         string
	IncrementalName string
	Formats         []string // csv|jsonl|avro
}

type StoreConfig struct {
	Backend string // none|memory|pebble|badger
	Dir     string
}

type KafkaConfig struct {
	Brokers          []string
	RawTopic         string
	IncrementalTopic string
	ManifestTopic    string
}

type PostgresConfig struct {
	DSN         string
	TablePrefix string
}

type ManifestConfig struct {
	Sink string // file|kafka|both
	Dir  string
}

type MetricsConfig struct {
	Addr string
}

var (
	knownFormats  = map[string]bool{"csv": true, "jsonl": true, "avro": true}
	knownBackends = map[string]bool{"none": true, "memory": true, "pebble": true, "badger": true}
	knownSinks    = map[string]bool{"file": true, "kafka": true, "both": true}
)

// Load reads .env, then the environment, then args (flags win).
func Load(args []string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		App: AppConfig{
			Env: getEnv("APP_ENV", "development"),
		},
		Dataset: DatasetConfig{
			Rows:     getEnvAsInt("DATASET_ROWS", 10000),
			Seed:     getEnvAsInt64("DATASET_SEED", 42),
			Now:      getEnv("DATASET_NOW", ""),
			Fraction: getEnvAsFloat("INCREMENTAL_FRACTION", 0.15),
		},
		Output: OutputConfig{
			Dir:             getEnv("OUTPUT_DIR", "data"),
			RawName:         getEnv("OUTPUT_RAW_NAME", "raw_data"),
			IncrementalName: getEnv("OUTPUT_INCREMENTAL_NAME", "incremental_data"),
			Formats:         splitAndTrim(getEnv("OUTPUT_FORMATS", "csv")),
		},
		Store: StoreConfig{
			Backend: getEnv("STORE_BACKEND", "none"),
			Dir:     getEnv("STORE_DIR", "./data/store"),
		},
		Kafka: KafkaConfig{
			Brokers:          splitAndTrim(getEnv("KAFKA_BOOTSTRAP", "")),
			RawTopic:         getEnv("KAFKA_TOPIC_RAW", "etl.orders.raw"),
			IncrementalTopic: getEnv("KAFKA_TOPIC_INCREMENTAL", "etl.orders.incremental"),
			ManifestTopic:    getEnv("KAFKA_TOPIC_MANIFEST", "etl.orders.manifest"),
		},
		Postgres: PostgresConfig{
			DSN:         getEnv("POSTGRES_DSN", ""),
			TablePrefix: getEnv("POSTGRES_TABLE_PREFIX", "landing_"),
		},
		Manifest: ManifestConfig{
			Sink: getEnv("MANIFEST_SINK", "file"),
			Dir:  getEnv("MANIFEST_DIR", ""),
		},
		Metrics: MetricsConfig{
			Addr: getEnv("METRICS_ADDR", ""),
		},
	}

	if err := cfg.parseFlags(args); err != nil {
		return nil, err
	}
	if cfg.Manifest.Dir == "" {
		cfg.Manifest.Dir = cfg.Output.Dir
	}
	return cfg, cfg.Validate()
}

func (c *Config) parseFlags(args []string) error {
	fs := flag.NewFlagSet("etlgen", flag.ContinueOnError)
	formats := strings.Join(c.Output.Formats, ",")
	brokers := strings.Join(c.Kafka.Brokers, ",")

	fs.IntVar(&c.Dataset.Rows, "rows", c.Dataset.Rows, "number of base rows to generate")
	fs.Int64Var(&c.Dataset.Seed, "seed", c.Dataset.Seed, "random seed")
	fs.StringVar(&c.Dataset.Now, "now", c.Dataset.Now, "reference time for the order-date window (RFC3339 or YYYY-MM-DD)")
	fs.Float64Var(&c.Dataset.Fraction, "fraction", c.Dataset.Fraction, "share of most recent rows in the incremental dataset")
	fs.StringVar(&c.Output.Dir, "output-dir", c.Output.Dir, "output directory")
	fs.StringVar(&formats, "formats", formats, "output formats: csv,jsonl,avro")
	fs.StringVar(&c.Store.Backend, "store-backend", c.Store.Backend, "record store: none|memory|pebble|badger")
	fs.StringVar(&c.Store.Dir, "store-dir", c.Store.Dir, "record store directory")
	fs.StringVar(&brokers, "kafka-bootstrap", brokers, "kafka bootstrap servers, e.g. localhost:9092")
	fs.StringVar(&c.Manifest.Sink, "manifest-sink", c.Manifest.Sink, "manifest sink: file|kafka|both")
	fs.StringVar(&c.Postgres.DSN, "postgres-dsn", c.Postgres.DSN, "postgres DSN for the landing tables")
	fs.StringVar(&c.Metrics.Addr, "metrics-addr", c.Metrics.Addr, "listen address for /metrics, empty disables")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}

	c.Output.Formats = splitAndTrim(formats)
	c.Kafka.Brokers = splitAndTrim(brokers)
	return nil
}

// Validate rejects configurations the generator cannot run with.
func (c *Config) Validate() error {
	if c.Dataset.Rows <= 0 {
		return fmt.Errorf("DATASET_ROWS must be greater than zero, got %d", c.Dataset.Rows)
	}
	if !(c.Dataset.Fraction > 0 && c.Dataset.Fraction <= 1) {
		return fmt.Errorf("INCREMENTAL_FRACTION must be in (0, 1], got %v", c.Dataset.Fraction)
	}
	if _, err := ParseNow(c.Dataset.Now); err != nil {
		return err
	}
	for _, f := range c.Output.Formats {
		if !knownFormats[f] {
			return fmt.Errorf("unknown output format %q", f)
		}
	}
	if !knownBackends[c.Store.Backend] {
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}
	if !knownSinks[c.Manifest.Sink] {
		return fmt.Errorf("unknown manifest sink %q", c.Manifest.Sink)
	}
	if c.Manifest.Sink != "file" && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("manifest sink %q needs KAFKA_BOOTSTRAP", c.Manifest.Sink)
	}
	return nil
}

// NowTime returns the configured reference time, or the zero time.
func (d DatasetConfig) NowTime() time.Time {
	t, _ := ParseNow(d.Now)
	return t
}

// ParseNow accepts RFC3339 or a bare date. Empty yields the zero time.
func ParseNow(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("DATASET_NOW %q is neither RFC3339 nor YYYY-MM-DD", raw)
	}
	return t, nil
}

/* ================= helpers ================= */

func getEnv(key, defaultVal string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if v, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvAsInt64(key string, defaultVal int64) int64 {
	if v, ok := os.LookupEnv(key); ok {
		if i, err := strconv.ParseInt(v, 10, 64); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvAsFloat(key string, defaultVal float64) float64 {
	if v, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if val := strings.TrimSpace(p); val != "" {
			out = append(out, val)
		}
	}
	return out
}
