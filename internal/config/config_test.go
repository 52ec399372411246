package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATASET_ROWS", "10000")
	t.Setenv("DATASET_SEED", "42")
	t.Setenv("INCREMENTAL_FRACTION", "0.15")
	t.Setenv("OUTPUT_FORMATS", "csv")
	t.Setenv("STORE_BACKEND", "none")
	t.Setenv("MANIFEST_SINK", "file")
	t.Setenv("OUTPUT_DIR", "data")
	t.Setenv("MANIFEST_DIR", "")

	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, 10000, cfg.Dataset.Rows)
	assert.Equal(t, int64(42), cfg.Dataset.Seed)
	assert.Equal(t, 0.15, cfg.Dataset.Fraction)
	assert.Equal(t, []string{"csv"}, cfg.Output.Formats)
	assert.Equal(t, "data", cfg.Manifest.Dir)
}

func TestLoad_FlagsOverrideEnv(t *testing.T) {
	t.Setenv("DATASET_ROWS", "500")
	t.Setenv("STORE_BACKEND", "none")
	t.Setenv("MANIFEST_SINK", "file")
	t.Setenv("OUTPUT_FORMATS", "csv")
	t.Setenv("INCREMENTAL_FRACTION", "0.15")

	cfg, err := Load([]string{
		"-rows", "1000",
		"-seed", "7",
		"-now", "2025-06-30",
		"-formats", "csv, jsonl,avro",
		"-store-backend", "pebble",
		"-kafka-bootstrap", "k1:9092, k2:9092",
	})
	require.NoError(t, err)
	assert.Equal(t, 1000, cfg.Dataset.Rows)
	assert.Equal(t, int64(7), cfg.Dataset.Seed)
	assert.Equal(t, []string{"csv", "jsonl", "avro"}, cfg.Output.Formats)
	assert.Equal(t, "pebble", cfg.Store.Backend)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC), cfg.Dataset.NowTime())
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Dataset:  DatasetConfig{Rows: 10, Fraction: 0.5},
			Output:   OutputConfig{Formats: []string{"csv"}},
			Store:    StoreConfig{Backend: "none"},
			Manifest: ManifestConfig{Sink: "file"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "zero rows", mutate: func(c *Config) { c.Dataset.Rows = 0 }, wantErr: true},
		{name: "fraction zero", mutate: func(c *Config) { c.Dataset.Fraction = 0 }, wantErr: true},
		{name: "fraction one", mutate: func(c *Config) { c.Dataset.Fraction = 1 }},
		{name: "fraction above one", mutate: func(c *Config) { c.Dataset.Fraction = 1.5 }, wantErr: true},
		{name: "bad now", mutate: func(c *Config) { c.Dataset.Now = "yesterday" }, wantErr: true},
		{name: "rfc3339 now", mutate: func(c *Config) { c.Dataset.Now = "2025-06-30T10:00:00Z" }},
		{name: "unknown format", mutate: func(c *Config) { c.Output.Formats = []string{"xlsx"} }, wantErr: true},
		{name: "unknown backend", mutate: func(c *Config) { c.Store.Backend = "redis" }, wantErr: true},
		{name: "kafka manifest without brokers", mutate: func(c *Config) { c.Manifest.Sink = "kafka" }, wantErr: true},
		{name: "kafka manifest with brokers", mutate: func(c *Config) {
			c.Manifest.Sink = "both"
			c.Kafka.Brokers = []string{"localhost:9092"}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestParseNow(t *testing.T) {
	got, err := ParseNow("")
	require.NoError(t, err)
	assert.True(t, got.IsZero())

	got, err = ParseNow("2025-06-30T10:00:00+02:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 30, 8, 0, 0, 0, time.UTC), got)
}
