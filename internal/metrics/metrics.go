package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Registry struct {
	reg             *prometheus.Registry
	RowsGenerated   prometheus.Counter
	RowsEmitted     *prometheus.CounterVec // by dataset
	DefectsInjected *prometheus.CounterVec // by kind
	SinkWrites      *prometheus.CounterVec // by sink
	SinkErrors      *prometheus.CounterVec // by sink
	StoredRows      prometheus.Counter
	GenerateSec     prometheus.Histogram
	LastRunUnix     prometheus.Gauge
}

func NewRegistry() *Registry {
	r := prometheus.NewRegistry()
	rowsGenerated := prometheus.NewCounter(prometheus.CounterOpts{Name: "etlgen_rows_generated_total"})
	rowsEmitted := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "etlgen_rows_emitted_total"}, []string{"dataset"})
	defects := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "etlgen_defects_injected_total"}, []string{"kind"})
	sinkWrites := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "etlgen_sink_writes_total"}, []string{"sink"})
	sinkErrors := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "etlgen_sink_errors_total"}, []string{"sink"})
	stored := prometheus.NewCounter(prometheus.CounterOpts{Name: "etlgen_store_rows_total"})
	genSec := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "etlgen_generate_seconds",
		Buckets: prometheus.DefBuckets,
	})
	lastRun := prometheus.NewGauge(prometheus.GaugeOpts{Name: "etlgen_last_run_timestamp_seconds"})

	r.MustRegister(rowsGenerated, rowsEmitted, defects, sinkWrites, sinkErrors, stored, genSec, lastRun)
	return &Registry{
		reg:             r,
		RowsGenerated:   rowsGenerated,
		RowsEmitted:     rowsEmitted,
		DefectsInjected: defects,
		SinkWrites:      sinkWrites,
		SinkErrors:      sinkErrors,
		StoredRows:      stored,
		GenerateSec:     genSec,
		LastRunUnix:     lastRun,
	}
}

// ObserveDefects adds one counter increment per injected defect kind.
func (r *Registry) ObserveDefects(counts map[string]int) {
	for kind, n := range counts {
		r.DefectsInjected.WithLabelValues(kind).Add(float64(n))
	}
}

func (r *Registry) Handler() http.Handler { return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}) }
