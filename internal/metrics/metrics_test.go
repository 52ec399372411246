package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveDefects(t *testing.T) {
	r := NewRegistry()
	r.ObserveDefects(map[string]int{"duplicate": 5, "outlier_quantity": 1})
	r.ObserveDefects(map[string]int{"duplicate": 5})

	if got := testutil.ToFloat64(r.DefectsInjected.WithLabelValues("duplicate")); got != 10 {
		t.Fatalf("duplicate=%v want 10", got)
	}
	if got := testutil.ToFloat64(r.DefectsInjected.WithLabelValues("outlier_quantity")); got != 1 {
		t.Fatalf("outlier=%v want 1", got)
	}
}

func TestHandler_ExposesCounters(t *testing.T) {
	r := NewRegistry()
	r.RowsGenerated.Add(1000)
	r.RowsEmitted.WithLabelValues("raw_data").Add(1005)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)

	for _, want := range []string{
		"etlgen_rows_generated_total 1000",
		`etlgen_rows_emitted_total{dataset="raw_data"} 1005`,
	} {
		if !strings.Contains(string(body), want) {
			t.Fatalf("missing %q in:\n%s", want, body)
		}
	}
}
