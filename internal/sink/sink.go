// Package sink persists or publishes finished datasets. Sinks only read
// the records they are given; none of them alter the rows.
package sink

import (
	"context"
	"errors"
	"io"
	"strconv"

	"etlgen/internal/metrics"
	"etlgen/internal/model"
)

// Writer persists one named dataset.
type Writer interface {
	Name() string
	Write(ctx context.Context, dataset string, records []model.Record) error
}

// Locator is implemented by sinks that land datasets at addressable
// locations (files, tables) worth recording in a manifest.
type Locator interface {
	Location(dataset string) string
}

// MultiWriter fans out writes to multiple underlying writers, in order,
// stopping at the first failure.
type MultiWriter struct {
	writers []Writer
	reg     *metrics.Registry
}

// NewMultiWriter combines writers. reg may be nil.
func NewMultiWriter(reg *metrics.Registry, ws ...Writer) *MultiWriter {
	return &MultiWriter{writers: ws, reg: reg}
}

func (m *MultiWriter) Name() string { return "multi" }

func (m *MultiWriter) Write(ctx context.Context, dataset string, records []model.Record) error {
	for _, w := range m.writers {
		if err := w.Write(ctx, dataset, records); err != nil {
			if m.reg != nil {
				m.reg.SinkErrors.WithLabelValues(w.Name()).Inc()
			}
			return err
		}
		if m.reg != nil {
			m.reg.SinkWrites.WithLabelValues(w.Name()).Inc()
		}
	}
	if m.reg != nil {
		m.reg.RowsEmitted.WithLabelValues(dataset).Add(float64(len(records)))
	}
	return nil
}

// Locations lists where each locating writer put dataset.
func (m *MultiWriter) Locations(dataset string) []string {
	var out []string
	for _, w := range m.writers {
		if l, ok := w.(Locator); ok {
			out = append(out, l.Location(dataset))
		}
	}
	return out
}

// Close closes every writer that holds resources.
func (m *MultiWriter) Close() error {
	var errs []error
	for _, w := range m.writers {
		if c, ok := w.(io.Closer); ok {
			errs = append(errs, c.Close())
		}
	}
	return errors.Join(errs...)
}

// textRow renders a record as header-ordered cells; nulls become "".
func textRow(r model.Record) []string {
	cat, _ := model.Value(r.Category)
	region, _ := model.Value(r.Region)
	payment, _ := model.Value(r.PaymentMethod)
	return []string{
		r.CustomerID,
		r.Product,
		cat,
		strconv.Itoa(r.Quantity),
		strconv.FormatFloat(r.UnitPrice, 'f', -1, 64),
		r.OrderDate.Format(model.DateLayout),
		region,
		payment,
	}
}
