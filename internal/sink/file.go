package sink

import (
	"bufio"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"etlgen/internal/model"
)

// fileTarget creates baseDir on demand and names files dataset.ext.
type fileTarget struct {
	baseDir string
	ext     string
}

func (f fileTarget) Location(dataset string) string {
	return filepath.Join(f.baseDir, dataset+"."+f.ext)
}

func (f fileTarget) create(dataset string) (*os.File, error) {
	if err := os.MkdirAll(f.baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir: %w", err)
	}
	out, err := os.Create(f.Location(dataset))
	if err != nil {
		return nil, fmt.Errorf("create: %w", err)
	}
	return out, nil
}

// CSVWriter writes a header line followed by one line per record.
type CSVWriter struct {
	fileTarget
}

func NewCSVWriter(baseDir string) *CSVWriter {
	return &CSVWriter{fileTarget{baseDir: baseDir, ext: "csv"}}
}

func (w *CSVWriter) Name() string { return "csv" }

func (w *CSVWriter) Write(_ context.Context, dataset string, records []model.Record) error {
	out, err := w.create(dataset)
	if err != nil {
		return err
	}
	defer out.Close()

	cw := csv.NewWriter(out)
	if err := cw.Write(model.Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, r := range records {
		if err := cw.Write(textRow(r)); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	return out.Close()
}

// JSONLWriter writes one JSON object per line; nulls stay null.
type JSONLWriter struct {
	fileTarget
}

func NewJSONLWriter(baseDir string) *JSONLWriter {
	return &JSONLWriter{fileTarget{baseDir: baseDir, ext: "jsonl"}}
}

func (w *JSONLWriter) Name() string { return "jsonl" }

func (w *JSONLWriter) Write(_ context.Context, dataset string, records []model.Record) error {
	out, err := w.create(dataset)
	if err != nil {
		return err
	}
	defer out.Close()

	buf := bufio.NewWriter(out)
	enc := json.NewEncoder(buf)
	for i := range records {
		if err := enc.Encode(jsonRow(records[i])); err != nil {
			return fmt.Errorf("encode row %d: %w", i, err)
		}
	}
	if err := buf.Flush(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	return out.Close()
}

// jsonRecord matches Record but renders order_date as a bare date.
type jsonRecord struct {
	CustomerID    string  `json:"customer_id"`
	Product       string  `json:"product"`
	Category      *string `json:"category"`
	Quantity      int     `json:"quantity"`
	UnitPrice     float64 `json:"unit_price"`
	OrderDate     string  `json:"order_date"`
	Region        *string `json:"region"`
	PaymentMethod *string `json:"payment_method"`
}

func jsonRow(r model.Record) jsonRecord {
	return jsonRecord{
		CustomerID:    r.CustomerID,
		Product:       r.Product,
		Category:      r.Category,
		Quantity:      r.Quantity,
		UnitPrice:     r.UnitPrice,
		OrderDate:     r.OrderDate.Format(model.DateLayout),
		Region:        r.Region,
		PaymentMethod: r.PaymentMethod,
	}
}
