// Package report produces the end-of-run summary of a dataset. It only
// observes records and has no effect on generation.
package report

import (
	"strconv"
	"strings"
	"time"

	"etlgen/internal/logger"
	"etlgen/internal/model"
	"etlgen/internal/synth"
)

// ColumnTypes is the logical type of every column, in header order.
var ColumnTypes = []string{"string", "string", "string", "int64", "float64", "date", "string", "string"}

type Summary struct {
	Rows          int
	Columns       int
	Nulls         map[string]int
	DuplicateRows int // rows identical to an earlier row
	Outliers      int // quantities above the normal distribution support
	LowercaseIDs  int
	MinDate       time.Time
	MaxDate       time.Time
	MeanQuantity  float64
}

// Summarize computes a Summary in one pass over records.
func Summarize(records []model.Record) Summary {
	s := Summary{
		Rows:    len(records),
		Columns: len(model.Columns),
		Nulls:   map[string]int{"category": 0, "region": 0, "payment_method": 0},
	}
	seen := make(map[string]struct{}, len(records))
	qty := 0
	for i, r := range records {
		if r.Category == nil {
			s.Nulls["category"]++
		}
		if r.Region == nil {
			s.Nulls["region"]++
		}
		if r.PaymentMethod == nil {
			s.Nulls["payment_method"]++
		}
		if r.Quantity > synth.MaxQuantity {
			s.Outliers++
		}
		if strings.HasPrefix(r.CustomerID, "cust_") {
			s.LowercaseIDs++
		}
		qty += r.Quantity

		k := rowKey(r)
		if _, dup := seen[k]; dup {
			s.DuplicateRows++
		} else {
			seen[k] = struct{}{}
		}

		if i == 0 || r.OrderDate.Before(s.MinDate) {
			s.MinDate = r.OrderDate
		}
		if i == 0 || r.OrderDate.After(s.MaxDate) {
			s.MaxDate = r.OrderDate
		}
	}
	if len(records) > 0 {
		s.MeanQuantity = float64(qty) / float64(len(records))
	}
	return s
}

func rowKey(r model.Record) string {
	cells := make([]string, 0, 8)
	for _, p := range []*string{r.Category, r.Region, r.PaymentMethod} {
		if p == nil {
			cells = append(cells, "\x00")
		} else {
			cells = append(cells, *p)
		}
	}
	cells = append(cells,
		r.CustomerID,
		r.Product,
		strconv.Itoa(r.Quantity),
		strconv.FormatFloat(r.UnitPrice, 'f', -1, 64),
		r.OrderDate.Format(model.DateLayout),
	)
	return strings.Join(cells, "\x1f")
}

// Log writes the summary of one dataset at info level.
func Log(l logger.Logger, dataset string, s Summary) {
	dtypes := make(map[string]string, len(model.Columns))
	for i, c := range model.Columns {
		dtypes[c] = ColumnTypes[i]
	}
	l.Info("dataset summary",
		logger.String("dataset", dataset),
		logger.Int("rows", s.Rows),
		logger.Int("columns", s.Columns),
		logger.Any("dtypes", dtypes),
		logger.Any("nulls", s.Nulls),
		logger.Int("duplicate_rows", s.DuplicateRows),
		logger.Int("outliers", s.Outliers),
		logger.Int("lowercase_customer_ids", s.LowercaseIDs),
		logger.Float64("mean_quantity", s.MeanQuantity),
		logger.String("min_order_date", s.MinDate.Format(model.DateLayout)),
		logger.String("max_order_date", s.MaxDate.Format(model.DateLayout)),
	)
}

// Head logs the first n rows at debug level.
func Head(l logger.Logger, dataset string, records []model.Record, n int) {
	if n > len(records) {
		n = len(records)
	}
	for i := 0; i < n; i++ {
		l.Debug("row", logger.String("dataset", dataset), logger.Int("index", i), logger.Any("record", records[i]))
	}
}

// Progress returns a callback that logs assembly progress.
func Progress(l logger.Logger, total int) synth.ProgressFunc {
	return func(done int) {
		l.Info("generating rows", logger.Int("done", done), logger.Int("total", total))
	}
}
