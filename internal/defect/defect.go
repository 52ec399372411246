// Package defect corrupts an assembled dataset on purpose so that a
// downstream data-quality pipeline has real problems to find.
//
// Four passes run in a fixed order: nulls, duplicates, formatting,
// outliers. Duplication grows the sequence, so every pass is handed the
// length of the index space it may draw from instead of reading it off the
// slice it happens to be mutating. All counts are floor(rate * N) where N
// is the number of rows before injection.
package defect

import (
	"strings"

	"etlgen/internal/model"
	"etlgen/internal/random"
)

const (
	NullRate      = 0.02
	DuplicateRate = 0.005
	FormatRate    = 0.01
	OutlierRate   = 0.001

	// Outlier quantities are drawn from [OutlierMin, OutlierMax).
	OutlierMin = 100
	OutlierMax = 1000
)

// Report lists the row indices each pass touched, in draw order.
type Report struct {
	BaseRows     int   `json:"baseRows"`
	NullPayment  []int `json:"nullPayment"`
	NullRegion   []int `json:"nullRegion"`
	NullCategory []int `json:"nullCategory"`
	// Duplicated holds source indices; copy i lands at BaseRows+i.
	Duplicated []int `json:"duplicated"`
	Lowercased []int `json:"lowercased"`
	Outliers   []int `json:"outliers"`
}

// Counts summarises a report for manifests and metrics.
func (r Report) Counts() map[string]int {
	return map[string]int{
		"null_payment_method": len(r.NullPayment),
		"null_region":         len(r.NullRegion),
		"null_category":       len(r.NullCategory),
		"duplicate":           len(r.Duplicated),
		"lowercase_customer":  len(r.Lowercased),
		"outlier_quantity":    len(r.Outliers),
	}
}

// CountFor returns floor(rate * n).
func CountFor(rate float64, n int) int {
	return int(rate * float64(n))
}

// Inject takes ownership of records and returns the corrupted sequence.
// The returned slice may share its backing array with the input.
func Inject(src *random.Source, records []model.Record) ([]model.Record, Report) {
	base := len(records)
	rep := Report{BaseRows: base}

	rep.NullPayment, rep.NullRegion, rep.NullCategory = injectNulls(src, records, base, CountFor(NullRate, base))

	records, rep.Duplicated = duplicate(src, records, base, CountFor(DuplicateRate, base))

	extended := len(records)
	rep.Lowercased = lowercaseCustomers(src, records, extended, CountFor(FormatRate, base))
	rep.Outliers = injectOutliers(src, records, extended, CountFor(OutlierRate, base))

	return records, rep
}

// injectNulls draws k distinct rows from [0, space) and splits the draw
// positionally into thirds: payment_method, region, then category takes
// the remainder.
func injectNulls(src *random.Source, records []model.Record, space, k int) (payment, region, category []int) {
	picked := src.Sample(space, k)
	third := len(picked) / 3
	payment = picked[:third]
	region = picked[third : 2*third]
	category = picked[2*third:]

	for _, i := range payment {
		records[i].PaymentMethod = nil
	}
	for _, i := range region {
		records[i].Region = nil
	}
	for _, i := range category {
		records[i].Category = nil
	}
	return payment, region, category
}

// duplicate appends copies of k distinct rows drawn from [0, space).
func duplicate(src *random.Source, records []model.Record, space, k int) ([]model.Record, []int) {
	picked := src.Sample(space, k)
	for _, i := range picked {
		records = append(records, records[i].Clone())
	}
	return records, picked
}

func lowercaseCustomers(src *random.Source, records []model.Record, space, k int) []int {
	picked := src.Sample(space, k)
	for _, i := range picked {
		records[i].CustomerID = strings.ToLower(records[i].CustomerID)
	}
	return picked
}

func injectOutliers(src *random.Source, records []model.Record, space, k int) []int {
	picked := src.Sample(space, k)
	for _, i := range picked {
		records[i].Quantity = src.IntRange(OutlierMin, OutlierMax-1)
	}
	return picked
}
