// Package incremental derives a "most recent activity" slice of a dataset
// for exercising delta loads.
package incremental

import (
	"errors"
	"fmt"
	"slices"

	"etlgen/internal/model"
)

// ErrInvalidFraction is returned when the fraction is outside (0, 1].
var ErrInvalidFraction = errors.New("fraction must be in (0, 1]")

// Size is floor(total * fraction).
func Size(total int, fraction float64) int {
	return int(float64(total) * fraction)
}

// Extract returns the Size(len(records), fraction) most recent rows by
// order_date, newest first. Rows with equal dates keep their original
// relative order. records is left untouched.
func Extract(records []model.Record, fraction float64) ([]model.Record, error) {
	if !(fraction > 0 && fraction <= 1) {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidFraction, fraction)
	}

	order := make([]int, len(records))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return records[b].OrderDate.Compare(records[a].OrderDate)
	})

	n := Size(len(records), fraction)
	out := make([]model.Record, n)
	for i := 0; i < n; i++ {
		out[i] = records[order[i]].Clone()
	}
	return out, nil
}
