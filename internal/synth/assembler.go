package synth

import (
	"time"

	"etlgen/internal/model"
	"etlgen/internal/random"
)

// ProgressEvery is how many rows pass between progress callbacks.
const ProgressEvery = 1000

// ProgressFunc is told how many rows have been produced so far.
type ProgressFunc func(done int)

// Assemble builds n rows in order. progress may be nil; when set it is
// called before row 0, 1000, 2000, ... is produced.
func Assemble(src *random.Source, n int, now time.Time, progress ProgressFunc) []model.Record {
	out := make([]model.Record, 0, n)
	for i := 0; i < n; i++ {
		if progress != nil && i%ProgressEvery == 0 {
			progress(i)
		}
		out = append(out, NewRow(src, now))
	}
	return out
}
