// Package random is the single seeded randomness stream every sampling
// step draws from. Two sources built from the same seed produce the same
// sequence of draws, so the whole dataset is reproducible as long as the
// callers consume the stream in a fixed order.
package random

import (
	"math/rand/v2"
	"time"
)

// Source is not safe for concurrent use; it is owned by one goroutine.
type Source struct {
	r *rand.Rand
}

// New seeds a PCG stream from seed.
func New(seed int64) *Source {
	s := uint64(seed)
	return &Source{r: rand.New(rand.NewPCG(s, s^0x9e3779b97f4a7c15))}
}

// Intn returns a uniform int in [0, n). n must be > 0.
func (s *Source) Intn(n int) int {
	return s.r.IntN(n)
}

// IntRange returns a uniform int in [lo, hi], both ends inclusive.
func (s *Source) IntRange(lo, hi int) int {
	return lo + s.r.IntN(hi-lo+1)
}

// Uniform returns a float in [lo, hi].
func (s *Source) Uniform(lo, hi float64) float64 {
	return lo + (hi-lo)*s.r.Float64()
}

// Weighted draws an index with probability proportional to weights[i].
func (s *Source) Weighted(weights []float64) int {
	total := 0.0
	for _, w := range weights {
		total += w
	}
	u := s.r.Float64() * total
	acc := 0.0
	for i, w := range weights {
		acc += w
		if u < acc {
			return i
		}
	}
	// float rounding can leave u == total
	return len(weights) - 1
}

// DateBetween returns a calendar day (UTC midnight) drawn uniformly from
// [start, end], both days inclusive.
func (s *Source) DateBetween(start, end time.Time) time.Time {
	from := Day(start)
	days := int(Day(end).Sub(from).Hours() / 24)
	if days <= 0 {
		return from
	}
	return from.AddDate(0, 0, s.r.IntN(days+1))
}

// Sample picks k distinct indices from [0, n) without replacement. The
// result keeps draw order, so callers may split it positionally.
func (s *Source) Sample(n, k int) []int {
	if k > n {
		k = n
	}
	if k <= 0 {
		return nil
	}
	pool := make([]int, n)
	for i := range pool {
		pool[i] = i
	}
	for i := 0; i < k; i++ {
		j := i + s.r.IntN(n-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	out := make([]int, k)
	copy(out, pool[:k])
	return out
}

// Day truncates t to midnight UTC of its calendar day.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
