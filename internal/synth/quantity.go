package synth

import "etlgen/internal/random"

// quantityMass[i] is the probability of ordering i+1 units. Most orders
// are small; downstream mean/median checks depend on this exact table.
var quantityMass = []float64{0.40, 0.25, 0.15, 0.08, 0.05, 0.03, 0.02, 0.01, 0.005, 0.005}

// MaxQuantity is the largest quantity the distribution can produce.
const MaxQuantity = 10

// QuantityMass returns a copy of the quantity probability table.
func QuantityMass() []float64 {
	return append([]float64(nil), quantityMass...)
}

// PickQuantity draws one order quantity in [1, MaxQuantity].
func PickQuantity(src *random.Source) int {
	return src.Weighted(quantityMass) + 1
}
