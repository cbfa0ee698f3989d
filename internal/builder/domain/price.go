package domain

import "math"

// ComputePrice adds the option adjustments to the base price and rounds the
// sum once to cents. Rounding per term would let error accumulate.
func ComputePrice(basePrice float64, adjustments []float64) float64 {
	total := basePrice
	for _, adj := range adjustments {
		total += adj
	}
	return Round2(total)
}

// Round2 rounds to two decimals, halves away from zero. The nudge absorbs
// binary representation error so 1.005 rounds to 1.01 like a decimal would.
func Round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	scaled := v * 100
	if scaled >= 0 {
		return math.Round(scaled+1e-9) / 100
	}
	return math.Round(scaled-1e-9) / 100
}
