package core

import "math"

// Round rounds x half away from zero, matching JavaScript's Math.round for
// the positive values the scoring math produces. NaN and Inf pass through.
func Round(x float64) float64 {
	return math.Round(x)
}

// RoundTo rounds x to the given number of decimal places. NaN and Inf pass
// through so that degenerate reflectance inputs surface as-is instead of
// panicking.
func RoundTo(x float64, places int) float64 {
	p := math.Pow10(places)
	return math.Round(x*p) / p
}

// Clamp bounds x to [lo, hi].
func Clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}
