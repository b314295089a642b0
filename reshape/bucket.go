package reshape

import "math"

// Bucket quantizes a mass-to-charge value to its integer grouping bucket.
// Ties round half to even: 50.5 → 50, 51.5 → 52. The result is an exact
// integer, so Bucket(Bucket(x)) == Bucket(x).
func Bucket(mz float32) float32 {
	r := math.RoundToEven(float64(mz))
	if r == 0 {
		// fold -0 into +0
		r = 0
	}
	return float32(r)
}
