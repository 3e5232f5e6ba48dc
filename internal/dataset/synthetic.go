package dataset

import (
	"math"
	"math/rand/v2"
)

// SyntheticPrefix selects generated data, e.g. "synthetic:100000".
const SyntheticPrefix = "synthetic:"

// syntheticSeed keeps generated datasets identical across runs.
const syntheticSeed = 20160101

// Synthetic returns n log-normally distributed durations (median about
// eleven minutes, like city taxi trips), range-filtered like a real load.
func Synthetic(n int, lo, hi float64) ([]float64, LoadStats, error) {
	rng := rand.New(rand.NewPCG(syntheticSeed, uint64(n)))

	values := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		v := math.Round(math.Exp(6.5 + 0.8*rng.NormFloat64()))
		if v > lo && v < hi {
			values = append(values, v)
		}
	}
	return values, LoadStats{Raw: n, Parsed: n, Kept: len(values)}, nil
}
