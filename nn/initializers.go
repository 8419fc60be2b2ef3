package nn

import (
	"math"
	"math/rand"
)

// truncatedNormal fills data with draws from a normal distribution
// (mean, stddev), resampling any draw that falls outside two standard
// deviations. Matches the initializer used for embedding lookup tables.
func truncatedNormal[T Float](data []T, mean, stddev float64) {
	for i := range data {
		v := rand.NormFloat64()
		for v < -2.0 || v > 2.0 {
			v = rand.NormFloat64()
		}
		data[i] = T(mean + v*stddev)
	}
}

// heInit fills data with He (variance-scaling) initialized weights.
func heInit[T Float](data []T, fanIn int) {
	if fanIn <= 0 {
		fanIn = 1
	}
	stddev := math.Sqrt(2.0 / float64(fanIn))
	for i := range data {
		data[i] = T(rand.NormFloat64() * stddev)
	}
}

// fill sets every element to v.
func fill[T Float](data []T, v T) {
	for i := range data {
		data[i] = v
	}
}
