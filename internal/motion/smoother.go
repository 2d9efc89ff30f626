package motion

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// GaussianSmooth convolves series with a normalised Gaussian of standard
// deviation window/2, reflecting at both ends without repeating the edge
// sample. The result has the same length as series and never aliases it.
//
// A window <= 0, or a series shorter than the window, passes through as a
// copy.
func GaussianSmooth(series []float64, window int) []float64 {
	out := make([]float64, len(series))
	if window <= 0 || len(series) < window {
		copy(out, series)
		return out
	}

	kernel := gaussianKernel(float64(window) / 2)
	radius := len(kernel) / 2
	n := len(series)
	for i := range series {
		var acc float64
		for k, w := range kernel {
			acc += w * series[reflect(i+k-radius, n)]
		}
		out[i] = acc
	}
	return out
}

// SmoothAll smooths each series independently with the same window.
func SmoothAll(window int, series ...[]float64) [][]float64 {
	out := make([][]float64, len(series))
	for i, s := range series {
		out[i] = GaussianSmooth(s, window)
	}
	return out
}

// gaussianKernel returns 2r+1 weights summing to one, r = max(1, ceil(3σ)).
func gaussianKernel(sigma float64) []float64 {
	radius := int(math.Ceil(3 * sigma))
	if radius < 1 {
		radius = 1
	}
	kernel := make([]float64, 2*radius+1)
	twoSigmaSq := 2 * sigma * sigma
	for k := -radius; k <= radius; k++ {
		kernel[k+radius] = math.Exp(-float64(k*k) / twoSigmaSq)
	}
	floats.Scale(1/floats.Sum(kernel), kernel)
	return kernel
}

// reflect maps an out-of-range index back into [0, n) by mirroring about
// the first and last sample: -1 -> 1, n -> n-2.
func reflect(i, n int) int {
	if n == 1 {
		return 0
	}
	period := 2*n - 2
	i %= period
	if i < 0 {
		i += period
	}
	if i >= n {
		i = period - i
	}
	return i
}
