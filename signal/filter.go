package signal

import (
	"fmt"
	"math"
	"sort"
)

// GaussianTruncate is the number of standard deviations at which the
// Gaussian kernel is cut off.
const GaussianTruncate = 4.0

// Median applies a running median of the given odd width to ys. Samples
// beyond either end are filled with the end values.
func Median(ys []float64, width int) ([]float64, error) {
	if width < 1 || width%2 == 0 {
		return nil, fmt.Errorf(
			"Median window must be a positive odd number, not %d.", width,
		)
	}

	out := make([]float64, len(ys))
	half := width / 2
	window := make([]float64, width)
	for i := range ys {
		for k := -half; k <= half; k++ {
			j := i + k
			if j < 0 {
				j = 0
			} else if j >= len(ys) {
				j = len(ys) - 1
			}
			window[k+half] = ys[j]
		}
		sort.Float64s(window)
		out[i] = window[half]
	}

	return out, nil
}

// Gaussian convolves ys with a normalised Gaussian kernel whose standard
// deviation is sigma samples. The kernel is truncated at GaussianTruncate
// standard deviations, and the curve is reflected about its ends
// (d c b a | a b c d | d c b a) to fill the kernel near the boundaries.
//
// A sigma of zero returns a copy of ys.
func Gaussian(ys []float64, sigma float64) ([]float64, error) {
	if sigma < 0 || math.IsNaN(sigma) || math.IsInf(sigma, 0) {
		return nil, fmt.Errorf(
			"Gaussian sigma must be finite and non-negative, not %g.", sigma,
		)
	}

	out := make([]float64, len(ys))
	if sigma == 0 || len(ys) == 0 {
		copy(out, ys)
		return out, nil
	}

	ws := gaussianWeights(sigma)
	r := len(ws) / 2
	for i := range ys {
		sum := 0.0
		for k, w := range ws {
			sum += w * ys[reflect(i+k-r, len(ys))]
		}
		out[i] = sum
	}

	return out, nil
}

func gaussianWeights(sigma float64) []float64 {
	r := int(GaussianTruncate*sigma + 0.5)
	ws := make([]float64, 2*r+1)
	sum := 0.0
	for k := -r; k <= r; k++ {
		x := float64(k) / sigma
		ws[k+r] = math.Exp(-0.5 * x * x)
		sum += ws[k+r]
	}
	for i := range ws { ws[i] /= sum }
	return ws
}

// reflect maps an out-of-range index back into [0, n) by mirroring about
// the half-sample points on either end.
func reflect(i, n int) int {
	period := 2 * n
	i %= period
	if i < 0 { i += period }
	if i >= n { i = period - 1 - i }
	return i
}
