/*package signal contains the one dimensional operations applied to observed
data before it is compared against predicted anomalies: resampling onto a
uniform grid, median and Gaussian smoothing, and a horizontal derivative.

None of the functions here modify their inputs.
*/
package signal

import (
	"fmt"
	"math"

	"github.com/phil-mansfield/gravmag/math/interpolate"
)

// Resample linearly interpolates the curve (xs, ys) onto the uniform grid
// round(min(xs)) + dx, round(min(xs)) + 2*dx, ..., round(max(xs)) - dx.
// Grid points which fall outside [min(xs), max(xs)] are dropped so that
// nothing is extrapolated.
//
// xs must be strictly increasing.
func Resample(xs, ys []float64, dx float64) (outXs, outYs []float64, err error) {
	if len(xs) != len(ys) {
		return nil, nil, fmt.Errorf(
			"len(xs) = %d, but len(ys) = %d.", len(xs), len(ys),
		)
	} else if len(xs) < 2 {
		return nil, nil, fmt.Errorf(
			"Cannot resample a curve with %d points.", len(xs),
		)
	} else if !(dx > 0) {
		return nil, nil, fmt.Errorf("Resampling step must be positive, not %g.", dx)
	} else if err := checkIncreasing(xs); err != nil {
		return nil, nil, err
	}

	lo, hi := xs[0], xs[len(xs)-1]
	start, end := math.Round(lo)+dx, math.Round(hi)-dx
	// Tolerate rounding in (end - start) / dx so that end itself is kept.
	n := int(math.Floor((end-start)/dx+1e-9)) + 1

	lin := interpolate.NewLinear(xs, ys)
	outXs, outYs = make([]float64, 0, n), make([]float64, 0, n)
	for k := 0; k < n; k++ {
		x := start + float64(k)*dx
		if x < lo || x > hi { continue }
		outXs = append(outXs, x)
		outYs = append(outYs, lin.Eval(x))
	}

	if len(outXs) == 0 {
		return nil, nil, fmt.Errorf(
			"Resampling [%g, %g] with step %g leaves no points.", lo, hi, dx,
		)
	}
	return outXs, outYs, nil
}

// Derivative computes the absolute horizontal gradient of a uniformly
// sampled curve with spacing dx using forward differences:
//
//     y'[i] = |y[i+1] - y[i]| / dx    for i = 1 ... N-3.
//
// The output has one fewer sample than the input and lies on xs[0 : N-1]. Its
// first and last samples repeat the neighbouring interior values, so that
// the curve spans the same range as the input.
func Derivative(xs, ys []float64, dx float64) (outXs, outYs []float64, err error) {
	if len(xs) != len(ys) {
		return nil, nil, fmt.Errorf(
			"len(xs) = %d, but len(ys) = %d.", len(xs), len(ys),
		)
	} else if len(xs) < 4 {
		return nil, nil, fmt.Errorf(
			"Derivative needs at least 4 points, but got %d.", len(xs),
		)
	} else if !(dx > 0) {
		return nil, nil, fmt.Errorf("Derivative step must be positive, not %g.", dx)
	}

	n := len(xs) - 1
	outXs, outYs = make([]float64, n), make([]float64, n)
	for i := 1; i < n-1; i++ {
		outXs[i] = xs[i]
		outYs[i] = math.Abs(ys[i+1]-ys[i]) / dx
	}
	outXs[0], outYs[0] = xs[1]-dx, outYs[1]
	outXs[n-1], outYs[n-1] = xs[n-2]+dx, outYs[n-2]

	return outXs, outYs, nil
}

func checkIncreasing(xs []float64) error {
	for i := 1; i < len(xs); i++ {
		if !(xs[i] > xs[i-1]) {
			return fmt.Errorf(
				"x values must be strictly increasing, but x[%d] = %g and "+
					"x[%d] = %g.", i-1, xs[i-1], i, xs[i],
			)
		}
	}
	return nil
}
