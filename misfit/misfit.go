/*package misfit measures how well a predicted anomaly fits an observed one.
*/
package misfit

import (
	"errors"
	"fmt"
	"math"

	"github.com/phil-mansfield/gravmag/math/interpolate"
)

// ErrNoOverlap is returned when none of the observed samples lie within the
// range of the predicted curve.
var ErrNoOverlap = errors.New("misfit: observed and predicted curves don't overlap")

// Result is the misfit of a predicted curve against an observed one.
type Result struct {
	// RMS is the root mean square residual, rounded to two decimal places.
	RMS float64
	// Xs and Residuals give observed minus predicted at every observed
	// sample inside the predicted curve's range.
	Xs, Residuals []float64
	// Excluded is the number of observed samples outside that range.
	Excluded int
}

// Compare linearly interpolates the predicted curve onto the observed
// abscissae and returns the residuals and their RMS. Observed samples
// outside the predicted range are left out rather than extrapolated.
func Compare(obsX, obsY, predX, predY []float64) (*Result, error) {
	if len(obsX) != len(obsY) {
		return nil, fmt.Errorf(
			"Observed curve has %d x values but %d y values.",
			len(obsX), len(obsY),
		)
	} else if len(predX) != len(predY) {
		return nil, fmt.Errorf(
			"Predicted curve has %d x values but %d y values.",
			len(predX), len(predY),
		)
	} else if len(predX) < 2 {
		return nil, fmt.Errorf(
			"Predicted curve has %d points, but at least 2 are needed.",
			len(predX),
		)
	}
	for i := 1; i < len(predX); i++ {
		if !(predX[i] > predX[i-1]) {
			return nil, fmt.Errorf(
				"Predicted x values must be strictly increasing, but x[%d] = "+
					"%g and x[%d] = %g.", i-1, predX[i-1], i, predX[i],
			)
		}
	}

	lin := interpolate.NewLinear(predX, predY)
	res := &Result{
		Xs:        make([]float64, 0, len(obsX)),
		Residuals: make([]float64, 0, len(obsX)),
	}
	sum := 0.0
	for i, x := range obsX {
		if !lin.Contains(x) {
			res.Excluded++
			continue
		}
		r := obsY[i] - lin.Eval(x)
		res.Xs = append(res.Xs, x)
		res.Residuals = append(res.Residuals, r)
		sum += r * r
	}

	if len(res.Xs) == 0 { return nil, ErrNoOverlap }
	res.RMS = Round(math.Sqrt(sum/float64(len(res.Xs))), 2)
	return res, nil
}

// Round rounds x to the given number of decimal places, with halves
// rounded away from zero.
func Round(x float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(x*p) / p
}
