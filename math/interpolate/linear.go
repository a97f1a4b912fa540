/*package interpolate contains one dimensional interpolators over tabulated
curves.
*/
package interpolate

import (
	"fmt"
)

type Interpolator interface {
	Eval(x float64) float64
	EvalAll(xs []float64, out ...[]float64) []float64
}

var _ Interpolator = &Linear{}

// Linear is a linear interpolator.
type Linear struct {
	xs searcher
	vals []float64
}

// NewLinear creates a linear interpolator for a sequence of strictly increasing
// or strictly decreasing point, xs, which take on the values given by vals.
//
// Lookups will occur in O(log |xs|), or O(1) when consecutive lookups fall
// in the same or neighbouring intervals.
func NewLinear(xs, vals []float64) *Linear {
	if len(xs) != len(vals) {
		panic(fmt.Sprintf(
			"len(xs) = %d, but len(vals) = %d", len(xs), len(vals),
		))
	} else if len(xs) < 2 {
		panic(fmt.Sprintf("NewLinear() given %d points.", len(xs)))
	}
	lin := &Linear{}
	lin.xs.init(xs)
	lin.vals = vals
	return lin
}

// Contains returns true if x lies within the tabulated range, endpoints
// included.
func (lin *Linear) Contains(x float64) bool {
	lo, hi := lin.xs.val(0), lin.xs.val(lin.xs.n-1)
	if lo > hi { lo, hi = hi, lo }
	return x >= lo && x <= hi
}

// Eval returns the interpolated value at x.
//
// Eval panics if called on a values outside the supplied range on inputs.
func (lin *Linear) Eval(x float64) float64 {
	if !lin.Contains(x) {
		panic(fmt.Sprintf(
			"Point %g given to Linear.Eval() out of bounds [%g, %g].",
			x, lin.xs.val(0), lin.xs.val(lin.xs.n-1),
		))
	}

	i1 := lin.xs.search(x)
	i2 := i1 + 1
	x1, x2 := lin.xs.val(i1), lin.xs.val(i2)
	v1, v2 := lin.vals[i1], lin.vals[i2]

	if x == x1 { return v1 }
	if x == x2 { return v2 }
	return ((v2 - v1) / (x2 - x1)) * (x - x1) + v1
}

// EvalAll evaluates the interpolator at all the given x values. If an output
// array is given, the output is written to that array (the array is still
// returned as a convenience).
//
// If more than one output array is provided, only the first is used.
func (lin *Linear) EvalAll(xs []float64, out ...[]float64) []float64 {
	if len(out) == 0 { out = [][]float64{ make([]float64, len(xs)) } }
	for i, x := range xs { out[0][i] = lin.Eval(x) }
	return out[0]
}
