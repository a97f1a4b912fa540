package gravmag

import (
	"fmt"

	"github.com/phil-mansfield/gravmag/curve"
	"github.com/phil-mansfield/gravmag/signal"
)

// The methods below each derive a new curve from a stored one, insert it
// and return its id. The source curve is left alone.

// Resample interpolates a curve onto a uniform grid with spacing dx.
func (m *Model) Resample(id int, dx float64) (int, error) {
	c, err := m.Curves.Get(id)
	if err != nil { return -1, err }
	xs, ys, err := signal.Resample(c.Xs, c.Ys, dx)
	if err != nil { return -1, fmt.Errorf("resampling curve %d: %w", id, err) }
	return m.derive(c, curve.Filtered, fmt.Sprintf("resampled %g", dx), xs, ys)
}

// MedianFilter applies a running median of the given odd width.
func (m *Model) MedianFilter(id int, width int) (int, error) {
	c, err := m.Curves.Get(id)
	if err != nil { return -1, err }
	ys, err := signal.Median(c.Ys, width)
	if err != nil { return -1, fmt.Errorf("filtering curve %d: %w", id, err) }
	return m.derive(c, curve.Filtered, fmt.Sprintf("median %d", width), c.Xs, ys)
}

// GaussianFilter smooths a curve with a Gaussian of width sigma samples.
func (m *Model) GaussianFilter(id int, sigma float64) (int, error) {
	c, err := m.Curves.Get(id)
	if err != nil { return -1, err }
	ys, err := signal.Gaussian(c.Ys, sigma)
	if err != nil { return -1, fmt.Errorf("filtering curve %d: %w", id, err) }
	return m.derive(c, curve.Filtered, fmt.Sprintf("gaussian %g", sigma), c.Xs, ys)
}

// Derivative takes the absolute horizontal gradient of a curve uniformly
// sampled at spacing dx. The result belongs on a derivative axis.
func (m *Model) Derivative(id int, dx float64) (int, error) {
	c, err := m.Curves.Get(id)
	if err != nil { return -1, err }
	xs, ys, err := signal.Derivative(c.Xs, c.Ys, dx)
	if err != nil { return -1, fmt.Errorf("differentiating curve %d: %w", id, err) }
	return m.derive(c, curve.Derivative, "derivative", xs, ys)
}

func (m *Model) derive(
	src curve.Curve, kind curve.Kind, op string, xs, ys []float64,
) (int, error) {
	return m.Curves.Insert(curve.Curve{
		Label: fmt.Sprintf("%s (%s)", src.Label, op),
		Color: src.Color,
		Kind:  kind,
		Xs:    xs, Ys: ys,
	})
}
