package interpolate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLinear(t *testing.T) {
	xs := []float64{0, 1, 3, 4, 10}
	vals := []float64{0, 2, 6, 8, 20}
	lin := NewLinear(xs, vals)

	table := []struct {
		x, val float64
	}{
		{0, 0}, {0.5, 1}, {1, 2}, {2, 4}, {3.5, 7}, {7, 14}, {10, 20}, {0.25, 0.5},
	}

	for i, test := range table {
		if val := lin.Eval(test.x); val != test.val {
			t.Errorf("%d) Expected f(%g) = %g. Got %g.", i, test.x, test.val, val)
		}
	}
}

func TestLinearDecreasing(t *testing.T) {
	lin := NewLinear([]float64{10, 5, 0}, []float64{1, 2, 3})
	assert.Equal(t, 1.5, lin.Eval(7.5))
	assert.Equal(t, 3.0, lin.Eval(0))
	assert.True(t, lin.Contains(10))
	assert.False(t, lin.Contains(10.5))
}

func TestLinearEvalAll(t *testing.T) {
	lin := NewLinear([]float64{2, 2.5, 3, 3.5}, []float64{0, 1, 4, 9})
	out := make([]float64, 4)
	res := lin.EvalAll([]float64{2, 2.25, 3.25, 3.5}, out)
	assert.Equal(t, []float64{0, 0.5, 6.5, 9}, res)
	assert.Equal(t, out, res)
}

func TestLinearKnotsExact(t *testing.T) {
	xs := []float64{0.1, 0.2, 0.7, 1.3}
	vals := []float64{3.3, -1.1, 2.7, 0.01}
	lin := NewLinear(xs, vals)
	assert.Equal(t, vals, lin.EvalAll(xs))
}

func TestLinearPanics(t *testing.T) {
	lin := NewLinear([]float64{0, 1}, []float64{0, 1})
	assert.Panics(t, func() { lin.Eval(2) })
	assert.Panics(t, func() { NewLinear([]float64{0}, []float64{0}) })
	assert.Panics(t, func() { NewLinear([]float64{0, 1}, []float64{0}) })
}
