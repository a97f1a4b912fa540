package kernel

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phil-mansfield/gravmag/failure"
	"github.com/phil-mansfield/gravmag/geom"
)

// disc returns a clockwise n-gon approximating a circle of radius r centred
// on (x, z). The n-gon has the same area as the circle, so its far field
// matches the circle's.
func disc(x, z, r float64, n int, attrs map[string]float64) geom.Polygon {
	re := r * math.Sqrt(2*math.Pi/(float64(n)*math.Sin(2*math.Pi/float64(n))))
	pts := make([]geom.Point, n)
	for i := range pts {
		// Decreasing angle winds clockwise in the (x, z) plane.
		phi := -2 * math.Pi * float64(i) / float64(n)
		pts[i] = geom.Point{X: x + re*math.Cos(phi), Z: z + re*math.Sin(phi)}
	}
	return geom.NewPolygon(pts, attrs)
}

func linspace(lo, hi float64, n int) []float64 {
	xs := make([]float64, n)
	for i := range xs {
		xs[i] = lo + (hi-lo)*float64(i)/float64(n-1)
	}
	return xs
}

func magAttrs(kappa, inc float64) map[string]float64 {
	return map[string]float64{
		geom.AttrSusceptibility: kappa,
		geom.AttrInclination:    inc,
		geom.AttrDeclination:    0,
		geom.AttrAzimuth:        0,
		geom.AttrField:          50000,
	}
}

const (
	discX, discZ, discR = 50.0, 2.0, 1.0 // km
	rho                 = 500.0
)

func TestDiscIsClockwise(t *testing.T) {
	p := disc(discX, discZ, discR, 360, nil)
	assert.True(t, p.Clockwise())
}

func TestGravityCylinder(t *testing.T) {
	p := disc(discX, discZ, discR, 360, map[string]float64{
		geom.AttrDensity: rho,
	})
	xp := linspace(discX-8*discR, discX+8*discR, 101)

	s := &Solver{Workers: 3, Scale: 1000}
	gz, rep, err := s.Solve(context.Background(), Gravity, xp, 0,
		[]geom.Polygon{p})
	require.NoError(t, err)
	assert.Empty(t, rep.Skipped)
	require.Len(t, gz, len(xp))

	r, z := discR*1000, discZ*1000
	for i, x := range xp {
		dx := (x - discX) * 1000
		exp := 2 * math.Pi * G * r * r * rho * z / (dx*dx + z*z) * SIToMGal
		// Clockwise bodies come out negated.
		if math.Abs(-gz[i]-exp) > 1e-4 {
			t.Errorf("%d) Expected %.6f mGal at x = %g. Got %.6f.",
				i, exp, x, -gz[i])
		}
	}
	assert.InDelta(t, 10.4819, -gz[50], 1e-4)
}

func TestMagneticCylinder(t *testing.T) {
	kappa := 0.001
	p := disc(discX, discZ, discR, 360, magAttrs(kappa, 90))
	xp := linspace(discX-8*discR, discX+8*discR, 101)

	s := &Solver{Workers: 2, Scale: 1000}
	nt, _, err := s.Solve(context.Background(), Magnetic, xp, 0,
		[]geom.Polygon{p})
	require.NoError(t, err)

	r, z, f := discR*1000, discZ*1000, 50000.0
	for i, x := range xp {
		dx := (x - discX) * 1000
		exp := kappa * f * r * r * (dx*dx - z*z) / (2 * (dx*dx + z*z) * (dx*dx + z*z))
		if math.Abs(nt[i]-exp) > 1e-3 {
			t.Errorf("%d) Expected %.6f nT at x = %g. Got %.6f.", i, exp, x, nt[i])
		}
	}
	assert.InDelta(t, -6.25, nt[50], 1e-3)
}

func TestVGGCylinder(t *testing.T) {
	p := disc(discX, discZ, discR, 360, map[string]float64{
		geom.AttrDensity: rho,
	})
	xp := linspace(discX-8*discR, discX+8*discR, 101)

	s := &Solver{Scale: 1000}
	tzz, _, err := s.Solve(context.Background(), VGG, xp, 0, []geom.Polygon{p})
	require.NoError(t, err)

	r, z := discR*1000, discZ*1000
	for i, x := range xp {
		dx := (x - discX) * 1000
		d2 := dx*dx + z*z
		exp := 2 * math.Pi * G * r * r * rho * (dx*dx - z*z) / (d2 * d2) * SIToEotvos
		if math.Abs(tzz[i]-exp) > 1e-3 {
			t.Errorf("%d) Expected %.6f E at x = %g. Got %.6f.", i, exp, x, tzz[i])
		}
	}
}

func TestReversalNegates(t *testing.T) {
	attrs := magAttrs(0.01, 60)
	attrs[geom.AttrDensity] = 300
	polys := []geom.Polygon{
		disc(20, 3, 1.5, 90, attrs),
		geom.NewPolygon([]geom.Point{
			{X: 10, Z: 1}, {X: 14, Z: 1}, {X: 16, Z: 4}, {X: 9, Z: 6},
		}, attrs),
	}
	reversed := make([]geom.Polygon, len(polys))
	for i := range polys { reversed[i] = polys[i].Reversed() }
	xp := linspace(0, 30, 61)

	s := &Solver{Workers: 4, Scale: 1000}
	for a := Gravity; a < EndAnomaly; a++ {
		out, _, err := s.Solve(context.Background(), a, xp, 0, polys)
		require.NoError(t, err)
		rev, _, err := s.Solve(context.Background(), a, xp, 0, reversed)
		require.NoError(t, err)

		max := 0.0
		for _, y := range out { max = math.Max(max, math.Abs(y)) }
		require.Greater(t, max, 0.0, a.String())
		for i := range out {
			if math.Abs(out[i]+rev[i]) > 1e-9*max {
				t.Errorf("%d) Expected %s of reversed polygons to be %g. Got %g.",
					i, a, -out[i], rev[i])
			}
		}
	}
}

func TestNonContributingPolygons(t *testing.T) {
	polys := []geom.Polygon{
		disc(10, 2, 1, 60, map[string]float64{
			geom.AttrDensity: 0, geom.AttrSusceptibility: 0.5e-4,
			geom.AttrInclination: 60, geom.AttrDeclination: 0,
			geom.AttrAzimuth: 0, geom.AttrField: 50000,
		}),
		// No susceptibility at all.
		disc(5, 2, 1, 60, map[string]float64{geom.AttrDensity: 0}),
	}
	xp := linspace(0, 20, 41)

	s := &Solver{Workers: 2, Scale: 1000}
	for a := Gravity; a < EndAnomaly; a++ {
		out, rep, err := s.Solve(context.Background(), a, xp, 0, polys)
		require.NoError(t, err)
		assert.Empty(t, rep.Skipped)
		for i, y := range out {
			if y != 0 {
				t.Errorf("%d) Expected %s to be exactly 0. Got %g.", i, a, y)
			}
		}
	}
}

func TestOutputLength(t *testing.T) {
	polys := []geom.Polygon{
		disc(10, 2, 1, 12, map[string]float64{geom.AttrDensity: 100}),
		disc(15, 3, 1, 7, magAttrs(0.01, 45)),
	}
	s := &Solver{Workers: 3, Scale: 1000}
	for _, n := range []int{0, 1, 2, 7, 50} {
		xp := linspace(0, 20, n)
		if n == 1 { xp = []float64{3} }
		for a := Gravity; a < EndAnomaly; a++ {
			out, _, err := s.Solve(context.Background(), a, xp, 0, polys)
			require.NoError(t, err)
			assert.Len(t, out, n, "%s with %d points", a, n)
		}
	}
}

func TestSkipped(t *testing.T) {
	dense := map[string]float64{geom.AttrDensity: 200}
	polys := []geom.Polygon{
		geom.NewPolygon([]geom.Point{{X: 1, Z: 1}, {X: 2, Z: 2}, {X: 1, Z: 1}}, dense),
		disc(10, 2, 1, 30, dense),
		disc(10, 2, 1, 30, nil),
	}
	xp := linspace(0, 20, 11)
	s := &Solver{Scale: 1000}

	out, rep, err := s.Solve(context.Background(), Gravity, xp, 0, polys)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2}, rep.Skipped)

	only, _, err := s.Solve(context.Background(), Gravity, xp, 0, polys[1:2])
	require.NoError(t, err)
	assert.Equal(t, only, out)

	// Missing magnetic attributes are skipped silently.
	_, rep, err = s.Solve(context.Background(), Magnetic, xp, 0, polys)
	require.NoError(t, err)
	assert.Equal(t, []int{0}, rep.Skipped)
}

func TestVGGAboveObservation(t *testing.T) {
	polys := []geom.Polygon{
		disc(10, 2, 1, 30, map[string]float64{geom.AttrDensity: 200}),
		geom.NewPolygon([]geom.Point{
			{X: 0, Z: 0}, {X: 4, Z: 0}, {X: 4, Z: 1}, {X: 0, Z: 1},
		}, map[string]float64{geom.AttrDensity: 200}),
	}
	xp := linspace(0, 20, 11)
	s := &Solver{Scale: 1000}

	_, _, err := s.Solve(context.Background(), VGG, xp, 0, polys)
	assert.ErrorIs(t, err, failure.ErrGeometry)

	// Raising the observation line fixes it.
	_, _, err = s.Solve(context.Background(), VGG, xp, -0.1, polys)
	assert.NoError(t, err)

	// Gravity doesn't care.
	_, _, err = s.Solve(context.Background(), Gravity, xp, 0, polys)
	assert.NoError(t, err)
}

func TestWorkersAreBitIdentical(t *testing.T) {
	attrs := magAttrs(0.02, 70)
	attrs[geom.AttrDensity] = -250
	polys := []geom.Polygon{
		disc(12, 3, 2, 120, attrs),
		disc(17, 5, 1, 45, attrs),
		disc(25, 1.5, 0.5, 200, attrs),
	}
	xp := linspace(0, 40, 97)

	for a := Gravity; a < EndAnomaly; a++ {
		ref, _, err := (&Solver{Workers: 1, Scale: 1000}).Solve(
			context.Background(), a, xp, -0.2, polys,
		)
		require.NoError(t, err)
		for _, w := range []int{2, 5, 16, 500} {
			out, _, err := (&Solver{Workers: w, Scale: 1000}).Solve(
				context.Background(), a, xp, -0.2, polys,
			)
			require.NoError(t, err)
			assert.Equal(t, ref, out, "%s with %d workers", a, w)
		}
	}
}

func TestAngleReduction(t *testing.T) {
	xp := linspace(0, 20, 21)
	s := &Solver{Scale: 1000}
	var ref []float64
	for i, inc := range []float64{90, 450, -270} {
		out, _, err := s.Solve(context.Background(), Magnetic, xp, 0,
			[]geom.Polygon{disc(10, 2, 1, 60, magAttrs(0.01, inc))})
		require.NoError(t, err)
		if i == 0 {
			ref = out
		} else {
			assert.Equal(t, ref, out, "inclination %g", inc)
		}
	}
}

func TestNumericalError(t *testing.T) {
	// The second observation point sits on a vertex of a sloping edge.
	p := geom.NewPolygon([]geom.Point{
		{X: 0, Z: 0}, {X: 1, Z: 1}, {X: -1, Z: 1},
	}, magAttrs(0.01, 60))

	s := &Solver{Workers: 2}
	_, _, err := s.Solve(context.Background(), Magnetic, []float64{5, 0}, 0,
		[]geom.Polygon{p})
	require.ErrorIs(t, err, failure.ErrNumerical)

	ne := &failure.NumericalError{}
	require.True(t, errors.As(err, &ne))
	assert.Equal(t, "magnetic", ne.Anomaly)
	assert.Equal(t, 0, ne.Polygon)
	assert.Equal(t, 1, ne.Observation)
}

func TestCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := &Solver{Workers: 2, Scale: 1000}
	_, _, err := s.Solve(ctx, Gravity, linspace(0, 20, 11), 0,
		[]geom.Polygon{disc(10, 2, 1, 30, map[string]float64{geom.AttrDensity: 1})})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSplit(t *testing.T) {
	table := []struct {
		n, workers int
		out        [][2]int
	}{
		{0, 4, nil},
		{3, 8, [][2]int{{0, 1}, {1, 2}, {2, 3}}},
		{10, 3, [][2]int{{0, 4}, {4, 7}, {7, 10}}},
		{6, 1, [][2]int{{0, 6}}},
	}
	for i, test := range table {
		out := split(test.n, test.workers)
		if !assert.ObjectsAreEqual(test.out, out) {
			t.Errorf("%d) Expected %v. Got %v.", i, test.out, out)
		}
	}
}

func TestAnomalyStrings(t *testing.T) {
	for a := Gravity; a < EndAnomaly; a++ {
		a2, err := ParseAnomaly(a.String())
		require.NoError(t, err)
		assert.Equal(t, a, a2)
		assert.NotEmpty(t, a.Unit())
	}
	_, err := ParseAnomaly("seismic")
	assert.Error(t, err)
}

func benchmarkSolve(b *testing.B, a Anomaly, workers int) {
	attrs := magAttrs(0.01, 60)
	attrs[geom.AttrDensity] = 500
	polys := []geom.Polygon{disc(50, 2, 1, 360, attrs)}
	xp := linspace(0, 100, 1001)
	s := &Solver{Workers: workers, Scale: 1000}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.Solve(context.Background(), a, xp, 0, polys)
	}
}

func BenchmarkGravity(b *testing.B)   { benchmarkSolve(b, Gravity, 1) }
func BenchmarkMagnetic(b *testing.B)  { benchmarkSolve(b, Magnetic, 1) }
func BenchmarkVGG(b *testing.B)       { benchmarkSolve(b, VGG, 1) }
func BenchmarkGravity4(b *testing.B)  { benchmarkSolve(b, Gravity, 4) }
