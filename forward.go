package gravmag

import (
	"context"
	"errors"
	"math"

	"go.uber.org/zap"

	"github.com/phil-mansfield/gravmag/failure"
	"github.com/phil-mansfield/gravmag/geom"
	"github.com/phil-mansfield/gravmag/kernel"
	"github.com/phil-mansfield/gravmag/layer"
	"github.com/phil-mansfield/gravmag/misfit"
)

// MetersPerUnit converts model coordinates (km) to the SI units the kernels
// work in.
const MetersPerUnit = 1000.0

// Result is the outcome of one anomaly's calculation. If Err is non-nil the
// anomaly failed, and Xs, Ys and Misfit are all nil.
type Result struct {
	Anomaly kernel.Anomaly
	// Xs is the padded observation grid in km and Ys the predicted anomaly
	// in the anomaly's unit.
	Xs, Ys []float64
	// Skipped lists the ids of layers the kernel couldn't use.
	Skipped []int
	// Misfit is nil if the anomaly has no reference curve or the curve
	// doesn't overlap the grid.
	Misfit *misfit.Result
	// Version is the layer stack version the result was computed from.
	Version uint64
	// Err holds the failure. The Polygon field of a *failure.NumericalError
	// is rewritten to the id of the offending layer.
	Err error
}

// OK returns true if the anomaly was calculated successfully.
func (r *Result) OK() bool { return r.Err == nil }

// RMS returns the misfit against the reference curve. ok is false when it
// is undefined.
func (r *Result) RMS() (rms float64, ok bool) {
	if r.Misfit == nil { return math.NaN(), false }
	return r.Misfit.RMS, true
}

// Forward calculates every enabled anomaly and its misfit against its
// reference curve.
//
// Anomalies are calculated independently: the failure of one is recorded in
// its Result and doesn't stop the others. The only error Forward itself
// returns is ctx's, in which case no results are published.
func (m *Model) Forward(ctx context.Context) error {
	version := m.Layers.Version()
	results := [kernel.EndAnomaly]*Result{}

	for a := kernel.Gravity; a < kernel.EndAnomaly; a++ {
		if !m.enabled[a] { continue }

		log := m.log.With(
			zap.Stringer("anomaly", a), zap.Uint64("version", version),
		)
		log.Debug("Starting forward calculation.")

		res := m.forward(ctx, a)
		res.Version = version
		if err := ctx.Err(); err != nil { return err }

		if !res.OK() {
			log.Warn("Forward calculation failed.", zap.Error(res.Err))
		} else {
			for _, id := range res.Skipped {
				log.Warn("Layer skipped.", zap.Int("layer", id))
			}
			if rms, ok := res.RMS(); ok {
				log.Info("Computed misfit.", zap.Float64("rms", rms))
			}
			log.Debug("Finished forward calculation.",
				zap.Int("points", len(res.Xs)))
		}
		results[a] = res
	}

	m.results, m.computed, m.ran = results, version, true
	return nil
}

// Result returns the last result for the anomaly, or nil if it wasn't
// calculated.
func (m *Model) Result(a kernel.Anomaly) *Result { return m.results[a] }

// RMS returns the last misfit of the anomaly. ok is false if it is
// undefined.
func (m *Model) RMS(a kernel.Anomaly) (rms float64, ok bool) {
	if m.results[a] == nil { return math.NaN(), false }
	return m.results[a].RMS()
}

func (m *Model) forward(ctx context.Context, a kernel.Anomaly) *Result {
	res := &Result{Anomaly: a, Skipped: []int{}}

	grid := m.Grid(a)
	if len(grid.Xs) == 0 {
		res.Err = ErrNoObservations
		return res
	}
	if err := checkGrid(grid.Xs); err != nil {
		res.Err = err
		return res
	}
	xs := padGrid(grid.Xs, m.CalcPadding)

	rings, err := m.Layers.Rings(func(l *layer.Layer) bool {
		return l.Include && participates(l, a)
	})
	if err != nil {
		res.Err = err
		return res
	}

	polys := make([]geom.Polygon, len(rings))
	for i, r := range rings {
		l, err := m.Layers.Layer(r.Layer)
		if err != nil { panic(err.Error()) }
		polys[i] = r.Polygon.WithAttrs(m.attributes(a, &l))
	}

	if a == VGG {
		if err := checkBelow(rings, polys, grid.Elevation); err != nil {
			res.Err = err
			return res
		}
	}

	solver := kernel.Solver{Workers: m.Workers, Scale: MetersPerUnit}
	ys, rep, err := solver.Solve(ctx, a, xs, grid.Elevation, polys)
	for _, i := range rep.Skipped {
		res.Skipped = append(res.Skipped, rings[i].Layer)
	}
	if err != nil {
		var ne *failure.NumericalError
		if errors.As(err, &ne) { ne.Polygon = rings[ne.Polygon].Layer }
		res.Err = err
		return res
	}

	// Clockwise rings give gravity and magnetic anomalies of the opposite
	// sign to the physical one.
	if a == Gravity || a == Magnetic {
		for i := range ys { ys[i] = -ys[i] }
	}
	res.Xs, res.Ys = xs, ys
	res.Misfit = m.misfit(a, xs, ys)
	return res
}

func (m *Model) misfit(a kernel.Anomaly, xs, ys []float64) *misfit.Result {
	id, ok := m.Reference(a)
	if !ok { return nil }
	c, err := m.Curves.Get(id)
	if err != nil { return nil }

	mis, err := misfit.Compare(c.Xs, c.Ys, xs, ys)
	if err != nil {
		m.log.Warn("Misfit is undefined.", zap.Stringer("anomaly", a),
			zap.Int("curve", id), zap.Error(err))
		return nil
	}
	return mis
}

func participates(l *layer.Layer, a kernel.Anomaly) bool {
	switch a {
	case Gravity:
		return l.Anomalies.Gravity
	case Magnetic:
		return l.Anomalies.Magnetic
	case VGG:
		return l.Anomalies.VGG
	}
	return false
}

// attributes returns the polygon attributes the anomaly's kernel reads.
func (m *Model) attributes(a kernel.Anomaly, l *layer.Layer) map[string]float64 {
	switch a {
	case Gravity, VGG:
		return map[string]float64{geom.AttrDensity: l.Attr.DensityContrast()}
	}

	azi := l.Attr.Azimuth
	if m.overrideAzimuth { azi = m.azimuth }
	return map[string]float64{
		geom.AttrSusceptibility: l.Attr.Susceptibility,
		geom.AttrInclination:    l.Attr.Inclination,
		geom.AttrDeclination:    l.Attr.Declination,
		geom.AttrAzimuth:        azi,
		geom.AttrField:          l.Attr.Field,
	}
}

// checkBelow returns a GeometryError naming the first layer which would
// contribute to the VGG and has a vertex at or above the observation
// elevation.
func checkBelow(rings []layer.Ring, polys []geom.Polygon, elevation float64) error {
	for i, p := range polys {
		if rho, _ := p.Attr(geom.AttrDensity); rho == 0 { continue }
		if p.DistinctVertices() < 3 { continue }
		if z := p.MinZ(); !(z > elevation) {
			return failure.Geometry(rings[i].Layer, "vertex at depth %g km "+
				"isn't below the observation elevation %g km", z, elevation)
		}
	}
	return nil
}

// checkGrid requires observation points to be finite and strictly
// increasing.
func checkGrid(xs []float64) error {
	for i, x := range xs {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return failure.Geometry(
				-1, "observation point %d, %g, is not finite", i, x,
			)
		} else if i > 0 && !(x > xs[i-1]) {
			return failure.Geometry(
				-1, "observation points must be strictly increasing, but "+
					"x[%d] = %g and x[%d] = %g", i-1, xs[i-1], i, x,
			)
		}
	}
	return nil
}

// padGrid extends xs by pad on either side, continuing with the spacing of
// the first and last pairs of points.
func padGrid(xs []float64, pad float64) []float64 {
	n := len(xs)
	if !(pad > 0) || n < 2 { return append([]float64(nil), xs...) }

	left, right := xs[1]-xs[0], xs[n-1]-xs[n-2]
	nl := int(math.Floor(pad/left + 1e-9))
	nr := int(math.Floor(pad/right + 1e-9))

	out := make([]float64, 0, nl+n+nr)
	for k := nl; k >= 1; k-- { out = append(out, xs[0]-float64(k)*left) }
	out = append(out, xs...)
	for k := 1; k <= nr; k++ { out = append(out, xs[n-1]+float64(k)*right) }
	return out
}
