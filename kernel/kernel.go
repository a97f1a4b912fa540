/*package kernel computes the gravity, magnetic and vertical gravity gradient
anomalies of 2D polygonal bodies at a line of observation points.

All three anomalies share one loop: for each observation point, polygons are
visited in order and the edges of each polygon are visited in vertex order.
Only the arithmetic applied to each edge differs between them. The order of
accumulation is fixed, so results don't depend on how many workers are used.

Polygons are expected to wind clockwise. For a clockwise body denser than its
surroundings, the Gravity and Magnetic outputs come out with the opposite
sign to the physical anomaly and callers are expected to negate them.
*/
package kernel

import (
	"context"
	"fmt"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/phil-mansfield/gravmag/failure"
	"github.com/phil-mansfield/gravmag/geom"
)

const (
	// G is the gravitational constant in SI units.
	G = 6.673e-11
	// SIToMGal converts m s^-2 to mGal.
	SIToMGal = 1e5
	// SIToEotvos converts s^-2 to Eotvos.
	SIToEotvos = 1e9
	// MinSusceptibility is the smallest |susceptibility| (SI) considered
	// magnetic.
	MinSusceptibility = 1e-4
)

// Anomaly selects which kernel a Solver runs.
type Anomaly int

const (
	Gravity Anomaly = iota // Bott (1965), mGal
	Magnetic               // Talwani & Heirtzler (1964), nT
	VGG                    // Kim & Wessel (2016), Eotvos
	EndAnomaly
)

func (a Anomaly) String() string {
	switch a {
	case Gravity:
		return "gravity"
	case Magnetic:
		return "magnetic"
	case VGG:
		return "vgg"
	}
	return fmt.Sprintf("Anomaly(%d)", int(a))
}

// ParseAnomaly is the inverse of Anomaly.String.
func ParseAnomaly(s string) (Anomaly, error) {
	for a := Gravity; a < EndAnomaly; a++ {
		if a.String() == s { return a, nil }
	}
	return 0, fmt.Errorf("Unrecognized anomaly '%s'.", s)
}

// Unit returns the unit the anomaly is reported in.
func (a Anomaly) Unit() string {
	switch a {
	case Gravity:
		return "mGal"
	case Magnetic:
		return "nT"
	case VGG:
		return "Eotvos"
	}
	return ""
}

// Solver evaluates kernels over a set of observation points.
type Solver struct {
	// Workers is the number of goroutines the observation points are split
	// between. Values below one mean runtime.NumCPU().
	Workers int
	// Scale is the length of one coordinate unit in meters. Polygon
	// vertices, observation points and the observation elevation are all
	// multiplied by it. Zero means coordinates are already in meters.
	Scale float64
}

// Report lists the polygons a kernel couldn't use: those with fewer than
// three distinct vertices or missing a required attribute. Skipped holds
// indices into the polygon slice given to Solve.
type Report struct {
	Skipped []int
}

// body is a polygon prepared for one kernel.
type body struct {
	index  int
	xs, zs []float64
	coeff  float64

	// Magnetic direction cosines.
	cosDip, sinDip, cosStrike float64
}

// Solve evaluates the anomaly of polys at each of the points (xp[i], zp). zp
// is the observation elevation, with z positive down like the vertices.
//
// Polygons which can't be used are skipped and listed in the Report. The
// VGG kernel fails with a GeometryError if a polygon it would use reaches
// the observation elevation. A non-finite contribution fails the call with
// a NumericalError naming the first polygon and point at which it happened.
func (s *Solver) Solve(
	ctx context.Context, a Anomaly, xp []float64, zp float64,
	polys []geom.Polygon,
) ([]float64, Report, error) {
	if a < Gravity || a >= EndAnomaly {
		panic(fmt.Sprintf("Unrecognized anomaly %d.", int(a)))
	}

	scale := s.Scale
	if scale == 0 { scale = 1 }
	zp *= scale

	bodies, rep, err := prepare(a, polys, scale, zp)
	if err != nil { return nil, rep, err }

	out := make([]float64, len(xp))
	chunks := split(len(xp), s.workers())
	chunkErrs := make([]*failure.NumericalError, len(chunks))
	g, gctx := errgroup.WithContext(ctx)
	for c := range chunks {
		c := c
		g.Go(func() error {
			lo, hi := chunks[c][0], chunks[c][1]
			ne, err := a.accumulate(gctx, bodies, xp[lo:hi], zp, scale, out[lo:hi])
			if ne != nil {
				ne.Observation += lo
				chunkErrs[c] = ne
			}
			return err
		})
	}
	if err := g.Wait(); err != nil { return nil, rep, err }

	errs := []*failure.NumericalError{}
	for _, ne := range chunkErrs {
		if ne != nil { errs = append(errs, ne) }
	}
	if len(errs) > 0 { return nil, rep, firstNumerical(errs) }

	k := a.constant()
	for i := range out { out[i] *= k }
	return out, rep, nil
}

func (s *Solver) workers() int {
	if s.Workers < 1 { return runtime.NumCPU() }
	return s.Workers
}

// split divides n points into at most workers contiguous [lo, hi) ranges.
func split(n, workers int) [][2]int {
	if workers > n { workers = n }
	if workers < 1 { return nil }
	out := make([][2]int, workers)
	size, rem := n/workers, n%workers
	lo := 0
	for i := range out {
		hi := lo + size
		if i < rem { hi++ }
		out[i] = [2]int{lo, hi}
		lo = hi
	}
	return out
}

func firstNumerical(errs []*failure.NumericalError) *failure.NumericalError {
	first := errs[0]
	for _, e := range errs[1:] {
		if e.Polygon < first.Polygon ||
			(e.Polygon == first.Polygon && e.Observation < first.Observation) {
			first = e
		}
	}
	return first
}

// prepare converts polygons into bodies, dropping those which contribute
// nothing.
func prepare(
	a Anomaly, polys []geom.Polygon, scale, zp float64,
) ([]body, Report, error) {
	rep := Report{Skipped: []int{}}
	bodies := make([]body, 0, len(polys))

	for i, p := range polys {
		if p.DistinctVertices() < 3 {
			rep.Skipped = append(rep.Skipped, i)
			continue
		}

		b := body{index: i}
		switch a {
		case Gravity, VGG:
			rho, ok := p.Attr(geom.AttrDensity)
			if !ok {
				rep.Skipped = append(rep.Skipped, i)
				continue
			} else if rho == 0 {
				continue
			}
			b.coeff = rho

		case Magnetic:
			kappa, ok := p.Attr(geom.AttrSusceptibility)
			if !ok || math.Abs(kappa) < MinSusceptibility { continue }
			inc, okA := p.Attr(geom.AttrInclination)
			dec, okB := p.Attr(geom.AttrDeclination)
			azi, okC := p.Attr(geom.AttrAzimuth)
			f, okF := p.Attr(geom.AttrField)
			if !okA || !okB || !okC || !okF {
				rep.Skipped = append(rep.Skipped, i)
				continue
			}

			inc, dec, azi = radians(inc), radians(dec), radians(azi)
			b.coeff = 2 * (kappa / (4 * math.Pi)) * f
			b.cosDip, b.sinDip = math.Cos(inc), math.Sin(inc)
			b.cosStrike = math.Cos(azi - dec)
		}

		b.xs, b.zs = p.Coords(scale, nil, nil)
		if a == VGG {
			for _, z := range b.zs {
				if !(z > zp) {
					return nil, rep, failure.Geometry(-1, "polygon %d has "+
						"a vertex at depth %g m, which isn't below the "+
						"observation elevation %g m", i, z, zp)
				}
			}
		}
		bodies = append(bodies, b)
	}

	return bodies, rep, nil
}

// radians reduces an angle in degrees to [0, 360) and converts it to
// radians.
func radians(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 { deg += 360 }
	return deg * math.Pi / 180
}

// constant is the factor applied to the accumulated sum.
func (a Anomaly) constant() float64 {
	switch a {
	case Gravity:
		return 2 * G * SIToMGal
	case VGG:
		return -G * SIToEotvos
	}
	return 1
}

// accumulate adds the contribution of every body at each of the points
// (xs[i], zp) to out[i]. Points are in model units and bodies in meters.
// It returns the first non-finite contribution it finds, if any, with
// Observation relative to the start of xs.
func (a Anomaly) accumulate(
	ctx context.Context, bodies []body, xs []float64, zp, scale float64,
	out []float64,
) (*failure.NumericalError, error) {
	for bi := range bodies {
		if err := ctx.Err(); err != nil { return nil, err }

		b := &bodies[bi]
		for j, x := range xs {
			var val float64
			switch a {
			case Gravity:
				val = b.coeff * bott(b, x*scale, zp)
			case Magnetic:
				val = talwani(b, x*scale, zp)
			case VGG:
				val = b.coeff * kimWessel(b, x*scale, zp)
			}

			if math.IsNaN(val) || math.IsInf(val, 0) {
				return &failure.NumericalError{
					Anomaly: a.String(), Polygon: b.index,
					Observation: j, Value: val,
				}, nil
			}
			out[j] += val
		}
	}
	return nil, nil
}
