/*package geom contains the polygon type that the potential-field kernels
integrate over, along with the small amount of plane geometry needed to
build and edit those polygons.

All coordinates live in the (x, z) plane of a profile, with z positive
downward.
*/
package geom

import (
	"math"
)

// Names of the attributes read by the kernels.
const (
	AttrDensity        = "density"        // kg m^-3, already a contrast
	AttrSusceptibility = "susceptibility" // SI volume susceptibility
	AttrInclination    = "inclination"    // degrees, positive down
	AttrDeclination    = "declination"    // degrees clockwise from north
	AttrAzimuth        = "azimuth"        // profile azimuth, degrees
	AttrField          = "field"          // ambient field strength, nT
)

// Point is a vertex on the profile plane.
type Point struct {
	X, Z float64
}

// Polygon is an attributed ring of vertices. The ring is closed implicitly:
// the last vertex is joined to the first.
//
// Polygons are values. Nothing in this package modifies one after
// NewPolygon returns, and every accessor hands out copies.
type Polygon struct {
	pts   []Point
	attrs map[string]float64
}

// NewPolygon copies pts and attrs into a new Polygon. attrs may be nil.
func NewPolygon(pts []Point, attrs map[string]float64) Polygon {
	p := Polygon{
		pts:   make([]Point, len(pts)),
		attrs: make(map[string]float64, len(attrs)),
	}
	copy(p.pts, pts)
	for k, v := range attrs { p.attrs[k] = v }
	return p
}

// Len returns the number of vertices in the ring.
func (p Polygon) Len() int { return len(p.pts) }

// At returns the i-th vertex.
func (p Polygon) At(i int) Point { return p.pts[i] }

// Vertices returns a copy of the vertex ring.
func (p Polygon) Vertices() []Point {
	out := make([]Point, len(p.pts))
	copy(out, p.pts)
	return out
}

// Coords writes the vertex coordinates into separate x and z slices scaled
// by the given factor, allocating them if they are too short.
func (p Polygon) Coords(scale float64, xs, zs []float64) ([]float64, []float64) {
	if cap(xs) < len(p.pts) { xs = make([]float64, len(p.pts)) }
	if cap(zs) < len(p.pts) { zs = make([]float64, len(p.pts)) }
	xs, zs = xs[:len(p.pts)], zs[:len(p.pts)]
	for i, pt := range p.pts {
		xs[i], zs[i] = pt.X*scale, pt.Z*scale
	}
	return xs, zs
}

// Attr returns the named attribute. ok is false if the polygon doesn't
// carry it.
func (p Polygon) Attr(name string) (val float64, ok bool) {
	val, ok = p.attrs[name]
	return val, ok
}

// Attrs returns a copy of the attribute map.
func (p Polygon) Attrs() map[string]float64 {
	out := make(map[string]float64, len(p.attrs))
	for k, v := range p.attrs { out[k] = v }
	return out
}

// WithAttrs returns a polygon sharing p's ring but carrying only the given
// attributes.
func (p Polygon) WithAttrs(attrs map[string]float64) Polygon {
	q := Polygon{pts: p.pts, attrs: make(map[string]float64, len(attrs))}
	for k, v := range attrs { q.attrs[k] = v }
	return q
}

// SignedArea returns the shoelace area of the ring, treating (x, z) as
// ordinary Cartesian axes. It is negative for clockwise rings.
func (p Polygon) SignedArea() float64 { return SignedArea(p.pts) }

// Clockwise reports whether the ring winds clockwise.
func (p Polygon) Clockwise() bool { return SignedArea(p.pts) < 0 }

// Reversed returns the polygon with its vertex order reversed.
func (p Polygon) Reversed() Polygon {
	q := Polygon{pts: make([]Point, len(p.pts)), attrs: p.attrs}
	for i, pt := range p.pts { q.pts[len(p.pts)-1-i] = pt }
	return q
}

// Clockwised returns p if it is already clockwise and its reversal
// otherwise. Degenerate rings with zero area are returned unchanged.
func (p Polygon) Clockwised() Polygon {
	if SignedArea(p.pts) > 0 { return p.Reversed() }
	return p
}

// DistinctVertices counts the distinct vertices in the ring.
func (p Polygon) DistinctVertices() int { return DistinctCount(p.pts) }

// MinZ returns the shallowest depth in the ring.
func (p Polygon) MinZ() float64 {
	min := math.Inf(+1)
	for _, pt := range p.pts {
		if pt.Z < min { min = pt.Z }
	}
	return min
}

// SignedArea returns the shoelace area of an implicitly closed ring.
func SignedArea(pts []Point) float64 {
	sum := 0.0
	for i := range pts {
		j := i + 1
		if j == len(pts) { j = 0 }
		sum += pts[i].X*pts[j].Z - pts[j].X*pts[i].Z
	}
	return sum / 2
}

// DistinctCount returns the number of distinct points in pts.
func DistinctCount(pts []Point) int {
	seen := make(map[Point]bool, len(pts))
	for _, pt := range pts { seen[pt] = true }
	return len(seen)
}
