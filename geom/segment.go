package geom

import (
	"math"
)

// Segment is the straight edge between two vertices.
type Segment struct {
	A, B Point
}

// Project returns the point on s closest to pt along with its fractional
// position t along the segment, where t = 0 at A and t = 1 at B.
func (s Segment) Project(pt Point) (proj Point, t float64) {
	dx, dz := s.B.X-s.A.X, s.B.Z-s.A.Z
	len2 := dx*dx + dz*dz
	if len2 == 0 { return s.A, 0 }

	t = ((pt.X-s.A.X)*dx + (pt.Z-s.A.Z)*dz) / len2
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return Point{s.A.X + t*dx, s.A.Z + t*dz}, t
}

// Dist returns the distance from pt to the closest point on s.
func (s Segment) Dist(pt Point) float64 {
	proj, _ := s.Project(pt)
	return math.Hypot(pt.X-proj.X, pt.Z-proj.Z)
}

// ZAt returns the depth of s at x. ok is false if s is vertical or x lies
// outside the segment's horizontal extent.
func (s Segment) ZAt(x float64) (z float64, ok bool) {
	lo, hi := s.A.X, s.B.X
	if lo > hi { lo, hi = hi, lo }
	if x < lo || x > hi || lo == hi { return 0, false }
	t := (x - s.A.X) / (s.B.X - s.A.X)
	return s.A.Z + t*(s.B.Z-s.A.Z), true
}

// Nearest returns the index i of the edge (i, i+1) of an open polyline which
// lies closest to pt. If closed is true, the edge joining the last vertex to
// the first is also considered and is reported as len(pts)-1. Ties go to the
// earliest edge.
func Nearest(pts []Point, pt Point, closed bool) int {
	n := len(pts) - 1
	if closed { n = len(pts) }

	best, bestDist := -1, math.Inf(+1)
	for i := 0; i < n; i++ {
		j := i + 1
		if j == len(pts) { j = 0 }
		d := Segment{pts[i], pts[j]}.Dist(pt)
		if d < bestDist { best, bestDist = i, d }
	}
	return best
}
