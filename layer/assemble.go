package layer

import (
	"fmt"

	"github.com/phil-mansfield/gravmag/failure"
	"github.com/phil-mansfield/gravmag/geom"
)

// Ring is the assembled polygon of one layer, wound clockwise.
type Ring struct {
	Layer   int
	Polygon geom.Polygon
}

type ringCache struct {
	version uint64
	rings   map[int]geom.Polygon
}

// Ring returns the clockwise polygon of a layer. A floating layer's polygon
// is its node ring. A fixed layer's polygon runs back along the nearest fixed
// layer above it and then forward along its own nodes, with depths clamped
// to Epsilon and the padding segments of both layers made flat.
//
// Polygons are cached until the stack is next edited.
func (s *Stack) Ring(id int) (geom.Polygon, error) {
	if s.cache.rings == nil || s.cache.version != s.version {
		s.cache = ringCache{s.version, map[int]geom.Polygon{}}
	}
	if p, ok := s.cache.rings[id]; ok { return p, nil }

	l, ok := s.get(id)
	if !ok { return geom.Polygon{}, failure.NotFound("layer", id) }
	if id == Surface {
		return geom.Polygon{}, failure.Geometry(id, "the surface layer has "+
			"no polygon")
	}

	var pts []geom.Point
	switch l.Kind {
	case Floating:
		if err := checkFloating(l); err != nil { return geom.Polygon{}, err }
		pts = points(l)
	case Fixed:
		prev, ok := s.neighbourFixed(id, Up)
		if !ok {
			panic(fmt.Sprintf("Fixed layer %d has no fixed layer above it.", id))
		}
		top, bot := slabEdge(prev), slabEdge(l)
		pts = make([]geom.Point, 0, len(top)+len(bot))
		for i := len(top) - 1; i >= 0; i-- { pts = append(pts, top[i]) }
		pts = append(pts, bot...)
	}

	p := geom.NewPolygon(pts, nil).Clockwised()
	s.cache.rings[id] = p
	return p, nil
}

// Rings returns the polygons of every layer other than the surface for
// which keep returns true, in stacking order.
func (s *Stack) Rings(keep func(l *Layer) bool) ([]Ring, error) {
	out := []Ring{}
	for _, l := range s.layers {
		if l.ID == Surface || !keep(l) { continue }
		p, err := s.Ring(l.ID)
		if err != nil { return nil, err }
		out = append(out, Ring{l.ID, p})
	}
	return out, nil
}

// slabEdge returns the nodes of a fixed layer as they bound a polygon.
func slabEdge(l *Layer) []geom.Point {
	pts := points(l)
	for i := range pts { pts[i].Z = clampDepth(pts[i].Z) }
	if n := len(pts); n >= 3 {
		pts[0].Z, pts[n-1].Z = pts[1].Z, pts[n-2].Z
	}
	return pts
}
