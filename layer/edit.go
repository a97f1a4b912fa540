package layer

import (
	"github.com/phil-mansfield/gravmag/failure"
	"github.com/phil-mansfield/gravmag/geom"
)

// edit is a tentative change to a Stack. Layers are cloned the first time
// they're touched and the stack is only updated by commit, once every
// touched layer has passed validation.
type edit struct {
	s      *Stack
	layers map[int]*Layer
	order  []int
	graph  pinchGraph
}

func (s *Stack) begin() *edit {
	g := pinchGraph{}
	for n, ms := range s.pinches {
		g[n] = make(map[Node]bool, len(ms))
		for m := range ms { g[n][m] = true }
	}
	return &edit{s: s, layers: map[int]*Layer{}, graph: g}
}

func (e *edit) layer(id int) *Layer {
	if l, ok := e.layers[id]; ok { return l }
	l, ok := e.s.get(id)
	if !ok { panic("edit of a layer which isn't in the stack") }
	c := l.clone()
	e.layers[id] = c
	e.order = append(e.order, id)
	return c
}

// moveGroup moves n and every node pinched to it, directly or not, to
// (x, z). Depths are clamped to Epsilon if any of the nodes belongs to a
// fixed layer so that the group stays together.
func (e *edit) moveGroup(n Node, x, z float64) {
	group := e.graph.component(n)
	for _, m := range group {
		if e.layer(m.Layer).Kind == Fixed {
			z = clampDepth(z)
			break
		}
	}
	for _, m := range group {
		l := e.layer(m.Layer)
		l.Xs[m.Index], l.Zs[m.Index] = x, z
	}
}

// insert adds a node at index i of a layer, renumbering pinches of the
// nodes after it.
func (e *edit) insert(id, i int, x, z float64) {
	l := e.layer(id)
	l.Xs = append(l.Xs[:i], append([]float64{x}, l.Xs[i:]...)...)
	l.Zs = append(l.Zs[:i], append([]float64{z}, l.Zs[i:]...)...)
	e.graph.renumber(id, func(j int) int {
		if j >= i { return j + 1 }
		return j
	})
}

// remove deletes node i of a layer along with its pinches.
func (e *edit) remove(id, i int) {
	l := e.layer(id)
	l.Xs = append(l.Xs[:i], l.Xs[i+1:]...)
	l.Zs = append(l.Zs[:i], l.Zs[i+1:]...)
	e.graph.isolate(Node{id, i})
	e.graph.renumber(id, func(j int) int {
		if j > i { return j - 1 }
		return j
	})
}

func (e *edit) commit() error {
	for _, id := range e.order {
		l := e.layers[id]
		var err error
		if l.Kind == Fixed {
			err = e.s.checkFixed(l)
		} else {
			err = checkFloating(l)
		}
		if err != nil { return err }
	}

	for _, id := range e.order {
		i, _ := e.s.index(id)
		e.s.layers[i] = e.layers[id]
	}
	e.s.pinches = e.graph
	e.s.touch()
	return nil
}

// MoveNode moves a node to (x, z). Every node pinched to it moves with it.
// The move is rejected if it would break the ordering of a fixed layer or
// leave a floating layer with fewer than three distinct vertices.
func (s *Stack) MoveNode(n Node, x, z float64) error {
	if _, ok := s.node(n); !ok { return failure.NotFound("node of layer", n.Layer) }
	if !finite(x) || !finite(z) {
		return failure.Geometry(n.Layer, "can't move node %d to (%g, %g)",
			n.Index, x, z)
	}
	e := s.begin()
	e.moveGroup(n, x, z)
	return e.commit()
}

// InsertNode splits the layer edge closest to (x, z) at the projection of
// (x, z) onto it and returns the new node's index. The edge joining the last
// and first nodes counts for floating layers.
func (s *Stack) InsertNode(id int, x, z float64) (int, error) {
	l, ok := s.get(id)
	if !ok { return -1, failure.NotFound("layer", id) }
	if l.Len() < 2 {
		return -1, failure.Geometry(id, "layer has no edges to split")
	}

	pts := points(l)
	pt := geom.Point{X: x, Z: z}
	k := geom.Nearest(pts, pt, l.Kind == Floating)
	seg := geom.Segment{A: pts[k], B: pts[(k+1)%len(pts)]}
	proj, t := seg.Project(pt)
	if t <= 0 || t >= 1 {
		return -1, failure.Geometry(id, "(%g, %g) projects onto node %d, "+
			"not an edge", x, z, k)
	}

	if l.Kind == Fixed { proj.Z = clampDepth(proj.Z) }
	e := s.begin()
	e.insert(id, k+1, proj.X, proj.Z)
	if err := e.commit(); err != nil { return -1, err }
	return k + 1, nil
}

// DeleteNode removes a node and its pinches. The padding nodes at either
// end of a fixed layer can't be deleted.
func (s *Stack) DeleteNode(n Node) error {
	l, ok := s.node(n)
	if !ok { return failure.NotFound("node of layer", n.Layer) }
	if l.Kind == Fixed && (n.Index == 0 || n.Index == l.Len()-1) {
		return failure.Geometry(n.Layer, "node %d is a padding node of a "+
			"fixed layer", n.Index)
	}

	e := s.begin()
	e.remove(n.Layer, n.Index)
	return e.commit()
}

// Shift adds (dx, dz) to every node of a layer. Depths which would end up at
// or above zero are clamped to Epsilon. The padding nodes of a fixed layer
// keep their x values. Nodes pinched to the layer move along with it.
func (s *Stack) Shift(id int, dx, dz float64) error {
	l, ok := s.get(id)
	if !ok { return failure.NotFound("layer", id) }
	if !finite(dx) || !finite(dz) {
		return failure.Geometry(id, "can't shift by (%g, %g)", dx, dz)
	}

	e := s.begin()
	n := l.Len()
	for i := 0; i < n; i++ {
		x, z := l.Xs[i]+dx, clampDepth(l.Zs[i]+dz)
		if l.Kind == Fixed && (i == 0 || i == n-1) { x = l.Xs[i] }
		e.moveGroup(Node{id, i}, x, z)
	}
	return e.commit()
}
