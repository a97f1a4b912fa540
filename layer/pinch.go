package layer

import (
	"math"
	"sort"

	"github.com/phil-mansfield/gravmag/failure"
	"github.com/phil-mansfield/gravmag/geom"
)

// pinchGraph is an undirected graph over nodes. Every edge is stored in
// both directions.
type pinchGraph map[Node]map[Node]bool

func (g pinchGraph) link(a, b Node) {
	if g[a] == nil { g[a] = map[Node]bool{} }
	if g[b] == nil { g[b] = map[Node]bool{} }
	g[a][b], g[b][a] = true, true
}

func (g pinchGraph) unlink(a, b Node) {
	delete(g[a], b)
	delete(g[b], a)
	if len(g[a]) == 0 { delete(g, a) }
	if len(g[b]) == 0 { delete(g, b) }
}

// partners returns the direct partners of n, sorted.
func (g pinchGraph) partners(n Node) []Node {
	out := make([]Node, 0, len(g[n]))
	for m := range g[n] { out = append(out, m) }
	sortNodes(out)
	return out
}

// component returns every node reachable from n, including n, sorted.
func (g pinchGraph) component(n Node) []Node {
	seen := map[Node]bool{n: true}
	queue := []Node{n}
	for len(queue) > 0 {
		m := queue[0]
		queue = queue[1:]
		for p := range g[m] {
			if !seen[p] {
				seen[p] = true
				queue = append(queue, p)
			}
		}
	}

	out := make([]Node, 0, len(seen))
	for m := range seen { out = append(out, m) }
	sortNodes(out)
	return out
}

// isolate removes every edge touching n.
func (g pinchGraph) isolate(n Node) {
	for m := range g[n] { g.unlink(n, m) }
}

func (g pinchGraph) dropLayer(id int) {
	for n := range g {
		if n.Layer == id { g.isolate(n) }
	}
}

// renumber applies f to the index of every node of the given layer.
func (g pinchGraph) renumber(id int, f func(int) int) {
	old := pinchGraph{}
	for n, ms := range g {
		old[n] = ms
	}
	for n := range g { delete(g, n) }

	move := func(n Node) Node {
		if n.Layer == id { n.Index = f(n.Index) }
		return n
	}
	for n, ms := range old {
		for m := range ms { g.link(move(n), move(m)) }
	}
}

// layerPartners returns the sorted ids of the layers sharing at least one
// node with the given layer.
func (g pinchGraph) layerPartners(id int) []int {
	set := map[int]bool{}
	for n, ms := range g {
		if n.Layer != id { continue }
		for m := range ms {
			if m.Layer != id { set[m.Layer] = true }
		}
	}
	out := make([]int, 0, len(set))
	for l := range set { out = append(out, l) }
	sort.Ints(out)
	return out
}

// edges returns every edge once, with the smaller node first.
func (g pinchGraph) edges() [][2]Node {
	out := [][2]Node{}
	for n, ms := range g {
		for m := range ms {
			if nodeLess(n, m) { out = append(out, [2]Node{n, m}) }
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i][0] != out[j][0] { return nodeLess(out[i][0], out[j][0]) }
		return nodeLess(out[i][1], out[j][1])
	})
	return out
}

func nodeLess(a, b Node) bool {
	if a.Layer != b.Layer { return a.Layer < b.Layer }
	return a.Index < b.Index
}

func sortNodes(ns []Node) {
	sort.Slice(ns, func(i, j int) bool { return nodeLess(ns[i], ns[j]) })
}

// Partners returns the nodes pinched directly to n.
func (s *Stack) Partners(n Node) []Node { return s.pinches.partners(n) }

// PinchedWith returns the ids of the layers which share a node with the
// given layer.
func (s *Stack) PinchedWith(id int) ([]int, error) {
	if _, ok := s.get(id); !ok { return nil, failure.NotFound("layer", id) }
	return s.pinches.layerPartners(id), nil
}

// Pinches returns every pinch in the stack, each listed once with the lower
// node first.
func (s *Stack) Pinches() [][2]Node { return s.pinches.edges() }

// Pinch joins node b to node a. b, along with everything already pinched to
// it, is moved onto a.
func (s *Stack) Pinch(a, b Node) error {
	if a.Layer == b.Layer {
		return failure.Geometry(a.Layer, "can't pinch node %d to node %d "+
			"of the same layer", a.Index, b.Index)
	}
	la, ok := s.node(a)
	if !ok { return failure.NotFound("node of layer", a.Layer) }
	if _, ok := s.node(b); !ok { return failure.NotFound("node of layer", b.Layer) }

	e := s.begin()
	e.moveGroup(b, la.Xs[a.Index], la.Zs[a.Index])
	e.graph.link(a, b)
	return e.commit()
}

// Unpinch removes the pinch between a and b, leaving both nodes in place.
func (s *Stack) Unpinch(a, b Node) error {
	if !s.pinches[a][b] {
		return failure.Geometry(a.Layer, "node %v isn't pinched to %v", a, b)
	}
	s.pinches.unlink(a, b)
	s.touch()
	return nil
}

// PinchRange pinches every node of layer id with x in [x1, x2] to the
// nearest fixed layer in the given direction. Nodes are snapped onto that
// layer, which gains a node wherever it doesn't already have one at the
// same x.
func (s *Stack) PinchRange(id int, dir Direction, x1, x2 float64) error {
	if x1 > x2 { x1, x2 = x2, x1 }
	l, ok := s.get(id)
	if !ok { return failure.NotFound("layer", id) }
	target, ok := s.neighbourFixed(id, dir)
	if !ok {
		return failure.Geometry(id, "no fixed layer %s to pinch to",
			map[Direction]string{Up: "above", Down: "below"}[dir])
	}

	e := s.begin()
	picked := []Node{}
	for i := range l.Xs {
		if l.Xs[i] < x1 || l.Xs[i] > x2 { continue }
		n := Node{id, i}
		j, ok := e.nodeAtX(target.ID, l.Xs[i])
		if !ok {
			return failure.Geometry(id, "x = %g is outside layer %d",
				l.Xs[i], target.ID)
		}
		// Snap before linking so the node's old partners follow it.
		tl := e.layer(target.ID)
		e.moveGroup(n, tl.Xs[j], tl.Zs[j])
		e.graph.link(Node{target.ID, j}, n)
		picked = append(picked, n)
	}
	if len(picked) == 0 {
		return failure.Geometry(id, "no nodes with x in [%g, %g]", x1, x2)
	}
	return e.commit()
}

// DepinchRange releases the pinches between layer id and layer other at
// every node of layer id with x in [x1, x2]. Released nodes are pushed down
// by DepinchOffset.
func (s *Stack) DepinchRange(id, other int, x1, x2 float64) error {
	if x1 > x2 { x1, x2 = x2, x1 }
	l, ok := s.get(id)
	if !ok { return failure.NotFound("layer", id) }
	if _, ok := s.get(other); !ok { return failure.NotFound("layer", other) }

	e := s.begin()
	freed := 0
	for i := range l.Xs {
		if l.Xs[i] < x1 || l.Xs[i] > x2 { continue }
		n := Node{id, i}
		released := false
		for _, m := range e.graph.partners(n) {
			if m.Layer == other {
				e.graph.unlink(n, m)
				released = true
			}
		}
		if released {
			e.moveGroup(n, l.Xs[i], l.Zs[i]+DepinchOffset)
			freed++
		}
	}
	if freed == 0 {
		return failure.Geometry(id, "no nodes with x in [%g, %g] are pinched "+
			"to layer %d", x1, x2, other)
	}
	return e.commit()
}

func (s *Stack) node(n Node) (*Layer, bool) {
	l, ok := s.get(n.Layer)
	if !ok || n.Index < 0 || n.Index >= l.Len() { return nil, false }
	return l, true
}

// nodeAtX returns the index of the node of fixed layer id lying at x,
// inserting one on the polyline if there isn't one already.
func (e *edit) nodeAtX(id int, x float64) (int, bool) {
	const tol = 1e-9
	l := e.layer(id)
	for i := range l.Xs {
		if math.Abs(l.Xs[i]-x) <= tol { return i, true }
	}

	for i := 0; i+1 < l.Len(); i++ {
		seg := geom.Segment{
			A: geom.Point{X: l.Xs[i], Z: l.Zs[i]},
			B: geom.Point{X: l.Xs[i+1], Z: l.Zs[i+1]},
		}
		z, ok := seg.ZAt(x)
		if !ok { continue }
		e.insert(id, i+1, x, z)
		return i + 1, true
	}
	return -1, false
}
