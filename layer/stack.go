package layer

import (
	"math"
	"sort"

	"github.com/phil-mansfield/gravmag/failure"
	"github.com/phil-mansfield/gravmag/geom"
)

// Stack is the ordered collection of layers and faults making up a model.
// Layer ids are handed out in increasing order, never reused, and define
// the order in which layers are stacked and integrated.
//
// Every edit advances a version counter, which also keys the cache of
// assembled polygons.
type Stack struct {
	xMin, xMax, pad float64

	layers []*Layer // Sorted by ID.
	faults []*Fault // Sorted by ID.
	pinches pinchGraph

	nextLayer, nextFault int
	version uint64

	cache ringCache
}

// NewStack creates a stack for a profile running from xMin to xMax with the
// given padding. The stack starts with the surface layer, Surface, a fixed
// layer lying at depth Epsilon.
func NewStack(xMin, xMax, pad float64) (*Stack, error) {
	if !(xMax > xMin) || !finite(xMin) || !finite(xMax) {
		return nil, failure.Geometry(
			-1, "profile limits [%g, %g] are not increasing", xMin, xMax,
		)
	} else if !(pad > 0) || !finite(pad) {
		return nil, failure.Geometry(-1, "padding %g is not a finite, "+
			"positive number", pad)
	}

	s := &Stack{xMin: xMin, xMax: xMax, pad: pad, pinches: pinchGraph{}}
	surface := &Layer{
		ID: Surface, Name: "surface", Color: "black", Kind: Fixed,
		Xs: []float64{xMin - pad, xMin, xMax, xMax + pad},
		Zs: []float64{Epsilon, Epsilon, Epsilon, Epsilon},
		Include: false, Anomalies: All(),
	}
	s.layers = []*Layer{surface}
	s.nextLayer = 1
	return s, nil
}

// Limits returns the profile limits and the padding.
func (s *Stack) Limits() (xMin, xMax, pad float64) {
	return s.xMin, s.xMax, s.pad
}

// Version returns the edit counter. It increases on every change to the
// stack.
func (s *Stack) Version() uint64 { return s.version }

func (s *Stack) touch() { s.version++ }

// AppendFixed adds a fixed layer below every existing layer. xs and zs are
// the interior nodes: at least one, with strictly increasing x inside the
// padded profile. Nodes at the padding limits are added here, level with
// the first and last interior nodes. Depths at or above zero are clamped to
// Epsilon.
func (s *Stack) AppendFixed(name string, xs, zs []float64) (int, error) {
	id := s.nextLayer
	if len(xs) != len(zs) {
		return -1, failure.Geometry(
			id, "%d x values but %d z values", len(xs), len(zs),
		)
	} else if len(xs) < 1 {
		return -1, failure.Geometry(id, "fixed layers need at least one "+
			"interior node")
	}

	n := len(xs) + 2
	l := &Layer{
		ID: id, Name: name, Kind: Fixed,
		Xs: make([]float64, n), Zs: make([]float64, n),
		Include: true, Anomalies: All(),
	}
	copy(l.Xs[1:], xs)
	copy(l.Zs[1:], zs)
	l.Xs[0], l.Xs[n-1] = s.xMin-s.pad, s.xMax+s.pad
	for i := range l.Zs { l.Zs[i] = clampDepth(l.Zs[i]) }
	levelEnds(l)

	if err := s.checkFixed(l); err != nil { return -1, err }

	s.layers = append(s.layers, l)
	s.nextLayer++
	s.touch()
	return id, nil
}

// AppendFloating adds a floating layer whose polygon is the ring (xs, zs).
// The ring needs at least three distinct vertices.
func (s *Stack) AppendFloating(name string, xs, zs []float64) (int, error) {
	id := s.nextLayer
	if len(xs) != len(zs) {
		return -1, failure.Geometry(
			id, "%d x values but %d z values", len(xs), len(zs),
		)
	}

	l := &Layer{
		ID: id, Name: name, Kind: Floating,
		Xs: append([]float64(nil), xs...), Zs: append([]float64(nil), zs...),
		Include: true, Anomalies: All(),
	}
	if err := checkFloating(l); err != nil { return -1, err }

	s.layers = append(s.layers, l)
	s.nextLayer++
	s.touch()
	return id, nil
}

// Delete removes a layer along with every pinch it takes part in. The
// surface layer can't be deleted.
func (s *Stack) Delete(id int) error {
	if id == Surface {
		return failure.Geometry(id, "the surface layer can't be deleted")
	}
	i, ok := s.index(id)
	if !ok { return failure.NotFound("layer", id) }

	s.pinches.dropLayer(id)
	s.layers = append(s.layers[:i], s.layers[i+1:]...)
	s.touch()
	return nil
}

// Layer returns a copy of the layer with the given id.
func (s *Stack) Layer(id int) (Layer, error) {
	l, ok := s.get(id)
	if !ok { return Layer{}, failure.NotFound("layer", id) }
	return *l.clone(), nil
}

// Layers returns copies of every layer in id order.
func (s *Stack) Layers() []Layer {
	out := make([]Layer, len(s.layers))
	for i, l := range s.layers { out[i] = *l.clone() }
	return out
}

// IDs returns the layer ids in stacking order.
func (s *Stack) IDs() []int {
	ids := make([]int, len(s.layers))
	for i, l := range s.layers { ids[i] = l.ID }
	return ids
}

// Len returns the number of layers, including the surface.
func (s *Stack) Len() int { return len(s.layers) }

// State returns the editing state of a layer.
func (s *Stack) State(id int) (State, error) {
	l, ok := s.get(id)
	if !ok { return Empty, failure.NotFound("layer", id) }
	switch {
	case l.Len() == 0:
		return Empty, nil
	case len(s.pinches.layerPartners(id)) > 0:
		return Pinched, nil
	}
	return Editable, nil
}

// SetAttributes replaces the physical properties of a layer.
func (s *Stack) SetAttributes(id int, attr Attributes) error {
	return s.update(id, func(l *Layer) { l.Attr = attr })
}

// SetIncluded sets whether a layer takes part in calculations at all.
func (s *Stack) SetIncluded(id int, include bool) error {
	return s.update(id, func(l *Layer) { l.Include = include })
}

// SetParticipation sets which anomalies a layer contributes to.
func (s *Stack) SetParticipation(id int, p Participation) error {
	return s.update(id, func(l *Layer) { l.Anomalies = p })
}

// Rename changes a layer's name.
func (s *Stack) Rename(id int, name string) error {
	return s.update(id, func(l *Layer) { l.Name = name })
}

// SetColor changes a layer's display colour.
func (s *Stack) SetColor(id int, color string) error {
	return s.update(id, func(l *Layer) { l.Color = color })
}

func (s *Stack) update(id int, f func(l *Layer)) error {
	l, ok := s.get(id)
	if !ok { return failure.NotFound("layer", id) }
	f(l)
	s.touch()
	return nil
}

func (s *Stack) index(id int) (int, bool) {
	i := sort.Search(len(s.layers), func(i int) bool {
		return s.layers[i].ID >= id
	})
	return i, i < len(s.layers) && s.layers[i].ID == id
}

func (s *Stack) get(id int) (*Layer, bool) {
	i, ok := s.index(id)
	if !ok { return nil, false }
	return s.layers[i], true
}

// neighbourFixed returns the nearest fixed layer above (Up) or below (Down)
// the layer with the given id.
func (s *Stack) neighbourFixed(id int, dir Direction) (*Layer, bool) {
	i, ok := s.index(id)
	if !ok { return nil, false }

	if dir == Up {
		for j := i - 1; j >= 0; j-- {
			if s.layers[j].Kind == Fixed { return s.layers[j], true }
		}
	} else {
		for j := i + 1; j < len(s.layers); j++ {
			if s.layers[j].Kind == Fixed { return s.layers[j], true }
		}
	}
	return nil, false
}

// checkFixed verifies the ordering invariants of a fixed layer.
func (s *Stack) checkFixed(l *Layer) error {
	n := l.Len()
	if n < 3 {
		return failure.Geometry(l.ID, "fixed layers need at least one "+
			"interior node")
	}
	if err := checkFinite(l); err != nil { return err }

	if l.Xs[0] != s.xMin-s.pad || l.Xs[n-1] != s.xMax+s.pad {
		return failure.Geometry(l.ID, "end nodes must sit at the padding "+
			"limits %g and %g", s.xMin-s.pad, s.xMax+s.pad)
	}
	for i := 1; i < n; i++ {
		if !(l.Xs[i] > l.Xs[i-1]) {
			return failure.Geometry(l.ID, "x values must be strictly "+
				"increasing, but node %d is at %g and node %d at %g",
				i-1, l.Xs[i-1], i, l.Xs[i])
		}
	}
	return nil
}

func checkFloating(l *Layer) error {
	if err := checkFinite(l); err != nil { return err }
	pts := points(l)
	if geom.DistinctCount(pts) < 3 {
		return failure.Geometry(l.ID, "floating layers need at least 3 "+
			"distinct vertices, not %d", geom.DistinctCount(pts))
	}
	return nil
}

func checkFinite(l *Layer) error {
	for i := range l.Xs {
		if !finite(l.Xs[i]) || !finite(l.Zs[i]) {
			return failure.Geometry(l.ID, "node %d at (%g, %g) is not finite",
				i, l.Xs[i], l.Zs[i])
		}
	}
	return nil
}

func points(l *Layer) []geom.Point {
	pts := make([]geom.Point, l.Len())
	for i := range pts { pts[i] = geom.Point{X: l.Xs[i], Z: l.Zs[i]} }
	return pts
}

// levelEnds makes the padding segments of a fixed layer flat.
func levelEnds(l *Layer) {
	if l.Kind != Fixed || l.Len() < 3 { return }
	n := l.Len()
	l.Zs[0], l.Zs[n-1] = l.Zs[1], l.Zs[n-2]
}

func clampDepth(z float64) float64 {
	if z <= 0 { return Epsilon }
	return z
}

func finite(x float64) bool { return !math.IsNaN(x) && !math.IsInf(x, 0) }
