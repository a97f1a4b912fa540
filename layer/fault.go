package layer

import (
	"sort"

	"github.com/phil-mansfield/gravmag/failure"
)

// Fault is a polyline drawn on the model. Faults carry no physical
// properties and never take part in anomaly calculations.
type Fault struct {
	ID          int
	Name, Color string
	Xs, Zs      []float64
	Visible     bool
}

func (f *Fault) clone() *Fault {
	out := *f
	out.Xs = append([]float64(nil), f.Xs...)
	out.Zs = append([]float64(nil), f.Zs...)
	return &out
}

// AddFault adds a visible fault with at least three vertices and returns
// its id.
func (s *Stack) AddFault(name string, xs, zs []float64) (int, error) {
	if len(xs) != len(zs) {
		return -1, failure.Geometry(
			-1, "fault has %d x values but %d z values", len(xs), len(zs),
		)
	} else if len(xs) < 3 {
		return -1, failure.Geometry(
			-1, "faults need at least 3 vertices, not %d", len(xs),
		)
	}
	for i := range xs {
		if !finite(xs[i]) || !finite(zs[i]) {
			return -1, failure.Geometry(
				-1, "fault vertex %d at (%g, %g) is not finite", i, xs[i], zs[i],
			)
		}
	}

	f := &Fault{
		ID: s.nextFault, Name: name, Visible: true,
		Xs: append([]float64(nil), xs...), Zs: append([]float64(nil), zs...),
	}
	s.faults = append(s.faults, f)
	s.nextFault++
	s.touch()
	return f.ID, nil
}

// DeleteFault removes a fault.
func (s *Stack) DeleteFault(id int) error {
	i, ok := s.faultIndex(id)
	if !ok { return failure.NotFound("fault", id) }
	s.faults = append(s.faults[:i], s.faults[i+1:]...)
	s.touch()
	return nil
}

// SetFaultVisible shows or hides a fault.
func (s *Stack) SetFaultVisible(id int, visible bool) error {
	i, ok := s.faultIndex(id)
	if !ok { return failure.NotFound("fault", id) }
	s.faults[i].Visible = visible
	s.touch()
	return nil
}

// SetFaultColor sets the colour a fault is drawn in.
func (s *Stack) SetFaultColor(id int, color string) error {
	i, ok := s.faultIndex(id)
	if !ok { return failure.NotFound("fault", id) }
	s.faults[i].Color = color
	s.touch()
	return nil
}

// Faults returns copies of every fault in id order.
func (s *Stack) Faults() []Fault {
	out := make([]Fault, len(s.faults))
	for i, f := range s.faults { out[i] = *f.clone() }
	return out
}

func (s *Stack) faultIndex(id int) (int, bool) {
	i := sort.Search(len(s.faults), func(i int) bool {
		return s.faults[i].ID >= id
	})
	return i, i < len(s.faults) && s.faults[i].ID == id
}
