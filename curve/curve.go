/*package curve stores the observed data curves that predicted anomalies are
compared against.
*/
package curve

import (
	"fmt"
	"sort"

	"github.com/phil-mansfield/gravmag/failure"
)

// Kind says where a curve's samples came from.
type Kind int

const (
	Observed Kind = iota
	Filtered
	Derivative
	EndKind
)

func (k Kind) String() string {
	switch k {
	case Observed:
		return "observed"
	case Filtered:
		return "filtered"
	case Derivative:
		return "derivative"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, error) {
	for k := Observed; k < EndKind; k++ {
		if k.String() == s { return k, nil }
	}
	return 0, fmt.Errorf("Unrecognized curve kind '%s'.", s)
}

// Curve is a sampled 1D curve, y(x).
type Curve struct {
	ID int
	Label, Color string
	Kind Kind
	Xs, Ys []float64
}

// DerivativeAxis is true for curves which belong on a derivative axis
// rather than alongside the anomaly they were derived from.
func (c *Curve) DerivativeAxis() bool { return c.Kind == Derivative }

// Len returns the number of samples.
func (c *Curve) Len() int { return len(c.Xs) }

// Increasing returns true if the abscissae are strictly increasing.
func (c *Curve) Increasing() bool {
	for i := 1; i < len(c.Xs); i++ {
		if c.Xs[i] <= c.Xs[i-1] { return false }
	}
	return true
}

func (c *Curve) clone() *Curve {
	out := *c
	out.Xs = append([]float64(nil), c.Xs...)
	out.Ys = append([]float64(nil), c.Ys...)
	return &out
}

// Store owns a set of curves addressed by integer ids. Ids are handed out
// in increasing order and are never reused, even after deletion.
type Store struct {
	curves map[int]*Curve
	next int
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{curves: map[int]*Curve{}}
}

// Insert copies c into the store, assigns it a fresh id and returns that
// id. The ID field of c is ignored.
func (s *Store) Insert(c Curve) (int, error) {
	if len(c.Xs) != len(c.Ys) {
		return -1, fmt.Errorf(
			"Curve '%s' has %d x values but %d y values.",
			c.Label, len(c.Xs), len(c.Ys),
		)
	} else if c.Kind < 0 || c.Kind >= EndKind {
		return -1, fmt.Errorf("Curve '%s' has invalid kind %d.", c.Label, c.Kind)
	}

	stored := c.clone()
	stored.ID = s.next
	s.curves[stored.ID] = stored
	s.next++
	return stored.ID, nil
}

// Delete removes the curve with the given id.
func (s *Store) Delete(id int) error {
	if _, ok := s.curves[id]; !ok { return failure.NotFound("curve", id) }
	delete(s.curves, id)
	return nil
}

// Get returns a copy of the curve with the given id.
func (s *Store) Get(id int) (Curve, error) {
	c, ok := s.curves[id]
	if !ok { return Curve{}, failure.NotFound("curve", id) }
	return *c.clone(), nil
}

// Has returns true if a curve with the given id is stored.
func (s *Store) Has(id int) bool {
	_, ok := s.curves[id]
	return ok
}

// Len returns the number of stored curves.
func (s *Store) Len() int { return len(s.curves) }

// Next returns the id the next inserted curve will receive.
func (s *Store) Next() int { return s.next }

// IDs returns the ids of all stored curves in increasing order.
func (s *Store) IDs() []int {
	ids := make([]int, 0, len(s.curves))
	for id := range s.curves { ids = append(ids, id) }
	sort.Ints(ids)
	return ids
}

// Each calls f on a copy of every curve in id order. Iteration stops early
// if f returns false.
func (s *Store) Each(f func(c Curve) bool) {
	for _, id := range s.IDs() {
		if !f(*s.curves[id].clone()) { return }
	}
}

// Restore inserts each curve under its own id. It is used when rebuilding a store
// from a snapshot, so that ids survive the round trip. next is the id
// counter to resume from.
func (s *Store) Restore(cs []Curve, next int) error {
	for i := range cs {
		if _, ok := s.curves[cs[i].ID]; ok {
			return fmt.Errorf("Curve id %d restored twice.", cs[i].ID)
		} else if cs[i].ID >= next {
			return fmt.Errorf(
				"Curve id %d is not below the id counter %d.", cs[i].ID, next,
			)
		}
		s.curves[cs[i].ID] = cs[i].clone()
	}
	if next > s.next { s.next = next }
	return nil
}
