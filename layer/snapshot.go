package layer

import (
	"github.com/phil-mansfield/gravmag/failure"
)

// Snapshot is a plain copy of everything in a Stack, used to persist it.
type Snapshot struct {
	XMin, XMax, Pad      float64
	Layers               []Layer
	Faults               []Fault
	Pinches              [][2]Node
	NextLayer, NextFault int
}

// Snapshot copies the stack's contents.
func (s *Stack) Snapshot() Snapshot {
	return Snapshot{
		XMin: s.xMin, XMax: s.xMax, Pad: s.pad,
		Layers: s.Layers(), Faults: s.Faults(), Pinches: s.Pinches(),
		NextLayer: s.nextLayer, NextFault: s.nextFault,
	}
}

// FromSnapshot rebuilds a stack, checking that the snapshot describes a
// valid one: increasing ids starting at the surface layer, valid layer
// geometry and pinches between coincident nodes.
func FromSnapshot(snap Snapshot) (*Stack, error) {
	s, err := NewStack(snap.XMin, snap.XMax, snap.Pad)
	if err != nil { return nil, err }

	if len(snap.Layers) == 0 || snap.Layers[0].ID != Surface {
		return nil, failure.Geometry(-1, "snapshot has no surface layer")
	}
	s.layers = s.layers[:0]
	for i := range snap.Layers {
		l := snap.Layers[i].clone()
		if len(l.Xs) != len(l.Zs) {
			return nil, failure.Geometry(l.ID, "%d x values but %d z values",
				len(l.Xs), len(l.Zs))
		} else if i > 0 && l.ID <= snap.Layers[i-1].ID {
			return nil, failure.Geometry(l.ID, "layer ids aren't increasing")
		} else if l.ID >= snap.NextLayer {
			return nil, failure.Geometry(l.ID, "layer id isn't below the "+
				"next free id, %d", snap.NextLayer)
		}

		if l.Kind == Fixed {
			err = s.checkFixed(l)
		} else {
			err = checkFloating(l)
		}
		if err != nil { return nil, err }
		s.layers = append(s.layers, l)
	}

	for i := range snap.Faults {
		f := snap.Faults[i].clone()
		if i > 0 && f.ID <= snap.Faults[i-1].ID || f.ID >= snap.NextFault {
			return nil, failure.Geometry(-1, "fault id %d is out of order", f.ID)
		}
		s.faults = append(s.faults, f)
	}

	for _, p := range snap.Pinches {
		la, okA := s.node(p[0])
		lb, okB := s.node(p[1])
		if !okA || !okB || p[0].Layer == p[1].Layer {
			return nil, failure.Geometry(-1, "pinch %v-%v doesn't join two "+
				"existing nodes of different layers", p[0], p[1])
		}
		if la.Xs[p[0].Index] != lb.Xs[p[1].Index] ||
			la.Zs[p[0].Index] != lb.Zs[p[1].Index] {
			return nil, failure.Geometry(-1, "pinched nodes %v and %v don't "+
				"coincide", p[0], p[1])
		}
		s.pinches.link(p[0], p[1])
	}

	s.nextLayer, s.nextFault = snap.NextLayer, snap.NextFault
	return s, nil
}
