/*package layer maintains the editable geometry of a profile model: a stack
of fixed and floating layers, the faults drawn on top of them, and the
pinches which hold nodes of different layers together.

Fixed layers span the whole profile. Each one is stored as an open polyline
whose first and last nodes sit at the left and right padding limits, and its
polygon is closed against the nearest fixed layer above it. Floating layers
are closed rings and are their own polygons.

All coordinates are in profile units (km), z positive down.
*/
package layer

import (
	"fmt"
)

const (
	// Epsilon is the depth fixed-layer nodes are clamped to so that
	// polygons stay below the profile line.
	Epsilon = 1e-3
	// DefaultPadding is how far fixed layers extend past either end of the
	// profile.
	DefaultPadding = 5e4
	// DepinchOffset is how far a released node is pushed down so that it
	// doesn't sit exactly on its former partner.
	DepinchOffset = 0.1
	// Surface is the id of the layer representing the profile line. It
	// can't be deleted and has no polygon.
	Surface = 0
)

// Kind distinguishes layers spanning the profile from closed bodies.
type Kind int

const (
	Fixed Kind = iota
	Floating
)

func (k Kind) String() string {
	switch k {
	case Fixed:
		return "fixed"
	case Floating:
		return "floating"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "fixed":
		return Fixed, nil
	case "floating":
		return Floating, nil
	}
	return 0, fmt.Errorf("Unrecognized layer kind '%s'.", s)
}

// State is the editing state of a layer.
type State int

const (
	Empty State = iota
	Editable
	Pinched
)

func (s State) String() string {
	switch s {
	case Empty:
		return "empty"
	case Editable:
		return "editable"
	case Pinched:
		return "pinched"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Attributes are the physical properties of a layer.
type Attributes struct {
	Density          float64 // kg m^-3
	ReferenceDensity float64 // kg m^-3
	Susceptibility   float64 // SI
	Inclination      float64 // degrees
	Declination      float64 // degrees
	Azimuth          float64 // degrees
	Field            float64 // nT
}

// DensityContrast returns Density - ReferenceDensity.
func (a Attributes) DensityContrast() float64 {
	return a.Density - a.ReferenceDensity
}

// Participation flags which anomalies a layer contributes to.
type Participation struct {
	Gravity, Magnetic, VGG bool
}

// All returns a Participation with every anomaly enabled.
func All() Participation { return Participation{true, true, true} }

// Layer is a snapshot of one layer of the stack. Values returned by Stack
// are copies; editing them has no effect on the stack.
type Layer struct {
	ID          int
	Name, Color string
	Kind        Kind
	Xs, Zs      []float64
	Attr        Attributes
	Include     bool
	Anomalies   Participation
}

// Len returns the number of nodes.
func (l *Layer) Len() int { return len(l.Xs) }

func (l *Layer) clone() *Layer {
	out := *l
	out.Xs = append([]float64(nil), l.Xs...)
	out.Zs = append([]float64(nil), l.Zs...)
	return &out
}

// Node identifies a single node of a single layer.
type Node struct {
	Layer, Index int
}

func (n Node) String() string { return fmt.Sprintf("(%d, %d)", n.Layer, n.Index) }

// Direction picks which neighbouring fixed layer a pinch snaps to.
type Direction int

const (
	Up Direction = iota
	Down
)
