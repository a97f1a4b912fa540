/*package gravmag is a 2D potential-field forward modelling engine. A Model
holds the layers of a profile, the observed curves measured along it and the
observation grids, and Forward computes the gravity, magnetic and vertical
gravity gradient anomalies those layers predict, along with their misfit
against the observed curves.

A Model is owned by a single editor and isn't safe for concurrent use. The
kernels parallelize internally.
*/
package gravmag

import (
	"errors"

	"go.uber.org/zap"

	"github.com/phil-mansfield/gravmag/curve"
	"github.com/phil-mansfield/gravmag/failure"
	"github.com/phil-mansfield/gravmag/kernel"
	"github.com/phil-mansfield/gravmag/layer"
)

// Anomalies
const (
	Gravity  = kernel.Gravity
	Magnetic = kernel.Magnetic
	VGG      = kernel.VGG
)

// ErrNoObservations is recorded for an enabled anomaly whose observation
// grid is empty.
var ErrNoObservations = errors.New("gravmag: observation grid is empty")

// Grid is a line of observation points. Xs is in km and Elevation is in km
// with negative values above the profile line.
type Grid struct {
	Xs        []float64
	Elevation float64
}

func (g Grid) clone() Grid {
	return Grid{append([]float64(nil), g.Xs...), g.Elevation}
}

// Model is everything needed to run and compare a forward model.
type Model struct {
	Layers *layer.Stack
	Curves *curve.Store

	// GravityGrid is shared by the gravity and VGG anomalies.
	GravityGrid, MagneticGrid Grid
	// CalcPadding extends both observation grids by this many km on
	// either side, at the grid's end spacings.
	CalcPadding float64
	// Workers is passed on to the kernels.
	Workers int

	enabled    [kernel.EndAnomaly]bool
	references [kernel.EndAnomaly]int

	azimuth         float64
	overrideAzimuth bool

	results  [kernel.EndAnomaly]*Result
	computed uint64
	ran      bool

	log *zap.Logger
}

// NewModel creates a model of the profile [xMin, xMax] with fixed layers
// padded by pad km on either side. Gravity and magnetics are enabled.
func NewModel(xMin, xMax, pad float64) (*Model, error) {
	s, err := layer.NewStack(xMin, xMax, pad)
	if err != nil { return nil, err }
	return newModel(s, curve.NewStore()), nil
}

func newModel(s *layer.Stack, cs *curve.Store) *Model {
	m := &Model{Layers: s, Curves: cs, log: zap.NewNop()}
	m.enabled[Gravity], m.enabled[Magnetic] = true, true
	for a := range m.references { m.references[a] = -1 }
	return m
}

// Log sets the logger Forward reports through. A nil logger silences it.
func (m *Model) Log(logger *zap.Logger) {
	if logger == nil { logger = zap.NewNop() }
	m.log = logger
}

// Enable turns the calculation of an anomaly on or off.
func (m *Model) Enable(a kernel.Anomaly, on bool) { m.enabled[a] = on }

// Enabled returns true if the anomaly will be calculated.
func (m *Model) Enabled(a kernel.Anomaly) bool { return m.enabled[a] }

// Grid returns the observation grid used by the anomaly.
func (m *Model) Grid(a kernel.Anomaly) Grid {
	if a == Magnetic { return m.MagneticGrid }
	return m.GravityGrid
}

// SetReference makes the given curve the one the anomaly's misfit is
// measured against.
func (m *Model) SetReference(a kernel.Anomaly, id int) error {
	if !m.Curves.Has(id) { return failure.NotFound("curve", id) }
	m.references[a] = id
	return nil
}

// ClearReference leaves the anomaly without a reference curve.
func (m *Model) ClearReference(a kernel.Anomaly) { m.references[a] = -1 }

// Reference returns the id of the anomaly's reference curve. ok is false if
// it has none or the curve has since been deleted.
func (m *Model) Reference(a kernel.Anomaly) (id int, ok bool) {
	id = m.references[a]
	if id < 0 || !m.Curves.Has(id) { return -1, false }
	return id, true
}

// DeleteCurve deletes an observed curve and clears any reference to it.
func (m *Model) DeleteCurve(id int) error {
	if err := m.Curves.Delete(id); err != nil { return err }
	for a := range m.references {
		if m.references[a] == id { m.references[a] = -1 }
	}
	return nil
}

// SetAzimuth makes every magnetic body use the given profile azimuth, in
// degrees, in place of its own.
func (m *Model) SetAzimuth(deg float64) {
	m.azimuth, m.overrideAzimuth = deg, true
}

// ClearAzimuth returns to using each layer's own profile azimuth.
func (m *Model) ClearAzimuth() { m.azimuth, m.overrideAzimuth = 0, false }

// Azimuth returns the profile azimuth override. ok is false if there isn't
// one.
func (m *Model) Azimuth() (deg float64, ok bool) {
	return m.azimuth, m.overrideAzimuth
}

// Stale returns true if the layers have been edited since Forward last
// ran, or if it has never run.
func (m *Model) Stale() bool {
	return !m.ran || m.Layers.Version() != m.computed
}
