package gravmag

import (
	"fmt"
	"path/filepath"

	"github.com/phil-mansfield/gravmag/curve"
	"github.com/phil-mansfield/gravmag/io"
	"github.com/phil-mansfield/gravmag/kernel"
	"github.com/phil-mansfield/gravmag/layer"
)

// FromConfig builds a model from a checked run configuration. Relative file
// names are taken relative to dir.
func FromConfig(con *io.ForwardConfig, dir string) (*Model, error) {
	mc := &con.Model
	m, err := NewModel(mc.XMin, mc.XMax, mc.Padding)
	if err != nil { return nil, err }

	m.CalcPadding, m.Workers = mc.CalcPadding, mc.Workers
	m.Enable(Gravity, mc.Gravity)
	m.Enable(Magnetic, mc.Magnetic)
	m.Enable(VGG, mc.VGG)
	if mc.ValidAzimuth() { m.SetAzimuth(mc.Azimuth) }

	m.GravityGrid.Elevation = mc.GravityElevation
	if mc.ValidGravityFile() {
		m.GravityGrid.Xs, err = io.ReadStations(path(dir, mc.GravityFile))
		if err != nil { return nil, err }
	} else {
		m.GravityGrid.Xs = mc.GravityGrid()
	}
	m.MagneticGrid.Elevation = mc.MagneticElevation
	if mc.ValidMagneticFile() {
		m.MagneticGrid.Xs, err = io.ReadStations(path(dir, mc.MagneticFile))
		if err != nil { return nil, err }
	} else {
		m.MagneticGrid.Xs = mc.MagneticGrid()
	}

	for _, lc := range con.Layers() {
		if err := m.addLayer(lc, dir); err != nil { return nil, err }
	}

	for _, fc := range con.Faults() {
		p, err := io.ReadLayer(path(dir, fc.File))
		if err != nil { return nil, err }
		id, err := m.Layers.AddFault(fc.Name, p.Xs, p.Zs)
		if err != nil { return nil, fmt.Errorf("fault '%s': %w", fc.Name, err) }
		if err := m.Layers.SetFaultVisible(id, !fc.Hidden); err != nil {
			return nil, err
		}
		if err := m.Layers.SetFaultColor(id, fc.Color); err != nil {
			return nil, err
		}
	}

	for _, oc := range con.ObservedCurves() {
		if err := m.addObserved(oc, dir); err != nil { return nil, err }
	}

	return m, nil
}

func (m *Model) addLayer(lc *io.LayerConfig, dir string) error {
	p, err := io.ReadLayer(path(dir, lc.File))
	if err != nil { return err }

	kind, err := layer.ParseKind(lc.Kind)
	if err != nil { return err }

	var id int
	if kind == layer.Fixed {
		id, err = m.Layers.AppendFixed(lc.Name, p.Xs, p.Zs)
	} else {
		id, err = m.Layers.AppendFloating(lc.Name, p.Xs, p.Zs)
	}
	if err != nil { return fmt.Errorf("layer '%s': %w", lc.Name, err) }

	attr := layer.Attributes{
		Density: lc.Density, ReferenceDensity: lc.ReferenceDensity,
		Susceptibility: lc.Susceptibility,
		Inclination: lc.Inclination, Declination: lc.Declination,
		Azimuth: lc.Azimuth, Field: lc.Field,
	}
	part := layer.Participation{
		Gravity: !lc.NoGravity, Magnetic: !lc.NoMagnetic, VGG: !lc.NoVGG,
	}

	if err := m.Layers.SetAttributes(id, attr); err != nil { return err }
	if err := m.Layers.SetParticipation(id, part); err != nil { return err }
	if err := m.Layers.SetIncluded(id, !lc.Exclude); err != nil { return err }
	return m.Layers.SetColor(id, lc.Color)
}

func (m *Model) addObserved(oc *io.ObservedConfig, dir string) error {
	xs, ys, err := io.ReadObserved(path(dir, oc.File), oc.XColumn-1, oc.YColumn-1)
	if err != nil { return err }

	id, err := m.Curves.Insert(curve.Curve{
		Label: oc.Label, Color: oc.Color, Kind: curve.Observed, Xs: xs, Ys: ys,
	})
	if err != nil { return err }

	if oc.ValidResample() {
		if id, err = m.Resample(id, oc.Resample); err != nil { return err }
	}
	if oc.ValidMedian() {
		if id, err = m.MedianFilter(id, oc.Median); err != nil { return err }
	}
	if oc.ValidGaussian() {
		if id, err = m.GaussianFilter(id, oc.Gaussian); err != nil { return err }
	}
	if oc.Derivative {
		if id, err = m.Derivative(id, oc.Resample); err != nil { return err }
	}

	if oc.ValidReference() {
		a, err := kernel.ParseAnomaly(oc.Reference)
		if err != nil { return err }
		return m.SetReference(a, id)
	}
	return nil
}

// RayInvrLayers returns every layer below the surface in the form written
// to RayInvr files.
func (m *Model) RayInvrLayers() []io.RayInvrLayer {
	out := []io.RayInvrLayer{}
	for _, l := range m.Layers.Layers() {
		if l.ID == layer.Surface { continue }
		out = append(out, io.RayInvrLayer{
			Xs: l.Xs, Zs: l.Zs, Density: l.Attr.Density,
		})
	}
	return out
}

func path(dir, fname string) string {
	if dir == "" || filepath.IsAbs(fname) { return fname }
	return filepath.Join(dir, fname)
}
