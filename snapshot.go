package gravmag

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/phil-mansfield/gravmag/curve"
	"github.com/phil-mansfield/gravmag/kernel"
	"github.com/phil-mansfield/gravmag/layer"
)

/*
The binary format used for model snapshots is as follows:
    |-- 1 --||-- 2 --||-- ... 3 ... --||-- ... 4 ... --||-- ... 5 ... --|
    |-- ... 6 ... --||-- ... 7 ... --|

    1 - (int32) Flag indicating the endianness of the file. 0 indicates a
        little endian byte ordering and -1 indicates a big endian byte order.
    2 - (int32) Size of a snapshotHeader struct. Checked for consistency.
    3 - (snapshotHeader) Meta-information about the model.
    4 - Layers, each one a layerHeader followed by its name, its colour, its
        x nodes and its z nodes.
    5 - Faults, each one a faultHeader followed by its name, its colour and
        its nodes.
    6 - Pinches, each one an [4]int64 of layer, index, layer, index.
    7 - Curves, each one a curveHeader followed by its label, its colour and
        its samples, then the gravity and magnetic observation grids.

Strings are written as an int64 length followed by their bytes.
*/

const (
	// DefaultEndiannessFlag is the endianness Save writes with. Snapshots
	// of either endianness can be loaded.
	DefaultEndiannessFlag int32 = 0
	snapshotFormat int32 = 1
)

type snapshotHeader struct {
	Format int32
	XMin, XMax, Pad float64
	CalcPadding float64
	Workers int64

	Enabled [kernel.EndAnomaly]bool
	References [kernel.EndAnomaly]int64
	Azimuth float64
	OverrideAzimuth bool

	GravityElevation, MagneticElevation float64
	GravityPoints, MagneticPoints int64

	Layers, Faults, Pinches, Curves int64
	NextLayer, NextFault, NextCurve int64
}

type layerHeader struct {
	ID int64
	Kind int32
	Include bool
	Anomalies [kernel.EndAnomaly]bool
	Attr layer.Attributes
	Nodes int64
}

type faultHeader struct {
	ID int64
	Visible bool
	Nodes int64
}

type curveHeader struct {
	ID int64
	Kind int32
	Samples int64
}

func endianness(flag int32) (binary.ByteOrder, error) {
	switch flag {
	case 0:
		return binary.LittleEndian, nil
	case -1:
		return binary.BigEndian, nil
	}
	return nil, fmt.Errorf("Unrecognized endianness flag %d.", flag)
}

// Save writes a snapshot of the model's layers, faults, pinches, curves,
// observation grids and settings. Forward results aren't saved: rerunning
// Forward on the loaded model reproduces them exactly.
func Save(w io.Writer, m *Model) error {
	order, _ := endianness(DefaultEndiannessFlag)
	sw := &snapWriter{w: w, order: order}

	snap := m.Layers.Snapshot()
	hd := snapshotHeader{
		Format: snapshotFormat,
		XMin: snap.XMin, XMax: snap.XMax, Pad: snap.Pad,
		CalcPadding: m.CalcPadding, Workers: int64(m.Workers),
		Enabled: m.enabled,
		Azimuth: m.azimuth, OverrideAzimuth: m.overrideAzimuth,
		GravityElevation: m.GravityGrid.Elevation,
		MagneticElevation: m.MagneticGrid.Elevation,
		GravityPoints: int64(len(m.GravityGrid.Xs)),
		MagneticPoints: int64(len(m.MagneticGrid.Xs)),
		Layers: int64(len(snap.Layers)), Faults: int64(len(snap.Faults)),
		Pinches: int64(len(snap.Pinches)), Curves: int64(m.Curves.Len()),
		NextLayer: int64(snap.NextLayer), NextFault: int64(snap.NextFault),
		NextCurve: int64(m.Curves.Next()),
	}
	for a := range m.references { hd.References[a] = int64(m.references[a]) }

	sw.write(DefaultEndiannessFlag)
	sw.write(int32(binary.Size(&hd)))
	sw.write(&hd)

	for _, l := range snap.Layers {
		sw.write(&layerHeader{
			ID: int64(l.ID), Kind: int32(l.Kind), Include: l.Include,
			Anomalies: [kernel.EndAnomaly]bool{
				l.Anomalies.Gravity, l.Anomalies.Magnetic, l.Anomalies.VGG,
			},
			Attr: l.Attr, Nodes: int64(len(l.Xs)),
		})
		sw.writeString(l.Name)
		sw.writeString(l.Color)
		sw.write(l.Xs)
		sw.write(l.Zs)
	}

	for _, f := range snap.Faults {
		sw.write(&faultHeader{
			ID: int64(f.ID), Visible: f.Visible, Nodes: int64(len(f.Xs)),
		})
		sw.writeString(f.Name)
		sw.writeString(f.Color)
		sw.write(f.Xs)
		sw.write(f.Zs)
	}

	for _, p := range snap.Pinches {
		sw.write([4]int64{
			int64(p[0].Layer), int64(p[0].Index),
			int64(p[1].Layer), int64(p[1].Index),
		})
	}

	m.Curves.Each(func(c curve.Curve) bool {
		sw.write(&curveHeader{
			ID: int64(c.ID), Kind: int32(c.Kind), Samples: int64(len(c.Xs)),
		})
		sw.writeString(c.Label)
		sw.writeString(c.Color)
		sw.write(c.Xs)
		sw.write(c.Ys)
		return sw.err == nil
	})

	sw.write(m.GravityGrid.Xs)
	sw.write(m.MagneticGrid.Xs)
	return sw.err
}

// Load reads a model written by Save.
func Load(r io.Reader) (*Model, error) {
	var flag int32
	if err := binary.Read(r, binary.LittleEndian, &flag); err != nil {
		return nil, err
	}
	order, err := endianness(flag)
	if err != nil { return nil, err }
	sr := &snapReader{r: r, order: order}

	hd := snapshotHeader{}
	var size int32
	sr.read(&size)
	if sr.err != nil { return nil, sr.err }
	if int(size) != binary.Size(&hd) {
		return nil, fmt.Errorf(
			"Snapshot header is %d bytes, but should be %d bytes.",
			size, binary.Size(&hd),
		)
	}
	sr.read(&hd)
	if sr.err != nil { return nil, sr.err }
	if hd.Format != snapshotFormat {
		return nil, fmt.Errorf("Unrecognized snapshot format %d.", hd.Format)
	}
	counts := []int64{
		hd.Layers, hd.Faults, hd.Pinches, hd.Curves,
		hd.GravityPoints, hd.MagneticPoints,
	}
	for _, n := range counts {
		if n < 0 { return nil, fmt.Errorf("Snapshot has negative count %d.", n) }
	}

	snap := layer.Snapshot{
		XMin: hd.XMin, XMax: hd.XMax, Pad: hd.Pad,
		Layers: make([]layer.Layer, hd.Layers),
		Faults: make([]layer.Fault, hd.Faults),
		Pinches: make([][2]layer.Node, hd.Pinches),
		NextLayer: int(hd.NextLayer), NextFault: int(hd.NextFault),
	}

	for i := range snap.Layers {
		lh := layerHeader{}
		sr.read(&lh)
		l := &snap.Layers[i]
		l.ID, l.Kind, l.Include, l.Attr = int(lh.ID), layer.Kind(lh.Kind),
			lh.Include, lh.Attr
		l.Anomalies = layer.Participation{
			Gravity: lh.Anomalies[Gravity], Magnetic: lh.Anomalies[Magnetic],
			VGG: lh.Anomalies[VGG],
		}
		l.Name, l.Color = sr.readString(), sr.readString()
		l.Xs, l.Zs = sr.readFloats(lh.Nodes), sr.readFloats(lh.Nodes)
	}

	for i := range snap.Faults {
		fh := faultHeader{}
		sr.read(&fh)
		f := &snap.Faults[i]
		f.ID, f.Visible = int(fh.ID), fh.Visible
		f.Name, f.Color = sr.readString(), sr.readString()
		f.Xs, f.Zs = sr.readFloats(fh.Nodes), sr.readFloats(fh.Nodes)
	}

	for i := range snap.Pinches {
		p := [4]int64{}
		sr.read(&p)
		snap.Pinches[i] = [2]layer.Node{
			{Layer: int(p[0]), Index: int(p[1])},
			{Layer: int(p[2]), Index: int(p[3])},
		}
	}

	curves := make([]curve.Curve, hd.Curves)
	for i := range curves {
		ch := curveHeader{}
		sr.read(&ch)
		c := &curves[i]
		c.ID, c.Kind = int(ch.ID), curve.Kind(ch.Kind)
		c.Label, c.Color = sr.readString(), sr.readString()
		c.Xs, c.Ys = sr.readFloats(ch.Samples), sr.readFloats(ch.Samples)
	}

	gravXs := sr.readFloats(hd.GravityPoints)
	magXs := sr.readFloats(hd.MagneticPoints)
	if sr.err != nil { return nil, sr.err }

	s, err := layer.FromSnapshot(snap)
	if err != nil { return nil, err }
	cs := curve.NewStore()
	if err := cs.Restore(curves, int(hd.NextCurve)); err != nil {
		return nil, err
	}

	m := newModel(s, cs)
	m.CalcPadding, m.Workers = hd.CalcPadding, int(hd.Workers)
	m.enabled = hd.Enabled
	for a := range m.references { m.references[a] = int(hd.References[a]) }
	m.azimuth, m.overrideAzimuth = hd.Azimuth, hd.OverrideAzimuth
	m.GravityGrid = Grid{gravXs, hd.GravityElevation}
	m.MagneticGrid = Grid{magXs, hd.MagneticElevation}
	return m, nil
}

// snapWriter and snapReader hold on to the first error they hit and do
// nothing afterwards.

type snapWriter struct {
	w     io.Writer
	order binary.ByteOrder
	err   error
}

func (sw *snapWriter) write(x interface{}) {
	if sw.err != nil { return }
	sw.err = binary.Write(sw.w, sw.order, x)
}

func (sw *snapWriter) writeString(s string) {
	sw.write(int64(len(s)))
	sw.write([]byte(s))
}

type snapReader struct {
	r     io.Reader
	order binary.ByteOrder
	err   error
}

// maxSnapshotLen bounds the length of any one array or string in a
// snapshot.
const maxSnapshotLen = 1 << 28

func (sr *snapReader) read(x interface{}) {
	if sr.err != nil { return }
	sr.err = binary.Read(sr.r, sr.order, x)
}

func (sr *snapReader) length(n int64) bool {
	if sr.err != nil { return false }
	if n < 0 || n > maxSnapshotLen {
		sr.err = fmt.Errorf("Snapshot contains an array of length %d.", n)
		return false
	}
	return true
}

func (sr *snapReader) readString() string {
	var n int64
	sr.read(&n)
	if !sr.length(n) { return "" }
	buf := make([]byte, n)
	sr.read(buf)
	return string(buf)
}

func (sr *snapReader) readFloats(n int64) []float64 {
	if !sr.length(n) { return nil }
	xs := make([]float64, n)
	sr.read(xs)
	for _, x := range xs {
		if math.IsNaN(x) && sr.err == nil {
			sr.err = fmt.Errorf("Snapshot contains a NaN.")
		}
	}
	return xs
}
