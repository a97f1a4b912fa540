package io

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phil-mansfield/gravmag/failure"
)

func writeFile(t *testing.T, name, text string) string {
	fname := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(fname, []byte(text), 0644))
	return fname
}

func TestReadLayer(t *testing.T) {
	fname := writeFile(t, "layer.txt", `# x z
10 5.5
  20   6 # comment

30 7.25
`)
	p, err := ReadLayer(fname)
	require.NoError(t, err)
	assert.Equal(t, []float64{10, 20, 30}, p.Xs)
	assert.Equal(t, []float64{5.5, 6, 7.25}, p.Zs)
}

func TestReadLayers(t *testing.T) {
	fname := writeFile(t, "all.txt", `> first
0 1
1 1
2 1
> second
0 2
1 3
`)
	ps, err := ReadLayers(fname)
	require.NoError(t, err)
	require.Len(t, ps, 2)
	assert.Equal(t, 3, ps[0].Len())
	assert.Equal(t, []float64{2, 3}, ps[1].Zs)
}

func TestReadLayerErrors(t *testing.T) {
	table := []struct {
		text string
		line int
	}{
		{"1 2\n3\n", 2},
		{"1 2\n3 4 5\n", 2},
		{"1 2\nfoo 4\n", 2},
		{"1 2\n3 NaN\n", 2},
		{"1 2\n3 +Inf\n", 2},
		{"1 2\n> marker\n3 4\n", 2},
		{"# nothing\n", 0},
	}

	for i, test := range table {
		fname := writeFile(t, "bad.txt", test.text)
		_, err := ReadLayer(fname)
		var ioErr *failure.IOError
		if !errors.As(err, &ioErr) {
			t.Errorf("%d) Expected an IOError. Got %v.", i, err)
			continue
		}
		if ioErr.Line != test.line {
			t.Errorf("%d) Expected line %d. Got %d.", i, test.line, ioErr.Line)
		}
		if ioErr.File != fname {
			t.Errorf("%d) Expected file %s. Got %s.", i, fname, ioErr.File)
		}
		assert.True(t, errors.Is(err, failure.ErrIO))
	}

	_, err := ReadLayers(writeFile(t, "empty.txt", "> a\n> b\n1 2\n"))
	assert.ErrorIs(t, err, failure.ErrIO)
	_, err = ReadLayers(writeFile(t, "trailing.txt", "> a\n1 2\n> b\n"))
	assert.ErrorIs(t, err, failure.ErrIO)

	_, err = ReadLayer(filepath.Join(t.TempDir(), "missing.txt"))
	assert.ErrorIs(t, err, failure.ErrIO)
}

func TestReadObserved(t *testing.T) {
	fname := writeFile(t, "obs.txt", "0 1.5 9\n1 2.5 9\n2 3.5 9\n")
	xs, ys, err := ReadObserved(fname, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1, 2}, xs)
	assert.Equal(t, []float64{1.5, 2.5, 3.5}, ys)

	_, _, err = ReadObserved(filepath.Join(t.TempDir(), "missing.txt"), 0, 1)
	assert.ErrorIs(t, err, failure.ErrIO)

	stations, err := ReadStations(fname)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1, 2}, stations)
}

func TestReadStationsErrors(t *testing.T) {
	table := []string{
		"0\n1\n1\n2\n",
		"3\n2\n1\n",
	}
	for i, text := range table {
		fname := writeFile(t, fmt.Sprintf("stations%d.txt", i), text)
		_, err := ReadStations(fname)
		if !errors.Is(err, failure.ErrIO) {
			t.Errorf("%d) Expected an IOError. Got %v.", i, err)
		}
	}
}

func TestWriteCurve(t *testing.T) {
	buf := &bytes.Buffer{}
	require.NoError(t, WriteCurve(buf, []float64{0, 1.5}, []float64{-2, 1.0/3}))
	assert.Equal(t, "0.000000 -2.000000\n1.500000 0.333333\n", buf.String())

	fname := filepath.Join(t.TempDir(), "curve.txt")
	require.NoError(t, WriteCurveFile(fname, []float64{1}, []float64{2}))
	text, err := os.ReadFile(fname)
	require.NoError(t, err)
	assert.Equal(t, "1.000000 2.000000\n", string(text))
}

func TestWriteRayInvr(t *testing.T) {
	buf := &bytes.Buffer{}
	layers := []RayInvrLayer{
		{Xs: []float64{0, 10}, Zs: []float64{1, 2}, Density: 1670},
		{Xs: []float64{0}, Zs: []float64{3}, Density: 3340},
	}
	require.NoError(t, WriteRayInvr(buf, layers))

	expected := strings.Join([]string{
		"B  1",
		"0.000000 1.000000 1",
		"10.000000 2.000000 1",
		"B  2",
		"0.000000 3.000000 1",
		"B  1",
		"0.000000 1.000000 1 1.000000 1",
		"10.000000 1.000000 1 1.000000 1",
		"B  2",
		"0.000000 16.000000 1 16.000000 1",
	}, "\n") + "\n"
	assert.Equal(t, expected, buf.String())
}

func TestGrid(t *testing.T) {
	table := []struct {
		start, stop, spacing float64
		n                    int
	}{
		{0, 200, 1, 201},
		{42, 58, 0.1, 161},
		{0, 1, 0.3, 4},
	}
	for i, test := range table {
		xs := Grid(test.start, test.stop, test.spacing)
		if len(xs) != test.n {
			t.Errorf("%d) Expected %d points. Got %d.", i, test.n, len(xs))
			continue
		}
		if xs[0] != test.start {
			t.Errorf("%d) Expected xs[0] = %g. Got %g.", i, test.start, xs[0])
		}
	}
}

func TestExampleForwardFile(t *testing.T) {
	fname := writeFile(t, "example.ini", ExampleForwardFile)
	con, err := ReadForwardConfig(fname)
	require.NoError(t, err)

	assert.Equal(t, 0.0, con.Model.XMin)
	assert.Equal(t, 200.0, con.Model.XMax)
	assert.Equal(t, 5e4, con.Model.Padding)
	assert.True(t, con.Model.Gravity)
	assert.True(t, con.Model.Magnetic)
	assert.False(t, con.Model.VGG)
	assert.False(t, con.Model.ValidAzimuth())
	assert.Equal(t, ".", con.Model.OutputDir)
	assert.Len(t, con.Model.GravityGrid(), 201)
	assert.Len(t, con.Layers(), 0)
}

const testConfig = `[Model]
XMin = 0
XMax = 100
GravityStart = 0
GravityStop = 100
GravitySpacing = 1
MagneticFile = stations.txt
MagneticElevation = -0.1
VGG = true
Magnetic = false
Azimuth = 45

[Layer "lower"]
Index = 2
Kind = Fixed
File = lower.txt
Density = 2800
ReferenceDensity = 2670

[Layer "upper"]
Index = 1
Kind = floating
File = upper.txt
Susceptibility = 0.001
NoVGG = true

[Fault "f"]
File = f.txt
Hidden = true

[Observed "grav"]
File = grav.txt
Reference = Gravity
Median = 3
`

func TestReadForwardConfig(t *testing.T) {
	fname := writeFile(t, "run.ini", testConfig)
	con, err := ReadForwardConfig(fname)
	require.NoError(t, err)

	assert.True(t, con.Model.VGG)
	assert.False(t, con.Model.Magnetic)
	assert.True(t, con.Model.ValidAzimuth())
	assert.Equal(t, 45.0, con.Model.Azimuth)
	assert.True(t, con.Model.ValidMagneticFile())

	layers := con.Layers()
	require.Len(t, layers, 2)
	assert.Equal(t, "upper", layers[0].Name)
	assert.Equal(t, "floating", layers[0].Kind)
	assert.True(t, layers[0].NoVGG)
	assert.Equal(t, "fixed", layers[1].Kind)
	assert.Equal(t, 2800.0, layers[1].Density)

	faults := con.Faults()
	require.Len(t, faults, 1)
	assert.True(t, faults[0].Hidden)

	obs := con.ObservedCurves()
	require.Len(t, obs, 1)
	assert.Equal(t, "gravity", obs[0].Reference)
	assert.Equal(t, 1, obs[0].XColumn)
	assert.Equal(t, 2, obs[0].YColumn)
	assert.Equal(t, "grav", obs[0].Label)
}

func TestForwardConfigErrors(t *testing.T) {
	valid := func() *ForwardConfig {
		con := DefaultForwardConfig()
		con.Model.XMax = 10
		con.Model.GravitySpacing, con.Model.GravityStop = 1, 10
		con.Model.MagneticSpacing, con.Model.MagneticStop = 1, 10
		return con
	}
	require.NoError(t, valid().CheckInit())

	table := []func(con *ForwardConfig){
		func(con *ForwardConfig) { con.Model.XMax = -1 },
		func(con *ForwardConfig) { con.Model.Padding = 0 },
		func(con *ForwardConfig) { con.Model.GravitySpacing = 0 },
		func(con *ForwardConfig) { con.Model.MagneticStop = -3 },
		func(con *ForwardConfig) {
			con.Layer = map[string]*LayerConfig{"a": {Index: 1, Kind: "fixed"}}
		},
		func(con *ForwardConfig) {
			con.Layer = map[string]*LayerConfig{"a": {Index: 1, Kind: "odd", File: "a"}}
		},
		func(con *ForwardConfig) {
			con.Layer = map[string]*LayerConfig{
				"a": {Index: 1, Kind: "fixed", File: "a"},
				"b": {Index: 1, Kind: "fixed", File: "b"},
			}
		},
		func(con *ForwardConfig) {
			con.Observed = map[string]*ObservedConfig{"a": {File: "a", Median: 4}}
		},
		func(con *ForwardConfig) {
			con.Observed = map[string]*ObservedConfig{
				"a": {File: "a", Reference: "gravity"},
				"b": {File: "b", Reference: "gravity"},
			}
		},
		func(con *ForwardConfig) {
			con.Observed = map[string]*ObservedConfig{"a": {File: "a", Derivative: true}}
		},
		func(con *ForwardConfig) {
			con.Observed = map[string]*ObservedConfig{"a": {File: "a", Reference: "tilt"}}
		},
	}

	for i, breakIt := range table {
		con := valid()
		breakIt(con)
		if err := con.CheckInit(); err == nil {
			t.Errorf("%d) Expected an error.", i)
		}
	}
}

func TestVelocity(t *testing.T) {
	assert.Equal(t, 1.0, Velocity(GardnerDensity))
	assert.InDelta(t, math.Pow(2670.0/1670, 4), Velocity(2670), 1e-12)
}
