package io

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"gopkg.in/gcfg.v1"
)

const ExampleForwardFile = `[Model]

#######################
# Required Parameters #
#######################

# Limits of the profile in km. Fixed layers are padded past both of them.
XMin = 0
XMax = 200

# Observation grid for gravity (and the vertical gravity gradient) in km.
# Either give GravityFile, a two column file whose first column is used, or
# give the start, stop and spacing of a uniform grid.
GravityStart = 0
GravityStop = 200
GravitySpacing = 1

# Observation grid for magnetics, in the same format as above.
MagneticStart = 0
MagneticStop = 200
MagneticSpacing = 1

#######################
# Optional Parameters #
#######################

# GravityFile = gravity_stations.txt
# MagneticFile = magnetic_stations.txt

# Elevations of the observation lines in km, negative upwards.
# GravityElevation = 0
# MagneticElevation = -0.1

# Padding = 50000
# CalcPadding = 0

# Gravity = true
# Magnetic = true
# VGG = false

# Overrides the profile azimuth of every layer, in degrees.
# Azimuth = 45

# Workers = 0

# Relative paths, like the input files, are taken from this file's
# directory.
# OutputDir = .
# PlotFile = forward.png
# RayInvrFile = c.in
# SnapshotFile = model.bin

# Layers are stacked in order of Index. Fixed layer files list the interior
# nodes of the layer and are padded to the profile limits.
#
# [Layer "basement"]
# Index = 1
# Kind = fixed
# File = basement.txt
# Density = 2800
# ReferenceDensity = 2670
# Susceptibility = 0.001
# Inclination = 60
# Declination = 0
# Azimuth = 90
# Field = 50000
# Color = red
# Exclude = false
# NoGravity = false
# NoMagnetic = false
# NoVGG = false

# [Fault "main"]
# File = fault.txt
# Color = black
# Hidden = false

# Columns are counted from 1.
#
# [Observed "free air"]
# File = free_air.txt
# XColumn = 1
# YColumn = 2
# Reference = gravity
# Label = Free air anomaly
# Color = blue
# Resample = 1
# Median = 5
# Gaussian = 2
# Derivative = false`

// ModelConfig is the [Model] section of a forward modelling run.
type ModelConfig struct {
	// Required
	XMin, XMax float64

	// Required unless the matching file is given
	GravityStart, GravityStop, GravitySpacing float64
	MagneticStart, MagneticStop, MagneticSpacing float64

	// Optional
	GravityFile, MagneticFile string
	GravityElevation, MagneticElevation float64

	Padding, CalcPadding float64
	Gravity, Magnetic, VGG bool
	Azimuth float64
	Workers int

	OutputDir, PlotFile, RayInvrFile, SnapshotFile string
}

func (con *ModelConfig) ValidGravityFile() bool { return con.GravityFile != "" }
func (con *ModelConfig) ValidMagneticFile() bool { return con.MagneticFile != "" }
func (con *ModelConfig) ValidAzimuth() bool { return !math.IsNaN(con.Azimuth) }
func (con *ModelConfig) ValidPlotFile() bool { return con.PlotFile != "" }
func (con *ModelConfig) ValidRayInvrFile() bool { return con.RayInvrFile != "" }
func (con *ModelConfig) ValidSnapshotFile() bool { return con.SnapshotFile != "" }

func (con *ModelConfig) CheckInit() error {
	if !(con.XMax > con.XMin) {
		return fmt.Errorf(
			"XMax (%g) must be larger than XMin (%g).", con.XMax, con.XMin,
		)
	} else if !(con.Padding > 0) {
		return fmt.Errorf("Padding must be positive, but is %g.", con.Padding)
	} else if con.CalcPadding < 0 {
		return fmt.Errorf(
			"CalcPadding must be non-negative, but is %g.", con.CalcPadding,
		)
	} else if con.Workers < 0 {
		return fmt.Errorf("Workers must be non-negative, but is %d.", con.Workers)
	}

	if !con.ValidGravityFile() {
		err := checkGrid("Gravity", con.GravityStart,
			con.GravityStop, con.GravitySpacing)
		if err != nil { return err }
	}
	if !con.ValidMagneticFile() {
		err := checkGrid("Magnetic", con.MagneticStart,
			con.MagneticStop, con.MagneticSpacing)
		if err != nil { return err }
	}

	if con.OutputDir == "" { con.OutputDir = "." }
	return nil
}

func checkGrid(name string, start, stop, spacing float64) error {
	if !(spacing > 0) {
		return fmt.Errorf(
			"Need to specify a positive %sSpacing or a %sFile.", name, name,
		)
	} else if !(stop > start) {
		return fmt.Errorf(
			"%sStop (%g) must be larger than %sStart (%g).",
			name, stop, name, start,
		)
	}
	return nil
}

// GravityGrid returns the uniform gravity observation grid.
func (con *ModelConfig) GravityGrid() []float64 {
	return Grid(con.GravityStart, con.GravityStop, con.GravitySpacing)
}

// MagneticGrid returns the uniform magnetic observation grid.
func (con *ModelConfig) MagneticGrid() []float64 {
	return Grid(con.MagneticStart, con.MagneticStop, con.MagneticSpacing)
}

// Grid returns start, start + spacing, ... up to and including stop, give
// or take rounding error.
func Grid(start, stop, spacing float64) []float64 {
	n := int(math.Floor((stop-start)/spacing+1e-9)) + 1
	xs := make([]float64, n)
	for i := range xs { xs[i] = start + float64(i)*spacing }
	return xs
}

// LayerConfig is a [Layer "name"] section.
type LayerConfig struct {
	// Required
	Index int
	Kind, File string

	// Optional
	Density, ReferenceDensity float64
	Susceptibility float64
	Inclination, Declination, Azimuth, Field float64
	Color string
	Exclude bool
	NoGravity, NoMagnetic, NoVGG bool

	// Optional, "undocumented"
	Name string
}

func (con *LayerConfig) CheckInit(name string) error {
	if con.Index <= 0 {
		return fmt.Errorf(
			"Need to specify a positive Index for Layer '%s'.", name,
		)
	} else if con.File == "" {
		return fmt.Errorf("Need to specify a File for Layer '%s'.", name)
	}

	tmp := con.Kind
	con.Kind = strings.Trim(strings.ToLower(con.Kind), " ")
	if con.Kind != "fixed" && con.Kind != "floating" {
		return fmt.Errorf(
			"Kind of Layer '%s' must be one of [fixed | floating]. '%s' is "+
				"not recognized.", name, tmp,
		)
	}

	if con.Color == "" { con.Color = "black" }
	con.Name = name
	return nil
}

// FaultConfig is a [Fault "name"] section.
type FaultConfig struct {
	// Required
	File string

	// Optional
	Color string
	Hidden bool

	// Optional, "undocumented"
	Name string
}

func (con *FaultConfig) CheckInit(name string) error {
	if con.File == "" {
		return fmt.Errorf("Need to specify a File for Fault '%s'.", name)
	}
	if con.Color == "" { con.Color = "black" }
	con.Name = name
	return nil
}

// ObservedConfig is an [Observed "name"] section. Filters are applied in
// the order resample, median, Gaussian, derivative, and each one that is
// requested adds another curve.
type ObservedConfig struct {
	// Required
	File string

	// Optional
	XColumn, YColumn int
	Reference string
	Label, Color string
	Resample float64
	Median int
	Gaussian float64
	Derivative bool

	// Optional, "undocumented"
	Name string
}

func (con *ObservedConfig) ValidReference() bool { return con.Reference != "" }
func (con *ObservedConfig) ValidResample() bool { return con.Resample > 0 }
func (con *ObservedConfig) ValidMedian() bool { return con.Median > 0 }
func (con *ObservedConfig) ValidGaussian() bool { return con.Gaussian > 0 }

func (con *ObservedConfig) CheckInit(name string) error {
	if con.File == "" {
		return fmt.Errorf("Need to specify a File for Observed '%s'.", name)
	}

	if con.XColumn == 0 { con.XColumn = 1 }
	if con.YColumn == 0 { con.YColumn = 2 }
	if con.XColumn < 0 || con.YColumn < 0 || con.XColumn == con.YColumn {
		return fmt.Errorf(
			"Observed '%s' has invalid columns XColumn = %d, YColumn = %d.",
			name, con.XColumn, con.YColumn,
		)
	}

	con.Reference = strings.Trim(strings.ToLower(con.Reference), " ")
	switch con.Reference {
	case "", "gravity", "magnetic", "vgg":
	default:
		return fmt.Errorf(
			"Reference of Observed '%s' must be one of [gravity | magnetic "+
				"| vgg]. '%s' is not recognized.", name, con.Reference,
		)
	}

	if con.Median < 0 || (con.Median > 0 && con.Median%2 == 0) {
		return fmt.Errorf(
			"Median window of Observed '%s' must be odd and positive, "+
				"but is %d.", name, con.Median,
		)
	} else if con.Resample < 0 {
		return fmt.Errorf(
			"Resample step of Observed '%s' is negative.", name,
		)
	} else if con.Gaussian < 0 {
		return fmt.Errorf(
			"Gaussian width of Observed '%s' is negative.", name,
		)
	} else if con.Derivative && !con.ValidResample() {
		return fmt.Errorf(
			"Observed '%s' asks for a derivative, which needs a Resample step.",
			name,
		)
	}

	if con.Label == "" { con.Label = name }
	if con.Color == "" { con.Color = "black" }
	con.Name = name
	return nil
}

type ForwardConfig struct {
	Model ModelConfig
	Layer map[string]*LayerConfig
	Fault map[string]*FaultConfig
	Observed map[string]*ObservedConfig
}

func DefaultForwardConfig() *ForwardConfig {
	con := &ForwardConfig{}
	con.Model.Padding = 5e4
	con.Model.Gravity = true
	con.Model.Magnetic = true
	con.Model.Azimuth = math.NaN()
	return con
}

// ReadForwardConfig reads and checks a forward modelling config file. The
// sections of each kind are returned sorted: layers by Index, everything
// else by name.
func ReadForwardConfig(fname string) (*ForwardConfig, error) {
	con := DefaultForwardConfig()
	if err := gcfg.ReadFileInto(con, fname); err != nil {
		return nil, err
	}
	if err := con.CheckInit(); err != nil { return nil, err }
	return con, nil
}

func (con *ForwardConfig) CheckInit() error {
	if err := con.Model.CheckInit(); err != nil { return err }

	indices := map[int]string{}
	for name, l := range con.Layer {
		if err := l.CheckInit(name); err != nil { return err }
		if prev, ok := indices[l.Index]; ok {
			return fmt.Errorf(
				"Layers '%s' and '%s' both have Index %d.", prev, name, l.Index,
			)
		}
		indices[l.Index] = name
	}
	for name, f := range con.Fault {
		if err := f.CheckInit(name); err != nil { return err }
	}

	refs := map[string]string{}
	for name, o := range con.Observed {
		if err := o.CheckInit(name); err != nil { return err }
		if !o.ValidReference() { continue }
		if prev, ok := refs[o.Reference]; ok {
			return fmt.Errorf(
				"Observed '%s' and '%s' are both the %s reference.",
				prev, name, o.Reference,
			)
		}
		refs[o.Reference] = name
	}
	return nil
}

// Layers returns the layer sections sorted by Index.
func (con *ForwardConfig) Layers() []*LayerConfig {
	out := make([]*LayerConfig, 0, len(con.Layer))
	for _, l := range con.Layer { out = append(out, l) }
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}

// Faults returns the fault sections sorted by name.
func (con *ForwardConfig) Faults() []*FaultConfig {
	out := make([]*FaultConfig, 0, len(con.Fault))
	for _, f := range con.Fault { out = append(out, f) }
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// ObservedCurves returns the observed sections sorted by name.
func (con *ForwardConfig) ObservedCurves() []*ObservedConfig {
	out := make([]*ObservedConfig, 0, len(con.Observed))
	for _, o := range con.Observed { out = append(out, o) }
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
