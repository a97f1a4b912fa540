package io

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
)

// GardnerDensity is the density, in kg m^-3, at which WriteRayInvr's
// velocity conversion gives 1 km/s.
const GardnerDensity = 1670.0

// WriteCurve writes a curve as two space separated columns.
func WriteCurve(w io.Writer, xs, ys []float64) error {
	if len(xs) != len(ys) {
		panic(fmt.Sprintf("len(xs) = %d, but len(ys) = %d.", len(xs), len(ys)))
	}

	bw := bufio.NewWriter(w)
	for i := range xs {
		if _, err := fmt.Fprintf(bw, "%.6f %.6f\n", xs[i], ys[i]); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteCurveFile writes a curve to the named file, replacing it if it
// already exists.
func WriteCurveFile(fname string, xs, ys []float64) error {
	f, err := os.Create(fname)
	if err != nil { return err }
	if err := WriteCurve(f, xs, ys); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// RayInvrLayer is the part of a layer exported to RayInvr.
type RayInvrLayer struct {
	Xs, Zs []float64
	Density float64
}

// Velocity converts a density in kg m^-3 to a P-wave velocity in km/s.
func Velocity(rho float64) float64 {
	return math.Pow(rho/GardnerDensity, 4)
}

// WriteRayInvr writes the node coordinates of layers in the block format
// of a RayInvr c.in file, followed by a block of velocities for each layer
// derived from its density. Blocks are numbered from 1.
func WriteRayInvr(w io.Writer, layers []RayInvrLayer) error {
	bw := bufio.NewWriter(w)

	for i, l := range layers {
		if len(l.Xs) != len(l.Zs) {
			panic(fmt.Sprintf("Layer %d has %d x values but %d z values.",
				i+1, len(l.Xs), len(l.Zs)))
		}
		fmt.Fprintf(bw, "B  %d\n", i+1)
		for j := range l.Xs {
			fmt.Fprintf(bw, "%.6f %.6f 1\n", l.Xs[j], l.Zs[j])
		}
	}

	for i, l := range layers {
		v := Velocity(l.Density)
		fmt.Fprintf(bw, "B  %d\n", i+1)
		for j := range l.Xs {
			fmt.Fprintf(bw, "%.6f %.6f 1 %.6f 1\n", l.Xs[j], v, v)
		}
	}

	return bw.Flush()
}

// WriteRayInvrFile writes a RayInvr file to the named path.
func WriteRayInvrFile(fname string, layers []RayInvrLayer) error {
	f, err := os.Create(fname)
	if err != nil { return err }
	if err := WriteRayInvr(f, layers); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
