/*package io reads and writes the text files a forward model is built from
and reports its results through: layer and fault node files, observed data
files, predicted anomaly curves, RayInvr coordinate files and run
configuration files.

Every failure to read a data file is returned as a *failure.IOError.
*/
package io

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/phil-mansfield/table"

	"github.com/phil-mansfield/gravmag/failure"
)

// Polyline is a sequence of nodes read from a layer or fault file.
type Polyline struct {
	Xs, Zs []float64
}

// Len returns the number of nodes.
func (p *Polyline) Len() int { return len(p.Xs) }

/*
Layer files are plain text with two space separated columns, x and z, per
line. Blank lines and anything following a '#' are ignored. An aggregate
file holds several polylines, each one started by a line beginning with
'>'. Anything after the '>' is ignored.
*/

// ReadLayer reads a file containing a single polyline. It is an error for
// the file to contain segment markers.
func ReadLayer(fname string) (*Polyline, error) {
	ps, err := readPolylines(fname, false)
	if err != nil { return nil, err }
	return &ps[0], nil
}

// ReadLayers reads an aggregate file. Empty segments are an error.
func ReadLayers(fname string) ([]Polyline, error) {
	return readPolylines(fname, true)
}

func readPolylines(fname string, aggregate bool) ([]Polyline, error) {
	f, err := os.Open(fname)
	if err != nil { return nil, &failure.IOError{File: fname, Err: err} }
	defer f.Close()

	ps, err := parsePolylines(f, aggregate)
	if err != nil {
		var ioErr *failure.IOError
		if errors.As(err, &ioErr) {
			ioErr.File = fname
			return nil, ioErr
		}
		return nil, &failure.IOError{File: fname, Err: err}
	}
	return ps, nil
}

func parsePolylines(r io.Reader, aggregate bool) ([]Polyline, error) {
	ps := []Polyline{}
	segStart := 0
	scanner := bufio.NewScanner(r)
	for lineNum := 1; scanner.Scan(); lineNum++ {
		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 { line = line[:i] }
		line = strings.TrimSpace(line)
		if line == "" { continue }

		if line[0] == '>' {
			if !aggregate {
				return nil, &failure.IOError{Line: lineNum, Err: errors.New(
					"segment marker in a single layer file",
				)}
			} else if len(ps) > 0 && ps[len(ps)-1].Len() == 0 {
				return nil, &failure.IOError{Line: segStart, Err: errors.New(
					"segment has no nodes",
				)}
			}
			ps = append(ps, Polyline{})
			segStart = lineNum
			continue
		}

		if len(ps) == 0 { ps = append(ps, Polyline{}) }
		x, z, err := parseNode(line)
		if err != nil { return nil, &failure.IOError{Line: lineNum, Err: err} }
		p := &ps[len(ps)-1]
		p.Xs, p.Zs = append(p.Xs, x), append(p.Zs, z)
	}
	if err := scanner.Err(); err != nil { return nil, err }

	if len(ps) == 0 {
		return nil, errors.New("file contains no nodes")
	} else if ps[len(ps)-1].Len() == 0 {
		return nil, &failure.IOError{Line: segStart, Err: errors.New(
			"segment has no nodes",
		)}
	}
	return ps, nil
}

func parseNode(line string) (x, z float64, err error) {
	fields := strings.Fields(line)
	if len(fields) != 2 {
		return 0, 0, fmt.Errorf("expected 2 columns, found %d", len(fields))
	}
	if x, err = parseFinite(fields[0]); err != nil { return 0, 0, err }
	if z, err = parseFinite(fields[1]); err != nil { return 0, 0, err }
	return x, z, nil
}

func parseFinite(s string) (float64, error) {
	x, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("'%s' is not a number", s)
	} else if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0, fmt.Errorf("'%s' is not finite", s)
	}
	return x, nil
}

// ReadObserved reads the columns xCol and yCol, counted from zero, of an
// observed data file.
func ReadObserved(fname string, xCol, yCol int) (xs, ys []float64, err error) {
	if _, err := os.Stat(fname); err != nil {
		return nil, nil, &failure.IOError{File: fname, Err: err}
	}

	cols, err := table.ReadTable(fname, []int{xCol, yCol}, nil)
	if err != nil { return nil, nil, &failure.IOError{File: fname, Err: err} }

	xs, ys = cols[0], cols[1]
	if len(xs) == 0 {
		return nil, nil, &failure.IOError{
			File: fname, Err: errors.New("file contains no samples"),
		}
	} else if len(xs) != len(ys) {
		return nil, nil, &failure.IOError{File: fname, Err: fmt.Errorf(
			"column %d has %d rows, but column %d has %d",
			xCol, len(xs), yCol, len(ys),
		)}
	}
	for i := range xs {
		if !finite(xs[i]) || !finite(ys[i]) {
			return nil, nil, &failure.IOError{File: fname, Err: fmt.Errorf(
				"sample %d, (%g, %g), is not finite", i, xs[i], ys[i],
			)}
		}
	}
	return xs, ys, nil
}

// ReadStations reads the first column of a file as a list of observation
// points. The points must be finite and strictly increasing.
func ReadStations(fname string) ([]float64, error) {
	if _, err := os.Stat(fname); err != nil {
		return nil, &failure.IOError{File: fname, Err: err}
	}
	cols, err := table.ReadTable(fname, []int{0}, nil)
	if err != nil { return nil, &failure.IOError{File: fname, Err: err} }
	if len(cols[0]) == 0 {
		return nil, &failure.IOError{
			File: fname, Err: errors.New("file contains no stations"),
		}
	}
	xs := cols[0]
	for i := range xs {
		if !finite(xs[i]) {
			return nil, &failure.IOError{File: fname, Err: fmt.Errorf(
				"station %d, %g, is not finite", i, xs[i],
			)}
		} else if i > 0 && !(xs[i] > xs[i-1]) {
			return nil, &failure.IOError{File: fname, Err: fmt.Errorf(
				"stations must be strictly increasing, but station %d is %g "+
					"and station %d is %g", i-1, xs[i-1], i, xs[i],
			)}
		}
	}
	return xs, nil
}

func finite(x float64) bool { return !math.IsNaN(x) && !math.IsInf(x, 0) }
