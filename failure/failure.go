/*package failure contains the error kinds shared by every gravmag package.

Each typed error matches exactly one sentinel through errors.Is, so callers
can branch on the kind without caring which package produced it.
*/
package failure

import (
	"errors"
	"fmt"
)

var (
	// ErrGeometry is matched by errors describing polygons which cannot be
	// built or used: rings with fewer than three distinct vertices, broken
	// node ordering, or bodies lying above the observation plane.
	ErrGeometry = errors.New("gravmag: invalid geometry")
	// ErrNumerical is matched when a kernel accumulator becomes NaN or Inf.
	ErrNumerical = errors.New("gravmag: non-finite value in kernel")
	// ErrIO is matched by missing or malformed data files.
	ErrIO = errors.New("gravmag: data file error")
	// ErrNotFound is matched when a layer, fault, node or curve id does
	// not exist.
	ErrNotFound = errors.New("gravmag: not found")
)

// GeometryError reports an unusable shape. Layer is -1 when the shape isn't
// associated with a layer.
type GeometryError struct {
	Layer  int
	Reason string
}

func (e *GeometryError) Error() string {
	if e.Layer < 0 {
		return fmt.Sprintf("geometry: %s", e.Reason)
	}
	return fmt.Sprintf("geometry of layer %d: %s", e.Layer, e.Reason)
}

func (e *GeometryError) Is(target error) bool { return target == ErrGeometry }

// Geometry is shorthand for building a GeometryError.
func Geometry(layer int, format string, args ...interface{}) error {
	return &GeometryError{Layer: layer, Reason: fmt.Sprintf(format, args...)}
}

// NumericalError identifies the polygon and observation point at which a
// kernel first produced a non-finite value.
type NumericalError struct {
	Anomaly     string
	Polygon     int
	Observation int
	Value       float64
}

func (e *NumericalError) Error() string {
	return fmt.Sprintf(
		"%s kernel produced %g at polygon %d, observation %d",
		e.Anomaly, e.Value, e.Polygon, e.Observation,
	)
}

func (e *NumericalError) Is(target error) bool { return target == ErrNumerical }

// IOError wraps a failure to read or parse a data file. Line is 1-indexed
// and zero when the problem isn't tied to a line.
type IOError struct {
	File string
	Line int
	Err  error
}

func (e *IOError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Err.Error())
	}
	return fmt.Sprintf("%s: %s", e.File, e.Err.Error())
}

func (e *IOError) Is(target error) bool { return target == ErrIO }
func (e *IOError) Unwrap() error        { return e.Err }

// NotFoundError reports a missing identifier. What names the kind of thing
// being looked up ("layer", "curve", ...).
type NotFoundError struct {
	What string
	ID   int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d does not exist", e.What, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// NotFound is shorthand for building a NotFoundError.
func NotFound(what string, id int) error {
	return &NotFoundError{What: what, ID: id}
}
