package failure

import (
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKinds(t *testing.T) {
	table := []struct {
		err      error
		sentinel error
	}{
		{Geometry(3, "only %d distinct vertices", 2), ErrGeometry},
		{&NumericalError{"gravity", 1, 4, 0}, ErrNumerical},
		{&IOError{"a.txt", 2, os.ErrNotExist}, ErrIO},
		{NotFound("curve", 7), ErrNotFound},
	}

	all := []error{ErrGeometry, ErrNumerical, ErrIO, ErrNotFound}
	for i, test := range table {
		wrapped := fmt.Errorf("context: %w", test.err)
		for _, s := range all {
			if errors.Is(wrapped, s) != (s == test.sentinel) {
				t.Errorf("%d) Expected errors.Is(%v, %v) = %v.",
					i, wrapped, s, s == test.sentinel)
			}
		}
	}
}

func TestIOErrorUnwrap(t *testing.T) {
	err := &IOError{File: "obs.txt", Err: os.ErrNotExist}
	assert.True(t, errors.Is(err, os.ErrNotExist))
	assert.Equal(t, "obs.txt: file does not exist", err.Error())

	err.Line = 12
	assert.Equal(t, "obs.txt:12: file does not exist", err.Error())
}

func TestGeometryMessage(t *testing.T) {
	assert.Equal(t, "geometry of layer 2: open ring",
		Geometry(2, "open ring").Error())
	assert.Equal(t, "geometry: open ring", Geometry(-1, "open ring").Error())
}
