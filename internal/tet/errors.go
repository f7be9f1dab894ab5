package tet

import (
	"errors"
	"fmt"
)

var (
	ErrVertexIndex  = errors.New("tet: vertex index out of range")
	ErrInvertedRest = errors.New("tet: inverted or degenerate rest element")
	ErrPositions    = errors.New("tet: position vector has wrong length")
	ErrBatch        = errors.New("tet: batch does not match mesh")
)

// ElementError reports a problem with one element of the mesh.
type ElementError struct {
	Element int
	Err     error
}

func (e *ElementError) Error() string {
	return fmt.Sprintf("tet: element %d: %v", e.Element, e.Err)
}

func (e *ElementError) Unwrap() error { return e.Err }
