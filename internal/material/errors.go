package material

import (
	"errors"
	"fmt"
)

var (
	// ErrNameTooLong indicates a material or set name longer than MaxNameLength bytes.
	ErrNameTooLong = errors.New("material: name too long")

	// ErrInvalidParameter indicates a non-finite or out-of-range material parameter.
	ErrInvalidParameter = errors.New("material: invalid parameter")

	// ErrDuplicateName indicates two materials or two sets declared under the same name.
	ErrDuplicateName = errors.New("material: duplicate name")

	// ErrUnknownType indicates a material type tag that is not recognized.
	ErrUnknownType = errors.New("material: unknown material type")

	// ErrIndexOutOfRange indicates a region, set or element index outside valid bounds.
	ErrIndexOutOfRange = errors.New("material: index out of range")

	// ErrUnassignedElement indicates an element that belongs to no region.
	ErrUnassignedElement = errors.New("material: element not assigned to any region")

	// ErrDuplicateAssignment indicates an element that belongs to more than one region.
	ErrDuplicateAssignment = errors.New("material: element assigned to more than one region")
)

// ParameterError reports which parameter of which material was rejected.
type ParameterError struct {
	Material  string
	Parameter string
	Value     float64
	Wrapped   error
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("%s (material %q, %s=%g)", e.Wrapped, e.Material, e.Parameter, e.Value)
}

func (e *ParameterError) Unwrap() error {
	return e.Wrapped
}

// ElementError reports a resolution failure for a single element.
type ElementError struct {
	Element int
	Wrapped error
}

func (e *ElementError) Error() string {
	return fmt.Sprintf("%s (element %d)", e.Wrapped, e.Element)
}

func (e *ElementError) Unwrap() error {
	return e.Wrapped
}
