package hyper

import (
	"errors"
	"fmt"

	"github.com/san-kum/hyperfem/internal/material"
)

var (
	// ErrConfiguration indicates a mesh whose materials do not match the model.
	ErrConfiguration = errors.New("hyper: configuration error")

	// ErrDomain indicates invariants or a deformation outside the model's domain.
	ErrDomain = errors.New("hyper: domain error")

	// ErrDegenerate indicates a zero-volume element (IIIc = 0).
	ErrDegenerate = errors.New("hyper: degenerate element")

	// ErrInverted indicates an inverted element (det F < 0).
	ErrInverted = errors.New("hyper: inverted element")

	// ErrNonFinite indicates NaN or Inf in the invariants or the deformation.
	ErrNonFinite = errors.New("hyper: non-finite value")

	// ErrUnknownModel indicates a model name missing from the registry.
	ErrUnknownModel = errors.New("hyper: unknown model")
)

// ConfigurationError is returned when an element's material does not match
// the type a model requires.
type ConfigurationError struct {
	Model    string
	Element  int
	Expected material.Type
	Actual   material.Type
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("hyper: %s requires %s materials, element %d has %s",
		e.Model, e.Expected, e.Element, e.Actual)
}

func (e *ConfigurationError) Unwrap() error {
	return ErrConfiguration
}

type DomainKind int

const (
	Degenerate DomainKind = iota
	Inverted
	NonFinite
)

func (k DomainKind) String() string {
	switch k {
	case Degenerate:
		return "degenerate"
	case Inverted:
		return "inverted"
	default:
		return "non-finite"
	}
}

func (k DomainKind) sentinel() error {
	switch k {
	case Degenerate:
		return ErrDegenerate
	case Inverted:
		return ErrInverted
	default:
		return ErrNonFinite
	}
}

// DomainError is returned for an evaluation outside the model's domain.
// Element is -1 when the failing element is not known. Value carries the
// offending quantity (IIIc, det F or the smallest eigenvalue of C).
type DomainError struct {
	Element int
	Kind    DomainKind
	Value   float64
}

func (e *DomainError) Error() string {
	if e.Element < 0 {
		return fmt.Sprintf("hyper: %s deformation (value %g)", e.Kind, e.Value)
	}
	return fmt.Sprintf("hyper: element %d: %s deformation (value %g)", e.Element, e.Kind, e.Value)
}

// Unwrap exposes both ErrDomain and the kind-specific sentinel to errors.Is.
func (e *DomainError) Unwrap() []error {
	return []error{ErrDomain, e.Kind.sentinel()}
}
