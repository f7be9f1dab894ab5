package material

import (
	"fmt"
	"math"
)

// MaxNameLength is the longest material or set name accepted.
const MaxNameLength = 23

// Default material used when a mesh carries no material information.
const (
	DefaultE       = 1e9
	DefaultNu      = 0.45
	DefaultDensity = 1000.0
)

type Type int

const (
	TypeInvalid Type = iota
	TypeENu
	TypeMooneyRivlin
)

func (t Type) String() string {
	switch t {
	case TypeENu:
		return "enu"
	case TypeMooneyRivlin:
		return "mooney-rivlin"
	default:
		return "invalid"
	}
}

// ParseType maps a catalog type tag to a Type.
func ParseType(s string) (Type, error) {
	switch s {
	case "enu", "ENu", "ENU":
		return TypeENu, nil
	case "mooney-rivlin", "mooneyrivlin", "MooneyRivlin", "MOONEYRIVLIN":
		return TypeMooneyRivlin, nil
	}
	return TypeInvalid, fmt.Errorf("%w: %q", ErrUnknownType, s)
}

// Material is a named, immutable material descriptor. The set of
// implementations is closed: *ENu and *MooneyRivlin.
type Material interface {
	Name() string
	Density() float64
	Type() Type

	sealed()
}

type base struct {
	name    string
	density float64
}

func (b base) Name() string     { return b.name }
func (b base) Density() float64 { return b.density }
func (base) sealed()            {}

// ENu is any material parameterized by Young's modulus and Poisson's ratio.
type ENu struct {
	base
	E  float64
	Nu float64
}

func (*ENu) Type() Type { return TypeENu }

// Lame converts (E, nu) to the Lamé parameters.
func (m *ENu) Lame() (mu, lambda float64) {
	mu = m.E / (2 * (1 + m.Nu))
	lambda = m.E * m.Nu / ((1 + m.Nu) * (1 - 2*m.Nu))
	return mu, lambda
}

// MooneyRivlin is a compressible Mooney-Rivlin material.
type MooneyRivlin struct {
	base
	Mu01 float64
	Mu10 float64
	V1   float64
}

func (*MooneyRivlin) Type() Type { return TypeMooneyRivlin }

func NewENu(name string, density, e, nu float64) (*ENu, error) {
	b, err := newBase(name, density)
	if err != nil {
		return nil, err
	}
	if err := checkFinite(name, "E", e); err != nil {
		return nil, err
	}
	if e <= 0 {
		return nil, &ParameterError{Material: name, Parameter: "E", Value: e, Wrapped: ErrInvalidParameter}
	}
	if err := checkFinite(name, "nu", nu); err != nil {
		return nil, err
	}
	if nu <= -1 || nu >= 0.5 {
		return nil, &ParameterError{Material: name, Parameter: "nu", Value: nu, Wrapped: ErrInvalidParameter}
	}
	return &ENu{base: b, E: e, Nu: nu}, nil
}

func NewMooneyRivlin(name string, density, mu01, mu10, v1 float64) (*MooneyRivlin, error) {
	b, err := newBase(name, density)
	if err != nil {
		return nil, err
	}
	for _, p := range []struct {
		name  string
		value float64
	}{{"mu01", mu01}, {"mu10", mu10}, {"v1", v1}} {
		if err := checkFinite(name, p.name, p.value); err != nil {
			return nil, err
		}
	}
	return &MooneyRivlin{base: b, Mu01: mu01, Mu10: mu10, V1: v1}, nil
}

// DefaultMaterial returns the material of meshes that carry no material section.
func DefaultMaterial() *ENu {
	return &ENu{base: base{name: "default", density: DefaultDensity}, E: DefaultE, Nu: DefaultNu}
}

func newBase(name string, density float64) (base, error) {
	if len(name) > MaxNameLength {
		return base{}, fmt.Errorf("%w: %q has %d bytes, limit %d", ErrNameTooLong, name, len(name), MaxNameLength)
	}
	if err := checkFinite(name, "density", density); err != nil {
		return base{}, err
	}
	if density <= 0 {
		return base{}, &ParameterError{Material: name, Parameter: "density", Value: density, Wrapped: ErrInvalidParameter}
	}
	return base{name: name, density: density}, nil
}

func checkFinite(material, param string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return &ParameterError{Material: material, Parameter: param, Value: v, Wrapped: ErrInvalidParameter}
	}
	return nil
}
