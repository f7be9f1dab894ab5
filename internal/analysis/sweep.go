package analysis

import (
	"fmt"
	"math"

	"github.com/san-kum/hyperfem/internal/fem"
	"github.com/san-kum/hyperfem/internal/hyper"
	"github.com/san-kum/hyperfem/internal/reduce"
	"github.com/san-kum/hyperfem/internal/tensor"
)

// Loading is a one-parameter family of deformation gradients together
// with the stress component reported along it.
type Loading int

const (
	// Uniaxial is F = diag(λ, λ^-½, λ^-½), reporting P11.
	Uniaxial Loading = iota
	// Equibiaxial is F = diag(λ, λ, λ^-2), reporting P11.
	Equibiaxial
	// SimpleShear is F = I + γ·e1⊗e2, reporting P12.
	SimpleShear
	// Volumetric is F = λ·I, reporting P11.
	Volumetric
)

var loadingNames = map[Loading]string{
	Uniaxial:    "uniaxial",
	Equibiaxial: "equibiaxial",
	SimpleShear: "shear",
	Volumetric:  "volumetric",
}

func (l Loading) String() string {
	if s, ok := loadingNames[l]; ok {
		return s
	}
	return fmt.Sprintf("Loading(%d)", int(l))
}

func ParseLoading(s string) (Loading, error) {
	for l, name := range loadingNames {
		if name == s {
			return l, nil
		}
	}
	return 0, fmt.Errorf("analysis: unknown loading %q", s)
}

// Gradient returns the deformation gradient at parameter t.
func (l Loading) Gradient(t float64) tensor.Mat3 {
	switch l {
	case Equibiaxial:
		return tensor.Diag(t, t, 1/(t*t))
	case SimpleShear:
		f := tensor.Identity()
		f[0][1] = t
		return f
	case Volumetric:
		return tensor.Diag(t, t, t)
	default:
		r := 1 / math.Sqrt(t)
		return tensor.Diag(t, r, r)
	}
}

func (l Loading) component() (int, int) {
	if l == SimpleShear {
		return 0, 1
	}
	return 0, 0
}

// CurvePoint is one sample of a sweep. Energy is the energy density W.
type CurvePoint struct {
	Param  float64
	Energy float64
	Stress float64
}

// Sweep samples the energy density and one first Piola-Kirchhoff stress
// component of element el along the loading at each parameter value.
func Sweep(m hyper.Model, el int, l Loading, params []float64, opts reduce.Options) ([]CurvePoint, error) {
	r := reduce.NewReducer(opts)
	ci, cj := l.component()

	out := make([]CurvePoint, 0, len(params))
	for _, t := range params {
		d, err := r.Reduce(l.Gradient(t))
		if err != nil {
			return out, fmt.Errorf("analysis: %s at %g: %w", l, t, err)
		}
		grad := m.ComputeEnergyGradient(el, d.Invariants)
		p := fem.Piola(&d, fem.PrincipalGradient(grad, d.Stretches))
		out = append(out, CurvePoint{
			Param:  t,
			Energy: m.ComputeEnergy(el, d.Invariants),
			Stress: p[ci][cj],
		})
	}
	return out, nil
}

// UniaxialCurve is Sweep along Uniaxial with the default reducer options.
func UniaxialCurve(m hyper.Model, el int, stretches []float64) ([]CurvePoint, error) {
	return Sweep(m, el, Uniaxial, stretches, reduce.DefaultOptions())
}

// Linspace returns n evenly spaced values from lo to hi inclusive.
func Linspace(lo, hi float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []float64{lo}
	}
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	out[n-1] = hi
	return out
}

// Energies and Stresses split a curve for plotting.
func Energies(c []CurvePoint) []float64 {
	out := make([]float64, len(c))
	for i, p := range c {
		out[i] = p.Energy
	}
	return out
}

func Stresses(c []CurvePoint) []float64 {
	out := make([]float64, len(c))
	for i, p := range c {
		out[i] = p.Stress
	}
	return out
}

// StressMisfit is the root-mean-square difference between the stress of
// the model along l and the stress recorded in target, normalized by the
// RMS of the target stress.
func StressMisfit(m hyper.Model, el int, l Loading, target []CurvePoint, opts reduce.Options) (float64, error) {
	params := make([]float64, len(target))
	for i, p := range target {
		params[i] = p.Param
	}
	got, err := Sweep(m, el, l, params, opts)
	if err != nil {
		return 0, err
	}

	var num, den float64
	for i, p := range target {
		d := got[i].Stress - p.Stress
		num += d * d
		den += p.Stress * p.Stress
	}
	if den == 0 {
		den = 1
	}
	return math.Sqrt(num / den), nil
}
