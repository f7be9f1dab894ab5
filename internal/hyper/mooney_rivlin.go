package hyper

import (
	"math"

	"github.com/san-kum/hyperfem/internal/material"
)

// MooneyRivlinParams are the scalar parameters of one Mooney-Rivlin element.
//
//	W = ½·mu01·(Ic² − IIc)/IIIc^{2/3} − 3·mu01 + mu10·(Ic/IIIc^{1/3} − 3) + v1·(√IIIc − 1)²
type MooneyRivlinParams struct {
	Mu01 float64
	Mu10 float64
	V1   float64
}

func (p MooneyRivlinParams) Energy(inv Invariants) float64 {
	ic, iic, iiic := inv[0], inv[1], inv[2]
	c1 := math.Cbrt(iiic)
	c2 := c1 * c1
	j := math.Sqrt(iiic)

	return 0.5*p.Mu01*(ic*ic-iic)/c2 - 3*p.Mu01 +
		p.Mu10*(ic/c1-3) +
		p.V1*(j-1)*(j-1)
}

func (p MooneyRivlinParams) Gradient(inv Invariants) Gradient {
	ic, iic, iiic := inv[0], inv[1], inv[2]
	c1 := math.Cbrt(iiic)
	c2 := c1 * c1
	j := math.Sqrt(iiic)

	return Gradient{
		ic*p.Mu01/c2 + p.Mu10/c1,
		-0.5 * p.Mu01 / c2,
		-(ic*ic-iic)*p.Mu01/(3*c2*iiic) - ic*p.Mu10/(3*c1*iiic) + p.V1*(j-1)/j,
	}
}

func (p MooneyRivlinParams) Hessian(inv Invariants) Hessian {
	ic, iic, iiic := inv[0], inv[1], inv[2]
	c1 := math.Cbrt(iiic)
	c2 := c1 * c1
	j := math.Sqrt(iiic)
	iiic2 := iiic * iiic

	return Hessian{
		p.Mu01 / c2,
		0,
		-2*ic*p.Mu01/(3*c2*iiic) - p.Mu10/(3*c1*iiic),
		0,
		p.Mu01 / (3 * c2 * iiic),
		5*(ic*ic-iic)*p.Mu01/(9*c2*iiic2) + 4*ic*p.Mu10/(9*c1*iiic2) + p.V1/(2*iiic*j),
	}
}

// MooneyRivlin stores Mooney-Rivlin parameters per element.
type MooneyRivlin struct {
	mu01 []float64
	mu10 []float64
	v1   []float64
}

// NewMooneyRivlin resolves the parameters of every element of mesh. It
// fails with a *ConfigurationError if any element is not Mooney-Rivlin.
func NewMooneyRivlin(mesh Mesh) (*MooneyRivlin, error) {
	n := mesh.NumElements()
	m := &MooneyRivlin{
		mu01: make([]float64, n),
		mu10: make([]float64, n),
		v1:   make([]float64, n),
	}

	err := resolveMooneyRivlin("mooney-rivlin", mesh, func(el int, mat *material.MooneyRivlin) {
		m.mu01[el] = mat.Mu01
		m.mu10[el] = mat.Mu10
		m.v1[el] = mat.V1
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (m *MooneyRivlin) NumElements() int { return len(m.mu01) }

func (m *MooneyRivlin) Parameters(el int) MooneyRivlinParams {
	return MooneyRivlinParams{Mu01: m.mu01[el], Mu10: m.mu10[el], V1: m.v1[el]}
}

func (m *MooneyRivlin) ComputeEnergy(el int, inv Invariants) float64 {
	return m.Parameters(el).Energy(inv)
}

func (m *MooneyRivlin) ComputeEnergyGradient(el int, inv Invariants) Gradient {
	return m.Parameters(el).Gradient(inv)
}

func (m *MooneyRivlin) ComputeEnergyHessian(el int, inv Invariants) Hessian {
	return m.Parameters(el).Hessian(inv)
}

// HomogeneousMooneyRivlin uses one parameter set for every element.
type HomogeneousMooneyRivlin struct {
	MooneyRivlinParams
}

func NewHomogeneousMooneyRivlin(mu01, mu10, v1 float64) *HomogeneousMooneyRivlin {
	return &HomogeneousMooneyRivlin{MooneyRivlinParams{Mu01: mu01, Mu10: mu10, V1: v1}}
}

func (h *HomogeneousMooneyRivlin) ComputeEnergy(_ int, inv Invariants) float64 {
	return h.Energy(inv)
}

func (h *HomogeneousMooneyRivlin) ComputeEnergyGradient(_ int, inv Invariants) Gradient {
	return h.Gradient(inv)
}

func (h *HomogeneousMooneyRivlin) ComputeEnergyHessian(_ int, inv Invariants) Hessian {
	return h.Hessian(inv)
}
