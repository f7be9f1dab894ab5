package hyper

import "math"

// neo-Hookean: W = ½μ(Ic − 3) − μ·ln J + ½λ·(ln J)², J = √IIIc.

func neoHookeanEnergy(p Lame, inv Invariants) float64 {
	logJ := 0.5 * math.Log(inv[2])
	return 0.5*p.Mu*(inv[0]-3) - p.Mu*logJ + 0.5*p.Lambda*logJ*logJ
}

func neoHookeanGradient(p Lame, inv Invariants) Gradient {
	logJ := 0.5 * math.Log(inv[2])
	return Gradient{
		0.5 * p.Mu,
		0,
		(p.Lambda*logJ - p.Mu) / (2 * inv[2]),
	}
}

func neoHookeanHessian(p Lame, inv Invariants) Hessian {
	logJ := 0.5 * math.Log(inv[2])
	return Hessian{
		5: (p.Lambda + 2*p.Mu - 2*p.Lambda*logJ) / (4 * inv[2] * inv[2]),
	}
}

// NeoHookean stores Lamé parameters per element, resolved from ENu
// materials.
type NeoHookean struct {
	lameStore
}

// NewNeoHookean fails with a *ConfigurationError if any element is not an
// ENu material.
func NewNeoHookean(mesh Mesh) (*NeoHookean, error) {
	s, err := newLameStore("neo-hookean", mesh)
	if err != nil {
		return nil, err
	}
	return &NeoHookean{s}, nil
}

func (m *NeoHookean) ComputeEnergy(el int, inv Invariants) float64 {
	return neoHookeanEnergy(m.Parameters(el), inv)
}

func (m *NeoHookean) ComputeEnergyGradient(el int, inv Invariants) Gradient {
	return neoHookeanGradient(m.Parameters(el), inv)
}

func (m *NeoHookean) ComputeEnergyHessian(el int, inv Invariants) Hessian {
	return neoHookeanHessian(m.Parameters(el), inv)
}

type HomogeneousNeoHookean struct {
	Lame
}

func NewHomogeneousNeoHookean(e, nu float64) *HomogeneousNeoHookean {
	return &HomogeneousNeoHookean{LameFromENu(e, nu)}
}

func (h *HomogeneousNeoHookean) ComputeEnergy(_ int, inv Invariants) float64 {
	return neoHookeanEnergy(h.Lame, inv)
}

func (h *HomogeneousNeoHookean) ComputeEnergyGradient(_ int, inv Invariants) Gradient {
	return neoHookeanGradient(h.Lame, inv)
}

func (h *HomogeneousNeoHookean) ComputeEnergyHessian(_ int, inv Invariants) Hessian {
	return neoHookeanHessian(h.Lame, inv)
}
