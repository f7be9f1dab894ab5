package hyper

// St. Venant-Kirchhoff: W = λ/2·tr(E)² + μ·tr(E²) with E = (C − I)/2,
// rewritten in invariants as
//
//	W = ⅛λ(Ic − 3)² + ¼μ(Ic² − 2IIc − 2Ic + 3)

func stvkEnergy(p Lame, inv Invariants) float64 {
	ic, iic := inv[0], inv[1]
	return 0.125*p.Lambda*(ic-3)*(ic-3) + 0.25*p.Mu*(ic*ic-2*iic-2*ic+3)
}

func stvkGradient(p Lame, inv Invariants) Gradient {
	ic := inv[0]
	return Gradient{
		0.25*p.Lambda*(ic-3) + 0.5*p.Mu*(ic-1),
		-0.5 * p.Mu,
		0,
	}
}

func stvkHessian(p Lame, _ Invariants) Hessian {
	return Hessian{0: 0.25*p.Lambda + 0.5*p.Mu}
}

type StVK struct {
	lameStore
}

func NewStVK(mesh Mesh) (*StVK, error) {
	s, err := newLameStore("stvk", mesh)
	if err != nil {
		return nil, err
	}
	return &StVK{s}, nil
}

func (m *StVK) ComputeEnergy(el int, inv Invariants) float64 {
	return stvkEnergy(m.Parameters(el), inv)
}

func (m *StVK) ComputeEnergyGradient(el int, inv Invariants) Gradient {
	return stvkGradient(m.Parameters(el), inv)
}

func (m *StVK) ComputeEnergyHessian(el int, inv Invariants) Hessian {
	return stvkHessian(m.Parameters(el), inv)
}

type HomogeneousStVK struct {
	Lame
}

func NewHomogeneousStVK(e, nu float64) *HomogeneousStVK {
	return &HomogeneousStVK{LameFromENu(e, nu)}
}

func (h *HomogeneousStVK) ComputeEnergy(_ int, inv Invariants) float64 {
	return stvkEnergy(h.Lame, inv)
}

func (h *HomogeneousStVK) ComputeEnergyGradient(_ int, inv Invariants) Gradient {
	return stvkGradient(h.Lame, inv)
}

func (h *HomogeneousStVK) ComputeEnergyHessian(_ int, inv Invariants) Hessian {
	return stvkHessian(h.Lame, inv)
}
