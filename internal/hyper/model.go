package hyper

import "github.com/san-kum/hyperfem/internal/material"

// Model is an isotropic hyperelastic strain-energy density expressed in
// the invariants of C.
//
// Precondition for every method: inv.IIIc() > 0 and, for mesh-backed
// models, 0 <= el < NumElements(). Index violations panic.
type Model interface {
	ComputeEnergy(el int, inv Invariants) float64
	ComputeEnergyGradient(el int, inv Invariants) Gradient
	ComputeEnergyHessian(el int, inv Invariants) Hessian
}

// Mesh is the part of a volumetric mesh a parameter store reads at
// construction. *material.Assignment implements it.
type Mesh interface {
	NumElements() int
	ElementMaterial(el int) material.Material
}
