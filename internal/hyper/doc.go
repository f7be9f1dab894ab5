// Package hyper implements invariant-based isotropic hyperelastic
// constitutive models.
//
// A [Model] maps the principal invariants (Ic, IIc, IIIc) of the right
// Cauchy-Green tensor C = FᵗF of one element to a strain-energy density,
// its gradient and its Hessian with respect to the invariants:
//
//   - [MooneyRivlin], [HomogeneousMooneyRivlin]
//   - [NeoHookean], [HomogeneousNeoHookean]
//   - [StVK], [HomogeneousStVK]
//
// The invariants follow the usual definitions:
//
//	Ic   = tr(C)
//	IIc  = (tr(C)² - tr(C²)) / 2
//	IIIc = det(C)
//
// Mesh-backed models resolve the parameters of every element once, at
// construction, into contiguous per-element slices. Evaluation is pure:
// it reads only the element's parameters and the given invariants, so any
// number of goroutines may evaluate distinct (or identical) elements
// concurrently.
//
// # Domain
//
// Every model requires IIIc > 0. Fractional powers and logarithms of IIIc
// diverge as IIIc → 0⁺, and the models do not clamp. Callers reject
// degenerate or inverted elements upstream with [Invariants.Validate] (or
// the reducer's inversion policy) before evaluating.
package hyper
