// Package reduce turns an element's deformation gradient F into the
// invariants of C = FᵗF together with the eigenstructure the chain rule
// needs to map invariant-space derivatives back to F.
//
// The symmetric eigen-decomposition of C is delegated to gonum's
// [mat.EigenSym]. From it the reducer builds a rotation-variant SVD
//
//	F = U·diag(σ)·Vᵗ,  det U = det V = +1
//
// with σ ordered like the ascending eigenvalues of C.
//
// # Degenerate and inverted elements
//
// Under [PolicyReject] (the default) an element with det F <= 0 or with
// a numerically singular C is reported as a *hyper.DomainError and no
// decomposition is produced. Under [PolicyClamp] the smallest stretch
// carries the sign of det F and every stretch is clamped from below to
// Options.InversionThreshold, so inverted elements still produce finite,
// restoring forces; the decomposition is then marked Clamped.
//
// # Repeated stretches
//
// Pairs of stretches closer than Options.RepeatedTolerance (relative to
// the largest stretch) are flagged in Decomposition.Repeated. The force
// and stiffness assembler switches to a limiting formula for those
// pairs instead of dividing by the stretch difference.
package reduce
