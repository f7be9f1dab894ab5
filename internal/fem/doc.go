// Package fem maps invariant-space energy derivatives to per-element
// nodal forces and stiffness blocks.
//
// The pipeline for one element is:
//
//	F ──reduce──▶ (Ic, IIc, IIIc), U, σ, V
//	  ──model───▶ W, ∂W/∂I, ∂²W/∂I²
//	  ──chain───▶ P̂ = ∂W/∂σ, Ĥ = ∂²W/∂σ²
//	  ──rotate──▶ P = U·diag(P̂)·Vᵗ, ∂P/∂F
//	  ──shape───▶ forces = ∂E/∂x, stiffness = ∂²E/∂x²
//
// The rotation of ∂P̂/∂F̂ into ∂P/∂F divides by σi − σj for every pair of
// stretches. [PairTerms] isolates that step: pairs the reducer flags as
// repeated use the limiting value ½(Ĥii + Ĥjj) − Ĥij instead.
//
// Forces follow the internal-force convention: they are the gradient of
// the elastic energy with respect to the element's vertex positions, so
// the restoring force is their negation.
//
// # Concurrency
//
// An [Evaluator] is safe for concurrent use. Each call borrows a private
// workspace from a pool, and the model and shape are read-only.
// [Evaluator.EvaluateAll] partitions elements into contiguous chunks and
// every element writes only its own slice of the [Batch].
package fem
