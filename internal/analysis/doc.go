// Package analysis provides verification and sweep tools for hyperelastic
// models.
//
//   - [CheckGradient], [CheckHessian]: central differences of a model in
//     invariant space
//   - [CheckForces], [CheckStiffness]: central differences of an element
//     evaluation with respect to vertex positions
//   - [CheckModel]: all of the above over a set of sample deformations
//   - [Sweep], [UniaxialCurve]: energy and stress along a loading path
//
// # Verification
//
// A result passes when its largest mixed relative error is below the
// tolerance:
//
//	res := analysis.CheckGradient(model, 0, inv, analysis.DefaultStep)
//	if !res.Passed(analysis.DefaultTolerance) {
//	    // gradient disagrees with energy
//	}
package analysis
