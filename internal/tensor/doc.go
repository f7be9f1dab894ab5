// Package tensor provides fixed-size 3x3 matrix helpers for per-element
// continuum mechanics.
//
// [Mat3] is a value type so that the per-element pipeline can run without
// heap allocation. Larger or general-purpose linear algebra (for example the
// symmetric eigen-decomposition of C) lives in gonum.
package tensor
