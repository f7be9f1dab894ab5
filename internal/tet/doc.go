// Package tet is a linear tetrahedron mesh. It supplies the rest geometry
// the fem package needs (volumes and shape-function gradients), turns
// vertex positions into per-element deformation gradients and sums
// element results into global vectors and matrices.
//
// Positions are flat: vertex v occupies x[3v], x[3v+1], x[3v+2].
package tet
