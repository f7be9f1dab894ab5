package tet

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/hyperfem/internal/fem"
	"github.com/san-kum/hyperfem/internal/tensor"
)

// Mesh is a tetrahedral mesh in its rest configuration. Rest and Elements
// must not be modified after NewMesh.
type Mesh struct {
	Rest     [][3]float64
	Elements [][4]int

	dmInv  []tensor.Mat3
	volume []float64
}

// NewMesh precomputes Dm⁻¹ and the rest volume of every element. Elements
// must be positively oriented: (X1−X0, X2−X0, X3−X0) has positive
// determinant.
func NewMesh(rest [][3]float64, elements [][4]int) (*Mesh, error) {
	m := &Mesh{
		Rest:     rest,
		Elements: elements,
		dmInv:    make([]tensor.Mat3, len(elements)),
		volume:   make([]float64, len(elements)),
	}

	for el, verts := range elements {
		for _, v := range verts {
			if v < 0 || v >= len(rest) {
				return nil, &ElementError{Element: el, Err: fmt.Errorf("%w: %d", ErrVertexIndex, v)}
			}
		}

		dm := m.edges(el, func(v int) r3.Vec { return tensor.Vec(rest[v]) })
		det := dm.Det()
		inv, ok := dm.Inverse()
		if det <= 0 || !ok {
			return nil, &ElementError{Element: el, Err: fmt.Errorf("%w: det %g", ErrInvertedRest, det)}
		}
		m.dmInv[el] = inv
		m.volume[el] = det / 6
	}
	return m, nil
}

// edges returns the matrix whose columns are p(v_a) − p(v_0), a = 1..3.
func (m *Mesh) edges(el int, p func(v int) r3.Vec) tensor.Mat3 {
	verts := m.Elements[el]
	x0 := p(verts[0])

	var d tensor.Mat3
	for a := 1; a < 4; a++ {
		d.SetCol(a-1, r3.Sub(p(verts[a]), x0))
	}
	return d
}

func (m *Mesh) NumVertices() int        { return len(m.Rest) }
func (m *Mesh) NumElements() int        { return len(m.Elements) }
func (m *Mesh) NumElementVertices() int { return 4 }
func (m *Mesh) Dofs() int               { return 3 * len(m.Rest) }

func (m *Mesh) ElementVolume(el int) float64 { return m.volume[el] }

// Volume is the total rest volume.
func (m *Mesh) Volume() float64 {
	v := 0.0
	for _, x := range m.volume {
		v += x
	}
	return v
}

// ShapeGradient returns ∇N_a: row a−1 of Dm⁻¹ for a > 0, and minus the
// sum of the rows for a = 0.
func (m *Mesh) ShapeGradient(el, a int) [3]float64 {
	inv := &m.dmInv[el]
	if a > 0 {
		return inv[a-1]
	}
	return [3]float64{
		-(inv[0][0] + inv[1][0] + inv[2][0]),
		-(inv[0][1] + inv[1][1] + inv[2][1]),
		-(inv[0][2] + inv[1][2] + inv[2][2]),
	}
}

// RestPositions returns a fresh flat copy of the rest positions.
func (m *Mesh) RestPositions() []float64 {
	x := make([]float64, 3*len(m.Rest))
	for v, p := range m.Rest {
		copy(x[3*v:], p[:])
	}
	return x
}

// DeformationGradient returns F = Ds·Dm⁻¹ of element el for the flat
// positions x.
func (m *Mesh) DeformationGradient(el int, x []float64) tensor.Mat3 {
	ds := m.edges(el, func(v int) r3.Vec { return r3.Vec{X: x[3*v], Y: x[3*v+1], Z: x[3*v+2]} })
	return ds.Mul(m.dmInv[el])
}

// Deformation adapts positions x to the evaluator's per-element callback.
func (m *Mesh) Deformation(x []float64) (fem.DeformationFunc, error) {
	if len(x) != m.Dofs() {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrPositions, len(x), m.Dofs())
	}
	return func(el int) tensor.Mat3 { return m.DeformationGradient(el, x) }, nil
}

// Affine returns the positions of the rest mesh mapped by x ↦ F·x + t.
func (m *Mesh) Affine(f tensor.Mat3, t [3]float64) []float64 {
	x := make([]float64, 3*len(m.Rest))
	for v, p := range m.Rest {
		y := r3.Add(f.MulVec(tensor.Vec(p)), tensor.Vec(t))
		x[3*v], x[3*v+1], x[3*v+2] = y.X, y.Y, y.Z
	}
	return x
}
