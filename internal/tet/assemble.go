package tet

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/hyperfem/internal/fem"
)

func (m *Mesh) checkBatch(b *fem.Batch) error {
	if b.NumElements != m.NumElements() || b.Dofs != 12 {
		return fmt.Errorf("%w: %d elements of %d dofs, mesh has %d of 12",
			ErrBatch, b.NumElements, b.Dofs, m.NumElements())
	}
	return nil
}

// ScatterForces adds the element forces of b into the global vector
// global, which has length Dofs. Failed elements are skipped.
func (m *Mesh) ScatterForces(b *fem.Batch, global []float64) error {
	if err := m.checkBatch(b); err != nil {
		return err
	}
	if len(global) != m.Dofs() {
		return fmt.Errorf("%w: got %d, want %d", ErrPositions, len(global), m.Dofs())
	}

	for el, verts := range m.Elements {
		if b.Errs[el] != nil {
			continue
		}
		f := b.ElementForces(el)
		for a, v := range verts {
			for i := 0; i < 3; i++ {
				global[3*v+i] += f[3*a+i]
			}
		}
	}
	return nil
}

// AssembleStiffness sums the element stiffness blocks of b into a dense
// symmetric global matrix. It is meant for small meshes and checks.
func (m *Mesh) AssembleStiffness(b *fem.Batch) (*mat.SymDense, error) {
	if err := m.checkBatch(b); err != nil {
		return nil, err
	}
	if b.Stiffness == nil {
		return nil, fmt.Errorf("%w: batch has no stiffness", ErrBatch)
	}

	n := m.Dofs()
	k := mat.NewSymDense(n, nil)
	for el, verts := range m.Elements {
		if b.Errs[el] != nil {
			continue
		}
		ke := b.ElementStiffness(el)
		for a, va := range verts {
			for i := 0; i < 3; i++ {
				r, gr := 3*a+i, 3*va+i
				for c, vc := range verts {
					for j := 0; j < 3; j++ {
						col, gc := 3*c+j, 3*vc+j
						if gc < gr {
							continue
						}
						k.SetSym(gr, gc, k.At(gr, gc)+ke[r*12+col])
					}
				}
			}
		}
	}
	return k, nil
}
