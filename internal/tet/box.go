package tet

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/hyperfem/internal/tensor"
)

// kuhn lists the six tetrahedra of a unit cube sharing the diagonal from
// corner 0 to corner 7. Corner c sits at (c&1, c>>1&1, c>>2&1). Adjacent
// cells split their shared faces identically, so the mesh is conforming.
var kuhn = [6][4]int{
	{0, 1, 3, 7},
	{0, 1, 5, 7},
	{0, 2, 3, 7},
	{0, 2, 6, 7},
	{0, 4, 5, 7},
	{0, 4, 6, 7},
}

// Box builds an nx×ny×nz grid of cubes of side h, six tetrahedra per cube,
// with its minimum corner at the origin.
func Box(nx, ny, nz int, h float64) (*Mesh, error) {
	if nx < 1 || ny < 1 || nz < 1 || !(h > 0) {
		return nil, fmt.Errorf("tet: invalid box %dx%dx%d with spacing %g", nx, ny, nz, h)
	}

	vid := func(i, j, k int) int { return i + (nx+1)*(j+(ny+1)*k) }

	rest := make([][3]float64, (nx+1)*(ny+1)*(nz+1))
	for k := 0; k <= nz; k++ {
		for j := 0; j <= ny; j++ {
			for i := 0; i <= nx; i++ {
				rest[vid(i, j, k)] = [3]float64{float64(i) * h, float64(j) * h, float64(k) * h}
			}
		}
	}

	elements := make([][4]int, 0, 6*nx*ny*nz)
	for k := 0; k < nz; k++ {
		for j := 0; j < ny; j++ {
			for i := 0; i < nx; i++ {
				var corner [8]int
				for c := range corner {
					corner[c] = vid(i+c&1, j+c>>1&1, k+c>>2&1)
				}
				for _, t := range kuhn {
					e := [4]int{corner[t[0]], corner[t[1]], corner[t[2]], corner[t[3]]}
					if orientation(rest, e) < 0 {
						e[1], e[2] = e[2], e[1]
					}
					elements = append(elements, e)
				}
			}
		}
	}
	return NewMesh(rest, elements)
}

func orientation(rest [][3]float64, e [4]int) float64 {
	var d tensor.Mat3
	x0 := tensor.Vec(rest[e[0]])
	for a := 1; a < 4; a++ {
		d.SetCol(a-1, r3.Sub(tensor.Vec(rest[e[a]]), x0))
	}
	return d.Det()
}
