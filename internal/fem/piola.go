package fem

import (
	"github.com/san-kum/hyperfem/internal/reduce"
	"github.com/san-kum/hyperfem/internal/tensor"
)

// Piola returns the first Piola-Kirchhoff stress P = U·diag(P̂)·Vᵗ.
func Piola(d *reduce.Decomposition, p [3]float64) tensor.Mat3 {
	var out tensor.Mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out[i][j] = d.U[i][0]*p[0]*d.V[j][0] +
				d.U[i][1]*p[1]*d.V[j][1] +
				d.U[i][2]*p[2]*d.V[j][2]
		}
	}
	return out
}

// basis returns vec(u_a ⊗ v_b), row-major.
func basis(d *reduce.Decomposition, a, b int) [9]float64 {
	var m [9]float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			m[i*3+j] = d.U[i][a] * d.V[j][b]
		}
	}
	return m
}

func addOuter(dst *[81]float64, w float64, x, y *[9]float64) {
	if w == 0 {
		return
	}
	for r := 0; r < 9; r++ {
		wx := w * x[r]
		row := dst[r*9 : r*9+9]
		for c := 0; c < 9; c++ {
			row[c] += wx * y[c]
		}
	}
}

// PiolaDerivative writes ∂P/∂F into dst, row-major over the flattened
// indices (i*3+j, k*3+l) of P_ij and F_kl. The result is symmetric.
func PiolaDerivative(d *reduce.Decomposition, p [3]float64, h [3][3]float64, dst *[81]float64) {
	*dst = [81]float64{}

	var diag [3][9]float64
	for a := 0; a < 3; a++ {
		diag[a] = basis(d, a, a)
	}
	for a := 0; a < 3; a++ {
		for c := 0; c < 3; c++ {
			addOuter(dst, h[a][c], &diag[a], &diag[c])
		}
	}

	for _, pair := range [3][2]int{{0, 1}, {0, 2}, {1, 2}} {
		a, b := pair[0], pair[1]
		alpha, beta := PairTerms(a, b, d.Stretches, p, h, d.IsRepeated(a, b))

		ab := basis(d, a, b)
		ba := basis(d, b, a)
		addOuter(dst, alpha, &ab, &ab)
		addOuter(dst, alpha, &ba, &ba)
		addOuter(dst, beta, &ab, &ba)
		addOuter(dst, beta, &ba, &ab)
	}
}
