package fem

import "github.com/san-kum/hyperfem/internal/hyper"

// invariantDerivatives returns ∂I_a/∂σ_i in g[a][i] and ∂²I_a/∂σ_i∂σ_j in
// h[a][i][j] for the invariants written in principal stretches:
//
//	Ic = Σσi²,  IIc = Σ_{i<j} σi²σj²,  IIIc = Πσi²
func invariantDerivatives(s [3]float64) (g [3][3]float64, h [3][3][3]float64) {
	var sq [3]float64
	for i := range s {
		sq[i] = s[i] * s[i]
	}

	for i := 0; i < 3; i++ {
		j, k := (i+1)%3, (i+2)%3

		g[0][i] = 2 * s[i]
		g[1][i] = 2 * s[i] * (sq[j] + sq[k])
		g[2][i] = 2 * s[i] * sq[j] * sq[k]

		h[0][i][i] = 2
		h[1][i][i] = 2 * (sq[j] + sq[k])
		h[2][i][i] = 2 * sq[j] * sq[k]

		for _, m := range [2]int{j, k} {
			other := 3 - i - m
			h[1][i][m] = 4 * s[i] * s[m]
			h[2][i][m] = 4 * s[i] * s[m] * sq[other]
		}
	}
	return g, h
}

// PrincipalGradient returns P̂_i = ∂W/∂σ_i.
func PrincipalGradient(grad hyper.Gradient, s [3]float64) [3]float64 {
	g, _ := invariantDerivatives(s)

	var p [3]float64
	for i := 0; i < 3; i++ {
		for a := 0; a < 3; a++ {
			p[i] += grad[a] * g[a][i]
		}
	}
	return p
}

// PrincipalHessian returns Ĥ_ij = ∂²W/∂σ_i∂σ_j.
func PrincipalHessian(grad hyper.Gradient, hess hyper.Hessian, s [3]float64) [3][3]float64 {
	g, h := invariantDerivatives(s)

	var out [3][3]float64
	for i := 0; i < 3; i++ {
		for j := i; j < 3; j++ {
			v := 0.0
			for a := 0; a < 3; a++ {
				for b := 0; b < 3; b++ {
					v += hess.At(a, b) * g[a][i] * g[b][j]
				}
				v += grad[a] * h[a][i][j]
			}
			out[i][j] = v
			out[j][i] = v
		}
	}
	return out
}

// PairTerms returns the coupling of the off-diagonal entries (i,j) and
// (j,i) of ∂P̂/∂F̂:
//
//	∂P̂ij/∂F̂ij = ∂P̂ji/∂F̂ji = alpha
//	∂P̂ij/∂F̂ji = ∂P̂ji/∂F̂ij = beta
//
// built from the divided differences
//
//	D⁻ = (P̂i − P̂j)/(σi − σj),  D⁺ = (P̂i + P̂j)/(σi + σj)
//
// When repeated is set, D⁻ is replaced by its limit as σj → σi,
// ½(Ĥii + Ĥjj) − Ĥij, which the symmetry of W in σ makes exact at σi = σj.
// Precondition: σi + σj > 0.
func PairTerms(i, j int, s, p [3]float64, h [3][3]float64, repeated bool) (alpha, beta float64) {
	var minus float64
	if repeated {
		minus = 0.5*(h[i][i]+h[j][j]) - h[i][j]
	} else {
		minus = (p[i] - p[j]) / (s[i] - s[j])
	}
	plus := (p[i] + p[j]) / (s[i] + s[j])

	return 0.5 * (minus + plus), 0.5 * (minus - plus)
}
