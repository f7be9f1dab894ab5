package hyper

import "github.com/san-kum/hyperfem/internal/material"

// Lame holds the Lamé parameters of an element.
type Lame struct {
	Mu     float64
	Lambda float64
}

// LameFromENu converts Young's modulus and Poisson's ratio.
func LameFromENu(e, nu float64) Lame {
	return Lame{
		Mu:     e / (2 * (1 + nu)),
		Lambda: e * nu / ((1 + nu) * (1 - 2*nu)),
	}
}

// lameStore is the per-element parameter store shared by the models
// parameterized by (E, nu).
type lameStore struct {
	mu     []float64
	lambda []float64
}

func newLameStore(model string, mesh Mesh) (lameStore, error) {
	n := mesh.NumElements()
	s := lameStore{
		mu:     make([]float64, n),
		lambda: make([]float64, n),
	}
	err := resolveENu(model, mesh, func(el int, m *material.ENu) {
		s.mu[el], s.lambda[el] = m.Lame()
	})
	return s, err
}

func (s lameStore) NumElements() int { return len(s.mu) }

func (s lameStore) Parameters(el int) Lame {
	return Lame{Mu: s.mu[el], Lambda: s.lambda[el]}
}
