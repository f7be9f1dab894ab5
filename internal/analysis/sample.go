package analysis

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/hyperfem/internal/tensor"
)

// SampleDeformations returns n deformation gradients with det F > 0:
// identity, an exactly repeated pair of stretches, then random
// rotations of random stretches in [0.7, 1.4].
func SampleDeformations(n int, seed int64) []tensor.Mat3 {
	out := []tensor.Mat3{tensor.Identity(), tensor.Diag(1.1, 1.1, 0.85)}
	r := rand.New(rand.NewSource(seed))
	for len(out) < n {
		axis := r3.Vec{X: r.NormFloat64(), Y: r.NormFloat64(), Z: r.NormFloat64()}
		rot := tensor.Rotation(axis, 2*math.Pi*r.Float64())
		s := tensor.Diag(0.7+0.7*r.Float64(), 0.7+0.7*r.Float64(), 0.7+0.7*r.Float64())
		out = append(out, rot.Mul(s))
	}
	if n <= 0 {
		return nil
	}
	if n < len(out) {
		out = out[:n]
	}
	return out
}
