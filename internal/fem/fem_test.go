package fem

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/hyperfem/internal/hyper"
	"github.com/san-kum/hyperfem/internal/reduce"
	"github.com/san-kum/hyperfem/internal/tensor"
)

// tetShape is n copies of one linear tetrahedron.
type tetShape struct {
	n     int
	rest  [4][3]float64
	dmInv tensor.Mat3
	vol   float64
}

func newTetShape(t testing.TB, n int) *tetShape {
	s := &tetShape{
		n:    n,
		rest: [4][3]float64{{0, 0, 0}, {1, 0.1, 0}, {0.2, 1, 0}, {0.1, 0.3, 1.2}},
	}
	var dm tensor.Mat3
	for a := 1; a < 4; a++ {
		dm.SetCol(a-1, r3.Sub(tensor.Vec(s.rest[a]), tensor.Vec(s.rest[0])))
	}
	inv, ok := dm.Inverse()
	require.True(t, ok)
	s.dmInv = inv
	s.vol = dm.Det() / 6
	require.Greater(t, s.vol, 0.0)
	return s
}

func (s *tetShape) NumElements() int          { return s.n }
func (s *tetShape) NumElementVertices() int   { return 4 }
func (s *tetShape) ElementVolume(int) float64 { return s.vol }
func (s *tetShape) ShapeGradient(_, a int) [3]float64 {
	if a > 0 {
		return s.dmInv[a-1]
	}
	g := [3]float64{}
	for r := 0; r < 3; r++ {
		for j := 0; j < 3; j++ {
			g[j] -= s.dmInv[r][j]
		}
	}
	return g
}

// deformed places the vertices at F·X.
func (s *tetShape) deformed(f tensor.Mat3) []float64 {
	x := make([]float64, 12)
	for a := 0; a < 4; a++ {
		v := f.MulVec(tensor.Vec(s.rest[a]))
		x[3*a], x[3*a+1], x[3*a+2] = v.X, v.Y, v.Z
	}
	return x
}

func (s *tetShape) gradient(x []float64) tensor.Mat3 {
	var f tensor.Mat3
	for a := 0; a < 4; a++ {
		g := s.ShapeGradient(0, a)
		for i := 0; i < 3; i++ {
			for j := 0; j < 3; j++ {
				f[i][j] += x[3*a+i] * g[j]
			}
		}
	}
	return f
}

type namedModel struct {
	name  string
	model hyper.Model
}

func testModels() []namedModel {
	return []namedModel{
		{"mooney-rivlin", hyper.NewHomogeneousMooneyRivlin(1.0, 0.5, 20)},
		{"neo-hookean", hyper.NewHomogeneousNeoHookean(10, 0.3)},
		{"stvk", hyper.NewHomogeneousStVK(10, 0.3)},
	}
}

func testDeformations() map[string]tensor.Mat3 {
	shear := tensor.Identity()
	shear[0][1] = 0.15
	shear[2][0] = -0.08
	return map[string]tensor.Mat3{
		"stretch":  tensor.Diag(1.2, 0.9, 1.05),
		"repeated": tensor.Diag(1.1, 1.1, 0.9),
		"rotated":  tensor.Rotation(r3.Vec{X: 1, Y: 2, Z: 3}, 0.7).Mul(tensor.Diag(1.15, 0.95, 0.85)),
		"shear":    shear,
	}
}

func newTestEvaluator(t testing.TB, m hyper.Model, s Shape) *Evaluator {
	cfg := DefaultConfig()
	cfg.Workers = 3
	cfg.MinChunk = 2
	e, err := NewEvaluator(m, s, cfg)
	require.NoError(t, err)
	return e
}

func TestEvaluate_RestIsStressFree(t *testing.T) {
	shape := newTetShape(t, 1)
	for _, nm := range testModels() {
		t.Run(nm.name, func(t *testing.T) {
			e := newTestEvaluator(t, nm.model, shape)
			forces := make([]float64, 12)
			energy, err := e.Evaluate(0, tensor.Identity(), forces, nil)
			require.NoError(t, err)
			assert.InDelta(t, 0, energy, 1e-12)
			for _, f := range forces {
				assert.InDelta(t, 0, f, 1e-12)
			}
		})
	}
}

func TestEvaluate_ForcesMatchEnergy(t *testing.T) {
	shape := newTetShape(t, 1)
	const h = 1e-6

	for _, nm := range testModels() {
		e := newTestEvaluator(t, nm.model, shape)
		for name, f := range testDeformations() {
			t.Run(nm.name+"/"+name, func(t *testing.T) {
				x := shape.deformed(f)
				forces := make([]float64, 12)
				_, err := e.Evaluate(0, shape.gradient(x), forces, nil)
				require.NoError(t, err)

				for k := range x {
					xp := append([]float64(nil), x...)
					xm := append([]float64(nil), x...)
					xp[k] += h
					xm[k] -= h
					ep, err := e.Evaluate(0, shape.gradient(xp), nil, nil)
					require.NoError(t, err)
					em, err := e.Evaluate(0, shape.gradient(xm), nil, nil)
					require.NoError(t, err)

					fd := (ep - em) / (2 * h)
					assert.InDelta(t, fd, forces[k], 1e-6*(1+math.Abs(fd)), "dof %d", k)
				}
			})
		}
	}
}

func TestEvaluate_StiffnessMatchesForces(t *testing.T) {
	shape := newTetShape(t, 1)
	const h = 1e-6

	for _, nm := range testModels() {
		e := newTestEvaluator(t, nm.model, shape)
		for name, f := range testDeformations() {
			t.Run(nm.name+"/"+name, func(t *testing.T) {
				x := shape.deformed(f)
				k := make([]float64, 144)
				_, err := e.Evaluate(0, shape.gradient(x), nil, k)
				require.NoError(t, err)

				fp := make([]float64, 12)
				fm := make([]float64, 12)
				for c := range x {
					xp := append([]float64(nil), x...)
					xm := append([]float64(nil), x...)
					xp[c] += h
					xm[c] -= h
					_, err := e.Evaluate(0, shape.gradient(xp), fp, nil)
					require.NoError(t, err)
					_, err = e.Evaluate(0, shape.gradient(xm), fm, nil)
					require.NoError(t, err)

					for r := range fp {
						fd := (fp[r] - fm[r]) / (2 * h)
						assert.InDelta(t, fd, k[r*12+c], 1e-5*(1+math.Abs(fd)), "K[%d,%d]", r, c)
					}
				}
			})
		}
	}
}

func TestEvaluate_StiffnessSymmetric(t *testing.T) {
	shape := newTetShape(t, 1)
	for _, nm := range testModels() {
		e := newTestEvaluator(t, nm.model, shape)
		for name, f := range testDeformations() {
			t.Run(nm.name+"/"+name, func(t *testing.T) {
				k := make([]float64, 144)
				_, err := e.Evaluate(0, f, nil, k)
				require.NoError(t, err)
				for r := 0; r < 12; r++ {
					for c := r + 1; c < 12; c++ {
						assert.InDelta(t, k[r*12+c], k[c*12+r], 1e-9*(1+math.Abs(k[r*12+c])))
					}
				}
			})
		}
	}
}

func TestEvaluate_RotationInvariant(t *testing.T) {
	shape := newTetShape(t, 1)
	r := tensor.Rotation(r3.Vec{X: 0.3, Y: -1, Z: 0.5}, 1.1)
	f := tensor.Diag(1.2, 0.9, 1.05)

	for _, nm := range testModels() {
		t.Run(nm.name, func(t *testing.T) {
			e := newTestEvaluator(t, nm.model, shape)
			f0 := make([]float64, 12)
			f1 := make([]float64, 12)
			e0, err := e.Evaluate(0, f, f0, nil)
			require.NoError(t, err)
			e1, err := e.Evaluate(0, r.Mul(f), f1, nil)
			require.NoError(t, err)

			assert.InDelta(t, e0, e1, 1e-10*(1+math.Abs(e0)))
			for a := 0; a < 4; a++ {
				want := r.MulVec(r3.Vec{X: f0[3*a], Y: f0[3*a+1], Z: f0[3*a+2]})
				assert.InDelta(t, want.X, f1[3*a], 1e-9)
				assert.InDelta(t, want.Y, f1[3*a+1], 1e-9)
				assert.InDelta(t, want.Z, f1[3*a+2], 1e-9)
			}
		})
	}
}

func TestEvaluate_ForcesBalance(t *testing.T) {
	shape := newTetShape(t, 1)
	e := newTestEvaluator(t, hyper.NewHomogeneousNeoHookean(10, 0.3), shape)
	forces := make([]float64, 12)
	_, err := e.Evaluate(0, testDeformations()["rotated"], forces, nil)
	require.NoError(t, err)

	var sum [3]float64
	for a := 0; a < 4; a++ {
		for i := 0; i < 3; i++ {
			sum[i] += forces[3*a+i]
		}
	}
	for i := range sum {
		assert.InDelta(t, 0, sum[i], 1e-10)
	}
}

func TestPairTerms_LimitMatchesQuotient(t *testing.T) {
	m := hyper.NewHomogeneousMooneyRivlin(1.0, 0.5, 20)
	for _, gap := range []float64{1e-3, 1e-4} {
		s := [3]float64{0.9, 1.1, 1.1 + gap}
		a, b, c := s[0]*s[0], s[1]*s[1], s[2]*s[2]
		inv := hyper.Invariants{a + b + c, a*b + b*c + a*c, a * b * c}
		grad := m.ComputeEnergyGradient(0, inv)
		p := PrincipalGradient(grad, s)
		h := PrincipalHessian(grad, m.ComputeEnergyHessian(0, inv), s)

		alphaQ, betaQ := PairTerms(1, 2, s, p, h, false)
		alphaL, betaL := PairTerms(1, 2, s, p, h, true)

		tol := 10 * gap * (1 + math.Abs(alphaQ))
		assert.InDelta(t, alphaQ, alphaL, tol, "gap %g", gap)
		assert.InDelta(t, betaQ, betaL, tol, "gap %g", gap)
	}
}

func TestPairTerms_NeoHookeanClosedForm(t *testing.T) {
	// For W = ½μ(Ic−3) alone, P̂ = μσ so alpha = μ and beta = 0.
	const mu = 2.5
	s := [3]float64{0.8, 1.3, 1.7}
	grad := hyper.Gradient{0.5 * mu, 0, 0}
	p := PrincipalGradient(grad, s)
	h := PrincipalHessian(grad, hyper.Hessian{}, s)

	for _, rep := range []bool{false, true} {
		alpha, beta := PairTerms(0, 2, s, p, h, rep)
		assert.InDelta(t, mu, alpha, 1e-12)
		assert.InDelta(t, 0, beta, 1e-12)
	}
}

func TestPrincipalGradient_MatchesInvariantChainRule(t *testing.T) {
	m := hyper.NewHomogeneousStVK(10, 0.3)
	s := [3]float64{0.9, 1.2, 1.05}
	energy := func(s [3]float64) float64 {
		a, b, c := s[0]*s[0], s[1]*s[1], s[2]*s[2]
		return m.ComputeEnergy(0, hyper.Invariants{a + b + c, a*b + b*c + a*c, a * b * c})
	}
	a, b, c := s[0]*s[0], s[1]*s[1], s[2]*s[2]
	inv := hyper.Invariants{a + b + c, a*b + b*c + a*c, a * b * c}
	p := PrincipalGradient(m.ComputeEnergyGradient(0, inv), s)

	const h = 1e-6
	for i := 0; i < 3; i++ {
		sp, sm := s, s
		sp[i] += h
		sm[i] -= h
		assert.InDelta(t, (energy(sp)-energy(sm))/(2*h), p[i], 1e-6)
	}
}

func TestEvaluate_DomainErrors(t *testing.T) {
	shape := newTetShape(t, 1)
	e := newTestEvaluator(t, hyper.NewHomogeneousNeoHookean(10, 0.3), shape)

	forces := make([]float64, 12)
	for i := range forces {
		forces[i] = 7
	}

	_, err := e.Evaluate(0, tensor.Diag(1, 1, -1), forces, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, hyper.ErrDomain)
	assert.ErrorIs(t, err, hyper.ErrInverted)

	var de *hyper.DomainError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, 0, de.Element)
	for _, f := range forces {
		assert.Equal(t, 7.0, f)
	}

	_, err = e.Evaluate(0, tensor.Diag(1, 1, 0), nil, nil)
	assert.ErrorIs(t, err, hyper.ErrDegenerate)

	_, err = e.Evaluate(0, tensor.Diag(1, math.NaN(), 1), nil, nil)
	assert.ErrorIs(t, err, hyper.ErrNonFinite)
}

func TestEvaluate_ClampInverted(t *testing.T) {
	shape := newTetShape(t, 1)
	cfg := DefaultConfig()
	cfg.Reduce.Policy = reduce.PolicyClamp
	e, err := NewEvaluator(hyper.NewHomogeneousNeoHookean(10, 0.3), shape, cfg)
	require.NoError(t, err)

	forces := make([]float64, 12)
	k := make([]float64, 144)
	energy, err := e.Evaluate(0, tensor.Diag(1, 1, -0.5), forces, k)
	require.NoError(t, err)
	assert.False(t, math.IsNaN(energy))
	assert.Greater(t, energy, 0.0)
	for _, v := range append(forces, k...) {
		assert.False(t, math.IsNaN(v) || math.IsInf(v, 0))
	}
}

func TestEvaluate_BufferSize(t *testing.T) {
	e := newTestEvaluator(t, hyper.NewHomogeneousStVK(10, 0.3), newTetShape(t, 1))
	_, err := e.Evaluate(0, tensor.Identity(), make([]float64, 9), nil)
	assert.ErrorIs(t, err, ErrBufferSize)
	_, err = e.Evaluate(0, tensor.Identity(), nil, make([]float64, 12))
	assert.ErrorIs(t, err, ErrBufferSize)
}

func TestNewEvaluator_Validates(t *testing.T) {
	shape := newTetShape(t, 1)
	_, err := NewEvaluator(nil, shape, DefaultConfig())
	assert.Error(t, err)
	_, err = NewEvaluator(hyper.NewHomogeneousStVK(1, 0.3), nil, DefaultConfig())
	assert.Error(t, err)

	cfg := DefaultConfig()
	cfg.Reduce.RepeatedTolerance = -1
	_, err = NewEvaluator(hyper.NewHomogeneousStVK(1, 0.3), shape, cfg)
	assert.Error(t, err)
}

func TestEvaluateAll_MatchesSerial(t *testing.T) {
	const n = 17
	shape := newTetShape(t, n)
	e := newTestEvaluator(t, hyper.NewHomogeneousMooneyRivlin(1.0, 0.5, 20), shape)

	deform := func(el int) tensor.Mat3 {
		return tensor.Rotation(r3.Vec{X: 1, Z: 1}, 0.1*float64(el)).
			Mul(tensor.Diag(1+0.01*float64(el), 0.95, 1.02))
	}

	b := NewBatch(n, 4, true)
	require.NoError(t, e.EvaluateAll(context.Background(), deform, b))
	assert.Empty(t, b.Failed())

	forces := make([]float64, 12)
	k := make([]float64, 144)
	total := 0.0
	for el := 0; el < n; el++ {
		energy, err := e.Evaluate(el, deform(el), forces, k)
		require.NoError(t, err)
		total += energy
		assert.Equal(t, energy, b.Energy[el])
		assert.Equal(t, forces, b.ElementForces(el))
		assert.Equal(t, k, b.ElementStiffness(el))
	}
	assert.InDelta(t, total, b.TotalEnergy(), 1e-12)
}

func TestEvaluateAll_CollectsElementErrors(t *testing.T) {
	const n = 10
	shape := newTetShape(t, n)
	e := newTestEvaluator(t, hyper.NewHomogeneousNeoHookean(10, 0.3), shape)

	deform := func(el int) tensor.Mat3 {
		if el == 3 || el == 8 {
			return tensor.Diag(1, -1, 1)
		}
		return tensor.Diag(1.1, 1, 1)
	}

	b := NewBatch(n, 4, false)
	err := e.EvaluateAll(context.Background(), deform, b)
	require.Error(t, err)
	assert.ErrorIs(t, err, hyper.ErrInverted)
	assert.Equal(t, []int{3, 8}, b.Failed())
	assert.Nil(t, b.ElementStiffness(0))

	var de *hyper.DomainError
	require.True(t, errors.As(b.Errs[8], &de))
	assert.Equal(t, 8, de.Element)
	assert.Greater(t, b.Energy[0], 0.0)
}

func TestEvaluateAll_ReusedBatchZeroesFailedElements(t *testing.T) {
	const n = 4
	shape := newTetShape(t, n)
	e := newTestEvaluator(t, hyper.NewHomogeneousNeoHookean(10, 0.3), shape)

	b := NewBatch(n, 4, true)
	stretched := func(int) tensor.Mat3 { return tensor.Diag(1.2, 0.9, 1.1) }
	require.NoError(t, e.EvaluateAll(context.Background(), stretched, b))
	require.NotEqual(t, make([]float64, b.Dofs), b.ElementForces(2))

	inverted := func(el int) tensor.Mat3 {
		if el == 2 {
			return tensor.Diag(1, -1, 1)
		}
		return tensor.Diag(1.2, 0.9, 1.1)
	}
	err := e.EvaluateAll(context.Background(), inverted, b)
	require.ErrorIs(t, err, hyper.ErrInverted)
	assert.Equal(t, []int{2}, b.Failed())

	assert.Zero(t, b.Energy[2])
	assert.Equal(t, make([]float64, b.Dofs), b.ElementForces(2))
	assert.Equal(t, make([]float64, b.Dofs*b.Dofs), b.ElementStiffness(2))
	assert.NotEqual(t, make([]float64, b.Dofs), b.ElementForces(1))
}

func TestEvaluateAll_Canceled(t *testing.T) {
	shape := newTetShape(t, 8)
	e := newTestEvaluator(t, hyper.NewHomogeneousNeoHookean(10, 0.3), shape)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := e.EvaluateAll(ctx, func(int) tensor.Mat3 { return tensor.Identity() }, NewBatch(8, 4, false))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEvaluateAll_ShapeMismatch(t *testing.T) {
	e := newTestEvaluator(t, hyper.NewHomogeneousNeoHookean(10, 0.3), newTetShape(t, 4))
	err := e.EvaluateAll(context.Background(), func(int) tensor.Mat3 { return tensor.Identity() }, NewBatch(5, 4, false))
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestChunks(t *testing.T) {
	assert.Nil(t, chunks(0, 4, 1))
	assert.Equal(t, [][2]int{{0, 10}}, chunks(10, 4, 64))
	assert.Equal(t, [][2]int{{0, 3}, {3, 6}, {6, 9}, {9, 10}}, chunks(10, 4, 1))

	covered := 0
	for _, r := range chunks(1000, 7, 16) {
		assert.Equal(t, covered, r[0])
		covered = r[1]
	}
	assert.Equal(t, 1000, covered)
}

func BenchmarkEvaluate(b *testing.B) {
	shape := newTetShape(b, 1)
	e := newTestEvaluator(b, hyper.NewHomogeneousMooneyRivlin(1.0, 0.5, 20), shape)
	f := testDeformations()["rotated"]
	forces := make([]float64, 12)
	k := make([]float64, 144)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = e.Evaluate(0, f, forces, k)
	}
}

func BenchmarkEvaluateAll(b *testing.B) {
	const n = 4096
	shape := newTetShape(b, n)
	e := newTestEvaluator(b, hyper.NewHomogeneousNeoHookean(10, 0.3), shape)
	batch := NewBatch(n, 4, true)
	f := testDeformations()["rotated"]
	deform := func(int) tensor.Mat3 { return f }

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = e.EvaluateAll(context.Background(), deform, batch)
	}
}
