package reduce

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/hyperfem/internal/hyper"
	"github.com/san-kum/hyperfem/internal/tensor"
)

func randomRotation(r *rand.Rand) tensor.Mat3 {
	axis := r3.Vec{X: r.NormFloat64(), Y: r.NormFloat64(), Z: r.NormFloat64()}
	return tensor.Rotation(axis, r.Float64()*2*math.Pi)
}

func randomDeformation(r *rand.Rand) tensor.Mat3 {
	s := tensor.Diag(0.6+0.9*r.Float64(), 0.6+0.9*r.Float64(), 0.6+0.9*r.Float64())
	return randomRotation(r).Mul(s).Mul(randomRotation(r).T())
}

func assertMatInDelta(t *testing.T, want, got tensor.Mat3, delta float64) {
	t.Helper()
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			assert.InDelta(t, want[i][j], got[i][j], delta, "entry (%d,%d)", i, j)
		}
	}
}

func assertRotation(t *testing.T, m tensor.Mat3) {
	t.Helper()
	assert.InDelta(t, 1.0, m.Det(), 1e-10)
	assertMatInDelta(t, tensor.Identity(), m.TMul(m), 1e-10)
}

func TestInvariants_Identity(t *testing.T) {
	assert.Equal(t, hyper.Rest, Invariants(tensor.Identity()))
}

func TestInvariants_Closed(t *testing.T) {
	f := tensor.Diag(2, 3, 0.5)
	inv := Invariants(f)
	assert.InDelta(t, 4+9+0.25, inv.Ic(), 1e-12)
	assert.InDelta(t, 4*9+9*0.25+4*0.25, inv.IIc(), 1e-12)
	assert.InDelta(t, 9.0, inv.IIIc(), 1e-12)
}

func TestInvariants_RotationInvariance(t *testing.T) {
	r := rand.New(rand.NewSource(21))
	for k := 0; k < 100; k++ {
		f := randomDeformation(r)
		want := Invariants(f)

		got := Invariants(randomRotation(r).Mul(f))
		for i := 0; i < 3; i++ {
			assert.InDelta(t, want[i], got[i], 1e-12*(1+math.Abs(want[i])))
		}
	}
}

func TestReduce_Identity(t *testing.T) {
	rd := NewReducer(DefaultOptions())
	d, err := rd.Reduce(tensor.Identity())
	require.NoError(t, err)

	assert.Equal(t, hyper.Rest, d.Invariants)
	assert.Equal(t, [3]bool{true, true, true}, d.Repeated)
	assert.False(t, d.Clamped)
	assertRotation(t, d.U)
	assertRotation(t, d.V)
	assertMatInDelta(t, tensor.Identity(), d.Reconstruct(), 1e-12)
}

func TestReduce_ReconstructsRandomDeformations(t *testing.T) {
	r := rand.New(rand.NewSource(5))
	rd := NewReducer(DefaultOptions())

	for k := 0; k < 50; k++ {
		f := randomDeformation(r)
		d, err := rd.Reduce(f)
		require.NoError(t, err)

		assertRotation(t, d.U)
		assertRotation(t, d.V)
		assertMatInDelta(t, f, d.Reconstruct(), 1e-10)

		assert.LessOrEqual(t, d.Eigenvalues[0], d.Eigenvalues[1])
		assert.LessOrEqual(t, d.Eigenvalues[1], d.Eigenvalues[2])
		for i := 0; i < 3; i++ {
			assert.InDelta(t, d.Eigenvalues[i], d.Stretches[i]*d.Stretches[i], 1e-10)
		}

		fromStretches := stretchInvariants(d.Stretches)
		for i := 0; i < 3; i++ {
			assert.InDelta(t, d.Invariants[i], fromStretches[i], 1e-9*(1+math.Abs(d.Invariants[i])))
		}
	}
}

func TestReduce_DomainErrors(t *testing.T) {
	tests := []struct {
		name string
		f    tensor.Mat3
		want error
	}{
		{"reflection", tensor.Diag(-1, 1, 1), hyper.ErrInverted},
		{"inverted shear", tensor.Mat3{{1, 2, 0}, {1, 1, 0}, {0, 0, 1}}, hyper.ErrInverted},
		{"flattened", tensor.Diag(1, 1, 0), hyper.ErrDegenerate},
		{"rank one", tensor.Mat3{{1, 1, 1}, {1, 1, 1}, {1, 1, 1}}, hyper.ErrDegenerate},
		{"zero", tensor.Mat3{}, hyper.ErrDegenerate},
		{"NaN", tensor.Mat3{{math.NaN(), 0, 0}, {0, 1, 0}, {0, 0, 1}}, hyper.ErrNonFinite},
	}

	rd := NewReducer(DefaultOptions())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := rd.Reduce(tt.f)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, hyper.ErrDomain)
		})
	}
}

func TestReduce_ClampInverted(t *testing.T) {
	opts := DefaultOptions()
	opts.Policy = PolicyClamp
	opts.InversionThreshold = 0.2
	rd := NewReducer(opts)

	r := rand.New(rand.NewSource(9))
	R, Q := randomRotation(r), randomRotation(r)
	f := R.Mul(tensor.Diag(1.3, -0.5, 0.9)).Mul(Q.T())

	d, err := rd.Reduce(f)
	require.NoError(t, err)

	assert.True(t, d.Clamped)
	assert.Less(t, d.Det, 0.0)
	assertRotation(t, d.U)
	assertRotation(t, d.V)
	assert.Equal(t, 0.2, d.Stretches[0])
	assert.InDelta(t, 0.9, d.Stretches[1], 1e-10)
	assert.InDelta(t, 1.3, d.Stretches[2], 1e-10)

	signed := d
	signed.Stretches[0] = -0.5
	assertMatInDelta(t, f, signed.Reconstruct(), 1e-10)

	assert.InDelta(t, 0.04*0.81*1.69, d.Invariants.IIIc(), 1e-10)
}

func TestReduce_ClampDegenerate(t *testing.T) {
	opts := DefaultOptions()
	opts.Policy = PolicyClamp
	rd := NewReducer(opts)

	d, err := rd.Reduce(tensor.Diag(1, 0, 0))
	require.NoError(t, err)
	assert.True(t, d.Clamped)
	assert.Equal(t, 0.1, d.Stretches[0])
	assert.Equal(t, 0.1, d.Stretches[1])
	assert.InDelta(t, 1.0, d.Stretches[2], 1e-12)
	assertRotation(t, d.U)
	assert.NoError(t, d.Invariants.Validate())
}

func TestReduce_ClampLeavesHealthyElementsAlone(t *testing.T) {
	opts := DefaultOptions()
	opts.Policy = PolicyClamp
	rd := NewReducer(opts)

	f := tensor.Diag(1.1, 0.8, 1.4)
	d, err := rd.Reduce(f)
	require.NoError(t, err)
	assert.False(t, d.Clamped)
	assert.Equal(t, Invariants(f), d.Invariants)
}

func TestReduce_RepeatedFlags(t *testing.T) {
	tests := []struct {
		name string
		f    tensor.Mat3
		tol  float64
		want [3]bool
	}{
		{"distinct", tensor.Diag(0.8, 1.0, 1.3), 1e-5, [3]bool{false, false, false}},
		{"near pair", tensor.Diag(1.0, 1.0+1e-8, 1.5), 1e-5, [3]bool{true, false, false}},
		{"upper pair", tensor.Diag(0.7, 1.2, 1.2), 1e-5, [3]bool{false, false, true}},
		{"loose tolerance", tensor.Diag(1.0, 1.01, 1.5), 0.05, [3]bool{true, false, false}},
		{"zero tolerance", tensor.Diag(1.0, 1.0+1e-8, 1.5), 0, [3]bool{false, false, false}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			opts.RepeatedTolerance = tt.tol
			d, err := NewReducer(opts).Reduce(tt.f)
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.Repeated)
			assert.Equal(t, tt.want[0], d.IsRepeated(1, 0))
			assert.Equal(t, tt.want[2], d.IsRepeated(1, 2))
		})
	}
}

func TestPairIndex(t *testing.T) {
	assert.Equal(t, 0, PairIndex(0, 1))
	assert.Equal(t, 1, PairIndex(2, 0))
	assert.Equal(t, 2, PairIndex(1, 2))
}

func TestOptions(t *testing.T) {
	assert.NoError(t, DefaultOptions().Validate())

	bad := DefaultOptions()
	bad.RepeatedTolerance = -1
	assert.Error(t, bad.Validate())

	bad = DefaultOptions()
	bad.Policy = PolicyClamp
	bad.InversionThreshold = 0
	assert.Error(t, bad.Validate())

	p, err := ParsePolicy("clamp")
	require.NoError(t, err)
	assert.Equal(t, PolicyClamp, p)
	assert.Equal(t, "clamp", p.String())

	_, err = ParsePolicy("ignore")
	assert.Error(t, err)
}

func BenchmarkReduce(b *testing.B) {
	rd := NewReducer(DefaultOptions())
	f := tensor.Mat3{{1.1, 0.1, 0}, {0.05, 0.95, 0.02}, {0, 0.03, 1.02}}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = rd.Reduce(f)
	}
}
