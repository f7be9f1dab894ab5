package reduce

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/hyperfem/internal/hyper"
	"github.com/san-kum/hyperfem/internal/tensor"
)

// Pair indices into Decomposition.Repeated.
var pairs = [3][2]int{{0, 1}, {0, 2}, {1, 2}}

// PairIndex returns the Repeated slot of stretch pair (i, j), i != j.
func PairIndex(i, j int) int {
	if i > j {
		i, j = j, i
	}
	return i + j - 1
}

// Decomposition is the eigenstructure of one element's deformation.
type Decomposition struct {
	Invariants hyper.Invariants

	// Eigenvalues of C in ascending order, before any clamping.
	Eigenvalues [3]float64

	// Stretches σ, ordered like Eigenvalues. Under PolicyClamp the first
	// stretch is negative for an inverted F before clamping.
	Stretches [3]float64

	U tensor.Mat3
	V tensor.Mat3

	Det float64

	// Repeated flags the stretch pairs (0,1), (0,2), (1,2).
	Repeated [3]bool

	Clamped bool
}

func (d *Decomposition) IsRepeated(i, j int) bool {
	return d.Repeated[PairIndex(i, j)]
}

// Reconstruct returns U·diag(σ)·Vᵗ, which equals F unless clamped.
func (d *Decomposition) Reconstruct() tensor.Mat3 {
	s := tensor.Diag(d.Stretches[0], d.Stretches[1], d.Stretches[2])
	return d.U.Mul(s).Mul(d.V.T())
}

// Invariants computes (Ic, IIc, IIIc) of C = FᵗF directly, without an
// eigen-decomposition.
func Invariants(f tensor.Mat3) hyper.Invariants {
	c := f.TMul(f)
	ic := c.Trace()
	trC2 := 0.0
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			trC2 += c[i][j] * c[j][i]
		}
	}
	det := f.Det()
	return hyper.Invariants{ic, 0.5 * (ic*ic - trC2), det * det}
}

// Reducer decomposes deformation gradients. It reuses its gonum
// workspaces across calls and is not safe for concurrent use; give each
// worker its own.
type Reducer struct {
	opts Options
	sym  *mat.SymDense
	eig  mat.EigenSym
	vecs *mat.Dense
	vals []float64
}

func NewReducer(opts Options) *Reducer {
	return &Reducer{
		opts: opts,
		sym:  mat.NewSymDense(3, nil),
		vecs: mat.NewDense(3, 3, nil),
		vals: make([]float64, 3),
	}
}

func (r *Reducer) Options() Options { return r.opts }

// Reduce decomposes F. Domain violations are returned as
// *hyper.DomainError with Element set to -1.
func (r *Reducer) Reduce(f tensor.Mat3) (Decomposition, error) {
	var d Decomposition

	if !f.IsFinite() {
		return d, &hyper.DomainError{Element: -1, Kind: hyper.NonFinite, Value: math.NaN()}
	}

	d.Det = f.Det()
	c := f.TMul(f)
	for i := 0; i < 3; i++ {
		for j := i; j < 3; j++ {
			r.sym.SetSym(i, j, c[i][j])
		}
	}

	if ok := r.eig.Factorize(r.sym, true); !ok {
		return d, &hyper.DomainError{Element: -1, Kind: hyper.NonFinite, Value: math.NaN()}
	}
	r.vals = r.eig.Values(r.vals)
	r.eig.VectorsTo(r.vecs)
	copy(d.Eigenvalues[:], r.vals)

	lmin, lmax := d.Eigenvalues[0], d.Eigenvalues[2]
	if r.opts.Policy == PolicyReject {
		if d.Det < 0 {
			return d, &hyper.DomainError{Element: -1, Kind: hyper.Inverted, Value: d.Det}
		}
		if d.Det == 0 || lmax <= 0 || lmin <= r.opts.DegenerateTolerance*lmax {
			return d, &hyper.DomainError{Element: -1, Kind: hyper.Degenerate, Value: lmin}
		}
	}

	for j := 0; j < 3; j++ {
		d.V.SetCol(j, r3.Vec{X: r.vecs.At(0, j), Y: r.vecs.At(1, j), Z: r.vecs.At(2, j)})
	}
	if d.V.Det() < 0 {
		d.V.SetCol(0, r3.Scale(-1, d.V.Col(0)))
	}

	for i := 0; i < 3; i++ {
		d.Stretches[i] = math.Sqrt(math.Max(d.Eigenvalues[i], 0))
	}
	if d.Det < 0 {
		d.Stretches[0] = -d.Stretches[0]
	}
	d.U = leftRotation(f, d.V, d.Stretches)

	if r.opts.Policy == PolicyClamp {
		for i := range d.Stretches {
			if d.Stretches[i] < r.opts.InversionThreshold {
				d.Stretches[i] = r.opts.InversionThreshold
				d.Clamped = true
			}
		}
	}

	if d.Clamped {
		d.Invariants = stretchInvariants(d.Stretches)
	} else {
		d.Invariants = Invariants(f)
	}

	scale := math.Max(math.Abs(d.Stretches[0]), math.Max(math.Abs(d.Stretches[1]), math.Abs(d.Stretches[2])))
	for k, p := range pairs {
		d.Repeated[k] = math.Abs(d.Stretches[p[0]]-d.Stretches[p[1]]) <= r.opts.RepeatedTolerance*scale
	}

	return d, nil
}

// leftRotation builds U with det U = +1 from F·v_i = σ_i·u_i, using the
// two largest stretches and completing the basis with a cross product.
func leftRotation(f, v tensor.Mat3, s [3]float64) tensor.Mat3 {
	if s[2] == 0 {
		return v
	}

	u2 := f.MulVec(v.Col(2))
	if r3.Norm(u2) == 0 {
		u2 = r3.Vec{Z: 1}
	} else {
		u2 = r3.Unit(u2)
	}

	var u1 r3.Vec
	if math.Abs(s[1]) > 1e-12*s[2] {
		u1 = r3.Scale(1/s[1], f.MulVec(v.Col(1)))
		u1 = r3.Sub(u1, r3.Scale(r3.Dot(u1, u2), u2))
	}
	if n := r3.Norm(u1); n < 1e-8 {
		u1 = orthogonal(u2)
	} else {
		u1 = r3.Scale(1/n, u1)
	}

	var u tensor.Mat3
	u.SetCol(0, r3.Cross(u1, u2))
	u.SetCol(1, u1)
	u.SetCol(2, u2)
	return u
}

func stretchInvariants(s [3]float64) hyper.Invariants {
	a, b, c := s[0]*s[0], s[1]*s[1], s[2]*s[2]
	return hyper.Invariants{a + b + c, a*b + b*c + a*c, a * b * c}
}

// orthogonal returns a unit vector perpendicular to the unit vector v.
func orthogonal(v r3.Vec) r3.Vec {
	axis := r3.Vec{X: 1}
	if math.Abs(v.X) > 0.9 {
		axis = r3.Vec{Y: 1}
	}
	return r3.Unit(r3.Cross(v, axis))
}
