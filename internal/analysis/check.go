package analysis

import (
	"fmt"
	"math"

	"github.com/san-kum/hyperfem/internal/fem"
	"github.com/san-kum/hyperfem/internal/hyper"
	"github.com/san-kum/hyperfem/internal/reduce"
	"github.com/san-kum/hyperfem/internal/tensor"
)

const (
	DefaultStep      = 1e-6
	DefaultTolerance = 1e-5
)

// CheckResult is the outcome of one finite-difference comparison.
type CheckResult struct {
	Name     string
	MaxError float64 // largest |analytic − fd| / max(1, |analytic|, |fd|)
	Worst    int     // flat index of the worst entry
	Entries  int
}

func (r CheckResult) Passed(tol float64) bool {
	return !math.IsNaN(r.MaxError) && r.MaxError <= tol
}

func (r CheckResult) String() string {
	return fmt.Sprintf("%s: max error %.3e at %d of %d", r.Name, r.MaxError, r.Worst, r.Entries)
}

func (r *CheckResult) observe(i int, analytic, fd float64) {
	scale := math.Max(1, math.Max(math.Abs(analytic), math.Abs(fd)))
	e := math.Abs(analytic-fd) / scale
	if math.IsNaN(e) {
		e = math.Inf(1)
	}
	if e > r.MaxError || r.Entries == 0 {
		r.MaxError = e
		r.Worst = i
	}
	r.Entries++
}

// CheckGradient compares ComputeEnergyGradient with central differences of
// ComputeEnergy. Steps are relative to each invariant.
func CheckGradient(m hyper.Model, el int, inv hyper.Invariants, h float64) CheckResult {
	res := CheckResult{Name: "gradient"}
	grad := m.ComputeEnergyGradient(el, inv)
	for i := 0; i < 3; i++ {
		step := h * math.Max(1, math.Abs(inv[i]))
		p, q := inv, inv
		p[i] += step
		q[i] -= step
		fd := (m.ComputeEnergy(el, p) - m.ComputeEnergy(el, q)) / (2 * step)
		res.observe(i, grad[i], fd)
	}
	return res
}

// CheckHessian compares ComputeEnergyHessian with central differences of
// ComputeEnergyGradient.
func CheckHessian(m hyper.Model, el int, inv hyper.Invariants, h float64) CheckResult {
	res := CheckResult{Name: "hessian"}
	hess := m.ComputeEnergyHessian(el, inv)
	for j := 0; j < 3; j++ {
		step := h * math.Max(1, math.Abs(inv[j]))
		p, q := inv, inv
		p[j] += step
		q[j] -= step
		gp := m.ComputeEnergyGradient(el, p)
		gq := m.ComputeEnergyGradient(el, q)
		for i := 0; i < 3; i++ {
			res.observe(3*i+j, hess.At(i, j), (gp[i]-gq[i])/(2*step))
		}
	}
	return res
}

// perturb returns F after moving vertex a of element el by step along
// axis i: F + step·e_i ⊗ ∇N_a.
func perturb(shape fem.Shape, el int, f tensor.Mat3, a, i int, step float64) tensor.Mat3 {
	g := shape.ShapeGradient(el, a)
	for j := 0; j < 3; j++ {
		f[i][j] += step * g[j]
	}
	return f
}

// CheckForces compares the forces of Evaluate with central differences of
// the element energy.
func CheckForces(e *fem.Evaluator, el int, f tensor.Mat3, h float64) (CheckResult, error) {
	res := CheckResult{Name: "forces"}
	shape := e.Shape()
	forces := make([]float64, e.Dofs())
	if _, err := e.Evaluate(el, f, forces, nil); err != nil {
		return res, err
	}

	for a := 0; a < shape.NumElementVertices(); a++ {
		for i := 0; i < 3; i++ {
			ep, err := e.Evaluate(el, perturb(shape, el, f, a, i, h), nil, nil)
			if err != nil {
				return res, err
			}
			em, err := e.Evaluate(el, perturb(shape, el, f, a, i, -h), nil, nil)
			if err != nil {
				return res, err
			}
			res.observe(3*a+i, forces[3*a+i], (ep-em)/(2*h))
		}
	}
	return res, nil
}

// CheckStiffness compares the stiffness of Evaluate with central
// differences of its forces.
func CheckStiffness(e *fem.Evaluator, el int, f tensor.Mat3, h float64) (CheckResult, error) {
	res := CheckResult{Name: "stiffness"}
	shape := e.Shape()
	dofs := e.Dofs()
	k := make([]float64, dofs*dofs)
	if _, err := e.Evaluate(el, f, nil, k); err != nil {
		return res, err
	}

	fp := make([]float64, dofs)
	fm := make([]float64, dofs)
	for a := 0; a < shape.NumElementVertices(); a++ {
		for i := 0; i < 3; i++ {
			col := 3*a + i
			if _, err := e.Evaluate(el, perturb(shape, el, f, a, i, h), fp, nil); err != nil {
				return res, err
			}
			if _, err := e.Evaluate(el, perturb(shape, el, f, a, i, -h), fm, nil); err != nil {
				return res, err
			}
			for r := 0; r < dofs; r++ {
				res.observe(r*dofs+col, k[r*dofs+col], (fp[r]-fm[r])/(2*h))
			}
		}
	}
	return res, nil
}

// ModelReport collects the checks of one model over several deformations.
type ModelReport struct {
	Model   string
	Results []CheckResult
}

// Worst returns the result with the largest error.
func (r ModelReport) Worst() CheckResult {
	var worst CheckResult
	for i, res := range r.Results {
		if i == 0 || res.MaxError > worst.MaxError || math.IsNaN(res.MaxError) {
			worst = res
		}
	}
	return worst
}

func (r ModelReport) Passed(tol float64) bool {
	for _, res := range r.Results {
		if !res.Passed(tol) {
			return false
		}
	}
	return true
}

// CheckModel runs every check on element el of the evaluator at each of
// the given deformation gradients.
func CheckModel(name string, e *fem.Evaluator, el int, deformations []tensor.Mat3, h float64) (ModelReport, error) {
	report := ModelReport{Model: name}
	for _, f := range deformations {
		inv := reduce.Invariants(f)
		report.Results = append(report.Results,
			CheckGradient(e.Model(), el, inv, h),
			CheckHessian(e.Model(), el, inv, h),
		)

		res, err := CheckForces(e, el, f, h)
		if err != nil {
			return report, err
		}
		report.Results = append(report.Results, res)

		res, err = CheckStiffness(e, el, f, h)
		if err != nil {
			return report, err
		}
		report.Results = append(report.Results, res)
	}
	return report, nil
}
