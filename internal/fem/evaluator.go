package fem

import (
	"errors"
	"fmt"
	"math"
	"runtime"

	"github.com/san-kum/hyperfem/internal/hyper"
	"github.com/san-kum/hyperfem/internal/reduce"
	"github.com/san-kum/hyperfem/internal/tensor"
)

// Config controls an Evaluator.
type Config struct {
	Reduce reduce.Options

	// Workers bounds the goroutines used by EvaluateAll. Zero means
	// runtime.NumCPU().
	Workers int

	// MinChunk is the smallest number of elements given to one worker.
	MinChunk int
}

func DefaultConfig() Config {
	return Config{
		Reduce:   reduce.DefaultOptions(),
		Workers:  runtime.NumCPU(),
		MinChunk: 64,
	}
}

// Evaluator computes element energies, internal forces and stiffness
// matrices for one model on one shape.
type Evaluator struct {
	model hyper.Model
	shape Shape
	cfg   Config
	pool  *workspacePool
}

func NewEvaluator(model hyper.Model, shape Shape, cfg Config) (*Evaluator, error) {
	if model == nil {
		return nil, errors.New("fem: nil model")
	}
	if shape == nil {
		return nil, errors.New("fem: nil shape")
	}
	if err := cfg.Reduce.Validate(); err != nil {
		return nil, fmt.Errorf("fem: %w", err)
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.MinChunk <= 0 {
		cfg.MinChunk = 1
	}
	return &Evaluator{
		model: model,
		shape: shape,
		cfg:   cfg,
		pool:  newWorkspacePool(cfg.Reduce, shape.NumElementVertices()),
	}, nil
}

func (e *Evaluator) Model() hyper.Model { return e.model }
func (e *Evaluator) Shape() Shape       { return e.shape }
func (e *Evaluator) Config() Config     { return e.cfg }

// Dofs is the number of degrees of freedom of one element.
func (e *Evaluator) Dofs() int { return 3 * e.shape.NumElementVertices() }

// Evaluate returns the elastic energy of element el under deformation
// gradient f. Internal forces (length Dofs) and the row-major stiffness
// matrix (length Dofs²) are written into the given buffers, which are
// overwritten; pass nil to skip either one.
//
// Domain violations are returned as *hyper.DomainError with Element set
// to el, and leave the buffers untouched.
func (e *Evaluator) Evaluate(el int, f tensor.Mat3, forces, stiffness []float64) (float64, error) {
	n := e.shape.NumElementVertices()
	dofs := 3 * n
	if forces != nil && len(forces) != dofs {
		return 0, bufferError("forces", len(forces), dofs)
	}
	if stiffness != nil && len(stiffness) != dofs*dofs {
		return 0, bufferError("stiffness", len(stiffness), dofs*dofs)
	}

	ws := e.pool.Get()
	defer e.pool.Put(ws)

	d, err := ws.reducer.Reduce(f)
	if err != nil {
		return 0, withElement(err, el)
	}
	inv := d.Invariants
	if err := inv.Validate(); err != nil {
		return 0, withElement(err, el)
	}

	vol := e.shape.ElementVolume(el)
	energy := vol * e.model.ComputeEnergy(el, inv)
	if math.IsNaN(energy) || math.IsInf(energy, 0) {
		return 0, &hyper.DomainError{Element: el, Kind: hyper.NonFinite, Value: energy}
	}

	if forces == nil && stiffness == nil {
		return energy, nil
	}

	for a := 0; a < n; a++ {
		ws.grads[a] = e.shape.ShapeGradient(el, a)
	}

	grad := e.model.ComputeEnergyGradient(el, inv)
	pHat := PrincipalGradient(grad, d.Stretches)

	if forces != nil {
		p := Piola(&d, pHat)
		for a := 0; a < n; a++ {
			g := ws.grads[a]
			for i := 0; i < 3; i++ {
				forces[3*a+i] = vol * (p[i][0]*g[0] + p[i][1]*g[1] + p[i][2]*g[2])
			}
		}
	}

	if stiffness != nil {
		hHat := PrincipalHessian(grad, e.model.ComputeEnergyHessian(el, inv), d.Stretches)
		PiolaDerivative(&d, pHat, hHat, &ws.dPdF)
		assembleStiffness(&ws.dPdF, ws.grads, ws.q, vol, stiffness)
	}

	return energy, nil
}

// assembleStiffness writes K[(a,i),(b,k)] = vol·Σ_jl ∂P_ij/∂F_kl ∇N_a[j] ∇N_b[l].
// q is scratch of length 27n.
func assembleStiffness(dPdF *[81]float64, grads [][3]float64, q []float64, vol float64, out []float64) {
	n := len(grads)
	dofs := 3 * n

	// q[b][ij][k] = Σ_l ∂P_ij/∂F_kl ∇N_b[l]
	for b := 0; b < n; b++ {
		g := grads[b]
		qb := q[27*b : 27*b+27]
		for ij := 0; ij < 9; ij++ {
			row := dPdF[9*ij : 9*ij+9]
			for k := 0; k < 3; k++ {
				qb[3*ij+k] = row[3*k]*g[0] + row[3*k+1]*g[1] + row[3*k+2]*g[2]
			}
		}
	}

	for a := 0; a < n; a++ {
		ga := grads[a]
		for i := 0; i < 3; i++ {
			r := (3*a + i) * dofs
			for b := 0; b < n; b++ {
				qb := q[27*b : 27*b+27]
				for k := 0; k < 3; k++ {
					v := 0.0
					for j := 0; j < 3; j++ {
						v += ga[j] * qb[3*(3*i+j)+k]
					}
					out[r+3*b+k] = vol * v
				}
			}
		}
	}
}

func withElement(err error, el int) error {
	var de *hyper.DomainError
	if errors.As(err, &de) {
		c := *de
		c.Element = el
		return &c
	}
	return fmt.Errorf("fem: element %d: %w", el, err)
}
