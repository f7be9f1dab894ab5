package fem

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/hyperfem/internal/tensor"
)

// DeformationFunc returns the deformation gradient of element el.
type DeformationFunc func(el int) tensor.Mat3

// Batch holds the results of evaluating every element of a shape.
// Element el owns Energy[el], its Dofs-long slice of Forces, its Dofs²-long
// slice of Stiffness and Errs[el].
type Batch struct {
	NumElements int
	Dofs        int

	Energy    []float64
	Forces    []float64
	Stiffness []float64
	Errs      []error
}

// NewBatch allocates results for numElements elements with numVertices
// vertices each. Stiffness is nil unless withStiffness is set.
func NewBatch(numElements, numVertices int, withStiffness bool) *Batch {
	dofs := 3 * numVertices
	b := &Batch{
		NumElements: numElements,
		Dofs:        dofs,
		Energy:      make([]float64, numElements),
		Forces:      make([]float64, numElements*dofs),
		Errs:        make([]error, numElements),
	}
	if withStiffness {
		b.Stiffness = make([]float64, numElements*dofs*dofs)
	}
	return b
}

func (b *Batch) ElementForces(el int) []float64 {
	return b.Forces[el*b.Dofs : (el+1)*b.Dofs]
}

func (b *Batch) ElementStiffness(el int) []float64 {
	if b.Stiffness == nil {
		return nil
	}
	n := b.Dofs * b.Dofs
	return b.Stiffness[el*n : (el+1)*n]
}

// TotalEnergy sums the energy of the elements that evaluated cleanly.
func (b *Batch) TotalEnergy() float64 {
	total := 0.0
	for el, e := range b.Energy {
		if b.Errs[el] == nil {
			total += e
		}
	}
	return total
}

// Failed returns the indices of elements whose evaluation returned an error.
func (b *Batch) Failed() []int {
	var out []int
	for el, err := range b.Errs {
		if err != nil {
			out = append(out, el)
		}
	}
	return out
}

// EvaluateAll evaluates every element into b. Elements are split into
// contiguous chunks, one goroutine each. A failing element does not stop
// the others: its error is kept in b.Errs, its outputs are zeroed and all
// element errors are returned joined. The context is checked between elements.
func (e *Evaluator) EvaluateAll(ctx context.Context, deform DeformationFunc, b *Batch) error {
	n := e.shape.NumElements()
	if b.NumElements != n || b.Dofs != e.Dofs() {
		return ErrShapeMismatch
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, r := range chunks(n, e.cfg.Workers, e.cfg.MinChunk) {
		start, end := r[0], r[1]
		g.Go(func() error {
			for el := start; el < end; el++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				forces, stiffness := b.ElementForces(el), b.ElementStiffness(el)
				b.Energy[el], b.Errs[el] = e.Evaluate(el, deform(el), forces, stiffness)
				if b.Errs[el] != nil {
					// Evaluate leaves the buffers untouched; a reused batch would keep stale values.
					b.Energy[el] = 0
					clear(forces)
					clear(stiffness)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return errors.Join(b.Errs...)
}

// chunks splits [0, n) into at most workers contiguous ranges of at least
// minChunk elements.
func chunks(n, workers, minChunk int) [][2]int {
	if n == 0 {
		return nil
	}
	if n/minChunk < workers {
		workers = n / minChunk
	}
	if workers < 1 {
		workers = 1
	}

	size := (n + workers - 1) / workers
	out := make([][2]int, 0, workers)
	for start := 0; start < n; start += size {
		end := start + size
		if end > n {
			end = n
		}
		out = append(out, [2]int{start, end})
	}
	return out
}
