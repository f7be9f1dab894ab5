package fem

import (
	"sync"

	"github.com/san-kum/hyperfem/internal/reduce"
)

// workspace holds the per-goroutine scratch of one element evaluation.
type workspace struct {
	reducer *reduce.Reducer
	dPdF    [81]float64
	grads   [][3]float64
	q       []float64
}

type workspacePool struct {
	pool sync.Pool
}

func newWorkspacePool(opts reduce.Options, numVertices int) *workspacePool {
	return &workspacePool{
		pool: sync.Pool{
			New: func() interface{} {
				return &workspace{
					reducer: reduce.NewReducer(opts),
					grads:   make([][3]float64, numVertices),
					q:       make([]float64, 27*numVertices),
				}
			},
		},
	}
}

func (p *workspacePool) Get() *workspace {
	return p.pool.Get().(*workspace)
}

func (p *workspacePool) Put(ws *workspace) {
	p.pool.Put(ws)
}
