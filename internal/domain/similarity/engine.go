package similarity

import (
	"runtime"
	"sync"
	"time"

	"github.com/turtacn/ChemPrep/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ChemPrep/pkg/errors"
)

// Engine computes dense pairwise similarity matrices using a fixed-size
// worker pool. Cell computations are independent, so the pool spreads the
// full Cartesian product of query×reference pairs over the workers; results
// are written straight into their matrix slots, which keeps the output
// deterministic regardless of scheduling.
type Engine struct {
	registry *Registry
	logger   logging.Logger
	workers  int
}

// NewEngine constructs an Engine. A workers value of zero or less selects
// runtime.NumCPU().
func NewEngine(registry *Registry, logger logging.Logger, workers int) *Engine {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Engine{
		registry: registry,
		logger:   logger.Named("engine"),
		workers:  workers,
	}
}

// Registry exposes the engine's function registry so callers can register
// custom metrics before computing.
func (e *Engine) Registry() *Registry { return e.registry }

// PairwiseMatrix computes the similarity of every query against every
// reference using the named metric, returning a len(queries)×len(references)
// matrix.
//
// Errors from individual cells are fatal: the first one is reported after
// all scheduled work has drained. There is no retry and no partial result.
func (e *Engine) PairwiseMatrix(metric string, queries, references []*Molecule) (*Matrix, error) {
	fn, err := e.registry.Lookup(metric)
	if err != nil {
		return nil, err
	}
	if len(queries) == 0 || len(references) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidParam,
			"both molecule sets must be non-empty")
	}

	matrix := NewMatrix(len(queries), len(references))
	tasks := make(chan int, e.workers)

	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)

	start := time.Now()
	for w := 0; w < e.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range tasks {
				i, j := idx/matrix.Cols, idx%matrix.Cols
				v, cellErr := fn(queries[i], references[j])
				if cellErr != nil {
					errOnce.Do(func() { firstErr = cellErr })
					continue
				}
				matrix.Set(i, j, v)
			}
		}()
	}
	for idx := 0; idx < matrix.Rows*matrix.Cols; idx++ {
		tasks <- idx
	}
	close(tasks)
	wg.Wait()

	if firstErr != nil {
		return nil, errors.Wrap(firstErr, errors.ErrCodeUnknown, "pairwise similarity failed")
	}

	e.logger.Debug("pairwise matrix computed",
		logging.String("metric", metric),
		logging.Int("rows", matrix.Rows),
		logging.Int("cols", matrix.Cols),
		logging.Int("workers", e.workers),
		logging.Duration("elapsed", time.Since(start)),
	)
	return matrix, nil
}

// SelfMatrix computes the pairwise similarity of a molecule set against
// itself. At least two molecules are required, since a self-comparison of a
// single molecule has no off-diagonal cells to report.
func (e *Engine) SelfMatrix(metric string, mols []*Molecule) (*Matrix, error) {
	if len(mols) < 2 {
		return nil, errors.New(errors.ErrCodeSelfComparisonTooSmall,
			"self-comparison requires at least two molecules")
	}
	return e.PairwiseMatrix(metric, mols, mols)
}
