package invoke

import (
	"context"
	"fmt"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Job is one command with its arguments, as accepted by Interpreter.Run.
type Job struct {
	Command string
	Images  any
	Names   any
}

// Pool runs jobs on a fixed number of workers. Each worker owns its own
// engine instance, created from the factory when a batch starts; workers
// share no mutable state.
type Pool struct {
	factory Factory
	size    int
}

// NewPool creates a pool of size workers. If size <= 0, uses GOMAXPROCS.
func NewPool(factory Factory, size int) *Pool {
	if size <= 0 {
		size = runtime.GOMAXPROCS(0)
	}
	return &Pool{factory: factory, size: size}
}

// Size returns the number of workers.
func (p *Pool) Size() int {
	return p.size
}

// RunBatch runs every job and returns one error slot per job.
//
// Jobs must not share arguments with each other. The returned error is
// non-nil only if a worker could not create its engine or ctx was cancelled;
// jobs not yet started at that point report the same error.
func (p *Pool) RunBatch(ctx context.Context, jobs []Job) ([]error, error) {
	results := make([]error, len(jobs))
	done := make([]bool, len(jobs))
	queue := make(chan int)

	workers := p.size
	if workers > len(jobs) {
		workers = len(jobs)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(queue)
		for i := range jobs {
			select {
			case queue <- i:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	for w := 0; w < workers; w++ {
		w := w
		g.Go(func() error {
			engine, err := p.factory()
			if err != nil {
				return fmt.Errorf("worker %d: failed to create engine: %w", w, err)
			}
			interp := NewInterpreter(engine)
			for i := range queue {
				job := jobs[i]
				results[i] = interp.Run(job.Command, job.Images, job.Names)
				done[i] = true
			}
			Logger().Debug("worker done", zap.Int("worker", w), zap.Int("calls", interp.Calls()))
			return nil
		})
	}

	err := g.Wait()
	if err != nil {
		for i := range results {
			if !done[i] {
				results[i] = err
			}
		}
	}
	return results, err
}
