package executor

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/parbench/parbench/internal/partition"
	"github.com/parbench/parbench/internal/worker"
	"github.com/parbench/parbench/pkg/types"
)

// ApplyFunc runs one operation on one chunk.
type ApplyFunc func(op types.Operation, c types.Chunk, threshold float64) (types.Chunk, error)

// ThreadPool runs chunks on goroutines that are each locked to their own
// OS thread for the lifetime of the call.
type ThreadPool struct {
	apply ApplyFunc
}

// NewThreadPool creates a thread-pool strategy.
func NewThreadPool() *ThreadPool {
	return &ThreadPool{apply: worker.Apply}
}

// Name returns the strategy name.
func (p *ThreadPool) Name() types.StrategyName {
	return types.StrategyThreadPool
}

// Sort sorts each chunk on the pool and k-way merges the runs.
func (p *ThreadPool) Sort(ctx context.Context, data []float64, workers int) ([]float64, error) {
	return p.run(ctx, types.OpSort, data, 0, workers)
}

// Filter filters each chunk on the pool and concatenates by ordinal.
func (p *ThreadPool) Filter(ctx context.Context, data []float64, threshold float64, workers int) ([]float64, error) {
	return p.run(ctx, types.OpFilter, data, threshold, workers)
}

func (p *ThreadPool) run(ctx context.Context, op types.Operation, data []float64, threshold float64, workers int) ([]float64, error) {
	chunks, err := partition.Partition(data, workers)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return []float64{}, nil
	}

	tasks := make(chan types.Chunk, len(chunks))
	for _, c := range chunks {
		tasks <- c
	}
	close(tasks)

	outputs := make([][]float64, len(chunks))
	failures := make([]error, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			runtime.LockOSThread()
			defer runtime.UnlockOSThread()

			for c := range tasks {
				if err := gctx.Err(); err != nil {
					return err
				}
				// Each ordinal is written by exactly one goroutine.
				outputs[c.Ordinal], failures[c.Ordinal] = p.applySafe(op, c, threshold)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return assemble(p.Name(), op, outputs, failures)
}

func (p *ThreadPool) applySafe(op types.Operation, c types.Chunk, threshold float64) (values []float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			values = nil
			err = fmt.Errorf("chunk %d: panic: %v", c.Ordinal, r)
		}
	}()

	out, err := p.apply(op, c, threshold)
	if err != nil {
		return nil, fmt.Errorf("chunk %d: %w", c.Ordinal, err)
	}
	return out.Values, nil
}
