package executor

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/parbench/parbench/internal/partition"
	"github.com/parbench/parbench/internal/wire"
	"github.com/parbench/parbench/pkg/types"
)

// ProcessPool runs chunks in separate OS processes. A fresh group of
// processes is started for every call and torn down before it returns, so
// process startup is part of the measured cost.
type ProcessPool struct {
	config PoolConfig

	mu    sync.Mutex
	stats PoolStats
}

// NewProcessPool creates a process-pool strategy.
func NewProcessPool(config PoolConfig) *ProcessPool {
	return &ProcessPool{config: config}
}

// Name returns the strategy name.
func (p *ProcessPool) Name() types.StrategyName {
	return types.StrategyProcessPool
}

// Sort sorts each chunk in a worker process and k-way merges the runs.
func (p *ProcessPool) Sort(ctx context.Context, data []float64, workers int) ([]float64, error) {
	return p.run(ctx, types.OpSort, data, 0, workers)
}

// Filter filters each chunk in a worker process and concatenates by ordinal.
func (p *ProcessPool) Filter(ctx context.Context, data []float64, threshold float64, workers int) ([]float64, error) {
	return p.run(ctx, types.OpFilter, data, threshold, workers)
}

// Stats returns cumulative statistics across calls.
func (p *ProcessPool) Stats() PoolStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}

func (p *ProcessPool) run(ctx context.Context, op types.Operation, data []float64, threshold float64, workers int) ([]float64, error) {
	chunks, err := partition.Partition(data, workers)
	if err != nil {
		return nil, err
	}
	p.record(func(s *PoolStats) { s.Calls++ })
	if len(chunks) == 0 {
		return []float64{}, nil
	}

	group, err := StartProcessGroup(ctx, p.config, workers)
	if err != nil {
		return nil, err
	}
	p.record(func(s *PoolStats) { s.ProcessesSpawned += int64(group.Size()) })

	tasks := make(chan types.Chunk, len(chunks))
	for _, c := range chunks {
		tasks <- c
	}
	close(tasks)

	outputs := make([][]float64, len(chunks))
	failures := make([]error, len(chunks))
	done := make([]bool, len(chunks))

	var wg sync.WaitGroup
	for _, proc := range group.procs {
		wg.Add(1)
		go func(proc *workerProcess) {
			defer wg.Done()
			for c := range tasks {
				res, err := proc.roundTrip(wire.Task{Op: op, Ordinal: c.Ordinal, Threshold: threshold, Values: c.Values})
				done[c.Ordinal] = true
				if err != nil {
					// The stream is unusable; leave remaining chunks to
					// the other workers.
					failures[c.Ordinal] = err
					proc.kill()
					return
				}
				if res.Failed() {
					failures[c.Ordinal] = fmt.Errorf("chunk %d: %s", c.Ordinal, res.Err)
					continue
				}
				outputs[c.Ordinal] = res.Values
			}
		}(proc)
	}
	wg.Wait()

	closeErr := group.Close()

	for i := range chunks {
		if !done[i] {
			failures[i] = fmt.Errorf("chunk %d: no worker left to run it", i)
		}
	}

	failed := 0
	for _, err := range failures {
		if err != nil {
			failed++
		}
	}
	p.record(func(s *PoolStats) {
		s.ChunksSent += int64(len(chunks))
		s.ChunksFailed += int64(failed)
	})

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if closeErr != nil {
		// Results are already in hand; an unclean exit is only worth a log line.
		log.Printf("executor: process-pool teardown (%d failed chunks): %v", failed, closeErr)
	}

	return assemble(p.Name(), op, outputs, failures)
}

func (p *ProcessPool) record(fn func(*PoolStats)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fn(&p.stats)
}
