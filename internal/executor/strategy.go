// Package executor provides the execution strategies compared by the
// benchmark: a sequential baseline, a pool of OS processes and a pool of
// OS-thread-bound goroutines.
package executor

import (
	"context"
	"errors"
	"fmt"
	"sort"

	benchErrors "github.com/parbench/parbench/internal/errors"
	"github.com/parbench/parbench/internal/merge"
	"github.com/parbench/parbench/pkg/types"
)

// Strategy runs the benchmarked operations over a dataset. Implementations
// must not modify data.
type Strategy interface {
	// Name identifies the strategy in records and reports
	Name() types.StrategyName

	// Sort returns an ascending permutation of data
	Sort(ctx context.Context, data []float64, workers int) ([]float64, error)

	// Filter returns the samples strictly greater than threshold, in order
	Filter(ctx context.Context, data []float64, threshold float64, workers int) ([]float64, error)
}

// Config holds configuration shared by all strategies.
type Config struct {
	// Process configures worker processes for the process-pool strategy
	Process PoolConfig
}

// DefaultConfig returns the default executor configuration.
func DefaultConfig() Config {
	return Config{Process: DefaultPoolConfig()}
}

// New creates the strategy registered under name.
func New(name types.StrategyName, cfg Config) (Strategy, error) {
	switch name {
	case types.StrategySequential:
		return NewSequential(), nil
	case types.StrategyThreadPool:
		return NewThreadPool(), nil
	case types.StrategyProcessPool:
		return NewProcessPool(cfg.Process), nil
	default:
		return nil, benchErrors.NewConfigError(benchErrors.CodeInvalidStrategy,
			fmt.Sprintf("unknown strategy %q", name)).
			WithDetails(map[string]interface{}{"strategy": string(name)})
	}
}

// NewAll creates the named strategies in the canonical execution order.
func NewAll(names []types.StrategyName, cfg Config) ([]Strategy, error) {
	ordered := make([]types.StrategyName, len(names))
	copy(ordered, names)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Rank() < ordered[j].Rank()
	})

	strategies := make([]Strategy, 0, len(ordered))
	for _, name := range ordered {
		s, err := New(name, cfg)
		if err != nil {
			return nil, err
		}
		strategies = append(strategies, s)
	}
	return strategies, nil
}

func validateWorkers(workers int) error {
	if workers <= 0 {
		return benchErrors.InvalidWorkerCount(workers)
	}
	return nil
}

// assemble turns per-chunk outputs into the final result. Any chunk failure
// fails the whole call with one aggregate error naming every failed ordinal.
func assemble(name types.StrategyName, op types.Operation, outputs [][]float64, failures []error) ([]float64, error) {
	var ordinals []int
	var causes []error
	for i, err := range failures {
		if err != nil {
			ordinals = append(ordinals, i)
			causes = append(causes, err)
		}
	}
	if len(causes) > 0 {
		return nil, benchErrors.NewWorkerError(benchErrors.CodeWorkerFailed,
			fmt.Sprintf("%s %s: %d of %d chunks failed (ordinals %v)", name, op, len(ordinals), len(outputs), ordinals),
			errors.Join(causes...)).
			WithDetails(map[string]interface{}{
				"strategy":  string(name),
				"operation": string(op),
				"ordinals":  ordinals,
			})
	}

	if op == types.OpSort {
		return merge.Merge(outputs), nil
	}

	chunks := make([]types.Chunk, len(outputs))
	for i, values := range outputs {
		chunks[i] = types.Chunk{Ordinal: i, Values: values}
	}
	return merge.Concat(chunks), nil
}
