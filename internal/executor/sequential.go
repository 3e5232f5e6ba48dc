package executor

import (
	"context"

	"github.com/parbench/parbench/internal/worker"
	"github.com/parbench/parbench/pkg/types"
)

// Sequential is the single-threaded baseline.
type Sequential struct{}

// NewSequential creates the baseline strategy.
func NewSequential() *Sequential {
	return &Sequential{}
}

// Name returns the strategy name.
func (s *Sequential) Name() types.StrategyName {
	return types.StrategySequential
}

// Sort sorts a private copy of data. workers is validated but unused.
func (s *Sequential) Sort(ctx context.Context, data []float64, workers int) ([]float64, error) {
	if err := validateWorkers(workers); err != nil {
		return nil, err
	}
	return worker.SortChunk(types.Chunk{Values: data}).Values, nil
}

// Filter scans data once. workers is validated but unused.
func (s *Sequential) Filter(ctx context.Context, data []float64, threshold float64, workers int) ([]float64, error) {
	if err := validateWorkers(workers); err != nil {
		return nil, err
	}
	return worker.FilterChunk(types.Chunk{Values: data}, threshold).Values, nil
}
