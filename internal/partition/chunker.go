// Package partition splits datasets into contiguous chunks for parallel work.
package partition

import (
	benchErrors "github.com/parbench/parbench/internal/errors"
	"github.com/parbench/parbench/pkg/types"
)

// ChunkSize returns ceil(n/workers), the length of every chunk except
// possibly the trailing ones.
func ChunkSize(n, workers int) int {
	if workers <= 0 || n <= 0 {
		return 0
	}
	return (n + workers - 1) / workers
}

// Partition splits dataset into exactly workers contiguous chunks of
// ChunkSize(len(dataset), workers) samples. When the step overshoots the
// dataset the trailing chunks are empty. An empty dataset yields no chunks.
//
// Chunk values alias dataset; their capacity is clipped so that appending to
// one chunk can never overwrite its neighbour.
func Partition(dataset []float64, workers int) ([]types.Chunk, error) {
	if workers <= 0 {
		return nil, benchErrors.InvalidWorkerCount(workers)
	}

	n := len(dataset)
	if n == 0 {
		return []types.Chunk{}, nil
	}

	size := ChunkSize(n, workers)
	chunks := make([]types.Chunk, workers)
	for i := range chunks {
		start := min(i*size, n)
		end := min(start+size, n)
		chunks[i] = types.Chunk{
			Ordinal: i,
			Values:  dataset[start:end:end],
		}
	}

	return chunks, nil
}

// Values returns the value slices of chunks in ordinal order.
func Values(chunks []types.Chunk) [][]float64 {
	out := make([][]float64, len(chunks))
	for i, c := range chunks {
		out[i] = c.Values
	}
	return out
}
