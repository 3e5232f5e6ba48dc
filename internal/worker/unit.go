// Package worker holds the per-chunk units of work and the loop a worker
// process runs to serve them.
package worker

import (
	"fmt"
	"runtime/debug"
	"slices"

	"github.com/parbench/parbench/internal/wire"
	"github.com/parbench/parbench/pkg/types"
)

// SortChunk returns a sorted copy of the chunk. The input is not modified.
func SortChunk(c types.Chunk) types.Chunk {
	out := make([]float64, len(c.Values))
	copy(out, c.Values)
	slices.Sort(out)
	return types.Chunk{Ordinal: c.Ordinal, Values: out}
}

// FilterChunk returns the samples strictly greater than threshold, in their
// original order.
func FilterChunk(c types.Chunk, threshold float64) types.Chunk {
	out := make([]float64, 0, len(c.Values)/2)
	for _, v := range c.Values {
		if v > threshold {
			out = append(out, v)
		}
	}
	return types.Chunk{Ordinal: c.Ordinal, Values: out}
}

// Apply runs one operation against one chunk.
func Apply(op types.Operation, c types.Chunk, threshold float64) (types.Chunk, error) {
	switch op {
	case types.OpSort:
		return SortChunk(c), nil
	case types.OpFilter:
		return FilterChunk(c, threshold), nil
	default:
		return types.Chunk{}, fmt.Errorf("unknown operation %q", op)
	}
}

// Run executes a task and converts any failure, panics included, into an
// error result for the same ordinal.
func Run(task wire.Task) (res wire.Result) {
	res.Ordinal = task.Ordinal
	defer func() {
		if r := recover(); r != nil {
			res.Values = nil
			res.Err = fmt.Sprintf("panic: %v\n%s", r, debug.Stack())
		}
	}()

	out, err := Apply(task.Op, types.Chunk{Ordinal: task.Ordinal, Values: task.Values}, task.Threshold)
	if err != nil {
		res.Err = err.Error()
		return res
	}
	res.Values = out.Values
	return res
}
