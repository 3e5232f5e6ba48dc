// Package merge combines per-chunk results back into a single sequence.
package merge

import (
	"cmp"
	"slices"

	"github.com/parbench/parbench/pkg/types"
)

// cursor tracks the read position inside one sorted run.
type cursor struct {
	run []float64
	pos int
	idx int
}

func (c *cursor) head() float64 {
	return c.run[c.pos]
}

// Merge performs a heap-based k-way merge of sorted runs in O(N log K).
// Runs must already be ascending; use IsSorted to check. Empty runs are
// skipped. The result is never nil.
func Merge(runs [][]float64) []float64 {
	total := 0
	heap := make([]*cursor, 0, len(runs))
	for i, run := range runs {
		if len(run) == 0 {
			continue
		}
		total += len(run)
		heap = append(heap, &cursor{run: run, idx: i})
	}

	out := make([]float64, 0, total)
	if len(heap) == 1 {
		return append(out, heap[0].run...)
	}

	buildHeap(heap)
	for len(heap) > 0 {
		min := heap[0]
		out = append(out, min.head())
		min.pos++

		if min.pos == len(min.run) {
			// Run exhausted, remove from heap
			heap[0] = heap[len(heap)-1]
			heap = heap[:len(heap)-1]
		}
		if len(heap) > 0 {
			heapifyDown(heap, 0)
		}
	}
	return out
}

// MergeChunks merges the values of sorted chunks.
func MergeChunks(chunks []types.Chunk) []float64 {
	runs := make([][]float64, len(chunks))
	for i, c := range chunks {
		runs[i] = c.Values
	}
	return Merge(runs)
}

// Concat joins chunk values in slice order. The result is never nil.
func Concat(chunks []types.Chunk) []float64 {
	total := 0
	for _, c := range chunks {
		total += len(c.Values)
	}
	out := make([]float64, 0, total)
	for _, c := range chunks {
		out = append(out, c.Values...)
	}
	return out
}

// IsSorted reports whether values are in non-decreasing order, with NaNs
// ordered first as slices.Sort leaves them.
func IsSorted(values []float64) bool {
	return slices.IsSorted(values)
}

// buildHeap builds a min-heap from the cursors.
func buildHeap(heap []*cursor) {
	for i := len(heap)/2 - 1; i >= 0; i-- {
		heapifyDown(heap, i)
	}
}

// heapifyDown maintains heap property by moving element down.
func heapifyDown(heap []*cursor, i int) {
	for {
		smallest := i
		left := 2*i + 1
		right := 2*i + 2

		if left < len(heap) && less(heap[left], heap[smallest]) {
			smallest = left
		}
		if right < len(heap) && less(heap[right], heap[smallest]) {
			smallest = right
		}

		if smallest == i {
			break
		}

		heap[i], heap[smallest] = heap[smallest], heap[i]
		i = smallest
	}
}

// less orders by head value (NaN first, like slices.Sort), then by run
// index so equal values drain from earlier runs first.
func less(a, b *cursor) bool {
	if c := cmp.Compare(a.head(), b.head()); c != 0 {
		return c < 0
	}
	return a.idx < b.idx
}
