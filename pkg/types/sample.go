// Package types provides core data types for parbench.
package types

// Sample is a single numeric measurement (a trip duration in seconds for
// the reference dataset). Samples are immutable once loaded.
type Sample = float64

// Chunk is a contiguous sub-sequence of a dataset assigned to one worker.
type Chunk struct {
	// Ordinal is the chunk's position among its siblings, starting at 0.
	Ordinal int `json:"ordinal"`

	// Values aliases the parent dataset and must be treated as read-only.
	Values []float64 `json:"values"`
}

// Len returns the number of samples in the chunk.
func (c Chunk) Len() int {
	return len(c.Values)
}

// Operation names one of the benchmarked data operations.
type Operation string

const (
	// OpSort produces a total order of the dataset.
	OpSort Operation = "sort"

	// OpFilter keeps samples strictly greater than a threshold.
	OpFilter Operation = "filter"
)

// Operations lists the benchmarked operations in execution order.
var Operations = []Operation{OpSort, OpFilter}

// Valid reports whether op is a known operation.
func (op Operation) Valid() bool {
	return op == OpSort || op == OpFilter
}
