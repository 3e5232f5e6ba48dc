package partition

import (
	"fmt"

	"github.com/parbench/parbench/pkg/types"
)

// Layout summarizes how a dataset was split, for logging.
type Layout struct {
	Chunks      int
	Samples     int
	ChunkSize   int
	MinLen      int
	MaxLen      int
	EmptyChunks int
}

// Describe computes the layout of chunks.
func Describe(chunks []types.Chunk) Layout {
	l := Layout{Chunks: len(chunks)}
	for i, c := range chunks {
		n := c.Len()
		l.Samples += n
		if i == 0 || n < l.MinLen {
			l.MinLen = n
		}
		if n > l.MaxLen {
			l.MaxLen = n
		}
		if n == 0 {
			l.EmptyChunks++
		}
	}
	l.ChunkSize = l.MaxLen
	return l
}

// String returns a compact description like "4 chunks x 250 (1000 samples, 0 empty)".
func (l Layout) String() string {
	return fmt.Sprintf("%d chunks x %d (%d samples, %d empty)", l.Chunks, l.ChunkSize, l.Samples, l.EmptyChunks)
}
