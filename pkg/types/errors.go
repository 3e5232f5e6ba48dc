package types

import "errors"

// Dataset-level sentinel errors.
var (
	// ErrNotSorted is returned when a sequence expected to be sorted is not.
	ErrNotSorted = errors.New("sequence is not sorted")

	// ErrLengthMismatch is returned when two results that must hold the same
	// multiset of values differ in length.
	ErrLengthMismatch = errors.New("result length mismatch")
)
