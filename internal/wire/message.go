// Package wire implements the framed protocol spoken between the
// process-pool strategy and its worker processes.
//
// Messages are protobuf wire-format records, compressed with Snappy and
// framed as:
//   - 4 bytes: magic "PBW1"
//   - 4 bytes: payload length (uint32, little-endian)
//   - 4 bytes: murmur3-32 checksum of the payload (uint32, little-endian)
//   - payload: snappy(protobuf message)
package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/parbench/parbench/pkg/types"
)

// Task field numbers.
const (
	taskFieldOp        protowire.Number = 1
	taskFieldOrdinal   protowire.Number = 2
	taskFieldThreshold protowire.Number = 3
	taskFieldValues    protowire.Number = 4
)

// Result field numbers.
const (
	resultFieldOrdinal protowire.Number = 1
	resultFieldValues  protowire.Number = 2
	resultFieldError   protowire.Number = 3
)

// Operation codes on the wire.
const (
	opCodeSort   uint64 = 1
	opCodeFilter uint64 = 2
)

// ErrMalformed is returned when a message cannot be decoded.
var ErrMalformed = errors.New("wire: malformed message")

// Task asks a worker to apply one operation to one chunk.
type Task struct {
	Op        types.Operation
	Ordinal   int
	Threshold float64
	Values    []float64
}

// Result is a worker's answer to a Task. A non-empty Err marks the chunk
// as failed.
type Result struct {
	Ordinal int
	Values  []float64
	Err     string
}

// Failed reports whether the worker reported an error for the chunk.
func (r Result) Failed() bool {
	return r.Err != ""
}

// MarshalTask encodes a task in protobuf wire format.
func MarshalTask(t Task) ([]byte, error) {
	var op uint64
	switch t.Op {
	case types.OpSort:
		op = opCodeSort
	case types.OpFilter:
		op = opCodeFilter
	default:
		return nil, fmt.Errorf("wire: unknown operation %q", t.Op)
	}

	b := make([]byte, 0, 32+len(t.Values)*8)
	b = protowire.AppendTag(b, taskFieldOp, protowire.VarintType)
	b = protowire.AppendVarint(b, op)
	b = protowire.AppendTag(b, taskFieldOrdinal, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(t.Ordinal))
	b = protowire.AppendTag(b, taskFieldThreshold, protowire.Fixed64Type)
	b = protowire.AppendFixed64(b, math.Float64bits(t.Threshold))
	b = appendPackedDoubles(b, taskFieldValues, t.Values)
	return b, nil
}

// UnmarshalTask decodes a task, skipping unknown fields.
func UnmarshalTask(b []byte) (Task, error) {
	var t Task
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return Task{}, fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(n))
		}
		b = b[n:]

		switch {
		case num == taskFieldOp && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return Task{}, fmt.Errorf("%w: op: %v", ErrMalformed, protowire.ParseError(n))
			}
			switch v {
			case opCodeSort:
				t.Op = types.OpSort
			case opCodeFilter:
				t.Op = types.OpFilter
			default:
				return Task{}, fmt.Errorf("%w: unknown op code %d", ErrMalformed, v)
			}
			b = b[n:]
		case num == taskFieldOrdinal && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return Task{}, fmt.Errorf("%w: ordinal: %v", ErrMalformed, protowire.ParseError(n))
			}
			t.Ordinal = int(v)
			b = b[n:]
		case num == taskFieldThreshold && typ == protowire.Fixed64Type:
			v, n := protowire.ConsumeFixed64(b)
			if n < 0 {
				return Task{}, fmt.Errorf("%w: threshold: %v", ErrMalformed, protowire.ParseError(n))
			}
			t.Threshold = math.Float64frombits(v)
			b = b[n:]
		case num == taskFieldValues && typ == protowire.BytesType:
			values, n, err := consumePackedDoubles(b)
			if err != nil {
				return Task{}, err
			}
			t.Values = values
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return Task{}, fmt.Errorf("%w: field %d: %v", ErrMalformed, num, protowire.ParseError(n))
			}
			b = b[n:]
		}
	}

	if t.Op == "" {
		return Task{}, fmt.Errorf("%w: missing op", ErrMalformed)
	}
	return t, nil
}

// MarshalResult encodes a result in protobuf wire format.
func MarshalResult(r Result) []byte {
	b := make([]byte, 0, 16+len(r.Values)*8+len(r.Err))
	b = protowire.AppendTag(b, resultFieldOrdinal, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(r.Ordinal))
	b = appendPackedDoubles(b, resultFieldValues, r.Values)
	if r.Err != "" {
		b = protowire.AppendTag(b, resultFieldError, protowire.BytesType)
		b = protowire.AppendString(b, r.Err)
	}
	return b
}

// UnmarshalResult decodes a result, skipping unknown fields.
func UnmarshalResult(b []byte) (Result, error) {
	var r Result
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return Result{}, fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(n))
		}
		b = b[n:]

		switch {
		case num == resultFieldOrdinal && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return Result{}, fmt.Errorf("%w: ordinal: %v", ErrMalformed, protowire.ParseError(n))
			}
			r.Ordinal = int(v)
			b = b[n:]
		case num == resultFieldValues && typ == protowire.BytesType:
			values, n, err := consumePackedDoubles(b)
			if err != nil {
				return Result{}, err
			}
			r.Values = values
			b = b[n:]
		case num == resultFieldError && typ == protowire.BytesType:
			s, n := protowire.ConsumeString(b)
			if n < 0 {
				return Result{}, fmt.Errorf("%w: error: %v", ErrMalformed, protowire.ParseError(n))
			}
			r.Err = s
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return Result{}, fmt.Errorf("%w: field %d: %v", ErrMalformed, num, protowire.ParseError(n))
			}
			b = b[n:]
		}
	}
	return r, nil
}

// appendPackedDoubles appends a packed repeated double field.
func appendPackedDoubles(b []byte, num protowire.Number, values []float64) []byte {
	if len(values) == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	b = protowire.AppendVarint(b, uint64(len(values)*8))
	for _, v := range values {
		b = binary.LittleEndian.AppendUint64(b, math.Float64bits(v))
	}
	return b
}

// consumePackedDoubles reads a packed repeated double field body.
func consumePackedDoubles(b []byte) ([]float64, int, error) {
	raw, n := protowire.ConsumeBytes(b)
	if n < 0 {
		return nil, 0, fmt.Errorf("%w: values: %v", ErrMalformed, protowire.ParseError(n))
	}
	if len(raw)%8 != 0 {
		return nil, 0, fmt.Errorf("%w: packed doubles length %d is not a multiple of 8", ErrMalformed, len(raw))
	}

	values := make([]float64, len(raw)/8)
	for i := range values {
		values[i] = math.Float64frombits(binary.LittleEndian.Uint64(raw[i*8 : i*8+8]))
	}
	return values, n, nil
}
