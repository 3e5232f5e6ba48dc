package worker

import (
	"testing"

	"github.com/parbench/parbench/internal/wire"
	"github.com/parbench/parbench/pkg/types"
)

func TestSortChunk(t *testing.T) {
	in := types.Chunk{Ordinal: 2, Values: []float64{900, 120, 4500, 120}}
	out := SortChunk(in)

	want := []float64{120, 120, 900, 4500}
	if out.Ordinal != 2 {
		t.Errorf("ordinal = %d, want 2", out.Ordinal)
	}
	for i := range want {
		if out.Values[i] != want[i] {
			t.Fatalf("sorted = %v, want %v", out.Values, want)
		}
	}
	if in.Values[0] != 900 {
		t.Error("SortChunk must not modify its input")
	}
}

func TestSortChunk_Empty(t *testing.T) {
	out := SortChunk(types.Chunk{Ordinal: 3})
	if out.Values == nil || len(out.Values) != 0 {
		t.Errorf("expected empty non-nil values, got %#v", out.Values)
	}
}

func TestFilterChunk(t *testing.T) {
	in := types.Chunk{Ordinal: 1, Values: []float64{1500, 200, 1000, 7200, 1001}}
	out := FilterChunk(in, 1000)

	want := []float64{1500, 7200, 1001}
	if len(out.Values) != len(want) {
		t.Fatalf("filtered = %v, want %v", out.Values, want)
	}
	for i := range want {
		if out.Values[i] != want[i] {
			t.Fatalf("filtered = %v, want %v", out.Values, want)
		}
	}
}

func TestFilterChunk_NothingPasses(t *testing.T) {
	out := FilterChunk(types.Chunk{Values: []float64{1, 2, 3}}, 3)
	if len(out.Values) != 0 {
		t.Errorf("expected no values, got %v", out.Values)
	}
}

func TestRun_UnknownOperation(t *testing.T) {
	res := Run(wire.Task{Op: "median", Ordinal: 4})
	if !res.Failed() {
		t.Fatal("expected failure for unknown operation")
	}
	if res.Ordinal != 4 {
		t.Errorf("ordinal = %d, want 4", res.Ordinal)
	}
}

func TestRun_Sort(t *testing.T) {
	res := Run(wire.Task{Op: types.OpSort, Ordinal: 0, Values: []float64{3, 1, 2}})
	if res.Failed() {
		t.Fatalf("unexpected error: %s", res.Err)
	}
	if res.Values[0] != 1 || res.Values[2] != 3 {
		t.Errorf("got %v", res.Values)
	}
}
