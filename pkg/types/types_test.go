package types

import (
	"testing"
	"time"
)

func TestStrategyRank(t *testing.T) {
	for i, s := range Strategies {
		if !s.Valid() {
			t.Errorf("%s should be valid", s)
		}
		if s.Rank() != i {
			t.Errorf("%s rank = %d, want %d", s, s.Rank(), i)
		}
	}
	if StrategyName("gpu").Valid() || StrategyName("gpu").Rank() != -1 {
		t.Error("unknown strategy must be invalid with rank -1")
	}
}

func TestOperationValid(t *testing.T) {
	if !OpSort.Valid() || !OpFilter.Valid() {
		t.Error("sort and filter must be valid")
	}
	if Operation("median").Valid() {
		t.Error("median must not be valid")
	}
}

func TestRecordSeconds(t *testing.T) {
	ok := Record{Strategy: StrategyThreadPool, Operation: OpSort, Duration: 1500 * time.Millisecond, Status: StatusOK}
	if secs, has := ok.Seconds(); !has || secs != 1.5 {
		t.Errorf("Seconds() = %v, %v", secs, has)
	}
	if ok.Key() != "thread-pool sort" {
		t.Errorf("Key() = %q", ok.Key())
	}

	failed := Record{Duration: time.Second, Status: StatusFailed}
	if _, has := failed.Seconds(); has || failed.OK() {
		t.Error("failed record must not report a duration")
	}
}

func TestChunkLen(t *testing.T) {
	if (Chunk{}).Len() != 0 {
		t.Error("zero chunk should be empty")
	}
	if (Chunk{Values: []float64{1, 2}}).Len() != 2 {
		t.Error("Len mismatch")
	}
}

func TestScaleLabel(t *testing.T) {
	tests := []struct {
		scale float64
		want  string
	}{
		{0.25, "25%"},
		{0.5, "50%"},
		{1.0, "100%"},
		{0.29, "29%"},
		{0.57, "57%"},
		{0.333, "33%"},
		{0.339, "34%"},
	}
	for _, tt := range tests {
		if got := ScaleLabel(tt.scale); got != tt.want {
			t.Errorf("ScaleLabel(%v) = %q, want %q", tt.scale, got, tt.want)
		}
	}
}
