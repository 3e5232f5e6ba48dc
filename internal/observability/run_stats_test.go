package observability

import (
	"sync"
	"testing"
	"time"
)

// TestRecordConcurrent tests concurrent Record calls for race conditions.
func TestRecordConcurrent(t *testing.T) {
	rs := NewRunStats()
	var wg sync.WaitGroup
	numGoroutines := 10
	recordsPerGoroutine := 100

	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < recordsPerGoroutine; j++ {
				rs.Record("thread-pool", "sort", time.Millisecond, true)
				rs.Record("process-pool", "filter", 2*time.Millisecond, true)
			}
		}()
	}
	wg.Wait()

	all := rs.All()
	if len(all) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(all))
	}
	expected := int64(numGoroutines * recordsPerGoroutine)
	for _, s := range all {
		if s.Calls != expected {
			t.Errorf("%s: expected %d calls, got %d", s.Key(), expected, s.Calls)
		}
	}
}

func TestMinMeanMax(t *testing.T) {
	rs := NewRunStats()
	rs.Record("sequential", "sort", 30*time.Millisecond, true)
	rs.Record("sequential", "sort", 10*time.Millisecond, true)
	rs.Record("sequential", "sort", 20*time.Millisecond, true)

	s, ok := rs.Get("sequential", "sort")
	if !ok {
		t.Fatal("expected entry")
	}
	if s.Min != 10*time.Millisecond {
		t.Errorf("min = %v, want 10ms", s.Min)
	}
	if s.Max != 30*time.Millisecond {
		t.Errorf("max = %v, want 30ms", s.Max)
	}
	if s.Mean() != 20*time.Millisecond {
		t.Errorf("mean = %v, want 20ms", s.Mean())
	}
}

func TestFailuresDoNotSkewDurations(t *testing.T) {
	rs := NewRunStats()
	rs.Record("process-pool", "sort", 0, false)
	rs.Record("process-pool", "sort", 50*time.Millisecond, true)

	s, _ := rs.Get("process-pool", "sort")
	if s.Calls != 2 || s.Failures != 1 {
		t.Errorf("calls=%d failures=%d, want 2 and 1", s.Calls, s.Failures)
	}
	if s.Min != 50*time.Millisecond || s.Mean() != 50*time.Millisecond {
		t.Errorf("min=%v mean=%v, want 50ms for both", s.Min, s.Mean())
	}
}

func TestOnlyFailures(t *testing.T) {
	rs := NewRunStats()
	rs.Record("thread-pool", "filter", 0, false)

	s, _ := rs.Get("thread-pool", "filter")
	if s.Mean() != 0 {
		t.Errorf("mean of no successful calls should be 0, got %v", s.Mean())
	}
}

func TestSlowestOrdering(t *testing.T) {
	rs := NewRunStats()
	rs.Record("sequential", "filter", 5*time.Millisecond, true)
	rs.Record("process-pool", "sort", 90*time.Millisecond, true)
	rs.Record("thread-pool", "sort", 15*time.Millisecond, true)

	top := rs.Slowest(2)
	if len(top) != 2 {
		t.Fatalf("expected 2, got %d", len(top))
	}
	if top[0].Key() != "process-pool sort" || top[1].Key() != "thread-pool sort" {
		t.Errorf("unexpected order: %s, %s", top[0].Key(), top[1].Key())
	}
	if len(rs.Slowest(0)) != 0 {
		t.Error("Slowest(0) should be empty")
	}
}

func TestGetReturnsCopy(t *testing.T) {
	rs := NewRunStats()
	rs.Record("sequential", "sort", time.Second, true)

	s, _ := rs.Get("sequential", "sort")
	s.Calls = 99

	again, _ := rs.Get("sequential", "sort")
	if again.Calls != 1 {
		t.Error("Get must return a copy")
	}
}

func TestReset(t *testing.T) {
	rs := NewRunStats()
	rs.Record("sequential", "sort", time.Second, true)
	rs.Reset()
	if len(rs.All()) != 0 {
		t.Error("Reset should remove all entries")
	}
	if _, ok := rs.Get("sequential", "sort"); ok {
		t.Error("entry should be gone after Reset")
	}
}
