package bench

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	benchErrors "github.com/parbench/parbench/internal/errors"
	"github.com/parbench/parbench/internal/executor"
	"github.com/parbench/parbench/internal/machine"
	"github.com/parbench/parbench/pkg/types"
)

// fakeStrategy wraps the sequential baseline with optional faults.
type fakeStrategy struct {
	name      types.StrategyName
	failSort  bool
	corrupt   bool
	onCall    func()
	sizesSeen []int
}

func (f *fakeStrategy) Name() types.StrategyName { return f.name }

func (f *fakeStrategy) Sort(ctx context.Context, data []float64, workers int) ([]float64, error) {
	f.sizesSeen = append(f.sizesSeen, len(data))
	if f.onCall != nil {
		f.onCall()
	}
	if f.failSort {
		return nil, benchErrors.NewWorkerError(benchErrors.CodeWorkerFailed, "chunk 1 failed", errors.New("boom"))
	}
	out, err := executor.NewSequential().Sort(ctx, data, workers)
	if f.corrupt && len(out) > 1 {
		out[0], out[len(out)-1] = out[len(out)-1], out[0]
	}
	return out, err
}

func (f *fakeStrategy) Filter(ctx context.Context, data []float64, threshold float64, workers int) ([]float64, error) {
	if f.onCall != nil {
		f.onCall()
	}
	return executor.NewSequential().Filter(ctx, data, threshold, workers)
}

var testProfile = machine.Profile{LogicalCores: 4, PhysicalCores: 2}

func testData() []float64 {
	return []float64{1200, 30, 4500, 800, 15000, 61, 7200, 999}
}

func TestRun_FixedOrder(t *testing.T) {
	strategies := []executor.Strategy{
		&fakeStrategy{name: types.StrategyThreadPool},
		&fakeStrategy{name: types.StrategySequential},
		&fakeStrategy{name: types.StrategyProcessPool},
	}
	o, err := NewOrchestrator(strategies, Config{Scales: []float64{0.5, 1}, Threshold: 1000, Workers: 2}, testProfile)
	require.NoError(t, err)

	report, err := o.Run(context.Background(), testData())
	require.NoError(t, err)
	require.Len(t, report.Records, 2*3*2)

	var got []string
	for _, rec := range report.Records[:6] {
		got = append(got, rec.ScaleLabel+" "+rec.Key())
	}
	assert.Equal(t, []string{
		"50% sequential sort", "50% sequential filter",
		"50% process-pool sort", "50% process-pool filter",
		"50% thread-pool sort", "50% thread-pool filter",
	}, got)
	assert.Equal(t, "100%", report.Records[6].ScaleLabel)
	assert.NotEmpty(t, report.RunID)
	assert.False(t, report.FinishedAt.Before(report.StartedAt))
}

func TestRun_PrefixSizes(t *testing.T) {
	seq := &fakeStrategy{name: types.StrategySequential}
	o, err := NewOrchestrator([]executor.Strategy{seq}, Config{Scales: []float64{0.25, 0.5, 0.75, 1}, Workers: 1}, testProfile)
	require.NoError(t, err)

	report, err := o.Run(context.Background(), testData())
	require.NoError(t, err)
	assert.Equal(t, []int{2, 4, 6, 8}, seq.sizesSeen)
	assert.Equal(t, []string{"25%", "50%", "75%", "100%"}, report.ScaleLabels())
}

func TestRun_FailureContinues(t *testing.T) {
	strategies := []executor.Strategy{
		&fakeStrategy{name: types.StrategySequential},
		&fakeStrategy{name: types.StrategyProcessPool, failSort: true},
	}
	o, err := NewOrchestrator(strategies, Config{Scales: []float64{1}, Threshold: 1000, Workers: 2}, testProfile)
	require.NoError(t, err)

	report, err := o.Run(context.Background(), testData())
	require.NoError(t, err)
	require.Len(t, report.Records, 4)

	rec, ok := report.Lookup("100%", types.StrategyProcessPool, types.OpSort)
	require.True(t, ok)
	assert.Equal(t, types.StatusFailed, rec.Status)
	assert.Zero(t, rec.Duration)
	assert.Contains(t, rec.Error, "WORKER_FAILED")
	_, hasSecs := rec.Seconds()
	assert.False(t, hasSecs)

	filter, ok := report.Lookup("100%", types.StrategyProcessPool, types.OpFilter)
	require.True(t, ok)
	assert.True(t, filter.OK(), "filter must still run after sort failed")
	assert.Equal(t, 4, filter.ResultSize)

	assert.Len(t, report.Failed(), 1)
	stats, _ := o.Stats().Get("process-pool", "sort")
	assert.Equal(t, int64(1), stats.Failures)
}

func TestRun_VerifyCatchesWrongResult(t *testing.T) {
	strategies := []executor.Strategy{
		&fakeStrategy{name: types.StrategySequential},
		&fakeStrategy{name: types.StrategyThreadPool, corrupt: true},
	}
	o, err := NewOrchestrator(strategies, Config{Scales: []float64{1}, Threshold: 1000, Workers: 2, Verify: true}, testProfile)
	require.NoError(t, err)

	report, err := o.Run(context.Background(), testData())
	require.NoError(t, err)

	rec, _ := report.Lookup("100%", types.StrategyThreadPool, types.OpSort)
	assert.False(t, rec.OK())
	assert.Contains(t, rec.Error, "INTERNAL:UNEXPECTED")
	assert.Contains(t, rec.Error, types.ErrNotSorted.Error())

	rec, _ = report.Lookup("100%", types.StrategySequential, types.OpSort)
	assert.True(t, rec.OK())
}

func TestRun_EmptyDataset(t *testing.T) {
	o, err := NewOrchestrator([]executor.Strategy{executor.NewSequential(), executor.NewThreadPool()},
		Config{Scales: []float64{1}, Workers: 3}, testProfile)
	require.NoError(t, err)

	report, err := o.Run(context.Background(), nil)
	require.NoError(t, err)
	for _, rec := range report.Records {
		assert.True(t, rec.OK(), rec.Key())
		assert.Zero(t, rec.ResultSize)
	}
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	seq := &fakeStrategy{name: types.StrategySequential, onCall: cancel}

	o, err := NewOrchestrator([]executor.Strategy{seq}, Config{Scales: []float64{0.5, 1}, Workers: 1}, testProfile)
	require.NoError(t, err)

	report, err := o.Run(ctx, testData())
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, report)
	assert.Len(t, report.Records, 1)
}

func TestRun_RealStrategiesScenario(t *testing.T) {
	o, err := NewOrchestrator([]executor.Strategy{executor.NewSequential(), executor.NewThreadPool()},
		Config{Scales: []float64{1}, Threshold: 1000, Workers: 2, Verify: true}, testProfile)
	require.NoError(t, err)

	report, err := o.Run(context.Background(), []float64{1200, 30, 4500, 800, 15000})
	require.NoError(t, err)
	for _, rec := range report.Records {
		require.True(t, rec.OK(), "%s: %s", rec.Key(), rec.Error)
		if rec.Operation == types.OpFilter {
			assert.Equal(t, 3, rec.ResultSize)
		} else {
			assert.Equal(t, 5, rec.ResultSize)
		}
	}
}

func TestNewOrchestrator_Validation(t *testing.T) {
	seq := []executor.Strategy{executor.NewSequential()}

	tests := []struct {
		name string
		cfg  Config
		code string
	}{
		{"zero scale", Config{Scales: []float64{0}}, benchErrors.CodeInvalidScale},
		{"scale above one", Config{Scales: []float64{0.5, 1.5}}, benchErrors.CodeInvalidScale},
		{"no scales", Config{}, benchErrors.CodeInvalidScale},
		{"scales sharing a label", Config{Scales: []float64{0.331, 0.334}}, benchErrors.CodeInvalidScale},
		{"repeated scale", Config{Scales: []float64{0.5, 0.5}}, benchErrors.CodeInvalidScale},
		{"negative workers", Config{Scales: []float64{1}, Workers: -1}, benchErrors.CodeInvalidWorkerCount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewOrchestrator(seq, tt.cfg, testProfile)
			require.Error(t, err)
			assert.True(t, benchErrors.IsConfigError(err))
			assert.Equal(t, tt.code, benchErrors.GetCode(err))
		})
	}

	_, err := NewOrchestrator(nil, DefaultConfig(), testProfile)
	assert.Equal(t, benchErrors.CodeInvalidStrategy, benchErrors.GetCode(err))
}

func TestNewOrchestrator_WorkerHint(t *testing.T) {
	o, err := NewOrchestrator([]executor.Strategy{executor.NewSequential()}, DefaultConfig(), testProfile)
	require.NoError(t, err)
	assert.Equal(t, 4, o.Workers())
}

func TestRun_EveryScaleGetsItsOwnLabel(t *testing.T) {
	seq := &fakeStrategy{name: types.StrategySequential}
	o, err := NewOrchestrator([]executor.Strategy{seq}, Config{Scales: []float64{0.29, 0.331, 1}, Workers: 1}, testProfile)
	require.NoError(t, err)

	report, err := o.Run(context.Background(), testData())
	require.NoError(t, err)
	assert.Equal(t, []string{"29%", "33%", "100%"}, report.ScaleLabels())
	assert.Len(t, report.Records, 6)
}
