// Package bench runs every strategy over every dataset scale and collects
// timed records.
package bench

import (
	"cmp"
	"context"
	"fmt"
	"log"
	"slices"
	"sort"
	"time"

	"github.com/google/uuid"

	benchErrors "github.com/parbench/parbench/internal/errors"
	"github.com/parbench/parbench/internal/executor"
	"github.com/parbench/parbench/internal/machine"
	"github.com/parbench/parbench/internal/merge"
	"github.com/parbench/parbench/internal/observability"
	"github.com/parbench/parbench/internal/partition"
	"github.com/parbench/parbench/internal/worker"
	"github.com/parbench/parbench/pkg/types"
)

// Config holds the parameters of one benchmark run.
type Config struct {
	// Scales are dataset fractions in (0, 1], run in the given order
	Scales []float64

	// Threshold is the filter cut-off
	Threshold float64

	// Workers is the pool size for every strategy (0: use the machine hint)
	Workers int

	// Verify checks each result against the sequential baseline outside
	// the timed region
	Verify bool
}

// DefaultConfig returns the scales and threshold of the reference study.
func DefaultConfig() Config {
	return Config{
		Scales:    []float64{0.25, 0.5, 0.75, 1.0},
		Threshold: 1000,
	}
}

// Orchestrator drives a benchmark run.
type Orchestrator struct {
	strategies []executor.Strategy
	config     Config
	machine    machine.Profile
	stats      *observability.RunStats
}

// NewOrchestrator validates cfg and orders strategies canonically.
func NewOrchestrator(strategies []executor.Strategy, cfg Config, profile machine.Profile) (*Orchestrator, error) {
	if len(strategies) == 0 {
		return nil, benchErrors.NewConfigError(benchErrors.CodeInvalidStrategy, "no strategies selected")
	}
	if len(cfg.Scales) == 0 {
		return nil, benchErrors.NewConfigError(benchErrors.CodeInvalidScale, "no scales configured")
	}
	labels := make(map[string]float64, len(cfg.Scales))
	for _, s := range cfg.Scales {
		if !(s > 0 && s <= 1) {
			return nil, benchErrors.NewConfigError(benchErrors.CodeInvalidScale,
				fmt.Sprintf("scale %v outside (0, 1]", s)).
				WithDetails(map[string]interface{}{"scale": s})
		}
		// Reports are keyed by label, so two scales must not share one.
		label := types.ScaleLabel(s)
		if prev, dup := labels[label]; dup {
			return nil, benchErrors.NewConfigError(benchErrors.CodeInvalidScale,
				fmt.Sprintf("scales %v and %v both report as %s", prev, s, label)).
				WithDetails(map[string]interface{}{"scale": s, "label": label})
		}
		labels[label] = s
	}
	if cfg.Workers < 0 {
		return nil, benchErrors.InvalidWorkerCount(cfg.Workers)
	}
	if cfg.Workers == 0 {
		cfg.Workers = profile.WorkerHint()
	}

	ordered := slices.Clone(strategies)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Name().Rank() < ordered[j].Name().Rank()
	})

	return &Orchestrator{
		strategies: ordered,
		config:     cfg,
		machine:    profile,
		stats:      observability.NewRunStats(),
	}, nil
}

// Workers returns the effective worker count.
func (o *Orchestrator) Workers() int {
	return o.config.Workers
}

// Stats returns the run's timing aggregates.
func (o *Orchestrator) Stats() *observability.RunStats {
	return o.stats
}

// Run executes every (scale, strategy, operation) triple once. A failed
// call yields a failed record and the run continues. Run only returns an
// error when ctx is cancelled, together with the records collected so far.
func (o *Orchestrator) Run(ctx context.Context, dataset []float64) (*Report, error) {
	report := &Report{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
		Machine:   o.machine,
		Workers:   o.config.Workers,
		Threshold: o.config.Threshold,
		Scales:    slices.Clone(o.config.Scales),
		Records:   make([]types.Record, 0, len(o.config.Scales)*len(o.strategies)*len(types.Operations)),
	}
	defer func() { report.FinishedAt = time.Now() }()

	for _, scale := range o.config.Scales {
		n := int(float64(len(dataset)) * scale)
		prefix := dataset[:n:n]
		label := types.ScaleLabel(scale)
		if chunks, err := partition.Partition(prefix, o.config.Workers); err == nil {
			log.Printf("[scale %s] %s", label, partition.Describe(chunks))
		}

		var baseline map[types.Operation][]float64
		if o.config.Verify {
			baseline = o.baseline(prefix)
		}

		for _, s := range o.strategies {
			for _, op := range types.Operations {
				if err := ctx.Err(); err != nil {
					return report, err
				}

				rec := o.measure(ctx, s, op, prefix, baseline)
				rec.Scale = scale
				rec.ScaleLabel = label
				report.Records = append(report.Records, rec)
				o.stats.Record(string(rec.Strategy), string(rec.Operation), rec.Duration, rec.OK())

				if rec.OK() {
					log.Printf("[scale %s] %s %s: %.4fs (n=%d, result=%d)",
						label, rec.Strategy, rec.Operation, rec.Duration.Seconds(), rec.Samples, rec.ResultSize)
				} else {
					log.Printf("[scale %s] %s %s: FAILED: %s", label, rec.Strategy, rec.Operation, rec.Error)
				}
			}
		}
	}

	if err := ctx.Err(); err != nil {
		return report, err
	}
	return report, nil
}

// measure times a single strategy call. Only the call itself is timed.
func (o *Orchestrator) measure(ctx context.Context, s executor.Strategy, op types.Operation, data []float64, baseline map[types.Operation][]float64) types.Record {
	rec := types.Record{
		Samples:   len(data),
		Strategy:  s.Name(),
		Operation: op,
	}

	var result []float64
	var err error

	start := time.Now()
	switch op {
	case types.OpSort:
		result, err = s.Sort(ctx, data, o.config.Workers)
	case types.OpFilter:
		result, err = s.Filter(ctx, data, o.config.Threshold, o.config.Workers)
	default:
		err = benchErrors.NewInternalError(fmt.Sprintf("unknown operation %q", op), nil)
	}
	elapsed := time.Since(start)

	if err == nil && baseline != nil {
		err = verify(op, result, baseline[op])
	}
	if err != nil {
		rec.Status = types.StatusFailed
		rec.Error = err.Error()
		return rec
	}

	rec.Status = types.StatusOK
	rec.Duration = elapsed
	rec.ResultSize = len(result)
	return rec
}

// baseline computes reference results for verification.
func (o *Orchestrator) baseline(data []float64) map[types.Operation][]float64 {
	c := types.Chunk{Values: data}
	return map[types.Operation][]float64{
		types.OpSort:   worker.SortChunk(c).Values,
		types.OpFilter: worker.FilterChunk(c, o.config.Threshold).Values,
	}
}

func verify(op types.Operation, got, want []float64) error {
	mismatch := func(cause error, format string, args ...interface{}) error {
		return benchErrors.NewInternalError(fmt.Sprintf("verify %s: ", op)+fmt.Sprintf(format, args...), cause)
	}

	if len(got) != len(want) {
		return mismatch(types.ErrLengthMismatch, "got %d values, want %d", len(got), len(want))
	}
	if op == types.OpSort && !merge.IsSorted(got) {
		return mismatch(types.ErrNotSorted, "result")
	}
	for i := range want {
		if cmp.Compare(got[i], want[i]) != 0 {
			return mismatch(nil, "value %d is %v, want %v", i, got[i], want[i])
		}
	}
	return nil
}
