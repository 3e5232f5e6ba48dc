package bench

import (
	"time"

	"github.com/parbench/parbench/internal/machine"
	"github.com/parbench/parbench/pkg/types"
)

// Report is the outcome of one run.
type Report struct {
	RunID      string          `json:"run_id" yaml:"run_id"`
	StartedAt  time.Time       `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time       `json:"finished_at" yaml:"finished_at"`
	Machine    machine.Profile `json:"machine" yaml:"machine"`
	Workers    int             `json:"workers" yaml:"workers"`
	Threshold  float64         `json:"threshold" yaml:"threshold"`
	Scales     []float64       `json:"scales" yaml:"scales"`
	Records    []types.Record  `json:"records" yaml:"records"`
}

// Point is one cell of a series.
type Point struct {
	ScaleLabel string  `json:"scale_label" yaml:"scale_label"`
	Samples    int     `json:"samples" yaml:"samples"`
	Seconds    float64 `json:"seconds" yaml:"seconds"`
	OK         bool    `json:"ok" yaml:"ok"`
}

// Series holds the durations of one strategy-operation pair across scales.
type Series struct {
	Strategy  types.StrategyName `json:"strategy" yaml:"strategy"`
	Operation types.Operation    `json:"operation" yaml:"operation"`
	Points    []Point            `json:"points" yaml:"points"`
}

// ScaleLabels returns the distinct scale labels in run order.
func (r *Report) ScaleLabels() []string {
	var labels []string
	seen := make(map[string]bool)
	for _, rec := range r.Records {
		if !seen[rec.ScaleLabel] {
			seen[rec.ScaleLabel] = true
			labels = append(labels, rec.ScaleLabel)
		}
	}
	return labels
}

// Columns returns the distinct "strategy operation" keys in run order.
func (r *Report) Columns() []string {
	var keys []string
	seen := make(map[string]bool)
	for _, rec := range r.Records {
		if k := rec.Key(); !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	return keys
}

// Lookup finds the record for a triple.
func (r *Report) Lookup(scaleLabel string, strategy types.StrategyName, op types.Operation) (types.Record, bool) {
	for _, rec := range r.Records {
		if rec.ScaleLabel == scaleLabel && rec.Strategy == strategy && rec.Operation == op {
			return rec, true
		}
	}
	return types.Record{}, false
}

// Failed returns the failed records.
func (r *Report) Failed() []types.Record {
	var failed []types.Record
	for _, rec := range r.Records {
		if !rec.OK() {
			failed = append(failed, rec)
		}
	}
	return failed
}

// Summary groups durations per operation and strategy, operations first.
func (r *Report) Summary() []Series {
	type key struct {
		op       types.Operation
		strategy types.StrategyName
	}
	index := make(map[key]int)
	var out []Series

	for _, op := range types.Operations {
		for _, rec := range r.Records {
			if rec.Operation != op {
				continue
			}
			k := key{op, rec.Strategy}
			i, ok := index[k]
			if !ok {
				i = len(out)
				index[k] = i
				out = append(out, Series{Strategy: rec.Strategy, Operation: op})
			}
			secs, ok := rec.Seconds()
			out[i].Points = append(out[i].Points, Point{
				ScaleLabel: rec.ScaleLabel,
				Samples:    rec.Samples,
				Seconds:    secs,
				OK:         ok,
			})
		}
	}
	return out
}

// Speedup is the sequential duration over the parallel one. It is false
// when the parallel duration is not positive.
func Speedup(sequential, parallel float64) (float64, bool) {
	if parallel <= 0 {
		return 0, false
	}
	return sequential / parallel, true
}

// Efficiency is the speedup per worker.
func Efficiency(speedup float64, workers int) float64 {
	if workers <= 0 {
		return 0
	}
	return speedup / float64(workers)
}

// SpeedupAt computes a strategy's speedup over sequential at one scale.
func (r *Report) SpeedupAt(scaleLabel string, strategy types.StrategyName, op types.Operation) (float64, bool) {
	seq, ok := r.Lookup(scaleLabel, types.StrategySequential, op)
	if !ok {
		return 0, false
	}
	par, ok := r.Lookup(scaleLabel, strategy, op)
	if !ok {
		return 0, false
	}
	seqSecs, ok := seq.Seconds()
	if !ok {
		return 0, false
	}
	parSecs, ok := par.Seconds()
	if !ok {
		return 0, false
	}
	return Speedup(seqSecs, parSecs)
}

// Crossover returns the first scale label at which strategy beats
// sequential for op, or "" if it never does.
func (r *Report) Crossover(op types.Operation, strategy types.StrategyName) string {
	for _, label := range r.ScaleLabels() {
		if s, ok := r.SpeedupAt(label, strategy, op); ok && s > 1 {
			return label
		}
	}
	return ""
}
