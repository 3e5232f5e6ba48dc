package types

import (
	"fmt"
	"math"
	"time"
)

// RecordStatus tells whether a timed call completed.
type RecordStatus string

const (
	StatusOK     RecordStatus = "ok"
	StatusFailed RecordStatus = "failed"
)

// Record is one timed measurement of a (scale, strategy, operation) triple.
// Records are never mutated after the orchestrator creates them.
type Record struct {
	// Scale is the dataset fraction in (0, 1].
	Scale float64 `json:"scale" yaml:"scale"`

	// ScaleLabel is the human form of Scale, e.g. "25%".
	ScaleLabel string `json:"scale_label" yaml:"scale_label"`

	// Samples is the length of the dataset prefix the call ran on.
	Samples int `json:"samples" yaml:"samples"`

	Strategy  StrategyName `json:"strategy" yaml:"strategy"`
	Operation Operation    `json:"operation" yaml:"operation"`

	// Duration is only meaningful when Status is StatusOK.
	Duration time.Duration `json:"duration_ns" yaml:"duration_ns"`

	// ResultSize is the length of the returned sequence, for spot checks.
	ResultSize int `json:"result_size" yaml:"result_size"`

	Status RecordStatus `json:"status" yaml:"status"`

	// Error holds the failure message for failed records.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

// OK reports whether the record holds a valid measurement.
func (r Record) OK() bool {
	return r.Status == StatusOK
}

// Seconds returns the duration in fractional seconds and false when the
// record failed and has no duration.
func (r Record) Seconds() (float64, bool) {
	if !r.OK() {
		return 0, false
	}
	return r.Duration.Seconds(), true
}

// Key returns the "strategy operation" column name used by reports.
func (r Record) Key() string {
	return string(r.Strategy) + " " + string(r.Operation)
}

// ScaleLabel formats a dataset fraction as a whole percentage, rounded to
// the nearest point: 0.25 is "25%", 0.29 is "29%".
func ScaleLabel(scale float64) string {
	return fmt.Sprintf("%d%%", int(math.Round(scale*100)))
}
