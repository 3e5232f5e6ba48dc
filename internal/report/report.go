// Package report renders benchmark reports as a terminal table, JSON or
// YAML.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/parbench/parbench/internal/bench"
	benchErrors "github.com/parbench/parbench/internal/errors"
	"github.com/parbench/parbench/internal/machine"
	"github.com/parbench/parbench/pkg/types"
)

// Format selects a renderer.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// Formats lists the supported formats.
var Formats = []Format{FormatTable, FormatJSON, FormatYAML}

// Valid reports whether f is a supported format.
func (f Format) Valid() bool {
	for _, known := range Formats {
		if f == known {
			return true
		}
	}
	return false
}

// NotAvailable marks a cell whose call failed.
const NotAvailable = "N/A (failed)"

// Render writes r to w in the given format.
func Render(w io.Writer, r *bench.Report, format Format) error {
	switch format {
	case FormatTable:
		_, err := io.WriteString(w, Table(r))
		return err
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(newExport(r))
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(newExport(r)); err != nil {
			return err
		}
		return enc.Close()
	default:
		return benchErrors.NewConfigError(benchErrors.CodeInvalidConfig,
			fmt.Sprintf("unknown output format %q", format))
	}
}

// WriteFile renders r into path, creating parent directories.
func WriteFile(path string, r *bench.Report, format Format) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("report: failed to create directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("report: failed to create file: %w", err)
	}
	if err := Render(f, r, format); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// export is the serialized form. Durations are fractional seconds and
// failed calls carry a null duration.
type export struct {
	RunID      string            `json:"run_id" yaml:"run_id"`
	StartedAt  time.Time         `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time         `json:"finished_at" yaml:"finished_at"`
	Machine    machine.Profile   `json:"machine" yaml:"machine"`
	Workers    int               `json:"workers" yaml:"workers"`
	Threshold  float64           `json:"threshold" yaml:"threshold"`
	Records    []exportRecord    `json:"records" yaml:"records"`
	Crossover  map[string]string `json:"crossover,omitempty" yaml:"crossover,omitempty"`
}

type exportRecord struct {
	Scale      string             `json:"scale" yaml:"scale"`
	Samples    int                `json:"samples" yaml:"samples"`
	Strategy   types.StrategyName `json:"strategy" yaml:"strategy"`
	Operation  types.Operation    `json:"operation" yaml:"operation"`
	Seconds    *float64           `json:"seconds" yaml:"seconds"`
	ResultSize int                `json:"result_size" yaml:"result_size"`
	Status     types.RecordStatus `json:"status" yaml:"status"`
	Error      string             `json:"error,omitempty" yaml:"error,omitempty"`
}

func newExport(r *bench.Report) export {
	out := export{
		RunID:      r.RunID,
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
		Machine:    r.Machine,
		Workers:    r.Workers,
		Threshold:  r.Threshold,
		Records:    make([]exportRecord, 0, len(r.Records)),
	}

	for _, rec := range r.Records {
		er := exportRecord{
			Scale:      rec.ScaleLabel,
			Samples:    rec.Samples,
			Strategy:   rec.Strategy,
			Operation:  rec.Operation,
			ResultSize: rec.ResultSize,
			Status:     rec.Status,
			Error:      rec.Error,
		}
		if secs, ok := rec.Seconds(); ok {
			er.Seconds = &secs
		}
		out.Records = append(out.Records, er)
	}

	for _, key := range crossoverKeys(r) {
		if label := r.Crossover(key.op, key.strategy); label != "" {
			if out.Crossover == nil {
				out.Crossover = make(map[string]string)
			}
			out.Crossover[string(key.strategy)+" "+string(key.op)] = label
		}
	}
	return out
}

type pairKey struct {
	strategy types.StrategyName
	op       types.Operation
}

// crossoverKeys lists the non-sequential pairs present in r.
func crossoverKeys(r *bench.Report) []pairKey {
	var keys []pairKey
	seen := make(map[pairKey]bool)
	for _, rec := range r.Records {
		k := pairKey{rec.Strategy, rec.Operation}
		if rec.Strategy == types.StrategySequential || seen[k] {
			continue
		}
		seen[k] = true
		keys = append(keys, k)
	}
	return keys
}
