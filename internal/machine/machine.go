// Package machine probes the host the benchmark runs on.
package machine

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// Profile describes the host. It is probed once and passed explicitly.
type Profile struct {
	CPUModel         string `json:"cpu_model" yaml:"cpu_model"`
	LogicalCores     int    `json:"logical_cores" yaml:"logical_cores"`
	PhysicalCores    int    `json:"physical_cores" yaml:"physical_cores"`
	TotalMemoryBytes uint64 `json:"total_memory_bytes" yaml:"total_memory_bytes"`
	OS               string `json:"os" yaml:"os"`
	Arch             string `json:"arch" yaml:"arch"`
	GoVersion        string `json:"go_version" yaml:"go_version"`
}

// WorkerHint returns the default worker count: one per logical core.
func (p Profile) WorkerHint() int {
	if p.LogicalCores < 1 {
		return 1
	}
	return p.LogicalCores
}

// String renders a one-line summary for logs.
func (p Profile) String() string {
	model := p.CPUModel
	if model == "" {
		model = "unknown CPU"
	}
	return fmt.Sprintf("%s (%d logical / %d physical cores), %.1f GiB RAM, %s/%s",
		model, p.LogicalCores, p.PhysicalCores,
		float64(p.TotalMemoryBytes)/(1<<30), p.OS, p.Arch)
}

// Probe inspects the host. It always returns a usable profile; the error
// lists the fields that fell back to runtime defaults.
func Probe(ctx context.Context) (Profile, error) {
	p := Profile{
		LogicalCores:  runtime.NumCPU(),
		PhysicalCores: runtime.NumCPU(),
		OS:            runtime.GOOS,
		Arch:          runtime.GOARCH,
		GoVersion:     runtime.Version(),
	}

	var errs []error

	if infos, err := cpu.InfoWithContext(ctx); err != nil {
		errs = append(errs, fmt.Errorf("cpu info: %w", err))
	} else if len(infos) > 0 {
		p.CPUModel = strings.TrimSpace(infos[0].ModelName)
	}

	if n, err := cpu.CountsWithContext(ctx, true); err != nil {
		errs = append(errs, fmt.Errorf("logical cores: %w", err))
	} else if n > 0 {
		p.LogicalCores = n
	}

	if n, err := cpu.CountsWithContext(ctx, false); err != nil {
		errs = append(errs, fmt.Errorf("physical cores: %w", err))
	} else if n > 0 {
		p.PhysicalCores = n
	}

	if vm, err := mem.VirtualMemoryWithContext(ctx); err != nil {
		errs = append(errs, fmt.Errorf("memory: %w", err))
	} else {
		p.TotalMemoryBytes = vm.Total
	}

	if err := errors.Join(errs...); err != nil {
		return p, fmt.Errorf("machine: partial probe: %w", err)
	}
	return p, nil
}
