package machine

import (
	"context"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProbe(t *testing.T) {
	p, err := Probe(context.Background())
	if err != nil {
		t.Logf("partial probe: %v", err)
	}

	assert.GreaterOrEqual(t, p.LogicalCores, 1)
	assert.GreaterOrEqual(t, p.PhysicalCores, 1)
	assert.Equal(t, runtime.GOOS, p.OS)
	assert.Equal(t, runtime.GOARCH, p.Arch)
	assert.Equal(t, p.LogicalCores, p.WorkerHint())
}

func TestWorkerHintFloor(t *testing.T) {
	assert.Equal(t, 1, Profile{}.WorkerHint())
	assert.Equal(t, 1, Profile{LogicalCores: -3}.WorkerHint())
	assert.Equal(t, 12, Profile{LogicalCores: 12}.WorkerHint())
}

func TestProfileString(t *testing.T) {
	p := Profile{
		CPUModel:         "Apple M1",
		LogicalCores:     8,
		PhysicalCores:    8,
		TotalMemoryBytes: 16 << 30,
		OS:               "darwin",
		Arch:             "arm64",
	}
	s := p.String()
	assert.True(t, strings.HasPrefix(s, "Apple M1 (8 logical / 8 physical cores)"), s)
	assert.Contains(t, s, "16.0 GiB")
	assert.Contains(t, Profile{}.String(), "unknown CPU")
}
