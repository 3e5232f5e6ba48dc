package benchmark

import (
	"context"
	"os"
	"testing"

	"github.com/joho/godotenv"

	"github.com/parbench/parbench/internal/dataset"
	"github.com/parbench/parbench/internal/executor"
)

// workerEnv marks a re-executed benchmark binary as a process-pool worker.
const workerEnv = "PARBENCH_TEST_WORKER"

// benchSizes are the dataset sizes every strategy is measured at.
var benchSizes = []int{10_000, 100_000, 1_000_000}

// loadBenchData returns n samples. It respects PARBENCH_BENCH_DATASET from
// .env or the environment and falls back to the synthetic generator.
func loadBenchData(b *testing.B, n int) []float64 {
	b.Helper()

	// Try loading .env from project root (../../.env relative to test/benchmark)
	_ = godotenv.Load("../../.env")

	if source := os.Getenv("PARBENCH_BENCH_DATASET"); source != "" {
		opts := dataset.DefaultOptions()
		opts.Source = source
		opts.CacheDir = b.TempDir()
		data, _, err := dataset.Load(context.Background(), opts)
		if err != nil {
			b.Fatalf("load %s: %v", source, err)
		}
		if len(data) < n {
			b.Skipf("%s has %d samples, need %d", source, len(data), n)
		}
		return data[:n:n]
	}

	data, _, err := dataset.Synthetic(n, dataset.DefaultMin, dataset.DefaultMax)
	if err != nil {
		b.Fatalf("synthetic: %v", err)
	}
	return data
}

// benchPoolConfig re-executes this benchmark binary as a worker.
func benchPoolConfig(b *testing.B) executor.PoolConfig {
	b.Helper()
	exe, err := os.Executable()
	if err != nil {
		b.Fatalf("executable: %v", err)
	}
	return executor.PoolConfig{
		Command: exe,
		Args:    []string{"-test.run=^$", "-test.bench=^$"},
		Env:     []string{workerEnv + "=1"},
	}
}
