package config

import (
	"os"
	"path/filepath"
	"testing"

	benchErrors "github.com/parbench/parbench/internal/errors"
	"github.com/parbench/parbench/pkg/types"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Resolve()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if cfg.Storage.Path != filepath.Join(cfg.DataDir, "storage") {
		t.Errorf("storage path not resolved: %s", cfg.Storage.Path)
	}
	if len(cfg.Bench.Strategies) != 3 {
		t.Errorf("expected all strategies by default, got %v", cfg.Bench.Strategies)
	}
}

func TestDefaultStrategiesAreACopy(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Bench.Strategies[0] = "mutated"
	if types.Strategies[0] != types.StrategySequential {
		t.Fatal("DefaultConfig must not alias types.Strategies")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		code   string
	}{
		{"zero scale", func(c *Config) { c.Bench.Scales = []float64{0, 1} }, benchErrors.CodeInvalidScale},
		{"scale above one", func(c *Config) { c.Bench.Scales = []float64{1.25} }, benchErrors.CodeInvalidScale},
		{"no scales", func(c *Config) { c.Bench.Scales = nil }, benchErrors.CodeInvalidScale},
		{"scales sharing a label", func(c *Config) { c.Bench.Scales = []float64{0.331, 0.334, 1} }, benchErrors.CodeInvalidScale},
		{"negative workers", func(c *Config) { c.Bench.Workers = -1 }, benchErrors.CodeInvalidWorkerCount},
		{"unknown strategy", func(c *Config) { c.Bench.Strategies = []types.StrategyName{"gpu"} }, benchErrors.CodeInvalidStrategy},
		{"duplicate strategy", func(c *Config) {
			c.Bench.Strategies = []types.StrategyName{types.StrategyThreadPool, types.StrategyThreadPool}
		}, benchErrors.CodeInvalidStrategy},
		{"no strategies", func(c *Config) { c.Bench.Strategies = nil }, benchErrors.CodeInvalidStrategy},
		{"inverted range", func(c *Config) { c.Dataset.Min = 100; c.Dataset.Max = 10 }, benchErrors.CodeInvalidConfig},
		{"bad storage", func(c *Config) { c.Storage.Type = "gcs" }, benchErrors.CodeInvalidConfig},
		{"bad format", func(c *Config) { c.Output.Format = "xml" }, benchErrors.CodeInvalidConfig},
		{"no source", func(c *Config) { c.Dataset.Source = "" }, benchErrors.CodeInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !benchErrors.IsConfigError(err) {
				t.Errorf("expected config error, got %v", err)
			}
			if got := benchErrors.GetCode(err); got != tt.code {
				t.Errorf("code = %s, want %s", got, tt.code)
			}
		})
	}
}

func TestLoadFromFileYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "parbench.yaml")
	content := `
data_dir: /tmp/pb
dataset:
  source: s3://trips/train.csv
bench:
  scales: [0.5, 1.0]
  threshold: 600
  workers: 8
  strategies: [thread-pool, sequential]
  verify: true
storage:
  type: s3
  s3:
    endpoint: http://localhost:9000
    use_path_style: true
output:
  format: json
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}
	if cfg.DataDir != "/tmp/pb" || cfg.Dataset.Source != "s3://trips/train.csv" {
		t.Errorf("unexpected paths: %+v", cfg)
	}
	if cfg.Dataset.Column != "trip_duration" {
		t.Errorf("unset fields should keep defaults, column = %q", cfg.Dataset.Column)
	}
	if len(cfg.Bench.Scales) != 2 || cfg.Bench.Threshold != 600 || cfg.Bench.Workers != 8 || !cfg.Bench.Verify {
		t.Errorf("unexpected bench config: %+v", cfg.Bench)
	}
	if len(cfg.Bench.Strategies) != 2 || cfg.Bench.Strategies[0] != types.StrategyThreadPool {
		t.Errorf("unexpected strategies: %v", cfg.Bench.Strategies)
	}
	if !cfg.Storage.S3.UsePathStyle || cfg.Storage.S3.Region != "us-east-1" {
		t.Errorf("unexpected s3 config: %+v", cfg.Storage.S3)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("loaded config should validate: %v", err)
	}
}

func TestLoadFromFileJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "parbench.json")
	if err := os.WriteFile(path, []byte(`{"bench": {"threshold": 42}}`), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}
	if cfg.Bench.Threshold != 42 {
		t.Errorf("threshold = %v, want 42", cfg.Bench.Threshold)
	}
}

func TestLoadFromFileUnsupported(t *testing.T) {
	path := filepath.Join(t.TempDir(), "parbench.toml")
	if err := os.WriteFile(path, []byte(""), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFromFile(path); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PARBENCH_DATASET", "synthetic:1000")
	t.Setenv("PARBENCH_SCALES", "0.1, 0.2")
	t.Setenv("PARBENCH_WORKERS", "3")
	t.Setenv("PARBENCH_THRESHOLD", "1500.5")
	t.Setenv("PARBENCH_STRATEGIES", "sequential,thread-pool")
	t.Setenv("PARBENCH_VERIFY", "1")
	t.Setenv("PARBENCH_FORMAT", "yaml")

	cfg := DefaultConfig()
	LoadFromEnv(cfg)

	if cfg.Dataset.Source != "synthetic:1000" {
		t.Errorf("source = %q", cfg.Dataset.Source)
	}
	if len(cfg.Bench.Scales) != 2 || cfg.Bench.Scales[1] != 0.2 {
		t.Errorf("scales = %v", cfg.Bench.Scales)
	}
	if cfg.Bench.Workers != 3 || cfg.Bench.Threshold != 1500.5 || !cfg.Bench.Verify {
		t.Errorf("bench = %+v", cfg.Bench)
	}
	if len(cfg.Bench.Strategies) != 2 {
		t.Errorf("strategies = %v", cfg.Bench.Strategies)
	}
	if cfg.Output.Format != "yaml" {
		t.Errorf("format = %q", cfg.Output.Format)
	}
}

func TestParseScales(t *testing.T) {
	scales, err := ParseScales("0.25,0.5,,1")
	if err != nil {
		t.Fatal(err)
	}
	if len(scales) != 3 {
		t.Errorf("got %v", scales)
	}
	if _, err := ParseScales("half"); !benchErrors.IsConfigError(err) {
		t.Errorf("expected config error, got %v", err)
	}
}

func TestEnsureDirectories(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DataDir = filepath.Join(t.TempDir(), "pb")
	cfg.Resolve()
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatal(err)
	}
	for _, dir := range []string{cfg.DataDir, cfg.CacheDir(), cfg.Storage.Path} {
		if _, err := os.Stat(dir); err != nil {
			t.Errorf("%s not created: %v", dir, err)
		}
	}
}
