// Package config provides configuration for parbench runs.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	benchErrors "github.com/parbench/parbench/internal/errors"
	"github.com/parbench/parbench/pkg/types"
)

// Config holds the configuration for a benchmark run.
type Config struct {
	// DataDir is the base directory for cached datasets and reports
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// Dataset selects and cleans the input samples
	Dataset DatasetConfig `json:"dataset" yaml:"dataset"`

	// Bench controls what is measured
	Bench BenchConfig `json:"bench" yaml:"bench"`

	// Process configures process-pool workers
	Process ProcessConfig `json:"process" yaml:"process"`

	// Storage configuration
	Storage StorageConfig `json:"storage" yaml:"storage"`

	// Output configuration
	Output OutputConfig `json:"output" yaml:"output"`

	// Log configuration
	Log LogConfig `json:"log" yaml:"log"`
}

// DatasetConfig holds dataset configuration.
type DatasetConfig struct {
	// Source is a .csv/.db path, an s3:// URI or synthetic:N
	Source string `json:"source" yaml:"source"`

	// Column is the numeric column to benchmark
	Column string `json:"column" yaml:"column"`

	// Table is the SQLite table (for .db sources)
	Table string `json:"table" yaml:"table"`

	// Min and Max exclusively bound kept samples
	Min float64 `json:"min" yaml:"min"`
	Max float64 `json:"max" yaml:"max"`
}

// BenchConfig holds benchmark configuration.
type BenchConfig struct {
	// Scales are dataset fractions in (0, 1]
	Scales []float64 `json:"scales" yaml:"scales"`

	// Threshold is the filter cut-off
	Threshold float64 `json:"threshold" yaml:"threshold"`

	// Workers is the pool size (0 = one per logical core)
	Workers int `json:"workers" yaml:"workers"`

	// Strategies to run; executed in canonical order regardless of listing
	Strategies []types.StrategyName `json:"strategies" yaml:"strategies"`

	// Verify checks results against sequential outside the timed region
	Verify bool `json:"verify" yaml:"verify"`
}

// ProcessConfig holds process-pool worker configuration.
type ProcessConfig struct {
	// Command is the worker executable (empty = re-exec self with -worker)
	Command string `json:"command" yaml:"command"`

	// Args are passed to Command
	Args []string `json:"args" yaml:"args"`
}

// StorageConfig holds storage configuration.
type StorageConfig struct {
	// Type is the storage type: local, s3
	Type string `json:"type" yaml:"type"`

	// Path is the local storage root; s3://bucket/key maps to Path/bucket/key
	Path string `json:"path" yaml:"path"`

	// S3 configuration (for s3 type)
	S3 S3Config `json:"s3" yaml:"s3"`
}

// S3Config holds S3 storage configuration.
type S3Config struct {
	// Region is the AWS region
	Region string `json:"region" yaml:"region"`

	// Endpoint is the S3 endpoint (for S3-compatible storage)
	Endpoint string `json:"endpoint" yaml:"endpoint"`

	// UsePathStyle enables path-style addressing (required for MinIO)
	UsePathStyle bool `json:"use_path_style" yaml:"use_path_style"`
}

// OutputConfig holds report output configuration.
type OutputConfig struct {
	// Format is table, json or yaml
	Format string `json:"format" yaml:"format"`

	// Path writes the report to a file instead of stdout
	Path string `json:"path" yaml:"path"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	// Debug adds timestamps with microseconds and file:line to log lines
	Debug bool `json:"debug" yaml:"debug"`
}

// DefaultConfig returns the default configuration for local runs.
func DefaultConfig() *Config {
	return &Config{
		DataDir: "./data/parbench",
		Dataset: DatasetConfig{
			Source: "train.csv",
			Column: "trip_duration",
			Table:  "trips",
			Min:    60,
			Max:    21600,
		},
		Bench: BenchConfig{
			Scales:     []float64{0.25, 0.5, 0.75, 1.0},
			Threshold:  1000,
			Workers:    0,
			Strategies: append([]types.StrategyName(nil), types.Strategies...),
		},
		Storage: StorageConfig{
			Type: "local",
			S3: S3Config{
				Region: "us-east-1",
			},
		},
		Output: OutputConfig{
			Format: "table",
		},
	}
}

// Resolve resolves relative paths and sets defaults based on DataDir.
func (c *Config) Resolve() {
	if c.DataDir == "" {
		c.DataDir = "./data/parbench"
	}

	// Resolve storage path
	if c.Storage.Path == "" {
		c.Storage.Path = filepath.Join(c.DataDir, "storage")
	}
}

// CacheDir returns the directory fetched datasets are cached in.
func (c *Config) CacheDir() string {
	return filepath.Join(c.DataDir, "cache")
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return invalid("data_dir is required")
	}

	if c.Dataset.Source == "" {
		return invalid("dataset.source is required")
	}
	if c.Dataset.Column == "" {
		return invalid("dataset.column is required")
	}
	if !(c.Dataset.Min < c.Dataset.Max) {
		return invalid(fmt.Sprintf("dataset.min (%v) must be below dataset.max (%v)", c.Dataset.Min, c.Dataset.Max))
	}

	if len(c.Bench.Scales) == 0 {
		return benchErrors.NewConfigError(benchErrors.CodeInvalidScale, "bench.scales must not be empty")
	}
	labels := make(map[string]float64, len(c.Bench.Scales))
	for _, s := range c.Bench.Scales {
		if !(s > 0 && s <= 1) {
			return benchErrors.NewConfigError(benchErrors.CodeInvalidScale,
				fmt.Sprintf("bench.scales: %v is outside (0, 1]", s))
		}
		label := types.ScaleLabel(s)
		if prev, dup := labels[label]; dup {
			return benchErrors.NewConfigError(benchErrors.CodeInvalidScale,
				fmt.Sprintf("bench.scales: %v and %v both report as %s", prev, s, label))
		}
		labels[label] = s
	}

	if c.Bench.Workers < 0 {
		return benchErrors.InvalidWorkerCount(c.Bench.Workers)
	}

	if len(c.Bench.Strategies) == 0 {
		return benchErrors.NewConfigError(benchErrors.CodeInvalidStrategy, "bench.strategies must not be empty")
	}
	seen := make(map[types.StrategyName]bool)
	for _, s := range c.Bench.Strategies {
		if !s.Valid() {
			return benchErrors.NewConfigError(benchErrors.CodeInvalidStrategy,
				fmt.Sprintf("unknown strategy %q (must be sequential, process-pool or thread-pool)", s))
		}
		if seen[s] {
			return benchErrors.NewConfigError(benchErrors.CodeInvalidStrategy,
				fmt.Sprintf("strategy %q listed twice", s))
		}
		seen[s] = true
	}

	if c.Storage.Type != "local" && c.Storage.Type != "s3" {
		return invalid(fmt.Sprintf("invalid storage type: %s (must be local or s3)", c.Storage.Type))
	}

	switch c.Output.Format {
	case "table", "json", "yaml":
	default:
		return invalid(fmt.Sprintf("invalid output format: %s (must be table, json or yaml)", c.Output.Format))
	}

	return nil
}

func invalid(message string) error {
	return benchErrors.NewConfigError(benchErrors.CodeInvalidConfig, message)
}

// LoadFromFile loads configuration from a YAML or JSON file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file format: %s", ext)
	}

	return cfg, nil
}

// LoadFromEnv loads configuration from environment variables.
// Environment variables use the PARBENCH_ prefix.
func LoadFromEnv(cfg *Config) {
	if v := os.Getenv("PARBENCH_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}

	// Dataset configuration
	if v := os.Getenv("PARBENCH_DATASET"); v != "" {
		cfg.Dataset.Source = v
	}
	if v := os.Getenv("PARBENCH_DATASET_COLUMN"); v != "" {
		cfg.Dataset.Column = v
	}
	if v := os.Getenv("PARBENCH_DATASET_TABLE"); v != "" {
		cfg.Dataset.Table = v
	}

	// Bench configuration
	if v := os.Getenv("PARBENCH_SCALES"); v != "" {
		if scales, err := ParseScales(v); err == nil {
			cfg.Bench.Scales = scales
		}
	}
	if v := os.Getenv("PARBENCH_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Bench.Threshold = f
		}
	}
	if v := os.Getenv("PARBENCH_WORKERS"); v != "" {
		fmt.Sscanf(v, "%d", &cfg.Bench.Workers)
	}
	if v := os.Getenv("PARBENCH_STRATEGIES"); v != "" {
		cfg.Bench.Strategies = ParseStrategies(v)
	}
	if v := os.Getenv("PARBENCH_VERIFY"); v != "" {
		cfg.Bench.Verify = v == "true" || v == "1"
	}

	// Storage configuration
	if v := os.Getenv("PARBENCH_STORAGE_TYPE"); v != "" {
		cfg.Storage.Type = v
	}
	if v := os.Getenv("PARBENCH_STORAGE_PATH"); v != "" {
		cfg.Storage.Path = v
	}
	if v := os.Getenv("PARBENCH_S3_REGION"); v != "" {
		cfg.Storage.S3.Region = v
	}
	if v := os.Getenv("PARBENCH_S3_ENDPOINT"); v != "" {
		cfg.Storage.S3.Endpoint = v
	}
	if v := os.Getenv("PARBENCH_S3_USE_PATH_STYLE"); v != "" {
		cfg.Storage.S3.UsePathStyle = v == "true" || v == "1"
	}

	// Output configuration
	if v := os.Getenv("PARBENCH_FORMAT"); v != "" {
		cfg.Output.Format = v
	}
	if v := os.Getenv("PARBENCH_OUT"); v != "" {
		cfg.Output.Path = v
	}
	if v := os.Getenv("PARBENCH_DEBUG"); v != "" {
		cfg.Log.Debug = v == "true" || v == "1"
	}
}

// ParseScales parses a comma-separated list such as "0.25,0.5,1".
func ParseScales(s string) ([]float64, error) {
	var scales []float64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		f, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return nil, benchErrors.NewConfigError(benchErrors.CodeInvalidScale,
				fmt.Sprintf("invalid scale %q", part))
		}
		scales = append(scales, f)
	}
	return scales, nil
}

// ParseStrategies parses a comma-separated strategy list.
func ParseStrategies(s string) []types.StrategyName {
	var names []types.StrategyName
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			names = append(names, types.StrategyName(part))
		}
	}
	return names
}

// EnsureDirectories creates all required directories.
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		c.DataDir,
		c.CacheDir(),
	}
	if c.Storage.Type == "local" {
		dirs = append(dirs, c.Storage.Path)
	}

	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}
