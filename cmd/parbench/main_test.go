package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/parbench/parbench/pkg/types"
)

func TestLoadConfig_UnsetFlagsKeepConfig(t *testing.T) {
	f := flags{
		set:       map[string]bool{},
		threshold: 5,
		workers:   7,
		format:    "yaml",
	}
	cfg, err := loadConfig(f)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Bench.Threshold != 1000 || cfg.Bench.Workers != 0 || cfg.Output.Format != "table" {
		t.Errorf("unset flags must not override config: %+v %+v", cfg.Bench, cfg.Output)
	}
}

func TestLoadConfig_NegativeThreshold(t *testing.T) {
	f := flags{
		set:       map[string]bool{"threshold": true},
		threshold: -250,
	}
	cfg, err := loadConfig(f)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Bench.Threshold != -250 {
		t.Errorf("threshold = %v, want -250", cfg.Bench.Threshold)
	}
}

func TestLoadConfig_FlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "parbench.yaml")
	content := "bench:\n  verify: true\n  workers: 8\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	f := flags{
		configFile: path,
		set:        map[string]bool{"verify": true, "workers": true, "strategies": true, "scales": true},
		verify:     false,
		workers:    0,
		strategies: "thread-pool,sequential",
		scales:     "0.5,1",
	}
	cfg, err := loadConfig(f)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Bench.Verify {
		t.Error("-verify=false should switch verification off")
	}
	if cfg.Bench.Workers != 0 {
		t.Errorf("-workers 0 should select the machine hint, got %d", cfg.Bench.Workers)
	}
	if len(cfg.Bench.Strategies) != 2 || cfg.Bench.Strategies[0] != types.StrategyThreadPool {
		t.Errorf("strategies = %v", cfg.Bench.Strategies)
	}
	if len(cfg.Bench.Scales) != 2 {
		t.Errorf("scales = %v", cfg.Bench.Scales)
	}
}

func TestLoadConfig_InvalidFlagIsRejected(t *testing.T) {
	f := flags{
		set:    map[string]bool{"scales": true},
		scales: "0.331,0.334",
	}
	if _, err := loadConfig(f); err == nil {
		t.Error("scales sharing a label should be rejected")
	}
}
