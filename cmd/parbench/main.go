// Package main implements the parbench binary.
// It benchmarks sequential, process-pool and thread-pool execution of sort
// and filter over growing prefixes of a dataset, or serves the process-pool
// worker protocol when started with -worker.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/parbench/parbench/internal/bench"
	"github.com/parbench/parbench/internal/config"
	"github.com/parbench/parbench/internal/dataset"
	"github.com/parbench/parbench/internal/executor"
	"github.com/parbench/parbench/internal/machine"
	"github.com/parbench/parbench/internal/report"
	"github.com/parbench/parbench/internal/storage"
	"github.com/parbench/parbench/internal/worker"
)

var (
	version = "dev"
	commit  = "unknown"
)

// flags holds command line overrides. Only flags named in set are applied.
type flags struct {
	set map[string]bool

	configFile string
	dataDir    string
	source     string
	column     string
	threshold  float64
	workers    int
	scales     string
	strategies string
	format     string
	out        string
	verify     bool
	debug      bool
}

func main() {
	var (
		f           flags
		workerMode  bool
		showVersion bool
		showHelp    bool
	)

	flag.StringVar(&f.configFile, "config", "", "Path to configuration file (YAML or JSON)")
	flag.StringVar(&f.dataDir, "data-dir", "", "Base directory for cached datasets")
	flag.StringVar(&f.source, "dataset", "", "Dataset: .csv/.db path, s3:// URI or synthetic:N")
	flag.StringVar(&f.column, "column", "", "Numeric column to benchmark")
	flag.Float64Var(&f.threshold, "threshold", 1000, "Filter threshold (keeps values strictly above)")
	flag.IntVar(&f.workers, "workers", 0, "Worker count (0 = one per logical core)")
	flag.StringVar(&f.scales, "scales", "", "Comma-separated dataset fractions, e.g. 0.25,0.5,1")
	flag.StringVar(&f.strategies, "strategies", "", "Comma-separated strategies: sequential,process-pool,thread-pool")
	flag.StringVar(&f.format, "format", "", "Report format: table, json, yaml")
	flag.StringVar(&f.out, "out", "", "Write the report to this file instead of stdout")
	flag.BoolVar(&f.verify, "verify", false, "Check every result against the sequential baseline")
	flag.BoolVar(&f.debug, "debug", false, "Verbose log prefixes")
	flag.BoolVar(&workerMode, "worker", false, "Serve the process-pool worker protocol on stdin/stdout")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showHelp, "help", false, "Show help message")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "parbench - sequential vs process-pool vs thread-pool benchmark\n\n")
		fmt.Fprintf(os.Stderr, "Usage: parbench [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  parbench -dataset train.csv\n")
		fmt.Fprintf(os.Stderr, "  parbench -dataset synthetic:1000000 -workers 8 -format json -out report.json\n")
		fmt.Fprintf(os.Stderr, "  parbench -dataset s3://nyc-taxi/train.csv -config parbench.yaml\n")
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  PARBENCH_DATASET        Dataset source\n")
		fmt.Fprintf(os.Stderr, "  PARBENCH_WORKERS        Worker count\n")
		fmt.Fprintf(os.Stderr, "  PARBENCH_SCALES         Dataset fractions\n")
		fmt.Fprintf(os.Stderr, "  PARBENCH_STRATEGIES     Strategies to run\n")
		fmt.Fprintf(os.Stderr, "  PARBENCH_STORAGE_TYPE   Storage type (local, s3)\n")
	}

	flag.Parse()

	f.set = make(map[string]bool)
	flag.Visit(func(fl *flag.Flag) { f.set[fl.Name] = true })

	if workerMode {
		// stdout carries frames; diagnostics go to stderr.
		log.SetOutput(os.Stderr)
		if err := worker.Serve(os.Stdin, os.Stdout); err != nil {
			log.Fatalf("worker: %v", err)
		}
		return
	}

	if showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if showVersion {
		fmt.Printf("parbench version %s (commit: %s)\n", version, commit)
		os.Exit(0)
	}

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Failed to load .env: %v", err)
	}

	cfg, err := loadConfig(f)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.Log.Debug {
		log.SetFlags(log.LstdFlags | log.Lmicroseconds | log.Lshortfile)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		sig := <-sigCh
		log.Printf("Received signal: %v, stopping after the current call", sig)
		cancel()
	}()

	if err := run(ctx, cfg); err != nil {
		log.Printf("Benchmark failed: %v", err)
		os.Exit(1)
	}
}

// loadConfig loads configuration from file, environment, and command line flags.
func loadConfig(f flags) (*config.Config, error) {
	var cfg *config.Config
	var err error

	// Start with defaults or load from file
	if f.configFile != "" {
		cfg, err = config.LoadFromFile(f.configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	} else {
		cfg = config.DefaultConfig()
	}

	// Apply environment variables
	config.LoadFromEnv(cfg)

	// Apply command line flags (highest priority)
	if f.set["data-dir"] {
		cfg.DataDir = f.dataDir
	}
	if f.set["dataset"] {
		cfg.Dataset.Source = f.source
	}
	if f.set["column"] {
		cfg.Dataset.Column = f.column
	}
	if f.set["threshold"] {
		cfg.Bench.Threshold = f.threshold
	}
	if f.set["workers"] {
		cfg.Bench.Workers = f.workers
	}
	if f.set["scales"] {
		scales, err := config.ParseScales(f.scales)
		if err != nil {
			return nil, err
		}
		cfg.Bench.Scales = scales
	}
	if f.set["strategies"] {
		cfg.Bench.Strategies = config.ParseStrategies(f.strategies)
	}
	if f.set["format"] {
		cfg.Output.Format = f.format
	}
	if f.set["out"] {
		cfg.Output.Path = f.out
	}
	if f.set["verify"] {
		cfg.Bench.Verify = f.verify
	}
	if f.set["debug"] {
		cfg.Log.Debug = f.debug
	}

	cfg.Resolve()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func run(ctx context.Context, cfg *config.Config) error {
	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	profile, err := machine.Probe(ctx)
	if err != nil {
		log.Printf("Machine probe incomplete: %v", err)
	}

	printBanner(cfg, profile)

	store, err := openStorage(ctx, cfg)
	if err != nil {
		return err
	}

	samples, stats, err := dataset.Load(ctx, dataset.Options{
		Source:   cfg.Dataset.Source,
		Column:   cfg.Dataset.Column,
		Table:    cfg.Dataset.Table,
		Min:      cfg.Dataset.Min,
		Max:      cfg.Dataset.Max,
		CacheDir: cfg.CacheDir(),
		Storage:  store,
	})
	if err != nil {
		return err
	}
	log.Printf("Loaded %s: %d cells, %d numeric, %d kept in (%v, %v)",
		cfg.Dataset.Source, stats.Raw, stats.Parsed, stats.Kept, cfg.Dataset.Min, cfg.Dataset.Max)

	execCfg := executor.DefaultConfig()
	if cfg.Process.Command != "" {
		execCfg.Process.Command = cfg.Process.Command
		execCfg.Process.Args = cfg.Process.Args
	}
	strategies, err := executor.NewAll(cfg.Bench.Strategies, execCfg)
	if err != nil {
		return err
	}

	orch, err := bench.NewOrchestrator(strategies, bench.Config{
		Scales:    cfg.Bench.Scales,
		Threshold: cfg.Bench.Threshold,
		Workers:   cfg.Bench.Workers,
		Verify:    cfg.Bench.Verify,
	}, profile)
	if err != nil {
		return err
	}
	log.Printf("Running with %d workers", orch.Workers())

	rep, runErr := orch.Run(ctx, samples)
	if rep != nil {
		if err := emit(cfg, rep); err != nil {
			return err
		}
		for _, s := range orch.Stats().All() {
			log.Printf("  %-24s calls=%d failures=%d mean=%v max=%v",
				s.Key(), s.Calls, s.Failures, s.Mean(), s.Max)
		}
		if failed := rep.Failed(); len(failed) > 0 {
			log.Printf("%d of %d calls failed", len(failed), len(rep.Records))
		}
	}
	return runErr
}

// openStorage returns the object storage serving an s3:// dataset source,
// or nil for local and synthetic sources.
func openStorage(ctx context.Context, cfg *config.Config) (storage.ObjectStorage, error) {
	if !storage.IsS3URI(cfg.Dataset.Source) {
		return nil, nil
	}
	uri, err := storage.ParseS3URI(cfg.Dataset.Source)
	if err != nil {
		return nil, err
	}

	switch cfg.Storage.Type {
	case "s3":
		s3Cfg := storage.DefaultS3Config()
		s3Cfg.Region = cfg.Storage.S3.Region
		s3Cfg.Endpoint = cfg.Storage.S3.Endpoint
		s3Cfg.UsePathStyle = cfg.Storage.S3.UsePathStyle
		return storage.NewS3Storage(ctx, uri.Bucket, s3Cfg)
	default:
		return storage.NewLocalStorage(filepath.Join(cfg.Storage.Path, uri.Bucket))
	}
}

func emit(cfg *config.Config, rep *bench.Report) error {
	format := report.Format(cfg.Output.Format)
	if cfg.Output.Path != "" {
		if err := report.WriteFile(cfg.Output.Path, rep, format); err != nil {
			return err
		}
		log.Printf("Report written to %s", cfg.Output.Path)
		return nil
	}
	return report.Render(os.Stdout, rep, format)
}

// printBanner prints the startup banner with configuration summary.
func printBanner(cfg *config.Config, profile machine.Profile) {
	log.Printf("╔═══════════════════════════════════════════════════════════╗")
	log.Printf("║                      PARBENCH                             ║")
	log.Printf("║   Sequential vs Process Pool vs Thread Pool               ║")
	log.Printf("╚═══════════════════════════════════════════════════════════╝")
	log.Printf("")
	log.Printf("Machine:    %s", profile)
	log.Printf("Configuration:")
	log.Printf("  Dataset:    %s (column %s)", cfg.Dataset.Source, cfg.Dataset.Column)
	log.Printf("  Storage:    %s", cfg.Storage.Type)
	log.Printf("  Scales:     %v", cfg.Bench.Scales)
	log.Printf("  Threshold:  %v", cfg.Bench.Threshold)
	log.Printf("  Strategies: %v", cfg.Bench.Strategies)
	log.Printf("  Verify:     %v", cfg.Bench.Verify)
	log.Printf("")
}
