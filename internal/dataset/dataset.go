// Package dataset loads the numeric column the benchmark runs on.
package dataset

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	benchErrors "github.com/parbench/parbench/internal/errors"
	"github.com/parbench/parbench/internal/storage"
)

// Defaults for the NYC taxi trip duration dataset.
const (
	DefaultColumn = "trip_duration"
	DefaultTable  = "trips"
	DefaultMin    = 60.0
	DefaultMax    = 21600.0
)

// Options control where a dataset comes from and how it is cleaned.
type Options struct {
	// Source is a file path (.csv, .db, .sqlite, .sqlite3), an s3:// URI
	// or "synthetic:N"
	Source string

	// Column is the numeric column to extract (default: trip_duration)
	Column string

	// Table is the SQLite table to read (default: trips)
	Table string

	// Min and Max bound kept values, both exclusive (default: 60, 21600)
	Min float64
	Max float64

	// CacheDir receives objects fetched from object storage
	CacheDir string

	// Storage serves s3:// sources
	Storage storage.ObjectStorage
}

// DefaultOptions returns options for the reference dataset.
func DefaultOptions() Options {
	return Options{
		Column: DefaultColumn,
		Table:  DefaultTable,
		Min:    DefaultMin,
		Max:    DefaultMax,
	}
}

func (o Options) withDefaults() Options {
	if o.Column == "" {
		o.Column = DefaultColumn
	}
	if o.Table == "" {
		o.Table = DefaultTable
	}
	if o.Min == 0 && o.Max == 0 {
		o.Min, o.Max = DefaultMin, DefaultMax
	}
	return o
}

// LoadStats counts samples through the cleaning pipeline.
type LoadStats struct {
	// Raw is the number of cells read
	Raw int `json:"raw" yaml:"raw"`
	// Parsed is the number of cells that coerced to a number
	Parsed int `json:"parsed" yaml:"parsed"`
	// Kept is the number of samples inside the range
	Kept int `json:"kept" yaml:"kept"`
}

func (s *LoadStats) add(o LoadStats) {
	s.Raw += o.Raw
	s.Parsed += o.Parsed
	s.Kept += o.Kept
}

// Load reads, coerces and range-filters the configured column. Samples are
// returned in source order.
func Load(ctx context.Context, opts Options) ([]float64, LoadStats, error) {
	opts = opts.withDefaults()
	if !(opts.Min < opts.Max) {
		return nil, LoadStats{}, benchErrors.NewConfigError(benchErrors.CodeInvalidConfig,
			fmt.Sprintf("dataset range min %v must be below max %v", opts.Min, opts.Max))
	}

	switch {
	case strings.HasPrefix(opts.Source, SyntheticPrefix):
		n, err := strconv.Atoi(strings.TrimPrefix(opts.Source, SyntheticPrefix))
		if err != nil || n < 0 {
			return nil, LoadStats{}, benchErrors.NewDatasetError(benchErrors.CodeDatasetParse,
				fmt.Sprintf("invalid synthetic size in %q", opts.Source), err)
		}
		return Synthetic(n, opts.Min, opts.Max)
	case storage.IsS3URI(opts.Source):
		return loadRemote(ctx, opts)
	default:
		return loadFile(ctx, opts, opts.Source)
	}
}

func loadRemote(ctx context.Context, opts Options) ([]float64, LoadStats, error) {
	uri, err := storage.ParseS3URI(opts.Source)
	if err != nil {
		return nil, LoadStats{}, benchErrors.NewConfigError(benchErrors.CodeInvalidConfig, err.Error())
	}
	if opts.Storage == nil {
		return nil, LoadStats{}, benchErrors.NewConfigError(benchErrors.CodeInvalidConfig,
			fmt.Sprintf("no object storage configured for %s", opts.Source))
	}

	keys := []string{uri.Key}
	if uri.IsPrefix() {
		keys, err = opts.Storage.ListObjects(ctx, uri.Key)
		if err != nil {
			return nil, LoadStats{}, benchErrors.NewStorageError(benchErrors.CodeDownloadFailed,
				fmt.Sprintf("list %s", uri), err)
		}
		keys = supported(keys)
		if len(keys) == 0 {
			return nil, LoadStats{}, benchErrors.NewDatasetError(benchErrors.CodeDatasetNotFound,
				fmt.Sprintf("no dataset files under %s", uri), nil)
		}
	}

	fetcher := storage.NewFetcher(opts.Storage, 4, opts.CacheDir)
	fetched, err := fetcher.Fetch(ctx, keys)
	if err != nil {
		return nil, LoadStats{}, err
	}
	for _, key := range keys {
		if err := fetched.Errors[key]; err != nil {
			if errors.Is(err, storage.ErrObjectNotFound) {
				return nil, LoadStats{}, benchErrors.NewStorageError(benchErrors.CodeObjectNotFound,
					fmt.Sprintf("s3://%s/%s", uri.Bucket, key), err)
			}
			return nil, LoadStats{}, benchErrors.NewStorageError(benchErrors.CodeDownloadFailed,
				fmt.Sprintf("s3://%s/%s", uri.Bucket, key), err)
		}
	}

	var all []float64
	var stats LoadStats
	for _, local := range fetched.LocalPaths {
		values, s, err := loadFile(ctx, opts, local)
		if err != nil {
			return nil, LoadStats{}, err
		}
		all = append(all, values...)
		stats.add(s)
	}
	if all == nil {
		all = []float64{}
	}
	return all, stats, nil
}

func loadFile(ctx context.Context, opts Options, path string) ([]float64, LoadStats, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, LoadStats{}, benchErrors.NewDatasetError(benchErrors.CodeDatasetNotFound,
			fmt.Sprintf("dataset %s", path), err)
	}

	var cells cellSource
	switch kindOf(path) {
	case kindCSV:
		cells = csvCells(path, opts.Column)
	case kindSQLite:
		cells = sqliteCells(ctx, path, opts.Table, opts.Column)
	default:
		return nil, LoadStats{}, benchErrors.NewDatasetError(benchErrors.CodeDatasetParse,
			fmt.Sprintf("unsupported dataset format %q", filepath.Ext(path)), nil)
	}

	return clean(cells, opts.Min, opts.Max)
}

// cellSource yields raw cells to a visitor.
type cellSource func(visit func(cell any)) error

// clean coerces cells to numbers and keeps values strictly inside (lo, hi).
func clean(cells cellSource, lo, hi float64) ([]float64, LoadStats, error) {
	var stats LoadStats
	values := []float64{}

	err := cells(func(cell any) {
		stats.Raw++
		v, ok := coerce(cell)
		if !ok {
			return
		}
		stats.Parsed++
		if v > lo && v < hi {
			values = append(values, v)
		}
	})
	if err != nil {
		return nil, LoadStats{}, err
	}

	stats.Kept = len(values)
	return values, stats, nil
}

// coerce converts a cell to a float, rejecting blanks and NaN.
func coerce(cell any) (float64, bool) {
	var v float64
	switch c := cell.(type) {
	case float64:
		v = c
	case int64:
		v = float64(c)
	case []byte:
		return coerce(string(c))
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(c), 64)
		if err != nil {
			return 0, false
		}
		v = f
	default:
		return 0, false
	}
	if math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

type kind int

const (
	kindUnknown kind = iota
	kindCSV
	kindSQLite
)

func kindOf(path string) kind {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return kindCSV
	case ".db", ".sqlite", ".sqlite3":
		return kindSQLite
	default:
		return kindUnknown
	}
}

// supported filters object keys down to loadable formats.
func supported(keys []string) []string {
	var out []string
	for _, k := range keys {
		if kindOf(k) != kindUnknown {
			out = append(out, k)
		}
	}
	return out
}
