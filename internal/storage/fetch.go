package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/sync/semaphore"
)

// Fetcher downloads objects into a local cache directory, skipping objects
// that are already cached.
type Fetcher struct {
	storage     ObjectStorage
	concurrency int
	cacheDir    string
}

// FetchResult contains the outcome of a fetch.
type FetchResult struct {
	// LocalPaths holds the cached file for each object, in request order
	LocalPaths []string
	Errors     map[string]error
	CacheHits  int
	Downloads  int
}

// NewFetcher creates a fetcher.
// concurrency: maximum number of parallel downloads
// cacheDir: directory downloaded objects are kept in
func NewFetcher(storage ObjectStorage, concurrency int, cacheDir string) *Fetcher {
	if concurrency <= 0 {
		concurrency = 4
	}
	return &Fetcher{
		storage:     storage,
		concurrency: concurrency,
		cacheDir:    cacheDir,
	}
}

// Fetch makes every object available locally. Per-object failures are
// reported in Errors; the returned error is only set on cancellation.
func (f *Fetcher) Fetch(ctx context.Context, objectPaths []string) (*FetchResult, error) {
	result := &FetchResult{
		LocalPaths: make([]string, len(objectPaths)),
		Errors:     make(map[string]error),
	}

	sem := semaphore.NewWeighted(int64(f.concurrency))
	var wg sync.WaitGroup
	var mu sync.Mutex

	for i, p := range objectPaths {
		local := f.LocalPath(p)
		result.LocalPaths[i] = local

		if _, err := os.Stat(local); err == nil {
			result.CacheHits++
			continue
		}

		if err := sem.Acquire(ctx, 1); err != nil {
			wg.Wait()
			return result, err
		}

		wg.Add(1)
		go func(path, local string) {
			defer sem.Release(1)
			defer wg.Done()

			if err := f.storage.Download(ctx, path, local); err != nil {
				mu.Lock()
				result.Errors[path] = err
				mu.Unlock()
				return
			}

			mu.Lock()
			result.Downloads++
			mu.Unlock()
		}(p, local)
	}

	wg.Wait()
	return result, nil
}

// FetchOne fetches a single object and returns its local path.
func (f *Fetcher) FetchOne(ctx context.Context, objectPath string) (string, error) {
	res, err := f.Fetch(ctx, []string{objectPath})
	if err != nil {
		return "", err
	}
	if err := res.Errors[objectPath]; err != nil {
		return "", err
	}
	return res.LocalPaths[0], nil
}

// LocalPath returns the cache path for an object. Directory separators in
// the key are flattened so keys cannot escape the cache directory.
func (f *Fetcher) LocalPath(objectPath string) string {
	name := strings.ReplaceAll(strings.Trim(objectPath, "/"), "/", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" {
		name = "object"
	}
	return filepath.Join(f.cacheDir, name)
}
