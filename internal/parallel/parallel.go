// Package parallel splits index ranges across goroutines for dataset
// decoding.
package parallel

import (
	"runtime"
	"sync"
)

// Config controls parallel execution behavior.
type Config struct {
	Enabled      bool // Whether parallel execution is enabled.
	NumWorkers   int  // Number of worker goroutines to use.
	MinChunkSize int  // Minimum items per goroutine.
}

// DefaultConfig returns defaults based on CPU count.
func DefaultConfig() Config {
	n := runtime.NumCPU()
	return Config{
		Enabled:      n > 1,
		NumWorkers:   n,
		MinChunkSize: 256, // About 200 KB of MNIST pixels.
	}
}

// For executes f(i) for i in [0, n), in contiguous chunks when enabled.
// Falls back to sequential execution if parallelism is disabled or n is too small.
// f must only write state owned by index i.
func For(n int, f func(i int), cfg Config) {
	if !cfg.Enabled || cfg.NumWorkers <= 1 || n < cfg.MinChunkSize {
		for i := 0; i < n; i++ {
			f(i)
		}
		return
	}

	var wg sync.WaitGroup
	chunkSize := max((n+cfg.NumWorkers-1)/cfg.NumWorkers, cfg.MinChunkSize)

	for start := 0; start < n; start += chunkSize {
		end := min(start+chunkSize, n)
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			for i := s; i < e; i++ {
				f(i)
			}
		}(start, end)
	}
	wg.Wait()
}

// ForErr is For with a fallible body. Every index runs; the error of the
// lowest failing index is returned, so the result does not depend on
// scheduling.
func ForErr(n int, f func(i int) error, cfg Config) error {
	errs := make([]error, n)
	For(n, func(i int) {
		errs[i] = f(i)
	}, cfg)
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
