// Package parallel provides data-parallel execution utilities for tensor kernels.
//
// Only kernels whose iterations are independent may use For; reductions use
// Reduce, which combines per-chunk partials serially in chunk order so the
// result does not depend on goroutine scheduling.
package parallel

import (
	"os"
	"runtime"
	"strconv"
	"sync"

	"golang.org/x/exp/constraints"
	"k8s.io/klog/v2"
)

// NumWorkersEnvVar overrides the number of workers in ConfigFromEnv.
// A value of 1 (or less) disables parallel execution.
const NumWorkersEnvVar = "MINITORCH_NUM_WORKERS"

// Config controls parallel execution behavior.
type Config struct {
	Enabled      bool // Whether parallel execution is enabled.
	NumWorkers   int  // Number of worker goroutines to use.
	MinChunkSize int  // Minimum items per goroutine to avoid overhead.
}

// DefaultConfig returns sensible defaults based on CPU count.
func DefaultConfig() Config {
	n := runtime.NumCPU()
	return Config{
		Enabled:      n > 1,
		NumWorkers:   n,
		MinChunkSize: 64, // Typical cache line aware chunk.
	}
}

// ConfigFromEnv returns DefaultConfig adjusted by NumWorkersEnvVar, if set.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	v, ok := os.LookupEnv(NumWorkersEnvVar)
	if !ok || v == "" {
		return cfg
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		klog.Warningf("parallel: ignoring invalid %s=%q: %v", NumWorkersEnvVar, v, err)
		return cfg
	}
	cfg.NumWorkers = max(n, 1)
	cfg.Enabled = n > 1
	return cfg
}

// chunks splits [0, n) into contiguous ranges according to cfg.
// A single range is returned when parallelism is disabled or n is too small.
func chunks(n int, cfg Config) [][2]int {
	if !cfg.Enabled || cfg.NumWorkers <= 1 || n < cfg.MinChunkSize {
		return [][2]int{{0, n}}
	}
	chunkSize := max((n+cfg.NumWorkers-1)/cfg.NumWorkers, cfg.MinChunkSize, 1)
	out := make([][2]int, 0, (n+chunkSize-1)/chunkSize)
	for start := 0; start < n; start += chunkSize {
		out = append(out, [2]int{start, min(start+chunkSize, n)})
	}
	return out
}

// For executes f(i) for i in [0, n) with optional parallelism.
// Falls back to sequential execution if parallelism is disabled or n is too small.
func For(n int, f func(i int), cfg Config) {
	ForRange(n, func(start, end int) {
		for i := start; i < end; i++ {
			f(i)
		}
	}, cfg)
}

// ForRange executes f over contiguous sub-ranges [start, end) covering [0, n).
// Each range runs on its own goroutine when parallelism applies.
//
// A panic in any range is recovered in its worker and, once all workers
// have finished, re-raised in the calling goroutine with the first panic
// value, exactly as if f had panicked sequentially.
func ForRange(n int, f func(start, end int), cfg Config) {
	ranges := chunks(n, cfg)
	if len(ranges) == 1 {
		f(ranges[0][0], ranges[0][1])
		return
	}

	var (
		wg     sync.WaitGroup
		once   sync.Once
		caught any
	)
	for _, r := range ranges {
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			defer func() {
				if p := recover(); p != nil {
					once.Do(func() { caught = p })
				}
			}()
			f(s, e)
		}(r[0], r[1])
	}
	wg.Wait()
	if caught != nil {
		panic(caught)
	}
}

// Reduce sums f(i) for i in [0, n).
//
// Each chunk accumulates its partial sum locally, then partials are added
// serially in chunk order. For a fixed cfg and n the result is bit-for-bit
// reproducible regardless of how goroutines are scheduled.
func Reduce[T constraints.Float](n int, f func(i int) T, cfg Config) T {
	ranges := chunks(n, cfg)
	partials := make([]T, len(ranges))
	ForRange(len(ranges), func(start, end int) {
		for c := start; c < end; c++ {
			var acc T
			for i := ranges[c][0]; i < ranges[c][1]; i++ {
				acc += f(i)
			}
			partials[c] = acc
		}
	}, Config{Enabled: len(ranges) > 1, NumWorkers: len(ranges), MinChunkSize: 1})

	var total T
	for _, p := range partials {
		total += p
	}
	return total
}
