// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package cpu

import (
	internalcpu "github.com/born-ml/minitorch/internal/backend/cpu"
	"github.com/born-ml/minitorch/internal/parallel"
	"github.com/born-ml/minitorch/tensor"
)

// Backend represents the CPU backend implementation.
type Backend = internalcpu.Backend

// Compile-time check that Backend implements tensor.Backend.
var _ tensor.Backend = (*Backend)(nil)

// Config selects the kernel strategy.
type Config = internalcpu.Config

// Strategy is Sequential or Parallel.
type Strategy = internalcpu.Strategy

// Kernel strategies.
const (
	Sequential = internalcpu.Sequential
	Parallel   = internalcpu.Parallel
)

// ParallelConfig controls worker count and chunking of parallel kernels.
type ParallelConfig = parallel.Config

// New creates a CPU backend with the default configuration, honoring
// MINITORCH_NUM_WORKERS.
//
// Example:
//
//	backend := cpu.New()
//	o := autodiff.NewTensorOps(backend)
func New() *Backend {
	return internalcpu.New()
}

// NewWithConfig creates a CPU backend with an explicit configuration.
func NewWithConfig(config Config) *Backend {
	return internalcpu.NewWithConfig(config)
}

// DefaultConfig returns the configuration used by New.
func DefaultConfig() Config {
	return internalcpu.DefaultConfig()
}
