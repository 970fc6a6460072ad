// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides a pure Go CPU backend for tensor kernels.
//
// # Overview
//
// This package implements:
//   - Element-wise map and zip with NumPy-compatible broadcasting
//   - Sum along a dimension and over all elements
//   - 2D matrix multiplication reading operands through their strides
//
// Every kernel runs under one of two strategies: Sequential, or Parallel
// (data-parallel over output elements). The autodiff engine does not see the
// difference, and parallel reductions are deterministic for a given worker count.
//
// # Basic Usage
//
//	backend := cpu.NewWithConfig(cpu.Config{
//	    Strategy: cpu.Parallel,
//	    Parallel: cpu.ParallelConfig{Enabled: true, NumWorkers: 8, MinChunkSize: 64},
//	})
package cpu
