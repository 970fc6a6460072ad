// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides strided, reference-counted float64 tensors.
//
// # Overview
//
// A Tensor is a descriptor (shape, strides, offset) over a shared Storage:
//   - Views (Reshape of a contiguous tensor, Permute, Transpose, Expand,
//     Slice, Index, Unsqueeze) share storage and never copy
//   - Reshape of a non-contiguous tensor copies and reports Copied
//   - NumPy-style broadcasting via BroadcastShapes
//
// # Basic Usage
//
//	x, _ := tensor.FromSlice([]float64{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
//	xt, _ := x.Transpose(0, 1)        // shape [3, 2], same storage
//	flat, kind, _ := xt.Reshape(tensor.Shape{6})
//	fmt.Println(kind)                 // copied: xt is not contiguous
//
// # Aliasing
//
// Set and Fill write through to the Storage, so every view over it observes
// the change. Call CopyOnWrite first to detach a tensor whose storage is shared.
package tensor
