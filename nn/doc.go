// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides the module registry and basic layers.
//
// # Overview
//
// This package contains:
//   - Module: ordered registry of parameters, submodules and plain data,
//     with train/eval mode propagated to every submodule
//   - Parameter: a named leaf that requires grad
//   - Layers: Linear, Sequential, ReLU, Sigmoid
//   - Loss functions: MSELoss
//   - Initialization: Xavier
//
// Module and Parameter are generic over the payload, so the same registry
// organizes scalar (float64) and tensor models.
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/minitorch/autodiff"
//	    "github.com/born-ml/minitorch/backend/cpu"
//	    "github.com/born-ml/minitorch/nn"
//	)
//
//	func main() {
//	    o := autodiff.NewTensorOps(cpu.New())
//	    rng := rand.New(rand.NewSource(1))
//
//	    model, _ := nn.NewSequential(
//	        must.M1(nn.NewLinear(o, 2, 8, rng)),
//	        nn.NewReLU(o),
//	        must.M1(nn.NewLinear(o, 8, 1, rng)),
//	    )
//	    for _, np := range model.Module().NamedParameters() {
//	        fmt.Println(np.Path) // 0.weight, 0.bias, 2.weight, 2.bias
//	    }
//	}
package nn
