// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the dense float32 containers of sprout.
//
// # Overview
//
// Three containers share one value semantics:
//   - Vector: fixed-size sequence
//   - Matrix: width×height grid, row-major, addressed as At(x, y)
//   - Tensor: ordered channels of equally sized matrices
//
// Every container exclusively owns its buffer. Clone and CopyFrom deep
// copy; MoveFrom and Take transfer the buffer and leave the source invalid.
//
// # Basic Usage
//
//	import "github.com/born-ml/sprout/tensor"
//
//	func main() {
//	    a := tensor.VectorOf(1, 2, 3)
//	    b := tensor.VectorOf(4, 5, 6)
//	    d, _ := tensor.Dot(a, b) // 32
//
//	    target, _ := tensor.OneHot(5, 3) // [0 0 0 1 0]
//	}
//
// # Errors
//
// Failures carry one of three kinds, tested with errors.Is:
//   - ErrLogic: malformed input, invalid container, channel mismatch
//   - ErrNumeric: dimension mismatch, bad convolution parameters, bad index
//   - ErrMemory: a buffer request over the configured limit
//
// Out-of-range At/Set panics with an ErrNumeric error, like slice indexing.
//
// # Randomness
//
// RNG is seeded once and passed explicitly to every Randomize call, so a
// run is reproducible from its seed.
package tensor
