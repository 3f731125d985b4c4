// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides the layers of sprout networks.
//
// # Overview
//
// Input holders:
//   - VectorInput: one example vector
//   - MatrixInput: one single-channel map
//   - TensorInput: one multi-channel map stack
//
// Layers:
//   - Linear: fully connected, one shared scalar bias
//   - Conv2D: per-channel convolution with one bias per channel
//   - ReLU: per-channel clamp
//   - MaxPool2D: 2x2 stride 2 pooling with tie-preserving routing masks
//   - Flatten: feature maps to vector adapter
//
// Activations (Identity, ReLU, LeakyReLU, Sigmoid) are values of the
// Activation type passed to Linear.Forward and Linear.UpdateWeights.
//
// # Wiring
//
// Layers never hold references to each other. Each call names its
// neighbour, and each call re-checks the connected shapes:
//
//	in := nn.NewVectorInput(784)
//	hidden := nn.NewLinear(48, 784)
//	out := nn.NewLinear(10, 48)
//
//	hidden.Forward(in, nn.LeakyReLU)
//	out.Forward(hidden, nn.LeakyReLU)
//	// terminal unit from package optim ...
//	out.Backward(head)
//	hidden.Backward(out)
//	hidden.UpdateWeights(in, nn.LeakyReLU, 0.01)
//	out.UpdateWeights(hidden, nn.LeakyReLU, 0.01)
package nn
