// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim provides the terminal units that close a sprout network.
//
// # Overview
//
// This package contains:
//   - MSE: identity output, squared-error loss
//   - Softmax: numerically stable softmax, cross-entropy loss
//   - Optimizer interface shared by both
//
// A unit turns the last layer's value into an output, scores it against a
// pushed target and holds the gradient target - output, which the last
// layer pulls during Backward.
//
// # Basic Usage
//
//	head := optim.NewSoftmax(10)
//	head.PushTarget(oneHot)
//	head.ForwardAndGrad(lastLayer)
//	lastLayer.Backward(head)
//	fmt.Println(head.Loss())
package optim
