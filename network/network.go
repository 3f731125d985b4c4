// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package network provides complete trainable sprout networks.
//
// # Overview
//
//   - MLP: a stack of Linear layers over a flat example
//   - ConvNet: Conv2D → ReLU → MaxPool2D → Flatten → Linear over maps
//
// Both implement Network and share the same online training cycle:
//
//	net, _ := network.NewMLP[*tensor.Matrix](network.DefaultMLPConfig())
//	net.InitWeights(tensor.NewRNG(1), -0.1, 0.1)
//	loss, err := network.Step(net, image, target)
//	result, err := network.Classify(net, image)
package network

import (
	"github.com/born-ml/sprout/internal/network"
	"github.com/born-ml/sprout/internal/tensor"
)

// Network binds one input type to one output type.
type Network[In, Out any] = network.Network[In, Out]

// Classifier is a Network producing class scores.
type Classifier[In any] = network.Classifier[In]

// Flat is an example readable as one contiguous slice.
type Flat = network.Flat

// MLPConfig holds the shape and training settings of an MLP.
type MLPConfig = network.MLPConfig

// DefaultMLPConfig returns the MNIST network: 784 → 48 → 10.
func DefaultMLPConfig() MLPConfig {
	return network.DefaultMLPConfig()
}

// MLP is a stack of Linear layers reading a flat example.
type MLP[In Flat] = network.MLP[In]

// NewMLP creates an MLP from cfg.
//
// Parameters:
//   - cfg: layer sizes, activation, terminal unit and learning rate
//
// Returns a logic error when a size is not positive.
func NewMLP[In Flat](cfg MLPConfig) (*MLP[In], error) {
	return network.NewMLP[In](cfg)
}

// ConvConfig holds the shape and training settings of a ConvNet.
type ConvConfig = network.ConvConfig

// DefaultConvConfig returns the MNIST convolutional network settings.
func DefaultConvConfig() ConvConfig {
	return network.DefaultConvConfig()
}

// DefaultCIFARConfig returns the CIFAR-10 convolutional network settings.
func DefaultCIFARConfig() ConvConfig {
	return network.DefaultCIFARConfig()
}

// ConvNet is a single convolution block followed by a Linear classifier.
type ConvNet[In any] = network.ConvNet[In]

// NewMatrixConvNet creates a ConvNet reading single-channel matrices.
func NewMatrixConvNet(cfg ConvConfig) (*ConvNet[*tensor.Matrix], error) {
	return network.NewMatrixConvNet(cfg)
}

// NewTensorConvNet creates a ConvNet reading multi-channel tensors.
func NewTensorConvNet(cfg ConvConfig) (*ConvNet[*tensor.Tensor], error) {
	return network.NewTensorConvNet(cfg)
}

// Step runs one online training step and returns the loss.
func Step[In, Out any](n Network[In, Out], in In, target Out) (float32, error) {
	return network.Step(n, in, target)
}

// Classify runs inference and returns the highest scoring class.
func Classify[In any](n Classifier[In], in In) (tensor.SearchResult, error) {
	return network.Classify(n, in)
}
