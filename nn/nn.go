// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"github.com/born-ml/sprout/internal/activation"
	"github.com/born-ml/sprout/internal/nn"
)

// Interfaces

// VectorSource is a layer whose output is a single vector.
type VectorSource = nn.VectorSource

// MapSource is a layer whose output is a stack of feature maps.
type MapSource = nn.MapSource

// GradientSender produces the gradient for the vector layer feeding it.
type GradientSender = nn.GradientSender

// MapGradientSender produces the gradient for the map layer feeding it.
type MapGradientSender = nn.MapGradientSender

// Trainable is a layer with weights.
type Trainable = nn.Trainable

// Activations

// Activation is a scalar nonlinearity with its derivative.
type Activation = activation.Func

// Activation functions.
const (
	Identity  = activation.Identity
	ReLU      = activation.ReLU
	LeakyReLU = activation.LeakyReLU
	Sigmoid   = activation.Sigmoid
)

// ParseActivation maps a name such as "leaky_relu" to its Activation.
func ParseActivation(name string) (Activation, error) {
	return activation.Parse(name)
}

// Inputs

// VectorInput holds one example vector.
type VectorInput = nn.VectorInput

// NewVectorInput creates an input holder for vectors of size elements.
func NewVectorInput(size int) *VectorInput {
	return nn.NewVectorInput(size)
}

// MatrixInput holds one single-channel example.
type MatrixInput = nn.MatrixInput

// NewMatrixInput creates an input holder for w×h matrices.
func NewMatrixInput(w, h int) *MatrixInput {
	return nn.NewMatrixInput(w, h)
}

// TensorInput holds one multi-channel example.
type TensorInput = nn.TensorInput

// NewTensorInput creates an input holder for c channels of w×h.
func NewTensorInput(c, w, h int) *TensorInput {
	return nn.NewTensorInput(c, w, h)
}

// Layers

// Linear is a fully connected layer with a shared scalar bias.
type Linear = nn.Linear

// NewLinear creates a layer of neurons, each reading weightLen inputs.
//
// Example:
//
//	layer := nn.NewLinear(48, 784)
//	layer.Randomize(rng, -0.1, 0.1)
func NewLinear(neurons, weightLen int) *Linear {
	return nn.NewLinear(neurons, weightLen)
}

// Conv2D is a per-channel convolutional layer.
type Conv2D = nn.Conv2D

// NewConv2D creates a convolution over srcW×srcH maps with depth kernels.
//
// Example:
//
//	conv := nn.NewConv2D(28, 28, 6, 5, 1, 0) // 6 maps of 24x24
func NewConv2D(srcW, srcH, depth, kernelSize, stride, padding int) *Conv2D {
	return nn.NewConv2D(srcW, srcH, depth, kernelSize, stride, padding)
}

// ReLULayer clamps feature maps to non-negative values.
type ReLULayer = nn.ReLU

// NewReLU creates a ReLU layer for depth maps of w×h.
func NewReLU(w, h, depth int) *ReLULayer {
	return nn.NewReLU(w, h, depth)
}

// MaxPool2D is a 2x2 stride 2 max pooling layer.
type MaxPool2D = nn.MaxPool2D

// NewMaxPool2D creates a pooling layer for depth maps of srcW×srcH.
func NewMaxPool2D(srcW, srcH, depth int) *MaxPool2D {
	return nn.NewMaxPool2D(srcW, srcH, depth)
}

// Flatten adapts feature maps into one vector.
type Flatten = nn.Flatten

// NewFlatten creates an adapter for depth maps of w×h.
func NewFlatten(w, h, depth int) *Flatten {
	return nn.NewFlatten(w, h, depth)
}
