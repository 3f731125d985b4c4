// Package network wires input holders, layers and a terminal unit into
// complete trainable networks.
//
// This package provides:
//   - Network: the pipeline contract every network implements
//   - MLP: a stack of Linear layers over a flat example
//   - ConvNet: Conv2D → ReLU → MaxPool2D → Flatten → Linear over a map example
//
// One online training step is:
//
//	net.FeedData(example)
//	net.ForwardAndGrad(target)
//	net.Backward()
//	net.UpdateWeights()
//
// Inference is FeedData, Forward, then Output.
package network

import (
	"fmt"

	"github.com/born-ml/sprout/internal/tensor"
)

// Network binds one input type to one output type.
type Network[In, Out any] interface {
	// FeedData copies one example into the input holder.
	FeedData(in In) error

	// Output returns the terminal unit's output of the last forward pass.
	Output() Out

	// ForwardAndGrad pushes target, runs the forward pass and computes the
	// gradient and loss against target.
	ForwardAndGrad(target Out) error

	// Backward propagates the gradient from the terminal unit to the first
	// layer.
	Backward() error

	// Forward runs inference only.
	Forward() error

	// UpdateWeights applies one online step with the current learning rate.
	UpdateWeights() error

	// Loss returns the loss of the last ForwardAndGrad.
	Loss() float32

	// InitWeights draws every weight uniformly from [min, max).
	InitWeights(rng *tensor.RNG, min, max float32)

	LearningRate() float32
	SetLearningRate(lr float32)
}

// Classifier is a Network producing class scores.
type Classifier[In any] interface {
	Network[In, *tensor.Vector]
}

// Step runs one complete online training step and returns its loss.
func Step[In, Out any](n Network[In, Out], in In, target Out) (float32, error) {
	if err := n.FeedData(in); err != nil {
		return 0, fmt.Errorf("feed data: %w", err)
	}
	if err := n.ForwardAndGrad(target); err != nil {
		return 0, fmt.Errorf("forward: %w", err)
	}
	if err := n.Backward(); err != nil {
		return 0, fmt.Errorf("backward: %w", err)
	}
	if err := n.UpdateWeights(); err != nil {
		return 0, fmt.Errorf("update weights: %w", err)
	}
	return n.Loss(), nil
}

// Classify runs inference on in and returns the index of the highest score
// together with that score.
func Classify[In any](n Classifier[In], in In) (tensor.SearchResult, error) {
	if err := n.FeedData(in); err != nil {
		return tensor.SearchResult{}, fmt.Errorf("feed data: %w", err)
	}
	if err := n.Forward(); err != nil {
		return tensor.SearchResult{}, fmt.Errorf("forward: %w", err)
	}
	return n.Output().Max(), nil
}

// Flat is an example whose elements can be read as one row-major slice:
// a *tensor.Vector or a *tensor.Matrix.
type Flat interface {
	Valid() bool
	Len() int
	Data() []float32
}
