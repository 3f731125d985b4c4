// Package nn implements the layers of a hand-written feed-forward network.
//
// This package provides building blocks for constructing networks:
//   - Input holders: VectorInput, MatrixInput, TensorInput
//   - Linear: fully connected layer with a shared scalar bias
//   - Conv2D: per-channel convolution layer
//   - ReLU, MaxPool2D: feature-map transforms
//   - Flatten: adapter from feature maps to a vector
//
// Layers do not own references to each other. Every call names the layer it
// reads from (Forward, UpdateWeights) or pulls the gradient from (Backward),
// and every call re-checks that the connected shapes agree.
package nn

import (
	"github.com/born-ml/sprout/internal/tensor"
)

// VectorSource is anything whose output is a single vector: a VectorInput,
// a Linear layer or a Flatten adapter.
type VectorSource interface {
	// Value returns the current output. The vector is owned by the source.
	Value() *tensor.Vector
}

// MapSource is anything whose output is a stack of feature maps: a
// MatrixInput, a TensorInput, Conv2D, ReLU or MaxPool2D.
type MapSource interface {
	Depth() int
	Width() int
	Height() int
	// Map returns feature map c. The matrix is owned by the source.
	Map(c int) *tensor.Matrix
}

// GradientSender produces the error signal for the vector layer that feeds
// it. A terminal optimizer sends its gradient unchanged; a Linear layer sends
// the transpose-weighted sum of its own gradient.
type GradientSender interface {
	SendGradient(dst *tensor.Vector) error
}

// MapGradientSender produces the error signal for the map layer that feeds
// it. dst holds one matrix per source channel, shaped like the source maps.
type MapGradientSender interface {
	SendMapGradient(dst []*tensor.Matrix) error
}

// Trainable is a layer with weights.
type Trainable interface {
	// Randomize draws every weight uniformly from [min, max).
	Randomize(rng *tensor.RNG, min, max float32)

	// NumParameters returns the number of trainable scalars.
	NumParameters() int
}

func newMaps(depth, w, h int) []*tensor.Matrix {
	maps := make([]*tensor.Matrix, depth)
	for i := range maps {
		maps[i] = tensor.NewMatrix(w, h)
	}
	return maps
}

// checkMaps validates that src delivers depth maps of w×h.
func checkMaps(op string, src MapSource, depth, w, h int) error {
	if src.Depth() != depth {
		return tensor.Logicf("%s: channel mismatch: expected %d, got %d", op, depth, src.Depth())
	}
	if src.Width() != w || src.Height() != h {
		return tensor.Numericf("%s: map size mismatch: expected %dx%d, got %dx%d", op, w, h, src.Width(), src.Height())
	}
	return nil
}

// checkGradMaps validates a destination slice for SendMapGradient.
func checkGradMaps(op string, dst []*tensor.Matrix, depth, w, h int) error {
	if len(dst) != depth {
		return tensor.Logicf("%s: channel mismatch: expected %d, got %d", op, depth, len(dst))
	}
	for _, m := range dst {
		if m.Width() != w || m.Height() != h {
			return tensor.Numericf("%s: map size mismatch: expected %dx%d, got %dx%d", op, w, h, m.Width(), m.Height())
		}
	}
	return nil
}
