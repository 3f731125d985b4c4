package nn

import (
	"github.com/born-ml/sprout/internal/tensor"
)

// VectorInput holds one example vector for the first Linear layer.
type VectorInput struct {
	input *tensor.Vector
}

// NewVectorInput creates an input holder for vectors of the given size.
func NewVectorInput(size int) *VectorInput {
	return &VectorInput{input: tensor.NewVector(size)}
}

// Push copies data into the holder.
//
// Returns a logic error if data has the wrong size.
func (in *VectorInput) Push(data *tensor.Vector) error {
	if !data.Valid() {
		return tensor.Logicf("vector input: invalid data")
	}
	if data.Len() != in.input.Len() {
		return tensor.Logicf("vector input: size mismatch: expected %d, got %d", in.input.Len(), data.Len())
	}
	return in.input.CopyFrom(data)
}

// Value returns the held vector.
func (in *VectorInput) Value() *tensor.Vector { return in.input }

// Size returns the configured input size.
func (in *VectorInput) Size() int { return in.input.Len() }

// MatrixInput holds one single-channel example.
type MatrixInput struct {
	input *tensor.Matrix
}

// NewMatrixInput creates an input holder for w×h matrices.
func NewMatrixInput(w, h int) *MatrixInput {
	return &MatrixInput{input: tensor.NewMatrix(w, h)}
}

// Push copies data into the holder.
//
// Returns a logic error if data has the wrong shape.
func (in *MatrixInput) Push(data *tensor.Matrix) error {
	if !data.Valid() {
		return tensor.Logicf("matrix input: invalid data")
	}
	if !data.SameShape(in.input) {
		return tensor.Logicf("matrix input: shape mismatch: expected %dx%d, got %dx%d",
			in.input.Width(), in.input.Height(), data.Width(), data.Height())
	}
	return in.input.CopyFrom(data)
}

// Matrix returns the held matrix.
func (in *MatrixInput) Matrix() *tensor.Matrix { return in.input }

// Depth returns 1.
func (in *MatrixInput) Depth() int { return 1 }

// Width returns the configured width.
func (in *MatrixInput) Width() int { return in.input.Width() }

// Height returns the configured height.
func (in *MatrixInput) Height() int { return in.input.Height() }

// Map returns the held matrix for channel 0.
func (in *MatrixInput) Map(c int) *tensor.Matrix {
	if c != 0 {
		panic(tensor.Numericf("matrix input: channel %d out of range [0, 1)", c))
	}
	return in.input
}

// TensorInput holds one multi-channel example.
type TensorInput struct {
	input *tensor.Tensor
}

// NewTensorInput creates an input holder for tensors with c channels of w×h.
func NewTensorInput(c, w, h int) *TensorInput {
	return &TensorInput{input: tensor.NewTensor(c, w, h)}
}

// Push copies data into the holder.
//
// Returns a logic error if data has the wrong channel count or shape.
func (in *TensorInput) Push(data *tensor.Tensor) error {
	if !data.Valid() {
		return tensor.Logicf("tensor input: invalid data")
	}
	if data.Channels() != in.input.Channels() || data.Width() != in.input.Width() || data.Height() != in.input.Height() {
		return tensor.Logicf("tensor input: shape mismatch: expected %dx%dx%d, got %dx%dx%d",
			in.input.Channels(), in.input.Width(), in.input.Height(),
			data.Channels(), data.Width(), data.Height())
	}
	return in.input.CopyFrom(data)
}

// Tensor returns the held tensor.
func (in *TensorInput) Tensor() *tensor.Tensor { return in.input }

// Depth returns the channel count.
func (in *TensorInput) Depth() int { return in.input.Channels() }

// Width returns the configured width.
func (in *TensorInput) Width() int { return in.input.Width() }

// Height returns the configured height.
func (in *TensorInput) Height() int { return in.input.Height() }

// Map returns channel c of the held tensor.
func (in *TensorInput) Map(c int) *tensor.Matrix { return in.input.Channel(c) }
