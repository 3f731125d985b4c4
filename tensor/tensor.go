// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/born-ml/sprout/internal/tensor"
)

// Vector is a fixed-size float32 sequence.
type Vector = tensor.Vector

// Matrix is a width×height float32 grid stored row-major.
type Matrix = tensor.Matrix

// Tensor is an ordered set of equally sized channel matrices.
type Tensor = tensor.Tensor

// SearchResult is the value and flat index found by Max or Min.
type SearchResult = tensor.SearchResult

// RNG is the random generator used for weight initialization.
type RNG = tensor.RNG

// DimensionError reports two connected shapes that disagree.
type DimensionError = tensor.DimensionError

// MemoryError reports a buffer request over a limit.
type MemoryError = tensor.MemoryError

// Error kinds.
var (
	ErrLogic   = tensor.ErrLogic
	ErrNumeric = tensor.ErrNumeric
	ErrMemory  = tensor.ErrMemory
)

// NewVector creates a zero vector of the given size.
func NewVector(size int) *Vector {
	return tensor.NewVector(size)
}

// VectorOf creates a vector holding a copy of values.
func VectorOf(values ...float32) *Vector {
	return tensor.VectorOf(values...)
}

// OneHot creates a vector of n zeros with a 1 at label.
//
// Returns a numeric error when n is 0 or label >= n.
func OneHot(n, label int) (*Vector, error) {
	return tensor.OneHot(n, label)
}

// Dot returns the dot product of a and b.
func Dot(a, b *Vector) (float32, error) {
	return tensor.Dot(a, b)
}

// NewMatrix creates a zero w×h matrix.
func NewMatrix(w, h int) *Matrix {
	return tensor.NewMatrix(w, h)
}

// MatrixOf creates a w×h matrix from row-major values.
func MatrixOf(w, h int, values ...float32) (*Matrix, error) {
	return tensor.MatrixOf(w, h, values...)
}

// NewTensor creates a zero tensor of c channels of w×h.
func NewTensor(c, w, h int) *Tensor {
	return tensor.NewTensor(c, w, h)
}

// Conv2D cross-correlates src with kernel.
//
// Example:
//
//	out, err := tensor.Conv2D(image, kernel, 1, 0)
func Conv2D(src, kernel *Matrix, stride, padding int) (*Matrix, error) {
	return tensor.Conv2D(src, kernel, stride, padding)
}

// Conv2DOutputSize returns the output size of a cross-correlation.
func Conv2DOutputSize(srcW, srcH, kernelW, kernelH, stride, padding int) (int, int, error) {
	return tensor.Conv2DOutputSize(srcW, srcH, kernelW, kernelH, stride, padding)
}

// NewRNG creates a generator seeded with seed.
func NewRNG(seed uint64) *RNG {
	return tensor.NewRNG(seed)
}
