// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package optim

import (
	"github.com/born-ml/sprout/internal/optim"
)

// Optimizer is the contract of a terminal unit.
type Optimizer = optim.Optimizer

// Kind selects a terminal unit.
type Kind = optim.Kind

// Terminal unit kinds.
const (
	KindSoftmax = optim.KindSoftmax
	KindMSE     = optim.KindMSE
)

// MSE is an identity output with squared-error loss.
type MSE = optim.MSE

// NewMSE creates an MSE unit for size outputs.
func NewMSE(size int) *MSE {
	return optim.NewMSE(size)
}

// Softmax is a softmax output with cross-entropy loss.
type Softmax = optim.Softmax

// NewSoftmax creates a softmax unit for size classes.
func NewSoftmax(size int) *Softmax {
	return optim.NewSoftmax(size)
}

// New creates the terminal unit of the given kind.
func New(kind Kind, size int) (Optimizer, error) {
	return optim.New(kind, size)
}

// ParseKind maps "softmax" or "mse" to its Kind.
func ParseKind(name string) (Kind, error) {
	return optim.ParseKind(name)
}
