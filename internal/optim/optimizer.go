// Package optim implements the terminal units of a network: they turn the
// last layer's value into an output, compare it with a pushed target and
// produce the loss and the gradient the layers pull during Backward.
//
// This package provides:
//   - Optimizer interface: contract shared by every terminal unit
//   - MSE: identity output with squared-error loss
//   - Softmax: numerically stable softmax with cross-entropy loss
//
// Both units use the ascent convention of the layers: gradient = target - output.
//
// Example usage:
//
//	head := optim.NewSoftmax(10)
//	head.PushTarget(target)
//	head.ForwardAndGrad(lastLayer)
//	lastLayer.Backward(head)
package optim

import (
	"fmt"
	"strings"

	"github.com/born-ml/sprout/internal/nn"
	"github.com/born-ml/sprout/internal/tensor"
)

// Optimizer is the contract of a terminal unit.
//
// The call order for one training step is PushTarget, ForwardAndGrad, then
// the last layer's Backward pulling the gradient through SendGradient.
// Inference only calls Forward and reads Output.
type Optimizer interface {
	nn.GradientSender

	// Forward computes the output from prev's value.
	Forward(prev nn.VectorSource) error

	// ForwardAndGrad computes the output, the gradient against the pushed
	// target and the loss of this example.
	ForwardAndGrad(prev nn.VectorSource) error

	// PushTarget copies the expected output for the next ForwardAndGrad.
	PushTarget(target *tensor.Vector) error

	Output() *tensor.Vector
	Gradient() *tensor.Vector
	Target() *tensor.Vector
	Loss() float32
	Size() int
}

// Kind selects a terminal unit.
type Kind int

const (
	// KindSoftmax is softmax with cross-entropy loss.
	KindSoftmax Kind = iota
	// KindMSE is identity output with squared-error loss.
	KindMSE
)

// String returns the name accepted by ParseKind.
func (k Kind) String() string {
	switch k {
	case KindSoftmax:
		return "softmax"
	case KindMSE:
		return "mse"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind maps a name to its Kind. Names are case-insensitive.
func ParseKind(name string) (Kind, error) {
	switch strings.ToLower(name) {
	case "softmax", "cross_entropy", "cross-entropy":
		return KindSoftmax, nil
	case "mse":
		return KindMSE, nil
	default:
		return 0, tensor.Logicf("optim: unknown kind %q", name)
	}
}

// New creates the terminal unit of the given kind for size outputs.
func New(kind Kind, size int) (Optimizer, error) {
	switch kind {
	case KindSoftmax:
		return NewSoftmax(size), nil
	case KindMSE:
		return NewMSE(size), nil
	default:
		return nil, tensor.Logicf("optim: unknown kind %d", int(kind))
	}
}

// head holds the state shared by every terminal unit.
type head struct {
	output   *tensor.Vector
	gradient *tensor.Vector
	target   *tensor.Vector
	loss     float32
	size     int
}

func newHead(name string, size int) head {
	if size <= 0 {
		panic(fmt.Sprintf("%s: invalid size %d", name, size))
	}
	return head{
		output:   tensor.NewVector(size),
		gradient: tensor.NewVector(size),
		target:   tensor.NewVector(size),
		size:     size,
	}
}

// PushTarget copies target into the unit.
//
// Returns a logic error if target's length differs from the unit size.
func (h *head) PushTarget(target *tensor.Vector) error {
	if !target.Valid() {
		return tensor.Logicf("push target: invalid target")
	}
	if target.Len() != h.size {
		return tensor.Logicf("push target: size mismatch: expected %d, got %d", h.size, target.Len())
	}
	copy(h.target.Data(), target.Data())
	return nil
}

// SendGradient copies the gradient unchanged into dst, the gradient buffer
// of the last layer.
func (h *head) SendGradient(dst *tensor.Vector) error {
	if dst.Len() != h.size {
		return tensor.Mismatch("optimizer gradient", h.size, dst.Len())
	}
	copy(dst.Data(), h.gradient.Data())
	return nil
}

// input validates prev and returns its value.
func (h *head) input(op string, prev nn.VectorSource) (*tensor.Vector, error) {
	in := prev.Value()
	if !in.Valid() {
		return nil, tensor.Logicf("%s: invalid input", op)
	}
	if in.Len() != h.size {
		return nil, tensor.Mismatch(op, h.size, in.Len())
	}
	return in, nil
}

// Output returns the last computed output.
func (h *head) Output() *tensor.Vector { return h.output }

// Gradient returns the last computed gradient.
func (h *head) Gradient() *tensor.Vector { return h.gradient }

// Target returns the pushed target.
func (h *head) Target() *tensor.Vector { return h.target }

// Loss returns the loss accumulated by the last ForwardAndGrad.
func (h *head) Loss() float32 { return h.loss }

// Size returns the number of outputs.
func (h *head) Size() int { return h.size }
