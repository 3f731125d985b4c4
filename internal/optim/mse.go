package optim

import (
	"fmt"

	"github.com/born-ml/sprout/internal/nn"
)

// MSE passes the last layer's value through unchanged and scores it with
// the squared error:
//
//	gradient[i] = target[i] - output[i]
//	loss        = Σ gradient[i]²
//
// Example:
//
//	head := optim.NewMSE(1)
//	head.PushTarget(tensor.VectorOf(1))
//	head.ForwardAndGrad(layer)
type MSE struct {
	head
}

// NewMSE creates an MSE unit for size outputs.
func NewMSE(size int) *MSE {
	return &MSE{head: newHead("mse", size)}
}

// Forward copies prev's value into the output. The loss is left untouched.
func (o *MSE) Forward(prev nn.VectorSource) error {
	in, err := o.input("mse forward", prev)
	if err != nil {
		return err
	}
	copy(o.output.Data(), in.Data())
	return nil
}

// ForwardAndGrad resets the loss, runs Forward and computes the gradient
// and loss against the pushed target.
func (o *MSE) ForwardAndGrad(prev nn.VectorSource) error {
	o.loss = 0
	if err := o.Forward(prev); err != nil {
		return err
	}
	out := o.output.Data()
	target := o.target.Data()
	grad := o.gradient.Data()
	for i := range grad {
		g := target[i] - out[i]
		grad[i] = g
		o.loss += g * g
	}
	return nil
}

// String returns a string representation of the unit.
func (o *MSE) String() string {
	return fmt.Sprintf("MSE(size=%d)", o.size)
}
