package optim

import (
	"fmt"

	"github.com/chewxy/math32"

	"github.com/born-ml/sprout/internal/nn"
)

// minProb bounds the probability fed to the logarithm so a saturated
// softmax yields a large finite loss instead of +Inf.
const minProb = 1e-30

// Softmax normalizes the last layer's raw scores into probabilities and
// scores them with cross-entropy against a one-hot target.
//
// Forward (numerically stable):
//
//	output[i] = exp(x[i] - max(x)) / Σ_j exp(x[j] - max(x))
//
// ForwardAndGrad additionally computes the combined softmax/cross-entropy
// gradient and loss:
//
//	gradient[i] = target[i] - output[i]
//	loss        = -Σ target[i] * ln(output[i])
//
// Example:
//
//	head := optim.NewSoftmax(10)
//	head.PushTarget(oneHot)
//	head.ForwardAndGrad(logits)
//	fmt.Println(head.Loss())
type Softmax struct {
	head
}

// NewSoftmax creates a softmax unit for size classes.
func NewSoftmax(size int) *Softmax {
	return &Softmax{head: newHead("softmax", size)}
}

// Forward computes the softmax of prev's value and resets the loss.
func (o *Softmax) Forward(prev nn.VectorSource) error {
	in, err := o.input("softmax forward", prev)
	if err != nil {
		return err
	}
	o.loss = 0

	x := in.Data()
	out := o.output.Data()
	maxVal := in.Max().Value
	var sum float32
	for i, v := range x {
		e := math32.Exp(v - maxVal)
		out[i] = e
		sum += e
	}
	for i := range out {
		out[i] /= sum
	}
	return nil
}

// ForwardAndGrad runs Forward and computes the gradient and cross-entropy
// loss against the pushed target.
func (o *Softmax) ForwardAndGrad(prev nn.VectorSource) error {
	if err := o.Forward(prev); err != nil {
		return err
	}
	out := o.output.Data()
	target := o.target.Data()
	grad := o.gradient.Data()
	for i := range grad {
		grad[i] = target[i] - out[i]
		if target[i] != 0 {
			o.loss -= target[i] * math32.Log(math32.Max(out[i], minProb))
		}
	}
	return nil
}

// String returns a string representation of the unit.
func (o *Softmax) String() string {
	return fmt.Sprintf("Softmax(size=%d)", o.size)
}
