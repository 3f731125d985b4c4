package nn

import (
	"fmt"

	"github.com/born-ml/sprout/internal/activation"
	"github.com/born-ml/sprout/internal/tensor"
)

// Linear implements a fully connected (dense) layer.
//
// Performs, for every neuron i:
//
//	value[i] = act(dot(input, weight[i]) + bias)
//
// where:
//   - input is the previous layer's vector with weightLen elements
//   - weight[i] is neuron i's weight vector (weightLen elements)
//   - bias is a single scalar shared by every neuron of the layer
//
// Training is online: Backward stores the error signal for this layer and
// UpdateWeights applies one gradient step for the current example. The
// activation derivative is folded in at update time, not during Backward.
//
// Example:
//
//	in := nn.NewVectorInput(784)
//	hidden := nn.NewLinear(48, 784)
//	out := nn.NewLinear(10, 48)
//
//	hidden.Forward(in, activation.LeakyReLU)
//	out.Forward(hidden, activation.LeakyReLU)
type Linear struct {
	weights  []*tensor.Vector // [neurons][weightLen]
	value    *tensor.Vector   // [neurons]
	gradient *tensor.Vector   // [neurons]
	bias     float32

	neurons   int
	weightLen int
}

// NewLinear creates a Linear layer with the given number of neurons, each
// reading weightLen inputs. Weights and bias start at zero; call Randomize
// before training.
func NewLinear(neurons, weightLen int) *Linear {
	if neurons <= 0 || weightLen <= 0 {
		panic(fmt.Sprintf("linear: invalid size neurons=%d, weights=%d", neurons, weightLen))
	}
	weights := make([]*tensor.Vector, neurons)
	for i := range weights {
		weights[i] = tensor.NewVector(weightLen)
	}
	return &Linear{
		weights:   weights,
		value:     tensor.NewVector(neurons),
		gradient:  tensor.NewVector(neurons),
		neurons:   neurons,
		weightLen: weightLen,
	}
}

// Forward computes the layer output from prev.
//
// Returns a numeric error if prev's output length differs from weightLen.
func (l *Linear) Forward(prev VectorSource, act activation.Func) error {
	in := prev.Value()
	if !in.Valid() {
		return tensor.Logicf("linear forward: invalid input")
	}
	if in.Len() != l.weightLen {
		return tensor.Mismatch("linear forward", l.weightLen, in.Len())
	}

	x := in.Data()
	out := l.value.Data()
	for i, w := range l.weights {
		out[i] = act.Forward(tensor.DotSlices(x, w.Data()) + l.bias)
	}
	return nil
}

// Backward pulls this layer's gradient from next, which is either the
// terminal optimizer (gradient copied as is) or the following Linear layer
// (transpose-weighted message).
func (l *Linear) Backward(next GradientSender) error {
	if err := next.SendGradient(l.gradient); err != nil {
		return fmt.Errorf("linear backward: %w", err)
	}
	return nil
}

// SendGradient writes the error signal for the layer feeding this one:
//
//	dst[i] = Σ_j weight[j][i] * gradient[j]
//
// dst must have weightLen elements.
func (l *Linear) SendGradient(dst *tensor.Vector) error {
	if dst.Len() != l.weightLen {
		return tensor.Mismatch("linear gradient", l.weightLen, dst.Len())
	}
	out := dst.Data()
	for i := range out {
		out[i] = 0
	}
	for j, w := range l.weights {
		g := l.gradient.At(j)
		if g == 0 {
			continue
		}
		for i, wij := range w.Data() {
			out[i] += wij * g
		}
	}
	return nil
}

// UpdateWeights applies one online gradient step using prev's output:
//
//	coeff    = lr * act'(value[i]) * gradient[i]
//	weight[i][j] += coeff * prev[j]
//	bias     += lr * act'(bias) * gradient[i]
//
// The bias update runs once per neuron and evaluates the activation
// derivative at the bias value itself.
func (l *Linear) UpdateWeights(prev VectorSource, act activation.Func, lr float32) error {
	in := prev.Value()
	if !in.Valid() {
		return tensor.Logicf("linear update: invalid input")
	}
	if in.Len() != l.weightLen {
		return tensor.Mismatch("linear update", l.weightLen, in.Len())
	}

	x := in.Data()
	value := l.value.Data()
	for i, g := range l.gradient.Data() {
		coeff := lr * act.Backward(value[i]) * g
		w := l.weights[i].Data()
		for j, xj := range x {
			w[j] += coeff * xj
		}
		l.bias += lr * act.Backward(l.bias) * g
	}
	return nil
}

// Randomize draws every weight uniformly from [min, max). The bias is left
// unchanged.
func (l *Linear) Randomize(rng *tensor.RNG, min, max float32) {
	for _, w := range l.weights {
		w.Randomize(rng, min, max)
	}
}

// NumParameters returns neurons*weightLen + 1.
func (l *Linear) NumParameters() int {
	return l.neurons*l.weightLen + 1
}

// Value returns the layer output.
func (l *Linear) Value() *tensor.Vector { return l.value }

// Gradient returns the error signal stored by the last Backward.
func (l *Linear) Gradient() *tensor.Vector { return l.gradient }

// Weight returns neuron i's weight vector.
func (l *Linear) Weight(i int) *tensor.Vector {
	if i < 0 || i >= l.neurons {
		panic(tensor.Numericf("linear: neuron %d out of range [0, %d)", i, l.neurons))
	}
	return l.weights[i]
}

// Bias returns the shared bias.
func (l *Linear) Bias() float32 { return l.bias }

// SetBias sets the shared bias.
func (l *Linear) SetBias(b float32) { l.bias = b }

// Size returns the number of neurons.
func (l *Linear) Size() int { return l.neurons }

// WeightLen returns the number of weights per neuron.
func (l *Linear) WeightLen() int { return l.weightLen }

// String returns a string representation of the layer.
func (l *Linear) String() string {
	return fmt.Sprintf("Linear(neurons=%d, weights=%d)", l.neurons, l.weightLen)
}
