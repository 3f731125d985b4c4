package network

import (
	"fmt"
	"strings"

	"github.com/born-ml/sprout/internal/activation"
	"github.com/born-ml/sprout/internal/nn"
	"github.com/born-ml/sprout/internal/optim"
	"github.com/born-ml/sprout/internal/tensor"
)

// MLPConfig holds the shape and training settings of an MLP.
type MLPConfig struct {
	Inputs       int             // Elements per example
	Hidden       []int           // Neurons of each hidden layer
	Outputs      int             // Classes or regression outputs
	Activation   activation.Func // Shared by every Linear layer
	Head         optim.Kind      // Terminal unit
	LearningRate float32
}

// DefaultMLPConfig returns the MNIST network: 784 → 48 → 10 with leaky ReLU
// and a softmax head.
func DefaultMLPConfig() MLPConfig {
	return MLPConfig{
		Inputs:       28 * 28,
		Hidden:       []int{48},
		Outputs:      10,
		Activation:   activation.LeakyReLU,
		Head:         optim.KindSoftmax,
		LearningRate: 0.01,
	}
}

// MLP is a stack of Linear layers reading a flat example.
//
// Architecture:
//
//	VectorInput → Linear(Hidden[0]) → ... → Linear(Outputs) → Head
//
// Example:
//
//	net, err := network.NewMLP[*tensor.Matrix](network.DefaultMLPConfig())
//	net.InitWeights(rng, -0.1, 0.1)
//	loss, err := network.Step(net, image, oneHot)
type MLP[In Flat] struct {
	input  *nn.VectorInput
	layers []*nn.Linear
	head   optim.Optimizer
	act    activation.Func
	lr     float32
}

// NewMLP creates an MLP from cfg.
func NewMLP[In Flat](cfg MLPConfig) (*MLP[In], error) {
	if cfg.Inputs <= 0 || cfg.Outputs <= 0 {
		return nil, tensor.Logicf("mlp: invalid size inputs=%d, outputs=%d", cfg.Inputs, cfg.Outputs)
	}
	for i, h := range cfg.Hidden {
		if h <= 0 {
			return nil, tensor.Logicf("mlp: hidden layer %d has %d neurons", i, h)
		}
	}
	head, err := optim.New(cfg.Head, cfg.Outputs)
	if err != nil {
		return nil, fmt.Errorf("mlp: %w", err)
	}

	sizes := append(append([]int{}, cfg.Hidden...), cfg.Outputs)
	layers := make([]*nn.Linear, len(sizes))
	prev := cfg.Inputs
	for i, n := range sizes {
		layers[i] = nn.NewLinear(n, prev)
		prev = n
	}

	return &MLP[In]{
		input:  nn.NewVectorInput(cfg.Inputs),
		layers: layers,
		head:   head,
		act:    cfg.Activation,
		lr:     cfg.LearningRate,
	}, nil
}

// FeedData copies in into the input holder in row-major order.
func (n *MLP[In]) FeedData(in In) error {
	if !in.Valid() {
		return tensor.Logicf("mlp: invalid example")
	}
	if in.Len() != n.input.Size() {
		return tensor.Logicf("mlp: example has %d elements, expected %d", in.Len(), n.input.Size())
	}
	copy(n.input.Value().Data(), in.Data())
	return nil
}

// Output returns the head's output.
func (n *MLP[In]) Output() *tensor.Vector { return n.head.Output() }

// ForwardAndGrad pushes target and runs the training forward pass.
func (n *MLP[In]) ForwardAndGrad(target *tensor.Vector) error {
	if err := n.head.PushTarget(target); err != nil {
		return err
	}
	if err := n.forwardLayers(); err != nil {
		return err
	}
	return n.head.ForwardAndGrad(n.last())
}

// Forward runs inference.
func (n *MLP[In]) Forward() error {
	if err := n.forwardLayers(); err != nil {
		return err
	}
	return n.head.Forward(n.last())
}

func (n *MLP[In]) forwardLayers() error {
	var prev nn.VectorSource = n.input
	for i, l := range n.layers {
		if err := l.Forward(prev, n.act); err != nil {
			return fmt.Errorf("layer %d: %w", i, err)
		}
		prev = l
	}
	return nil
}

// Backward pulls the head's gradient into the last layer and passes the
// transpose message down the stack.
func (n *MLP[In]) Backward() error {
	var next nn.GradientSender = n.head
	for i := len(n.layers) - 1; i >= 0; i-- {
		if err := n.layers[i].Backward(next); err != nil {
			return fmt.Errorf("layer %d: %w", i, err)
		}
		next = n.layers[i]
	}
	return nil
}

// UpdateWeights steps every layer against the output of the layer below it.
func (n *MLP[In]) UpdateWeights() error {
	var prev nn.VectorSource = n.input
	for i, l := range n.layers {
		if err := l.UpdateWeights(prev, n.act, n.lr); err != nil {
			return fmt.Errorf("layer %d: %w", i, err)
		}
		prev = l
	}
	return nil
}

// Loss returns the head's loss.
func (n *MLP[In]) Loss() float32 { return n.head.Loss() }

// InitWeights randomizes every layer's weights.
func (n *MLP[In]) InitWeights(rng *tensor.RNG, min, max float32) {
	for _, l := range n.layers {
		l.Randomize(rng, min, max)
	}
}

// LearningRate returns the current learning rate.
func (n *MLP[In]) LearningRate() float32 { return n.lr }

// SetLearningRate sets the learning rate used by UpdateWeights.
func (n *MLP[In]) SetLearningRate(lr float32) { n.lr = lr }

// Layers returns the Linear layers from input to output.
func (n *MLP[In]) Layers() []*nn.Linear { return n.layers }

// NumParameters returns the number of trainable scalars.
func (n *MLP[In]) NumParameters() int {
	total := 0
	for _, l := range n.layers {
		total += l.NumParameters()
	}
	return total
}

func (n *MLP[In]) last() *nn.Linear { return n.layers[len(n.layers)-1] }

// String returns the layer stack, one layer per line.
func (n *MLP[In]) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "MLP(inputs=%d, activation=%s)\n", n.input.Size(), n.act)
	for _, l := range n.layers {
		fmt.Fprintf(&b, "  %s\n", l)
	}
	fmt.Fprintf(&b, "  %s", n.head)
	return b.String()
}
