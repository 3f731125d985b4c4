package network

import (
	"fmt"

	"github.com/born-ml/sprout/internal/activation"
	"github.com/born-ml/sprout/internal/nn"
	"github.com/born-ml/sprout/internal/optim"
	"github.com/born-ml/sprout/internal/tensor"
)

// ConvConfig holds the shape and training settings of a ConvNet.
type ConvConfig struct {
	Channels int // Source channels: 1, or equal to Kernels
	Width    int // Source width
	Height   int // Source height

	Kernels    int // Conv2D depth
	KernelSize int
	Stride     int
	Padding    int

	Classes      int
	Activation   activation.Func // Applied by the Linear layer
	Head         optim.Kind
	LearningRate float32
}

// DefaultConvConfig returns a small MNIST network: six 5x5 kernels over a
// 28x28 image, pooled to 6x12x12 and classified into 10 classes.
func DefaultConvConfig() ConvConfig {
	return ConvConfig{
		Channels:     1,
		Width:        28,
		Height:       28,
		Kernels:      6,
		KernelSize:   5,
		Stride:       1,
		Padding:      0,
		Classes:      10,
		Activation:   activation.Identity,
		Head:         optim.KindSoftmax,
		LearningRate: 0.01,
	}
}

// DefaultCIFARConfig returns a network for 3x32x32 CIFAR-10 images. The
// convolution is per channel, so it runs one kernel per color plane.
func DefaultCIFARConfig() ConvConfig {
	cfg := DefaultConvConfig()
	cfg.Channels = 3
	cfg.Width = 32
	cfg.Height = 32
	cfg.Kernels = 3
	cfg.KernelSize = 3
	cfg.Padding = 1
	return cfg
}

// mapInput is an input holder feeding a map pipeline.
type mapInput[In any] interface {
	nn.MapSource
	Push(data In) error
}

// ConvNet is a convolutional classifier.
//
// Architecture:
//
//	Input → Conv2D → ReLU → MaxPool2D → Flatten → Linear → Head
//
// Example:
//
//	net, err := network.NewMatrixConvNet(network.DefaultConvConfig())
//	net.InitWeights(rng, -0.1, 0.1)
//	loss, err := network.Step(net, image, oneHot)
type ConvNet[In any] struct {
	input  mapInput[In]
	conv   *nn.Conv2D
	relu   *nn.ReLU
	pool   *nn.MaxPool2D
	flat   *nn.Flatten
	linear *nn.Linear
	head   optim.Optimizer
	act    activation.Func
	lr     float32
}

// NewMatrixConvNet creates a ConvNet over single-channel matrices.
func NewMatrixConvNet(cfg ConvConfig) (*ConvNet[*tensor.Matrix], error) {
	if cfg.Channels != 1 {
		return nil, tensor.Logicf("convnet: matrix input has 1 channel, config has %d", cfg.Channels)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, tensor.Logicf("convnet: invalid source %dx%d", cfg.Width, cfg.Height)
	}
	return newConvNet[*tensor.Matrix](nn.NewMatrixInput(cfg.Width, cfg.Height), cfg)
}

// NewTensorConvNet creates a ConvNet over multi-channel tensors.
func NewTensorConvNet(cfg ConvConfig) (*ConvNet[*tensor.Tensor], error) {
	if cfg.Channels <= 0 || cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, tensor.Logicf("convnet: invalid source %dx%dx%d", cfg.Channels, cfg.Width, cfg.Height)
	}
	return newConvNet[*tensor.Tensor](nn.NewTensorInput(cfg.Channels, cfg.Width, cfg.Height), cfg)
}

func newConvNet[In any](input mapInput[In], cfg ConvConfig) (*ConvNet[In], error) {
	if cfg.Kernels <= 0 || cfg.KernelSize <= 0 || cfg.Classes <= 0 {
		return nil, tensor.Logicf("convnet: invalid config kernels=%d, kernel_size=%d, classes=%d",
			cfg.Kernels, cfg.KernelSize, cfg.Classes)
	}
	if cfg.Channels != 1 && cfg.Channels != cfg.Kernels {
		return nil, tensor.Logicf("convnet: %d source channels cannot feed %d per-channel kernels",
			cfg.Channels, cfg.Kernels)
	}
	w, h, err := tensor.Conv2DOutputSize(cfg.Width, cfg.Height, cfg.KernelSize, cfg.KernelSize, cfg.Stride, cfg.Padding)
	if err != nil {
		return nil, fmt.Errorf("convnet: %w", err)
	}
	if w < 2 || h < 2 {
		return nil, tensor.Logicf("convnet: feature maps %dx%d too small to pool", w, h)
	}
	head, err := optim.New(cfg.Head, cfg.Classes)
	if err != nil {
		return nil, fmt.Errorf("convnet: %w", err)
	}

	conv := nn.NewConv2D(cfg.Width, cfg.Height, cfg.Kernels, cfg.KernelSize, cfg.Stride, cfg.Padding)
	relu := nn.NewReLU(w, h, cfg.Kernels)
	pool := nn.NewMaxPool2D(w, h, cfg.Kernels)
	flat := nn.NewFlatten(pool.Width(), pool.Height(), cfg.Kernels)

	return &ConvNet[In]{
		input:  input,
		conv:   conv,
		relu:   relu,
		pool:   pool,
		flat:   flat,
		linear: nn.NewLinear(cfg.Classes, flat.Size()),
		head:   head,
		act:    cfg.Activation,
		lr:     cfg.LearningRate,
	}, nil
}

// FeedData copies in into the input holder.
func (n *ConvNet[In]) FeedData(in In) error {
	return n.input.Push(in)
}

// Output returns the head's output.
func (n *ConvNet[In]) Output() *tensor.Vector { return n.head.Output() }

// ForwardAndGrad pushes target and runs the training forward pass, which
// also records the pooling masks.
func (n *ConvNet[In]) ForwardAndGrad(target *tensor.Vector) error {
	if err := n.head.PushTarget(target); err != nil {
		return err
	}
	if err := n.forward(true); err != nil {
		return err
	}
	return n.head.ForwardAndGrad(n.linear)
}

// Forward runs inference.
func (n *ConvNet[In]) Forward() error {
	if err := n.forward(false); err != nil {
		return err
	}
	return n.head.Forward(n.linear)
}

func (n *ConvNet[In]) forward(train bool) error {
	if err := n.conv.Forward(n.input); err != nil {
		return err
	}
	if err := n.relu.Forward(n.conv); err != nil {
		return err
	}
	pool := n.pool.Forward
	if train {
		pool = n.pool.ForwardAndGrad
	}
	if err := pool(n.relu); err != nil {
		return err
	}
	if err := n.flat.Forward(n.pool); err != nil {
		return err
	}
	return n.linear.Forward(n.flat, n.act)
}

// Backward propagates the head's gradient down to the convolution maps.
func (n *ConvNet[In]) Backward() error {
	if err := n.linear.Backward(n.head); err != nil {
		return err
	}
	if err := n.flat.Backward(n.linear); err != nil {
		return err
	}
	if err := n.pool.Backward(n.flat); err != nil {
		return err
	}
	if err := n.relu.Backward(n.pool); err != nil {
		return err
	}
	return n.conv.Backward(n.relu)
}

// UpdateWeights steps the Linear layer and the convolution kernels.
func (n *ConvNet[In]) UpdateWeights() error {
	if err := n.linear.UpdateWeights(n.flat, n.act, n.lr); err != nil {
		return err
	}
	return n.conv.UpdateWeights(n.input, n.lr)
}

// Loss returns the head's loss.
func (n *ConvNet[In]) Loss() float32 { return n.head.Loss() }

// InitWeights randomizes the kernels, the convolution biases and the Linear
// weights.
func (n *ConvNet[In]) InitWeights(rng *tensor.RNG, min, max float32) {
	n.conv.Randomize(rng, min, max)
	n.linear.Randomize(rng, min, max)
}

// LearningRate returns the current learning rate.
func (n *ConvNet[In]) LearningRate() float32 { return n.lr }

// SetLearningRate sets the learning rate used by UpdateWeights.
func (n *ConvNet[In]) SetLearningRate(lr float32) { n.lr = lr }

// NumParameters returns the number of trainable scalars.
func (n *ConvNet[In]) NumParameters() int {
	return n.conv.NumParameters() + n.linear.NumParameters()
}

// String returns the pipeline, one layer per line.
func (n *ConvNet[In]) String() string {
	return fmt.Sprintf("ConvNet\n  %s\n  %s\n  %s\n  %s\n  %s\n  %s",
		n.conv, n.relu, n.pool, n.flat, n.linear, n.head)
}
