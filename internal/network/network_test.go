package network

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/diff/fd"

	"github.com/born-ml/sprout/internal/activation"
	"github.com/born-ml/sprout/internal/optim"
	"github.com/born-ml/sprout/internal/tensor"
)

func oneHot(t *testing.T, n, label int) *tensor.Vector {
	t.Helper()
	v, err := tensor.OneHot(n, label)
	require.NoError(t, err)
	return v
}

func TestSingleLayerLossDecreases(t *testing.T) {
	net, err := NewMLP[*tensor.Vector](MLPConfig{
		Inputs:       2,
		Outputs:      1,
		Activation:   activation.Identity,
		Head:         optim.KindMSE,
		LearningRate: 0.05,
	})
	require.NoError(t, err)
	net.InitWeights(tensor.NewRNG(1), -0.5, 0.5)

	x := tensor.VectorOf(1, 0.5)
	target := tensor.VectorOf(1)

	first, err := Step(net, x, target)
	require.NoError(t, err)
	prev := first
	for range 200 {
		loss, err := Step(net, x, target)
		require.NoError(t, err)
		assert.LessOrEqual(t, loss, prev+1e-7)
		prev = loss
	}
	assert.Less(t, prev, first)
	assert.Less(t, prev, float32(1e-4))
}

func TestSingleLayerSoftmaxTarget(t *testing.T) {
	// A one-class softmax is always certain, so the loss stays at zero.
	net, err := NewMLP[*tensor.Vector](MLPConfig{
		Inputs:       2,
		Outputs:      1,
		Activation:   activation.Identity,
		Head:         optim.KindSoftmax,
		LearningRate: 0.05,
	})
	require.NoError(t, err)
	net.InitWeights(tensor.NewRNG(1), -0.5, 0.5)

	for range 20 {
		loss, err := Step(net, tensor.VectorOf(1, 0), tensor.VectorOf(1))
		require.NoError(t, err)
		assert.InDelta(t, 0, loss, 1e-6)
	}
	assert.InDelta(t, 1, net.Output().At(0), 1e-6)
}

func TestDefaultMLPShape(t *testing.T) {
	net, err := NewMLP[*tensor.Matrix](DefaultMLPConfig())
	require.NoError(t, err)

	require.Len(t, net.Layers(), 2)
	assert.Equal(t, 48, net.Layers()[0].Size())
	assert.Equal(t, 784, net.Layers()[0].WeightLen())
	assert.Equal(t, 10, net.Layers()[1].Size())
	assert.Equal(t, 784*48+1+48*10+1, net.NumParameters())
	assert.InDelta(t, 0.01, net.LearningRate(), 1e-9)

	net.SetLearningRate(0.5)
	assert.InDelta(t, 0.5, net.LearningRate(), 1e-9)
}

func TestMLPFeedDataMismatch(t *testing.T) {
	net, err := NewMLP[*tensor.Matrix](DefaultMLPConfig())
	require.NoError(t, err)

	err = net.FeedData(tensor.NewMatrix(27, 28))
	require.ErrorIs(t, err, tensor.ErrLogic)
}

func TestMLPConfigErrors(t *testing.T) {
	_, err := NewMLP[*tensor.Vector](MLPConfig{Inputs: 0, Outputs: 2})
	require.ErrorIs(t, err, tensor.ErrLogic)

	_, err = NewMLP[*tensor.Vector](MLPConfig{Inputs: 2, Hidden: []int{0}, Outputs: 2})
	require.ErrorIs(t, err, tensor.ErrLogic)
}

// separable returns four examples of two classes that differ by which half
// of the vector is active.
func separable() ([]*tensor.Vector, []int) {
	return []*tensor.Vector{
		tensor.VectorOf(1, 0.8, 0, 0),
		tensor.VectorOf(0.9, 1, 0.1, 0),
		tensor.VectorOf(0, 0, 1, 0.9),
		tensor.VectorOf(0, 0.1, 0.8, 1),
	}, []int{0, 0, 1, 1}
}

func TestMLPLearnsSeparableSet(t *testing.T) {
	net, err := NewMLP[*tensor.Vector](MLPConfig{
		Inputs:       4,
		Hidden:       []int{6},
		Outputs:      2,
		Activation:   activation.Identity,
		Head:         optim.KindSoftmax,
		LearningRate: 0.1,
	})
	require.NoError(t, err)
	net.InitWeights(tensor.NewRNG(42), -0.3, 0.3)

	xs, labels := separable()
	epoch := func() float32 {
		var total float32
		for i, x := range xs {
			loss, err := Step(net, x, oneHot(t, 2, labels[i]))
			require.NoError(t, err)
			total += loss
		}
		return total
	}

	first := epoch()
	var last float32
	for range 200 {
		last = epoch()
	}
	assert.Less(t, last, first)

	for i, x := range xs {
		got, err := Classify(net, x)
		require.NoError(t, err)
		assert.Equal(t, labels[i], got.Index, "example %d", i)
	}
}

func smallConvConfig() ConvConfig {
	return ConvConfig{
		Channels:     1,
		Width:        4,
		Height:       4,
		Kernels:      2,
		KernelSize:   3,
		Stride:       1,
		Padding:      1,
		Classes:      2,
		Activation:   activation.Identity,
		Head:         optim.KindSoftmax,
		LearningRate: 0.05,
	}
}

func bars() ([]*tensor.Matrix, []int) {
	left := tensor.NewMatrix(4, 4)
	right := tensor.NewMatrix(4, 4)
	for y := range 4 {
		left.Set(0, y, 1)
		left.Set(1, y, 0.5)
		right.Set(3, y, 1)
		right.Set(2, y, 0.5)
	}
	return []*tensor.Matrix{left, right}, []int{0, 1}
}

func TestConvNetShape(t *testing.T) {
	net, err := NewMatrixConvNet(DefaultConvConfig())
	require.NoError(t, err)

	assert.Equal(t, 24, net.conv.Width())
	assert.Equal(t, 12, net.pool.Width())
	assert.Equal(t, 6*12*12, net.flat.Size())
	assert.Equal(t, 6*(25+1)+10*864+1, net.NumParameters())
}

func TestConvNetConfigErrors(t *testing.T) {
	cfg := DefaultCIFARConfig()
	cfg.Kernels = 6
	_, err := NewTensorConvNet(cfg)
	require.ErrorIs(t, err, tensor.ErrLogic)

	cfg = DefaultConvConfig()
	cfg.Channels = 3
	_, err = NewMatrixConvNet(cfg)
	require.ErrorIs(t, err, tensor.ErrLogic)

	cfg = DefaultConvConfig()
	cfg.KernelSize = 29
	_, err = NewMatrixConvNet(cfg)
	require.ErrorIs(t, err, tensor.ErrNumeric)
}

func TestTensorConvNetForward(t *testing.T) {
	net, err := NewTensorConvNet(DefaultCIFARConfig())
	require.NoError(t, err)
	rng := tensor.NewRNG(3)
	net.InitWeights(rng, -0.1, 0.1)

	img := tensor.NewTensor(3, 32, 32)
	img.Randomize(rng, 0, 1)
	require.NoError(t, net.FeedData(img))
	require.NoError(t, net.Forward())

	out := net.Output()
	assert.Equal(t, 10, out.Len())
	assert.InDelta(t, 1, out.Sum(), 1e-5)

	_, err = Step(net, img, oneHot(t, 10, 4))
	require.NoError(t, err)
}

func TestConvNetLearnsBars(t *testing.T) {
	net, err := NewMatrixConvNet(smallConvConfig())
	require.NoError(t, err)
	net.InitWeights(tensor.NewRNG(5), -0.5, 0.5)
	// Keep every feature map alive through the ReLU at the start.
	net.conv.SetBias(0, 1)
	net.conv.SetBias(1, 1)

	xs, labels := bars()
	epoch := func() float32 {
		var total float32
		for i, x := range xs {
			loss, err := Step(net, x, oneHot(t, 2, labels[i]))
			require.NoError(t, err)
			total += loss
		}
		return total
	}

	first := epoch()
	var last float32
	for range 100 {
		last = epoch()
	}
	assert.Less(t, last, first)
}

func TestConvNetKernelStepMatchesFiniteDifference(t *testing.T) {
	net, err := NewMatrixConvNet(smallConvConfig())
	require.NoError(t, err)
	rng := tensor.NewRNG(11)
	net.InitWeights(rng, -0.5, 0.5)
	net.SetLearningRate(1)

	img := tensor.NewMatrix(4, 4)
	img.Randomize(rng, 0, 1)
	target := oneHot(t, 2, 1)
	require.NoError(t, net.FeedData(img))

	kernel := net.conv.Kernel(0)
	x0 := make([]float64, kernel.Len())
	for i, v := range kernel.Data() {
		x0[i] = float64(v)
	}
	loss := func(x []float64) float64 {
		for i, v := range x {
			kernel.Data()[i] = float32(v)
		}
		require.NoError(t, net.ForwardAndGrad(target))
		return float64(net.Loss())
	}
	numeric := fd.Gradient(nil, loss, x0, &fd.Settings{Formula: fd.Central, Step: 1e-3})
	loss(x0)

	before := kernel.Clone()
	require.NoError(t, net.Backward())
	require.NoError(t, net.UpdateWeights())

	for i, d := range numeric {
		// With a unit learning rate the step is -dLoss/dKernel.
		step := kernel.Data()[i] - before.Data()[i]
		assert.InDelta(t, -d, step, 5e-3, "kernel element %d", i)
	}
}
