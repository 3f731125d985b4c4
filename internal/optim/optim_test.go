package optim

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/diff/fd"

	"github.com/born-ml/sprout/internal/nn"
	"github.com/born-ml/sprout/internal/tensor"
)

func source(t *testing.T, values ...float32) *nn.VectorInput {
	t.Helper()
	in := nn.NewVectorInput(len(values))
	require.NoError(t, in.Push(tensor.VectorOf(values...)))
	return in
}

func TestSoftmaxUniform(t *testing.T) {
	head := NewSoftmax(4)
	require.NoError(t, head.Forward(source(t, 1, 1, 1, 1)))

	for _, p := range head.Output().Data() {
		assert.InDelta(t, 0.25, p, 1e-6)
	}
	assert.InDelta(t, 1.0, head.Output().Sum(), 1e-6)
}

func TestSoftmaxStableForLargeLogits(t *testing.T) {
	head := NewSoftmax(3)
	require.NoError(t, head.Forward(source(t, 1000, 1000, 0)))

	out := head.Output().Data()
	assert.InDelta(t, 0.5, out[0], 1e-6)
	assert.InDelta(t, 0.5, out[1], 1e-6)
	assert.InDelta(t, 0, out[2], 1e-6)
}

func TestSoftmaxForwardAndGrad(t *testing.T) {
	head := NewSoftmax(2)
	require.NoError(t, head.PushTarget(tensor.VectorOf(1, 0)))
	require.NoError(t, head.ForwardAndGrad(source(t, 0, 0)))

	assert.InDelta(t, 0.5, head.Gradient().At(0), 1e-6)
	assert.InDelta(t, -0.5, head.Gradient().At(1), 1e-6)
	assert.InDelta(t, math.Ln2, head.Loss(), 1e-6)

	// Forward alone resets the loss.
	require.NoError(t, head.Forward(source(t, 0, 0)))
	assert.Equal(t, float32(0), head.Loss())
}

func TestSoftmaxGradientMatchesFiniteDifference(t *testing.T) {
	target := tensor.VectorOf(0, 0, 1, 0)
	logits := []float64{0.3, -1.2, 0.8, 2.0}

	head := NewSoftmax(4)
	require.NoError(t, head.PushTarget(target))
	in := nn.NewVectorInput(4)

	loss := func(x []float64) float64 {
		for i, v := range x {
			in.Value().Data()[i] = float32(v)
		}
		require.NoError(t, head.ForwardAndGrad(in))
		return float64(head.Loss())
	}
	numeric := fd.Gradient(nil, loss, logits, &fd.Settings{Formula: fd.Central, Step: 1e-3})

	loss(logits)
	for i, d := range numeric {
		// The unit emits the ascent direction, -dLoss/dLogit.
		assert.InDelta(t, -d, head.Gradient().At(i), 1e-3, "logit %d", i)
	}
}

func TestMSE(t *testing.T) {
	head := NewMSE(2)
	require.NoError(t, head.PushTarget(tensor.VectorOf(1, 0)))
	require.NoError(t, head.ForwardAndGrad(source(t, 0.5, 2)))

	assert.Equal(t, []float32{0.5, 2}, head.Output().Data())
	assert.Equal(t, []float32{0.5, -2}, head.Gradient().Data())
	assert.InDelta(t, 4.25, head.Loss(), 1e-6)

	// A forward-only call leaves the accumulated loss alone.
	require.NoError(t, head.Forward(source(t, 0, 0)))
	assert.InDelta(t, 4.25, head.Loss(), 1e-6)

	// The loss restarts at every ForwardAndGrad.
	require.NoError(t, head.ForwardAndGrad(source(t, 1, 0)))
	assert.Equal(t, float32(0), head.Loss())
}

func TestPushTargetSizeMismatch(t *testing.T) {
	for _, head := range []Optimizer{NewMSE(3), NewSoftmax(3)} {
		err := head.PushTarget(tensor.VectorOf(1, 0))
		require.ErrorIs(t, err, tensor.ErrLogic)
	}
}

func TestForwardSizeMismatch(t *testing.T) {
	for _, head := range []Optimizer{NewMSE(3), NewSoftmax(3)} {
		err := head.Forward(source(t, 1, 2))
		require.ErrorIs(t, err, tensor.ErrNumeric)
	}
}

func TestSendGradient(t *testing.T) {
	head := NewMSE(2)
	require.NoError(t, head.PushTarget(tensor.VectorOf(1, 1)))
	require.NoError(t, head.ForwardAndGrad(source(t, 0, 3)))

	layer := nn.NewLinear(2, 4)
	require.NoError(t, layer.Backward(head))
	assert.Equal(t, []float32{1, -2}, layer.Gradient().Data())

	err := head.SendGradient(tensor.NewVector(3))
	require.ErrorIs(t, err, tensor.ErrNumeric)
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		name string
		want Kind
	}{
		{"softmax", KindSoftmax},
		{"Cross-Entropy", KindSoftmax},
		{"MSE", KindMSE},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k, err := ParseKind(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.want, k)

			head, err := New(k, 3)
			require.NoError(t, err)
			assert.Equal(t, 3, head.Size())
		})
	}

	_, err := ParseKind("hinge")
	require.ErrorIs(t, err, tensor.ErrLogic)
}
