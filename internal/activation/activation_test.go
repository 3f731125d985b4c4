package activation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForward(t *testing.T) {
	tests := []struct {
		f    Func
		x    float32
		want float32
	}{
		{Identity, -3, -3},
		{ReLU, 2, 2},
		{ReLU, -2, 0},
		{LeakyReLU, 2, 2},
		{LeakyReLU, -2, -0.2},
		{Sigmoid, 0, 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.f.String(), func(t *testing.T) {
			assert.InDelta(t, tt.want, tt.f.Forward(tt.x), 1e-6)
		})
	}
}

func TestBackwardTakesActivatedValue(t *testing.T) {
	y := Sigmoid.Forward(0.3)
	assert.InDelta(t, y*(1-y), Sigmoid.Backward(y), 1e-7)

	assert.Equal(t, float32(1), ReLU.Backward(ReLU.Forward(5)))
	assert.Equal(t, float32(0), ReLU.Backward(ReLU.Forward(-5)))
	assert.Equal(t, float32(0.1), LeakyReLU.Backward(LeakyReLU.Forward(-5)))
	assert.Equal(t, float32(1), LeakyReLU.Backward(LeakyReLU.Forward(5)))
	assert.Equal(t, float32(1), Identity.Backward(-8))
}

func TestParse(t *testing.T) {
	for _, name := range []string{"identity", "ReLU", "leaky-relu", "leaky_relu", "sigmoid"} {
		f, err := Parse(name)
		require.NoError(t, err, name)
		again, err := Parse(f.String())
		require.NoError(t, err)
		assert.Equal(t, f, again)
	}

	_, err := Parse("tanh")
	assert.Error(t, err)
}
