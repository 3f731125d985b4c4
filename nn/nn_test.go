// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/sprout/nn"
	"github.com/born-ml/sprout/optim"
	"github.com/born-ml/sprout/tensor"
)

func TestLinearThroughPublicAPI(t *testing.T) {
	in := nn.NewVectorInput(2)
	require.NoError(t, in.Push(tensor.VectorOf(1, 0)))

	layer := nn.NewLinear(1, 2)
	copy(layer.Weight(0).Data(), []float32{2, 3})
	layer.SetBias(0.5)

	require.NoError(t, layer.Forward(in, nn.Identity))
	assert.InDelta(t, 2.5, layer.Value().At(0), 1e-6)

	head := optim.NewMSE(1)
	require.NoError(t, head.PushTarget(tensor.VectorOf(3)))
	require.NoError(t, head.ForwardAndGrad(layer))
	require.NoError(t, layer.Backward(head))
	assert.InDelta(t, 0.5, layer.Gradient().At(0), 1e-6)
}

func TestMapPipelineThroughPublicAPI(t *testing.T) {
	in := nn.NewMatrixInput(4, 4)
	img := tensor.NewMatrix(4, 4)
	img.Fill(1)
	require.NoError(t, in.Push(img))

	conv := nn.NewConv2D(4, 4, 2, 3, 1, 1)
	relu := nn.NewReLU(4, 4, 2)
	pool := nn.NewMaxPool2D(4, 4, 2)
	flat := nn.NewFlatten(2, 2, 2)

	conv.Randomize(tensor.NewRNG(1), 0, 1)
	require.NoError(t, conv.Forward(in))
	require.NoError(t, relu.Forward(conv))
	require.NoError(t, pool.ForwardAndGrad(relu))
	require.NoError(t, flat.Forward(pool))
	assert.Equal(t, 8, flat.Value().Len())
}

func TestParseActivation(t *testing.T) {
	act, err := nn.ParseActivation("leaky_relu")
	require.NoError(t, err)
	assert.Equal(t, nn.LeakyReLU, act)
	assert.InDelta(t, -0.1, act.Forward(-1), 1e-6)
}
