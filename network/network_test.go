// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package network_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/sprout/network"
	"github.com/born-ml/sprout/tensor"
)

func TestMLPThroughPublicAPI(t *testing.T) {
	cfg := network.DefaultMLPConfig()
	cfg.Inputs = 4
	cfg.Hidden = []int{3}
	cfg.Outputs = 2

	net, err := network.NewMLP[*tensor.Vector](cfg)
	require.NoError(t, err)
	net.InitWeights(tensor.NewRNG(7), -0.1, 0.1)

	target, err := tensor.OneHot(2, 1)
	require.NoError(t, err)
	loss, err := network.Step(net, tensor.VectorOf(1, 0, 0, 1), target)
	require.NoError(t, err)
	assert.Greater(t, loss, float32(0))

	res, err := network.Classify(net, tensor.VectorOf(1, 0, 0, 1))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, res.Index, 0)
	assert.Less(t, res.Index, 2)
}

func TestConvNetThroughPublicAPI(t *testing.T) {
	net, err := network.NewMatrixConvNet(network.DefaultConvConfig())
	require.NoError(t, err)
	net.InitWeights(tensor.NewRNG(1), -0.1, 0.1)

	img := tensor.NewMatrix(28, 28)
	img.Fill(0.5)
	target, err := tensor.OneHot(10, 3)
	require.NoError(t, err)
	_, err = network.Step(net, img, target)
	require.NoError(t, err)
	assert.Equal(t, 10, net.Output().Len())
}
