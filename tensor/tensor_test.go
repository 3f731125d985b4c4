// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/sprout/tensor"
)

func TestPublicAPI(t *testing.T) {
	d, err := tensor.Dot(tensor.VectorOf(1, 2, 3), tensor.VectorOf(4, 5, 6))
	require.NoError(t, err)
	assert.Equal(t, float32(32), d)

	v, err := tensor.OneHot(5, 3)
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 0, 0, 1, 0}, v.Data())

	_, err = tensor.OneHot(5, 5)
	assert.True(t, errors.Is(err, tensor.ErrNumeric))

	src := tensor.NewMatrix(3, 3)
	src.Fill(1)
	k := tensor.NewMatrix(3, 3)
	k.Fill(1.0 / 9)
	out, err := tensor.Conv2D(src, k, 1, 0)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, out.At(0, 0), 1e-6)
}

func TestPublicErrorTypes(t *testing.T) {
	_, err := tensor.Dot(tensor.VectorOf(1), tensor.VectorOf(1, 2))
	var dimErr *tensor.DimensionError
	require.ErrorAs(t, err, &dimErr)
	assert.Equal(t, 1, dimErr.Expected)
	assert.Equal(t, 2, dimErr.Actual)
}
