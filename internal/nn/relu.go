package nn

import (
	"fmt"

	"github.com/born-ml/sprout/internal/tensor"
)

// ReLU clamps every element of a map source to non-negative values,
// independently per channel.
type ReLU struct {
	width, height, depth int

	maps      []*tensor.Matrix
	gradients []*tensor.Matrix
}

// NewReLU creates a ReLU layer for depth maps of w×h.
func NewReLU(w, h, depth int) *ReLU {
	if w <= 0 || h <= 0 || depth <= 0 {
		panic(fmt.Sprintf("relu: invalid size %dx%dx%d", w, h, depth))
	}
	return &ReLU{
		width:     w,
		height:    h,
		depth:     depth,
		maps:      newMaps(depth, w, h),
		gradients: newMaps(depth, w, h),
	}
}

// Forward computes map[c] = max(0, src[c]).
func (l *ReLU) Forward(src MapSource) error {
	if err := checkMaps("relu forward", src, l.depth, l.width, l.height); err != nil {
		return err
	}
	for c, dst := range l.maps {
		in := src.Map(c).Data()
		out := dst.Data()
		for i, v := range in {
			if v > 0 {
				out[i] = v
			} else {
				out[i] = 0
			}
		}
	}
	return nil
}

// Backward pulls the gradient of this layer's maps from next.
func (l *ReLU) Backward(next MapGradientSender) error {
	if err := next.SendMapGradient(l.gradients); err != nil {
		return fmt.Errorf("relu backward: %w", err)
	}
	return nil
}

// SendMapGradient passes the stored gradient through where the activation
// was positive and blocks it elsewhere.
func (l *ReLU) SendMapGradient(dst []*tensor.Matrix) error {
	if err := checkGradMaps("relu gradient", dst, l.depth, l.width, l.height); err != nil {
		return err
	}
	for c, m := range dst {
		out := m.Data()
		value := l.maps[c].Data()
		grad := l.gradients[c].Data()
		for i := range out {
			if value[i] > 0 {
				out[i] = grad[i]
			} else {
				out[i] = 0
			}
		}
	}
	return nil
}

// Depth returns the number of channels.
func (l *ReLU) Depth() int { return l.depth }

// Width returns the map width.
func (l *ReLU) Width() int { return l.width }

// Height returns the map height.
func (l *ReLU) Height() int { return l.height }

// Map returns output map c.
func (l *ReLU) Map(c int) *tensor.Matrix { return l.maps[c] }

// Gradient returns the gradient map of channel c.
func (l *ReLU) Gradient(c int) *tensor.Matrix { return l.gradients[c] }

// String returns a string representation of the layer.
func (l *ReLU) String() string {
	return fmt.Sprintf("ReLU(%dx%dx%d)", l.width, l.height, l.depth)
}
