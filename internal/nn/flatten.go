package nn

import (
	"fmt"

	"github.com/born-ml/sprout/internal/tensor"
)

// Flatten adapts a stack of feature maps into one vector so a Linear layer
// can read a convolution pipeline. Element (x, y) of channel d lands at
//
//	index = d*(width*height) + y*width + x
type Flatten struct {
	width, height, depth int

	value    *tensor.Vector
	gradient *tensor.Vector
}

// NewFlatten creates an adapter for depth maps of w×h; its output has
// w*h*depth elements.
func NewFlatten(w, h, depth int) *Flatten {
	if w <= 0 || h <= 0 || depth <= 0 {
		panic(fmt.Sprintf("flatten: invalid size %dx%dx%d", w, h, depth))
	}
	n := w * h * depth
	return &Flatten{
		width:    w,
		height:   h,
		depth:    depth,
		value:    tensor.NewVector(n),
		gradient: tensor.NewVector(n),
	}
}

// Forward copies every source map into the output vector.
func (l *Flatten) Forward(src MapSource) error {
	if err := checkMaps("flatten forward", src, l.depth, l.width, l.height); err != nil {
		return err
	}
	plane := l.width * l.height
	out := l.value.Data()
	for d := 0; d < l.depth; d++ {
		copy(out[d*plane:(d+1)*plane], src.Map(d).Data())
	}
	return nil
}

// Backward pulls the gradient of the output vector from next, normally the
// first Linear layer reading this adapter.
func (l *Flatten) Backward(next GradientSender) error {
	if err := next.SendGradient(l.gradient); err != nil {
		return fmt.Errorf("flatten backward: %w", err)
	}
	return nil
}

// SendMapGradient un-flattens the stored gradient into per-channel maps.
func (l *Flatten) SendMapGradient(dst []*tensor.Matrix) error {
	if err := checkGradMaps("flatten gradient", dst, l.depth, l.width, l.height); err != nil {
		return err
	}
	plane := l.width * l.height
	grad := l.gradient.Data()
	for d, m := range dst {
		copy(m.Data(), grad[d*plane:(d+1)*plane])
	}
	return nil
}

// Value returns the flattened vector.
func (l *Flatten) Value() *tensor.Vector { return l.value }

// Gradient returns the gradient stored by the last Backward.
func (l *Flatten) Gradient() *tensor.Vector { return l.gradient }

// Size returns width*height*depth.
func (l *Flatten) Size() int { return l.value.Len() }

// String returns a string representation of the layer.
func (l *Flatten) String() string {
	return fmt.Sprintf("Flatten(%dx%dx%d -> %d)", l.width, l.height, l.depth, l.value.Len())
}
