package nn

import (
	"fmt"

	"github.com/born-ml/sprout/internal/tensor"
)

// MaxPool2D is a 2x2, stride 2 max pooling layer.
//
// Output cell (x, y) of channel c is the maximum of the source block
// (2x..2x+1, 2y..2y+1). MaxPool2D has no learnable parameters.
//
// ForwardAndGrad additionally records a routing mask at source resolution:
// every source cell equal to its block maximum is marked 1, all others 0.
// Ties are all marked, so a tied block routes the full gradient to each of
// its maximal cells.
//
// Output size per axis: out = src / 2 (an odd trailing row or column is
// never pooled).
//
// Example:
//
//	pool := nn.NewMaxPool2D(24, 24, 6) // 6 maps of 12x12
//	pool.ForwardAndGrad(relu)
type MaxPool2D struct {
	srcW, srcH int
	outW, outH int
	depth      int

	maps      []*tensor.Matrix // [depth][outW x outH]
	gradients []*tensor.Matrix // [depth][outW x outH]
	masks     []*tensor.Matrix // [depth][srcW x srcH]
}

// NewMaxPool2D creates a pooling layer for depth source maps of srcW×srcH.
func NewMaxPool2D(srcW, srcH, depth int) *MaxPool2D {
	if srcW < 2 || srcH < 2 {
		panic(fmt.Sprintf("maxpool2d: source %dx%d smaller than the 2x2 window", srcW, srcH))
	}
	if depth <= 0 {
		panic(fmt.Sprintf("maxpool2d: invalid depth %d", depth))
	}
	outW, outH := srcW/2, srcH/2
	return &MaxPool2D{
		srcW:      srcW,
		srcH:      srcH,
		outW:      outW,
		outH:      outH,
		depth:     depth,
		maps:      newMaps(depth, outW, outH),
		gradients: newMaps(depth, outW, outH),
		masks:     newMaps(depth, srcW, srcH),
	}
}

// Forward pools every source map.
func (l *MaxPool2D) Forward(src MapSource) error {
	if err := checkMaps("maxpool2d forward", src, l.depth, l.srcW, l.srcH); err != nil {
		return err
	}
	for c, dst := range l.maps {
		in := src.Map(c).Data()
		out := dst.Data()
		for y := 0; y < l.outH; y++ {
			for x := 0; x < l.outW; x++ {
				out[y*l.outW+x] = l.blockMax(in, x, y)
			}
		}
	}
	return nil
}

// ForwardAndGrad pools every source map and rebuilds the routing masks.
func (l *MaxPool2D) ForwardAndGrad(src MapSource) error {
	if err := l.Forward(src); err != nil {
		return err
	}
	for c, mask := range l.masks {
		in := src.Map(c).Data()
		pooled := l.maps[c].Data()
		m := mask.Data()
		for i := range m {
			m[i] = 0
		}
		for y := 0; y < l.outH; y++ {
			for x := 0; x < l.outW; x++ {
				best := pooled[y*l.outW+x]
				for dy := 0; dy < 2; dy++ {
					row := (2*y + dy) * l.srcW
					for dx := 0; dx < 2; dx++ {
						if in[row+2*x+dx] == best {
							m[row+2*x+dx] = 1
						}
					}
				}
			}
		}
	}
	return nil
}

func (l *MaxPool2D) blockMax(in []float32, x, y int) float32 {
	top := 2 * y * l.srcW
	bottom := top + l.srcW
	best := in[top+2*x]
	for _, v := range [3]float32{in[top+2*x+1], in[bottom+2*x], in[bottom+2*x+1]} {
		if v > best {
			best = v
		}
	}
	return best
}

// Backward pulls the gradient of the pooled maps from next.
func (l *MaxPool2D) Backward(next MapGradientSender) error {
	if err := next.SendMapGradient(l.gradients); err != nil {
		return fmt.Errorf("maxpool2d backward: %w", err)
	}
	return nil
}

// SendMapGradient routes each pooled gradient to the masked cells of its
// source block:
//
//	dst[c](x, y) = mask[c](x, y) * gradient[c](x/2, y/2)
func (l *MaxPool2D) SendMapGradient(dst []*tensor.Matrix) error {
	if err := checkGradMaps("maxpool2d gradient", dst, l.depth, l.srcW, l.srcH); err != nil {
		return err
	}
	for c, m := range dst {
		out := m.Data()
		mask := l.masks[c].Data()
		grad := l.gradients[c].Data()
		for i := range out {
			out[i] = 0
		}
		for y := 0; y < 2*l.outH; y++ {
			for x := 0; x < 2*l.outW; x++ {
				i := y*l.srcW + x
				out[i] = mask[i] * grad[(y/2)*l.outW+x/2]
			}
		}
	}
	return nil
}

// Depth returns the number of channels.
func (l *MaxPool2D) Depth() int { return l.depth }

// Width returns the pooled map width.
func (l *MaxPool2D) Width() int { return l.outW }

// Height returns the pooled map height.
func (l *MaxPool2D) Height() int { return l.outH }

// Map returns pooled map c.
func (l *MaxPool2D) Map(c int) *tensor.Matrix { return l.maps[c] }

// Gradient returns the pooled gradient map of channel c.
func (l *MaxPool2D) Gradient(c int) *tensor.Matrix { return l.gradients[c] }

// Mask returns the routing mask of channel c built by the last
// ForwardAndGrad.
func (l *MaxPool2D) Mask(c int) *tensor.Matrix { return l.masks[c] }

// String returns a string representation of the layer.
func (l *MaxPool2D) String() string {
	return fmt.Sprintf("MaxPool2D(src=%dx%d, depth=%d, kernel_size=2, stride=2)", l.srcW, l.srcH, l.depth)
}
