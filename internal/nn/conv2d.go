package nn

import (
	"fmt"

	"github.com/born-ml/sprout/internal/tensor"
)

// Conv2D is a per-channel 2D convolutional layer.
//
// Every output channel c owns one square kernel and one scalar bias and
// reads exactly one source map:
//
//	map[c] = CrossCorrelate(source[c], kernel[c]) + bias[c]
//
// A single-channel source (MatrixInput) is broadcast to every kernel;
// otherwise the source depth must equal the layer depth.
//
// Output size per axis:
//
//	out = (src - kernelSize + 2*padding) / stride + 1
//
// Example:
//
//	in := nn.NewMatrixInput(28, 28)
//	conv := nn.NewConv2D(28, 28, 6, 5, 1, 0) // 6 maps of 24x24
//	conv.Forward(in)
type Conv2D struct {
	srcW, srcH int
	outW, outH int
	depth      int
	kernelSize int
	stride     int
	padding    int

	kernels   []*tensor.Matrix // [depth][kernelSize x kernelSize]
	bias      []float32        // [depth]
	maps      []*tensor.Matrix // [depth][outW x outH]
	gradients []*tensor.Matrix // [depth][outW x outH]

	kernelGrad *tensor.Matrix // scratch for UpdateWeights
	srcDepth   int            // depth of the source seen by the last Forward
}

// NewConv2D creates a convolutional layer reading srcW×srcH maps and
// producing depth maps.
//
// Parameters:
//   - srcW, srcH: size of the source maps
//   - depth: number of output channels (kernels)
//   - kernelSize: side of each square kernel
//   - stride: step between kernel positions (> 0)
//   - padding: zero border added around the source
//
// Kernels and biases start at zero; call Randomize before training.
func NewConv2D(srcW, srcH, depth, kernelSize, stride, padding int) *Conv2D {
	if depth <= 0 {
		panic(fmt.Sprintf("conv2d: invalid depth %d", depth))
	}
	if kernelSize <= 0 {
		panic(fmt.Sprintf("conv2d: invalid kernel size %d", kernelSize))
	}
	outW, outH, err := tensor.Conv2DOutputSize(srcW, srcH, kernelSize, kernelSize, stride, padding)
	if err != nil {
		panic(fmt.Sprintf("conv2d: %v", err))
	}

	return &Conv2D{
		srcW:       srcW,
		srcH:       srcH,
		outW:       outW,
		outH:       outH,
		depth:      depth,
		kernelSize: kernelSize,
		stride:     stride,
		padding:    padding,
		kernels:    newMaps(depth, kernelSize, kernelSize),
		bias:       make([]float32, depth),
		maps:       newMaps(depth, outW, outH),
		gradients:  newMaps(depth, outW, outH),
		kernelGrad: tensor.NewMatrix(kernelSize, kernelSize),
		srcDepth:   depth,
	}
}

// sourceChannel maps output channel c to the source channel it reads.
func (l *Conv2D) sourceChannel(c, srcDepth int) int {
	if srcDepth == 1 {
		return 0
	}
	return c
}

func (l *Conv2D) checkSource(op string, src MapSource) error {
	depth := src.Depth()
	if depth != 1 && depth != l.depth {
		return tensor.Logicf("%s: channel mismatch: layer depth %d, source depth %d", op, l.depth, depth)
	}
	return checkMaps(op, src, depth, l.srcW, l.srcH)
}

// Forward convolves every source map with its kernel and adds the channel
// bias.
func (l *Conv2D) Forward(src MapSource) error {
	if err := l.checkSource("conv2d forward", src); err != nil {
		return err
	}
	l.srcDepth = src.Depth()

	for c, kernel := range l.kernels {
		dst := l.maps[c]
		if err := tensor.Conv2DInto(dst, src.Map(l.sourceChannel(c, l.srcDepth)), kernel, l.stride, l.padding); err != nil {
			return fmt.Errorf("conv2d forward: channel %d: %w", c, err)
		}
		b := l.bias[c]
		data := dst.Data()
		for i := range data {
			data[i] += b
		}
	}
	return nil
}

// Backward pulls the gradient of this layer's maps from next.
func (l *Conv2D) Backward(next MapGradientSender) error {
	if err := next.SendMapGradient(l.gradients); err != nil {
		return fmt.Errorf("conv2d backward: %w", err)
	}
	return nil
}

// SendMapGradient writes the gradient with respect to the source maps seen
// by the last Forward (a transposed convolution). For a broadcast source the
// contributions of every kernel are summed into the single map.
func (l *Conv2D) SendMapGradient(dst []*tensor.Matrix) error {
	if err := checkGradMaps("conv2d gradient", dst, l.srcDepth, l.srcW, l.srcH); err != nil {
		return err
	}
	for _, m := range dst {
		m.Fill(0)
	}
	for c, kernel := range l.kernels {
		if err := tensor.Conv2DInputGrad(dst[l.sourceChannel(c, l.srcDepth)], kernel, l.gradients[c], l.stride, l.padding); err != nil {
			return fmt.Errorf("conv2d gradient: channel %d: %w", c, err)
		}
	}
	return nil
}

// UpdateWeights applies one online gradient step using src, which must be
// the source passed to the last Forward:
//
//	kernel[c](u, v) += lr * Σ gradient[c](x, y) * src(x*stride-padding+u, y*stride-padding+v)
//	bias[c]         += lr * Σ gradient[c](x, y)
func (l *Conv2D) UpdateWeights(src MapSource, lr float32) error {
	if err := l.checkSource("conv2d update", src); err != nil {
		return err
	}
	srcDepth := src.Depth()

	for c, kernel := range l.kernels {
		l.kernelGrad.Fill(0)
		grad := l.gradients[c]
		if err := tensor.Conv2DKernelGrad(l.kernelGrad, src.Map(l.sourceChannel(c, srcDepth)), grad, l.stride, l.padding); err != nil {
			return fmt.Errorf("conv2d update: channel %d: %w", c, err)
		}
		k := kernel.Data()
		for i, g := range l.kernelGrad.Data() {
			k[i] += lr * g
		}
		l.bias[c] += lr * grad.Sum()
	}
	return nil
}

// Randomize draws every kernel element and bias uniformly from [min, max).
func (l *Conv2D) Randomize(rng *tensor.RNG, min, max float32) {
	for c, k := range l.kernels {
		k.Randomize(rng, min, max)
		l.bias[c] = rng.Uniform(min, max)
	}
}

// NumParameters returns depth*(kernelSize² + 1).
func (l *Conv2D) NumParameters() int {
	return l.depth * (l.kernelSize*l.kernelSize + 1)
}

// Depth returns the number of output channels.
func (l *Conv2D) Depth() int { return l.depth }

// Width returns the output map width.
func (l *Conv2D) Width() int { return l.outW }

// Height returns the output map height.
func (l *Conv2D) Height() int { return l.outH }

// Map returns output map c.
func (l *Conv2D) Map(c int) *tensor.Matrix { return l.maps[c] }

// Gradient returns the gradient map of channel c.
func (l *Conv2D) Gradient(c int) *tensor.Matrix { return l.gradients[c] }

// Kernel returns the kernel of channel c.
func (l *Conv2D) Kernel(c int) *tensor.Matrix { return l.kernels[c] }

// Bias returns the bias of channel c.
func (l *Conv2D) Bias(c int) float32 { return l.bias[c] }

// SetBias sets the bias of channel c.
func (l *Conv2D) SetBias(c int, b float32) { l.bias[c] = b }

// KernelSize returns the kernel side.
func (l *Conv2D) KernelSize() int { return l.kernelSize }

// Stride returns the stride.
func (l *Conv2D) Stride() int { return l.stride }

// Padding returns the zero padding width.
func (l *Conv2D) Padding() int { return l.padding }

// String returns a string representation of the layer.
func (l *Conv2D) String() string {
	return fmt.Sprintf("Conv2D(src=%dx%d, depth=%d, kernel_size=%d, stride=%d, padding=%d)",
		l.srcW, l.srcH, l.depth, l.kernelSize, l.stride, l.padding)
}
