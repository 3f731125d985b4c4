package tensor

// Conv2DOutputSize returns the output width and height of a cross-correlation:
//
//	out = (src - kernel + 2*padding) / stride + 1
//
// Returns a numeric error if the kernel is larger than the source along
// either axis or stride is zero.
func Conv2DOutputSize(srcW, srcH, kernelW, kernelH, stride, padding int) (int, int, error) {
	if kernelW > srcW || kernelH > srcH {
		return 0, 0, Numericf("conv: kernel %dx%d bigger than source %dx%d", kernelW, kernelH, srcW, srcH)
	}
	if stride <= 0 {
		return 0, 0, Numericf("conv: stride must be positive, got %d", stride)
	}
	if padding < 0 {
		return 0, 0, Numericf("conv: negative padding %d", padding)
	}
	w := (srcW-kernelW+2*padding)/stride + 1
	h := (srcH-kernelH+2*padding)/stride + 1
	return w, h, nil
}

// Conv2D cross-correlates src with kernel (no kernel flip) and returns a new
// feature map. Positions that fall into the zero padding contribute 0.
//
// Example:
//
//	src := tensor.NewMatrix(3, 3)
//	src.Fill(1)
//	k := tensor.NewMatrix(3, 3)
//	k.Fill(1.0 / 9)
//	out, _ := tensor.Conv2D(src, k, 1, 0) // 1x1 matrix holding 1.0
func Conv2D(src, kernel *Matrix, stride, padding int) (*Matrix, error) {
	if !src.Valid() || !kernel.Valid() {
		return nil, Logicf("conv: invalid matrix")
	}
	w, h, err := Conv2DOutputSize(src.Width(), src.Height(), kernel.Width(), kernel.Height(), stride, padding)
	if err != nil {
		return nil, err
	}
	dst := NewMatrix(w, h)
	conv2d(dst, src, kernel, stride, padding)
	return dst, nil
}

// Conv2DInto writes the cross-correlation of src and kernel into dst.
//
// Returns a numeric error if dst does not have the output shape computed by
// Conv2DOutputSize.
func Conv2DInto(dst, src, kernel *Matrix, stride, padding int) error {
	if !dst.Valid() || !src.Valid() || !kernel.Valid() {
		return Logicf("conv: invalid matrix")
	}
	w, h, err := Conv2DOutputSize(src.Width(), src.Height(), kernel.Width(), kernel.Height(), stride, padding)
	if err != nil {
		return err
	}
	if dst.Width() != w || dst.Height() != h {
		return Numericf("conv: destination %dx%d does not match output %dx%d", dst.Width(), dst.Height(), w, h)
	}
	conv2d(dst, src, kernel, stride, padding)
	return nil
}

func conv2d(dst, src, kernel *Matrix, stride, padding int) {
	kw, kh := kernel.w, kernel.h
	for oy := 0; oy < dst.h; oy++ {
		for ox := 0; ox < dst.w; ox++ {
			var sum float32
			for ky := 0; ky < kh; ky++ {
				sy := oy*stride - padding + ky
				if sy < 0 || sy >= src.h {
					continue
				}
				srcRow := src.data[sy*src.w : (sy+1)*src.w]
				kRow := kernel.data[ky*kw : (ky+1)*kw]
				for kx := 0; kx < kw; kx++ {
					sx := ox*stride - padding + kx
					if sx < 0 || sx >= src.w {
						continue
					}
					sum += kRow[kx] * srcRow[sx]
				}
			}
			dst.data[oy*dst.w+ox] = sum
		}
	}
}

// Conv2DKernelGrad accumulates into kernelGrad the gradient of a
// cross-correlation output with respect to its kernel:
//
//	kernelGrad(kx, ky) += Σ grad(ox, oy) * src(ox*stride-padding+kx, oy*stride-padding+ky)
//
// grad must have the output shape of src and kernelGrad.
func Conv2DKernelGrad(kernelGrad, src, grad *Matrix, stride, padding int) error {
	w, h, err := Conv2DOutputSize(src.Width(), src.Height(), kernelGrad.Width(), kernelGrad.Height(), stride, padding)
	if err != nil {
		return err
	}
	if grad.Width() != w || grad.Height() != h {
		return Numericf("conv kernel grad: gradient %dx%d does not match output %dx%d", grad.Width(), grad.Height(), w, h)
	}
	kw, kh := kernelGrad.w, kernelGrad.h
	for oy := 0; oy < h; oy++ {
		for ox := 0; ox < w; ox++ {
			g := grad.data[oy*w+ox]
			if g == 0 {
				continue
			}
			for ky := 0; ky < kh; ky++ {
				sy := oy*stride - padding + ky
				if sy < 0 || sy >= src.h {
					continue
				}
				for kx := 0; kx < kw; kx++ {
					sx := ox*stride - padding + kx
					if sx < 0 || sx >= src.w {
						continue
					}
					kernelGrad.data[ky*kw+kx] += g * src.data[sy*src.w+sx]
				}
			}
		}
	}
	return nil
}

// Conv2DInputGrad accumulates into srcGrad the gradient of a cross-correlation
// output with respect to its source (a transposed convolution). Padding
// positions are discarded.
func Conv2DInputGrad(srcGrad, kernel, grad *Matrix, stride, padding int) error {
	w, h, err := Conv2DOutputSize(srcGrad.Width(), srcGrad.Height(), kernel.Width(), kernel.Height(), stride, padding)
	if err != nil {
		return err
	}
	if grad.Width() != w || grad.Height() != h {
		return Numericf("conv input grad: gradient %dx%d does not match output %dx%d", grad.Width(), grad.Height(), w, h)
	}
	kw, kh := kernel.w, kernel.h
	for oy := 0; oy < h; oy++ {
		for ox := 0; ox < w; ox++ {
			g := grad.data[oy*w+ox]
			if g == 0 {
				continue
			}
			for ky := 0; ky < kh; ky++ {
				sy := oy*stride - padding + ky
				if sy < 0 || sy >= srcGrad.h {
					continue
				}
				for kx := 0; kx < kw; kx++ {
					sx := ox*stride - padding + kx
					if sx < 0 || sx >= srcGrad.w {
						continue
					}
					srcGrad.data[sy*srcGrad.w+sx] += g * kernel.data[ky*kw+kx]
				}
			}
		}
	}
	return nil
}
