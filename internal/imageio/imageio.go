// Package imageio converts between numeric containers and image files.
//
// Pixel bytes 0..255 map to values 0.0..1.0 and back; values outside [0, 1]
// are clamped when saving. Matrices are grayscale images, 3-channel tensors
// are RGB images. The format follows the file extension (.png, .jpg, .jpeg),
// optionally wrapped in a compression extension understood by fileio.
package imageio

import (
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"path/filepath"
	"strings"

	"github.com/born-ml/sprout/internal/fileio"
	"github.com/born-ml/sprout/internal/tensor"
)

// JPEGQuality is the quality used when saving JPEG files.
const JPEGQuality = 95

type format int

const (
	formatPNG format = iota
	formatJPEG
)

func formatFor(path string) (format, error) {
	base := path
	if fileio.CompressionFor(path) != fileio.CompressionNone {
		base = strings.TrimSuffix(path, filepath.Ext(path))
	}
	switch strings.ToLower(filepath.Ext(base)) {
	case ".png":
		return formatPNG, nil
	case ".jpg", ".jpeg":
		return formatJPEG, nil
	default:
		return 0, tensor.Logicf("imageio: unsupported image format %q", filepath.Ext(base))
	}
}

func decode(path string) (image.Image, error) {
	if _, err := formatFor(path); err != nil {
		return nil, err
	}
	r, err := fileio.Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	img, _, err := image.Decode(r)
	if err != nil {
		return nil, tensor.Logicf("imageio: decode %s: %v", path, err)
	}
	return img, nil
}

// LoadMatrix reads an image as a grayscale matrix.
func LoadMatrix(path string) (*tensor.Matrix, error) {
	img, err := decode(path)
	if err != nil {
		return nil, err
	}
	b := img.Bounds()
	m := tensor.NewMatrix(b.Dx(), b.Dy())
	m.ForEach(func(x, y int, v *float32) {
		g := color.GrayModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.Gray)
		*v = float32(g.Y) / 255
	})
	return m, nil
}

// LoadTensor reads an image as a 3-channel RGB tensor.
func LoadTensor(path string) (*tensor.Tensor, error) {
	img, err := decode(path)
	if err != nil {
		return nil, err
	}
	b := img.Bounds()
	t := tensor.NewTensor(3, b.Dx(), b.Dy())
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			c := color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			t.Set(x, y, 0, float32(c.R)/255)
			t.Set(x, y, 1, float32(c.G)/255)
			t.Set(x, y, 2, float32(c.B)/255)
		}
	}
	return t, nil
}

// SaveMatrix writes m as a grayscale image.
func SaveMatrix(path string, m *tensor.Matrix) error {
	if !m.Valid() {
		return tensor.Logicf("imageio: invalid matrix")
	}
	img := image.NewGray(image.Rect(0, 0, m.Width(), m.Height()))
	m.ForEach(func(x, y int, v *float32) {
		img.SetGray(x, y, color.Gray{Y: toByte(*v)})
	})
	return encode(path, img)
}

// SaveTensor writes a 3-channel tensor as an RGB image.
//
// Returns a logic error for any other channel count.
func SaveTensor(path string, t *tensor.Tensor) error {
	if !t.Valid() {
		return tensor.Logicf("imageio: invalid tensor")
	}
	if t.Channels() != 3 {
		return tensor.Logicf("imageio: cannot save %d channels as RGB", t.Channels())
	}
	img := image.NewNRGBA(image.Rect(0, 0, t.Width(), t.Height()))
	for y := 0; y < t.Height(); y++ {
		for x := 0; x < t.Width(); x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: toByte(t.At(x, y, 0)),
				G: toByte(t.At(x, y, 1)),
				B: toByte(t.At(x, y, 2)),
				A: 255,
			})
		}
	}
	return encode(path, img)
}

func encode(path string, img image.Image) error {
	f, err := formatFor(path)
	if err != nil {
		return err
	}
	w, err := fileio.Create(path)
	if err != nil {
		return err
	}
	if err := writeImage(w, f, img); err != nil {
		w.Close()
		return fmt.Errorf("imageio: encode %s: %w", path, err)
	}
	return w.Close()
}

func writeImage(w io.Writer, f format, img image.Image) error {
	if f == formatJPEG {
		return jpeg.Encode(w, img, &jpeg.Options{Quality: JPEGQuality})
	}
	return png.Encode(w, img)
}

// toByte clamps v to [0, 1] and scales it to a rounded pixel byte.
func toByte(v float32) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 1:
		return 255
	default:
		return uint8(v*255 + 0.5)
	}
}
