package dataset

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"path/filepath"

	"github.com/born-ml/sprout/internal/fileio"
	"github.com/born-ml/sprout/internal/parallel"
	"github.com/born-ml/sprout/internal/tensor"
)

// IDX magic numbers.
const (
	idxImagesMagic = 2051 // 0x00000803
	idxLabelsMagic = 2049 // 0x00000801
)

// MNISTLabels are the digit class names.
var MNISTLabels = []string{"0", "1", "2", "3", "4", "5", "6", "7", "8", "9"}

// MNIST file names as distributed.
const (
	MNISTTrainImages = "train-images-idx3-ubyte"
	MNISTTrainLabels = "train-labels-idx1-ubyte"
	MNISTTestImages  = "t10k-images-idx3-ubyte"
	MNISTTestLabels  = "t10k-labels-idx1-ubyte"
)

// MNISTFiles locates the image and label files of the training or test split
// in dir, accepting plain or compressed copies.
func MNISTFiles(dir string, train bool) (images, labels string, err error) {
	imgName, lblName := MNISTTestImages, MNISTTestLabels
	if train {
		imgName, lblName = MNISTTrainImages, MNISTTrainLabels
	}
	if images, err = Resolve(dir, imgName); err != nil {
		return "", "", err
	}
	if labels, err = Resolve(dir, lblName); err != nil {
		return "", "", err
	}
	return images, labels, nil
}

// Resolve returns the path of name in dir, trying the plain file first and
// then its .gz, .zst and .lz4 variants.
func Resolve(dir, name string) (string, error) {
	base := filepath.Join(dir, name)
	for _, ext := range []string{"", ".gz", ".zst", ".lz4"} {
		if fileio.Exists(base + ext) {
			return base + ext, nil
		}
	}
	return "", tensor.Logicf("dataset: %s not found in %s", name, dir)
}

// LoadMNIST reads an IDX image file and its IDX label file into a dataset
// of 28x28 (or whatever the header declares) matrices with pixel values in
// [0, 1].
//
// IDX image file:
//
//	magic number: 0x00000803 (2051)
//	number of images: 4 bytes
//	number of rows: 4 bytes
//	number of cols: 4 bytes
//	pixel data: unsigned bytes (0-255), row-major
//
// IDX label file:
//
//	magic number: 0x00000801 (2049)
//	number of labels: 4 bytes
//	label data: unsigned bytes (0-9)
//
// Returns a logic error for a malformed file or mismatched counts.
func LoadMNIST(imagesPath, labelsPath string, opts ...Option) (*Dataset[*tensor.Matrix], error) {
	o := applyOptions(opts)

	imgData, err := fileio.ReadBytes(imagesPath, o.limit)
	if err != nil {
		return nil, err
	}
	lblData, err := fileio.ReadBytes(labelsPath, o.limit)
	if err != nil {
		return nil, err
	}

	labels, err := readIDXLabels(bytes.NewReader(lblData))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", labelsPath, err)
	}

	r := bytes.NewReader(imgData)
	var header struct {
		Magic, Count, Rows, Cols uint32
	}
	if err := binary.Read(r, binary.BigEndian, &header); err != nil {
		return nil, tensor.Logicf("%s: failed to read header: %v", imagesPath, err)
	}
	if header.Magic != idxImagesMagic {
		return nil, tensor.Logicf("%s: invalid magic number: got %d, want %d", imagesPath, header.Magic, idxImagesMagic)
	}
	if header.Rows == 0 || header.Cols == 0 {
		return nil, tensor.Logicf("%s: empty image size %dx%d", imagesPath, header.Cols, header.Rows)
	}
	if int(header.Count) != len(labels) {
		return nil, tensor.Logicf("%s: %d images but %d labels", imagesPath, header.Count, len(labels))
	}

	pixels := imgData[len(imgData)-r.Len():]
	if uint64(header.Rows)*uint64(header.Cols) > uint64(len(pixels)) {
		return nil, tensor.Logicf("%s: image size %dx%d exceeds the %d pixel bytes in the file",
			imagesPath, header.Cols, header.Rows, len(pixels))
	}
	w, h := int(header.Cols), int(header.Rows)
	count := o.maxItems(int(header.Count))
	size := w * h
	if count > len(pixels)/size {
		return nil, tensor.Logicf("%s: failed to read image %d: file holds %d of %d pixel bytes",
			imagesPath, len(pixels)/size, len(pixels), count*size)
	}

	items := make([]*Item[*tensor.Matrix], count)
	err = parallel.ForErr(count, func(i int) error {
		m := tensor.NewMatrix(w, h)
		data := m.Data()
		for j, p := range pixels[i*size : (i+1)*size] {
			data[j] = float32(p) / 255
		}
		item, err := NewItem(m, int(labels[i]), len(MNISTLabels))
		if err != nil {
			return fmt.Errorf("%s: label %d: %w", labelsPath, i, err)
		}
		items[i] = item
		return nil
	}, parallel.DefaultConfig())
	if err != nil {
		return nil, err
	}
	return New(MNISTLabels, items...), nil
}

func readIDXLabels(r *bytes.Reader) ([]byte, error) {
	var header struct {
		Magic, Count uint32
	}
	if err := binary.Read(r, binary.BigEndian, &header); err != nil {
		return nil, tensor.Logicf("failed to read header: %v", err)
	}
	if header.Magic != idxLabelsMagic {
		return nil, tensor.Logicf("invalid magic number: got %d, want %d", header.Magic, idxLabelsMagic)
	}
	if int(header.Count) > r.Len() {
		return nil, tensor.Logicf("header declares %d labels, file holds %d", header.Count, r.Len())
	}
	labels := make([]byte, header.Count)
	if _, err := io.ReadFull(r, labels); err != nil {
		return nil, tensor.Logicf("failed to read labels: %v", err)
	}
	return labels, nil
}
