package dataset

import (
	"bytes"
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/sprout/internal/fileio"
	"github.com/born-ml/sprout/internal/tensor"
)

// writeIDX writes a synthetic MNIST pair with n images of w×h; image i is
// filled with byte i and labelled i%10.
func writeIDX(t *testing.T, dir, suffix string, n, w, h int) (string, string) {
	t.Helper()
	var img bytes.Buffer
	for _, v := range []uint32{idxImagesMagic, uint32(n), uint32(h), uint32(w)} {
		require.NoError(t, binary.Write(&img, binary.BigEndian, v))
	}
	var lbl bytes.Buffer
	for _, v := range []uint32{idxLabelsMagic, uint32(n)} {
		require.NoError(t, binary.Write(&lbl, binary.BigEndian, v))
	}
	for i := range n {
		img.Write(bytes.Repeat([]byte{byte(i)}, w*h))
		lbl.WriteByte(byte(i % 10))
	}

	imgPath := filepath.Join(dir, MNISTTrainImages+suffix)
	lblPath := filepath.Join(dir, MNISTTrainLabels+suffix)
	require.NoError(t, fileio.WriteBytes(imgPath, img.Bytes()))
	require.NoError(t, fileio.WriteBytes(lblPath, lbl.Bytes()))
	return imgPath, lblPath
}

// cifarBatch builds n records; record i has label i%10 and channel c filled
// with byte 10*c + i, except pixel (1, 0) of channel 0 which is 255.
func cifarBatch(n int) []byte {
	var buf bytes.Buffer
	for i := range n {
		buf.WriteByte(byte(i % 10))
		for c := range CIFARChannels {
			plane := bytes.Repeat([]byte{byte(10*c + i)}, cifarPlane)
			if c == 0 {
				plane[1] = 255
			}
			buf.Write(plane)
		}
	}
	return buf.Bytes()
}

func TestItemTarget(t *testing.T) {
	it, err := NewItem(tensor.NewMatrix(2, 2), 3, 5)
	require.NoError(t, err)
	assert.Equal(t, 3, it.Label())
	assert.Equal(t, []float32{0, 0, 0, 1, 0}, it.Target().Data())

	_, err = NewItem(tensor.NewMatrix(2, 2), 5, 5)
	require.ErrorIs(t, err, tensor.ErrNumeric)
}

func newToyDataset(t *testing.T, n int) *Dataset[*tensor.Vector] {
	t.Helper()
	ds := New[*tensor.Vector]([]string{"a", "b"})
	for i := range n {
		it, err := NewItem(tensor.VectorOf(float32(i)), i%2, 2)
		require.NoError(t, err)
		ds.Append(it)
	}
	return ds
}

func TestDatasetAllIsRestartable(t *testing.T) {
	ds := newToyDataset(t, 5)

	for range 2 {
		var seen []float32
		for i, it := range ds.All() {
			assert.Equal(t, i%2, it.Label())
			seen = append(seen, it.Data().At(0))
		}
		assert.Equal(t, []float32{0, 1, 2, 3, 4}, seen)
	}

	// Early break stops the sequence.
	count := 0
	for range ds.All() {
		count++
		if count == 2 {
			break
		}
	}
	assert.Equal(t, 2, count)
}

func TestDatasetShuffleKeepsItems(t *testing.T) {
	ds := newToyDataset(t, 50)
	ds.Shuffle(tensor.NewRNG(9))

	seen := make(map[float32]bool)
	moved := false
	for i, it := range ds.All() {
		v := it.Data().At(0)
		seen[v] = true
		if v != float32(i) {
			moved = true
		}
	}
	assert.Len(t, seen, 50)
	assert.True(t, moved)
}

func TestDatasetSplitAndHead(t *testing.T) {
	ds := newToyDataset(t, 10)

	train, test := ds.Split(0.8)
	assert.Equal(t, 8, train.Len())
	assert.Equal(t, 2, test.Len())
	assert.Equal(t, float32(8), test.At(0).Data().At(0))

	all, none := ds.Split(1.5)
	assert.Equal(t, 10, all.Len())
	assert.Equal(t, 0, none.Len())

	assert.Equal(t, 3, ds.Head(3).Len())
	assert.Equal(t, 10, ds.Head(100).Len())
	assert.Equal(t, []int{5, 5}, ds.Counts())

	assert.Panics(t, func() { ds.At(10) })
}

func TestLabelName(t *testing.T) {
	ds := New[*tensor.Tensor](CIFAR10Labels)
	name, err := ds.LabelName(6)
	require.NoError(t, err)
	assert.Equal(t, "frog", name)

	_, err = ds.LabelName(10)
	require.ErrorIs(t, err, tensor.ErrNumeric)
}

func TestLoadMNIST(t *testing.T) {
	for _, suffix := range []string{"", ".gz", ".zst", ".lz4"} {
		t.Run("suffix"+suffix, func(t *testing.T) {
			dir := t.TempDir()
			writeIDX(t, dir, suffix, 12, 4, 3)

			imgPath, lblPath, err := MNISTFiles(dir, true)
			require.NoError(t, err)

			ds, err := LoadMNIST(imgPath, lblPath)
			require.NoError(t, err)
			require.Equal(t, 12, ds.Len())
			assert.Equal(t, 10, ds.Classes())

			it := ds.At(11)
			assert.Equal(t, 1, it.Label())
			assert.Equal(t, 4, it.Data().Width())
			assert.Equal(t, 3, it.Data().Height())
			assert.InDelta(t, 11.0/255, it.Data().At(3, 2), 1e-6)
		})
	}
}

func TestLoadMNISTMaxItems(t *testing.T) {
	imgPath, lblPath := writeIDX(t, t.TempDir(), "", 12, 2, 2)
	ds, err := LoadMNIST(imgPath, lblPath, WithMaxItems(5))
	require.NoError(t, err)
	assert.Equal(t, 5, ds.Len())
}

func TestLoadMNISTErrors(t *testing.T) {
	dir := t.TempDir()
	imgPath, lblPath := writeIDX(t, dir, "", 3, 2, 2)

	t.Run("swapped files", func(t *testing.T) {
		_, err := LoadMNIST(lblPath, imgPath)
		require.ErrorIs(t, err, tensor.ErrLogic)
	})

	t.Run("truncated images", func(t *testing.T) {
		data, err := os.ReadFile(imgPath)
		require.NoError(t, err)
		short := filepath.Join(dir, "short")
		require.NoError(t, os.WriteFile(short, data[:len(data)-1], 0o600))

		_, err = LoadMNIST(short, lblPath)
		require.ErrorIs(t, err, tensor.ErrLogic)
	})

	t.Run("oversized header", func(t *testing.T) {
		var img bytes.Buffer
		for _, v := range []uint32{idxImagesMagic, 1, 0xFFFFFFFF, 0xFFFFFFFF} {
			require.NoError(t, binary.Write(&img, binary.BigEndian, v))
		}
		img.Write([]byte{1, 2, 3, 4})
		huge := filepath.Join(dir, "huge")
		require.NoError(t, os.WriteFile(huge, img.Bytes(), 0o600))
		_, oneLabel := writeIDX(t, t.TempDir(), "", 1, 2, 2)

		require.NotPanics(t, func() {
			_, err := LoadMNIST(huge, oneLabel)
			require.ErrorIs(t, err, tensor.ErrLogic)
		})
	})

	t.Run("count mismatch", func(t *testing.T) {
		_, otherLabels := writeIDX(t, t.TempDir(), "", 4, 2, 2)
		_, err := LoadMNIST(imgPath, otherLabels)
		require.ErrorIs(t, err, tensor.ErrLogic)
	})

	t.Run("memory limit", func(t *testing.T) {
		_, err := LoadMNIST(imgPath, lblPath, WithLimit(8))
		require.ErrorIs(t, err, tensor.ErrMemory)
	})

	t.Run("missing", func(t *testing.T) {
		_, _, err := MNISTFiles(t.TempDir(), false)
		require.ErrorIs(t, err, tensor.ErrLogic)
	})
}

func TestLoadCIFAR10(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		filepath.Join(dir, "data_batch_1.bin"),
		filepath.Join(dir, "data_batch_2.bin.zst"),
	}
	require.NoError(t, fileio.WriteBytes(paths[0], cifarBatch(3)))
	require.NoError(t, fileio.WriteBytes(paths[1], cifarBatch(2)))

	ds, err := LoadCIFAR10(context.Background(), paths)
	require.NoError(t, err)
	require.Equal(t, 5, ds.Len())

	// Batch order is kept.
	labels := make([]int, 0, ds.Len())
	for _, it := range ds.All() {
		labels = append(labels, it.Label())
	}
	assert.Equal(t, []int{0, 1, 2, 0, 1}, labels)

	img := ds.At(2).Data()
	assert.Equal(t, 3, img.Channels())
	assert.Equal(t, 32, img.Width())
	assert.InDelta(t, 2.0/255, img.At(0, 0, 0), 1e-6)
	assert.InDelta(t, 1.0, img.At(1, 0, 0), 1e-6)
	assert.InDelta(t, 12.0/255, img.At(5, 7, 1), 1e-6)
	assert.InDelta(t, 22.0/255, img.At(31, 31, 2), 1e-6)

	name, err := ds.LabelName(ds.At(1).Label())
	require.NoError(t, err)
	assert.Equal(t, "automobile", name)
}

func TestLoadCIFAR10Errors(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.bin")
	bad := filepath.Join(dir, "bad.bin")
	require.NoError(t, fileio.WriteBytes(good, cifarBatch(1)))
	require.NoError(t, fileio.WriteBytes(bad, cifarBatch(1)[:100]))

	_, err := LoadCIFAR10(context.Background(), []string{good, bad})
	require.ErrorIs(t, err, tensor.ErrLogic)

	_, err = LoadCIFAR10(context.Background(), nil)
	require.ErrorIs(t, err, tensor.ErrLogic)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = LoadCIFAR10(ctx, []string{good})
	require.ErrorIs(t, err, context.Canceled)
}

func TestCIFAR10Files(t *testing.T) {
	dir := t.TempDir()
	nested := filepath.Join(dir, "cifar-10-batches-bin")
	require.NoError(t, os.Mkdir(nested, 0o700))
	require.NoError(t, fileio.WriteBytes(filepath.Join(nested, "test_batch.bin.gz"), cifarBatch(1)))

	paths, err := CIFAR10Files(dir, false)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(nested, "test_batch.bin.gz")}, paths)

	_, err = CIFAR10Files(dir, true)
	require.ErrorIs(t, err, tensor.ErrLogic)
}
