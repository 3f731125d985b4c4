package dataset

import (
	"context"
	"fmt"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/born-ml/sprout/internal/fileio"
	"github.com/born-ml/sprout/internal/tensor"
)

// CIFAR-10 binary record layout.
const (
	CIFARSide     = 32
	CIFARChannels = 3
	cifarPlane    = CIFARSide * CIFARSide        // 1024
	cifarRecord   = 1 + CIFARChannels*cifarPlane // 3073
)

// CIFAR10Labels are the CIFAR-10 class names.
var CIFAR10Labels = []string{
	"airplane", "automobile", "bird", "cat", "deer",
	"dog", "frog", "horse", "ship", "truck",
}

// CIFAR10Files locates the binary batches of the training or test split in
// dir, accepting plain or compressed copies.
func CIFAR10Files(dir string, train bool) ([]string, error) {
	names := []string{"test_batch.bin"}
	if train {
		names = make([]string, 5)
		for i := range names {
			names[i] = fmt.Sprintf("data_batch_%d.bin", i+1)
		}
	}
	paths := make([]string, len(names))
	for i, name := range names {
		path, err := Resolve(dir, name)
		if err != nil {
			// Some archives nest the batches one level down.
			path, err = Resolve(filepath.Join(dir, "cifar-10-batches-bin"), name)
			if err != nil {
				return nil, err
			}
		}
		paths[i] = path
	}
	return paths, nil
}

// LoadCIFAR10 reads CIFAR-10 binary batch files into one dataset of
// 3x32x32 tensors with values in [0, 1].
//
// Each record is 3073 bytes:
//
//	label: 1 byte (0-9)
//	red:   1024 bytes, row-major 32x32
//	green: 1024 bytes
//	blue:  1024 bytes
//
// Files are read concurrently; items keep the order of paths and, within a
// file, the record order. The first failure cancels the remaining reads.
//
// Returns a logic error for a file whose size is not a positive multiple of
// the record size.
func LoadCIFAR10(ctx context.Context, paths []string, opts ...Option) (*Dataset[*tensor.Tensor], error) {
	if len(paths) == 0 {
		return nil, tensor.Logicf("cifar10: no batch files")
	}
	o := applyOptions(opts)

	batches := make([][]*Item[*tensor.Tensor], len(paths))
	g, ctx := errgroup.WithContext(ctx)
	for i, path := range paths {
		g.Go(func() error {
			items, err := loadCIFARBatch(ctx, path, o)
			if err != nil {
				return err
			}
			batches[i] = items
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ds := New[*tensor.Tensor](CIFAR10Labels)
	for _, b := range batches {
		ds.Append(b...)
	}
	return ds, nil
}

func loadCIFARBatch(ctx context.Context, path string, o options) ([]*Item[*tensor.Tensor], error) {
	data, err := fileio.ReadBytes(path, o.limit)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 || len(data)%cifarRecord != 0 {
		return nil, tensor.Logicf("cifar10: %s: size %d is not a multiple of %d", path, len(data), cifarRecord)
	}

	count := o.maxItems(len(data) / cifarRecord)
	items := make([]*Item[*tensor.Tensor], count)
	for i := range items {
		if i%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		record := data[i*cifarRecord : (i+1)*cifarRecord]
		item, err := decodeCIFARRecord(record)
		if err != nil {
			return nil, fmt.Errorf("cifar10: %s: record %d: %w", path, i, err)
		}
		items[i] = item
	}
	return items, nil
}

func decodeCIFARRecord(record []byte) (*Item[*tensor.Tensor], error) {
	t := tensor.NewTensor(CIFARChannels, CIFARSide, CIFARSide)
	pixels := record[1:]
	for c := range CIFARChannels {
		dst := t.Channel(c).Data()
		for j, p := range pixels[c*cifarPlane : (c+1)*cifarPlane] {
			dst[j] = float32(p) / 255
		}
	}
	return NewItem(t, int(record[0]), len(CIFAR10Labels))
}
