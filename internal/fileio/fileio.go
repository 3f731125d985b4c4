// Package fileio reads and writes dataset files, decompressing and
// compressing them transparently by extension.
//
// Supported encodings:
//   - plain files
//   - .gz  (gzip, klauspost/compress)
//   - .zst (zstandard, klauspost/compress)
//   - .lz4 (lz4 frame, pierrec/lz4)
package fileio

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/born-ml/sprout/internal/tensor"
)

// DefaultLimit caps the decoded size accepted by ReadBytes when no limit is
// given. It is large enough for every CIFAR-10 and MNIST file.
const DefaultLimit int64 = 1 << 30

// Compression identifies the encoding of a file.
type Compression uint8

const (
	// CompressionNone is a plain file.
	CompressionNone Compression = iota
	// CompressionGzip is a gzip stream.
	CompressionGzip
	// CompressionZstd is a zstandard stream.
	CompressionZstd
	// CompressionLZ4 is an lz4 frame.
	CompressionLZ4
)

// String returns the file extension of c without the dot.
func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionGzip:
		return "gz"
	case CompressionZstd:
		return "zst"
	case CompressionLZ4:
		return "lz4"
	default:
		return fmt.Sprintf("Compression(%d)", uint8(c))
	}
}

// CompressionFor derives the encoding from the extension of path.
func CompressionFor(path string) Compression {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz":
		return CompressionGzip
	case ".zst", ".zstd":
		return CompressionZstd
	case ".lz4":
		return CompressionLZ4
	default:
		return CompressionNone
	}
}

// Exists reports whether path names an existing regular file.
func Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// Size returns the on-disk size of path in bytes.
func Size(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("fileio: %w", err)
	}
	return info.Size(), nil
}

// stream is a decoding or encoding stream that must release the underlying
// file and the codec on Close.
type stream struct {
	io.Reader
	io.Writer
	closers []func() error
}

func (s *stream) Close() error {
	var errs []error
	for _, c := range s.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Open opens path for reading and decodes it according to its extension.
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("fileio: %w", err)
	}

	switch CompressionFor(path) {
	case CompressionGzip:
		zr, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, tensor.Logicf("fileio: %s: malformed gzip stream: %v", path, err)
		}
		return &stream{Reader: zr, closers: []func() error{zr.Close, f.Close}}, nil
	case CompressionZstd:
		zr, err := zstd.NewReader(f)
		if err != nil {
			f.Close()
			return nil, tensor.Logicf("fileio: %s: malformed zstd stream: %v", path, err)
		}
		rc := zr.IOReadCloser()
		return &stream{Reader: rc, closers: []func() error{rc.Close, f.Close}}, nil
	case CompressionLZ4:
		return &stream{Reader: lz4.NewReader(f), closers: []func() error{f.Close}}, nil
	default:
		return f, nil
	}
}

// Create creates path for writing and encodes it according to its
// extension. Closing the writer flushes the codec and closes the file.
func Create(path string) (io.WriteCloser, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("fileio: %w", err)
	}

	switch CompressionFor(path) {
	case CompressionGzip:
		zw := gzip.NewWriter(f)
		return &stream{Writer: zw, closers: []func() error{zw.Close, f.Close}}, nil
	case CompressionZstd:
		zw, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("fileio: %w", err)
		}
		return &stream{Writer: zw, closers: []func() error{zw.Close, f.Close}}, nil
	case CompressionLZ4:
		zw := lz4.NewWriter(f)
		return &stream{Writer: zw, closers: []func() error{zw.Close, f.Close}}, nil
	default:
		return f, nil
	}
}

// ReadBytes reads and decodes the whole of path.
//
// Parameters:
//   - path: file to read; the extension selects the decoder
//   - limit: largest decoded size accepted; <= 0 means DefaultLimit
//
// Returns a *tensor.MemoryError (matching tensor.ErrMemory) if the decoded
// content exceeds limit.
func ReadBytes(path string, limit int64) ([]byte, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if CompressionFor(path) == CompressionNone {
		size, err := Size(path)
		if err != nil {
			return nil, err
		}
		if size > limit {
			return nil, &tensor.MemoryError{Requested: size, Limit: limit}
		}
	}

	r, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("fileio: read %s: %w", path, err)
	}
	if int64(len(data)) > limit {
		return nil, &tensor.MemoryError{Requested: int64(len(data)), Limit: limit}
	}
	return data, nil
}

// ReadString reads and decodes path as text.
func ReadString(path string, limit int64) (string, error) {
	data, err := ReadBytes(path, limit)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// WriteBytes encodes data into path according to its extension, replacing
// any existing file.
func WriteBytes(path string, data []byte) error {
	w, err := Create(path)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		w.Close()
		return fmt.Errorf("fileio: write %s: %w", path, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("fileio: close %s: %w", path, err)
	}
	return nil
}

// WriteString encodes s into path.
func WriteString(path, s string) error {
	return WriteBytes(path, []byte(s))
}
