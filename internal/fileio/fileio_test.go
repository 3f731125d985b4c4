package fileio

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/sprout/internal/tensor"
)

func TestCompressionFor(t *testing.T) {
	tests := []struct {
		path string
		want Compression
	}{
		{"train-images-idx3-ubyte", CompressionNone},
		{"train-images-idx3-ubyte.gz", CompressionGzip},
		{"data_batch_1.bin.ZST", CompressionZstd},
		{"data_batch_1.bin.zstd", CompressionZstd},
		{"test_batch.bin.lz4", CompressionLZ4},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, CompressionFor(tt.path))
		})
	}
}

func TestRoundTrip(t *testing.T) {
	payload := bytes.Repeat([]byte("sprout-0123456789"), 1000)
	for _, ext := range []string{"", ".gz", ".zst", ".lz4"} {
		t.Run("ext"+ext, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "payload.bin"+ext)
			require.NoError(t, WriteBytes(path, payload))
			assert.True(t, Exists(path))

			got, err := ReadBytes(path, 0)
			require.NoError(t, err)
			assert.Equal(t, payload, got)

			size, err := Size(path)
			require.NoError(t, err)
			if ext == "" {
				assert.Equal(t, int64(len(payload)), size)
			} else {
				assert.Less(t, size, int64(len(payload)))
			}
		})
	}
}

func TestReadString(t *testing.T) {
	path := filepath.Join(t.TempDir(), "labels.txt.gz")
	require.NoError(t, WriteString(path, "airplane\nautomobile\n"))

	s, err := ReadString(path, 0)
	require.NoError(t, err)
	assert.Equal(t, "airplane\nautomobile\n", s)
}

func TestReadBytesLimit(t *testing.T) {
	payload := make([]byte, 4096)
	for _, ext := range []string{"", ".gz", ".zst", ".lz4"} {
		t.Run("ext"+ext, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "big.bin"+ext)
			require.NoError(t, WriteBytes(path, payload))

			_, err := ReadBytes(path, 1024)
			require.ErrorIs(t, err, tensor.ErrMemory)

			var memErr *tensor.MemoryError
			require.ErrorAs(t, err, &memErr)
			assert.Equal(t, int64(1024), memErr.Limit)
			assert.Greater(t, memErr.Requested, int64(1024))

			got, err := ReadBytes(path, 4096)
			require.NoError(t, err)
			assert.Len(t, got, 4096)
		})
	}
}

func TestMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.gz")
	assert.False(t, Exists(path))

	_, err := ReadBytes(path, 0)
	require.ErrorIs(t, err, os.ErrNotExist)

	_, err = Size(path)
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestMalformedGzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.gz")
	require.NoError(t, os.WriteFile(path, []byte("not gzip"), 0o600))

	_, err := Open(path)
	require.ErrorIs(t, err, tensor.ErrLogic)
}
