package parallel

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFor(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		n    int
	}{
		{"default", DefaultConfig(), 1000},
		{"sequential", Config{Enabled: false}, 100},
		{"small input", DefaultConfig(), 10},
		{"forced workers", Config{Enabled: true, NumWorkers: 4, MinChunkSize: 1}, 37},
		{"empty", DefaultConfig(), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var counter int64
			seen := make([]bool, tt.n)
			For(tt.n, func(i int) {
				atomic.AddInt64(&counter, 1)
				seen[i] = true
			}, tt.cfg)

			assert.Equal(t, int64(tt.n), counter)
			for i, ok := range seen {
				assert.True(t, ok, "index %d not visited", i)
			}
		})
	}
}

func TestForErrReturnsLowestIndex(t *testing.T) {
	cfg := Config{Enabled: true, NumWorkers: 8, MinChunkSize: 1}
	var ran int64

	err := ForErr(100, func(i int) error {
		atomic.AddInt64(&ran, 1)
		if i%30 == 29 {
			return fmt.Errorf("index %d", i)
		}
		return nil
	}, cfg)

	require.Error(t, err)
	assert.Equal(t, "index 29", err.Error())
	assert.Equal(t, int64(100), ran)
}

func TestForErrSuccess(t *testing.T) {
	out := make([]int, 50)
	err := ForErr(len(out), func(i int) error {
		out[i] = i * i
		return nil
	}, DefaultConfig())

	require.NoError(t, err)
	assert.Equal(t, 49*49, out[49])
}
