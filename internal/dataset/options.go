package dataset

import "github.com/born-ml/sprout/internal/fileio"

type options struct {
	limit      int64
	limitItems int
}

// Option configures a loader.
type Option func(*options)

// WithLimit caps the decoded size of every file read by the loader. Larger
// files fail with a tensor.ErrMemory error.
func WithLimit(n int64) Option {
	return func(o *options) {
		o.limit = n
	}
}

// WithMaxItems keeps at most n items per file. n <= 0 keeps everything.
func WithMaxItems(n int) Option {
	return func(o *options) {
		o.limitItems = n
	}
}

func applyOptions(opts []Option) options {
	o := options{limit: fileio.DefaultLimit}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o options) maxItems(available int) int {
	if o.limitItems <= 0 || o.limitItems > available {
		return available
	}
	return o.limitItems
}
