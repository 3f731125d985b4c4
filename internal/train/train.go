// Package train drives online training and evaluation of a classifier over
// a dataset.
//
// Example:
//
//	tr := train.New(net, train.WithEpochs(3), train.WithShuffle(rng), train.WithLogger(log))
//	stats, err := tr.Fit(ctx, trainSet)
//	eval, err := tr.Evaluate(ctx, testSet)
package train

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/born-ml/sprout/internal/dataset"
	"github.com/born-ml/sprout/internal/logging"
	"github.com/born-ml/sprout/internal/network"
	"github.com/born-ml/sprout/internal/tensor"
)

// DefaultProgressInterval is the minimum time between two progress logs.
const DefaultProgressInterval = 5 * time.Second

type config struct {
	epochs   int
	logger   *logging.Logger
	rng      *tensor.RNG
	progress time.Duration
}

// Option configures a Trainer.
type Option func(*config)

// WithEpochs sets the number of passes over the training set (default 1).
func WithEpochs(n int) Option {
	return func(c *config) {
		c.epochs = n
	}
}

// WithLogger sets the logger. If nil is passed, logging is disabled.
func WithLogger(l *logging.Logger) Option {
	return func(c *config) {
		if l == nil {
			l = logging.NoopLogger()
		}
		c.logger = l
	}
}

// WithShuffle reshuffles the training set with rng before every epoch.
func WithShuffle(rng *tensor.RNG) Option {
	return func(c *config) {
		c.rng = rng
	}
}

// WithProgressInterval sets the minimum time between two progress logs.
func WithProgressInterval(d time.Duration) Option {
	return func(c *config) {
		c.progress = d
	}
}

// EpochStats summarizes the per-example losses of one epoch.
type EpochStats struct {
	Epoch    int
	Examples int
	MeanLoss float64
	StdLoss  float64
	MinLoss  float64
	MaxLoss  float64
	Elapsed  time.Duration
}

// Trainer runs online training of one network.
type Trainer[D any] struct {
	net network.Classifier[D]
	cfg config
}

// New creates a Trainer for net.
func New[D any](net network.Classifier[D], opts ...Option) *Trainer[D] {
	cfg := config{
		epochs:   1,
		logger:   logging.NoopLogger(),
		progress: DefaultProgressInterval,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Trainer[D]{net: net, cfg: cfg}
}

// Fit trains the network on ds, one online step per item, for the
// configured number of epochs.
//
// With WithShuffle the order of ds is changed in place before every epoch.
// The context is checked between examples. The first failing example
// aborts training and its error is returned together with the statistics
// of the completed epochs.
func (t *Trainer[D]) Fit(ctx context.Context, ds *dataset.Dataset[D]) ([]EpochStats, error) {
	if ds.Len() == 0 {
		return nil, tensor.Logicf("train: empty dataset")
	}
	progress := &rate.Sometimes{First: 1, Interval: t.cfg.progress}
	history := make([]EpochStats, 0, t.cfg.epochs)
	losses := make([]float64, 0, ds.Len())

	for epoch := 1; epoch <= t.cfg.epochs; epoch++ {
		if t.cfg.rng != nil {
			ds.Shuffle(t.cfg.rng)
		}
		start := time.Now()
		losses = losses[:0]

		for i, item := range ds.All() {
			if err := ctx.Err(); err != nil {
				return history, err
			}
			loss, err := network.Step(t.net, item.Data(), item.Target())
			if err != nil {
				return history, fmt.Errorf("train: epoch %d, example %d: %w", epoch, i, err)
			}
			losses = append(losses, float64(loss))
			progress.Do(func() {
				t.cfg.logger.LogProgress(ctx, epoch, i+1, ds.Len(), float64(loss))
			})
		}

		s := summarize(losses)
		s.Epoch = epoch
		s.Elapsed = time.Since(start)
		history = append(history, s)
		t.cfg.logger.LogEpoch(ctx, s.Epoch, s.Examples, s.MeanLoss, s.StdLoss, s.Elapsed)
	}
	return history, nil
}

func summarize(losses []float64) EpochStats {
	s := EpochStats{Examples: len(losses)}
	if len(losses) == 0 {
		return s
	}
	s.MinLoss = floats.Min(losses)
	s.MaxLoss = floats.Max(losses)
	if len(losses) == 1 {
		s.MeanLoss = losses[0]
		return s
	}
	s.MeanLoss, s.StdLoss = stat.MeanStdDev(losses, nil)
	return s
}
