// Package main provides the sprout CLI.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/born-ml/sprout/internal/activation"
	"github.com/born-ml/sprout/internal/dataset"
	"github.com/born-ml/sprout/internal/fileio"
	"github.com/born-ml/sprout/internal/imageio"
	"github.com/born-ml/sprout/internal/logging"
	"github.com/born-ml/sprout/internal/network"
	"github.com/born-ml/sprout/internal/tensor"
	"github.com/born-ml/sprout/internal/train"
)

const version = "v0.1.0-dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(os.Stderr, "sprout:", err)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		usage(stdout)
		return nil
	}
	switch args[0] {
	case "version":
		fmt.Fprintf(stdout, "sprout %s\n", version)
		return nil
	case "train":
		return runTrain(ctx, args[1:], stdout, stderr)
	case "export":
		return runExport(ctx, args[1:], stdout, stderr)
	case "help", "-h", "-help", "--help":
		usage(stdout)
		return nil
	default:
		usage(stderr)
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "sprout - online feed-forward neural networks")
	fmt.Fprintf(w, "Version: %s\n\n", version)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  version    Show version")
	fmt.Fprintln(w, "  train      Train and evaluate a network on MNIST or CIFAR-10")
	fmt.Fprintln(w, "  export     Write one dataset example as an image")
}

// datasetFlags are shared by train and export.
type datasetFlags struct {
	name  string
	dir   string
	limit int64
}

func (d *datasetFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&d.name, "dataset", "mnist", "dataset: mnist or cifar10")
	fs.StringVar(&d.dir, "data", "data", "directory holding the dataset files")
	fs.Int64Var(&d.limit, "max-bytes", fileio.DefaultLimit, "refuse dataset files larger than this")
}

func (d *datasetFlags) mnist(train bool, maxItems int) (*dataset.Dataset[*tensor.Matrix], string, error) {
	images, labels, err := dataset.MNISTFiles(d.dir, train)
	if err != nil {
		return nil, "", err
	}
	ds, err := dataset.LoadMNIST(images, labels, dataset.WithLimit(d.limit), dataset.WithMaxItems(maxItems))
	return ds, images, err
}

func (d *datasetFlags) cifar(ctx context.Context, train bool, maxItems int) (*dataset.Dataset[*tensor.Tensor], string, error) {
	paths, err := dataset.CIFAR10Files(d.dir, train)
	if err != nil {
		return nil, "", err
	}
	ds, err := dataset.LoadCIFAR10(ctx, paths, dataset.WithLimit(d.limit), dataset.WithMaxItems(maxItems))
	if err != nil {
		return nil, filepath.Dir(paths[0]), err
	}
	// The item cap applies per batch file.
	if maxItems > 0 {
		ds = ds.Head(maxItems)
	}
	return ds, filepath.Dir(paths[0]), nil
}

type trainFlags struct {
	data        datasetFlags
	model       string
	epochs      int
	lr          float64
	seed        uint64
	samples     int
	testSamples int
	holdout     float64
	initMin     float64
	initMax     float64
	act         string
	actFunc     activation.Func
	logLevel    string
	json        bool
	errors      int
}

func runTrain(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	var f trainFlags
	fs := flag.NewFlagSet("train", flag.ContinueOnError)
	fs.SetOutput(stderr)
	f.data.register(fs)
	fs.StringVar(&f.model, "model", "mlp", "network: mlp or cnn")
	fs.IntVar(&f.epochs, "epochs", 1, "training epochs")
	fs.Float64Var(&f.lr, "lr", 0.01, "learning rate")
	fs.Uint64Var(&f.seed, "seed", 1, "seed for weight init and shuffling")
	fs.IntVar(&f.samples, "samples", 0, "use at most this many training examples (0 = all)")
	fs.IntVar(&f.testSamples, "test-samples", 0, "use at most this many test examples (0 = all)")
	fs.Float64Var(&f.holdout, "holdout", 0.1, "fraction held out for evaluation when no test split exists")
	fs.Float64Var(&f.initMin, "init-min", -0.1, "lower bound of initial weights")
	fs.Float64Var(&f.initMax, "init-max", 0.1, "upper bound of initial weights")
	fs.StringVar(&f.act, "activation", "", "override the activation of the output layers (identity, relu, leaky_relu, sigmoid)")
	fs.StringVar(&f.logLevel, "log-level", "info", "debug, info, warn or error")
	fs.BoolVar(&f.json, "json", false, "log as JSON")
	fs.IntVar(&f.errors, "show-errors", 10, "print this many misclassified test indices")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if f.epochs <= 0 {
		return tensor.Logicf("train: -epochs must be positive, got %d", f.epochs)
	}
	if f.initMin >= f.initMax {
		return tensor.Logicf("train: -init-min %g must be below -init-max %g", f.initMin, f.initMax)
	}

	if f.act != "" {
		act, err := activation.Parse(f.act)
		if err != nil {
			return tensor.Logicf("train: -activation: %v", err)
		}
		f.actFunc = act
	}

	level, err := logging.ParseLevel(f.logLevel)
	if err != nil {
		return tensor.Logicf("train: -log-level: %v", err)
	}
	logger := logging.NewTextLogger(stderr, level)
	if f.json {
		logger = logging.NewJSONLogger(stderr, level)
	}
	logger = logger.WithDataset(f.data.name).WithNetwork(f.model)

	switch strings.ToLower(f.data.name) {
	case "mnist":
		trainSet, path, err := f.data.mnist(true, f.samples)
		logger.LogDataset(ctx, path, lenOf(trainSet), err)
		if err != nil {
			return err
		}
		testSet := loadMNISTTest(ctx, &f, logger)
		switch f.model {
		case "mlp":
			net, err := network.NewMLP[*tensor.Matrix](f.mlpConfig(trainSet.Classes()))
			if err != nil {
				return err
			}
			return fitAndEvaluate[*tensor.Matrix](ctx, &f, logger, stdout, net, trainSet, testSet)
		case "cnn":
			net, err := network.NewMatrixConvNet(f.convConfig(network.DefaultConvConfig()))
			if err != nil {
				return err
			}
			return fitAndEvaluate[*tensor.Matrix](ctx, &f, logger, stdout, net, trainSet, testSet)
		}
	case "cifar10", "cifar-10":
		if f.model != "cnn" {
			return tensor.Logicf("train: cifar10 supports only -model cnn, got %q", f.model)
		}
		trainSet, path, err := f.data.cifar(ctx, true, f.samples)
		logger.LogDataset(ctx, path, lenOf(trainSet), err)
		if err != nil {
			return err
		}
		var testSet *dataset.Dataset[*tensor.Tensor]
		if ds, path, err := f.data.cifar(ctx, false, f.testSamples); err == nil {
			logger.LogDataset(ctx, path, ds.Len(), nil)
			testSet = ds
		}
		net, err := network.NewTensorConvNet(f.convConfig(network.DefaultCIFARConfig()))
		if err != nil {
			return err
		}
		return fitAndEvaluate[*tensor.Tensor](ctx, &f, logger, stdout, net, trainSet, testSet)
	default:
		return tensor.Logicf("train: unknown dataset %q", f.data.name)
	}
	return tensor.Logicf("train: unknown model %q", f.model)
}

func loadMNISTTest(ctx context.Context, f *trainFlags, logger *logging.Logger) *dataset.Dataset[*tensor.Matrix] {
	ds, path, err := f.data.mnist(false, f.testSamples)
	if err != nil {
		logger.Debug("no test split, holding out training examples", "error", err)
		return nil
	}
	logger.LogDataset(ctx, path, ds.Len(), nil)
	return ds
}

func (f *trainFlags) mlpConfig(classes int) network.MLPConfig {
	cfg := network.DefaultMLPConfig()
	cfg.Outputs = classes
	cfg.LearningRate = float32(f.lr)
	if f.act != "" {
		cfg.Activation = f.actFunc
	}
	return cfg
}

func (f *trainFlags) convConfig(cfg network.ConvConfig) network.ConvConfig {
	cfg.LearningRate = float32(f.lr)
	if f.act != "" {
		cfg.Activation = f.actFunc
	}
	return cfg
}

// fitAndEvaluate trains net on trainSet and reports accuracy on testSet,
// or on a held out tail of trainSet when testSet is nil.
func fitAndEvaluate[D any](
	ctx context.Context,
	f *trainFlags,
	logger *logging.Logger,
	stdout io.Writer,
	net network.Classifier[D],
	trainSet, testSet *dataset.Dataset[D],
) error {
	rng := tensor.NewRNG(f.seed)
	net.InitWeights(rng, float32(f.initMin), float32(f.initMax))

	if testSet == nil {
		trainSet.Shuffle(rng)
		trainSet, testSet = trainSet.Split(1 - f.holdout)
	}

	tr := train.New[D](net,
		train.WithEpochs(f.epochs),
		train.WithShuffle(rng),
		train.WithLogger(logger),
	)
	history, err := tr.Fit(ctx, trainSet)
	if err != nil {
		return err
	}
	for _, s := range history {
		fmt.Fprintf(stdout, "epoch %d: %d examples, loss %.4f ± %.4f (min %.4f, max %.4f) in %s\n",
			s.Epoch, s.Examples, s.MeanLoss, s.StdLoss, s.MinLoss, s.MaxLoss, s.Elapsed.Round(time.Millisecond))
	}

	if testSet.Len() == 0 {
		fmt.Fprintln(stdout, "no evaluation examples")
		return nil
	}
	ev, err := tr.Evaluate(ctx, testSet)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "accuracy: %d/%d (%.2f%%)\n", ev.Correct, ev.Total, 100*ev.Accuracy)
	if errs := ev.Errors(f.errors); len(errs) > 0 {
		fmt.Fprintf(stdout, "misclassified: %v\n", errs)
	}
	return nil
}

func lenOf[D any](ds *dataset.Dataset[D]) int {
	if ds == nil {
		return 0
	}
	return ds.Len()
}

func runExport(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	var (
		data  datasetFlags
		index int
		out   string
		test  bool
	)
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	fs.SetOutput(stderr)
	data.register(fs)
	fs.IntVar(&index, "index", 0, "example index")
	fs.StringVar(&out, "out", "", "output image (.png or .jpg, optionally compressed)")
	fs.BoolVar(&test, "test", false, "read the test split instead of the training split")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if out == "" {
		return tensor.Logicf("export: -out is required")
	}
	if index < 0 {
		return tensor.Logicf("export: -index must not be negative, got %d", index)
	}

	var (
		label string
		err   error
	)
	switch strings.ToLower(data.name) {
	case "mnist":
		ds, _, lerr := data.mnist(!test, index+1)
		if lerr != nil {
			return lerr
		}
		if index >= ds.Len() {
			return tensor.Logicf("export: index %d out of range [0, %d)", index, ds.Len())
		}
		item := ds.At(index)
		if err = imageio.SaveMatrix(out, item.Data()); err != nil {
			return err
		}
		label, err = ds.LabelName(item.Label())
	case "cifar10", "cifar-10":
		ds, _, lerr := data.cifar(ctx, !test, index+1)
		if lerr != nil {
			return lerr
		}
		if index >= ds.Len() {
			return tensor.Logicf("export: index %d out of range [0, %d)", index, ds.Len())
		}
		item := ds.At(index)
		if err = imageio.SaveTensor(out, item.Data()); err != nil {
			return err
		}
		label, err = ds.LabelName(item.Label())
	default:
		return tensor.Logicf("export: unknown dataset %q", data.name)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "%s: example %d, label %s\n", out, index, label)
	return nil
}
