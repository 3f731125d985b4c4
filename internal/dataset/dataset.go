// Package dataset holds labelled examples and loads the MNIST and CIFAR-10
// binary formats.
//
// A Dataset is an ordered, finite and restartable sequence of Items. Every
// Item owns its data and a one-hot target; neither is modified after
// loading.
package dataset

import (
	"iter"

	"github.com/born-ml/sprout/internal/tensor"
)

// Item is one labelled example.
type Item[D any] struct {
	data   D
	target *tensor.Vector
	label  int
}

// NewItem creates an item whose target is the one-hot encoding of label
// over classes.
func NewItem[D any](data D, label, classes int) (*Item[D], error) {
	target, err := tensor.OneHot(classes, label)
	if err != nil {
		return nil, err
	}
	return &Item[D]{data: data, target: target, label: label}, nil
}

// Data returns the example. It must not be modified.
func (it *Item[D]) Data() D { return it.data }

// Target returns the one-hot target. It must not be modified.
func (it *Item[D]) Target() *tensor.Vector { return it.target }

// Label returns the class index.
func (it *Item[D]) Label() int { return it.label }

// Dataset is an ordered collection of items sharing one label set.
type Dataset[D any] struct {
	items  []*Item[D]
	labels []string
}

// New creates a dataset over items with the given label names.
func New[D any](labels []string, items ...*Item[D]) *Dataset[D] {
	return &Dataset[D]{items: items, labels: labels}
}

// Len returns the number of items.
func (d *Dataset[D]) Len() int { return len(d.items) }

// At returns item i. It panics with a numeric error when i is out of range.
func (d *Dataset[D]) At(i int) *Item[D] {
	if i < 0 || i >= len(d.items) {
		panic(tensor.Numericf("dataset: index %d out of range [0, %d)", i, len(d.items)))
	}
	return d.items[i]
}

// All iterates the items in order. The sequence can be ranged over any
// number of times.
func (d *Dataset[D]) All() iter.Seq2[int, *Item[D]] {
	return func(yield func(int, *Item[D]) bool) {
		for i, it := range d.items {
			if !yield(i, it) {
				return
			}
		}
	}
}

// Append adds items at the end.
func (d *Dataset[D]) Append(items ...*Item[D]) {
	d.items = append(d.items, items...)
}

// Shuffle reorders the items with rng.
func (d *Dataset[D]) Shuffle(rng *tensor.RNG) {
	perm := rng.Perm(len(d.items))
	shuffled := make([]*Item[D], len(d.items))
	for i, j := range perm {
		shuffled[i] = d.items[j]
	}
	d.items = shuffled
}

// Split returns the first fraction of the items and the rest as two
// datasets sharing the same items. fraction is clamped to [0, 1].
func (d *Dataset[D]) Split(fraction float64) (*Dataset[D], *Dataset[D]) {
	fraction = min(max(fraction, 0), 1)
	n := int(fraction * float64(len(d.items)))
	return New(d.labels, d.items[:n:n]...), New(d.labels, d.items[n:]...)
}

// Head returns a dataset with at most the first n items.
func (d *Dataset[D]) Head(n int) *Dataset[D] {
	n = min(max(n, 0), len(d.items))
	return New(d.labels, d.items[:n:n]...)
}

// Classes returns the number of labels.
func (d *Dataset[D]) Classes() int { return len(d.labels) }

// Labels returns the label names.
func (d *Dataset[D]) Labels() []string { return d.labels }

// LabelName returns the name of class label.
func (d *Dataset[D]) LabelName(label int) (string, error) {
	if label < 0 || label >= len(d.labels) {
		return "", tensor.Numericf("dataset: label %d out of range [0, %d)", label, len(d.labels))
	}
	return d.labels[label], nil
}

// Counts returns the number of items of each label.
func (d *Dataset[D]) Counts() []int {
	counts := make([]int, len(d.labels))
	for _, it := range d.items {
		if it.label < len(counts) {
			counts[it.label]++
		}
	}
	return counts
}
