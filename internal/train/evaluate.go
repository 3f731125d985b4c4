package train

import (
	"context"
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/born-ml/sprout/internal/dataset"
	"github.com/born-ml/sprout/internal/network"
)

// Evaluation is the result of classifying every item of a dataset.
type Evaluation struct {
	Total    int
	Correct  int
	Accuracy float64

	// Misclassified holds the dataset indices of wrongly classified items.
	Misclassified *roaring.Bitmap

	// Confusion[label][predicted] counts items per true and predicted class.
	Confusion [][]int
}

// Evaluate classifies every item of ds without updating the network.
func (t *Trainer[D]) Evaluate(ctx context.Context, ds *dataset.Dataset[D]) (*Evaluation, error) {
	classes := max(ds.Classes(), t.net.Output().Len())
	ev := &Evaluation{
		Misclassified: roaring.New(),
		Confusion:     make([][]int, classes),
	}
	for i := range ev.Confusion {
		ev.Confusion[i] = make([]int, classes)
	}

	for i, item := range ds.All() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		got, err := network.Classify(t.net, item.Data())
		if err != nil {
			return nil, fmt.Errorf("evaluate: example %d: %w", i, err)
		}
		ev.Total++
		if got.Index == item.Label() {
			ev.Correct++
		} else {
			ev.Misclassified.Add(uint32(i))
		}
		if item.Label() < classes && got.Index >= 0 && got.Index < classes {
			ev.Confusion[item.Label()][got.Index]++
		}
	}
	if ev.Total > 0 {
		ev.Accuracy = float64(ev.Correct) / float64(ev.Total)
	}
	t.cfg.logger.LogEvaluation(ctx, ev.Total, ev.Correct, ev.Accuracy)
	return ev, nil
}

// Errors returns up to n misclassified dataset indices in ascending order.
func (e *Evaluation) Errors(n int) []int {
	if n <= 0 {
		return nil
	}
	out := make([]int, 0, min(n, int(e.Misclassified.GetCardinality())))
	it := e.Misclassified.Iterator()
	for it.HasNext() && len(out) < n {
		out = append(out, int(it.Next()))
	}
	return out
}
