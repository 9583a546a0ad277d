// Package sequencer establishes the total order the aggregator relies on.
package sequencer

import (
	"slices"

	"github.com/OpenFogStack/enoki/internal/model"
)

// Sort orders ops by timestamp ascending in place. The sort is stable:
// operations with equal timestamps keep their extraction order. Duplicates
// are passed through.
func Sort(ops []model.Operation) {
	slices.SortStableFunc(ops, func(a, b model.Operation) int {
		return a.Timestamp.Compare(b.Timestamp)
	})
}

// Merge concatenates per-source sequences in the given order and sorts the
// result, so ties across sources resolve by source order first.
func Merge(seqs ...[]model.Operation) []model.Operation {
	var n int
	for _, s := range seqs {
		n += len(s)
	}

	out := make([]model.Operation, 0, n)
	for _, s := range seqs {
		out = append(out, s...)
	}
	Sort(out)
	return out
}
