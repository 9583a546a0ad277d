package sequencer

import (
	"math/rand"
	"testing"
	"time"

	"github.com/OpenFogStack/enoki/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2024, 1, 10, 10, 0, 0, 0, time.UTC)

func op(ms int, xpair string) model.Operation {
	return model.Operation{Timestamp: base.Add(time.Duration(ms) * time.Millisecond), XPair: xpair}
}

func TestSortOrdersByTimestamp(t *testing.T) {
	ops := []model.Operation{op(30, "c"), op(10, "a"), op(20, "b")}
	Sort(ops)

	assert.Equal(t, "a", ops[0].XPair)
	assert.Equal(t, "b", ops[1].XPair)
	assert.Equal(t, "c", ops[2].XPair)
}

func TestSortIsStableForTies(t *testing.T) {
	ops := []model.Operation{op(10, "first"), op(5, "early"), op(10, "second"), op(10, "third")}
	Sort(ops)

	got := make([]string, len(ops))
	for i, o := range ops {
		got[i] = o.XPair
	}
	assert.Equal(t, []string{"early", "first", "second", "third"}, got)
}

func TestSortKeepsDuplicates(t *testing.T) {
	ops := []model.Operation{op(10, "p"), op(10, "p")}
	Sort(ops)
	assert.Len(t, ops, 2)
}

func TestSortOrderingProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	ops := make([]model.Operation, 500)
	for i := range ops {
		ops[i] = op(rng.Intn(50), "")
		ops[i].XExecution = string(rune('A' + i%26))
		ops[i].XContext = time.Duration(i).String() // extraction index
	}
	index := make(map[string]int, len(ops))
	for i, o := range ops {
		index[o.XContext] = i
	}

	Sort(ops)

	for i := 1; i < len(ops); i++ {
		a, b := ops[i-1], ops[i]
		require.False(t, b.Timestamp.Before(a.Timestamp), "out of order at %d", i)
		if a.Timestamp.Equal(b.Timestamp) {
			require.Less(t, index[a.XContext], index[b.XContext], "tie reordered at %d", i)
		}
	}
}

func TestMergeAcrossSources(t *testing.T) {
	fromA := []model.Operation{op(10, "a1"), op(30, "a2")}
	fromB := []model.Operation{op(10, "b1"), op(20, "b2")}

	merged := Merge(fromA, fromB)
	require.Len(t, merged, 4)

	got := []string{merged[0].XPair, merged[1].XPair, merged[2].XPair, merged[3].XPair}
	assert.Equal(t, []string{"a1", "b1", "b2", "a2"}, got)
}
