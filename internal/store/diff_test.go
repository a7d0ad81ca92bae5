package store

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/idilsaglam/names/internal/model"
)

func recs(ids ...string) []model.Record {
	out := make([]model.Record, len(ids))
	for i, s := range ids {
		out[i] = model.Record{ID: s, Text: s, Subtext: "-"}
	}
	return out
}

func TestCompute_Basic(t *testing.T) {
	old := recs("a", "b", "c")
	next := recs("a", "c", "d")
	next[0].Subtext = "changed"

	d := Compute(old, next)
	assert.Equal(t, []int{1}, d.Deletions)
	assert.Equal(t, []int{2}, d.Insertions)
	assert.Equal(t, []int{0}, d.Modifications)
	assert.Equal(t, next, ApplyDiff(old, d, next))
}

func TestCompute_MoveIsDeleteInsert(t *testing.T) {
	old := recs("a", "b", "c")
	next := []model.Record{old[1], old[2], old[0]}

	d := Compute(old, next)
	assert.Equal(t, []int{0}, d.Deletions)
	assert.Equal(t, []int{2}, d.Insertions)
	assert.Empty(t, d.Modifications)
	assert.Equal(t, next, ApplyDiff(old, d, next))
}

func TestCompute_NoChange(t *testing.T) {
	old := recs("a", "b")
	assert.True(t, Compute(old, recs("a", "b")).Empty())
	assert.True(t, Compute(nil, nil).Empty())
}

func TestCompute_OverlappingIndexes(t *testing.T) {
	// Position 1 is both deleted (old "b") and inserted (new "x").
	old := recs("a", "b", "c")
	next := recs("a", "x", "c")
	d := Compute(old, next)
	assert.Equal(t, []int{1}, d.Deletions)
	assert.Equal(t, []int{1}, d.Insertions)
	assert.Equal(t, next, ApplyDiff(old, d, next))
}

func TestLongestIncreasing(t *testing.T) {
	keep := longestIncreasing([]int{3, 0, 1, 4, 2})
	var picked []int
	for i, k := range keep {
		if k {
			picked = append(picked, []int{3, 0, 1, 4, 2}[i])
		}
	}
	assert.Len(t, picked, 3)
	for i := 1; i < len(picked); i++ {
		assert.Less(t, picked[i-1], picked[i])
	}
}

func snapshotGen() *rapid.Generator[[]model.Record] {
	return rapid.Custom(func(t *rapid.T) []model.Record {
		ids := rapid.SliceOfNDistinct(rapid.IntRange(0, 20), 0, 12, rapid.ID[int]).Draw(t, "ids")
		out := make([]model.Record, len(ids))
		for i, id := range ids {
			out[i] = model.Record{
				ID:      fmt.Sprint(id),
				Text:    fmt.Sprint(id),
				Subtext: rapid.SampledFrom([]string{"x", "y"}).Draw(t, "subtext"),
			}
		}
		return out
	})
}

func TestApplyDiff_ReproducesNext(t *testing.T) {
	gen := snapshotGen()
	rapid.Check(t, func(t *rapid.T) {
		old := gen.Draw(t, "old")
		next := gen.Draw(t, "next")
		d := Compute(old, next)
		got := ApplyDiff(old, d, next)
		if len(next) == 0 {
			if len(got) != 0 {
				t.Fatalf("got %v, want empty", got)
			}
			return
		}
		assert.Equal(t, next, got)
		// Deleted old rows and inserted new rows balance the sizes.
		assert.Equal(t, len(next), len(old)-len(d.Deletions)+len(d.Insertions))
	})
}
