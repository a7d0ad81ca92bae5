package store

import (
	"sort"

	"github.com/idilsaglam/names/internal/model"
)

// Diff describes how one snapshot became the next.
//
// Deletions index the old snapshot; Insertions and Modifications index
// the new one. All three are sorted ascending. Applying deletions in
// descending order, then insertions in ascending order, turns the old
// snapshot into the new one; Modifications then name rows whose content
// changed in place.
type Diff struct {
	Deletions     []int
	Insertions    []int
	Modifications []int
}

// Empty reports whether nothing changed.
func (d Diff) Empty() bool {
	return len(d.Deletions) == 0 && len(d.Insertions) == 0 && len(d.Modifications) == 0
}

// Compute diffs two snapshots by record ID. Records that survive but
// change relative order are reported as a deletion plus an insertion;
// the largest set of survivors that keeps its order stays in place.
func Compute(old, next []model.Record) Diff {
	pos := make(map[string]int, len(next))
	for j, r := range next {
		pos[r.ID] = j
	}

	var d Diff
	var oldIdx, newIdx []int
	for i, r := range old {
		j, ok := pos[r.ID]
		if !ok {
			d.Deletions = append(d.Deletions, i)
			continue
		}
		oldIdx = append(oldIdx, i)
		newIdx = append(newIdx, j)
	}

	stays := make([]bool, len(next))
	keep := longestIncreasing(newIdx)
	for k := range oldIdx {
		i, j := oldIdx[k], newIdx[k]
		if keep[k] {
			stays[j] = true
			if !old[i].SameFields(next[j]) {
				d.Modifications = append(d.Modifications, j)
			}
			continue
		}
		d.Deletions = append(d.Deletions, i)
	}
	for j := range next {
		if !stays[j] {
			d.Insertions = append(d.Insertions, j)
		}
	}
	sort.Ints(d.Deletions)
	sort.Ints(d.Modifications)
	return d
}

// longestIncreasing marks one longest strictly increasing subsequence
// of xs.
func longestIncreasing(xs []int) []bool {
	keep := make([]bool, len(xs))
	if len(xs) == 0 {
		return keep
	}
	// tails[l] is the index in xs of the smallest tail of an increasing
	// run of length l+1.
	tails := make([]int, 0, len(xs))
	prev := make([]int, len(xs))
	for i, x := range xs {
		l := sort.Search(len(tails), func(k int) bool { return xs[tails[k]] >= x })
		if l > 0 {
			prev[i] = tails[l-1]
		} else {
			prev[i] = -1
		}
		if l == len(tails) {
			tails = append(tails, i)
		} else {
			tails[l] = i
		}
	}
	for i := tails[len(tails)-1]; i >= 0; i = prev[i] {
		keep[i] = true
	}
	return keep
}

// ApplyDiff replays d against old and returns the new sequence. next is
// the snapshot d was computed against; inserted and modified rows are
// taken from it. When d came from Compute(old, next) the result equals
// next.
func ApplyDiff[T any](old []T, d Diff, next []T) []T {
	out := append([]T(nil), old...)
	for k := len(d.Deletions) - 1; k >= 0; k-- {
		i := d.Deletions[k]
		out = append(out[:i], out[i+1:]...)
	}
	for _, j := range d.Insertions {
		out = append(out, *new(T))
		copy(out[j+1:], out[j:])
		out[j] = next[j]
	}
	for _, j := range d.Modifications {
		out[j] = next[j]
	}
	return out
}
