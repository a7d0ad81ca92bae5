package dialog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/idilsaglam/names/internal/list"
	"github.com/idilsaglam/names/internal/model"
	"github.com/idilsaglam/names/internal/store"
)

// fixture is an in-memory store with a list showing every record.
type fixture struct {
	store *store.Store
	list  *list.Controller
}

func newFixture(t require.TestingT) *fixture {
	s, err := store.Open(store.MemoryPath, store.Options{})
	require.NoError(t, err)
	c := list.New(s)
	require.NoError(t, c.SetFilter(context.Background(), ""))
	s.Flush()
	return &fixture{store: s, list: c}
}

func (f *fixture) close() {
	f.list.Close()
	_ = f.store.Close()
}

func (f *fixture) records() []model.Record {
	f.store.Flush()
	var out []model.Record
	for _, r := range f.list.Rows() {
		out = append(out, r.Record)
	}
	return out
}

var label = rapid.StringMatching(`[A-Za-z ]{1,8}`)

func TestAdd_GrowsByOne(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		f := newFixture(t)
		defer f.close()
		for _, s := range rapid.SliceOfN(label, 0, 4).Draw(t, "seed") {
			_, err := Add(context.Background(), f.store, s, s)
			require.NoError(t, err)
		}
		before := f.records()

		text, subtext := label.Draw(t, "text"), label.Draw(t, "subtext")
		ok, err := Add(context.Background(), f.store, text, subtext)
		require.NoError(t, err)
		require.True(t, ok)

		after := f.records()
		require.Len(t, after, len(before)+1)
		known := map[string]bool{}
		for _, r := range before {
			known[r.ID] = true
		}
		var added []model.Record
		for _, r := range after {
			if !known[r.ID] {
				added = append(added, r)
			}
		}
		require.Len(t, added, 1)
		assert.Equal(t, text, added[0].Text)
		assert.Equal(t, subtext, added[0].Subtext)
		assert.False(t, added[0].Completed)
	})
}

func TestDelete_RemovesExactlyOne(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		f := newFixture(t)
		defer f.close()
		for _, s := range rapid.SliceOfN(label, 1, 5).Draw(t, "seed") {
			_, err := Add(context.Background(), f.store, s, "d")
			require.NoError(t, err)
		}
		before := f.records()
		victim := before[rapid.IntRange(0, len(before)-1).Draw(t, "victim")]

		require.NoError(t, Delete(context.Background(), f.store, victim.ID))

		after := f.records()
		require.Len(t, after, len(before)-1)
		for _, r := range after {
			assert.NotEqual(t, victim.ID, r.ID)
		}
	})
}

func TestEdit_KeepsIdentity(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		f := newFixture(t)
		defer f.close()
		for _, s := range rapid.SliceOfN(label, 1, 5).Draw(t, "seed") {
			_, err := Add(context.Background(), f.store, s, "d")
			require.NoError(t, err)
		}
		before := f.records()
		i := rapid.IntRange(0, len(before)-1).Draw(t, "index")
		target := before[i]
		subtext := label.Draw(t, "subtext")

		// Same text keeps the sorted position.
		ok, err := Edit(context.Background(), f.store, target.ID, target.Text, subtext)
		require.NoError(t, err)
		require.True(t, ok)

		after := f.records()
		require.Len(t, after, len(before))
		assert.Equal(t, target.ID, after[i].ID)
		assert.Equal(t, subtext, after[i].Subtext)
	})
}

func TestAddEdit_DeclineEmpty(t *testing.T) {
	f := newFixture(t)
	defer f.close()
	ctx := context.Background()

	for _, tc := range [][2]string{{"", "x"}, {"x", ""}, {"", ""}} {
		ok, err := Add(ctx, f.store, tc[0], tc[1])
		require.NoError(t, err)
		assert.False(t, ok)
	}
	assert.Empty(t, f.records())

	ok, err := Add(ctx, f.store, "Anna", "x")
	require.NoError(t, err)
	require.True(t, ok)
	anna := f.records()[0]

	ok, err = Edit(ctx, f.store, anna.ID, "", "y")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, "x", f.records()[0].Subtext)
}

func TestEdit_DuplicateTextAllowed(t *testing.T) {
	f := newFixture(t)
	defer f.close()
	ctx := context.Background()
	_, err := Add(ctx, f.store, "Anna", "x")
	require.NoError(t, err)
	_, err = Add(ctx, f.store, "Beth", "y")
	require.NoError(t, err)
	beth := f.records()[1]

	ok, err := Edit(ctx, f.store, beth.ID, "Anna", "y")
	require.NoError(t, err)
	require.True(t, ok)
	rs := f.records()
	assert.Equal(t, "Anna", rs[0].Text)
	assert.Equal(t, "Anna", rs[1].Text)
}

func TestFlows_SurfaceStoreErrors(t *testing.T) {
	f := newFixture(t)
	defer f.close()
	ctx := context.Background()

	_, err := Edit(ctx, f.store, "missing", "a", "b")
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, Delete(ctx, f.store, "missing"), store.ErrNotFound)

	_, err = Add(ctx, failingWriter{}, "a", "b")
	var txErr *store.TransactionError
	assert.True(t, errors.As(err, &txErr))
}

type failingWriter struct{}

func (failingWriter) Write(context.Context, func(*store.Tx) error) error {
	return &store.TransactionError{Op: "commit", Err: errors.New("disk full")}
}
