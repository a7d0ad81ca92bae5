package store

import (
	"context"
	"sync/atomic"

	"github.com/idilsaglam/names/internal/filter"
	"github.com/idilsaglam/names/internal/model"
)

// ChangeKind tells an observer what a Change carries.
type ChangeKind int

const (
	// Initial carries the full snapshot; it is always delivered first.
	Initial ChangeKind = iota
	// Update carries the new snapshot plus the diff from the previous one.
	Update
)

func (k ChangeKind) String() string {
	if k == Update {
		return "update"
	}
	return "initial"
}

// Change is one notification for an observed result set.
// Records is the snapshot after the change, owned by the receiver.
type Change struct {
	Kind    ChangeKind
	Records []model.Record
	Diff
}

// Subscription is the handle returned by Observe.
type Subscription interface {
	// Invalidate stops delivery: no callback starts after it returns. A
	// callback already running on the delivery goroutine is not waited
	// for. It is idempotent and may be called from inside the callback.
	Invalidate()
}

// Results is a live, text-sorted view over the records matching a
// predicate. While observed it is re-evaluated after every commit.
type Results struct {
	store *Store
	pred  filter.Predicate

	// guarded by store.refreshMu
	records []model.Record
	subs    []*subscription
}

// Records returns a copy of the current snapshot.
func (r *Results) Records() []model.Record {
	r.store.refreshMu.Lock()
	defer r.store.refreshMu.Unlock()
	return clone(r.records)
}

// Observe registers fn for this view's changes. fn is called on the
// store's delivery goroutine: first with an Initial change, then with an
// Update for every commit that alters the view. Calls never overlap.
func (r *Results) Observe(fn func(Change)) Subscription {
	s := r.store
	sub := &subscription{results: r, fn: fn}
	sub.active.Store(true)

	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()
	if _, ok := s.live[r]; !ok && !s.writing.Load() {
		// The snapshot may predate commits made before the first observer.
		// During a write the connection is busy; the write refreshes every
		// live set when it ends.
		if all, err := s.loadAll(context.Background()); err == nil {
			r.records = apply(r.pred, all)
		} else {
			s.log.Warn("reload before observe", "err", err)
		}
	}
	s.live[r] = struct{}{}
	r.subs = append(r.subs, sub)
	snapshot := clone(r.records)
	s.events.post(func() {
		if sub.active.Load() {
			sub.fn(Change{Kind: Initial, Records: snapshot})
		}
	})
	return sub
}

// post queues ch for every active subscriber. Caller holds refreshMu.
func (r *Results) post(ch Change) {
	for _, sub := range r.subs {
		c := ch
		c.Records = clone(ch.Records)
		r.store.events.post(func() {
			if sub.active.Load() {
				sub.fn(c)
			}
		})
	}
}

type subscription struct {
	results *Results
	fn      func(Change)
	active  atomic.Bool
}

func (s *subscription) Invalidate() {
	if !s.active.CompareAndSwap(true, false) {
		return
	}
	r := s.results
	st := r.store
	st.refreshMu.Lock()
	defer st.refreshMu.Unlock()
	for i, other := range r.subs {
		if other == s {
			r.subs = append(r.subs[:i], r.subs[i+1:]...)
			break
		}
	}
	if len(r.subs) == 0 {
		delete(st.live, r)
	}
}

func clone(rs []model.Record) []model.Record {
	if rs == nil {
		return []model.Record{}
	}
	return append([]model.Record(nil), rs...)
}
