// Package list keeps a displayed row set in step with a live query.
//
// A Controller owns at most one subscription. Changing the filter drops
// the old subscription and starts a new one; events are tagged with a
// generation so anything still in flight from an old query is ignored.
package list

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/idilsaglam/names/internal/filter"
	"github.com/idilsaglam/names/internal/model"
	"github.com/idilsaglam/names/internal/store"
)

// ErrClosed is returned by SetFilter after Close.
var ErrClosed = errors.New("list closed")

// Source issues live queries. *store.Store satisfies it.
type Source interface {
	Observe(ctx context.Context, p filter.Predicate, fn func(store.Change)) (store.Subscription, error)
}

// Event is a store change tagged with the subscription generation that
// produced it.
type Event struct {
	Gen uint64
	store.Change
}

// Batch tells a display how to animate an applied event. Reload means
// redraw everything; otherwise the embedded Diff indexes follow the
// store.Diff conventions.
type Batch struct {
	Reload bool
	store.Diff
}

// Row is a displayed record with the label ranges to highlight.
type Row struct {
	model.Record
	TextHighlights    []filter.Range
	SubtextHighlights []filter.Range
}

// Option configures a Controller.
type Option func(*Controller)

// WithMode selects the search predicate variant.
func WithMode(m filter.Mode) Option {
	return func(c *Controller) { c.mode = m }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.log = l
		}
	}
}

// WithDispatch routes events somewhere other than straight into Apply,
// e.g. onto a UI event loop that later calls Apply itself.
func WithDispatch(fn func(Event)) Option {
	return func(c *Controller) { c.dispatch = fn }
}

// Controller maintains the rows shown for the current search.
type Controller struct {
	src      Source
	mode     filter.Mode
	log      *slog.Logger
	dispatch func(Event)

	mu     sync.Mutex
	gen    uint64
	sub    store.Subscription
	search string
	hl     *filter.Highlighter
	rows   []model.Record
	closed bool
}

// New returns a Controller reading from src. Call SetFilter to start.
func New(src Source, opts ...Option) *Controller {
	c := &Controller{src: src, log: slog.Default()}
	for _, o := range opts {
		o(c)
	}
	if c.dispatch == nil {
		c.dispatch = func(ev Event) { c.Apply(ev) }
	}
	return c
}

// SetFilter replaces the active query with one for raw search input.
// The previous subscription is invalidated before the new one starts.
func (c *Controller) SetFilter(ctx context.Context, raw string) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.sub != nil && raw == c.search {
		c.mu.Unlock()
		return nil
	}
	old := c.sub
	c.sub = nil
	c.gen++
	gen := c.gen
	c.search = raw
	hl, err := filter.NewHighlighter(raw)
	if err != nil {
		c.log.Debug("search term is not a pattern, highlighting off", "query", raw, "err", err)
	}
	c.hl = hl
	c.mu.Unlock()

	if old != nil {
		old.Invalidate()
	}

	p := filter.Build(raw, c.mode)
	c.log.Debug("filter changed", "query", raw, "predicate", p.String(), "gen", gen)
	sub, err := c.src.Observe(ctx, p, func(ch store.Change) {
		c.dispatch(Event{Gen: gen, Change: ch})
	})
	if err != nil {
		return fmt.Errorf("observe %q: %w", raw, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.gen != gen {
		// Superseded while subscribing.
		sub.Invalidate()
		return nil
	}
	c.sub = sub
	return nil
}

// Apply folds ev into the rows. It reports false, and changes nothing,
// when ev belongs to a replaced query or the controller is closed.
func (c *Controller) Apply(ev Event) (Batch, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || ev.Gen != c.gen {
		c.log.Debug("dropping stale event", "gen", ev.Gen, "current", c.gen)
		return Batch{}, false
	}
	if ev.Kind == store.Initial {
		c.rows = append([]model.Record(nil), ev.Records...)
		return Batch{Reload: true}, true
	}
	c.rows = store.ApplyDiff(c.rows, ev.Diff, ev.Records)
	c.log.Debug("applied batch",
		"deletions", ev.Deletions,
		"insertions", ev.Insertions,
		"modifications", ev.Modifications)
	return Batch{Diff: ev.Diff}, true
}

// Filter returns the current raw search input.
func (c *Controller) Filter() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.search
}

// Filtering reports whether a non-empty search is active.
func (c *Controller) Filtering() bool { return c.Filter() != "" }

// Len returns the number of displayed rows.
func (c *Controller) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.rows)
}

// Record returns the record displayed at i.
func (c *Controller) Record(i int) (model.Record, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i < 0 || i >= len(c.rows) {
		return model.Record{}, false
	}
	return c.rows[i], true
}

// Row returns the displayed row at i with its highlights.
func (c *Controller) Row(i int) (Row, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i < 0 || i >= len(c.rows) {
		return Row{}, false
	}
	return c.row(c.rows[i]), true
}

// Rows returns every displayed row.
func (c *Controller) Rows() []Row {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Row, len(c.rows))
	for i, r := range c.rows {
		out[i] = c.row(r)
	}
	return out
}

func (c *Controller) row(r model.Record) Row {
	row := Row{Record: r}
	if c.search != "" {
		row.TextHighlights = c.hl.Ranges(r.Text)
		row.SubtextHighlights = c.hl.Ranges(r.Subtext)
	}
	return row
}

// Close invalidates the active subscription. Events arriving later are
// dropped.
func (c *Controller) Close() {
	c.mu.Lock()
	sub := c.sub
	c.sub = nil
	c.closed = true
	c.mu.Unlock()
	if sub != nil {
		sub.Invalidate()
	}
}
