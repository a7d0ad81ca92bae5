// Package store is the embedded record database behind the list.
//
// Store wraps a pure-Go SQLite database (modernc.org/sqlite) and adds the
// pieces the list screen relies on: live result sets sorted by text,
// change notifications carrying position diffs, and a single-writer
// transaction API that reports failures instead of aborting.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"github.com/idilsaglam/names/internal/filter"
	"github.com/idilsaglam/names/internal/model"
)

var (
	// ErrNotFound is returned for an unknown record ID.
	ErrNotFound = errors.New("record not found")
	// ErrNestedWrite is returned when a write is started while another
	// write on the same store is still open.
	ErrNestedWrite = errors.New("write transaction already in progress")
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("store closed")
	// ErrReadInWrite is returned by Query and Observe while a write
	// transaction holds the connection.
	ErrReadInWrite = errors.New("read while a write transaction is open")
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

const schema = `
CREATE TABLE IF NOT EXISTS records (
	id         TEXT PRIMARY KEY,
	text       TEXT NOT NULL,
	subtext    TEXT NOT NULL,
	completed  INTEGER NOT NULL DEFAULT 0,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS records_text ON records(text, id);`

// Options tune Open.
type Options struct {
	// Watch makes the store pick up writes from other processes.
	Watch bool
	// Debounce coalesces bursts of file events. Defaults to 100ms.
	Debounce time.Duration
	Logger   *slog.Logger
}

// Store is an embedded, transactional record database.
type Store struct {
	db   *sql.DB
	path string
	log  *slog.Logger

	writeMu sync.Mutex
	// writing is set for the lifetime of a Write; it only changes under
	// refreshMu. Snapshots are never loaded under refreshMu while it is set.
	writing atomic.Bool

	// refreshMu orders snapshot evaluation and event posting.
	refreshMu sync.Mutex
	live      map[*Results]struct{}

	events *dispatcher

	mu        sync.Mutex
	closed    bool
	stopWatch func()
}

// Open opens (or creates) the database at path.
// Use MemoryPath for a throwaway database.
func Open(path string, opts Options) (*Store, error) {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %q: %w", path, err)
	}
	// One connection: SQLite has a single writer, and ":memory:" is
	// per-connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	s := &Store{
		db:     db,
		path:   path,
		log:    log,
		live:   make(map[*Results]struct{}),
		events: newDispatcher(),
	}
	if opts.Watch && path != MemoryPath {
		debounce := opts.Debounce
		if debounce <= 0 {
			debounce = 100 * time.Millisecond
		}
		stop, err := s.watch(debounce)
		if err != nil {
			s.events.close()
			db.Close()
			return nil, fmt.Errorf("watch %q: %w", path, err)
		}
		s.stopWatch = stop
	}
	log.Debug("store opened", "path", path, "watch", opts.Watch)
	return s, nil
}

// Path returns the database location.
func (s *Store) Path() string { return s.path }

func (s *Store) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Close stops notifications and closes the database. Pending
// notifications are delivered first. Must not be called from an
// observer callback.
func (s *Store) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	stop := s.stopWatch
	s.mu.Unlock()

	if stop != nil {
		stop()
	}
	s.events.close()

	s.refreshMu.Lock()
	for r := range s.live {
		for _, sub := range r.subs {
			sub.active.Store(false)
		}
		r.subs = nil
	}
	s.live = map[*Results]struct{}{}
	s.refreshMu.Unlock()

	return s.db.Close()
}

// Flush waits until every notification queued so far has been
// delivered. Must not be called from an observer callback.
func (s *Store) Flush() {
	done := make(chan struct{})
	if !s.events.post(func() { close(done) }) {
		return
	}
	<-done
}

// Query returns the live, text-sorted view of records matching p.
// A nil predicate matches everything. It fails with ErrReadInWrite while
// a write is open; inside a write, read through the Tx.
func (s *Store) Query(ctx context.Context, p filter.Predicate) (*Results, error) {
	if s.isClosed() {
		return nil, ErrClosed
	}
	if s.writing.Load() {
		return nil, fmt.Errorf("query: %w", ErrReadInWrite)
	}
	if p == nil {
		p = filter.All()
	}
	all, err := s.loadAll(ctx)
	if err != nil {
		return nil, err
	}
	return &Results{store: s, pred: p, records: apply(p, all)}, nil
}

// Observe queries p and subscribes fn to the result set's changes.
func (s *Store) Observe(ctx context.Context, p filter.Predicate, fn func(Change)) (Subscription, error) {
	r, err := s.Query(ctx, p)
	if err != nil {
		return nil, err
	}
	return r.Observe(fn), nil
}

// Refresh re-evaluates every observed result set and delivers the
// resulting diffs. Writes through this store refresh on their own; call
// Refresh to pick up changes made by another process. While a write is
// open Refresh does nothing: the write refreshes when it ends.
func (s *Store) Refresh(ctx context.Context) error {
	if s.isClosed() {
		return ErrClosed
	}
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()
	if s.writing.Load() {
		return nil
	}
	return s.refresh(ctx)
}

// refresh does the work of Refresh. Caller holds refreshMu and no
// transaction is open.
func (s *Store) refresh(ctx context.Context) error {
	if len(s.live) == 0 {
		return nil
	}
	all, err := s.loadAll(ctx)
	if err != nil {
		return err
	}
	for r := range s.live {
		next := apply(r.pred, all)
		d := Compute(r.records, next)
		if d.Empty() {
			continue
		}
		r.records = next
		s.log.Debug("result set changed",
			"predicate", r.pred.String(),
			"deletions", len(d.Deletions),
			"insertions", len(d.Insertions),
			"modifications", len(d.Modifications))
		r.post(Change{Kind: Update, Records: next, Diff: d})
	}
	return nil
}

func (s *Store) loadAll(ctx context.Context) ([]model.Record, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, text, subtext, completed FROM records ORDER BY text, id")
	if err != nil {
		return nil, fmt.Errorf("load records: %w", err)
	}
	defer rows.Close()

	var out []model.Record
	for rows.Next() {
		var r model.Record
		if err := rows.Scan(&r.ID, &r.Text, &r.Subtext, &r.Completed); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load records: %w", err)
	}
	return out, nil
}

func apply(p filter.Predicate, all []model.Record) []model.Record {
	out := make([]model.Record, 0, len(all))
	for _, r := range all {
		if p.Match(r) {
			out = append(out, r)
		}
	}
	return out
}
