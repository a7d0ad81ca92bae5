package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/idilsaglam/names/internal/model"
)

// TransactionError reports a write that did not commit.
// Op is the phase that failed: "begin", "apply" or "commit".
type TransactionError struct {
	Op  string
	Err error
}

func (e *TransactionError) Error() string {
	return "transaction " + e.Op + ": " + e.Err.Error()
}

func (e *TransactionError) Unwrap() error { return e.Err }

// Write runs fn inside a single transaction. If fn returns an error or
// panics, nothing is written. Observers are notified after the commit.
//
// Only one write may be open per store; starting another, including from
// inside fn, fails with a *TransactionError wrapping ErrNestedWrite.
// While fn runs, Query and Observe on the store fail with ErrReadInWrite
// and Refresh is deferred to the end of the write.
func (s *Store) Write(ctx context.Context, fn func(*Tx) error) error {
	if s.isClosed() {
		return &TransactionError{Op: "begin", Err: ErrClosed}
	}
	if !s.writeMu.TryLock() {
		return &TransactionError{Op: "begin", Err: ErrNestedWrite}
	}
	defer s.writeMu.Unlock()

	s.refreshMu.Lock()
	s.writing.Store(true)
	s.refreshMu.Unlock()
	defer s.endWrite(ctx)

	return s.run(ctx, fn)
}

func (s *Store) run(ctx context.Context, fn func(*Tx) error) error {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &TransactionError{Op: "begin", Err: err}
	}
	committed := false
	defer func() {
		if !committed {
			_ = sqlTx.Rollback()
		}
	}()

	tx := &Tx{ctx: ctx, tx: sqlTx, now: time.Now().UTC()}
	if err := fn(tx); err != nil {
		return &TransactionError{Op: "apply", Err: err}
	}
	if err := sqlTx.Commit(); err != nil {
		return &TransactionError{Op: "commit", Err: err}
	}
	committed = true
	s.log.Debug("write committed", "changes", tx.changes)
	return nil
}

// endWrite closes the write window and refreshes observers. It also runs
// after a rollback or a panic in fn, so refreshes deferred during the
// write still happen.
func (s *Store) endWrite(ctx context.Context) {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()
	s.writing.Store(false)
	if s.isClosed() {
		return
	}
	// The write stands even if notifying fails.
	if err := s.refresh(context.WithoutCancel(ctx)); err != nil {
		s.log.Warn("refresh after write", "err", err)
	}
}

// Tx is an open write transaction. It is only valid inside Write.
type Tx struct {
	ctx     context.Context
	tx      *sql.Tx
	now     time.Time
	changes int
}

// Add inserts a new record and returns it with its assigned ID.
func (t *Tx) Add(text, subtext string) (model.Record, error) {
	r := model.Record{ID: uuid.NewString(), Text: text, Subtext: subtext}
	ts := t.now.Format(time.RFC3339Nano)
	_, err := t.tx.ExecContext(t.ctx,
		"INSERT INTO records (id, text, subtext, completed, created_at, updated_at) VALUES (?, ?, ?, 0, ?, ?)",
		r.ID, r.Text, r.Subtext, ts, ts)
	if err != nil {
		return model.Record{}, fmt.Errorf("add record: %w", err)
	}
	t.changes++
	return r, nil
}

// Get reads a record inside the transaction.
func (t *Tx) Get(id string) (model.Record, error) {
	var r model.Record
	err := t.tx.QueryRowContext(t.ctx,
		"SELECT id, text, subtext, completed FROM records WHERE id = ?", id,
	).Scan(&r.ID, &r.Text, &r.Subtext, &r.Completed)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Record{}, fmt.Errorf("get %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return model.Record{}, fmt.Errorf("get %q: %w", id, err)
	}
	return r, nil
}

// Update overwrites both labels of an existing record.
func (t *Tx) Update(id, text, subtext string) error {
	return t.exec("update", id,
		"UPDATE records SET text = ?, subtext = ?, updated_at = ? WHERE id = ?",
		text, subtext, t.now.Format(time.RFC3339Nano), id)
}

// SetCompleted sets the completion flag.
func (t *Tx) SetCompleted(id string, completed bool) error {
	v := 0
	if completed {
		v = 1
	}
	return t.exec("set completed", id,
		"UPDATE records SET completed = ?, updated_at = ? WHERE id = ?",
		v, t.now.Format(time.RFC3339Nano), id)
}

// Delete removes a record.
func (t *Tx) Delete(id string) error {
	return t.exec("delete", id, "DELETE FROM records WHERE id = ?", id)
}

func (t *Tx) exec(op, id, query string, args ...any) error {
	res, err := t.tx.ExecContext(t.ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s %q: %w", op, id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s %q: %w", op, id, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %q: %w", op, id, ErrNotFound)
	}
	t.changes++
	return nil
}
