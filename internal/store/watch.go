package store

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watch refreshes observers when the database or its WAL changes on
// disk. Our own commits trigger events too; they produce empty diffs and
// are dropped by Refresh.
func (s *Store) watch(debounce time.Duration) (stop func(), err error) {
	abs, err := filepath.Abs(s.path)
	if err != nil {
		return nil, err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	// Watch the directory: the WAL file is created and removed as the
	// database is opened and checkpointed.
	if err := w.Add(filepath.Dir(abs)); err != nil {
		_ = w.Close()
		return nil, err
	}
	names := map[string]bool{abs: true, abs + "-wal": true}

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer func() { _ = w.Close() }()
		var timer *time.Timer
		defer func() {
			if timer != nil {
				timer.Stop()
			}
		}()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-w.Events:
				if !ok {
					return
				}
				if !names[event.Name] || event.Has(fsnotify.Chmod) && !event.Has(fsnotify.Write) {
					continue
				}
				if timer == nil {
					timer = time.AfterFunc(debounce, func() {
						if err := s.Refresh(ctx); err != nil && ctx.Err() == nil {
							s.log.Warn("refresh after file change", "err", err)
						}
					})
				} else {
					timer.Reset(debounce)
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				s.log.Warn("error watching database", "path", abs, "err", err)
			}
		}
	}()
	return func() {
		cancel()
		wg.Wait()
	}, nil
}
