package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idilsaglam/names/internal/config"
	"github.com/idilsaglam/names/internal/store"
)

type env struct {
	t    *testing.T
	dir  string
	db   string
	base []string
}

func newEnv(t *testing.T) *env {
	t.Setenv(config.EnvDB, "")
	dir := t.TempDir()
	e := &env{t: t, dir: dir, db: filepath.Join(dir, "data", "names.db")}
	e.base = []string{
		"--config", filepath.Join(dir, "config.yaml"),
		"--db", e.db,
		"--theme", "mono",
	}
	return e
}

func (e *env) run(args ...string) (int, string, string) {
	var out, errOut bytes.Buffer
	code := Run(context.Background(), append(append([]string(nil), args...), e.base...), Options{Stdout: &out, Stderr: &errOut})
	return code, out.String(), errOut.String()
}

func (e *env) mustRun(args ...string) string {
	code, out, errOut := e.run(args...)
	require.Equal(e.t, 0, code, "names %v: %s", args, errOut)
	return out
}

func TestAddList(t *testing.T) {
	e := newEnv(t)
	assert.Contains(t, e.mustRun("add", "Cara", "y"), "added")
	e.mustRun("add", "Anna", "x")
	e.mustRun("add", "Beth", "Anna's friend")

	out := e.mustRun("ls")
	assert.Contains(t, out, "Total 3")
	anna := strings.Index(out, " 1. Anna")
	beth := strings.Index(out, " 2. Beth")
	cara := strings.Index(out, " 3. Cara")
	require.True(t, anna >= 0 && beth >= 0 && cara >= 0, out)
	assert.Less(t, anna, beth)
	assert.Less(t, beth, cara)

	out = e.mustRun("ls", "ann")
	assert.Contains(t, out, `Matching "ann" 2`)
	assert.Contains(t, out, "Anna")
	assert.Contains(t, out, "Beth")
	assert.NotContains(t, out, "Cara")
}

func TestEditRemove(t *testing.T) {
	e := newEnv(t)
	e.mustRun("add", "Anna", "x")
	e.mustRun("add", "Beth", "y")

	assert.Contains(t, e.mustRun("edit", "1", "Zoe", "z"), "edited")
	out := e.mustRun("ls")
	assert.Contains(t, out, " 1. Beth")
	assert.Contains(t, out, " 2. Zoe")

	assert.Contains(t, e.mustRun("rm", "1"), "removed")
	out = e.mustRun("ls")
	assert.Contains(t, out, "Total 1")
	assert.Contains(t, out, " 1. Zoe")
	// The footer tip mentions Beth, so check rows only.
	assert.NotContains(t, out, ". Beth")
}

func TestConfigSave(t *testing.T) {
	e := newEnv(t)
	out := e.mustRun("config", "--filter-mode", "simplified")
	assert.Contains(t, out, "filter_mode: simplified")
	assert.Contains(t, out, "db: "+e.db)

	assert.Contains(t, e.mustRun("config", "--save", "--filter-mode", "simplified"), "saved")
	out = e.mustRun("config")
	assert.Contains(t, out, "filter_mode: simplified", "saved settings are loaded back")

	code, _, _ := e.run("config", "extra")
	assert.Equal(t, 2, code)
}

func TestColorFlags(t *testing.T) {
	e := newEnv(t)
	e.base = e.base[:len(e.base)-2] // drop --theme mono
	e.mustRun("add", "Anna", "x")

	out := e.mustRun("ls", "--color", "ann")
	assert.Contains(t, out, "\x1b[")

	out = e.mustRun("ls", "--no-color", "ann")
	assert.NotContains(t, out, "\x1b[")
	assert.Contains(t, out, " 1. Anna")
}

func TestUsageErrors(t *testing.T) {
	e := newEnv(t)
	e.mustRun("add", "Anna", "x")
	for name, args := range map[string][]string{
		"add arity":     {"add", "Anna"},
		"add empty":     {"add", "", "x"},
		"edit empty":    {"edit", "1", "Anna", ""},
		"rm not number": {"rm", "abc"},
		"rm range":      {"rm", "9"},
		"unknown":       {"frobnicate"},
		"bad flag":      {"ls", "--nope"},
		"bad mode":      {"ls", "--filter-mode", "fuzzy"},
	} {
		t.Run(name, func(t *testing.T) {
			code, _, errOut := e.run(args...)
			assert.Equal(t, 2, code)
			assert.Contains(t, errOut, "✖")
		})
	}
	// Nothing was written by the failed commands.
	assert.Contains(t, e.mustRun("ls"), "Total 1")
}

// syncBuffer is a bytes.Buffer safe for one writer and one reader.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestWatch(t *testing.T) {
	e := newEnv(t)
	e.mustRun("add", "Anna", "x")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var out, errOut syncBuffer
	done := make(chan int, 1)
	go func() {
		done <- Run(ctx, append([]string{"watch"}, e.base...), Options{Stdout: &out, Stderr: &errOut})
	}()
	require.Eventually(t, func() bool { return strings.Contains(out.String(), "initial: 1 name(s)") },
		5*time.Second, 20*time.Millisecond, errOut.String())

	// Another process writes; the watcher picks it up.
	other, err := store.Open(e.db, store.Options{})
	require.NoError(t, err)
	require.NoError(t, other.Write(context.Background(), func(tx *store.Tx) error {
		_, err := tx.Add("Beth", "y")
		return err
	}))
	require.NoError(t, other.Close())

	require.Eventually(t, func() bool { return strings.Contains(out.String(), "+ #2 Beth") },
		5*time.Second, 20*time.Millisecond, out.String())

	cancel()
	select {
	case code := <-done:
		assert.Equal(t, 0, code)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
}
