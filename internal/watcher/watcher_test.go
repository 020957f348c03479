package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWatcher(t *testing.T, dir string) (*Watcher, chan []Change) {
	t.Helper()
	w, err := New([]string{dir})
	require.NoError(t, err)
	w.debounce = 50 * time.Millisecond
	t.Cleanup(func() { w.Stop() })

	changesCh := make(chan []Change, 8)
	w.Subscribe(func(changes []Change) {
		changesCh <- changes
	})
	w.Start(context.Background())
	return w, changesCh
}

func awaitChanges(t *testing.T, ch chan []Change) []Change {
	t.Helper()
	select {
	case changes := <-ch:
		return changes
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for changes")
		return nil
	}
}

func TestWatcherDeliversPythonChanges(t *testing.T) {
	dir := t.TempDir()
	_, changesCh := newTestWatcher(t, dir)

	path := filepath.Join(dir, "mod.py")
	require.NoError(t, os.WriteFile(path, []byte("def f():\n    pass\n"), 0o644))

	changes := awaitChanges(t, changesCh)
	require.NotEmpty(t, changes)
	assert.Equal(t, path, changes[0].Path)
	assert.True(t, changes[0].ExistenceChanged)
}

func TestWatcherIgnoresOtherExtensions(t *testing.T) {
	dir := t.TempDir()
	_, changesCh := newTestWatcher(t, dir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	select {
	case changes := <-changesCh:
		t.Fatalf("unexpected changes: %v", changes)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcherDebouncesBursts(t *testing.T) {
	dir := t.TempDir()
	_, changesCh := newTestWatcher(t, dir)

	a := filepath.Join(dir, "a.py")
	b := filepath.Join(dir, "b.pyi")
	require.NoError(t, os.WriteFile(a, []byte("pass\n"), 0o644))
	require.NoError(t, os.WriteFile(b, []byte("pass\n"), 0o644))

	changes := awaitChanges(t, changesCh)
	paths := make(map[string]bool)
	for _, c := range changes {
		paths[c.Path] = true
	}
	// A quick burst arrives as one batch; allow for a split under load.
	for len(paths) < 2 {
		more := awaitChanges(t, changesCh)
		for _, c := range more {
			paths[c.Path] = true
		}
	}
	assert.True(t, paths[a])
	assert.True(t, paths[b])
}

func TestWatcherPicksUpNewDirectories(t *testing.T) {
	dir := t.TempDir()
	_, changesCh := newTestWatcher(t, dir)

	sub := filepath.Join(dir, "pkg")
	require.NoError(t, os.Mkdir(sub, 0o755))
	// Give the watcher a moment to register the new directory.
	time.Sleep(100 * time.Millisecond)

	path := filepath.Join(sub, "mod.py")
	require.NoError(t, os.WriteFile(path, []byte("pass\n"), 0o644))

	changes := awaitChanges(t, changesCh)
	found := false
	for _, c := range changes {
		if c.Path == path {
			found = true
		}
	}
	assert.True(t, found)
}

func TestWatcherUnsubscribe(t *testing.T) {
	dir := t.TempDir()
	w, err := New([]string{dir})
	require.NoError(t, err)
	w.debounce = 50 * time.Millisecond
	t.Cleanup(func() { w.Stop() })

	called := make(chan struct{}, 1)
	id := w.Subscribe(func([]Change) { called <- struct{}{} })
	w.Unsubscribe(id)
	w.Start(context.Background())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "mod.py"), []byte("pass\n"), 0o644))

	select {
	case <-called:
		t.Fatal("unsubscribed subscriber was invoked")
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcherStopIsIdempotent(t *testing.T) {
	w, err := New([]string{t.TempDir()})
	require.NoError(t, err)
	w.Start(context.Background())
	require.NoError(t, w.Stop())
	require.NoError(t, w.Stop())
}
