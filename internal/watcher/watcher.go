// Package watcher observes Python source trees and notifies subscribers of
// changed files so cached resolutions and signatures can be invalidated.
package watcher

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
)

// DefaultDebounce is the quiet period before accumulated changes are
// delivered. Editors and installers touch files in bursts.
const DefaultDebounce = 500 * time.Millisecond

// Change describes one changed source file.
type Change struct {
	Path string
	// ExistenceChanged is true for create and remove events, which can
	// alter what a dotted module path resolves to.
	ExistenceChanged bool
}

// Subscriber receives a batch of debounced changes.
type Subscriber func(changes []Change)

// Watcher watches directory trees for Python source changes.
type Watcher struct {
	fs       *fsnotify.Watcher
	dirs     []string
	debounce time.Duration

	subMu       sync.RWMutex
	subscribers map[uuid.UUID]Subscriber

	accMu       sync.Mutex
	accumulated map[string]bool // path -> existence changed

	timerMu sync.Mutex
	timer   *time.Timer

	cancel   context.CancelFunc
	stopOnce sync.Once
	doneCh   chan struct{}
}

// New creates a watcher over the given directory trees. Each tree is watched
// recursively; directories created later are picked up as they appear.
func New(dirs []string) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fs:          fs,
		dirs:        dirs,
		debounce:    DefaultDebounce,
		subscribers: make(map[uuid.UUID]Subscriber),
		accumulated: make(map[string]bool),
		doneCh:      make(chan struct{}),
	}

	for _, dir := range dirs {
		if err := w.addTree(dir); err != nil {
			fs.Close()
			return nil, err
		}
	}
	return w, nil
}

// Subscribe registers a subscriber and returns its id.
func (w *Watcher) Subscribe(fn Subscriber) uuid.UUID {
	id := uuid.New()
	w.subMu.Lock()
	w.subscribers[id] = fn
	w.subMu.Unlock()
	return id
}

// Unsubscribe removes a subscriber.
func (w *Watcher) Unsubscribe(id uuid.UUID) {
	w.subMu.Lock()
	delete(w.subscribers, id)
	w.subMu.Unlock()
}

// Start begins watching. It returns immediately; events are processed on a
// background goroutine until Stop or context cancellation.
func (w *Watcher) Start(ctx context.Context) {
	ctx, w.cancel = context.WithCancel(ctx)
	go w.loop(ctx)
}

// Stop shuts the watcher down and waits for the event loop to exit.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		if w.cancel != nil {
			w.cancel()
			<-w.doneCh
		} else {
			close(w.doneCh)
		}
		err = w.fs.Close()
	})
	return err
}

func (w *Watcher) loop(ctx context.Context) {
	defer close(w.doneCh)

	flushCh := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			w.stopTimer()
			return

		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addTree(event.Name); err != nil {
						log.Printf("warning: failed to watch new directory %s: %v", event.Name, err)
					}
					continue
				}
			}
			if !relevant(event) {
				continue
			}
			w.accMu.Lock()
			existence := event.Op&(fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0
			w.accumulated[event.Name] = w.accumulated[event.Name] || existence
			w.accMu.Unlock()
			w.resetTimer(flushCh)

		case <-flushCh:
			w.flush()

		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			log.Printf("file watcher error: %v", err)
		}
	}
}

// flush delivers accumulated changes to every subscriber.
func (w *Watcher) flush() {
	w.accMu.Lock()
	if len(w.accumulated) == 0 {
		w.accMu.Unlock()
		return
	}
	changes := make([]Change, 0, len(w.accumulated))
	for path, existence := range w.accumulated {
		changes = append(changes, Change{Path: path, ExistenceChanged: existence})
	}
	w.accumulated = make(map[string]bool)
	w.accMu.Unlock()

	w.subMu.RLock()
	subs := make([]Subscriber, 0, len(w.subscribers))
	for _, fn := range w.subscribers {
		subs = append(subs, fn)
	}
	w.subMu.RUnlock()

	for _, fn := range subs {
		fn(changes)
	}
}

func (w *Watcher) resetTimer(flushCh chan struct{}) {
	w.timerMu.Lock()
	defer w.timerMu.Unlock()

	if w.timer != nil {
		if !w.timer.Stop() {
			select {
			case <-w.timer.C:
			default:
			}
		}
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		select {
		case flushCh <- struct{}{}:
		default:
		}
	})
}

func (w *Watcher) stopTimer() {
	w.timerMu.Lock()
	defer w.timerMu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
}

// relevant filters for write/create/remove/rename of Python sources.
func relevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	return strings.HasSuffix(event.Name, ".py") || strings.HasSuffix(event.Name, ".pyi")
}

// addTree registers every directory under root with the fsnotify watcher.
func (w *Watcher) addTree(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			log.Printf("warning: error accessing %s: %v", path, err)
			return nil
		}
		if !info.IsDir() {
			return nil
		}
		if name := info.Name(); name == ".git" || name == "__pycache__" || name == "node_modules" {
			return filepath.SkipDir
		}
		if err := w.fs.Add(path); err != nil {
			log.Printf("warning: failed to watch directory %s: %v", path, err)
		}
		return nil
	})
}
