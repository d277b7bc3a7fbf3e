// Package watch recompiles type definitions when their files change.
package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"coreobject/internal/logging"
	"coreobject/internal/schema"
)

// ErrAlreadyRunning is returned when Run is called on a running watcher.
var ErrAlreadyRunning = errors.New("watcher already running")

// Handler is called with the definition files that changed since the last
// call, once the debounce window has passed without further events.
type Handler func(ctx context.Context, changed []string)

// Watcher watches definition files and the directories holding them.
type Watcher struct {
	mu       sync.Mutex
	watcher  *fsnotify.Watcher
	files    map[string]bool // explicitly watched files
	debounce time.Duration
	pending  map[string]bool
	running  bool

	stats Stats
}

// Stats tracks watcher activity.
type Stats struct {
	Events   int
	Batches  int
	Errors   int
	LastPath string
}

// New watches paths, which may be definition files or directories.
func New(paths []string, debounce time.Duration) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	w := &Watcher{
		watcher:  fw,
		files:    map[string]bool{},
		debounce: debounce,
		pending:  map[string]bool{},
	}

	dirs := map[string]bool{}
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			fw.Close()
			return nil, fmt.Errorf("failed to resolve %s: %w", p, err)
		}
		info, err := os.Stat(abs)
		if err != nil {
			fw.Close()
			return nil, fmt.Errorf("failed to stat %s: %w", p, err)
		}
		if info.IsDir() {
			dirs[abs] = true
			continue
		}
		// Editors replace files on save, so watch the directory.
		w.files[abs] = true
		dirs[filepath.Dir(abs)] = true
	}

	for dir := range dirs {
		if err := fw.Add(dir); err != nil {
			fw.Close()
			return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
		}
		logging.Watch("watching directory: %s", dir)
	}
	return w, nil
}

// Run delivers change batches to fn until ctx is cancelled or Close is
// called. It returns nil on cancellation.
func (w *Watcher) Run(ctx context.Context, fn Handler) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return ErrAlreadyRunning
	}
	w.running = true
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
	}()

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			logging.WatchDebug("context cancelled")
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				logging.WatchDebug("event channel closed")
				return nil
			}
			if w.record(event) {
				timer.Reset(w.debounce)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			logging.WatchError("watch error: %v", err)
			w.mu.Lock()
			w.stats.Errors++
			w.mu.Unlock()

		case <-timer.C:
			if changed := w.drain(); len(changed) > 0 {
				logging.Watch("%d definition files changed", len(changed))
				fn(ctx, changed)
			}
		}
	}
}

// record notes a relevant event. It reports whether the event counted.
func (w *Watcher) record(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}
	if !schema.IsDefinitionFile(event.Name) {
		return false
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if len(w.files) > 0 && !w.files[event.Name] && !w.inWatchedDir(event.Name) {
		return false
	}
	w.pending[event.Name] = true
	w.stats.Events++
	w.stats.LastPath = event.Name
	logging.WatchDebug("%s %s", event.Op, event.Name)
	return true
}

// inWatchedDir reports whether name lives in a directory that was watched
// as a whole rather than for a single file.
func (w *Watcher) inWatchedDir(name string) bool {
	dir := filepath.Dir(name)
	for f := range w.files {
		if filepath.Dir(f) == dir {
			return false
		}
	}
	return true
}

func (w *Watcher) drain() []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	changed := make([]string, 0, len(w.pending))
	for p := range w.pending {
		changed = append(changed, p)
	}
	clear(w.pending)
	if len(changed) > 0 {
		w.stats.Batches++
	}
	slices.Sort(changed)
	return changed
}

// Stats returns a snapshot of the watcher activity.
func (w *Watcher) Stats() Stats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stats
}

// Close stops watching. A running Run returns.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
