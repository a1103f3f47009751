// Package watch re-runs work when files under a project root change.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dusk-indust/archcheck/internal/glob"
)

// DefaultDebounce is how long the watcher waits for the tree to settle.
const DefaultDebounce = 300 * time.Millisecond

// Watcher monitors a project tree for changes. Directories created after
// the watcher starts are picked up as they appear.
type Watcher struct {
	fw       *fsnotify.Watcher
	root     string
	ignore   *glob.Matcher
	debounce time.Duration
	logger   *slog.Logger
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period before changes are reported.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// WithLogger sets the logger used for watch diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(w *Watcher) { w.logger = l }
}

// New watches every directory under root that no ignore glob matches.
func New(root string, ignore []string, opts ...Option) (*Watcher, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root: %w", err)
	}
	if info, err := os.Stat(abs); err != nil {
		return nil, fmt.Errorf("watch root: %w", err)
	} else if !info.IsDir() {
		return nil, fmt.Errorf("watch root %s is not a directory", abs)
	}
	matcher, err := glob.NewMatcher(ignore)
	if err != nil {
		return nil, fmt.Errorf("ignore patterns: %w", err)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	w := &Watcher{
		fw:       fw,
		root:     abs,
		ignore:   matcher,
		debounce: DefaultDebounce,
		logger:   slog.Default(),
	}
	for _, o := range opts {
		o(w)
	}

	if err := w.addRecursive(abs); err != nil {
		fw.Close()
		return nil, err
	}
	return w, nil
}

// Close stops the watcher and releases resources.
func (w *Watcher) Close() error {
	return w.fw.Close()
}

// Run blocks until ctx is done, calling onChange with the sorted set of
// changed paths once no new event has arrived for the debounce period.
// onChange runs on the caller's goroutine; events arriving meanwhile are
// batched into the next call.
func (w *Watcher) Run(ctx context.Context, onChange func(ctx context.Context, changed []string)) error {
	pending := make(map[string]bool)
	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fw.Events:
			if !ok {
				return nil
			}
			if !w.handleEvent(event) {
				continue
			}
			pending[event.Name] = true
			timer.Reset(w.debounce)

		case err, ok := <-w.fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", "error", err)

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			changed := make([]string, 0, len(pending))
			for p := range pending {
				changed = append(changed, p)
			}
			sort.Strings(changed)
			clear(pending)
			w.logger.Debug("change detected", "files", len(changed))
			onChange(ctx, changed)
		}
	}
}

// handleEvent reports whether event is a change worth re-running for.
// New directories are added to the watch list.
func (w *Watcher) handleEvent(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create | fsnotify.Write | fsnotify.Remove | fsnotify.Rename) {
		return false
	}
	if w.ignored(event.Name) {
		return false
	}
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addRecursive(event.Name); err != nil {
				w.logger.Warn("watch new directory", "path", event.Name, "error", err)
			}
		}
	}
	return true
}

func (w *Watcher) addRecursive(dir string) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			// Directories can vanish between the event and the walk.
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != w.root && w.ignored(p) {
			return filepath.SkipDir
		}
		if err := w.fw.Add(p); err != nil {
			return fmt.Errorf("watch %s: %w", p, err)
		}
		return nil
	})
}

func (w *Watcher) ignored(path string) bool {
	slashed := glob.Normalize(path)
	return w.ignore.Match(slashed) || w.ignore.Match(slashed+"/")
}
