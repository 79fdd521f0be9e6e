// Package watch re-runs a callback when template files change.
//
// Filesystem events are filtered with doublestar patterns and debounced:
// a burst of saves produces one callback carrying every changed path.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is used when no debounce delay is configured.
const DefaultDebounce = 500 * time.Millisecond

// Config configures a Watcher.
type Config struct {
	Debounce time.Duration
	Patterns []string // doublestar globs matched against paths relative to the watched directory
	Ignore   []string // files that never trigger a callback, such as the report being written
}

// ChangeFunc is called with the sorted set of paths that changed since the
// previous call.
type ChangeFunc func(ctx context.Context, changed []string)

// Watcher watches a set of directories.
type Watcher struct {
	fsw      *fsnotify.Watcher
	roots    []string
	patterns []string
	ignore   map[string]bool
	debounce time.Duration
	logger   *slog.Logger

	mu      sync.Mutex
	pending map[string]fsnotify.Op
}

// New watches each directory in dirs, recursively. Hidden directories are
// skipped.
func New(dirs []string, cfg Config, logger *slog.Logger) (*Watcher, error) {
	for _, p := range cfg.Patterns {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid watch pattern %q", p)
		}
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	w := &Watcher{
		fsw:      fsw,
		patterns: cfg.Patterns,
		ignore:   make(map[string]bool),
		debounce: cfg.Debounce,
		logger:   logger,
		pending:  make(map[string]fsnotify.Op),
	}

	for _, p := range cfg.Ignore {
		if abs, err := filepath.Abs(p); err == nil {
			w.ignore[abs] = true
		}
	}

	seen := make(map[string]bool)
	for _, dir := range dirs {
		abs, err := filepath.Abs(dir)
		if err != nil {
			fsw.Close()
			return nil, err
		}
		if seen[abs] {
			continue
		}
		seen[abs] = true
		w.roots = append(w.roots, abs)
		if err := w.addRecursive(abs); err != nil {
			fsw.Close()
			return nil, err
		}
	}
	return w, nil
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if base := d.Name(); path != root && strings.HasPrefix(base, ".") {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		w.logger.Debug("watching directory", "path", path)
		return nil
	})
}

// Matches reports whether path is covered by one of the patterns and not
// ignored. With no patterns every path that is not ignored matches.
func (w *Watcher) Matches(path string) bool {
	if w.ignore[path] {
		return false
	}
	if len(w.patterns) == 0 {
		return true
	}
	for _, root := range w.roots {
		rel, err := filepath.Rel(root, path)
		if err != nil || strings.HasPrefix(rel, "..") {
			continue
		}
		rel = filepath.ToSlash(rel)
		for _, p := range w.patterns {
			if ok, _ := doublestar.Match(p, rel); ok {
				return true
			}
		}
	}
	return false
}

// Run delivers debounced changes to fn until ctx is cancelled. fn runs on
// the watcher goroutine, so events that arrive while it runs are batched
// into the next call.
func (w *Watcher) Run(ctx context.Context, fn ChangeFunc) error {
	defer w.fsw.Close()

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if w.handle(event) {
				timer.Reset(w.debounce)
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watcher error", "error", err)

		case <-timer.C:
			if changed := w.flush(); len(changed) > 0 {
				w.logger.Info("template change detected", "files", len(changed))
				fn(ctx, changed)
			}
		}
	}
}

// handle records event and reports whether it is relevant.
func (w *Watcher) handle(event fsnotify.Event) bool {
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addRecursive(event.Name); err != nil {
				w.logger.Warn("failed to watch new directory", "path", event.Name, "error", err)
			}
			return false
		}
	}
	if event.Has(fsnotify.Chmod) && !event.Has(fsnotify.Write) {
		return false
	}
	if !w.Matches(event.Name) {
		return false
	}

	w.mu.Lock()
	w.pending[event.Name] |= event.Op
	w.mu.Unlock()

	w.logger.Debug("change detected", "path", event.Name, "op", event.Op.String())
	return true
}

func (w *Watcher) flush() []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	changed := make([]string, 0, len(w.pending))
	for path := range w.pending {
		changed = append(changed, path)
	}
	w.pending = make(map[string]fsnotify.Op)
	sort.Strings(changed)
	return changed
}

// Close stops watching without running.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}
