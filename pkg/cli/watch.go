package cli

import (
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gobwas/glob"

	"github.com/funvibe/surf/internal/config"
	"github.com/funvibe/surf/internal/ext"
)

// DefaultWatchExcludes are directory names never watched.
var DefaultWatchExcludes = []string{".git", "node_modules", ".surf-cache"}

// Watcher re-runs a callback when files that can affect a build change.
// Bursts of events are coalesced into one call after a quiet period.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	debounce  time.Duration
	excludes  []glob.Glob
	headers   []glob.Glob
	onChange  func([]string)

	callbackMu sync.Mutex
	pendingMu  sync.Mutex
	pending    map[string]struct{}
	timer      *time.Timer
}

// NewWatcher compiles the exclude patterns (matched against base names) and
// the header patterns that, besides Surf sources and surf.yaml, mark files
// worth reacting to.
func NewWatcher(debounce time.Duration, excludes, headerPatterns []string, onChange func([]string)) (*Watcher, error) {
	if onChange == nil {
		return nil, os.ErrInvalid
	}
	compile := func(patterns []string) ([]glob.Glob, error) {
		out := make([]glob.Glob, 0, len(patterns))
		for _, p := range patterns {
			g, err := glob.Compile(p)
			if err != nil {
				return nil, err
			}
			out = append(out, g)
		}
		return out, nil
	}
	ex, err := compile(excludes)
	if err != nil {
		return nil, err
	}
	hp, err := compile(headerPatterns)
	if err != nil {
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		fsWatcher: fsw,
		debounce:  debounce,
		excludes:  ex,
		headers:   hp,
		onChange:  onChange,
		pending:   make(map[string]struct{}),
	}, nil
}

// Watch adds every directory under roots and starts the event loop.
func (w *Watcher) Watch(roots []string) error {
	for _, root := range roots {
		if err := w.watchRecursive(root); err != nil {
			return err
		}
	}
	go w.run()
	return nil
}

func (w *Watcher) watchRecursive(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}
		if path != root && w.excluded(path) {
			return filepath.SkipDir
		}
		return w.fsWatcher.Add(path)
	})
}

func (w *Watcher) run() {
	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if !w.excluded(event.Name) {
						if err := w.watchRecursive(event.Name); err != nil {
							slog.Warn("failed to watch new directory", "path", event.Name, "error", err)
						}
					}
					continue
				}
			}
			if !w.relevant(event.Name) {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
				event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				w.schedule(event.Name)
			}
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			slog.Error("watcher error", "error", err)
		}
	}
}

func (w *Watcher) schedule(path string) {
	w.pendingMu.Lock()
	defer w.pendingMu.Unlock()

	w.pending[path] = struct{}{}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.flush)
}

func (w *Watcher) flush() {
	w.pendingMu.Lock()
	paths := make([]string, 0, len(w.pending))
	for p := range w.pending {
		paths = append(paths, p)
	}
	w.pending = make(map[string]struct{})
	w.pendingMu.Unlock()

	if len(paths) == 0 {
		return
	}
	sort.Strings(paths)
	w.callbackMu.Lock()
	defer w.callbackMu.Unlock()
	w.onChange(paths)
}

func (w *Watcher) excluded(path string) bool {
	base := filepath.Base(path)
	for _, g := range w.excludes {
		if g.Match(base) {
			return true
		}
	}
	return false
}

// relevant reports whether a change to path can change a build result.
func (w *Watcher) relevant(path string) bool {
	if w.excluded(path) {
		return false
	}
	base := filepath.Base(path)
	if config.HasSourceExt(base) || base == config.ProjectFileName {
		return true
	}
	header := strings.TrimSuffix(base, ext.ManifestSuffix)
	for _, g := range w.headers {
		if g.Match(header) {
			return true
		}
	}
	return false
}

func (w *Watcher) Close() error {
	w.pendingMu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.pendingMu.Unlock()
	return w.fsWatcher.Close()
}
