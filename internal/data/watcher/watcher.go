// Package watcher turns filesystem churn under the data location into
// coalesced reload signals.
package watcher

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/penwyp/remi-timeline/internal/core/constants"
	"github.com/penwyp/remi-timeline/internal/util"
)

// Change is one coalesced batch of modified paths.
type Change struct {
	Paths []string
}

// Filter decides whether a path is relevant.
type Filter func(path string) bool

// JSONLFilter accepts post export files.
func JSONLFilter(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".jsonl")
}

// FileFilter accepts a single file and its SQLite sidecars.
func FileFilter(file string) Filter {
	file = filepath.Clean(file)
	return func(path string) bool {
		path = filepath.Clean(path)
		return path == file || path == file+"-wal" || path == file+"-journal"
	}
}

// Watcher observes a directory tree.
type Watcher struct {
	root   string
	filter Filter
	delay  time.Duration
}

// New creates a watcher for root. Events within delay of each other are
// merged into one Change.
func New(root string, filter Filter, delay time.Duration) *Watcher {
	if delay <= 0 {
		delay = constants.WatchCoalesceDelay
	}
	if filter == nil {
		filter = func(string) bool { return true }
	}
	return &Watcher{root: root, filter: filter, delay: delay}
}

// Watch streams changes until ctx is done; the channel is then closed.
// A slow consumer receives unread changes merged into the latest one.
func (w *Watcher) Watch(ctx context.Context) (<-chan Change, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	watched := map[string]struct{}{}
	if err := w.addTree(fsw, w.root, watched); err != nil {
		fsw.Close()
		return nil, err
	}

	out := make(chan Change, 1)
	go w.run(ctx, fsw, watched, out)
	return out, nil
}

func (w *Watcher) addTree(fsw *fsnotify.Watcher, root string, watched map[string]struct{}) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return fmt.Errorf("watch %s: %w", root, err)
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if _, ok := watched[path]; ok {
			return nil
		}
		if err := fsw.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		watched[path] = struct{}{}
		return nil
	})
}

func (w *Watcher) run(ctx context.Context, fsw *fsnotify.Watcher, watched map[string]struct{}, out chan Change) {
	defer close(out)
	defer fsw.Close()

	pending := map[string]struct{}{}
	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	flush := func() {
		if len(pending) == 0 {
			return
		}
		paths := make([]string, 0, len(pending))
		for p := range pending {
			paths = append(paths, p)
		}
		sort.Strings(paths)
		pending = map[string]struct{}{}

		publish(out, Change{Paths: paths})
	}

	for {
		select {
		case <-ctx.Done():
			return
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			util.LogWarn("File watcher error", util.F("error", err.Error()))
		case ev, ok := <-fsw.Events:
			if !ok {
				return
			}
			if ev.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if err := w.addTree(fsw, ev.Name, watched); err != nil {
						util.LogDebugf("Failed to watch new directory %s: %v", ev.Name, err)
					}
					continue
				}
			}
			if ev.Op == fsnotify.Chmod || !w.filter(ev.Name) {
				continue
			}
			pending[ev.Name] = struct{}{}
			timer.Stop()
			timer.Reset(w.delay)
		case <-timer.C:
			flush()
		}
	}
}

// publish sends change on out. An unread change still sitting in out is
// folded into the new one so none of its paths are lost. out must have a
// buffer of one and a single sender.
func publish(out chan Change, change Change) {
	select {
	case out <- change:
		return
	default:
	}

	select {
	case prev := <-out:
		change = merge(prev, change)
	default:
	}
	out <- change
}

func merge(a, b Change) Change {
	seen := make(map[string]struct{}, len(a.Paths)+len(b.Paths))
	paths := make([]string, 0, len(a.Paths)+len(b.Paths))
	for _, p := range append(append([]string{}, a.Paths...), b.Paths...) {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return Change{Paths: paths}
}
