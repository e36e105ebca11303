package server

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/ospreyhq/osprey-cli/pkg/config"
	"github.com/ospreyhq/osprey-cli/pkg/consts"
	"github.com/ospreyhq/osprey-cli/pkg/types"
)

const (
	// debounceWindow is how long a path must be quiet before its change
	// is acted on; editors often write files several times in a burst
	debounceWindow = 300 * time.Millisecond

	// debounceTick is how often settled changes are collected
	debounceTick = 100 * time.Millisecond
)

// RebuildFunc re-bundles the project sources after a src/ change
type RebuildFunc func(ctx context.Context) error

// Watcher watches res/ and src/ for changes. Source changes trigger a
// rebundle before the reload notification; resource changes notify
// directly.
type Watcher struct {
	project  *config.Project
	reloader types.Reloader
	rebuild  RebuildFunc
	log      types.Logger

	watcher     *fsnotify.Watcher
	mu          sync.Mutex
	debounceMap map[string]time.Time
	stopCh      chan struct{}
	doneCh      chan struct{}
	running     bool
}

// NewWatcher creates a watcher for a project. rebuild may be nil when
// the session does not bundle sources.
func NewWatcher(project *config.Project, reloader types.Reloader, rebuild RebuildFunc, log types.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, types.WrapError(err, "creating file watcher")
	}

	return &Watcher{
		project:     project,
		reloader:    reloader,
		rebuild:     rebuild,
		log:         log,
		watcher:     fsw,
		debounceMap: make(map[string]time.Time),
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}, nil
}

// Start begins watching; it is non-blocking
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	for _, root := range []string{
		filepath.Join(w.project.Dir, consts.ResourcesDir),
		filepath.Join(w.project.Dir, consts.SourcesDir),
	} {
		if err := w.addTree(root); err != nil {
			w.log.Warn("directory not watched", "dir", root, "error", err)
		}
	}

	go w.run(ctx)
	return nil
}

// Stop stops watching and waits for the event loop to exit
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh
	_ = w.watcher.Close()
}

// addTree watches a directory and all of its subdirectories
func (w *Watcher) addTree(root string) error {
	if _, err := os.Stat(root); err != nil {
		return err
	}
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if err := w.watcher.Add(path); err != nil {
			return err
		}
		return nil
	})
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(debounceTick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Error("file watcher error", "error", err)
		case <-ticker.C:
			w.processSettled(ctx)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}

	// New directories need their own watch
	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addTree(event.Name); err != nil {
				w.log.Warn("new directory not watched", "dir", event.Name, "error", err)
			}
			return
		}
	}

	w.mu.Lock()
	w.debounceMap[event.Name] = time.Now()
	w.mu.Unlock()
}

// processSettled acts on changes older than the debounce window
func (w *Watcher) processSettled(ctx context.Context) {
	w.mu.Lock()
	now := time.Now()
	var settled []string
	for path, at := range w.debounceMap {
		if now.Sub(at) >= debounceWindow {
			settled = append(settled, path)
			delete(w.debounceMap, path)
		}
	}
	w.mu.Unlock()

	if len(settled) == 0 {
		return
	}

	srcRoot := filepath.Join(w.project.Dir, consts.SourcesDir)
	needsRebuild := false
	for _, path := range settled {
		if strings.HasPrefix(path, srcRoot+string(filepath.Separator)) {
			needsRebuild = true
			break
		}
	}

	if needsRebuild && w.rebuild != nil {
		w.log.Info("sources changed, rebundling")
		if err := w.rebuild(ctx); err != nil {
			// Leave the previous bundle in place; the next save retries
			w.log.Error("rebundle failed", "error", err)
			return
		}
	}

	for _, path := range settled {
		rel, err := filepath.Rel(w.project.Dir, path)
		if err != nil {
			rel = path
		}
		w.log.Debug("change detected", "path", rel)
		w.reloader.NotifyChanged(filepath.ToSlash(rel))
	}
}
