package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// WatchConfig configures Orchestrator.Watch: debounce rapid edits into a
// single batched reindex rather than reacting to each individual fsnotify event.
type WatchConfig struct {
	DebounceDuration time.Duration
	Recursive        bool
}

// DefaultWatchConfig returns the default debounce window.
func DefaultWatchConfig() WatchConfig {
	return WatchConfig{DebounceDuration: 500 * time.Millisecond, Recursive: true}
}

var excludedWatchDirs = map[string]bool{
	".git": true, ".svn": true, ".hg": true,
	"node_modules": true, "vendor": true, "target": true,
	".vscode": true, ".idea": true, "__pycache__": true,
}

// Watch monitors root for file system changes and triggers a debounced
// index_codebase on each settled batch of edits. It blocks until ctx is
// cancelled. Reindexing is never below file granularity: each trigger calls
// IndexCodebase with ForceRebuild false, which reruns the full walk-and-rebuild
// pipeline when a tracked file's mtime changed or a tracked file is gone, and
// otherwise keeps the current index. A file created since the last build is
// not tracked, so its creation alone does not cause a rebuild.
func (o *Orchestrator) Watch(ctx context.Context, root string, cfg WatchConfig) error {
	canonicalRoot, err := filepath.Abs(root)
	if err != nil {
		return err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fsw.Close()

	if err := addWatchTree(fsw, canonicalRoot, cfg.Recursive); err != nil {
		return err
	}

	var (
		mu    sync.Mutex
		timer *time.Timer
	)
	trigger := func() {
		o.cfg.Logger.Info("watch: reindexing", "root", canonicalRoot)
		if _, err := o.IndexCodebase(ctx, canonicalRoot, IndexCodebaseOptions{ForceRebuild: false}); err != nil {
			o.cfg.Logger.Warn("watch: reindex failed", "err", err)
		}
	}

	for {
		select {
		case <-ctx.Done():
			mu.Lock()
			if timer != nil {
				timer.Stop()
			}
			mu.Unlock()
			return ctx.Err()

		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if ev.Op&fsnotify.Create == fsnotify.Create {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() && cfg.Recursive {
					_ = addWatchTree(fsw, ev.Name, true)
				}
			}
			mu.Lock()
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(cfg.DebounceDuration, trigger)
			mu.Unlock()

		case watchErr, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			o.cfg.Logger.Warn("watch: fsnotify error", "err", watchErr)
		}
	}
}

func addWatchTree(fsw *fsnotify.Watcher, dir string, recursive bool) error {
	if err := fsw.Add(dir); err != nil {
		return err
	}
	if !recursive {
		return nil
	}
	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() || path == dir {
			return nil
		}
		if excludedWatchDirs[filepath.Base(path)] {
			return filepath.SkipDir
		}
		return fsw.Add(path)
	})
}
