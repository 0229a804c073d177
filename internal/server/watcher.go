package server

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watcher batches filesystem events and flushes them after a quiet period,
// so editor save bursts trigger one rebuild.
type watcher struct {
	fs       *fsnotify.Watcher
	debounce time.Duration
	logger   *slog.Logger
}

func newWatcher(debounce time.Duration, logger *slog.Logger) (*watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &watcher{fs: fsw, debounce: debounce, logger: logger}, nil
}

// addRecursive watches dir and every subdirectory, skipping hidden ones.
func (w *watcher) addRecursive(dir string) error {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil
	}
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}
		if name := filepath.Base(path); strings.HasPrefix(name, ".") && path != dir {
			return filepath.SkipDir
		}
		return w.fs.Add(path)
	})
}

// run dispatches batched change events to onChange until ctx is done. The
// callback runs on the watcher goroutine, so rebuilds serialize naturally.
func (w *watcher) run(ctx context.Context, onChange func(paths []string)) {
	pending := make(map[string]struct{})
	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if event.Op&fsnotify.Chmod != 0 {
				continue
			}
			// New directories join the watch so files created under them
			// fire events too.
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = w.fs.Add(event.Name)
					continue
				}
			}
			pending[event.Name] = struct{}{}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timerC:
					default:
					}
				}
				timer.Reset(w.debounce)
			}
		case <-timerC:
			paths := make([]string, 0, len(pending))
			for p := range pending {
				paths = append(paths, p)
			}
			clear(pending)
			timer = nil
			timerC = nil
			if len(paths) > 0 {
				onChange(paths)
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watcher error", "error", err)
		}
	}
}

func (w *watcher) close() {
	_ = w.fs.Close()
}
