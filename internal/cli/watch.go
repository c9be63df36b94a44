package cli

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"github.com/matzehuels/astview/pkg/source"
)

// watchDebounce coalesces the burst of events editors emit on save.
const watchDebounce = 100 * time.Millisecond

// fileWatcher reports content changes of a single file. It watches the
// parent directory so that editors replacing the file on save are seen,
// and skips events that leave the content unchanged.
type fileWatcher struct {
	path     string
	watcher  *fsnotify.Watcher
	onChange func()
	logger   *log.Logger

	last     uint64
	exists   bool
	done     chan struct{}
	stopOnce sync.Once
}

func newFileWatcher(path string, logger *log.Logger, onChange func()) (*fileWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return nil, err
	}
	fw := &fileWatcher{
		path:     abs,
		watcher:  w,
		onChange: onChange,
		logger:   logger,
		done:     make(chan struct{}),
	}
	fw.last, fw.exists = fw.fingerprint()
	return fw, nil
}

// Start delivers changes until ctx is canceled or Stop is called.
func (w *fileWatcher) Start(ctx context.Context) {
	go w.loop(ctx)
}

// Stop closes the underlying watcher. It is safe to call more than once.
func (w *fileWatcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		w.watcher.Close()
	})
}

func (w *fileWatcher) loop(ctx context.Context) {
	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path || ev.Op == fsnotify.Chmod {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(watchDebounce)
			} else {
				timer.Reset(watchDebounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			w.check()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch", "path", w.path, "err", err)
		}
	}
}

// check reports a change if the file appeared, vanished or has new content.
func (w *fileWatcher) check() {
	fp, exists := w.fingerprint()
	if exists == w.exists && fp == w.last {
		return
	}
	w.last, w.exists = fp, exists
	w.logger.Debug("source changed", "path", w.path, "exists", exists)
	w.onChange()
}

func (w *fileWatcher) fingerprint() (uint64, bool) {
	data, err := os.ReadFile(w.path)
	if err != nil {
		return 0, false
	}
	return source.Fingerprint(data), true
}
