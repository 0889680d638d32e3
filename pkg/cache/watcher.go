package cache

import (
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/arthur-debert/rulescan/pkg/errors"
	"github.com/arthur-debert/rulescan/pkg/logging"
)

// DefaultDebounceInterval is how long the watcher waits after the last
// filesystem event before invalidating, so edit bursts collapse into
// one pass.
const DefaultDebounceInterval = 100 * time.Millisecond

// Invalidator receives file-change notifications from a Watcher.
// *Cache[V] satisfies it.
type Invalidator interface {
	InvalidateFile(path string) int
}

// Watcher invalidates cache entries bound to files that change on
// disk. It watches whole directory trees because evaluation results
// reference arbitrary files beneath a scan root. Stop must be called
// to release the underlying filesystem watcher.
type Watcher struct {
	fsw      *fsnotify.Watcher
	target   Invalidator
	logger   zerolog.Logger
	debounce time.Duration

	mu      sync.Mutex
	pending map[string]struct{}
	timer   *time.Timer

	once   sync.Once
	stopCh chan struct{}
	doneCh chan struct{}
}

// NewWatcher watches the directory trees under roots and invalidates
// target entries for files that change beneath them.
func NewWatcher(target Invalidator, roots []string, debounce time.Duration) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounceInterval
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to create filesystem watcher")
	}

	w := &Watcher{
		fsw:      fsw,
		target:   target,
		logger:   logging.GetLogger("cache.watcher"),
		debounce: debounce,
		pending:  make(map[string]struct{}),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}

	for _, root := range roots {
		if _, err := os.Stat(root); err != nil {
			_ = fsw.Close()
			return nil, errors.Wrapf(err, errors.ErrDirAccess, "cannot watch %s", root)
		}
		w.addTree(root)
	}

	go w.loop()
	return w, nil
}

// Stop halts the watcher, discards pending invalidations, and waits
// for the event loop to exit. Safe to call more than once.
func (w *Watcher) Stop() {
	if w == nil {
		return
	}
	w.once.Do(func() {
		close(w.stopCh)
		_ = w.fsw.Close()
		<-w.doneCh

		w.mu.Lock()
		if w.timer != nil {
			w.timer.Stop()
			w.timer = nil
		}
		w.mu.Unlock()
	})
}

// addTree registers every directory under root. Unreadable
// subdirectories are skipped.
func (w *Watcher) addTree(root string) {
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			w.logger.Debug().Err(walkErr).Str("path", path).Msg("Skipping unwatchable path")
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if err := w.fsw.Add(path); err != nil {
			w.logger.Debug().Err(err).Str("path", path).Msg("Cannot watch directory")
		}
		return nil
	})
	if err != nil {
		w.logger.Warn().Err(err).Str("root", root).Msg("Directory tree watch incomplete")
	}
}

func (w *Watcher) loop() {
	defer close(w.doneCh)
	for {
		select {
		case <-w.stopCh:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if event.Op&fsnotify.Chmod == fsnotify.Chmod {
				continue
			}
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					w.addTree(event.Name)
					continue
				}
			}
			w.schedule(event.Name)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn().Err(err).Msg("Filesystem watcher error")
		}
	}
}

// schedule records a changed path and arms the debounce timer.
func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.pending[path] = struct{}{}
	if w.timer == nil {
		w.timer = time.AfterFunc(w.debounce, w.flush)
	} else {
		w.timer.Reset(w.debounce)
	}
}

// flush invalidates every pending path.
func (w *Watcher) flush() {
	select {
	case <-w.stopCh:
		return
	default:
	}

	w.mu.Lock()
	paths := w.pending
	w.pending = make(map[string]struct{})
	w.timer = nil
	w.mu.Unlock()

	removed := 0
	for path := range paths {
		removed += w.target.InvalidateFile(path)
	}
	w.logger.Debug().
		Int("files", len(paths)).
		Int("entries", removed).
		Msg("Invalidated cache entries for changed files")
}
