package content

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce suppresses repeated events for the same file within this interval.
const DefaultDebounce = 100 * time.Millisecond

// Watcher reports changed content files under a content root.
//
// Events delivers the paths of changed *.yaml, *.yml and *.lua files. Both
// channels are closed once the watcher stops.
type Watcher struct {
	watcher  *fsnotify.Watcher
	debounce time.Duration
	Events   chan string
	Errors   chan error
	closeCh  chan struct{}
	done     chan struct{}
	once     sync.Once
}

// NewWatcher watches root and every directory below it.
//
// Precondition: root must be a readable directory; debounce >= 0 (0 uses DefaultDebounce).
func NewWatcher(root string, debounce time.Duration) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("content: creating watcher: %w", err)
	}
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return fw.Add(path)
		}
		return nil
	})
	if err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("content: watching %q: %w", root, err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	w := &Watcher{
		watcher:  fw,
		debounce: debounce,
		Events:   make(chan string, 16),
		Errors:   make(chan error, 1),
		closeCh:  make(chan struct{}),
		done:     make(chan struct{}),
	}
	go w.run()
	return w, nil
}

// Close stops the watcher and waits for its goroutine to exit.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
		<-w.done
	})
	return err
}

func (w *Watcher) run() {
	defer close(w.done)
	defer close(w.Errors)
	defer close(w.Events)

	last := make(map[string]time.Time)
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = w.watcher.Add(event.Name)
					continue
				}
			}
			if !isContentFile(event.Name) {
				continue
			}
			now := time.Now()
			if t, ok := last[event.Name]; ok && now.Sub(t) < w.debounce {
				continue
			}
			last[event.Name] = now
			select {
			case w.Events <- event.Name:
			case <-w.closeCh:
				return
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.Errors <- err:
			default:
			}
		case <-w.closeCh:
			return
		}
	}
}

func isContentFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".lua":
		return true
	}
	return false
}

// IsScript reports whether path is a Lua script.
func IsScript(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".lua")
}

// Run forwards change notifications to reload until ctx is done or the
// watcher closes. Reload errors are logged at Warn and do not stop the loop;
// the previously loaded content stays in effect.
func (w *Watcher) Run(ctx context.Context, logger *zap.Logger, reload func(path string) error) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case path, ok := <-w.Events:
			if !ok {
				return nil
			}
			if err := reload(path); err != nil {
				logger.Warn("content reload failed", zap.String("path", path), zap.Error(err))
				continue
			}
			logger.Info("content reloaded", zap.String("path", path))
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			if errors.Is(err, fsnotify.ErrEventOverflow) {
				logger.Warn("content watcher overflow", zap.Error(err))
				continue
			}
			logger.Error("content watcher error", zap.Error(err))
		}
	}
}
