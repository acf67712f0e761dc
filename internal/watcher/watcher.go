// Package watcher monitors configuration files for changes so a running
// engine can react without a manual restart. It watches the parent directory
// since fsnotify cannot watch files that are atomically replaced.
package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

// Watcher invokes onChange when any of the target files is written, created,
// or removed. Bursts of events (editors write-then-rename) are debounced.
type Watcher struct {
	targets  map[string]struct{}
	parent   string
	onChange func(path string)
	watcher  *fsnotify.Watcher
	ctx      context.Context
	cancel   context.CancelFunc
	debounce time.Duration
	mu       sync.Mutex
	running  bool
}

// New creates a watcher over files that share one parent directory.
func New(onChange func(path string), paths ...string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	targets := make(map[string]struct{}, len(paths))
	parent := ""
	for _, p := range paths {
		targets[filepath.Clean(p)] = struct{}{}
		parent = filepath.Dir(p)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Watcher{
		targets:  targets,
		parent:   parent,
		onChange: onChange,
		watcher:  fsw,
		ctx:      ctx,
		cancel:   cancel,
		debounce: 200 * time.Millisecond,
	}, nil
}

// Start begins watching.
func (w *Watcher) Start() error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	if err := w.addWatch(); err != nil {
		log.Warn().Err(err).Str("path", w.parent).Msg("Failed to add initial watch")
	}

	go w.watchLoop()
	return nil
}

// Stop stops the watcher.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return nil
	}
	w.running = false
	w.cancel()
	return w.watcher.Close()
}

func (w *Watcher) addWatch() error {
	if _, err := os.Stat(w.parent); os.IsNotExist(err) {
		return err
	}
	return w.watcher.Add(w.parent)
}

func (w *Watcher) watchLoop() {
	var (
		debounceTimer *time.Timer
		pendingPath   string
	)

	for {
		select {
		case <-w.ctx.Done():
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			eventPath := filepath.Clean(event.Name)

			// Parent directory recreated: re-establish the watch.
			if eventPath == w.parent && event.Op&fsnotify.Create != 0 {
				_ = w.addWatch()
				continue
			}

			if _, watched := w.targets[eventPath]; !watched {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}

			pendingPath = eventPath
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			path := pendingPath
			debounceTimer = time.AfterFunc(w.debounce, func() {
				log.Info().Str("path", path).Msg("Configuration file changed")
				if w.onChange != nil {
					w.onChange(path)
				}
			})

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Error().Err(err).Msg("Watcher error")
		}
	}
}
