// file: internal/watcher/watcher.go
// version: 1.0.0
// guid: 7e8f9a0b-1c2d-3e4f-5a6b-7c8d9e0f1a2b

// Package watcher monitors a library export file for external changes so
// the analyzer can offer a re-parse when the DJ software rewrites it.
package watcher

import (
	"log"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounceWindow collapses the burst of write events an export rewrite
// produces into a single notification.
const debounceWindow = 2 * time.Second

// ExportWatcher monitors one export file
type ExportWatcher struct {
	path      string
	watcher   *fsnotify.Watcher
	mu        sync.RWMutex
	changed   bool
	changedAt time.Time
	notify    chan struct{}
	stop      chan struct{}
}

// New creates a watcher for the given export file path
func New(path string) (*ExportWatcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if err := fsw.Add(path); err != nil {
		fsw.Close()
		return nil, err
	}

	w := &ExportWatcher{
		path:    path,
		watcher: fsw,
		notify:  make(chan struct{}, 1),
		stop:    make(chan struct{}),
	}

	go w.loop()
	return w, nil
}

func (w *ExportWatcher) loop() {
	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				w.mu.Lock()
				w.changed = true
				w.changedAt = time.Now()
				w.mu.Unlock()
				if timer == nil {
					timer = time.NewTimer(debounceWindow)
				} else {
					timer.Reset(debounceWindow)
				}
				timerC = timer.C
			}
		case <-timerC:
			timerC = nil
			log.Printf("library export changed: %s", w.path)
			select {
			case w.notify <- struct{}{}:
			default:
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("export watcher error: %v", err)
		case <-w.stop:
			return
		}
	}
}

// Changes delivers one notification per debounced burst of file changes
func (w *ExportWatcher) Changes() <-chan struct{} {
	return w.notify
}

// HasChanged returns true if the file has been modified since last ClearChanged
func (w *ExportWatcher) HasChanged() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.changed
}

// ChangedAt returns when the last change was detected
func (w *ExportWatcher) ChangedAt() time.Time {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.changedAt
}

// ClearChanged resets the changed flag (call after a re-parse)
func (w *ExportWatcher) ClearChanged() {
	w.mu.Lock()
	w.changed = false
	w.changedAt = time.Time{}
	w.mu.Unlock()
}

// Close stops watching
func (w *ExportWatcher) Close() error {
	close(w.stop)
	return w.watcher.Close()
}
