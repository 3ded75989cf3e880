// Package watcher watches the template and static directories for
// changes with debouncing, so one save producing several filesystem
// events triggers a single reload.
package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/velumweb/velum/internal/logging"
)

// EventType represents the type of file change.
type EventType int

const (
	EventCreated EventType = iota
	EventModified
	EventDeleted
	EventRenamed
)

func (e EventType) String() string {
	switch e {
	case EventCreated:
		return "created"
	case EventModified:
		return "modified"
	case EventDeleted:
		return "deleted"
	case EventRenamed:
		return "renamed"
	default:
		return "unknown"
	}
}

// ChangeEvent represents one debounced file change.
type ChangeEvent struct {
	Type EventType
	Path string
}

// Filter decides whether a changed path is interesting.
type Filter func(path string) bool

// Handler receives a debounced batch of change events.
type Handler func(events []ChangeEvent)

// FileWatcher wraps fsnotify with filtering and debouncing.
type FileWatcher struct {
	watcher   *fsnotify.Watcher
	debouncer *debouncer
	logger    logging.Logger

	mu       sync.RWMutex
	filters  []Filter
	handlers []Handler
}

// New creates a file watcher that groups changes arriving within the
// debounce delay into a single handler call.
func New(debounce time.Duration, logger logging.Logger) (*FileWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &FileWatcher{
		watcher: w,
		debouncer: &debouncer{
			delay:  debounce,
			events: make(chan ChangeEvent, 64),
			output: make(chan []ChangeEvent, 8),
		},
		logger: logger.WithComponent("watcher"),
	}, nil
}

// AddFilter adds a path filter; a path must pass every filter.
func (fw *FileWatcher) AddFilter(f Filter) {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	fw.filters = append(fw.filters, f)
}

// AddHandler adds a change handler.
func (fw *FileWatcher) AddHandler(h Handler) {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	fw.handlers = append(fw.handlers, h)
}

// AddRecursive watches a directory and all its subdirectories.
func (fw *FileWatcher) AddRecursive(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return fw.watcher.Add(path)
		}
		return nil
	})
}

// Start runs the watcher until ctx is canceled.
func (fw *FileWatcher) Start(ctx context.Context) {
	go fw.debouncer.run(ctx)
	go fw.dispatch(ctx)
	go fw.watchLoop(ctx)
}

// Stop closes the underlying fsnotify watcher.
func (fw *FileWatcher) Stop() error {
	fw.debouncer.stop()
	return fw.watcher.Close()
}

func (fw *FileWatcher) watchLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			fw.handleEvent(event)
		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			fw.logger.Warn(ctx, err, "watch error")
		}
	}
}

func (fw *FileWatcher) handleEvent(event fsnotify.Event) {
	fw.mu.RLock()
	filters := fw.filters
	fw.mu.RUnlock()
	for _, f := range filters {
		if !f(event.Name) {
			return
		}
	}

	var typ EventType
	switch {
	case event.Op.Has(fsnotify.Create):
		typ = EventCreated
	case event.Op.Has(fsnotify.Remove):
		typ = EventDeleted
	case event.Op.Has(fsnotify.Rename):
		typ = EventRenamed
	default:
		typ = EventModified
	}

	select {
	case fw.debouncer.events <- ChangeEvent{Type: typ, Path: event.Name}:
	default:
		// Channel full; the pending batch already forces a reload.
	}
}

func (fw *FileWatcher) dispatch(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case events := <-fw.debouncer.output:
			fw.mu.RLock()
			handlers := fw.handlers
			fw.mu.RUnlock()
			for _, h := range handlers {
				h(events)
			}
		}
	}
}

// debouncer groups rapid changes into one batch per quiet period.
type debouncer struct {
	delay  time.Duration
	events chan ChangeEvent
	output chan []ChangeEvent

	mu      sync.Mutex
	timer   *time.Timer
	pending []ChangeEvent
}

func (d *debouncer) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-d.events:
			d.add(event)
		}
	}
}

func (d *debouncer) add(event ChangeEvent) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pending = append(d.pending, event)
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, d.flush)
}

func (d *debouncer) flush() {
	d.mu.Lock()
	batch := d.pending
	d.pending = nil
	d.mu.Unlock()
	if len(batch) == 0 {
		return
	}
	select {
	case d.output <- batch:
	default:
	}
}

func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
}

// HTMLFilter passes template files.
func HTMLFilter(path string) bool {
	ext := filepath.Ext(path)
	return ext == ".html" || ext == ".htm" || ext == ".tpl"
}

// NoHiddenFilter rejects dotfiles and editor swap files.
func NoHiddenFilter(path string) bool {
	base := filepath.Base(path)
	if len(base) > 0 && base[0] == '.' {
		return false
	}
	ext := filepath.Ext(base)
	return ext != ".swp" && ext != ".tmp" && base[len(base)-1] != '~'
}
