// Package watcher detects out-of-band edits to the settings file.
//
// The watcher monitors the file's parent directory with fsnotify rather
// than the file itself: atomic saves replace the file by rename, which
// would silently drop a watch on the old inode. Events are debounced so
// an editor's write-then-rename sequence triggers one reload.
package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// DefaultDebounce is the quiet period collapsing bursts of file events
// into a single reload.
const DefaultDebounce = 200 * time.Millisecond

// Handler is called after the settings file changed and the debounce
// period elapsed.
type Handler func()

// Watcher watches one settings file for external modification.
type Watcher struct {
	path     string
	handler  Handler
	debounce time.Duration
	log      logrus.FieldLogger

	fs *fsnotify.Watcher

	mu       sync.Mutex
	started  bool
	stopped  bool
	stopOnce sync.Once
	done     chan struct{}
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce overrides the debounce quiet period.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithLogger sets the logger for watch events.
func WithLogger(log logrus.FieldLogger) Option {
	return func(w *Watcher) {
		if log != nil {
			w.log = log
		}
	}
}

// New creates a watcher for the settings file at path. handler fires
// after each detected change. The watch does not start until Start.
func New(path string, handler Handler, opts ...Option) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}

	w := &Watcher{
		path:     filepath.Clean(path),
		handler:  handler,
		debounce: DefaultDebounce,
		log:      logrus.StandardLogger(),
		fs:       fs,
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Start begins watching. It returns once the watch is registered; events
// are handled on a background goroutine until Stop or ctx cancellation.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.started || w.stopped {
		w.mu.Unlock()
		return fmt.Errorf("watcher already started")
	}
	w.started = true
	w.mu.Unlock()

	dir := filepath.Dir(w.path)
	if err := w.fs.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}

	go w.run(ctx)
	return nil
}

// Stop ends the watch. Safe to call more than once.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	w.stopped = true
	w.mu.Unlock()

	var err error
	w.stopOnce.Do(func() {
		close(w.done)
		err = w.fs.Close()
	})
	return err
}

func (w *Watcher) run(ctx context.Context) {
	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if !w.matches(event) {
				continue
			}
			w.log.WithFields(logrus.Fields{
				"path": event.Name,
				"op":   event.Op.String(),
			}).Debug("settings file changed on disk")
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				fire = timer.C
			} else {
				timer.Reset(w.debounce)
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.log.WithError(err).Warn("settings watch error")
		case <-fire:
			timer = nil
			fire = nil
			w.handler()
		}
	}
}

// matches reports whether event refers to the watched settings file with
// an operation that changes its content.
func (w *Watcher) matches(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Op.Has(fsnotify.Write) ||
		event.Op.Has(fsnotify.Create) ||
		event.Op.Has(fsnotify.Rename)
}
