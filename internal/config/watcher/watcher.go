// Package watcher reports changes to the config file for live reload.
//
// It watches the file's directory rather than the file itself, so editors
// that save by writing a temp file and renaming it over the original are
// still seen. Bursts of events are coalesced and delivered once the file
// has been quiet for the debounce interval.
package watcher

import (
	"errors"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ErrWatcherClosed is returned when starting a closed watcher.
var ErrWatcherClosed = errors.New("watcher closed")

// Event represents a config file change.
type Event struct {
	// Path is the absolute path to the changed file.
	Path string

	// Op is the operation that triggered the event.
	Op Operation

	// Time is when the last coalesced change was seen.
	Time time.Time
}

// Operation represents the type of file operation.
type Operation int

const (
	// OpWrite indicates the file was modified.
	OpWrite Operation = iota

	// OpCreate indicates the file was created, including by rename.
	OpCreate

	// OpRemove indicates the file was deleted or renamed away.
	OpRemove
)

// String returns the operation name.
func (op Operation) String() string {
	switch op {
	case OpWrite:
		return "write"
	case OpCreate:
		return "create"
	case OpRemove:
		return "remove"
	default:
		return "unknown"
	}
}

// Handler is called when a change is delivered.
type Handler func(event Event)

// ErrorHandler is called with errors reported by the OS watcher.
type ErrorHandler func(err error)

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets how long the file must be quiet before an event is
// delivered. Zero delivers every event immediately.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d >= 0 {
			w.debounce = d
		}
	}
}

// WithErrorHandler sets the handler for watcher errors.
func WithErrorHandler(h ErrorHandler) Option {
	return func(w *Watcher) {
		w.onError = h
	}
}

// Watcher monitors one file through its parent directory.
type Watcher struct {
	mu sync.Mutex

	fsw      *fsnotify.Watcher
	path     string
	handler  Handler
	onError  ErrorHandler
	debounce time.Duration

	pending *Event
	timer   *time.Timer

	closed  bool
	closeCh chan struct{}
	wg      sync.WaitGroup
}

// New creates a watcher for path. Nothing is watched until Start.
func New(path string, handler Handler, opts ...Option) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		path:     abs,
		handler:  handler,
		debounce: 100 * time.Millisecond,
		closeCh:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string {
	return w.path
}

// Start begins watching. The file's directory must exist; the file itself
// may not, in which case its creation is reported.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrWatcherClosed
	}
	if w.fsw != nil {
		return nil
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := fsw.Add(filepath.Dir(w.path)); err != nil {
		_ = fsw.Close()
		return err
	}
	w.fsw = fsw

	w.wg.Add(1)
	go w.processLoop()
	return nil
}

// Close stops the watcher and drops any undelivered event.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.closeCh)
	if w.timer != nil {
		w.timer.Stop()
	}
	w.pending = nil
	fsw := w.fsw
	w.mu.Unlock()

	w.wg.Wait()
	if fsw == nil {
		return nil
	}
	return fsw.Close()
}

func (w *Watcher) processLoop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.closeCh:
			return

		case fsEvent, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleFSEvent(fsEvent)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			if w.onError != nil {
				w.onError(err)
			}
		}
	}
}

func (w *Watcher) handleFSEvent(fsEvent fsnotify.Event) {
	if filepath.Clean(fsEvent.Name) != w.path {
		return
	}
	op, ok := convertOp(fsEvent.Op)
	if !ok {
		return
	}

	event := Event{Path: w.path, Op: op, Time: time.Now()}
	if w.debounce == 0 {
		w.emit(event)
		return
	}
	w.queue(event)
}

func convertOp(fsOp fsnotify.Op) (Operation, bool) {
	switch {
	case fsOp.Has(fsnotify.Remove), fsOp.Has(fsnotify.Rename):
		return OpRemove, true
	case fsOp.Has(fsnotify.Create):
		return OpCreate, true
	case fsOp.Has(fsnotify.Write):
		return OpWrite, true
	default:
		return 0, false
	}
}

// queue coalesces event into the pending one and restarts the quiet timer.
// A create after a remove is an atomic save and reads as a write; a write
// never hides a pending create or remove.
func (w *Watcher) queue(event Event) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}

	if w.pending != nil {
		switch {
		case w.pending.Op == OpRemove && event.Op == OpCreate:
			event.Op = OpWrite
		case event.Op == OpWrite:
			event.Op = w.pending.Op
		}
	}
	w.pending = &event

	if w.timer == nil {
		w.timer = time.AfterFunc(w.debounce, w.flush)
		return
	}
	w.timer.Reset(w.debounce)
}

func (w *Watcher) flush() {
	w.mu.Lock()
	event := w.pending
	w.pending = nil
	closed := w.closed
	w.mu.Unlock()

	if event == nil || closed {
		return
	}
	w.emit(*event)
}

// emit calls the handler, recovering from panics so a bad handler cannot
// kill the watcher goroutine.
func (w *Watcher) emit(event Event) {
	if w.handler == nil {
		return
	}
	defer func() {
		_ = recover()
	}()
	w.handler(event)
}
