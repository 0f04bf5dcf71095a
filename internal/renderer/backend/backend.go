// Package backend provides the display surface abstraction the pager draws on:
// a double-buffered W×H character grid plus an event source.
package backend

import (
	"errors"
	"sync"
	"time"

	"github.com/dshills/forge/internal/renderer/core"
)

// ErrClosed is returned by PollEvent once the backend has been shut down
// and its event source is exhausted.
var ErrClosed = errors.New("backend closed")

// ErrNotReady is returned by PostEvent before Init or after Shutdown.
var ErrNotReady = errors.New("backend not initialized")

// ErrQueueFull is returned by PostEvent when the event queue cannot accept
// another event.
var ErrQueueFull = errors.New("event queue full")

// EventType identifies the type of terminal event.
type EventType int

const (
	EventNone EventType = iota
	EventKey
	EventResize
	// EventReload is a synthetic event asking the pager to re-read its
	// configuration file.
	EventReload
)

func (t EventType) String() string {
	switch t {
	case EventKey:
		return "key"
	case EventResize:
		return "resize"
	case EventReload:
		return "reload"
	default:
		return "none"
	}
}

// Event represents a terminal event.
type Event struct {
	Type EventType

	// Key event fields
	Key  Key
	Rune rune
	Mod  ModMask

	// Resize event fields
	Width, Height int
}

// KeyEvent is a convenience constructor for a printable key press.
func KeyEvent(r rune) Event {
	return Event{Type: EventKey, Key: KeyRune, Rune: r}
}

// Key represents a keyboard key.
type Key int

// Key constants for special keys.
const (
	KeyNone Key = iota
	KeyRune     // Regular character (use Rune field)
	KeyHome
	KeyEnd
	KeyUp
	KeyDown
	KeyCtrlC
)

// ModMask represents modifier key state.
type ModMask int

const (
	ModNone  ModMask = 0
	ModShift ModMask = 1 << iota
	ModCtrl
	ModAlt
	ModMeta
)

// Has returns true if the mask contains any of the given modifiers.
func (m ModMask) Has(mod ModMask) bool {
	return m&mod != 0
}

// Backend is the display surface the pager renders into.
// Writes land in a back buffer; nothing becomes visible until Show.
type Backend interface {
	// Init initializes the backend for use.
	// Must be called before any other methods.
	Init() error

	// Shutdown releases backend resources and restores terminal state.
	Shutdown()

	// Size returns the current grid dimensions.
	Size() (width, height int)

	// SetCell sets a single cell at the given position.
	// Positions outside the grid are silently ignored.
	SetCell(x, y int, cell core.Cell)

	// GetCell returns the back-buffer cell at the given position.
	// Returns an empty cell for positions outside the grid.
	GetCell(x, y int) core.Cell

	// Fill fills a rectangular region with the given cell.
	Fill(rect core.ScreenRect, cell core.Cell)

	// Show swaps the back buffer onto the display.
	Show()

	// Sync applies a pending resize and forces a full repaint on the
	// next Show.
	Sync()

	// PollEvent waits up to timeout for the next event. A timeout yields
	// an EventNone event and a nil error.
	PollEvent(timeout time.Duration) (Event, error)

	// PostEvent injects a synthetic event. Safe to call from any goroutine.
	PostEvent(event Event) error
}

// NullBackend is an in-memory backend for testing. It keeps a real
// front/back buffer pair so tests can tell drawn content from shown content.
type NullBackend struct {
	mu        sync.Mutex
	buffer    *ScreenBuffer
	events    chan Event
	closed    bool
	shows     int
	syncs     int
	lastDiff  int
	pending   bool
	newWidth  int
	newHeight int
}

// NewNullBackend creates a null backend with the given dimensions.
func NewNullBackend(width, height int) *NullBackend {
	return &NullBackend{
		buffer: NewScreenBuffer(width, height),
		events: make(chan Event, 100),
	}
}

func (b *NullBackend) Init() error { return nil }

func (b *NullBackend) Shutdown() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.closed {
		b.closed = true
		close(b.events)
	}
}

func (b *NullBackend) Size() (int, int) {
	return b.buffer.Size()
}

func (b *NullBackend) SetCell(x, y int, cell core.Cell) {
	b.buffer.SetCell(x, y, cell)
}

func (b *NullBackend) GetCell(x, y int) core.Cell {
	return b.buffer.GetCell(x, y)
}

func (b *NullBackend) Fill(rect core.ScreenRect, cell core.Cell) {
	b.buffer.Fill(rect, cell)
}

func (b *NullBackend) Show() {
	b.lastDiff = len(b.buffer.ComputeDiff())
	b.buffer.Swap()
	b.shows++
}

func (b *NullBackend) Sync() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.pending {
		b.buffer.Resize(b.newWidth, b.newHeight)
		b.pending = false
	}
	b.buffer.MarkFullRedraw()
	b.syncs++
}

func (b *NullBackend) PollEvent(timeout time.Duration) (Event, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case ev, ok := <-b.events:
		if !ok {
			return Event{}, ErrClosed
		}
		return ev, nil
	case <-timer.C:
		return Event{Type: EventNone}, nil
	}
}

func (b *NullBackend) PostEvent(event Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrClosed
	}
	select {
	case b.events <- event:
		return nil
	default:
		return ErrQueueFull
	}
}

// Resize simulates a terminal resize. Like a real terminal, the new size
// takes effect when the pager calls Sync in response to the resize event.
func (b *NullBackend) Resize(width, height int) error {
	b.mu.Lock()
	b.pending = true
	b.newWidth = width
	b.newHeight = height
	b.mu.Unlock()
	return b.PostEvent(Event{Type: EventResize, Width: width, Height: height})
}

// ShowCount returns how many times Show has been called.
func (b *NullBackend) ShowCount() int {
	return b.shows
}

// SyncCount returns how many times Sync has been called.
func (b *NullBackend) SyncCount() int {
	return b.syncs
}

// LastDiff returns the number of cells that changed in the most recent Show.
func (b *NullBackend) LastDiff() int {
	return b.lastDiff
}

// VisibleCell returns the cell currently shown at the given position.
func (b *NullBackend) VisibleCell(x, y int) core.Cell {
	return b.buffer.GetFrontCell(x, y)
}

// Row returns the back-buffer contents of row y as a string.
func (b *NullBackend) Row(y int) string {
	return b.buffer.RowString(y)
}

// VisibleRow returns the shown contents of row y as a string.
func (b *NullBackend) VisibleRow(y int) string {
	return b.buffer.FrontRowString(y)
}
