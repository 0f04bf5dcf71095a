// Package app provides the pager's navigation controller: the state that
// ties a document, a viewport and a display backend together, and the event
// loop that drives it.
package app

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/dshills/forge/internal/config"
	"github.com/dshills/forge/internal/document"
	"github.com/dshills/forge/internal/logging"
	"github.com/dshills/forge/internal/renderer/backend"
	"github.com/dshills/forge/internal/renderer/statusline"
	"github.com/dshills/forge/internal/renderer/viewport"
)

// State is the navigation state.
type State int

const (
	StateRunning State = iota
	StateQuit
)

func (s State) String() string {
	if s == StateQuit {
		return "quit"
	}
	return "running"
}

// Reloader produces a fresh, validated configuration. It is called on the
// loop goroutine when the backend delivers EventReload.
type Reloader func() (*config.Config, error)

// Options configures the application.
type Options struct {
	// Config holds the starting settings. Nil means config.Default().
	Config *config.Config

	// Reload re-reads the settings. Nil ignores reload events.
	Reload Reloader

	// Logger receives loop diagnostics. The zero value logs nothing.
	Logger zerolog.Logger
}

// Application owns all pager state. Every method except Metrics must be
// called from the goroutine running the loop.
type Application struct {
	backend backend.Backend
	doc     *document.Document
	engine  *viewport.Engine
	status  *statusline.StatusLine
	view    viewport.Viewport

	config      *config.Config
	keymap      config.Keymap
	pollTimeout time.Duration
	reload      Reloader

	log     zerolog.Logger
	metrics *Metrics

	state   State
	running atomic.Bool
}

// New creates an application showing doc on b. The configuration must be
// valid.
func New(b backend.Backend, doc *document.Document, opts Options) (*Application, error) {
	if b == nil {
		return nil, ErrNoBackend
	}
	if doc == nil {
		return nil, ErrNoDocument
	}

	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}

	app := &Application{
		backend: b,
		doc:     doc,
		engine:  viewport.NewEngine(doc, viewport.DefaultOptions()),
		status:  statusline.New(doc.Name, statusline.DefaultStyle()),
		reload:  opts.Reload,
		log:     logging.Component(opts.Logger, "app"),
		metrics: NewMetrics(),
	}
	if err := app.applyConfig(cfg); err != nil {
		return nil, NewOperationError("configure", "", err)
	}
	return app, nil
}

// applyConfig validates cfg and makes it the live configuration.
func (app *Application) applyConfig(cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	km, err := cfg.Keys.Keymap()
	if err != nil {
		return err
	}

	tabs := viewport.TabOverflow
	if cfg.Display.WrapTabs {
		tabs = viewport.TabWrap
	}
	app.engine.SetOptions(viewport.Options{TabWidth: cfg.Display.TabWidth, Tabs: tabs})
	app.status.SetStyle(cfg.StatusStyle())
	app.pollTimeout = cfg.Input.PollTimeout()
	app.keymap = km
	app.config = cfg
	return nil
}

// Run initializes the backend, draws the first frame and processes events
// until a quit key is pressed or ctx is cancelled. A failure to poll for
// events is fatal and returned.
func (app *Application) Run(ctx context.Context) error {
	if !app.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer app.running.Store(false)

	if err := app.backend.Init(); err != nil {
		return &InitError{Component: "backend", Err: err}
	}
	defer app.backend.Shutdown()

	width, height := app.backend.Size()
	app.log.Info().
		Str("file", app.doc.Name).
		Int("lines", app.doc.Len()).
		Int("width", width).
		Int("height", height).
		Msg("starting")

	app.state = StateRunning
	app.Draw()

	err := app.loop(ctx)
	app.log.Info().Object("metrics", app.metrics.Snapshot()).Err(err).Msg("stopped")
	return err
}

func (app *Application) loop(ctx context.Context) error {
	for app.state == StateRunning {
		select {
		case <-ctx.Done():
			app.log.Info().Msg("cancelled")
			return nil
		default:
		}

		ev, err := app.backend.PollEvent(app.pollTimeout)
		if err != nil {
			app.log.Error().Err(err).Msg("poll failed")
			return NewOperationError("poll", "events", err)
		}
		app.HandleEvent(ev)
	}
	return nil
}

// State returns the navigation state.
func (app *Application) State() State {
	return app.state
}

// Viewport returns the current scroll position.
func (app *Application) Viewport() viewport.Viewport {
	return app.view
}

// Config returns the live configuration.
func (app *Application) Config() *config.Config {
	return app.config
}

// Document returns the document being shown.
func (app *Application) Document() *document.Document {
	return app.doc
}

// Metrics returns the loop counters.
func (app *Application) Metrics() *Metrics {
	return app.metrics
}

// IsRunning reports whether Run is active.
func (app *Application) IsRunning() bool {
	return app.running.Load()
}
