package app

import (
	"github.com/dshills/forge/internal/config"
	"github.com/dshills/forge/internal/renderer/backend"
)

// HandleEvent applies one event and reports whether it produced a redraw.
// An event whose guard fails changes nothing and shows nothing.
func (app *Application) HandleEvent(ev backend.Event) bool {
	if app.state != StateRunning {
		return false
	}

	switch ev.Type {
	case backend.EventNone:
		return false
	case backend.EventKey:
		app.metrics.events.Add(1)
		return app.handleKeyEvent(ev)
	case backend.EventResize:
		app.metrics.events.Add(1)
		return app.handleResize(ev)
	case backend.EventReload:
		app.metrics.events.Add(1)
		return app.handleReload()
	default:
		app.metrics.ignored.Add(1)
		return false
	}
}

// specialKeys mirrors the default bindings on non-rune keys.
var specialKeys = map[backend.Key]config.Action{
	backend.KeyCtrlC: config.ActionQuit,
	backend.KeyDown:  config.ActionDown,
	backend.KeyUp:    config.ActionUp,
	backend.KeyHome:  config.ActionTop,
	backend.KeyEnd:   config.ActionBottom,
}

// chordMods are the modifiers that turn a rune into a different key.
const chordMods = backend.ModCtrl | backend.ModAlt | backend.ModMeta

// keyAction resolves a key event. Runes go through the keymap unless typed
// with a chord modifier.
func (app *Application) keyAction(ev backend.Event) config.Action {
	if ev.Key != backend.KeyRune {
		return specialKeys[ev.Key]
	}
	if ev.Mod.Has(chordMods) {
		return config.ActionNone
	}
	return app.keymap.Lookup(ev.Rune)
}

func (app *Application) handleKeyEvent(ev backend.Event) bool {
	action := app.keyAction(ev)

	total := app.doc.Len()
	_, height := app.backend.Size()
	displayHeight := height - 1

	redrawn := false
	switch action {
	case config.ActionQuit:
		app.state = StateQuit

	case config.ActionDown:
		if total > displayHeight && app.view.BottomLine < total-1 {
			app.view.TopLine++
			app.Draw()
			redrawn = true
		}

	case config.ActionUp:
		if app.view.TopLine > 0 {
			app.view.TopLine--
			app.Draw()
			redrawn = true
		}

	case config.ActionTop:
		if app.view.TopLine > 0 {
			app.view.TopLine = 0
			app.Draw()
			redrawn = true
		}

	case config.ActionBottom:
		if total-1 > displayHeight {
			app.drawBottom()
			redrawn = true
		}

	default:
		app.metrics.ignored.Add(1)
		return false
	}

	app.log.Debug().
		Stringer("action", action).
		Bool("redrawn", redrawn).
		Int("top", app.view.TopLine).
		Int("bottom", app.view.BottomLine).
		Msg("key")
	return redrawn
}

// handleResize applies the pending size and redraws from the current top.
// The grid size is re-queried after Sync; the event's size is only logged.
func (app *Application) handleResize(ev backend.Event) bool {
	app.backend.Sync()
	app.metrics.resizes.Add(1)
	app.Draw()

	width, height := app.backend.Size()
	app.log.Debug().
		Int("width", width).
		Int("height", height).
		Int("reported_width", ev.Width).
		Int("reported_height", ev.Height).
		Msg("resize")
	return true
}

// handleReload swaps in a fresh configuration. A config that fails to load
// or validate is logged and the current settings stay in effect.
func (app *Application) handleReload() bool {
	if app.reload == nil {
		app.metrics.ignored.Add(1)
		return false
	}

	cfg, err := app.reload()
	if err == nil {
		err = app.applyConfig(cfg)
	}
	if err != nil {
		app.metrics.rejected.Add(1)
		app.log.Warn().Err(err).Msg("config reload rejected")
		return false
	}

	app.metrics.reloads.Add(1)
	app.log.Info().
		Int("tab_width", cfg.Display.TabWidth).
		Bool("wrap_tabs", cfg.Display.WrapTabs).
		Msg("config reloaded")
	app.Draw()
	return true
}

// Draw lays out the document from the current top line, renders the status
// row and shows the frame.
func (app *Application) Draw() {
	width, height := app.backend.Size()
	app.engine.RenderForward(app.backend, &app.view, width, height)
	app.show(width, height)
}

// drawBottom pins the last line to the bottom of the grid.
func (app *Application) drawBottom() {
	width, height := app.backend.Size()
	app.engine.RenderBottom(app.backend, &app.view, width, height)
	app.show(width, height)
}

// show renders the status row and swaps buffers, exactly once per frame.
func (app *Application) show(width, height int) {
	if height > 0 {
		app.status.Render(app.backend, height-1, width, app.view.BottomLine, app.doc.Len())
	}
	app.backend.Show()
	app.metrics.redraws.Add(1)
}
