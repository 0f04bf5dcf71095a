package config

import (
	"fmt"

	"github.com/hay-kot/criterio"
	"github.com/rs/zerolog"

	"github.com/dshills/forge/internal/renderer/core"
)

// Limits enforced by Validate.
const (
	MinTabWidth      = 1
	MaxTabWidth      = 16
	MinPollTimeoutMs = 10
	MaxPollTimeoutMs = 5000
)

// Validate checks every setting and reports all failures at once as
// criterio.FieldErrors.
func (c *Config) Validate() error {
	var errs criterio.FieldErrorsBuilder

	if err := inRange(c.Display.TabWidth, MinTabWidth, MaxTabWidth); err != nil {
		errs = errs.Append("display.tab_width", err)
	}
	if err := inRange(c.Input.PollTimeoutMs, MinPollTimeoutMs, MaxPollTimeoutMs); err != nil {
		errs = errs.Append("input.poll_timeout_ms", err)
	}
	if _, err := core.ParseColor(c.Status.Background); err != nil {
		errs = errs.Append("status.background", err)
	}
	if _, err := core.ParseColor(c.Status.Foreground); err != nil {
		errs = errs.Append("status.foreground", err)
	}
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		errs = errs.Append("log.level", err)
	}
	if _, err := c.Keys.Keymap(); err != nil {
		errs = errs.Append("keys", err)
	}

	return errs.ToError()
}

func inRange(v, lo, hi int) error {
	if v < lo || v > hi {
		return fmt.Errorf("must be between %d and %d, got %d", lo, hi, v)
	}
	return nil
}

// StatusStyle returns the status row style. It assumes Validate passed and
// falls back to the default colors otherwise.
func (c *Config) StatusStyle() core.Style {
	bg, err := core.ParseColor(c.Status.Background)
	if err != nil {
		bg = core.ColorRed
	}
	fg, err := core.ParseColor(c.Status.Foreground)
	if err != nil {
		fg = core.ColorWhite
	}
	style := core.DefaultStyle().WithBackground(bg).WithForeground(fg)
	if c.Status.Bold {
		style = style.Bold()
	}
	return style
}
