// Package main is the entry point for the forge pager.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/debug"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/dshills/forge/internal/app"
	"github.com/dshills/forge/internal/config"
	"github.com/dshills/forge/internal/config/watcher"
	"github.com/dshills/forge/internal/document"
	"github.com/dshills/forge/internal/logging"
	"github.com/dshills/forge/internal/renderer/backend"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "HEAD"
	date    = "now"
)

func build() string {
	v, c, d := version, commit, date

	if v == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok {
			if mv := info.Main.Version; mv != "" && mv != "(devel)" {
				v = mv
			}
			for _, s := range info.Settings {
				switch s.Key {
				case "vcs.revision":
					c = s.Value
				case "vcs.time":
					d = s.Value
				}
			}
		}
	}

	short := c
	if len(c) > 7 {
		short = c[:7]
	}
	return fmt.Sprintf("%s (%s) %s", v, short, d)
}

// errReported marks a failure whose diagnostic has already been written.
var errReported = errors.New("reported")

// env is the process surroundings the command depends on.
type env struct {
	stdout     io.Writer
	stderr     io.Writer
	isTerminal func() bool
	newBackend func() (backend.Backend, error)
}

func defaultEnv() env {
	return env{
		stdout:     os.Stdout,
		stderr:     os.Stderr,
		isTerminal: func() bool { return term.IsTerminal(int(os.Stdout.Fd())) },
		newBackend: func() (backend.Backend, error) { return backend.NewTerminal() },
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args, defaultEnv())
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, e env) int {
	if err := newCommand(e).Run(ctx, args); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintf(e.stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

// flags holds the parsed command line.
type flags struct {
	configPath string
	logFile    string
	logLevel   string
	tabWidth   int
	wrapTabs   bool
}

func newCommand(e env) *cli.Command {
	f := &flags{}

	return &cli.Command{
		Name:      "forge",
		Usage:     "A fancy cli file viewer",
		ArgsUsage: "FILE",
		Description: `forge shows FILE one screen at a time.

Keys: j down, k up, g top, G bottom, q quit. Extra keys can be bound in the
config file, which is re-read whenever it changes.`,
		Version:   build(),
		Writer:    e.stdout,
		ErrWriter: e.stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file (default <user config dir>/forge/config.toml)",
				Sources:     cli.EnvVars("FORGE_CONFIG"),
				Destination: &f.configPath,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "write JSON logs to this file (logging is off without it)",
				Sources:     cli.EnvVars("FORGE_LOG_FILE"),
				Destination: &f.logFile,
			},
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error)",
				Sources:     cli.EnvVars("FORGE_LOG_LEVEL"),
				Destination: &f.logLevel,
			},
			&cli.IntFlag{
				Name:        "tab-width",
				Usage:       "cells per tab",
				Sources:     cli.EnvVars("FORGE_TAB_WIDTH"),
				Destination: &f.tabWidth,
			},
			&cli.BoolFlag{
				Name:        "wrap-tabs",
				Usage:       "wrap tabs at the right edge instead of letting them overflow",
				Sources:     cli.EnvVars("FORGE_WRAP_TABS"),
				Destination: &f.wrapTabs,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			switch c.Args().Len() {
			case 0:
				fmt.Fprintf(e.stderr, "Usage: %s [options] FILE\nRun 'forge --help' for details.\n", c.Name)
				return errReported
			case 1:
			default:
				return fmt.Errorf("expected one FILE argument, got %d", c.Args().Len())
			}
			return view(ctx, e, c.Args().First(), f, overridesFrom(c, f))
		},
	}
}

// overridesFrom collects the flags that were given on the command line or
// through the environment.
func overridesFrom(c *cli.Command, f *flags) config.Overrides {
	var o config.Overrides
	if c.IsSet("tab-width") {
		o.TabWidth = &f.tabWidth
	}
	if c.IsSet("wrap-tabs") {
		o.WrapTabs = &f.wrapTabs
	}
	if c.IsSet("log-level") {
		o.LogLevel = &f.logLevel
	}
	if c.IsSet("log-file") {
		o.LogFile = &f.logFile
	}
	return o
}

// loadConfig reads, overrides and validates the settings.
func loadConfig(path string, explicit bool, o config.Overrides) (*config.Config, error) {
	cfg, err := config.Load(path, explicit)
	if err != nil {
		return nil, err
	}
	o.Apply(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func view(ctx context.Context, e env, path string, f *flags, o config.Overrides) error {
	configPath, explicit := f.configPath, f.configPath != ""
	if !explicit {
		p, err := config.DefaultPath()
		if err == nil {
			configPath = p
		}
	}

	cfg, err := loadConfig(configPath, explicit, o)
	if err != nil {
		return err
	}

	logger, closeLog, err := logging.New(cfg.Log.Level, cfg.Log.File)
	if err != nil {
		return fmt.Errorf("setup logger: %w", err)
	}
	defer closeLog()
	log := logging.Component(logger, "main")

	doc, err := document.Load(path)
	if err != nil {
		log.Error().Err(err).Str("path", path).Msg("load failed")
		fmt.Fprintf(e.stderr, "Unable to read file %s\n", path)
		return errReported
	}
	log.Info().
		Str("path", path).
		Int("lines", doc.Len()).
		Int("bytes", doc.Size()).
		Str("config", configPath).
		Msg("document loaded")

	if !e.isTerminal() {
		return errors.New("stdout is not a terminal")
	}

	b, err := e.newBackend()
	if err != nil {
		return fmt.Errorf("create terminal: %w", err)
	}

	application, err := app.New(b, doc, app.Options{
		Config: cfg,
		Reload: func() (*config.Config, error) { return loadConfig(configPath, explicit, o) },
		Logger: logger,
	})
	if err != nil {
		return err
	}

	if configPath != "" {
		stopWatch := watchConfig(configPath, b, log)
		defer stopWatch()
	}

	if err := application.Run(ctx); err != nil {
		log.Error().Err(err).Msg("run failed")
		return err
	}
	return nil
}

// watchConfig asks the loop to reload whenever the config file changes.
// A config directory that doesn't exist is not watched.
func watchConfig(path string, b backend.Backend, log zerolog.Logger) func() {
	if _, err := os.Stat(filepath.Dir(path)); err != nil {
		log.Debug().Str("path", path).Msg("config dir missing, live reload off")
		return func() {}
	}

	w, err := watcher.New(path,
		func(ev watcher.Event) {
			log.Debug().Str("op", ev.Op.String()).Msg("config changed")
			if err := b.PostEvent(backend.Event{Type: backend.EventReload}); err != nil {
				log.Warn().Err(err).Msg("reload not queued")
			}
		},
		watcher.WithErrorHandler(func(err error) {
			log.Warn().Err(err).Msg("config watcher")
		}),
	)
	if err == nil {
		if err = w.Start(); err != nil {
			_ = w.Close()
		}
	}
	if err != nil {
		log.Warn().Err(err).Msg("live reload off")
		return func() {}
	}
	return func() { _ = w.Close() }
}
