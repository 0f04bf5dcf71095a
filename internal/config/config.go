package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Defaults.
const (
	DefaultTabWidth      = 4
	DefaultPollTimeoutMs = 100
	DefaultBackground    = "red"
	DefaultForeground    = "white"
	DefaultLogLevel      = "info"
)

// Config holds every pager setting.
type Config struct {
	Display DisplayConfig `toml:"display" yaml:"display"`
	Status  StatusConfig  `toml:"status" yaml:"status"`
	Input   InputConfig   `toml:"input" yaml:"input"`
	Keys    KeysConfig    `toml:"keys" yaml:"keys"`
	Log     LogConfig     `toml:"log" yaml:"log"`
}

// DisplayConfig controls how document bytes become grid cells.
type DisplayConfig struct {
	TabWidth int  `toml:"tab_width" yaml:"tab_width"`
	WrapTabs bool `toml:"wrap_tabs" yaml:"wrap_tabs"`
}

// StatusConfig holds the status row colors. Values are color names,
// "default", or #rrggbb.
type StatusConfig struct {
	Background string `toml:"background" yaml:"background"`
	Foreground string `toml:"foreground" yaml:"foreground"`
	Bold       bool   `toml:"bold" yaml:"bold"`
}

// InputConfig controls event polling.
type InputConfig struct {
	PollTimeoutMs int `toml:"poll_timeout_ms" yaml:"poll_timeout_ms"`
}

// PollTimeout returns the poll timeout as a duration.
func (c InputConfig) PollTimeout() time.Duration {
	return time.Duration(c.PollTimeoutMs) * time.Millisecond
}

// KeysConfig lists extra keys per action. The built-in keys stay bound.
type KeysConfig struct {
	Quit   []string `toml:"quit" yaml:"quit"`
	Down   []string `toml:"down" yaml:"down"`
	Up     []string `toml:"up" yaml:"up"`
	Top    []string `toml:"top" yaml:"top"`
	Bottom []string `toml:"bottom" yaml:"bottom"`
}

// LogConfig controls the log file. An empty File disables logging.
type LogConfig struct {
	Level string `toml:"level" yaml:"level"`
	File  string `toml:"file" yaml:"file"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Display: DisplayConfig{TabWidth: DefaultTabWidth},
		Status: StatusConfig{
			Background: DefaultBackground,
			Foreground: DefaultForeground,
		},
		Input: InputConfig{PollTimeoutMs: DefaultPollTimeoutMs},
		Log:   LogConfig{Level: DefaultLogLevel},
	}
}

// DefaultPath returns <UserConfigDir>/forge/config.toml.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locating user config dir: %w", err)
	}
	return filepath.Join(dir, "forge", "config.toml"), nil
}

// Load reads the file at path over the defaults. A missing file yields the
// defaults unless explicit is set, in which case it is ErrFileNotFound.
// The result is not validated.
func Load(path string, explicit bool) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if explicit {
				return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
			}
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	if err := Decode(cfg, path, data); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Decode parses data over cfg, choosing the format from the extension of
// path. Keys absent from data leave cfg untouched.
func Decode(cfg *Config, path string, data []byte) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(cfg); err != nil {
			return tomlParseError(path, err)
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		// An empty document decodes to io.EOF.
		if err := dec.Decode(cfg); err != nil && len(bytes.TrimSpace(data)) > 0 {
			return &ParseError{Path: path, Message: err.Error(), Err: err}
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
	return nil
}

func tomlParseError(path string, err error) error {
	pe := &ParseError{Path: path, Message: err.Error(), Err: err}

	var derr *toml.DecodeError
	if errors.As(err, &derr) {
		pe.Line, pe.Column = derr.Position()
	}
	var serr *toml.StrictMissingError
	if errors.As(err, &serr) {
		pe.Message = "unknown key: " + strings.TrimSpace(serr.String())
	}
	return pe
}

// Overrides carries settings given on the command line or in FORGE_*
// variables. Nil fields leave the file value alone.
type Overrides struct {
	TabWidth *int
	WrapTabs *bool
	LogLevel *string
	LogFile  *string
}

// Apply writes the set overrides into cfg.
func (o Overrides) Apply(cfg *Config) {
	if o.TabWidth != nil {
		cfg.Display.TabWidth = *o.TabWidth
	}
	if o.WrapTabs != nil {
		cfg.Display.WrapTabs = *o.WrapTabs
	}
	if o.LogLevel != nil {
		cfg.Log.Level = *o.LogLevel
	}
	if o.LogFile != nil {
		cfg.Log.File = *o.LogFile
	}
}
