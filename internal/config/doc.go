// Package config provides the pager's settings.
//
// Settings come from three layers, higher layers overriding lower:
//
//	┌─────────────────────────────┐
//	│  3. Command line / FORGE_*  │  ← Highest priority
//	├─────────────────────────────┤
//	│  2. Config file             │  ← <UserConfigDir>/forge/config.toml
//	├─────────────────────────────┤
//	│  1. Built-in Defaults       │  ← Lowest priority
//	└─────────────────────────────┘
//
// The file format follows the extension: .toml, or .yaml/.yml. Keys left out
// of the file keep their defaults.
//
// # Basic Usage
//
//	cfg, err := config.Load(path, explicit)
//	if err != nil {
//	    return err
//	}
//	overrides.Apply(cfg)
//	if err := cfg.Validate(); err != nil {
//	    return err
//	}
//
// # Example File
//
//	[display]
//	tab_width = 8
//	wrap_tabs = true
//
//	[status]
//	background = "#005f87"
//	foreground = "white"
//	bold = true
//
//	[keys]
//	down = ["n"]
//	up = ["p"]
//
// # Live Reload
//
// The watcher sub-package reports writes to the config file so a running
// pager can re-read it. A reload that fails to parse or validate leaves the
// previous settings in effect.
package config
