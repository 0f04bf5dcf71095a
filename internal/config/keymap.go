package config

import (
	"fmt"
	"unicode/utf8"
)

// Action is a navigation command a key can be bound to.
type Action int

const (
	ActionNone Action = iota
	ActionQuit
	ActionDown
	ActionUp
	ActionTop
	ActionBottom
)

// String returns the config key of the action.
func (a Action) String() string {
	switch a {
	case ActionQuit:
		return "quit"
	case ActionDown:
		return "down"
	case ActionUp:
		return "up"
	case ActionTop:
		return "top"
	case ActionBottom:
		return "bottom"
	default:
		return "none"
	}
}

// Keymap maps a pressed rune to its action.
type Keymap map[rune]Action

// Lookup returns the action bound to r, or ActionNone.
func (k Keymap) Lookup(r rune) Action {
	return k[r]
}

// DefaultKeymap returns the built-in bindings: q j k g G.
func DefaultKeymap() Keymap {
	return Keymap{
		'q': ActionQuit,
		'j': ActionDown,
		'k': ActionUp,
		'g': ActionTop,
		'G': ActionBottom,
	}
}

func (c KeysConfig) aliases() []struct {
	action Action
	keys   []string
} {
	return []struct {
		action Action
		keys   []string
	}{
		{ActionQuit, c.Quit},
		{ActionDown, c.Down},
		{ActionUp, c.Up},
		{ActionTop, c.Top},
		{ActionBottom, c.Bottom},
	}
}

// Keymap builds the default bindings plus the configured aliases. Each
// alias must be a single character not already bound to another action.
func (c KeysConfig) Keymap() (Keymap, error) {
	km := DefaultKeymap()
	for _, group := range c.aliases() {
		for _, key := range group.keys {
			r, size := utf8.DecodeRuneInString(key)
			if r == utf8.RuneError || size != len(key) {
				return nil, fmt.Errorf("keys.%s: %q is not a single character", group.action, key)
			}
			if bound, ok := km[r]; ok && bound != group.action {
				return nil, fmt.Errorf("keys.%s: %q is already bound to %s", group.action, key, bound)
			}
			km[r] = group.action
		}
	}
	return km, nil
}
