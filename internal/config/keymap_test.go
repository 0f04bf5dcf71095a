package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultKeymap(t *testing.T) {
	km := DefaultKeymap()

	assert.Equal(t, ActionQuit, km.Lookup('q'))
	assert.Equal(t, ActionDown, km.Lookup('j'))
	assert.Equal(t, ActionUp, km.Lookup('k'))
	assert.Equal(t, ActionTop, km.Lookup('g'))
	assert.Equal(t, ActionBottom, km.Lookup('G'))
	assert.Equal(t, ActionNone, km.Lookup('x'))
}

func TestKeymapAliases(t *testing.T) {
	km, err := KeysConfig{
		Down:   []string{"n", " "},
		Up:     []string{"p"},
		Bottom: []string{">"},
		Quit:   []string{"q"},
	}.Keymap()
	require.NoError(t, err)

	assert.Equal(t, ActionDown, km.Lookup('n'))
	assert.Equal(t, ActionDown, km.Lookup(' '))
	assert.Equal(t, ActionDown, km.Lookup('j'), "defaults stay bound")
	assert.Equal(t, ActionUp, km.Lookup('p'))
	assert.Equal(t, ActionBottom, km.Lookup('>'))
	assert.Equal(t, ActionQuit, km.Lookup('q'), "rebinding a default to itself is allowed")
}

func TestKeymapUnicodeAlias(t *testing.T) {
	km, err := KeysConfig{Top: []string{"é"}}.Keymap()
	require.NoError(t, err)
	assert.Equal(t, ActionTop, km.Lookup('é'))
}

func TestKeymapErrors(t *testing.T) {
	tests := []struct {
		name string
		keys KeysConfig
		want string
	}{
		{"empty", KeysConfig{Up: []string{""}}, "keys.up"},
		{"multi char", KeysConfig{Quit: []string{"ZZ"}}, "not a single character"},
		{"default conflict", KeysConfig{Down: []string{"k"}}, "already bound to up"},
		{"alias conflict", KeysConfig{Top: []string{"t"}, Bottom: []string{"t"}}, "already bound to top"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.keys.Keymap()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestActionString(t *testing.T) {
	assert.Equal(t, "quit", ActionQuit.String())
	assert.Equal(t, "bottom", ActionBottom.String())
	assert.Equal(t, "none", ActionNone.String())
}
