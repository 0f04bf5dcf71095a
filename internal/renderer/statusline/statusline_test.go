package statusline

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dshills/forge/internal/renderer/backend"
	"github.com/dshills/forge/internal/renderer/core"
)

func TestIndicator(t *testing.T) {
	assert.Equal(t, "3/3 lines", Indicator(2, 3))
	assert.Equal(t, "1/50 lines", Indicator(0, 50))
	assert.Equal(t, "0/0 lines", Indicator(0, 0))
}

func TestRender(t *testing.T) {
	b := backend.NewNullBackend(20, 2)
	s := New("notes.txt", DefaultStyle())

	s.Render(b, 1, 20, 2, 3)

	assert.Equal(t, "notes.txt  3/3 lines", b.Row(1))
	for x := 0; x < 20; x++ {
		assert.True(t, b.GetCell(x, 1).Style.Background.Equals(core.ColorRed), "column %d", x)
	}
	assert.Equal(t, "                    ", b.Row(0), "only the given row is touched")
}

func TestRenderOverlapIndicatorWins(t *testing.T) {
	b := backend.NewNullBackend(12, 1)
	s := New("averylongfilename", DefaultStyle())

	s.Render(b, 0, 12, 9, 10)

	assert.Equal(t, "a10/10 lines", b.Row(0))
}

func TestRenderNarrowGrid(t *testing.T) {
	b := backend.NewNullBackend(4, 1)
	s := New("f", DefaultStyle())

	s.Render(b, 0, 4, 0, 1)
	assert.Equal(t, "ines", b.Row(0), "the indicator is clipped on the left")
}

func TestRenderClearsPreviousContent(t *testing.T) {
	b := backend.NewNullBackend(16, 1)
	s := New("a", DefaultStyle())

	s.Render(b, 0, 16, 99, 100)
	s.Render(b, 0, 16, 0, 1)
	assert.Equal(t, "a      1/1 lines", b.Row(0))
}

func TestSetStyle(t *testing.T) {
	b := backend.NewNullBackend(10, 1)
	s := New("x", DefaultStyle())
	blue := core.DefaultStyle().WithBackground(core.ColorBlue)

	s.SetStyle(blue)
	s.Render(b, 0, 10, 0, 1)

	assert.True(t, s.Style().Equals(blue))
	assert.True(t, b.GetCell(0, 0).Style.Background.Equals(core.ColorBlue))
	assert.Equal(t, "x", s.Filename())
}
