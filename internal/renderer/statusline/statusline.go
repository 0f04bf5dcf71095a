// Package statusline renders the pager's bottom row: the file name on the
// left and the position indicator on the right.
package statusline

import (
	"strconv"

	"github.com/dshills/forge/internal/renderer/core"
)

// Surface is the part of a display backend the status line writes to.
type Surface interface {
	SetCell(x, y int, cell core.Cell)
	Fill(rect core.ScreenRect, cell core.Cell)
}

// DefaultStyle is white text on the red highlight background.
func DefaultStyle() core.Style {
	return core.DefaultStyle().WithBackground(core.ColorRed).WithForeground(core.ColorWhite)
}

// StatusLine renders the filename and position indicator.
type StatusLine struct {
	filename string
	style    core.Style
}

// New creates a status line for filename.
func New(filename string, style core.Style) *StatusLine {
	return &StatusLine{filename: filename, style: style}
}

// SetStyle changes the highlight style used for the whole row.
func (s *StatusLine) SetStyle(style core.Style) {
	s.style = style
}

// Style returns the current highlight style.
func (s *StatusLine) Style() core.Style {
	return s.style
}

// Filename returns the name shown on the left.
func (s *StatusLine) Filename() string {
	return s.filename
}

// Render draws row y of a grid width cells wide. The filename is written
// first and the indicator second, so the indicator wins where they overlap.
func (s *StatusLine) Render(surf Surface, y, width, bottomLine, totalLines int) {
	surf.Fill(core.RectFromSize(y, 0, 1, width), core.NewStyledCell(' ', s.style))

	x := 0
	for _, r := range s.filename {
		if x >= width {
			break
		}
		surf.SetCell(x, y, core.NewStyledCell(r, s.style))
		x++
	}

	ind := []rune(Indicator(bottomLine, totalLines))
	for i := range ind {
		x := width - 1 - i
		if x < 0 {
			break
		}
		surf.SetCell(x, y, core.NewStyledCell(ind[len(ind)-1-i], s.style))
	}
}

// Indicator formats the position as "<bottom+1>/<total> lines".
// An empty document reads "0/0 lines".
func Indicator(bottomLine, totalLines int) string {
	shown := bottomLine + 1
	if totalLines == 0 {
		shown = 0
	}
	return strconv.Itoa(shown) + "/" + strconv.Itoa(totalLines) + " lines"
}
