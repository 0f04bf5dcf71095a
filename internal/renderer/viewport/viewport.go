// Package viewport maps document lines onto a fixed character grid.
//
// Engine.Forward fills the grid top-down from a first line and reports the
// last line it reached; Engine.Reverse fills it bottom-up from a last line and
// reports the first. Both stream each line byte by byte: '\n' ends the line,
// '\t' becomes TabWidth blank cells, every other byte is one cell, and a line
// that reaches the right edge with content left wraps onto another row.
package viewport

import (
	"github.com/dshills/forge/internal/document"
	"github.com/dshills/forge/internal/renderer/core"
)

// DefaultTabWidth is the number of blank cells a tab byte expands to.
const DefaultTabWidth = 4

// Surface is the part of a display backend the layout passes write to.
type Surface interface {
	SetCell(x, y int, cell core.Cell)
	Fill(rect core.ScreenRect, cell core.Cell)
}

// TabPolicy selects how tab cells interact with the right edge of the grid.
type TabPolicy int

const (
	// TabOverflow writes all cells of a tab before checking the wrap
	// boundary. A tab starting within TabWidth-1 columns of the edge runs
	// past it; the extra cells land in row-major order at the start of the
	// row below, and the line stops wrapping from then on because the
	// column never lands exactly on the edge again.
	TabOverflow TabPolicy = iota

	// TabWrap checks the wrap boundary before every tab cell, so tabs wrap
	// like any other content.
	TabWrap
)

func (p TabPolicy) String() string {
	if p == TabWrap {
		return "wrap"
	}
	return "overflow"
}

// Options controls byte-to-cell expansion.
type Options struct {
	TabWidth int
	Tabs     TabPolicy
}

// DefaultOptions returns four-cell tabs with the overflow policy.
func DefaultOptions() Options {
	return Options{TabWidth: DefaultTabWidth, Tabs: TabOverflow}
}

// Viewport is the scroll position: the first and last document lines shown.
// BottomLine is only ever written by a layout pass.
type Viewport struct {
	TopLine    int
	BottomLine int
}

// Engine renders a document through a viewport.
type Engine struct {
	doc  *document.Document
	opts Options
}

// NewEngine creates an engine for doc.
func NewEngine(doc *document.Document, opts Options) *Engine {
	e := &Engine{doc: doc}
	e.SetOptions(opts)
	return e
}

// SetOptions replaces the engine options. A non-positive tab width falls
// back to DefaultTabWidth.
func (e *Engine) SetOptions(opts Options) {
	if opts.TabWidth < 1 {
		opts.TabWidth = DefaultTabWidth
	}
	e.opts = opts
}

// Options returns the current options.
func (e *Engine) Options() Options {
	return e.opts
}

// Document returns the document being laid out.
func (e *Engine) Document() *document.Document {
	return e.doc
}

// Forward lays out the document from line top into rows [0, displayHeight)
// and returns the bottom line: the last document line if it was reached,
// otherwise the line occupying the last row.
func (e *Engine) Forward(s Surface, top, width, displayHeight int) int {
	if width <= 0 || displayHeight <= 0 {
		return top
	}
	clearRows(s, width, displayHeight)

	if e.doc.Len() == 0 {
		return 0
	}
	last := e.doc.LastIndex()
	line := min(max(top, 0), last)

	c := &cursor{s: s, width: width, rows: displayHeight}
	wrapDown := func(row int) (int, bool) {
		if row < displayHeight-1 {
			return row + 1, true
		}
		return row, false
	}

	for c.row < displayHeight {
		e.streamLine(c, e.doc.Line(line), wrapDown)
		if line == last {
			return line
		}
		c.row++
		line++
	}
	return line - 1
}

// Reverse lays out the document upward, starting with line bottom on the row
// just above the status row (height-2), and returns the first line it
// reached. A wrapped line continues on the row above its start. The result is
// not reconciled with Forward: when the topmost line is cut off by the top of
// the grid, Forward from the returned line will end above bottom.
func (e *Engine) Reverse(s Surface, bottom, width, height int) int {
	rows := height - 1
	if e.doc.Len() == 0 {
		return 0
	}
	line := min(max(bottom, 0), e.doc.LastIndex())
	if width <= 0 || rows <= 0 {
		return line
	}
	clearRows(s, width, rows)

	c := &cursor{s: s, width: width, rows: rows, row: rows - 1}
	wrapUp := func(row int) (int, bool) {
		if row > 0 {
			return row - 1, true
		}
		return row, false
	}

	for c.row >= 0 && line >= 0 {
		e.streamLine(c, e.doc.Line(line), wrapUp)
		c.row--
		line--
	}
	return line + 1
}

// RenderForward runs Forward from vp.TopLine for a grid of the given size,
// reserving the last row for the status line, and records the bottom line.
func (e *Engine) RenderForward(s Surface, vp *Viewport, width, height int) {
	vp.BottomLine = e.Forward(s, vp.TopLine, width, height-1)
}

// RenderBottom pins the last document line to the bottom of the grid and
// derives the top line with Reverse.
func (e *Engine) RenderBottom(s Surface, vp *Viewport, width, height int) {
	vp.BottomLine = e.doc.LastIndex()
	vp.TopLine = e.Reverse(s, vp.BottomLine, width, height)
}

// cursor tracks the write position within the content rows.
type cursor struct {
	s     Surface
	width int
	rows  int
	col   int
	row   int
}

// put writes cell at the cursor and advances one column. A column past the
// right edge addresses the grid in row-major order, spilling into the rows
// below; anything outside the content rows is dropped.
func (c *cursor) put(cell core.Cell) {
	x, y := c.col, c.row
	if x >= c.width {
		y += x / c.width
		x %= c.width
	}
	if y >= 0 && y < c.rows {
		c.s.SetCell(x, y, cell)
	}
	c.col++
}

// streamLine writes one document line starting at column 0 of the cursor
// row. wrap is asked for the next row whenever the column reaches the right
// edge with content left; when it refuses, the rest of the line is dropped.
// The row the line ends on is blank-filled to the right edge.
func (e *Engine) streamLine(c *cursor, line document.Line, wrap func(row int) (int, bool)) {
	blank := core.EmptyCell()
	c.col = 0

stream:
	for i, b := range line {
		switch b {
		case '\n':
			break stream
		case '\t':
			for k := 0; k < e.opts.TabWidth; k++ {
				if e.opts.Tabs == TabWrap && c.col == c.width {
					next, ok := wrap(c.row)
					if !ok {
						break stream
					}
					c.col, c.row = 0, next
				}
				c.put(blank)
			}
		default:
			c.put(core.ByteCell(b))
		}

		if c.col == c.width {
			if !hasContent(line, i+1) {
				break
			}
			next, ok := wrap(c.row)
			if !ok {
				break
			}
			c.col, c.row = 0, next
		}
	}

	for c.col < c.width {
		c.put(blank)
	}
}

// hasContent reports whether line has displayable bytes at or after i.
func hasContent(line document.Line, i int) bool {
	return i < len(line) && line[i] != '\n'
}

func clearRows(s Surface, width, rows int) {
	s.Fill(core.RectFromSize(0, 0, rows, width), core.EmptyCell())
}
