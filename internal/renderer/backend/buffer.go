package backend

import (
	"strings"

	"github.com/dshills/forge/internal/renderer/core"
)

// ScreenBuffer provides double-buffered rendering with change tracking.
// It maintains two buffers: front (displayed) and back (drawing).
// ComputeDiff reports what the next Swap would make visible.
type ScreenBuffer struct {
	width, height int
	front         [][]core.Cell
	back          [][]core.Cell
	dirty         [][]bool
	fullRedraw    bool
}

// NewScreenBuffer creates a screen buffer with the given dimensions.
func NewScreenBuffer(width, height int) *ScreenBuffer {
	sb := &ScreenBuffer{
		width:      max(width, 0),
		height:     max(height, 0),
		fullRedraw: true,
	}
	sb.allocate()
	return sb
}

func (sb *ScreenBuffer) allocate() {
	sb.front = make([][]core.Cell, sb.height)
	sb.back = make([][]core.Cell, sb.height)
	sb.dirty = make([][]bool, sb.height)

	for y := 0; y < sb.height; y++ {
		sb.front[y] = make([]core.Cell, sb.width)
		sb.back[y] = make([]core.Cell, sb.width)
		sb.dirty[y] = make([]bool, sb.width)

		for x := 0; x < sb.width; x++ {
			sb.front[y][x] = core.EmptyCell()
			sb.back[y][x] = core.EmptyCell()
		}
	}
}

// Resize resizes the buffer, preserving back-buffer content where possible.
func (sb *ScreenBuffer) Resize(width, height int) {
	width, height = max(width, 0), max(height, 0)
	if width == sb.width && height == sb.height {
		return
	}

	oldBack := sb.back
	copyHeight := min(sb.height, height)
	copyWidth := min(sb.width, width)

	sb.width = width
	sb.height = height
	sb.allocate()

	for y := 0; y < copyHeight; y++ {
		copy(sb.back[y][:copyWidth], oldBack[y][:copyWidth])
	}

	sb.fullRedraw = true
}

// Size returns the buffer dimensions.
func (sb *ScreenBuffer) Size() (width, height int) {
	return sb.width, sb.height
}

func (sb *ScreenBuffer) inBounds(x, y int) bool {
	return x >= 0 && x < sb.width && y >= 0 && y < sb.height
}

// SetCell sets a cell in the back buffer.
func (sb *ScreenBuffer) SetCell(x, y int, cell core.Cell) {
	if !sb.inBounds(x, y) {
		return
	}
	sb.back[y][x] = cell
	sb.dirty[y][x] = true
}

// GetCell returns a cell from the back buffer.
func (sb *ScreenBuffer) GetCell(x, y int) core.Cell {
	if !sb.inBounds(x, y) {
		return core.EmptyCell()
	}
	return sb.back[y][x]
}

// GetFrontCell returns a cell from the front buffer (currently displayed).
func (sb *ScreenBuffer) GetFrontCell(x, y int) core.Cell {
	if !sb.inBounds(x, y) {
		return core.EmptyCell()
	}
	return sb.front[y][x]
}

// Fill fills a rectangle with the given cell.
func (sb *ScreenBuffer) Fill(rect core.ScreenRect, cell core.Cell) {
	for y := max(rect.Top, 0); y < rect.Bottom && y < sb.height; y++ {
		for x := max(rect.Left, 0); x < rect.Right && x < sb.width; x++ {
			sb.back[y][x] = cell
			sb.dirty[y][x] = true
		}
	}
}

// DiffChange represents a cell change for synchronization.
type DiffChange struct {
	X, Y int
	Cell core.Cell
}

// ComputeDiff returns the changes a swap would make visible.
// Returns nil if no changes are needed.
func (sb *ScreenBuffer) ComputeDiff() []DiffChange {
	var changes []DiffChange

	for y := 0; y < sb.height; y++ {
		for x := 0; x < sb.width; x++ {
			if !sb.fullRedraw && !sb.dirty[y][x] {
				continue
			}
			if sb.fullRedraw || !sb.back[y][x].Equals(sb.front[y][x]) {
				changes = append(changes, DiffChange{X: x, Y: y, Cell: sb.back[y][x]})
			}
		}
	}

	return changes
}

// Swap copies the back buffer to the front buffer and clears dirty flags.
func (sb *ScreenBuffer) Swap() {
	for y := 0; y < sb.height; y++ {
		copy(sb.front[y], sb.back[y])
		clear(sb.dirty[y])
	}
	sb.fullRedraw = false
}

// MarkFullRedraw forces every cell into the next diff.
func (sb *ScreenBuffer) MarkFullRedraw() {
	sb.fullRedraw = true
}

// RowString returns the runes of back-buffer row y.
func (sb *ScreenBuffer) RowString(y int) string {
	return rowString(sb.back, y, sb.height)
}

// FrontRowString returns the runes of front-buffer row y.
func (sb *ScreenBuffer) FrontRowString(y int) string {
	return rowString(sb.front, y, sb.height)
}

func rowString(rows [][]core.Cell, y, height int) string {
	if y < 0 || y >= height {
		return ""
	}
	var b strings.Builder
	for _, c := range rows[y] {
		b.WriteRune(c.Rune)
	}
	return b.String()
}
