package viewport

import (
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/forge/internal/document"
	"github.com/dshills/forge/internal/renderer/backend"
	"github.com/dshills/forge/internal/renderer/core"
)

func rows(b *backend.NullBackend, n int) []string {
	out := make([]string, n)
	for y := range out {
		out[y] = b.Row(y)
	}
	return out
}

func repeatLines(line string, n int) *document.Document {
	lines := make([]string, n)
	for i := range lines {
		lines[i] = line
	}
	return document.FromLines("doc", lines...)
}

func TestForwardShortDocument(t *testing.T) {
	doc := document.FromLines("doc", "aaa\n", "bbb\n", "ccc\n")
	e := NewEngine(doc, DefaultOptions())
	b := backend.NewNullBackend(10, 4)

	bottom := e.Forward(b, 0, 10, 3)

	assert.Equal(t, 2, bottom)
	assert.Equal(t, []string{
		"aaa       ",
		"bbb       ",
		"ccc       ",
	}, rows(b, 3))
}

func TestForwardStopsAtLastLine(t *testing.T) {
	doc := document.FromLines("doc", "a\n", "b\n")
	e := NewEngine(doc, DefaultOptions())
	b := backend.NewNullBackend(4, 6)

	assert.Equal(t, 1, e.Forward(b, 0, 4, 5))
	assert.Equal(t, []string{"a   ", "b   ", "    ", "    ", "    "}, rows(b, 5))
}

func TestForwardBottomIsLastFilledRow(t *testing.T) {
	e := NewEngine(repeatLines("x\n", 50), DefaultOptions())
	b := backend.NewNullBackend(5, 6)

	assert.Equal(t, 4, e.Forward(b, 0, 5, 5))
	assert.Equal(t, 14, e.Forward(b, 10, 5, 5))
	assert.Equal(t, 49, e.Forward(b, 45, 5, 5))
	assert.Equal(t, 49, e.Forward(b, 47, 5, 5))
}

func TestForwardExactWidthLine(t *testing.T) {
	doc := document.FromLines("doc", "abcdefghij\n", "k\n")
	e := NewEngine(doc, DefaultOptions())
	b := backend.NewNullBackend(10, 4)

	assert.Equal(t, 1, e.Forward(b, 0, 10, 3))
	assert.Equal(t, []string{
		"abcdefghij",
		"k         ",
		"          ",
	}, rows(b, 3), "a line of exactly width bytes does not wrap onto an empty row")
}

func TestForwardWrapsLongLines(t *testing.T) {
	doc := document.FromLines("doc", "abcdefgh\n", "z\n")
	e := NewEngine(doc, DefaultOptions())
	b := backend.NewNullBackend(3, 5)

	assert.Equal(t, 1, e.Forward(b, 0, 3, 4))
	assert.Equal(t, []string{"abc", "def", "gh ", "z  "}, rows(b, 4))
}

func TestForwardTruncatesOnLastRow(t *testing.T) {
	doc := document.FromLines("doc", "abcdefgh\n", "z\n")
	e := NewEngine(doc, DefaultOptions())
	b := backend.NewNullBackend(3, 3)

	assert.Equal(t, 0, e.Forward(b, 0, 3, 2))
	assert.Equal(t, []string{"abc", "def"}, rows(b, 2))
}

func TestForwardTabExpansion(t *testing.T) {
	tests := []struct {
		name string
		line string
		want string
	}{
		{name: "leading tab", line: "\tx\n", want: "    x     "},
		{name: "mid tab", line: "ab\tc\n", want: "ab    c   "},
		{name: "fixed width not tab stops", line: "abc\td\n", want: "abc    d  "},
		{name: "two tabs", line: "\t\t!\n", want: "        ! "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEngine(document.FromLines("doc", tt.line), DefaultOptions())
			b := backend.NewNullBackend(10, 2)
			e.Forward(b, 0, 10, 1)
			assert.Equal(t, tt.want, b.Row(0))
		})
	}
}

func TestForwardCustomTabWidth(t *testing.T) {
	e := NewEngine(document.FromLines("doc", "a\tb\n"), Options{TabWidth: 2})
	b := backend.NewNullBackend(6, 2)
	e.Forward(b, 0, 6, 1)
	assert.Equal(t, "a  b  ", b.Row(0))

	e.SetOptions(Options{TabWidth: 0})
	assert.Equal(t, DefaultTabWidth, e.Options().TabWidth)
}

func TestForwardTabOverflowQuirk(t *testing.T) {
	doc := document.FromLines("doc", "abcd\tXY\n", "next\n")

	t.Run("overflow", func(t *testing.T) {
		e := NewEngine(doc, DefaultOptions())
		b := backend.NewNullBackend(6, 4)

		assert.Equal(t, 1, e.Forward(b, 0, 6, 3))
		assert.Equal(t, []string{
			"abcd  ",
			"next  ",
			"      ",
		}, rows(b, 3), "the spilled tail is overwritten by the next line")
	})

	t.Run("wrap", func(t *testing.T) {
		e := NewEngine(doc, Options{TabWidth: 4, Tabs: TabWrap})
		b := backend.NewNullBackend(6, 4)

		assert.Equal(t, 1, e.Forward(b, 0, 6, 3))
		assert.Equal(t, []string{
			"abcd  ",
			"  XY  ",
			"next  ",
		}, rows(b, 3))
	})
}

func TestForwardTabOverflowSpillsLinearly(t *testing.T) {
	doc := document.FromLines("doc", "ab\tcdefgh\n", "Z\n")

	overflow := NewEngine(doc, DefaultOptions())
	b := backend.NewNullBackend(4, 5)
	assert.Equal(t, 1, overflow.Forward(b, 0, 4, 4))
	assert.Equal(t, []string{"ab  ", "Z   ", "efgh", "    "}, rows(b, 4),
		"the row counter does not advance, so the next line lands on row 1 and the spill survives below it")

	wrap := NewEngine(doc, Options{TabWidth: 4, Tabs: TabWrap})
	b = backend.NewNullBackend(4, 5)
	assert.Equal(t, 1, wrap.Forward(b, 0, 4, 4))
	assert.Equal(t, []string{"ab  ", "  cd", "efgh", "Z   "}, rows(b, 4))
}

func TestForwardTabWrapRefusedOnLastRow(t *testing.T) {
	e := NewEngine(document.FromLines("doc", "abc\tz\n"), Options{TabWidth: 4, Tabs: TabWrap})
	b := backend.NewNullBackend(4, 2)

	assert.Equal(t, 0, e.Forward(b, 0, 4, 1))
	assert.Equal(t, "abc ", b.Row(0))
}

func TestForwardClearsStaleContent(t *testing.T) {
	doc := document.FromLines("doc", "a long line\n", "short\n")
	e := NewEngine(doc, DefaultOptions())
	b := backend.NewNullBackend(12, 3)

	e.Forward(b, 0, 12, 2)
	e.Forward(b, 1, 12, 2)
	assert.Equal(t, []string{"short       ", "            "}, rows(b, 2))
}

func TestForwardDoesNotTouchStatusRow(t *testing.T) {
	e := NewEngine(document.FromLines("doc", "ab\t\n"), DefaultOptions())
	b := backend.NewNullBackend(4, 2)
	b.SetCell(0, 1, core.NewCell('S'))

	e.Forward(b, 0, 4, 1)
	assert.Equal(t, 'S', b.GetCell(0, 1).Rune)
}

func TestForwardDegenerateSizes(t *testing.T) {
	e := NewEngine(document.FromLines("doc", "a\n", "b\n"), DefaultOptions())
	b := backend.NewNullBackend(4, 1)

	assert.Equal(t, 1, e.Forward(b, 1, 4, 0))
	assert.Equal(t, 1, e.Forward(b, 1, 0, 3))

	empty := NewEngine(document.FromLines("empty"), DefaultOptions())
	b = backend.NewNullBackend(4, 3)
	b.SetCell(0, 0, core.NewCell('x'))
	assert.Equal(t, 0, empty.Forward(b, 0, 4, 2))
	assert.Equal(t, "    ", b.Row(0))
}

func randomDocument(r *rand.Rand, n int) *document.Document {
	alphabet := "abcdefgh \t"
	lines := make([]string, n)
	for i := range lines {
		var sb strings.Builder
		for j := r.IntN(30); j > 0; j-- {
			sb.WriteByte(alphabet[r.IntN(len(alphabet))])
		}
		if i < n-1 || r.IntN(2) == 0 {
			sb.WriteByte('\n')
		}
		lines[i] = sb.String()
	}
	return document.FromLines("rand", lines...)
}

func TestForwardBottomWithinBounds(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))

	for iter := 0; iter < 50; iter++ {
		n := 1 + r.IntN(40)
		doc := randomDocument(r, n)
		width := 1 + r.IntN(20)
		height := 1 + r.IntN(15)

		for _, tabs := range []TabPolicy{TabOverflow, TabWrap} {
			e := NewEngine(doc, Options{TabWidth: 4, Tabs: tabs})
			for top := 0; top < n; top++ {
				b := backend.NewNullBackend(width, height+1)
				bottom := e.Forward(b, top, width, height)
				require.GreaterOrEqual(t, bottom, top, "n=%d w=%d h=%d top=%d", n, width, height, top)
				require.LessOrEqual(t, bottom, n-1, "n=%d w=%d h=%d top=%d", n, width, height, top)
			}
		}
	}
}

func TestForwardDeterministic(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 7))
	doc := randomDocument(r, 30)
	e := NewEngine(doc, DefaultOptions())

	for top := 0; top < doc.Len(); top += 3 {
		first := backend.NewNullBackend(9, 8)
		second := backend.NewNullBackend(9, 8)
		// Different prior content must not leak into the result.
		second.Fill(core.RectFromSize(0, 0, 8, 9), core.NewCell('#'))
		e.Forward(second, doc.Len()-1, 9, 7)

		b1 := e.Forward(first, top, 9, 7)
		b2 := e.Forward(second, top, 9, 7)
		assert.Equal(t, b1, b2)
		assert.Equal(t, rows(first, 7), rows(second, 7))
	}
}

func TestReverseFillsFromBottom(t *testing.T) {
	lines := make([]string, 50)
	for i := range lines {
		lines[i] = string(rune('A'+i%26)) + "\n"
	}
	e := NewEngine(document.FromLines("doc", lines...), DefaultOptions())
	b := backend.NewNullBackend(5, 6)

	top := e.Reverse(b, 49, 5, 6)

	assert.Equal(t, 45, top)
	assert.Equal(t, []string{"T    ", "U    ", "V    ", "W    ", "X    "}, rows(b, 5))
}

func TestReverseRoundTripWithoutWrapping(t *testing.T) {
	e := NewEngine(repeatLines("x\n", 50), DefaultOptions())
	b := backend.NewNullBackend(5, 6)

	top := e.Reverse(b, 49, 5, 6)
	require.Equal(t, 45, top)
	assert.Equal(t, 49, e.Forward(b, top, 5, 5))
}

func TestReverseWrapsUpward(t *testing.T) {
	doc := document.FromLines("doc", "1\n", "2\n", "3\n", "4\n", "5\n", "abcdefgh\n")
	e := NewEngine(doc, DefaultOptions())
	b := backend.NewNullBackend(4, 4)

	top := e.Reverse(b, 5, 4, 4)

	assert.Equal(t, 4, top)
	assert.Equal(t, []string{"5   ", "efgh", "abcd"}, rows(b, 3),
		"a wrapped line continues on the row above its start")
}

func TestReverseDoesNotRoundTripWhenTopLineIsCut(t *testing.T) {
	doc := document.FromLines("doc", "0\n", "ABCDEFGH\n", "2\n", "3\n")
	e := NewEngine(doc, DefaultOptions())
	b := backend.NewNullBackend(4, 4)

	top := e.Reverse(b, 3, 4, 4)
	require.Equal(t, 1, top)
	assert.Equal(t, []string{"ABCD", "2   ", "3   "}, rows(b, 3))

	assert.Equal(t, 2, e.Forward(b, top, 4, 3),
		"forward from the reverse top ends one line short of the original bottom")
}

func TestReverseShortDocument(t *testing.T) {
	doc := document.FromLines("doc", "a\n", "b\n")
	e := NewEngine(doc, DefaultOptions())
	b := backend.NewNullBackend(3, 5)

	assert.Equal(t, 0, e.Reverse(b, 1, 3, 5))
	assert.Equal(t, []string{"   ", "   ", "a  ", "b  "}, rows(b, 4))
}

func TestReverseDegenerateSizes(t *testing.T) {
	e := NewEngine(document.FromLines("doc", "a\n", "b\n"), DefaultOptions())
	b := backend.NewNullBackend(3, 1)

	assert.Equal(t, 1, e.Reverse(b, 1, 3, 1))
	assert.Equal(t, 1, e.Reverse(b, 7, 0, 4))
	assert.Equal(t, 0, NewEngine(document.FromLines("empty"), DefaultOptions()).Reverse(b, 0, 3, 4))
}

func TestRenderHelpers(t *testing.T) {
	e := NewEngine(repeatLines("x\n", 20), DefaultOptions())
	b := backend.NewNullBackend(4, 6)
	vp := &Viewport{}

	e.RenderForward(b, vp, 4, 6)
	assert.Equal(t, Viewport{TopLine: 0, BottomLine: 4}, *vp)

	e.RenderBottom(b, vp, 4, 6)
	assert.Equal(t, Viewport{TopLine: 15, BottomLine: 19}, *vp)
}

func TestTabPolicyString(t *testing.T) {
	assert.Equal(t, "overflow", TabOverflow.String())
	assert.Equal(t, "wrap", TabWrap.String())
}
