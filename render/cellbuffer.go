package render

import (
	"fmt"
	"io"

	"github.com/mattn/go-runewidth"

	"github.com/flowui-dev/flowui/layout"
	"github.com/flowui-dev/flowui/vdom"
)

// Cell is one character position on the terminal grid: a glyph plus the
// style attributes it carries. A wide glyph (e.g. a CJK character) occupies
// Width cells; the cell at its trailing position is a zero-rune placeholder
// so front/back diffing never splits a wide glyph across a partial write.
type Cell struct {
	Rune  rune
	Style string
	Width int
}

// CellBuffer is a front/back pair of (glyph, style) grids, per spec.md
// §4.V's cell-buffer renderer: render draws into the back buffer, flush
// diffs it against the front buffer and emits the minimal set of
// cursor-move-plus-write operations, then the back buffer becomes front.
type CellBuffer struct {
	width, height int
	front, back   [][]Cell
}

// NewCellBuffer allocates a width×height buffer pair, both blank.
func NewCellBuffer(width, height int) *CellBuffer {
	cb := &CellBuffer{width: width, height: height}
	cb.front = blankGrid(width, height)
	cb.back = blankGrid(width, height)
	return cb
}

func blankGrid(w, h int) [][]Cell {
	grid := make([][]Cell, h)
	for y := range grid {
		row := make([]Cell, w)
		for x := range row {
			row[x] = Cell{Rune: ' ', Width: 1}
		}
		grid[y] = row
	}
	return grid
}

// Render clears the back buffer, walks node against geom's positions
// writing into it, and then calls Flush, so the diffed write sequence is
// written to w before Render returns.
func (cb *CellBuffer) Render(w io.Writer, node *vdom.RenderNode, geom *layout.Node) error {
	cb.back = blankGrid(cb.width, cb.height)
	cb.paint(node, geom, 0, 0)
	return cb.Flush(w)
}

// RenderNode re-paints a single subtree at geom's own position (relative to
// its parent's origin, already baked into geom.Result by the layout
// solver) without clearing the rest of the back buffer, then flushes.
func (cb *CellBuffer) RenderNode(w io.Writer, node *vdom.RenderNode, geom *layout.Node) error {
	if geom == nil {
		return nil
	}
	cb.paint(node, geom, 0, 0)
	return cb.Flush(w)
}

func (cb *CellBuffer) paint(node *vdom.RenderNode, geom *layout.Node, originX, originY float64) {
	if node == nil || geom == nil {
		return
	}
	if geom.Style.Display == layout.DisplayNone {
		return
	}

	x, y := originX+geom.Result.X, originY+geom.Result.Y

	if text, ok := node.Props["text"].(string); ok && node.Tag == "" {
		cb.writeString(int(x), int(y), text, styleOf(node))
		return
	}

	for i, c := range node.Children {
		var childGeom *layout.Node
		if i < len(geom.Children) {
			childGeom = geom.Children[i]
		}
		cb.paint(c, childGeom, x, y)
	}
}

func styleOf(node *vdom.RenderNode) string {
	if s, ok := node.Props["style"].(string); ok {
		return s
	}
	return ""
}

// writeString places s starting at (x, y), advancing by each rune's display
// width (runewidth.RuneWidth) so wide glyphs (CJK, emoji) consume the
// correct number of cells and don't overlap whatever follows.
func (cb *CellBuffer) writeString(x, y int, s string, style string) {
	if y < 0 || y >= cb.height {
		return
	}
	col := x
	for _, r := range s {
		w := runewidth.RuneWidth(r)
		if w == 0 {
			w = 1
		}
		if col >= 0 && col < cb.width {
			cb.back[y][col] = Cell{Rune: r, Style: style, Width: w}
			for k := 1; k < w && col+k < cb.width; k++ {
				cb.back[y][col+k] = Cell{Rune: 0, Style: style, Width: 0}
			}
		}
		col += w
		if col >= cb.width {
			break
		}
	}
}

// Flush diffs back against front cell by cell and writes a minimal
// sequence of cursor-move (ANSI CUP) plus glyph-write operations for every
// cell that differs, then promotes back to front. Both buffers hold the
// flushed frame afterward, so a later RenderNode paints over it.
func (cb *CellBuffer) Flush(w io.Writer) error {
	for y := 0; y < cb.height; y++ {
		for x := 0; x < cb.width; x++ {
			nf, nb := cb.front[y][x], cb.back[y][x]
			if nf == nb {
				continue
			}
			if _, err := fmt.Fprintf(w, "\x1b[%d;%dH", y+1, x+1); err != nil {
				return err
			}
			if nb.Width == 0 {
				continue
			}
			r := nb.Rune
			if r == 0 {
				r = ' '
			}
			if _, err := fmt.Fprintf(w, "%c", r); err != nil {
				return err
			}
		}
	}
	for y := range cb.back {
		copy(cb.front[y], cb.back[y])
	}
	return nil
}

// Width reports the display-cell width of s, accounting for wide glyphs —
// the same measure used internally to advance the write cursor, exposed
// for callers sizing text-leaf measure callbacks.
func Width(s string) int {
	return runewidth.StringWidth(s)
}
