package ui

import (
	"fmt"
	"io"
	"strings"
)

type cell struct {
	ch    rune
	style string
}

// frame is an in-memory cell buffer for one full-screen redraw. Screens
// compose into it and render flushes the whole thing with cursor
// addressing, so a frame is always consistent on screen.
type frame struct {
	width  int
	height int
	cells  [][]cell
}

func newFrame(width, height int) *frame {
	f := &frame{width: width, height: height}
	f.cells = make([][]cell, height)
	for y := range f.cells {
		row := make([]cell, width)
		for x := range row {
			row[x] = cell{ch: ' '}
		}
		f.cells[y] = row
	}
	return f
}

// set writes text starting at (y, x), clipping at the frame edges.
func (f *frame) set(y, x int, text string, style string) {
	if y < 0 || y >= f.height {
		return
	}
	for _, r := range text {
		if x >= f.width {
			return
		}
		if x >= 0 {
			f.cells[y][x] = cell{ch: r, style: style}
		}
		x++
	}
}

// centered writes text centered horizontally on row y.
func (f *frame) centered(y int, text string, style string) {
	f.set(y, CenterX(f.width, text), text, style)
}

// border draws a box around the whole frame.
func (f *frame) border(style string) {
	for x := 0; x < f.width; x++ {
		f.cells[0][x] = cell{ch: '-', style: style}
		f.cells[f.height-1][x] = cell{ch: '-', style: style}
	}
	for y := 0; y < f.height; y++ {
		f.cells[y][0] = cell{ch: '|', style: style}
		f.cells[y][f.width-1] = cell{ch: '|', style: style}
	}
	for _, p := range [][2]int{{0, 0}, {0, f.width - 1}, {f.height - 1, 0}, {f.height - 1, f.width - 1}} {
		f.cells[p[0]][p[1]] = cell{ch: '+', style: style}
	}
}

// hline draws a horizontal rule inside the border on row y.
func (f *frame) hline(y int, style string) {
	if y <= 0 || y >= f.height-1 {
		return
	}
	for x := 1; x < f.width-1; x++ {
		f.cells[y][x] = cell{ch: '-', style: style}
	}
}

// messageBox overlays a bordered box with the given lines in the middle
// of the frame.
func (f *frame) messageBox(lines []string, style string) {
	boxWidth := 0
	for _, l := range lines {
		if n := len([]rune(l)); n > boxWidth {
			boxWidth = n
		}
	}
	boxWidth += 6
	if boxWidth > f.width {
		boxWidth = f.width
	}
	boxHeight := len(lines) + 4
	top := f.height/2 - boxHeight/2
	left := f.width/2 - boxWidth/2
	if top < 0 {
		top = 0
	}
	if left < 0 {
		left = 0
	}

	for y := top; y < top+boxHeight && y < f.height; y++ {
		for x := left; x < left+boxWidth && x < f.width; x++ {
			ch := ' '
			switch {
			case y == top || y == top+boxHeight-1:
				ch = '-'
			case x == left || x == left+boxWidth-1:
				ch = '|'
			}
			if (y == top || y == top+boxHeight-1) && (x == left || x == left+boxWidth-1) {
				ch = '+'
			}
			f.cells[y][x] = cell{ch: ch, style: style}
		}
	}
	for i, l := range lines {
		f.set(top+2+i, f.width/2-len([]rune(l))/2, l, style)
	}
}

// render flushes the frame to w using absolute cursor addressing. Styles
// are only re-emitted when they change between cells.
func (f *frame) render(w io.Writer) error {
	var b strings.Builder
	b.WriteString("\x1b[H")
	current := ""
	for y := 0; y < f.height; y++ {
		fmt.Fprintf(&b, "\x1b[%d;1H", y+1)
		for x := 0; x < f.width; x++ {
			c := f.cells[y][x]
			if c.style != current {
				b.WriteString(styleReset)
				b.WriteString(c.style)
				current = c.style
			}
			b.WriteRune(c.ch)
		}
	}
	b.WriteString(styleReset)
	_, err := io.WriteString(w, b.String())
	return err
}
