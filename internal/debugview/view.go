// Package debugview renders tile-occupancy grids as images for debug
// tooling. It has no knowledge of the virtual texture core; callers mark
// cells and receive a scaled RGBA image.
package debugview

import (
	"image"
	"image/color"

	xdraw "golang.org/x/image/draw"
)

// Grid is a 2D occupancy bitmap in tile space.
type Grid struct {
	w, h  int
	cells []bool
}

// NewGrid creates a w-by-h grid with all cells unmarked.
// Dimensions are clamped to at least 1.
func NewGrid(w, h int) *Grid {
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return &Grid{w: w, h: h, cells: make([]bool, w*h)}
}

// Width returns the grid width in cells.
func (g *Grid) Width() int { return g.w }

// Height returns the grid height in cells.
func (g *Grid) Height() int { return g.h }

// Mark sets the cell at (x, y). Out-of-range coordinates are ignored.
func (g *Grid) Mark(x, y int) {
	if x < 0 || y < 0 || x >= g.w || y >= g.h {
		return
	}
	g.cells[y*g.w+x] = true
}

// MarkRect sets every cell in the rectangle. Cells outside the grid are
// ignored, so callers may pass rects that hang off the edge.
func (g *Grid) MarkRect(x, y, w, h int) {
	for cy := y; cy < y+h; cy++ {
		for cx := x; cx < x+w; cx++ {
			g.Mark(cx, cy)
		}
	}
}

// Marked reports whether the cell at (x, y) is set.
func (g *Grid) Marked(x, y int) bool {
	if x < 0 || y < 0 || x >= g.w || y >= g.h {
		return false
	}
	return g.cells[y*g.w+x]
}

var (
	markedColor   = color.RGBA{R: 0xE0, G: 0x40, B: 0x40, A: 0xFF}
	unmarkedColor = color.RGBA{R: 0x20, G: 0x20, B: 0x20, A: 0xFF}
)

// Render draws the grid one pixel per cell, then scales it up by the given
// factor with nearest-neighbor so tile boundaries stay crisp. A scale below
// 1 is treated as 1.
func Render(g *Grid, scale int) *image.RGBA {
	if scale < 1 {
		scale = 1
	}
	src := image.NewRGBA(image.Rect(0, 0, g.w, g.h))
	for y := 0; y < g.h; y++ {
		for x := 0; x < g.w; x++ {
			if g.Marked(x, y) {
				src.SetRGBA(x, y, markedColor)
			} else {
				src.SetRGBA(x, y, unmarkedColor)
			}
		}
	}
	if scale == 1 {
		return src
	}
	dst := image.NewRGBA(image.Rect(0, 0, g.w*scale, g.h*scale))
	xdraw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return dst
}
