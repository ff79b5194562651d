package viz

import (
	"math"
	"strings"
)

// Braille patterns: 2x4 dots per cell, Unicode offset 0x2800.
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

// Canvas is a braille pixel grid; the sub-pixel resolution is
// (Width*2) x (Height*4).
type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
		for j := range c.Grid[i] {
			c.Grid[i][j] = 0x2800
		}
	}
	return c
}

// Set lights the sub-pixel at (x, y).
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	col := x / 2
	row := y / 4
	if col >= c.Width || row >= c.Height {
		return
	}
	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row) + "\n")
	}
	return b.String()
}

// PhasePlot draws component cx against component cy of a trajectory,
// auto-scaled to the canvas.
func PhasePlot(states [][]float64, cx, cy, width, height int) string {
	c := NewCanvas(width, height)
	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, s := range states {
		minX = math.Min(minX, s[cx])
		maxX = math.Max(maxX, s[cx])
		minY = math.Min(minY, s[cy])
		maxY = math.Max(maxY, s[cy])
	}
	if maxX == minX {
		maxX = minX + 1
	}
	if maxY == minY {
		maxY = minY + 1
	}
	pw := float64(width*2 - 1)
	ph := float64(height*4 - 1)
	for _, s := range states {
		px := int((s[cx] - minX) / (maxX - minX) * pw)
		py := int((maxY - s[cy]) / (maxY - minY) * ph)
		c.Set(px, py)
	}
	return c.String()
}
