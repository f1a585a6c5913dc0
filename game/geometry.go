package game

import (
	"errors"
	"fmt"

	"github.com/beka-birhanu/vinom-drift/maze"
)

var ErrInvalidScreen = errors.New("screen size must be positive")

// Geometry maps renderer pixels to grid cells. It is computed once from the
// screen size and the grid dimensions.
type Geometry struct {
	CellWidth  float64 `json:"cell_width"`
	CellHeight float64 `json:"cell_height"`
	rows       int
	cols       int
}

// NewGeometry splits a width x height screen into rows x cols cells.
func NewGeometry(width, height float64, rows, cols int) (Geometry, error) {
	if width <= 0 || height <= 0 {
		return Geometry{}, fmt.Errorf("%w: %vx%v", ErrInvalidScreen, width, height)
	}
	if rows <= 0 || cols <= 0 {
		return Geometry{}, fmt.Errorf("%w: %dx%d", maze.ErrInvalidDimensions, rows, cols)
	}
	return Geometry{
		CellWidth:  width / float64(cols),
		CellHeight: height / float64(rows),
		rows:       rows,
		cols:       cols,
	}, nil
}

// CellAt returns the cell under the pixel (x, y).
func (g Geometry) CellAt(x, y float64) (maze.CellPosition, error) {
	if g.CellWidth <= 0 || g.CellHeight <= 0 {
		return maze.CellPosition{}, ErrInvalidScreen
	}
	pos := maze.CellPosition{Row: int(y / g.CellHeight), Col: int(x / g.CellWidth)}
	if x < 0 || y < 0 || pos.Row >= g.rows || pos.Col >= g.cols {
		return maze.CellPosition{}, fmt.Errorf("%w: pixel (%v,%v)", maze.ErrOutOfBounds, x, y)
	}
	return pos, nil
}

// Center returns the pixel at the middle of the cell at pos.
func (g Geometry) Center(pos maze.CellPosition) (float64, float64) {
	return float64(pos.Col)*g.CellWidth + g.CellWidth/2, float64(pos.Row)*g.CellHeight + g.CellHeight/2
}
