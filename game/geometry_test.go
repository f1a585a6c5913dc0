package game

import (
	"testing"

	"github.com/beka-birhanu/vinom-drift/maze"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeometry(t *testing.T) {
	g, err := NewGeometry(800, 600, 6, 8)
	require.NoError(t, err)
	assert.Equal(t, 100.0, g.CellWidth)
	assert.Equal(t, 100.0, g.CellHeight)

	tests := []struct {
		name string
		x, y float64
		want maze.CellPosition
	}{
		{"top left pixel", 0, 0, maze.CellPosition{Row: 0, Col: 0}},
		{"inside a cell", 250, 130, maze.CellPosition{Row: 1, Col: 2}},
		{"bottom right pixel", 799, 599, maze.CellPosition{Row: 5, Col: 7}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pos, err := g.CellAt(tt.x, tt.y)
			require.NoError(t, err)
			assert.Equal(t, tt.want, pos)
		})
	}

	t.Run("outside the screen", func(t *testing.T) {
		for _, px := range [][2]float64{{-1, 10}, {10, -0.5}, {800, 10}, {10, 600}} {
			_, err := g.CellAt(px[0], px[1])
			assert.ErrorIs(t, err, maze.ErrOutOfBounds)
		}
	})

	t.Run("center round trips", func(t *testing.T) {
		pos := maze.CellPosition{Row: 4, Col: 3}
		x, y := g.Center(pos)
		assert.Equal(t, 350.0, x)
		assert.Equal(t, 450.0, y)
		back, err := g.CellAt(x, y)
		require.NoError(t, err)
		assert.Equal(t, pos, back)
	})
}

func TestNewGeometryRejects(t *testing.T) {
	_, err := NewGeometry(0, 600, 3, 3)
	assert.ErrorIs(t, err, ErrInvalidScreen)
	_, err = NewGeometry(800, 600, 0, 3)
	assert.ErrorIs(t, err, maze.ErrInvalidDimensions)

	var zero Geometry
	_, err = zero.CellAt(1, 1)
	assert.ErrorIs(t, err, ErrInvalidScreen)
}
