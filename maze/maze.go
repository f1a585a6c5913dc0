/*
Package maze provides the topology engine of a perfect maze that keeps
changing shape.

A Maze is a rows x cols grid of cells whose open edges always form a spanning
tree of the grid graph: every cell is reachable from every other cell through
exactly one simple path. The package generates such trees with a randomized
depth-first backtracker, answers path queries and mutates the tree one edge
swap at a time through the Mutator strategies.

Every random choice is drawn from a *rand.Rand supplied by the caller, so a
fixed seed reproduces the same sequence of mazes.
*/
package maze

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
)

// MaxDimension bounds both the row and the column count of a maze.
const MaxDimension = 1024

var (
	ErrInvalidDimensions = errors.New("invalid maze dimensions")
	ErrUnknownDirection  = errors.New("unknown direction")
	ErrOutOfBounds       = errors.New("position is out of the maze")
)

// Origin is the cell mazes are generated from.
var Origin = CellPosition{Row: 0, Col: 0}

// Maze is a rectangular grid of cells. The zero value is not usable; build
// one with New or NewGenerated.
type Maze struct {
	rows int
	cols int
	grid [][]Cell
}

// New allocates a rows x cols maze with every wall closed. The result is in
// the Uninitialized state until Generate is called.
func New(rows, cols int) (*Maze, error) {
	if min(rows, cols) <= 0 || max(rows, cols) > MaxDimension {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, rows, cols)
	}

	grid := make([][]Cell, rows)
	for r := range grid {
		grid[r] = make([]Cell, cols)
		for c := range grid[r] {
			grid[r][c] = closedCell()
		}
	}

	return &Maze{rows: rows, cols: cols, grid: grid}, nil
}

// NewGenerated allocates a maze and builds a spanning tree over it from
// Origin.
func NewGenerated(rows, cols int, rng *rand.Rand) (*Maze, error) {
	m, err := New(rows, cols)
	if err != nil {
		return nil, err
	}
	m.Generate(Origin, rng)
	return m, nil
}

// Rows returns the number of rows.
func (m *Maze) Rows() int { return m.rows }

// Cols returns the number of columns.
func (m *Maze) Cols() int { return m.cols }

// CellCount returns rows*cols.
func (m *Maze) CellCount() int { return m.rows * m.cols }

// InBound reports whether pos lies inside the grid.
func (m *Maze) InBound(pos CellPosition) bool {
	return pos.Row >= 0 && pos.Row < m.rows && pos.Col >= 0 && pos.Col < m.cols
}

// Cell returns a copy of the cell at pos.
func (m *Maze) Cell(pos CellPosition) Cell {
	m.mustInBound(pos)
	return m.grid[pos.Row][pos.Col]
}

// WallMask returns the closed walls of the cell at pos, indexed by Direction.
func (m *Maze) WallMask(pos CellPosition) [4]bool {
	return m.Cell(pos).Walls
}

// Neighbors returns the in-bound positions adjacent to pos, in Direction
// order.
func (m *Maze) Neighbors(pos CellPosition) []CellPosition {
	m.mustInBound(pos)
	neighbors := make([]CellPosition, 0, directionCount)
	for _, d := range Directions {
		if next := pos.Step(d); m.InBound(next) {
			neighbors = append(neighbors, next)
		}
	}
	return neighbors
}

// OpenNeighbors returns the neighbours of pos joined to it by an open edge.
func (m *Maze) OpenNeighbors(pos CellPosition) []CellPosition {
	return m.filterNeighbors(pos, false)
}

// ClosedNeighbors returns the in-bound neighbours of pos behind a closed
// wall.
func (m *Maze) ClosedNeighbors(pos CellPosition) []CellPosition {
	return m.filterNeighbors(pos, true)
}

func (m *Maze) filterNeighbors(pos CellPosition, closed bool) []CellPosition {
	m.mustInBound(pos)
	var result []CellPosition
	cell := m.grid[pos.Row][pos.Col]
	for _, next := range m.Neighbors(pos) {
		if cell.Walls[DirectionOf(pos, next)] == closed {
			result = append(result, next)
		}
	}
	return result
}

// DirectionOf returns the direction leading from `from` to the adjacent cell
// `to`. It panics when the two positions are not grid neighbours.
func DirectionOf(from, to CellPosition) Direction {
	delta := CellPosition{Row: to.Row - from.Row, Col: to.Col - from.Col}
	for _, d := range Directions {
		if offsets[d] == delta {
			return d
		}
	}
	panic(fmt.Sprintf("maze: %v and %v are not adjacent", from, to))
}

// Opposite returns the wall index on each side of the edge between two
// adjacent cells: the direction at `from` and the direction at `to`.
func Opposite(from, to CellPosition) (Direction, Direction) {
	d := DirectionOf(from, to)
	return d, d.Opposite()
}

// IsOpen reports whether the edge between adjacent cells a and b is open.
func (m *Maze) IsOpen(a, b CellPosition) bool {
	m.mustInBound(a)
	m.mustInBound(b)
	atA, atB := Opposite(a, b)
	openA, openB := !m.grid[a.Row][a.Col].Walls[atA], !m.grid[b.Row][b.Col].Walls[atB]
	if openA != openB {
		panic(fmt.Sprintf("maze: mismatched walls on edge %v-%v", a, b))
	}
	return openA
}

// setWall sets both sides of the edge a-b.
func (m *Maze) setWall(a, b CellPosition, closed bool) {
	m.mustInBound(a)
	m.mustInBound(b)
	atA, atB := Opposite(a, b)
	m.grid[a.Row][a.Col].Walls[atA] = closed
	m.grid[b.Row][b.Col].Walls[atB] = closed
}

func (m *Maze) openWall(a, b CellPosition)  { m.setWall(a, b, false) }
func (m *Maze) closeWall(a, b CellPosition) { m.setWall(a, b, true) }

// OpenEdgeCount counts the open edges. A built maze has CellCount()-1.
func (m *Maze) OpenEdgeCount() int {
	count := 0
	for r := 0; r < m.rows; r++ {
		for c := 0; c < m.cols; c++ {
			// Only look east and south so each edge is counted once.
			if !m.grid[r][c].Walls[East] && c+1 < m.cols {
				count++
			}
			if !m.grid[r][c].Walls[South] && r+1 < m.rows {
				count++
			}
		}
	}
	return count
}

// CheckConsistency verifies mutual-wall consistency and that the border of
// the grid is closed.
func (m *Maze) CheckConsistency() error {
	for r := 0; r < m.rows; r++ {
		for c := 0; c < m.cols; c++ {
			pos := CellPosition{Row: r, Col: c}
			for _, d := range Directions {
				next := pos.Step(d)
				if !m.InBound(next) {
					if !m.grid[r][c].Walls[d] {
						return fmt.Errorf("cell %v is open toward the border (%v)", pos, d)
					}
					continue
				}
				if m.grid[r][c].Walls[d] != m.grid[next.Row][next.Col].Walls[d.Opposite()] {
					return fmt.Errorf("mismatched walls on edge %v-%v", pos, next)
				}
			}
		}
	}
	return nil
}

// CheckTree verifies the spanning-tree invariant: consistent walls, exactly
// CellCount()-1 open edges and every cell reachable from Origin.
func (m *Maze) CheckTree() error {
	if err := m.CheckConsistency(); err != nil {
		return err
	}
	if edges := m.OpenEdgeCount(); edges != m.CellCount()-1 {
		return fmt.Errorf("maze has %d open edges, want %d", edges, m.CellCount()-1)
	}
	if reached := m.Lake(Origin).Size(); reached != m.CellCount() {
		return fmt.Errorf("flood fill reached %d of %d cells", reached, m.CellCount())
	}
	return nil
}

// Masks returns every cell's wall mask in row-major order.
func (m *Maze) Masks() []uint8 {
	masks := make([]uint8, 0, m.CellCount())
	for r := range m.grid {
		for c := range m.grid[r] {
			masks = append(masks, m.grid[r][c].Mask())
		}
	}
	return masks
}

// FromMasks rebuilds a maze from row-major wall masks as produced by Masks.
// The walls must be mutually consistent; the tree invariant is not checked.
func FromMasks(rows, cols int, masks []uint8) (*Maze, error) {
	m, err := New(rows, cols)
	if err != nil {
		return nil, err
	}
	if len(masks) != m.CellCount() {
		return nil, fmt.Errorf("%w: %d masks for %dx%d", ErrInvalidDimensions, len(masks), rows, cols)
	}

	for i, mask := range masks {
		cell := &m.grid[i/cols][i%cols]
		for _, d := range Directions {
			cell.Walls[d] = mask&(1<<d) != 0
		}
	}
	if err := m.CheckConsistency(); err != nil {
		return nil, err
	}
	return m, nil
}

// Clone returns a deep copy of m.
func (m *Maze) Clone() *Maze {
	grid := make([][]Cell, m.rows)
	for r := range grid {
		grid[r] = make([]Cell, m.cols)
		copy(grid[r], m.grid[r])
	}
	return &Maze{rows: m.rows, cols: m.cols, grid: grid}
}

// randomCellPosition picks a uniformly random cell.
func (m *Maze) randomCellPosition(rng *rand.Rand) CellPosition {
	return CellPosition{Row: rng.Intn(m.rows), Col: rng.Intn(m.cols)}
}

func (m *Maze) mustInBound(pos CellPosition) {
	if !m.InBound(pos) {
		panic(fmt.Sprintf("maze: position %v outside %dx%d grid", pos, m.rows, m.cols))
	}
}

// String provides a textual representation of the maze.
func (m *Maze) String() string {
	return m.Render(nil, nil)
}

// Render draws the maze as ASCII art. Cells on path are marked with a dot
// and the cell at agent, when not nil, with an @.
func (m *Maze) Render(path []CellPosition, agent *CellPosition) string {
	onPath := make(map[CellPosition]struct{}, len(path))
	for _, pos := range path {
		onPath[pos] = struct{}{}
	}

	var output strings.Builder

	// Top boundary
	output.WriteString("+" + strings.Repeat("---+", m.cols) + "\n")

	for row := 0; row < m.rows; row++ {
		// Cell rows
		output.WriteString("|")
		for col := 0; col < m.cols; col++ {
			pos := CellPosition{Row: row, Col: col}
			switch _, marked := onPath[pos]; {
			case agent != nil && *agent == pos:
				output.WriteString(" @ ")
			case marked:
				output.WriteString(" . ")
			default:
				output.WriteString("   ")
			}

			if m.grid[row][col].Walls[East] {
				output.WriteString("|")
			} else {
				output.WriteString(" ")
			}
		}
		output.WriteString("\n")

		// Wall rows
		output.WriteString("+")
		for col := 0; col < m.cols; col++ {
			if m.grid[row][col].Walls[South] {
				output.WriteString("---+")
			} else {
				output.WriteString("   +")
			}
		}
		output.WriteString("\n")
	}

	return output.String()
}
