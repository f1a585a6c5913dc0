package maze

import "fmt"

// Direction indexes the four walls of a cell. Opposite directions are two
// indexes apart.
type Direction int

const (
	North Direction = iota
	East
	South
	West

	directionCount = 4
)

var (
	// Directions lists every direction in index order.
	Directions = [directionCount]Direction{North, East, South, West}

	directionNames = [directionCount]string{"North", "East", "South", "West"}

	// offsets holds the row/col delta of stepping one cell toward a direction.
	offsets = [directionCount]CellPosition{
		North: {Row: -1, Col: 0},
		East:  {Row: 0, Col: 1},
		South: {Row: 1, Col: 0},
		West:  {Row: 0, Col: -1},
	}
)

// Opposite returns the direction pointing back.
func (d Direction) Opposite() Direction {
	return (d + 2) % directionCount
}

func (d Direction) String() string {
	if d < 0 || d >= directionCount {
		return fmt.Sprintf("Direction(%d)", int(d))
	}
	return directionNames[d]
}

// ParseDirection maps a direction name (North, east, S, ...) to its index.
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "North", "north", "N", "n", "up":
		return North, nil
	case "East", "east", "E", "e", "right":
		return East, nil
	case "South", "south", "S", "s", "down":
		return South, nil
	case "West", "west", "W", "w", "left":
		return West, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownDirection, s)
}

// CellPosition represents the position of a cell in the maze grid.
type CellPosition struct {
	Row int `json:"row"` // Row index of the cell
	Col int `json:"col"` // Column index of the cell
}

// Step returns the position one cell away toward d. The result may be out
// of bounds.
func (p CellPosition) Step(d Direction) CellPosition {
	delta := offsets[d]
	return CellPosition{Row: p.Row + delta.Row, Col: p.Col + delta.Col}
}

func (p CellPosition) String() string {
	return fmt.Sprintf("(%d,%d)", p.Row, p.Col)
}

// Cell represents a single cell in a maze grid.
type Cell struct {
	visited bool
	// Walls is indexed by Direction; true means the edge toward that
	// neighbour is closed.
	Walls [directionCount]bool
}

// HasWall reports whether the edge toward d is closed.
func (c Cell) HasWall(d Direction) bool {
	return c.Walls[d]
}

// Mask packs the walls into the low four bits, bit d set when the wall
// toward d is closed.
func (c Cell) Mask() uint8 {
	var mask uint8
	for _, d := range Directions {
		if c.Walls[d] {
			mask |= 1 << d
		}
	}
	return mask
}

// closedCell returns a cell with all four walls up.
func closedCell() Cell {
	return Cell{Walls: [directionCount]bool{true, true, true, true}}
}

// Edge is an unordered adjacency between two neighbouring cells.
type Edge struct {
	A CellPosition `json:"a"`
	B CellPosition `json:"b"`
}

// Same reports whether e and other join the same pair of cells, in either
// orientation.
func (e Edge) Same(other Edge) bool {
	return (e.A == other.A && e.B == other.B) || (e.A == other.B && e.B == other.A)
}

func (e Edge) String() string {
	return e.A.String() + "-" + e.B.String()
}
