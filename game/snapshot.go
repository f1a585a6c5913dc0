package game

import (
	"github.com/beka-birhanu/vinom-drift/maze"
	"github.com/google/uuid"
)

// Snapshot is a read-only copy of the session state between two ticks.
type Snapshot struct {
	ID                  uuid.UUID           `json:"id"`
	Version             int64               `json:"version"`
	Tick                int64               `json:"tick"`
	Generation          int64               `json:"generation"`
	Rows                int                 `json:"rows"`
	Cols                int                 `json:"cols"`
	Walls               []uint8             `json:"walls"` // row-major masks, bit d set when the wall toward d is closed
	Path                []maze.CellPosition `json:"path"`
	Agent               maze.CellPosition   `json:"agent"`
	Destination         maze.CellPosition   `json:"destination"`
	LastSwap            *maze.Swap          `json:"last_swap,omitempty"`
	MutationProbability float64             `json:"mutation_probability"`
	Strategy            maze.Strategy       `json:"strategy"`
}

// HasWall reports whether the wall of the cell at pos toward d is closed.
func (s Snapshot) HasWall(pos maze.CellPosition, d maze.Direction) bool {
	return s.Walls[pos.Row*s.Cols+pos.Col]&(1<<d) != 0
}

// Maze rebuilds the topology carried by the snapshot.
func (s Snapshot) Maze() (*maze.Maze, error) {
	return maze.FromMasks(s.Rows, s.Cols, s.Walls)
}

// Render draws the snapshot as ASCII art with the path and agent marked.
func (s Snapshot) Render() (string, error) {
	m, err := s.Maze()
	if err != nil {
		return "", err
	}
	agent := s.Agent
	return m.Render(s.Path, &agent), nil
}
