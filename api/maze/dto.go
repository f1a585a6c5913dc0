// Package mazeapi provides the request and response bodies of the maze endpoints.
package mazeapi

import "github.com/beka-birhanu/vinom-drift/maze"

// MoveRequest asks to step the agent one cell.
type MoveRequest struct {
	Direction string `json:"direction" binding:"required"`
}

// TeleportRequest names the target either as a cell or as a renderer pixel.
type TeleportRequest struct {
	Row *int     `json:"row"`
	Col *int     `json:"col"`
	X   *float64 `json:"x"`
	Y   *float64 `json:"y"`
}

// MutationRequest sets the per-tick mutation probability.
type MutationRequest struct {
	Probability *float64 `json:"probability" binding:"required"`
}

// MutationResponse echoes the probability now in effect.
type MutationResponse struct {
	Probability float64 `json:"probability"`
}

// PathResponse carries the cached route from the agent to the destination.
type PathResponse struct {
	Version     int64               `json:"version"`
	Agent       maze.CellPosition   `json:"agent"`
	Destination maze.CellPosition   `json:"destination"`
	Path        []maze.CellPosition `json:"path"`
	Length      int                 `json:"length"`
}

// AcceptedResponse acknowledges an intent queued for the next tick.
type AcceptedResponse struct {
	Intent string `json:"intent"`
}
