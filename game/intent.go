package game

import (
	"fmt"

	"github.com/beka-birhanu/vinom-drift/maze"
)

// IntentKind tells the session what an Intent asks for.
type IntentKind int

const (
	// MoveIntent steps the agent one cell.
	MoveIntent IntentKind = iota + 1
	// TeleportIntent puts the agent on a given cell.
	TeleportIntent
	// RegenerateIntent throws the maze away and builds a new one.
	RegenerateIntent
)

func (k IntentKind) String() string {
	switch k {
	case MoveIntent:
		return "move"
	case TeleportIntent:
		return "teleport"
	case RegenerateIntent:
		return "regenerate"
	}
	return fmt.Sprintf("IntentKind(%d)", int(k))
}

// Intent is a request from an input handler, applied at the start of the
// next tick.
type Intent struct {
	Kind      IntentKind
	Direction maze.Direction    // for MoveIntent
	Target    maze.CellPosition // for TeleportIntent
}

// Move asks to step the agent toward d. It is ignored when the wall is
// closed.
func Move(d maze.Direction) Intent {
	return Intent{Kind: MoveIntent, Direction: d}
}

// Teleport asks to put the agent on pos.
func Teleport(pos maze.CellPosition) Intent {
	return Intent{Kind: TeleportIntent, Target: pos}
}

// Regenerate asks for a brand new maze.
func Regenerate() Intent {
	return Intent{Kind: RegenerateIntent}
}
