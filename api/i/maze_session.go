package i

import "github.com/beka-birhanu/vinom-drift/game"

// MazeSession is the running simulation as seen by HTTP handlers.
type MazeSession interface {
	Snapshot() game.Snapshot
	Submit(game.Intent) error
	SetMutationProbability(float64) error
	Geometry() game.Geometry
	// Subscribe streams snapshots until the returned function is called.
	Subscribe() (<-chan game.Snapshot, func())
}
