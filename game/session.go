/*
Package game runs one shifting maze: it owns the topology, the agent and the
cached route to the destination, and advances them one tick at a time.

A tick applies the queued intents (moves, teleports, regeneration), then
possibly mutates the maze by one edge swap, then refreshes the path. Readers
only ever see Snapshots taken between ticks.
*/
package game

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/beka-birhanu/vinom-drift/maze"
	"github.com/beka-birhanu/vinom-drift/service/i"
	"github.com/google/uuid"
)

// Session-related errors.
var (
	ErrIntentQueueFull     = errors.New("intent queue is full")
	ErrSessionStopped      = errors.New("session is stopped")
	ErrInvalidProbability  = errors.New("mutation probability must be within [0,1]")
	ErrMissingMutator      = errors.New("mutator is required")
	ErrInvalidTickInterval = errors.New("tick interval must be positive")
	ErrAlreadyRunning      = errors.New("session already ran")
)

const defaultQueueSize = 64

// Config configures a Session.
type Config struct {
	Rows                int
	Cols                int
	Mutator             maze.Mutator
	MutationProbability float64
	Seed                int64              // 0 picks a seed from the clock
	Destination         *maze.CellPosition // nil means the bottom-right cell
	QueueSize           int
	Logger              i.Logger
}

// Session owns a maze instance for its whole life.
type Session struct {
	id          uuid.UUID
	rows        int
	cols        int
	seed        int64
	maze        *maze.Maze
	mutator     maze.Mutator
	rng         *rand.Rand
	probability float64
	agent       maze.CellPosition
	destination maze.CellPosition
	path        []maze.CellPosition
	lastSwap    *maze.Swap
	version     int64
	tick        int64
	generation  int64

	intents  chan Intent
	stop     chan struct{}
	stopOnce sync.Once
	running  atomic.Bool
	logger   i.Logger

	StateChan chan Snapshot // Channel for broadcasting state after each tick.

	sync.RWMutex
}

// New validates c, generates the first maze and computes the initial path.
func New(c Config) (*Session, error) {
	if c.Mutator == nil {
		return nil, ErrMissingMutator
	}
	if !validProbability(c.MutationProbability) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidProbability, c.MutationProbability)
	}

	seed := c.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	m, err := maze.NewGenerated(c.Rows, c.Cols, rng)
	if err != nil {
		return nil, err
	}

	destination := maze.CellPosition{Row: c.Rows - 1, Col: c.Cols - 1}
	if c.Destination != nil {
		if !m.InBound(*c.Destination) {
			return nil, fmt.Errorf("destination %v: %w", *c.Destination, maze.ErrOutOfBounds)
		}
		destination = *c.Destination
	}

	queueSize := c.QueueSize
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}

	s := &Session{
		id:          uuid.New(),
		rows:        c.Rows,
		cols:        c.Cols,
		seed:        seed,
		maze:        m,
		mutator:     c.Mutator,
		rng:         rng,
		probability: c.MutationProbability,
		agent:       maze.Origin,
		destination: destination,
		generation:  1,
		intents:     make(chan Intent, queueSize),
		stop:        make(chan struct{}),
		logger:      c.Logger,
		StateChan:   make(chan Snapshot),
	}
	s.refreshPath()
	return s, nil
}

// ID returns the session id.
func (s *Session) ID() uuid.UUID { return s.id }

// Seed returns the seed the session's generator was created with.
func (s *Session) Seed() int64 { return s.seed }

// Rows returns the number of rows.
func (s *Session) Rows() int { return s.rows }

// Cols returns the number of columns.
func (s *Session) Cols() int { return s.cols }

// Submit queues an intent for the next tick without blocking.
func (s *Session) Submit(in Intent) error {
	switch in.Kind {
	case MoveIntent:
		if in.Direction < maze.North || in.Direction > maze.West {
			return fmt.Errorf("%w: %v", maze.ErrUnknownDirection, in.Direction)
		}
	case TeleportIntent:
		if in.Target.Row < 0 || in.Target.Row >= s.rows || in.Target.Col < 0 || in.Target.Col >= s.cols {
			return fmt.Errorf("teleport to %v: %w", in.Target, maze.ErrOutOfBounds)
		}
	case RegenerateIntent:
	default:
		return fmt.Errorf("unknown intent %v", in.Kind)
	}

	select {
	case <-s.stop:
		return ErrSessionStopped
	default:
	}

	select {
	case s.intents <- in:
		return nil
	default:
		return ErrIntentQueueFull
	}
}

// SetMutationProbability changes the chance of a mutation per tick.
func (s *Session) SetMutationProbability(p float64) error {
	if !validProbability(p) {
		return fmt.Errorf("%w: %v", ErrInvalidProbability, p)
	}
	s.Lock()
	s.probability = p
	s.Unlock()
	return nil
}

// Step runs one tick to completion and returns the resulting snapshot.
func (s *Session) Step() Snapshot {
	s.Lock()
	defer s.Unlock()

	stale, regenerate := s.drainIntents()

	if regenerate {
		s.regenerate()
		stale = true
	}

	s.lastSwap = nil
	if s.shouldMutate() {
		swap, err := s.mutator.Mutate(s.maze, s.rng)
		switch {
		case err == nil:
			s.lastSwap = &swap
			stale = true
		case errors.Is(err, maze.ErrNoSwapAvailable):
		default:
			s.log().Warning(fmt.Sprintf("mutation skipped: %v", err))
		}
	}

	if stale {
		s.refreshPath()
	}

	s.tick++
	s.version++
	s.log().WithFields(map[string]any{"tick": s.tick, "agent": s.agent, "path": len(s.path)}).Debug("tick")
	return s.snapshotLocked()
}

// drainIntents applies every queued move and teleport, reporting whether the
// agent moved and whether a regeneration was requested.
func (s *Session) drainIntents() (moved bool, regenerate bool) {
	for {
		select {
		case in := <-s.intents:
			switch in.Kind {
			case MoveIntent:
				if s.moveAgent(in.Direction) {
					moved = true
				}
			case TeleportIntent:
				s.agent = in.Target
				moved = true
			case RegenerateIntent:
				regenerate = true
			}
		default:
			return moved, regenerate
		}
	}
}

// moveAgent steps the agent toward d when the wall on that side is open.
func (s *Session) moveAgent(d maze.Direction) bool {
	next := s.agent.Step(d)
	if !s.maze.InBound(next) || s.maze.Cell(s.agent).HasWall(d) {
		return false
	}
	s.agent = next
	return true
}

// regenerate discards the current grid and builds a new one from the origin.
func (s *Session) regenerate() {
	m, err := maze.New(s.rows, s.cols)
	if err != nil {
		// Dimensions were validated when the session was created.
		panic(fmt.Sprintf("game: regenerating %dx%d maze: %v", s.rows, s.cols, err))
	}
	m.Generate(maze.Origin, s.rng)
	s.maze = m
	s.generation++
	s.log().Info(fmt.Sprintf("regenerated maze, generation %d", s.generation))
}

func (s *Session) shouldMutate() bool {
	switch {
	case s.probability <= 0:
		return false
	case s.probability >= 1:
		return true
	}
	return s.rng.Float64() < s.probability
}

// refreshPath recomputes the route from the agent to the destination. A
// missing route means the tree invariant is broken.
func (s *Session) refreshPath() {
	path, err := s.maze.FindPath(s.agent, s.destination)
	if err != nil {
		panic(fmt.Sprintf("game: maze lost its spanning tree: %v", err))
	}
	s.path = path
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() Snapshot {
	s.RLock()
	defer s.RUnlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	snapshot := Snapshot{
		ID:                  s.id,
		Version:             s.version,
		Tick:                s.tick,
		Generation:          s.generation,
		Rows:                s.rows,
		Cols:                s.cols,
		Walls:               s.maze.Masks(),
		Path:                append([]maze.CellPosition(nil), s.path...),
		Agent:               s.agent,
		Destination:         s.destination,
		MutationProbability: s.probability,
		Strategy:            s.mutator.Strategy(),
	}
	if s.lastSwap != nil {
		swap := *s.lastSwap
		snapshot.LastSwap = &swap
	}
	return snapshot
}

// Run ticks every interval until ctx is done or Stop is called, sending each
// snapshot on StateChan. StateChan is closed when the first Run returns, even
// on an invalid interval. Later calls return ErrAlreadyRunning.
func (s *Session) Run(ctx context.Context, interval time.Duration) error {
	if !s.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer close(s.StateChan)

	if interval <= 0 {
		return fmt.Errorf("%w: %v", ErrInvalidTickInterval, interval)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.log().Info(fmt.Sprintf("session %s running %dx%d every %v", s.id, s.rows, s.cols, interval))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.stop:
			return nil
		case <-ticker.C:
			snapshot := s.Step()
			select {
			case s.StateChan <- snapshot:
			case <-ctx.Done():
				return ctx.Err()
			case <-s.stop:
				return nil
			}
		}
	}
}

// Stop ends Run and rejects further intents.
func (s *Session) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
}

func (s *Session) log() i.Logger {
	if s.logger == nil {
		return nopLogger{}
	}
	return s.logger
}

// validProbability rejects NaN, which fails every range comparison.
func validProbability(p float64) bool {
	return !math.IsNaN(p) && p >= 0 && p <= 1
}

type nopLogger struct{}

func (nopLogger) Debug(string)                         {}
func (nopLogger) Info(string)                          {}
func (nopLogger) Warning(string)                       {}
func (nopLogger) Error(string)                         {}
func (n nopLogger) WithFields(map[string]any) i.Logger { return n }
