package maze

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/zyedidia/generic/mapset"
)

// Strategy names a Mutator implementation.
type Strategy string

const (
	// StrategyShore cuts a tree edge and reconnects the two halves through
	// a different edge on the shore of one half.
	StrategyShore Strategy = "shore"
	// StrategyCycle opens a closed edge and breaks the cycle it creates.
	StrategyCycle Strategy = "cycle"
)

// AnchorMode selects the cell the shore strategy floods its lake from.
type AnchorMode string

const (
	AnchorOrigin AnchorMode = "origin"
	AnchorRandom AnchorMode = "random"
)

const (
	minAttempts     = 16
	attemptsPerCell = 4
)

var (
	ErrUnknownStrategy   = errors.New("unknown mutation strategy")
	ErrUnknownAnchor     = errors.New("unknown shore anchor")
	ErrNoSwapAvailable   = errors.New("grid has a single spanning tree")
	ErrNoAlternativeEdge = errors.New("cut edge is the only edge between the two halves")
	ErrEdgeAlreadyOpen   = errors.New("edge is already open")
	ErrMutationExhausted = errors.New("no edge swap found")

	// errNoCandidate means the picked cell has no edge of the wanted kind.
	errNoCandidate = errors.New("cell has no candidate edge")
)

// Swap records the two edges changed by one mutation.
type Swap struct {
	Closed Edge `json:"closed"` // previously open edge that was closed
	Opened Edge `json:"opened"` // previously closed edge that was opened
}

// Mutator perturbs a built maze by exactly one edge swap. On success the
// maze is again a spanning tree; on error it is left untouched.
type Mutator interface {
	Mutate(m *Maze, rng *rand.Rand) (Swap, error)
	Strategy() Strategy
}

// MutatorOption configures a Mutator.
type MutatorOption func(*mutatorOptions)

type mutatorOptions struct {
	anchor      AnchorMode
	maxAttempts int
}

// WithAnchor sets where the shore strategy starts its flood fill.
func WithAnchor(a AnchorMode) MutatorOption {
	return func(o *mutatorOptions) { o.anchor = a }
}

// WithMaxAttempts bounds the number of random picks per Mutate call. Zero
// or less selects a bound proportional to the grid size.
func WithMaxAttempts(n int) MutatorOption {
	return func(o *mutatorOptions) { o.maxAttempts = n }
}

// NewMutator builds the mutator for the given strategy.
func NewMutator(s Strategy, opts ...MutatorOption) (Mutator, error) {
	o := mutatorOptions{anchor: AnchorOrigin}
	for _, opt := range opts {
		opt(&o)
	}

	switch o.anchor {
	case AnchorOrigin, AnchorRandom:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAnchor, o.anchor)
	}

	switch s {
	case StrategyShore:
		return &ShoreSwap{Anchor: o.anchor, MaxAttempts: o.maxAttempts}, nil
	case StrategyCycle:
		return &CycleSwap{MaxAttempts: o.maxAttempts}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, s)
}

// retry runs try until it succeeds, fails with a non-retryable error or the
// attempt budget is spent.
func retry(m *Maze, maxAttempts int, try func() (Swap, error)) (Swap, error) {
	// A 1xN or Nx1 grid graph is itself a tree, nothing can be swapped.
	if m.rows < 2 || m.cols < 2 {
		return Swap{}, ErrNoSwapAvailable
	}

	limit := maxAttempts
	if limit <= 0 {
		limit = max(minAttempts, attemptsPerCell*m.CellCount())
	}

	for attempt := 0; attempt < limit; attempt++ {
		swap, err := try()
		switch {
		case err == nil:
			return swap, nil
		case errors.Is(err, errNoCandidate), errors.Is(err, ErrNoAlternativeEdge), errors.Is(err, ErrEdgeAlreadyOpen):
			continue
		default:
			return Swap{}, err
		}
	}
	return Swap{}, fmt.Errorf("%w after %d attempts", ErrMutationExhausted, limit)
}

// ShoreSwap removes a random tree edge, floods the lake on one side of the
// cut and reopens a random other edge on its shore.
type ShoreSwap struct {
	Anchor      AnchorMode
	MaxAttempts int
}

// Strategy implements Mutator.
func (s *ShoreSwap) Strategy() Strategy { return StrategyShore }

// Mutate implements Mutator.
func (s *ShoreSwap) Mutate(m *Maze, rng *rand.Rand) (Swap, error) {
	return retry(m, s.MaxAttempts, func() (Swap, error) {
		p := m.randomCellPosition(rng)
		open := m.OpenNeighbors(p)
		if len(open) == 0 {
			return Swap{}, errNoCandidate
		}
		return s.SwapAt(m, p, open[rng.Intn(len(open))], rng)
	})
}

// SwapAt closes the open edge p-q and opens a random shore edge other than
// p-q. When p-q is the only edge across the cut the maze is restored and
// ErrNoAlternativeEdge is returned.
func (s *ShoreSwap) SwapAt(m *Maze, p, q CellPosition, rng *rand.Rand) (Swap, error) {
	if !m.IsOpen(p, q) {
		return Swap{}, fmt.Errorf("%w: %v-%v is closed", errNoCandidate, p, q)
	}

	removed := Edge{A: p, B: q}
	m.closeWall(p, q)

	anchor := Origin
	if s.Anchor == AnchorRandom {
		anchor = m.randomCellPosition(rng)
	}

	shore := m.shore(m.Lake(anchor), removed)
	if len(shore) == 0 {
		m.openWall(p, q)
		return Swap{}, ErrNoAlternativeEdge
	}

	added := shore[rng.Intn(len(shore))]
	m.openWall(added.A, added.B)
	return Swap{Closed: removed, Opened: added}, nil
}

// shore lists the edges from a lake cell to a cell outside the lake, except
// the excluded one. Cells are scanned in row-major order so the result only
// depends on the layout.
func (m *Maze) shore(lake mapset.Set[CellPosition], exclude Edge) []Edge {
	var edges []Edge
	for r := 0; r < m.rows; r++ {
		for c := 0; c < m.cols; c++ {
			pos := CellPosition{Row: r, Col: c}
			if !lake.Has(pos) {
				continue
			}
			for _, next := range m.Neighbors(pos) {
				edge := Edge{A: pos, B: next}
				if lake.Has(next) || edge.Same(exclude) {
					continue
				}
				edges = append(edges, edge)
			}
		}
	}
	return edges
}

// CycleSwap opens a random closed edge and closes a random edge of the
// cycle this creates.
type CycleSwap struct {
	MaxAttempts int
}

// Strategy implements Mutator.
func (c *CycleSwap) Strategy() Strategy { return StrategyCycle }

// Mutate implements Mutator.
func (c *CycleSwap) Mutate(m *Maze, rng *rand.Rand) (Swap, error) {
	return retry(m, c.MaxAttempts, func() (Swap, error) {
		p := m.randomCellPosition(rng)
		closed := m.ClosedNeighbors(p)
		if len(closed) == 0 {
			return Swap{}, errNoCandidate
		}
		return c.SwapAt(m, p, closed[rng.Intn(len(closed))], rng)
	})
}

// SwapAt opens the edge p-q and closes a random edge of the tree path
// between p and q found before opening. If p-q is already open nothing
// changes and ErrEdgeAlreadyOpen is returned.
func (c *CycleSwap) SwapAt(m *Maze, p, q CellPosition, rng *rand.Rand) (Swap, error) {
	if m.IsOpen(p, q) {
		return Swap{}, ErrEdgeAlreadyOpen
	}

	path, err := m.FindPath(p, q)
	if err != nil {
		return Swap{}, fmt.Errorf("cycle swap: %w", err)
	}

	m.openWall(p, q)
	i := rng.Intn(len(path) - 1)
	m.closeWall(path[i], path[i+1])

	return Swap{
		Closed: Edge{A: path[i], B: path[i+1]},
		Opened: Edge{A: p, B: q},
	}, nil
}
