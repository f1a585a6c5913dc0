package maze

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// twoByTwo builds the tree (0,0)-(0,1), (0,0)-(1,0), (1,0)-(1,1).
func twoByTwo(t *testing.T) *Maze {
	t.Helper()
	m, err := New(2, 2)
	require.NoError(t, err)
	m.openWall(CellPosition{0, 0}, CellPosition{0, 1})
	m.openWall(CellPosition{0, 0}, CellPosition{1, 0})
	m.openWall(CellPosition{1, 0}, CellPosition{1, 1})
	require.NoError(t, m.CheckTree())
	return m
}

func TestNewMutator(t *testing.T) {
	shore, err := NewMutator(StrategyShore, WithAnchor(AnchorRandom))
	require.NoError(t, err)
	assert.Equal(t, StrategyShore, shore.Strategy())
	assert.Equal(t, AnchorRandom, shore.(*ShoreSwap).Anchor)

	cycle, err := NewMutator(StrategyCycle, WithMaxAttempts(3))
	require.NoError(t, err)
	assert.Equal(t, StrategyCycle, cycle.Strategy())
	assert.Equal(t, 3, cycle.(*CycleSwap).MaxAttempts)

	_, err = NewMutator("kruskal")
	assert.ErrorIs(t, err, ErrUnknownStrategy)

	_, err = NewMutator(StrategyShore, WithAnchor("center"))
	assert.ErrorIs(t, err, ErrUnknownAnchor)
}

func TestMutatePreservesTree(t *testing.T) {
	mutators := map[string]Mutator{
		"shore from origin": &ShoreSwap{Anchor: AnchorOrigin},
		"shore from random": &ShoreSwap{Anchor: AnchorRandom},
		"cycle":             &CycleSwap{},
	}

	for name, mutator := range mutators {
		t.Run(name, func(t *testing.T) {
			rng := rand.New(rand.NewSource(11))
			m, err := NewGenerated(5, 5, rng)
			require.NoError(t, err)

			for i := 0; i < 1000; i++ {
				before := m.Clone()
				swap, err := mutator.Mutate(m, rng)
				require.NoError(t, err, "iteration %d", i)

				require.Equal(t, 24, m.OpenEdgeCount(), "iteration %d", i)
				require.Equal(t, 25, m.Lake(Origin).Size(), "iteration %d", i)
				require.NoError(t, m.CheckConsistency())

				assert.False(t, swap.Closed.Same(swap.Opened))
				assert.True(t, before.IsOpen(swap.Closed.A, swap.Closed.B))
				assert.False(t, before.IsOpen(swap.Opened.A, swap.Opened.B))
				assert.False(t, m.IsOpen(swap.Closed.A, swap.Closed.B))
				assert.True(t, m.IsOpen(swap.Opened.A, swap.Opened.B))
			}
		})
	}
}

func TestMutateIsReproducible(t *testing.T) {
	run := func(s Strategy) string {
		rng := rand.New(rand.NewSource(99))
		m, err := NewGenerated(8, 6, rng)
		require.NoError(t, err)
		mutator, err := NewMutator(s)
		require.NoError(t, err)
		for i := 0; i < 50; i++ {
			_, err := mutator.Mutate(m, rng)
			require.NoError(t, err)
		}
		return m.String()
	}

	assert.Equal(t, run(StrategyShore), run(StrategyShore))
	assert.Equal(t, run(StrategyCycle), run(StrategyCycle))
}

func TestMutateSingleTreeGrid(t *testing.T) {
	for _, dims := range [][2]int{{1, 1}, {1, 5}, {4, 1}} {
		rng := rand.New(rand.NewSource(1))
		m, err := NewGenerated(dims[0], dims[1], rng)
		require.NoError(t, err)

		for _, mutator := range []Mutator{&ShoreSwap{}, &CycleSwap{}} {
			before := m.String()
			_, err := mutator.Mutate(m, rng)
			assert.ErrorIs(t, err, ErrNoSwapAvailable)
			assert.Equal(t, before, m.String())
		}
	}
}

func TestShoreSwapEmptyShoreRestoresMaze(t *testing.T) {
	m, err := NewGenerated(1, 3, rand.New(rand.NewSource(1)))
	require.NoError(t, err)

	s := &ShoreSwap{Anchor: AnchorOrigin}
	_, err = s.SwapAt(m, CellPosition{0, 0}, CellPosition{0, 1}, rand.New(rand.NewSource(2)))
	assert.ErrorIs(t, err, ErrNoAlternativeEdge)
	assert.NoError(t, m.CheckTree())
	assert.True(t, m.IsOpen(CellPosition{0, 0}, CellPosition{0, 1}))
}

func TestShoreSwapAt(t *testing.T) {
	m := twoByTwo(t)
	s := &ShoreSwap{Anchor: AnchorOrigin}

	// Cutting (1,0)-(1,1) isolates (1,1); the only other edge across is
	// (0,1)-(1,1).
	swap, err := s.SwapAt(m, CellPosition{1, 0}, CellPosition{1, 1}, rand.New(rand.NewSource(4)))
	require.NoError(t, err)
	assert.True(t, swap.Opened.Same(Edge{A: CellPosition{0, 1}, B: CellPosition{1, 1}}))
	assert.NoError(t, m.CheckTree())
}

func TestCycleSwapAlreadyOpenEdge(t *testing.T) {
	m := twoByTwo(t)
	c := &CycleSwap{}

	p, q := CellPosition{Row: 0, Col: 0}, CellPosition{Row: 0, Col: 1}
	path, err := m.FindPath(p, q)
	require.NoError(t, err)
	require.Equal(t, []CellPosition{p, q}, path)

	_, err = c.SwapAt(m, p, q, rand.New(rand.NewSource(1)))
	assert.ErrorIs(t, err, ErrEdgeAlreadyOpen)
	assert.Equal(t, 3, m.OpenEdgeCount())
	assert.NoError(t, m.CheckTree())
}

func TestCycleSwapAt(t *testing.T) {
	for seed := int64(0); seed < 10; seed++ {
		m := twoByTwo(t)
		c := &CycleSwap{}

		p, q := CellPosition{Row: 0, Col: 1}, CellPosition{Row: 1, Col: 1}
		swap, err := c.SwapAt(m, p, q, rand.New(rand.NewSource(seed)))
		require.NoError(t, err)

		assert.True(t, m.IsOpen(p, q))
		assert.True(t, swap.Opened.Same(Edge{A: p, B: q}))
		assert.False(t, m.IsOpen(swap.Closed.A, swap.Closed.B))
		assert.NoError(t, m.CheckTree())
	}
}

func TestMutateExhaustsAttempts(t *testing.T) {
	// A blank maze has no open edge to cut, so every pick is rejected.
	m, err := New(3, 3)
	require.NoError(t, err)

	_, err = (&ShoreSwap{MaxAttempts: 5}).Mutate(m, rand.New(rand.NewSource(1)))
	assert.ErrorIs(t, err, ErrMutationExhausted)
}
