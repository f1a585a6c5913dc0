package maze

import "math/rand"

// frame is one level of the backtracker: the cell being explored and the
// shuffled neighbours it still has to try.
type frame struct {
	pos       CellPosition
	remaining []CellPosition
}

// Generate discards the current layout and builds a new spanning tree with a
// randomized depth-first backtracker starting at start.
func (m *Maze) Generate(start CellPosition, rng *rand.Rand) {
	m.mustInBound(start)
	m.reset()

	stack := []frame{m.enter(start, rng)}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if len(top.remaining) == 0 {
			stack = stack[:len(stack)-1] // backtrack
			continue
		}

		next := top.remaining[0]
		top.remaining = top.remaining[1:]
		if m.grid[next.Row][next.Col].visited {
			continue
		}

		m.openWall(top.pos, next)
		stack = append(stack, m.enter(next, rng))
	}
}

// enter marks pos visited and returns its frame with neighbours in random
// order.
func (m *Maze) enter(pos CellPosition, rng *rand.Rand) frame {
	m.grid[pos.Row][pos.Col].visited = true
	neighbors := m.Neighbors(pos)
	rng.Shuffle(len(neighbors), func(i, j int) {
		neighbors[i], neighbors[j] = neighbors[j], neighbors[i]
	})
	return frame{pos: pos, remaining: neighbors}
}

// reset closes every wall and clears the visited flags.
func (m *Maze) reset() {
	for r := range m.grid {
		for c := range m.grid[r] {
			m.grid[r][c] = closedCell()
		}
	}
}
