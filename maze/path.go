package maze

import (
	"errors"
	"fmt"

	"github.com/zyedidia/generic/mapset"
)

// ErrNoPath means the destination is not connected to the source. It can
// only happen when the tree invariant is broken.
var ErrNoPath = errors.New("destination unreachable")

// FindPath returns the unique path from src to dst following open edges,
// src first. FindPath(a, a) is [a].
func (m *Maze) FindPath(src, dst CellPosition) ([]CellPosition, error) {
	m.mustInBound(src)
	m.mustInBound(dst)

	visited := mapset.New[CellPosition]()
	visited.Put(src)

	// The stack doubles as the path from src to the cell on top.
	stack := []frame{{pos: src, remaining: m.OpenNeighbors(src)}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.pos == dst {
			path := make([]CellPosition, len(stack))
			for i, f := range stack {
				path[i] = f.pos
			}
			return path, nil
		}

		if len(top.remaining) == 0 {
			stack = stack[:len(stack)-1]
			continue
		}

		next := top.remaining[0]
		top.remaining = top.remaining[1:]
		if visited.Has(next) {
			continue
		}
		visited.Put(next)
		stack = append(stack, frame{pos: next, remaining: m.OpenNeighbors(next)})
	}

	return nil, fmt.Errorf("%w: %v to %v", ErrNoPath, src, dst)
}

// Lake returns the cells reachable from anchor through open edges.
func (m *Maze) Lake(anchor CellPosition) mapset.Set[CellPosition] {
	m.mustInBound(anchor)

	lake := mapset.New[CellPosition]()
	lake.Put(anchor)
	stack := []CellPosition{anchor}
	for len(stack) > 0 {
		pos := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, next := range m.OpenNeighbors(pos) {
			if !lake.Has(next) {
				lake.Put(next)
				stack = append(stack, next)
			}
		}
	}
	return lake
}
