package pathfinding

import (
	"container/heap"
	"errors"
	"slices"

	"github.com/wricardo/mcp-training/dslgame/game/world"
)

const (
	CardinalCost = 1.0
	DiagonalCost = 1.414
)

var ErrUnknownHeuristic = errors.New("unknown heuristic")

// Direction is a single-step offset
type Direction struct {
	DX, DY int
}

var (
	// Directions4 is up, down, left, right
	Directions4 = []Direction{{0, -1}, {0, 1}, {-1, 0}, {1, 0}}

	// Directions8 is Directions4 followed by the four diagonals
	Directions8 = []Direction{
		{0, -1}, {0, 1}, {-1, 0}, {1, 0},
		{-1, -1}, {1, -1}, {-1, 1}, {1, 1},
	}
)

// WalkableFunc reports whether a cell can be entered
type WalkableFunc func(x, y int) bool

// PathResult holds the path from start to goal inclusive. Path is empty when
// Found is false. Explored counts the nodes taken off the frontier.
type PathResult struct {
	Path     []world.Position `json:"path"`
	Cost     float64          `json:"cost"`
	Found    bool             `json:"found"`
	Explored int              `json:"explored"`
}

// Steps is the number of moves along the path
func (r PathResult) Steps() int {
	if len(r.Path) == 0 {
		return 0
	}
	return len(r.Path) - 1
}

type options struct {
	diagonal  bool
	heuristic Heuristic
}

// Option tunes FindPath
type Option func(*options)

// WithDiagonal allows or forbids diagonal steps. Diagonals are allowed by default.
func WithDiagonal(allow bool) Option {
	return func(o *options) {
		o.diagonal = allow
	}
}

// WithHeuristic overrides the default heuristic (Euclidean with diagonals,
// Manhattan without)
func WithHeuristic(h Heuristic) Option {
	return func(o *options) {
		o.heuristic = h
	}
}

// FindPath runs A* on a width x height grid
func FindPath(start, goal world.Position, walkable WalkableFunc, width, height int, opts ...Option) PathResult {
	o := options{diagonal: true}
	for _, opt := range opts {
		opt(&o)
	}

	if start == goal {
		return PathResult{Path: []world.Position{start}, Found: true}
	}
	if !walkable(goal.X, goal.Y) {
		return PathResult{Path: []world.Position{}}
	}

	directions := Directions4
	if o.diagonal {
		directions = Directions8
	}
	h := o.heuristic
	if h == nil {
		h = Manhattan
		if o.diagonal {
			h = Euclidean
		}
	}

	counter := 0
	open := &frontier{{f: 0, order: counter, pos: start}}
	gScore := map[world.Position]float64{start: 0}
	cameFrom := map[world.Position]world.Position{}
	closed := map[world.Position]bool{}
	explored := 0

	for open.Len() > 0 {
		current := heap.Pop(open).(node).pos
		if closed[current] {
			continue
		}
		explored++
		closed[current] = true

		if current == goal {
			return PathResult{
				Path:     reconstruct(cameFrom, current),
				Cost:     gScore[current],
				Found:    true,
				Explored: explored,
			}
		}

		for _, d := range directions {
			next := current.Move(d.DX, d.DY)
			if next.X < 0 || next.X >= width || next.Y < 0 || next.Y >= height {
				continue
			}
			if !walkable(next.X, next.Y) || closed[next] {
				continue
			}

			cost := CardinalCost
			if d.DX != 0 && d.DY != 0 {
				cost = DiagonalCost
			}
			tentative := gScore[current] + cost

			if g, seen := gScore[next]; !seen || tentative < g {
				gScore[next] = tentative
				cameFrom[next] = current
				counter++
				heap.Push(open, node{f: tentative + h(next, goal), order: counter, pos: next})
			}
		}
	}

	return PathResult{Path: []world.Position{}, Explored: explored}
}

func reconstruct(cameFrom map[world.Position]world.Position, current world.Position) []world.Position {
	path := []world.Position{current}
	for {
		prev, ok := cameFrom[current]
		if !ok {
			break
		}
		current = prev
		path = append(path, current)
	}
	slices.Reverse(path)
	return path
}

// GetNextStep returns the first move along the path from start to goal.
// ok is false when there is no path or start is already the goal.
func GetNextStep(start, goal world.Position, walkable WalkableFunc, width, height int) (world.Position, bool) {
	result := FindPath(start, goal, walkable, width, height)
	if result.Found && len(result.Path) >= 2 {
		return result.Path[1], true
	}
	return world.Position{}, false
}
