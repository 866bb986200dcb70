package pathfinding

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wricardo/mcp-training/dslgame/game/world"
)

func open(width, height int) WalkableFunc {
	return CreateWalkabilityChecker(nil, width, height)
}

func obstacles(cells ...world.Position) map[world.Position]struct{} {
	m := make(map[world.Position]struct{}, len(cells))
	for _, c := range cells {
		m[c] = struct{}{}
	}
	return m
}

// adjacent checks that every step moves one cell in one of the allowed directions
func adjacent(t *testing.T, path []world.Position, directions []Direction) {
	t.Helper()
	for i := 1; i < len(path); i++ {
		dx, dy := path[i].X-path[i-1].X, path[i].Y-path[i-1].Y
		assert.Contains(t, directions, Direction{dx, dy}, "step %d: %v -> %v", i, path[i-1], path[i])
	}
}

func TestFindPathStartIsGoal(t *testing.T) {
	p := world.Pos(3, 3)
	result := FindPath(p, p, open(10, 10), 10, 10)

	assert.True(t, result.Found)
	assert.Equal(t, []world.Position{p}, result.Path)
	assert.Zero(t, result.Cost)
	assert.Zero(t, result.Explored)
}

func TestFindPathUnwalkableGoal(t *testing.T) {
	goal := world.Pos(4, 4)
	walkable := CreateWalkabilityChecker(obstacles(goal), 10, 10)

	result := FindPath(world.Pos(0, 0), goal, walkable, 10, 10)

	assert.False(t, result.Found)
	assert.Empty(t, result.Path)
	assert.Zero(t, result.Explored)
}

func TestFindPathStraightLine(t *testing.T) {
	result := FindPath(world.Pos(0, 0), world.Pos(5, 0), open(10, 10), 10, 10, WithDiagonal(false))

	require.True(t, result.Found)
	assert.Equal(t, 5.0, result.Cost)
	assert.Equal(t, 5, result.Steps())
	assert.Equal(t, world.Pos(0, 0), result.Path[0])
	assert.Equal(t, world.Pos(5, 0), result.Path[len(result.Path)-1])
	adjacent(t, result.Path, Directions4)
}

func TestFindPathDiagonal(t *testing.T) {
	result := FindPath(world.Pos(0, 0), world.Pos(3, 3), open(10, 10), 10, 10)

	require.True(t, result.Found)
	assert.Len(t, result.Path, 4)
	assert.InDelta(t, 3*DiagonalCost, result.Cost, 1e-9)
	adjacent(t, result.Path, Directions8)
}

func TestFindPathFourDirectionsCostIsManhattan(t *testing.T) {
	start, goal := world.Pos(1, 2), world.Pos(7, 6)
	result := FindPath(start, goal, open(10, 10), 10, 10, WithDiagonal(false))

	require.True(t, result.Found)
	assert.Equal(t, Manhattan(start, goal), result.Cost)
}

func TestFindPathAroundWall(t *testing.T) {
	// vertical wall at x=2 from y=0 to y=3, open below
	walls := obstacles(world.Pos(2, 0), world.Pos(2, 1), world.Pos(2, 2), world.Pos(2, 3))
	walkable := CreateWalkabilityChecker(walls, 6, 6)

	result := FindPath(world.Pos(0, 0), world.Pos(4, 0), walkable, 6, 6, WithDiagonal(false))

	require.True(t, result.Found)
	for _, p := range result.Path {
		_, blocked := walls[p]
		assert.False(t, blocked, "path crosses wall at %v", p)
	}
	adjacent(t, result.Path, Directions4)
	assert.Equal(t, 12.0, result.Cost)
}

func TestFindPathNoRoute(t *testing.T) {
	// goal boxed in
	walls := obstacles(world.Pos(4, 3), world.Pos(4, 5), world.Pos(3, 4), world.Pos(5, 4),
		world.Pos(3, 3), world.Pos(5, 3), world.Pos(3, 5), world.Pos(5, 5))
	walkable := CreateWalkabilityChecker(walls, 8, 8)

	result := FindPath(world.Pos(0, 0), world.Pos(4, 4), walkable, 8, 8)

	assert.False(t, result.Found)
	assert.Empty(t, result.Path)
	assert.Equal(t, 64-len(walls)-1, result.Explored)
}

func TestFindPathIsOptimal(t *testing.T) {
	walls := obstacles(world.Pos(3, 1), world.Pos(3, 2), world.Pos(3, 3), world.Pos(3, 4), world.Pos(6, 5), world.Pos(6, 6), world.Pos(6, 7), world.Pos(6, 8))
	walkable := CreateWalkabilityChecker(walls, 10, 10)

	for _, tc := range []struct {
		name     string
		diagonal bool
		dirs     []Direction
	}{
		{"four", false, Directions4},
		{"eight", true, Directions8},
	} {
		t.Run(tc.name, func(t *testing.T) {
			start, goal := world.Pos(0, 2), world.Pos(9, 7)
			result := FindPath(start, goal, walkable, 10, 10, WithDiagonal(tc.diagonal))
			require.True(t, result.Found)

			// Euclidean slightly overestimates a 1.414 diagonal, so allow a hair of slack
			best := dijkstra(start, goal, walkable, 10, 10, tc.dirs)
			assert.InDelta(t, best, result.Cost, 0.01)
			adjacent(t, result.Path, tc.dirs)
		})
	}
}

// dijkstra is a brute force reference: repeated relaxation until nothing changes
func dijkstra(start, goal world.Position, walkable WalkableFunc, width, height int, dirs []Direction) float64 {
	dist := map[world.Position]float64{start: 0}
	for changed := true; changed; {
		changed = false
		for p, d := range dist {
			for _, dir := range dirs {
				n := p.Move(dir.DX, dir.DY)
				if n.X < 0 || n.X >= width || n.Y < 0 || n.Y >= height || !walkable(n.X, n.Y) {
					continue
				}
				cost := CardinalCost
				if dir.DX != 0 && dir.DY != 0 {
					cost = DiagonalCost
				}
				if old, ok := dist[n]; !ok || d+cost < old-1e-12 {
					dist[n] = d + cost
					changed = true
				}
			}
		}
	}
	if d, ok := dist[goal]; ok {
		return d
	}
	return math.Inf(1)
}

func positions(cells ...[2]int) []world.Position {
	path := make([]world.Position, len(cells))
	for i, c := range cells {
		path[i] = world.Pos(c[0], c[1])
	}
	return path
}

func TestFindPathOpenGrid(t *testing.T) {
	start, goal := world.Pos(1, 1), world.Pos(13, 8)

	tests := []struct {
		name     string
		diagonal bool
		path     []world.Position
		cost     float64
		explored int
	}{
		{
			name:     "eight directions",
			diagonal: true,
			path: positions(
				[2]int{1, 1}, [2]int{2, 2}, [2]int{3, 2}, [2]int{4, 3}, [2]int{5, 4}, [2]int{6, 5}, [2]int{7, 5},
				[2]int{8, 6}, [2]int{9, 6}, [2]int{10, 7}, [2]int{11, 7}, [2]int{12, 8}, [2]int{13, 8},
			),
			cost:     7*DiagonalCost + 5*CardinalCost,
			explored: 44,
		},
		{
			name:     "four directions",
			diagonal: false,
			path: positions(
				[2]int{1, 1}, [2]int{1, 2}, [2]int{1, 3}, [2]int{1, 4}, [2]int{1, 5}, [2]int{1, 6}, [2]int{1, 7},
				[2]int{1, 8}, [2]int{2, 8}, [2]int{3, 8}, [2]int{4, 8}, [2]int{5, 8}, [2]int{6, 8}, [2]int{7, 8},
				[2]int{8, 8}, [2]int{9, 8}, [2]int{10, 8}, [2]int{11, 8}, [2]int{12, 8}, [2]int{13, 8},
			),
			cost:     19,
			explored: 104,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FindPath(start, goal, open(15, 10), 15, 10, WithDiagonal(tt.diagonal))

			require.True(t, result.Found)
			assert.Equal(t, tt.path, result.Path)
			assert.Equal(t, len(tt.path)-1, result.Steps())
			assert.InDelta(t, tt.cost, result.Cost, 1e-9)
			assert.Equal(t, tt.explored, result.Explored)
		})
	}
}

func TestFindPathDeterministic(t *testing.T) {
	walkable := CreateWalkabilityChecker(obstacles(world.Pos(4, 2), world.Pos(4, 3), world.Pos(4, 4), world.Pos(7, 6)), 15, 10)

	for _, diagonal := range []bool{true, false} {
		first := FindPath(world.Pos(1, 1), world.Pos(13, 8), walkable, 15, 10, WithDiagonal(diagonal))
		second := FindPath(world.Pos(1, 1), world.Pos(13, 8), walkable, 15, 10, WithDiagonal(diagonal))

		require.True(t, first.Found)
		assert.Equal(t, first, second, "diagonal=%v", diagonal)
	}
}

func TestFindPathCustomHeuristic(t *testing.T) {
	result := FindPath(world.Pos(0, 0), world.Pos(4, 2), open(6, 6), 6, 6, WithHeuristic(Chebyshev))

	require.True(t, result.Found)
	assert.InDelta(t, 2*DiagonalCost+2*CardinalCost, result.Cost, 1e-9)
}

func TestFindPathStaysInBounds(t *testing.T) {
	// walkable says yes everywhere, bounds must still hold
	everywhere := func(x, y int) bool { return true }
	result := FindPath(world.Pos(0, 0), world.Pos(2, 2), everywhere, 3, 3)

	require.True(t, result.Found)
	for _, p := range result.Path {
		assert.True(t, p.X >= 0 && p.X < 3 && p.Y >= 0 && p.Y < 3, "%v out of bounds", p)
	}
}

func TestHeuristics(t *testing.T) {
	a, b := world.Pos(1, 1), world.Pos(4, 5)

	assert.Equal(t, 7.0, Manhattan(a, b))
	assert.Equal(t, 5.0, Euclidean(a, b))
	assert.Equal(t, 4.0, Chebyshev(a, b))
}

func TestHeuristicByName(t *testing.T) {
	h, err := HeuristicByName(" Manhattan ")
	require.NoError(t, err)
	assert.Equal(t, 2.0, h(world.Pos(0, 0), world.Pos(1, 1)))

	_, err = HeuristicByName("taxicab")
	assert.ErrorIs(t, err, ErrUnknownHeuristic)
}

func TestGetNextStep(t *testing.T) {
	next, ok := GetNextStep(world.Pos(0, 0), world.Pos(5, 0), open(10, 10), 10, 10)
	require.True(t, ok)
	assert.Equal(t, world.Pos(1, 0), next)

	_, ok = GetNextStep(world.Pos(2, 2), world.Pos(2, 2), open(10, 10), 10, 10)
	assert.False(t, ok, "no step when already at the goal")
}

func TestCreateWalkabilityChecker(t *testing.T) {
	walkable := CreateWalkabilityChecker(obstacles(world.Pos(1, 1)), 3, 3)

	assert.True(t, walkable(0, 0))
	assert.False(t, walkable(1, 1))
	assert.False(t, walkable(-1, 0))
	assert.False(t, walkable(3, 0))
	assert.False(t, walkable(0, 3))
}

func TestObstaclesFromState(t *testing.T) {
	state := world.DefaultState().
		AddEntity(world.NewEntity("enemy_0", "a", world.Pos(1, 1))).
		AddEntity(world.NewEntity("enemy_1", "b", world.Pos(2, 2))).
		AddEntity(world.NewEntity("enemy_2", "c", world.Pos(3, 3)).WithActive(false))

	got := ObstaclesFromState(state, world.Pos(1, 1))

	assert.Equal(t, obstacles(world.Pos(2, 2)), got)
}
