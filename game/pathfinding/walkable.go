package pathfinding

import "github.com/wricardo/mcp-training/dslgame/game/world"

// CreateWalkabilityChecker builds a WalkableFunc that rejects cells off the
// map and cells in obstacles
func CreateWalkabilityChecker(obstacles map[world.Position]struct{}, width, height int) WalkableFunc {
	return func(x, y int) bool {
		if x < 0 || x >= width || y < 0 || y >= height {
			return false
		}
		_, blocked := obstacles[world.Pos(x, y)]
		return !blocked
	}
}

// ObstaclesFromState collects the cells of all active entities except the
// one standing at exclude
func ObstaclesFromState(state world.State, exclude world.Position) map[world.Position]struct{} {
	obstacles := make(map[world.Position]struct{})
	for _, e := range state.ActiveEntities() {
		if e.Pos == exclude {
			continue
		}
		obstacles[e.Pos] = struct{}{}
	}
	return obstacles
}

// WalkableFromState is CreateWalkabilityChecker over ObstaclesFromState
func WalkableFromState(state world.State, exclude world.Position) WalkableFunc {
	return CreateWalkabilityChecker(ObstaclesFromState(state, exclude), state.MapWidth, state.MapHeight)
}
