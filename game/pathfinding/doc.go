// Package pathfinding finds shortest routes on the game grid with A*.
//
// The grid is described by its size and a WalkableFunc, so callers decide
// what blocks movement. For a game state the usual setup is:
//
//	walkable := pathfinding.WalkableFromState(state, enemy.Pos)
//	next, ok := pathfinding.GetNextStep(enemy.Pos, state.Player.Pos, walkable, state.MapWidth, state.MapHeight)
//
// Straight steps cost 1 and diagonal steps cost 1.414.
package pathfinding
