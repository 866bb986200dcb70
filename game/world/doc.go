// Package world holds the immutable game model: positions, entities and the
// State snapshot threaded through every turn.
//
// Every "mutation" returns a new value:
//
//	s := world.DefaultState()
//	next := s.MovePlayer(1, 0).AddLog("moved").NextTurn()
//	// s is unchanged
//
// Anything that moves the player or an entity clamps to the map, so a State
// never holds an off-map coordinate. The log keeps the most recent
// MaxLogMessages messages.
package world
