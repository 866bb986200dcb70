package ai

import (
	"fmt"
	"math/rand/v2"

	"github.com/wricardo/mcp-training/dslgame/game/pathfinding"
	"github.com/wricardo/mcp-training/dslgame/game/world"
)

// Chaser steers entities towards the player along an A* path and wanders
// randomly when no path exists
type Chaser struct {
	rng *rand.Rand
}

// NewChaser creates a Chaser. A zero seed picks a random one.
func NewChaser(seed uint64) *Chaser {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return &Chaser{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// DecideAction returns the DSL command the entity wants to run this turn
func (c *Chaser) DecideAction(entity world.Entity, state world.State) string {
	walkable := pathfinding.WalkableFromState(state, entity.Pos)
	next, ok := pathfinding.GetNextStep(entity.Pos, state.Player.Pos, walkable, state.MapWidth, state.MapHeight)
	if ok {
		return moveCommand(entity.ID, next)
	}
	return c.randomMove(entity, state)
}

func (c *Chaser) randomMove(entity world.Entity, state world.State) string {
	dx := c.rng.IntN(3) - 1
	dy := c.rng.IntN(3) - 1
	return moveCommand(entity.ID, state.Clamp(entity.Pos.Move(dx, dy)))
}

func moveCommand(id string, p world.Position) string {
	return fmt.Sprintf("move %s %d %d", id, p.X, p.Y)
}

// ShouldAttack reports whether entity is next to the player
func ShouldAttack(entity, player world.Entity) bool {
	return ManhattanDistance(entity.Pos, player.Pos) <= 1
}

// ManhattanDistance is the number of straight steps between a and b
func ManhattanDistance(a, b world.Position) int {
	return int(pathfinding.Manhattan(a, b))
}
