package ai

import (
	"fmt"

	"github.com/wricardo/mcp-training/dslgame/game/dsl"
	"github.com/wricardo/mcp-training/dslgame/game/world"
)

// DefaultDamage is what an attack costs the player unless the stage says otherwise
const DefaultDamage = 10

// TurnOutcome is the result of letting every active entity act once
type TurnOutcome struct {
	State   world.State `json:"state"`
	Actions []string    `json:"actions"`
	Attacks []string    `json:"attacks"`
	Errors  []string    `json:"errors"`
}

// Turn lets every active entity either attack the player or move. Entities
// act in insertion order and each sees the state left by the ones before it.
// Moves go through interp as DSL commands.
func Turn(state world.State, interp *dsl.Interpreter, chaser *Chaser, damage int) TurnOutcome {
	out := TurnOutcome{
		Actions: []string{},
		Attacks: []string{},
		Errors:  []string{},
	}

	ids := make([]string, 0, len(state.Entities))
	for _, e := range state.ActiveEntities() {
		ids = append(ids, e.ID)
	}

	current := state
	for _, id := range ids {
		entity, ok := current.EntityByID(id)
		if !ok || !entity.Active {
			continue
		}

		if ShouldAttack(entity, current.Player) {
			msg := fmt.Sprintf("%s attacks! (-%d HP)", entity.Name, damage)
			current = current.WithPlayer(current.Player.TakeDamage(damage)).AddLog(msg)
			out.Attacks = append(out.Attacks, msg)
			continue
		}

		action := chaser.DecideAction(entity, current)
		out.Actions = append(out.Actions, action)

		program, _, parseErrs := dsl.ParseSource(action)
		for _, e := range parseErrs {
			out.Errors = append(out.Errors, e.Message)
		}
		result := interp.Execute(program, current)
		out.Errors = append(out.Errors, result.ErrorMessages()...)
		current = result.State
	}

	out.State = current
	return out
}
