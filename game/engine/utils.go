package engine

import (
	"fmt"

	"github.com/wricardo/mcp-training/dslgame/game/ai"
	"github.com/wricardo/mcp-training/dslgame/game/dsl"
	"github.com/wricardo/mcp-training/dslgame/game/world"
)

// ManhattanDistance calculates the Manhattan distance between two positions
func ManhattanDistance(from, to world.Position) int {
	return ai.ManhattanDistance(from, to)
}

// StatusLines summarizes a state for the status command
func StatusLines(state world.State) []string {
	lines := []string{
		fmt.Sprintf("Turn: %d", state.Turn),
		fmt.Sprintf("Score: %d", state.Score),
		fmt.Sprintf("Player HP: %d", state.Player.HP),
		fmt.Sprintf("Entities: %d", len(state.Entities)),
	}
	if state.GameOver {
		lines = append(lines, "Game over")
	}
	return lines
}

// Diagnostics merges lexer and parser errors into one list
func Diagnostics(lexErrs []dsl.LexError, parseErrs []dsl.ParseError) []Diagnostic {
	diags := make([]Diagnostic, 0, len(lexErrs)+len(parseErrs))
	for _, e := range lexErrs {
		diags = append(diags, Diagnostic{Stage: "lex", Message: e.Message, Line: e.Line, Column: e.Column})
	}
	for _, e := range parseErrs {
		diags = append(diags, Diagnostic{Stage: "parse", Message: e.Message, Line: e.Line, Column: e.Column})
	}
	return diags
}

// NearestEntity returns the active entity closest to the player
func NearestEntity(state world.State) (world.Entity, int, bool) {
	best := -1
	var nearest world.Entity
	for _, e := range state.ActiveEntities() {
		d := ManhattanDistance(state.Player.Pos, e.Pos)
		if best == -1 || d < best {
			best = d
			nearest = e
		}
	}
	return nearest, best, best >= 0
}
