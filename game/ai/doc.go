// Package ai drives the non-player entities.
//
// Each turn every active entity next to the player attacks it; the rest take
// one step towards the player, expressed as a DSL move command and run
// through the interpreter like any player command.
package ai
