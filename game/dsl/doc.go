// Package dsl implements the command language used to drive the game.
//
// Source text flows through three stages:
//
//	tokens, lexErrs := dsl.Tokenize(source)
//	program, parseErrs := dsl.Parse(tokens)
//	result := dsl.NewInterpreter().Execute(program, state)
//
// None of the stages panic on bad input. Lexing and parsing collect
// diagnostics and keep going, and the interpreter skips a failing statement
// and carries on with the next one. The world.State passed in is never
// modified; result.State is the new state.
//
// Statements:
//
//	move <target> <x> <y>
//	spawn <type> <x> <y> [<name>]
//	destroy <target>
//	set <target>.<property> <value>
//	if <condition> then <statement> [else <statement>]
//
// Targets are matched against entity names and ids; "player" always names
// the player.
package dsl
