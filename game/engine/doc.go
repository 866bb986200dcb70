// Package engine runs a stage of the DSL game.
//
// A stage is described by a StageConfig loaded from JSON, YAML or TOML. It
// sets the map size, the player's start and a setup script written in the
// game's own DSL that spawns the initial entities.
//
// Core Types:
//
// The Engine interface defines the main contract for game operations,
// implemented by GameEngine. Every player command is a DSL program passed to
// Execute, which returns a TurnResult with the new world.State and any
// diagnostics. Wait lets the enemies act.
//
// Usage:
//
//	config, err := engine.LoadStageConfigByName("classic")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	gameEngine, err := engine.NewEngine(config)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := gameEngine.Execute("move player 3 4")
//	fmt.Print(gameEngine.Render())
//
// Game Rules:
//
// Every Execute or Wait advances the turn. Enemies next to the player attack
// for enemy_damage HP, the others step towards the player along an A* path.
// Destroying an entity scores 10 points. The game ends when the player's HP
// reaches 0; after that only Reset is accepted.
package engine
