// Package config loads and caches stage configurations from a directory.
//
// A stage file may be JSON (.json), YAML (.yaml, .yml) or TOML (.toml).
// Stages are addressed by their config id, the file name without its
// extension:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	stage, err := manager.LoadConfig("arena") // arena.json, arena.yaml, ...
//	configs, err := manager.ListConfigs()
//
// The default stage is "classic" when present, otherwise the first stage
// that loads, otherwise engine.DefaultStageConfig. Every loaded stage is
// validated with engine.ValidateStageConfig, which also lexes and parses
// its setup script.
package config
