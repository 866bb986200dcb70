// Package service provides the business logic layer for the DSL game.
//
// The service package implements:
//   - Multi-session game management
//   - Turns: DSL commands, waits and resets
//   - Paginated command history
//   - Pathfinding queries over a session's world
//   - Script checking without execution
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager handles session creation, retrieval, persistence and the journal.
// ConfigManager loads, lists and saves stage configurations.
//
// The service layer sits between the transport layer (HTTP/WebSocket/MCP) and
// the game engine. Each session owns its own engine instance and all calls
// into the service are serialized.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr, _ := config.NewManager("configs")
//	gameService := service.NewGameService(sessionMgr, configMgr)
//
//	sessionInfo, err := gameService.CreateSession(ctx, "arena")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := gameService.Execute(ctx, sessionInfo.ID, "move player 3 4")
//
// Errors:
//
// ErrSessionNotFound, ErrConfigNotFound, ErrInvalidConfig and
// ErrInvalidRequest are shared with the session and config packages so
// callers can match them with errors.Is at any layer. Turn errors such as
// engine.ErrGameOver pass through unchanged.
package service
