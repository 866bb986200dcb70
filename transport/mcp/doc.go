// Package mcp exposes the DSL game to AI agents over the Model Context Protocol.
//
// The Client is a thin proxy: every tool call becomes a request against the
// REST API, and the JSON reply is turned into text an agent can read.
//
// Tools:
//   - create_session, list_sessions, get_session: session management
//   - game_state, render_map: inspect the world
//   - execute_command: run DSL source for one turn
//   - wait_turn: pass the turn so enemies act
//   - reset_game: restart the stage
//   - command_history: paginated history
//   - find_path: A* path between the player, entities or a cell
//   - check_script: lex and parse without running
//   - list_configs: available stages
//   - game_instructions: the language reference
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
//
// The same MCPServer also answers JSON-RPC posted to /mcp by the HTTP server.
package mcp
