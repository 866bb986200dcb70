// Package api provides the HTTP REST API for the DSL game.
//
// Endpoints:
//
// Session Management:
//   - POST /api/sessions - Create a session ({"config_id": "arena"}, empty for the default stage)
//   - GET /api/sessions - List sessions (?sort=created|accessed&order=asc|desc&limit=N)
//   - GET /api/sessions/{id} - Get a session
//   - DELETE /api/sessions/{id} - Delete a session and its save slot
//
// Turns:
//   - POST /api/sessions/{id}/execute - Run DSL source ({"command": "move player 3 4"})
//   - POST /api/sessions/{id}/wait - Pass the turn so enemies act
//   - POST /api/sessions/{id}/reset - Restart the stage
//
// Game State:
//   - GET /api/sessions/{id}/state - Current world state
//   - GET /api/sessions/{id}/history - Paginated history (?page&limit&order&current=true)
//   - GET /api/sessions/{id}/render - Text map (text/plain)
//   - POST /api/sessions/{id}/path - A* path ({"from": "player", "to": "goblin", "diagonal": true, "heuristic": "chebyshev"})
//
// Scripts and Configuration:
//   - POST /api/check - Lex and parse without running ({"source": "..."})
//   - GET /api/configs - List stages
//   - POST /api/configs - Save a stage (body is the stage, plus optional "config_id" and "format")
//   - GET /api/configs/{name} - Get a stage
//
// Other:
//   - GET /api - Endpoint index
//   - GET /api/health - Health check
//   - GET /ws?session={id} - WebSocket updates for a session
//
// Errors are returned as JSON, {"error": "message"}. Unknown sessions and
// stages give 404, bad input 400, and commands after game over 409.
//
// Execute and wait responses carry the new state, diagnostics, runtime
// errors, interpreter logs, AI actions, attacks and a list of events. The
// same state and events are pushed to the session's WebSocket clients.
package api
