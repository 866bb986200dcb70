package mcp

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/wricardo/mcp-training/dslgame/game/engine"
	"github.com/wricardo/mcp-training/dslgame/game/pathfinding"
	"github.com/wricardo/mcp-training/dslgame/game/service"
	"github.com/wricardo/mcp-training/dslgame/game/world"
)

func testState() world.State {
	state := world.NewState(10, 8, world.Pos(5, 3))
	state = state.AddEntity(world.NewEntity("enemy_1", "goblin", world.Pos(8, 6)))
	state.Score = 10
	return state
}

func callTool(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if result == nil {
		t.Fatal("Expected result, got nil")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatal("Expected text content in result")
	}
	return text.Text
}

func TestNewClient(t *testing.T) {
	baseURL := "http://localhost:8080"
	client := NewClient(baseURL + "/")

	if client == nil {
		t.Fatal("Expected client to be created")
	}

	if client.baseURL != baseURL {
		t.Errorf("Expected baseURL %s, got %s", baseURL, client.baseURL)
	}

	if client.httpClient == nil {
		t.Error("Expected HTTP client to be initialized")
	}

	if client.mcpServer == nil {
		t.Error("Expected MCP server to be initialized")
	}
}

func TestClient_apiCall(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{"id": "a1b2"})
	}))
	defer server.Close()

	client := NewClient(server.URL)

	var response map[string]interface{}
	if err := client.apiCall(context.Background(), "GET", "/api", nil, &response); err != nil {
		t.Fatalf("apiCall failed: %v", err)
	}
	if response["id"] != "a1b2" {
		t.Errorf("Expected id a1b2, got %v", response["id"])
	}
}

func TestClient_apiCall_Error(t *testing.T) {
	client := NewClient("http://invalid-url-that-does-not-exist:9999")

	if err := client.apiCall(context.Background(), "GET", "/api", nil, nil); err == nil {
		t.Error("Expected error for invalid URL")
	}
}

func TestClient_apiCall_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/json":
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"error": "session not found: zzzz"})
		default:
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("Internal Server Error"))
		}
	}))
	defer server.Close()

	client := NewClient(server.URL)

	err := client.apiCall(context.Background(), "GET", "/plain", nil, nil)
	if err == nil || !strings.Contains(err.Error(), "API error") {
		t.Errorf("Expected 'API error', got: %v", err)
	}

	err = client.apiCall(context.Background(), "GET", "/json", nil, nil)
	if err == nil || err.Error() != "session not found: zzzz" {
		t.Errorf("Expected the API's error message, got: %v", err)
	}
}

func TestClient_createSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" || r.URL.Path != "/api/sessions" {
			t.Errorf("Expected POST /api/sessions, got %s %s", r.Method, r.URL.Path)
		}

		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["config_id"] != "arena" {
			t.Errorf("Expected config_id arena, got %v", body)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(service.SessionInfo{
			ID:         "a1b2",
			ConfigName: "arena",
			GameState:  testState(),
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)

	result, err := client.handleCreateSession(context.Background(), callTool("create_session", map[string]interface{}{"config_id": "arena"}))
	if err != nil {
		t.Fatalf("createSession failed: %v", err)
	}

	text := resultText(t, result)
	if !strings.Contains(text, "a1b2") || !strings.Contains(text, "goblin") {
		t.Errorf("Expected session and state in result, got: %s", text)
	}
}

func TestClient_executeCommand(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/sessions/a1b2/execute" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}

		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if _, sent := body["intent"]; sent {
			t.Error("Intent should not be sent to the API")
		}

		json.NewEncoder(w).Encode(service.CommandResult{
			Success:       false,
			Command:       body["command"],
			GameState:     testState().NextTurn(),
			RuntimeErrors: []string{"Entity not found: dragon"},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	result, err := client.handleExecute(context.Background(), callTool("execute_command", map[string]interface{}{
		"session_id": "a1b2",
		"command":    "destroy dragon",
		"intent":     "clear the path",
	}))
	if err != nil {
		t.Fatalf("handleExecute failed: %v", err)
	}

	text := resultText(t, result)
	for _, want := range []string{"Completed with errors", "Entity not found: dragon", "Turn: 1"} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected %q in result, got: %s", want, text)
		}
	}
}

func TestClient_missingSessionID(t *testing.T) {
	client := NewClient("http://localhost:1")

	handlers := map[string]func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error){
		"game_state":      client.handleGameState,
		"wait_turn":       client.handleWait,
		"reset_game":      client.handleReset,
		"render_map":      client.handleRender,
		"command_history": client.handleHistory,
		"find_path":       client.handleFindPath,
	}

	for name, handler := range handlers {
		t.Run(name, func(t *testing.T) {
			// Nil arguments must not panic
			result, err := handler(context.Background(), mcp.CallToolRequest{})
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if !result.IsError {
				t.Error("Expected a tool error without session_id")
			}
		})
	}
}

func TestClient_history(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("page") != "2" || q.Get("limit") != "5" || q.Get("current") != "true" {
			t.Errorf("Unexpected query %s", r.URL.RawQuery)
		}
		json.NewEncoder(w).Encode(service.HistoryResponse{
			Entries: []engine.HistoryEntry{
				{Number: 6, Kind: engine.KindCommand, Input: "move player 1 1", Turn: 6, Success: true},
				{Number: 7, Kind: engine.KindWait, Input: "wait", Turn: 7, Success: true},
			},
			TotalEntries: 7,
			Page:         2,
			TotalPages:   2,
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	result, _ := client.handleHistory(context.Background(), callTool("command_history", map[string]interface{}{
		"session_id": "a1b2",
		"page":       float64(2),
		"limit":      float64(5),
		"current":    true,
	}))

	text := resultText(t, result)
	if !strings.Contains(text, "page 2 of 2") || !strings.Contains(text, "move player 1 1") || !strings.Contains(text, "[ok] wait") {
		t.Errorf("Unexpected history output: %s", text)
	}
}

func TestClient_renderMap(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		io.WriteString(w, "..@..\n..E..\n")
	}))
	defer server.Close()

	client := NewClient(server.URL)
	result, _ := client.handleRender(context.Background(), callTool("render_map", map[string]interface{}{"session_id": "a1b2"}))

	if text := resultText(t, result); text != "..@..\n..E..\n" {
		t.Errorf("Expected the map verbatim, got %q", text)
	}
}

func TestClient_findPath(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req service.PathRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.Target == nil || req.Target.X != 7 || req.Target.Y != 2 {
			t.Errorf("Expected target (7, 2), got %+v", req.Target)
		}
		if req.Diagonal == nil || *req.Diagonal {
			t.Errorf("Expected diagonal false, got %v", req.Diagonal)
		}

		path := []world.Position{world.Pos(5, 3), world.Pos(6, 3), world.Pos(7, 3), world.Pos(7, 2)}
		json.NewEncoder(w).Encode(service.PathResponse{
			PathResult: pathfinding.PathResult{Path: path, Found: true, Cost: 3, Explored: 9},
			From:       path[0],
			To:         path[3],
			StepCount:  3,
			NextStep:   &path[1],
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	result, _ := client.handleFindPath(context.Background(), callTool("find_path", map[string]interface{}{
		"session_id": "a1b2",
		"x":          float64(7),
		"y":          float64(2),
		"diagonal":   false,
	}))

	text := resultText(t, result)
	for _, want := range []string{"3 steps", "(5,3) -> (6,3)", "Next step: move player 6 3"} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected %q in result, got: %s", want, text)
		}
	}
}

func TestFormatGameState(t *testing.T) {
	result := formatGameState(testState())

	expectedFields := []string{
		"Player: (5, 3)",
		"Score: 10",
		"goblin (id enemy_1, enemy) at (8, 6)",
	}

	for _, field := range expectedFields {
		if !strings.Contains(result, field) {
			t.Errorf("Expected field '%s' in formatted output, got: %s", field, result)
		}
	}
}

func TestFormatGameState_GameOver(t *testing.T) {
	result := formatGameState(testState().EndGame())

	if !strings.Contains(result, "💀 GAME OVER") {
		t.Errorf("Expected '💀 GAME OVER' in result, got: %s", result)
	}
}

func TestFormatCheck(t *testing.T) {
	valid := formatCheck(&service.CheckResult{Valid: true, Tokens: 4, Statements: []string{"move player 1 1"}})
	if !strings.Contains(valid, "Valid: 1 statement(s), 4 token(s)") {
		t.Errorf("Unexpected output: %s", valid)
	}

	invalid := formatCheck(&service.CheckResult{
		Diagnostics: []engine.Diagnostic{{Stage: "lex", Message: "Unknown character: '$'", Line: 1, Column: 17}},
	})
	if !strings.Contains(invalid, "lex error, line 1 col 17") {
		t.Errorf("Unexpected output: %s", invalid)
	}
}

func TestClient_handleGameInstructions(t *testing.T) {
	client := NewClient("http://localhost:8080")

	result, err := client.handleGameInstructions(context.Background(), callTool("game_instructions", map[string]interface{}{}))
	if err != nil {
		t.Fatalf("handleGameInstructions failed: %v", err)
	}

	text := resultText(t, result)
	expectedContent := []string{
		"DSL Game - Complete Instructions",
		"GAME OBJECTIVE:",
		"LANGUAGE:",
		"move <target> <x> <y>",
		"EXPRESSIONS:",
		"EXAMPLES:",
	}

	for _, content := range expectedContent {
		if !strings.Contains(text, content) {
			t.Errorf("Expected '%s' in instructions", content)
		}
	}
}
