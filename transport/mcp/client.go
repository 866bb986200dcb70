package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cast"
	"github.com/wricardo/mcp-training/dslgame/game/engine"
	"github.com/wricardo/mcp-training/dslgame/game/service"
	"github.com/wricardo/mcp-training/dslgame/game/world"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"DSL Game",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`DSL Game - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Control the player (@) on a grid by writing commands in a small scripting language.
Destroy enemies for points and stay alive: enemies chase you and attack when adjacent.

AVAILABLE TOOLS:
- create_session, list_sessions, get_session: Manage game sessions
- game_state: Current world state
- execute_command: Run DSL commands as your turn - requires intent explanation
- wait_turn: Pass the turn so enemies act
- reset_game: Restart the stage
- command_history: View past commands
- render_map: Text map of the world
- find_path: A* path between the player, an entity or a cell
- check_script: Lex and parse a script without running it
- list_configs: List available stages
- game_instructions: Full language reference and rules

NOTE: The 'intent' parameter on execute_command serves as rubber duck debugging - explain your reasoning!`),
	)

	c.registerTools()
}

func sessionProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Session ID",
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new game session with optional stage selection",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"config_id": map[string]interface{}{
					"type":        "string",
					"description": "ID of the stage to play, see list_configs (optional)",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active game sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleGetSession)

	// Game operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Get the current game state",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleGameState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "execute_command",
		Description: "Run one or more DSL statements (one per line) as the player's turn",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"command": map[string]interface{}{
					"type":        "string",
					"description": "DSL source, e.g. \"move player 3 4\" or \"if goblin.hp < 5 then destroy goblin\"",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of the intent behind this command (serves as a rubber duck to help explain your reasoning)",
				},
			},
			Required: []string{"session_id", "command"},
		},
	}, c.handleExecute)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "wait_turn",
		Description: "Pass the turn; every active enemy moves toward the player or attacks",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleWait)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "reset_game",
		Description: "Reset the game to the stage's initial state",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleReset)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "command_history",
		Description: "Get the session's command history with pagination",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"page": map[string]interface{}{
					"type":        "number",
					"description": "Page number (default 1)",
				},
				"limit": map[string]interface{}{
					"type":        "number",
					"description": "Entries per page (default 20, max 100)",
				},
				"current": map[string]interface{}{
					"type":        "boolean",
					"description": "Only entries since the last reset",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleHistory)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "render_map",
		Description: "Render the world as a text grid",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleRender)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "find_path",
		Description: "Find the shortest path with A*. Other entities block the way.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"from": map[string]interface{}{
					"type":        "string",
					"description": "Start: \"player\" (default) or an entity name or id",
				},
				"to": map[string]interface{}{
					"type":        "string",
					"description": "Goal: an entity name or id",
				},
				"x": map[string]interface{}{
					"type":        "number",
					"description": "Goal cell x, used with y instead of 'to'",
				},
				"y": map[string]interface{}{
					"type":        "number",
					"description": "Goal cell y, used with x instead of 'to'",
				},
				"diagonal": map[string]interface{}{
					"type":        "boolean",
					"description": "Allow diagonal steps (default true)",
				},
				"heuristic": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"manhattan", "euclidean", "chebyshev"},
					"description": "Distance estimate (default fits the movement mode)",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleFindPath)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "check_script",
		Description: "Lex and parse DSL source without running it; reports diagnostics",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"source": map[string]interface{}{
					"type":        "string",
					"description": "DSL source to check",
				},
			},
			Required: []string{"source"},
		},
	}, c.handleCheck)

	// Configuration
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List available stage configurations",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListConfigs)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get the language reference and game rules",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	resp, err := c.do(ctx, method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}
	return nil
}

func (c *Client) apiText(ctx context.Context, method, path string) (string, error) {
	resp, err := c.do(ctx, method, path, nil)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// do sends a request and turns error statuses into errors. The caller
// closes the body on success.
func (c *Client) do(ctx context.Context, method, path string, body interface{}) (*http.Response, error) {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return nil, fmt.Errorf("%s", msg)
		}
		return nil, fmt.Errorf("API error: %d", resp.StatusCode)
	}

	return resp, nil
}

// arguments returns the tool call's arguments, or an empty map
func arguments(request mcp.CallToolRequest) map[string]interface{} {
	if args, ok := request.Params.Arguments.(map[string]interface{}); ok {
		return args
	}
	return map[string]interface{}{}
}

func sessionPath(args map[string]interface{}, suffix string) (string, error) {
	sessionID := strings.TrimSpace(cast.ToString(args["session_id"]))
	if sessionID == "" {
		return "", fmt.Errorf("session_id is required")
	}
	return "/api/sessions/" + url.PathEscape(sessionID) + suffix, nil
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	configID := cast.ToString(args["config_id"])

	body := map[string]string{}
	if configID != "" {
		body["config_id"] = configID
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nConfig: %s\n\n%s", session.ID, session.ConfigName, formatGameState(session.GameState))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	if err := c.apiCall(ctx, "GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		fmt.Fprintf(&b, "- %s (Config: %s, Turn: %d, Score: %d, Created: %s)\n",
			s.ID, s.ConfigName, s.GameState.Turn, s.GameState.Score, s.CreatedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := sessionPath(arguments(request), "")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "GET", path, nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := sessionPath(arguments(request), "/state")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var state world.State
	if err := c.apiCall(ctx, "GET", path, nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGameState(state)), nil
}

func (c *Client) handleExecute(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	path, err := sessionPath(args, "/execute")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	// Intent serves as rubber duck debugging and is not sent
	body := map[string]string{"command": cast.ToString(args["command"])}

	var result service.CommandResult
	if err := c.apiCall(ctx, "POST", path, body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatCommandResult(&result)), nil
}

func (c *Client) handleWait(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := sessionPath(arguments(request), "/wait")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var result service.CommandResult
	if err := c.apiCall(ctx, "POST", path, nil, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatCommandResult(&result)), nil
}

func (c *Client) handleReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := sessionPath(arguments(request), "/reset")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var response struct {
		Message string      `json:"message"`
		State   world.State `json:"state"`
	}
	if err := c.apiCall(ctx, "POST", path, nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("%s\n\n%s", response.Message, formatGameState(response.State))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)

	params := url.Values{}
	if page := cast.ToInt(args["page"]); page > 0 {
		params.Set("page", cast.ToString(page))
	}
	if limit := cast.ToInt(args["limit"]); limit > 0 {
		params.Set("limit", cast.ToString(limit))
	}
	if cast.ToBool(args["current"]) {
		params.Set("current", "true")
	}

	suffix := "/history"
	if len(params) > 0 {
		suffix += "?" + params.Encode()
	}
	path, err := sessionPath(args, suffix)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var history service.HistoryResponse
	if err := c.apiCall(ctx, "GET", path, nil, &history); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatHistory(&history)), nil
}

func (c *Client) handleRender(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := sessionPath(arguments(request), "/render")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	out, err := c.apiText(ctx, "GET", path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(out), nil
}

func (c *Client) handleFindPath(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	path, err := sessionPath(args, "/path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	req := service.PathRequest{
		From:      cast.ToString(args["from"]),
		To:        cast.ToString(args["to"]),
		Heuristic: cast.ToString(args["heuristic"]),
	}
	_, hasX := args["x"]
	_, hasY := args["y"]
	if hasX && hasY {
		req.Target = &engine.Point{X: cast.ToInt(args["x"]), Y: cast.ToInt(args["y"])}
	}
	if d, ok := args["diagonal"]; ok {
		diagonal := cast.ToBool(d)
		req.Diagonal = &diagonal
	}

	var resp service.PathResponse
	if err := c.apiCall(ctx, "POST", path, req, &resp); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatPath(&resp)), nil
}

func (c *Client) handleCheck(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	body := map[string]string{"source": cast.ToString(args["source"])}

	var result service.CheckResult
	if err := c.apiCall(ctx, "POST", "/api/check", body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatCheck(&result)), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []service.ConfigInfo
	if err := c.apiCall(ctx, "GET", "/api/configs", nil, &configs); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString("Available Configurations:\n\n")
	for _, config := range configs {
		fmt.Fprintf(&b, "• %s (id: %s, %s)\n  %s\n  Map: %dx%d\n\n",
			config.Name, config.ConfigID, config.Format, config.Description, config.MapWidth, config.MapHeight)
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(instructions), nil
}

const instructions = `DSL Game - Complete Instructions

GAME OBJECTIVE:
You control the player (@) on a rectangular grid. Each turn you either run a
script of DSL commands or wait. Destroying entities scores points. Enemies
chase you and attack when next to you; the game ends when your HP reaches 0.

TURNS:
• execute_command runs your script, then the turn counter advances
• wait_turn passes; every active enemy steps toward you along an A* path or attacks
• A script with errors still uses the turn. Bad statements are skipped and reported
• After game over only reset_game works

LANGUAGE:
  move <target> <x> <y>            Move the player or an entity (clamped to the map)
  spawn <type> <x> <y> [<name>]    Create an entity (enemy, item, ...)
  destroy <target>                 Remove every matching entity, +10 points each
  set <target>.<property> <value>  Change hp, x, y, name or is_active
  if <condition> then <statement> [else <statement>]

Targets are entity names or ids; "player" is always you.
One statement per line. Comments start with #.

EXPRESSIONS:
• Numbers, "strings", true, false
• Properties: player.hp, goblin.x, orc.is_active
• Arithmetic: + - * /
• Comparison: < > <= >= == !=
• Logic: and, or, not

EXAMPLES:
  move player 3 4
  spawn enemy 7 2 orc
  if orc.hp < 5 then destroy orc else set orc.hp orc.hp - 5
  if player.hp <= 10 and not orc.is_active then move player 0 0

MAP:
  @ player   E enemy   ! item   . empty
(stages may change the characters)

STRATEGY:
• Use find_path to see how far an enemy is and which way it will come
• Use check_script before running long scripts
• render_map shows the grid; game_state lists every entity with its HP

SESSION MANAGEMENT:
- Multiple game sessions can run simultaneously
- Each session has a unique 4-character ID
- Sessions keep independent state and stage configuration`

// Formatting helpers

func formatSessionInfo(session *service.SessionInfo) string {
	return fmt.Sprintf("Session: %s\nConfig: %s\nCreated: %s\nLast accessed: %s\n\n%s",
		session.ID, session.ConfigName,
		session.CreatedAt.Format(time.RFC3339), session.LastAccessedAt.Format(time.RFC3339),
		formatGameState(session.GameState))
}

func formatGameState(state world.State) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Turn: %d | Score: %d | HP: %d\n", state.Turn, state.Score, state.Player.HP)
	fmt.Fprintf(&b, "Player: (%d, %d) on a %dx%d map\n", state.Player.Pos.X, state.Player.Pos.Y, state.MapWidth, state.MapHeight)
	if state.GameOver {
		b.WriteString("💀 GAME OVER - use reset_game to play again\n")
	}

	active := 0
	for _, e := range state.Entities {
		if e.Active {
			active++
		}
	}
	fmt.Fprintf(&b, "\nEntities (%d active):\n", active)
	for _, e := range state.Entities {
		status := ""
		if !e.Active {
			status = " [inactive]"
		}
		fmt.Fprintf(&b, "- %s (id %s, %s) at (%d, %d) hp %d%s\n",
			e.Name, e.ID, e.Kind(), e.Pos.X, e.Pos.Y, e.HP, status)
	}

	if n := len(state.Log); n > 0 {
		b.WriteString("\nRecent log:\n")
		for _, line := range state.Log[max(0, n-5):] {
			fmt.Fprintf(&b, "  %s\n", line)
		}
	}

	return b.String()
}

func formatCommandResult(result *service.CommandResult) string {
	var b strings.Builder

	status := "✅ OK"
	if !result.Success {
		status = "⚠️ Completed with errors"
	}
	fmt.Fprintf(&b, "%s (turn %d)\n", status, result.GameState.Turn)

	for _, d := range result.Diagnostics {
		fmt.Fprintf(&b, "  %s error, line %d col %d: %s\n", d.Stage, d.Line, d.Column, d.Message)
	}
	for _, msg := range result.RuntimeErrors {
		fmt.Fprintf(&b, "  runtime error: %s\n", msg)
	}
	if len(result.AIActions) > 0 {
		b.WriteString("\nEnemy actions:\n")
		for _, a := range result.AIActions {
			fmt.Fprintf(&b, "  %s\n", a)
		}
	}
	if len(result.Attacks) > 0 {
		b.WriteString("\nAttacks:\n")
		for _, a := range result.Attacks {
			fmt.Fprintf(&b, "  %s\n", a)
		}
	}

	b.WriteString("\n")
	b.WriteString(formatGameState(result.GameState))
	return b.String()
}

func formatHistory(history *service.HistoryResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "History (page %d of %d, %d total):\n\n", history.Page, history.TotalPages, history.TotalEntries)

	for _, entry := range history.Entries {
		status := "ok"
		if !entry.Success {
			status = fmt.Sprintf("%d error(s)", entry.ErrorCount)
		}
		input := entry.Input
		if entry.Kind != engine.KindCommand {
			input = string(entry.Kind)
		}
		fmt.Fprintf(&b, "#%d turn %d [%s] %s\n", entry.Number, entry.Turn, status, strings.ReplaceAll(input, "\n", "; "))
	}

	if history.HasNext {
		b.WriteString("\nMore entries on the next page.\n")
	}
	return b.String()
}

func formatPath(resp *service.PathResponse) string {
	if !resp.Found {
		return fmt.Sprintf("No path from (%d, %d) to (%d, %d). Explored %d cells.",
			resp.From.X, resp.From.Y, resp.To.X, resp.To.Y, resp.Explored)
	}

	cells := make([]string, len(resp.Path))
	for i, p := range resp.Path {
		cells[i] = fmt.Sprintf("(%d,%d)", p.X, p.Y)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Path from (%d, %d) to (%d, %d): %d steps, cost %.3f, explored %d cells\n",
		resp.From.X, resp.From.Y, resp.To.X, resp.To.Y, resp.StepCount, resp.Cost, resp.Explored)
	b.WriteString(strings.Join(cells, " -> "))
	if resp.NextStep != nil {
		fmt.Fprintf(&b, "\nNext step: move player %d %d", resp.NextStep.X, resp.NextStep.Y)
	}
	return b.String()
}

func formatCheck(result *service.CheckResult) string {
	var b strings.Builder
	if result.Valid {
		fmt.Fprintf(&b, "✅ Valid: %d statement(s), %d token(s)\n", len(result.Statements), result.Tokens)
	} else {
		fmt.Fprintf(&b, "❌ %d problem(s)\n", len(result.Diagnostics))
	}
	for _, d := range result.Diagnostics {
		fmt.Fprintf(&b, "  %s error, line %d col %d: %s\n", d.Stage, d.Line, d.Column, d.Message)
	}
	for i, stmt := range result.Statements {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, stmt)
	}
	return b.String()
}
