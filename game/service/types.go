package service

import (
	"time"

	"github.com/wricardo/mcp-training/dslgame/game/engine"
	"github.com/wricardo/mcp-training/dslgame/game/pathfinding"
	"github.com/wricardo/mcp-training/dslgame/game/world"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string              `json:"id"`
	ConfigName     string              `json:"config_name"` // config id, usable with CreateSession
	CreatedAt      time.Time           `json:"created_at"`
	LastAccessedAt time.Time           `json:"last_accessed_at"`
	GameState      world.State         `json:"game_state"`
	GameConfig     *engine.StageConfig `json:"game_config"`
}

// CommandResult is the outcome of an Execute or Wait call
type CommandResult struct {
	Success       bool                `json:"success"`
	Command       string              `json:"command"`
	GameState     world.State         `json:"game_state"`
	Diagnostics   []engine.Diagnostic `json:"diagnostics"`
	RuntimeErrors []string            `json:"runtime_errors"`
	Logs          []string            `json:"logs"`
	AIActions     []string            `json:"ai_actions,omitempty"`
	Attacks       []string            `json:"attacks,omitempty"`
	Events        []GameEvent         `json:"events"`
	Entry         engine.HistoryEntry `json:"entry"`
	GameOver      bool                `json:"game_over"`
	Message       string              `json:"message,omitempty"`
}

// GameEvent represents an event that occurred during a turn
type GameEvent struct {
	Type      string    `json:"type"` // "command", "wait", "error", "attack", "score", "game_over", "reset"
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// HistoryOptions configures history retrieval
type HistoryOptions struct {
	Page    int    `json:"page"`
	Limit   int    `json:"limit"`
	Order   string `json:"order"`   // "asc" or "desc"
	Current bool   `json:"current"` // only entries since the last reset
}

// HistoryResponse contains paginated history
type HistoryResponse struct {
	Entries      []engine.HistoryEntry `json:"entries"`
	TotalEntries int                   `json:"total_entries"`
	Page         int                   `json:"page"`
	PageSize     int                   `json:"page_size"`
	TotalPages   int                   `json:"total_pages"`
	HasNext      bool                  `json:"has_next"`
	HasPrevious  bool                  `json:"has_previous"`
}

// PathRequest asks for an A* path inside a session's world. From and To
// name an entity by id or name; "player" and the empty string mean the
// player. Target overrides To with explicit coordinates.
type PathRequest struct {
	From      string        `json:"from"`
	To        string        `json:"to"`
	Target    *engine.Point `json:"target,omitempty"`
	Diagonal  *bool         `json:"diagonal,omitempty"`
	Heuristic string        `json:"heuristic,omitempty"`
}

// PathResponse is a PathResult plus the endpoints that were resolved
type PathResponse struct {
	pathfinding.PathResult
	From      world.Position  `json:"from"`
	To        world.Position  `json:"to"`
	StepCount int             `json:"steps"`
	NextStep  *world.Position `json:"next_step,omitempty"`
}

// CheckResult reports whether a script lexes and parses cleanly
type CheckResult struct {
	Valid       bool                `json:"valid"`
	Tokens      int                 `json:"tokens"`
	Statements  []string            `json:"statements"`
	Diagnostics []engine.Diagnostic `json:"diagnostics"`
}

// ConfigInfo provides information about a stage configuration
type ConfigInfo struct {
	Filename    string `json:"filename"`
	ConfigID    string `json:"config_id"` // The identifier to use for session creation
	Name        string `json:"name"`      // Display name
	Description string `json:"description"`
	MapWidth    int    `json:"map_width"`
	MapHeight   int    `json:"map_height"`
	Format      string `json:"format"`
}
