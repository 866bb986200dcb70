package engine

import (
	"errors"
	"time"

	"github.com/wricardo/mcp-training/dslgame/game/world"
)

const (
	// Validation constants
	MinMapSize      = 3
	MaxMapSize      = 100
	MaxSetupLines   = 500
	MaxCommandBytes = 4096

	// Log lines shown under the rendered map
	RenderLogLines = 3

	DefaultEnemyDamage = 10
)

var (
	ErrGameOver       = errors.New("game is over, reset to play again")
	ErrEmptyCommand   = errors.New("command cannot be empty")
	ErrCommandTooLong = errors.New("command too long")
	ErrInvalidStage   = errors.New("config validation")
	ErrStageNotFound  = errors.New("stage config not found")
	ErrUnknownFormat  = errors.New("unknown config format")
)

// HistoryKind tells what produced a history entry
type HistoryKind string

const (
	KindCommand HistoryKind = "command"
	KindWait    HistoryKind = "wait"
	KindReset   HistoryKind = "reset"
)

// Point is a coordinate as written in stage files
type Point struct {
	X int `json:"x" yaml:"x" toml:"x"`
	Y int `json:"y" yaml:"y" toml:"y"`
}

// Position converts p to a world position
func (p Point) Position() world.Position {
	return world.Pos(p.X, p.Y)
}

// StageConfig describes a stage: the map, the player's start and the DSL
// script that sets up the initial entities. Stage files may be JSON, YAML
// or TOML.
type StageConfig struct {
	Name        string            `json:"name" yaml:"name" toml:"name"`
	Description string            `json:"description" yaml:"description" toml:"description"`
	Title       string            `json:"title,omitempty" yaml:"title,omitempty" toml:"title,omitempty"`
	MapWidth    int               `json:"map_width" yaml:"map_width" toml:"map_width"`
	MapHeight   int               `json:"map_height" yaml:"map_height" toml:"map_height"`
	PlayerStart *Point            `json:"player_start,omitempty" yaml:"player_start,omitempty" toml:"player_start,omitempty"`
	PlayerHP    int               `json:"player_hp" yaml:"player_hp" toml:"player_hp"`
	CharMapping map[string]string `json:"char_mapping,omitempty" yaml:"char_mapping,omitempty" toml:"char_mapping,omitempty"`
	Setup       []string          `json:"setup,omitempty" yaml:"setup,omitempty" toml:"setup,omitempty"`
	AutoSave    *bool             `json:"auto_save,omitempty" yaml:"auto_save,omitempty" toml:"auto_save,omitempty"`
	AIEnabled   *bool             `json:"ai_enabled,omitempty" yaml:"ai_enabled,omitempty" toml:"ai_enabled,omitempty"`
	Debug       bool              `json:"debug,omitempty" yaml:"debug,omitempty" toml:"debug,omitempty"`
	EnemyDamage *int              `json:"enemy_damage,omitempty" yaml:"enemy_damage,omitempty" toml:"enemy_damage,omitempty"`
	Seed        int64             `json:"seed,omitempty" yaml:"seed,omitempty" toml:"seed,omitempty"`
}

// Diagnostic is a lexing or parsing problem reported back to the player
type Diagnostic struct {
	Stage   string `json:"stage"` // "lex" or "parse"
	Message string `json:"message"`
	Line    int    `json:"line"`
	Column  int    `json:"column"`
}

// HistoryEntry records one command, wait or reset
type HistoryEntry struct {
	ID         string      `json:"id"`
	Kind       HistoryKind `json:"kind"`
	Input      string      `json:"input,omitempty"`
	Turn       int         `json:"turn"`
	ErrorCount int         `json:"error_count"`
	Success    bool        `json:"success"`
	Timestamp  int64       `json:"timestamp"`
	Number     int         `json:"number"`
}

// Time returns the entry's timestamp
func (h HistoryEntry) Time() time.Time {
	return time.Unix(h.Timestamp, 0)
}

// TurnResult is everything a caller needs to report one Execute or Wait
type TurnResult struct {
	Input         string       `json:"input,omitempty"`
	State         world.State  `json:"state"`
	Diagnostics   []Diagnostic `json:"diagnostics"`
	RuntimeErrors []string     `json:"runtime_errors"`
	Logs          []string     `json:"logs"`
	AIActions     []string     `json:"ai_actions,omitempty"`
	Attacks       []string     `json:"attacks,omitempty"`
	Entry         HistoryEntry `json:"entry"`
}

// OK reports whether the turn produced no diagnostics or runtime errors
func (r *TurnResult) OK() bool {
	return len(r.Diagnostics) == 0 && len(r.RuntimeErrors) == 0
}

// ErrorCount is the number of diagnostics plus runtime errors
func (r *TurnResult) ErrorCount() int {
	return len(r.Diagnostics) + len(r.RuntimeErrors)
}
