package engine

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/wricardo/mcp-training/dslgame/game/ai"
	"github.com/wricardo/mcp-training/dslgame/game/dsl"
	"github.com/wricardo/mcp-training/dslgame/game/world"
)

// Engine provides the main interface for game operations
type Engine interface {
	// Game state management
	GetState() world.State
	SetState(state world.State) error
	Reset() world.State
	IsGameOver() bool
	GetScore() int
	GetTurn() int

	// Turns
	Execute(source string) (*TurnResult, error)
	Wait() (*TurnResult, error)

	// Configuration
	GetConfig() *StageConfig
	SetConfig(config *StageConfig) error

	// History
	GetHistory() []HistoryEntry
	GetCurrentHistory() []HistoryEntry
	SetHistory(history, current []HistoryEntry)
	GetLastCommand() *HistoryEntry

	Render() string
}

// GameEngine implements the Engine interface. It is not safe for concurrent
// use; the session layer serializes access.
type GameEngine struct {
	state   world.State
	config  *StageConfig
	interp  *dsl.Interpreter
	chaser  *ai.Chaser
	history []HistoryEntry
	current []HistoryEntry
}

// NewEngine creates a new game engine with the provided configuration
func NewEngine(config *StageConfig) (*GameEngine, error) {
	if err := ValidateStageConfig(config); err != nil {
		return nil, err
	}

	engine := &GameEngine{
		history: []HistoryEntry{},
		current: []HistoryEntry{},
	}
	engine.configure(config)

	return engine, nil
}

// NewEngineWithDefaults creates a new game engine with DefaultStageConfig
func NewEngineWithDefaults() *GameEngine {
	engine := &GameEngine{
		history: []HistoryEntry{},
		current: []HistoryEntry{},
	}
	engine.configure(DefaultStageConfig())
	return engine
}

func (e *GameEngine) configure(config *StageConfig) {
	e.config = config

	var opts []dsl.Option
	if config.Debug {
		name := config.Name
		opts = append(opts, dsl.WithLogHook(func(msg string) {
			log.Printf("[%s] %s", name, msg)
		}))
	}
	e.interp = dsl.NewInterpreter(opts...)
	e.chaser = ai.NewChaser(uint64(config.Seed))
	e.state = InitStateFromConfig(config)
}

// GetState returns the current game state
func (e *GameEngine) GetState() world.State {
	return e.state
}

// SetState sets the game state (used for persistence loading)
func (e *GameEngine) SetState(state world.State) error {
	if state.MapWidth <= 0 || state.MapHeight <= 0 {
		return fmt.Errorf("state must have a positive map size, got %dx%d", state.MapWidth, state.MapHeight)
	}
	e.state = state
	return nil
}

// Reset restarts the stage. The cumulative history is kept and gets a reset
// entry; the current segment starts empty.
func (e *GameEngine) Reset() world.State {
	e.state = InitStateFromConfig(e.config)
	e.current = []HistoryEntry{}
	e.record(KindReset, "", 0)
	e.current = []HistoryEntry{}
	return e.state
}

// IsGameOver returns whether the game is over
func (e *GameEngine) IsGameOver() bool {
	return e.state.GameOver
}

// GetScore returns the current score
func (e *GameEngine) GetScore() int {
	return e.state.Score
}

// GetTurn returns the current turn number
func (e *GameEngine) GetTurn() int {
	return e.state.Turn
}

// Execute runs a DSL program as the player's turn. Malformed statements are
// reported as diagnostics and skipped; the turn advances even when every
// statement fails.
func (e *GameEngine) Execute(source string) (*TurnResult, error) {
	if strings.TrimSpace(source) == "" {
		return nil, ErrEmptyCommand
	}
	if len(source) > MaxCommandBytes {
		return nil, fmt.Errorf("%w: %d bytes, at most %d allowed", ErrCommandTooLong, len(source), MaxCommandBytes)
	}
	if e.state.GameOver {
		return nil, ErrGameOver
	}

	program, lexErrs, parseErrs := dsl.ParseSource(source)
	result := e.interp.Execute(program, e.state)

	e.state = e.finishTurn(result.State)

	turn := &TurnResult{
		Input:         source,
		State:         e.state,
		Diagnostics:   Diagnostics(lexErrs, parseErrs),
		RuntimeErrors: result.ErrorMessages(),
		Logs:          result.Logs,
	}
	turn.Entry = e.record(KindCommand, source, turn.ErrorCount())
	return turn, nil
}

// Wait passes the player's turn. When the stage has AI enabled every
// active entity acts first.
func (e *GameEngine) Wait() (*TurnResult, error) {
	if e.state.GameOver {
		return nil, ErrGameOver
	}

	turn := &TurnResult{
		Input:         "wait",
		Diagnostics:   []Diagnostic{},
		RuntimeErrors: []string{},
		Logs:          []string{},
	}

	next := e.state
	if e.config.AIActive() {
		outcome := ai.Turn(next, e.interp, e.chaser, e.config.Damage())
		next = outcome.State
		turn.AIActions = outcome.Actions
		turn.Attacks = outcome.Attacks
		turn.RuntimeErrors = outcome.Errors
		turn.Logs = append(append(turn.Logs, outcome.Attacks...), outcome.Actions...)
	}

	e.state = e.finishTurn(next)
	turn.State = e.state
	turn.Entry = e.record(KindWait, "wait", turn.ErrorCount())
	return turn, nil
}

// finishTurn advances the turn counter and ends the game once the player
// has no HP left
func (e *GameEngine) finishTurn(state world.State) world.State {
	state = state.NextTurn()
	if !state.GameOver && state.Player.HP <= 0 {
		state = state.EndGame().AddLog("Game Over!")
	}
	return state
}

func (e *GameEngine) record(kind HistoryKind, input string, errorCount int) HistoryEntry {
	entry := HistoryEntry{
		ID:         ulid.Make().String(),
		Kind:       kind,
		Input:      input,
		Turn:       e.state.Turn,
		ErrorCount: errorCount,
		Success:    errorCount == 0,
		Timestamp:  time.Now().Unix(),
		Number:     len(e.history) + 1,
	}
	e.history = append(e.history, entry)
	e.current = append(e.current, entry)
	return entry
}

// GetConfig returns the current stage configuration
func (e *GameEngine) GetConfig() *StageConfig {
	return e.config
}

// SetConfig switches to a new stage and restarts the game
func (e *GameEngine) SetConfig(config *StageConfig) error {
	if err := ValidateStageConfig(config); err != nil {
		return err
	}
	e.configure(config)
	return nil
}

// GetHistory returns every entry since the session started, across resets
func (e *GameEngine) GetHistory() []HistoryEntry {
	return e.history
}

// GetCurrentHistory returns the entries since the last reset
func (e *GameEngine) GetCurrentHistory() []HistoryEntry {
	return e.current
}

// SetHistory restores history loaded from persistence
func (e *GameEngine) SetHistory(history, current []HistoryEntry) {
	if history == nil {
		history = []HistoryEntry{}
	}
	if current == nil {
		current = []HistoryEntry{}
	}
	e.history = history
	e.current = current
}

// GetLastCommand returns the most recent history entry, or nil if there is none
func (e *GameEngine) GetLastCommand() *HistoryEntry {
	if len(e.history) == 0 {
		return nil
	}
	return &e.history[len(e.history)-1]
}

// Render draws the current state with the stage's character mapping
func (e *GameEngine) Render() string {
	return RenderState(e.state, e.config.Mapping())
}
