package service

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/wricardo/mcp-training/dslgame/game/dsl"
	"github.com/wricardo/mcp-training/dslgame/game/engine"
	"github.com/wricardo/mcp-training/dslgame/game/pathfinding"
	"github.com/wricardo/mcp-training/dslgame/game/world"
)

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	mu       sync.RWMutex
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager) GameService {
	return &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
	}
}

// getConfigID returns the config_id for a stage display name
func (s *gameServiceImpl) getConfigID(configName string) string {
	availableConfigs, err := s.configs.ListConfigs()
	if err == nil {
		for _, cfg := range availableConfigs {
			if cfg.Name == configName {
				return cfg.ConfigID
			}
		}
	}
	if configName == "" {
		return "default"
	}
	return configName
}

func sessionInfo(sess *Session) *SessionInfo {
	return &SessionInfo{
		ID:             sess.ID,
		ConfigName:     sess.ConfigID,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		GameState:      sess.Engine.GetState(),
		GameConfig:     sess.Config,
	}
}

// CreateSession creates a new game session on the given stage, or on the
// default stage when configID is empty
func (s *gameServiceImpl) CreateSession(ctx context.Context, configID string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var config *engine.StageConfig
	var err error
	if configID != "" {
		config, err = s.configs.LoadConfig(configID)
		if err != nil {
			if errors.Is(err, ErrConfigNotFound) {
				availableConfigs, listErr := s.configs.ListConfigs()
				if listErr == nil && len(availableConfigs) > 0 {
					var configIDs []string
					for _, cfg := range availableConfigs {
						configIDs = append(configIDs, cfg.ConfigID)
					}
					return nil, fmt.Errorf("%w: '%s'. Available configs: %v", ErrConfigNotFound, configID, configIDs)
				}
				return nil, fmt.Errorf("%w: '%s'. Use /api/configs to list available configurations", ErrConfigNotFound, configID)
			}
			return nil, fmt.Errorf("failed to load config %s: %w", configID, err)
		}
	} else {
		config = s.configs.GetDefault()
		configID = s.getConfigID(config.Name)
	}

	// Let session manager generate a proper 4-character ID
	session, err := s.sessions.Create("", configID, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.journal(session.ID, fmt.Sprintf("Session created on stage %s", configID))

	return sessionInfo(session), nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	return sessionInfo(session), nil
}

// ListSessions returns all active sessions, oldest first
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, sessionInfo(sess))
	}

	slices.SortFunc(result, func(a, b *SessionInfo) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sessions.Delete(sessionID); err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// getSession looks up a session and marks it accessed
func (s *gameServiceImpl) getSession(sessionID string) (*Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
		}
		return nil, fmt.Errorf("failed to load session %s: %w", sessionID, err)
	}

	s.sessions.UpdateLastAccessed(sessionID)
	return sess, nil
}

// Execute runs a DSL command as the player's turn
func (s *gameServiceImpl) Execute(ctx context.Context, sessionID, command string) (*CommandResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	scoreBefore := sess.Engine.GetScore()
	turn, err := sess.Engine.Execute(command)
	if err != nil {
		return nil, err
	}

	s.journal(sess.ID, "Command: "+strings.ReplaceAll(command, "\n", "; "))
	result := newCommandResult(turn, scoreBefore)
	s.journalErrors(sess.ID, result)
	s.autosave(sess)

	return result, nil
}

// Wait passes the player's turn so the AI can act
func (s *gameServiceImpl) Wait(ctx context.Context, sessionID string) (*CommandResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	scoreBefore := sess.Engine.GetScore()
	turn, err := sess.Engine.Wait()
	if err != nil {
		return nil, err
	}

	s.journal(sess.ID, "Wait")
	result := newCommandResult(turn, scoreBefore)
	for _, attack := range turn.Attacks {
		s.journal(sess.ID, attack)
	}
	s.journalErrors(sess.ID, result)
	s.autosave(sess)

	return result, nil
}

// Reset resets a game session to the stage's initial state
func (s *gameServiceImpl) Reset(ctx context.Context, sessionID string) (world.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return world.State{}, err
	}

	state := sess.Engine.Reset()
	s.journal(sess.ID, "Reset")
	s.autosave(sess)

	return state, nil
}

// GetGameState retrieves the current game state
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (world.State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return world.State{}, err
	}
	return sess.Engine.GetState(), nil
}

// Render draws the session's map as text
func (s *gameServiceImpl) Render(ctx context.Context, sessionID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return "", err
	}
	return sess.Engine.Render(), nil
}

// GetHistory returns paginated command history
func (s *gameServiceImpl) GetHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	history := sess.Engine.GetHistory()
	if opts.Current {
		history = sess.Engine.GetCurrentHistory()
	}
	return paginateHistory(history, opts), nil
}

func paginateHistory(history []engine.HistoryEntry, opts HistoryOptions) *HistoryResponse {
	total := len(history)

	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order == "" {
		opts.Order = "desc"
	}

	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := min(start+opts.Limit, total)

	entries := []engine.HistoryEntry{}
	if opts.Order == "desc" {
		// Most recent first
		for i := total - 1 - start; i >= 0 && i >= total-end; i-- {
			entries = append(entries, history[i])
		}
	} else if start < total {
		entries = append(entries, history[start:end]...)
	}

	return &HistoryResponse{
		Entries:      entries,
		TotalEntries: total,
		Page:         opts.Page,
		PageSize:     opts.Limit,
		TotalPages:   totalPages,
		HasNext:      opts.Page < totalPages,
		HasPrevious:  opts.Page > 1,
	}
}

// FindPath runs A* between two points of the session's world. Every active
// entity other than the endpoints blocks the way.
func (s *gameServiceImpl) FindPath(ctx context.Context, sessionID string, req PathRequest) (*PathResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	state := sess.Engine.GetState()

	from, err := resolvePosition(state, req.From)
	if err != nil {
		return nil, err
	}
	to, err := resolvePosition(state, req.To)
	if err != nil {
		return nil, err
	}
	if req.Target != nil {
		to = req.Target.Position()
		if !state.InBounds(to.X, to.Y) {
			return nil, fmt.Errorf("%w: target (%d, %d) is outside the %dx%d map", ErrInvalidRequest, to.X, to.Y, state.MapWidth, state.MapHeight)
		}
	}

	opts := []pathfinding.Option{}
	if req.Diagonal != nil {
		opts = append(opts, pathfinding.WithDiagonal(*req.Diagonal))
	}
	if req.Heuristic != "" {
		h, err := pathfinding.HeuristicByName(req.Heuristic)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		}
		opts = append(opts, pathfinding.WithHeuristic(h))
	}

	obstacles := pathfinding.ObstaclesFromState(state, from)
	delete(obstacles, to)
	walkable := pathfinding.CreateWalkabilityChecker(obstacles, state.MapWidth, state.MapHeight)

	result := pathfinding.FindPath(from, to, walkable, state.MapWidth, state.MapHeight, opts...)
	resp := &PathResponse{
		PathResult: result,
		From:       from,
		To:         to,
		StepCount:  result.Steps(),
	}
	if result.Found && len(result.Path) >= 2 {
		next := result.Path[1]
		resp.NextStep = &next
	}
	return resp, nil
}

// resolvePosition finds the cell of "player" (or "") or of an entity named
// by id or name
func resolvePosition(state world.State, ref string) (world.Position, error) {
	if ref == "" || ref == "player" {
		return state.Player.Pos, nil
	}
	if e, ok := state.EntityByID(ref); ok {
		return e.Pos, nil
	}
	if e, _, ok := state.FindEntity(ref); ok {
		return e.Pos, nil
	}
	return world.Position{}, fmt.Errorf("%w: unknown entity %q", ErrInvalidRequest, ref)
}

// Check lexes and parses source without running it
func (s *gameServiceImpl) Check(ctx context.Context, source string) (*CheckResult, error) {
	if len(source) > engine.MaxCommandBytes*engine.MaxSetupLines {
		return nil, fmt.Errorf("%w: script too long", ErrInvalidRequest)
	}

	tokens, lexErrs := dsl.Tokenize(source)
	program, parseErrs := dsl.Parse(tokens)

	result := &CheckResult{
		Statements:  make([]string, 0, len(program.Statements)),
		Diagnostics: engine.Diagnostics(lexErrs, parseErrs),
	}
	for _, t := range tokens {
		if t.Type != dsl.EOF {
			result.Tokens++
		}
	}
	for _, stmt := range program.Statements {
		result.Statements = append(result.Statements, stmt.String())
	}
	result.Valid = len(result.Diagnostics) == 0
	return result, nil
}

// ListConfigs returns available stage configurations
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific stage configuration
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configID string) (*engine.StageConfig, error) {
	return s.configs.LoadConfig(configID)
}

// SaveConfig saves a stage configuration to disk
func (s *gameServiceImpl) SaveConfig(ctx context.Context, configID string, config *engine.StageConfig) error {
	return s.configs.SaveConfig(configID, config)
}

// autosave persists the session when its stage allows it
func (s *gameServiceImpl) autosave(sess *Session) {
	if !sess.Config.AutoSaveEnabled() {
		return
	}
	if err := s.sessions.Save(sess.ID); err != nil {
		fmt.Printf("Warning: Failed to persist session %s: %v\n", sess.ID, err)
	}
}

func (s *gameServiceImpl) journal(sessionID, message string) {
	if err := s.sessions.AppendLog(sessionID, message); err != nil {
		fmt.Printf("Warning: Failed to write journal for session %s: %v\n", sessionID, err)
	}
}

func (s *gameServiceImpl) journalErrors(sessionID string, result *CommandResult) {
	for _, d := range result.Diagnostics {
		s.journal(sessionID, fmt.Sprintf("Error: line %d, column %d: %s", d.Line, d.Column, d.Message))
	}
	for _, msg := range result.RuntimeErrors {
		s.journal(sessionID, "Error: "+msg)
	}
}

// newCommandResult converts an engine turn and derives its events
func newCommandResult(turn *engine.TurnResult, scoreBefore int) *CommandResult {
	now := time.Now()
	state := turn.State

	result := &CommandResult{
		Success:       turn.OK(),
		Command:       turn.Input,
		GameState:     state,
		Diagnostics:   turn.Diagnostics,
		RuntimeErrors: turn.RuntimeErrors,
		Logs:          turn.Logs,
		AIActions:     turn.AIActions,
		Attacks:       turn.Attacks,
		Events:        []GameEvent{},
		Entry:         turn.Entry,
		GameOver:      state.GameOver,
	}

	kind := "command"
	message := fmt.Sprintf("Turn %d: %s", state.Turn, turn.Input)
	if turn.Entry.Kind == engine.KindWait {
		kind = "wait"
		message = fmt.Sprintf("Turn %d: waited", state.Turn)
	}
	result.Events = append(result.Events, GameEvent{Type: kind, Message: message, Timestamp: now})

	for _, d := range turn.Diagnostics {
		result.Events = append(result.Events, GameEvent{
			Type:      "error",
			Message:   fmt.Sprintf("%s error at line %d, column %d: %s", d.Stage, d.Line, d.Column, d.Message),
			Timestamp: now,
		})
	}
	for _, msg := range turn.RuntimeErrors {
		result.Events = append(result.Events, GameEvent{Type: "error", Message: msg, Timestamp: now})
	}
	for _, attack := range turn.Attacks {
		result.Events = append(result.Events, GameEvent{Type: "attack", Message: attack, Timestamp: now})
	}
	if delta := state.Score - scoreBefore; delta != 0 {
		result.Events = append(result.Events, GameEvent{
			Type:      "score",
			Message:   fmt.Sprintf("Score %+d (total %d)", delta, state.Score),
			Timestamp: now,
		})
	}
	if state.GameOver {
		result.Events = append(result.Events, GameEvent{Type: "game_over", Message: "Game Over!", Timestamp: now})
	}

	switch {
	case state.GameOver:
		result.Message = "Game Over!"
	case !result.Success:
		result.Message = fmt.Sprintf("%d error(s)", turn.ErrorCount())
	case len(state.Log) > 0:
		result.Message = state.Log[len(state.Log)-1]
	}

	return result
}
