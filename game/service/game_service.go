package service

import (
	"context"
	"time"

	"github.com/wricardo/mcp-training/dslgame/game/engine"
	"github.com/wricardo/mcp-training/dslgame/game/world"
)

// GameService defines all game-related operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, configID string) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Turns
	Execute(ctx context.Context, sessionID, command string) (*CommandResult, error)
	Wait(ctx context.Context, sessionID string) (*CommandResult, error)
	Reset(ctx context.Context, sessionID string) (world.State, error)

	// Game State
	GetGameState(ctx context.Context, sessionID string) (world.State, error)
	GetHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error)
	Render(ctx context.Context, sessionID string) (string, error)
	FindPath(ctx context.Context, sessionID string, req PathRequest) (*PathResponse, error)

	// Scripts
	Check(ctx context.Context, source string) (*CheckResult, error)

	// Configuration
	ListConfigs(ctx context.Context) ([]*ConfigInfo, error)
	LoadConfig(ctx context.Context, configID string) (*engine.StageConfig, error)
	SaveConfig(ctx context.Context, configID string, config *engine.StageConfig) error
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id, configID string, config *engine.StageConfig) (*Session, error)
	Get(id string) (*Session, error)
	GetOrCreate(id, configID string, config *engine.StageConfig) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
	Save(id string) error
	AppendLog(id, message string) error
}

// ConfigManager handles stage configuration loading
type ConfigManager interface {
	LoadConfig(name string) (*engine.StageConfig, error)
	ListConfigs() ([]*ConfigInfo, error)
	GetDefault() *engine.StageConfig
	SaveConfig(name string, config *engine.StageConfig) error
}

// Session represents an active game session
type Session struct {
	ID             string
	ConfigID       string
	Engine         *engine.GameEngine
	Config         *engine.StageConfig
	CreatedAt      time.Time
	LastAccessedAt time.Time
}
