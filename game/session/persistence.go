package session

import (
	"fmt"
	"time"

	"github.com/wricardo/mcp-training/dslgame/game/engine"
	"github.com/wricardo/mcp-training/dslgame/game/service"
	"github.com/wricardo/mcp-training/dslgame/game/world"
)

// SessionPersistence defines the interface for persisting sessions
type SessionPersistence interface {
	// Save persists a session to storage
	Save(session *service.Session) error

	// Load retrieves a session from storage by ID
	Load(id string) (*service.Session, error)

	// Delete removes a session from storage
	Delete(id string) error

	// ListAll returns all persisted session IDs
	ListAll() ([]string, error)

	// Exists checks if a session exists in storage
	Exists(id string) bool
}

// Journal is implemented by persistence layers that keep a per-session
// event log
type Journal interface {
	AppendLog(id, message string) error
}

// Codec selects how world snapshots are encoded in file save slots
type Codec string

const (
	CodecJSON    Codec = "json"
	CodecMsgpack Codec = "msgpack"
)

// ParseCodec accepts "json", "msgpack" or "" (json)
func ParseCodec(s string) (Codec, error) {
	switch Codec(s) {
	case "", CodecJSON:
		return CodecJSON, nil
	case CodecMsgpack:
		return CodecMsgpack, nil
	}
	return "", fmt.Errorf("unknown session codec %q (want json or msgpack)", s)
}

// SlotMeta is the meta.json of a save slot
type SlotMeta struct {
	SessionID  string    `json:"session_id"`
	ConfigID   string    `json:"config_id"`
	CreatedAt  time.Time `json:"created_at"`
	LastPlayed time.Time `json:"last_played"`
	Turn       int       `json:"turn"`
	Score      int       `json:"score"`
	GameOver   bool      `json:"is_game_over"`
	Codec      Codec     `json:"codec,omitempty"`
}

// SlotHistory is the history.json of a save slot
type SlotHistory struct {
	History []engine.HistoryEntry `json:"history"`
	Current []engine.HistoryEntry `json:"current"`
}

// PersistenceOptions selects and configures a persistence backend
type PersistenceOptions struct {
	DatabaseURL string
	SessionsDir string
	Codec       Codec
}

// NewPersistence returns Postgres persistence when a database URL is set,
// file persistence otherwise
func NewPersistence(opts PersistenceOptions, configManager service.ConfigManager) (SessionPersistence, error) {
	if opts.DatabaseURL != "" {
		p, err := NewPostgresPersistence(opts.DatabaseURL, configManager)
		if err != nil {
			return nil, err
		}
		return p, nil
	}

	dir := opts.SessionsDir
	if dir == "" {
		dir = "sessions"
	}
	p, err := NewFilePersistence(dir, configManager, opts.Codec)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func metaFor(session *service.Session, codec Codec) SlotMeta {
	state := session.Engine.GetState()
	return SlotMeta{
		SessionID:  session.ID,
		ConfigID:   session.ConfigID,
		CreatedAt:  session.CreatedAt,
		LastPlayed: session.LastAccessedAt,
		Turn:       state.Turn,
		Score:      state.Score,
		GameOver:   state.GameOver,
		Codec:      codec,
	}
}

// restoreSession rebuilds a session from its saved parts. The stage is
// loaded again so the engine gets its interpreter, AI and mapping back.
func restoreSession(configManager service.ConfigManager, meta SlotMeta, snap world.Snapshot, history SlotHistory) (*service.Session, error) {
	gameConfig, err := configManager.LoadConfig(meta.ConfigID)
	if err != nil {
		return nil, fmt.Errorf("failed to load config '%s': %w", meta.ConfigID, err)
	}

	gameEngine, err := engine.NewEngine(gameConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create game engine: %w", err)
	}

	if err := gameEngine.SetState(snap.State(gameEngine.GetState())); err != nil {
		return nil, fmt.Errorf("failed to set game state: %w", err)
	}
	gameEngine.SetHistory(history.History, history.Current)

	return &service.Session{
		ID:             meta.SessionID,
		ConfigID:       meta.ConfigID,
		Engine:         gameEngine,
		Config:         gameConfig,
		CreatedAt:      meta.CreatedAt,
		LastAccessedAt: meta.LastPlayed,
	}, nil
}
