package session

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/wricardo/mcp-training/dslgame/game/service"
	"github.com/wricardo/mcp-training/dslgame/game/world"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS dsl_sessions (
	id TEXT PRIMARY KEY,
	config_id TEXT NOT NULL,
	created_at TIMESTAMP WITH TIME ZONE NOT NULL,
	last_accessed_at TIMESTAMP WITH TIME ZONE NOT NULL,
	state JSONB NOT NULL,
	history JSONB NOT NULL
);

CREATE TABLE IF NOT EXISTS dsl_session_logs (
	id SERIAL PRIMARY KEY,
	session_id TEXT NOT NULL,
	logged_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
	message TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS dsl_session_logs_session_idx ON dsl_session_logs (session_id);
`

// PostgresPersistence implements SessionPersistence and Journal on PostgreSQL
type PostgresPersistence struct {
	db            *sql.DB
	configManager service.ConfigManager
}

// NewPostgresPersistence connects, pings and creates the schema
func NewPostgresPersistence(connectionString string, configManager service.ConfigManager) (*PostgresPersistence, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	p := &PostgresPersistence{db: db, configManager: configManager}
	if err := p.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return p, nil
}

func (p *PostgresPersistence) initSchema() error {
	_, err := p.db.Exec(postgresSchema)
	return err
}

// Close closes the database handle
func (p *PostgresPersistence) Close() error {
	return p.db.Close()
}

// Save upserts the session row
func (p *PostgresPersistence) Save(session *service.Session) error {
	if session == nil {
		return fmt.Errorf("session cannot be nil")
	}

	stateJSON, err := json.Marshal(session.Engine.GetState().Snapshot())
	if err != nil {
		return fmt.Errorf("failed to marshal game state: %w", err)
	}
	historyJSON, err := json.Marshal(SlotHistory{
		History: session.Engine.GetHistory(),
		Current: session.Engine.GetCurrentHistory(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}

	configID := session.ConfigID
	if configID == "" {
		configID = session.Config.Name
	}

	query := `
	INSERT INTO dsl_sessions (id, config_id, created_at, last_accessed_at, state, history)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (id)
	DO UPDATE SET
		config_id = $2, last_accessed_at = $4, state = $5, history = $6
	`

	_, err = p.db.Exec(query,
		strings.ToLower(session.ID), configID, session.CreatedAt, session.LastAccessedAt,
		string(stateJSON), string(historyJSON))
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	return nil
}

// Load reads a session row and rebuilds the session
func (p *PostgresPersistence) Load(id string) (*service.Session, error) {
	query := `SELECT id, config_id, created_at, last_accessed_at, state, history FROM dsl_sessions WHERE id = $1`

	var meta SlotMeta
	var stateJSON, historyJSON string

	err := p.db.QueryRow(query, strings.ToLower(id)).Scan(
		&meta.SessionID, &meta.ConfigID, &meta.CreatedAt, &meta.LastPlayed,
		&stateJSON, &historyJSON,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var snap world.Snapshot
	if err := json.Unmarshal([]byte(stateJSON), &snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal game state: %w", err)
	}
	var history SlotHistory
	if err := json.Unmarshal([]byte(historyJSON), &history); err != nil {
		return nil, fmt.Errorf("failed to unmarshal history: %w", err)
	}

	return restoreSession(p.configManager, meta, snap, history)
}

// Delete removes the session row and its log lines
func (p *PostgresPersistence) Delete(id string) error {
	id = strings.ToLower(id)

	result, err := p.db.Exec(`DELETE FROM dsl_sessions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return ErrSessionNotFound
	}

	if _, err := p.db.Exec(`DELETE FROM dsl_session_logs WHERE session_id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete session logs: %w", err)
	}
	return nil
}

// ListAll returns every stored session id
func (p *PostgresPersistence) ListAll() ([]string, error) {
	rows, err := p.db.Query(`SELECT id FROM dsl_sessions ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan session id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Exists checks if a session row exists
func (p *PostgresPersistence) Exists(id string) bool {
	var exists bool
	err := p.db.QueryRow(`SELECT EXISTS(SELECT 1 FROM dsl_sessions WHERE id = $1)`, strings.ToLower(id)).Scan(&exists)
	return err == nil && exists
}

// AppendLog inserts a journal line for the session
func (p *PostgresPersistence) AppendLog(id, message string) error {
	_, err := p.db.Exec(`INSERT INTO dsl_session_logs (session_id, message) VALUES ($1, $2)`, strings.ToLower(id), message)
	if err != nil {
		return fmt.Errorf("failed to append session log: %w", err)
	}
	return nil
}
