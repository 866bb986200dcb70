package session

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/wricardo/mcp-training/dslgame/game/config"
	"github.com/wricardo/mcp-training/dslgame/game/engine"
	"github.com/wricardo/mcp-training/dslgame/game/service"
)

// newTestConfigManager writes the test stage as arena.json into a temp dir
func newTestConfigManager(t *testing.T) *config.Manager {
	t.Helper()
	dir := t.TempDir()

	data, err := engine.EncodeStageConfig(createTestConfig(), engine.FormatJSON)
	if err != nil {
		t.Fatalf("Failed to encode stage: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "arena.json"), data, 0644); err != nil {
		t.Fatalf("Failed to write stage: %v", err)
	}

	manager, err := config.NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create config manager: %v", err)
	}
	return manager
}

func newTestSession(t *testing.T, id string, configManager *config.Manager) *service.Session {
	t.Helper()
	gameConfig, err := configManager.LoadConfig("arena")
	if err != nil {
		t.Fatalf("Failed to load stage: %v", err)
	}
	eng, err := engine.NewEngine(gameConfig)
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}
	return &service.Session{
		ID:             id,
		ConfigID:       "arena",
		Engine:         eng,
		Config:         gameConfig,
		CreatedAt:      time.Now().Add(-time.Minute).Truncate(time.Second),
		LastAccessedAt: time.Now().Truncate(time.Second),
	}
}

func TestFilePersistence(t *testing.T) {
	for _, codec := range []Codec{CodecJSON, CodecMsgpack} {
		t.Run(string(codec), func(t *testing.T) {
			tempDir := t.TempDir()
			configManager := newTestConfigManager(t)

			persistence, err := NewFilePersistence(tempDir, configManager, codec)
			if err != nil {
				t.Fatalf("Failed to create file persistence: %v", err)
			}

			session := newTestSession(t, "test1", configManager)
			if _, err := session.Engine.Execute("move player 6 3\ndestroy potion\nset goblin.hp 40"); err != nil {
				t.Fatalf("Execute failed: %v", err)
			}
			if _, err := session.Engine.Wait(); err != nil {
				t.Fatalf("Wait failed: %v", err)
			}

			t.Run("Save and Load Session", func(t *testing.T) {
				if err := persistence.Save(session); err != nil {
					t.Fatalf("Failed to save session: %v", err)
				}
				if !persistence.Exists("test1") {
					t.Fatal("Session slot should exist after save")
				}

				loaded, err := persistence.Load("test1")
				if err != nil {
					t.Fatalf("Failed to load session: %v", err)
				}

				want := session.Engine.GetState()
				got := loaded.Engine.GetState()
				if got.Player != want.Player {
					t.Errorf("Player mismatch: got %+v, want %+v", got.Player, want.Player)
				}
				if len(got.Entities) != len(want.Entities) {
					t.Fatalf("Expected %d entities, got %d", len(want.Entities), len(got.Entities))
				}
				for i := range want.Entities {
					if got.Entities[i] != want.Entities[i] {
						t.Errorf("Entity %d mismatch: got %+v, want %+v", i, got.Entities[i], want.Entities[i])
					}
				}
				if got.Turn != want.Turn || got.Score != want.Score {
					t.Errorf("Expected turn %d score %d, got turn %d score %d", want.Turn, want.Score, got.Turn, got.Score)
				}
				if loaded.ConfigID != "arena" {
					t.Errorf("Expected config id arena, got %s", loaded.ConfigID)
				}
				if !loaded.CreatedAt.Equal(session.CreatedAt) {
					t.Errorf("Expected created_at %v, got %v", session.CreatedAt, loaded.CreatedAt)
				}
				if n := len(loaded.Engine.GetHistory()); n != 2 {
					t.Errorf("Expected 2 history entries, got %d", n)
				}
			})

			t.Run("State File Matches Codec", func(t *testing.T) {
				slot := filepath.Join(tempDir, "test1")
				stateName, otherName := stateJSONFile, stateMsgpackFile
				if codec == CodecMsgpack {
					stateName, otherName = stateMsgpackFile, stateJSONFile
				}
				if _, err := os.Stat(filepath.Join(slot, stateName)); err != nil {
					t.Errorf("Expected %s in slot: %v", stateName, err)
				}
				if _, err := os.Stat(filepath.Join(slot, otherName)); err == nil {
					t.Errorf("Did not expect %s in slot", otherName)
				}
			})

			t.Run("List All Sessions", func(t *testing.T) {
				other := newTestSession(t, "test2", configManager)
				if err := persistence.Save(other); err != nil {
					t.Fatalf("Failed to save second session: %v", err)
				}

				ids, err := persistence.ListAll()
				if err != nil {
					t.Fatalf("Failed to list sessions: %v", err)
				}
				if len(ids) != 2 {
					t.Errorf("Expected 2 sessions, got %v", ids)
				}
			})

			t.Run("Delete Session", func(t *testing.T) {
				if err := persistence.Delete("test2"); err != nil {
					t.Fatalf("Failed to delete session: %v", err)
				}
				if persistence.Exists("test2") {
					t.Error("Session should not exist after delete")
				}
				if err := persistence.Delete("test2"); err != ErrSessionNotFound {
					t.Errorf("Expected ErrSessionNotFound on second delete, got %v", err)
				}
			})

			t.Run("Error Cases", func(t *testing.T) {
				if _, err := persistence.Load("missing"); err != ErrSessionNotFound {
					t.Errorf("Expected ErrSessionNotFound, got %v", err)
				}
				if err := persistence.Save(nil); err == nil {
					t.Error("Expected error saving nil session")
				}
			})
		})
	}
}

func TestFilePersistenceSlotLayout(t *testing.T) {
	tempDir := t.TempDir()
	configManager := newTestConfigManager(t)

	persistence, err := NewFilePersistence(tempDir, configManager, "")
	if err != nil {
		t.Fatalf("Failed to create file persistence: %v", err)
	}

	session := newTestSession(t, "Slot1", configManager)
	if err := persistence.Save(session); err != nil {
		t.Fatalf("Failed to save session: %v", err)
	}

	// Slots are keyed by the lower-cased id
	slot := filepath.Join(tempDir, "slot1")
	for _, name := range []string{metaFile, historyFile, stateJSONFile} {
		if _, err := os.Stat(filepath.Join(slot, name)); err != nil {
			t.Errorf("Expected %s in slot: %v", name, err)
		}
	}

	entries, _ := os.ReadDir(slot)
	for _, e := range entries {
		if strings.Contains(e.Name(), ".tmp-") {
			t.Errorf("Temporary file left behind: %s", e.Name())
		}
	}

	t.Run("state.json format", func(t *testing.T) {
		data, err := os.ReadFile(filepath.Join(slot, stateJSONFile))
		if err != nil {
			t.Fatalf("Failed to read state: %v", err)
		}
		var raw map[string]any
		if err := json.Unmarshal(data, &raw); err != nil {
			t.Fatalf("state.json is not JSON: %v", err)
		}
		for _, key := range []string{"version", "player", "entities", "turn", "score", "is_game_over", "map_width", "map_height"} {
			if _, ok := raw[key]; !ok {
				t.Errorf("state.json missing %q", key)
			}
		}
		if raw["version"] != "1.0" {
			t.Errorf("Expected version 1.0, got %v", raw["version"])
		}
	})

	t.Run("meta.json format", func(t *testing.T) {
		data, err := os.ReadFile(filepath.Join(slot, metaFile))
		if err != nil {
			t.Fatalf("Failed to read meta: %v", err)
		}
		var meta SlotMeta
		if err := json.Unmarshal(data, &meta); err != nil {
			t.Fatalf("meta.json is not valid: %v", err)
		}
		if meta.SessionID != "Slot1" || meta.ConfigID != "arena" {
			t.Errorf("Unexpected meta: %+v", meta)
		}
		if meta.Codec != CodecJSON {
			t.Errorf("Expected json codec in meta, got %q", meta.Codec)
		}
	})

	t.Run("hand-edited state loads with defaults", func(t *testing.T) {
		edited := `{
  "version": "1.0",
  "player": {"id": "player", "name": "Player", "x": 3, "y": 4},
  "entities": [{"id": "enemy_0", "name": "goblin", "x": 9, "y": 7}],
  "turn": 7,
  "score": 20,
  "is_game_over": false,
  "map_width": 10,
  "map_height": 8
}`
		if err := os.WriteFile(filepath.Join(slot, stateJSONFile), []byte(edited), 0644); err != nil {
			t.Fatalf("Failed to write state: %v", err)
		}

		loaded, err := persistence.Load("slot1")
		if err != nil {
			t.Fatalf("Failed to load edited slot: %v", err)
		}
		state := loaded.Engine.GetState()
		if state.Player.HP != 30 {
			t.Errorf("Expected player hp from stage (30), got %d", state.Player.HP)
		}
		if len(state.Entities) != 1 || state.Entities[0].HP != 100 || !state.Entities[0].Active {
			t.Errorf("Expected one default goblin, got %+v", state.Entities)
		}
		if state.Turn != 7 || state.Score != 20 {
			t.Errorf("Expected turn 7 score 20, got %d %d", state.Turn, state.Score)
		}
	})
}

func TestFilePersistenceAppendLog(t *testing.T) {
	tempDir := t.TempDir()
	persistence, err := NewFilePersistence(tempDir, newTestConfigManager(t), CodecJSON)
	if err != nil {
		t.Fatalf("Failed to create file persistence: %v", err)
	}

	var journal Journal = persistence
	if err := journal.AppendLog("logs", "Command: move player 1 1"); err != nil {
		t.Fatalf("AppendLog failed: %v", err)
	}
	if err := journal.AppendLog("logs", "Error: Entity not found: dragon"); err != nil {
		t.Fatalf("AppendLog failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(tempDir, "logs", logFile))
	if err != nil {
		t.Fatalf("Failed to read log: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("Expected 2 log lines, got %d: %q", len(lines), lines)
	}

	pattern := regexp.MustCompile(`^\[\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}\] `)
	for _, line := range lines {
		if !pattern.MatchString(line) {
			t.Errorf("Log line %q does not start with a timestamp", line)
		}
	}
	if !strings.HasSuffix(lines[1], "Error: Entity not found: dragon") {
		t.Errorf("Unexpected second line: %q", lines[1])
	}
}

func TestParseCodec(t *testing.T) {
	tests := []struct {
		in      string
		want    Codec
		wantErr bool
	}{
		{"", CodecJSON, false},
		{"json", CodecJSON, false},
		{"msgpack", CodecMsgpack, false},
		{"gob", "", true},
	}

	for _, tt := range tests {
		got, err := ParseCodec(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseCodec(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseCodec(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	if _, err := NewFilePersistence(t.TempDir(), nil, "gob"); err == nil {
		t.Error("Expected NewFilePersistence to reject an unknown codec")
	}
}

func TestNewPersistenceSelectsFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "sessions")
	p, err := NewPersistence(PersistenceOptions{SessionsDir: dir, Codec: CodecMsgpack}, newTestConfigManager(t))
	if err != nil {
		t.Fatalf("NewPersistence failed: %v", err)
	}
	fp, ok := p.(*FilePersistence)
	if !ok {
		t.Fatalf("Expected *FilePersistence, got %T", p)
	}
	if fp.codec != CodecMsgpack {
		t.Errorf("Expected msgpack codec, got %q", fp.codec)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("Expected sessions dir to be created: %v", err)
	}
}

func TestPostgresPersistence(t *testing.T) {
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	configManager := newTestConfigManager(t)
	p, err := NewPostgresPersistence(url, configManager)
	if err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}
	defer p.Close()

	session := newTestSession(t, "pgtest", configManager)
	session.Engine.Execute("move player 5 5")
	defer p.Delete("pgtest")

	if err := p.Save(session); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if !p.Exists("PGTEST") {
		t.Error("Expected case-insensitive Exists")
	}
	if err := p.AppendLog("pgtest", "Command: move player 5 5"); err != nil {
		t.Errorf("AppendLog failed: %v", err)
	}

	loaded, err := p.Load("pgtest")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Engine.GetState().Player.Pos != session.Engine.GetState().Player.Pos {
		t.Error("Player position did not round-trip")
	}

	if err := p.Delete("pgtest"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := p.Load("pgtest"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound after delete, got %v", err)
	}
}
