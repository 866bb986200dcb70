package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/wricardo/mcp-training/dslgame/game/service"
	"github.com/wricardo/mcp-training/dslgame/game/world"
)

// Save slot file names
const (
	metaFile         = "meta.json"
	historyFile      = "history.json"
	logFile          = "log.txt"
	stateJSONFile    = "state.json"
	stateMsgpackFile = "state.msgpack"
)

// FilePersistence implements SessionPersistence with one save slot
// directory per session
type FilePersistence struct {
	sessionsDir   string
	configManager service.ConfigManager
	codec         Codec
	logMu         sync.Mutex
}

// NewFilePersistence creates a new file-based session persistence layer.
// An empty codec means JSON.
func NewFilePersistence(sessionsDir string, configManager service.ConfigManager, codec Codec) (*FilePersistence, error) {
	codec, err := ParseCodec(string(codec))
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(sessionsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create sessions directory: %w", err)
	}

	return &FilePersistence{
		sessionsDir:   sessionsDir,
		configManager: configManager,
		codec:         codec,
	}, nil
}

// Save writes the session's state, meta and history into its slot
func (fp *FilePersistence) Save(session *service.Session) error {
	if session == nil {
		return fmt.Errorf("session cannot be nil")
	}
	if session.ConfigID == "" {
		session.ConfigID = fp.getConfigIDFromName(session.Config.Name)
	}

	slot := fp.slotDir(session.ID)
	if err := os.MkdirAll(slot, 0755); err != nil {
		return fmt.Errorf("failed to create save slot: %w", err)
	}

	snap := session.Engine.GetState().Snapshot()
	stateName, stateData, err := fp.encodeState(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal game state: %w", err)
	}
	if err := writeFileAtomic(filepath.Join(slot, stateName), stateData); err != nil {
		return fmt.Errorf("failed to write state: %w", err)
	}

	metaData, err := json.MarshalIndent(metaFor(session, fp.codec), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session meta: %w", err)
	}
	if err := writeFileAtomic(filepath.Join(slot, metaFile), metaData); err != nil {
		return fmt.Errorf("failed to write meta: %w", err)
	}

	history := SlotHistory{
		History: session.Engine.GetHistory(),
		Current: session.Engine.GetCurrentHistory(),
	}
	historyData, err := json.MarshalIndent(history, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}
	if err := writeFileAtomic(filepath.Join(slot, historyFile), historyData); err != nil {
		return fmt.Errorf("failed to write history: %w", err)
	}

	return nil
}

func (fp *FilePersistence) encodeState(snap world.Snapshot) (string, []byte, error) {
	if fp.codec == CodecMsgpack {
		data, err := msgpack.Marshal(snap)
		return stateMsgpackFile, data, err
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	return stateJSONFile, data, err
}

// readState loads whichever state file the slot has. The configured codec
// is tried first so a slot converted between codecs picks up the newer file.
func (fp *FilePersistence) readState(slot string) (world.Snapshot, error) {
	order := []string{stateJSONFile, stateMsgpackFile}
	if fp.codec == CodecMsgpack {
		order = []string{stateMsgpackFile, stateJSONFile}
	}

	var snap world.Snapshot
	for _, name := range order {
		data, err := os.ReadFile(filepath.Join(slot, name))
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return snap, fmt.Errorf("failed to read %s: %w", name, err)
		}
		if name == stateMsgpackFile {
			err = msgpack.Unmarshal(data, &snap)
		} else {
			err = json.Unmarshal(data, &snap)
		}
		if err != nil {
			return snap, fmt.Errorf("failed to unmarshal %s: %w", name, err)
		}
		return snap, nil
	}
	return snap, fmt.Errorf("save slot has no state file")
}

// Load rebuilds a session from its save slot
func (fp *FilePersistence) Load(id string) (*service.Session, error) {
	slot := fp.slotDir(id)

	metaData, err := os.ReadFile(filepath.Join(slot, metaFile))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session meta: %w", err)
	}

	var meta SlotMeta
	if err := json.Unmarshal(metaData, &meta); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session meta: %w", err)
	}
	if meta.SessionID == "" {
		meta.SessionID = id
	}

	snap, err := fp.readState(slot)
	if err != nil {
		return nil, err
	}

	var history SlotHistory
	historyData, err := os.ReadFile(filepath.Join(slot, historyFile))
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read history: %w", err)
	default:
		if err := json.Unmarshal(historyData, &history); err != nil {
			return nil, fmt.Errorf("failed to unmarshal history: %w", err)
		}
	}

	return restoreSession(fp.configManager, meta, snap, history)
}

// Delete removes a session's save slot
func (fp *FilePersistence) Delete(id string) error {
	if !fp.Exists(id) {
		return ErrSessionNotFound
	}

	if err := os.RemoveAll(fp.slotDir(id)); err != nil {
		return fmt.Errorf("failed to remove save slot: %w", err)
	}

	return nil
}

// ListAll returns the ids of every slot that has a meta.json
func (fp *FilePersistence) ListAll() ([]string, error) {
	entries, err := os.ReadDir(fp.sessionsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read sessions directory: %w", err)
	}

	var sessionIDs []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if fp.Exists(entry.Name()) {
			sessionIDs = append(sessionIDs, entry.Name())
		}
	}

	return sessionIDs, nil
}

// Exists checks if a session has a save slot
func (fp *FilePersistence) Exists(id string) bool {
	_, err := os.Stat(filepath.Join(fp.slotDir(id), metaFile))
	return err == nil
}

// AppendLog adds a timestamped line to the slot's log.txt
func (fp *FilePersistence) AppendLog(id, message string) error {
	fp.logMu.Lock()
	defer fp.logMu.Unlock()

	slot := fp.slotDir(id)
	if err := os.MkdirAll(slot, 0755); err != nil {
		return fmt.Errorf("failed to create save slot: %w", err)
	}

	f, err := os.OpenFile(filepath.Join(slot, logFile), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open session log: %w", err)
	}
	defer f.Close()

	line := fmt.Sprintf("[%s] %s\n", time.Now().Format(time.DateTime), message)
	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("failed to write session log: %w", err)
	}
	return nil
}

// slotDir returns the save slot directory for a session ID. Slots are keyed
// by the lower-cased id, matching the manager's lookups.
func (fp *FilePersistence) slotDir(id string) string {
	return filepath.Join(fp.sessionsDir, filepath.Base(strings.ToLower(id)))
}

// getConfigIDFromName returns the config ID (filename without extension) from display name
func (fp *FilePersistence) getConfigIDFromName(displayName string) string {
	configs, err := fp.configManager.ListConfigs()
	if err == nil {
		for _, config := range configs {
			if config.Name == displayName {
				return config.ConfigID
			}
		}
	}

	// If not found, assume the displayName is already the config ID
	return displayName
}

// writeFileAtomic writes data next to path and renames it into place
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}
