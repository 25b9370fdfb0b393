package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dfreire/gridmaze/game/engine"
	"github.com/dfreire/gridmaze/game/service"
)

// FilePersistence implements Persistence using one JSON file per session.
type FilePersistence struct {
	sessionsDir string
}

// NewFilePersistence creates a file-based session persistence layer.
func NewFilePersistence(sessionsDir string) (*FilePersistence, error) {
	if err := os.MkdirAll(sessionsDir, 0755); err != nil {
		return nil, fmt.Errorf("create sessions directory: %w", err)
	}
	return &FilePersistence{sessionsDir: sessionsDir}, nil
}

// Save writes the session's level description and input log to disk.
func (fp *FilePersistence) Save(sess *service.Session) error {
	if sess == nil {
		return fmt.Errorf("session cannot be nil")
	}

	data := PersistedSession{
		ID:             sess.ID,
		LevelName:      sess.LevelName,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		Level:          sess.Game.Level(),
		Log:            sess.Game.Log(),
	}
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal session data: %w", err)
	}
	if err := os.WriteFile(fp.path(sess.ID), jsonData, 0644); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	return nil
}

// Load rebuilds a session from disk by replaying its input log against a
// fresh game built from the stored level description.
func (fp *FilePersistence) Load(id string) (*service.Session, error) {
	raw, err := os.ReadFile(fp.path(id))
	if err != nil {
		return nil, fmt.Errorf("read session file: %w", err)
	}

	var data PersistedSession
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("parse session file: %w", err)
	}
	if data.Level == nil {
		return nil, fmt.Errorf("session %s has no level description", id)
	}

	game, err := engine.NewGame(data.Level)
	if err != nil {
		return nil, fmt.Errorf("rebuild game: %w", err)
	}
	game.Replay(data.Log)

	return &service.Session{
		ID:             data.ID,
		Game:           game,
		LevelName:      data.LevelName,
		CreatedAt:      data.CreatedAt,
		LastAccessedAt: data.LastAccessedAt,
	}, nil
}

// Delete removes a persisted session file.
func (fp *FilePersistence) Delete(id string) error {
	if err := os.Remove(fp.path(id)); err != nil {
		return fmt.Errorf("delete session file: %w", err)
	}
	return nil
}

// ListAll returns the IDs of all persisted sessions.
func (fp *FilePersistence) ListAll() ([]string, error) {
	entries, err := os.ReadDir(fp.sessionsDir)
	if err != nil {
		return nil, fmt.Errorf("read sessions directory: %w", err)
	}

	var ids []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(e.Name(), ".json"))
	}
	return ids, nil
}

// Exists checks whether a session file is present.
func (fp *FilePersistence) Exists(id string) bool {
	_, err := os.Stat(fp.path(id))
	return err == nil
}

func (fp *FilePersistence) path(id string) string {
	return filepath.Join(fp.sessionsDir, strings.ToLower(id)+".json")
}
