package session

import (
	"time"

	"github.com/dfreire/gridmaze/game/engine"
	"github.com/dfreire/gridmaze/game/service"
)

// Persistence defines the interface for persisting sessions.
type Persistence interface {
	// Save persists a session to storage.
	Save(sess *service.Session) error

	// Load retrieves a session from storage by ID.
	Load(id string) (*service.Session, error)

	// Delete removes a session from storage.
	Delete(id string) error

	// ListAll returns all persisted session IDs.
	ListAll() ([]string, error)

	// Exists checks if a session exists in storage.
	Exists(id string) bool
}

// PersistedSession is the JSON structure for persisted sessions. The world
// state itself is not stored: the level description plus the accepted-input
// log reconstruct it exactly on load, because the simulation is fully
// deterministic.
type PersistedSession struct {
	ID             string              `json:"id"`
	LevelName      string              `json:"level_name"`
	CreatedAt      time.Time           `json:"created_at"`
	LastAccessedAt time.Time           `json:"last_accessed_at"`
	Level          *engine.LevelConfig `json:"level"`
	Log            []engine.LogEntry   `json:"log"`
}
