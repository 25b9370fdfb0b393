package service

import (
	"context"

	"github.com/dfreire/gridmaze/game/engine"
)

// GameService defines all game-related operations exposed to transports.
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, levelName string) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Game Operations
	Step(ctx context.Context, sessionID, action string) (*StepOutcome, error)
	MicroStep(ctx context.Context, sessionID, action string) (*PhaseOutcome, error)
	GetState(ctx context.Context, sessionID string) (*SessionInfo, error)

	// Solver
	Solve(ctx context.Context, levelName string, budget int) (*SolveOutcome, error)

	// Level catalog
	ListLevels(ctx context.Context) ([]*LevelInfo, error)
	LoadLevel(ctx context.Context, levelName string) (*engine.LevelConfig, error)
}

// SessionManager defines session storage operations.
type SessionManager interface {
	Create(id string, levelName string, cfg *engine.LevelConfig) (*Session, error)
	Get(id string) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
	Save(id string) error
}

// LevelManager loads level descriptions from the level catalog.
type LevelManager interface {
	Load(name string) (*engine.LevelConfig, error)
	List() ([]*LevelInfo, error)
	Default() *engine.LevelConfig
	Save(name string, cfg *engine.LevelConfig) error
}
