package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dfreire/gridmaze/game/engine"
	"github.com/dfreire/gridmaze/game/solver"
)

// gameServiceImpl implements the GameService interface.
type gameServiceImpl struct {
	sessions SessionManager
	levels   LevelManager
	mu       sync.RWMutex
}

// NewGameService creates a new game service instance.
func NewGameService(sessions SessionManager, levels LevelManager) GameService {
	return &gameServiceImpl{
		sessions: sessions,
		levels:   levels,
	}
}

// CreateSession creates a new game session for the named level, or for the
// default level when the name is empty.
func (s *gameServiceImpl) CreateSession(ctx context.Context, levelName string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var cfg *engine.LevelConfig
	if levelName != "" {
		loaded, err := s.levels.Load(levelName)
		if err != nil {
			return nil, fmt.Errorf("load level %s: %w", levelName, err)
		}
		cfg = loaded
	} else {
		cfg = s.levels.Default()
		levelName = cfg.Name
	}

	sess, err := s.sessions.Create("", levelName, cfg)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return sessionInfo(sess), nil
}

// GetSession retrieves session information.
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)
	return sessionInfo(sess), nil
}

// ListSessions returns all active sessions.
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, sessionInfo(sess))
	}
	return result, nil
}

// DeleteSession removes a session.
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions.Delete(sessionID)
}

// Step applies one action token as a full turn.
func (s *gameServiceImpl) Step(ctx context.Context, sessionID, action string) (*StepOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	res := sess.Game.Step(action)
	if err := s.sessions.Save(sessionID); err != nil {
		return nil, fmt.Errorf("persist session %s: %w", sessionID, err)
	}
	return &StepOutcome{Result: res, State: sess.Game.State()}, nil
}

// MicroStep advances exactly one phase.
func (s *gameServiceImpl) MicroStep(ctx context.Context, sessionID, action string) (*PhaseOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	res := sess.Game.MicroStep(action)
	if err := s.sessions.Save(sessionID); err != nil {
		return nil, fmt.Errorf("persist session %s: %w", sessionID, err)
	}
	return &PhaseOutcome{Result: res, State: sess.Game.State()}, nil
}

// GetState retrieves the current session state.
func (s *gameServiceImpl) GetState(ctx context.Context, sessionID string) (*SessionInfo, error) {
	return s.GetSession(ctx, sessionID)
}

// Solve runs the solver against a cataloged level with the given expansion
// budget. Search failure is reported inside the outcome, not as an error:
// both "no solution" and "budget exceeded" are ordinary results.
func (s *gameServiceImpl) Solve(ctx context.Context, levelName string, budget int) (*SolveOutcome, error) {
	cfg, err := s.levels.Load(levelName)
	if err != nil {
		return nil, fmt.Errorf("load level %s: %w", levelName, err)
	}

	res, err := solver.SolveLevel(cfg, budget)
	out := &SolveOutcome{LevelName: levelName}
	switch {
	case err == nil:
		out.Solvable = true
		out.Actions = res.Actions
		out.Expanded = res.Expanded
	case errors.Is(err, solver.ErrNoSolution):
		out.FailReason = "no_solution"
	case errors.Is(err, solver.ErrBudgetExceeded):
		out.FailReason = "budget_exceeded"
	default:
		return nil, err
	}
	return out, nil
}

// ListLevels returns the level catalog.
func (s *gameServiceImpl) ListLevels(ctx context.Context) ([]*LevelInfo, error) {
	return s.levels.List()
}

// LoadLevel loads a specific level description.
func (s *gameServiceImpl) LoadLevel(ctx context.Context, levelName string) (*engine.LevelConfig, error) {
	return s.levels.Load(levelName)
}

func sessionInfo(sess *Session) *SessionInfo {
	return &SessionInfo{
		ID:             sess.ID,
		LevelName:      sess.LevelName,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		Phase:          sess.Game.Phase().String(),
		Turns:          sess.Game.Turns(),
		Done:           sess.Game.Done(),
		Won:            sess.Game.Won(),
		State:          sess.Game.State(),
	}
}
