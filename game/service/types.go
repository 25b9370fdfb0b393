package service

import (
	"time"

	"github.com/dfreire/gridmaze/game/engine"
)

// Session represents an active game session.
type Session struct {
	ID             string
	Game           *engine.Game
	LevelName      string
	CreatedAt      time.Time
	LastAccessedAt time.Time
}

// SessionInfo provides information about a game session.
type SessionInfo struct {
	ID             string             `json:"id"`
	LevelName      string             `json:"level_name"`
	CreatedAt      time.Time          `json:"created_at"`
	LastAccessedAt time.Time          `json:"last_accessed_at"`
	Phase          string             `json:"phase"`
	Turns          int                `json:"turns"`
	Done           bool               `json:"done"`
	Won            bool               `json:"won"`
	State          *engine.WorldState `json:"state"`
}

// StepOutcome wraps an engine step result with the resulting state so
// transports never have to reach into the session.
type StepOutcome struct {
	Result *engine.StepResult `json:"result"`
	State  *engine.WorldState `json:"state"`
}

// PhaseOutcome wraps a micro-step result the same way.
type PhaseOutcome struct {
	Result *engine.PhaseResult `json:"result"`
	State  *engine.WorldState  `json:"state"`
}

// SolveOutcome reports a solver run against a cataloged level.
type SolveOutcome struct {
	LevelName string   `json:"level_name"`
	Solvable  bool     `json:"solvable"`
	Actions   []string `json:"actions,omitempty"`
	Expanded  int      `json:"expanded"`
	// FailReason is "no_solution" or "budget_exceeded" when Solvable is false.
	FailReason string `json:"fail_reason,omitempty"`
}

// LevelInfo summarizes one cataloged level.
type LevelInfo struct {
	Name     string `json:"name"`
	Rows     int    `json:"rows"`
	Cols     int    `json:"cols"`
	Pursuers int    `json:"pursuers"`
	Traps    int    `json:"traps"`
	Keys     int    `json:"keys"`
	Gates    int    `json:"gates"`
}
