package engine

// EventType names a discrete occurrence within a phase, for consumption by
// renderers and loggers.
type EventType string

const (
	EventMove        EventType = "move"
	EventCollision   EventType = "collision"
	EventToggleGates EventType = "toggle_gates"
	EventTrap        EventType = "trap"
	EventExit        EventType = "exit"
	EventCapture     EventType = "capture"
)

// Event is one discrete occurrence: an actor moving, a pursuer being
// removed by a collision, a gate toggle, or a terminal condition.
type Event struct {
	Type  EventType `json:"type"`
	Actor string    `json:"actor,omitempty"`
	From  *Position `json:"from,omitempty"`
	To    *Position `json:"to,omitempty"`
}

// Reason is a machine-friendly failure code returned on rejected operations.
// The world state is left unmodified whenever a reason is reported.
type Reason string

const (
	ReasonInvalidAction Reason = "invalid_action"
	ReasonNoHistory     Reason = "no_history"
	ReasonGameOver      Reason = "game_over"
)

// StepResult reports the outcome of one interactive step (a full turn).
type StepResult struct {
	OK          bool     `json:"ok"`
	Action      string   `json:"action"`
	Moved       bool     `json:"moved"`
	Blocked     bool     `json:"blocked"`
	Toggled     bool     `json:"toggled"`
	Pos         Position `json:"pos"`
	Won         bool     `json:"won"`
	Done        bool     `json:"done"`
	Reason      Reason   `json:"reason,omitempty"`
	Repetitions int      `json:"repetitions,omitempty"`
	Events      []Event  `json:"events,omitempty"`
}

// PhaseResult reports the outcome of advancing exactly one phase.
type PhaseResult struct {
	OK     bool     `json:"ok"`
	Phase  string   `json:"phase"`
	Events []Event  `json:"events,omitempty"`
	Pos    Position `json:"pos"`
	Won    bool     `json:"won"`
	Done   bool     `json:"done"`
	Reason Reason   `json:"reason,omitempty"`
}
