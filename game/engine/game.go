package engine

// Phase is one sub-step of a turn. Phases cycle explorer → fast sub-step 1
// → fast sub-step 2 → slow step → explorer.
type Phase int

const (
	PhaseExplorer Phase = iota
	PhaseFastOne
	PhaseFastTwo
	PhaseSlow
)

func (p Phase) String() string {
	switch p {
	case PhaseExplorer:
		return "explorer"
	case PhaseFastOne:
		return "fast_pursuers_1"
	case PhaseFastTwo:
		return "fast_pursuers_2"
	}
	return "slow_pursuers"
}

// LogEntry records one accepted input, for deterministic session replay.
// Micro entries were applied through MicroStep; a micro entry with an empty
// token advanced a pursuer phase.
type LogEntry struct {
	Token string `json:"token"`
	Micro bool   `json:"micro,omitempty"`
}

// snapshot is a pre-explorer-phase restore point for UNDO.
type snapshot struct {
	state *WorldState
	turns int
}

// Game drives the single live WorldState of an interactive session through
// the phase state machine. It is not safe for concurrent use; each session
// owns exactly one Game.
type Game struct {
	board   *Board
	cfg     *LevelConfig
	state   *WorldState
	initial *WorldState
	phase   Phase
	done    bool
	won     bool
	turns   int
	history []snapshot
	log     []LogEntry
}

// NewGame builds a Game from a level description, validating it first.
func NewGame(cfg *LevelConfig) (*Game, error) {
	board, ws, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return &Game{
		board:   board,
		cfg:     cfg,
		state:   ws,
		initial: ws.Clone(),
	}, nil
}

// Board returns the immutable topology.
func (g *Game) Board() *Board { return g.board }

// Level returns the level description the game was built from.
func (g *Game) Level() *LevelConfig { return g.cfg }

// State returns a deep copy of the current world state.
func (g *Game) State() *WorldState { return g.state.Clone() }

// Phase returns the phase the next MicroStep will run.
func (g *Game) Phase() Phase { return g.phase }

// Done reports whether the game reached a terminal state.
func (g *Game) Done() bool { return g.done }

// Won reports whether the terminal state is a win.
func (g *Game) Won() bool { return g.won }

// Turns returns the number of completed full turns.
func (g *Game) Turns() int { return g.turns }

// Key returns the canonical key of the current world state.
func (g *Game) Key() string { return g.state.Key() }

// Log returns the accepted-input log since construction.
func (g *Game) Log() []LogEntry {
	out := make([]LogEntry, len(g.log))
	copy(out, g.log)
	return out
}

// Repetitions counts how often the current canonical state has occurred at
// turn boundaries, the current occurrence included. A value of 3 is the
// classic threefold-repetition signal.
func (g *Game) Repetitions() int {
	key := g.state.Key()
	n := 1
	for _, s := range g.history {
		if s.state.Key() == key {
			n++
		}
	}
	return n
}

// Step consumes one action token and advances a full turn: explorer phase,
// two fast-pursuer sub-steps and the slow-pursuer step, executed atomically.
// UNDO and RESET bypass simulation and restore snapshots. A rejected step
// leaves the world state unmodified and carries a Reason.
func (g *Game) Step(input string) *StepResult {
	a, ok := ParseAction(input)
	if !ok {
		return g.rejected(input, ReasonInvalidAction)
	}
	switch a {
	case ActionReset:
		return g.reset()
	case ActionUndo:
		return g.undo()
	}
	if g.done {
		return g.rejected(string(a), ReasonGameOver)
	}

	res := &StepResult{OK: true, Action: string(a)}

	// Finish phases left pending by micro-stepping before consuming the
	// next explorer action.
	for g.phase != PhaseExplorer && !g.done {
		res.Events = append(res.Events, g.advancePursuerPhase()...)
	}
	if g.done {
		res.OK = false
		res.Reason = ReasonGameOver
		g.finish(res)
		return res
	}

	g.pushSnapshot()
	g.log = append(g.log, LogEntry{Token: string(a)})
	g.applyExplorer(a, res)
	for g.phase != PhaseExplorer && !g.done {
		res.Events = append(res.Events, g.advancePursuerPhase()...)
	}
	g.finish(res)
	return res
}

// MicroStep advances exactly one phase. At the explorer phase it consumes
// an action token; pursuer phases ignore external input, so any token other
// than the out-of-band UNDO/RESET is discarded there.
func (g *Game) MicroStep(input string) *PhaseResult {
	if a, ok := ParseAction(input); ok && (a == ActionUndo || a == ActionReset) {
		sr := g.Step(input)
		return &PhaseResult{
			OK:     sr.OK,
			Phase:  g.phase.String(),
			Pos:    sr.Pos,
			Won:    sr.Won,
			Done:   sr.Done,
			Reason: sr.Reason,
		}
	}

	res := &PhaseResult{OK: true, Phase: g.phase.String()}
	if g.done {
		res.OK = false
		res.Reason = ReasonGameOver
		res.Pos, res.Done, res.Won = g.state.Explorer, g.done, g.won
		return res
	}

	if g.phase == PhaseExplorer {
		a, ok := ParseAction(input)
		if !ok {
			res.OK = false
			res.Reason = ReasonInvalidAction
			res.Pos, res.Done, res.Won = g.state.Explorer, g.done, g.won
			return res
		}
		g.pushSnapshot()
		g.log = append(g.log, LogEntry{Token: string(a), Micro: true})
		step := &StepResult{OK: true, Action: string(a)}
		g.applyExplorer(a, step)
		res.Events = step.Events
	} else {
		g.log = append(g.log, LogEntry{Micro: true})
		res.Events = g.advancePursuerPhase()
	}

	res.Pos, res.Done, res.Won = g.state.Explorer, g.done, g.won
	return res
}

// Replay re-applies a recorded input log. Determinism guarantees the
// resulting state matches the one the log was captured from.
func (g *Game) Replay(log []LogEntry) {
	for _, e := range log {
		if e.Micro {
			g.MicroStep(e.Token)
		} else {
			g.Step(e.Token)
		}
	}
}

// applyExplorer runs the explorer phase for an already-parsed WAIT or
// directional action and advances to the first pursuer phase unless the
// move was terminal.
func (g *Game) applyExplorer(a Action, res *StepResult) {
	if d, ok := DirectionOf(a); ok {
		if g.board.Blocked(g.state.OpenGates, g.state.Explorer, d) {
			// The action is still spent; pursuers move normally.
			res.Blocked = true
		} else {
			from := g.state.Explorer
			to := from.Move(d)
			g.state.Explorer = to
			res.Moved = true
			res.Events = append(res.Events, Event{Type: EventMove, Actor: "explorer", From: &from, To: &to})

			switch {
			case g.board.Traps[to]:
				g.done, g.won = true, false
				res.Events = append(res.Events, Event{Type: EventTrap, Actor: "explorer", To: &to})
			case to == g.board.Exit:
				// Win before pursuers move this turn.
				g.done, g.won = true, true
				res.Events = append(res.Events, Event{Type: EventExit, Actor: "explorer", To: &to})
			case g.board.Keys[to]:
				g.state.ToggleGates(g.board)
				res.Toggled = true
				res.Events = append(res.Events, Event{Type: EventToggleGates, Actor: "explorer", To: &to})
			}
		}
	}
	if !g.done {
		g.phase = PhaseFastOne
	}
}

// advancePursuerPhase runs the sub-step for the current pursuer phase,
// checks capture, and moves the phase cursor.
func (g *Game) advancePursuerPhase() []Event {
	fast := g.phase == PhaseFastOne || g.phase == PhaseFastTwo
	events := subStep(g.board, g.state, fast)

	if g.state.PursuerAt(g.state.Explorer) {
		g.done, g.won = true, false
		at := g.state.Explorer
		events = append(events, Event{Type: EventCapture, To: &at})
		return events
	}

	switch g.phase {
	case PhaseFastOne:
		g.phase = PhaseFastTwo
	case PhaseFastTwo:
		g.phase = PhaseSlow
	case PhaseSlow:
		g.phase = PhaseExplorer
		g.turns++
	}
	return events
}

func (g *Game) pushSnapshot() {
	g.history = append(g.history, snapshot{state: g.state.Clone(), turns: g.turns})
}

func (g *Game) reset() *StepResult {
	g.state = g.initial.Clone()
	g.phase = PhaseExplorer
	g.done, g.won = false, false
	g.turns = 0
	g.history = nil
	g.log = append(g.log, LogEntry{Token: string(ActionReset)})
	res := &StepResult{OK: true, Action: string(ActionReset)}
	g.finish(res)
	return res
}

func (g *Game) undo() *StepResult {
	if len(g.history) == 0 {
		return g.rejected(string(ActionUndo), ReasonNoHistory)
	}
	snap := g.history[len(g.history)-1]
	g.history = g.history[:len(g.history)-1]
	g.state = snap.state
	g.turns = snap.turns
	g.phase = PhaseExplorer
	g.done, g.won = false, false
	g.log = append(g.log, LogEntry{Token: string(ActionUndo)})
	res := &StepResult{OK: true, Action: string(ActionUndo)}
	g.finish(res)
	return res
}

func (g *Game) rejected(action string, r Reason) *StepResult {
	return &StepResult{
		OK:     false,
		Action: action,
		Pos:    g.state.Explorer,
		Won:    g.won,
		Done:   g.done,
		Reason: r,
	}
}

func (g *Game) finish(res *StepResult) {
	res.Pos = g.state.Explorer
	res.Done = g.done
	res.Won = g.won
	res.Repetitions = g.Repetitions()
}
