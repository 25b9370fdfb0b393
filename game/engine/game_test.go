package engine

import (
	"testing"
)

func newTestGame(t *testing.T, cfg *LevelConfig) *Game {
	t.Helper()
	g, err := NewGame(cfg)
	if err != nil {
		t.Fatalf("Failed to create game: %v", err)
	}
	return g
}

func mustParseText(t *testing.T, text string) *LevelConfig {
	t.Helper()
	cfg, err := ParseText(text)
	if err != nil {
		t.Fatalf("Failed to parse level: %v", err)
	}
	return cfg
}

// chaseLevel is a 3x3 open board with a slow pursuer in the opposite
// corner from the explorer.
func chaseLevel() *LevelConfig {
	return &LevelConfig{
		Rows:     3,
		Cols:     3,
		Explorer: []int{2, 0},
		Exit:     []int{0, 2},
		Slow:     [][]int{{0, 0}},
	}
}

func TestStepRunsFullTurn(t *testing.T) {
	g := newTestGame(t, chaseLevel())

	res := g.Step("RIGHT")
	if !res.OK || !res.Moved || res.Blocked {
		t.Fatalf("Expected clean move, got %+v", res)
	}
	if res.Pos != (Position{Row: 2, Col: 1}) {
		t.Errorf("Expected explorer at (2,1), got %v", res.Pos)
	}
	if g.Turns() != 1 {
		t.Errorf("Expected 1 completed turn, got %d", g.Turns())
	}
	if g.Phase() != PhaseExplorer {
		t.Errorf("Expected phase back at explorer, got %v", g.Phase())
	}

	// The slow pursuer chased the post-move position horizontally.
	st := g.State()
	if st.Pursuers[0].Pos != (Position{Row: 0, Col: 1}) {
		t.Errorf("Expected pursuer at (0,1), got %v", st.Pursuers[0].Pos)
	}
}

func TestBlockedMoveStillSpendsTurn(t *testing.T) {
	g := newTestGame(t, chaseLevel())

	res := g.Step("DOWN") // bottom boundary
	if !res.OK {
		t.Fatalf("Expected blocked move to be accepted, got %+v", res)
	}
	if res.Moved || !res.Blocked {
		t.Errorf("Expected blocked outcome, got moved=%v blocked=%v", res.Moved, res.Blocked)
	}
	if g.Turns() != 1 {
		t.Errorf("Expected the turn to complete anyway, got %d turns", g.Turns())
	}
	st := g.State()
	if st.Pursuers[0].Pos == (Position{Row: 0, Col: 0}) {
		t.Error("Expected pursuers to move while the explorer was stuck")
	}
}

func TestWaitIsARealMove(t *testing.T) {
	g := newTestGame(t, chaseLevel())

	res := g.Step("WAIT")
	if !res.OK || res.Moved || res.Blocked {
		t.Fatalf("Expected accepted in-place WAIT, got %+v", res)
	}
	// Explorer stayed at (2,0): same column, so the slow pursuer
	// closes vertically.
	st := g.State()
	if st.Pursuers[0].Pos != (Position{Row: 1, Col: 0}) {
		t.Errorf("Expected pursuer at (1,0), got %v", st.Pursuers[0].Pos)
	}
}

func TestTrapEndsGameImmediately(t *testing.T) {
	cfg := mustParseText(t, `
+-+-+-+
|P T E|
+-+-+-+
`)
	g := newTestGame(t, cfg)

	res := g.Step("RIGHT")
	if !res.Done || res.Won {
		t.Fatalf("Expected immediate loss on the trap, got %+v", res)
	}
	if g.Turns() != 0 {
		t.Errorf("Expected no completed turn after a trap loss, got %d", g.Turns())
	}

	res = g.Step("RIGHT")
	if res.OK || res.Reason != ReasonGameOver {
		t.Errorf("Expected game_over rejection after loss, got %+v", res)
	}
}

func TestExitWinsBeforePursuersMove(t *testing.T) {
	// The fast pursuer is close enough to capture during the pursuer
	// phases, but reaching the exit ends the turn first.
	cfg := &LevelConfig{
		Rows:     1,
		Cols:     4,
		Explorer: []int{0, 2},
		Exit:     []int{0, 3},
		FastH:    [][]int{{0, 0}},
	}
	g := newTestGame(t, cfg)

	res := g.Step("RIGHT")
	if !res.Done || !res.Won {
		t.Fatalf("Expected a win, got %+v", res)
	}
	st := g.State()
	if st.Pursuers[0].Pos != (Position{Row: 0, Col: 0}) {
		t.Errorf("Expected pursuers to skip the winning turn, got %v", st.Pursuers[0].Pos)
	}
}

func TestCaptureEndsGame(t *testing.T) {
	cfg := &LevelConfig{
		Rows:     1,
		Cols:     5,
		Explorer: []int{0, 3},
		Exit:     []int{0, 4},
		FastH:    [][]int{{0, 0}},
	}
	g := newTestGame(t, cfg)

	// WAIT leaves the explorer at (0,3); the fast pursuer covers two cells
	// per turn and reaches (0,2) on turn one, then captures on turn two.
	if res := g.Step("WAIT"); res.Done {
		t.Fatalf("Expected survival on the first turn, got %+v", res)
	}
	res := g.Step("WAIT")
	if !res.Done || res.Won {
		t.Fatalf("Expected capture on the second turn, got %+v", res)
	}

	captured := false
	for _, ev := range res.Events {
		if ev.Type == EventCapture {
			captured = true
		}
	}
	if !captured {
		t.Error("Expected a capture event in the step result")
	}
}

func TestKeyTogglesAllGates(t *testing.T) {
	cfg := mustParseText(t, `
+-+-+-+-+
|P . K:E|
+-+-+-+-+
`)
	g := newTestGame(t, cfg)

	g.Step("RIGHT")
	res := g.Step("RIGHT") // onto the key
	if !res.Toggled {
		t.Fatalf("Expected a gate toggle, got %+v", res)
	}

	res = g.Step("RIGHT") // through the opened gate
	if !res.Done || !res.Won {
		t.Fatalf("Expected to win through the opened gate, got %+v", res)
	}
}

func TestInvalidActionRejectedWithoutSideEffects(t *testing.T) {
	g := newTestGame(t, chaseLevel())
	before := g.Key()

	res := g.Step("JUMP")
	if res.OK || res.Reason != ReasonInvalidAction {
		t.Fatalf("Expected invalid_action rejection, got %+v", res)
	}
	if g.Key() != before {
		t.Error("Expected state to be untouched by a rejected action")
	}
	if g.Turns() != 0 {
		t.Errorf("Expected no turn consumed, got %d", g.Turns())
	}
}

func TestUndoRestoresPreviousTurn(t *testing.T) {
	g := newTestGame(t, chaseLevel())
	before := g.Key()

	g.Step("RIGHT")
	res := g.Step("UNDO")
	if !res.OK {
		t.Fatalf("Expected UNDO to succeed, got %+v", res)
	}
	if g.Key() != before {
		t.Error("Expected UNDO to restore the pre-turn state, pursuers included")
	}
	if g.Turns() != 0 {
		t.Errorf("Expected turn counter restored, got %d", g.Turns())
	}
}

func TestUndoAfterLossResumesPlay(t *testing.T) {
	cfg := mustParseText(t, `
+-+-+-+
|P T E|
+-+-+-+
`)
	g := newTestGame(t, cfg)

	g.Step("RIGHT") // trap
	if !g.Done() {
		t.Fatal("Expected the game to be over")
	}

	res := g.Step("UNDO")
	if !res.OK || res.Done {
		t.Fatalf("Expected UNDO to clear the terminal state, got %+v", res)
	}
	if g.State().Explorer != (Position{Row: 0, Col: 0}) {
		t.Errorf("Expected explorer back at the start, got %v", g.State().Explorer)
	}
}

func TestUndoWithoutHistory(t *testing.T) {
	g := newTestGame(t, chaseLevel())

	res := g.Step("UNDO")
	if res.OK || res.Reason != ReasonNoHistory {
		t.Errorf("Expected no_history rejection, got %+v", res)
	}
}

func TestResetClearsHistory(t *testing.T) {
	g := newTestGame(t, chaseLevel())
	initial := g.Key()

	g.Step("RIGHT")
	g.Step("UP")

	res := g.Step("RESET")
	if !res.OK {
		t.Fatalf("Expected RESET to succeed, got %+v", res)
	}
	if g.Key() != initial || g.Turns() != 0 {
		t.Error("Expected RESET to restore the initial state")
	}

	res = g.Step("UNDO")
	if res.OK || res.Reason != ReasonNoHistory {
		t.Errorf("Expected empty history after RESET, got %+v", res)
	}
}

func TestRepetitionsCountAtTurnBoundaries(t *testing.T) {
	// No pursuers: WAIT reproduces the same canonical state every turn.
	cfg := mustParseText(t, `
+-+-+-+
|P . E|
+-+-+-+
`)
	g := newTestGame(t, cfg)

	if res := g.Step("WAIT"); res.Repetitions != 2 {
		t.Errorf("Expected second occurrence, got %d", res.Repetitions)
	}
	if res := g.Step("WAIT"); res.Repetitions != 3 {
		t.Errorf("Expected threefold repetition, got %d", res.Repetitions)
	}

	// Moving breaks the cycle.
	if res := g.Step("RIGHT"); res.Repetitions != 1 {
		t.Errorf("Expected a fresh state, got %d", res.Repetitions)
	}
}

func TestMicroStepWalksThePhases(t *testing.T) {
	g := newTestGame(t, chaseLevel())

	res := g.MicroStep("RIGHT")
	if !res.OK || res.Phase != "explorer" {
		t.Fatalf("Expected explorer phase, got %+v", res)
	}
	if g.Turns() != 0 {
		t.Error("Expected no completed turn mid-phase")
	}

	wantPhases := []string{"fast_pursuers_1", "fast_pursuers_2", "slow_pursuers"}
	for _, want := range wantPhases {
		res = g.MicroStep("")
		if !res.OK || res.Phase != want {
			t.Fatalf("Expected phase %s, got %+v", want, res)
		}
	}

	if g.Phase() != PhaseExplorer || g.Turns() != 1 {
		t.Errorf("Expected a completed turn, phase=%v turns=%d", g.Phase(), g.Turns())
	}
}

func TestMicroStepIgnoresTokensDuringPursuerPhases(t *testing.T) {
	g := newTestGame(t, chaseLevel())

	g.MicroStep("UP")
	before := g.State().Explorer

	res := g.MicroStep("LEFT") // phase advances, token discarded
	if !res.OK || res.Phase != "fast_pursuers_1" {
		t.Fatalf("Expected pursuer phase, got %+v", res)
	}
	if g.State().Explorer != before {
		t.Error("Expected the explorer not to move during a pursuer phase")
	}
}

func TestStepDrainsPendingMicroPhases(t *testing.T) {
	cfg := mustParseText(t, `
+-+-+-+-+-+
|P . . . E|
+-+-+-+-+-+
`)
	g := newTestGame(t, cfg)

	g.MicroStep("RIGHT") // leaves pursuer phases pending

	res := g.Step("RIGHT")
	if !res.OK {
		t.Fatalf("Expected step to drain pending phases and run, got %+v", res)
	}
	if g.Turns() != 2 {
		t.Errorf("Expected two completed turns, got %d", g.Turns())
	}
	if res.Pos != (Position{Row: 0, Col: 2}) {
		t.Errorf("Expected explorer at (0,2), got %v", res.Pos)
	}
}

func TestReplayReproducesState(t *testing.T) {
	cfg := chaseLevel()
	g := newTestGame(t, cfg)

	inputs := []string{"RIGHT", "UP", "WAIT", "UNDO", "UP", "RIGHT"}
	for _, in := range inputs {
		g.Step(in)
	}
	g.MicroStep("UP")
	g.MicroStep("")

	replayed := newTestGame(t, cfg)
	replayed.Replay(g.Log())

	if replayed.Key() != g.Key() {
		t.Errorf("Expected replay to reproduce the state:\n%s\n%s", g.Key(), replayed.Key())
	}
	if replayed.Turns() != g.Turns() || replayed.Phase() != g.Phase() {
		t.Errorf("Expected replay to reproduce turn/phase, got turns=%d/%d phase=%v/%v",
			replayed.Turns(), g.Turns(), replayed.Phase(), g.Phase())
	}
}
