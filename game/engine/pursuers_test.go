package engine

import (
	"testing"
)

func TestPursuerAxisPriority(t *testing.T) {
	b, _ := buildLevel(t, openLevel(3, 3))
	open := make(GateSet)
	target := Position{Row: 2, Col: 2}

	tests := []struct {
		name string
		typ  PursuerType
		want Position
	}{
		{"fast horizontal prefers columns", FastHorizontal, Position{Row: 0, Col: 1}},
		{"fast vertical prefers rows", FastVertical, Position{Row: 1, Col: 0}},
		{"slow shares the horizontal-first rule", Slow, Position{Row: 0, Col: 1}},
	}

	for _, tt := range tests {
		got, moved := pursuerStep(b, open, tt.typ, Position{Row: 0, Col: 0}, target)
		if !moved || got != tt.want {
			t.Errorf("%s: pursuerStep = %v (moved=%v), want %v", tt.name, got, moved, tt.want)
		}
	}
}

func TestPursuerAlignedAxisSkipped(t *testing.T) {
	b, _ := buildLevel(t, openLevel(3, 3))
	open := make(GateSet)

	// Same row: a vertical-first pursuer has no vertical displacement and
	// falls through to the horizontal axis.
	got, moved := pursuerStep(b, open, FastVertical, Position{Row: 1, Col: 0}, Position{Row: 1, Col: 2})
	if !moved || got != (Position{Row: 1, Col: 1}) {
		t.Errorf("Expected aligned fast vertical pursuer to move horizontally, got %v", got)
	}

	// Same cell: no displacement at all.
	_, moved = pursuerStep(b, open, FastHorizontal, Position{Row: 1, Col: 1}, Position{Row: 1, Col: 1})
	if moved {
		t.Error("Expected pursuer on the target cell to stay")
	}
}

func TestPursuerFallsBackWhenPreferredAxisBlocked(t *testing.T) {
	cfg := openLevel(3, 3)
	cfg.VWalls = [][]bool{
		{false, true, false, false},
		{false, false, false, false},
		{false, false, false, false},
	}
	b, _ := buildLevel(t, cfg)
	open := make(GateSet)

	got, moved := pursuerStep(b, open, FastHorizontal, Position{Row: 0, Col: 0}, Position{Row: 2, Col: 2})
	if !moved || got != (Position{Row: 1, Col: 0}) {
		t.Errorf("Expected blocked horizontal pursuer to fall back to vertical, got %v (moved=%v)", got, moved)
	}
}

func TestPursuerStaysWhenBothAxesBlocked(t *testing.T) {
	cfg := openLevel(3, 3)
	cfg.VWalls = [][]bool{
		{false, true, false, false},
		{false, false, false, false},
		{false, false, false, false},
	}
	cfg.HWalls = [][]bool{
		{false, false, false},
		{true, false, false},
		{false, false, false},
		{false, false, false},
	}
	b, _ := buildLevel(t, cfg)
	open := make(GateSet)

	got, moved := pursuerStep(b, open, FastHorizontal, Position{Row: 0, Col: 0}, Position{Row: 2, Col: 2})
	if moved || got != (Position{Row: 0, Col: 0}) {
		t.Errorf("Expected fully blocked pursuer to stay at origin, got %v (moved=%v)", got, moved)
	}
}

func TestSubStepMoverWinsCollision(t *testing.T) {
	b, _ := buildLevel(t, openLevel(3, 3))
	ws := &WorldState{
		Explorer: Position{Row: 2, Col: 1},
		Pursuers: []Pursuer{
			{Type: FastHorizontal, Pos: Position{Row: 0, Col: 1}}, // moves down into (1,1)
			{Type: FastHorizontal, Pos: Position{Row: 1, Col: 0}}, // moves right into (1,1)
		},
		OpenGates: make(GateSet),
	}

	events := subStep(b, ws, true)

	if len(ws.Pursuers) != 1 {
		t.Fatalf("Expected one surviving pursuer, got %d", len(ws.Pursuers))
	}
	// The later mover entered last and owns the cell.
	if ws.Pursuers[0].Pos != (Position{Row: 1, Col: 1}) {
		t.Errorf("Expected survivor at (1,1), got %v", ws.Pursuers[0].Pos)
	}

	collisions := 0
	for _, ev := range events {
		if ev.Type == EventCollision {
			collisions++
		}
	}
	if collisions != 1 {
		t.Errorf("Expected exactly one collision event, got %d", collisions)
	}
}

func TestSubStepSkipsOtherPaceClass(t *testing.T) {
	b, _ := buildLevel(t, openLevel(3, 3))
	ws := &WorldState{
		Explorer: Position{Row: 2, Col: 2},
		Pursuers: []Pursuer{
			{Type: Slow, Pos: Position{Row: 0, Col: 0}},
		},
		OpenGates: make(GateSet),
	}

	subStep(b, ws, true)
	if ws.Pursuers[0].Pos != (Position{Row: 0, Col: 0}) {
		t.Error("Expected slow pursuer to sit out the fast sub-step")
	}

	subStep(b, ws, false)
	if ws.Pursuers[0].Pos != (Position{Row: 0, Col: 1}) {
		t.Errorf("Expected slow pursuer to move in the slow step, got %v", ws.Pursuers[0].Pos)
	}
}

func TestPursuerTriggersKeyToggle(t *testing.T) {
	cfg := openLevel(2, 3)
	cfg.VGates = [][]bool{
		{false, false, true, false},
		{false, false, false, false},
	}
	cfg.Keys = [][]int{{0, 1}}
	b, _ := buildLevel(t, cfg)

	ws := &WorldState{
		Explorer: Position{Row: 0, Col: 2},
		Pursuers: []Pursuer{
			{Type: FastHorizontal, Pos: Position{Row: 0, Col: 0}},
		},
		OpenGates: make(GateSet),
	}

	// Sub-step one: the pursuer steps onto the key and every gate toggles
	// immediately.
	events := subStep(b, ws, true)
	if ws.Pursuers[0].Pos != (Position{Row: 0, Col: 1}) {
		t.Fatalf("Expected pursuer on the key cell, got %v", ws.Pursuers[0].Pos)
	}
	gate := EdgeID{Vertical: true, Row: 0, Col: 2}
	if !ws.OpenGates[gate] {
		t.Error("Expected the gate to open when a pursuer entered the key cell")
	}

	toggles := 0
	for _, ev := range events {
		if ev.Type == EventToggleGates {
			toggles++
		}
	}
	if toggles != 1 {
		t.Errorf("Expected one toggle event, got %d", toggles)
	}

	// Sub-step two: the freshly opened gate is already passable, so the
	// pursuer walks through it onto the explorer.
	subStep(b, ws, true)
	if ws.Pursuers[0].Pos != (Position{Row: 0, Col: 2}) {
		t.Errorf("Expected pursuer through the opened gate, got %v", ws.Pursuers[0].Pos)
	}
}

func TestSimulatePursuersComposition(t *testing.T) {
	b, _ := buildLevel(t, openLevel(2, 6))
	ws := &WorldState{
		Explorer: Position{Row: 0, Col: 5},
		Pursuers: []Pursuer{
			{Type: FastHorizontal, Pos: Position{Row: 0, Col: 0}},
			{Type: Slow, Pos: Position{Row: 1, Col: 0}},
		},
		OpenGates: make(GateSet),
	}

	after, captured := SimulatePursuers(b, ws)
	if captured {
		t.Fatal("Expected no capture at this distance")
	}
	if after.Pursuers[0].Pos != (Position{Row: 0, Col: 2}) {
		t.Errorf("Expected fast pursuer to advance two cells, got %v", after.Pursuers[0].Pos)
	}
	if after.Pursuers[1].Pos != (Position{Row: 1, Col: 1}) {
		t.Errorf("Expected slow pursuer to advance one cell, got %v", after.Pursuers[1].Pos)
	}

	// Input state untouched.
	if ws.Pursuers[0].Pos != (Position{Row: 0, Col: 0}) {
		t.Error("Expected SimulatePursuers to leave the input state unmodified")
	}
}

func TestSimulatePursuersCapture(t *testing.T) {
	b, _ := buildLevel(t, openLevel(1, 4))
	ws := &WorldState{
		Explorer: Position{Row: 0, Col: 3},
		Pursuers: []Pursuer{
			{Type: FastHorizontal, Pos: Position{Row: 0, Col: 1}},
		},
		OpenGates: make(GateSet),
	}

	after, captured := SimulatePursuers(b, ws)
	if !captured {
		t.Fatal("Expected a fast pursuer two cells away to capture")
	}
	if after != nil {
		t.Error("Expected nil state on capture")
	}
}
