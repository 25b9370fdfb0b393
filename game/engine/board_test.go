package engine

import (
	"testing"
)

func buildLevel(t *testing.T, cfg *LevelConfig) (*Board, *WorldState) {
	t.Helper()
	b, ws, err := cfg.Build()
	if err != nil {
		t.Fatalf("Failed to build level: %v", err)
	}
	return b, ws
}

func openLevel(rows, cols int) *LevelConfig {
	return &LevelConfig{
		Rows:     rows,
		Cols:     cols,
		Explorer: []int{rows - 1, 0},
		Exit:     []int{0, cols - 1},
	}
}

func TestParseAction(t *testing.T) {
	tests := []struct {
		input string
		want  Action
		ok    bool
	}{
		{"UP", ActionUp, true},
		{"down", ActionDown, true},
		{"  Left  ", ActionLeft, true},
		{"Action: RIGHT", ActionRight, true},
		{"action:wait", ActionWait, true},
		{"UNDO", ActionUndo, true},
		{"reset", ActionReset, true},
		{"JUMP", "", false},
		{"", "", false},
		{"Action:", "", false},
	}

	for _, tt := range tests {
		got, ok := ParseAction(tt.input)
		if ok != tt.ok {
			t.Errorf("ParseAction(%q) ok = %v, want %v", tt.input, ok, tt.ok)
			continue
		}
		if ok && got != tt.want {
			t.Errorf("ParseAction(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestEdgeMapping(t *testing.T) {
	b, _ := buildLevel(t, openLevel(3, 3))

	from := Position{Row: 1, Col: 1}
	tests := []struct {
		dir  Direction
		want EdgeID
	}{
		{Left, EdgeID{Vertical: true, Row: 1, Col: 1}},
		{Right, EdgeID{Vertical: true, Row: 1, Col: 2}},
		{Up, EdgeID{Vertical: false, Row: 1, Col: 1}},
		{Down, EdgeID{Vertical: false, Row: 2, Col: 1}},
	}

	for _, tt := range tests {
		if got := b.Edge(from, tt.dir); got != tt.want {
			t.Errorf("Edge(%v, %v) = %+v, want %+v", from, tt.dir, got, tt.want)
		}
	}
}

func TestBoundaryAlwaysBlocked(t *testing.T) {
	b, ws := buildLevel(t, openLevel(2, 2))

	if !b.Blocked(ws.OpenGates, Position{Row: 0, Col: 0}, Up) {
		t.Error("Expected top boundary to block UP")
	}
	if !b.Blocked(ws.OpenGates, Position{Row: 0, Col: 0}, Left) {
		t.Error("Expected left boundary to block LEFT")
	}
	if !b.Blocked(ws.OpenGates, Position{Row: 1, Col: 1}, Down) {
		t.Error("Expected bottom boundary to block DOWN")
	}
	if b.Blocked(ws.OpenGates, Position{Row: 0, Col: 0}, Right) {
		t.Error("Expected open interior edge to allow RIGHT")
	}
}

func TestInternalWallBlocks(t *testing.T) {
	cfg := openLevel(2, 2)
	cfg.VWalls = [][]bool{
		{false, true, false},
		{false, false, false},
	}
	b, ws := buildLevel(t, cfg)

	if !b.Blocked(ws.OpenGates, Position{Row: 0, Col: 0}, Right) {
		t.Error("Expected internal wall to block RIGHT")
	}
	if b.Blocked(ws.OpenGates, Position{Row: 1, Col: 0}, Right) {
		t.Error("Expected row 1 to stay open")
	}
}

func TestGateBlocksUntilOpened(t *testing.T) {
	cfg := openLevel(2, 2)
	cfg.VGates = [][]bool{
		{false, true, false},
		{false, false, false},
	}
	b, ws := buildLevel(t, cfg)

	from := Position{Row: 0, Col: 0}
	if !b.Blocked(ws.OpenGates, from, Right) {
		t.Error("Expected closed gate to block RIGHT")
	}

	ws.ToggleGates(b)
	if b.Blocked(ws.OpenGates, from, Right) {
		t.Error("Expected open gate to allow RIGHT")
	}

	ws.ToggleGates(b)
	if !b.Blocked(ws.OpenGates, from, Right) {
		t.Error("Expected re-closed gate to block RIGHT")
	}
}

func TestGatesOpenStart(t *testing.T) {
	cfg := openLevel(2, 2)
	cfg.VGates = [][]bool{
		{false, true, false},
		{false, false, false},
	}
	cfg.GatesOpen = true
	b, ws := buildLevel(t, cfg)

	if b.Blocked(ws.OpenGates, Position{Row: 0, Col: 0}, Right) {
		t.Error("Expected gates_open level to start with the gate passable")
	}
}

func TestStateKeyCanonical(t *testing.T) {
	cfg := openLevel(3, 3)
	b, _ := buildLevel(t, cfg)

	a := &WorldState{
		Explorer: Position{Row: 2, Col: 0},
		Pursuers: []Pursuer{
			{Type: FastHorizontal, Pos: Position{Row: 0, Col: 0}},
			{Type: Slow, Pos: Position{Row: 1, Col: 1}},
		},
		OpenGates: make(GateSet),
	}
	// Same content, different list order.
	b2 := &WorldState{
		Explorer: Position{Row: 2, Col: 0},
		Pursuers: []Pursuer{
			{Type: Slow, Pos: Position{Row: 1, Col: 1}},
			{Type: FastHorizontal, Pos: Position{Row: 0, Col: 0}},
		},
		OpenGates: make(GateSet),
	}

	if a.Key() != b2.Key() {
		t.Errorf("Expected canonical keys to match regardless of pursuer order:\n%s\n%s", a.Key(), b2.Key())
	}

	moved := a.Clone()
	moved.Explorer = Position{Row: 2, Col: 1}
	if a.Key() == moved.Key() {
		t.Error("Expected different explorer positions to produce different keys")
	}

	_ = b
}

func TestCloneIsDeep(t *testing.T) {
	cfg := openLevel(2, 2)
	cfg.VGates = [][]bool{
		{false, true, false},
		{false, false, false},
	}
	b, ws := buildLevel(t, cfg)
	ws.Pursuers = []Pursuer{{Type: Slow, Pos: Position{Row: 0, Col: 1}}}

	clone := ws.Clone()
	clone.Pursuers[0].Pos = Position{Row: 1, Col: 1}
	clone.ToggleGates(b)

	if ws.Pursuers[0].Pos != (Position{Row: 0, Col: 1}) {
		t.Error("Expected clone pursuer mutation not to affect the original")
	}
	if len(ws.OpenGates) != 0 {
		t.Error("Expected clone gate toggle not to affect the original")
	}
}
