package engine

import (
	"fmt"
	"strings"
)

// Action is one explorer input token.
type Action string

const (
	ActionUp    Action = "UP"
	ActionDown  Action = "DOWN"
	ActionLeft  Action = "LEFT"
	ActionRight Action = "RIGHT"
	ActionWait  Action = "WAIT"
	ActionUndo  Action = "UNDO"
	ActionReset Action = "RESET"
)

// MoveActions are the phase-consuming actions, in canonical order.
var MoveActions = []Action{ActionUp, ActionDown, ActionLeft, ActionRight, ActionWait}

// ParseAction normalizes an input token. It is case-insensitive and accepts
// an optional "Action:" style prefix. The boolean reports whether the token
// is part of the action vocabulary.
func ParseAction(s string) (Action, bool) {
	t := strings.TrimSpace(s)
	if i := strings.IndexByte(t, ':'); i >= 0 {
		t = strings.TrimSpace(t[i+1:])
	}
	switch Action(strings.ToUpper(t)) {
	case ActionUp:
		return ActionUp, true
	case ActionDown:
		return ActionDown, true
	case ActionLeft:
		return ActionLeft, true
	case ActionRight:
		return ActionRight, true
	case ActionWait:
		return ActionWait, true
	case ActionUndo:
		return ActionUndo, true
	case ActionReset:
		return ActionReset, true
	}
	return "", false
}

// Direction is one of the four axis-aligned move directions.
type Direction int

const (
	Up Direction = iota
	Down
	Left
	Right
)

// Delta returns the row/column displacement of the direction.
func (d Direction) Delta() (dr, dc int) {
	switch d {
	case Up:
		return -1, 0
	case Down:
		return 1, 0
	case Left:
		return 0, -1
	}
	return 0, 1
}

// DirectionOf maps a directional action to its Direction. WAIT and the
// out-of-band actions have no direction.
func DirectionOf(a Action) (Direction, bool) {
	switch a {
	case ActionUp:
		return Up, true
	case ActionDown:
		return Down, true
	case ActionLeft:
		return Left, true
	case ActionRight:
		return Right, true
	}
	return 0, false
}

// Position is a cell coordinate. Row 0 is the top row.
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Move returns the neighboring position in the given direction.
func (p Position) Move(d Direction) Position {
	dr, dc := d.Delta()
	return Position{Row: p.Row + dr, Col: p.Col + dc}
}

// Manhattan returns the Manhattan distance to another position.
func (p Position) Manhattan(o Position) int {
	return abs(p.Row-o.Row) + abs(p.Col-o.Col)
}

// PursuerType is a closed tagged variant of the pursuer movement classes.
type PursuerType int

const (
	// FastHorizontal closes horizontal distance first and steps twice per turn.
	FastHorizontal PursuerType = iota
	// FastVertical closes vertical distance first and steps twice per turn.
	FastVertical
	// Slow uses the horizontal-first rule but steps only once per turn.
	Slow
)

func (t PursuerType) String() string {
	switch t {
	case FastHorizontal:
		return "fast_h"
	case FastVertical:
		return "fast_v"
	}
	return "slow"
}

// Fast reports whether the pursuer takes two steps per turn.
func (t PursuerType) Fast() bool { return t != Slow }

// Pursuer is one autonomous entity hunting the explorer.
type Pursuer struct {
	Type PursuerType `json:"type"`
	Pos  Position    `json:"pos"`
}

// EdgeID identifies one edge of the board. Vertical edges separate
// horizontally adjacent cells; horizontal edges separate vertically
// adjacent cells. Indexing follows the level matrices: vertical edge
// (r, c) sits left of cell (r, c), horizontal edge (r, c) sits above
// cell (r, c).
type EdgeID struct {
	Vertical bool `json:"vertical"`
	Row      int  `json:"row"`
	Col      int  `json:"col"`
}

// MarshalText encodes an edge as "v<row>,<col>" or "h<row>,<col>" so edge
// sets can serve as JSON map keys.
func (e EdgeID) MarshalText() ([]byte, error) {
	axis := byte('h')
	if e.Vertical {
		axis = 'v'
	}
	return []byte(fmt.Sprintf("%c%d,%d", axis, e.Row, e.Col)), nil
}

// UnmarshalText parses the MarshalText encoding.
func (e *EdgeID) UnmarshalText(text []byte) error {
	s := string(text)
	if len(s) < 4 || (s[0] != 'v' && s[0] != 'h') {
		return fmt.Errorf("invalid edge id %q", s)
	}
	var row, col int
	if _, err := fmt.Sscanf(s[1:], "%d,%d", &row, &col); err != nil {
		return fmt.Errorf("invalid edge id %q: %v", s, err)
	}
	e.Vertical = s[0] == 'v'
	e.Row = row
	e.Col = col
	return nil
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
