package engine

import (
	"fmt"
	"sort"
	"strings"
)

// GateSet is the set of currently open gate edges. Closed is the default:
// a gate edge absent from the set blocks movement.
type GateSet map[EdgeID]bool

func (g GateSet) clone() GateSet {
	out := make(GateSet, len(g))
	for e := range g {
		out[e] = true
	}
	return out
}

// WorldState is one mutable configuration of a level: the explorer position,
// the pursuers in canonical list order, and the open-gate set. States are
// deep copied between search nodes and history snapshots; a WorldState is
// never shared between a live session and the solver.
type WorldState struct {
	Explorer  Position  `json:"explorer"`
	Pursuers  []Pursuer `json:"pursuers"`
	OpenGates GateSet   `json:"open_gates"`
}

// Clone returns a deep copy. Mutating the copy never affects the original.
func (ws *WorldState) Clone() *WorldState {
	out := &WorldState{
		Explorer:  ws.Explorer,
		Pursuers:  make([]Pursuer, len(ws.Pursuers)),
		OpenGates: ws.OpenGates.clone(),
	}
	copy(out.Pursuers, ws.Pursuers)
	return out
}

// PursuerAt reports whether any pursuer occupies the cell.
func (ws *WorldState) PursuerAt(p Position) bool {
	for i := range ws.Pursuers {
		if ws.Pursuers[i].Pos == p {
			return true
		}
	}
	return false
}

// ToggleGates flips every gate edge: the new open set is the board's gate
// edges minus the previous open set. The toggle is atomic and is its own
// inverse.
func (ws *WorldState) ToggleGates(b *Board) {
	next := make(GateSet)
	for _, e := range b.GateEdges() {
		if !ws.OpenGates[e] {
			next[e] = true
		}
	}
	ws.OpenGates = next
}

// Key produces the canonical, order-independent encoding of the state.
// Pursuers of the same type are interchangeable, so they are sorted by
// (type, position); open gate edges are sorted by identifier. Two states
// with equal keys are interchangeable for all future simulation.
func (ws *WorldState) Key() string {
	pursuers := make([]Pursuer, len(ws.Pursuers))
	copy(pursuers, ws.Pursuers)
	sort.Slice(pursuers, func(i, j int) bool {
		a, b := pursuers[i], pursuers[j]
		if a.Type != b.Type {
			return a.Type < b.Type
		}
		if a.Pos.Row != b.Pos.Row {
			return a.Pos.Row < b.Pos.Row
		}
		return a.Pos.Col < b.Pos.Col
	})

	gates := make([]EdgeID, 0, len(ws.OpenGates))
	for e := range ws.OpenGates {
		gates = append(gates, e)
	}
	sort.Slice(gates, func(i, j int) bool {
		a, b := gates[i], gates[j]
		if a.Vertical != b.Vertical {
			return !a.Vertical && b.Vertical
		}
		if a.Row != b.Row {
			return a.Row < b.Row
		}
		return a.Col < b.Col
	})

	var sb strings.Builder
	fmt.Fprintf(&sb, "e%d,%d", ws.Explorer.Row, ws.Explorer.Col)
	for _, p := range pursuers {
		fmt.Fprintf(&sb, "|%s@%d,%d", p.Type, p.Pos.Row, p.Pos.Col)
	}
	for _, e := range gates {
		axis := "h"
		if e.Vertical {
			axis = "v"
		}
		fmt.Fprintf(&sb, "|g%s%d,%d", axis, e.Row, e.Col)
	}
	return sb.String()
}
