package engine

// pursuerStep selects the candidate step for one pursuer toward the target,
// honoring the type's axis priority. The preferred axis is tried first; if
// its edge is blocked the other axis is tried; if both are blocked, or the
// displacement is already zero on the needed axes, the pursuer stays. The
// function is pure: it never mutates state.
func pursuerStep(b *Board, open GateSet, typ PursuerType, from, target Position) (Position, bool) {
	dr := target.Row - from.Row
	dc := target.Col - from.Col

	horizontal := Right
	if dc < 0 {
		horizontal = Left
	}
	vertical := Down
	if dr < 0 {
		vertical = Up
	}

	candidates := make([]Direction, 0, 2)
	if typ == FastVertical {
		if dr != 0 {
			candidates = append(candidates, vertical)
		}
		if dc != 0 {
			candidates = append(candidates, horizontal)
		}
	} else {
		// FastHorizontal and Slow share the horizontal-first rule.
		if dc != 0 {
			candidates = append(candidates, horizontal)
		}
		if dr != 0 {
			candidates = append(candidates, vertical)
		}
	}

	for _, d := range candidates {
		if !b.Blocked(open, from, d) {
			return from.Move(d), true
		}
	}
	return from, false
}

// subStep advances one pace class (fast or slow) a single step each, in
// canonical list order against live occupancy: a mover always removes the
// pursuer it lands on, including one that claimed the cell earlier in the
// same sub-step. Entering a key cell toggles the gates immediately, so a
// later pursuer in the same sub-step already sees the flipped gate set.
// Capture is not decided here; callers check occupancy of the explorer's
// cell after the sub-step.
func subStep(b *Board, ws *WorldState, fast bool) []Event {
	alive := make([]bool, len(ws.Pursuers))
	for i := range alive {
		alive[i] = true
	}

	var events []Event
	for i := range ws.Pursuers {
		if !alive[i] {
			continue
		}
		p := ws.Pursuers[i]
		if p.Type.Fast() != fast {
			continue
		}
		next, moved := pursuerStep(b, ws.OpenGates, p.Type, p.Pos, ws.Explorer)
		if !moved {
			continue
		}
		for j := range ws.Pursuers {
			if j != i && alive[j] && ws.Pursuers[j].Pos == next {
				alive[j] = false
				at := next
				events = append(events, Event{Type: EventCollision, Actor: ws.Pursuers[j].Type.String(), To: &at})
			}
		}
		from, to := p.Pos, next
		ws.Pursuers[i].Pos = next
		events = append(events, Event{Type: EventMove, Actor: p.Type.String(), From: &from, To: &to})
		if b.Keys[next] {
			ws.ToggleGates(b)
			at := next
			events = append(events, Event{Type: EventToggleGates, Actor: p.Type.String(), To: &at})
		}
	}

	kept := ws.Pursuers[:0]
	for i, p := range ws.Pursuers {
		if alive[i] {
			kept = append(kept, p)
		}
	}
	ws.Pursuers = kept
	return events
}

// SimulatePursuers runs the full pursuer phase composition (fast sub-step,
// fast sub-step, slow step, with a capture check after each) against a
// state whose explorer has already acted. The input state is not modified;
// the returned snapshot is a fresh copy, or nil with captured=true when a
// pursuer reaches the explorer. This is the transition the solver composes
// with an explorer action, and it reproduces the interactive phase engine
// exactly.
func SimulatePursuers(b *Board, ws *WorldState) (*WorldState, bool) {
	next := ws.Clone()
	for _, fast := range [3]bool{true, true, false} {
		subStep(b, next, fast)
		if next.PursuerAt(next.Explorer) {
			return nil, true
		}
	}
	return next, false
}
