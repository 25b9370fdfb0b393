package engine

// Board is the static topology of a level: grid dimensions, permanent walls,
// gate placement, and the special tiles. A Board never changes during a
// session; everything mutable lives in WorldState.
type Board struct {
	Rows int
	Cols int

	// VWalls is Rows x (Cols+1): VWalls[r][c] walls the edge left of cell (r,c).
	// HWalls is (Rows+1) x Cols: HWalls[r][c] walls the edge above cell (r,c).
	VWalls [][]bool
	HWalls [][]bool

	// Gate placement, same indexing as the wall matrices. An edge is never
	// both a wall and a gate.
	VGates [][]bool
	HGates [][]bool

	Exit  Position
	Traps map[Position]bool
	Keys  map[Position]bool
}

// InBounds reports whether the position is a cell of the grid.
func (b *Board) InBounds(p Position) bool {
	return p.Row >= 0 && p.Row < b.Rows && p.Col >= 0 && p.Col < b.Cols
}

// Edge returns the edge crossed when moving from a cell in the given
// direction. The edge always exists; crossing it may still leave the grid.
func (b *Board) Edge(from Position, d Direction) EdgeID {
	switch d {
	case Left:
		return EdgeID{Vertical: true, Row: from.Row, Col: from.Col}
	case Right:
		return EdgeID{Vertical: true, Row: from.Row, Col: from.Col + 1}
	case Up:
		return EdgeID{Vertical: false, Row: from.Row, Col: from.Col}
	}
	return EdgeID{Vertical: false, Row: from.Row + 1, Col: from.Col}
}

// Wall reports whether the edge carries a permanent wall.
func (b *Board) Wall(e EdgeID) bool {
	if e.Vertical {
		return b.VWalls[e.Row][e.Col]
	}
	return b.HWalls[e.Row][e.Col]
}

// Gate reports whether the edge carries a gate.
func (b *Board) Gate(e EdgeID) bool {
	if e.Vertical {
		return b.VGates[e.Row][e.Col]
	}
	return b.HGates[e.Row][e.Col]
}

// Blocked decides whether movement from a cell in the given direction is
// currently forbidden: the target is out of bounds, the edge is a wall, or
// the edge is a gate that is not in the open set. Only the four axis-aligned
// neighbors are ever considered.
func (b *Board) Blocked(open GateSet, from Position, d Direction) bool {
	to := from.Move(d)
	if !b.InBounds(to) {
		return true
	}
	e := b.Edge(from, d)
	if b.Wall(e) {
		return true
	}
	if b.Gate(e) && !open[e] {
		return true
	}
	return false
}

// GateEdges returns every gate edge of the board.
func (b *Board) GateEdges() []EdgeID {
	var edges []EdgeID
	for r := range b.VGates {
		for c, g := range b.VGates[r] {
			if g {
				edges = append(edges, EdgeID{Vertical: true, Row: r, Col: c})
			}
		}
	}
	for r := range b.HGates {
		for c, g := range b.HGates[r] {
			if g {
				edges = append(edges, EdgeID{Vertical: false, Row: r, Col: c})
			}
		}
	}
	return edges
}
