package engine

import (
	"fmt"
	"strings"
)

// ParseText parses the compact ASCII level format. Cells sit on odd lines
// at odd columns; the characters between them describe edges:
//
//	+-+-+-+
//	|P : E|
//	+ +=+ +
//	|K|T .|
//	+-+-+-+
//
// '|' and '-' are walls, ':' and '=' are gates, space is an open edge.
// Cell letters: P explorer, E exit, H fast-horizontal pursuer, V
// fast-vertical pursuer, S slow pursuer, T trap, K key, '.' floor.
// A leading "!open" line starts the level with all gates open.
func ParseText(text string) (*LevelConfig, error) {
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	cfg := &LevelConfig{Explorer: nil, Exit: nil}

	if len(lines) > 0 && strings.TrimSpace(lines[0]) == "!open" {
		cfg.GatesOpen = true
		lines = lines[1:]
	}
	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	if len(lines) < 3 || len(lines)%2 == 0 {
		return nil, fmt.Errorf("%w: ascii level needs 2*rows+1 lines, got %d", ErrInvalidLevel, len(lines))
	}

	rows := (len(lines) - 1) / 2
	cols := (maxLineLen(lines) - 1) / 2
	if cols <= 0 {
		return nil, fmt.Errorf("%w: ascii level has no columns", ErrInvalidLevel)
	}
	cfg.Rows = rows
	cfg.Cols = cols
	cfg.VWalls = blankMatrix(rows, cols+1)
	cfg.HWalls = blankMatrix(rows+1, cols)
	cfg.VGates = blankMatrix(rows, cols+1)
	cfg.HGates = blankMatrix(rows+1, cols)

	at := func(line string, i int) byte {
		if i < len(line) {
			return line[i]
		}
		return ' '
	}

	for r := 0; r <= rows; r++ {
		line := lines[2*r]
		for c := 0; c < cols; c++ {
			switch at(line, 2*c+1) {
			case '-':
				cfg.HWalls[r][c] = true
			case '=':
				cfg.HGates[r][c] = true
			case ' ', '+':
			default:
				return nil, fmt.Errorf("%w: bad horizontal edge %q at line %d", ErrInvalidLevel, at(line, 2*c+1), 2*r)
			}
		}
	}

	for r := 0; r < rows; r++ {
		line := lines[2*r+1]
		for c := 0; c <= cols; c++ {
			switch at(line, 2*c) {
			case '|':
				cfg.VWalls[r][c] = true
			case ':':
				cfg.VGates[r][c] = true
			case ' ':
			default:
				return nil, fmt.Errorf("%w: bad vertical edge %q at line %d", ErrInvalidLevel, at(line, 2*c), 2*r+1)
			}
		}
		for c := 0; c < cols; c++ {
			cell := []int{r, c}
			switch at(line, 2*c+1) {
			case '.', ' ':
			case 'P':
				if cfg.Explorer != nil {
					return nil, fmt.Errorf("%w: multiple explorers", ErrInvalidLevel)
				}
				cfg.Explorer = cell
			case 'E':
				if cfg.Exit != nil {
					return nil, fmt.Errorf("%w: multiple exits", ErrInvalidLevel)
				}
				cfg.Exit = cell
			case 'H':
				cfg.FastH = append(cfg.FastH, cell)
			case 'V':
				cfg.FastV = append(cfg.FastV, cell)
			case 'S':
				cfg.Slow = append(cfg.Slow, cell)
			case 'T':
				cfg.Traps = append(cfg.Traps, cell)
			case 'K':
				cfg.Keys = append(cfg.Keys, cell)
			default:
				return nil, fmt.Errorf("%w: unknown cell %q at (%d,%d)", ErrInvalidLevel, at(line, 2*c+1), r, c)
			}
		}
	}

	if cfg.Explorer == nil {
		return nil, fmt.Errorf("%w: ascii level must place explorer 'P'", ErrInvalidLevel)
	}
	if cfg.Exit == nil {
		return nil, fmt.Errorf("%w: ascii level must place exit 'E'", ErrInvalidLevel)
	}
	return cfg, nil
}

// RenderText draws a board and world state in the same double-resolution
// layout ParseText reads. Closed gates show as ':' or '=', open gates as
// ' '. The explorer and pursuers overlay the static cell markings.
func RenderText(b *Board, ws *WorldState) string {
	occupant := make(map[Position]byte)
	for _, p := range ws.Pursuers {
		switch p.Type {
		case FastHorizontal:
			occupant[p.Pos] = 'H'
		case FastVertical:
			occupant[p.Pos] = 'V'
		case Slow:
			occupant[p.Pos] = 'S'
		}
	}
	occupant[ws.Explorer] = 'P'

	cell := func(r, c int) byte {
		pos := Position{Row: r, Col: c}
		if ch, ok := occupant[pos]; ok {
			return ch
		}
		switch {
		case pos == b.Exit:
			return 'E'
		case b.Traps[pos]:
			return 'T'
		case b.Keys[pos]:
			return 'K'
		}
		return '.'
	}

	hEdge := func(r, c int) byte {
		e := EdgeID{Vertical: false, Row: r, Col: c}
		switch {
		case b.Wall(e):
			return '-'
		case b.Gate(e) && !ws.OpenGates[e]:
			return '='
		}
		return ' '
	}
	vEdge := func(r, c int) byte {
		e := EdgeID{Vertical: true, Row: r, Col: c}
		switch {
		case b.Wall(e):
			return '|'
		case b.Gate(e) && !ws.OpenGates[e]:
			return ':'
		}
		return ' '
	}

	var sb strings.Builder
	for r := 0; r <= b.Rows; r++ {
		for c := 0; c < b.Cols; c++ {
			sb.WriteByte('+')
			sb.WriteByte(hEdge(r, c))
		}
		sb.WriteString("+\n")
		if r == b.Rows {
			break
		}
		for c := 0; c < b.Cols; c++ {
			sb.WriteByte(vEdge(r, c))
			sb.WriteByte(cell(r, c))
		}
		sb.WriteByte(vEdge(r, b.Cols))
		sb.WriteByte('\n')
	}
	return sb.String()
}

func maxLineLen(lines []string) int {
	max := 0
	for _, l := range lines {
		if len(l) > max {
			max = len(l)
		}
	}
	return max
}

func blankMatrix(rows, cols int) [][]bool {
	m := make([][]bool, rows)
	for i := range m {
		m[i] = make([]bool, cols)
	}
	return m
}
