package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrInvalidLevel marks a level description that fails construction-time
// validation. It is fatal: no Game or Board is produced from such input.
var ErrInvalidLevel = errors.New("invalid level")

// LevelConfig is the JSON level description consumed from the board editor.
// Coordinates are [row, col] pairs. Edge matrices follow the board layout:
// v_walls is rows x (cols+1), h_walls is (rows+1) x cols, and the gate
// matrices mirror the wall matrices. Missing matrices default to all false
// with boundary walls forced on.
type LevelConfig struct {
	Name string `json:"name,omitempty"`
	Rows int    `json:"rows"`
	Cols int    `json:"cols"`

	VWalls [][]bool `json:"v_walls,omitempty"`
	HWalls [][]bool `json:"h_walls,omitempty"`
	VGates [][]bool `json:"v_gates,omitempty"`
	HGates [][]bool `json:"h_gates,omitempty"`

	Explorer []int   `json:"explorer"`
	Exit     []int   `json:"exit"`
	FastH    [][]int `json:"fast_h_pursuers,omitempty"`
	FastV    [][]int `json:"fast_v_pursuers,omitempty"`
	Slow     [][]int `json:"slow_pursuers,omitempty"`
	Traps    [][]int `json:"traps,omitempty"`
	Keys     [][]int `json:"keys,omitempty"`

	// GatesOpen sets the initial parity: true starts with every gate open.
	GatesOpen bool `json:"gates_open,omitempty"`
}

// Validate checks dimensions, matrix shapes, entity bounds, boundary walls
// and the wall/gate exclusivity invariant. All failures wrap ErrInvalidLevel.
func (c *LevelConfig) Validate() error {
	if c.Rows <= 0 || c.Cols <= 0 {
		return fmt.Errorf("%w: dimensions %dx%d", ErrInvalidLevel, c.Rows, c.Cols)
	}
	if err := checkMatrix("v_walls", c.VWalls, c.Rows, c.Cols+1); err != nil {
		return err
	}
	if err := checkMatrix("h_walls", c.HWalls, c.Rows+1, c.Cols); err != nil {
		return err
	}
	if err := checkMatrix("v_gates", c.VGates, c.Rows, c.Cols+1); err != nil {
		return err
	}
	if err := checkMatrix("h_gates", c.HGates, c.Rows+1, c.Cols); err != nil {
		return err
	}

	if err := c.checkCell("explorer", c.Explorer); err != nil {
		return err
	}
	if err := c.checkCell("exit", c.Exit); err != nil {
		return err
	}
	for name, list := range map[string][][]int{
		"fast_h_pursuers": c.FastH,
		"fast_v_pursuers": c.FastV,
		"slow_pursuers":   c.Slow,
		"traps":           c.Traps,
		"keys":            c.Keys,
	} {
		for _, rc := range list {
			if err := c.checkCell(name, rc); err != nil {
				return err
			}
		}
	}

	// Gates must stay off the boundary and off wall edges.
	for r, row := range c.VGates {
		for cc, g := range row {
			if !g {
				continue
			}
			if cc == 0 || cc == c.Cols {
				return fmt.Errorf("%w: vertical gate on boundary at (%d,%d)", ErrInvalidLevel, r, cc)
			}
			if len(c.VWalls) > r && c.VWalls[r][cc] {
				return fmt.Errorf("%w: edge (%d,%d) is both wall and gate", ErrInvalidLevel, r, cc)
			}
		}
	}
	for r, row := range c.HGates {
		for cc, g := range row {
			if !g {
				continue
			}
			if r == 0 || r == c.Rows {
				return fmt.Errorf("%w: horizontal gate on boundary at (%d,%d)", ErrInvalidLevel, r, cc)
			}
			if len(c.HWalls) > r && c.HWalls[r][cc] {
				return fmt.Errorf("%w: edge (%d,%d) is both wall and gate", ErrInvalidLevel, r, cc)
			}
		}
	}

	// Special markings are mutually exclusive per cell.
	special := make(map[Position]string)
	mark := func(kind string, list [][]int) error {
		for _, rc := range list {
			p := Position{Row: rc[0], Col: rc[1]}
			if prev, ok := special[p]; ok && prev != kind {
				return fmt.Errorf("%w: cell (%d,%d) marked both %s and %s", ErrInvalidLevel, p.Row, p.Col, prev, kind)
			}
			special[p] = kind
		}
		return nil
	}
	if err := mark("trap", c.Traps); err != nil {
		return err
	}
	if err := mark("key", c.Keys); err != nil {
		return err
	}
	if err := mark("exit", [][]int{c.Exit}); err != nil {
		return err
	}

	return nil
}

func (c *LevelConfig) checkCell(name string, rc []int) error {
	if len(rc) != 2 {
		return fmt.Errorf("%w: %s must be a [row, col] pair", ErrInvalidLevel, name)
	}
	if rc[0] < 0 || rc[0] >= c.Rows || rc[1] < 0 || rc[1] >= c.Cols {
		return fmt.Errorf("%w: %s position (%d,%d) out of bounds", ErrInvalidLevel, name, rc[0], rc[1])
	}
	return nil
}

func checkMatrix(name string, m [][]bool, rows, cols int) error {
	if m == nil {
		return nil
	}
	if len(m) != rows {
		return fmt.Errorf("%w: %s must have %d rows, got %d", ErrInvalidLevel, name, rows, len(m))
	}
	for i, row := range m {
		if len(row) != cols {
			return fmt.Errorf("%w: %s row %d must have %d entries, got %d", ErrInvalidLevel, name, i, cols, len(row))
		}
	}
	return nil
}

// Build constructs the immutable Board and the initial WorldState from a
// validated level description. Boundary edges are forced to walls.
func (c *LevelConfig) Build() (*Board, *WorldState, error) {
	if err := c.Validate(); err != nil {
		return nil, nil, err
	}

	b := &Board{
		Rows:   c.Rows,
		Cols:   c.Cols,
		VWalls: copyOrBlank(c.VWalls, c.Rows, c.Cols+1),
		HWalls: copyOrBlank(c.HWalls, c.Rows+1, c.Cols),
		VGates: copyOrBlank(c.VGates, c.Rows, c.Cols+1),
		HGates: copyOrBlank(c.HGates, c.Rows+1, c.Cols),
		Exit:   Position{Row: c.Exit[0], Col: c.Exit[1]},
		Traps:  cellSet(c.Traps),
		Keys:   cellSet(c.Keys),
	}
	for r := 0; r < b.Rows; r++ {
		b.VWalls[r][0] = true
		b.VWalls[r][b.Cols] = true
	}
	for cc := 0; cc < b.Cols; cc++ {
		b.HWalls[0][cc] = true
		b.HWalls[b.Rows][cc] = true
	}

	ws := &WorldState{
		Explorer:  Position{Row: c.Explorer[0], Col: c.Explorer[1]},
		OpenGates: make(GateSet),
	}
	for _, rc := range c.FastH {
		ws.Pursuers = append(ws.Pursuers, Pursuer{Type: FastHorizontal, Pos: Position{Row: rc[0], Col: rc[1]}})
	}
	for _, rc := range c.FastV {
		ws.Pursuers = append(ws.Pursuers, Pursuer{Type: FastVertical, Pos: Position{Row: rc[0], Col: rc[1]}})
	}
	for _, rc := range c.Slow {
		ws.Pursuers = append(ws.Pursuers, Pursuer{Type: Slow, Pos: Position{Row: rc[0], Col: rc[1]}})
	}
	if c.GatesOpen {
		for _, e := range b.GateEdges() {
			ws.OpenGates[e] = true
		}
	}

	return b, ws, nil
}

func copyOrBlank(m [][]bool, rows, cols int) [][]bool {
	out := make([][]bool, rows)
	for r := range out {
		out[r] = make([]bool, cols)
		if m != nil {
			copy(out[r], m[r])
		}
	}
	return out
}

func cellSet(list [][]int) map[Position]bool {
	out := make(map[Position]bool, len(list))
	for _, rc := range list {
		out[Position{Row: rc[0], Col: rc[1]}] = true
	}
	return out
}

// LoadLevel reads a level description from disk. ".json" files use the
// editor schema; anything else is parsed as the compact ASCII format.
func LoadLevel(path string) (*LevelConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read level %s: %w", path, err)
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		var cfg LevelConfig
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidLevel, path, err)
		}
		if cfg.Name == "" {
			cfg.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		}
		return &cfg, nil
	}
	cfg, err := ParseText(string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	cfg.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return cfg, nil
}
