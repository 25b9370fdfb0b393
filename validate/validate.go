// Command validate provides a small CLI that validates level files in the
// ../levels directory. It checks:
//   - JSON structure / ASCII layout and matrix shapes
//   - Entity bounds and per-cell exclusivity of exit, traps and keys
//   - Gates kept off the boundary and off wall edges
//   - Levels with gates also carry at least one key
//   - Connectivity: the exit is reachable from the explorer through
//     non-wall edges (gates counted as passable, since keys can open them)
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dfreire/gridmaze/game/engine"
)

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

// validateLevel loads and validates a single level file. It runs the
// engine's structural validation, then layers on lint-style checks the
// engine does not enforce.
func validateLevel(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	cfg, err := engine.LoadLevel(filePath)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Failed to load: %v", err))
		return result
	}

	if err := cfg.Validate(); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, err.Error())
		return result
	}

	board, state, err := cfg.Build()
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, err.Error())
		return result
	}

	gates := len(board.GateEdges())
	if gates > 0 && len(cfg.Keys) == 0 {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Level has %d gates but no keys, their state can never change", gates))
	}

	if cfg.Explorer[0] == cfg.Exit[0] && cfg.Explorer[1] == cfg.Exit[1] {
		result.Valid = false
		result.Errors = append(result.Errors, "Explorer starts on the exit")
	}

	for _, rc := range cfg.Traps {
		if rc[0] == cfg.Explorer[0] && rc[1] == cfg.Explorer[1] {
			result.Valid = false
			result.Errors = append(result.Errors, fmt.Sprintf("Explorer starts on a trap at (%d,%d)", rc[0], rc[1]))
		}
	}

	if result.Valid {
		connectivity := validateConnectivity(board, state)
		result.Valid = connectivity.Valid
		result.Errors = append(result.Errors, connectivity.Errors...)
	}

	if result.Valid {
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Name: %s", cfg.Name))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Grid: %dx%d", cfg.Rows, cfg.Cols))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Pursuers: %d", len(cfg.FastH)+len(cfg.FastV)+len(cfg.Slow)))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Traps: %d, Keys: %d, Gates: %d", len(cfg.Traps), len(cfg.Keys), gates))
	}

	return result
}

// validateConnectivity flood-fills from the explorer over non-wall edges
// and checks that the exit and every key are reachable. Closed gates are
// treated as passable because a key toggle can open them; walls are
// permanent.
func validateConnectivity(board *engine.Board, state *engine.WorldState) ValidationResult {
	result := ValidationResult{Valid: true, Errors: []string{}}

	// Open every gate so Blocked only reports walls.
	allOpen := make(engine.GateSet)
	for _, e := range board.GateEdges() {
		allOpen[e] = true
	}

	visited := make(map[engine.Position]bool)
	queue := []engine.Position{state.Explorer}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if visited[cur] {
			continue
		}
		visited[cur] = true

		for _, d := range []engine.Direction{engine.Up, engine.Down, engine.Left, engine.Right} {
			if board.Blocked(allOpen, cur, d) {
				continue
			}
			next := cur.Move(d)
			if !visited[next] {
				queue = append(queue, next)
			}
		}
	}

	if !visited[board.Exit] {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Connectivity failure: exit (%d,%d) is walled off from the explorer", board.Exit.Row, board.Exit.Col))
	}

	unreachableKeys := 0
	for key := range board.Keys {
		if !visited[key] {
			unreachableKeys++
			result.Errors = append(result.Errors, fmt.Sprintf("Unreachable key at (%d,%d)", key.Row, key.Col))
		}
	}
	if unreachableKeys > 0 {
		result.Valid = false
	}

	if result.Valid {
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Connectivity: exit and all %d keys reachable", len(board.Keys)))
	}

	return result
}

// main scans ../levels for level files and validates each one, printing a
// concise report and exiting with non-zero status if any are invalid.
func main() {
	levelDir := "../levels"
	if len(os.Args) > 1 {
		levelDir = os.Args[1]
	}

	var files []string
	for _, pattern := range []string{"*.json", "*.txt"} {
		matches, err := filepath.Glob(filepath.Join(levelDir, pattern))
		if err != nil {
			fmt.Printf("Error finding level files: %v\n", err)
			os.Exit(1)
		}
		files = append(files, matches...)
	}

	allValid := true
	for _, file := range files {
		result := validateLevel(file)

		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Errors {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				if !strings.HasPrefix(err, "✓") {
					fmt.Println("  ❌ " + err)
				}
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All levels are valid!")
	} else {
		fmt.Println("❌ Some levels have errors")
		os.Exit(1)
	}
}
