// Command analyze prints quick, human-readable heuristics about the level
// files in the project's levels directory. It summarizes dimensions, entity
// counts, wall and gate density, and runs the solver against each level to
// report whether it is winnable and in how many moves.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dfreire/gridmaze/game/engine"
	"github.com/dfreire/gridmaze/game/solver"
)

func main() {
	levelDir := flag.String("levels", "levels", "directory containing level files")
	budget := flag.Int("budget", solver.DefaultBudget, "solver expansion budget")
	flag.Parse()

	paths := flag.Args()
	if len(paths) == 0 {
		var err error
		paths, err = levelFiles(*levelDir)
		if err != nil {
			fmt.Printf("Error finding level files: %v\n", err)
			os.Exit(1)
		}
	}

	for _, path := range paths {
		fmt.Printf("\n=== Analyzing %s ===\n", filepath.Base(path))
		analyzeLevel(path, *budget)
	}
}

func levelFiles(dir string) ([]string, error) {
	var paths []string
	for _, pattern := range []string{"*.json", "*.txt"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, err
		}
		paths = append(paths, matches...)
	}
	return paths, nil
}

func analyzeLevel(path string, budget int) {
	cfg, err := engine.LoadLevel(path)
	if err != nil {
		fmt.Printf("Error loading level: %v\n", err)
		return
	}

	board, state, err := cfg.Build()
	if err != nil {
		fmt.Printf("Error building level: %v\n", err)
		return
	}

	fmt.Printf("Name: %s\n", cfg.Name)
	fmt.Printf("Grid: %d x %d\n", cfg.Rows, cfg.Cols)
	fmt.Printf("Explorer: (%d, %d)  Exit: (%d, %d)\n",
		cfg.Explorer[0], cfg.Explorer[1], cfg.Exit[0], cfg.Exit[1])
	fmt.Printf("Pursuers: %d fast-horizontal, %d fast-vertical, %d slow\n",
		len(cfg.FastH), len(cfg.FastV), len(cfg.Slow))
	fmt.Printf("Traps: %d  Keys: %d\n", len(cfg.Traps), len(cfg.Keys))

	walls := countSet(board.VWalls) + countSet(board.HWalls)
	gates := len(board.GateEdges())
	totalEdges := cfg.Rows*(cfg.Cols+1) + (cfg.Rows+1)*cfg.Cols
	fmt.Printf("Walls: %d of %d edges  Gates: %d\n", walls, totalEdges, gates)

	if gates > 0 && len(cfg.Keys) == 0 {
		fmt.Printf("⚠️  WARNING: level has gates but no keys, their state can never change\n")
	}

	fmt.Println()
	fmt.Print(engine.RenderText(board, state))

	res, err := solver.Solve(board, state, budget)
	switch {
	case err == nil:
		fmt.Printf("✅ Solvable in %d moves (%d states expanded)\n", len(res.Actions), res.Expanded)
		fmt.Printf("   %s\n", strings.Join(res.Actions, " "))
	case err == solver.ErrNoSolution:
		fmt.Printf("❌ No solution exists\n")
	case err == solver.ErrBudgetExceeded:
		fmt.Printf("⚠️  Solver budget of %d expansions exceeded, winnability unknown\n", budget)
	default:
		fmt.Printf("Error solving: %v\n", err)
	}
}

func countSet(m [][]bool) int {
	n := 0
	for _, row := range m {
		for _, set := range row {
			if set {
				n++
			}
		}
	}
	return n
}
