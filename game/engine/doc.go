// Package engine provides the core simulation for the grid-maze pursuit game.
//
// The engine package implements the game mechanics including:
//   - Edge-based board topology (walls and togglable gates between cells)
//   - Movement legality and edge resolution
//   - The turn/phase state machine (explorer, two fast-pursuer sub-steps,
//     one slow-pursuer step)
//   - Pursuer movement policies and mover-wins collision resolution
//   - Global gate toggling triggered by key tiles
//   - Canonical state keys for memoization and repetition detection
//
// Core Types:
//
// Board holds the immutable topology for a level. WorldState is a mutable
// configuration snapshot (explorer, pursuers, open gates). Game owns the
// single live WorldState of an interactive session and advances it through
// Step (one full turn) or MicroStep (one phase), with UNDO/RESET handled
// via a snapshot stack.
//
// Usage:
//
//	cfg, err := engine.LoadLevel("levels/crypt.json")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	game, err := engine.NewGame(cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	res := game.Step("RIGHT")
//	if res.Done {
//		fmt.Println("won:", res.Won)
//	}
//
// Game Rules:
//
// The explorer moves one cell per turn (or waits) and must reach the exit.
// After the explorer acts, fast pursuers take two steps and slow pursuers
// one, each homing in on the explorer with an axis-priority policy. Walls
// block permanently; gates block while closed and every key tile flips the
// open/closed state of all gates at once. Traps defeat the explorer only;
// a pursuer reaching the explorer's cell captures it.
//
// Everything in this package is pure in-memory computation: no I/O, no
// randomness, no logging. Replaying an action sequence from the same level
// always produces the same outcome.
package engine
