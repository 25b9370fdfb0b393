// Package solver finds guaranteed winning action sequences with best-first
// search over the canonical state graph of a level.
//
// The solver never touches the interactive step API: it composes one
// explorer action with engine.SimulatePursuers, which reproduces the live
// phase engine exactly, and deduplicates states by their canonical key.
package solver

import (
	"container/heap"
	"errors"

	"github.com/dfreire/gridmaze/game/engine"
)

// DefaultBudget is the expansion ceiling used when the caller passes a
// non-positive budget.
const DefaultBudget = 200000

var (
	// ErrNoSolution means the reachable state space was exhausted without
	// a win: the level is unsolvable from its initial state.
	ErrNoSolution = errors.New("no solution")
	// ErrBudgetExceeded means the search stopped at the expansion ceiling.
	// It is not a proof of unsolvability.
	ErrBudgetExceeded = errors.New("expansion budget exceeded")
)

// Result is a winning action sequence together with search statistics.
type Result struct {
	Actions  []string `json:"actions"`
	Expanded int      `json:"expanded"`
}

// node is an open-list entry. Priority is f = g + heuristic; g breaks ties
// so shallower states are preferred among equal f.
type node struct {
	f     int
	g     int
	key   string
	state *engine.WorldState
}

type openHeap []node

func (h openHeap) Len() int { return len(h) }
func (h openHeap) Less(i, j int) bool {
	if h[i].f != h[j].f {
		return h[i].f < h[j].f
	}
	return h[i].g < h[j].g
}
func (h openHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *openHeap) Push(x any)   { *h = append(*h, x.(node)) }
func (h *openHeap) Pop() any {
	old := *h
	n := old[len(old)-1]
	*h = old[:len(old)-1]
	return n
}

type cameFrom struct {
	prev   string
	action engine.Action
}

// SolveLevel builds the board from a level description and runs Solve.
func SolveLevel(cfg *engine.LevelConfig, budget int) (*Result, error) {
	board, start, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return Solve(board, start, budget)
}

// Solve runs A* from the given world state and returns a shortest winning
// action sequence, ErrNoSolution when the open set is exhausted, or
// ErrBudgetExceeded when the expansion ceiling is hit. The heuristic is the
// explorer's Manhattan distance to the exit, which is admissible: it
// ignores obstacles and the exit never moves.
func Solve(b *engine.Board, start *engine.WorldState, budget int) (*Result, error) {
	if budget <= 0 {
		budget = DefaultBudget
	}

	startKey := start.Key()
	gScore := map[string]int{startKey: 0}
	parents := make(map[string]cameFrom)

	open := &openHeap{{f: start.Explorer.Manhattan(b.Exit), g: 0, key: startKey, state: start.Clone()}}
	heap.Init(open)

	expanded := 0
	for open.Len() > 0 {
		cur := heap.Pop(open).(node)
		if best, ok := gScore[cur.key]; !ok || cur.g != best {
			continue // stale entry superseded by a cheaper path
		}
		if cur.state.Explorer == b.Exit {
			return &Result{Actions: rebuild(parents, cur.key), Expanded: expanded}, nil
		}
		if expanded >= budget {
			return nil, ErrBudgetExceeded
		}
		expanded++

		for _, a := range engine.MoveActions {
			dest := cur.state.Explorer
			moved := false
			if d, ok := engine.DirectionOf(a); ok {
				if b.Blocked(cur.state.OpenGates, cur.state.Explorer, d) {
					continue
				}
				dest = cur.state.Explorer.Move(d)
				moved = true
				if b.Traps[dest] || cur.state.PursuerAt(dest) {
					continue
				}
				if dest == b.Exit {
					// Immediate win: the explorer reaches the exit before
					// pursuers move, so no simulation is needed.
					actions := rebuild(parents, cur.key)
					actions = append(actions, string(a))
					return &Result{Actions: actions, Expanded: expanded}, nil
				}
			}

			next := cur.state.Clone()
			next.Explorer = dest
			if moved && b.Keys[dest] {
				next.ToggleGates(b)
			}
			after, captured := engine.SimulatePursuers(b, next)
			if captured {
				continue
			}

			key := after.Key()
			tentative := cur.g + 1
			if best, ok := gScore[key]; ok && tentative >= best {
				continue
			}
			gScore[key] = tentative
			parents[key] = cameFrom{prev: cur.key, action: a}
			heap.Push(open, node{
				f:     tentative + after.Explorer.Manhattan(b.Exit),
				g:     tentative,
				key:   key,
				state: after,
			})
		}
	}

	return nil, ErrNoSolution
}

func rebuild(parents map[string]cameFrom, key string) []string {
	var actions []string
	for {
		p, ok := parents[key]
		if !ok {
			break
		}
		actions = append(actions, string(p.action))
		key = p.prev
	}
	for i, j := 0, len(actions)-1; i < j; i, j = i+1, j-1 {
		actions[i], actions[j] = actions[j], actions[i]
	}
	return actions
}
