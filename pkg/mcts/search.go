package mcts

import (
	"math"

	"github.com/rs/zerolog/log"

	"github.com/IlikeChooros/gomoku-mcts/pkg/gomoku"
)

type SearchResult struct {
	// Robust child of the root, or a random legal move if the root was
	// never expanded (see Fallback)
	Move    gomoku.Move
	HasMove bool
	// Move was picked at random, because the root had no children
	Fallback bool
	// Completed iterations
	Cycles int
	// Win rate of the chosen child, 0 on fallback
	WinRate    float64
	RootVisits int
	MaxDepth   int
	Size       uint32
	Cps        uint32
	TimeMs     int
	StopReason StopReason
	Pv         []gomoku.Move
}

// This function only sets the limits and resets the counters,
// doesn't actually start the search
func (t *Tree) setupSearch() {
	t.Limiter.Reset()
	t.TreeStats.reset()
}

// Runs the search until one of the limits is reached:
//
// 1. selection - descend by the selection policy to a node with untried moves
//
// 2. expansion - expand one random untried move (if the tree can still grow)
//
// 3. rollout - play a random game from the new node
//
// 4. backpropagate - credit the result up to the root
//
// At least one iteration runs, unless the tree was stopped beforehand or the
// root has nothing to search. Then the robust child is picked.
func (t *Tree) Search() SearchResult {
	t.setupSearch()
	root := &t.nodes[0]

	if !t.Limiter.Stop() && !root.terminal && (len(root.untried) > 0 || len(root.children) > 0) {
		for {
			t.iterate()

			// Increment cycle count and store the cps
			cycles := t.cycles.Add(1)
			t.cps.Store(cyclesPerSecond(cycles, t.Limiter.Elapsed()))
			t.listener.invokeCycle(t)

			if !t.Limiter.Ok(t.Size(), uint32(t.MaxDepth()), cycles) {
				break
			}
		}
	}

	t.Limiter.EvaluateStopReason(t.Size(), uint32(t.MaxDepth()), uint32(t.Cycles()))
	t.listener.invoke(t.listener.onStop, t)

	result := t.result()
	log.Debug().
		Str("move", result.Move.String()).
		Bool("fallback", result.Fallback).
		Int("cycles", result.Cycles).
		Int("root-visits", result.RootVisits).
		Float64("win-rate", result.WinRate).
		Int("max-depth", result.MaxDepth).
		Uint32("size", result.Size).
		Uint32("cps", result.Cps).
		Int("time-ms", result.TimeMs).
		Stringer("stop-reason", result.StopReason).
		Msg("search-done")
	return result
}

// One full iteration: selection, expansion, rollout and backpropagation
func (t *Tree) iterate() {
	id := NodeID(0)
	board := t.nodes[0].board
	depth := int32(0)

	// Selection, the working board follows the chosen path
	for t.nodes[id].FullyExpanded() && len(t.nodes[id].children) > 0 {
		mover := t.nodes[id].mover
		id = t.selectionPolicy(t, id)
		board.Set(t.nodes[id].move, mover)
		depth++
	}

	// Expansion
	if node := &t.nodes[id]; !node.terminal && len(node.untried) > 0 && t.Limiter.Expand() {
		move := node.untried[t.rand.Intn(len(node.untried))]
		board.Set(move, node.mover)
		id = t.Expand(id, move, board)
		depth++
	}

	if depth > t.maxdepth.Load() {
		t.maxdepth.Store(depth)
		t.listener.invoke(t.listener.onDepth, t)
	}

	winner := t.rollout(&board, id)
	t.strategy.Backpropagate(t, id, winner)
}

func (t *Tree) result() SearchResult {
	root := &t.nodes[0]
	result := SearchResult{
		Cycles:     t.Cycles(),
		RootVisits: int(root.visits),
		MaxDepth:   t.MaxDepth(),
		Size:       t.Size(),
		Cps:        t.Cps(),
		TimeMs:     int(t.Limiter.Elapsed()),
		StopReason: t.StopReason(),
	}

	if best := t.BestChild(0, BestChildMostVisits); best != NoNode {
		child := &t.nodes[best]
		result.Move = child.move
		result.HasMove = true
		result.WinRate = child.WinRate()
		result.Pv, _ = t.Pv(best, BestChildMostVisits, true)
		return result
	}

	// Budget too small to expand anything, pick any legal move
	if legal := root.board.LegalMoves(); len(legal) > 0 {
		result.Move = legal[t.rand.Intn(len(legal))]
		result.HasMove = true
		result.Fallback = true
	}
	return result
}

func cyclesPerSecond(cycles, elapsedMs uint32) uint32 {
	cps := uint64(cycles) * 1000 / uint64(max(elapsedMs, 1))
	return uint32(min(cps, math.MaxUint32))
}
