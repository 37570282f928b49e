package mcts

import (
	"math"
	"time"

	"github.com/IlikeChooros/gomoku-mcts/pkg/gomoku"
)

// Exploration parameter used in UCB1 formula, fixed to the theoretical sqrt(2)
const ExplorationParam float64 = math.Sqrt2

// Maximum number of plies in a single rollout, a game cannot last longer
// than the number of cells
const RolloutPlyCap = gomoku.NumCells

var SeedGeneratorFn SeedGeneratorFnType = func() int64 {
	return time.Now().UnixNano()
}

// Set custom seed generator function for random number generators in MCTS,
// by default uses current time in nanoseconds
func SetSeedGeneratorFn(f SeedGeneratorFnType) {
	if f != nil {
		SeedGeneratorFn = f
	}
}

const (
	// When choosing the best child, choose the one with most visits,
	// this is the go-to method for MCTS (robust child)
	BestChildMostVisits BestChildPolicy = iota

	// Experimental: choose the child with the best win rate
	BestChildWinRate
)
