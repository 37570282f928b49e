package mcts

import "sync/atomic"

// Search counters, readable from other goroutines while the search runs
// (listeners, the analysis socket)
type TreeStats struct {
	maxdepth atomic.Int32
	cps      atomic.Uint32
	cycles   atomic.Uint32
	size     atomic.Uint32
}

func (s *TreeStats) reset() {
	s.maxdepth.Store(0)
	s.cps.Store(0)
	s.cycles.Store(0)
}

// Maxiumum depth reached during the search, note that usually MaxDepth != len(pv)
func (s *TreeStats) MaxDepth() int {
	return int(s.maxdepth.Load())
}

// Total number of completed iterations
func (s *TreeStats) Cycles() int {
	return int(s.cycles.Load())
}

// Get cycles per second statistic
func (s *TreeStats) Cps() uint32 {
	return s.cps.Load()
}

// Number of nodes in the tree
func (s *TreeStats) Size() uint32 {
	return s.size.Load()
}
