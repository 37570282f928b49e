package mcts

import "github.com/IlikeChooros/gomoku-mcts/pkg/gomoku"

type SearchLine struct {
	BestMove gomoku.Move
	Moves    []gomoku.Move
	Eval     float64
	Visits   int
	Terminal bool
}

type ListenerTreeStats struct {
	Maxdepth   int
	Cycles     int
	TimeMs     int
	Cps        uint32
	Size       uint32
	Lines      []SearchLine
	StopReason StopReason
}

// Convert tree statistics to 'ListenerTreeStats' struct
func toListenerStats(tree *Tree) ListenerTreeStats {
	pv := tree.MultiPv(BestChildMostVisits)
	lines := make([]SearchLine, len(pv))
	for i := range pv {
		root := tree.Node(pv[i].Root)
		lines[i] = SearchLine{
			BestMove: root.Move(),
			Moves:    pv[i].Pv,
			Eval:     root.WinRate(),
			Visits:   int(root.Visits()),
			Terminal: pv[i].Terminal,
		}
	}

	return ListenerTreeStats{
		Lines:      lines,
		Maxdepth:   tree.MaxDepth(),
		Cycles:     tree.Cycles(),
		TimeMs:     int(tree.Limiter.Elapsed()),
		Cps:        tree.Cps(),
		Size:       tree.Size(),
		StopReason: tree.Limiter.StopReason(),
	}
}

// Listener function callback, will recieve current tree statistics, like
// max depth of tree, number of iterations so far
type ListenerFunc func(ListenerTreeStats)

type StatsListener struct {
	// called when 'max depth' increases, receives new max depth
	onDepth ListenerFunc

	// called every N full iterations, receives total number of cycles
	onCycle ListenerFunc
	nCycles int // call 'onCycle' every N cycles

	// called when the search stops
	onStop ListenerFunc
}

func NewStatsListener() StatsListener {
	return StatsListener{nCycles: 1}
}

// Attach new on max depth change callback, called by the search goroutine
func (listener *StatsListener) OnDepth(onDepth ListenerFunc) *StatsListener {
	listener.onDepth = onDepth
	return listener
}

// Attach new on iteration increase callback, this will slow down the search
// when the interval is small, because of pv evaluation
func (listener *StatsListener) OnCycle(onCycle ListenerFunc) *StatsListener {
	listener.onCycle = onCycle
	return listener
}

func (listener *StatsListener) SetCycleInterval(n int) *StatsListener {
	if n < 1 {
		n = 1
	}
	listener.nCycles = n
	return listener
}

// Attach 'on search end' callback, called once, makes 'StopReason' available in the stats
func (listener *StatsListener) OnStop(onStop ListenerFunc) *StatsListener {
	listener.onStop = onStop
	return listener
}

func (listener *StatsListener) invokeCycle(tree *Tree) {
	if listener.onCycle != nil && tree.Cycles()%max(listener.nCycles, 1) == 0 {
		listener.onCycle(toListenerStats(tree))
	}
}

func (listener *StatsListener) invoke(f ListenerFunc, tree *Tree) {
	if f != nil {
		f(toListenerStats(tree))
	}
}
