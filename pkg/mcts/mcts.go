package mcts

import (
	"context"
	"fmt"
	"math/rand"
	"slices"
	"unsafe"

	"github.com/IlikeChooros/gomoku-mcts/pkg/gomoku"
)

// Search tree over gomoku positions. All nodes live in a single arena owned
// by the tree, node 0 is the root. A Tree is built for one search and is not
// safe for concurrent use, apart from the stats getters and Stop.
type Tree struct {
	TreeStats
	Limiter         LimiterLike
	nodes           []Node
	side            gomoku.Cell
	listener        *StatsListener
	selectionPolicy SelectionPolicy
	strategy        StrategyLike
	rand            *rand.Rand
	frontier        *gomoku.Frontier
}

// Create a new tree rooted at 'board', searching for 'side' (the player to
// move at the root)
func NewTree(board gomoku.Board, side gomoku.Cell) *Tree {
	listener := NewStatsListener()
	tree := &Tree{
		Limiter:         NewLimiter(approxNodeSize),
		nodes:           make([]Node, 0, 1024),
		side:            side,
		listener:        &listener,
		selectionPolicy: UCB1,
		strategy:        FixedSideReward{},
		rand:            rand.New(rand.NewSource(SeedGeneratorFn())),
		frontier:        gomoku.NewFrontier(&board),
	}

	tree.nodes = append(tree.nodes, newNode(board, side, gomoku.Move{}, NoNode))
	tree.size.Store(1)
	return tree
}

// Reseed the tree's random number generator, used by expansion, rollouts
// and the empty root fallback
func (t *Tree) Seed(seed int64) {
	t.rand.Seed(seed)
}

func (t *Tree) SetListener(listener StatsListener) {
	*t.listener = listener
}

func (t *Tree) StatsListener() *StatsListener {
	return t.listener
}

func (t *Tree) SetSelectionPolicy(policy SelectionPolicy) {
	if policy != nil {
		t.selectionPolicy = policy
	}
}

func (t *Tree) SetStrategy(strategy StrategyLike) {
	if strategy != nil {
		t.strategy = strategy
	}
}

func (t *Tree) Strategy() StrategyLike {
	return t.strategy
}

// Adds custom context to the limiter, enabling cancellation through it
//
// Example:
//
//	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
//	defer cancel()
//
//	tree.SetContext(ctx)
//	tree.Search()
func (t *Tree) SetContext(ctx context.Context) {
	t.Limiter.SetContext(ctx)
}

func (t *Tree) SetLimits(limits *Limits) {
	t.Limiter.SetLimits(limits)
}

func (t *Tree) Limits() *Limits {
	return t.Limiter.Limits()
}

// Stop the search, if called before Search, no iteration will run
func (t *Tree) Stop() {
	t.Limiter.SetStop(true)
}

// Get the reason why the search was stopped, valid after search ends
func (t *Tree) StopReason() StopReason {
	return t.Limiter.StopReason()
}

// Side the tree searches for
func (t *Tree) Side() gomoku.Cell {
	return t.side
}

func (t *Tree) Root() NodeID {
	return 0
}

// Get the node by id, the pointer is valid until the next expansion
func (t *Tree) Node(id NodeID) *Node {
	return &t.nodes[id]
}

// Returns approximation of memory usage of the tree structure
func (t *Tree) MemoryUsage() uint64 {
	return uint64(t.Size())*uint64(approxNodeSize) + uint64(unsafe.Sizeof(Tree{}))
}

func (t *Tree) String() string {
	root := &t.nodes[0]
	return fmt.Sprintf("Tree={Size=%d, Stats:{maxdepth=%d, cps=%d, cycles=%d}, Side=%v, Root=%v}",
		t.Size(), t.MaxDepth(), t.Cps(), t.Cycles(), t.side, root)
}

// 'the best move' in the position, false if the root has no children
func (t *Tree) RootMove() (gomoku.Move, bool) {
	if best := t.BestChild(0, BestChildMostVisits); best != NoNode {
		return t.nodes[best].move, true
	}
	return gomoku.Move{}, false
}

// Current evaluation of the position, win rate of the robust child
func (t *Tree) RootScore() float64 {
	if best := t.BestChild(0, BestChildMostVisits); best != NoNode {
		return t.nodes[best].WinRate()
	}
	return 0
}

// Return best child of 'id' based on the policy, NoNode if there is none.
// Ties keep the child created first.
func (t *Tree) BestChild(id NodeID, policy BestChildPolicy) NodeID {
	node := &t.nodes[id]
	best := NoNode

	switch policy {
	case BestChildMostVisits:
		maxVisits := int32(0)
		for _, child := range node.children {
			if v := t.nodes[child].visits; v > maxVisits {
				maxVisits = v
				best = child
			}
		}
	case BestChildWinRate:
		// Avoid picking a lucky child with just a few samples
		const minVisitsThreshold = 10

		bestWinRate := -1.0
		for _, child := range node.children {
			c := &t.nodes[child]
			if c.visits > minVisitsThreshold && c.WinRate() > bestWinRate {
				bestWinRate = c.WinRate()
				best = child
			}
		}

		if best == NoNode {
			return t.BestChild(id, BestChildMostVisits)
		}
	}

	return best
}

type PvResult struct {
	Root     NodeID
	Pv       []gomoku.Move
	Terminal bool
}

// Returns 'MultiPv' best move lines, specified in the limits, ordered by
// visit count of the first move
func (t *Tree) MultiPv(policy BestChildPolicy) []PvResult {
	pvCount := max(t.Limiter.Limits().MultiPv, 1)
	rootNodes := slices.Clone(t.nodes[0].children)

	slices.SortStableFunc(rootNodes, func(a, b NodeID) int {
		return int(t.nodes[b].visits) - int(t.nodes[a].visits)
	})

	multipv := make([]PvResult, 0, min(pvCount, len(rootNodes)))
	for i := 0; i < pvCount && i < len(rootNodes); i++ {
		pv, terminal := t.Pv(rootNodes[i], policy, true)
		multipv = append(multipv, PvResult{
			Root:     rootNodes[i],
			Pv:       pv,
			Terminal: terminal,
		})
	}

	return multipv
}

// Get the principal variation (ie. the best sequence of nodes) from given
// starting 'root' node, based on given best child policy. The bool is true
// if the line ends with a winning move.
func (t *Tree) PvNodes(root NodeID, policy BestChildPolicy, includeRoot bool) ([]NodeID, bool) {
	pv := make([]NodeID, 0, t.MaxDepth()+1)
	if includeRoot {
		pv = append(pv, root)
	}

	node := root
	for len(t.nodes[node].children) > 0 {
		node = t.BestChild(node, policy)
		if node == NoNode {
			break
		}
		pv = append(pv, node)
	}

	last := root
	if len(pv) > 0 {
		last = pv[len(pv)-1]
	}
	return pv, t.nodes[last].terminal
}

// Get the principal variation, but only the moves
func (t *Tree) Pv(root NodeID, policy BestChildPolicy, includeRoot bool) ([]gomoku.Move, bool) {
	nodes, terminal := t.PvNodes(root, policy, includeRoot)
	pv := make([]gomoku.Move, len(nodes))
	for i, id := range nodes {
		pv[i] = t.nodes[id].move
	}
	return pv, terminal
}
