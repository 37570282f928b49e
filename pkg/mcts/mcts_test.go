package mcts

import (
	"context"
	"fmt"
	"math"
	"os"
	"testing"

	"github.com/IlikeChooros/gomoku-mcts/pkg/gomoku"
)

func TestMain(m *testing.M) {
	SetSeedGeneratorFn(func() int64 {
		return 42
	})
	fmt.Printf("Using seed %d\n", SeedGeneratorFn())

	os.Exit(m.Run())
}

func place(b *gomoku.Board, c gomoku.Cell, moves ...gomoku.Move) {
	for _, m := range moves {
		b.Set(m, c)
	}
}

// Full board without any five in a row, except for the 'hole' cell
func fullBoardWithHole(hole gomoku.Move) gomoku.Board {
	var b gomoku.Board
	for row := 0; row < gomoku.Size; row++ {
		for col := 0; col < gomoku.Size; col++ {
			c := gomoku.X
			if (col/2+row)%2 == 1 {
				c = gomoku.O
			}
			b.Set(gomoku.NewMove(row, col), c)
		}
	}
	b.Remove(hole)
	return b
}

func centreTree() *Tree {
	var b gomoku.Board
	b.Set(gomoku.Center, gomoku.X)
	return NewTree(b, gomoku.O)
}

// Expand the first untried move of 'id'
func expandFirst(tree *Tree, id NodeID) NodeID {
	node := tree.Node(id)
	move := node.Untried()[0]
	return tree.Expand(id, move, node.Board().Apply(move, node.Mover()))
}

// Tests of the node & selection policy

func TestUCB1PrefersUnvisited(t *testing.T) {
	tree := centreTree()
	root := tree.Root()
	first := expandFirst(tree, root)
	second := expandFirst(tree, root)

	// The visited child has a perfect record, still the unvisited one must win
	for range 10 {
		tree.Node(first).Update(1)
		tree.Node(root).Update(1)
	}

	if got := UCB1(tree, root); got != second {
		t.Errorf("UCB1=%d, want unvisited child %d", got, second)
	}

	if score := tree.Node(second).UCB(math.Log(10)); !math.IsInf(score, 1) {
		t.Errorf("Unvisited UCB=%v, want +Inf", score)
	}

	for range 10 {
		tree.Node(second).Update(0)
		tree.Node(root).Update(0)
	}
	if got := UCB1(tree, root); got != first {
		t.Errorf("UCB1=%d, want better child %d", got, first)
	}
}

func TestUCB1TieKeepsFirst(t *testing.T) {
	tree := centreTree()
	root := tree.Root()

	children := make([]NodeID, 3)
	for i := range children {
		children[i] = expandFirst(tree, root)
		tree.Node(children[i]).Update(1)
		tree.Node(root).Update(1)
	}

	if got := UCB1(tree, root); got != children[0] {
		t.Errorf("UCB1=%d, want first child %d", got, children[0])
	}
}

func TestUCBUnvisitedParent(t *testing.T) {
	tree := centreTree()
	root := tree.Root()
	child := expandFirst(tree, root)
	tree.Node(child).Update(0)

	// ln(0) must not leak into the score
	if got := UCB1(tree, root); got != child {
		t.Errorf("UCB1=%d, want=%d", got, child)
	}
	if score := tree.Node(child).UCB(0); math.IsNaN(score) {
		t.Error("UCB should not be NaN")
	}
}

func TestExpand(t *testing.T) {
	tree := centreTree()
	root := tree.Root()
	before := len(tree.Node(root).Untried())

	move := gomoku.NewMove(6, 6)
	board := tree.Node(root).Board().Apply(move, gomoku.O)
	child := tree.Expand(root, move, board)

	if n := len(tree.Node(root).Untried()); n != before-1 {
		t.Errorf("Untried=%d, want=%d", n, before-1)
	}
	for _, m := range tree.Node(root).Untried() {
		if m == move {
			t.Fatalf("Expanded move %v still untried", move)
		}
	}

	node := tree.Node(child)
	if node.Mover() != gomoku.X {
		t.Errorf("Child mover=%v, want=%v", node.Mover(), gomoku.X)
	}
	if node.Parent() != root || node.Move() != move {
		t.Errorf("Child parent=%d move=%v, want parent=%d move=%v", node.Parent(), node.Move(), root, move)
	}
	if tree.Size() != 2 {
		t.Errorf("Size=%d, want=2", tree.Size())
	}

	// The child owns its board
	board.Set(gomoku.NewMove(0, 0), gomoku.X)
	if b := node.Board(); b.At(gomoku.NewMove(0, 0)) != gomoku.Empty {
		t.Error("Child board should be a copy")
	}
}

func TestExpandPanicsOnTriedMove(t *testing.T) {
	tree := centreTree()
	root := tree.Root()
	move := gomoku.NewMove(6, 6)
	board := tree.Node(root).Board().Apply(move, gomoku.O)
	tree.Expand(root, move, board)

	defer func() {
		if recover() == nil {
			t.Error("Expanding an already tried move should panic")
		}
	}()
	tree.Expand(root, move, board)
}

func TestTerminalNode(t *testing.T) {
	var b gomoku.Board
	place(&b, gomoku.X, gomoku.NewMove(7, 3), gomoku.NewMove(7, 4), gomoku.NewMove(7, 5), gomoku.NewMove(7, 6))
	place(&b, gomoku.O, gomoku.NewMove(0, 0), gomoku.NewMove(0, 1), gomoku.NewMove(0, 2), gomoku.NewMove(0, 3))

	tree := NewTree(b, gomoku.X)
	move := gomoku.NewMove(7, 7)
	child := tree.Expand(tree.Root(), move, b.Apply(move, gomoku.X))

	node := tree.Node(child)
	if !node.Terminal() || len(node.Untried()) != 0 {
		t.Errorf("Winning child should be terminal with no untried moves, got %v", node)
	}

	board := node.Board()
	if winner := tree.rollout(&board, child); winner != gomoku.X {
		t.Errorf("Rollout winner=%v, want=%v", winner, gomoku.X)
	}
}

// Tests checking if the search is working correctly

func TestSearchRootVisitAccounting(t *testing.T) {
	tree := centreTree()
	tree.SetLimits(DefaultLimits().SetCycles(500))
	result := tree.Search()

	if result.Cycles != 500 {
		t.Errorf("Cycles=%d, want=500", result.Cycles)
	}

	root := tree.Node(tree.Root())
	if int(root.Visits()) != result.Cycles || result.RootVisits != result.Cycles {
		t.Errorf("Root visits=%d, result=%d, want=%d", root.Visits(), result.RootVisits, result.Cycles)
	}

	sum := int32(0)
	for _, child := range root.Children() {
		sum += tree.Node(child).Visits()
	}
	if sum != root.Visits() {
		t.Errorf("Sum of child visits=%d, want root visits=%d", sum, root.Visits())
	}

	if !result.HasMove || result.Fallback {
		t.Errorf("Expected a searched move, got %+v", result)
	}
	if result.WinRate < 0 || result.WinRate > 1 {
		t.Errorf("WinRate=%v, want in [0,1]", result.WinRate)
	}
	t.Logf("move %v eval %.2f cps %d depth %d pv %v", result.Move, result.WinRate, result.Cps, result.MaxDepth, result.Pv)
}

func TestSearchRobustChild(t *testing.T) {
	tree := centreTree()
	tree.SetLimits(DefaultLimits().SetCycles(2000))
	result := tree.Search()

	best := NoNode
	for _, child := range tree.Node(tree.Root()).Children() {
		if best == NoNode || tree.Node(child).Visits() > tree.Node(best).Visits() {
			best = child
		}
	}

	if result.Move != tree.Node(best).Move() {
		t.Errorf("Move=%v, want most visited %v", result.Move, tree.Node(best).Move())
	}
	if move, ok := tree.RootMove(); !ok || move != result.Move {
		t.Errorf("RootMove=%v, want=%v", move, result.Move)
	}
}

func TestSearchFindsWin(t *testing.T) {
	var b gomoku.Board
	place(&b, gomoku.X, gomoku.NewMove(7, 5), gomoku.NewMove(7, 6), gomoku.NewMove(7, 7), gomoku.NewMove(7, 8))
	place(&b, gomoku.O, gomoku.NewMove(6, 5), gomoku.NewMove(6, 6), gomoku.NewMove(8, 7), gomoku.NewMove(8, 8))

	tree := NewTree(b, gomoku.X)
	tree.SetLimits(DefaultLimits().SetCycles(5000))
	result := tree.Search()

	if result.Move != gomoku.NewMove(7, 4) && result.Move != gomoku.NewMove(7, 9) {
		t.Errorf("Move=%v, want a winning move", result.Move)
	}

	if pv, terminal := tree.Pv(tree.Root(), BestChildMostVisits, false); !terminal || len(pv) != 1 {
		t.Errorf("Pv=%v terminal=%v, want a single winning move", pv, terminal)
	}
}

func TestSearchSingleLegalMove(t *testing.T) {
	hole := gomoku.NewMove(7, 7)
	board := fullBoardWithHole(hole)
	if winner := gomoku.Winner(&board); winner != gomoku.Empty {
		t.Fatalf("Test board already has a winner %v", winner)
	}

	for _, movetime := range []int{0, 10} {
		tree := NewTree(board, gomoku.X)
		tree.SetLimits(DefaultLimits().SetMovetime(movetime))
		result := tree.Search()

		if result.Move != hole || result.Fallback {
			t.Errorf("movetime=%d: Move=%v fallback=%v, want=%v", movetime, result.Move, result.Fallback, hole)
		}
		if result.Cycles < 1 {
			t.Errorf("movetime=%d: Cycles=%d, want at least 1", movetime, result.Cycles)
		}
	}
}

func TestSearchStoppedFallback(t *testing.T) {
	tree := centreTree()
	tree.Stop()
	result := tree.Search()

	if result.Cycles != 0 || tree.Size() != 1 {
		t.Errorf("Stopped tree should not search, cycles=%d size=%d", result.Cycles, tree.Size())
	}
	if !result.HasMove || !result.Fallback {
		t.Fatalf("Expected a fallback move, got %+v", result)
	}

	board := tree.Node(tree.Root()).Board()
	if !board.IsLegal(result.Move) {
		t.Errorf("Fallback move %v is not legal", result.Move)
	}
	if result.WinRate != 0 {
		t.Errorf("Fallback WinRate=%v, want=0", result.WinRate)
	}
	if result.StopReason != StopInterrupt {
		t.Errorf("StopReason=%v, want=%v", result.StopReason, StopInterrupt)
	}
}

func TestSearchCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tree := centreTree()
	tree.SetContext(ctx)
	result := tree.Search()

	if result.Cycles != 0 || !result.Fallback {
		t.Errorf("Canceled search should fall back, got %+v", result)
	}
}

func TestSearchNoLegalMoves(t *testing.T) {
	tree := NewTree(gomoku.Board{}, gomoku.X)
	tree.SetLimits(DefaultLimits().SetCycles(10))
	result := tree.Search()

	if result.HasMove || result.Cycles != 0 {
		t.Errorf("Empty board has no legal moves, got %+v", result)
	}
}

func TestSearchMemoryLimit(t *testing.T) {
	tree := centreTree()
	tree.SetLimits(DefaultLimits().SetCycles(300).SetByteSize(int64(approxNodeSize) * 20))
	result := tree.Search()

	if result.Cycles != 300 {
		t.Errorf("Cycles=%d, want=300", result.Cycles)
	}
	if tree.Size() > 21 {
		t.Errorf("Size=%d, the tree should stop growing around 20 nodes", tree.Size())
	}
}

func TestSearchWithListener(t *testing.T) {
	tree := centreTree()
	tree.SetLimits(DefaultLimits().SetCycles(1000).SetMultiPv(3))

	depthCalls, cycleCalls, stopCalls := 0, 0, 0
	listener := NewStatsListener()
	listener.
		OnDepth(func(stats ListenerTreeStats) {
			depthCalls++
			mainLine := stats.Lines[0]
			t.Logf("depth %d cycle %d cps %d eval %.2f pv %v", stats.Maxdepth, stats.Cycles, stats.Cps, mainLine.Eval, mainLine.Moves)
		}).
		OnCycle(func(stats ListenerTreeStats) {
			cycleCalls++
		}).
		SetCycleInterval(100).
		OnStop(func(stats ListenerTreeStats) {
			stopCalls++
			if len(stats.Lines) != 3 {
				t.Errorf("Lines=%d, want=3", len(stats.Lines))
			}
			if stats.StopReason != StopCycles {
				t.Errorf("StopReason=%v, want=%v", stats.StopReason, StopCycles)
			}
		})
	tree.SetListener(listener)
	tree.Search()

	if depthCalls == 0 {
		t.Error("OnDepth was never called")
	}
	if cycleCalls != 10 {
		t.Errorf("OnCycle calls=%d, want=10", cycleCalls)
	}
	if stopCalls != 1 {
		t.Errorf("OnStop calls=%d, want=1", stopCalls)
	}
}

func TestAlternatingReward(t *testing.T) {
	tree := centreTree()
	root := tree.Root()
	move := gomoku.NewMove(6, 6)
	child := tree.Expand(root, move, tree.Node(root).Board().Apply(move, gomoku.O))

	// O made the move into 'child', so an O win credits the child only
	AlternatingReward{}.Backpropagate(tree, child, gomoku.O)
	if tree.Node(child).Wins() != 1 || tree.Node(root).Wins() != 0 {
		t.Errorf("child wins=%v root wins=%v, want 1 and 0", tree.Node(child).Wins(), tree.Node(root).Wins())
	}

	AlternatingReward{}.Backpropagate(tree, child, gomoku.Empty)
	if tree.Node(child).Wins() != 1.5 || tree.Node(root).Wins() != 0.5 {
		t.Errorf("draw should credit 0.5 to both, got child=%v root=%v", tree.Node(child).Wins(), tree.Node(root).Wins())
	}
}

func TestFixedSideReward(t *testing.T) {
	tree := centreTree()
	root := tree.Root()
	move := gomoku.NewMove(6, 6)
	child := tree.Expand(root, move, tree.Node(root).Board().Apply(move, gomoku.O))

	FixedSideReward{}.Backpropagate(tree, child, gomoku.O)
	FixedSideReward{}.Backpropagate(tree, child, gomoku.X)
	FixedSideReward{}.Backpropagate(tree, child, gomoku.Empty)

	for _, id := range []NodeID{root, child} {
		if n := tree.Node(id); n.Visits() != 3 || n.Wins() != 1 {
			t.Errorf("node %d visits=%d wins=%v, want 3 and 1", id, n.Visits(), n.Wins())
		}
	}
}
