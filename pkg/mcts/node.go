package mcts

import (
	"fmt"
	"math"
	"unsafe"

	"github.com/IlikeChooros/gomoku-mcts/pkg/gomoku"
)

// One position in the search tree. Nodes live in the tree's arena and refer
// to each other by NodeID: children are owned by their parent, the parent
// link is a plain index used only to walk back up.
type Node struct {
	// Position snapshot for this node, owned by the node
	board gomoku.Board
	// Player to move from this position
	mover gomoku.Cell
	// Move that produced this node from its parent (zero for the root)
	move   gomoku.Move
	parent NodeID
	// Children in creation order
	children []NodeID

	visits int32
	wins   Result

	// Legal moves from 'board' that were not expanded yet
	untried []gomoku.Move

	// The incoming move completed a line, nothing to expand
	terminal bool
}

// Rough size of a single node, including a typical untried move list,
// used by the limiter to estimate memory usage
const approxNodeSize = uint32(unsafe.Sizeof(Node{}) + 32*unsafe.Sizeof(gomoku.Move{}) + unsafe.Sizeof(NodeID(0)))

func newNode(board gomoku.Board, mover gomoku.Cell, move gomoku.Move, parent NodeID) Node {
	node := Node{
		board:  board,
		mover:  mover,
		move:   move,
		parent: parent,
	}

	if parent != NoNode && gomoku.IsWinningMove(&node.board, move) {
		node.terminal = true
	} else {
		node.untried = node.board.LegalMoves()
	}
	return node
}

func (n *Node) Board() gomoku.Board {
	return n.board
}

func (n *Node) Mover() gomoku.Cell {
	return n.mover
}

func (n *Node) Move() gomoku.Move {
	return n.move
}

func (n *Node) Parent() NodeID {
	return n.parent
}

func (n *Node) Children() []NodeID {
	return n.children
}

func (n *Node) Untried() []gomoku.Move {
	return n.untried
}

func (n *Node) Visits() int32 {
	return n.visits
}

// Accumulated reward
func (n *Node) Wins() Result {
	return n.wins
}

// wins/visits, 0 for an unvisited node
func (n *Node) WinRate() float64 {
	if n.visits == 0 {
		return 0
	}
	return float64(n.wins) / float64(n.visits)
}

func (n *Node) Terminal() bool {
	return n.terminal
}

// No untried moves left, selection may descend below this node
func (n *Node) FullyExpanded() bool {
	return len(n.untried) == 0
}

// Record a single rollout going through this node
func (n *Node) Update(reward Result) {
	n.visits++
	n.wins += reward
}

// UCB1 score : wins/visits + C * sqrt(ln(parent_visits)/visits).
// Unvisited nodes have +Inf priority, so they are always tried first.
func (n *Node) UCB(lnParentVisits float64) float64 {
	if n.visits == 0 {
		return math.Inf(1)
	}

	visits := float64(n.visits)
	return float64(n.wins)/visits + ExplorationParam*math.Sqrt(lnParentVisits/visits)
}

func (n *Node) String() string {
	return fmt.Sprintf("Node{move=%v, mover=%v, visits=%d, wins=%.1f, children=%d, untried=%d, terminal=%v}",
		n.move, n.mover, n.visits, float64(n.wins), len(n.children), len(n.untried), n.terminal)
}

// Expand 'move' from node 'id' into a new child holding 'board' (the
// position after the move). The move must be one of the node's untried
// moves. Returns the id of the new child.
func (t *Tree) Expand(id NodeID, move gomoku.Move, board gomoku.Board) NodeID {
	node := &t.nodes[id]

	index := -1
	for i := range node.untried {
		if node.untried[i] == move {
			index = i
			break
		}
	}
	if index < 0 {
		panic(fmt.Sprintf("[MCTS] Expand: move %v is not an untried move of node %d", move, id))
	}

	last := len(node.untried) - 1
	node.untried[index] = node.untried[last]
	node.untried = node.untried[:last]

	child := NodeID(len(t.nodes))
	node.children = append(node.children, child)
	mover := node.mover.Opponent()

	// 'node' must not be used after this append, the arena may move
	t.nodes = append(t.nodes, newNode(board, mover, move, id))
	t.size.Store(uint32(len(t.nodes)))
	return child
}
