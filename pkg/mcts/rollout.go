package mcts

import "github.com/IlikeChooros/gomoku-mcts/pkg/gomoku"

// Plays uniformly random legal moves on 'board' (the position of node 'id')
// until a move wins or no legal move is left. Returns the winner, or
// gomoku.Empty for a draw.
func (t *Tree) rollout(board *gomoku.Board, id NodeID) gomoku.Cell {
	node := &t.nodes[id]

	// The incoming move already won, the player who made it is the winner
	if node.terminal {
		return node.mover.Opponent()
	}

	t.frontier.Reset(board)
	mover := node.mover

	for ply := 0; ply < RolloutPlyCap && t.frontier.Len() > 0; ply++ {
		move := t.frontier.At(t.rand.Intn(t.frontier.Len()))
		board.Set(move, mover)

		if gomoku.IsWinningMove(board, move) {
			return mover
		}

		t.frontier.Play(board, move)
		mover = mover.Opponent()
	}

	return gomoku.Empty
}
