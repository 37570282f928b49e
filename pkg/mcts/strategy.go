package mcts

import "github.com/IlikeChooros/gomoku-mcts/pkg/gomoku"

// Decides how the outcome of a rollout is credited to the nodes on the path
// from 'leaf' up to the root
type StrategyLike interface {
	Backpropagate(tree *Tree, leaf NodeID, winner gomoku.Cell)
}

// Credits every node on the path with the same reward: 1 if the rollout was
// won by the side the tree searches for, 0 otherwise (draws included). The
// reward is not flipped for the opponent's nodes, so the opponent is modelled
// as helping the searching side. This is the engine's default and it is kept
// on purpose for move compatibility, see AlternatingReward for the zero-sum
// variant.
type FixedSideReward struct{}

func (FixedSideReward) Backpropagate(tree *Tree, leaf NodeID, winner gomoku.Cell) {
	reward := Result(0)
	if winner == tree.side {
		reward = 1
	}

	for id := leaf; id != NoNode; id = tree.nodes[id].parent {
		tree.nodes[id].Update(reward)
	}
}

// Assumes the game is 2 player and zero sum: each node is credited from the
// perspective of the player who made its incoming move, a draw is worth 0.5
// to both sides.
type AlternatingReward struct{}

func (AlternatingReward) Backpropagate(tree *Tree, leaf NodeID, winner gomoku.Cell) {
	/*
		source: https://en.wikipedia.org/wiki/Monte_Carlo_tree_search
			If white loses the simulation, all nodes along the selection incremented their simulation count (the denominator),
			but among them only the black nodes were credited with wins (the numerator).
	*/
	for id := leaf; id != NoNode; id = tree.nodes[id].parent {
		node := &tree.nodes[id]

		reward := Result(0.5)
		if winner != gomoku.Empty {
			reward = 0
			// mover is the player to move here, the opponent made the incoming move
			if winner == node.mover.Opponent() {
				reward = 1
			}
		}
		node.Update(reward)
	}
}
