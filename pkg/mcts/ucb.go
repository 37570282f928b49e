package mcts

import "math"

// Default selection policy, picks the child with the highest UCB1 score.
// Unvisited children win immediately, ties keep the first child in creation
// order.
func UCB1(tree *Tree, parent NodeID) NodeID {
	node := &tree.nodes[parent]

	// ln(0) would turn every score into NaN
	lnParentVisits := math.Log(float64(max(node.visits, 1)))

	best := NoNode
	bestScore := math.Inf(-1)
	for _, id := range node.children {
		child := &tree.nodes[id]

		// Pick the unvisited one
		if child.visits == 0 {
			return id
		}

		if score := child.UCB(lnParentVisits); score > bestScore || best == NoNode {
			bestScore = score
			best = id
		}
	}

	return best
}
