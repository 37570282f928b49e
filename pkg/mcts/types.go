package mcts

// Other types, which didn't fit to MCTS or Node files

// Reward credited to a node after a rollout, 0 or 1 with the fixed side
// convention, 0.5 is used by the alternating strategy for draws
type Result float64
type BestChildPolicy int

// Index of a node in the tree's arena, the root is always 0
type NodeID int32

// Will be called during the selection phase on a fully expanded node with
// at least one child, must return one of the parent's children
type SelectionPolicy func(tree *Tree, parent NodeID) NodeID
type SeedGeneratorFnType func() int64

// No node, used as the root's parent
const NoNode NodeID = -1
