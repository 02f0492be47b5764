// Package node models the per-miner state the simulation engine
// schedules against: hashrate, the owned mining strategy, and the
// engine-managed scheduling bookkeeping for the node's outstanding
// mining attempt.
package node

import "github.com/tamaroning/blocksim/internal/strategy"

// ID is a dense node identifier, assigned in construction order.
type ID int

// Node is the mutable per-simulation entity tracking one miner.
type Node struct {
	ID       ID
	Hashrate int64 // positive integer, relative weight
	Strategy strategy.Strategy

	// NextMiningDeadline is engine-owned scheduling metadata: the
	// simulated time at which the currently-outstanding mining attempt
	// completes, or nil if no mining task is outstanding. Kept on the
	// node because it indexes exactly one task per node.
	NextMiningDeadline *int64
}

// New constructs a node with no outstanding mining deadline.
func New(id ID, hashrate int64, strat strategy.Strategy) *Node {
	return &Node{
		ID:       id,
		Hashrate: hashrate,
		Strategy: strat,
	}
}

// HasPendingMining reports whether the node has an outstanding mining
// deadline.
func (n *Node) HasPendingMining() bool {
	return n.NextMiningDeadline != nil
}

// SetDeadline records the node's next mining completion time.
func (n *Node) SetDeadline(t int64) {
	n.NextMiningDeadline = &t
}

// ClearDeadline marks the node as having no outstanding mining task.
func (n *Node) ClearDeadline() {
	n.NextMiningDeadline = nil
}
