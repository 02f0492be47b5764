// Package strategy implements the pluggable mining-strategy
// polymorphism described in DESIGN NOTES "Strategy polymorphism": a
// strategy never mutates engine state directly. It is invoked on two
// callbacks addressed to its node and returns a declarative list of
// actions for the engine to materialise into future events.
package strategy

import (
	"github.com/tamaroning/blocksim/internal/block"
	"github.com/tamaroning/blocksim/internal/tie"
)

// Env is the read-only view of the blockchain and network a strategy
// callback receives. Strategies never mutate it.
type Env struct {
	Pool     *block.Pool
	NumNodes int
	Tie      tie.Rule
}

// Action is something the engine should schedule on behalf of a
// strategy. Exactly one of the two shapes below.
type Action struct {
	Kind ActionKind

	// Propagate fields.
	BlockID block.ID
	To      int
	// After is extra simulated-ms delay on top of network propagation
	// delay, used by the delayed/postponed strategies. Zero for the
	// base Honest/Selfish strategies.
	After int64

	// RestartMining fields.
	PrevBlockID block.ID
}

// ActionKind discriminates an Action's shape.
type ActionKind int

const (
	ActionPropagate ActionKind = iota
	ActionRestartMining
)

// Propagate asks the engine to deliver blockID (already in the pool)
// to node "to".
func Propagate(blockID block.ID, to int) Action {
	return Action{Kind: ActionPropagate, BlockID: blockID, To: to}
}

// PropagateAfter is Propagate with extra relay latency.
func PropagateAfter(blockID block.ID, to int, after int64) Action {
	return Action{Kind: ActionPropagate, BlockID: blockID, To: to, After: after}
}

// RestartMining cancels any outstanding mining timer for this node and
// schedules a fresh one rooted at prevBlockID.
func RestartMining(prevBlockID block.ID) Action {
	return Action{Kind: ActionRestartMining, PrevBlockID: prevBlockID}
}

// Strategy is a tagged variant dispatched over two callbacks. Any
// strategy may return an empty action list, meaning "do nothing."
// Strategies cannot fail: their action lists are always well-formed by
// construction; the engine validates referenced ids.
type Strategy interface {
	Name() string
	OnMiningBlock(blockID block.ID, now int64, env *Env, nodeID int) []Action
	OnReceivingBlock(blockID block.ID, now int64, env *Env, nodeID int) []Action
}

// broadcast emits a Propagate action to every node, self included; the
// engine treats self-propagation as a zero-delay no-op by construction
// (§4.6), so strategies need not special-case it.
func broadcast(env *Env, blockID block.ID) []Action {
	actions := make([]Action, 0, env.NumNodes)
	for i := 0; i < env.NumNodes; i++ {
		actions = append(actions, Propagate(blockID, i))
	}
	return actions
}

func broadcastAfter(env *Env, blockID block.ID, after int64) []Action {
	actions := make([]Action, 0, env.NumNodes)
	for i := 0; i < env.NumNodes; i++ {
		actions = append(actions, PropagateAfter(blockID, i, after))
	}
	return actions
}

// broadcastExcept emits a Propagate action to every node other than
// self, matching the Honest strategy's explicit peer loop in the
// original implementation.
func broadcastExcept(env *Env, blockID block.ID, self int) []Action {
	actions := make([]Action, 0, env.NumNodes-1)
	for i := 0; i < env.NumNodes; i++ {
		if i != self {
			actions = append(actions, Propagate(blockID, i))
		}
	}
	return actions
}

func broadcastExceptAfter(env *Env, blockID block.ID, self int, after int64) []Action {
	actions := make([]Action, 0, env.NumNodes-1)
	for i := 0; i < env.NumNodes; i++ {
		if i != self {
			actions = append(actions, PropagateAfter(blockID, i, after))
		}
	}
	return actions
}
