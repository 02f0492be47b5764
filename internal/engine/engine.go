// Package engine implements the single-threaded, time-ordered event
// loop that drives the simulation: per-node mining timers, block
// propagation, fork-choice on arrival, difficulty retargeting, and
// dispatch to pluggable mining strategies (§4.6).
package engine

import (
	"context"
	"math/rand"

	"github.com/sirupsen/logrus"

	"github.com/tamaroning/blocksim/internal/block"
	"github.com/tamaroning/blocksim/internal/event"
	"github.com/tamaroning/blocksim/internal/node"
	"github.com/tamaroning/blocksim/internal/protocol"
	"github.com/tamaroning/blocksim/internal/strategy"
	"github.com/tamaroning/blocksim/internal/tie"
)

// Config bundles everything Engine needs to run one simulation.
type Config struct {
	Nodes    []*node.Node
	Protocol protocol.Protocol
	Tie      tie.Rule
	Delay    int64 // one-hop propagation delay, simulated ms
	EndRound int64 // terminate once some block reaches this height
	Seed     int64
	Log      *logrus.Logger
}

// Engine owns the global simulation state: the event queue, the block
// pool, and the node table. It is not safe for concurrent use (§5: a
// single event is processed at any instant).
type Engine struct {
	cfg Config

	currentTime  int64
	currentRound block.Height

	pool  *block.Pool
	queue event.Queue
	nodes []*node.Node
	rng   *rand.Rand
	log   *logrus.Logger

	totalHashrate int64
}

// New constructs an Engine ready to Run. Nodes must already carry
// their hashrate and strategy.
func New(cfg Config) *Engine {
	if cfg.Log == nil {
		cfg.Log = logrus.StandardLogger()
	}
	var total int64
	for _, n := range cfg.Nodes {
		total += n.Hashrate
	}
	return &Engine{
		cfg:           cfg,
		pool:          block.NewPool(cfg.Protocol.DefaultDifficulty()),
		nodes:         cfg.Nodes,
		rng:           rand.New(rand.NewSource(cfg.Seed)),
		log:           cfg.Log,
		totalHashrate: total,
	}
}

// Pool exposes the block pool for reporting once the run completes.
func (e *Engine) Pool() *block.Pool { return e.pool }

// CurrentTime is the simulated time the loop stopped at.
func (e *Engine) CurrentTime() int64 { return e.currentTime }

// CurrentRound is the greatest block height observed.
func (e *Engine) CurrentRound() block.Height { return e.currentRound }

// Nodes exposes the node table for reporting.
func (e *Engine) Nodes() []*node.Node { return e.nodes }

// TotalHashrate is the sum of every node's hashrate, used by reporting
// to compute each node's hashrate share (§4.7).
func (e *Engine) TotalHashrate() int64 { return e.totalHashrate }

// Run bootstraps every node's initial mining task and then drives the
// main loop until the queue drains or CurrentRound reaches EndRound.
// With EndRound <= 0 it returns at once without bootstrapping, so the
// pool holds only genesis. ctx is checked once per popped event so a
// caller can cancel a long-running simulation; this is cooperative
// cancellation of the single loop, not concurrency (§5 non-goals).
func (e *Engine) Run(ctx context.Context) {
	if e.currentRound >= block.Height(e.cfg.EndRound) {
		return
	}
	e.bootstrap()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		if e.queue.Empty() || e.currentRound >= block.Height(e.cfg.EndRound) {
			return
		}

		ev, ok := e.queue.PopMin()
		if !ok {
			return
		}
		e.currentTime = ev.Time

		switch ev.Kind {
		case event.BlockGeneration:
			e.dispatchBlockGeneration(ev)
		case event.Propagation:
			e.dispatchPropagation(ev)
		}
	}
}

// bootstrap schedules every node's first mining attempt rooted at
// genesis, per §4.6 "Bootstrap".
func (e *Engine) bootstrap() {
	for _, n := range e.nodes {
		e.restartMining(n, 0)
	}
}

func (e *Engine) env() *strategy.Env {
	return &strategy.Env{Pool: e.pool, NumNodes: len(e.nodes), Tie: e.cfg.Tie}
}

func (e *Engine) dispatchBlockGeneration(ev event.Event) {
	n := e.nodes[ev.Minter]

	// A node has at most one live mining deadline. If this event's time
	// doesn't match it, the event is stale (its task was cancelled);
	// drop it. Two independent safety nets exist for this (§4.6,
	// §9 "Mining-event staleness"): removal from the queue on every
	// RestartMining, and this deadline comparison.
	if !n.HasPendingMining() || *n.NextMiningDeadline != ev.Time {
		return
	}

	newBlockID := ev.BlockID
	newBlock := e.pool.MustGet(newBlockID)
	if newBlock.Height > e.currentRound {
		e.currentRound = newBlock.Height
	}

	n.ClearDeadline()
	actions := n.Strategy.OnMiningBlock(newBlockID, e.currentTime, e.env(), int(n.ID))
	if e.currentRound >= block.Height(e.cfg.EndRound) {
		// This block ends the run: its follow-up events are abandoned,
		// so no candidate block above EndRound enters the pool.
		return
	}
	e.materialise(n, actions)
}

// dispatchPropagation hands the arriving block to the recipient's
// strategy; a block a node propagated to itself is dropped here. There
// is no engine-level fork-choice step: each strategy owns its notion
// of "current tip" (Honest.CurrentTip, Selfish.PublicTip/PrivateTip).
// The Honest-family strategies adopt only a strictly taller arrival
// and never consult the configured tie rule; Selfish and KLeadSelfish
// apply tie.ArrivingWins to their public tip. Honest-family strategies
// restart mining only when they adopt the arrival; Selfish and
// KLeadSelfish restart only when the arrival leaves them no private
// lead.
func (e *Engine) dispatchPropagation(ev event.Event) {
	if ev.From == ev.To {
		return
	}
	to := e.nodes[ev.To]
	actions := to.Strategy.OnReceivingBlock(ev.BlockID, e.currentTime, e.env(), int(to.ID))
	e.materialise(to, actions)
}

func (e *Engine) materialise(n *node.Node, actions []strategy.Action) {
	for _, a := range actions {
		switch a.Kind {
		case strategy.ActionPropagate:
			e.schedulePropagate(n, a)
		case strategy.ActionRestartMining:
			e.restartMining(n, a.PrevBlockID)
		}
	}
}

func (e *Engine) schedulePropagate(from *node.Node, a strategy.Action) {
	if a.BlockID >= e.pool.NextID() {
		panic("engine: Propagate references a block not in the pool")
	}
	delay := e.propagationTime(int(from.ID), a.To) + a.After
	e.queue.Insert(event.Event{
		Time:    e.currentTime + delay,
		Kind:    event.Propagation,
		From:    int(from.ID),
		To:      a.To,
		BlockID: a.BlockID,
	})
}

func (e *Engine) propagationTime(from, to int) int64 {
	if from == to {
		return 0
	}
	return e.cfg.Delay
}

// cancelMining removes a node's outstanding BlockGeneration event and
// clears its deadline (§4.6 "Invalidation of mining tasks").
func (e *Engine) cancelMining(n *node.Node) {
	if !n.HasPendingMining() {
		return
	}
	deadline := *n.NextMiningDeadline
	n.ClearDeadline()
	e.queue.RemoveFunc(func(ev event.Event) bool {
		return ev.Kind == event.BlockGeneration && ev.Minter == int(n.ID) && ev.Time == deadline
	})
}

// restartMining cancels any outstanding mining timer for n, computes a
// fresh difficulty and generation time rooted at prevBlockID, and
// materialises the new candidate block into the pool immediately so
// that propagation actions referring to it by id are always valid
// (§9 "Block materialisation timing").
func (e *Engine) restartMining(n *node.Node, prevBlockID block.ID) {
	e.cancelMining(n)

	prev := e.pool.MustGet(prevBlockID)
	difficulty := e.cfg.Protocol.CalculateDifficulty(prev, e.currentTime, e.pool)
	genTime := e.cfg.Protocol.CalculateGenerationTime(e.rng, difficulty, n.Hashrate)

	completion := e.currentTime + genTime
	newID := e.pool.NextID()
	newBlock := block.Block{
		ID:         newID,
		Height:     prev.Height + 1,
		Prev:       prevBlockID,
		Minter:     int(n.ID),
		Time:       completion,
		Rand:       e.rng.Int63(),
		Difficulty: difficulty,
		MiningTime: genTime,
	}
	e.pool.Append(newBlock)

	n.SetDeadline(completion)
	e.queue.Insert(event.Event{
		Time:    completion,
		Kind:    event.BlockGeneration,
		Minter:  int(n.ID),
		BlockID: newID,
	})
}
