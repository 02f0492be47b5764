package strategy

import "github.com/tamaroning/blocksim/internal/block"

// DelayedHonest behaves like Honest but tags its Propagate actions
// with extra relay latency on top of the network's propagation delay,
// modeling a miner whose own relay path is slower than its peers'.
type DelayedHonest struct {
	CurrentTip block.ID
	DelayMs    int64
}

// NewDelayedHonest returns a DelayedHonest strategy with the given
// extra relay delay in simulated milliseconds.
func NewDelayedHonest(delayMs int64) *DelayedHonest {
	return &DelayedHonest{CurrentTip: 0, DelayMs: delayMs}
}

func (d *DelayedHonest) Name() string { return "delayed_honest" }

func (d *DelayedHonest) OnMiningBlock(blockID block.ID, _ int64, env *Env, nodeID int) []Action {
	actions := broadcastExceptAfter(env, blockID, nodeID, d.DelayMs)
	d.CurrentTip = blockID
	actions = append(actions, RestartMining(blockID))
	return actions
}

func (d *DelayedHonest) OnReceivingBlock(blockID block.ID, _ int64, env *Env, _ int) []Action {
	incoming := env.Pool.MustGet(blockID)
	mine := env.Pool.MustGet(d.CurrentTip)
	if incoming.Height <= mine.Height {
		return nil
	}
	d.CurrentTip = blockID
	return []Action{RestartMining(blockID)}
}

// PostponedPublish behaves like Honest for mining and fork-choice, but
// sits on a newly mined block for PostponeMs before announcing it — a
// simple (non-Eyal-Sirer) publication delay.
type PostponedPublish struct {
	CurrentTip block.ID
	PostponeMs int64
}

// NewPostponedPublish returns a PostponedPublish strategy with the
// given publication delay in simulated milliseconds.
func NewPostponedPublish(postponeMs int64) *PostponedPublish {
	return &PostponedPublish{CurrentTip: 0, PostponeMs: postponeMs}
}

func (p *PostponedPublish) Name() string { return "postponed_publish" }

func (p *PostponedPublish) OnMiningBlock(blockID block.ID, _ int64, env *Env, nodeID int) []Action {
	actions := broadcastExceptAfter(env, blockID, nodeID, p.PostponeMs)
	p.CurrentTip = blockID
	actions = append(actions, RestartMining(blockID))
	return actions
}

func (p *PostponedPublish) OnReceivingBlock(blockID block.ID, _ int64, env *Env, _ int) []Action {
	incoming := env.Pool.MustGet(blockID)
	mine := env.Pool.MustGet(p.CurrentTip)
	if incoming.Height <= mine.Height {
		return nil
	}
	p.CurrentTip = blockID
	return []Action{RestartMining(blockID)}
}
