package strategy

import "github.com/tamaroning/blocksim/internal/block"

// Honest mines on the tallest chain it has seen and immediately
// announces everything it finds.
type Honest struct {
	CurrentTip block.ID
}

// NewHonest returns an Honest strategy mining on genesis.
func NewHonest() *Honest {
	return &Honest{CurrentTip: 0}
}

func (h *Honest) Name() string { return "honest" }

func (h *Honest) OnMiningBlock(blockID block.ID, _ int64, env *Env, nodeID int) []Action {
	actions := broadcastExcept(env, blockID, nodeID)
	h.CurrentTip = blockID
	actions = append(actions, RestartMining(blockID))
	return actions
}

func (h *Honest) OnReceivingBlock(blockID block.ID, _ int64, env *Env, _ int) []Action {
	incoming := env.Pool.MustGet(blockID)
	mine := env.Pool.MustGet(h.CurrentTip)
	if incoming.Height <= mine.Height {
		return nil
	}
	h.CurrentTip = blockID
	return []Action{RestartMining(blockID)}
}
