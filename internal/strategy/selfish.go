package strategy

import (
	"github.com/tamaroning/blocksim/internal/block"
	"github.com/tamaroning/blocksim/internal/tie"
)

// Selfish implements Eyal-Sirer selfish mining: it mines privately and
// releases its secret branch only when doing so wins a race against
// the publicly-known chain.
type Selfish struct {
	PublicTip        block.ID
	PrivateTip       block.ID
	PrivateBranchLen int
}

// NewSelfish returns a Selfish strategy with no private lead, both
// tips at genesis.
func NewSelfish() *Selfish {
	return &Selfish{PublicTip: 0, PrivateTip: 0, PrivateBranchLen: 0}
}

func (s *Selfish) Name() string { return "selfish" }

// privateBranch returns the node's private blocks, oldest first.
func (s *Selfish) privateBranch(env *Env) []block.ID {
	ids := make([]block.ID, 0, s.PrivateBranchLen)
	cur := s.PrivateTip
	for i := 0; i < s.PrivateBranchLen; i++ {
		ids = append(ids, cur)
		cur = env.Pool.MustGet(cur).Prev
	}
	for i, j := 0, len(ids)-1; i < j; i, j = i+1, j-1 {
		ids[i], ids[j] = ids[j], ids[i]
	}
	return ids
}

// firstUnpublished returns the oldest still-private block: the one
// immediately above the public tip.
func (s *Selfish) firstUnpublished(env *Env) block.ID {
	cur := s.PrivateTip
	for i := 0; i < s.PrivateBranchLen-1; i++ {
		cur = env.Pool.MustGet(cur).Prev
	}
	return cur
}

func (s *Selfish) OnMiningBlock(blockID block.ID, _ int64, env *Env, _ int) []Action {
	privHeight := env.Pool.MustGet(s.PrivateTip).Height
	pubHeight := env.Pool.MustGet(s.PublicTip).Height
	deltaPrev := privHeight - pubHeight

	s.PrivateTip = blockID
	s.PrivateBranchLen++

	var actions []Action
	if deltaPrev == 0 && s.PrivateBranchLen == 2 {
		for _, id := range s.privateBranch(env) {
			actions = append(actions, broadcast(env, id)...)
		}
		s.PrivateBranchLen = 0
	}
	actions = append(actions, RestartMining(s.PrivateTip))
	return actions
}

func (s *Selfish) OnReceivingBlock(blockID block.ID, _ int64, env *Env, nodeID int) []Action {
	arriving := env.Pool.MustGet(blockID)
	privHeight := env.Pool.MustGet(s.PrivateTip).Height
	publicBlock := env.Pool.MustGet(s.PublicTip)
	deltaPrev := privHeight - publicBlock.Height

	if tie.ArrivingWins(env.Tie, publicBlock.Minter == nodeID, publicBlock, arriving) {
		s.PublicTip = blockID
	}

	var actions []Action
	switch {
	case deltaPrev <= 0:
		// Honest chain caught up: abandon the private branch.
		s.PrivateTip = s.PublicTip
		s.PrivateBranchLen = 0
		actions = append(actions, RestartMining(s.PrivateTip))
	case deltaPrev == 1:
		actions = append(actions, broadcast(env, s.PrivateTip)...)
	case deltaPrev == 2:
		for _, id := range s.privateBranch(env) {
			actions = append(actions, broadcast(env, id)...)
		}
		s.PrivateBranchLen = 0
	default:
		actions = append(actions, broadcast(env, s.firstUnpublished(env))...)
	}

	return actions
}
